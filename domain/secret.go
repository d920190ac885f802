package domain

import "math/rand/v2"

// Secret is per-player hidden state (hole cards, a private word, ...). Only
// the replica belonging to that player (and, transiently, the owner when
// constructing a diff on a player's behalf) ever holds the live value;
// everyone else's StoreState carries a nil SecretCell for that slot.
type Secret interface {
	// Serialize returns the canonical encoding used both for wire transfer
	// (Store.Serialize, player-scoped) and for the reveal sub-protocol.
	Serialize() []byte
}

// SecretCell pairs a player's secret with their private PRNG. Both are
// mutated in place by the domain coroutine via Context.MutateSecret and by
// the commit-reveal machinery in package store; they are never shared
// between players.
type SecretCell struct {
	Secret Secret
	RNG    *rand.Rand
}

// NewSecretCell seeds a SecretCell's PRNG from a fixed 16-byte per-player
// seed, so every replica that holds the same secret derives the same PRNG
// state from it without exchanging anything additional.
func NewSecretCell(secret Secret, seed [16]byte) *SecretCell {
	hi := bytesToUint64(seed[:8])
	lo := bytesToUint64(seed[8:])
	return &SecretCell{
		Secret: secret,
		RNG:    rand.New(rand.NewPCG(hi, lo)),
	}
}

// NewRand seeds a math/rand/v2 PCG generator from a 16-byte combined
// commit-reveal seed, the same deterministic construction NewSecretCell
// uses for per-player secret PRNGs — reused here for the shared randomness
// Context.Random() resolves to once both players' commit-reveal
// contributions are combined.
func NewRand(seed [16]byte) *rand.Rand {
	return rand.New(rand.NewPCG(bytesToUint64(seed[:8]), bytesToUint64(seed[8:])))
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
