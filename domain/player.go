// Package domain defines the interface a concrete two-player game implements
// to be driven by the proof and store engine (package proof, package store).
// Everything in this package is supplied by game authors, not by this
// module — proof and store only depend on it through the State interface.
package domain

import (
	"fmt"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// Player identifies one of the two participants who submit moves. The
// match owner (the author who signed the RootProof) is represented by a nil
// *Player rather than by a Player value — Go has no sum-type "no player"
// member of a two-valued enum, and a nil pointer is the idiomatic stand-in
// used throughout this module's core/types-derived Address/Hash helpers.
type Player uint8

// The only two valid players.
const (
	Player0 Player = 0
	Player1 Player = 1
)

// IsValid reports whether p is 0 or 1.
func (p Player) IsValid() bool {
	return p == Player0 || p == Player1
}

// Other returns the opponent of p. Panics if p is not valid, since calling
// it on an invalid player is always a programming error, never bad input.
func (p Player) Other() Player {
	switch p {
	case Player0:
		return Player1
	case Player1:
		return Player0
	default:
		panic(fmt.Sprintf("domain: Other called on invalid player %d", p))
	}
}

// String implements fmt.Stringer.
func (p Player) String() string {
	switch p {
	case Player0:
		return "player0"
	case Player1:
		return "player1"
	default:
		return fmt.Sprintf("player(%d)", uint8(p))
	}
}

// Certificate is the human-readable message a player signs with their
// wallet key to authorize a delegate address to sign future actions on
// their behalf.
func Certificate(delegate cryptoadapter.Address) string {
	return fmt.Sprintf("Sign to play! This won't cost anything.\n\n%s\n", delegate.String())
}

// SamePlayer reports whether two Option<Player>-shaped pointers denote the
// same participant (both nil, or both non-nil with equal value).
func SamePlayer(a, b *Player) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
