// Package coin implements a minimal two-player coin-flip guessing game as a
// worked example of package domain's State interface: no board, no secrets,
// a single shared-randomness suspension per turn. Ported from
// original_source/tests/coin.rs's Coin test fixture.
package coin

import (
	"fmt"

	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

// Version identifies this game's rules and wire format.
const Version uint32 = 1

// Event is the random draw Coin logs each turn: the raw uint32 the flip was
// decided against, so a spectator can recompute the outcome independently.
type Event = uint32

// State is the coin game's position: whose turn it is (encoded in Nonce,
// matching the original's nonce%2 turn rule) and each player's running
// score.
type State struct {
	Nonce uint8
	Score [2]uint8
}

// Guess is the action a player submits: their bet on whether the drawn
// value will be odd.
type Guess struct {
	Odd bool
}

var _ domain.State[State, Guess, Event] = State{}

func (State) Version() uint32 { return Version }

func (State) Challenge() State { return State{} }

// AcceptsChallenge reports whether accepted is an unmodified Challenge() —
// Coin has no match parameters to negotiate.
func (s State) AcceptsChallenge(accepted State) bool {
	return accepted == State{}
}

// Approval is the message the owner signs to approve subkey as a delegate
// for player, matching domain.Certificate's wording style.
func (State) Approval(player, subkey cryptoadapter.Address) string {
	return fmt.Sprintf("Approve %s for %s.", subkey.String(), player.String())
}

func (State) IsSerializable() bool { return true }

func (s State) Serialize(w *codec.Writer) error {
	w.WriteByte(s.Nonce)
	w.WriteByte(s.Score[0])
	w.WriteByte(s.Score[1])
	return nil
}

func (State) Deserialize(r *codec.Reader) (State, error) {
	nonce, err := r.ReadByte()
	if err != nil {
		return State{}, err
	}
	s0, err := r.ReadByte()
	if err != nil {
		return State{}, err
	}
	s1, err := r.ReadByte()
	if err != nil {
		return State{}, err
	}
	return State{Nonce: nonce, Score: [2]uint8{s0, s1}}, nil
}

// DeserializeSecret always fails: Coin has no per-player secret (the
// original's `type Secret = ()`), so no replica is ever asked to decode
// one.
func (State) DeserializeSecret(r *codec.Reader) (domain.Secret, error) {
	return nil, fmt.Errorf("coin: game has no secrets")
}

func (State) SerializeAction(w *codec.Writer, action Guess) error {
	if action.Odd {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
	return nil
}

func (State) DeserializeAction(r *codec.Reader) (Guess, error) {
	b, err := r.ReadByte()
	if err != nil {
		return Guess{}, err
	}
	return Guess{Odd: b != 0}, nil
}

// nextPlayer mirrors the original's nonce%2 turn rule: player 0 moves on
// even nonces, player 1 on odd ones.
func (s State) nextPlayer() domain.Player {
	if s.Nonce%2 == 0 {
		return domain.Player0
	}
	return domain.Player1
}

func (s State) VerifyAction(player *domain.Player, action Guess) error {
	if player == nil || *player != s.nextPlayer() {
		return fmt.Errorf("coin: action submitted out of turn")
	}
	return nil
}

// ApplyAction draws a fresh random value via ctx.Random (suspending the
// caller through a full commit-reveal round the first time it's called in
// this transition), logs the raw draw, and credits the acting player's
// score if their parity guess matches it.
func (s State) ApplyAction(ctx *domain.Context[Event], player *domain.Player, action Guess) (State, error) {
	if err := s.VerifyAction(player, action); err != nil {
		return State{}, err
	}

	draw := ctx.Random().Uint32()
	ctx.Log(draw)

	next := s
	if action.Odd == (draw%2 != 0) {
		next.Score[*player]++
	}
	next.Nonce++

	return next, nil
}
