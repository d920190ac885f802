package domain

import (
	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// State is the interface a concrete two-player game implements. S is the
// concrete game state itself (an F-bounded self-reference: S must
// implement State[S, A, E]), A is the action type players submit, and E is
// the event type ApplyAction may Context.Log. Go has no associated-type
// trait like the original's `trait State { type Action; type Event; ... }`
// — threading all three as independent type parameters on every type that
// touches a State (ProofState, RootProof, Proof, Store, ...) is the
// idiomatic substitute.
type State[S any, A any, E any] interface {
	// Version identifies the game rules/wire format. Packages proof and
	// store do not embed it in a root proof or check it when reading one.
	Version() uint32

	// Challenge is the initial state a match starts from when the match
	// owner opens it without a specific starting position.
	Challenge() S

	// AcceptsChallenge reports whether accepted is an acceptable starting
	// point for the responder to sign onto — i.e. whether one player's
	// invite has been accepted into a state the other player is willing to
	// open a match from. Most games simply compare against Challenge();
	// some embed match parameters (stakes, board size) that must round-trip
	// unchanged.
	AcceptsChallenge(accepted S) bool

	// Approval is the human-readable message the match owner signs with
	// their wallet key to authorize subkey as a delegate signer standing in
	// for player's wallet, when player never signs anything directly.
	// Mirrors Certificate, but countersigned by the owner instead of by the
	// player being delegated for.
	Approval(player cryptoadapter.Address, subkey cryptoadapter.Address) string

	// IsSerializable reports whether this exact value can be written with
	// Serialize — false for states mid-transition (a Pending StoreState
	// never reaches here in practice, but an implementation may also
	// reject any other internally-inconsistent value).
	IsSerializable() bool

	// Serialize writes the canonical encoding of this state.
	Serialize(w *codec.Writer) error

	// Deserialize reads a state from its canonical encoding. Go has no
	// associated function without a receiver, so callers invoke this on
	// any S value (the zero value or Challenge() work equally well) purely
	// to select the implementation; the receiver's own fields play no
	// part in the result.
	Deserialize(r *codec.Reader) (S, error)

	// DeserializeSecret reads one player's secret from its canonical
	// encoding. Called once per player whose secret a given replica holds.
	DeserializeSecret(r *codec.Reader) (Secret, error)

	// SerializeAction writes the canonical encoding of an action.
	SerializeAction(w *codec.Writer, action A) error

	// DeserializeAction reads an action from its canonical encoding.
	DeserializeAction(r *codec.Reader) (A, error)

	// VerifyAction performs stateless validation of an action before it is
	// ever applied — malformed input is rejected here as a Hard error
	// without touching local state, never surfaced as a Slashable dispute.
	VerifyAction(player *Player, action A) error

	// ApplyAction runs the state transition for action, submitted by
	// player (nil for an owner-authored action with no specific author).
	// It may suspend zero or more times via ctx.Random/ctx.Reveal/
	// ctx.RevealUnique; package store drives those suspensions to
	// completion by dispatching RandomCommit/RandomReply/RandomReveal/
	// Reveal StoreActions. Returning a SlashableError (see errors.go)
	// rejects the action with publishable evidence; returning any other
	// error is a Hard rejection with none.
	ApplyAction(ctx *Context[E], player *Player, action A) (S, error)
}

// Hash is re-exported for convenience so game packages implementing State
// rarely need to import package cryptoadapter directly just to reference
// it in a doc comment or a Challenge() literal.
type Hash = cryptoadapter.Hash
