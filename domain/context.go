package domain

import (
	"math/rand/v2"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// PhaseKind identifies which step of the commit-reveal / secret-reveal
// sub-protocol a Pending StoreState is suspended at.
type PhaseKind int

const (
	// PhaseIdle means no sub-protocol is in flight; the coroutine is either
	// about to run, running plain (non-suspending) code, or has just been
	// resumed with a freshly resolved Random or Secret value.
	PhaseIdle PhaseKind = iota
	// PhaseRandomCommit awaits player 0's (or the owner's, on their behalf)
	// commitment hash.
	PhaseRandomCommit
	// PhaseRandomReply awaits player 1's (or the owner's) reply seed.
	PhaseRandomReply
	// PhaseRandomReveal awaits the committer's reveal of their seed.
	PhaseRandomReveal
	// PhaseReveal awaits a single player's secret-reveal bytes.
	PhaseReveal
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseIdle:
		return "idle"
	case PhaseRandomCommit:
		return "random-commit"
	case PhaseRandomReply:
		return "random-reply"
	case PhaseRandomReveal:
		return "random-reveal"
	case PhaseReveal:
		return "reveal"
	default:
		return "unknown"
	}
}

// RevealRequest describes an in-flight Context.Reveal/RevealUnique call:
// which player must answer, how to extract reveal bytes from their local
// secret, and how to verify a submitted reveal.
type RevealRequest struct {
	Player Player
	// Reveal extracts the bytes the given player must publish from their
	// own local secret. Only ever invoked by that player's own replica (or
	// the owner acting on a revealed secret) — see store.Store.Flush.
	Reveal func(secret Secret) ([]byte, error)
	// Verify checks that submitted reveal bytes are acceptable. Called by
	// every replica that applies the Reveal StoreAction, independent of
	// whether they hold the secret themselves.
	Verify func(revealed []byte) error
}

// Phase is the suspension state shared between a Pending StoreState and the
// Context its coroutine is awaiting on. Exactly one of the non-Idle kinds
// is active at a time.
type Phase struct {
	Kind PhaseKind

	// Valid when Kind == PhaseIdle or PhaseReveal: the seeded PRNG carried
	// forward from a prior commit-reveal round, or nil if none has been
	// established yet (PhaseReveal via plain Reveal always carries nil,
	// forcing a re-seed afterward; RevealUnique preserves the prior value).
	Random *rand.Rand
	// Valid when Kind == PhaseIdle: the bytes most recently resolved by a
	// Reveal/RevealUnique await.
	Secret []byte

	// Valid when Kind == PhaseRandomReply/PhaseRandomReveal: the
	// commitment hash published in RandomCommit.
	Hash cryptoadapter.Hash
	// Valid when Kind == PhaseRandomReply/PhaseRandomReveal: true when the
	// owner is standing in for player 0's commitment (Store.DispatchTimeout
	// or an owner-authored match), which relaxes the reveal hash check.
	OwnerHash bool
	// Valid when Kind == PhaseRandomReveal: player 1's reply seed.
	Reply []byte

	// Valid when Kind == PhaseReveal: which player must answer and how.
	Request *RevealRequest
}

// Context is the handle a domain transition coroutine uses to suspend on
// shared randomness (Random) or a private secret reveal (Reveal,
// RevealUnique), to emit domain events (Log), and to mutate a player's
// local secret (MutateSecret). package store drives it to completion.
//
// Suspension is implemented as a synchronous goroutine handoff: the
// coroutine runs on its own goroutine but blocks on an unbuffered channel
// at every suspension point, and the driving goroutine blocks on another
// unbuffered channel while the coroutine runs. At most one of the two is
// ever runnable, so no actual concurrency occurs — it is simply how Go
// expresses a suspendable computation without a native coroutine
// primitive, equivalent to rewriting the transition as an explicit
// continuation state machine driven by the same Phase transitions.
type Context[E any] struct {
	Phase   Phase
	secrets [2]*SecretCell

	eventCount *int
	logEnabled bool
	emit       func(count int, event E)

	toCoroutine   chan struct{}
	fromCoroutine chan struct{}
	started       bool
	finished      bool
	finishErr     error
}

// NewContext constructs a Context. secrets holds this replica's view of
// each player's (Secret, PRNG) pair — nil for a player whose secret this
// replica does not hold. eventCount is a pointer into the owning
// StoreState's Ready.EventCount so the dedup counter survives across
// transitions. emit is the underlying event sink (nil to discard events,
// e.g. during a silenced dry-run).
func NewContext[E any](secrets [2]*SecretCell, eventCount *int, emit func(count int, event E)) *Context[E] {
	return &Context[E]{
		Phase:         Phase{Kind: PhaseIdle},
		secrets:       secrets,
		eventCount:    eventCount,
		logEnabled:    true,
		emit:          emit,
		toCoroutine:   make(chan struct{}),
		fromCoroutine: make(chan struct{}),
	}
}

// EnableLogs toggles whether Log calls reach the underlying sink. Package
// store does not call it; it silences events through store.Logger instead.
func (c *Context[E]) EnableLogs(enabled bool) {
	c.logEnabled = enabled
}

// Log increments c.eventCount and passes the event with that count to the
// sink. Log itself does not deduplicate; the sink (store.Logger) drops a
// count it has already delivered, so a replica that replays a transition
// does not re-fire a callback for an event already delivered once.
func (c *Context[E]) Log(event E) {
	*c.eventCount++
	if c.logEnabled && c.emit != nil {
		c.emit(*c.eventCount, event)
	}
}

// Random returns the current commit-reveal PRNG, suspending the coroutine
// on a fresh RandomCommit/RandomReply/RandomReveal round if one has not
// already been established during this transition.
func (c *Context[E]) Random() *rand.Rand {
	if c.Phase.Kind == PhaseIdle && c.Phase.Random != nil {
		return c.Phase.Random
	}
	c.Phase = Phase{Kind: PhaseRandomCommit}
	c.suspend()
	return c.Phase.Random
}

// Reveal suspends the coroutine until the given player (or the owner on
// their behalf) publishes reveal bytes satisfying verify. Clears any
// established PRNG, forcing a fresh commit-reveal round afterward as an
// anti-grinding measure.
func (c *Context[E]) Reveal(player Player, reveal func(Secret) ([]byte, error), verify func([]byte) error) ([]byte, error) {
	return c.reveal(player, reveal, verify, nil)
}

// RevealUnique behaves like Reveal but preserves the existing PRNG instead
// of clearing it. Only safe when verify accepts exactly one possible
// input, since otherwise a player could grind reveals against the live
// PRNG state to bias its outcome.
func (c *Context[E]) RevealUnique(player Player, reveal func(Secret) ([]byte, error), verify func([]byte) error) ([]byte, error) {
	return c.reveal(player, reveal, verify, c.Phase.Random)
}

func (c *Context[E]) reveal(player Player, reveal func(Secret) ([]byte, error), verify func([]byte) error, carryRandom *rand.Rand) ([]byte, error) {
	c.Phase = Phase{
		Kind:   PhaseReveal,
		Random: carryRandom,
		Request: &RevealRequest{
			Player: player,
			Reveal: reveal,
			Verify: verify,
		},
	}
	c.suspend()
	return c.Phase.Secret, nil
}

// MutateSecret applies fn to the local copy of player's secret under their
// own private PRNG. A no-op if this replica does not hold that secret.
func (c *Context[E]) MutateSecret(player Player, fn func(secret Secret, rng *rand.Rand) Secret) {
	cell := c.secrets[player]
	if cell == nil {
		return
	}
	cell.Secret = fn(cell.Secret, cell.RNG)
}

// suspend hands control back to the driving goroutine and blocks until it
// is resumed.
func (c *Context[E]) suspend() {
	c.fromCoroutine <- struct{}{}
	<-c.toCoroutine
}

// Start launches fn as the coroutine goroutine and performs the first poll,
// blocking until fn either suspends at its first Random/Reveal/RevealUnique
// call or returns outright. Check Done afterward to tell which happened.
func (c *Context[E]) Start(fn func(ctx *Context[E]) error) {
	c.started = true
	go func() {
		err := fn(c)
		c.finishErr = err
		c.finished = true
		c.fromCoroutine <- struct{}{}
	}()
	<-c.fromCoroutine
}

// Resume signals the parked coroutine to continue — call this only after
// updating c.Phase to reflect the newly delivered StoreAction — and blocks
// until it suspends again or finishes.
func (c *Context[E]) Resume() {
	c.toCoroutine <- struct{}{}
	<-c.fromCoroutine
}

// EventCount returns the current value of the shared event-count counter
// this Context was seeded with, reflecting every Log call made so far —
// including ones made before the most recent suspension.
func (c *Context[E]) EventCount() int { return *c.eventCount }

// Done reports whether the coroutine has returned.
func (c *Context[E]) Done() bool { return c.finished }

// Err returns the coroutine's error result. Only meaningful once Done.
func (c *Context[E]) Err() error { return c.finishErr }
