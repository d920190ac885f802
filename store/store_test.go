package store

import (
	"testing"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter/ethsecp256k1"
	"github.com/fairhopeweb/arcadeum-state/domain"
	"github.com/fairhopeweb/arcadeum-state/game/coin"
	"github.com/fairhopeweb/arcadeum-state/game/tictactoe"
	"github.com/fairhopeweb/arcadeum-state/proof"
)

func rawSigner(signer cryptoadapter.Signer) proof.Signer {
	return func(message []byte) (cryptoadapter.Signature, error) {
		return signer.Sign(signer.Hash(message))
	}
}

// fixedSeed is a RandomSource that always returns the same 16 bytes,
// letting a test predict a coin flip's outcome without touching real
// entropy.
type fixedSeed [16]byte

func (s fixedSeed) Seed() [16]byte { return [16]byte(s) }

func newKeys(t *testing.T) (owner, p0, p1 *ethsecp256k1.Adapter) {
	t.Helper()
	var err error
	if owner, err = ethsecp256k1.Generate(); err != nil {
		t.Fatalf("generate owner key: %v", err)
	}
	if p0, err = ethsecp256k1.Generate(); err != nil {
		t.Fatalf("generate player 0 key: %v", err)
	}
	if p1, err = ethsecp256k1.Generate(); err != nil {
		t.Fatalf("generate player 1 key: %v", err)
	}
	return owner, p0, p1
}

// trio wires an owner replica and both player replicas together with an
// in-process diff relay standing in for a transport, the same pattern
// cmd/arcadeum-play uses to simulate a match across independent Stores.
type trio[S any, A any, E any] struct {
	owner, p0, p1 *Store[S, A, E]
}

func newTrio[S any, A any, E any](
	t *testing.T,
	game domain.State[S, A, E],
	ownerKey, p0Key, p1Key cryptoadapter.Signer,
	secrets [2]*domain.SecretCell,
	random RandomSource,
) *trio[S, A, E] {
	t.Helper()

	players := [2]cryptoadapter.Address{p0Key.Address(), p1Key.Address()}
	root, err := OpenRoot[S, A, E](game, ownerKey, domain.ID{}, players, secrets, rawSigner(ownerKey))
	if err != nil {
		t.Fatalf("OpenRoot: %v", err)
	}

	tr := &trio[S, A, E]{}

	relay := func(name string) func(Diff[A]) {
		return func(diff Diff[A]) {
			for otherName, dst := range map[string]*Store[S, A, E]{"owner": tr.owner, "p0": tr.p0, "p1": tr.p1} {
				if otherName == name || dst == nil {
					continue
				}
				if err := dst.Apply(&diff); err != nil {
					t.Fatalf("relay from %s to %s: %v", name, otherName, err)
				}
			}
		}
	}

	newReplica := func(player *domain.Player, key cryptoadapter.Signer, name string) *Store[S, A, E] {
		logger := NewLogger[E](func(E) {})
		st, err := NewStore[S, A, E](game, key, logger, player, root, secrets, rawSigner(key), relay(name), random)
		if err != nil {
			t.Fatalf("NewStore(%s): %v", name, err)
		}
		return st
	}

	p0, p1 := domain.Player0, domain.Player1
	tr.owner = newReplica(nil, ownerKey, "owner")
	tr.p0 = newReplica(&p0, p0Key, "p0")
	tr.p1 = newReplica(&p1, p1Key, "p1")

	// NewStore never auto-flushes; carry each replica's own starting phase
	// forward explicitly now that all three exist for the relay to reach.
	for name, st := range map[string]*Store[S, A, E]{"owner": tr.owner, "p0": tr.p0, "p1": tr.p1} {
		if err := st.Flush(); err != nil {
			t.Fatalf("Flush(%s): %v", name, err)
		}
	}
	return tr
}

func (tr *trio[S, A, E]) sameHash() bool {
	h := tr.owner.Hash()
	return h == tr.p0.Hash() && h == tr.p1.Hash()
}

func TestOpenRootNewStoreReplicasConverge(t *testing.T) {
	owner, p0, p1 := newKeys(t)
	tr := newTrio[tictactoe.State, tictactoe.Move, tictactoe.Event](
		t, tictactoe.State{}, owner, p0, p1, [2]*domain.SecretCell{}, fixedSeed{},
	)

	moves := []struct {
		actor *Store[tictactoe.State, tictactoe.Move, tictactoe.Event]
		move  tictactoe.Move
	}{
		{tr.p0, tictactoe.Move{Mark: tictactoe.MarkOne, Row: 0, Column: 0}},
		{tr.p1, tictactoe.Move{Mark: tictactoe.MarkTwo, Row: 1, Column: 0}},
		{tr.p0, tictactoe.Move{Mark: tictactoe.MarkOne, Row: 0, Column: 1}},
		{tr.p1, tictactoe.Move{Mark: tictactoe.MarkTwo, Row: 1, Column: 1}},
		{tr.p0, tictactoe.Move{Mark: tictactoe.MarkOne, Row: 0, Column: 2}},
	}

	for i, m := range moves {
		if err := m.actor.Dispatch(m.move); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}

	if !tr.sameHash() {
		t.Fatalf("replicas diverged after a full match")
	}

	final, ok := tr.owner.State().State.Ready()
	if !ok {
		t.Fatalf("owner replica did not settle to a ready state")
	}
	if final.Winner() != tictactoe.MarkOne {
		t.Fatalf("winner = %v, want MarkOne", final.Winner())
	}
}

func TestDispatchRejectsOutOfTurnMove(t *testing.T) {
	owner, p0, p1 := newKeys(t)
	tr := newTrio[tictactoe.State, tictactoe.Move, tictactoe.Event](
		t, tictactoe.State{}, owner, p0, p1, [2]*domain.SecretCell{}, fixedSeed{},
	)

	// It's MarkOne's (player 0's) turn; player 1 tries to move first.
	err := tr.p1.Dispatch(tictactoe.Move{Mark: tictactoe.MarkTwo, Row: 0, Column: 0})
	if err == nil {
		t.Fatalf("expected an out-of-turn move to be rejected")
	}
}

func TestDispatchRejectsCellAlreadyPlayed(t *testing.T) {
	owner, p0, p1 := newKeys(t)
	tr := newTrio[tictactoe.State, tictactoe.Move, tictactoe.Event](
		t, tictactoe.State{}, owner, p0, p1, [2]*domain.SecretCell{}, fixedSeed{},
	)

	if err := tr.p0.Dispatch(tictactoe.Move{Mark: tictactoe.MarkOne, Row: 0, Column: 0}); err != nil {
		t.Fatalf("first move: %v", err)
	}
	if err := tr.p1.Dispatch(tictactoe.Move{Mark: tictactoe.MarkTwo, Row: 0, Column: 0}); err == nil {
		t.Fatalf("expected a move onto an occupied cell to be rejected")
	}
}

func TestCommitRevealRoundResolvesAndConverges(t *testing.T) {
	owner, p0, p1 := newKeys(t)
	seed := fixedSeed{0x11}

	var events []coin.Event
	tr := newTrio[coin.State, coin.Guess, coin.Event](
		t, coin.State{}, owner, p0, p1, [2]*domain.SecretCell{}, seed,
	)

	if err := tr.p0.Dispatch(coin.Guess{Odd: true}); err != nil {
		t.Fatalf("dispatch guess: %v", err)
	}

	if !tr.sameHash() {
		t.Fatalf("replicas diverged after a full commit-reveal round")
	}

	final, ok := tr.p0.State().State.Ready()
	if !ok {
		t.Fatalf("commit-reveal round did not resolve back to a ready state")
	}
	if final.Nonce != 1 {
		t.Fatalf("nonce = %d, want 1 after one resolved turn", final.Nonce)
	}
	_ = events
}

func TestFlushDrivesCommitterAndReplierAutomatically(t *testing.T) {
	owner, p0, p1 := newKeys(t)
	tr := newTrio[coin.State, coin.Guess, coin.Event](
		t, coin.State{}, owner, p0, p1, [2]*domain.SecretCell{}, fixedSeed{0x22},
	)

	if err := tr.p0.Dispatch(coin.Guess{Odd: false}); err != nil {
		t.Fatalf("dispatch guess: %v", err)
	}

	// Every replica must have walked the same Idle->Commit->Reply->Reveal->
	// Idle sequence without any replica being left mid-phase.
	for name, st := range map[string]*Store[coin.State, coin.Guess, coin.Event]{"owner": tr.owner, "p0": tr.p0, "p1": tr.p1} {
		if _, ready := st.State().State.Ready(); !ready {
			t.Fatalf("%s replica left pending after Flush should have resolved it", name)
		}
	}
}

func TestEventLoggerDeliversEachEventOnce(t *testing.T) {
	owner, p0, p1 := newKeys(t)

	players := [2]cryptoadapter.Address{p0.Address(), p1.Address()}
	root, err := OpenRoot[coin.State, coin.Guess, coin.Event](coin.State{}, owner, domain.ID{}, players, [2]*domain.SecretCell{}, rawSigner(owner))
	if err != nil {
		t.Fatalf("OpenRoot: %v", err)
	}

	var stores map[string]*Store[coin.State, coin.Guess, coin.Event]
	relay := func(name string) func(Diff[coin.Guess]) {
		return func(diff Diff[coin.Guess]) {
			for otherName, dst := range stores {
				if otherName == name {
					continue
				}
				if err := dst.Apply(&diff); err != nil {
					t.Fatalf("relay from %s to %s: %v", name, otherName, err)
				}
			}
		}
	}

	var delivered []coin.Event
	p0Player, p1Player := domain.Player0, domain.Player1
	p0Store, err := NewStore[coin.State, coin.Guess, coin.Event](
		coin.State{}, p0, NewLogger[coin.Event](func(e coin.Event) { delivered = append(delivered, e) }),
		&p0Player, root, [2]*domain.SecretCell{}, rawSigner(p0), relay("p0"), fixedSeed{0x33},
	)
	if err != nil {
		t.Fatalf("NewStore(p0): %v", err)
	}
	p1Store, err := NewStore[coin.State, coin.Guess, coin.Event](
		coin.State{}, p1, NewLogger[coin.Event](func(coin.Event) {}), &p1Player, root, [2]*domain.SecretCell{}, rawSigner(p1), relay("p1"), fixedSeed{0x34},
	)
	if err != nil {
		t.Fatalf("NewStore(p1): %v", err)
	}
	stores = map[string]*Store[coin.State, coin.Guess, coin.Event]{"p0": p0Store, "p1": p1Store}

	if err := p0Store.Flush(); err != nil {
		t.Fatalf("Flush(p0): %v", err)
	}
	if err := p1Store.Flush(); err != nil {
		t.Fatalf("Flush(p1): %v", err)
	}

	if err := p0Store.Dispatch(coin.Guess{Odd: true}); err != nil {
		t.Fatalf("dispatch guess: %v", err)
	}

	if len(delivered) != 1 {
		t.Fatalf("expected exactly one delivered event, got %d", len(delivered))
	}
}

func TestDispatchTimeoutCarriesStalledRoundForward(t *testing.T) {
	owner, p0, p1 := newKeys(t)

	players := [2]cryptoadapter.Address{p0.Address(), p1.Address()}
	root, err := OpenRoot[coin.State, coin.Guess, coin.Event](coin.State{}, owner, domain.ID{}, players, [2]*domain.SecretCell{}, rawSigner(owner))
	if err != nil {
		t.Fatalf("OpenRoot: %v", err)
	}

	// Player 0 plays alone, off the wire, so its own guess and commitment
	// never reach the owner live (an owner replica watching in real time
	// would race player 0 to supply the commitment itself). Capturing the
	// diffs lets the owner catch up afterward exactly as a relay would
	// deliver them following a real network delay.
	var captured []Diff[coin.Guess]
	p0Player := domain.Player0
	p0Store, err := NewStore[coin.State, coin.Guess, coin.Event](
		coin.State{}, p0, NewLogger[coin.Event](func(coin.Event) {}), &p0Player, root, [2]*domain.SecretCell{}, rawSigner(p0),
		func(d Diff[coin.Guess]) { captured = append(captured, d) }, fixedSeed{0x55},
	)
	if err != nil {
		t.Fatalf("NewStore(p0): %v", err)
	}
	if err := p0Store.Flush(); err != nil {
		t.Fatalf("Flush(p0): %v", err)
	}
	if err := p0Store.Dispatch(coin.Guess{Odd: true}); err != nil {
		t.Fatalf("dispatch guess: %v", err)
	}
	if len(captured) != 2 {
		t.Fatalf("expected player 0 to self-supply its guess and commitment, captured %d diffs", len(captured))
	}

	ownerStore, err := NewStore[coin.State, coin.Guess, coin.Event](
		coin.State{}, owner, NewLogger[coin.Event](func(coin.Event) {}), nil, root, [2]*domain.SecretCell{}, rawSigner(owner),
		func(Diff[coin.Guess]) {}, fixedSeed{0x44},
	)
	if err != nil {
		t.Fatalf("NewStore(owner): %v", err)
	}
	if err := ownerStore.Flush(); err != nil {
		t.Fatalf("Flush(owner): %v", err)
	}

	// Apply the captured diffs against the underlying proof directly,
	// bypassing Store.Apply's automatic Flush, so the owner's local view
	// honestly reflects player 0's own guess and commitment instead of
	// racing ahead to supply a commitment of its own.
	for i, d := range captured {
		if err := ownerStore.p.Apply(&d); err != nil {
			t.Fatalf("apply captured diff %d to owner: %v", i, err)
		}
	}

	if _, ready := ownerStore.State().State.Ready(); ready {
		t.Fatalf("round should still be stalled awaiting player 1's reply")
	}
	if err := ownerStore.DispatchTimeout(); err != nil {
		t.Fatalf("DispatchTimeout: %v", err)
	}
	if _, ready := ownerStore.State().State.Ready(); ready {
		t.Fatalf("round should still be stalled awaiting player 0's reveal, which only player 0 holds the seed for")
	}

	// The owner never committed, so it holds no seed of its own to reveal;
	// a second timeout call must refuse rather than silently doing nothing.
	if err := ownerStore.DispatchTimeout(); err == nil {
		t.Fatalf("expected a second timeout to fail: the owner cannot reveal a seed it never committed")
	}
}

func TestDispatchTimeoutRejectsNonOwner(t *testing.T) {
	owner, p0, p1 := newKeys(t)
	tr := newTrio[coin.State, coin.Guess, coin.Event](
		t, coin.State{}, owner, p0, p1, [2]*domain.SecretCell{}, fixedSeed{0x66},
	)

	if err := tr.p0.DispatchTimeout(); err == nil {
		t.Fatalf("expected DispatchTimeout to be refused by a non-owner replica")
	}
}

func TestSerializeProducesStableProofBytes(t *testing.T) {
	owner, p0, p1 := newKeys(t)
	tr := newTrio[tictactoe.State, tictactoe.Move, tictactoe.Event](
		t, tictactoe.State{}, owner, p0, p1, [2]*domain.SecretCell{}, fixedSeed{},
	)

	if err := tr.p0.Dispatch(tictactoe.Move{Mark: tictactoe.MarkOne, Row: 0, Column: 0}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	a, err := tr.owner.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b, err := tr.p0.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("converged replicas produced different serialized proofs")
	}
}
