package store

import (
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
	"github.com/fairhopeweb/arcadeum-state/proof"
)

// RandomSource supplies the local entropy a replica contributes to a
// commit-reveal round: its own 16-byte seed, generated fresh each time
// this replica is the one committing or replying.
type RandomSource interface {
	Seed() [16]byte
}

// Diff is the wire type a Store hands to its send callback and Store.Apply
// consumes —
// an alias over proof.Diff instantiated with this store's action type.
type Diff[A any] = proof.Diff[Action[A]]

// ProofAction is a single authored entry in the action log this store's
// proof.Diff/proof.Apply exchange.
type ProofAction[A any] = proof.ProofAction[Action[A]]

// Store drives one replica's view of a match: the verifiable log
// (proof.Proof), this replica's player slot (nil for the match owner
// acting as a neutral relay/timeout-authority), its local secret, and the
// plumbing (signer, sender, logger, randomness) Flush uses to
// automatically carry a stalled commit-reveal round forward when this
// replica itself is the one who must supply the next sub-action.
type Store[S any, A any, E any] struct {
	adapter *GameAdapter[S, A, E]
	player  *domain.Player

	p       proof.Proof[State[S, E], Action[A]]
	secrets [2]*domain.SecretCell

	sign   proof.Signer
	send   func(Diff[A])
	random RandomSource

	// pendingSeed caches the local seed generated while committing or
	// replying in a commit-reveal round, needed again once the matching
	// reveal is due.
	pendingSeed []byte
}

// OpenRoot constructs and signs the RootProof bytes that open a new match:
// the single piece of data every replica (the owner and both players)
// deserializes an identical copy of to join the same match. Only the party
// opening the match (conventionally the owner) calls this; everyone else
// receives the returned bytes out of band and passes them to NewStore.
func OpenRoot[S any, A any, E any](
	game domain.State[S, A, E],
	adapter cryptoadapter.Adapter,
	id domain.ID,
	players [2]cryptoadapter.Address,
	secrets [2]*domain.SecretCell,
	sign proof.Signer,
) ([]byte, error) {
	ga := &GameAdapter[S, A, E]{Game: game, Crypto: adapter}

	initial := NewReadyState[S, E](game.Challenge(), secrets)
	ps, err := proof.NewProofState[State[S, E], Action[A]](ga, adapter, id, players, initial)
	if err != nil {
		return nil, err
	}

	root, err := proof.NewRootProof[State[S, E], Action[A]](ga, adapter, ps, nil, sign)
	if err != nil {
		return nil, err
	}

	return root.Serialize()
}

// NewStore constructs a Store for player (nil for the owner) from root, the
// bytes OpenRoot produced, and the local secret cells this replica holds
// (nil entries for secrets this replica doesn't hold). Ported from the
// original's Store::new, which likewise takes an already-serialized root
// rather than minting one itself. Does not auto-flush; callers invoke
// Flush themselves once every replica they intend to relay to exists.
func NewStore[S any, A any, E any](
	game domain.State[S, A, E],
	adapter cryptoadapter.Adapter,
	logger *Logger[E],
	player *domain.Player,
	root []byte,
	secrets [2]*domain.SecretCell,
	sign proof.Signer,
	send func(Diff[A]),
	random RandomSource,
) (*Store[S, A, E], error) {
	ga := &GameAdapter[S, A, E]{Game: game, Crypto: adapter, Logger: logger}

	rp, err := proof.DeserializeRootProof[State[S, E], Action[A]](ga, adapter, root)
	if err != nil {
		return nil, err
	}

	st := &Store[S, A, E]{
		adapter: ga,
		player:  player,
		p:       proof.NewProof[State[S, E], Action[A]](ga, adapter, rp),
		secrets: secrets,
		sign:    sign,
		send:    send,
		random:  random,
	}

	return st, nil
}

// Player returns the player this store acts on behalf of, nil for the
// owner.
func (s *Store[S, A, E]) Player() *domain.Player { return s.player }

// State returns the fully-reconstructed current checkpoint.
func (s *Store[S, A, E]) State() *proof.ProofState[State[S, E], Action[A]] {
	return s.p.State()
}

// Hash returns the content hash of the store's current proof.
func (s *Store[S, A, E]) Hash() cryptoadapter.Hash { return s.p.Hash() }

// Dispatch submits a single locally-authored play action, producing and
// both sending and applying the resulting Diff.
func (s *Store[S, A, E]) Dispatch(action A) error {
	pa := ProofAction[A]{
		Player: s.player,
		Action: proof.PlayerAction[Action[A]]{
			Kind:   proof.PlayerActionPlay,
			Action: Action[A]{Kind: ActionPlay, Play: action},
		},
	}
	return s.dispatchAll([]ProofAction[A]{pa})
}

func (s *Store[S, A, E]) dispatchAll(actions []ProofAction[A]) error {
	s.adapter.Logger.Enable(false)
	diff, err := s.p.Diff(actions, s.sign)
	s.adapter.Logger.Enable(true)
	if err != nil {
		return err
	}

	if err := s.p.Apply(&diff); err != nil {
		return err
	}

	if s.send != nil {
		s.send(diff)
	}

	return s.Flush()
}

// Apply verifies and applies a diff produced by Store.Dispatch/DispatchTimeout
// on a store with the same state (typically received from a peer).
func (s *Store[S, A, E]) Apply(diff *Diff[A]) error {
	if err := s.p.Apply(diff); err != nil {
		return err
	}
	return s.Flush()
}

// Flush carries a stalled commit-reveal or secret-reveal round forward
// automatically whenever this replica itself holds what's needed to do so:
// the next sub-action the current Phase awaits, if this replica is the
// player (or the owner) responsible for it and holds the relevant secret.
func (s *Store[S, A, E]) Flush() error {
	for {
		action, ok := s.nextAutomaticAction()
		if !ok {
			return nil
		}
		pa := ProofAction[A]{Player: s.player, Action: proof.PlayerAction[Action[A]]{Kind: proof.PlayerActionPlay, Action: action}}
		if err := s.dispatchAll([]ProofAction[A]{pa}); err != nil {
			return err
		}
	}
}

func (s *Store[S, A, E]) nextAutomaticAction() (Action[A], bool) {
	state := s.p.State()
	st := state.State
	if st.kind != statePending {
		return Action[A]{}, false
	}
	phase := st.pending.ctx.Phase

	switch phase.Kind {
	case domain.PhaseRandomCommit:
		if !isCommitter(s.player) {
			return Action[A]{}, false
		}
		seed := s.random.Seed()
		s.pendingSeed = append([]byte{}, seed[:]...)
		return Action[A]{Kind: ActionRandomCommit, Hash: s.adapter.Crypto.Hash(seed[:])}, true

	case domain.PhaseRandomReply:
		if !isReplier(s.player) {
			return Action[A]{}, false
		}
		seed := s.random.Seed()
		return Action[A]{Kind: ActionRandomReply, Bytes: append([]byte{}, seed[:]...)}, true

	case domain.PhaseRandomReveal:
		if !phase.OwnerHash && !isCommitter(s.player) {
			return Action[A]{}, false
		}
		if phase.OwnerHash && s.player != nil {
			return Action[A]{}, false
		}
		if s.pendingSeed == nil {
			return Action[A]{}, false
		}
		return Action[A]{Kind: ActionRandomReveal, Bytes: s.pendingSeed}, true

	case domain.PhaseReveal:
		request := phase.Request
		if request == nil {
			return Action[A]{}, false
		}
		if s.player != nil && *s.player != request.Player {
			return Action[A]{}, false
		}
		cell := s.secrets[request.Player]
		if cell == nil {
			return Action[A]{}, false
		}
		revealed, err := request.Reveal(cell.Secret)
		if err != nil {
			return Action[A]{}, false
		}
		return Action[A]{Kind: ActionReveal, Bytes: revealed}, true

	default:
		return Action[A]{}, false
	}
}

// DispatchTimeout lets the match owner carry a stalled commit-reveal round
// forward with freshly generated entropy when the responsible player is
// unreachable. Only callable by the owner (player == nil).
func (s *Store[S, A, E]) DispatchTimeout() error {
	if s.player != nil {
		return NewHardError("only the owner may dispatch a timeout")
	}

	state := s.p.State()
	st := state.State
	if st.kind != statePending {
		return nil
	}
	phase := st.pending.ctx.Phase

	var action Action[A]
	switch phase.Kind {
	case domain.PhaseRandomCommit:
		seed := s.random.Seed()
		s.pendingSeed = append([]byte{}, seed[:]...)
		action = Action[A]{Kind: ActionRandomCommit, Hash: s.adapter.Crypto.Hash(seed[:])}
	case domain.PhaseRandomReply:
		seed := s.random.Seed()
		action = Action[A]{Kind: ActionRandomReply, Bytes: append([]byte{}, seed[:]...)}
	case domain.PhaseRandomReveal:
		if s.pendingSeed == nil {
			return NewHardError("no locally committed seed to reveal")
		}
		action = Action[A]{Kind: ActionRandomReveal, Bytes: s.pendingSeed}
	default:
		return nil
	}

	pa := ProofAction[A]{Player: nil, Action: proof.PlayerAction[Action[A]]{Kind: proof.PlayerActionPlay, Action: action}}
	return s.dispatchAll([]ProofAction[A]{pa})
}

// Serialize writes the proof's canonical encoding. It writes no player
// secrets, and this module provides no decoder that rebuilds a Proof or a
// Store from these bytes (proof.DeserializeRootProof reads only a root
// proof's encoding).
func (s *Store[S, A, E]) Serialize() ([]byte, error) {
	return s.p.Serialize()
}
