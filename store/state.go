package store

import (
	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

type stateKind uint8

const (
	stateReady stateKind = iota
	statePending
)

// pendingInfo carries the suspended coroutine and the cell its eventual
// result lands in.
type pendingInfo[S any, E any] struct {
	ctx      *domain.Context[E]
	result   *S
	proposer *domain.Player
}

// State is the checkpoint-able value a Store's Proof actually operates
// over: either Ready (a fully resolved game state between transitions) or
// Pending (a transition suspended mid commit-reveal or secret-reveal
// sub-protocol). Only Ready values are ever serialized as a proof
// checkpoint — see GameAdapter.IsSerializable.
type State[S any, E any] struct {
	kind       stateKind
	state      S
	eventCount int
	secrets    [2]*domain.SecretCell
	pending    *pendingInfo[S, E]
}

// NewReadyState wraps the initial game state (the Challenge()) as the
// starting Ready value a match's RootProof checkpoints.
func NewReadyState[S any, E any](state S, secrets [2]*domain.SecretCell) State[S, E] {
	return State[S, E]{kind: stateReady, state: state, secrets: secrets}
}

// Ready reports whether this value is fully resolved, and if so returns
// the wrapped game state.
func (s State[S, E]) Ready() (S, bool) {
	return s.state, s.kind == stateReady
}

// GameAdapter adapts a domain.State[S, A, E] game into the proof.Game a
// proof.Proof[State[S,E], Action[A]] operates over, driving the
// suspendable ApplyAction coroutine to completion across one or more
// dispatched Actions.
type GameAdapter[S any, A any, E any] struct {
	Game   domain.State[S, A, E]
	Crypto cryptoadapter.Adapter
	// Logger deduplicates and delivers every domain event Log produces.
	Logger *Logger[E]
}

func (g *GameAdapter[S, A, E]) emit(count int, event E) {
	if g.Logger != nil {
		g.Logger.Emit(count, event)
	}
}

// IsSerializable implements proof.Game.
func (g *GameAdapter[S, A, E]) IsSerializable(st State[S, E]) bool {
	return st.kind == stateReady
}

// Serialize implements proof.Game.
func (g *GameAdapter[S, A, E]) Serialize(w *codec.Writer, st State[S, E]) error {
	if st.kind != stateReady {
		return NewHardError("cannot serialize a pending state")
	}
	w.WriteUint64(uint64(st.eventCount))
	return g.Game.Serialize(w, st.state)
}

// Deserialize implements proof.Game.
func (g *GameAdapter[S, A, E]) Deserialize(r *codec.Reader) (State[S, E], error) {
	count, err := r.ReadUint64()
	if err != nil {
		return State[S, E]{}, err
	}
	state, err := g.Game.Deserialize(r)
	if err != nil {
		return State[S, E]{}, err
	}
	return State[S, E]{kind: stateReady, state: state, eventCount: int(count)}, nil
}

// SerializeAction implements proof.Game.
func (g *GameAdapter[S, A, E]) SerializeAction(w *codec.Writer, action Action[A]) error {
	return SerializeAction(w, action, g.Game.SerializeAction)
}

// DeserializeAction implements proof.Game.
func (g *GameAdapter[S, A, E]) DeserializeAction(r *codec.Reader) (Action[A], error) {
	return DeserializeAction(r, g.Game.DeserializeAction)
}

// Approval implements proof.Game by delegating to the wrapped domain.State.
func (g *GameAdapter[S, A, E]) Approval(player, subkey cryptoadapter.Address) string {
	return g.Game.Approval(player, subkey)
}

// Apply implements proof.Game, driving the transition coroutine across
// Ready->Pending->...->Ready as successive Actions resolve its
// suspensions.
func (g *GameAdapter[S, A, E]) Apply(st State[S, E], player *domain.Player, action Action[A]) (State[S, E], error) {
	switch st.kind {
	case stateReady:
		if action.Kind != ActionPlay {
			return State[S, E]{}, NewHardError("action kind %d is not valid against a ready state", action.Kind)
		}
		return g.startTransition(st, player, action.Play)
	case statePending:
		return g.resumeTransition(st, player, action)
	default:
		return State[S, E]{}, NewHardError("invalid internal state kind")
	}
}

func (g *GameAdapter[S, A, E]) startTransition(st State[S, E], player *domain.Player, play A) (State[S, E], error) {
	eventCount := st.eventCount
	var result S

	ctx := domain.NewContext[E](st.secrets, &eventCount, g.emit)
	ctx.Start(func(c *domain.Context[E]) error {
		next, err := g.Game.ApplyAction(c, player, play)
		result = next
		return err
	})

	return g.settle(ctx, &result, st.secrets, player)
}

func (g *GameAdapter[S, A, E]) resumeTransition(st State[S, E], player *domain.Player, action Action[A]) (State[S, E], error) {
	p := st.pending
	if p == nil {
		return State[S, E]{}, NewHardError("pending state missing its coroutine")
	}

	switch p.ctx.Phase.Kind {
	case domain.PhaseRandomCommit:
		if action.Kind != ActionRandomCommit {
			return State[S, E]{}, NewHardError("expected a random commitment, got action kind %d", action.Kind)
		}
		if !isCommitter(player) {
			return State[S, E]{}, NewHardError("random commitment must come from player 0 or the owner")
		}
		p.ctx.Phase = domain.Phase{Kind: domain.PhaseRandomReply, Hash: action.Hash, OwnerHash: player == nil}
		return g.pendingResult(st, p), nil

	case domain.PhaseRandomReply:
		if action.Kind != ActionRandomReply {
			return State[S, E]{}, NewHardError("expected a random reply, got action kind %d", action.Kind)
		}
		if !isReplier(player) {
			return State[S, E]{}, NewHardError("random reply must come from player 1 or the owner")
		}
		p.ctx.Phase = domain.Phase{Kind: domain.PhaseRandomReveal, Hash: p.ctx.Phase.Hash, OwnerHash: p.ctx.Phase.OwnerHash, Reply: action.Bytes}
		return g.pendingResult(st, p), nil

	case domain.PhaseRandomReveal:
		if action.Kind != ActionRandomReveal {
			return State[S, E]{}, NewHardError("expected a random reveal, got action kind %d", action.Kind)
		}
		phase := p.ctx.Phase
		if !phase.OwnerHash {
			if g.Crypto.Hash(action.Bytes) != phase.Hash {
				return State[S, E]{}, NewHardError("revealed seed does not match its commitment")
			}
		}
		seed, err := combineSeeds(action.Bytes, phase.Reply)
		if err != nil {
			return State[S, E]{}, err
		}
		p.ctx.Phase = domain.Phase{Kind: domain.PhaseIdle, Random: domain.NewRand(seed)}
		p.ctx.Resume()
		return g.settle(p.ctx, p.result, st.secrets, p.proposer)

	case domain.PhaseReveal:
		if action.Kind != ActionReveal {
			return State[S, E]{}, NewHardError("expected a secret reveal, got action kind %d", action.Kind)
		}
		request := p.ctx.Phase.Request
		if request == nil {
			return State[S, E]{}, NewHardError("reveal phase missing its request")
		}
		if player != nil && *player != request.Player {
			return State[S, E]{}, NewHardError("reveal submitted by the wrong player")
		}
		if err := request.Verify(action.Bytes); err != nil {
			return State[S, E]{}, NewHardError("revealed secret failed verification: %v", err)
		}
		p.ctx.Phase = domain.Phase{Kind: domain.PhaseIdle, Random: p.ctx.Phase.Random, Secret: action.Bytes}
		p.ctx.Resume()
		return g.settle(p.ctx, p.result, st.secrets, p.proposer)

	default:
		return State[S, E]{}, NewHardError("pending state in an unexpected phase")
	}
}

func (g *GameAdapter[S, A, E]) pendingResult(st State[S, E], p *pendingInfo[S, E]) State[S, E] {
	return State[S, E]{kind: statePending, eventCount: st.eventCount, secrets: st.secrets, pending: p}
}

func (g *GameAdapter[S, A, E]) settle(ctx *domain.Context[E], result *S, secrets [2]*domain.SecretCell, proposer *domain.Player) (State[S, E], error) {
	eventCount := ctx.EventCount()
	if ctx.Done() {
		if err := ctx.Err(); err != nil {
			return State[S, E]{}, err
		}
		return State[S, E]{kind: stateReady, state: *result, eventCount: eventCount, secrets: secrets}, nil
	}
	return State[S, E]{
		kind:       statePending,
		eventCount: eventCount,
		secrets:    secrets,
		pending:    &pendingInfo[S, E]{ctx: ctx, result: result, proposer: proposer},
	}, nil
}

func isCommitter(player *domain.Player) bool {
	return player == nil || *player == domain.Player0
}

func isReplier(player *domain.Player) bool {
	return player == nil || *player == domain.Player1
}

// combineSeeds XORs a committer's revealed seed with the replier's reply
// bytes into the 16-byte value that seeds the shared PRNG: combined
// entropy = seed XOR reply.
func combineSeeds(seed, reply []byte) ([16]byte, error) {
	var combined [16]byte
	if len(seed) != 16 || len(reply) != 16 {
		return combined, NewHardError("commit-reveal seed/reply must each be 16 bytes")
	}
	for i := range combined {
		combined[i] = seed[i] ^ reply[i]
	}
	return combined, nil
}
