package proof

import (
	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

// playerProof is one of the up to three signed checkpoints a Proof carries
// at once: index 0 is the owner's proof over the full log, indices 1 and 2
// are player 0's and player 1's proofs over the suffix each has personally
// witnessed and signed.
type playerProof[S any, A any] struct {
	state     ProofState[S, A]
	start     int
	end       int
	signature cryptoadapter.Signature
}

// Proof is the full verifiable action log for a match: the root both
// players signed onto, the actions appended since, and up to three
// overlapping signed checkpoints used to reconstruct the freshest
// known-good state and to verify incoming Diffs. This is the heart of the
// engine.
type Proof[S any, A any] struct {
	game    Game[S, A]
	adapter cryptoadapter.Adapter

	root    RootProof[S, A]
	actions []ProofAction[A]
	proofs  [3]*playerProof[S, A]
	hash    cryptoadapter.Hash
	state   ProofState[S, A]
}

// NewProof starts a Proof from a signed RootProof, with no actions beyond
// what the root already carries.
func NewProof[S any, A any](game Game[S, A], adapter cryptoadapter.Adapter, root RootProof[S, A]) Proof[S, A] {
	actions := append([]ProofAction[A]{}, root.actions...)

	p := Proof[S, A]{
		game:    game,
		adapter: adapter,
		root:    root,
		actions: actions,
		proofs: [3]*playerProof[S, A]{
			{state: root.state.Clone(), start: 0, end: len(actions), signature: root.signature},
			nil,
			nil,
		},
	}
	p.state = p.computeState()
	p.hash = p.computeHash()
	return p
}

// Hash returns the content hash of the proof's current canonical encoding.
func (p *Proof[S, A]) Hash() cryptoadapter.Hash { return p.hash }

// State returns the fully-reconstructed latest state.
func (p *Proof[S, A]) State() *ProofState[S, A] { return &p.state }

func (p *Proof[S, A]) freshest() *playerProof[S, A] {
	var best *playerProof[S, A]
	for _, pr := range p.proofs {
		if pr == nil {
			continue
		}
		if best == nil || pr.end > best.end {
			best = pr
		}
	}
	return best
}

func (p *Proof[S, A]) computeState() ProofState[S, A] {
	fresh := p.freshest()
	state := fresh.state.Clone()
	for _, action := range p.actions[fresh.start:] {
		if err := state.Apply(action, p.root.author); err != nil {
			panic("proof: locally reconstructed action log failed to replay: " + err.Error())
		}
	}
	return state
}

func (p *Proof[S, A]) computeHash() cryptoadapter.Hash {
	data, err := p.Serialize()
	if err != nil {
		return cryptoadapter.Hash{}
	}
	return p.adapter.Hash(data)
}

// Serialize writes the canonical encoding: the minimal (earliest-starting)
// checkpoint, the full action log, and the up-to-three signed ranges.
func (p *Proof[S, A]) Serialize() ([]byte, error) {
	var minimal *playerProof[S, A]
	for _, pr := range p.proofs {
		if pr != nil && pr.start == 0 {
			minimal = pr
			break
		}
	}
	if minimal == nil {
		return nil, NewHardError("proof has no minimal (start==0) checkpoint")
	}

	w := codec.NewWriter()

	stateW := codec.NewWriter()
	if !minimal.state.Serialize(stateW) {
		return nil, NewHardError("minimal checkpoint is not serializable")
	}
	w.WriteBytes(stateW.Bytes())

	w.WriteUint32(uint32(len(p.actions)))
	for _, action := range p.actions {
		actionW := codec.NewWriter()
		if err := action.Serialize(actionW, p.game.SerializeAction); err != nil {
			return nil, err
		}
		w.WriteBytes(actionW.Bytes())
	}

	for _, pr := range p.proofs {
		if pr == nil {
			w.WriteByte(0)
			continue
		}
		w.WriteByte(1)
		w.WriteUint32(uint32(pr.start))
		w.WriteUint32(uint32(pr.end))
		w.WriteSignature(pr.signature)
	}

	return w.Bytes(), nil
}

// Apply verifies diff against the proof's current hash and folds it in,
// advancing to the freshest state it attests to. Returns a SlashableError
// (carrying diff's own bytes as evidence) if diff is well-formed but its
// author is not recognized, the domain transition or a signature check
// rejects it; a HardError for malformed input or a diff that does not
// extend the current hash.
func (p *Proof[S, A]) Apply(diff *Diff[A]) error {
	if diff.Proof != p.hash {
		return NewHardError("diff does not extend this proof's current hash")
	}

	var player *domain.Player
	if diff.author != p.root.author {
		player = p.state.Player(diff.author)
		if player == nil {
			evidence, evErr := diff.Serialize(p.game.SerializeAction)
			return p.slashable(evidence, evErr, "diff author is not a recognized player or the owner")
		}
	}

	fresh := p.freshest()
	state := fresh.state.Clone()
	start := fresh.start

	latest := p.computeState()

	evidence, evErr := diff.Serialize(p.game.SerializeAction)

	for i, action := range diff.Actions {
		if !domain.SamePlayer(action.Player, player) {
			return p.slashable(evidence, evErr, "diff action %d authored by a different player than the diff itself", i)
		}
		if err := latest.Apply(action, p.root.author); err != nil {
			return p.slashable(evidence, evErr, "diff action %d rejected: %v", i, err)
		}
		if p.game.IsSerializable(latest.State) {
			state = latest.Clone()
			start = len(p.actions) + i + 1
		}
	}

	if player == nil {
		return p.applyOwner(diff, state, start, latest)
	}
	return p.applyPlayer(diff, *player, state, start, latest)
}

func (p *Proof[S, A]) slashable(evidence []byte, evErr error, format string, args ...any) error {
	if evErr != nil {
		evidence = nil
	}
	return NewSlashableError(evidence, format, args...)
}

func (p *Proof[S, A]) applyOwner(diff *Diff[A], state ProofState[S, A], start int, latest ProofState[S, A]) error {
	var actions []ProofAction[A]
	if start < len(p.actions) {
		actions = append(actions, p.actions[start:]...)
		actions = append(actions, diff.Actions...)
	} else {
		actions = append(actions, diff.Actions[start-len(p.actions):]...)
	}

	message, err := messageBytes(&state, actions)
	if err != nil {
		return NewHardError("%v", err)
	}
	recovered, err := p.adapter.Recover(p.adapter.Hash(message), diff.ProofSignature)
	if err != nil || recovered != p.root.author {
		return NewSlashableError(mustSerializeDiff(p, diff), "owner diff signature does not recover to the root author")
	}

	p.proofs = [3]*playerProof[S, A]{
		{state: state, start: 0, end: len(actions), signature: diff.ProofSignature},
		nil,
		nil,
	}
	p.actions = actions
	p.hash = p.computeHash()
	p.state = latest
	return nil
}

func (p *Proof[S, A]) applyPlayer(diff *Diff[A], player domain.Player, state ProofState[S, A], start int, latest ProofState[S, A]) error {
	idx := int(player)

	consensus := true
	for i := 0; i < 2; i++ {
		if i == idx {
			continue
		}
		if p.proofs[1+i] == nil {
			consensus = false
			break
		}
	}

	offset := start
	if consensus {
		for i := 0; i < 2; i++ {
			if i == idx {
				continue
			}
			if p.proofs[1+i].start < offset {
				offset = p.proofs[1+i].start
			}
		}
	} else {
		if p.proofs[0] != nil && p.proofs[0].start < offset {
			offset = p.proofs[0].start
		}
		for i := 0; i < 2; i++ {
			if i == idx {
				continue
			}
			if p.proofs[1+i] != nil && p.proofs[1+i].start < offset {
				offset = p.proofs[1+i].start
			}
		}
	}

	actions := append([]ProofAction[A]{}, p.actions[offset:]...)
	actions = append(actions, diff.Actions...)

	signed := actions[start-offset:]
	message, err := messageBytes(&state, signed)
	if err != nil {
		return NewHardError("%v", err)
	}

	recovered, err := p.adapter.Recover(p.adapter.Hash(message), diff.ProofSignature)
	if err != nil {
		return NewSlashableError(mustSerializeDiff(p, diff), "player diff signature does not recover: %v", err)
	}
	if latest.Player(recovered) == nil || *latest.Player(recovered) != player {
		return NewSlashableError(mustSerializeDiff(p, diff), "player diff signature does not recover to the claimed player")
	}

	p.proofs[1+idx] = &playerProof[S, A]{state: state, start: start, end: len(p.actions) + len(diff.Actions), signature: diff.ProofSignature}
	if consensus {
		p.proofs[0] = nil
	}

	for i := range p.proofs {
		if p.proofs[i] != nil {
			p.proofs[i].start -= offset
			p.proofs[i].end -= offset
		}
	}

	p.actions = actions
	p.hash = p.computeHash()
	p.state = latest
	return nil
}

func mustSerializeDiff[S any, A any](p *Proof[S, A], diff *Diff[A]) []byte {
	data, err := diff.Serialize(p.game.SerializeAction)
	if err != nil {
		return nil
	}
	return data
}

// Diff replays actions (which must all share the same author, nil or a
// single player) on top of the proof's current state and produces a
// signed Diff a peer or dispute resolver can apply.
func (p *Proof[S, A]) Diff(actions []ProofAction[A], sign Signer) (Diff[A], error) {
	if len(actions) == 0 {
		return Diff[A]{}, NewHardError("diff requires at least one action")
	}

	fresh := p.freshest()
	state := fresh.state.Clone()
	start := fresh.start

	latest := p.computeState()

	author := actions[0].Player
	for i, action := range actions {
		if !domain.SamePlayer(action.Player, author) {
			return Diff[A]{}, NewHardError("diff action %d authored by a different player than the first action", i)
		}
		if err := latest.Apply(action, p.root.author); err != nil {
			return Diff[A]{}, err
		}
		if p.game.IsSerializable(latest.State) {
			state = latest.Clone()
			start = len(p.actions) + i + 1
		}
	}

	var message []byte
	var err error
	if start < len(p.actions) {
		message, err = messageBytes(&state, append(append([]ProofAction[A]{}, p.actions[start:]...), actions...))
	} else {
		message, err = messageBytes(&state, actions[start-len(p.actions):])
	}
	if err != nil {
		return Diff[A]{}, err
	}

	signature, err := sign(message)
	if err != nil {
		return Diff[A]{}, err
	}

	signingAuthor, err := p.adapter.Recover(p.adapter.Hash(message), signature)
	if err != nil {
		return Diff[A]{}, NewHardError("diff signature does not recover: %v", err)
	}
	if signingAuthor != p.root.author {
		recoveredPlayer := latest.Player(signingAuthor)
		if recoveredPlayer == nil {
			return Diff[A]{}, NewHardError("diff signer is not a recognized player or the owner")
		}
		if author != nil && *author != *recoveredPlayer {
			return Diff[A]{}, NewHardError("diff signer does not match the actions' declared author")
		}
	}

	return NewDiff(p.adapter, p.game.SerializeAction, p.hash, actions, signature, sign)
}
