package proof

import (
	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// Signer signs the canonical message bytes for a checkpoint plus its
// trailing action log and returns the recoverable signature.
type Signer func(message []byte) (cryptoadapter.Signature, error)

// RootProof is the opening position the match owner signs: a checkpoint
// plus whatever actions (typically certifications) collapse the match
// owner's own starting actions into a single serializable state.
type RootProof[S any, A any] struct {
	game Game[S, A]
	adapter cryptoadapter.Adapter

	state     ProofState[S, A]
	actions   []ProofAction[A]
	signature cryptoadapter.Signature
	hash      cryptoadapter.Hash
	author    cryptoadapter.Address
	latest    ProofState[S, A]
}

// NewRootProof folds actions onto state (collapsing any serializable
// prefix into the checkpoint itself, as Proof.diff/Proof.apply do) and has
// sign produce the author's signature over the result.
func NewRootProof[S any, A any](game Game[S, A], adapter cryptoadapter.Adapter, state ProofState[S, A], actions []ProofAction[A], sign Signer) (RootProof[S, A], error) {
	checkpoint := state.Clone()
	start := 0
	latest := state.Clone()

	// The root's own opening actions are replayed before the signature that
	// would establish the owner's address exists, so a PlayerActionApprove
	// among them can never recover to a real owner — opening actions are
	// limited to Play/Certify in practice (see Store.OpenRoot, which always
	// passes a nil action list).
	for i, action := range actions {
		if err := latest.Apply(action, cryptoadapter.Address{}); err != nil {
			return RootProof[S, A]{}, err
		}
		if game.IsSerializable(latest.State) {
			checkpoint = latest.Clone()
			start = i + 1
		}
	}

	tail := actions[start:]

	message, err := messageBytes(&checkpoint, tail)
	if err != nil {
		return RootProof[S, A]{}, err
	}

	signature, err := sign(message)
	if err != nil {
		return RootProof[S, A]{}, err
	}

	author, err := adapter.Recover(adapter.Hash(message), signature)
	if err != nil {
		return RootProof[S, A]{}, NewHardError("root proof signature does not recover: %v", err)
	}

	rp := RootProof[S, A]{
		game:      game,
		adapter:   adapter,
		state:     checkpoint,
		actions:   tail,
		signature: signature,
		author:    author,
		latest:    latest,
	}
	rp.hash = rp.computeHash()

	return rp, nil
}

// DeserializeRootProof reads a root proof previously written by Serialize,
// replaying its action log to validate it and recovering the author.
func DeserializeRootProof[S any, A any](game Game[S, A], adapter cryptoadapter.Adapter, data []byte) (RootProof[S, A], error) {
	r := codec.NewReader(data)

	size, err := r.ReadUint32()
	if err != nil {
		return RootProof[S, A]{}, err
	}
	stateBytes, err := r.ReadRaw(int(size))
	if err != nil {
		return RootProof[S, A]{}, err
	}
	state, err := DeserializeProofState[S, A](game, adapter, codec.NewReader(stateBytes))
	if err != nil {
		return RootProof[S, A]{}, err
	}

	count, err := r.ReadUint32()
	if err != nil {
		return RootProof[S, A]{}, err
	}

	actions := make([]ProofAction[A], 0, count)
	latest := state.Clone()

	for i := uint32(0); i < count; i++ {
		asize, err := r.ReadUint32()
		if err != nil {
			return RootProof[S, A]{}, err
		}
		abytes, err := r.ReadRaw(int(asize))
		if err != nil {
			return RootProof[S, A]{}, err
		}
		action, err := DeserializeProofAction[A](codec.NewReader(abytes), game.DeserializeAction)
		if err != nil {
			return RootProof[S, A]{}, err
		}

		if err := latest.Apply(action, cryptoadapter.Address{}); err != nil {
			return RootProof[S, A]{}, err
		}
		if game.IsSerializable(latest.State) {
			return RootProof[S, A]{}, NewHardError("root proof action log is not minimal at index %d", i)
		}

		actions = append(actions, action)
	}

	sig, err := r.ReadSignature()
	if err != nil {
		return RootProof[S, A]{}, err
	}

	message, err := messageBytes(&state, actions)
	if err != nil {
		return RootProof[S, A]{}, err
	}

	author, err := adapter.Recover(adapter.Hash(message), sig)
	if err != nil {
		return RootProof[S, A]{}, NewHardError("root proof signature does not recover: %v", err)
	}

	rp := RootProof[S, A]{
		game:      game,
		adapter:   adapter,
		state:     state,
		actions:   actions,
		signature: sig,
		hash:      adapter.Hash(data),
		author:    author,
		latest:    latest,
	}

	return rp, nil
}

// Serialize writes the canonical encoding of the root proof.
func (rp *RootProof[S, A]) Serialize() ([]byte, error) {
	w := codec.NewWriter()

	stateW := codec.NewWriter()
	if !rp.state.Serialize(stateW) {
		return nil, NewHardError("root proof checkpoint is not serializable")
	}
	w.WriteBytes(stateW.Bytes())

	w.WriteUint32(uint32(len(rp.actions)))
	for _, action := range rp.actions {
		actionW := codec.NewWriter()
		if err := action.Serialize(actionW, rp.game.SerializeAction); err != nil {
			return nil, err
		}
		w.WriteBytes(actionW.Bytes())
	}

	w.WriteSignature(rp.signature)

	return w.Bytes(), nil
}

// Hash returns the content hash of the serialized root proof.
func (rp *RootProof[S, A]) Hash() cryptoadapter.Hash { return rp.hash }

// Author returns the address that signed the root proof.
func (rp *RootProof[S, A]) Author() cryptoadapter.Address { return rp.author }

// State returns the fully-replayed latest state (checkpoint plus tail
// actions applied).
func (rp *RootProof[S, A]) State() ProofState[S, A] { return rp.latest }

func (rp *RootProof[S, A]) computeHash() cryptoadapter.Hash {
	data, err := rp.Serialize()
	if err != nil {
		return cryptoadapter.Hash{}
	}
	return rp.adapter.Hash(data)
}

// messageBytes builds the bytes a root proof / diff signature covers: the
// checkpoint's canonical encoding followed by the flat concatenation of
// the trailing actions' canonical encodings, with no length prefix on the
// state or the action list (unlike the wire format). Signer and verifier
// both build the message here — see DESIGN.md.
func messageBytes[S any, A any](state *ProofState[S, A], actions []ProofAction[A]) ([]byte, error) {
	w := codec.NewWriter()
	if !state.Serialize(w) {
		return nil, NewHardError("checkpoint is not serializable")
	}
	for _, action := range actions {
		if err := action.Serialize(w, state.Game.SerializeAction); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}
