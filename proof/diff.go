package proof

import (
	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// Diff is an incremental append a replica submits to a peer or to an
// on-chain dispute resolver: the hash of the Proof it extends, the
// appended actions, the submitter's own signature over the freshest
// checkpoint's encoding followed by every action since that checkpoint
// (messageBytes), and an outer signature over the whole Diff
// (minus itself) that lets a recipient attribute the Diff to its sender
// independent of who authored the actions inside it.
type Diff[A any] struct {
	Proof          cryptoadapter.Hash
	Actions        []ProofAction[A]
	ProofSignature cryptoadapter.Signature
	signature      cryptoadapter.Signature
	author         cryptoadapter.Address
}

// NewDiff constructs a Diff and has sign produce the outer attribution
// signature.
func NewDiff[A any](adapter cryptoadapter.Adapter, serializeAction func(*codec.Writer, A) error, proofHash cryptoadapter.Hash, actions []ProofAction[A], proofSignature cryptoadapter.Signature, sign Signer) (Diff[A], error) {
	d := Diff[A]{Proof: proofHash, Actions: actions, ProofSignature: proofSignature}

	body, err := d.serializeBody(serializeAction)
	if err != nil {
		return Diff[A]{}, err
	}

	sig, err := sign(body)
	if err != nil {
		return Diff[A]{}, err
	}
	d.signature = sig

	author, err := adapter.Recover(adapter.Hash(body), sig)
	if err != nil {
		return Diff[A]{}, NewHardError("diff signature does not recover: %v", err)
	}
	d.author = author

	return d, nil
}

// Author returns the address that produced the Diff's outer signature.
func (d *Diff[A]) Author() cryptoadapter.Address { return d.author }

func (d *Diff[A]) serializeBody(serializeAction func(*codec.Writer, A) error) ([]byte, error) {
	w := codec.NewWriter()
	w.WriteHash(d.Proof)
	w.WriteUint32(uint32(len(d.Actions)))
	for _, action := range d.Actions {
		actionW := codec.NewWriter()
		if err := action.Serialize(actionW, serializeAction); err != nil {
			return nil, err
		}
		w.WriteBytes(actionW.Bytes())
	}
	w.WriteSignature(d.ProofSignature)
	return w.Bytes(), nil
}

// Serialize writes the canonical encoding of the Diff, including the
// outer attribution signature.
func (d *Diff[A]) Serialize(serializeAction func(*codec.Writer, A) error) ([]byte, error) {
	body, err := d.serializeBody(serializeAction)
	if err != nil {
		return nil, err
	}
	w := codec.NewWriter()
	w.WriteRaw(body)
	w.WriteSignature(d.signature)
	return w.Bytes(), nil
}

// DeserializeDiff reads a Diff previously written by Serialize, recovering
// its attributed author.
func DeserializeDiff[A any](adapter cryptoadapter.Adapter, deserializeAction func(*codec.Reader) (A, error), data []byte) (Diff[A], error) {
	var d Diff[A]

	if len(data) < cryptoadapter.SignatureLength {
		return d, NewHardError("diff too short")
	}
	body := data[:len(data)-cryptoadapter.SignatureLength]
	sig := cryptoadapter.BytesToSignature(data[len(data)-cryptoadapter.SignatureLength:])

	author, err := adapter.Recover(adapter.Hash(body), sig)
	if err != nil {
		return d, NewHardError("diff signature does not recover: %v", err)
	}

	r := codec.NewReader(body)

	hash, err := r.ReadHash()
	if err != nil {
		return d, err
	}

	count, err := r.ReadUint32()
	if err != nil {
		return d, err
	}

	actions := make([]ProofAction[A], 0, count)
	for i := uint32(0); i < count; i++ {
		size, err := r.ReadUint32()
		if err != nil {
			return d, err
		}
		abytes, err := r.ReadRaw(int(size))
		if err != nil {
			return d, err
		}
		action, err := DeserializeProofAction[A](codec.NewReader(abytes), deserializeAction)
		if err != nil {
			return d, err
		}
		actions = append(actions, action)
	}

	proofSig, err := r.ReadSignature()
	if err != nil {
		return d, err
	}
	if !r.Done() {
		return d, NewHardError("trailing bytes after diff body")
	}

	return Diff[A]{
		Proof:          hash,
		Actions:        actions,
		ProofSignature: proofSig,
		signature:      sig,
		author:         author,
	}, nil
}
