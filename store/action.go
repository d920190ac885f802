// Package store drives the commit-reveal and secret-reveal sub-protocols a
// domain.State transition may suspend on, wrapping a plain domain.State
// game into the proof.Game a proof.Proof operates over.
package store

import (
	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// ActionKind distinguishes a plain domain move from one of the four
// commit-reveal / secret-reveal sub-protocol messages.
type ActionKind uint8

const (
	ActionPlay ActionKind = iota
	ActionRandomCommit
	ActionRandomReply
	ActionRandomReveal
	ActionReveal
)

// Action is the action type a Store's underlying Proof actually carries:
// either a plain domain move, or one leg of the commit-reveal/secret-reveal
// sub-protocol a suspended transition is waiting on.
type Action[A any] struct {
	Kind ActionKind

	// Valid when Kind == ActionPlay.
	Play A

	// Valid when Kind == ActionRandomCommit: the committer's commitment
	// hash over their seed.
	Hash cryptoadapter.Hash

	// Valid when Kind == ActionRandomReply/ActionRandomReveal/ActionReveal:
	// the raw reply seed, the revealed commit seed, or the revealed secret
	// bytes, respectively.
	Bytes []byte
}

// SerializeAction writes the canonical encoding of an Action.
func SerializeAction[A any](w *codec.Writer, action Action[A], serializePlay func(*codec.Writer, A) error) error {
	w.WriteByte(byte(action.Kind))
	switch action.Kind {
	case ActionPlay:
		return serializePlay(w, action.Play)
	case ActionRandomCommit:
		w.WriteHash(action.Hash)
		return nil
	case ActionRandomReply, ActionRandomReveal, ActionReveal:
		w.WriteBytes(action.Bytes)
		return nil
	default:
		return NewHardError("unknown store action kind %d", action.Kind)
	}
}

// DeserializeAction reads an Action previously written by SerializeAction.
func DeserializeAction[A any](r *codec.Reader, deserializePlay func(*codec.Reader) (A, error)) (Action[A], error) {
	var action Action[A]

	kind, err := r.ReadByte()
	if err != nil {
		return action, err
	}
	action.Kind = ActionKind(kind)

	switch action.Kind {
	case ActionPlay:
		play, err := deserializePlay(r)
		if err != nil {
			return action, err
		}
		action.Play = play
	case ActionRandomCommit:
		hash, err := r.ReadHash()
		if err != nil {
			return action, err
		}
		action.Hash = hash
	case ActionRandomReply, ActionRandomReveal, ActionReveal:
		b, err := r.ReadBytes()
		if err != nil {
			return action, err
		}
		action.Bytes = b
	default:
		return action, NewHardError("unknown store action tag %d", kind)
	}

	return action, nil
}
