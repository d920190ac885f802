package proof

import (
	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

// PlayerActionKind distinguishes a domain move from a certification or an
// owner-granted approval.
type PlayerActionKind uint8

const (
	// PlayerActionPlay wraps a domain-level action (A).
	PlayerActionPlay PlayerActionKind = iota
	// PlayerActionCertify registers a signing address as standing in for
	// the submitting player for the remainder of the match, so a player
	// can sign future actions with a session key instead of their wallet
	// key. See ProofState.Player.
	PlayerActionCertify
	// PlayerActionApprove registers a signing address as standing in for
	// ApprovePlayer, authorized by the match owner rather than by the
	// player's own wallet key — for a player who never signs anything
	// directly (e.g. a server-controlled seat, or a player onboarded out of
	// band). See ProofState.Player.
	PlayerActionApprove
)

// PlayerAction is either a domain move, a player's own certification of a
// delegate signing address, or the match owner's approval of a delegate
// signing address on a player's behalf.
type PlayerAction[A any] struct {
	Kind PlayerActionKind

	// Valid when Kind == PlayerActionPlay.
	Action A

	// Valid when Kind == PlayerActionCertify.
	CertifyAddress   cryptoadapter.Address
	CertifySignature cryptoadapter.Signature

	// Valid when Kind == PlayerActionApprove. ApprovePlayer is the player
	// the owner is vouching for; ApproveAddress is the delegate signing
	// address being approved; ApproveSignature is the owner's own
	// signature over domain.State.Approval(player's address, ApproveAddress).
	ApprovePlayer    domain.Player
	ApproveAddress   cryptoadapter.Address
	ApproveSignature cryptoadapter.Signature
}

// ProofAction pairs a PlayerAction with the player that authored it — nil
// for an action the match owner authors with no specific player attached
// (e.g. opening a challenge).
type ProofAction[A any] struct {
	Player *domain.Player
	Action PlayerAction[A]
}

func serializePlayer(w *codec.Writer, player *domain.Player) {
	if player == nil {
		w.WriteByte(0)
		return
	}
	w.WriteByte(1 + byte(*player))
}

func deserializePlayer(r *codec.Reader) (*domain.Player, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, nil
	}
	p := domain.Player(b - 1)
	if !p.IsValid() {
		return nil, NewHardError("invalid player byte %d", b)
	}
	return &p, nil
}

// Serialize writes the canonical encoding of a ProofAction. serializeAction
// encodes the wrapped domain action A.
func (pa ProofAction[A]) Serialize(w *codec.Writer, serializeAction func(*codec.Writer, A) error) error {
	serializePlayer(w, pa.Player)

	switch pa.Action.Kind {
	case PlayerActionPlay:
		w.WriteByte(0)
		return serializeAction(w, pa.Action.Action)
	case PlayerActionCertify:
		w.WriteByte(1)
		w.WriteAddress(pa.Action.CertifyAddress)
		w.WriteSignature(pa.Action.CertifySignature)
		return nil
	case PlayerActionApprove:
		if !pa.Action.ApprovePlayer.IsValid() {
			return NewHardError("invalid approve player")
		}
		w.WriteByte(2)
		w.WriteByte(byte(pa.Action.ApprovePlayer))
		w.WriteAddress(pa.Action.ApproveAddress)
		w.WriteSignature(pa.Action.ApproveSignature)
		return nil
	default:
		return NewHardError("unknown PlayerActionKind %d", pa.Action.Kind)
	}
}

// DeserializeProofAction reads a ProofAction, delegating to
// deserializeAction for the domain action payload.
func DeserializeProofAction[A any](r *codec.Reader, deserializeAction func(*codec.Reader) (A, error)) (ProofAction[A], error) {
	var pa ProofAction[A]

	player, err := deserializePlayer(r)
	if err != nil {
		return pa, err
	}
	pa.Player = player

	kind, err := r.ReadByte()
	if err != nil {
		return pa, err
	}

	switch kind {
	case 0:
		action, err := deserializeAction(r)
		if err != nil {
			return pa, err
		}
		pa.Action = PlayerAction[A]{Kind: PlayerActionPlay, Action: action}
	case 1:
		addr, err := r.ReadAddress()
		if err != nil {
			return pa, err
		}
		sig, err := r.ReadSignature()
		if err != nil {
			return pa, err
		}
		pa.Action = PlayerAction[A]{Kind: PlayerActionCertify, CertifyAddress: addr, CertifySignature: sig}
	case 2:
		playerByte, err := r.ReadByte()
		if err != nil {
			return pa, err
		}
		approvePlayer := domain.Player(playerByte)
		if !approvePlayer.IsValid() {
			return pa, NewHardError("invalid approve player byte %d", playerByte)
		}
		addr, err := r.ReadAddress()
		if err != nil {
			return pa, err
		}
		sig, err := r.ReadSignature()
		if err != nil {
			return pa, err
		}
		pa.Action = PlayerAction[A]{Kind: PlayerActionApprove, ApprovePlayer: approvePlayer, ApproveAddress: addr, ApproveSignature: sig}
	default:
		return pa, NewHardError("unknown player action tag %d", kind)
	}

	return pa, nil
}
