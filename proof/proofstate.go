package proof

import (
	"bytes"
	"sort"

	"github.com/fairhopeweb/arcadeum-state/codec"
	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
	"github.com/fairhopeweb/arcadeum-state/domain"
)

// Game is the narrow slice of domain.State a ProofState needs to apply
// actions and (de)serialize itself: the A type parameter here is already
// the store-level action (plain moves plus the commit-reveal sub-actions),
// not the bare domain action, so Game is implemented by an adapter in
// package store rather than directly by a game author's type.
type Game[S any, A any] interface {
	Serialize(w *codec.Writer, state S) error
	Deserialize(r *codec.Reader) (S, error)
	SerializeAction(w *codec.Writer, action A) error
	DeserializeAction(r *codec.Reader) (A, error)
	// Apply runs one action against state, returning the resulting state.
	// A nil *domain.Player result for the action author's certificate
	// check is handled by ProofState itself, not by Game.
	Apply(state S, player *domain.Player, action A) (S, error)
	// IsSerializable reports whether state may be used as a proof
	// checkpoint (false for a state mid coroutine-suspension).
	IsSerializable(state S) bool
	// Approval is the message the match owner signs to approve subkey as a
	// delegate signer for player's wallet. Delegates to the underlying
	// domain.State.Approval so games may customize its wording.
	Approval(player, subkey cryptoadapter.Address) string
}

// ProofState is one checkpoint in a Proof: a match identity, a replay
// nonce, the two participating wallet addresses, any certified delegate
// signing addresses, and the concrete game state.
type ProofState[S any, A any] struct {
	Game    Game[S, A]
	Crypto  cryptoadapter.Adapter
	ID      domain.ID
	Nonce   domain.Nonce
	Players [2]cryptoadapter.Address

	// Signatures maps a certified delegate address to the signature the
	// owning player produced over Certificate(delegate) at certification
	// time. Kept sorted by address for deterministic serialization.
	Signatures map[cryptoadapter.Address]cryptoadapter.Signature

	// Approvals maps a delegate address the match owner approved to the
	// player it stands in for. Unlike Signatures, the signature verified at
	// PlayerActionApprove time recovers to the owner, not to the player's
	// own wallet, so once inserted the mapping is trusted outright.
	Approvals map[cryptoadapter.Address]domain.Player

	State S
}

// NewProofState constructs the initial checkpoint of a match. Returns a
// HardError if state cannot be used as a checkpoint.
func NewProofState[S any, A any](game Game[S, A], adapter cryptoadapter.Adapter, id domain.ID, players [2]cryptoadapter.Address, state S) (ProofState[S, A], error) {
	if !game.IsSerializable(state) {
		return ProofState[S, A]{}, NewHardError("initial state is not serializable")
	}
	return ProofState[S, A]{
		Game:       game,
		Crypto:     adapter,
		ID:         id,
		Players:    players,
		Signatures: map[cryptoadapter.Address]cryptoadapter.Signature{},
		Approvals:  map[cryptoadapter.Address]domain.Player{},
		State:      state,
	}, nil
}

// Player resolves address to a player slot because it is one of the two
// wallet addresses directly, because the owner approved it as a delegate
// (Approvals), or because it was certified by one of them as a delegate
// signer.
func (ps *ProofState[S, A]) Player(address cryptoadapter.Address) *domain.Player {
	for i, p := range ps.Players {
		if p == address {
			player := domain.Player(i)
			return &player
		}
	}
	if player, ok := ps.Approvals[address]; ok {
		p := player
		return &p
	}
	if sig, ok := ps.Signatures[address]; ok {
		// The certificate is signed BY the owning player's wallet OVER a
		// message naming the delegate address; recover and compare.
		if recovered, err := ps.Crypto.Recover(ps.certificateMessageHash(address), sig); err == nil {
			for i, p := range ps.Players {
				if p == recovered {
					player := domain.Player(i)
					return &player
				}
			}
		}
	}
	return nil
}

// certificateMessageHash hashes the human-readable certification prompt a
// player signs with their wallet key to authorize a delegate address,
// matching domain.Certificate's wording.
func (ps *ProofState[S, A]) certificateMessageHash(delegate cryptoadapter.Address) cryptoadapter.Hash {
	return ps.Crypto.Hash([]byte(domain.Certificate(delegate)))
}

// approvalMessageHash hashes the human-readable approval prompt the match
// owner signs to authorize subkey as a delegate for the given player.
func (ps *ProofState[S, A]) approvalMessageHash(player domain.Player, subkey cryptoadapter.Address) cryptoadapter.Hash {
	return ps.Crypto.Hash([]byte(ps.Game.Approval(ps.Players[player], subkey)))
}

// Apply runs action, authored by player (nil for an owner action), against
// the checkpoint in place and advances the nonce. owner is the match's
// RootProof author, needed to verify a PlayerActionApprove signature.
func (ps *ProofState[S, A]) Apply(proofAction ProofAction[A], owner cryptoadapter.Address) error {
	player := proofAction.Player
	if player != nil && !player.IsValid() {
		return NewHardError("invalid player")
	}

	switch proofAction.Action.Kind {
	case PlayerActionPlay:
		next, err := ps.Game.Apply(ps.State, player, proofAction.Action.Action)
		if err != nil {
			return err
		}
		ps.State = next

	case PlayerActionCertify:
		if player == nil {
			return NewHardError("certify action requires a player")
		}
		addr := proofAction.Action.CertifyAddress
		if _, exists := ps.Signatures[addr]; exists {
			return NewHardError("address already certified")
		}
		hash := ps.certificateMessageHash(addr)
		recovered, err := ps.Crypto.Recover(hash, proofAction.Action.CertifySignature)
		if err != nil {
			return NewHardError("certify signature does not recover: %v", err)
		}
		if recovered != ps.Players[*player] {
			return NewHardError("certify signature not from claimed player")
		}
		ps.Signatures[addr] = proofAction.Action.CertifySignature

	case PlayerActionApprove:
		if player != nil {
			return NewHardError("approve action must be owner-authored")
		}
		approved := proofAction.Action.ApprovePlayer
		if !approved.IsValid() {
			return NewHardError("invalid approve player")
		}
		addr := proofAction.Action.ApproveAddress
		if _, exists := ps.Approvals[addr]; exists {
			return NewHardError("address already approved")
		}
		if _, exists := ps.Signatures[addr]; exists {
			return NewHardError("address already certified")
		}
		hash := ps.approvalMessageHash(approved, addr)
		recovered, err := ps.Crypto.Recover(hash, proofAction.Action.ApproveSignature)
		if err != nil {
			return NewHardError("approve signature does not recover: %v", err)
		}
		if recovered != owner {
			return NewHardError("approve signature not from match owner")
		}
		ps.Approvals[addr] = approved

	default:
		return NewHardError("unknown player action kind %d", proofAction.Action.Kind)
	}

	ps.Nonce = ps.Nonce.Next()
	return nil
}

// Clone returns a deep-enough copy for shadow-state walks: Signatures gets
// its own map, State is whatever the Game's own value semantics provide
// (games are expected to use value, not pointer, receivers for state).
func (ps ProofState[S, A]) Clone() ProofState[S, A] {
	sigs := make(map[cryptoadapter.Address]cryptoadapter.Signature, len(ps.Signatures))
	for k, v := range ps.Signatures {
		sigs[k] = v
	}
	ps.Signatures = sigs

	approvals := make(map[cryptoadapter.Address]domain.Player, len(ps.Approvals))
	for k, v := range ps.Approvals {
		approvals[k] = v
	}
	ps.Approvals = approvals

	return ps
}

// Serialize writes the canonical checkpoint encoding, or returns false if
// the current state is not serializable (mid coroutine-suspension).
func (ps *ProofState[S, A]) Serialize(w *codec.Writer) bool {
	if !ps.Game.IsSerializable(ps.State) {
		return false
	}

	w.WriteRaw(ps.ID.Bytes())
	w.WriteUint64(uint64(ps.Nonce))
	for _, p := range ps.Players {
		w.WriteAddress(p)
	}

	addrs := make([]cryptoadapter.Address, 0, len(ps.Signatures))
	for addr := range ps.Signatures {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })

	w.WriteUint32(uint32(len(addrs)))
	for _, addr := range addrs {
		w.WriteAddress(addr)
		w.WriteSignature(ps.Signatures[addr])
	}

	approved := make([]cryptoadapter.Address, 0, len(ps.Approvals))
	for addr := range ps.Approvals {
		approved = append(approved, addr)
	}
	sort.Slice(approved, func(i, j int) bool { return bytes.Compare(approved[i][:], approved[j][:]) < 0 })

	w.WriteUint32(uint32(len(approved)))
	for _, addr := range approved {
		w.WriteAddress(addr)
		w.WriteByte(byte(ps.Approvals[addr]))
	}

	return ps.Game.Serialize(w, ps.State) == nil
}

// DeserializeProofState reads a checkpoint previously written by Serialize.
func DeserializeProofState[S any, A any](game Game[S, A], adapter cryptoadapter.Adapter, r *codec.Reader) (ProofState[S, A], error) {
	var ps ProofState[S, A]
	ps.Game = game
	ps.Crypto = adapter
	ps.Signatures = map[cryptoadapter.Address]cryptoadapter.Signature{}
	ps.Approvals = map[cryptoadapter.Address]domain.Player{}

	idBytes, err := r.ReadRaw(16)
	if err != nil {
		return ps, err
	}
	id, err := domain.BytesToID(idBytes)
	if err != nil {
		return ps, NewHardError("%v", err)
	}
	ps.ID = id

	nonce, err := r.ReadUint64()
	if err != nil {
		return ps, err
	}
	ps.Nonce = domain.Nonce(nonce)

	for i := range ps.Players {
		addr, err := r.ReadAddress()
		if err != nil {
			return ps, err
		}
		ps.Players[i] = addr
	}

	count, err := r.ReadUint32()
	if err != nil {
		return ps, err
	}

	var previous *cryptoadapter.Address
	for i := uint32(0); i < count; i++ {
		addr, err := r.ReadAddress()
		if err != nil {
			return ps, err
		}
		if previous != nil && bytes.Compare(addr[:], (*previous)[:]) <= 0 {
			return ps, NewHardError("certified addresses not in strictly increasing order")
		}
		prev := addr
		previous = &prev

		sig, err := r.ReadSignature()
		if err != nil {
			return ps, err
		}
		ps.Signatures[addr] = sig
	}

	approvedCount, err := r.ReadUint32()
	if err != nil {
		return ps, err
	}

	var previousApproved *cryptoadapter.Address
	for i := uint32(0); i < approvedCount; i++ {
		addr, err := r.ReadAddress()
		if err != nil {
			return ps, err
		}
		if previousApproved != nil && bytes.Compare(addr[:], (*previousApproved)[:]) <= 0 {
			return ps, NewHardError("approved addresses not in strictly increasing order")
		}
		prev := addr
		previousApproved = &prev

		playerByte, err := r.ReadByte()
		if err != nil {
			return ps, err
		}
		player := domain.Player(playerByte)
		if !player.IsValid() {
			return ps, NewHardError("invalid approved player byte %d", playerByte)
		}
		ps.Approvals[addr] = player
	}

	state, err := game.Deserialize(r)
	if err != nil {
		return ps, err
	}
	ps.State = state

	return ps, nil
}
