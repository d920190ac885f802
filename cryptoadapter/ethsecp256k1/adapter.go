// Package ethsecp256k1 provides a concrete cryptoadapter.Adapter built on
// Keccak-256 and secp256k1 ECDSA, the curve and hash the on-chain dispute
// resolution model assumes. The proof and store engine treats cryptography
// as an external collaborator (see cryptoadapter.Adapter); this package is
// the reference implementation used by this module's own tests and
// available to hosts that want a ready-made one instead of wiring their
// own keystore/HSM-backed signer.
package ethsecp256k1

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// Adapter implements cryptoadapter.Signer using go-ethereum's secp256k1
// implementation for signing/recovery and its Keccak-256 for hashing.
type Adapter struct {
	key *ecdsa.PrivateKey
	adr cryptoadapter.Address
}

var _ cryptoadapter.Signer = (*Adapter)(nil)

// New wraps an existing secp256k1 private key.
func New(key *ecdsa.PrivateKey) *Adapter {
	return &Adapter{
		key: key,
		adr: cryptoadapter.Address(crypto.PubkeyToAddress(key.PublicKey)),
	}
}

// Generate creates a new Adapter backed by a freshly generated key. Intended
// for tests and local development; production hosts should load keys from a
// proper keystore.
func Generate() (*Adapter, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("ethsecp256k1: generate key: %w", err)
	}
	return New(key), nil
}

// Hash computes Keccak-256 over the concatenation of data.
func (a *Adapter) Hash(data ...[]byte) cryptoadapter.Hash {
	return cryptoadapter.Hash(crypto.Keccak256Hash(data...))
}

// Sign produces a 65-byte [R||S||V] signature recoverable to a.Address().
func (a *Adapter) Sign(hash cryptoadapter.Hash) (cryptoadapter.Signature, error) {
	sig, err := crypto.Sign(hash.Bytes(), a.key)
	if err != nil {
		return cryptoadapter.Signature{}, fmt.Errorf("ethsecp256k1: sign: %w", err)
	}
	return cryptoadapter.BytesToSignature(sig), nil
}

// Address returns the address corresponding to this adapter's signing key.
func (a *Adapter) Address() cryptoadapter.Address {
	return a.adr
}

// Recover recovers the signer's address from hash and sig.
func (a *Adapter) Recover(hash cryptoadapter.Hash, sig cryptoadapter.Signature) (cryptoadapter.Address, error) {
	return Recover(hash, sig)
}

// Recover is the package-level (stateless) form of Adapter.Recover, usable
// by any caller that only needs signature recovery and not signing.
func Recover(hash cryptoadapter.Hash, sig cryptoadapter.Signature) (cryptoadapter.Address, error) {
	pub, err := crypto.SigToPub(hash.Bytes(), sig.Bytes())
	if err != nil {
		return cryptoadapter.Address{}, fmt.Errorf("ethsecp256k1: recover: %w", err)
	}
	if pub == nil {
		return cryptoadapter.Address{}, errors.New("ethsecp256k1: recover: nil public key")
	}
	return cryptoadapter.Address(crypto.PubkeyToAddress(*pub)), nil
}

// HashOnly implements cryptoadapter.Adapter without a signing key, useful
// for replicas (the two players, spectators) that only ever verify diffs
// produced by others and never submit their own.
type HashOnly struct{}

var _ cryptoadapter.Adapter = HashOnly{}

// Hash computes Keccak-256 over the concatenation of data.
func (HashOnly) Hash(data ...[]byte) cryptoadapter.Hash {
	return cryptoadapter.Hash(crypto.Keccak256Hash(data...))
}

// Recover recovers the signer's address from hash and sig.
func (HashOnly) Recover(hash cryptoadapter.Hash, sig cryptoadapter.Signature) (cryptoadapter.Address, error) {
	return Recover(hash, sig)
}
