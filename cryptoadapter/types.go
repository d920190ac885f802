// Package cryptoadapter defines the cryptographic primitives the proof and
// store engine depends on. The primitives themselves (Keccak-256,
// secp256k1 ECDSA sign/recover, address derivation, EIP-55 formatting) are
// out of scope for this module: hosts supply a concrete Adapter, and this
// package only fixes the wire-level types (Hash, Address, Signature) and
// the interface a host implementation must satisfy.
package cryptoadapter

import "fmt"

const (
	// HashLength is the length in bytes of a Keccak-256 digest.
	HashLength = 32
	// AddressLength is the length in bytes of an address.
	AddressLength = 20
	// SignatureLength is the length in bytes of a recoverable ECDSA
	// signature: 32-byte R, 32-byte S, 1-byte recovery id.
	SignatureLength = 65
)

// Hash is a 32-byte Keccak-256 digest.
type Hash [HashLength]byte

// Bytes returns the digest as a byte slice.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether the hash is all zeros.
func (h Hash) IsZero() bool { return h == Hash{} }

// String implements fmt.Stringer.
func (h Hash) String() string { return fmt.Sprintf("0x%x", h[:]) }

// BytesToHash left-pads (or truncates from the left) b to 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	setBytes(h[:], b)
	return h
}

// Address is a 20-byte account address.
type Address [AddressLength]byte

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// IsZero reports whether the address is all zeros.
func (a Address) IsZero() bool { return a == Address{} }

// BytesToAddress left-pads (or truncates from the left) b to 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	setBytes(a[:], b)
	return a
}

// String returns a plain (non-checksummed) hex representation of the
// address. Hosts that need EIP-55 checksum casing for user-facing display
// do so in their own Adapter implementation, which has the Keccak-256
// primitive this package deliberately does not.
func (a Address) String() string { return fmt.Sprintf("0x%x", a[:]) }

func setBytes(dst, src []byte) {
	if len(src) > len(dst) {
		src = src[len(src)-len(dst):]
	}
	copy(dst[len(dst)-len(src):], src)
}

// Signature is a 65-byte recoverable ECDSA signature: [R(32) || S(32) || V(1)].
type Signature [SignatureLength]byte

// Bytes returns the signature as a byte slice.
func (s Signature) Bytes() []byte { return s[:] }

// BytesToSignature copies b (which must be exactly SignatureLength bytes)
// into a Signature. Panics on length mismatch, since a malformed signature
// length is always a caller bug, never recoverable input.
func BytesToSignature(b []byte) Signature {
	if len(b) != SignatureLength {
		panic(fmt.Sprintf("cryptoadapter: signature must be %d bytes, got %d", SignatureLength, len(b)))
	}
	var s Signature
	copy(s[:], b)
	return s
}

// Adapter is the set of cryptographic primitives the proof and store
// engine requires from its host. Implementations are expected to be pure
// functions over their inputs (no hidden state beyond signing keys).
type Adapter interface {
	// Hash computes the Keccak-256 digest of the concatenation of data.
	Hash(data ...[]byte) Hash

	// Recover recovers the address that produced sig over hash. An error
	// indicates a malformed signature, never a protocol-level rejection —
	// callers must still check the recovered address against the
	// expected signer.
	Recover(hash Hash, sig Signature) (Address, error)
}

// Signer additionally allows producing signatures, used by Store on behalf
// of the local participant.
type Signer interface {
	Adapter
	// Sign produces a signature over hash recoverable to the signer's
	// own address via Recover.
	Sign(hash Hash) (Signature, error)
	// Address returns the signer's own address.
	Address() Address
}
