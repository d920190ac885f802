// Package codec implements the deterministic, length-prefixed binary wire
// format used throughout the proof and store engine: fixed-width integers,
// hashes, addresses and signatures, and length-prefixed byte strings. Every
// multi-byte integer length prefix is a little-endian uint32; hashes are
// always 32 bytes, addresses 20 bytes, signatures 65 bytes.
//
// The format intentionally has none of RLP's variable-width size classes —
// ProofState/Proof/Diff serialization needs one canonical byte-for-byte
// encoding per value (round-trip and hash-stability are testable
// invariants), so Writer/Reader encode exactly what callers ask for, in the
// order they ask for it.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

// Errors returned by Reader methods. Callers treat all of these as hard
// errors: malformed bytes, never a protocol-level rejection.
var (
	ErrUnexpectedEOF = errors.New("codec: unexpected end of data")
	ErrTooLarge      = errors.New("codec: length prefix exceeds remaining data")
)

// Writer accumulates a deterministic byte-for-byte encoding.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteUint32 appends a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(v byte) {
	w.buf = append(w.buf, v)
}

// WriteRaw appends b verbatim, with no length prefix. Used for fixed-size
// fields whose length is implied by the schema (hashes, addresses,
// signatures) and for appending an already-encoded sub-message.
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteBytes appends a uint32 length prefix followed by b.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteHash appends a 32-byte hash verbatim.
func (w *Writer) WriteHash(h cryptoadapter.Hash) {
	w.WriteRaw(h[:])
}

// WriteAddress appends a 20-byte address verbatim.
func (w *Writer) WriteAddress(a cryptoadapter.Address) {
	w.WriteRaw(a[:])
}

// WriteSignature appends a 65-byte signature verbatim.
func (w *Writer) WriteSignature(s cryptoadapter.Signature) {
	w.WriteRaw(s[:])
}

// Reader consumes a byte-for-byte encoding produced by Writer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Done reports whether every byte has been consumed.
func (r *Reader) Done() bool { return r.pos >= len(r.buf) }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadRaw reads exactly n bytes verbatim.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadBytes reads a uint32 length prefix followed by that many bytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int(n) > r.Remaining() {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrTooLarge, n, r.Remaining())
	}
	return r.ReadRaw(int(n))
}

// ReadHash reads a 32-byte hash.
func (r *Reader) ReadHash() (cryptoadapter.Hash, error) {
	b, err := r.take(cryptoadapter.HashLength)
	if err != nil {
		return cryptoadapter.Hash{}, err
	}
	return cryptoadapter.BytesToHash(b), nil
}

// ReadAddress reads a 20-byte address.
func (r *Reader) ReadAddress() (cryptoadapter.Address, error) {
	b, err := r.take(cryptoadapter.AddressLength)
	if err != nil {
		return cryptoadapter.Address{}, err
	}
	return cryptoadapter.BytesToAddress(b), nil
}

// ReadSignature reads a 65-byte signature.
func (r *Reader) ReadSignature() (cryptoadapter.Signature, error) {
	b, err := r.take(cryptoadapter.SignatureLength)
	if err != nil {
		return cryptoadapter.Signature{}, err
	}
	return cryptoadapter.BytesToSignature(b), nil
}
