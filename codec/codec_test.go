package codec

import (
	"bytes"
	"testing"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

func TestRoundTripScalars(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(0xdeadbeef)
	w.WriteUint64(0x0123456789abcdef)
	w.WriteByte(0x42)
	w.WriteBytes([]byte("hello world"))

	r := NewReader(w.Bytes())
	u32, err := r.ReadUint32()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("ReadUint32 = %x, %v", u32, err)
	}
	u64, err := r.ReadUint64()
	if err != nil || u64 != 0x0123456789abcdef {
		t.Fatalf("ReadUint64 = %x, %v", u64, err)
	}
	b, err := r.ReadByte()
	if err != nil || b != 0x42 {
		t.Fatalf("ReadByte = %x, %v", b, err)
	}
	bs, err := r.ReadBytes()
	if err != nil || !bytes.Equal(bs, []byte("hello world")) {
		t.Fatalf("ReadBytes = %q, %v", bs, err)
	}
	if !r.Done() {
		t.Fatalf("expected all bytes consumed, %d remaining", r.Remaining())
	}
}

func TestRoundTripFixedWidth(t *testing.T) {
	var h cryptoadapter.Hash
	for i := range h {
		h[i] = byte(i)
	}
	var a cryptoadapter.Address
	for i := range a {
		a[i] = byte(i + 1)
	}
	var s cryptoadapter.Signature
	for i := range s {
		s[i] = byte(i + 2)
	}

	w := NewWriter()
	w.WriteHash(h)
	w.WriteAddress(a)
	w.WriteSignature(s)

	r := NewReader(w.Bytes())
	gotH, err := r.ReadHash()
	if err != nil || gotH != h {
		t.Fatalf("ReadHash = %x, %v", gotH, err)
	}
	gotA, err := r.ReadAddress()
	if err != nil || gotA != a {
		t.Fatalf("ReadAddress = %x, %v", gotA, err)
	}
	gotS, err := r.ReadSignature()
	if err != nil || gotS != s {
		t.Fatalf("ReadSignature = %x, %v", gotS, err)
	}
}

func TestReadBytesTooLarge(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(1000)
	w.WriteRaw([]byte("short"))

	r := NewReader(w.Bytes())
	if _, err := r.ReadBytes(); err == nil {
		t.Fatalf("expected error reading an over-long byte string")
	}
}

func TestReadUnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadUint32(); err != ErrUnexpectedEOF {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}
