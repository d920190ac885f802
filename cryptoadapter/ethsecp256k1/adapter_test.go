package ethsecp256k1

import (
	"testing"

	"github.com/fairhopeweb/arcadeum-state/cryptoadapter"
)

func TestSignRecoverRoundTrip(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	hash := a.Hash([]byte("hello"), []byte("world"))
	sig, err := a.Sign(hash)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	recovered, err := Recover(hash, sig)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if recovered != a.Address() {
		t.Fatalf("recovered address %x != signer address %x", recovered, a.Address())
	}
}

func TestRecoverWrongSignerMismatch(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	hash := a.Hash([]byte("msg"))
	sig, err := a.Sign(hash)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	recovered, err := Recover(hash, sig)
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if recovered == b.Address() {
		t.Fatalf("recovered address should not equal unrelated signer")
	}
}

func TestHashDeterministic(t *testing.T) {
	a := HashOnly{}
	h1 := a.Hash([]byte("a"), []byte("b"))
	h2 := a.Hash([]byte("a"), []byte("b"))
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %x != %x", h1, h2)
	}
	h3 := a.Hash([]byte("ab"))
	if h1 != h3 {
		t.Fatalf("hash of concatenated parts should equal hash of joined bytes: %x != %x", h1, h3)
	}
}
