package security

import (
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealer, err := NewSealer("console-seal-secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	const token = "eyJhbGciOiJIUzI1NiJ9.upstream.bearer"

	sealed, err := sealer.Seal(token)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed == token {
		t.Fatal("sealed value equals plaintext")
	}
	if strings.Contains(sealed, "upstream") {
		t.Fatal("sealed value leaks plaintext")
	}

	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != token {
		t.Fatalf("Open = %q, want %q", opened, token)
	}
}

func TestSealNonceVaries(t *testing.T) {
	sealer, err := NewSealer("console-seal-secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	first, err := sealer.Seal("same-token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	second, err := sealer.Seal("same-token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if first == second {
		t.Fatal("two seals of the same token are identical")
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	sealer, err := NewSealer("console-seal-secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	sealed, err := sealer.Seal("token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := []byte(sealed)
	tampered[len(tampered)-1] ^= 'x'
	if _, err := sealer.Open(string(tampered)); err == nil {
		t.Fatal("Open accepted a tampered ciphertext")
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealer, _ := NewSealer("key-one")
	other, _ := NewSealer("key-two")

	sealed, err := sealer.Seal("token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := other.Open(sealed); err == nil {
		t.Fatal("Open accepted ciphertext sealed under another key")
	}
}
