package settings

import (
	"encoding/base64"
	"testing"
)

func testKeybox(t *testing.T) *Keybox {
	t.Helper()
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	kb, err := NewKeybox(key)
	if err != nil {
		t.Fatalf("new keybox: %v", err)
	}
	return kb
}

func TestKeyboxRoundtrip(t *testing.T) {
	kb := testKeybox(t)

	cipher, err := kb.Encrypt("sk-test-secret-key-1234567890")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if cipher == "sk-test-secret-key-1234567890" {
		t.Fatalf("ciphertext equals plaintext")
	}

	plain, err := kb.Decrypt(cipher)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "sk-test-secret-key-1234567890" {
		t.Fatalf("roundtrip mismatch: %q", plain)
	}
}

func TestKeyboxNonDeterministic(t *testing.T) {
	kb := testKeybox(t)

	a, _ := kb.Encrypt("same-input")
	b, _ := kb.Encrypt("same-input")
	if a == b {
		t.Fatalf("two encryptions produced identical ciphertext")
	}
}

func TestKeyboxRejectsBadKey(t *testing.T) {
	if _, err := NewKeybox("not-base64!!!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}

	short := base64.StdEncoding.EncodeToString(make([]byte, 16))
	if _, err := NewKeybox(short); err == nil {
		t.Fatalf("expected error for 16-byte key")
	}
}

func TestKeyboxRejectsTamperedCiphertext(t *testing.T) {
	kb := testKeybox(t)

	cipher, err := kb.Encrypt("sk-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(cipher)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := kb.Decrypt(tampered); err == nil {
		t.Fatalf("expected error for tampered ciphertext")
	}
}
