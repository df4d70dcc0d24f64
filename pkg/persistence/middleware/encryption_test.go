package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/psdrun/pkg/persistence/middleware"
	"github.com/aretw0/psdrun/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	if err := secure.SaveAPIKey(ctx, "sk-my-secret-sauce"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}

	if strings.Contains(underlying.apiKey, "secret") {
		t.Fatalf("expected key to be hidden at rest, found %q", underlying.apiKey)
	}
	if !strings.HasPrefix(underlying.apiKey, "enc:v1:") {
		t.Fatalf("expected envelope prefix, got %q", underlying.apiKey)
	}

	got, err := secure.LoadAPIKey(ctx)
	if err != nil {
		t.Fatalf("LoadAPIKey failed: %v", err)
	}
	if got != "sk-my-secret-sauce" {
		t.Errorf("expected decrypted key, got %q", got)
	}
}

func TestEncryptionMiddleware_PassesHintStoreContract(t *testing.T) {
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(NewMockStore())
	ports.RunHintStoreContract(t, secure)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	if err := oldStore.SaveAPIKey(ctx, "sk-old"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	got, err := newStore.LoadAPIKey(ctx)
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if got != "sk-old" {
		t.Errorf("decryption with fallback key failed, got %q", got)
	}

	if err := newStore.SaveAPIKey(ctx, "sk-new"); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}
	if _, err := oldStore.LoadAPIKey(ctx); err == nil {
		t.Error("expected failure when loading new-key ciphertext with only the old key")
	}
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := NewMockStore()
	underlying.apiKey = "sk-plain"
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	_, err := secure.LoadAPIKey(context.Background())
	if !errors.Is(err, middleware.ErrNotEncrypted) {
		t.Errorf("expected ErrNotEncrypted, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestParseKey(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	for _, in := range []string{base64.StdEncoding.EncodeToString(raw), hex.EncodeToString(raw)} {
		k, err := middleware.ParseKey(in)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", in, err)
		}
		if string(k) != string(raw) {
			t.Errorf("ParseKey(%q) decoded the wrong bytes", in)
		}
	}
	if _, err := middleware.ParseKey("too-short"); err == nil {
		t.Error("expected an error for a short key")
	}
}
