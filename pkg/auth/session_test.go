package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	secret := SessionSecretBytes("short")
	if len(secret) != 32 {
		t.Fatalf("expected secret padded to 32 bytes, got %d", len(secret))
	}
	token := CreateSessionToken(DevUserID, secret)
	got, err := VerifySessionToken(token, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DevUserID {
		t.Errorf("expected %q, got %q", DevUserID, got)
	}
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	token := CreateSessionToken("user-1", SessionSecretBytes("secret-a"))
	if _, err := VerifySessionToken(token, SessionSecretBytes("secret-b")); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestVerifySessionToken_Malformed(t *testing.T) {
	for _, token := range []string{"", "nodot", "!!!.abc"} {
		if _, err := VerifySessionToken(token, SessionSecretBytes("s")); err == nil {
			t.Errorf("token %q: expected error", token)
		}
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	secret := SessionSecretBytes("expiry-secret")
	token := createSessionToken("user-1", secret, time.Now().Add(-time.Minute))

	if _, err := VerifySessionToken(token, secret); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestVerifySessionToken_ExpiresAfterTTL(t *testing.T) {
	secret := SessionSecretBytes("expiry-secret")
	token := CreateSessionToken("user-1", secret)

	if _, err := verifySessionToken(token, secret, time.Now().Add(SessionTTL-time.Minute)); err != nil {
		t.Errorf("expected token valid just before TTL, got %v", err)
	}
	if _, err := verifySessionToken(token, secret, time.Now().Add(SessionTTL+time.Minute)); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired after TTL, got %v", err)
	}
}

func TestVerifySessionToken_TamperedExpiry(t *testing.T) {
	secret := SessionSecretBytes("expiry-secret")
	expired := createSessionToken("user-1", secret, time.Now().Add(-time.Hour))
	_, sig, _ := strings.Cut(expired, ".")

	// 署名はそのままで exp だけ未来に書き換える
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"user-1","exp":4102444800}`)) + "." + sig
	if _, err := VerifySessionToken(forged, secret); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}

func TestVerifySessionToken_LegacyUserIDPayload(t *testing.T) {
	// 有効期限を持たない旧形式（payload が userID だけ）は受け付けない
	secret := SessionSecretBytes("expiry-secret")
	encoded := base64.RawURLEncoding.EncodeToString([]byte("user-1"))
	if _, err := VerifySessionToken(encoded+"."+sign(encoded, secret), secret); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}
