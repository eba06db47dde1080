package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SessionTTL is how long a session token stays valid after it is issued.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session token expired")
)

// sessionClaims はトークンの payload。exp は unix 秒
type sessionClaims struct {
	Sub string `json:"sub"`
	Exp int64  `json:"exp"`
}

// CreateSessionToken は userID と有効期限（SessionTTL）を署名したトークンを生成する
func CreateSessionToken(userID string, secret []byte) string {
	return createSessionToken(userID, secret, time.Now().Add(SessionTTL))
}

func createSessionToken(userID string, secret []byte, expiresAt time.Time) string {
	// Marshal は string と int64 だけなので失敗しない
	payload, _ := json.Marshal(sessionClaims{Sub: userID, Exp: expiresAt.Unix()})
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + sign(encoded, secret)
}

// VerifySessionToken は署名と有効期限を検証し userID を返す
func VerifySessionToken(token string, secret []byte) (string, error) {
	return verifySessionToken(token, secret, time.Now())
}

func verifySessionToken(token string, secret []byte, now time.Time) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" {
		return "", fmt.Errorf("%w: malformed", ErrInvalidSession)
	}
	// 署名は base64 文字列そのものに掛かるので、decode 前に検証する
	if !hmac.Equal([]byte(sign(encoded, secret)), []byte(sig)) {
		return "", fmt.Errorf("%w: bad signature", ErrInvalidSession)
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	var claims sessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Sub == "" {
		return "", fmt.Errorf("%w: bad payload", ErrInvalidSession)
	}
	if !now.Before(time.Unix(claims.Exp, 0)) {
		return "", ErrSessionExpired
	}
	return claims.Sub, nil
}

func sign(encoded string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}

const sessionCookieName = "masjid_session"
const minSecretLen = 32

// SessionCookieName はセッションクッキー名
func SessionCookieName() string {
	return sessionCookieName
}

// SessionSecretBytes は文字列からセッション署名用のバイト列を生成する（最低32バイト）
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
