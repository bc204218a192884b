package auth

import (
	"context"
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

// ErrInvalidToken is returned for malformed, tampered, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// tokenClaims is the signed token payload.
type tokenClaims struct {
	Identity
	ExpiresAt int64 `json:"exp"`
}

// HMACVerifier checks tokens of the form
// base64url(claims) + "." + hex(hmac-sha256(payload)).
type HMACVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewHMACVerifier returns a verifier signing and checking with secret.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), now: time.Now}
}

// Verify checks the token signature and expiry and returns the embedded
// identity. Every failure mode collapses to ErrInvalidToken.
func (v *HMACVerifier) Verify(_ context.Context, token string) (Identity, error) {
	payload, sigHex, ok := strings.Cut(token, ".")
	if !ok || payload == "" {
		return Identity{}, ErrInvalidToken
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil || !hmac.Equal(sig, v.sign(payload)) {
		return Identity{}, ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	var claims tokenClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return Identity{}, ErrInvalidToken
	}
	if claims.UID == "" || !v.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return Identity{}, ErrInvalidToken
	}

	return claims.Identity, nil
}

// Sign mints a token for id valid for ttl. Used by local deployments,
// the mktoken command, and tests.
func (v *HMACVerifier) Sign(id Identity, ttl time.Duration) (string, error) {
	raw, err := json.Marshal(tokenClaims{
		Identity:  id,
		ExpiresAt: v.now().Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshaling token claims: %w", err)
	}

	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + hex.EncodeToString(v.sign(payload)), nil
}

func (v *HMACVerifier) sign(payload string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
