// Package tokens mints and verifies HMAC-signed approval tokens.
//
// A token binds a (qid, spec_hash) pair and an action-specific token type
// to a bounded lifetime. The wire form is url-safe base64 (no padding) of
// the canonical JSON blob {"payload": ..., "sig": ...}, where sig is the
// url-safe base64 HMAC-SHA-256 of the canonical payload bytes under the
// shared executor secret.
package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/quietdesk/companion/pkg/canonicalize"
)

// Approval is the decoded, verified payload of a token.
type Approval struct {
	TokenType string            `json:"token_type"`
	JTI       string            `json:"jti"`
	Exp       int64             `json:"exp"`
	Bind      map[string]string `json:"bind"`
}

// Expired reports whether the token is past its expiry at the given time.
func (a *Approval) Expired(now time.Time) bool {
	return now.Unix() > a.Exp
}

type envelope struct {
	Payload json.RawMessage `json:"payload"`
	Sig     string          `json:"sig"`
}

func b64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func b64decode(s string) ([]byte, bool) {
	for len(s) > 0 && s[len(s)-1] == '=' {
		s = s[:len(s)-1]
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

func sign(secret, canonicalPayload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(canonicalPayload)
	return b64(mac.Sum(nil))
}

// Mint creates a signed token of the given type, valid for ttl from now,
// bound to the given mapping. For queue items bind always carries qid and
// spec_hash.
func Mint(secret []byte, tokenType string, ttl time.Duration, bind map[string]string) (string, error) {
	return MintAt(secret, tokenType, ttl, bind, time.Now())
}

// MintAt is Mint with an explicit issue time.
func MintAt(secret []byte, tokenType string, ttl time.Duration, bind map[string]string, now time.Time) (string, error) {
	if bind == nil {
		bind = map[string]string{}
	}
	payload := Approval{
		TokenType: tokenType,
		JTI:       uuid.NewString(),
		Exp:       now.Add(ttl).Unix(),
		Bind:      bind,
	}
	p, err := canonicalize.Canonical(payload)
	if err != nil {
		return "", err
	}
	blob, err := canonicalize.Canonical(envelope{Payload: p, Sig: sign(secret, p)})
	if err != nil {
		return "", err
	}
	return b64(blob), nil
}

// Verify decodes and authenticates a token under the given secret. It
// returns nil on any malformation or signature mismatch; expiry is the
// caller's check (the executor compares against its own clock).
func Verify(secret []byte, token string) *Approval {
	raw, ok := b64decode(token)
	if !ok {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if len(env.Payload) == 0 {
		return nil
	}
	// Re-canonicalize so verification is independent of the stored key order.
	var generic any
	if err := json.Unmarshal(env.Payload, &generic); err != nil {
		return nil
	}
	canonical, err := canonicalize.Canonical(generic)
	if err != nil {
		return nil
	}
	expected := sign(secret, canonical)
	if !hmac.Equal([]byte(env.Sig), []byte(expected)) {
		return nil
	}
	var appr Approval
	if err := json.Unmarshal(env.Payload, &appr); err != nil {
		return nil
	}
	if appr.TokenType == "" || appr.JTI == "" {
		return nil
	}
	if appr.Bind == nil {
		appr.Bind = map[string]string{}
	}
	return &appr
}
