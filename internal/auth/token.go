package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
)

// headerJSON is the only header this service ever emits.
const headerJSON = `{"alg":"HS256","typ":"JWT"}`

var encodedHeader = EncodeSegment([]byte(headerJSON))

// TokenConfig carries the immutable inputs of a TokenManager.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used when issuing tokens.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

type macSigner interface {
	Sign(message string) string
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	signer macSigner
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager. A missing secret or non-positive TTL is an error.
func NewTokenManager(cfg TokenConfig, opts ...Option) (*TokenManager, error) {
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("auth: token ttl must be positive, got %s", cfg.TTL)
	}
	signer, err := NewSigner(cfg.Secret)
	if err != nil {
		return nil, err
	}
	tm := &TokenManager{signer: signer, ttl: cfg.TTL, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue signs a token for the subject using the configured TTL.
func (tm *TokenManager) Issue(subject int64, email string) (string, time.Time) {
	return tm.IssueWithTTL(subject, email, tm.ttl)
}

// IssueWithTTL signs a token valid for ttl from now. Callers pass a positive
// ttl; fractional seconds round up so the token never expires early.
func (tm *TokenManager) IssueWithTTL(subject int64, email string, ttl time.Duration) (string, time.Time) {
	lifetime := int64((ttl + time.Second - 1) / time.Second)
	if lifetime < 1 {
		lifetime = 1
	}
	issuedAt := tm.now().Unix()
	expiresAt := issuedAt + lifetime
	claims := Claims{
		Subject:   subject,
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}

	signingInput := encodedHeader + "." + EncodeSegment(claims.Marshal())
	return signingInput + "." + tm.signer.Sign(signingInput), time.Unix(expiresAt, 0)
}

// Verify checks structure, then signature, then claims, then expiry, in that
// order. A token is expired once now reaches its exp second.
func (tm *TokenManager) Verify(token string, now time.Time) (Claims, error) {
	header, payload, signature, err := splitToken(token)
	if err != nil {
		return Claims{}, err
	}

	expected := tm.signer.Sign(header + "." + payload)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return Claims{}, ErrSignatureMismatch
	}

	raw, err := DecodeSegment(payload)
	if err != nil {
		return Claims{}, errors.Join(ErrMalformed, err)
	}
	claims, err := ParseClaims(raw)
	if err != nil {
		return Claims{}, err
	}

	if now.Unix() >= claims.ExpiresAt {
		return Claims{}, ErrExpired
	}
	return claims, nil
}

func splitToken(token string) (string, string, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}
	for _, part := range parts {
		if part == "" || !validSegment(part) {
			return "", "", "", fmt.Errorf("%w: invalid segment", ErrMalformed)
		}
	}
	return parts[0], parts[1], parts[2], nil
}
