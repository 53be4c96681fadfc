package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// Signer computes HMAC-SHA256 signatures. It keeps no per-call state and is
// safe for concurrent use.
type Signer struct {
	key []byte
}

// NewSigner copies key. An empty key is rejected.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, errors.New("auth: signing key must not be empty")
	}
	return &Signer{key: append([]byte(nil), key...)}, nil
}

// Sign returns the base64url-encoded HMAC-SHA256 of message.
func (s *Signer) Sign(message string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(message))
	return EncodeSegment(mac.Sum(nil))
}
