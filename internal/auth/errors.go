package auth

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed         = errors.New("auth: malformed token")
	ErrSignatureMismatch = errors.New("auth: signature mismatch")
	ErrExpired           = errors.New("auth: token expired")
	ErrMissingCredential = errors.New("auth: missing bearer credential")
	ErrMalformedEncoding = errors.New("auth: malformed base64url segment")

	ErrInvalidClaims  = errors.New("auth: invalid claims")
	ErrMissingClaim   = fmt.Errorf("%w: missing claim", ErrInvalidClaims)
	ErrMalformedClaim = fmt.Errorf("%w: malformed claim", ErrInvalidClaims)
)

// Failure kinds reported in logs and metrics. Clients never see these.
const (
	KindMalformed         = "malformed"
	KindSignatureMismatch = "signature_mismatch"
	KindClaimError        = "claim_error"
	KindExpired           = "expired"
	KindMissingCredential = "missing_credential"
	KindUnknown           = "unknown"
)

// FailureKind classifies a token or credential error.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrMalformed), errors.Is(err, ErrMalformedEncoding):
		return KindMalformed
	case errors.Is(err, ErrSignatureMismatch):
		return KindSignatureMismatch
	case errors.Is(err, ErrInvalidClaims):
		return KindClaimError
	case errors.Is(err, ErrExpired):
		return KindExpired
	default:
		return KindUnknown
	}
}
