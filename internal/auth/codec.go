package auth

import (
	"encoding/base64"
	"fmt"
)

// segmentEncoding is unpadded base64url that rejects non-canonical trailing bits.
var segmentEncoding = base64.RawURLEncoding.Strict()

// EncodeSegment encodes b as an unpadded base64url token segment.
func EncodeSegment(b []byte) string {
	return segmentEncoding.EncodeToString(b)
}

// DecodeSegment decodes an unpadded base64url token segment.
func DecodeSegment(s string) ([]byte, error) {
	if !validSegment(s) {
		return nil, ErrMalformedEncoding
	}
	b, err := segmentEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return b, nil
}

// validSegment reports whether s uses only the URL-safe alphabet and has a
// length that unpadded base64 can produce. The stdlib decoder silently skips
// CR and LF, so the alphabet is checked here first.
func validSegment(s string) bool {
	if len(s)%4 == 1 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
