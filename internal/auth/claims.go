package auth

import (
	"bytes"
	"fmt"
	"strconv"
)

// Claims is the fixed payload carried by every token. Fields are written and
// read in exactly this order: sub, email, iat, exp.
type Claims struct {
	Subject   int64
	Email     string
	IssuedAt  int64
	ExpiresAt int64
}

const (
	keySubject   = `"sub":`
	keyEmail     = `,"email":`
	keyIssuedAt  = `,"iat":`
	keyExpiresAt = `,"exp":`
)

// Marshal renders the claims as {"sub":"<id>","email":"<email>","iat":<n>,"exp":<n>}.
// Only backslash and double quote are escaped in the email.
func (c Claims) Marshal() []byte {
	buf := make([]byte, 0, 64+len(c.Email))
	buf = append(buf, '{')
	buf = append(buf, keySubject...)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, c.Subject, 10)
	buf = append(buf, '"')
	buf = append(buf, keyEmail...)
	buf = append(buf, '"')
	buf = appendEscaped(buf, c.Email)
	buf = append(buf, '"')
	buf = append(buf, keyIssuedAt...)
	buf = strconv.AppendInt(buf, c.IssuedAt, 10)
	buf = append(buf, keyExpiresAt...)
	buf = strconv.AppendInt(buf, c.ExpiresAt, 10)
	buf = append(buf, '}')
	return buf
}

// ParseClaims reads claims produced by Marshal. It walks the payload once,
// front to back, and rejects anything that deviates from the fixed layout:
// reordered or extra keys, nested values, unknown escapes, trailing bytes.
func ParseClaims(data []byte) (Claims, error) {
	r := claimReader{data: data}
	var c Claims

	if err := r.expect('{', "payload"); err != nil {
		return Claims{}, err
	}

	if err := r.key(keySubject, "sub"); err != nil {
		return Claims{}, err
	}
	if err := r.expect('"', "sub"); err != nil {
		return Claims{}, err
	}
	sub, err := r.number("sub")
	if err != nil {
		return Claims{}, err
	}
	if err := r.expect('"', "sub"); err != nil {
		return Claims{}, err
	}
	c.Subject = sub

	if err := r.key(keyEmail, "email"); err != nil {
		return Claims{}, err
	}
	if c.Email, err = r.quoted("email"); err != nil {
		return Claims{}, err
	}

	if err := r.key(keyIssuedAt, "iat"); err != nil {
		return Claims{}, err
	}
	if c.IssuedAt, err = r.number("iat"); err != nil {
		return Claims{}, err
	}

	if err := r.key(keyExpiresAt, "exp"); err != nil {
		return Claims{}, err
	}
	if c.ExpiresAt, err = r.number("exp"); err != nil {
		return Claims{}, err
	}

	if err := r.expect('}', "payload"); err != nil {
		return Claims{}, err
	}
	if r.pos != len(r.data) {
		return Claims{}, fmt.Errorf("%w: trailing data after payload", ErrMalformedClaim)
	}

	if c.Subject <= 0 {
		return Claims{}, fmt.Errorf("%w: sub must be positive", ErrMalformedClaim)
	}
	if c.ExpiresAt <= c.IssuedAt {
		return Claims{}, fmt.Errorf("%w: exp must be after iat", ErrMalformedClaim)
	}
	return c, nil
}

type claimReader struct {
	data []byte
	pos  int
}

func (r *claimReader) key(prefix, name string) error {
	if !bytes.HasPrefix(r.data[r.pos:], []byte(prefix)) {
		return fmt.Errorf("%w: %s", ErrMissingClaim, name)
	}
	r.pos += len(prefix)
	return nil
}

func (r *claimReader) expect(b byte, name string) error {
	if r.pos >= len(r.data) || r.data[r.pos] != b {
		return fmt.Errorf("%w: %s: expected %q at offset %d", ErrMalformedClaim, name, b, r.pos)
	}
	r.pos++
	return nil
}

// number reads a canonical run of decimal digits: no sign, no leading zeros.
func (r *claimReader) number(name string) (int64, error) {
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] >= '0' && r.data[r.pos] <= '9' {
		r.pos++
	}
	digits := r.data[start:r.pos]
	if len(digits) == 0 {
		return 0, fmt.Errorf("%w: %s: expected digits", ErrMalformedClaim, name)
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, fmt.Errorf("%w: %s: leading zero", ErrMalformedClaim, name)
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedClaim, name, err)
	}
	return n, nil
}

// quoted reads a double-quoted string, undoing appendEscaped.
func (r *claimReader) quoted(name string) (string, error) {
	if err := r.expect('"', name); err != nil {
		return "", err
	}
	out := make([]byte, 0, 32)
	for r.pos < len(r.data) {
		b := r.data[r.pos]
		r.pos++
		switch b {
		case '"':
			return string(out), nil
		case '\\':
			if r.pos >= len(r.data) {
				return "", fmt.Errorf("%w: %s: dangling escape", ErrMalformedClaim, name)
			}
			next := r.data[r.pos]
			if next != '\\' && next != '"' {
				return "", fmt.Errorf("%w: %s: unsupported escape \\%c", ErrMalformedClaim, name, next)
			}
			out = append(out, next)
			r.pos++
		default:
			out = append(out, b)
		}
	}
	return "", fmt.Errorf("%w: %s: unterminated string", ErrMalformedClaim, name)
}

func appendEscaped(buf []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '"':
			buf = append(buf, '\\', s[i])
		default:
			buf = append(buf, s[i])
		}
	}
	return buf
}
