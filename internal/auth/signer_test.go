package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSigner_RejectsEmptyKey(t *testing.T) {
	_, err := NewSigner(nil)
	require.Error(t, err)

	_, err = NewSigner([]byte{})
	require.Error(t, err)
}

// RFC 4231 test case 2.
func TestSigner_KnownVector(t *testing.T) {
	s, err := NewSigner([]byte("Jefe"))
	require.NoError(t, err)

	want, err := hex.DecodeString("5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843")
	require.NoError(t, err)
	require.Equal(t, EncodeSegment(want), s.Sign("what do ya want for nothing?"))
}

func TestSigner_Deterministic(t *testing.T) {
	s, err := NewSigner([]byte("secret"))
	require.NoError(t, err)

	first := s.Sign("message")
	require.Equal(t, first, s.Sign("message"))
	require.NotEqual(t, first, s.Sign("message."))
	require.Len(t, first, 43)

	other, err := NewSigner([]byte("secret2"))
	require.NoError(t, err)
	require.NotEqual(t, first, other.Sign("message"))
}

func TestSigner_CopiesKey(t *testing.T) {
	key := []byte("secret")
	s, err := NewSigner(key)
	require.NoError(t, err)
	before := s.Sign("m")

	key[0] = 'X'
	require.Equal(t, before, s.Sign("m"))
}
