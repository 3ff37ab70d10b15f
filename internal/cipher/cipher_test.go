package cipher

import (
	"testing"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Rabin ")
	require.NoError(t, err)
	assert.Equal(t, Rabin, k)

	k, err = ParseKind("substitution")
	require.NoError(t, err)
	assert.Equal(t, Substitution, k)

	_, err = ParseKind("skipjack")
	assert.ErrorIs(t, err, kerrors.ErrUnknownCipher)
}

func TestNew_BackendsShareContract(t *testing.T) {
	keys := map[Kind][2]string{
		Rabin:        {"95477", "307:311"},
		Substitution: {"s3cret", "s3cret"},
	}

	for _, kind := range Kinds() {
		backend, err := New(kind)
		require.NoError(t, err)
		assert.Equal(t, string(kind), backend.Name())

		ct, err := backend.Encrypt("HELLO", keys[kind][0])
		require.NoError(t, err)

		plain, err := backend.Decrypt(ct, keys[kind][1])
		require.NoError(t, err)
		assert.Equal(t, "HELLO", plain)
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(Kind("rot13"))
	assert.ErrorIs(t, err, kerrors.ErrUnknownCipher)
}

func TestNewRabin_CustomRange(t *testing.T) {
	backend := NewRabin(7, 8)
	// n = 77 is too small for base64 symbols.
	_, err := backend.Encrypt("HELLO", "77")
	assert.ErrorIs(t, err, kerrors.ErrChunkTooLarge)
}
