package substitution

import (
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableIsInjective(t *testing.T) {
	seen := make(map[byte]bool)
	for _, v := range table {
		require.False(t, seen[v], "duplicate table entry %d", v)
		seen[v] = true
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := New()
	long := strings.Repeat("0123456789abcdef", 40)

	cases := []struct {
		message string
		key     string
	}{
		{"harmless text", "abc123"},
		{"HELLO", "k"},
		{"The quick brown fox\njumps over\tthe lazy dog!", "a much longer key than the message itself"},
		{long, "wraps-past-round-255"},
		{"\x00\x01\x7f control bytes", "\x7f"},
	}
	for _, tc := range cases {
		ct, err := c.Encrypt(tc.message, tc.key)
		require.NoError(t, err)
		assert.Len(t, ct, 2*len(tc.message))
		assert.Equal(t, strings.ToLower(ct), ct)

		plain, err := c.Decrypt(ct, tc.key)
		require.NoError(t, err)
		assert.Equal(t, tc.message, plain)
	}
}

func TestEncrypt_KnownVector(t *testing.T) {
	c := New()
	// ('A' ^ 'a' ^ 0) & 0x7f = 0x20 -> table[32] = 183 = 0xb7
	ct, err := c.Encrypt("A", "a")
	require.NoError(t, err)
	assert.Equal(t, "b7", ct)
}

func TestDecrypt_WrongKeyDiffers(t *testing.T) {
	c := New()
	ct, err := c.Encrypt("attack at dawn", "right")
	require.NoError(t, err)

	plain, err := c.Decrypt(ct, "wrong")
	require.NoError(t, err)
	assert.NotEqual(t, "attack at dawn", plain)
}

func TestEncrypt_InvalidInput(t *testing.T) {
	c := New()

	_, err := c.Encrypt("", "key")
	assert.ErrorIs(t, err, kerrors.ErrInvalidMessage)

	_, err = c.Encrypt("héllo", "key")
	assert.ErrorIs(t, err, kerrors.ErrInvalidMessage)

	_, err = c.Encrypt("hello", "")
	assert.ErrorIs(t, err, kerrors.ErrInvalidKey)

	_, err = c.Encrypt("hello", "kéy")
	assert.ErrorIs(t, err, kerrors.ErrInvalidKey)
}

func TestDecrypt_InvalidCiphertext(t *testing.T) {
	c := New()
	for _, ct := range []string{"", "abc", "zz", "0g"} {
		_, err := c.Decrypt(ct, "key")
		assert.ErrorIsf(t, err, kerrors.ErrInvalidCiphertextFormat, "ciphertext %q", ct)
	}
}

func TestDecrypt_ByteOutsideTable(t *testing.T) {
	c := New()
	// 0x03 never appears in the table.
	_, err := c.Decrypt("03", "key")
	assert.ErrorIs(t, err, kerrors.ErrInvalidCiphertextFormat)
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey(nil)
	require.NoError(t, err)
	assert.Len(t, key, GeneratedKeyLength)
	for _, r := range key {
		assert.Contains(t, keyAlphabet, string(r))
	}

	other, err := GenerateKey(nil)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
