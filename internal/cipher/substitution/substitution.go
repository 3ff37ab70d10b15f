// Package substitution implements the keyed lookup-table cipher.
//
// Each plaintext byte is mixed with the key byte and its position, then
// mapped through a fixed 128-entry table. Decryption searches the table for
// the byte that maps to the ciphertext value. Input and key must be ASCII.
package substitution

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
)

// Name identifies this backend in key files and on the command line.
const Name = "substitution"

// GeneratedKeyLength is the length of keys returned by GenerateKey.
const GeneratedKeyLength = 10

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var table = [128]byte{
	99, 124, 119, 123, 242, 107, 111, 197, 48, 1, 103, 43, 254, 215, 171, 118,
	202, 130, 201, 125, 250, 89, 71, 240, 173, 212, 162, 175, 156, 164, 114, 192,
	183, 253, 147, 38, 54, 63, 247, 204, 52, 165, 229, 241, 113, 216, 49, 21,
	4, 199, 35, 195, 24, 150, 5, 154, 7, 18, 128, 226, 235, 39, 178, 117,
	9, 131, 44, 26, 27, 110, 90, 160, 82, 59, 214, 179, 41, 227, 47, 132,
	83, 209, 0, 237, 32, 252, 177, 91, 106, 203, 190, 57, 74, 76, 88, 207,
	208, 239, 170, 251, 67, 77, 51, 133, 69, 249, 2, 127, 80, 60, 159, 168,
	81, 163, 64, 143, 146, 157, 56, 245, 188, 182, 218, 33, 16, 255, 243, 210,
}

// Cipher is the substitution backend. It holds no state.
type Cipher struct{}

// New returns the substitution backend.
func New() *Cipher {
	return &Cipher{}
}

// Name returns the backend name.
func (c *Cipher) Name() string {
	return Name
}

// GenerateKey returns a random alphanumeric key read from r, or from
// crypto/rand when r is nil.
func GenerateKey(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	limit := big.NewInt(int64(len(keyAlphabet)))

	var b strings.Builder
	for i := 0; i < GeneratedKeyLength; i++ {
		idx, err := rand.Int(r, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate substitution key: %w", err)
		}
		b.WriteByte(keyAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

func lookup(input, keyByte byte, round int) byte {
	return table[(input^keyByte^byte(round%256))&0x7F]
}

// Encrypt maps every message byte through the table and returns lowercase
// hex, two digits per character.
func (c *Cipher) Encrypt(plaintext, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if plaintext == "" {
		return "", fmt.Errorf("%w: message cannot be empty", kerrors.ErrInvalidMessage)
	}
	if !isASCII(plaintext) {
		return "", fmt.Errorf("%w: message must contain only ASCII characters", kerrors.ErrInvalidMessage)
	}

	out := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext); i++ {
		out[i] = lookup(plaintext[i], key[i%len(key)], i)
	}
	return hex.EncodeToString(out), nil
}

// Decrypt inverts Encrypt by searching the table for each ciphertext byte.
func (c *Cipher) Decrypt(ciphertext, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if ciphertext == "" {
		return "", fmt.Errorf("%w: ciphertext cannot be empty", kerrors.ErrInvalidCiphertextFormat)
	}
	if len(ciphertext)%2 != 0 {
		return "", fmt.Errorf("%w: odd ciphertext length %d", kerrors.ErrInvalidCiphertextFormat, len(ciphertext))
	}
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrInvalidCiphertextFormat, err)
	}

	out := make([]byte, len(raw))
	for i, b := range raw {
		plain, ok := invert(b, key[i%len(key)], i)
		if !ok {
			return "", fmt.Errorf("%w: byte %d (%02x) is not in the substitution table", kerrors.ErrInvalidCiphertextFormat, i, b)
		}
		out[i] = plain
	}
	return string(out), nil
}

func invert(b, keyByte byte, round int) (byte, bool) {
	for candidate := 0; candidate < len(table); candidate++ {
		if lookup(byte(candidate), keyByte, round) == b {
			return byte(candidate), true
		}
	}
	return 0, false
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", kerrors.ErrInvalidKey)
	}
	if !isASCII(key) {
		return fmt.Errorf("%w: key must contain only ASCII characters", kerrors.ErrInvalidKey)
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
