package rabin

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
)

// Name identifies this backend in key files and on the command line.
const Name = "rabin"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

// KeyPair holds the public modulus and its two prime factors.
type KeyPair struct {
	N *big.Int
	P *big.Int
	Q *big.Int
}

// Ciphertext is one squared symbol per element.
type Ciphertext []*big.Int

// String renders the ciphertext as comma-separated decimal integers.
func (c Ciphertext) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}

// ParseCiphertext reads the comma-separated decimal wire format.
func ParseCiphertext(s string) (Ciphertext, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty ciphertext", kerrors.ErrInvalidCiphertextFormat)
	}

	fields := strings.Split(s, ",")
	ct := make(Ciphertext, len(fields))
	for i, field := range fields {
		v, ok := new(big.Int).SetString(strings.TrimSpace(field), 10)
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("%w: chunk %d is not a non-negative integer: %q", kerrors.ErrInvalidCiphertextFormat, i, field)
		}
		ct[i] = v
	}
	return ct, nil
}

// Cipher is the Rabin backend.
type Cipher struct {
	Primes PrimeGenerator
}

// New returns a Rabin cipher drawing primes from the default range.
func New() *Cipher {
	return &Cipher{Primes: DefaultPrimeGenerator()}
}

// Name returns the backend name.
func (c *Cipher) Name() string {
	return Name
}

// GenerateKeys draws two distinct primes and returns the key pair.
func (c *Cipher) GenerateKeys() (*KeyPair, error) {
	p, err := c.Primes.Next()
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxDraws; i++ {
		q, err := c.Primes.Next()
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) != 0 {
			return &KeyPair{N: new(big.Int).Mul(p, q), P: p, Q: q}, nil
		}
	}

	return nil, fmt.Errorf("%w: range [%d, %d) has a single qualifying prime", kerrors.ErrKeyGenerationExhausted, c.Primes.Min, c.Primes.Max)
}

// EncryptMessage squares every base64 symbol of message modulo n.
func (c *Cipher) EncryptMessage(message string, n *big.Int) (Ciphertext, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: public key must be a positive integer", kerrors.ErrInvalidKey)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", kerrors.ErrInvalidMessage)
	}
	if !utf8.ValidString(message) {
		return nil, fmt.Errorf("%w: message must be valid UTF-8", kerrors.ErrInvalidMessage)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(message))
	ct := make(Ciphertext, len(encoded))
	for i := 0; i < len(encoded); i++ {
		m := big.NewInt(int64(encoded[i]))
		if m.Cmp(n) >= 0 {
			return nil, fmt.Errorf("%w: chunk %d value %s >= %s", kerrors.ErrChunkTooLarge, i, m, n)
		}
		ct[i] = m.Mul(m, m).Mod(m, n)
	}
	return ct, nil
}

// DecryptMessage recovers the message from ct using the prime factors.
// A single undecodable chunk fails the whole call.
func (c *Cipher) DecryptMessage(ct Ciphertext, p, q *big.Int) (string, error) {
	if err := validatePrivateKeys(p, q); err != nil {
		return "", err
	}
	if len(ct) == 0 {
		return "", fmt.Errorf("%w: empty ciphertext", kerrors.ErrInvalidCiphertextFormat)
	}

	n := new(big.Int).Mul(p, q)
	symbols := make([]byte, len(ct))
	for i, chunk := range ct {
		if chunk.Sign() < 0 || chunk.Cmp(n) >= 0 {
			return "", fmt.Errorf("%w: chunk %d is outside [0, n)", kerrors.ErrInvalidCiphertextFormat, i)
		}
		symbol, err := decryptChunk(chunk, p, q)
		if err != nil {
			return "", fmt.Errorf("chunk %d (%s): %w", i, chunk, err)
		}
		symbols[i] = symbol
	}

	decoded, err := base64.StdEncoding.DecodeString(string(symbols))
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrDecode, err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: recovered bytes are not valid UTF-8", kerrors.ErrDecode)
	}
	return string(decoded), nil
}

func decryptChunk(chunk, p, q *big.Int) (byte, error) {
	mp, ok := SqrtModPrime(chunk, p)
	if !ok {
		return 0, fmt.Errorf("%w: not a quadratic residue mod %s", kerrors.ErrNoValidRoot, p)
	}
	mq, ok := SqrtModPrime(chunk, q)
	if !ok {
		return 0, fmt.Errorf("%w: not a quadratic residue mod %s", kerrors.ErrNoValidRoot, q)
	}

	for _, candidate := range CombineCRT(mp, mq, p, q) {
		if symbol, ok := alphabetSymbol(candidate); ok {
			return symbol, nil
		}
	}
	return 0, kerrors.ErrNoValidRoot
}

// alphabetSymbol accepts a candidate whose minimal big-endian encoding is
// exactly one byte of the base64 alphabet.
func alphabetSymbol(candidate *big.Int) (byte, bool) {
	raw := candidate.Bytes()
	if len(raw) != 1 {
		return 0, false
	}
	if strings.IndexByte(base64Alphabet, raw[0]) < 0 {
		return 0, false
	}
	return raw[0], true
}

func validatePrivateKeys(p, q *big.Int) error {
	if p == nil || q == nil || p.Cmp(one) <= 0 || q.Cmp(one) <= 0 {
		return fmt.Errorf("%w: private keys must be integers greater than 1", kerrors.ErrInvalidKey)
	}
	if !p.ProbablyPrime(20) || !q.ProbablyPrime(20) {
		return fmt.Errorf("%w: private keys must be prime", kerrors.ErrInvalidKey)
	}
	if p.Cmp(q) == 0 {
		return fmt.Errorf("%w: private keys must be distinct", kerrors.ErrInvalidKey)
	}
	return nil
}

// Encrypt implements the cipher backend contract. key is the decimal modulus n.
func (c *Cipher) Encrypt(plaintext, key string) (string, error) {
	n, err := ParsePublicKey(key)
	if err != nil {
		return "", err
	}
	ct, err := c.EncryptMessage(plaintext, n)
	if err != nil {
		return "", err
	}
	return ct.String(), nil
}

// Decrypt implements the cipher backend contract. key is "p:q".
func (c *Cipher) Decrypt(ciphertext, key string) (string, error) {
	p, q, err := ParsePrivateKeys(key)
	if err != nil {
		return "", err
	}
	ct, err := ParseCiphertext(ciphertext)
	if err != nil {
		return "", err
	}
	return c.DecryptMessage(ct, p, q)
}

// ParsePublicKey reads a decimal modulus.
func ParsePublicKey(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: public key must be a positive integer", kerrors.ErrInvalidKey)
	}
	return n, nil
}

// ParsePrivateKeys reads "p:q" (or "p,q").
func ParsePrivateKeys(s string) (*big.Int, *big.Int, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ',' })
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("%w: private keys must be written as p:q", kerrors.ErrInvalidKey)
	}
	p, okP := new(big.Int).SetString(strings.TrimSpace(parts[0]), 10)
	q, okQ := new(big.Int).SetString(strings.TrimSpace(parts[1]), 10)
	if !okP || !okQ {
		return nil, nil, fmt.Errorf("%w: private keys must be integers", kerrors.ErrInvalidKey)
	}
	return p, q, nil
}

// FormatPrivateKeys renders p and q in the form ParsePrivateKeys accepts.
func FormatPrivateKeys(p, q *big.Int) string {
	return p.String() + ":" + q.String()
}
