// Package cipher defines the contract shared by the kapu cipher backends.
//
// The vault and the workflows only ever talk to a Backend, so adding a new
// algorithm means implementing three methods and registering its Kind here.
// Keys travel as strings: each backend documents and parses its own format.
//
//	backend, err := cipher.New(cipher.Rabin)
//	ct, err := backend.Encrypt("HELLO", "95477")
//	plain, err := backend.Decrypt(ct, "307:311")
package cipher

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/kapu/internal/cipher/rabin"
	"github.com/PolarWolf314/kapu/internal/cipher/substitution"
	kerrors "github.com/PolarWolf314/kapu/internal/errors"
)

// Backend encrypts and decrypts text. Failures are returned as errors from
// the internal/errors package, never as panics.
type Backend interface {
	Name() string
	Encrypt(plaintext, key string) (string, error)
	Decrypt(ciphertext, key string) (string, error)
}

// Kind names a backend.
type Kind string

const (
	// Rabin is the public-key backend. Encrypt takes n, Decrypt takes "p:q".
	Rabin Kind = rabin.Name

	// Substitution is the keyed table backend. Both directions take the same key.
	Substitution Kind = substitution.Name
)

// Kinds lists every registered backend.
func Kinds() []Kind {
	return []Kind{Rabin, Substitution}
}

// ParseKind validates a backend name, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", kerrors.ErrUnknownCipher, s, kindList())
}

// New returns the backend for kind, using default parameters.
func New(kind Kind) (Backend, error) {
	switch kind {
	case Rabin:
		return rabin.New(), nil
	case Substitution:
		return substitution.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownCipher, string(kind))
	}
}

// NewRabin returns a Rabin backend drawing primes from [primeMin, primeMax).
func NewRabin(primeMin, primeMax int64) Backend {
	return &rabin.Cipher{Primes: rabin.PrimeGenerator{Min: primeMin, Max: primeMax}}
}

func kindList() string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
