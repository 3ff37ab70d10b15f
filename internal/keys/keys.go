// Package keys reads and writes kapu key files.
//
// A key file is a TOML record with an explicit schema, one section per
// cipher. Rabin files carry the public modulus n and its factors p and q;
// substitution files carry the shared key string.
//
//	key_id = "6f1c..."
//	cipher = "rabin"
//	created_at = 2026-10-14T09:30:00Z
//
//	[rabin]
//	public_key = "95477"
//	p = "307"
//	q = "311"
//
// The private factors belong in the key file only. They are never written
// next to an artifact; callers pass them back in at decryption time.
package keys

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/kapu/internal/cipher"
	"github.com/PolarWolf314/kapu/internal/cipher/rabin"
	"github.com/PolarWolf314/kapu/internal/cipher/substitution"
	"github.com/PolarWolf314/kapu/internal/configs"
	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	"github.com/google/uuid"
)

// File is the on-disk key record.
type File struct {
	KeyID     string    `toml:"key_id"`
	Cipher    string    `toml:"cipher"`
	CreatedAt time.Time `toml:"created_at"`

	Rabin        *RabinSection        `toml:"rabin,omitempty"`
	Substitution *SubstitutionSection `toml:"substitution,omitempty"`
}

// RabinSection holds decimal strings so arbitrarily large values survive TOML.
type RabinSection struct {
	PublicKey string `toml:"public_key"`
	P         string `toml:"p,omitempty"`
	Q         string `toml:"q,omitempty"`
}

// SubstitutionSection holds the shared key.
type SubstitutionSection struct {
	Key string `toml:"key"`
}

// NewRabinFile wraps a generated key pair.
func NewRabinFile(pair *rabin.KeyPair) *File {
	return &File{
		KeyID:     uuid.New().String(),
		Cipher:    string(cipher.Rabin),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Rabin: &RabinSection{
			PublicKey: pair.N.String(),
			P:         pair.P.String(),
			Q:         pair.Q.String(),
		},
	}
}

// NewSubstitutionFile wraps a substitution key.
func NewSubstitutionFile(key string) *File {
	return &File{
		KeyID:     uuid.New().String(),
		Cipher:    string(cipher.Substitution),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Substitution: &SubstitutionSection{
			Key: key,
		},
	}
}

// Generate creates a fresh key file for kind. backend must be the matching
// backend so custom prime ranges are honoured.
func Generate(kind cipher.Kind, backend cipher.Backend) (*File, error) {
	switch kind {
	case cipher.Rabin:
		rc, ok := backend.(*rabin.Cipher)
		if !ok {
			rc = rabin.New()
		}
		pair, err := rc.GenerateKeys()
		if err != nil {
			return nil, err
		}
		return NewRabinFile(pair), nil

	case cipher.Substitution:
		key, err := substitution.GenerateKey(nil)
		if err != nil {
			return nil, err
		}
		return NewSubstitutionFile(key), nil

	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownCipher, string(kind))
	}
}

// Kind returns the validated cipher kind of the file.
func (f *File) Kind() (cipher.Kind, error) {
	return cipher.ParseKind(f.Cipher)
}

// Validate checks the record is internally consistent.
func (f *File) Validate() error {
	kind, err := f.Kind()
	if err != nil {
		return err
	}

	switch kind {
	case cipher.Rabin:
		if f.Rabin == nil {
			return fmt.Errorf("%w: missing [rabin] section", kerrors.ErrInvalidKey)
		}
		n, err := rabin.ParsePublicKey(f.Rabin.PublicKey)
		if err != nil {
			return err
		}
		if f.Rabin.P == "" && f.Rabin.Q == "" {
			// Public-only file.
			return nil
		}
		p, q, err := rabin.ParsePrivateKeys(f.Rabin.P + ":" + f.Rabin.Q)
		if err != nil {
			return err
		}
		if !p.ProbablyPrime(20) || !q.ProbablyPrime(20) {
			return fmt.Errorf("%w: p and q must be prime", kerrors.ErrInvalidKey)
		}
		if new(big.Int).Mul(p, q).Cmp(n) != 0 {
			return fmt.Errorf("%w: public key does not equal p*q", kerrors.ErrInvalidKey)
		}

	case cipher.Substitution:
		if f.Substitution == nil || f.Substitution.Key == "" {
			return fmt.Errorf("%w: missing substitution key", kerrors.ErrInvalidKey)
		}
	}
	return nil
}

// EncryptKey returns the key string the backend expects for encryption.
func (f *File) EncryptKey() (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if f.Rabin != nil && f.Cipher == string(cipher.Rabin) {
		return f.Rabin.PublicKey, nil
	}
	return f.Substitution.Key, nil
}

// DecryptKey returns the key string the backend expects for decryption.
func (f *File) DecryptKey() (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if f.Rabin != nil && f.Cipher == string(cipher.Rabin) {
		if f.Rabin.P == "" || f.Rabin.Q == "" {
			return "", fmt.Errorf("%w: key file has no private keys", kerrors.ErrInvalidKey)
		}
		return f.Rabin.P + ":" + f.Rabin.Q, nil
	}
	return f.Substitution.Key, nil
}

// PublicOnly returns a copy of a Rabin file without p and q.
func (f *File) PublicOnly() *File {
	cp := *f
	if f.Rabin != nil {
		cp.Rabin = &RabinSection{PublicKey: f.Rabin.PublicKey}
	}
	return &cp
}

// Save writes the key file with owner-only permissions.
func Save(path string, f *File) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := configs.SaveTOML(path, f); err != nil {
		return fmt.Errorf("failed to save key file %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict key file permissions: %w", err)
	}
	return nil
}

// Load reads and validates a key file.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyFileNotFound, path)
	}

	f := &File{}
	if err := configs.LoadTOML(path, f); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidKey, err)
	}
	f.Cipher = strings.ToLower(strings.TrimSpace(f.Cipher))

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
