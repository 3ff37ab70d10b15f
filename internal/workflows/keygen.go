package workflows

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/kapu/internal/audit"
	"github.com/PolarWolf314/kapu/internal/cipher"
	"github.com/PolarWolf314/kapu/internal/configs"
	"github.com/PolarWolf314/kapu/internal/keys"
)

// KeyGenOptions configures the keygen workflow.
type KeyGenOptions struct {
	// Cipher selects the backend. Empty means the configured default.
	Cipher cipher.Kind

	// OutputPath is where the key file is written. Empty means
	// <keys dir>/<cipher>-<key id>.toml.
	OutputPath string

	// PrimeMin and PrimeMax override the configured Rabin prime range when
	// both are set.
	PrimeMin int64
	PrimeMax int64
}

// KeyGenResult contains the outcome of a keygen operation.
type KeyGenResult struct {
	// File is the generated key record, including private material.
	File *keys.File

	// OutputPath is where the full key file was written.
	OutputPath string

	// PublicKeyPath is where the shareable public key was written. Empty
	// for symmetric ciphers.
	PublicKeyPath string
}

// KeyGen generates a key for the chosen cipher and writes it to disk.
//
// Rabin keys are written twice: the full file with p and q, and a ".pub"
// file carrying only n, which is all an encrypting party needs.
//
// Returns ErrUnknownCipher for an unsupported cipher.
// Returns ErrKeyGenerationExhausted if the prime range has fewer than two
// qualifying primes.
func KeyGen(ctx context.Context, opts KeyGenOptions) (*KeyGenResult, error) {
	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("loading user config: %w", err)
	}

	kind := opts.Cipher
	if kind == "" {
		kind = userConfig.DefaultCipher()
	}

	var backend cipher.Backend
	if kind == cipher.Rabin && (opts.PrimeMin != 0 || opts.PrimeMax != 0) {
		backend = cipher.NewRabin(opts.PrimeMin, opts.PrimeMax)
	} else {
		backend, err = userConfig.Backend(kind)
		if err != nil {
			return nil, err
		}
	}

	file, err := keys.Generate(kind, backend)
	if err != nil {
		return nil, err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(configs.UserKapuSettings.UserKeysPath, fmt.Sprintf("%s-%s.toml", kind, file.KeyID))
	}

	if err := keys.Save(outputPath, file); err != nil {
		return nil, err
	}

	result := &KeyGenResult{
		File:       file,
		OutputPath: outputPath,
	}

	if kind == cipher.Rabin {
		result.PublicKeyPath = outputPath + ".pub"
		if err := keys.Save(result.PublicKeyPath, file.PublicOnly()); err != nil {
			return nil, err
		}
	}

	auditEntry := audit.LogWithUser(audit.OpKeygen)
	auditEntry.Path = outputPath
	auditEntry.Cipher = string(kind)
	auditEntry.Outcome = audit.OutcomeOK
	audit.Log(auditEntry)

	return result, nil
}
