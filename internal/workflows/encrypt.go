package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/kapu/internal/audit"
	"github.com/PolarWolf314/kapu/internal/cipher"
	"github.com/PolarWolf314/kapu/internal/configs"
	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	logger "github.com/PolarWolf314/kapu/internal/logging"
	"github.com/PolarWolf314/kapu/internal/vault"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	// Cipher selects the backend. Empty means the key file's cipher or the
	// configured default.
	Cipher cipher.Kind

	// KeySource supplies the encryption key.
	KeySource

	// Plaintext is the message to protect.
	Plaintext string

	// OutputPath is the artifact path. Sidecars are written next to it.
	OutputPath string

	// ExpiryHours and MaxAttempts fall back to the configured security
	// defaults when nil.
	ExpiryHours *float64
	MaxAttempts *int

	// DecoyPassword triggers the decoy when supplied at decryption.
	DecoyPassword string

	// DecoyContent is encrypted with the same backend and key before it is
	// stored, so it decrypts exactly like the real artifact.
	DecoyContent string

	Logger logger.Logger
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	// Cipher is the backend that produced the ciphertext.
	Cipher cipher.Kind

	// OutputPath is the artifact path.
	OutputPath string

	// Files lists every file written for the artifact.
	Files []string

	// Ciphertext is the stored ciphertext.
	Ciphertext string

	// Metadata is the access policy written to the sidecar.
	Metadata *vault.Metadata
}

// Encrypt encrypts the plaintext and stores it as a protected artifact.
//
// Returns ErrInvalidKey if no usable key is supplied.
// Returns ErrChunkTooLarge if the Rabin modulus is too small for the message.
// Returns ErrInvalidOptions if the security options are out of range.
func Encrypt(ctx context.Context, opts EncryptOptions) (*EncryptResult, error) {
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("%w: output path cannot be empty", kerrors.ErrInvalidOptions)
	}

	resolved, err := resolveKey(opts.Cipher, opts.KeySource, true)
	if err != nil {
		return nil, err
	}
	opts.Logger.Infof("Encrypting with %s", resolved.Kind)

	ciphertext, err := resolved.Backend.Encrypt(opts.Plaintext, resolved.Key)
	if err != nil {
		return nil, err
	}

	storeOpts, err := securityOptions(opts)
	if err != nil {
		return nil, err
	}

	if opts.DecoyContent != "" {
		decoy, err := resolved.Backend.Encrypt(opts.DecoyContent, resolved.Key)
		if err != nil {
			return nil, fmt.Errorf("encrypting decoy content: %w", err)
		}
		storeOpts.DecoyContent = decoy
	}
	if opts.DecoyPassword != "" && opts.DecoyContent == "" {
		opts.Logger.WarnfAlways("A decoy password without decoy content denies access when it is used")
	}

	manager := newManager(opts.Logger)
	if err := manager.Store(opts.OutputPath, ciphertext, storeOpts); err != nil {
		return nil, err
	}

	md, err := manager.Metadata(opts.OutputPath)
	if err != nil {
		return nil, err
	}

	files := []string{opts.OutputPath, vault.MetadataPath(opts.OutputPath)}
	if md.HasFakeContent {
		files = append(files, vault.DecoyPath(opts.OutputPath))
	}

	auditEntry := audit.LogWithUser(audit.OpStore)
	auditEntry.Path = opts.OutputPath
	auditEntry.Cipher = string(resolved.Kind)
	auditEntry.Outcome = audit.OutcomeOK
	audit.Log(auditEntry)

	return &EncryptResult{
		Cipher:     resolved.Kind,
		OutputPath: opts.OutputPath,
		Files:      files,
		Ciphertext: ciphertext,
		Metadata:   md,
	}, nil
}

// securityOptions applies the configured defaults to unset options.
func securityOptions(opts EncryptOptions) (vault.StoreOptions, error) {
	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return vault.StoreOptions{}, fmt.Errorf("loading user config: %w", err)
	}

	storeOpts := vault.StoreOptions{
		ExpiryHours:   opts.ExpiryHours,
		MaxAttempts:   opts.MaxAttempts,
		DecoyPassword: opts.DecoyPassword,
	}
	if storeOpts.ExpiryHours == nil && userConfig.Security.ExpiryHours > 0 {
		hours := userConfig.Security.ExpiryHours
		storeOpts.ExpiryHours = &hours
	}
	if storeOpts.MaxAttempts == nil && userConfig.Security.MaxAttempts > 0 {
		attempts := userConfig.Security.MaxAttempts
		storeOpts.MaxAttempts = &attempts
	}
	if storeOpts.MaxAttempts != nil && *storeOpts.MaxAttempts < vault.UnlimitedAttempts {
		return vault.StoreOptions{}, fmt.Errorf("%w: max attempts must be -1 or greater", kerrors.ErrInvalidOptions)
	}
	return storeOpts, nil
}

// artifactExists reports whether any file of the artifact is present.
func artifactExists(path string) bool {
	for _, p := range []string{path, vault.MetadataPath(path), vault.DecoyPath(path)} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}
