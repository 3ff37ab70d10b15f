package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/kapu/internal/audit"
	"github.com/PolarWolf314/kapu/internal/cipher"
	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	logger "github.com/PolarWolf314/kapu/internal/logging"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	// Cipher selects the backend. Empty means the key file's cipher or the
	// configured default.
	Cipher cipher.Kind

	// KeySource supplies the decryption key.
	KeySource

	// Password is checked against the decoy password. Empty means the
	// resolved key string is used as the password.
	Password string

	// Path is the artifact path.
	Path string

	Logger logger.Logger
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	// Cipher is the backend used.
	Cipher cipher.Kind

	// Plaintext is the recovered text, real or decoy.
	Plaintext string

	// Decoy is true when the decoy content was served.
	Decoy bool

	// Message is the access decision message, such as remaining attempts.
	Message string
}

// Decrypt checks access to an artifact and decrypts the permitted content.
//
// Every call counts as an attempt, including calls that then fail to
// decrypt because of a wrong key.
//
// Returns ErrArtifactNotFound if nothing is stored at the path.
// Returns ErrExpired or ErrAttemptsExhausted after deleting the artifact.
// Returns ErrInvalidPassword when a decoy password without decoy content is
// supplied.
// Returns cipher errors (ErrNoValidRoot, ErrDecode, ErrInvalidCiphertextFormat)
// when the key does not fit the ciphertext.
func Decrypt(ctx context.Context, opts DecryptOptions) (*DecryptResult, error) {
	if !artifactExists(opts.Path) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrArtifactNotFound, opts.Path)
	}

	resolved, err := resolveKey(opts.Cipher, opts.KeySource, false)
	if err != nil {
		return nil, err
	}

	password := opts.Password
	if password == "" {
		password = resolved.Key
	}

	manager := newManager(opts.Logger)
	decision, err := manager.CheckAccess(opts.Path, password)
	if err != nil {
		logDenial(opts.Path, resolved.Kind, decision.Message, err)
		return nil, err
	}
	opts.Logger.Infof("Access granted to %s (decoy=%t)", opts.Path, decision.Decoy)

	content, err := manager.ReadContent(opts.Path, decision.Decoy)
	if err != nil {
		return nil, err
	}

	plaintext, err := resolved.Backend.Decrypt(content, resolved.Key)
	if err != nil {
		auditEntry := audit.LogWithUser(audit.OpDecrypt)
		auditEntry.Path = opts.Path
		auditEntry.Cipher = string(resolved.Kind)
		auditEntry.Outcome = audit.OutcomeFailed
		auditEntry.Message = err.Error()
		audit.Log(auditEntry)
		return nil, err
	}

	op := audit.OpAccess
	if decision.Decoy {
		op = audit.OpDecoy
	}
	auditEntry := audit.LogWithUser(op)
	auditEntry.Path = opts.Path
	auditEntry.Cipher = string(resolved.Kind)
	auditEntry.Outcome = audit.OutcomeOK
	auditEntry.Message = decision.Message
	audit.Log(auditEntry)

	return &DecryptResult{
		Cipher:    resolved.Kind,
		Plaintext: plaintext,
		Decoy:     decision.Decoy,
		Message:   decision.Message,
	}, nil
}

// logDenial records a denied access. Expiry and exhaustion also record the
// deletion that came with them.
func logDenial(path string, kind cipher.Kind, message string, err error) {
	outcome := audit.OutcomeDenied
	if !errors.Is(err, kerrors.ErrExpired) && !errors.Is(err, kerrors.ErrAttemptsExhausted) && !errors.Is(err, kerrors.ErrInvalidPassword) {
		outcome = audit.OutcomeFailed
	}
	if message == "" {
		message = err.Error()
	}

	auditEntry := audit.LogWithUser(audit.OpDeny)
	auditEntry.Path = path
	auditEntry.Cipher = string(kind)
	auditEntry.Outcome = outcome
	auditEntry.Message = message
	audit.Log(auditEntry)

	if errors.Is(err, kerrors.ErrExpired) || errors.Is(err, kerrors.ErrAttemptsExhausted) {
		deleteEntry := audit.LogWithUser(audit.OpDelete)
		deleteEntry.Path = path
		deleteEntry.Outcome = audit.OutcomeOK
		deleteEntry.Message = message
		audit.Log(deleteEntry)
	}
}
