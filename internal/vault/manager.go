package vault

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	logger "github.com/PolarWolf314/kapu/internal/logging"
)

// Messages returned with access decisions.
const (
	MsgNoMetadata      = "No security metadata found"
	MsgExpired         = "File has expired and been deleted"
	MsgExhausted       = "Maximum attempts exceeded, file deleted"
	MsgDecoy           = "Accessing fake content"
	MsgInvalidPassword = "Invalid password"
	MsgNoFeatures      = "No security features enabled"
)

// StoreOptions configures the protection written alongside an artifact.
type StoreOptions struct {
	// ExpiryHours sets the expiry relative to now. Nil means no expiry;
	// zero or negative values expire the artifact immediately.
	ExpiryHours *float64

	// MaxAttempts bounds the number of access checks. Nil or -1 means unlimited.
	MaxAttempts *int

	// DecoyPassword, when not empty, is hashed and stored in the metadata.
	DecoyPassword string

	// DecoyContent, when not empty, is written to the decoy sidecar.
	DecoyContent string
}

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Decoy   bool
	Message string
}

// Manager writes artifacts and evaluates access requests against their
// metadata.
type Manager struct {
	store Store
	mu    sync.Mutex

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// Logger traces the access state machine at debug level.
	Logger logger.Logger
}

// NewManager returns a Manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, Now: time.Now}
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Store writes the ciphertext, the optional decoy content, and the metadata.
// All writes have happened when Store returns nil.
func (m *Manager) Store(path, ciphertext string, opts StoreOptions) error {
	attempts := UnlimitedAttempts
	if opts.MaxAttempts != nil {
		attempts = *opts.MaxAttempts
	}
	if attempts < UnlimitedAttempts {
		return fmt.Errorf("%w: max attempts must be -1 or greater, got %d", kerrors.ErrInvalidOptions, attempts)
	}
	if path == "" {
		return fmt.Errorf("%w: artifact path cannot be empty", kerrors.ErrInvalidOptions)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	md := &Metadata{
		CreatedAt:      toEpoch(now),
		AttemptsLeft:   attempts,
		HasFakeContent: opts.DecoyContent != "",
	}
	if opts.ExpiryHours != nil {
		expiry := toEpoch(now.Add(time.Duration(*opts.ExpiryHours * float64(time.Hour))))
		md.ExpiryTime = &expiry
	}
	if opts.DecoyPassword != "" {
		hash := hashPassword(opts.DecoyPassword)
		md.FakePasswordHash = &hash
	}

	if err := os.WriteFile(path, []byte(ciphertext), 0600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", kerrors.ErrIOFailure, path, err)
	}

	// Ciphertext without its metadata would read as unprotected.
	if err := m.writeSidecars(path, md, opts.DecoyContent); err != nil {
		return m.destroy(path, err)
	}

	m.Logger.Debugf("Stored %s (attempts=%d, expiry=%t, decoy password=%t, decoy content=%t)",
		path, md.AttemptsLeft, md.ExpiryTime != nil, md.FakePasswordHash != nil, md.HasFakeContent)
	return nil
}

// writeSidecars writes the decoy and metadata next to the ciphertext.
func (m *Manager) writeSidecars(path string, md *Metadata, decoyContent string) error {
	decoyPath := DecoyPath(path)
	if md.HasFakeContent {
		if err := os.WriteFile(decoyPath, []byte(decoyContent), 0600); err != nil {
			return fmt.Errorf("%w: writing %s: %v", kerrors.ErrIOFailure, decoyPath, err)
		}
	} else if err := removeIfExists(decoyPath); err != nil {
		// A decoy left over from an earlier artifact at this path.
		return err
	}
	return m.store.Write(path, md)
}

// CheckAccess decides whether the artifact at path may be read with
// password, and whether the decoy should be served instead. Denials return
// a Decision with Allowed false together with ErrExpired,
// ErrAttemptsExhausted or ErrInvalidPassword. Expiry and exhaustion delete
// the artifact before returning.
func (m *Manager) CheckAccess(path, password string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	md, err := m.store.Read(path)
	if errors.Is(err, kerrors.ErrMetadataNotFound) {
		m.Logger.Debugf("No metadata for %s, treating as unprotected", path)
		return Decision{Allowed: true, Message: MsgNoMetadata}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	if expiry, ok := md.Expiry(); ok && !m.now().Before(expiry) {
		m.Logger.Debugf("Artifact %s expired at %s", path, expiry.Format(time.RFC3339))
		return Decision{Message: MsgExpired}, m.destroy(path, kerrors.ErrExpired)
	}

	if md.AttemptsLeft == 0 || md.AttemptsLeft < UnlimitedAttempts {
		m.Logger.Debugf("Artifact %s has no attempts left", path)
		return Decision{Message: MsgExhausted}, m.destroy(path, kerrors.ErrAttemptsExhausted)
	}

	if md.AttemptsLeft > 0 {
		md.AttemptsLeft--
		if err := m.store.Write(path, md); err != nil {
			return Decision{}, err
		}
		m.Logger.Debugf("Artifact %s now has %d attempts left", path, md.AttemptsLeft)
	}

	if password != "" && md.FakePasswordHash != nil && passwordMatches(password, *md.FakePasswordHash) {
		if md.HasFakeContent {
			m.Logger.Debugf("Decoy password supplied for %s, serving decoy", path)
			return Decision{Allowed: true, Decoy: true, Message: MsgDecoy}, nil
		}
		m.Logger.Debugf("Decoy password supplied for %s but no decoy content exists", path)
		return Decision{Message: MsgInvalidPassword}, kerrors.ErrInvalidPassword
	}

	message := ""
	if md.Bounded() {
		message = fmt.Sprintf("Attempts left: %d", md.AttemptsLeft)
	}
	return Decision{Allowed: true, Message: message}, nil
}

// destroy deletes the artifact and returns reason, joined with any
// deletion failure.
func (m *Manager) destroy(path string, reason error) error {
	if err := deleteArtifact(path); err != nil {
		return errors.Join(reason, err)
	}
	return reason
}

// ReadContent returns the stored ciphertext, or the decoy content when
// decoy is true. Surrounding whitespace is trimmed.
func (m *Manager) ReadContent(path string, decoy bool) (string, error) {
	target := path
	if decoy {
		target = DecoyPath(path)
	}

	data, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", kerrors.ErrArtifactNotFound, target)
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", kerrors.ErrIOFailure, target, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Delete removes the ciphertext, metadata and decoy files. Missing files
// are ignored.
func (m *Manager) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return deleteArtifact(path)
}

// Describe summarises the protection configured for path, one line per
// feature.
func (m *Manager) Describe(path string) ([]string, error) {
	md, err := m.store.Read(path)
	if errors.Is(err, kerrors.ErrMetadataNotFound) {
		return []string{MsgNoMetadata}, nil
	}
	if err != nil {
		return nil, err
	}

	expiry, expires := md.Expiry()
	if !expires && !md.Bounded() && md.FakePasswordHash == nil {
		return []string{MsgNoFeatures}, nil
	}

	var info []string
	if expires {
		info = append(info, "Expires: "+expiry.Format("2006-01-02 15:04:05"))
	}
	if md.Bounded() {
		info = append(info, fmt.Sprintf("Attempts left: %d", md.AttemptsLeft))
	} else {
		info = append(info, "Unlimited attempts")
	}
	if md.FakePasswordHash != nil {
		info = append(info, "Has fake password protection")
	}
	return info, nil
}

// Metadata returns the raw metadata record for path.
func (m *Manager) Metadata(path string) (*Metadata, error) {
	return m.store.Read(path)
}

func deleteArtifact(path string) error {
	var errs []error
	for _, target := range []string{path, MetadataPath(path), DecoyPath(path)} {
		if err := removeIfExists(target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing %s: %v", kerrors.ErrIOFailure, path, err)
	}
	return nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func passwordMatches(password, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(hashPassword(password)), []byte(strings.ToLower(storedHash))) == 1
}
