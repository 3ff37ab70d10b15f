package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
)

const (
	// MetadataExtension is appended to the artifact path for the sidecar.
	MetadataExtension = ".meta"

	// DecoyExtension is appended to the artifact path for decoy content.
	DecoyExtension = ".fake"

	// UnlimitedAttempts marks an artifact that never runs out of attempts.
	UnlimitedAttempts = -1
)

// Metadata is the access policy of one artifact. Timestamps are Unix
// seconds with a fractional part.
type Metadata struct {
	CreatedAt        float64  `json:"created_at"`
	AttemptsLeft     int      `json:"attempts_left"`
	ExpiryTime       *float64 `json:"expiry_time"`
	FakePasswordHash *string  `json:"fake_password_hash"`
	HasFakeContent   bool     `json:"has_fake_content"`
}

// Created returns CreatedAt as a time.
func (m *Metadata) Created() time.Time {
	return fromEpoch(m.CreatedAt)
}

// Expiry returns the expiry time, if one is set.
func (m *Metadata) Expiry() (time.Time, bool) {
	if m.ExpiryTime == nil {
		return time.Time{}, false
	}
	return fromEpoch(*m.ExpiryTime), true
}

// Bounded reports whether the artifact has a finite number of attempts.
func (m *Metadata) Bounded() bool {
	return m.AttemptsLeft != UnlimitedAttempts
}

// MetadataPath returns the sidecar path for an artifact.
func MetadataPath(artifactPath string) string {
	return artifactPath + MetadataExtension
}

// DecoyPath returns the decoy content path for an artifact.
func DecoyPath(artifactPath string) string {
	return artifactPath + DecoyExtension
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpoch(seconds float64) time.Time {
	return time.Unix(0, int64(seconds*float64(time.Second)))
}

// Store persists metadata records. Reads of a missing record return
// ErrMetadataNotFound. Writes replace the whole record.
type Store interface {
	Read(artifactPath string) (*Metadata, error)
	Write(artifactPath string, md *Metadata) error
}

// FileStore keeps each record in a JSON sidecar next to the artifact.
type FileStore struct{}

// NewFileStore returns a sidecar-backed store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// rawMetadata distinguishes an absent attempts_left from zero.
type rawMetadata struct {
	CreatedAt        float64  `json:"created_at"`
	AttemptsLeft     *int     `json:"attempts_left"`
	ExpiryTime       *float64 `json:"expiry_time"`
	FakePasswordHash *string  `json:"fake_password_hash"`
	HasFakeContent   bool     `json:"has_fake_content"`
}

// Read loads the sidecar for artifactPath. A record without attempts_left
// is treated as unlimited, and an expiry_time of 0 as no expiry.
func (s *FileStore) Read(artifactPath string) (*Metadata, error) {
	metaPath := MetadataPath(artifactPath)

	data, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return nil, kerrors.ErrMetadataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", kerrors.ErrIOFailure, metaPath, err)
	}

	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed metadata in %s: %v", kerrors.ErrIOFailure, metaPath, err)
	}

	md := &Metadata{
		CreatedAt:        raw.CreatedAt,
		AttemptsLeft:     UnlimitedAttempts,
		ExpiryTime:       raw.ExpiryTime,
		FakePasswordHash: raw.FakePasswordHash,
		HasFakeContent:   raw.HasFakeContent,
	}
	if raw.AttemptsLeft != nil {
		md.AttemptsLeft = *raw.AttemptsLeft
	}
	if md.ExpiryTime != nil && *md.ExpiryTime == 0 {
		md.ExpiryTime = nil
	}
	return md, nil
}

// Write replaces the sidecar for artifactPath.
func (s *FileStore) Write(artifactPath string, md *Metadata) error {
	metaPath := MetadataPath(artifactPath)

	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("%w: encoding metadata: %v", kerrors.ErrIOFailure, err)
	}
	if err := os.WriteFile(metaPath, data, 0600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", kerrors.ErrIOFailure, metaPath, err)
	}
	return nil
}
