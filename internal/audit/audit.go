package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/kapu/internal/configs"
	"github.com/google/uuid"
)

// Operation names recorded in the log.
const (
	OpKeygen  = "keygen"
	OpStore   = "store"
	OpAccess  = "access"
	OpDecoy   = "decoy"
	OpDeny    = "deny"
	OpDelete  = "delete"
	OpDecrypt = "decrypt"
)

// Outcomes recorded in the log.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeFailed = "failed"
)

// Entry represents a single audit log entry.
type Entry struct {
	ID        string `json:"id"`   // Random UUID.
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Local user performing the action.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	Path    string `json:"path,omitempty"`    // Artifact or key file.
	Cipher  string `json:"cipher,omitempty"`  // Backend name.
	Outcome string `json:"outcome,omitempty"` // ok, denied or failed.
	Message string `json:"message,omitempty"` // Decision message or error text.
}

// Log appends an entry to the audit log.
// Operations should not fail just because audit logging failed, so errors
// are dropped.
func Log(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry for op with the local user filled in.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}
	if configs.UserKapuSettings != nil {
		entry.User = configs.UserKapuSettings.Username
	}
	return entry
}

// LogPath returns the path to the audit log file, or "" when settings are
// not initialized.
func LogPath() string {
	if configs.UserKapuSettings == nil {
		return ""
	}
	return configs.UserKapuSettings.AuditLogPath
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Partial write.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
