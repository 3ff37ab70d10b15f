// Package audit records kapu operations in an append-only log.
//
// Key generation, artifact storage and every access decision (allowed,
// decoy served, denied, deleted) are appended to a per-user log so the
// history of an artifact can be reconstructed after it has been destroyed.
//
// # Log Format
//
// The log is JSON Lines at configs.UserKapuSettings.AuditLogPath:
//
//	{"id":"...","ts":"2026-10-14T09:30:00.000000Z","user":"alice","op":"access","path":"note.enc","cipher":"rabin","outcome":"ok"}
//
// # Failure Handling
//
// Audit logging is best-effort. If the log cannot be written the operation
// continues without error.
//
// # Reading Logs
//
// ReadEntries parses the log for display. Malformed lines are skipped.
package audit
