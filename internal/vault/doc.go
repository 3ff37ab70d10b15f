// Package vault stores encrypted artifacts together with an access policy.
//
// # Artifact Layout
//
// An artifact is up to three files keyed by one base path:
//
//   - <path>: the ciphertext, as produced by a cipher backend
//   - <path>.meta: the JSON metadata sidecar (see Metadata)
//   - <path>.fake: the decoy content, present only when configured
//
// The Manager owns the lifecycle of all three. It writes them together in
// Store and removes them together when an artifact expires or runs out of
// attempts. The Store interface only reads and rewrites metadata; it never
// decides to delete anything.
//
// # Access Checks
//
// CheckAccess evaluates, in order: missing metadata (allowed, unprotected),
// expiry (deleted, ErrExpired), exhausted attempts (deleted,
// ErrAttemptsExhausted), attempt decrement, decoy password (decoy served, or
// ErrInvalidPassword when no decoy content exists), and finally plain
// access with the remaining-attempts message.
//
// # Concurrency
//
// A Manager serializes its own operations with a mutex, so goroutines
// sharing one Manager never double-decrement. Nothing coordinates separate
// processes: two programs checking the same artifact at once can both pass
// the exhaustion check. The sidecar files are plaintext and offer no
// protection against someone with filesystem access.
package vault
