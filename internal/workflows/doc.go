// Package workflows provides high-level orchestration for kapu commands.
//
// Workflows combine the cipher backends, key files, the vault and the audit
// log into complete user-facing operations. They know nothing about flags,
// spinners or output formatting; the cmd/ package is a thin layer that
// parses flags, calls a workflow and renders the result.
//
// # Available Workflows
//
//   - KeyGen: generates a Rabin key pair or a substitution key
//   - Encrypt: encrypts a message and stores it as a protected artifact
//   - Decrypt: checks access to an artifact and decrypts the real or decoy content
//   - Info: summarises an artifact's protection without consuming an attempt
//   - Purge: deletes an artifact and its sidecars
//   - Log: reads and filters the audit log
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package so the CLI
// can render each outcome without string matching:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrAttemptsExhausted) {
//	    // The artifact is gone
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Every operation is local and bounded, so it is currently unused.
package workflows
