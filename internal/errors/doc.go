// Package errors provides typed error values for the kapu application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. Front-ends
// render each outcome differently, so every failure the core can produce has
// its own value here.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Key errors: key material is missing or malformed (ErrInvalidKey, ErrKeyFileNotFound)
//   - Cipher errors: encryption/decryption failures (ErrChunkTooLarge, ErrNoValidRoot)
//   - Access errors: security-layer denials (ErrExpired, ErrAttemptsExhausted)
//   - Storage errors: artifact file problems (ErrIOFailure, ErrMetadataNotFound)
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("chunk %d: %w", i, kerrors.ErrNoValidRoot)
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Decrypt(ctx, opts)
//	if errors.Is(err, kerrors.ErrExpired) {
//	    // Tell the user the artifact is gone
//	}
package errors
