package errors

import "errors"

// Key errors indicate missing or malformed key material.
var (
	// ErrKeyGenerationExhausted indicates the prime range produced no usable prime.
	ErrKeyGenerationExhausted = errors.New("no qualifying prime found in range")

	// ErrInvalidKey indicates key material could not be parsed or is inconsistent.
	ErrInvalidKey = errors.New("invalid key")

	// ErrKeyFileNotFound indicates a key file could not be located.
	ErrKeyFileNotFound = errors.New("key file not found")

	// ErrUnknownCipher indicates the requested cipher backend does not exist.
	ErrUnknownCipher = errors.New("unknown cipher")
)

// Cipher errors indicate failures during encryption or decryption.
var (
	// ErrChunkTooLarge indicates a plaintext chunk is not smaller than the modulus.
	ErrChunkTooLarge = errors.New("message chunk too large for key")

	// ErrNoValidRoot indicates no square-root candidate decoded to the expected alphabet.
	ErrNoValidRoot = errors.New("no valid root for ciphertext chunk")

	// ErrInvalidCiphertextFormat indicates malformed hex, length or integer list.
	ErrInvalidCiphertextFormat = errors.New("invalid ciphertext format")

	// ErrDecode indicates the recovered symbols could not be decoded to text.
	ErrDecode = errors.New("failed to decode recovered message")

	// ErrInvalidMessage indicates the plaintext is empty or outside the accepted character set.
	ErrInvalidMessage = errors.New("invalid message")
)

// Access errors are security-layer denials.
var (
	// ErrExpired indicates the artifact passed its expiry time and was deleted.
	ErrExpired = errors.New("artifact has expired and been deleted")

	// ErrAttemptsExhausted indicates the artifact ran out of access attempts and was deleted.
	ErrAttemptsExhausted = errors.New("maximum attempts exceeded, artifact deleted")

	// ErrInvalidPassword indicates the supplied password was rejected.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidOptions indicates the security options are out of range.
	ErrInvalidOptions = errors.New("invalid security options")
)

// Storage errors indicate issues reading or writing artifact files.
var (
	// ErrIOFailure indicates the underlying storage failed.
	ErrIOFailure = errors.New("storage failure")

	// ErrMetadataNotFound indicates the artifact has no metadata sidecar.
	ErrMetadataNotFound = errors.New("security metadata not found")

	// ErrArtifactNotFound indicates the ciphertext or decoy file is missing.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrNoAuditLog indicates no audit log has been written yet.
	ErrNoAuditLog = errors.New("no audit log found")

	// ErrInvalidDateFormat indicates a log filter date is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)
