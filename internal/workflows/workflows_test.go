package workflows

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/kapu/internal/audit"
	"github.com/PolarWolf314/kapu/internal/cipher"
	"github.com/PolarWolf314/kapu/internal/configs"
	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	"github.com/PolarWolf314/kapu/internal/keys"
	"github.com/PolarWolf314/kapu/internal/vault"
)

const (
	testPublicKey   = "95477" // 307 * 311
	testPrivateKeys = "307:311"
)

// setupWorkflowTest isolates settings and returns a directory for artifacts.
func setupWorkflowTest(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	original := configs.UserKapuSettings
	configs.UserKapuSettings = &configs.UserSettings{
		UserConfigsPath: filepath.Join(tempDir, "config"),
		UserKeysPath:    filepath.Join(tempDir, "keys"),
		AuditLogPath:    filepath.Join(tempDir, "audit.jsonl"),
		Username:        "testuser",
	}
	t.Cleanup(func() {
		configs.UserKapuSettings = original
	})

	artifactDir := filepath.Join(tempDir, "artifacts")
	if err := os.MkdirAll(artifactDir, 0700); err != nil {
		t.Fatalf("Failed to create artifact dir: %v", err)
	}
	return artifactDir
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func encryptRabin(t *testing.T, opts EncryptOptions) *EncryptResult {
	t.Helper()
	opts.Cipher = cipher.Rabin
	opts.Key = testPublicKey
	result, err := Encrypt(context.Background(), opts)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	return result
}

func decryptRabin(path, password string) (*DecryptResult, error) {
	return Decrypt(context.Background(), DecryptOptions{
		Cipher:    cipher.Rabin,
		KeySource: KeySource{Key: testPrivateKeys},
		Password:  password,
		Path:      path,
	})
}

func assertGone(t *testing.T, path string) {
	t.Helper()
	for _, p := range []string{path, vault.MetadataPath(path), vault.DecoyPath(path)} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be deleted", p)
		}
	}
}

func TestEncryptDecryptUnprotected(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "hello.enc")

	result := encryptRabin(t, EncryptOptions{Plaintext: "HELLO", OutputPath: path})
	if result.Metadata.AttemptsLeft != vault.UnlimitedAttempts {
		t.Errorf("Expected unlimited attempts, got %d", result.Metadata.AttemptsLeft)
	}
	if len(result.Files) != 2 {
		t.Errorf("Expected ciphertext and metadata files, got %v", result.Files)
	}

	decrypted, err := decryptRabin(path, "")
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if decrypted.Plaintext != "HELLO" {
		t.Errorf("Expected HELLO, got %q", decrypted.Plaintext)
	}
	if decrypted.Decoy {
		t.Error("Expected real content")
	}
	if decrypted.Message != "" {
		t.Errorf("Expected empty message, got %q", decrypted.Message)
	}
}

func TestDecryptSingleAttempt(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "once.enc")

	encryptRabin(t, EncryptOptions{Plaintext: "read me once", OutputPath: path, MaxAttempts: intPtr(1)})

	first, err := decryptRabin(path, "")
	if err != nil {
		t.Fatalf("First decrypt failed: %v", err)
	}
	if first.Plaintext != "read me once" {
		t.Errorf("Unexpected plaintext %q", first.Plaintext)
	}
	if first.Message != "Attempts left: 0" {
		t.Errorf("Expected remaining attempts message, got %q", first.Message)
	}

	_, err = decryptRabin(path, "")
	if !errors.Is(err, kerrors.ErrAttemptsExhausted) {
		t.Fatalf("Expected ErrAttemptsExhausted, got %v", err)
	}
	assertGone(t, path)

	_, err = decryptRabin(path, "")
	if !errors.Is(err, kerrors.ErrArtifactNotFound) {
		t.Errorf("Expected ErrArtifactNotFound after deletion, got %v", err)
	}
}

func TestDecryptExpired(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "expired.enc")

	encryptRabin(t, EncryptOptions{
		Plaintext:     "too late",
		OutputPath:    path,
		ExpiryHours:   floatPtr(0),
		DecoyPassword: "abc123",
		DecoyContent:  "harmless text",
	})

	_, err := decryptRabin(path, "")
	if !errors.Is(err, kerrors.ErrExpired) {
		t.Fatalf("Expected ErrExpired, got %v", err)
	}
	assertGone(t, path)
}

func TestDecryptServesDecoy(t *testing.T) {
	for _, kind := range cipher.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			dir := setupWorkflowTest(t)
			path := filepath.Join(dir, "decoy.enc")

			encKey, decKey := testPublicKey, testPrivateKeys
			if kind == cipher.Substitution {
				encKey, decKey = "s3cretKey", "s3cretKey"
			}

			_, err := Encrypt(context.Background(), EncryptOptions{
				Cipher:        kind,
				KeySource:     KeySource{Key: encKey},
				Plaintext:     "the real plan",
				OutputPath:    path,
				DecoyPassword: "abc123",
				DecoyContent:  "harmless text",
			})
			if err != nil {
				t.Fatalf("Encrypt failed: %v", err)
			}

			decoy, err := Decrypt(context.Background(), DecryptOptions{
				Cipher:    kind,
				KeySource: KeySource{Key: decKey},
				Password:  "abc123",
				Path:      path,
			})
			if err != nil {
				t.Fatalf("Decrypt with decoy password failed: %v", err)
			}
			if !decoy.Decoy || decoy.Plaintext != "harmless text" {
				t.Errorf("Expected decoy content, got %+v", decoy)
			}

			genuine, err := Decrypt(context.Background(), DecryptOptions{
				Cipher:    kind,
				KeySource: KeySource{Key: decKey},
				Path:      path,
			})
			if err != nil {
				t.Fatalf("Decrypt with key as password failed: %v", err)
			}
			if genuine.Decoy || genuine.Plaintext != "the real plan" {
				t.Errorf("Expected real content, got %+v", genuine)
			}
		})
	}
}

func TestDecryptDecoyPasswordWithoutContent(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "nodecoy.enc")

	encryptRabin(t, EncryptOptions{Plaintext: "HELLO", OutputPath: path, DecoyPassword: "abc123"})

	_, err := decryptRabin(path, "abc123")
	if !errors.Is(err, kerrors.ErrInvalidPassword) {
		t.Fatalf("Expected ErrInvalidPassword, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Invalid password must not delete the artifact: %v", err)
	}
}

func TestEncryptChunkTooLarge(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "small.enc")

	// 7 * 11 = 77 is smaller than most base64 symbols.
	_, err := Encrypt(context.Background(), EncryptOptions{
		Cipher:     cipher.Rabin,
		KeySource:  KeySource{Key: "77"},
		Plaintext:  "HELLO",
		OutputPath: path,
	})
	if !errors.Is(err, kerrors.ErrChunkTooLarge) {
		t.Fatalf("Expected ErrChunkTooLarge, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("No artifact should be written when encryption fails")
	}
}

func TestEncryptRejectsInvalidOptions(t *testing.T) {
	dir := setupWorkflowTest(t)

	_, err := Encrypt(context.Background(), EncryptOptions{
		Cipher:      cipher.Rabin,
		KeySource:   KeySource{Key: testPublicKey},
		Plaintext:   "HELLO",
		OutputPath:  filepath.Join(dir, "bad.enc"),
		MaxAttempts: intPtr(-2),
	})
	if !errors.Is(err, kerrors.ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}

	_, err = Encrypt(context.Background(), EncryptOptions{
		Cipher:    cipher.Rabin,
		KeySource: KeySource{Key: testPublicKey},
		Plaintext: "HELLO",
	})
	if !errors.Is(err, kerrors.ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions for empty path, got %v", err)
	}

	_, err = Encrypt(context.Background(), EncryptOptions{
		Cipher:     cipher.Rabin,
		Plaintext:  "HELLO",
		OutputPath: filepath.Join(dir, "nokey.enc"),
	})
	if !errors.Is(err, kerrors.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey without a key, got %v", err)
	}
}

func TestEncryptAppliesConfiguredDefaults(t *testing.T) {
	dir := setupWorkflowTest(t)

	config := configs.DefaultUserConfig()
	config.Security.MaxAttempts = 2
	config.Security.ExpiryHours = 24
	if err := configs.SaveUserConfig(config); err != nil {
		t.Fatalf("SaveUserConfig failed: %v", err)
	}

	result := encryptRabin(t, EncryptOptions{Plaintext: "HELLO", OutputPath: filepath.Join(dir, "defaults.enc")})
	if result.Metadata.AttemptsLeft != 2 {
		t.Errorf("Expected configured max attempts 2, got %d", result.Metadata.AttemptsLeft)
	}
	if result.Metadata.ExpiryTime == nil {
		t.Error("Expected configured expiry to be applied")
	}

	explicit := encryptRabin(t, EncryptOptions{Plaintext: "HELLO", OutputPath: filepath.Join(dir, "explicit.enc"), MaxAttempts: intPtr(-1)})
	if explicit.Metadata.AttemptsLeft != vault.UnlimitedAttempts {
		t.Errorf("Explicit option should win over config, got %d", explicit.Metadata.AttemptsLeft)
	}
}

func TestKeyGenRabin(t *testing.T) {
	dir := setupWorkflowTest(t)
	keyPath := filepath.Join(dir, "rabin.toml")

	result, err := KeyGen(context.Background(), KeyGenOptions{Cipher: cipher.Rabin, OutputPath: keyPath})
	if err != nil {
		t.Fatalf("KeyGen failed: %v", err)
	}
	if result.PublicKeyPath != keyPath+".pub" {
		t.Errorf("Unexpected public key path %q", result.PublicKeyPath)
	}

	full, err := keys.Load(keyPath)
	if err != nil {
		t.Fatalf("Failed to load key file: %v", err)
	}
	if full.Rabin == nil || full.Rabin.P == "" || full.Rabin.Q == "" {
		t.Fatalf("Expected private keys in %s", keyPath)
	}

	public, err := keys.Load(result.PublicKeyPath)
	if err != nil {
		t.Fatalf("Failed to load public key file: %v", err)
	}
	if public.Rabin.P != "" || public.Rabin.Q != "" {
		t.Error("Public key file must not carry p or q")
	}
	if public.Rabin.PublicKey != full.Rabin.PublicKey {
		t.Error("Public key file does not match the full key file")
	}

	// Encrypt with the public file, decrypt with the full one.
	path := filepath.Join(dir, "keyfile.enc")
	if _, err := Encrypt(context.Background(), EncryptOptions{
		KeySource:  KeySource{KeyFile: result.PublicKeyPath},
		Plaintext:  "from a key file",
		OutputPath: path,
	}); err != nil {
		t.Fatalf("Encrypt with key file failed: %v", err)
	}

	decrypted, err := Decrypt(context.Background(), DecryptOptions{
		KeySource: KeySource{KeyFile: keyPath},
		Path:      path,
	})
	if err != nil {
		t.Fatalf("Decrypt with key file failed: %v", err)
	}
	if decrypted.Plaintext != "from a key file" || decrypted.Cipher != cipher.Rabin {
		t.Errorf("Unexpected result %+v", decrypted)
	}
}

func TestKeyGenSubstitutionDefaultPath(t *testing.T) {
	setupWorkflowTest(t)

	result, err := KeyGen(context.Background(), KeyGenOptions{Cipher: cipher.Substitution})
	if err != nil {
		t.Fatalf("KeyGen failed: %v", err)
	}
	if !strings.HasPrefix(result.OutputPath, configs.UserKapuSettings.UserKeysPath) {
		t.Errorf("Expected key in keys dir, got %s", result.OutputPath)
	}
	if result.PublicKeyPath != "" {
		t.Errorf("Substitution keys have no public file, got %s", result.PublicKeyPath)
	}
	if len(result.File.Substitution.Key) != 10 {
		t.Errorf("Expected a 10 character key, got %q", result.File.Substitution.Key)
	}
}

func TestKeyGenExhaustedRange(t *testing.T) {
	setupWorkflowTest(t)

	// 300..306 holds no prime congruent to 3 mod 4.
	_, err := KeyGen(context.Background(), KeyGenOptions{Cipher: cipher.Rabin, PrimeMin: 300, PrimeMax: 306})
	if !errors.Is(err, kerrors.ErrKeyGenerationExhausted) {
		t.Errorf("Expected ErrKeyGenerationExhausted, got %v", err)
	}
}

func TestKeyFileCipherMismatch(t *testing.T) {
	dir := setupWorkflowTest(t)
	keyPath := filepath.Join(dir, "sub.toml")

	if _, err := KeyGen(context.Background(), KeyGenOptions{Cipher: cipher.Substitution, OutputPath: keyPath}); err != nil {
		t.Fatalf("KeyGen failed: %v", err)
	}

	_, err := Encrypt(context.Background(), EncryptOptions{
		Cipher:     cipher.Rabin,
		KeySource:  KeySource{KeyFile: keyPath},
		Plaintext:  "HELLO",
		OutputPath: filepath.Join(dir, "mismatch.enc"),
	})
	if !errors.Is(err, kerrors.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestInfoDoesNotConsumeAttempts(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "info.enc")

	encryptRabin(t, EncryptOptions{Plaintext: "HELLO", OutputPath: path, MaxAttempts: intPtr(3), DecoyPassword: "abc123", DecoyContent: "x"})

	for i := 0; i < 2; i++ {
		result, err := Info(context.Background(), InfoOptions{Path: path})
		if err != nil {
			t.Fatalf("Info failed: %v", err)
		}
		if result.Metadata == nil || result.Metadata.AttemptsLeft != 3 {
			t.Fatalf("Info must not consume attempts, got %+v", result.Metadata)
		}
		if len(result.Files) != 3 {
			t.Errorf("Expected 3 artifact files, got %v", result.Files)
		}
		joined := strings.Join(result.Lines, "\n")
		if !strings.Contains(joined, "Attempts left: 3") {
			t.Errorf("Expected attempts line, got %q", joined)
		}
	}

	if _, err := Info(context.Background(), InfoOptions{Path: filepath.Join(dir, "missing.enc")}); !errors.Is(err, kerrors.ErrArtifactNotFound) {
		t.Errorf("Expected ErrArtifactNotFound, got %v", err)
	}
}

func TestPurge(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "purge.enc")

	encryptRabin(t, EncryptOptions{Plaintext: "HELLO", OutputPath: path, DecoyPassword: "abc123", DecoyContent: "x"})

	result, err := Purge(context.Background(), PurgeOptions{Path: path})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if len(result.Files) != 3 {
		t.Errorf("Expected 3 purged files, got %v", result.Files)
	}
	assertGone(t, path)
}

func TestLogRecordsOperations(t *testing.T) {
	dir := setupWorkflowTest(t)
	path := filepath.Join(dir, "logged.enc")

	if _, err := Log(context.Background(), LogOptions{}); !errors.Is(err, kerrors.ErrNoAuditLog) {
		t.Fatalf("Expected ErrNoAuditLog before any operation, got %v", err)
	}

	encryptRabin(t, EncryptOptions{Plaintext: "HELLO", OutputPath: path, MaxAttempts: intPtr(1)})
	if _, err := decryptRabin(path, ""); err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if _, err := decryptRabin(path, ""); !errors.Is(err, kerrors.ErrAttemptsExhausted) {
		t.Fatalf("Expected ErrAttemptsExhausted, got %v", err)
	}

	all, err := Log(context.Background(), LogOptions{})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	var ops []string
	for _, e := range all.Entries {
		ops = append(ops, e.Operation)
	}
	want := []string{audit.OpStore, audit.OpAccess, audit.OpDeny, audit.OpDelete}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Errorf("Expected ops %v, got %v", want, ops)
	}

	denied, err := Log(context.Background(), LogOptions{Operations: "deny", Path: path})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(denied.Entries) != 1 || denied.Entries[0].Outcome != audit.OutcomeDenied {
		t.Errorf("Expected one denied entry, got %+v", denied.Entries)
	}

	latest, err := Log(context.Background(), LogOptions{Limit: 1, Reverse: true})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(latest.Entries) != 1 || latest.Entries[0].Operation != audit.OpDelete {
		t.Errorf("Expected the delete entry first, got %+v", latest.Entries)
	}

	if _, err := Log(context.Background(), LogOptions{Since: "yesterday"}); !errors.Is(err, kerrors.ErrInvalidDateFormat) {
		t.Errorf("Expected ErrInvalidDateFormat, got %v", err)
	}
}

func TestFormatDetails(t *testing.T) {
	e := audit.Entry{Cipher: "rabin", Outcome: audit.OutcomeDenied, Message: "Invalid password"}
	if got := FormatDetails(e); got != "rabin, denied, Invalid password" {
		t.Errorf("Unexpected details %q", got)
	}
	if got := FormatDetails(audit.Entry{Cipher: "rabin", Outcome: audit.OutcomeOK}); got != "rabin" {
		t.Errorf("Unexpected details %q", got)
	}
}
