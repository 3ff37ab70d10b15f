package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/kapu/internal/audit"
	"github.com/PolarWolf314/kapu/internal/keys"
)

// TestVaultRabinRoundTrip contains integration tests for `kapu vault` with the Rabin cipher.
func TestVaultRabinRoundTrip(t *testing.T) {
	t.Run("EncryptDecryptWithRawKeys", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		artifact := filepath.Join(dir, "hello.enc")

		output := runCLI(t, "vault", "encrypt", "--cipher", "rabin", "--key", "95477", "--text", "HELLO", "--out", artifact)
		if !strings.Contains(output, "Message encrypted with 'rabin'") {
			t.Errorf("Expected success message, got: %s", output)
		}
		if _, err := os.Stat(artifact + ".meta"); err != nil {
			t.Errorf("Expected metadata sidecar: %v", err)
		}

		output = runCLI(t, "vault", "decrypt", "--cipher", "rabin", "--key", "307:311", "--file", artifact)
		if !strings.Contains(output, "Artifact decrypted\nHELLO") {
			t.Errorf("Expected decrypted HELLO, got: %s", output)
		}
	})

	t.Run("EncryptDecryptWithKeyFiles", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		keyFile := filepath.Join(dir, "alice.toml")
		artifact := filepath.Join(dir, "note.enc")
		plainOut := filepath.Join(dir, "note.txt")

		output := runCLI(t, "vault", "keygen", "--cipher", "rabin", "--out", keyFile)
		if !strings.Contains(output, "Generated 'rabin' key") {
			t.Errorf("Expected keygen message, got: %s", output)
		}
		if _, err := keys.Load(keyFile + ".pub"); err != nil {
			t.Fatalf("Expected public key file: %v", err)
		}

		runCLI(t, "vault", "encrypt", "--key-file", keyFile+".pub", "--text", "meet at noon", "--out", artifact)
		output = runCLI(t, "vault", "decrypt", "--key-file", keyFile, "--file", artifact, "--out", plainOut)
		if !strings.Contains(output, "Plaintext written to") {
			t.Errorf("Expected plaintext file message, got: %s", output)
		}

		data, err := os.ReadFile(plainOut)
		if err != nil {
			t.Fatalf("Failed to read plaintext: %v", err)
		}
		if string(data) != "meet at noon" {
			t.Errorf("Expected 'meet at noon', got %q", data)
		}
	})

	t.Run("KeyTooSmall", func(t *testing.T) {
		dir := setupTestEnvironment(t)

		output := runCLI(t, "vault", "encrypt", "--cipher", "rabin", "--key", "77", "--text", "HELLO", "--out", filepath.Join(dir, "x.enc"))
		if !strings.Contains(output, "The public key is too small for this message") {
			t.Errorf("Expected chunk too large message, got: %s", output)
		}
	})
}

// TestVaultProtection contains integration tests for the vault's access policy.
func TestVaultProtection(t *testing.T) {
	t.Run("SingleAttempt", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		artifact := filepath.Join(dir, "once.enc")

		runCLI(t, "vault", "encrypt", "--cipher", "substitution", "--key", "k3y", "--text", "burn after reading", "--out", artifact, "--max-attempts", "1")

		output := runCLI(t, "vault", "decrypt", "--cipher", "substitution", "--key", "k3y", "--file", artifact)
		if !strings.Contains(output, "burn after reading") || !strings.Contains(output, "(Attempts left: 0)") {
			t.Errorf("Expected plaintext with attempts left, got: %s", output)
		}

		output = runCLI(t, "vault", "decrypt", "--cipher", "substitution", "--key", "k3y", "--file", artifact)
		if !strings.Contains(output, "Maximum attempts exceeded") {
			t.Errorf("Expected exhaustion message, got: %s", output)
		}
		if _, err := os.Stat(artifact); !os.IsNotExist(err) {
			t.Error("Expected artifact to be deleted")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		artifact := filepath.Join(dir, "expired.enc")

		runCLI(t, "vault", "encrypt", "--cipher", "substitution", "--key", "k3y", "--text", "old news", "--out", artifact, "--expiry-hours", "0")

		output := runCLI(t, "vault", "decrypt", "--cipher", "substitution", "--key", "k3y", "--file", artifact)
		if !strings.Contains(output, "expired") {
			t.Errorf("Expected expiry message, got: %s", output)
		}
		for _, p := range []string{artifact, artifact + ".meta"} {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("Expected %s to be deleted", p)
			}
		}
	})

	t.Run("Decoy", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		artifact := filepath.Join(dir, "decoy.enc")

		runCLI(t, "vault", "encrypt", "--cipher", "rabin", "--key", "95477", "--text", "the real plan", "--out", artifact,
			"--decoy-password", "abc123", "--decoy-content", "harmless text")

		output := runCLI(t, "vault", "decrypt", "--cipher", "rabin", "--key", "307:311", "--file", artifact, "--password", "abc123")
		if !strings.Contains(output, "harmless text") || strings.Contains(output, "the real plan") {
			t.Errorf("Expected decoy content only, got: %s", output)
		}

		output = runCLI(t, "vault", "decrypt", "--cipher", "rabin", "--key", "307:311", "--file", artifact)
		if !strings.Contains(output, "the real plan") {
			t.Errorf("Expected real content, got: %s", output)
		}
	})

	t.Run("InfoAndPurge", func(t *testing.T) {
		dir := setupTestEnvironment(t)
		artifact := filepath.Join(dir, "info.enc")

		runCLI(t, "vault", "encrypt", "--cipher", "rabin", "--key", "95477", "--text", "HELLO", "--out", artifact, "--max-attempts", "2")

		output := runCLI(t, "vault", "info", "--file", artifact)
		if !strings.Contains(output, "Attempts left: 2") {
			t.Errorf("Expected attempts in info, got: %s", output)
		}

		output = runCLI(t, "vault", "purge", "--file", artifact)
		if !strings.Contains(output, "Artifact purged") {
			t.Errorf("Expected purge message, got: %s", output)
		}
		if _, err := os.Stat(artifact); !os.IsNotExist(err) {
			t.Error("Expected artifact to be deleted")
		}

		output = runCLI(t, "vault", "info", "--file", artifact)
		if !strings.Contains(output, "artifact not found") {
			t.Errorf("Expected not found message, got: %s", output)
		}
	})

	t.Run("UnknownCipherFlag", func(t *testing.T) {
		setupTestEnvironment(t)

		_, err := captureOutput(func() error {
			return createTestCLI("vault", "keygen", "--cipher", "des").Execute()
		})
		if err == nil {
			t.Error("Expected an error for an unknown cipher")
		}
	})
}

func TestVaultLog(t *testing.T) {
	dir := setupTestEnvironment(t)
	artifact := filepath.Join(dir, "logged.enc")

	output := runCLI(t, "vault", "log")
	if !strings.Contains(output, "No audit log found") {
		t.Errorf("Expected no log message, got: %s", output)
	}

	runCLI(t, "vault", "encrypt", "--cipher", "rabin", "--key", "95477", "--text", "HELLO", "--out", artifact)
	runCLI(t, "vault", "decrypt", "--cipher", "rabin", "--key", "307:311", "--file", artifact)

	output = runCLI(t, "vault", "log", "--json", "--op", "access")
	start := strings.Index(output, "[")
	if start < 0 {
		t.Fatalf("Expected a JSON array, got: %s", output)
	}
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(output[start:]), &entries); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\n%s", err, output)
	}
	if len(entries) != 1 || entries[0].Path != artifact || entries[0].User != "testuser" {
		t.Errorf("Unexpected entries: %+v", entries)
	}

	output = runCLI(t, "vault", "log", "--since", "not-a-date")
	if !strings.Contains(output, "invalid date format") {
		t.Errorf("Expected date format error, got: %s", output)
	}
}
