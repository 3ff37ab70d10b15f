// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments,
// capturing output, and running commands through a fresh root command.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/PolarWolf314/kapu/internal/configs"
	logger "github.com/PolarWolf314/kapu/internal/logging"
	"github.com/spf13/cobra"
)

// setupTestEnvironment points kapu's settings at a temporary directory and
// returns a directory for artifacts.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	tempUserDir := t.TempDir()
	originalUserSettings := configs.UserKapuSettings
	configs.UserKapuSettings = &configs.UserSettings{
		UserConfigsPath: filepath.Join(tempUserDir, "config"),
		UserKeysPath:    filepath.Join(tempUserDir, "keys"),
		AuditLogPath:    filepath.Join(tempUserDir, "audit.jsonl"),
		Username:        "testuser",
	}

	t.Setenv("NO_COLOR", "1")

	t.Cleanup(func() {
		configs.UserKapuSettings = originalUserSettings
		ResetGlobalState()
		ResetConfigState()
	})

	return t.TempDir()
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// createTestCLI returns a fresh root command wired to the real vault and
// config commands, with global state reset and args set.
func createTestCLI(args ...string) *cobra.Command {
	ResetGlobalState()
	ResetConfigState()

	Logger = logger.Logger{}
	ConfigLogger = logger.Logger{}

	rootCmd := &cobra.Command{
		Use:   "kapu",
		Short: "kapu - a toy Rabin vault with expiring, attempt-limited and decoy-protected artifacts.",
	}
	rootCmd.AddCommand(VaultCmd)
	rootCmd.AddCommand(ConfigCmd)
	rootCmd.SetArgs(args)
	return rootCmd
}

// runCLI executes args against a fresh root command and returns the output.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	output, err := captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
	if err != nil {
		t.Fatalf("kapu %v failed: %v\nOutput: %s", args, err, output)
	}
	return output
}
