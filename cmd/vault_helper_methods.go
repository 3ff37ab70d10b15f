package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/PolarWolf314/kapu/internal/utils"
	"github.com/briandowns/spinner"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. The returned cleanup must be deferred; it prints
// spinner.FinalMSG, adding a trailing newline when missing.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	return startSpinnerWithFlags(message, verbose, debug)
}

// startSpinnerWithFlags is startSpinner for commands with their own flag
// variables, such as the config commands.
func startSpinnerWithFlags(message string, verbose, debugFlag bool) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	// Continue without color if it cannot be set.
	_ = s.Color("cyan")

	quiet := !verbose && !debugFlag
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Cleared so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Printed to stdout for tests to capture.
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// readSecret returns value, or prompts for it without echo when value is "-".
func readSecret(value, prompt string, s *spinner.Spinner) (string, error) {
	if value != "-" {
		return value, nil
	}
	if s.Active() {
		s.Stop()
		defer s.Start()
	}
	return utils.ReadPassword(prompt)
}

// formatVaultError renders an error from a vault workflow for display.
func formatVaultError(err error) string {
	fail := ui.Error.Sprint("✗") + " "
	hint := "\n" + ui.Info.Sprint("→") + " "

	switch {
	case errors.Is(err, kerrors.ErrExpired):
		return fail + "The artifact has expired and has been deleted"

	case errors.Is(err, kerrors.ErrAttemptsExhausted):
		return fail + "Maximum attempts exceeded, the artifact has been deleted"

	case errors.Is(err, kerrors.ErrInvalidPassword):
		return fail + "Invalid password" +
			hint + "This attempt has been counted"

	case errors.Is(err, kerrors.ErrArtifactNotFound):
		return fail + err.Error() +
			hint + "Check the path passed to " + ui.Flag.Sprint("--file")

	case errors.Is(err, kerrors.ErrChunkTooLarge):
		return fail + "The public key is too small for this message" +
			hint + "Generate a larger key with " + ui.Code.Sprint("kapu vault keygen")

	case errors.Is(err, kerrors.ErrNoValidRoot), errors.Is(err, kerrors.ErrDecode):
		return fail + "Failed to decrypt: " + err.Error() +
			hint + "Are you sure these are the right private keys?"

	case errors.Is(err, kerrors.ErrInvalidCiphertextFormat):
		return fail + "The artifact is not valid ciphertext for this cipher: " + err.Error()

	case errors.Is(err, kerrors.ErrInvalidKey),
		errors.Is(err, kerrors.ErrKeyFileNotFound),
		errors.Is(err, kerrors.ErrUnknownCipher):
		return fail + err.Error() +
			hint + "Provide " + ui.Flag.Sprint("--key") + " or " + ui.Flag.Sprint("--key-file")

	case errors.Is(err, kerrors.ErrKeyGenerationExhausted):
		return fail + "Key generation failed: " + err.Error() +
			hint + "Widen the prime range with " + ui.Flag.Sprint("--prime-min") + " and " + ui.Flag.Sprint("--prime-max")

	case errors.Is(err, kerrors.ErrInvalidMessage), errors.Is(err, kerrors.ErrInvalidOptions):
		return fail + err.Error()

	default:
		return fail + "Unexpected error: " + err.Error()
	}
}

// isVaultUnexpectedError reports whether err should give a non-zero exit.
// Denials and bad input are expected outcomes and are only rendered.
func isVaultUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrIOFailure):
		return true
	case errors.Is(err, kerrors.ErrExpired),
		errors.Is(err, kerrors.ErrAttemptsExhausted),
		errors.Is(err, kerrors.ErrInvalidPassword),
		errors.Is(err, kerrors.ErrArtifactNotFound),
		errors.Is(err, kerrors.ErrChunkTooLarge),
		errors.Is(err, kerrors.ErrNoValidRoot),
		errors.Is(err, kerrors.ErrDecode),
		errors.Is(err, kerrors.ErrInvalidCiphertextFormat),
		errors.Is(err, kerrors.ErrInvalidKey),
		errors.Is(err, kerrors.ErrKeyFileNotFound),
		errors.Is(err, kerrors.ErrUnknownCipher),
		errors.Is(err, kerrors.ErrKeyGenerationExhausted),
		errors.Is(err, kerrors.ErrInvalidMessage),
		errors.Is(err, kerrors.ErrInvalidOptions):
		return false
	default:
		return true
	}
}
