package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/PolarWolf314/kapu/internal/utils"
	"github.com/PolarWolf314/kapu/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	encryptCipher        cipherKindFlag
	encryptKey           string
	encryptKeyFile       string
	encryptText          string
	encryptIn            string
	encryptOut           string
	encryptExpiryHours   float64
	encryptMaxAttempts   int
	encryptDecoyPassword string
	encryptDecoyContent  string
)

func init() {
	encryptCmd.Flags().Var(&encryptCipher, "cipher", "cipher to use (rabin, substitution)")
	encryptCmd.Flags().StringVar(&encryptKey, "key", "", "encryption key: n for rabin, the shared key for substitution")
	encryptCmd.Flags().StringVar(&encryptKeyFile, "key-file", "", "key file written by 'kapu vault keygen'")
	encryptCmd.Flags().StringVar(&encryptText, "text", "", "message to encrypt")
	encryptCmd.Flags().StringVar(&encryptIn, "in", "", "file holding the message, or - for stdin")
	encryptCmd.Flags().StringVarP(&encryptOut, "out", "o", "", "artifact path")
	encryptCmd.Flags().Float64Var(&encryptExpiryHours, "expiry-hours", 0, "delete the artifact this many hours from now")
	encryptCmd.Flags().IntVar(&encryptMaxAttempts, "max-attempts", -1, "delete the artifact after this many access attempts (-1 = unlimited)")
	encryptCmd.Flags().StringVar(&encryptDecoyPassword, "decoy-password", "", "password that serves the decoy content, or - to prompt")
	encryptCmd.Flags().StringVar(&encryptDecoyContent, "decoy-content", "", "content served when the decoy password is used")
	_ = encryptCmd.MarkFlagRequired("out")
	encryptCmd.MarkFlagsMutuallyExclusive("key", "key-file")
	encryptCmd.MarkFlagsMutuallyExclusive("text", "in")
}

// resetEncryptCommandState resets the encrypt command's global state for testing.
func resetEncryptCommandState() {
	encryptCipher = cipherKindFlag{}
	encryptKey = ""
	encryptKeyFile = ""
	encryptText = ""
	encryptIn = ""
	encryptOut = ""
	encryptExpiryHours = 0
	encryptMaxAttempts = -1
	encryptDecoyPassword = ""
	encryptDecoyContent = ""
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a message into a protected artifact",
	Long: `Encrypts a message and stores it at --out together with a metadata
sidecar (<out>.meta) and, when decoy content is given, a decoy (<out>.fake).

Protection options:
  --expiry-hours     the artifact is deleted on the first access after expiry
  --max-attempts     every access attempt counts; the artifact is deleted when none remain
  --decoy-password   supplying this password at decryption serves --decoy-content instead

Unset options fall back to the [security] section of the kapu config.

Examples:
  kapu vault encrypt --cipher rabin --key 95477 --text "HELLO" --out note.enc
  kapu vault encrypt --key-file alice.toml.pub --in message.txt --out note.enc --max-attempts 3
  echo "launch codes" | kapu vault encrypt --key-file sub.toml --in - --out codes.enc \
      --decoy-password - --decoy-content "grocery list"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		spinner, cleanup := startSpinner("Encrypting...", verbose)
		defer cleanup()

		plaintext, err := readPlaintext()
		if err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
			return nil
		}

		decoyPassword, err := readSecret(encryptDecoyPassword, "Decoy password: ", spinner)
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read decoy password: %v", err)
		}

		opts := workflows.EncryptOptions{
			Cipher:        encryptCipher.kind,
			KeySource:     workflows.KeySource{Key: encryptKey, KeyFile: encryptKeyFile},
			Plaintext:     plaintext,
			OutputPath:    encryptOut,
			DecoyPassword: decoyPassword,
			DecoyContent:  encryptDecoyContent,
			Logger:        Logger,
		}
		if cmd.Flags().Changed("expiry-hours") {
			hours := encryptExpiryHours
			opts.ExpiryHours = &hours
		}
		if cmd.Flags().Changed("max-attempts") {
			attempts := encryptMaxAttempts
			opts.MaxAttempts = &attempts
		}
		Logger.Debugf("Encrypt options: cipher=%q key=%s key-file=%q out=%q", opts.Cipher, ui.Mask(opts.Key), opts.KeyFile, opts.OutputPath)

		result, err := workflows.Encrypt(context.Background(), opts)
		if err != nil {
			Logger.Errorf("Encryption failed: %v", err)
			spinner.FinalMSG = formatVaultError(err)
			if isVaultUnexpectedError(err) {
				return err
			}
			return nil
		}

		Logger.Infof("Stored %s artifact at %s", result.Cipher, result.OutputPath)

		finalMessage := ui.Success.Sprint("✓") + " Message encrypted with " + ui.Highlight.Sprint(result.Cipher) + "\n" +
			"The following files were created: " + utils.FormatPaths(result.Files)
		if result.Metadata.Bounded() {
			finalMessage += ui.Warning.Sprint("⚠") + fmt.Sprintf(" The artifact is deleted after %d access attempts\n", result.Metadata.AttemptsLeft)
		}
		if expiry, ok := result.Metadata.Expiry(); ok {
			finalMessage += ui.Warning.Sprint("⚠") + " The artifact expires at " + expiry.Format("2006-01-02 15:04:05") + "\n"
		}
		finalMessage += ui.Info.Sprint("→") + " Read it with " + ui.Code.Sprint("kapu vault decrypt --file "+result.OutputPath)
		spinner.FinalMSG = finalMessage
		return nil
	},
}

// readPlaintext returns the message from --text, --in, or stdin for "--in -".
func readPlaintext() (string, error) {
	switch {
	case encryptText != "":
		return encryptText, nil
	case encryptIn == "-":
		return utils.ReadMessage(os.Stdin)
	case encryptIn != "":
		return utils.ReadTextFile(encryptIn)
	default:
		return "", fmt.Errorf("no message provided, use --text or --in")
	}
}
