package cmd

import (
	"context"
	"os"

	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/PolarWolf314/kapu/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	decryptCipher         cipherKindFlag
	decryptKey            string
	decryptKeyFile        string
	decryptFile           string
	decryptPassword       string
	decryptPromptPassword bool
	decryptOut            string
)

func init() {
	decryptCmd.Flags().Var(&decryptCipher, "cipher", "cipher to use (rabin, substitution)")
	decryptCmd.Flags().StringVar(&decryptKey, "key", "", "decryption key: p:q for rabin, the shared key for substitution")
	decryptCmd.Flags().StringVar(&decryptKeyFile, "key-file", "", "key file written by 'kapu vault keygen'")
	decryptCmd.Flags().StringVarP(&decryptFile, "file", "f", "", "artifact path")
	decryptCmd.Flags().StringVar(&decryptPassword, "password", "", "access password (default: the key)")
	decryptCmd.Flags().BoolVar(&decryptPromptPassword, "prompt-password", false, "prompt for the access password without echo")
	decryptCmd.Flags().StringVarP(&decryptOut, "out", "o", "", "write the plaintext to this file instead of stdout")
	_ = decryptCmd.MarkFlagRequired("file")
	decryptCmd.MarkFlagsMutuallyExclusive("key", "key-file")
	decryptCmd.MarkFlagsMutuallyExclusive("password", "prompt-password")
}

// resetDecryptCommandState resets the decrypt command's global state for testing.
func resetDecryptCommandState() {
	decryptCipher = cipherKindFlag{}
	decryptKey = ""
	decryptKeyFile = ""
	decryptFile = ""
	decryptPassword = ""
	decryptPromptPassword = false
	decryptOut = ""
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a protected artifact",
	Long: `Checks the artifact's protection and, when access is allowed, decrypts it.

Every call counts as an access attempt. An expired artifact, or one with no
attempts left, is deleted instead of decrypted. When the decoy password is
supplied the decoy content is decrypted and shown in place of the real one.

Examples:
  kapu vault decrypt --cipher rabin --key 307:311 --file note.enc
  kapu vault decrypt --key-file alice.toml --file note.enc --prompt-password
  kapu vault decrypt --key-file sub.toml --file codes.enc --out codes.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		spinner, cleanup := startSpinner("Decrypting...", verbose)
		defer cleanup()

		password := decryptPassword
		if decryptPromptPassword {
			var err error
			password, err = readSecret("-", "Password: ", spinner)
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to read password: %v", err)
			}
		}

		result, err := workflows.Decrypt(context.Background(), workflows.DecryptOptions{
			Cipher:    decryptCipher.kind,
			KeySource: workflows.KeySource{Key: decryptKey, KeyFile: decryptKeyFile},
			Password:  password,
			Path:      decryptFile,
			Logger:    Logger,
		})
		if err != nil {
			Logger.Errorf("Decryption failed: %v", err)
			spinner.FinalMSG = formatVaultError(err)
			if isVaultUnexpectedError(err) {
				return err
			}
			return nil
		}

		Logger.Infof("Decrypted %s (decoy=%t)", decryptFile, result.Decoy)

		// Decoy output looks exactly like real output.
		finalMessage := ui.Success.Sprint("✓") + " Artifact decrypted"
		if result.Message != "" {
			finalMessage += " " + ui.Muted.Sprint(result.Message)
		}

		if decryptOut != "" {
			if err := os.WriteFile(decryptOut, []byte(result.Plaintext), 0600); err != nil {
				return Logger.ErrorfAndReturn("Failed to write %s: %v", decryptOut, err)
			}
			finalMessage += "\n    Plaintext written to " + ui.Path.Sprint(decryptOut)
		} else {
			finalMessage += "\n" + result.Plaintext
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
