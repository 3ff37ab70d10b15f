package cmd

import (
	"context"

	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/PolarWolf314/kapu/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	keygenCipher   cipherKindFlag
	keygenOut      string
	keygenPrimeMin int64
	keygenPrimeMax int64
)

func init() {
	keygenCmd.Flags().Var(&keygenCipher, "cipher", "cipher to generate a key for (rabin, substitution)")
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "", "key file path (default: the kapu keys directory)")
	keygenCmd.Flags().Int64Var(&keygenPrimeMin, "prime-min", 0, "lower bound of the Rabin prime range")
	keygenCmd.Flags().Int64Var(&keygenPrimeMax, "prime-max", 0, "exclusive upper bound of the Rabin prime range")
}

// resetKeygenCommandState resets the keygen command's global state for testing.
func resetKeygenCommandState() {
	keygenCipher = cipherKindFlag{}
	keygenOut = ""
	keygenPrimeMin = 0
	keygenPrimeMax = 0
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a key file",
	Long: `Generates a key for the chosen cipher and writes it to a TOML key file.

Rabin keys are written twice: the full file holds n, p and q, and a ".pub"
file holds only n. Share the .pub file with anyone who should encrypt for
you; keep the full file to decrypt.

Examples:
  kapu vault keygen --cipher rabin --out alice.toml
  kapu vault keygen --cipher substitution
  kapu vault keygen --prime-min 1000 --prime-max 2000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keygen command")
		spinner, cleanup := startSpinner("Generating key...", verbose)
		defer cleanup()

		result, err := workflows.KeyGen(context.Background(), workflows.KeyGenOptions{
			Cipher:     keygenCipher.kind,
			OutputPath: keygenOut,
			PrimeMin:   keygenPrimeMin,
			PrimeMax:   keygenPrimeMax,
		})
		if err != nil {
			Logger.Errorf("Key generation failed: %v", err)
			spinner.FinalMSG = formatVaultError(err)
			if isVaultUnexpectedError(err) {
				return err
			}
			return nil
		}

		Logger.Infof("Generated %s key %s", result.File.Cipher, result.File.KeyID)

		finalMessage := ui.Success.Sprint("✓") + " Generated " + ui.Highlight.Sprint(result.File.Cipher) + " key " +
			ui.Muted.Sprint(result.File.KeyID) + "\n" +
			"    Key file: " + ui.Path.Sprint(result.OutputPath)
		if result.PublicKeyPath != "" {
			finalMessage += "\n    Public key: " + ui.Path.Sprint(result.PublicKeyPath) +
				" (n = " + ui.Highlight.Sprint(result.File.Rabin.PublicKey) + ")\n" +
				ui.Info.Sprint("→") + " Keep " + ui.Path.Sprint(result.OutputPath) + " private; it holds p and q"
		}
		spinner.FinalMSG = finalMessage
		return nil
	},
}
