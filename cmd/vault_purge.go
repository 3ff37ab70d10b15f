package cmd

import (
	"context"

	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/PolarWolf314/kapu/internal/utils"
	"github.com/PolarWolf314/kapu/internal/workflows"
	"github.com/spf13/cobra"
)

var purgeFile string

func init() {
	purgeCmd.Flags().StringVarP(&purgeFile, "file", "f", "", "artifact path")
	_ = purgeCmd.MarkFlagRequired("file")
}

// resetPurgeCommandState resets the purge command's global state for testing.
func resetPurgeCommandState() {
	purgeFile = ""
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete an artifact and its sidecars",
	Long: `Deletes the ciphertext, the metadata sidecar and the decoy sidecar of an
artifact without checking access.

Examples:
  kapu vault purge --file note.enc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting purge command")
		spinner, cleanup := startSpinner("Purging artifact...", verbose)
		defer cleanup()

		result, err := workflows.Purge(context.Background(), workflows.PurgeOptions{
			Path:   purgeFile,
			Logger: Logger,
		})
		if err != nil {
			spinner.FinalMSG = formatVaultError(err)
			if isVaultUnexpectedError(err) {
				return err
			}
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Artifact purged\n" +
			"The following files were deleted: " + utils.FormatPaths(result.Files)
		return nil
	},
}
