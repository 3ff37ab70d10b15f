package cmd

import (
	"context"

	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/PolarWolf314/kapu/internal/utils"
	"github.com/PolarWolf314/kapu/internal/workflows"
	"github.com/spf13/cobra"
)

var infoFile string

func init() {
	infoCmd.Flags().StringVarP(&infoFile, "file", "f", "", "artifact path")
	_ = infoCmd.MarkFlagRequired("file")
}

// resetInfoCommandState resets the info command's global state for testing.
func resetInfoCommandState() {
	infoFile = ""
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show an artifact's protection",
	Long: `Shows the expiry, remaining attempts and decoy configuration of an
artifact. Reading the info does not count as an access attempt.

Examples:
  kapu vault info --file note.enc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting info command")
		spinner, cleanup := startSpinner("Reading artifact...", verbose)
		defer cleanup()

		result, err := workflows.Info(context.Background(), workflows.InfoOptions{
			Path:   infoFile,
			Logger: Logger,
		})
		if err != nil {
			spinner.FinalMSG = formatVaultError(err)
			if isVaultUnexpectedError(err) {
				return err
			}
			return nil
		}

		Logger.Debugf("Artifact files: %v", result.Files)

		spinner.FinalMSG = ui.Info.Sprint("ℹ") + " " + ui.Path.Sprint(result.Path) + "\n" +
			ui.Bullets(result.Lines) +
			"Files on disk:" + utils.FormatPaths(result.Files)
		return nil
	},
}
