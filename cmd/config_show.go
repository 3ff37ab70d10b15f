package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/kapu/internal/configs"
	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Displays the configuration kapu is using, including defaults for any
value missing from the config file.

Examples:
  kapu config show
  kapu config show --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config show command")

		config, err := configs.LoadUserConfig()
		if err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to load user config: %v", err)
		}

		if configShowJSON {
			output, err := json.MarshalIndent(config, "", "  ")
			if err != nil {
				return ConfigLogger.ErrorfAndReturn("Failed to marshal config to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		fmt.Println(ui.Info.Sprint("User Configuration") + " (" + ui.Path.Sprint(configs.UserConfigPath()) + "):")
		fmt.Println()
		fmt.Printf("  %-16s %s\n", "Default cipher:", ui.Highlight.Sprint(config.Defaults.Cipher))
		fmt.Printf("  %-16s [%d, %d)\n", "Prime range:", config.Rabin.PrimeMin, config.Rabin.PrimeMax)
		fmt.Printf("  %-16s %s\n", "Max attempts:", unsetOr(config.Security.MaxAttempts != 0, fmt.Sprint(config.Security.MaxAttempts)))
		fmt.Printf("  %-16s %s\n", "Expiry hours:", unsetOr(config.Security.ExpiryHours != 0, fmt.Sprint(config.Security.ExpiryHours)))
		fmt.Println()
		fmt.Printf("  %-16s %s\n", "Keys:", ui.Path.Sprint(configs.UserKapuSettings.UserKeysPath))
		fmt.Printf("  %-16s %s\n", "Audit log:", ui.Path.Sprint(configs.UserKapuSettings.AuditLogPath))
		return nil
	},
}

func unsetOr(set bool, value string) string {
	if !set {
		return ui.Muted.Sprint("unset")
	}
	return value
}
