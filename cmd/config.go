package cmd

import (
	logger "github.com/PolarWolf314/kapu/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configVerbose bool
	configDebug   bool
	ConfigLogger  logger.Logger

	// ConfigCmd is the top-level config command.
	ConfigCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage kapu configuration",
		Long: `Provides commands for managing the user configuration.

The configuration sets the default cipher, the Rabin prime range used by
keygen, and the security options applied when encrypt is run without them.

Examples:
  # Write a config file with the defaults
  kapu config init

  # Make every new artifact single-use
  kapu config init --max-attempts 1 --force

  # Show the effective configuration
  kapu config show`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ConfigLogger = logger.Logger{
				Verbose: configVerbose,
				Debug:   configDebug,
			}
			ConfigLogger.Debugf("Initializing config command with verbose=%t, debug=%t", configVerbose, configDebug)
		},
	}
)

func init() {
	ConfigCmd.PersistentFlags().BoolVarP(&configVerbose, "verbose", "v", false, "enable verbose output")
	ConfigCmd.PersistentFlags().BoolVarP(&configDebug, "debug", "d", false, "enable debug output")

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

// GetConfigCmd returns the ConfigCmd for testing.
func GetConfigCmd() *cobra.Command {
	return ConfigCmd
}

// ResetConfigState resets all config command global variables to their default values for testing.
func ResetConfigState() {
	configVerbose = false
	configDebug = false
	resetConfigInitState()
	resetConfigShowState()
	resetCobraFlagState(ConfigCmd)
}
