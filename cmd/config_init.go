package cmd

import (
	"os"

	"github.com/PolarWolf314/kapu/internal/configs"
	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/spf13/cobra"
)

var (
	configInitCipher      cipherKindFlag
	configInitPrimeMin    int64
	configInitPrimeMax    int64
	configInitMaxAttempts int
	configInitExpiryHours float64
	configInitForce       bool
)

func init() {
	configInitCmd.Flags().Var(&configInitCipher, "cipher", "default cipher (rabin, substitution)")
	configInitCmd.Flags().Int64Var(&configInitPrimeMin, "prime-min", 0, "lower bound of the Rabin prime range")
	configInitCmd.Flags().Int64Var(&configInitPrimeMax, "prime-max", 0, "exclusive upper bound of the Rabin prime range")
	configInitCmd.Flags().IntVar(&configInitMaxAttempts, "max-attempts", 0, "default max attempts for new artifacts (0 = unset)")
	configInitCmd.Flags().Float64Var(&configInitExpiryHours, "expiry-hours", 0, "default expiry for new artifacts in hours (0 = unset)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitCipher = cipherKindFlag{}
	configInitPrimeMin = 0
	configInitPrimeMax = 0
	configInitMaxAttempts = 0
	configInitExpiryHours = 0
	configInitForce = false
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the user configuration file",
	Long: `Writes config.toml in the kapu config directory, starting from the
defaults and applying any flags given.

Examples:
  kapu config init
  kapu config init --cipher substitution
  kapu config init --prime-min 1000 --prime-max 2000 --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config init command")
		spinner, cleanup := startSpinnerWithFlags("Writing configuration...", configVerbose, configDebug)
		defer cleanup()

		configPath := configs.UserConfigPath()
		if _, err := os.Stat(configPath); err == nil && !configInitForce {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " A config file already exists at " + ui.Path.Sprint(configPath) + "\n" +
				ui.Info.Sprint("→") + " Run with " + ui.Flag.Sprint("--force") + " to overwrite it"
			return nil
		}

		config := configs.DefaultUserConfig()
		if configInitCipher.kind != "" {
			config.Defaults.Cipher = string(configInitCipher.kind)
		}
		if cmd.Flags().Changed("prime-min") {
			config.Rabin.PrimeMin = configInitPrimeMin
		}
		if cmd.Flags().Changed("prime-max") {
			config.Rabin.PrimeMax = configInitPrimeMax
		}
		config.Security.MaxAttempts = configInitMaxAttempts
		config.Security.ExpiryHours = configInitExpiryHours

		ConfigLogger.Debugf("Saving config to %s: %+v", configPath, *config)
		if err := configs.SaveUserConfig(config); err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + err.Error()
			return nil
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Configuration written to " + ui.Path.Sprint(configPath)
		return nil
	},
}
