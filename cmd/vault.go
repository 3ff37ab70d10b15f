package cmd

import (
	"github.com/PolarWolf314/kapu/internal/cipher"
	logger "github.com/PolarWolf314/kapu/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	VaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Encrypt, store and read protected artifacts",
		Long: `Encrypts messages with the Rabin or substitution cipher and stores them
as artifacts that can expire, run out of attempts, or serve decoy content.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing vault command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	VaultCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	VaultCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	VaultCmd.AddCommand(keygenCmd)
	VaultCmd.AddCommand(encryptCmd)
	VaultCmd.AddCommand(decryptCmd)
	VaultCmd.AddCommand(infoCmd)
	VaultCmd.AddCommand(purgeCmd)
	VaultCmd.AddCommand(logCmd)
}

// cipherKindFlag is a --cipher flag that only accepts registered backends.
// The zero value means "not set".
type cipherKindFlag struct {
	kind cipher.Kind
}

var _ pflag.Value = (*cipherKindFlag)(nil)

func (f *cipherKindFlag) String() string {
	return string(f.kind)
}

func (f *cipherKindFlag) Set(s string) error {
	kind, err := cipher.ParseKind(s)
	if err != nil {
		return err
	}
	f.kind = kind
	return nil
}

func (f *cipherKindFlag) Type() string {
	return "cipher"
}

// GetVaultCmd returns the VaultCmd for testing.
func GetVaultCmd() *cobra.Command {
	return VaultCmd
}

// ResetGlobalState resets all vault command globals for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetKeygenCommandState()
	resetEncryptCommandState()
	resetDecryptCommandState()
	resetInfoCommandState()
	resetPurgeCommandState()
	resetLogCommandState()
	resetCobraFlagState(VaultCmd)
}

// resetCobraFlagState clears Changed on every flag below root so optional
// flags read as unset in the next run.
func resetCobraFlagState(root *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	root.PersistentFlags().VisitAll(reset)
	root.Flags().VisitAll(reset)
	for _, sub := range root.Commands() {
		resetCobraFlagState(sub)
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
