package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/kapu/cmd"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kapu",
	Short: "Kapu - A CLI for Rabin encryption and self-destructing artifacts.",
	Long: `Kapu encrypts messages with a toy Rabin cipher (or a table substitution
cipher) and stores them as protected artifacts.

Features:
  - Generate Rabin and substitution key files
  - Expire artifacts after a number of hours
  - Delete artifacts after a number of access attempts
  - Serve decoy content when a decoy password is supplied

Usage:
  kapu <command> [flags]

Available Commands:
  vault      Encrypt, store and read protected artifacts
  config     Manage kapu configuration

Run 'kapu help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewColorFigure("kapu", "alligator2", "green", true)
		banner.Print()
		fmt.Println()
		fmt.Println("Welcome to Kapu! Run 'kapu --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.VaultCmd)
	rootCmd.AddCommand(cmd.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
