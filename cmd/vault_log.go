package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PolarWolf314/kapu/internal/audit"
	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	"github.com/PolarWolf314/kapu/internal/ui"
	"github.com/PolarWolf314/kapu/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logPath      string
	logSince     string
	logUntil     string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "op", "", "filter by operation (comma-separated: keygen,store,access,decoy,deny,delete,decrypt)")
	logCmd.Flags().StringVar(&logPath, "path", "", "filter by artifact or key file path")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logPath = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of vault operations, including artifacts that
have since been deleted.

Examples:
  kapu vault log                        # View full log
  kapu vault log -n 10                  # Last 10 entries
  kapu vault log --reverse              # Most recent first
  kapu vault log --op deny,delete       # Denied and deleted artifacts
  kapu vault log --path note.enc        # History of one artifact
  kapu vault log --since 2026-01-01     # Filter by date
  kapu vault log --json                 # JSON output`,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	spinner, cleanup := startSpinner("Loading audit log...", verbose)
	defer cleanup()

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		Path:       logPath,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		spinner.FinalMSG = formatLogError(err)
		if isLogUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			spinner.FinalMSG = "No audit log entries found."
		} else {
			spinner.FinalMSG = "No audit log entries found matching the filters."
		}
		return nil
	}

	if logJSON {
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		spinner.FinalMSG = string(data)
		return nil
	}

	spinner.FinalMSG = formatLogEntries(result.Entries)
	return nil
}

func formatLogEntries(entries []audit.Entry) string {
	var out string
	for _, e := range entries {
		datetime := workflows.FormatDateTime(e.Timestamp)
		out += fmt.Sprintf("%-19s  %-12s  %-8s  %-24s  %s\n", datetime, e.User, e.Operation, e.Path, workflows.FormatDetails(e))
	}
	return out
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog):
		return ui.Info.Sprint("ℹ") + " No audit log found. Operations are logged once you run a vault command."

	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.Error.Sprint("✗") + " " + err.Error()

	default:
		return ui.Error.Sprint("✗") + " Failed to read audit log: " + err.Error()
	}
}

// isLogUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isLogUnexpectedError(err error) bool {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog),
		errors.Is(err, kerrors.ErrInvalidDateFormat):
		return false
	default:
		return true
	}
}
