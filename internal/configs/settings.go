package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/kapu/internal/utils"
)

type UserSettings struct {
	UserConfigsPath string
	UserKeysPath    string
	AuditLogPath    string
	Username        string
}

var UserKapuSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")

	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		// The audit log can live without a name.
		username = "unknown"
	}

	UserKapuSettings = &UserSettings{
		UserConfigsPath: filepath.Join(configDir, "kapu"),
		UserKeysPath:    filepath.Join(dataDir, "kapu", "keys"),
		AuditLogPath:    filepath.Join(dataDir, "kapu", "audit.jsonl"),
		Username:        username,
	}
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(UserKapuSettings.UserConfigsPath, "config.toml")
}
