package configs

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/kapu/internal/cipher"
	"github.com/PolarWolf314/kapu/internal/cipher/rabin"
)

type UserConfig struct {
	Defaults Defaults       `toml:"defaults"`
	Rabin    RabinConfig    `toml:"rabin"`
	Security SecurityConfig `toml:"security"`
}

type Defaults struct {
	Cipher string `toml:"cipher"`
}

type RabinConfig struct {
	PrimeMin int64 `toml:"prime_min"`
	PrimeMax int64 `toml:"prime_max"`
}

type SecurityConfig struct {
	MaxAttempts int     `toml:"max_attempts"`
	ExpiryHours float64 `toml:"expiry_hours"`
}

// DefaultUserConfig returns the configuration used when no file exists.
func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Defaults: Defaults{Cipher: string(cipher.Rabin)},
		Rabin: RabinConfig{
			PrimeMin: rabin.DefaultPrimeMin,
			PrimeMax: rabin.DefaultPrimeMax,
		},
	}
}

// LoadUserConfig loads the user configuration, falling back to defaults for
// a missing file or zero-valued fields.
func LoadUserConfig() (*UserConfig, error) {
	configPath := UserConfigPath()
	config := DefaultUserConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if config.Defaults.Cipher == "" {
		config.Defaults.Cipher = string(cipher.Rabin)
	}
	if config.Rabin.PrimeMin == 0 && config.Rabin.PrimeMax == 0 {
		config.Rabin.PrimeMin = rabin.DefaultPrimeMin
		config.Rabin.PrimeMax = rabin.DefaultPrimeMax
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := SaveTOML(UserConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}
	return nil
}

// Validate rejects values the rest of the program cannot honour.
func (c *UserConfig) Validate() error {
	if _, err := cipher.ParseKind(c.Defaults.Cipher); err != nil {
		return fmt.Errorf("invalid default cipher: %w", err)
	}
	if c.Rabin.PrimeMax <= c.Rabin.PrimeMin || c.Rabin.PrimeMin < 0 {
		return fmt.Errorf("invalid prime range [%d, %d)", c.Rabin.PrimeMin, c.Rabin.PrimeMax)
	}
	if c.Security.MaxAttempts < -1 {
		return fmt.Errorf("invalid default max_attempts %d", c.Security.MaxAttempts)
	}
	return nil
}

// DefaultCipher returns the configured default backend kind.
func (c *UserConfig) DefaultCipher() cipher.Kind {
	kind, err := cipher.ParseKind(c.Defaults.Cipher)
	if err != nil {
		return cipher.Rabin
	}
	return kind
}

// Backend builds a backend for kind, applying the configured prime range.
func (c *UserConfig) Backend(kind cipher.Kind) (cipher.Backend, error) {
	if kind == cipher.Rabin {
		return cipher.NewRabin(c.Rabin.PrimeMin, c.Rabin.PrimeMax), nil
	}
	return cipher.New(kind)
}
