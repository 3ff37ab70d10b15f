package configs

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SaveTOML encodes data to filePath, creating parent directories as needed.
// The file is created with owner-only permissions.
func SaveTOML(filePath string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := toml.NewEncoder(file).Encode(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadTOML decodes filePath into data. Keys present in the file but unknown
// to data are ignored.
func LoadTOML(filePath string, data interface{}) error {
	_, err := toml.DecodeFile(filePath, data)
	return err
}
