package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadTOML(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "nested", "test.toml")

	type TestStruct struct {
		Name   string
		Cipher string
		Tries  int
	}

	originalData := TestStruct{
		Name:   "artifact",
		Cipher: "rabin",
		Tries:  3,
	}

	if err := SaveTOML(testFile, originalData); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loadedData := TestStruct{}
	if err := LoadTOML(testFile, &loadedData); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if loadedData != originalData {
		t.Errorf("Expected %+v, got %+v", originalData, loadedData)
	}
}

func TestSaveTOMLPermissions(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "perm.toml")

	if err := SaveTOML(testFile, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected permissions 0600, got %o", info.Mode().Perm())
	}
}

func TestLoadTOMLNonExistent(t *testing.T) {
	var data map[string]string
	if err := LoadTOML(filepath.Join(t.TempDir(), "missing.toml"), &data); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadTOMLInvalid(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "bad.toml")
	// #nosec G306 -- Test file.
	if err := os.WriteFile(testFile, []byte("this is = = not toml"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var data map[string]string
	if err := LoadTOML(testFile, &data); err == nil {
		t.Error("Expected error for invalid TOML")
	}
}
