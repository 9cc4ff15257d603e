package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed default.yml
var defaultYAML []byte

// DefaultYAML returns the config written on first start.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// EnsureUserConfig returns dataDir/config.yml, writing the default there
// first if the file does not exist yet.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := writeAtomic(userPath, defaultYAML); err != nil {
		return "", fmt.Errorf("write default config: %w", err)
	}
	return userPath, nil
}

func writeAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
