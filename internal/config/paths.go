package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigDir returns the default ronin config directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultConfigDirName
	}
	return filepath.Join(home, DefaultConfigDirName)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), DefaultConfigFileName)
}

// DefaultStoragePath returns the default durable storage path.
func DefaultStoragePath() string {
	return filepath.Join(DefaultConfigDir(), DefaultStorageFileName)
}

// DefaultLogPath returns the default client log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultConfigDir(), DefaultLogFileName)
}
