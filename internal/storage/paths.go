// Package storage provides the persistent journal of completed searches.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

const appName = "nullmove"

// GetDataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/nullmove/
// - Linux: ~/.local/share/nullmove/
// - Windows: %APPDATA%/nullmove/
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		// Windows: %APPDATA%
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Linux and other Unix-like: ~/.local/share/
		// Check XDG_DATA_HOME first
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// GetJournalDir returns the directory for the BadgerDB journal under
// dataDir, or under GetDataDir when dataDir is empty.
func GetJournalDir(dataDir string) (string, error) {
	if dataDir == "" {
		var err error
		dataDir, err = GetDataDir()
		if err != nil {
			return "", err
		}
	}

	dbDir := filepath.Join(dataDir, "journal")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}

	log.Debug().Str("dir", dbDir).Msg("journal-directory")

	return dbDir, nil
}
