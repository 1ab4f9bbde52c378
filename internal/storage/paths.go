package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "powerchess"

// DataDirEnv overrides the platform data directory when set.
const DataDirEnv = "POWERCHESS_DATA_DIR"

// GetDataDir returns the directory saved games live under, creating it if
// needed:
//   - $POWERCHESS_DATA_DIR when set
//   - macOS: ~/Library/Application Support/powerchess/
//   - Windows: %APPDATA%/powerchess/
//   - others: $XDG_DATA_HOME/powerchess/ or ~/.local/share/powerchess/
func GetDataDir() (string, error) {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return ensureDir(dir)
	}
	base, err := platformBase()
	if err != nil {
		return "", fmt.Errorf("locate data dir: %w", err)
	}
	return ensureDir(filepath.Join(base, appName))
}

// GetDatabaseDir returns the badger directory inside the data directory.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, "db"))
}

func platformBase() (string, error) {
	var env string
	var fallback []string
	switch runtime.GOOS {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}
	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
