package config

import (
	"os"
	"path/filepath"
)

// ProjectConfigFile is the name of the project-level config file, read from
// the package directory.
const ProjectConfigFile = ".nlm.yml"

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/nlm/config.yml
// - macOS: ~/Library/Application Support/nlm/config.yml
// - Windows: %APPDATA%\nlm\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "nlm"), nil
}

// ProjectConfigPath returns the path to the project-level config file of the
// package in dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectConfigFile)
}
