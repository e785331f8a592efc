package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - BP_CONFIG_PATH: config file location (default: ~/.config/bpinv.toml)
//   - BP_HOME: base directory for bpinv data (default: ~/.local/share/bpinv)
//   - BP_STORAGE_ROOT: default inventory storage root (default: ~/.blackandpink)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	storageRoot, err := getStorageRoot()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"base_dir":     baseDir,
		"log_dir":      filepath.Join(baseDir, "log"),
		"storage_root": storageRoot,
	}, nil
}

// getConfigPath returns the config file path, checking BP_CONFIG_PATH env var first,
// then falling back to the default ~/.config/bpinv.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("BP_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "bpinv.toml"), nil
}

// getBaseDir returns the base directory for bpinv data, checking BP_HOME env var first,
// then falling back to the XDG default ~/.local/share/bpinv.
func getBaseDir() (string, error) {
	if path := os.Getenv("BP_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "bpinv"), nil
}

// getStorageRoot returns the default inventory storage root, checking
// BP_STORAGE_ROOT env var first, then falling back to ~/.blackandpink.
// The settings file kept under this directory records the active storage
// location, so the root doubles as the discovery point on startup.
func getStorageRoot() (string, error) {
	if path := os.Getenv("BP_STORAGE_ROOT"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".blackandpink"), nil
}
