// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	configDir  string // Directory for configuration files
	keysDir    string // Directory for keys
	sshDir     string // Directory for SSH configurations
	reportsDir string // Directory for persisted run reports
)

func init() {
	if os.Geteuid() == 0 {
		configDir = "/etc/zbackup"
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(fmt.Sprintf("failed to get home directory: %v", err))
		}
		configDir = filepath.Join(homeDir, ".zbackup")
	}

	keysDir = filepath.Join(configDir, "keys")
	sshDir = filepath.Join(keysDir, "ssh")
	reportsDir = filepath.Join(configDir, "reports")

	if err := EnsureDirectories(); err != nil {
		panic(fmt.Sprintf("failed to ensure configuration directories: %v", err))
	}
}

// GetConfigDir returns the appropriate configuration directory: the system
// config directory when running as root, otherwise the user config
// directory.
func GetConfigDir() string {
	return configDir
}

// GetKeysDir returns the directory for keys.
func GetKeysDir() string {
	return keysDir
}

// GetSSHDir returns the directory for SSH configuration (private keys,
// known_hosts) used to reach remote targets.
func GetSSHDir() string {
	return sshDir
}

// GetReportsDir returns the directory persisted run reports are written to.
func GetReportsDir() string {
	return reportsDir
}

// EnsureDirectories creates necessary directories if they do not exist.
func EnsureDirectories() error {
	dirs := []string{configDir, keysDir, sshDir, reportsDir}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
