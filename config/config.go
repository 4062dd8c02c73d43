// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/northvault/zbackup/internal/constants"
	"github.com/stratastor/logger"
	"gopkg.in/yaml.v3"
)

var (
	instance   *Config
	once       sync.Once
	configPath string // Tracks where the config was loaded from
)

// Target describes one backup destination: a (host, path) pair reached
// either on the local filesystem (Host empty) or over SSH.
type Target struct {
	Name             string            `mapstructure:"name"`
	Host             string            `mapstructure:"host"`
	Path             string            `mapstructure:"path"`
	Port             string            `mapstructure:"port"`
	User             string            `mapstructure:"user"`
	SkipHostKeyCheck bool              `mapstructure:"skipHostKeyCheck"`
	SSHOptions       map[string]string `mapstructure:"sshOptions"`
}

type Config struct {
	Source struct {
		// Pools restricts which imported pools are considered; empty means
		// every imported pool.
		Pools []string `mapstructure:"pools"`
		// SnapshotPrefix is the managed-snapshot name prefix, e.g. the
		// "zbackup" in "zbackup_0", "zbackup_initial".
		SnapshotPrefix string `mapstructure:"snapshotPrefix"`
	} `mapstructure:"source"`

	Targets []Target `mapstructure:"targets"`

	Command struct {
		Sudo           bool   `mapstructure:"sudo"`
		TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
		ZFSBin         string `mapstructure:"zfsBin"`
		ZpoolBin       string `mapstructure:"zpoolBin"`
	} `mapstructure:"command"`

	Keys struct {
		SSH struct {
			Username       string `mapstructure:"username"`
			DirPath        string `mapstructure:"dirPath"`
			Algorithm      string `mapstructure:"algorithm"`
			KnownHostsFile string `mapstructure:"knownHostsFile"`
		} `mapstructure:"ssh"`
	} `mapstructure:"keys"`

	Server struct {
		Port     int    `mapstructure:"port"`
		LogLevel string `mapstructure:"logLevel"`
	} `mapstructure:"server"`

	Logger struct {
		LogLevel     string `mapstructure:"logLevel"`
		EnableSentry bool   `mapstructure:"enableSentry"`
		SentryDSN    string `mapstructure:"sentryDSN"`
	} `mapstructure:"logger"`

	Development struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"development"`

	Environment string `mapstructure:"environment"`
}

// LoadConfig loads the configuration with precedence rules.
func LoadConfig(configFilePath string) *Config {
	once.Do(func() {
		logConfig := logger.Config{LogLevel: "info", EnableSentry: false, SentryDSN: ""}
		l, err := logger.NewTag(logConfig, "config")
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		viper.Reset()
		viper.SetConfigType("yaml")

		systemConfigPath := filepath.Join(GetConfigDir(), constants.ConfigFileName)

		if configFilePath != "" {
			configPath = configFilePath
		} else if envPath := os.Getenv("ZBACKUP_CONFIG"); envPath != "" {
			configPath = envPath
		} else {
			configPath = systemConfigPath
		}

		l.Info("Using config file", "path", configPath)

		if absPath, err := filepath.Abs(configPath); err == nil {
			configPath = absPath
		}

		viper.SetConfigFile(configPath)

		viper.SetDefault("environment", "dev")
		viper.SetDefault("source.snapshotPrefix", constants.DefaultSnapshotPrefix)
		viper.SetDefault("command.sudo", true)
		viper.SetDefault("command.timeoutSeconds", 0)
		viper.SetDefault("command.zfsBin", "/usr/sbin/zfs")
		viper.SetDefault("command.zpoolBin", "/usr/sbin/zpool")
		viper.SetDefault("keys.ssh.username", "ubuntu")
		viper.SetDefault("keys.ssh.dirPath", "~/.zbackup/keys/ssh")
		viper.SetDefault("keys.ssh.algorithm", "ed25519")
		viper.SetDefault("keys.ssh.knownHostsFile", "~/.zbackup/keys/ssh/known_hosts")
		viper.SetDefault("server.port", 8420)
		viper.SetDefault("server.logLevel", "info")
		viper.SetDefault("logger.logLevel", "debug")
		viper.SetDefault("logger.enableSentry", false)
		viper.SetDefault("logger.sentryDSN", "")
		viper.SetDefault("development.enabled", false)

		viper.AutomaticEnv()
		viper.SetEnvPrefix("ZBACKUP")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		err = viper.ReadInConfig()

		if err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				l.Info("Config file not found, creating default at system path", "path", systemConfigPath)

				if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
					l.Error("Failed to create config directory", "err", err)
				}

				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}

				instance = &cfg
				configPath = systemConfigPath

				if err := SaveConfig(systemConfigPath); err != nil {
					l.Error("Failed to save default configuration", "err", err)
				}
			} else {
				l.Error("Error reading config file", "err", err)

				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}

				instance = &cfg
			}
		} else {
			l.Info("Config file loaded successfully", "path", viper.ConfigFileUsed())
			configPath = viper.ConfigFileUsed()

			var cfg Config
			if err := viper.Unmarshal(&cfg); err != nil {
				l.Error("Failed to parse configuration", "err", err)
			} else {
				instance = &cfg
			}
		}

		if len(instance.Targets) == 0 {
			l.Warn("No backup targets configured")
		}

		l.Debug("Loaded configuration", "config", fmt.Sprintf("%+v", *instance))
	})

	return instance
}

// SaveConfig persists the current configuration to a specified path.
func SaveConfig(path string) error {
	if path == "" {
		if os.Geteuid() == 0 {
			if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
				return fmt.Errorf("failed to create system config directory: %w", err)
			}
			path = filepath.Join(GetConfigDir(), constants.ConfigFileName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			userConfigDir := filepath.Join(home, ".zbackup")
			if err := os.MkdirAll(userConfigDir, 0755); err != nil {
				return fmt.Errorf("failed to create user config directory: %w", err)
			}
			path = filepath.Join(userConfigDir, constants.ConfigFileName)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configYAML, err := yaml.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := os.WriteFile(path, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to write configuration to file: %w", err)
	}

	configPath = path
	return nil
}

// GetLoadedConfigPath returns the path of the currently loaded configuration file.
func GetLoadedConfigPath() string {
	return configPath
}

// GetConfig returns the current configuration instance, loading defaults if
// none has been loaded yet.
func GetConfig() *Config {
	if instance == nil {
		return LoadConfig("")
	}
	return instance
}

func NewLoggerConfig(cfg *Config) logger.Config {
	if cfg == nil {
		return logger.Config{LogLevel: "info", EnableSentry: false, SentryDSN: ""}
	}

	return logger.Config{
		LogLevel:     cfg.Logger.LogLevel,
		EnableSentry: cfg.Logger.EnableSentry,
		SentryDSN:    cfg.Logger.SentryDSN,
	}
}
