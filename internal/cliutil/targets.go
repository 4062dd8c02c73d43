// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package cliutil builds the orchestrator's runtime collaborators
// (volume manager, target set) from a loaded Config, shared by every
// cmd/ subcommand that drives a backup, restore, or verify run.
package cliutil

import (
	"path/filepath"

	"github.com/northvault/zbackup/config"
	"github.com/northvault/zbackup/pkg/targetfs"
	"github.com/northvault/zbackup/pkg/zfs/command"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
)

// BuildVolumeManager wraps a CommandExecutor configured per cfg.Command.
func BuildVolumeManager(cfg *config.Config) *command.VolumeManager {
	logCfg := config.NewLoggerConfig(cfg)
	executor := command.NewCommandExecutor(cfg.Command.Sudo, logCfg)
	return command.NewVolumeManager(executor)
}

// BuildTargets turns every configured Target into a targetfs.Target,
// keyed by the (host, path) pair the planner and orchestrator use to
// identify a destination. A target with no Host is treated as a local
// directory; anything else is reached over SSH.
func BuildTargets(cfg *config.Config) map[inventory.HostPath]targetfs.Target {
	out := make(map[inventory.HostPath]targetfs.Target, len(cfg.Targets))
	for _, t := range cfg.Targets {
		hp := inventory.HostPath{Host: t.Host, Path: t.Path}
		if t.Host == "" {
			out[hp] = targetfs.NewLocalTarget(t.Path)
			continue
		}

		user := t.User
		if user == "" {
			user = cfg.Keys.SSH.Username
		}

		rc := targetfs.RemoteConfig{
			Host:             t.Host,
			Port:             t.Port,
			User:             user,
			PrivateKey:       privateKeyPath(cfg),
			SSHOptions:       t.SSHOptions,
			SkipHostKeyCheck: t.SkipHostKeyCheck,
		}
		out[hp] = targetfs.NewRemoteTarget(t.Path, rc)
	}
	return out
}

// privateKeyPath returns the path to the SSH identity used to reach
// every remote target, named after the configured key algorithm under
// Keys.SSH.DirPath.
func privateKeyPath(cfg *config.Config) string {
	return filepath.Join(cfg.Keys.SSH.DirPath, "id_"+cfg.Keys.SSH.Algorithm)
}
