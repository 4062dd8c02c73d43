// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/northvault/zbackup/pkg/errors"
)

// VolumeManager narrows CommandExecutor down to the operations the backup
// planner's orchestrator needs from the underlying volume manager (§6):
// listing pools/datasets/snapshots, creating and destroying snapshots, and
// emitting/receiving incremental streams. Everything else CommandExecutor
// can do (property management, pool creation, etc.) remains available
// directly on the embedded executor for callers outside the planner.
type VolumeManager struct {
	*CommandExecutor
}

// NewVolumeManager wraps an existing CommandExecutor.
func NewVolumeManager(e *CommandExecutor) *VolumeManager {
	return &VolumeManager{CommandExecutor: e}
}

// ListPools returns every imported pool name.
func (v *VolumeManager) ListPools(ctx context.Context) ([]string, error) {
	out, err := v.Execute(ctx, CommandOptions{Flags: FlagParsable | FlagNoHeaders}, "zpool list", "-o", "name")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(string(out)), nil
}

// ListDatasets returns the relative dataset names under pool.
func (v *VolumeManager) ListDatasets(ctx context.Context, pool string) ([]string, error) {
	out, err := v.Execute(ctx, CommandOptions{Flags: FlagRecursive | FlagNoHeaders}, "zfs list",
		"-o", "name", "-t", "filesystem,volume", pool)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range splitNonEmptyLines(string(out)) {
		if line == pool {
			continue
		}
		names = append(names, strings.TrimPrefix(line, pool+"/"))
	}
	return names, nil
}

// ListSnapshots returns the snapshot names (no "{dataset}@" prefix) of
// datasetZfsPath.
func (v *VolumeManager) ListSnapshots(ctx context.Context, datasetZfsPath string) ([]string, error) {
	out, err := v.Execute(ctx, CommandOptions{Flags: FlagNoHeaders}, "zfs list",
		"-o", "name", "-t", "snapshot", "-d", "1", datasetZfsPath)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range splitNonEmptyLines(string(out)) {
		if i := strings.IndexByte(line, '@'); i >= 0 {
			names = append(names, line[i+1:])
		}
	}
	return names, nil
}

// HasDataset reports whether zfsPath names an existing pool, dataset, or
// snapshot.
func (v *VolumeManager) HasDataset(ctx context.Context, zfsPath string) (bool, error) {
	_, err := v.Execute(ctx, CommandOptions{Flags: FlagNoHeaders}, "zfs list", zfsPath)
	if err == nil {
		return true, nil
	}
	if code, ok := errors.GetCode(err); ok && code == errors.CommandExecution {
		return false, nil
	}
	return false, err
}

// CreateSnapshot creates "{datasetZfsPath}@{name}".
func (v *VolumeManager) CreateSnapshot(ctx context.Context, datasetZfsPath, name string) error {
	_, err := v.Execute(ctx, CommandOptions{}, "zfs snapshot", datasetZfsPath+"@"+name)
	return err
}

// DeleteSnapshot destroys "{datasetZfsPath}@{name}".
func (v *VolumeManager) DeleteSnapshot(ctx context.Context, datasetZfsPath, name string) error {
	_, err := v.Execute(ctx, CommandOptions{}, "zfs destroy", datasetZfsPath+"@"+name)
	return err
}

// SendArgs builds the "zfs send" argument list for source, optionally
// relative to baseOrNil, including intermediate snapshots when requested.
// The caller pipes the resulting command's stdout to a destination and, in
// parallel, to a digest sink (see pkg/targetfs).
func (v *VolumeManager) SendArgs(source string, baseOrNil *string, includeIntermediates bool) []string {
	args := []string{BinZFS, "send"}
	if baseOrNil != nil {
		if includeIntermediates {
			args = append(args, "-I", *baseOrNil)
		} else {
			args = append(args, "-i", *baseOrNil)
		}
	}
	return append(args, source)
}

// RecvArgs builds the "zfs receive" argument list for landing a stream at
// "{root}/{dataset}@{name}".
func (v *VolumeManager) RecvArgs(root, dataset, name string) []string {
	return []string{BinZFS, "receive", root + "/" + dataset + "@" + name}
}

// EstimateSendSize asks zfs send for the dry-run size estimate, in bytes,
// of the stream described by source/baseOrNil.
func (v *VolumeManager) EstimateSendSize(ctx context.Context, source string, baseOrNil *string) (int64, error) {
	args := []string{"-n", "-P"}
	if baseOrNil != nil {
		args = append(args, "-i", *baseOrNil)
	}
	args = append(args, source)

	out, err := v.Execute(ctx, CommandOptions{}, "zfs send", args...)
	if err != nil {
		return 0, err
	}
	for _, line := range splitNonEmptyLines(string(out)) {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "size" {
			n, convErr := strconv.ParseInt(fields[1], 10, 64)
			if convErr == nil {
				return n, nil
			}
		}
	}
	return 0, errors.New(errors.CommandOutputParse, "could not find size estimate in zfs send -nP output")
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
