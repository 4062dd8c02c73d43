// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/northvault/zbackup/internal/common"
	"github.com/northvault/zbackup/pkg/backupplan"
	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/targetfs"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// BackupReport summarizes one target's share of a PlanAndRunBackup run.
type BackupReport struct {
	RunID     string
	Planned   *inventory.PoolList
	Conflicts *inventory.PoolList
	Sent      []string // ZfsPath of every snapshot successfully sent
	Failed    map[string]error
}

// PlanAndRunBackup computes the next-backup-plus-repair operation list for
// source against each target's current state, checks the repair set for
// §4.7 conflicting intermediate snapshots, then executes whatever remains:
// one "zfs send" per planned snapshot per distinct payload, teeing the
// stream out to every target that was grouped (§4.8) as sharing it.
//
// incrementalOnly controls FindRepairableSnapshots' trimming (§4.5); the
// next-backup step is always computed on top of whatever the repair step
// already covers, so a dataset never gets both a repair and a next
// snapshot scheduled in the same run. Unless force is set, a target whose
// repair set has a conflicting intermediate snapshot is skipped entirely
// rather than risking an incremental receive that aborts or silently
// drops data partway through.
func (o *Orchestrator) PlanAndRunBackup(ctx context.Context, source *inventory.PoolList, existing map[inventory.HostPath]*inventory.PoolList, targets map[inventory.HostPath]targetfs.Target, prefix string, incrementalOnly, force bool) (map[inventory.HostPath]*BackupReport, error) {
	planned := map[inventory.HostPath]*inventory.PoolList{}
	reports := map[inventory.HostPath]*BackupReport{}

	for hp := range targets {
		ex := existing[hp]
		if ex == nil {
			ex = inventory.New()
		}

		repair := backupplan.FindRepairableSnapshots(source, ex, incrementalOnly)
		// skipSortability: true — neither ScanSource nor targetfs.Scan
		// populate CreationTime (the command layer only lists names), so
		// the invariant check would fail on every real run.
		conflicts, err := backupplan.FindConflictingIntermediateSnapshots(repair, ex, true)
		if err != nil {
			return nil, err
		}

		report := &BackupReport{RunID: common.UUID7(), Conflicts: conflicts, Failed: map[string]error{}}
		if conflicts.HasSnapshots() && !force {
			o.Log.Error("repair set has conflicting intermediate snapshots, skipping target",
				"host", hp.Host, "path", hp.Path)
			report.Planned = inventory.New()
			reports[hp] = report
			continue
		}

		next := backupplan.MakeNextBackupView(source, prefix, repair)
		planned[hp] = repair.Merge(next)
		report.Planned = planned[hp]
		reports[hp] = report
	}

	for host, groups := range inventory.GroupTargetPathsByHost(planned) {
		for _, g := range groups {
			groupTargets := make([]targetfs.Target, 0, len(g.Paths))
			hps := make([]inventory.HostPath, 0, len(g.Paths))
			for _, path := range g.Paths {
				hp := inventory.HostPath{Host: host, Path: path}
				hps = append(hps, hp)
				groupTargets = append(groupTargets, targets[hp])
			}

			for _, p := range g.Pools.Pools() {
				for _, ds := range p.Datasets() {
					for _, s := range ds.Snapshots() {
						err := o.sendSnapshotToGroup(ctx, s, groupTargets)
						for _, hp := range hps {
							if err != nil {
								reports[hp].Failed[s.ZfsPath()] = err
								continue
							}
							reports[hp].Sent = append(reports[hp].Sent, s.ZfsPath())
						}
						if err != nil {
							o.Log.Error("grouped snapshot send failed", "snapshot", s.ZfsPath(), "host", host, "err", err)
						}
					}
				}
			}
		}
	}

	var failed bool
	for _, r := range reports {
		if len(r.Failed) > 0 {
			failed = true
			break
		}
	}
	if failed {
		return reports, errors.New(errors.BackupPlanPlanningError, "one or more snapshots failed to send")
	}
	return reports, nil
}

// sendSnapshotToGroup streams s once (creating it on the source first if
// it does not yet exist) and tees the "zfs send" output to every target
// in group, which GroupTargetPathsByHost (§4.8) has already established
// expect an identical payload — so a shared source fan-out replaces N
// redundant sends. A single SHA-256 digest is accumulated from the
// tee'd source stream and written out per target, since the bytes landed
// on each one are identical by construction.
func (o *Orchestrator) sendSnapshotToGroup(ctx context.Context, s *snapshot.Snapshot, group []targetfs.Target) error {
	exists, err := o.VM.HasDataset(ctx, s.ZfsPath())
	if err != nil {
		return err
	}
	if !exists {
		if err := o.VM.CreateSnapshot(ctx, s.DatasetPath(), s.SnapshotName); err != nil {
			return err
		}
	}

	var baseOrNil *string
	if base := s.IncrementalBase(); base != nil {
		zp := base.ZfsPath()
		baseOrNil = &zp
	}

	args := o.VM.SendArgs(s.ZfsPath(), baseOrNil, false)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, errors.CommandExecution)
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, errors.CommandExecution)
	}

	streamPath := targetfs.StreamPath(s.PoolName, s.DatasetName, s.SnapshotName)
	finalDigestPath := targetfs.FinalDigestPath(s.PoolName, s.DatasetName, s.SnapshotName)
	inFlightPath := targetfs.InFlightDigestPath(s.PoolName, s.DatasetName, s.SnapshotName)

	hasher := sha256.New()
	writers := []io.Writer{hasher}
	pipes := make([]*io.PipeWriter, len(group))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range group {
		if err := t.WriteSmallText(ctx, inFlightPath, "pending"); err != nil {
			_ = cmd.Wait()
			return err
		}
		pr, pw := io.Pipe()
		pipes[i] = pw
		writers = append(writers, pw)

		t := t
		g.Go(func() error {
			return t.WriteStream(gctx, streamPath, pr)
		})
	}

	_, copyErr := io.Copy(io.MultiWriter(writers...), stdout)
	for _, pw := range pipes {
		_ = pw.CloseWithError(copyErr)
	}

	writeErr := g.Wait()
	waitErr := cmd.Wait()

	if copyErr != nil {
		return errors.Wrap(copyErr, errors.CommandExecution)
	}
	if writeErr != nil {
		return writeErr
	}
	if waitErr != nil {
		return errors.Wrap(waitErr, errors.CommandExecution)
	}

	digest := hex.EncodeToString(hasher.Sum(nil))
	finalContent := targetfs.FormatDigestFile(digest, s.SnapshotName+targetfs.StreamSuffix)
	for _, t := range group {
		if err := t.WriteSmallText(ctx, finalDigestPath, finalContent); err != nil {
			return err
		}
	}
	for _, t := range group {
		if err := t.RemoveFile(ctx, inFlightPath); err != nil {
			return err
		}
	}
	return nil
}
