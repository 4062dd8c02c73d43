// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"os/exec"

	"github.com/northvault/zbackup/pkg/backupplan"
	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/targetfs"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
)

// RestoreReport summarizes one run of PlanAndRunRestore.
type RestoreReport struct {
	Plan     *backupplan.RestorePlan
	Received []string
	Failed   map[string]error
}

// PlanAndRunRestore builds a restore plan from the PoolLists scanned off
// every remote target, then receives each planned snapshot from its
// first candidate source into the local pool named
// "{restorePrefix}{snapshot.PoolName}" — the plan's own operations carry
// each snapshot's original identity (what to fetch), while restorePrefix
// alone decides where it lands locally (§4.7).
func (o *Orchestrator) PlanAndRunRestore(ctx context.Context, remoteSources map[inventory.HostPath]*inventory.PoolList, sourceTargets map[inventory.HostPath]targetfs.Target, local *inventory.PoolList, restorePrefix string, force bool) (*RestoreReport, error) {
	plan, err := backupplan.BuildRestorePlan(remoteSources, local, restorePrefix, force)
	if err != nil {
		return nil, err
	}

	report := &RestoreReport{Plan: plan, Failed: map[string]error{}}

	for _, p := range plan.Operations.Pools() {
		for _, ds := range p.Datasets() {
			for _, s := range ds.Snapshots() {
				candidates := plan.CandidateSources[s.ZfsPath()]
				if len(candidates) == 0 {
					report.Failed[s.ZfsPath()] = errors.New(errors.BackupPlanPlanningError,
						"no candidate source recorded for "+s.ZfsPath())
					continue
				}

				destRoot := s.PoolName
				if restorePrefix != "" {
					destRoot = restorePrefix + s.PoolName
				}

				if err := o.receiveSnapshot(ctx, sourceTargets[candidates[0]], s.PoolName, s.DatasetName, s.SnapshotName, destRoot); err != nil {
					report.Failed[s.ZfsPath()] = err
					o.Log.Error("snapshot receive failed", "snapshot", s.ZfsPath(), "err", err)
					continue
				}
				report.Received = append(report.Received, s.ZfsPath())
			}
		}
	}

	if len(report.Failed) > 0 {
		return report, errors.New(errors.BackupPlanPlanningError, "one or more snapshots failed to restore")
	}
	return report, nil
}

func (o *Orchestrator) receiveSnapshot(ctx context.Context, source targetfs.Target, pool, ds, name, destRoot string) error {
	if source == nil {
		return errors.New(errors.BackupPlanResolveError, "source target is nil")
	}

	streamPath := targetfs.StreamPath(pool, ds, name)
	expected, err := source.StreamDigest(ctx, streamPath)
	if err != nil {
		return err
	}
	want, err := source.ReadSmallText(ctx, targetfs.FinalDigestPath(pool, ds, name))
	if err != nil {
		return err
	}
	if targetfs.ParseDigestFile(want) != expected {
		return errors.New(errors.BackupPlanConflictError, "digest mismatch for "+pool+"/"+ds+"@"+name)
	}

	r, err := source.OpenReadStream(ctx, streamPath)
	if err != nil {
		return err
	}
	defer r.Close()

	args := o.VM.RecvArgs(destRoot, ds, name)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = r

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, errors.CommandExecution)
	}
	return nil
}
