// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package backupplan

import (
	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
	"github.com/northvault/zbackup/pkg/zfs/pool"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// FindConflictingIntermediateSnapshots finds, for every dataset in repair
// whose first (chain-order) snapshot is not an "initial", the snapshots
// already present on completeTarget between that snapshot's incremental
// base and the chain head — these would make an incremental receive abort
// or silently skip. Datasets whose first repair snapshot IS an initial are
// skipped here; those are hard conflicts handled by
// FindInitialConflictingSnapshots instead.
//
// Unless skipSortability is set, every snapshot in completeTarget must
// carry a CreationTime, since chain-order across mixed prefixes is only
// reliable when timestamps are available; a missing one is an
// invariant-error.
func FindConflictingIntermediateSnapshots(repair, completeTarget *inventory.PoolList, skipSortability bool) (*inventory.PoolList, error) {
	if !skipSortability {
		for _, p := range completeTarget.Pools() {
			for _, ds := range p.Datasets() {
				for _, s := range ds.Snapshots() {
					if s.CreationTime == nil {
						return nil, errors.New(errors.BackupPlanInvariantError,
							"snapshot "+s.ZfsPath()+" has no creation_time and skip_sortability is false")
					}
				}
			}
		}
	}

	out := inventory.New()
	for _, p := range repair.Pools() {
		targetPool := completeTarget.Get(p.Name)

		outPool := pool.New(p.Name)
		for _, ds := range p.Datasets() {
			ordered := ds.Snapshots()
			if len(ordered) == 0 {
				continue
			}
			first := ordered[0]
			if parsed, err := snapshot.ParseBackupSnapshot(first.SnapshotName); err == nil && parsed.Index == 0 {
				continue // initial: a hard conflict, not an intermediate one
			}

			base := first.IncrementalBase()
			if base == nil || targetPool == nil {
				continue
			}
			targetDS := targetPool.Get(ds.ZfsPath())
			if targetDS == nil {
				continue
			}

			intermediates := targetDS.TimeOrderedChildren(base)
			if intermediates.HasSnapshots() {
				_ = outPool.AddDataset(intermediates)
			}
		}
		if outPool.HasDatasets() {
			_ = out.AddPool(outPool)
		}
	}
	return out, nil
}

// FindInitialConflictingSnapshots returns the target datasets that already
// exist where an initial-snapshot restore would land. These are hard
// conflicts: the whole destination dataset would need to be renamed or
// deleted before an initial receive can proceed.
func FindInitialConflictingSnapshots(repair, completeTarget *inventory.PoolList) *inventory.PoolList {
	out := inventory.New()
	for _, p := range repair.Pools() {
		targetPool := completeTarget.Get(p.Name)
		if targetPool == nil {
			continue
		}

		outPool := pool.New(p.Name)
		for _, ds := range p.Datasets() {
			ordered := ds.Snapshots()
			if len(ordered) == 0 {
				continue
			}
			first := ordered[0]
			parsed, err := snapshot.ParseBackupSnapshot(first.SnapshotName)
			if err != nil || parsed.Index != 0 {
				continue
			}

			targetDS := targetPool.Get(ds.ZfsPath())
			if targetDS != nil && targetDS.HasSnapshots() {
				_ = outPool.AddDataset(targetDS.View())
			}
		}
		if outPool.HasDatasets() {
			_ = out.AddPool(outPool)
		}
	}
	return out
}
