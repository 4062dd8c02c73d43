// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package backupplan is the planner: pure functions over already-scanned
// pool/dataset/snapshot collections that derive next-backup, repair,
// restore, and conflict-detection operation lists. Nothing here talks to
// the external command or target filesystem layers.
package backupplan

import (
	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
	"github.com/northvault/zbackup/pkg/zfs/pool"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// NextBackupSnapshotForDataset returns the single next managed snapshot for
// prefix in d: "{prefix}_initial" with no base if d has no managed
// snapshot of prefix, otherwise "{prefix}_{k+1}" based on the chain-order
// maximum, with that maximum as its incremental base.
func NextBackupSnapshotForDataset(d *dataset.Dataset, prefix string) *snapshot.Snapshot {
	var last *snapshot.Snapshot
	lastIndex := -1
	for _, s := range d.Snapshots() {
		p, err := snapshot.ParseBackupSnapshot(s.SnapshotName)
		if err != nil || p.Prefix != prefix {
			continue
		}
		if p.Index > lastIndex {
			lastIndex = p.Index
			last = s
		}
	}

	if last == nil {
		return snapshot.New(d.PoolName, d.DatasetName, snapshot.FormatBackupSnapshot(prefix, 0))
	}

	next := snapshot.New(d.PoolName, d.DatasetName, snapshot.FormatBackupSnapshot(prefix, lastIndex+1))
	next.SetIncrementalBase(last)
	return next
}

// MakeNextBackupView produces, for each dataset in source, a Dataset
// holding only that dataset's next snapshot for prefix. A dataset that
// also appears (with any snapshots) in skip is omitted entirely, so a
// "next" backup is never scheduled for a dataset that already has a
// repair pending. Datasets with no resulting snapshot are dropped.
func MakeNextBackupView(source *inventory.PoolList, prefix string, skip *inventory.PoolList) *inventory.PoolList {
	out := inventory.New()

	for _, p := range source.Pools() {
		outPool := pool.New(p.Name)
		for _, ds := range p.Datasets() {
			if skip != nil {
				if skipPool := skip.Get(p.Name); skipPool != nil {
					if skipDS := skipPool.Get(ds.ZfsPath()); skipDS != nil && skipDS.HasSnapshots() {
						continue
					}
				}
			}

			next := NextBackupSnapshotForDataset(ds, prefix)
			nd := dataset.New(ds.PoolName, ds.DatasetName)
			nd.DatasetSize = ds.DatasetSize
			_ = nd.AddSnapshot(next)
			_ = outPool.AddDataset(nd)
		}
		if outPool.HasDatasets() {
			_ = out.AddPool(outPool)
		}
	}

	out.DropEmptyPools()
	return out
}
