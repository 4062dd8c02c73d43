// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package backupplan

import (
	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
	"github.com/northvault/zbackup/pkg/zfs/pool"
)

// FindRepairableSnapshots computes what's missing from target relative to
// source, one dataset at a time, additionally pulling in any snapshot
// already present on target that is an incremental child of the last
// missing snapshot — a restore of that missing base would require first
// deleting those children, so they belong in the repair set too.
//
// In incrementalOnly mode, each dataset's repair set is trimmed to at most
// its single last-missing snapshot, and dropped entirely if target already
// holds an incremental child of it (a later restore would re-derive it
// without an explicit incremental repair).
func FindRepairableSnapshots(source, target *inventory.PoolList, incrementalOnly bool) *inventory.PoolList {
	diff := source.Difference(target)
	out := inventory.New()

	for _, p := range diff.Pools() {
		srcPool := source.Get(p.Name)
		targetPool := target.Get(p.Name)

		outPool := pool.New(p.Name)
		for _, ds := range p.Datasets() {
			var targetDS *dataset.Dataset
			if targetPool != nil {
				targetDS = targetPool.Get(ds.ZfsPath())
			}
			if targetDS == nil {
				targetDS = dataset.New(ds.PoolName, ds.DatasetName)
			}

			repaired := repairableForDataset(ds, targetDS, incrementalOnly)
			if repaired.HasSnapshots() {
				_ = outPool.AddDataset(repaired)
			}
		}
		if outPool.HasDatasets() {
			_ = out.AddPool(outPool)
		}
		_ = srcPool
	}

	return out
}

func repairableForDataset(diff, targetFull *dataset.Dataset, incrementalOnly bool) *dataset.Dataset {
	if !diff.HasSnapshots() {
		return diff.View()
	}

	ordered := diff.Snapshots()
	last := ordered[len(ordered)-1]

	if incrementalOnly {
		trimmed := diff.Copy()
		_ = trimmed.AddSnapshot(last.Copy())
		if targetFull.HasSnapshots() {
			children := targetFull.GetIncrementalChildren(last)
			if children.HasSnapshots() {
				return diff.Copy()
			}
		}
		return trimmed
	}

	repaired := diff.View()
	if targetFull.HasSnapshots() {
		children := targetFull.GetIncrementalChildren(last)
		repaired = repaired.Merge(children)
	}
	return repaired
}
