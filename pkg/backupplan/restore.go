// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package backupplan

import (
	"sort"

	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
	"github.com/northvault/zbackup/pkg/zfs/pool"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// RestorePlan is the output of BuildRestorePlan: the de-shifted operation
// list targeted at the original (remote) paths, the candidate data
// sources for every needed snapshot, and any conflicting snapshots that
// block the restore unless force was set.
type RestorePlan struct {
	Operations       *inventory.PoolList
	CandidateSources map[string][]inventory.HostPath
	ConflictingLocal *inventory.PoolList
	InitialConflicts *inventory.PoolList
}

// BuildRestorePlan composes a conflict-free restore plan per §4.7.
//
// remoteSources is the reconstructed view of what each (host, path)
// target actually stores; local is the current live state; restorePrefix
// is empty for an in-place restore. When force is false and any local
// conflict or hard initial conflict is found, planning fails with a
// conflict-error instead of silently scheduling destructive deletes.
func BuildRestorePlan(remoteSources map[inventory.HostPath]*inventory.PoolList, local *inventory.PoolList, restorePrefix string, force bool) (*RestorePlan, error) {
	merged := inventory.New()
	for _, pl := range remoteSources {
		merged = merged.Merge(pl)
	}
	expected := merged.PrefixedView(restorePrefix, false)

	repair := local.Merge(expected).Difference(local)

	closure := inventory.New()
	conflicts := inventory.New()

	for _, p := range repair.Pools() {
		fullRemotePool := expected.Get(p.Name)
		localPool := local.Get(p.Name)

		closurePool := pool.New(p.Name)
		conflictPool := pool.New(p.Name)

		for _, ds := range p.Datasets() {
			ordered := ds.Snapshots()
			if len(ordered) == 0 {
				continue
			}
			anchor := ordered[0]

			var fullRemoteDS *dataset.Dataset
			if fullRemotePool != nil {
				fullRemoteDS = fullRemotePool.Get(ds.ZfsPath())
			}
			if fullRemoteDS == nil {
				fullRemoteDS = ds.View()
			}

			children := fullRemoteDS.GetIncrementalChildren(anchor)

			dsClosure := ds.View()
			dsClosure = dsClosure.Merge(children)
			if dsClosure.HasSnapshots() {
				_ = closurePool.AddDataset(dsClosure)
			}

			if localPool != nil {
				if localDS := localPool.Get(ds.ZfsPath()); localDS != nil {
					dsConflicts := children.Intersection(localDS)
					if dsConflicts.HasSnapshots() {
						_ = conflictPool.AddDataset(dsConflicts)
					}
				}
			}
		}
		if closurePool.HasDatasets() {
			_ = closure.AddPool(closurePool)
		}
		if conflictPool.HasDatasets() {
			_ = conflicts.AddPool(conflictPool)
		}
	}

	initialConflicts := FindInitialConflictingSnapshots(repair, local)

	if !force && (conflicts.HasSnapshots() || initialConflicts.HasSnapshots()) {
		return nil, errors.New(errors.BackupPlanConflictError,
			"restore plan has conflicting snapshots on the local side; retry with force to schedule deletion")
	}

	deshifted := closure.PrefixedView(restorePrefix, true)

	candidates, err := MapSnapshotsToDataSources(deshifted, remoteSources)
	if err != nil {
		return nil, err
	}

	return &RestorePlan{
		Operations:       deshifted,
		CandidateSources: candidates,
		ConflictingLocal: conflicts.PrefixedView(restorePrefix, true),
		InitialConflicts: initialConflicts,
	}, nil
}

// MapSnapshotsToDataSources enumerates each snapshot in plan, in chain
// order, and attaches the list of (host, path) candidates from which it
// can be streamed. A snapshot with no candidate anywhere fails planning
// with a planning-error — "missing snapshot on remote side".
func MapSnapshotsToDataSources(plan *inventory.PoolList, remoteSources map[inventory.HostPath]*inventory.PoolList) (map[string][]inventory.HostPath, error) {
	out := map[string][]inventory.HostPath{}

	for _, p := range plan.Pools() {
		for _, ds := range p.Datasets() {
			for _, s := range ds.Snapshots() {
				var candidates []inventory.HostPath
				for hp, pl := range remoteSources {
					rp := pl.Get(p.Name)
					if rp == nil {
						continue
					}
					rds := rp.Get(ds.ZfsPath())
					if rds == nil {
						continue
					}
					if rds.Get(s.ZfsPath()) != nil {
						candidates = append(candidates, hp)
					}
				}
				if len(candidates) == 0 {
					return nil, errors.New(errors.BackupPlanPlanningError,
						"missing snapshot on remote side: "+s.ZfsPath())
				}
				sort.Slice(candidates, func(i, j int) bool {
					if candidates[i].Host != candidates[j].Host {
						return candidates[i].Host < candidates[j].Host
					}
					return candidates[i].Path < candidates[j].Path
				})
				out[s.ZfsPath()] = candidates
			}
		}
	}
	return out, nil
}

// FindRestoreChainHoles reports, for every managed prefix observed across
// plan's datasets, any gaps in that prefix's index sequence — a restore
// plan with holes cannot be satisfied by a single incremental chain.
func FindRestoreChainHoles(plan *inventory.PoolList) *inventory.PoolList {
	out := inventory.New()
	for _, p := range plan.Pools() {
		outPool := pool.New(p.Name)
		for _, ds := range p.Datasets() {
			prefixes := map[string]bool{}
			for _, s := range ds.Snapshots() {
				if parsed, err := snapshot.ParseBackupSnapshot(s.SnapshotName); err == nil {
					prefixes[parsed.Prefix] = true
				}
			}
			holes := ds.Copy()
			for prefix := range prefixes {
				h := ds.FindSnapshotHoles(prefix)
				holes = holes.Merge(h)
			}
			if holes.HasSnapshots() {
				_ = outPool.AddDataset(holes)
			}
		}
		if outPool.HasDatasets() {
			_ = out.AddPool(outPool)
		}
	}
	return out
}
