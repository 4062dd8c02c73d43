// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package dataset

import "github.com/northvault/zbackup/pkg/zfs/snapshot"

// GetIncrementalChildren returns the sub-chain reachable forward from
// parent: a view of d containing every snapshot strictly after parent
// whose base chain eventually leads back to parent. This is the set of
// snapshots that would be overwritten or blocked by a restore anchored at
// parent.
//
// If parent is not already present in d, it is injected into the working
// view and links are rebuilt before walking, so a hypothetical anchor can
// be queried without first mutating the caller's Dataset.
func (d *Dataset) GetIncrementalChildren(parent *snapshot.Snapshot) *Dataset {
	view := d.View()

	if view.Get(parent.ZfsPath()) == nil {
		_ = view.AddSnapshot(parent.Copy())
		view.BuildIncrementalRefs()
	}

	reachable := map[string]bool{parent.ZfsPath(): true}
	changed := true
	for changed {
		changed = false
		for _, s := range view.Snapshots() {
			if reachable[s.ZfsPath()] {
				continue
			}
			base := s.IncrementalBase()
			if base != nil && reachable[base.ZfsPath()] {
				reachable[s.ZfsPath()] = true
				changed = true
			}
		}
	}

	out := view.Copy()
	for _, s := range view.Snapshots() {
		if s.ZfsPath() == parent.ZfsPath() {
			continue
		}
		if reachable[s.ZfsPath()] {
			_ = out.AddSnapshot(s)
		}
	}
	return out
}

// TimeOrderedChildren returns every snapshot of d positioned strictly after
// parent in chain order (§4.1), independent of incremental-base links. This
// is the query the conflict detector (§4.7) needs: a receive anchored at
// parent can be aborted or silently skipped by ANY snapshot chronologically
// between parent and the chain head on the destination, managed or foreign
// — not only the ones a rebuilt base chain happens to link. d must expose a
// CreationTime on every snapshot for the ordering to be meaningful; callers
// are expected to have already enforced that (see
// FindConflictingIntermediateSnapshots's skipSortability check).
//
// If parent is absent from d, the result is empty: there is no position to
// measure "after" from.
func (d *Dataset) TimeOrderedChildren(parent *snapshot.Snapshot) *Dataset {
	out := d.Copy()

	ordered := d.Snapshots()
	parentIdx := -1
	for i, s := range ordered {
		if s.ZfsPath() == parent.ZfsPath() {
			parentIdx = i
			break
		}
	}
	if parentIdx < 0 {
		return out
	}

	for _, s := range ordered[parentIdx+1:] {
		_ = out.AddSnapshot(s.Copy())
	}
	return out
}
