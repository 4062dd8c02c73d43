// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package dataset

import "github.com/northvault/zbackup/pkg/zfs/snapshot"

// FindSnapshotHoles returns, for the given prefix, a Dataset of synthetic
// snapshots at every index missing between the minimum and maximum present
// index.
//
// If no managed snapshot of that prefix exists, the result is an empty
// Dataset: "no chain for this prefix" and "no holes known" are both
// represented the same way, and the caller decides how to treat an empty
// result (this mirrors a deliberate redesign — see DESIGN.md — of the
// legacy behavior of returning a full copy of the input dataset here).
func (d *Dataset) FindSnapshotHoles(prefix string) *Dataset {
	out := d.Copy()

	present := map[int]bool{}
	lo, hi := 0, -1
	first := true
	for _, s := range d.Snapshots() {
		p, err := snapshot.ParseBackupSnapshot(s.SnapshotName)
		if err != nil || p.Prefix != prefix {
			continue
		}
		present[p.Index] = true
		if first {
			lo, hi = p.Index, p.Index
			first = false
			continue
		}
		if p.Index < lo {
			lo = p.Index
		}
		if p.Index > hi {
			hi = p.Index
		}
	}
	if first {
		return out
	}

	for i := lo; i <= hi; i++ {
		if present[i] {
			continue
		}
		name := snapshot.FormatBackupSnapshot(prefix, i)
		_ = out.AddSnapshot(snapshot.New(d.PoolName, d.DatasetName, name))
	}
	return out
}
