// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import "sort"

// SortChainOrder orders snapshots of a single dataset the way the planner
// expects to iterate them. If every snapshot carries a CreationTime, it
// sorts ascending by that timestamp, which is the only reliable order
// across mixed prefixes. Otherwise it partitions into "initial" snapshots
// and the rest, sorts each partition lexicographically by ZfsPath, and
// emits initials first — decimal suffixes only sort numerically within a
// single prefix of matching width, so the planner never relies on lexical
// order across prefixes without parsing first.
func SortChainOrder(snaps []*Snapshot) []*Snapshot {
	out := make([]*Snapshot, len(snaps))
	copy(out, snaps)

	allTimed := true
	for _, s := range out {
		if s.CreationTime == nil {
			allTimed = false
			break
		}
	}

	if allTimed {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreationTime.Before(*out[j].CreationTime)
		})
		return out
	}

	var initials, rest []*Snapshot
	for _, s := range out {
		if isInitial(s.SnapshotName) {
			initials = append(initials, s)
		} else {
			rest = append(rest, s)
		}
	}
	sort.SliceStable(initials, func(i, j int) bool { return initials[i].ZfsPath() < initials[j].ZfsPath() })
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].ZfsPath() < rest[j].ZfsPath() })

	out = out[:0]
	out = append(out, initials...)
	out = append(out, rest...)
	return out
}

func isInitial(name string) bool {
	p, err := ParseBackupSnapshot(name)
	return err == nil && p.Index == 0
}
