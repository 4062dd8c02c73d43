// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package dataset

import "github.com/northvault/zbackup/pkg/zfs/snapshot"

// BuildIncrementalRefs derives incremental-base links from naming evidence
// alone, in place, on this Dataset's own snapshots. It walks chain order
// once per distinct prefix, linking snapshot i to i-1 whenever both exist
// and no index is skipped between them.
//
// A chain is only rooted by an "initial" snapshot: if a prefix's lowest
// present index is 1 rather than 0, that snapshot is left baseless — the
// source's behavior is kept here on purpose rather than inferring a root
// that was never observed.
//
// Foreign (unparseable) names never participate and are left untouched.
func (d *Dataset) BuildIncrementalRefs() {
	ordered := d.Snapshots()

	prefixes := map[string]bool{}
	parsed := make(map[string]snapshot.ParsedName, len(ordered))
	for _, s := range ordered {
		p, err := snapshot.ParseBackupSnapshot(s.SnapshotName)
		if err != nil {
			continue
		}
		parsed[s.ZfsPath()] = p
		prefixes[p.Prefix] = true
	}

	for prefix := range prefixes {
		var candidateBase *snapshot.Snapshot
		var candidateIndex int
		haveCandidate := false

		for _, s := range ordered {
			p, ok := parsed[s.ZfsPath()]
			if !ok || p.Prefix != prefix {
				continue
			}
			if haveCandidate && candidateIndex+1 == p.Index {
				s.SetIncrementalBase(candidateBase)
			}
			candidateBase = s
			candidateIndex = p.Index
			haveCandidate = true
		}
	}
}
