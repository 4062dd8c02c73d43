// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"strings"

	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// View returns a deep clone: every snapshot is a fresh object, but
// ZfsPath identity is preserved. Mutating the view — adding or removing
// snapshots, rebuilding chain links — never affects d or any other view
// taken from it.
//
// Incremental-base links are rewired to the clone's own snapshot objects
// by ZfsPath lookup. If a snapshot's base already pointed outside d's own
// map (the base having been removed from d by an earlier, non-rebuilding
// operation), the clone gets a pseudo base: a bare Snapshot carrying the
// missing base's identity but no further chain. This keeps
// HasIncrementalBase() truthful on such views without resurrecting a
// removed node into d's membership.
func (d *Dataset) View() *Dataset {
	out := d.Copy()

	clones := make(map[string]*snapshot.Snapshot, len(d.snapshots))
	for path, s := range d.snapshots {
		clones[path] = s.Copy()
	}

	for path, s := range d.snapshots {
		base := s.IncrementalBase()
		if base == nil {
			continue
		}
		if clone, ok := clones[base.ZfsPath()]; ok {
			clones[path].SetIncrementalBase(clone)
		} else {
			clones[path].SetIncrementalBase(base.Copy())
		}
	}

	for _, c := range clones {
		_ = out.AddSnapshot(c)
	}
	return out
}

// PrefixedView realizes "restore into an alternate root" at the model
// level: it is View() except every snapshot's pool component gains (or,
// when deshift is true, loses) a leading prefix. Composed,
// PrefixedView(p).PrefixedView(p, deshift=true) is equal in shape to View().
func (d *Dataset) PrefixedView(prefix string, deshift bool) *Dataset {
	v := d.View()
	newPool := v.PoolName
	if prefix != "" {
		if deshift {
			newPool = strings.TrimPrefix(newPool, prefix)
		} else {
			newPool = prefix + newPool
		}
	}
	if newPool == v.PoolName {
		return v
	}

	out := New(newPool, v.DatasetName)
	out.DatasetSize = v.DatasetSize

	clones := make(map[string]*snapshot.Snapshot, v.Len())
	for _, s := range v.Snapshots() {
		c := s.Copy()
		c.PoolName = newPool
		clones[s.ZfsPath()] = c
	}
	for _, s := range v.Snapshots() {
		base := s.IncrementalBase()
		if base == nil {
			continue
		}
		if clone, ok := clones[base.ZfsPath()]; ok {
			clones[s.ZfsPath()].SetIncrementalBase(clone)
		} else {
			bc := base.Copy()
			bc.PoolName = newPool
			clones[s.ZfsPath()].SetIncrementalBase(bc)
		}
	}
	for _, c := range clones {
		_ = out.AddSnapshot(c)
	}
	return out
}
