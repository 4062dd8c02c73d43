// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package dataset models a collection of a single (pool, dataset)'s
// snapshots: the chain-order iteration, the set operations, the view and
// prefix-shift transforms, the incremental chain builder, the hole finder,
// and the incremental-children query.
package dataset

import (
	"sort"

	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// Dataset is identity (pool, dataset) plus a unique-by-ZfsPath map of
// snapshots. Snapshots may only be added if their (pool, dataset) matches
// this Dataset's identity.
type Dataset struct {
	PoolName    string
	DatasetName string

	// DatasetSize is optional; only set when known from the source scan.
	DatasetSize *int64

	snapshots map[string]*snapshot.Snapshot
}

// New constructs an empty Dataset.
func New(pool, datasetName string) *Dataset {
	return &Dataset{
		PoolName:    pool,
		DatasetName: datasetName,
		snapshots:   make(map[string]*snapshot.Snapshot),
	}
}

// ZfsPath returns "{pool}/{dataset}".
func (d *Dataset) ZfsPath() string {
	return d.PoolName + "/" + d.DatasetName
}

// AddSnapshot inserts s, enforcing the unique-name and matching-identity
// invariants. Re-adding the same identity is an add-error, as is adding a
// snapshot whose (pool, dataset) doesn't match this Dataset.
func (d *Dataset) AddSnapshot(s *snapshot.Snapshot) error {
	if s.PoolName != d.PoolName || s.DatasetName != d.DatasetName {
		return errors.New(errors.BackupPlanAddError,
			"snapshot "+s.ZfsPath()+" does not belong to dataset "+d.ZfsPath())
	}
	if _, exists := d.snapshots[s.ZfsPath()]; exists {
		return errors.New(errors.BackupPlanAddError,
			"snapshot "+s.ZfsPath()+" already exists in dataset "+d.ZfsPath())
	}
	if d.snapshots == nil {
		d.snapshots = make(map[string]*snapshot.Snapshot)
	}
	d.snapshots[s.ZfsPath()] = s
	return nil
}

// RemoveSnapshot deletes a snapshot by ZfsPath, if present. It does not
// rewire other snapshots' incremental bases; per the entity model's
// ownership rules, that is the chain builder's job on a fresh pass.
func (d *Dataset) RemoveSnapshot(zfsPath string) {
	delete(d.snapshots, zfsPath)
}

// Get resolves a snapshot by ZfsPath, or nil if absent.
func (d *Dataset) Get(zfsPath string) *snapshot.Snapshot {
	return d.snapshots[zfsPath]
}

// HasSnapshots reports whether the dataset holds at least one snapshot.
func (d *Dataset) HasSnapshots() bool {
	return len(d.snapshots) > 0
}

// Len returns the number of snapshots.
func (d *Dataset) Len() int {
	return len(d.snapshots)
}

// Snapshots returns the dataset's snapshots in chain order (§4.1).
func (d *Dataset) Snapshots() []*snapshot.Snapshot {
	list := make([]*snapshot.Snapshot, 0, len(d.snapshots))
	for _, s := range d.snapshots {
		list = append(list, s)
	}
	return snapshot.SortChainOrder(list)
}

// ZfsPaths returns the set of ZfsPath strings held, sorted.
func (d *Dataset) ZfsPaths() []string {
	paths := make([]string, 0, len(d.snapshots))
	for p := range d.snapshots {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Copy returns a Dataset with the same identity and DatasetSize but no
// snapshots.
func (d *Dataset) Copy() *Dataset {
	cp := New(d.PoolName, d.DatasetName)
	if d.DatasetSize != nil {
		sz := *d.DatasetSize
		cp.DatasetSize = &sz
	}
	return cp
}
