// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package pool models a named collection of datasets, the level above
// dataset.Dataset in the backup-plan entity model.
package pool

import (
	"sort"

	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/zfs/dataset"
)

// Pool is identity pool_name plus a unique-by-ZfsPath map of datasets.
type Pool struct {
	Name string

	datasets map[string]*dataset.Dataset
}

// New constructs an empty Pool.
func New(name string) *Pool {
	return &Pool{Name: name, datasets: make(map[string]*dataset.Dataset)}
}

// AddDataset inserts ds, enforcing that ds.PoolName matches this pool and
// that no dataset with the same ZfsPath already exists.
func (p *Pool) AddDataset(ds *dataset.Dataset) error {
	if ds.PoolName != p.Name {
		return errors.New(errors.BackupPlanAddError,
			"dataset "+ds.ZfsPath()+" does not belong to pool "+p.Name)
	}
	if _, exists := p.datasets[ds.ZfsPath()]; exists {
		return errors.New(errors.BackupPlanAddError,
			"dataset "+ds.ZfsPath()+" already exists in pool "+p.Name)
	}
	if p.datasets == nil {
		p.datasets = make(map[string]*dataset.Dataset)
	}
	p.datasets[ds.ZfsPath()] = ds
	return nil
}

// RemoveDataset deletes a dataset by ZfsPath, if present.
func (p *Pool) RemoveDataset(zfsPath string) {
	delete(p.datasets, zfsPath)
}

// Get resolves a dataset by ZfsPath, or nil if absent.
func (p *Pool) Get(zfsPath string) *dataset.Dataset {
	return p.datasets[zfsPath]
}

// HasDatasets reports whether the pool holds at least one dataset.
func (p *Pool) HasDatasets() bool {
	return len(p.datasets) > 0
}

// HasSnapshots reports whether any dataset in the pool holds a snapshot.
func (p *Pool) HasSnapshots() bool {
	for _, ds := range p.datasets {
		if ds.HasSnapshots() {
			return true
		}
	}
	return false
}

// Datasets returns the pool's datasets in lexicographic order of ZfsPath.
func (p *Pool) Datasets() []*dataset.Dataset {
	paths := p.ZfsPaths()
	out := make([]*dataset.Dataset, 0, len(paths))
	for _, path := range paths {
		out = append(out, p.datasets[path])
	}
	return out
}

// ZfsPaths returns the sorted set of dataset ZfsPath keys.
func (p *Pool) ZfsPaths() []string {
	paths := make([]string, 0, len(p.datasets))
	for k := range p.datasets {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// Copy returns an empty Pool with the same Name.
func (p *Pool) Copy() *Pool {
	return New(p.Name)
}

// DropEmptyDatasets removes every dataset that holds no snapshots.
func (p *Pool) DropEmptyDatasets() {
	for _, path := range p.ZfsPaths() {
		if !p.datasets[path].HasSnapshots() {
			delete(p.datasets, path)
		}
	}
}
