// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package inventory holds PoolList, the top-level container used by every
// planner API, and the target-grouping algorithm that collapses
// destinations sharing identical sub-payloads.
package inventory

import (
	"sort"

	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/zfs/pool"
)

// PoolList is a mapping pool_name -> Pool with unique pool names.
type PoolList struct {
	pools map[string]*pool.Pool
}

// New constructs an empty PoolList.
func New() *PoolList {
	return &PoolList{pools: make(map[string]*pool.Pool)}
}

// AddPool inserts p, failing with an add-error if the name already exists.
func (pl *PoolList) AddPool(p *pool.Pool) error {
	if _, exists := pl.pools[p.Name]; exists {
		return errors.New(errors.BackupPlanAddError, "pool "+p.Name+" already exists in pool list")
	}
	if pl.pools == nil {
		pl.pools = make(map[string]*pool.Pool)
	}
	pl.pools[p.Name] = p
	return nil
}

// RemovePool deletes a pool by name, if present.
func (pl *PoolList) RemovePool(name string) {
	delete(pl.pools, name)
}

// Get resolves a pool by name, or nil if absent.
func (pl *PoolList) Get(name string) *pool.Pool {
	return pl.pools[name]
}

// Names returns the sorted pool names held.
func (pl *PoolList) Names() []string {
	names := make([]string, 0, len(pl.pools))
	for n := range pl.pools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Pools returns the pools in lexicographic order of name.
func (pl *PoolList) Pools() []*pool.Pool {
	names := pl.Names()
	out := make([]*pool.Pool, 0, len(names))
	for _, n := range names {
		out = append(out, pl.pools[n])
	}
	return out
}

// HasSnapshots reports whether any pool in the list holds a snapshot.
func (pl *PoolList) HasSnapshots() bool {
	for _, p := range pl.pools {
		if p.HasSnapshots() {
			return true
		}
	}
	return false
}

// Copy returns a new empty PoolList.
func (pl *PoolList) Copy() *PoolList {
	return New()
}

// View returns a deep clone of pl.
func (pl *PoolList) View() *PoolList {
	out := New()
	for _, p := range pl.Pools() {
		_ = out.AddPool(p.View())
	}
	return out
}

// DropEmptyPools removes pools left with no datasets, and drops
// empty datasets within the remaining pools.
func (pl *PoolList) DropEmptyPools() {
	for _, name := range pl.Names() {
		p := pl.pools[name]
		p.DropEmptyDatasets()
		if !p.HasDatasets() {
			delete(pl.pools, name)
		}
	}
}
