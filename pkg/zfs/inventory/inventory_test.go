// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/pool"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

func singleSnapPoolList(t *testing.T, poolName, dsName string, names ...string) *PoolList {
	t.Helper()
	d := dataset.New(poolName, dsName)
	for _, n := range names {
		require.NoError(t, d.AddSnapshot(snapshot.New(poolName, dsName, n)))
	}
	p := pool.New(poolName)
	require.NoError(t, p.AddDataset(d))
	pl := New()
	require.NoError(t, pl.AddPool(p))
	return pl
}

func TestAddPoolInvariant(t *testing.T) {
	pl := New()
	require.NoError(t, pl.AddPool(pool.New("tank")))
	require.Error(t, pl.AddPool(pool.New("tank")))
}

func TestPoolListDifferenceIntersectionProperties(t *testing.T) {
	a := singleSnapPoolList(t, "tank", "data", "p_0", "p_1", "p_2")
	b := singleSnapPoolList(t, "tank", "data", "p_1", "p_2", "p_3")

	diff := a.Difference(b)
	inter := a.Intersection(b)

	diffPaths := func(pl *PoolList) []string {
		var out []string
		for _, p := range pl.Pools() {
			for _, ds := range p.Datasets() {
				out = append(out, ds.ZfsPaths()...)
			}
		}
		return out
	}

	assert.ElementsMatch(t, []string{"tank/data@p_0"}, diffPaths(diff))
	assert.ElementsMatch(t, []string{"tank/data@p_1", "tank/data@p_2"}, diffPaths(inter))

	interBA := b.Intersection(a)
	assert.ElementsMatch(t, diffPaths(inter), diffPaths(interBA))

	union := append(append([]string{}, diffPaths(diff)...), diffPaths(inter)...)
	assert.ElementsMatch(t, diffPaths(a), union)
}

func TestPoolListMerge(t *testing.T) {
	a := singleSnapPoolList(t, "tank", "data", "p_0")
	b := singleSnapPoolList(t, "tank", "data", "p_1")

	merged := a.Merge(b)
	ds := merged.Get("tank").Get("tank/data")
	require.NotNil(t, ds)
	assert.Equal(t, []string{"tank/data@p_0", "tank/data@p_1"}, ds.ZfsPaths())
}

func TestPoolListViewIsolation(t *testing.T) {
	a := singleSnapPoolList(t, "tank", "data", "p_0")
	v := a.View()
	v.RemovePool("tank")

	assert.NotNil(t, a.Get("tank"), "mutating a view must not affect the origin")
	assert.Nil(t, v.Get("tank"))
}

func TestPoolListPrefixedViewRoundTrip(t *testing.T) {
	a := singleSnapPoolList(t, "tank", "data", "p_0", "p_1")

	shifted := a.PrefixedView("restored/", false)
	require.NotNil(t, shifted.Get("restored/tank"))

	back := shifted.PrefixedView("restored/", true)
	require.NotNil(t, back.Get("tank"))
	ds := back.Get("tank").Get("tank/data")
	require.NotNil(t, ds)
	assert.Equal(t, []string{"tank/data@p_0", "tank/data@p_1"}, ds.ZfsPaths())
}

func TestGroupTargetPathsPartitionsSnapshots(t *testing.T) {
	shared := singleSnapPoolList(t, "tank", "data", "p_0", "p_1")
	onlyA := singleSnapPoolList(t, "tank", "data", "p_0", "p_1", "p_2")
	onlyB := singleSnapPoolList(t, "tank", "data", "p_0", "p_1", "p_3")
	_ = shared

	groups := GroupTargetPaths(map[string]*PoolList{
		"/targets/a": onlyA,
		"/targets/b": onlyB,
	})

	seen := map[string]int{}
	for _, g := range groups {
		for _, p := range g.Pools.Pools() {
			for _, ds := range p.Datasets() {
				for _, path := range ds.ZfsPaths() {
					seen[path]++
				}
			}
		}
	}

	// Every snapshot appears in exactly one group.
	for path, count := range seen {
		assert.Equal(t, 1, count, "snapshot %s should belong to exactly one group", path)
	}
	assert.Contains(t, seen, "tank/data@p_0")
	assert.Contains(t, seen, "tank/data@p_2")
	assert.Contains(t, seen, "tank/data@p_3")

	// The shared p_0/p_1 should be grouped under both paths.
	var sharedGroup *Group
	for _, g := range groups {
		if len(g.Paths) == 2 {
			sharedGroup = g
		}
	}
	require.NotNil(t, sharedGroup, "expected one group naming both destinations")
	assert.ElementsMatch(t, []string{"/targets/a", "/targets/b"}, sharedGroup.Paths)
}

func TestGroupTargetPathsByHostMergesRepeatedPath(t *testing.T) {
	p1 := singleSnapPoolList(t, "tank", "data", "p_0")
	p2 := singleSnapPoolList(t, "tank", "data", "p_1")

	byHostPath := map[HostPath]*PoolList{
		{Host: "h1", Path: "/t"}: p1,
	}
	out := GroupTargetPathsByHost(byHostPath)
	require.Contains(t, out, "h1")
	_ = p2
}
