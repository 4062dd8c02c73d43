// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

func withSnapshots(t *testing.T, poolName, dsName string, names ...string) *dataset.Dataset {
	t.Helper()
	d := dataset.New(poolName, dsName)
	for _, n := range names {
		require.NoError(t, d.AddSnapshot(snapshot.New(poolName, dsName, n)))
	}
	return d
}

func TestAddDatasetInvariants(t *testing.T) {
	p := New("tank")
	require.NoError(t, p.AddDataset(withSnapshots(t, "tank", "data", "p_initial")))

	err := p.AddDataset(withSnapshots(t, "other", "data", "p_initial"))
	require.Error(t, err, "dataset from a different pool must be rejected")

	err = p.AddDataset(dataset.New("tank", "data"))
	require.Error(t, err, "duplicate dataset path must be rejected")
}

func TestPoolDatasetsOrderedLexically(t *testing.T) {
	p := New("tank")
	require.NoError(t, p.AddDataset(dataset.New("tank", "zeta")))
	require.NoError(t, p.AddDataset(dataset.New("tank", "alpha")))

	paths := p.ZfsPaths()
	assert.Equal(t, []string{"tank/alpha", "tank/zeta"}, paths)
}

func TestPoolDifferenceDropsEmptyDataset(t *testing.T) {
	p1 := New("tank")
	require.NoError(t, p1.AddDataset(withSnapshots(t, "tank", "data", "p_0", "p_1")))

	p2 := New("tank")
	require.NoError(t, p2.AddDataset(withSnapshots(t, "tank", "data", "p_0", "p_1")))

	diff := p1.Difference(p2)
	assert.False(t, diff.HasDatasets(), "dataset with empty recursive diff must be dropped")
}

func TestPoolDifferenceKeepsDatasetWhole(t *testing.T) {
	p1 := New("tank")
	require.NoError(t, p1.AddDataset(withSnapshots(t, "tank", "data", "p_0")))

	p2 := New("tank") // no "data" at all

	diff := p1.Difference(p2)
	ds := diff.Get("tank/data")
	require.NotNil(t, ds)
	assert.Equal(t, []string{"tank/data@p_0"}, ds.ZfsPaths())
}

func TestPoolIntersectionDropsAbsentDataset(t *testing.T) {
	p1 := New("tank")
	require.NoError(t, p1.AddDataset(withSnapshots(t, "tank", "data", "p_0")))
	require.NoError(t, p1.AddDataset(withSnapshots(t, "tank", "other", "p_0")))

	p2 := New("tank")
	require.NoError(t, p2.AddDataset(withSnapshots(t, "tank", "data", "p_0")))

	inter := p1.Intersection(p2)
	assert.NotNil(t, inter.Get("tank/data"))
	assert.Nil(t, inter.Get("tank/other"))
}

func TestPoolMergeUnionsDatasets(t *testing.T) {
	p1 := New("tank")
	require.NoError(t, p1.AddDataset(withSnapshots(t, "tank", "data", "p_0")))

	p2 := New("tank")
	require.NoError(t, p2.AddDataset(withSnapshots(t, "tank", "data", "p_1")))
	require.NoError(t, p2.AddDataset(withSnapshots(t, "tank", "other", "p_0")))

	merged := p1.Merge(p2)
	ds := merged.Get("tank/data")
	require.NotNil(t, ds)
	assert.Equal(t, []string{"tank/data@p_0", "tank/data@p_1"}, ds.ZfsPaths())
	assert.NotNil(t, merged.Get("tank/other"))
}

func TestPoolViewIsolation(t *testing.T) {
	p := New("tank")
	require.NoError(t, p.AddDataset(withSnapshots(t, "tank", "data", "p_0")))

	v := p.View()
	v.RemoveDataset("tank/data")
	assert.True(t, p.HasDatasets(), "mutating a view must not affect the origin")
}

func TestPoolPrefixedView(t *testing.T) {
	p := New("tank")
	require.NoError(t, p.AddDataset(withSnapshots(t, "tank", "data", "p_0")))

	shifted := p.PrefixedView("restored/", false)
	assert.Equal(t, "restored/tank", shifted.Name)
	assert.NotNil(t, shifted.Get("restored/tank/data"))
}

func TestPoolDropEmptyDatasets(t *testing.T) {
	p := New("tank")
	require.NoError(t, p.AddDataset(dataset.New("tank", "empty")))
	require.NoError(t, p.AddDataset(withSnapshots(t, "tank", "data", "p_0")))

	p.DropEmptyDatasets()
	assert.Nil(t, p.Get("tank/empty"))
	assert.NotNil(t, p.Get("tank/data"))
}
