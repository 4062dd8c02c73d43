// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/pool"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// allZfsPaths flattens every snapshot path held across a PoolList.
func allZfsPaths(pl *PoolList) []string {
	var out []string
	for _, p := range pl.Pools() {
		for _, ds := range p.Datasets() {
			out = append(out, ds.ZfsPaths()...)
		}
	}
	return out
}

// TestGroupTargetPathsPartitionsRandomized verifies §8 property 8 against
// randomly generated target payloads (seeded for a reproducible run):
// every snapshot held by any target path appears in exactly one emitted
// group's PoolList.
func TestGroupTargetPathsPartitionsRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(20260801))

	for trial := 0; trial < 100; trial++ {
		numPaths := 2 + r.Intn(4)
		numSnaps := 3 + r.Intn(6)

		byPath := map[string]*PoolList{}
		wantCount := map[string]int{}

		for i := 0; i < numPaths; i++ {
			path := fmt.Sprintf("/targets/%d", i)
			d := dataset.New("tank", "data")
			for j := 0; j < numSnaps; j++ {
				if r.Intn(2) == 0 {
					continue
				}
				name := snapshot.FormatBackupSnapshot("p", j)
				zp := "tank/data@" + name
				if d.Get(zp) != nil {
					continue
				}
				require.NoError(t, d.AddSnapshot(snapshot.New("tank", "data", name)))
				wantCount[zp]++
			}
			p := pool.New("tank")
			require.NoError(t, p.AddDataset(d))
			pl := New()
			require.NoError(t, pl.AddPool(p))
			byPath[path] = pl
		}

		groups := GroupTargetPaths(byPath)

		gotCount := map[string]int{}
		for _, g := range groups {
			for _, zp := range allZfsPaths(g.Pools) {
				gotCount[zp]++
			}
		}

		for zp, want := range wantCount {
			if want == 0 {
				continue
			}
			assert.Equal(t, 1, gotCount[zp], "trial %d: %s must land in exactly one group", trial, zp)
		}
		for zp, got := range gotCount {
			assert.Equal(t, 1, got, "trial %d: %s must not be duplicated across groups", trial, zp)
			_ = zp
		}
	}
}
