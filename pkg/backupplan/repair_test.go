// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package backupplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northvault/zbackup/pkg/zfs/dataset"
)

func TestFindRepairableSnapshotsBasicMissingTail(t *testing.T) {
	source := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_1", "p_2"))
	target := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial"))

	repair := FindRepairableSnapshots(source, target, false)

	ds := repair.Get("tank").Get("tank/data")
	require.NotNil(t, ds)
	assert.ElementsMatch(t, []string{"tank/data@p_1", "tank/data@p_2"}, ds.ZfsPaths())
}

func TestFindRepairableSnapshotsIncludesTargetChildrenOfMissingBase(t *testing.T) {
	// Target is missing p_1 but already has p_2 (an incremental child of the
	// missing p_1): restoring p_1 would require deleting p_2 first, so p_2
	// belongs in the repair set too.
	source := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_1", "p_2"))
	target := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_2"))

	repair := FindRepairableSnapshots(source, target, false)

	ds := repair.Get("tank").Get("tank/data")
	require.NotNil(t, ds)
	assert.Contains(t, ds.ZfsPaths(), "tank/data@p_1")
	assert.Contains(t, ds.ZfsPaths(), "tank/data@p_2")
}

func TestFindRepairableSnapshotsIncrementalOnlyTrimsToLast(t *testing.T) {
	source := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_1", "p_2"))
	target := poolListOf(t, dataset.New("tank", "data"))

	repair := FindRepairableSnapshots(source, target, true)

	ds := repair.Get("tank").Get("tank/data")
	require.NotNil(t, ds)
	assert.Equal(t, []string{"tank/data@p_2"}, ds.ZfsPaths(), "incremental-only keeps only the last missing snapshot")
}

func TestFindRepairableSnapshotsIncrementalOnlyDropsWhenChildExists(t *testing.T) {
	source := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_1", "p_2", "p_3"))
	// Target is missing p_1 and p_2, but already holds p_3 — once p_2 (the
	// last missing snapshot) is hypothesized, p_3 turns out to already be
	// its incremental child, so no explicit incremental repair is needed.
	target := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_3"))

	repair := FindRepairableSnapshots(source, target, true)

	assert.False(t, repair.HasSnapshots(), "target already has an incremental child of the last missing snapshot")
}

func TestFindRepairableSnapshotsNoDiffIsEmpty(t *testing.T) {
	source := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial"))
	target := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial"))

	repair := FindRepairableSnapshots(source, target, false)
	assert.False(t, repair.HasSnapshots())
}
