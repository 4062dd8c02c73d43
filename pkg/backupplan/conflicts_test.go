// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package backupplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

func TestFindInitialConflictingSnapshots(t *testing.T) {
	repair := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial"))
	target := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_1"))

	conflicts := FindInitialConflictingSnapshots(repair, target)

	ds := conflicts.Get("tank").Get("tank/data")
	require.NotNil(t, ds, "existing dataset at the initial-snapshot landing spot is a hard conflict")
	assert.ElementsMatch(t, []string{"tank/data@p_initial", "tank/data@p_1"}, ds.ZfsPaths())
}

func TestFindInitialConflictingSnapshotsNoneWhenTargetEmpty(t *testing.T) {
	repair := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial"))
	target := poolListOf(t, dataset.New("tank", "data"))

	conflicts := FindInitialConflictingSnapshots(repair, target)
	assert.False(t, conflicts.HasSnapshots())
}

func TestFindInitialConflictingSnapshotsSkipsNonInitialFirst(t *testing.T) {
	repair := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_1"))
	target := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_initial", "p_1"))

	conflicts := FindInitialConflictingSnapshots(repair, target)
	assert.False(t, conflicts.HasSnapshots(), "repair's first snapshot is not an initial, so this is not a hard conflict")
}

func TestFindConflictingIntermediateSnapshots(t *testing.T) {
	// repair anchors on p_2 (base p_1). Target already has a foreign
	// snapshot X that, once time-ordered, sits between p_1 and the chain
	// head — it must surface as a conflicting intermediate.
	now := time.Now()
	t1 := now.Add(time.Hour)
	tX := now.Add(2 * time.Hour)
	t3 := now.Add(3 * time.Hour)

	full := dataset.New("tank", "data")
	p1 := snapshot.New("tank", "data", "p_1")
	p1.CreationTime = &t1
	x := snapshot.New("tank", "data", "X")
	x.CreationTime = &tX
	p3 := snapshot.New("tank", "data", "p_3")
	p3.CreationTime = &t3
	require.NoError(t, full.AddSnapshot(p1))
	require.NoError(t, full.AddSnapshot(x))
	require.NoError(t, full.AddSnapshot(p3))
	full.BuildIncrementalRefs()

	completeTarget := poolListOf(t, full)

	repairDS := dataset.New("tank", "data")
	p2 := snapshot.New("tank", "data", "p_2")
	p2.SetIncrementalBase(p1)
	require.NoError(t, repairDS.AddSnapshot(p2))
	repair := poolListOf(t, repairDS)

	intermediates, err := FindConflictingIntermediateSnapshots(repair, completeTarget, true)
	require.NoError(t, err)

	ds := intermediates.Get("tank").Get("tank/data")
	require.NotNil(t, ds)
	assert.Contains(t, ds.ZfsPaths(), "tank/data@X")
}

func TestFindConflictingIntermediateSnapshotsRequiresSortability(t *testing.T) {
	untimed := dataset.New("tank", "data")
	require.NoError(t, untimed.AddSnapshot(snapshot.New("tank", "data", "p_0")))
	completeTarget := poolListOf(t, untimed)

	repair := poolListOf(t, dsWithSnaps(t, "tank", "data", "p_1"))

	_, err := FindConflictingIntermediateSnapshots(repair, completeTarget, false)
	require.Error(t, err, "missing creation_time with skipSortability=false is an invariant-error")
}
