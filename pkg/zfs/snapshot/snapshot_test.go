// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackupSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ParsedName
		wantErr bool
	}{
		{name: "initial", input: "nightly_initial", want: ParsedName{Prefix: "nightly", Index: 0}},
		{name: "decimal", input: "nightly_12", want: ParsedName{Prefix: "nightly", Index: 12}},
		{name: "zero_explicit", input: "nightly_0", want: ParsedName{Prefix: "nightly", Index: 0}},
		{name: "prefix_with_underscore", input: "weekly_full_3", want: ParsedName{Prefix: "weekly_full", Index: 3}},
		{name: "no_separator", input: "foobar", wantErr: true},
		{name: "non_decimal_suffix", input: "foo_bar", wantErr: true},
		{name: "empty_prefix", input: "_3", wantErr: true},
		{name: "empty_suffix", input: "foo_", wantErr: true},
		{name: "leading_underscore_only", input: "_bar", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackupSnapshot(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatBackupSnapshot(t *testing.T) {
	assert.Equal(t, "nightly_initial", FormatBackupSnapshot("nightly", 0))
	assert.Equal(t, "nightly_1", FormatBackupSnapshot("nightly", 1))
	assert.Equal(t, "nightly_42", FormatBackupSnapshot("nightly", 42))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, idx := range []int{0, 1, 2, 17, 1000} {
		name := FormatBackupSnapshot("p", idx)
		parsed, err := ParseBackupSnapshot(name)
		require.NoError(t, err)
		assert.Equal(t, idx, parsed.Index)
		assert.Equal(t, "p", parsed.Prefix)
	}
}

func TestZfsPathAndEqual(t *testing.T) {
	s1 := New("tank", "data", "p_initial")
	s2 := New("tank", "data", "p_initial")
	s3 := New("tank", "data", "p_1")

	assert.Equal(t, "tank/data@p_initial", s1.ZfsPath())
	assert.True(t, s1.Equal(s2))
	assert.False(t, s1.Equal(s3))
}

func TestSnapshotCopyIsIndependent(t *testing.T) {
	base := New("tank", "data", "p_initial")
	s := New("tank", "data", "p_1")
	s.SetIncrementalBase(base)

	cp := s.Copy()
	assert.True(t, cp.Equal(s))
	assert.False(t, cp.HasIncrementalBase(), "Copy() does not carry the base link forward")

	cp.SnapshotName = "mutated"
	assert.Equal(t, "p_1", s.SnapshotName, "mutating the copy must not affect the original")
}

func TestSortChainOrderByCreationTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := now.Add(time.Hour)
	t3 := now.Add(2 * time.Hour)

	a := New("tank", "data", "a_initial")
	a.CreationTime = &t2
	b := New("tank", "data", "b_initial")
	b.CreationTime = &now
	c := New("tank", "data", "a_1")
	c.CreationTime = &t3

	got := SortChainOrder([]*Snapshot{a, b, c})
	require.Len(t, got, 3)
	assert.Equal(t, "tank/data@b_initial", got[0].ZfsPath())
	assert.Equal(t, "tank/data@a_initial", got[1].ZfsPath())
	assert.Equal(t, "tank/data@a_1", got[2].ZfsPath())
}

func TestSortChainOrderWithoutCreationTime(t *testing.T) {
	aInit := New("tank", "data", "a_initial")
	bInit := New("tank", "data", "b_initial")
	a1 := New("tank", "data", "a_1")
	foreign := New("tank", "data", "foo_bar")

	got := SortChainOrder([]*Snapshot{a1, foreign, bInit, aInit})
	require.Len(t, got, 4)

	// initials first, lexicographic by ZfsPath, then the rest lexicographic.
	assert.Equal(t, "tank/data@a_initial", got[0].ZfsPath())
	assert.Equal(t, "tank/data@b_initial", got[1].ZfsPath())
	assert.Equal(t, "tank/data@a_1", got[2].ZfsPath())
	assert.Equal(t, "tank/data@foo_bar", got[3].ZfsPath())
}

func TestSortChainOrderMixedTimedUntimedFallsBackToLexical(t *testing.T) {
	now := time.Now()
	timed := New("tank", "data", "a_1")
	timed.CreationTime = &now
	untimed := New("tank", "data", "a_initial")

	got := SortChainOrder([]*Snapshot{timed, untimed})
	// Not every snapshot carries a CreationTime, so the lexical/initial-first
	// fallback applies even though one snapshot has a timestamp.
	assert.Equal(t, "tank/data@a_initial", got[0].ZfsPath())
	assert.Equal(t, "tank/data@a_1", got[1].ZfsPath())
}
