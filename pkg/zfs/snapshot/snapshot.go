// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot models a single point-in-time image of a dataset and the
// naming scheme the backup planner uses to recognize the snapshots it
// manages.
package snapshot

import (
	"fmt"
	"time"

	"github.com/northvault/zbackup/pkg/errors"
)

// Sep is the fixed separator between a managed snapshot's prefix and its
// sequence suffix.
const Sep = "_"

// InitialToken is the literal suffix of a chain's root snapshot.
const InitialToken = "initial"

// Snapshot is an immutable identity (pool, dataset, name) plus a mutable,
// non-owning link to the snapshot it can be reconstructed from.
//
// incrementalBase is intentionally a weak reference: removing a snapshot
// from a Dataset does not rewrite other snapshots' bases. Callers that
// structurally change a Dataset and then need truthful base links must
// rebuild them (see dataset.Dataset.BuildIncrementalRefs).
type Snapshot struct {
	PoolName     string
	DatasetName  string
	SnapshotName string

	// CreationTime is optional. When present on every snapshot of a
	// dataset it is used as the chain-order sort key.
	CreationTime *time.Time

	incrementalBase *Snapshot
}

// New constructs a Snapshot identity with no incremental base.
func New(pool, dataset, name string) *Snapshot {
	return &Snapshot{PoolName: pool, DatasetName: dataset, SnapshotName: name}
}

// DatasetPath returns "{pool}/{dataset}".
func (s *Snapshot) DatasetPath() string {
	return s.PoolName + "/" + s.DatasetName
}

// ZfsPath returns the canonical "{pool}/{dataset}@{name}" identity string.
// Two snapshots are equal iff their ZfsPath values are equal.
func (s *Snapshot) ZfsPath() string {
	return s.DatasetPath() + "@" + s.SnapshotName
}

// Equal compares two snapshots by ZfsPath only, per the spec's identity rule.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.ZfsPath() == o.ZfsPath()
}

// HasIncrementalBase reports whether this snapshot carries a base link.
func (s *Snapshot) HasIncrementalBase() bool {
	return s.incrementalBase != nil
}

// IncrementalBase returns the snapshot this one can be reconstructed from,
// or nil if this snapshot is a chain root (or unmanaged).
func (s *Snapshot) IncrementalBase() *Snapshot {
	return s.incrementalBase
}

// SetIncrementalBase assigns an explicit base. Application code may call
// this directly (e.g. when constructing a "next" snapshot); within a
// Dataset, the chain builder is the only component that derives this link
// from naming evidence.
func (s *Snapshot) SetIncrementalBase(base *Snapshot) {
	s.incrementalBase = base
}

// Copy returns a shallow value copy of the identity and creation time.
// Per spec §4.3, copies and views do not preserve the incremental base —
// the base graph is rebuilt per-container by the chain builder or by
// explicit rewiring during View().
func (s *Snapshot) Copy() *Snapshot {
	if s == nil {
		return nil
	}
	cp := &Snapshot{
		PoolName:     s.PoolName,
		DatasetName:  s.DatasetName,
		SnapshotName: s.SnapshotName,
	}
	if s.CreationTime != nil {
		t := *s.CreationTime
		cp.CreationTime = &t
	}
	return cp
}

func (s *Snapshot) String() string {
	return s.ZfsPath()
}

// ParsedName is the decoded form of a managed snapshot name:
// "{Prefix}{Sep}{suffix}" where suffix is either the literal "initial"
// (Index 0) or a non-negative decimal integer.
type ParsedName struct {
	Prefix string
	Index  int
}

// ParseBackupSnapshot decodes a managed snapshot name. It fails with a
// parse-error when Sep is absent or the suffix is neither InitialToken nor
// a base-10 non-negative integer. Unmanaged (foreign) names are expected to
// fail this parse; callers treat that as "does not participate in chains",
// not as a fatal condition.
func ParseBackupSnapshot(name string) (ParsedName, error) {
	idx := lastIndexOfSep(name)
	if idx < 0 {
		return ParsedName{}, errors.New(errors.BackupPlanParseError,
			fmt.Sprintf("snapshot name %q has no %q separator", name, Sep))
	}
	prefix := name[:idx]
	suffix := name[idx+len(Sep):]
	if suffix == InitialToken {
		return ParsedName{Prefix: prefix, Index: 0}, nil
	}
	n, err := parseDecimal(suffix)
	if err != nil {
		return ParsedName{}, errors.New(errors.BackupPlanParseError,
			fmt.Sprintf("snapshot name %q has a non-decimal suffix %q", name, suffix))
	}
	if n < 0 {
		return ParsedName{}, errors.New(errors.BackupPlanParseError,
			fmt.Sprintf("snapshot name %q has a negative index", name))
	}
	return ParsedName{Prefix: prefix, Index: n}, nil
}

// FormatBackupSnapshot is the inverse of ParseBackupSnapshot: index 0
// formats as InitialToken, every other index as its decimal representation
// with no leading zeros.
func FormatBackupSnapshot(prefix string, index int) string {
	if index == 0 {
		return prefix + Sep + InitialToken
	}
	return fmt.Sprintf("%s%s%d", prefix, Sep, index)
}

// lastIndexOfSep finds the last occurrence of Sep, matching the managed
// scheme's "{prefix}{Sep}{suffix}" shape even when the prefix itself
// contains underscores.
func lastIndexOfSep(name string) int {
	for i := len(name) - len(Sep); i >= 0; i-- {
		if name[i:i+len(Sep)] == Sep {
			return i
		}
	}
	return -1
}

func parseDecimal(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not decimal")
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
