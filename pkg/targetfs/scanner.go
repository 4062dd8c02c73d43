// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package targetfs

import (
	"context"
	"strings"

	"github.com/northvault/zbackup/pkg/errors"
	"github.com/northvault/zbackup/pkg/zfs/common"
	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
	"github.com/northvault/zbackup/pkg/zfs/pool"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// Scan walks t's persisted layout — "{pool}/{dataset}/{snapshot}.zstream"
// with a sibling ".zstream.sha256" — and reconstructs the PoolList of
// snapshots actually stored there. A stream is only counted as stored once
// its final digest file exists; an in-flight write (only
// ".zstream.expected_sha256" present) is not yet recoverable and is
// skipped, matching the durability rule in §6.
//
// Incremental base links are rebuilt per dataset with chain order once all
// of a dataset's snapshots are known, since the filesystem layout carries
// no base linkage of its own.
func Scan(ctx context.Context, t Target) (*inventory.PoolList, error) {
	if initialized, err := t.FileExists(ctx, InitializedFile); err != nil {
		return nil, err
	} else if !initialized {
		return nil, errors.New(errors.BackupPlanResolveError, "target is not initialized")
	}

	pools := inventory.New()

	_, poolDirs, err := t.ListDir(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, poolName := range poolDirs {
		if err := common.PoolNameCheck(poolName); err != nil {
			return nil, err
		}
		p := pool.New(poolName)

		_, datasetDirs, err := t.ListDir(ctx, poolName)
		if err != nil {
			return nil, err
		}
		for _, datasetName := range datasetDirs {
			ds := dataset.New(poolName, datasetName)
			if err := common.DatasetNameCheck(ds.ZfsPath()); err != nil {
				return nil, err
			}

			files, _, err := t.ListDir(ctx, poolName+"/"+datasetName)
			if err != nil {
				return nil, err
			}
			for _, name := range streamSnapshotNames(files) {
				s := snapshot.New(poolName, datasetName, name)
				if err := common.SnapshotNameCheck(s.ZfsPath()); err != nil {
					return nil, err
				}
				if err := ds.AddSnapshot(s); err != nil {
					return nil, err
				}
			}

			if ds.HasSnapshots() {
				ds.BuildIncrementalRefs()
				if err := p.AddDataset(ds); err != nil {
					return nil, err
				}
			}
		}

		if p.HasDatasets() {
			if err := pools.AddPool(p); err != nil {
				return nil, err
			}
		}
	}

	return pools, nil
}

// streamSnapshotNames extracts the snapshot names of fully-stored streams
// (those with a landed ".zstream.sha256") from a directory listing.
func streamSnapshotNames(files []string) []string {
	finalized := make(map[string]bool)
	for _, f := range files {
		if strings.HasSuffix(f, FinalDigestSuffix) {
			finalized[strings.TrimSuffix(f, FinalDigestSuffix)] = true
		}
	}
	var names []string
	for _, f := range files {
		if !strings.HasSuffix(f, StreamSuffix) || strings.HasSuffix(f, FinalDigestSuffix) || strings.HasSuffix(f, InFlightSuffix) {
			continue
		}
		base := strings.TrimSuffix(f, StreamSuffix)
		if finalized[base] {
			names = append(names, base)
		}
	}
	return names
}
