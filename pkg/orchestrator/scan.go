// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator is the façade that wires the pure planner
// (pkg/backupplan) to the volume-manager command layer
// (pkg/zfs/command) and the target filesystem layer (pkg/targetfs): it
// scans live state into the entity model, asks the planner for an
// operation list, and executes that list against real pools and targets.
package orchestrator

import (
	"context"

	"github.com/stratastor/logger"
	"github.com/northvault/zbackup/pkg/zfs/command"
	"github.com/northvault/zbackup/pkg/zfs/common"
	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
	"github.com/northvault/zbackup/pkg/zfs/pool"
	"github.com/northvault/zbackup/pkg/zfs/snapshot"
)

// Orchestrator binds a volume manager to the planner and target layers.
type Orchestrator struct {
	VM  *command.VolumeManager
	Log logger.Logger
}

// New constructs an Orchestrator.
func New(vm *command.VolumeManager, l logger.Logger) *Orchestrator {
	return &Orchestrator{VM: vm, Log: l}
}

// ScanSource builds the current PoolList of the local volume manager,
// restricted to poolFilter when non-empty.
func (o *Orchestrator) ScanSource(ctx context.Context, poolFilter []string) (*inventory.PoolList, error) {
	names, err := o.VM.ListPools(ctx)
	if err != nil {
		return nil, err
	}

	allowed := map[string]bool{}
	for _, n := range poolFilter {
		allowed[n] = true
	}

	out := inventory.New()
	for _, poolName := range names {
		if len(allowed) > 0 && !allowed[poolName] {
			continue
		}
		if err := common.PoolNameCheck(poolName); err != nil {
			return nil, err
		}

		p := pool.New(poolName)
		datasetNames, err := o.VM.ListDatasets(ctx, poolName)
		if err != nil {
			return nil, err
		}

		for _, dsName := range datasetNames {
			ds := dataset.New(poolName, dsName)
			if err := common.DatasetNameCheck(ds.ZfsPath()); err != nil {
				return nil, err
			}
			snapNames, err := o.VM.ListSnapshots(ctx, ds.ZfsPath())
			if err != nil {
				return nil, err
			}
			for _, snapName := range snapNames {
				s := snapshot.New(poolName, dsName, snapName)
				if err := common.SnapshotNameCheck(s.ZfsPath()); err != nil {
					return nil, err
				}
				if err := ds.AddSnapshot(s); err != nil {
					return nil, err
				}
			}
			ds.BuildIncrementalRefs()
			if ds.HasSnapshots() {
				if err := p.AddDataset(ds); err != nil {
					return nil, err
				}
			}
		}

		if p.HasDatasets() {
			if err := out.AddPool(p); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
