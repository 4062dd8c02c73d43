// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package plan implements "zbackup plan": a read-only dry run that prints
// what "zbackup backup" would send, without touching any target.
package plan

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/northvault/zbackup/config"
	"github.com/northvault/zbackup/internal/cliutil"
	"github.com/northvault/zbackup/pkg/backupplan"
	"github.com/northvault/zbackup/pkg/orchestrator"
	"github.com/northvault/zbackup/pkg/targetfs"
	"github.com/northvault/zbackup/pkg/zfs/dataset"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
)

var incrementalOnly bool

func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what the next backup run would send, without sending it",
		RunE:  runPlan,
	}
	cmd.Flags().BoolVar(&incrementalOnly, "incremental-only", false, "skip repair candidates that would require a full resend")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.GetConfig()

	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "plan")
	if err != nil {
		return err
	}

	vm := cliutil.BuildVolumeManager(cfg)
	o := orchestrator.New(vm, l)

	source, err := o.ScanSource(ctx, cfg.Source.Pools)
	if err != nil {
		return fmt.Errorf("scanning source pools: %w", err)
	}

	targets := cliutil.BuildTargets(cfg)

	planned := map[inventory.HostPath]*inventory.PoolList{}
	repairs := map[inventory.HostPath]*inventory.PoolList{}
	for hp, t := range targets {
		existing, err := targetfs.Scan(ctx, t)
		if err != nil {
			existing = inventory.New()
		}

		repair := backupplan.FindRepairableSnapshots(source, existing, incrementalOnly)
		// skipSortability: true — a target scan never reconstructs
		// CreationTime, only snapshot names.
		conflicts, err := backupplan.FindConflictingIntermediateSnapshots(repair, existing, true)
		if err != nil {
			return fmt.Errorf("checking %s:%s for conflicts: %w", hp.Host, hp.Path, err)
		}
		if conflicts.HasSnapshots() {
			fmt.Printf("target %s:%s: WARNING conflicting intermediate snapshots present, backup would need --force\n", hp.Host, hp.Path)
		}

		next := backupplan.MakeNextBackupView(source, cfg.Source.SnapshotPrefix, repair)
		repairs[hp] = repair
		planned[hp] = repair.Merge(next)
	}

	for host, groups := range inventory.GroupTargetPathsByHost(planned) {
		for _, g := range groups {
			fmt.Printf("host %s, targets %v (single shared stream):\n", host, g.Paths)
			if !g.Pools.HasSnapshots() {
				fmt.Println("  nothing to send")
				continue
			}

			repair := repairs[inventory.HostPath{Host: host, Path: g.Paths[0]}]
			for _, p := range g.Pools.Pools() {
				repairPool := repair.Get(p.Name)
				for _, ds := range p.Datasets() {
					var repairDS *dataset.Dataset
					if repairPool != nil {
						repairDS = repairPool.Get(ds.ZfsPath())
					}
					for _, s := range ds.Snapshots() {
						kind := "next"
						if repairDS != nil && repairDS.Get(s.ZfsPath()) != nil {
							kind = "repair"
						}
						fmt.Printf("  %-7s %s\n", kind, s.ZfsPath())
					}
				}
			}
		}
	}
	return nil
}
