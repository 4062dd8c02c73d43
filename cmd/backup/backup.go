// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"
	"github.com/northvault/zbackup/config"
	"github.com/northvault/zbackup/internal/cliutil"
	"github.com/northvault/zbackup/internal/common"
	"github.com/northvault/zbackup/pkg/orchestrator"
	"github.com/northvault/zbackup/pkg/statusapi"
	"github.com/northvault/zbackup/pkg/targetfs"
	"github.com/northvault/zbackup/pkg/zfs/inventory"
)

var (
	targetName      string
	incrementalOnly bool
	force           bool
)

func NewBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Send the next backup and any repairable snapshots to a target",
		RunE:  runBackup,
	}

	cmd.Flags().StringVar(&targetName, "target", "", "name of the configured target to back up to (default: all)")
	cmd.Flags().BoolVar(&incrementalOnly, "incremental-only", false, "skip repair candidates that would require a full resend")
	cmd.Flags().BoolVar(&force, "force", false, "send a repair set even when it has conflicting intermediate snapshots on the target")
	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.GetConfig()

	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "backup")
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
	selected, err := selectTargets(cfg, targets)
	if err != nil {
		return err
	}

	report := &statusapi.Report{
		RunID:     common.UUID7(),
		Kind:      "backup",
		StartedAt: time.Now(),
		Failed:    map[string]string{},
	}

	existing := map[inventory.HostPath]*inventory.PoolList{}
	for hp, t := range selected {
		pl, err := targetfs.Scan(ctx, t)
		if err != nil {
			l.Warn("target scan failed, treating as empty", "host", hp.Host, "path", hp.Path, "err", err)
			pl = inventory.New()
		}
		existing[hp] = pl
	}

	results, runErr := o.PlanAndRunBackup(ctx, source, existing, selected, cfg.Source.SnapshotPrefix, incrementalOnly, force)
	for hp, res := range results {
		if res == nil {
			continue
		}
		report.Succeeded = append(report.Succeeded, res.Sent...)
		if res.Conflicts != nil && res.Conflicts.HasSnapshots() && !force {
			report.Failed[hp.Host+":"+hp.Path] = "repair set has conflicting intermediate snapshots, skipped (retry with --force)"
		}
		for zfsPath, sendErr := range res.Failed {
			report.Failed[hp.Host+":"+hp.Path+"/"+zfsPath] = sendErr.Error()
		}
	}
	if runErr != nil {
		l.Error("backup run failed", "err", runErr)
	}

	report.FinishedAt = time.Now()
	if err := statusapi.SaveReport(config.GetReportsDir(), report); err != nil {
		l.Warn("failed to persist run report", "err", err)
	}

	if len(report.Failed) > 0 {
		fmt.Fprintf(os.Stderr, "backup completed with %d failure(s); see report %s\n", len(report.Failed), report.RunID)
		os.Exit(1)
	}
	fmt.Printf("backup complete: %d snapshot(s) sent (run %s)\n", len(report.Succeeded), report.RunID)
	return nil
}

// selectTargets narrows the full configured target set down to the one
// named by --target, or returns it unchanged when --target is empty.
func selectTargets(cfg *config.Config, targets map[inventory.HostPath]targetfs.Target) (map[inventory.HostPath]targetfs.Target, error) {
	if targetName == "" {
		return targets, nil
	}
	for _, t := range cfg.Targets {
		if t.Name == targetName {
			hp := inventory.HostPath{Host: t.Host, Path: t.Path}
			return map[inventory.HostPath]targetfs.Target{hp: targets[hp]}, nil
		}
	}
	return nil, fmt.Errorf("no configured target named %q", targetName)
}
