// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package restore

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
	restorePrefix string
	force         bool
)

func NewRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Receive the latest recoverable snapshots from configured targets",
		RunE:  runRestore,
	}

	cmd.Flags().StringVar(&restorePrefix, "prefix", "", "pool name prefix for the restored datasets (alternate-root restore)")
	cmd.Flags().BoolVar(&force, "force", false, "proceed even if a destination pool/dataset already diverges")
	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.GetConfig()

	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "restore")
	if err != nil {
		return err
	}

	vm := cliutil.BuildVolumeManager(cfg)
	o := orchestrator.New(vm, l)

	local, err := o.ScanSource(ctx, nil)
	if err != nil {
		return fmt.Errorf("scanning local pools: %w", err)
	}

	targets := cliutil.BuildTargets(cfg)
	remoteSources := make(map[inventory.HostPath]*inventory.PoolList, len(targets))
	for hp, t := range targets {
		pools, err := targetfs.Scan(ctx, t)
		if err != nil {
			l.Warn("skipping unreadable target", "host", hp.Host, "path", hp.Path, "err", err)
			continue
		}
		remoteSources[hp] = pools
	}

	res, runErr := o.PlanAndRunRestore(ctx, remoteSources, targets, local, restorePrefix, force)

	report := &statusapi.Report{
		RunID:     common.UUID7(),
		Kind:      "restore",
		StartedAt: time.Now(),
		Failed:    map[string]string{},
	}
	if res != nil {
		report.Succeeded = res.Received
		for zfsPath, failErr := range res.Failed {
			report.Failed[zfsPath] = failErr.Error()
		}
	}
	report.FinishedAt = time.Now()
	if err := statusapi.SaveReport(config.GetReportsDir(), report); err != nil {
		l.Warn("failed to persist run report", "err", err)
	}

	if runErr != nil {
		return runErr
	}
	if len(report.Failed) > 0 {
		fmt.Fprintf(os.Stderr, "restore completed with %d failure(s); see report %s\n", len(report.Failed), report.RunID)
		os.Exit(1)
	}
	fmt.Printf("restore complete: %d snapshot(s) received (run %s)\n", len(report.Succeeded), report.RunID)
	return nil
}
