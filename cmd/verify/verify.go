// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/northvault/zbackup/config"
	"github.com/northvault/zbackup/internal/cliutil"
	"github.com/northvault/zbackup/internal/common"
	"github.com/northvault/zbackup/pkg/orchestrator"
	"github.com/northvault/zbackup/pkg/statusapi"
)

func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute and check the stored digest of every snapshot on every target",
		RunE:  runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.GetConfig()

	targets := cliutil.BuildTargets(cfg)

	results, err := orchestrator.VerifyTargets(ctx, targets, func(r orchestrator.VerifyResult) {
		status := "ok"
		if !r.OK {
			status = "FAILED"
		}
		fmt.Printf("%-6s %s:%s\n", status, r.Host, r.ZfsPath)
	})

	report := &statusapi.Report{
		RunID:     common.UUID7(),
		Kind:      "verify",
		StartedAt: time.Now(),
		Failed:    map[string]string{},
	}
	for _, r := range results {
		if r.OK {
			report.Succeeded = append(report.Succeeded, r.ZfsPath)
			continue
		}
		reason := "digest mismatch"
		if r.Err != nil {
			reason = r.Err.Error()
		}
		report.Failed[r.Host+":"+r.Path+"/"+r.ZfsPath] = reason
	}
	report.FinishedAt = time.Now()
	if saveErr := statusapi.SaveReport(config.GetReportsDir(), report); saveErr != nil {
		fmt.Fprintf(os.Stderr, "failed to persist run report: %v\n", saveErr)
	}

	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		fmt.Fprintf(os.Stderr, "verify found %d failure(s); see report %s\n", len(report.Failed), report.RunID)
		os.Exit(1)
	}
	fmt.Printf("verify complete: %d snapshot(s) OK (run %s)\n", len(report.Succeeded), report.RunID)
	return nil
}
