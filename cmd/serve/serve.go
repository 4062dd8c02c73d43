// Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2024-2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/northvault/zbackup/config"
	"github.com/northvault/zbackup/internal/constants"
	"github.com/northvault/zbackup/pkg/lifecycle"
	"github.com/northvault/zbackup/pkg/statusapi"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only run-report API (no scheduling, inspection only)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	if err := lifecycle.EnsureSingleInstance(constants.ZBackupPIDFile); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lifecycle.RegisterContextCanceller(cancel)
	go lifecycle.HandleSignals(ctx)

	fmt.Printf("serving run reports on :%d (reports dir: %s)\n", cfg.Server.Port, config.GetReportsDir())
	return statusapi.Start(ctx, cfg.Server.Port, config.GetReportsDir())
}
