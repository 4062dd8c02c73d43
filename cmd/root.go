package cmd

import (
	"github.com/spf13/cobra"
	"github.com/northvault/zbackup/cmd/backup"
	"github.com/northvault/zbackup/cmd/config"
	"github.com/northvault/zbackup/cmd/plan"
	"github.com/northvault/zbackup/cmd/restore"
	"github.com/northvault/zbackup/cmd/serve"
	"github.com/northvault/zbackup/cmd/verify"
	"github.com/northvault/zbackup/cmd/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zbackup",
		Short: "zbackup: snapshot backup-plan reasoning engine for ZFS-like pools",
	}

	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(config.NewConfigCmd())
	rootCmd.AddCommand(plan.NewPlanCmd())
	rootCmd.AddCommand(backup.NewBackupCmd())
	rootCmd.AddCommand(restore.NewRestoreCmd())
	rootCmd.AddCommand(verify.NewVerifyCmd())
	rootCmd.AddCommand(serve.NewServeCmd())

	return rootCmd
}
