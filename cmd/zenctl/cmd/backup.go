package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/zenmoney-bridge/internal/backup"
)

// backupCmd represents the backup command.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the full ledger state to Google Cloud Storage",
	Long: `Download the full ledger and upload it as a single JSON snapshot.

Requires BACKUP_BUCKET.`,
	Run: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg := loadConfig()
	if cfg.Backup.Bucket == "" {
		exitOnError(fmt.Errorf("BACKUP_BUCKET is not set"), "invalid configuration")
	}

	client := newClient(ctx, cfg)

	snap := &backup.Snapshot{TakenAt: time.Now()}
	var err error
	snap.Accounts, err = client.Accounts(ctx)
	exitOnError(err, "failed to fetch accounts")
	snap.Tags, err = client.Tags(ctx)
	exitOnError(err, "failed to fetch tags")
	snap.Instruments, err = client.Instruments(ctx)
	exitOnError(err, "failed to fetch instruments")
	snap.Merchants, err = client.Merchants(ctx)
	exitOnError(err, "failed to fetch merchants")
	snap.Budgets, err = client.Budgets(ctx)
	exitOnError(err, "failed to fetch budgets")
	snap.Reminders, err = client.Reminders(ctx)
	exitOnError(err, "failed to fetch reminders")
	snap.Transactions, err = client.Transactions(ctx)
	exitOnError(err, "failed to fetch transactions")

	uri, err := backup.Upload(ctx, cfg.Backup.Bucket, snap)
	exitOnError(err, "backup upload failed")

	fmt.Printf("Backup written to %s (%d transactions)\n", uri, len(snap.Transactions))
}
