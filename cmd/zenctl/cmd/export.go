package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	bqexport "github.com/dvloznov/zenmoney-bridge/internal/export/bigquery"
	"github.com/dvloznov/zenmoney-bridge/internal/export/notion"
	"github.com/dvloznov/zenmoney-bridge/internal/logger"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
	"github.com/dvloznov/zenmoney-bridge/internal/zenmoney"
)

var exportDryRun bool

// exportCmd represents the export command group.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger transactions to external systems",
}

var exportBigQueryCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "Export transactions to BigQuery",
	Long: `Export all transactions into the configured BigQuery dataset.
Rows already present in the warehouse are skipped.

Requires BIGQUERY_PROJECT (and optionally BIGQUERY_DATASET).`,
	Run: runExportBigQuery,
}

var exportNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Mirror transactions into a Notion database",
	Long: `Mirror all transactions into the configured Notion database,
archiving pages whose transactions no longer exist.

Requires NOTION_TOKEN and NOTION_TRANSACTIONS_DB.`,
	Run: runExportNotion,
}

func init() {
	exportNotionCmd.Flags().BoolVar(&exportDryRun, "dry-run", false, "log planned changes without writing")
	exportCmd.AddCommand(exportBigQueryCmd)
	exportCmd.AddCommand(exportNotionCmd)
}

// ledgerSnapshot fetches transactions plus the lookup maps needed to
// resolve their ids.
func ledgerSnapshot(ctx context.Context, client *zenmoney.DiffClient) ([]domain.Transaction, *lookup.Maps) {
	accounts, err := client.Accounts(ctx)
	exitOnError(err, "failed to fetch accounts")
	tags, err := client.Tags(ctx)
	exitOnError(err, "failed to fetch tags")
	instruments, err := client.Instruments(ctx)
	exitOnError(err, "failed to fetch instruments")
	txs, err := client.Transactions(ctx)
	exitOnError(err, "failed to fetch transactions")

	return txs, lookup.Build(accounts, tags, instruments)
}

func runExportBigQuery(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg := loadConfig()
	if cfg.Export.BigQueryProject == "" {
		exitOnError(fmt.Errorf("BIGQUERY_PROJECT is not set"), "invalid configuration")
	}

	client := newClient(ctx, cfg)
	txs, maps := ledgerSnapshot(ctx, client)

	exporter, err := bqexport.NewExporter(ctx, cfg.Export.BigQueryProject, cfg.Export.BigQueryDataset, log)
	exitOnError(err, "failed to create exporter")
	defer exporter.Close()

	written, err := exporter.Export(ctx, txs, maps)
	exitOnError(err, "export failed")

	fmt.Printf("Exported %d of %d transactions\n", written, len(txs))
}

func runExportNotion(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg := loadConfig()
	if cfg.Export.NotionToken == "" || cfg.Export.NotionDBID == "" {
		exitOnError(fmt.Errorf("NOTION_TOKEN and NOTION_TRANSACTIONS_DB must be set"), "invalid configuration")
	}

	client := newClient(ctx, cfg)
	txs, maps := ledgerSnapshot(ctx, client)

	notionClient := notion.NewClient(cfg.Export.NotionToken)
	ctx = logger.WithContext(ctx, log)

	err := notion.SyncTransactions(ctx, notionClient, cfg.Export.NotionDBID, txs, maps, exportDryRun)
	exitOnError(err, "notion sync failed")
}
