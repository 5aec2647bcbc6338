// Package cmd provides CLI commands for zenctl.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/zenmoney-bridge/internal/bridge"
	"github.com/dvloznov/zenmoney-bridge/internal/config"
	"github.com/dvloznov/zenmoney-bridge/internal/logger"
	"github.com/dvloznov/zenmoney-bridge/internal/preparations/inmemory"
	"github.com/dvloznov/zenmoney-bridge/internal/zenmoney"
)

var (
	cfgFile string
	debug   bool
	log     zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zenctl",
	Short: "Work with a ZenMoney ledger from the command line",
	Long: `zenctl talks to the ZenMoney sync API and exposes the ledger for
inspection, export, and backup.

It supports:
- Listing accounts, transactions, tags, and budgets
- Exporting transactions to BigQuery and Notion
- Backing up the full ledger state to Google Cloud Storage

Example:
  zenctl accounts --active
  zenctl transactions --from 2024-01-01 --to 2024-01-31
  zenctl export notion --dry-run`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.New(debug)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(budgetsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
}

// loadConfig loads and validates the configuration.
func loadConfig() *config.Config {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate(), "invalid configuration")
	return cfg
}

// newClient builds a synced ledger client.
func newClient(ctx context.Context, cfg *config.Config) *zenmoney.DiffClient {
	client := zenmoney.NewDiffClient(ctx, cfg.ZenMoney.APIURL, cfg.ZenMoney.Token)
	log.Info().Msg("Syncing ledger")
	exitOnError(client.FullSync(ctx), "sync failed")
	return client
}

// newService builds a synced bridge service.
func newService(ctx context.Context, cfg *config.Config) *bridge.Service {
	return bridge.New(newClient(ctx, cfg), inmemory.NewStore(), log)
}

// exitOnError logs the error and exits.
func exitOnError(err error, msg string) {
	if err != nil {
		log.Error().Err(err).Msg(msg)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
