package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var activeOnly bool

// accountsCmd represents the accounts command.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List ledger accounts",
	Run:   runAccounts,
}

func init() {
	accountsCmd.Flags().BoolVar(&activeOnly, "active", false, "exclude archived accounts")
}

func runAccounts(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg := loadConfig()
	svc := newService(ctx, cfg)

	accounts, err := svc.ListAccounts(ctx, activeOnly)
	exitOnError(err, "failed to list accounts")

	for _, acc := range accounts {
		balance := "-"
		if acc.Balance != nil {
			balance = fmt.Sprintf("%.2f %s", *acc.Balance, acc.Currency)
		}
		marker := ""
		if acc.Archive {
			marker = " (archived)"
		}
		fmt.Printf("%-36s  %-20s  %-10s  %s%s\n", acc.ID, acc.Title, acc.Type, balance, marker)
	}
	fmt.Printf("\n%d accounts\n", len(accounts))
}
