package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/zenmoney-bridge/internal/zenmoney"
)

var (
	txDateFrom string
	txDateTo   string
	txAccount  string
	txTag      string
	txPayee    string
	txLimit    int
)

// transactionsCmd represents the transactions command.
var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List ledger transactions",
	Long: `List transactions, newest first, optionally filtered.

Example:
  zenctl transactions --from 2024-01-01 --to 2024-01-31
  zenctl transactions --account <account-id> --limit 20`,
	Run: runTransactions,
}

func init() {
	transactionsCmd.Flags().StringVar(&txDateFrom, "from", "", "start date (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&txDateTo, "to", "", "end date (YYYY-MM-DD)")
	transactionsCmd.Flags().StringVar(&txAccount, "account", "", "filter by account id")
	transactionsCmd.Flags().StringVar(&txTag, "tag", "", "filter by tag id")
	transactionsCmd.Flags().StringVar(&txPayee, "payee", "", "filter by payee substring")
	transactionsCmd.Flags().IntVar(&txLimit, "limit", 50, "maximum number of transactions")
}

func runTransactions(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg := loadConfig()
	svc := newService(ctx, cfg)

	filter := zenmoney.TransactionFilter{
		DateFrom:  txDateFrom,
		DateTo:    txDateTo,
		AccountID: txAccount,
		TagID:     txTag,
		Payee:     txPayee,
		Limit:     txLimit,
	}

	txs, err := svc.ListTransactions(ctx, filter)
	exitOnError(err, "failed to list transactions")

	for _, tx := range txs {
		payee := ""
		if tx.Payee != nil {
			payee = *tx.Payee
		}
		switch {
		case tx.Income > 0 && tx.Outcome > 0:
			fmt.Printf("%s  %s -> %s  %.2f %s -> %.2f %s  %s\n",
				tx.Date, tx.OutcomeAccount, tx.IncomeAccount,
				tx.Outcome, tx.OutcomeCurrency, tx.Income, tx.IncomeCurrency, payee)
		case tx.Income > 0:
			fmt.Printf("%s  %-20s  +%.2f %s  %s\n",
				tx.Date, tx.IncomeAccount, tx.Income, tx.IncomeCurrency, payee)
		default:
			fmt.Printf("%s  %-20s  -%.2f %s  %s\n",
				tx.Date, tx.OutcomeAccount, tx.Outcome, tx.OutcomeCurrency, payee)
		}
	}
	fmt.Printf("\n%d transactions\n", len(txs))
}
