package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// tagsCmd represents the tags command.
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List category tags",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc := newService(ctx, cfg)

		tags, err := svc.ListTags(ctx)
		exitOnError(err, "failed to list tags")

		for _, tag := range tags {
			if tag.Parent != nil {
				fmt.Printf("%-36s  %s / %s\n", tag.ID, *tag.Parent, tag.Title)
			} else {
				fmt.Printf("%-36s  %s\n", tag.ID, tag.Title)
			}
		}
		fmt.Printf("\n%d tags\n", len(tags))
	},
}

var budgetMonth string

// budgetsCmd represents the budgets command.
var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "List monthly budgets",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		svc := newService(ctx, cfg)

		budgets, err := svc.ListBudgets(ctx, budgetMonth)
		exitOnError(err, "failed to list budgets")

		for _, b := range budgets {
			tag := "(total)"
			if b.Tag != nil {
				tag = *b.Tag
			}
			fmt.Printf("%s  %-20s  income %.2f  outcome %.2f\n", b.Date, tag, b.Income, b.Outcome)
		}
		fmt.Printf("\n%d budgets\n", len(budgets))
	},
}

func init() {
	budgetsCmd.Flags().StringVar(&budgetMonth, "month", "", "filter to one month (YYYY-MM)")
}
