// Package notion mirrors ledger transactions into a Notion database. The
// Transaction ID title property tracks which ledger record each page
// represents, which makes the sync idempotent and lets it archive pages
// whose transactions no longer exist.
package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/logger"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// SyncTransactions mirrors the given transactions into the Notion database:
// 1. Queries all existing Notion pages
// 2. Archives stale pages (not in the current transaction set)
// 3. Creates pages for transactions Notion does not have yet
// Individual page failures are logged and skipped, not fatal.
func SyncTransactions(ctx context.Context, client Service, databaseID string, txs []domain.Transaction, maps *lookup.Maps, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Int("transaction_count", len(txs)).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	validIDs := make(map[string]bool, len(txs))
	for i := range txs {
		validIDs[txs[i].ID] = true
	}

	pages, err := queryAllPages(ctx, client, databaseID)
	if err != nil {
		return fmt.Errorf("SyncTransactions: %w", err)
	}

	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	existingIDs := make(map[string]bool)
	for _, page := range pages {
		if txID := extractTransactionID(page); txID != "" {
			existingIDs[txID] = true
		}
	}

	// Archive stale pages: no Transaction ID, or no longer in the ledger.
	var deleted int
	for _, page := range pages {
		txID := extractTransactionID(page)
		if txID != "" && validIDs[txID] {
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", txID).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			deleted++
			continue
		}

		if err := client.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", txID).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("Archived stale Notion pages")
	}

	var created, skipped int
	for i := range txs {
		tx := &txs[i]

		if existingIDs[tx.ID] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", tx.ID).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		props := TransactionToProperties(tx, maps)
		page, err := client.CreatePage(ctx, databaseID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", tx.ID).
				Msg("Failed to create Notion page")
			continue
		}

		log.Info().
			Str("transaction_id", tx.ID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(txs)).
		Msg("Transaction sync completed")

	return nil
}

// queryAllPages queries all pages from a Notion database, handling
// pagination automatically.
func queryAllPages(ctx context.Context, client Service, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractTransactionID extracts the transaction ID from a Notion page's
// title property. Returns empty string if not found.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties["Transaction ID"]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
