// Package bigquery exports ledger transactions into a BigQuery dataset for
// analytics. Exports are incremental: rows already present in the warehouse
// are skipped by transaction id.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

const transactionsTable = "transactions"

// Exporter writes transaction rows into <project>.<dataset>.transactions.
type Exporter struct {
	client  *bigquery.Client
	dataset string
	log     zerolog.Logger
}

// NewExporter creates an exporter bound to one project and dataset.
func NewExporter(ctx context.Context, projectID, dataset string, log zerolog.Logger) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: bigquery client: %w", err)
	}
	return &Exporter{client: client, dataset: dataset, log: log}, nil
}

// NewExporterWithClient creates an exporter using the provided client.
func NewExporterWithClient(client *bigquery.Client, dataset string, log zerolog.Logger) *Exporter {
	return &Exporter{client: client, dataset: dataset, log: log}
}

// Close releases the underlying client.
func (e *Exporter) Close() error {
	return e.client.Close()
}

// Export inserts the transactions that are not yet in the warehouse and
// returns how many rows were written.
func (e *Exporter) Export(ctx context.Context, txs []domain.Transaction, maps *lookup.Maps) (int, error) {
	existing, err := e.existingIDs(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for i := range txs {
		if existing[txs[i].ID] {
			continue
		}
		row, err := NewTransactionRow(&txs[i], maps)
		if err != nil {
			return 0, fmt.Errorf("Export: row %s: %w", txs[i].ID, err)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		e.log.Info().Msg("Export: warehouse already up to date")
		return 0, nil
	}

	inserter := e.client.Dataset(e.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("Export: inserting rows: %w", err)
	}

	e.log.Info().Int("rows", len(rows)).Int("skipped", len(txs)-len(rows)).Msg("Transactions exported")
	return len(rows), nil
}

// existingIDs returns the set of transaction ids already exported.
func (e *Exporter) existingIDs(ctx context.Context) (map[string]bool, error) {
	q := e.client.Query(fmt.Sprintf(
		"SELECT DISTINCT transaction_id FROM `%s.%s`",
		e.dataset, transactionsTable,
	))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("existingIDs: query read: %w", err)
	}

	ids := make(map[string]bool)
	for {
		var row struct {
			TransactionID string `bigquery:"transaction_id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("existingIDs: iter next: %w", err)
		}
		ids[row.TransactionID] = true
	}
	return ids, nil
}
