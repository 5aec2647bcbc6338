package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// TransactionRow is the analytics schema for one ledger transaction.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	Date civil.Date `bigquery:"date"` // REQUIRED
	Kind string     `bigquery:"kind"` // REQUIRED

	Income          float64 `bigquery:"income"`
	IncomeAccount   string  `bigquery:"income_account"`
	IncomeCurrency  string  `bigquery:"income_currency"`
	Outcome         float64 `bigquery:"outcome"`
	OutcomeAccount  string  `bigquery:"outcome_account"`
	OutcomeCurrency string  `bigquery:"outcome_currency"`

	Tags []string `bigquery:"tags"` // REPEATED STRING

	Payee   bigquery.NullString `bigquery:"payee"`   // NULLABLE
	Comment bigquery.NullString `bigquery:"comment"` // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"`
	ChangedTS time.Time `bigquery:"changed_ts"`
}

// NewTransactionRow flattens a ledger transaction into an analytics row,
// resolving ids to names so the warehouse is queryable without joins.
func NewTransactionRow(tx *domain.Transaction, maps *lookup.Maps) (*TransactionRow, error) {
	date, err := civil.ParseDate(tx.Date)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(tx.Tags))
	for _, id := range tx.Tags {
		tags = append(tags, maps.TagName(id))
	}

	row := &TransactionRow{
		TransactionID:   tx.ID,
		Date:            date,
		Kind:            string(domain.Classify(tx)),
		Income:          tx.Income,
		IncomeAccount:   maps.AccountName(tx.IncomeAccount),
		IncomeCurrency:  maps.InstrumentSymbol(tx.IncomeInstrument),
		Outcome:         tx.Outcome,
		OutcomeAccount:  maps.AccountName(tx.OutcomeAccount),
		OutcomeCurrency: maps.InstrumentSymbol(tx.OutcomeInstrument),
		Tags:            tags,
		CreatedTS:       time.Unix(tx.Created, 0).UTC(),
		ChangedTS:       time.Unix(tx.Changed, 0).UTC(),
	}
	if tx.Payee != nil {
		row.Payee = bigquery.NullString{StringVal: *tx.Payee, Valid: true}
	}
	if tx.Comment != nil {
		row.Comment = bigquery.NullString{StringVal: *tx.Comment, Valid: true}
	}
	return row, nil
}
