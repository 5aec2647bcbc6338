// Package view builds enriched, human-friendly representations of ledger
// entities, resolving raw ids to titles and currency symbols so API and CLI
// output is readable without extra lookups.
package view

import (
	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// Account is an enriched account for display.
type Account struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Type      string   `json:"account_type"`
	Balance   *float64 `json:"balance,omitempty"`
	Currency  string   `json:"currency"`
	Archive   bool     `json:"archive"`
	InBalance bool     `json:"in_balance"`
}

// NewAccount creates an enriched account view.
func NewAccount(acc *domain.Account, maps *lookup.Maps) Account {
	var currency string
	if acc.Instrument != nil {
		currency = maps.InstrumentSymbol(*acc.Instrument)
	}
	return Account{
		ID:        acc.ID,
		Title:     acc.Title,
		Type:      acc.Type,
		Balance:   acc.Balance,
		Currency:  currency,
		Archive:   acc.Archive,
		InBalance: acc.InBalance,
	}
}

// Transaction is an enriched transaction for display.
type Transaction struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"`
	Income          float64  `json:"income"`
	IncomeAccount   string   `json:"income_account"`
	IncomeCurrency  string   `json:"income_currency"`
	Outcome         float64  `json:"outcome"`
	OutcomeAccount  string   `json:"outcome_account"`
	OutcomeCurrency string   `json:"outcome_currency"`
	Tags            []string `json:"tags"`
	Payee           *string  `json:"payee,omitempty"`
	Comment         *string  `json:"comment,omitempty"`
}

// NewTransaction creates an enriched transaction view.
func NewTransaction(tx *domain.Transaction, maps *lookup.Maps) Transaction {
	tags := make([]string, 0, len(tx.Tags))
	for _, id := range tx.Tags {
		tags = append(tags, maps.TagName(id))
	}
	return Transaction{
		ID:              tx.ID,
		Date:            tx.Date,
		Income:          tx.Income,
		IncomeAccount:   maps.AccountName(tx.IncomeAccount),
		IncomeCurrency:  maps.InstrumentSymbol(tx.IncomeInstrument),
		Outcome:         tx.Outcome,
		OutcomeAccount:  maps.AccountName(tx.OutcomeAccount),
		OutcomeCurrency: maps.InstrumentSymbol(tx.OutcomeInstrument),
		Tags:            tags,
		Payee:           tx.Payee,
		Comment:         tx.Comment,
	}
}

// NewTransactions maps a slice of transactions to views.
func NewTransactions(txs []domain.Transaction, maps *lookup.Maps) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for i := range txs {
		out = append(out, NewTransaction(&txs[i], maps))
	}
	return out
}

// Tag is an enriched category tag for display.
type Tag struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Parent *string `json:"parent,omitempty"`
}

// NewTag creates an enriched tag view, resolving the parent tag name.
func NewTag(tag *domain.Tag, maps *lookup.Maps) Tag {
	var parent *string
	if tag.Parent != nil {
		name := maps.TagName(*tag.Parent)
		parent = &name
	}
	return Tag{ID: tag.ID, Title: tag.Title, Parent: parent}
}

// Merchant is a merchant for display.
type Merchant struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NewMerchant creates a merchant view.
func NewMerchant(m *domain.Merchant) Merchant {
	return Merchant{ID: m.ID, Title: m.Title}
}

// Budget is an enriched monthly budget for display.
type Budget struct {
	Date    string  `json:"date"`
	Tag     *string `json:"tag,omitempty"`
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
}

// NewBudget creates an enriched budget view.
func NewBudget(b *domain.Budget, maps *lookup.Maps) Budget {
	var tag *string
	if b.Tag != nil {
		name := maps.TagName(*b.Tag)
		tag = &name
	}
	return Budget{Date: b.Date, Tag: tag, Income: b.Income, Outcome: b.Outcome}
}

// Reminder is an enriched recurring reminder for display.
type Reminder struct {
	ID             string   `json:"id"`
	Income         float64  `json:"income"`
	IncomeAccount  string   `json:"income_account"`
	Outcome        float64  `json:"outcome"`
	OutcomeAccount string   `json:"outcome_account"`
	Tags           []string `json:"tags"`
	Payee          *string  `json:"payee,omitempty"`
	Comment        *string  `json:"comment,omitempty"`
	StartDate      string   `json:"start_date"`
	EndDate        *string  `json:"end_date,omitempty"`
	Interval       *string  `json:"interval,omitempty"`
}

// NewReminder creates an enriched reminder view.
func NewReminder(r *domain.Reminder, maps *lookup.Maps) Reminder {
	tags := make([]string, 0, len(r.Tags))
	for _, id := range r.Tags {
		tags = append(tags, maps.TagName(id))
	}
	return Reminder{
		ID:             r.ID,
		Income:         r.Income,
		IncomeAccount:  maps.AccountName(r.IncomeAccount),
		Outcome:        r.Outcome,
		OutcomeAccount: maps.AccountName(r.OutcomeAccount),
		Tags:           tags,
		Payee:          r.Payee,
		Comment:        r.Comment,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		Interval:       r.Interval,
	}
}

// Instrument is a currency instrument for display.
type Instrument struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	ShortTitle string  `json:"short_title"`
	Symbol     string  `json:"symbol"`
	Rate       float64 `json:"rate"`
}

// NewInstrument creates an instrument view.
func NewInstrument(i *domain.Instrument) Instrument {
	return Instrument{
		ID:         i.ID,
		Title:      i.Title,
		ShortTitle: i.ShortTitle,
		Symbol:     i.Symbol,
		Rate:       i.Rate,
	}
}

// PrepareResult previews a staged bulk batch before anything is written.
type PrepareResult struct {
	PreparationID       string        `json:"preparation_id"`
	Created             int           `json:"created"`
	Updated             int           `json:"updated"`
	Deleted             int           `json:"deleted"`
	Transactions        []Transaction `json:"transactions"`
	DeletedTransactions []Transaction `json:"deleted_transactions"`
}

// ExecuteResult summarizes an executed bulk batch.
type ExecuteResult struct {
	Created              int           `json:"created"`
	Updated              int           `json:"updated"`
	Deleted              int           `json:"deleted"`
	AffectedTransactions []Transaction `json:"affected_transactions"`
}

// DeletedTransaction reports a single deleted transaction with its last
// known contents.
type DeletedTransaction struct {
	Message     string      `json:"message"`
	Transaction Transaction `json:"transaction"`
}

// Suggestion is a suggested category for a transaction.
type Suggestion struct {
	TagID    string  `json:"tag_id,omitempty"`
	TagTitle string  `json:"tag_title,omitempty"`
	Reason   *string `json:"reason,omitempty"`
}
