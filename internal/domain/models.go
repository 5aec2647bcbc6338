// Package domain holds the ZenMoney entity model shared by the whole bridge.
// Field names and JSON tags follow the ZenMoney v8 wire format; timestamps
// are unix seconds, dates are "YYYY-MM-DD" strings.
package domain

// Account is a financial account (cash, card, loan, ...) owned by the user.
type Account struct {
	ID         string   `json:"id"`
	Changed    int64    `json:"changed"`
	User       int      `json:"user"`
	Instrument *int     `json:"instrument"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Balance    *float64 `json:"balance"`
	InBalance  bool     `json:"inBalance"`
	Archive    bool     `json:"archive"`
}

// Tag is a transaction category. Tags may be nested one level via Parent.
type Tag struct {
	ID          string  `json:"id"`
	Changed     int64   `json:"changed"`
	User        int     `json:"user"`
	Title       string  `json:"title"`
	Parent      *string `json:"parent"`
	ShowIncome  bool    `json:"showIncome"`
	ShowOutcome bool    `json:"showOutcome"`
}

// Instrument is a currency with a display symbol and an exchange rate
// relative to the user's main currency.
type Instrument struct {
	ID         int     `json:"id"`
	Changed    int64   `json:"changed"`
	Title      string  `json:"title"`
	ShortTitle string  `json:"shortTitle"`
	Symbol     string  `json:"symbol"`
	Rate       float64 `json:"rate"`
}

// Merchant is a named counterparty referenced by transactions.
type Merchant struct {
	ID      string `json:"id"`
	Changed int64  `json:"changed"`
	User    int    `json:"user"`
	Title   string `json:"title"`
}

// Budget is a monthly income/outcome target, optionally scoped to a tag.
type Budget struct {
	Changed int64   `json:"changed"`
	User    int     `json:"user"`
	Tag     *string `json:"tag"`
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
}

// Reminder describes a recurring planned transaction.
type Reminder struct {
	ID             string   `json:"id"`
	Changed        int64    `json:"changed"`
	User           int      `json:"user"`
	Income         float64  `json:"income"`
	IncomeAccount  string   `json:"incomeAccount"`
	Outcome        float64  `json:"outcome"`
	OutcomeAccount string   `json:"outcomeAccount"`
	Tags           []string `json:"tag,omitempty"`
	Payee          *string  `json:"payee"`
	Comment        *string  `json:"comment"`
	StartDate      string   `json:"startDate"`
	EndDate        *string  `json:"endDate"`
	Interval       *string  `json:"interval"`
}

// Transaction is a double-entry ledger record. Expenses and income point
// both sides at the same account; transfers use two distinct accounts.
// Amounts are non-negative.
type Transaction struct {
	ID                string   `json:"id"`
	Changed           int64    `json:"changed"`
	Created           int64    `json:"created"`
	User              int      `json:"user"`
	Deleted           bool     `json:"deleted"`
	IncomeInstrument  int      `json:"incomeInstrument"`
	IncomeAccount     string   `json:"incomeAccount"`
	Income            float64  `json:"income"`
	OutcomeInstrument int      `json:"outcomeInstrument"`
	OutcomeAccount    string   `json:"outcomeAccount"`
	Outcome           float64  `json:"outcome"`
	Tags              []string `json:"tag,omitempty"`
	Merchant          *string  `json:"merchant"`
	Payee             *string  `json:"payee"`
	Comment           *string  `json:"comment"`
	Date              string   `json:"date"`
}

// Clone returns a deep copy of the transaction. The copy shares nothing
// with the original, so patching it cannot leak into the synced snapshot.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	if t.Tags != nil {
		cp.Tags = append([]string(nil), t.Tags...)
	}
	cp.Merchant = cloneStringPtr(t.Merchant)
	cp.Payee = cloneStringPtr(t.Payee)
	cp.Comment = cloneStringPtr(t.Comment)
	return &cp
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
