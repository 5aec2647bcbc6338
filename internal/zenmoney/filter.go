package zenmoney

import (
	"sort"
	"strings"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

// TransactionFilter narrows a transaction listing. Zero-value fields are
// inactive. Dates are YYYY-MM-DD strings, which compare correctly as
// plain strings.
type TransactionFilter struct {
	DateFrom   string
	DateTo     string
	AccountID  string
	TagID      string
	Payee      string
	MerchantID string
	MinAmount  *float64
	MaxAmount  *float64
	Limit      int
}

// Matches reports whether a transaction passes every active criterion.
func (f *TransactionFilter) Matches(tx *domain.Transaction) bool {
	if f.DateFrom != "" && tx.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && tx.Date > f.DateTo {
		return false
	}
	if f.AccountID != "" && tx.IncomeAccount != f.AccountID && tx.OutcomeAccount != f.AccountID {
		return false
	}
	if f.TagID != "" && !containsTag(tx.Tags, f.TagID) {
		return false
	}
	if f.Payee != "" {
		if tx.Payee == nil || !strings.Contains(strings.ToLower(*tx.Payee), strings.ToLower(f.Payee)) {
			return false
		}
	}
	if f.MerchantID != "" {
		if tx.Merchant == nil || *tx.Merchant != f.MerchantID {
			return false
		}
	}
	if f.MinAmount != nil && tx.Income < *f.MinAmount && tx.Outcome < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && (tx.Income > *f.MaxAmount || tx.Outcome > *f.MaxAmount) {
		return false
	}
	return true
}

// Apply filters and sorts transactions by date descending (newest first),
// then truncates to Limit when set.
func (f *TransactionFilter) Apply(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for i := range txs {
		if f.Matches(&txs[i]) {
			out = append(out, txs[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Created > out[j].Created
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func containsTag(tags []string, id string) bool {
	for _, t := range tags {
		if t == id {
			return true
		}
	}
	return false
}
