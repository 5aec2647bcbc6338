package domain

// Kind is the derived semantic classification of a transaction. It is never
// stored; always recompute it with Classify because patching a transaction
// can change its kind mid-flight.
type Kind string

const (
	// KindExpense is money leaving one account.
	KindExpense Kind = "expense"
	// KindIncome is money arriving at one account.
	KindIncome Kind = "income"
	// KindTransfer is money moving between two distinct accounts.
	KindTransfer Kind = "transfer"
)

// Classify derives the transaction kind from the four core double-entry
// fields. A transfer requires both amounts positive and distinct accounts;
// both amounts positive on the same account counts as income. An all-zero
// transaction falls through to expense.
func Classify(tx *Transaction) Kind {
	switch {
	case tx.Outcome > 0 && tx.Income > 0 && tx.OutcomeAccount != tx.IncomeAccount:
		return KindTransfer
	case tx.Income > 0 && (tx.Outcome == 0 || tx.OutcomeAccount == tx.IncomeAccount):
		return KindIncome
	default:
		return KindExpense
	}
}
