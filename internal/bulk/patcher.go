package bulk

import (
	"time"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// ApplyPatch mutates tx in place with the fields present in patch, keeping
// the double-entry record internally consistent. Fields apply in a fixed
// order (date, tags, payee, comment, account, to_account, amount,
// to_amount), and the transaction kind is re-derived at each mutation site
// that depends on it: an account change earlier in the patch can legally
// change how a later amount change lands.
func ApplyPatch(tx *domain.Transaction, patch *UpdateSpec, maps *lookup.Maps) error {
	if patch.Date != nil {
		if err := validateDate(*patch.Date); err != nil {
			return err
		}
		tx.Date = *patch.Date
	}

	if patch.TagIDs != nil {
		// Full replacement, not a merge.
		if len(*patch.TagIDs) == 0 {
			tx.Tags = nil
		} else {
			tx.Tags = append([]string(nil), (*patch.TagIDs)...)
		}
	}

	if patch.Payee != nil {
		tx.Payee = normalizeOptional(*patch.Payee)
	}
	if patch.Comment != nil {
		tx.Comment = normalizeOptional(*patch.Comment)
	}

	if patch.AccountID != nil {
		instr, err := ResolveInstrument(maps, *patch.AccountID, nil)
		if err != nil {
			return err
		}
		switch domain.Classify(tx) {
		case domain.KindTransfer:
			// Only the source side moves; the destination stays put.
			tx.OutcomeAccount = *patch.AccountID
			tx.OutcomeInstrument = instr
		case domain.KindExpense, domain.KindIncome:
			tx.OutcomeAccount = *patch.AccountID
			tx.OutcomeInstrument = instr
			tx.IncomeAccount = *patch.AccountID
			tx.IncomeInstrument = instr
		}
	}

	if patch.ToAccountID != nil {
		instr, err := ResolveInstrument(maps, *patch.ToAccountID, nil)
		if err != nil {
			return err
		}
		tx.IncomeAccount = *patch.ToAccountID
		tx.IncomeInstrument = instr
	}

	if patch.Amount != nil {
		switch domain.Classify(tx) {
		case domain.KindIncome:
			tx.Income = *patch.Amount
		case domain.KindExpense, domain.KindTransfer:
			tx.Outcome = *patch.Amount
		}
	}

	if patch.ToAmount != nil {
		tx.Income = *patch.ToAmount
	}

	tx.Changed = time.Now().Unix()
	return nil
}

// normalizeOptional maps an empty replacement string to "unset" rather
// than storing the empty string.
func normalizeOptional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
