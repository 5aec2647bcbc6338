package bulk

import (
	"fmt"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// ResolveInstrument picks the currency instrument for an account. An
// explicit instrument always wins, even when the account carries a
// different one; this lets a caller force a currency. Without an explicit
// value the account's own instrument is used, and an account with no
// derivable instrument is an error.
func ResolveInstrument(maps *lookup.Maps, accountID string, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if instr, ok := maps.AccountInstrument(accountID); ok {
		return instr, nil
	}
	return 0, &InvalidInputError{
		Field:  "account_id",
		Reason: fmt.Sprintf("no instrument known for account %q; pass instrument_id explicitly", accountID),
	}
}

// Sides holds the fully resolved double-entry fields for a new transaction.
type Sides struct {
	OutcomeAccount    string
	Outcome           float64
	OutcomeInstrument int
	IncomeAccount     string
	Income            float64
	IncomeInstrument  int
}

// ResolveSides expands a single-account/single-amount spec into both
// double-entry sides. Expenses and income keep both sides on the same
// account with a zero amount on the unused one. Transfers require a
// destination account; the destination amount defaults to the source
// amount, which covers same-currency transfers without redundant input.
// Cross-currency transfers must supply to_amount since no rate conversion
// happens here.
func ResolveSides(spec *CreateSpec, maps *lookup.Maps) (Sides, error) {
	instr, err := ResolveInstrument(maps, spec.AccountID, spec.InstrumentID)
	if err != nil {
		return Sides{}, err
	}

	switch spec.Kind {
	case domain.KindExpense:
		return Sides{
			OutcomeAccount:    spec.AccountID,
			Outcome:           spec.Amount,
			OutcomeInstrument: instr,
			IncomeAccount:     spec.AccountID,
			Income:            0,
			IncomeInstrument:  instr,
		}, nil

	case domain.KindIncome:
		return Sides{
			OutcomeAccount:    spec.AccountID,
			Outcome:           0,
			OutcomeInstrument: instr,
			IncomeAccount:     spec.AccountID,
			Income:            spec.Amount,
			IncomeInstrument:  instr,
		}, nil

	case domain.KindTransfer:
		if spec.ToAccountID == nil {
			return Sides{}, &InvalidInputError{
				Field:  "to_account_id",
				Reason: "transfer requires a destination account",
			}
		}
		toInstr, err := ResolveInstrument(maps, *spec.ToAccountID, spec.ToInstrumentID)
		if err != nil {
			return Sides{}, err
		}
		toAmount := spec.Amount
		if spec.ToAmount != nil {
			toAmount = *spec.ToAmount
		}
		return Sides{
			OutcomeAccount:    spec.AccountID,
			Outcome:           spec.Amount,
			OutcomeInstrument: instr,
			IncomeAccount:     *spec.ToAccountID,
			Income:            toAmount,
			IncomeInstrument:  toInstr,
		}, nil

	default:
		return Sides{}, &InvalidInputError{
			Field:  "kind",
			Reason: fmt.Sprintf("unknown transaction kind %q", spec.Kind),
		}
	}
}
