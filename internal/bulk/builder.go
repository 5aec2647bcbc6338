package bulk

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// dateFormat is the only accepted transaction date layout.
const dateFormat = "2006-01-02"

// validateDate checks the YYYY-MM-DD format including calendar range.
func validateDate(date string) error {
	if _, err := time.Parse(dateFormat, date); err != nil {
		return &InvalidInputError{
			Field:  "date",
			Reason: fmt.Sprintf("%q is not a valid YYYY-MM-DD date", date),
		}
	}
	return nil
}

// BuildTransaction constructs a new ledger transaction from a validated
// create spec. The id is a fresh uuid, created/changed are stamped to now,
// and user is left zero; the ledger attaches the real identity on commit.
func BuildTransaction(spec *CreateSpec, maps *lookup.Maps) (*domain.Transaction, error) {
	if err := validateDate(spec.Date); err != nil {
		return nil, err
	}

	sides, err := ResolveSides(spec, maps)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	tx := &domain.Transaction{
		ID:                uuid.NewString(),
		Changed:           now,
		Created:           now,
		Date:              spec.Date,
		OutcomeAccount:    sides.OutcomeAccount,
		Outcome:           sides.Outcome,
		OutcomeInstrument: sides.OutcomeInstrument,
		IncomeAccount:     sides.IncomeAccount,
		Income:            sides.Income,
		IncomeInstrument:  sides.IncomeInstrument,
		Payee:             spec.Payee,
		Comment:           spec.Comment,
	}
	if len(spec.TagIDs) > 0 {
		tx.Tags = append([]string(nil), spec.TagIDs...)
	}

	return tx, nil
}
