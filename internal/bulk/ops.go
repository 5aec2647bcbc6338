// Package bulk converts simplified transaction operations into the ledger's
// double-entry representation and validates batches of them before anything
// is written upstream.
package bulk

import (
	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

// OpType discriminates the bulk operation union. Every consumer switches
// over it exhaustively and rejects unknown values, so adding a new kind is
// visible at each handling site.
type OpType string

const (
	// OpCreate creates a new transaction from a CreateSpec.
	OpCreate OpType = "create"
	// OpUpdate applies a partial update to an existing transaction.
	OpUpdate OpType = "update"
	// OpDelete removes an existing transaction by id.
	OpDelete OpType = "delete"
)

// Operation is one element of a bulk request. Exactly one of the payload
// fields matching Type must be set.
type Operation struct {
	Type   OpType      `json:"type"`
	Create *CreateSpec `json:"create,omitempty"`
	Update *UpdateSpec `json:"update,omitempty"`
	Delete *DeleteSpec `json:"delete,omitempty"`
}

// CreateSpec describes a new transaction in user-facing terms: one primary
// account and amount, plus a destination pair for transfers. Instruments
// are optional; when absent they are resolved from the account.
type CreateSpec struct {
	Kind           domain.Kind `json:"kind"`
	Date           string      `json:"date"`
	AccountID      string      `json:"account_id"`
	Amount         float64     `json:"amount"`
	InstrumentID   *int        `json:"instrument_id,omitempty"`
	ToAccountID    *string     `json:"to_account_id,omitempty"`
	ToAmount       *float64    `json:"to_amount,omitempty"`
	ToInstrumentID *int        `json:"to_instrument_id,omitempty"`
	TagIDs         []string    `json:"tag_ids,omitempty"`
	Payee          *string     `json:"payee,omitempty"`
	Comment        *string     `json:"comment,omitempty"`
}

// UpdateSpec is a partial update for an existing transaction. Nil fields
// are left untouched; TagIDs replaces the whole tag set when present.
type UpdateSpec struct {
	ID          string    `json:"id"`
	Date        *string   `json:"date,omitempty"`
	TagIDs      *[]string `json:"tag_ids,omitempty"`
	Payee       *string   `json:"payee,omitempty"`
	Comment     *string   `json:"comment,omitempty"`
	AccountID   *string   `json:"account_id,omitempty"`
	ToAccountID *string   `json:"to_account_id,omitempty"`
	Amount      *float64  `json:"amount,omitempty"`
	ToAmount    *float64  `json:"to_amount,omitempty"`
}

// DeleteSpec identifies a transaction to remove.
type DeleteSpec struct {
	ID string `json:"id"`
}
