package bulk

import (
	"fmt"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// MaxOperations bounds the size of a single bulk batch.
const MaxOperations = 100

// Result is the validated outcome of one bulk request: transactions to
// push upstream (creates and updates merged) and ids to delete, with
// per-kind counts for the caller's summary.
type Result struct {
	ToPush   []*domain.Transaction
	ToDelete []string
	Created  int
	Updated  int
}

// Process walks the operations in input order, converting each against the
// current ledger snapshot. Validation is all-or-nothing: the first failure
// aborts the whole batch, and since nothing has been sent upstream yet
// there is nothing to roll back. Updates and deletes must reference ids
// present in existing; creates stand on their own.
func Process(ops []Operation, existing map[string]*domain.Transaction, maps *lookup.Maps) (*Result, error) {
	if len(ops) > MaxOperations {
		return nil, fmt.Errorf("%w: %d operations, limit is %d", ErrTooManyOperations, len(ops), MaxOperations)
	}

	res := &Result{}
	for i, op := range ops {
		switch op.Type {
		case OpCreate:
			if op.Create == nil {
				return nil, opError(i, &InvalidInputError{Field: "create", Reason: "missing create payload"})
			}
			tx, err := BuildTransaction(op.Create, maps)
			if err != nil {
				return nil, opError(i, err)
			}
			res.ToPush = append(res.ToPush, tx)
			res.Created++

		case OpUpdate:
			if op.Update == nil {
				return nil, opError(i, &InvalidInputError{Field: "update", Reason: "missing update payload"})
			}
			orig, ok := existing[op.Update.ID]
			if !ok {
				return nil, opError(i, &NotFoundError{TransactionID: op.Update.ID})
			}
			tx := orig.Clone()
			if err := ApplyPatch(tx, op.Update, maps); err != nil {
				return nil, opError(i, err)
			}
			res.ToPush = append(res.ToPush, tx)
			res.Updated++

		case OpDelete:
			if op.Delete == nil {
				return nil, opError(i, &InvalidInputError{Field: "delete", Reason: "missing delete payload"})
			}
			if _, ok := existing[op.Delete.ID]; !ok {
				return nil, opError(i, &NotFoundError{TransactionID: op.Delete.ID})
			}
			res.ToDelete = append(res.ToDelete, op.Delete.ID)

		default:
			return nil, opError(i, &InvalidInputError{Field: "type", Reason: fmt.Sprintf("unknown operation type %q", op.Type)})
		}
	}

	return res, nil
}

func opError(index int, err error) error {
	return fmt.Errorf("operation %d: %w", index, err)
}
