package bulk

import (
	"errors"
	"fmt"
)

// ErrTooManyOperations is returned when a batch exceeds MaxOperations.
// The check runs before any operation is touched.
var ErrTooManyOperations = errors.New("too many operations in batch")

// InvalidInputError reports a malformed or unresolvable field in a request.
// It is surfaced to the caller verbatim and never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to a transaction id that does not exist
// in the current ledger snapshot.
type NotFoundError struct {
	TransactionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction not found: %s", e.TransactionID)
}

// IsInvalidInput reports whether err is (or wraps) an invalid-input error,
// including a batch size violation.
func IsInvalidInput(err error) bool {
	var invalid *InvalidInputError
	return errors.As(err, &invalid) || errors.Is(err, ErrTooManyOperations)
}

// IsNotFound reports whether err is (or wraps) an unknown-transaction error.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
