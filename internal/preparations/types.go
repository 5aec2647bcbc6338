// Package preparations defines the staging area between a bulk prepare and
// a later execute call. A prepared batch is addressed by a one-time opaque
// key and consumed exactly once.
package preparations

import (
	"context"
	"errors"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/view"
)

// ErrNotFound is returned when a preparation key is unknown: it was never
// staged, or a prior execute already consumed it.
var ErrNotFound = errors.New("preparation not found")

// PreparedBatch is the validated output of one bulk request, held between
// prepare and execute. The previews are captured at prepare time so the
// execute summary reflects what the caller approved.
type PreparedBatch struct {
	ToPush         []*domain.Transaction
	ToDelete       []string
	Created        int
	Updated        int
	PushPreviews   []view.Transaction
	DeletePreviews []view.Transaction
}

// Store stages prepared batches under fresh opaque keys. Entries live until
// consumed or the process exits; there is no expiry.
type Store interface {
	// Stage inserts the batch under a fresh unique key and returns the key.
	Stage(ctx context.Context, batch *PreparedBatch) (string, error)

	// Consume atomically removes and returns the batch for the key, or
	// fails with ErrNotFound. Of two concurrent calls with the same key,
	// exactly one succeeds.
	Consume(ctx context.Context, key string) (*PreparedBatch, error)
}
