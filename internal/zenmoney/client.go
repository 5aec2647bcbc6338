// Package zenmoney talks to the ZenMoney API and holds a synced local
// snapshot of the user's ledger. The bridge core depends only on the Client
// interface; retries, auth and the sync protocol live behind it.
package zenmoney

import (
	"context"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

// Client is the abstract ledger client the bridge core consumes. Reads
// return the most recently synced local state, not necessarily the remote
// ledger's current state. Writes are assumed to fully apply or fail; the
// core never retries or partially resubmits.
type Client interface {
	// Sync performs an incremental diff sync with the ZenMoney server.
	Sync(ctx context.Context) error

	// FullSync clears local state and re-downloads everything.
	FullSync(ctx context.Context) error

	// Accounts returns the synced account snapshot.
	Accounts(ctx context.Context) ([]domain.Account, error)

	// Tags returns the synced tag snapshot.
	Tags(ctx context.Context) ([]domain.Tag, error)

	// Instruments returns the synced instrument snapshot.
	Instruments(ctx context.Context) ([]domain.Instrument, error)

	// Merchants returns the synced merchant snapshot.
	Merchants(ctx context.Context) ([]domain.Merchant, error)

	// Budgets returns the synced budget snapshot.
	Budgets(ctx context.Context) ([]domain.Budget, error)

	// Reminders returns the synced reminder snapshot.
	Reminders(ctx context.Context) ([]domain.Reminder, error)

	// Transactions returns the synced, non-deleted transaction snapshot.
	Transactions(ctx context.Context) ([]domain.Transaction, error)

	// PushTransactions upserts a batch of transactions on the server.
	PushTransactions(ctx context.Context, txs []domain.Transaction) error

	// DeleteTransactions removes the given transactions by id.
	DeleteTransactions(ctx context.Context, ids []string) error
}
