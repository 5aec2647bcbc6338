// Package bridge orchestrates the validated, human-friendly operations the
// server and CLI expose over the raw ledger client: enriched listings,
// single transaction writes, and the two-phase bulk prepare/execute flow.
package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/zenmoney-bridge/internal/bulk"
	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
	"github.com/dvloznov/zenmoney-bridge/internal/preparations"
	"github.com/dvloznov/zenmoney-bridge/internal/view"
	"github.com/dvloznov/zenmoney-bridge/internal/zenmoney"
)

// Service wires the ledger client and the preparation store together. All
// methods rebuild lookup maps from fresh snapshots; nothing is cached
// across calls because a sync may change any entity in between.
type Service struct {
	client zenmoney.Client
	preps  preparations.Store
	log    zerolog.Logger
}

// New creates a bridge service.
func New(client zenmoney.Client, preps preparations.Store, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		preps:  preps,
		log:    log,
	}
}

// lookupMaps builds fresh lookup maps from the current snapshots.
func (s *Service) lookupMaps(ctx context.Context) (*lookup.Maps, error) {
	accounts, err := s.client.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("lookupMaps: accounts: %w", err)
	}
	tags, err := s.client.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("lookupMaps: tags: %w", err)
	}
	instruments, err := s.client.Instruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("lookupMaps: instruments: %w", err)
	}
	return lookup.Build(accounts, tags, instruments), nil
}

// Sync performs an incremental sync with the ZenMoney server.
func (s *Service) Sync(ctx context.Context) error {
	if err := s.client.Sync(ctx); err != nil {
		return fmt.Errorf("Sync: %w", err)
	}
	return nil
}

// FullSync clears local data and re-downloads everything.
func (s *Service) FullSync(ctx context.Context) error {
	if err := s.client.FullSync(ctx); err != nil {
		return fmt.Errorf("FullSync: %w", err)
	}
	return nil
}

// ListAccounts returns enriched accounts, optionally excluding archived ones.
func (s *Service) ListAccounts(ctx context.Context, activeOnly bool) ([]view.Account, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.client.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}

	out := make([]view.Account, 0, len(accounts))
	for i := range accounts {
		if activeOnly && accounts[i].Archive {
			continue
		}
		out = append(out, view.NewAccount(&accounts[i], maps))
	}
	return out, nil
}

// ListTransactions returns enriched transactions matching the filter.
func (s *Service) ListTransactions(ctx context.Context, filter zenmoney.TransactionFilter) ([]view.Transaction, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.client.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return view.NewTransactions(filter.Apply(txs), maps), nil
}

// ListTags returns all category tags with resolved parent names.
func (s *Service) ListTags(ctx context.Context) ([]view.Tag, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.client.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTags: %w", err)
	}

	out := make([]view.Tag, 0, len(tags))
	for i := range tags {
		out = append(out, view.NewTag(&tags[i], maps))
	}
	return out, nil
}

// ListMerchants returns all merchants.
func (s *Service) ListMerchants(ctx context.Context) ([]view.Merchant, error) {
	merchants, err := s.client.Merchants(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListMerchants: %w", err)
	}
	out := make([]view.Merchant, 0, len(merchants))
	for i := range merchants {
		out = append(out, view.NewMerchant(&merchants[i]))
	}
	return out, nil
}

// ListBudgets returns budgets, optionally filtered to one month (YYYY-MM).
func (s *Service) ListBudgets(ctx context.Context, month string) ([]view.Budget, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	budgets, err := s.client.Budgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListBudgets: %w", err)
	}

	out := make([]view.Budget, 0, len(budgets))
	for i := range budgets {
		if month != "" && budgets[i].Date != month+"-01" {
			continue
		}
		out = append(out, view.NewBudget(&budgets[i], maps))
	}
	return out, nil
}

// ListReminders returns all recurring reminders.
func (s *Service) ListReminders(ctx context.Context) ([]view.Reminder, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	reminders, err := s.client.Reminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListReminders: %w", err)
	}

	out := make([]view.Reminder, 0, len(reminders))
	for i := range reminders {
		out = append(out, view.NewReminder(&reminders[i], maps))
	}
	return out, nil
}

// ListInstruments returns all currency instruments.
func (s *Service) ListInstruments(ctx context.Context) ([]view.Instrument, error) {
	instruments, err := s.client.Instruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListInstruments: %w", err)
	}
	out := make([]view.Instrument, 0, len(instruments))
	for i := range instruments {
		out = append(out, view.NewInstrument(&instruments[i]))
	}
	return out, nil
}

// FindAccount locates an account by title, case-insensitively. A nil result
// with nil error means no account matched.
func (s *Service) FindAccount(ctx context.Context, title string) (*view.Account, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.client.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindAccount: %w", err)
	}

	for i := range accounts {
		if strings.EqualFold(accounts[i].Title, title) {
			v := view.NewAccount(&accounts[i], maps)
			return &v, nil
		}
	}
	return nil, nil
}

// FindTag locates a tag by title, case-insensitively. A nil result with nil
// error means no tag matched.
func (s *Service) FindTag(ctx context.Context, title string) (*view.Tag, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.client.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindTag: %w", err)
	}

	for i := range tags {
		if strings.EqualFold(tags[i].Title, title) {
			v := view.NewTag(&tags[i], maps)
			return &v, nil
		}
	}
	return nil, nil
}

// GetInstrument returns one instrument by id, or nil when unknown.
func (s *Service) GetInstrument(ctx context.Context, id int) (*view.Instrument, error) {
	instruments, err := s.client.Instruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetInstrument: %w", err)
	}
	for i := range instruments {
		if instruments[i].ID == id {
			v := view.NewInstrument(&instruments[i])
			return &v, nil
		}
	}
	return nil, nil
}

// CreateTransaction builds one transaction from a simplified spec and
// pushes it to the ledger immediately, bypassing the staging flow.
func (s *Service) CreateTransaction(ctx context.Context, spec *bulk.CreateSpec) (*view.Transaction, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := bulk.BuildTransaction(spec, maps)
	if err != nil {
		return nil, err
	}
	if err := s.client.PushTransactions(ctx, []domain.Transaction{*tx}); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	s.log.Info().Str("transaction_id", tx.ID).Str("kind", string(domain.Classify(tx))).Msg("Transaction created")
	v := view.NewTransaction(tx, maps)
	return &v, nil
}

// DeleteTransaction deletes a single transaction by id and returns its last
// known contents.
func (s *Service) DeleteTransaction(ctx context.Context, id string) (*view.DeletedTransaction, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.client.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("DeleteTransaction: %w", err)
	}

	var target *domain.Transaction
	for i := range txs {
		if txs[i].ID == id {
			target = &txs[i]
			break
		}
	}
	if target == nil {
		return nil, &bulk.NotFoundError{TransactionID: id}
	}

	if err := s.client.DeleteTransactions(ctx, []string{id}); err != nil {
		return nil, fmt.Errorf("DeleteTransaction: %w", err)
	}

	s.log.Info().Str("transaction_id", id).Msg("Transaction deleted")
	return &view.DeletedTransaction{
		Message:     fmt.Sprintf("Transaction %q deleted", id),
		Transaction: view.NewTransaction(target, maps),
	}, nil
}

// Prepare validates and stages a batch of bulk operations. Everything is
// local: a failure here leaves both the ledger and the preparation store
// untouched. The returned preview shows exactly what Execute will write.
func (s *Service) Prepare(ctx context.Context, ops []bulk.Operation) (*view.PrepareResult, error) {
	maps, err := s.lookupMaps(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.client.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("Prepare: transactions: %w", err)
	}

	existing := make(map[string]*domain.Transaction, len(txs))
	for i := range txs {
		existing[txs[i].ID] = &txs[i]
	}

	result, err := bulk.Process(ops, existing, maps)
	if err != nil {
		return nil, err
	}

	pushPreviews := make([]view.Transaction, 0, len(result.ToPush))
	for _, tx := range result.ToPush {
		pushPreviews = append(pushPreviews, view.NewTransaction(tx, maps))
	}
	deletePreviews := make([]view.Transaction, 0, len(result.ToDelete))
	for _, id := range result.ToDelete {
		deletePreviews = append(deletePreviews, view.NewTransaction(existing[id], maps))
	}

	batch := &preparations.PreparedBatch{
		ToPush:         result.ToPush,
		ToDelete:       result.ToDelete,
		Created:        result.Created,
		Updated:        result.Updated,
		PushPreviews:   pushPreviews,
		DeletePreviews: deletePreviews,
	}
	key, err := s.preps.Stage(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("Prepare: stage: %w", err)
	}

	s.log.Info().
		Str("preparation_id", key).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("deleted", len(result.ToDelete)).
		Msg("Bulk batch staged")

	return &view.PrepareResult{
		PreparationID:       key,
		Created:             result.Created,
		Updated:             result.Updated,
		Deleted:             len(result.ToDelete),
		Transactions:        pushPreviews,
		DeletedTransactions: deletePreviews,
	}, nil
}

// Execute consumes a staged batch and applies it against the ledger:
// pushes first, then deletes. A failure after the push is reported but not
// rolled back; the batch is already consumed either way, matching the
// single-use contract.
func (s *Service) Execute(ctx context.Context, preparationID string) (*view.ExecuteResult, error) {
	batch, err := s.preps.Consume(ctx, preparationID)
	if err != nil {
		return nil, err
	}

	if len(batch.ToPush) > 0 {
		push := make([]domain.Transaction, 0, len(batch.ToPush))
		for _, tx := range batch.ToPush {
			push = append(push, *tx)
		}
		if err := s.client.PushTransactions(ctx, push); err != nil {
			return nil, fmt.Errorf("Execute: push: %w", err)
		}
	}

	if len(batch.ToDelete) > 0 {
		if err := s.client.DeleteTransactions(ctx, batch.ToDelete); err != nil {
			// The push above already landed; surface the failure without
			// attempting a compensating write.
			s.log.Error().Err(err).
				Str("preparation_id", preparationID).
				Int("pushed", len(batch.ToPush)).
				Msg("Delete phase failed after successful push")
			return nil, fmt.Errorf("Execute: delete: %w", err)
		}
	}

	s.log.Info().
		Str("preparation_id", preparationID).
		Int("created", batch.Created).
		Int("updated", batch.Updated).
		Int("deleted", len(batch.ToDelete)).
		Msg("Bulk batch executed")

	affected := append([]view.Transaction(nil), batch.PushPreviews...)
	affected = append(affected, batch.DeletePreviews...)
	return &view.ExecuteResult{
		Created:              batch.Created,
		Updated:              batch.Updated,
		Deleted:              len(batch.ToDelete),
		AffectedTransactions: affected,
	}, nil
}
