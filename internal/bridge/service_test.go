package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenmoney-bridge/internal/bulk"
	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/preparations"
	"github.com/dvloznov/zenmoney-bridge/internal/preparations/inmemory"
	"github.com/dvloznov/zenmoney-bridge/internal/zenmoney"
)

// fakeClient is an in-memory ledger client recording every write.
type fakeClient struct {
	accounts     []domain.Account
	tags         []domain.Tag
	instruments  []domain.Instrument
	merchants    []domain.Merchant
	budgets      []domain.Budget
	reminders    []domain.Reminder
	transactions []domain.Transaction

	pushed    [][]domain.Transaction
	deleted   [][]string
	pushErr   error
	deleteErr error
	syncs     int
	fullSyncs int
}

func (f *fakeClient) Sync(ctx context.Context) error     { f.syncs++; return nil }
func (f *fakeClient) FullSync(ctx context.Context) error { f.fullSyncs++; return nil }
func (f *fakeClient) Accounts(ctx context.Context) ([]domain.Account, error) {
	return f.accounts, nil
}
func (f *fakeClient) Tags(ctx context.Context) ([]domain.Tag, error) { return f.tags, nil }
func (f *fakeClient) Instruments(ctx context.Context) ([]domain.Instrument, error) {
	return f.instruments, nil
}
func (f *fakeClient) Merchants(ctx context.Context) ([]domain.Merchant, error) {
	return f.merchants, nil
}
func (f *fakeClient) Budgets(ctx context.Context) ([]domain.Budget, error) { return f.budgets, nil }
func (f *fakeClient) Reminders(ctx context.Context) ([]domain.Reminder, error) {
	return f.reminders, nil
}
func (f *fakeClient) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	return f.transactions, nil
}
func (f *fakeClient) PushTransactions(ctx context.Context, txs []domain.Transaction) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushed = append(f.pushed, txs)
	return nil
}
func (f *fakeClient) DeleteTransactions(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ids)
	return nil
}

var _ zenmoney.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	rub := 1
	usd := 2
	return &fakeClient{
		accounts: []domain.Account{
			{ID: "acc-a", Title: "Main Account", Instrument: &rub},
			{ID: "acc-b", Title: "Dollar Savings", Instrument: &usd},
		},
		tags: []domain.Tag{
			{ID: "tag-food", Title: "Food"},
		},
		instruments: []domain.Instrument{
			{ID: 1, Title: "Russian Ruble", ShortTitle: "RUB", Symbol: "₽", Rate: 1},
			{ID: 2, Title: "US Dollar", ShortTitle: "USD", Symbol: "$", Rate: 90},
		},
		transactions: []domain.Transaction{
			{
				ID: "tx-1", Date: "2024-05-01",
				OutcomeAccount: "acc-a", Outcome: 100, OutcomeInstrument: 1,
				IncomeAccount: "acc-a", Income: 0, IncomeInstrument: 1,
			},
		},
	}
}

func newTestService(client *fakeClient) (*Service, preparations.Store) {
	store := inmemory.NewStore()
	return New(client, store, zerolog.Nop()), store
}

func TestPrepareExpensePreview(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	res, err := svc.Prepare(context.Background(), []bulk.Operation{
		{Type: bulk.OpCreate, Create: &bulk.CreateSpec{
			Kind: domain.KindExpense, Date: "2024-06-15", AccountID: "acc-a", Amount: 500,
		}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.PreparationID)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 0, res.Deleted)
	require.Len(t, res.Transactions, 1)

	preview := res.Transactions[0]
	assert.Equal(t, 500.0, preview.Outcome)
	assert.Equal(t, 0.0, preview.Income)
	assert.Equal(t, "₽", preview.OutcomeCurrency)
	assert.Equal(t, "₽", preview.IncomeCurrency)
	assert.Equal(t, "Main Account", preview.OutcomeAccount)

	// Prepare never writes to the ledger.
	assert.Empty(t, client.pushed)
	assert.Empty(t, client.deleted)
}

func TestPrepareCrossCurrencyTransferPreview(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	to := "acc-b"
	toAmount := 15.0
	res, err := svc.Prepare(context.Background(), []bulk.Operation{
		{Type: bulk.OpCreate, Create: &bulk.CreateSpec{
			Kind: domain.KindTransfer, Date: "2024-06-15",
			AccountID: "acc-a", Amount: 1000,
			ToAccountID: &to, ToAmount: &toAmount,
		}},
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)

	preview := res.Transactions[0]
	assert.Equal(t, 1000.0, preview.Outcome)
	assert.Equal(t, "₽", preview.OutcomeCurrency)
	assert.Equal(t, 15.0, preview.Income)
	assert.Equal(t, "$", preview.IncomeCurrency)
	assert.Equal(t, "Dollar Savings", preview.IncomeAccount)
}

func TestPrepareFailureLeavesStoreUntouched(t *testing.T) {
	client := newFakeClient()
	svc, store := newTestService(client)

	_, err := svc.Prepare(context.Background(), []bulk.Operation{
		{Type: bulk.OpDelete, Delete: &bulk.DeleteSpec{ID: "no-such-tx"}},
	})
	require.Error(t, err)
	assert.True(t, bulk.IsNotFound(err))

	// Nothing staged, nothing written.
	assert.Empty(t, client.pushed)
	assert.Empty(t, client.deleted)
	_ = store
}

func TestExecuteHappyPath(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)
	ctx := context.Background()

	amount := 750.0
	prep, err := svc.Prepare(ctx, []bulk.Operation{
		{Type: bulk.OpCreate, Create: &bulk.CreateSpec{
			Kind: domain.KindExpense, Date: "2024-06-15", AccountID: "acc-a", Amount: 500,
		}},
		{Type: bulk.OpUpdate, Update: &bulk.UpdateSpec{ID: "tx-1", Amount: &amount}},
		{Type: bulk.OpDelete, Delete: &bulk.DeleteSpec{ID: "tx-1"}},
	})
	require.NoError(t, err)

	res, err := svc.Execute(ctx, prep.PreparationID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Deleted)
	assert.Len(t, res.AffectedTransactions, 3)

	require.Len(t, client.pushed, 1)
	assert.Len(t, client.pushed[0], 2)
	require.Len(t, client.deleted, 1)
	assert.Equal(t, []string{"tx-1"}, client.deleted[0])
}

func TestExecuteUnknownPreparation(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	_, err := svc.Execute(context.Background(), "ffffffff-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, preparations.ErrNotFound))

	// No ledger writes on an unknown key.
	assert.Empty(t, client.pushed)
	assert.Empty(t, client.deleted)
}

func TestExecuteIsSingleUse(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)
	ctx := context.Background()

	prep, err := svc.Prepare(ctx, []bulk.Operation{
		{Type: bulk.OpCreate, Create: &bulk.CreateSpec{
			Kind: domain.KindIncome, Date: "2024-06-15", AccountID: "acc-a", Amount: 100,
		}},
	})
	require.NoError(t, err)

	_, err = svc.Execute(ctx, prep.PreparationID)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, prep.PreparationID)
	assert.True(t, errors.Is(err, preparations.ErrNotFound))
	assert.Len(t, client.pushed, 1)
}

func TestExecuteDeleteFailureNotRolledBack(t *testing.T) {
	client := newFakeClient()
	client.deleteErr = errors.New("ledger unavailable")
	svc, _ := newTestService(client)
	ctx := context.Background()

	prep, err := svc.Prepare(ctx, []bulk.Operation{
		{Type: bulk.OpCreate, Create: &bulk.CreateSpec{
			Kind: domain.KindExpense, Date: "2024-06-15", AccountID: "acc-a", Amount: 10,
		}},
		{Type: bulk.OpDelete, Delete: &bulk.DeleteSpec{ID: "tx-1"}},
	})
	require.NoError(t, err)

	_, err = svc.Execute(ctx, prep.PreparationID)
	require.Error(t, err)

	// The push landed and stays; the batch is consumed.
	assert.Len(t, client.pushed, 1)
	_, err = svc.Execute(ctx, prep.PreparationID)
	assert.True(t, errors.Is(err, preparations.ErrNotFound))
}

func TestCreateTransactionPushesImmediately(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	v, err := svc.CreateTransaction(context.Background(), &bulk.CreateSpec{
		Kind: domain.KindExpense, Date: "2024-06-15", AccountID: "acc-a", Amount: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, v.Outcome)
	require.Len(t, client.pushed, 1)
	require.Len(t, client.pushed[0], 1)
	assert.Equal(t, 500.0, client.pushed[0][0].Outcome)
}

func TestDeleteTransaction(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	res, err := svc.DeleteTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Contains(t, res.Message, "tx-1")
	assert.Equal(t, "Main Account", res.Transaction.OutcomeAccount)
	require.Len(t, client.deleted, 1)

	_, err = svc.DeleteTransaction(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, bulk.IsNotFound(err))
}

func TestFindAccountCaseInsensitive(t *testing.T) {
	client := newFakeClient()
	svc, _ := newTestService(client)

	acc, err := svc.FindAccount(context.Background(), "main account")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, "acc-a", acc.ID)
	assert.Equal(t, "₽", acc.Currency)

	missing, err := svc.FindAccount(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListAccountsActiveOnly(t *testing.T) {
	client := newFakeClient()
	client.accounts = append(client.accounts, domain.Account{ID: "acc-old", Title: "Closed", Archive: true})
	svc, _ := newTestService(client)

	all, err := svc.ListAccounts(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.ListAccounts(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestListBudgetsMonthFilter(t *testing.T) {
	client := newFakeClient()
	client.budgets = []domain.Budget{
		{Date: "2024-06-01", Income: 1000},
		{Date: "2024-07-01", Income: 2000},
	}
	svc, _ := newTestService(client)

	june, err := svc.ListBudgets(context.Background(), "2024-06")
	require.NoError(t, err)
	require.Len(t, june, 1)
	assert.Equal(t, 1000.0, june[0].Income)

	all, err := svc.ListBudgets(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
