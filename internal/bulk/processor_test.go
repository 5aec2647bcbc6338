package bulk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

func existingTxs() map[string]*domain.Transaction {
	return map[string]*domain.Transaction{
		"tx-1": {
			ID: "tx-1", Date: "2024-05-01",
			OutcomeAccount: "acc-a", Outcome: 100, OutcomeInstrument: 1,
			IncomeAccount: "acc-a", Income: 0, IncomeInstrument: 1,
		},
		"tx-2": {
			ID: "tx-2", Date: "2024-05-02",
			OutcomeAccount: "acc-a", Outcome: 0, OutcomeInstrument: 1,
			IncomeAccount: "acc-a", Income: 50, IncomeInstrument: 1,
		},
	}
}

func TestProcessMixedBatch(t *testing.T) {
	maps := testMaps()
	amount := 750.0
	ops := []Operation{
		{Type: OpCreate, Create: &CreateSpec{Kind: domain.KindExpense, Date: "2024-06-15", AccountID: "acc-a", Amount: 500}},
		{Type: OpCreate, Create: &CreateSpec{Kind: domain.KindIncome, Date: "2024-06-16", AccountID: "acc-b", Amount: 200}},
		{Type: OpUpdate, Update: &UpdateSpec{ID: "tx-1", Amount: &amount}},
		{Type: OpDelete, Delete: &DeleteSpec{ID: "tx-2"}},
	}

	res, err := Process(ops, existingTxs(), maps)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Len(t, res.ToPush, 3)
	assert.Equal(t, []string{"tx-2"}, res.ToDelete)

	// The update landed on a copy, applied by kind.
	updated := res.ToPush[2]
	assert.Equal(t, "tx-1", updated.ID)
	assert.Equal(t, 750.0, updated.Outcome)
	assert.Equal(t, 0.0, updated.Income)
}

func TestProcessDoesNotMutateExisting(t *testing.T) {
	maps := testMaps()
	existing := existingTxs()
	amount := 999.0

	_, err := Process([]Operation{
		{Type: OpUpdate, Update: &UpdateSpec{ID: "tx-1", Amount: &amount}},
	}, existing, maps)
	require.NoError(t, err)

	assert.Equal(t, 100.0, existing["tx-1"].Outcome)
}

func TestProcessBatchLimit(t *testing.T) {
	maps := testMaps()
	ops := make([]Operation, MaxOperations+1)
	for i := range ops {
		ops[i] = Operation{Type: OpCreate, Create: &CreateSpec{Kind: domain.KindExpense, Date: "2024-01-01", AccountID: "acc-a", Amount: 1}}
	}

	_, err := Process(ops, nil, maps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyOperations))
	assert.True(t, IsInvalidInput(err))
}

func TestProcessAtLimitSucceeds(t *testing.T) {
	maps := testMaps()
	ops := make([]Operation, MaxOperations)
	for i := range ops {
		ops[i] = Operation{Type: OpCreate, Create: &CreateSpec{Kind: domain.KindExpense, Date: "2024-01-01", AccountID: "acc-a", Amount: 1}}
	}

	res, err := Process(ops, nil, maps)
	require.NoError(t, err)
	assert.Equal(t, MaxOperations, res.Created)
}

func TestProcessUnknownIDFailsWholeBatch(t *testing.T) {
	maps := testMaps()

	for _, op := range []Operation{
		{Type: OpUpdate, Update: &UpdateSpec{ID: "missing"}},
		{Type: OpDelete, Delete: &DeleteSpec{ID: "missing"}},
	} {
		ops := []Operation{
			{Type: OpCreate, Create: &CreateSpec{Kind: domain.KindExpense, Date: "2024-01-01", AccountID: "acc-a", Amount: 1}},
			op,
		}
		_, err := Process(ops, existingTxs(), maps)
		require.Error(t, err, "op type %s", op.Type)
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "missing")
	}
}

func TestProcessStopsAtFirstFailure(t *testing.T) {
	maps := testMaps()
	ops := []Operation{
		{Type: OpCreate, Create: &CreateSpec{Kind: domain.KindExpense, Date: "bad-date", AccountID: "acc-a", Amount: 1}},
		{Type: OpDelete, Delete: &DeleteSpec{ID: "tx-1"}},
	}

	res, err := Process(ops, existingTxs(), maps)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "operation 0")
}

func TestProcessUnknownOperationType(t *testing.T) {
	maps := testMaps()
	_, err := Process([]Operation{{Type: "merge"}}, nil, maps)
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}

func TestProcessCountsMatchBatchShape(t *testing.T) {
	maps := testMaps()
	existing := existingTxs()

	const creates, updates, deletes = 3, 1, 1
	var ops []Operation
	for i := 0; i < creates; i++ {
		ops = append(ops, Operation{Type: OpCreate, Create: &CreateSpec{
			Kind: domain.KindExpense, Date: fmt.Sprintf("2024-06-%02d", i+1), AccountID: "acc-a", Amount: float64(i + 1),
		}})
	}
	ops = append(ops, Operation{Type: OpUpdate, Update: &UpdateSpec{ID: "tx-1"}})
	ops = append(ops, Operation{Type: OpDelete, Delete: &DeleteSpec{ID: "tx-2"}})

	res, err := Process(ops, existing, maps)
	require.NoError(t, err)
	assert.Equal(t, creates, res.Created)
	assert.Equal(t, updates, res.Updated)
	assert.Len(t, res.ToDelete, deletes)
	assert.Len(t, res.ToPush, creates+updates)
}
