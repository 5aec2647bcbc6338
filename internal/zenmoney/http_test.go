package zenmoney

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

// diffServer fakes the v8 diff endpoint: it records every request body and
// answers with scripted responses in order.
type diffServer struct {
	t *testing.T

	mu        sync.Mutex
	requests  []diffRequest
	responses []diffResponse
}

func (s *diffServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != diffPath {
		s.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var req diffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.t.Errorf("decode request: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		s.mu.Unlock()
		s.t.Error("no scripted response left")
		http.Error(w, "out of responses", http.StatusInternalServerError)
		return
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *diffServer) sentRequests() []diffRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]diffRequest(nil), s.requests...)
}

func newTestClient(t *testing.T, responses ...diffResponse) (*DiffClient, *diffServer) {
	t.Helper()
	srv := &diffServer{t: t, responses: responses}
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)
	return NewDiffClient(context.Background(), httpSrv.URL, "test-token"), srv
}

func TestFullSyncMergesSnapshot(t *testing.T) {
	food := "tag-food"
	client, srv := newTestClient(t, diffResponse{
		ServerTimestamp: 100,
		Instrument:      []domain.Instrument{{ID: 1, Symbol: "₽"}},
		Account:         []domain.Account{{ID: "acc-a", Title: "Checking"}},
		Tag:             []domain.Tag{{ID: "tag-food", Title: "Food"}},
		Budget:          []domain.Budget{{Tag: &food, Date: "2024-06-01", Outcome: 100}},
		Transaction: []domain.Transaction{
			{ID: "tx-1", Date: "2024-06-01", OutcomeAccount: "acc-a", IncomeAccount: "acc-a", Outcome: 500},
		},
	})

	if err := client.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync: %v", err)
	}

	reqs := srv.sentRequests()
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	if reqs[0].ServerTimestamp != 0 {
		t.Errorf("full sync sent serverTimestamp %d, want 0", reqs[0].ServerTimestamp)
	}

	accounts, _ := client.Accounts(context.Background())
	if len(accounts) != 1 || accounts[0].Title != "Checking" {
		t.Errorf("accounts = %+v, want one Checking account", accounts)
	}
	budgets, _ := client.Budgets(context.Background())
	if len(budgets) != 1 || budgets[0].Outcome != 100 {
		t.Errorf("budgets = %+v, want one with outcome 100", budgets)
	}
	txs, _ := client.Transactions(context.Background())
	if len(txs) != 1 || txs[0].ID != "tx-1" {
		t.Errorf("transactions = %+v, want tx-1", txs)
	}
}

func TestIncrementalSyncUpsertsEntities(t *testing.T) {
	food := "tag-food"
	client, srv := newTestClient(t,
		diffResponse{
			ServerTimestamp: 100,
			Account:         []domain.Account{{ID: "acc-a", Title: "Checking"}},
			Budget:          []domain.Budget{{Tag: &food, Date: "2024-06-01", Outcome: 100}},
		},
		diffResponse{
			ServerTimestamp: 200,
			Account:         []domain.Account{{ID: "acc-a", Title: "Main Checking"}},
			Budget:          []domain.Budget{{Tag: &food, Date: "2024-06-01", Outcome: 250}},
		},
	)

	if err := client.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync: %v", err)
	}
	if err := client.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	reqs := srv.sentRequests()
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	if reqs[1].ServerTimestamp != 100 {
		t.Errorf("incremental sync sent serverTimestamp %d, want 100", reqs[1].ServerTimestamp)
	}

	// A re-sent entity replaces the old one instead of duplicating it.
	accounts, _ := client.Accounts(context.Background())
	if len(accounts) != 1 || accounts[0].Title != "Main Checking" {
		t.Errorf("accounts = %+v, want one Main Checking account", accounts)
	}
	budgets, _ := client.Budgets(context.Background())
	if len(budgets) != 1 {
		t.Fatalf("got %d budgets, want 1: %+v", len(budgets), budgets)
	}
	if budgets[0].Outcome != 250 {
		t.Errorf("budget outcome = %v, want 250", budgets[0].Outcome)
	}
}

func TestMergeHandlesDeletions(t *testing.T) {
	food := "tag-food"
	client, _ := newTestClient(t,
		diffResponse{
			ServerTimestamp: 100,
			Account:         []domain.Account{{ID: "acc-a"}},
			Budget:          []domain.Budget{{Tag: &food, Date: "2024-06-01", Outcome: 100}},
			Transaction: []domain.Transaction{
				{ID: "tx-1", Date: "2024-06-01", OutcomeAccount: "acc-a", IncomeAccount: "acc-a", Outcome: 500},
			},
		},
		diffResponse{
			ServerTimestamp: 200,
			Deletion: []deletion{
				{ID: "tx-1", Object: "transaction"},
				{ID: "acc-a", Object: "account"},
				{ID: "tag-food,2024-06-01", Object: "budget"},
			},
		},
	)

	if err := client.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync: %v", err)
	}
	if err := client.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if txs, _ := client.Transactions(context.Background()); len(txs) != 0 {
		t.Errorf("transactions = %+v, want none after deletion", txs)
	}
	if accounts, _ := client.Accounts(context.Background()); len(accounts) != 0 {
		t.Errorf("accounts = %+v, want none after deletion", accounts)
	}
	if budgets, _ := client.Budgets(context.Background()); len(budgets) != 0 {
		t.Errorf("budgets = %+v, want none after deletion", budgets)
	}
}

func TestMergeDropsTombstonedTransactions(t *testing.T) {
	client, _ := newTestClient(t,
		diffResponse{
			ServerTimestamp: 100,
			Transaction: []domain.Transaction{
				{ID: "tx-1", Date: "2024-06-01", OutcomeAccount: "acc-a", IncomeAccount: "acc-a", Outcome: 500},
			},
		},
		diffResponse{
			ServerTimestamp: 200,
			Transaction: []domain.Transaction{
				{ID: "tx-1", Deleted: true, Date: "2024-06-01", OutcomeAccount: "acc-a", IncomeAccount: "acc-a", Outcome: 500},
			},
		},
	)

	if err := client.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync: %v", err)
	}
	if err := client.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if txs, _ := client.Transactions(context.Background()); len(txs) != 0 {
		t.Errorf("transactions = %+v, want none after tombstone", txs)
	}
}

func TestDeleteTransactionsPushesTombstones(t *testing.T) {
	before := time.Now().Unix()
	client, srv := newTestClient(t,
		diffResponse{
			ServerTimestamp: 100,
			Transaction: []domain.Transaction{
				{ID: "tx-1", Changed: 50, Date: "2024-06-01", OutcomeAccount: "acc-a", IncomeAccount: "acc-a", Outcome: 500},
			},
		},
		diffResponse{ServerTimestamp: 200},
	)

	if err := client.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync: %v", err)
	}
	if err := client.DeleteTransactions(context.Background(), []string{"tx-1"}); err != nil {
		t.Fatalf("DeleteTransactions: %v", err)
	}

	reqs := srv.sentRequests()
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	pushed := reqs[1].Transaction
	if len(pushed) != 1 {
		t.Fatalf("got %d pushed transactions, want 1", len(pushed))
	}
	if pushed[0].ID != "tx-1" {
		t.Errorf("pushed id = %s, want tx-1", pushed[0].ID)
	}
	if !pushed[0].Deleted {
		t.Error("pushed transaction not tombstoned")
	}
	if pushed[0].Changed < before {
		t.Errorf("tombstone changed = %d, want refreshed (>= %d)", pushed[0].Changed, before)
	}
	if reqs[1].ServerTimestamp != 100 {
		t.Errorf("delete sent serverTimestamp %d, want 100", reqs[1].ServerTimestamp)
	}
}

func TestDeleteTransactionsUnknownID(t *testing.T) {
	client, srv := newTestClient(t, diffResponse{ServerTimestamp: 100})

	if err := client.FullSync(context.Background()); err != nil {
		t.Fatalf("FullSync: %v", err)
	}
	if err := client.DeleteTransactions(context.Background(), []string{"nope"}); err == nil {
		t.Fatal("expected error for unknown transaction id")
	}
	if got := len(srv.sentRequests()); got != 1 {
		t.Errorf("got %d requests, want 1 (no diff posted for unknown id)", got)
	}
}

func TestSyncServerError(t *testing.T) {
	httpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(httpSrv.Close)

	client := NewDiffClient(context.Background(), httpSrv.URL, "test-token")
	if err := client.Sync(context.Background()); err == nil {
		t.Fatal("expected error from 500 response")
	}
}
