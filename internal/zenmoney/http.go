package zenmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

// DefaultAPIURL is the production ZenMoney API endpoint.
const DefaultAPIURL = "https://api.zenmoney.ru"

// diffPath is the v8 diff endpoint every sync and write goes through.
const diffPath = "/v8/diff/"

// DiffClient implements Client over the ZenMoney v8 diff protocol. It keeps
// a synced snapshot in memory, guarded by an RWMutex: reads copy under
// RLock, a sync merges the server response under Lock. Network calls happen
// outside the lock.
type DiffClient struct {
	apiURL     string
	httpClient *http.Client

	mu              sync.RWMutex
	serverTimestamp int64
	accounts        map[string]domain.Account
	tags            map[string]domain.Tag
	instruments     map[int]domain.Instrument
	merchants       map[string]domain.Merchant
	budgets         map[string]domain.Budget
	reminders       map[string]domain.Reminder
	transactions    map[string]domain.Transaction
}

// NewDiffClient creates a client authenticated with the given OAuth bearer
// token. An empty apiURL falls back to the production endpoint.
func NewDiffClient(ctx context.Context, apiURL, token string) *DiffClient {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, src)
	httpClient.Timeout = 30 * time.Second

	c := &DiffClient{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		httpClient: httpClient,
	}
	c.resetLocked()
	return c
}

// resetLocked reinitializes the local snapshot. Callers hold mu or own the
// client exclusively.
func (c *DiffClient) resetLocked() {
	c.serverTimestamp = 0
	c.accounts = make(map[string]domain.Account)
	c.tags = make(map[string]domain.Tag)
	c.instruments = make(map[int]domain.Instrument)
	c.merchants = make(map[string]domain.Merchant)
	c.budgets = make(map[string]domain.Budget)
	c.reminders = make(map[string]domain.Reminder)
	c.transactions = make(map[string]domain.Transaction)
}

// diffRequest is the v8 diff request body. Entity slices carry local
// changes to push; empty slices are omitted.
type diffRequest struct {
	CurrentClientTimestamp int64                `json:"currentClientTimestamp"`
	ServerTimestamp        int64                `json:"serverTimestamp"`
	ForceFetch             []string             `json:"forceFetch,omitempty"`
	Transaction            []domain.Transaction `json:"transaction,omitempty"`
}

// deletion marks a server-side entity removal inside a diff response.
type deletion struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Stamp  int64  `json:"stamp"`
	User   int    `json:"user"`
}

// diffResponse is the v8 diff response body: everything changed since the
// client's serverTimestamp.
type diffResponse struct {
	ServerTimestamp int64                `json:"serverTimestamp"`
	Instrument      []domain.Instrument  `json:"instrument,omitempty"`
	Account         []domain.Account     `json:"account,omitempty"`
	Tag             []domain.Tag         `json:"tag,omitempty"`
	Merchant        []domain.Merchant    `json:"merchant,omitempty"`
	Budget          []domain.Budget      `json:"budget,omitempty"`
	Reminder        []domain.Reminder    `json:"reminder,omitempty"`
	Transaction     []domain.Transaction `json:"transaction,omitempty"`
	Deletion        []deletion           `json:"deletion,omitempty"`
}

// diff posts one request to the diff endpoint and merges the response into
// the local snapshot.
func (c *DiffClient) diff(ctx context.Context, req diffRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("diff: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+diffPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("diff: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("diff: server returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var diffResp diffResponse
	if err := json.NewDecoder(resp.Body).Decode(&diffResp); err != nil {
		return fmt.Errorf("diff: decode response: %w", err)
	}

	c.merge(&diffResp)
	return nil
}

// merge folds a diff response into the snapshot.
func (c *DiffClient) merge(resp *diffResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.serverTimestamp = resp.ServerTimestamp
	for _, instr := range resp.Instrument {
		c.instruments[instr.ID] = instr
	}
	for _, acc := range resp.Account {
		c.accounts[acc.ID] = acc
	}
	for _, tag := range resp.Tag {
		c.tags[tag.ID] = tag
	}
	for _, m := range resp.Merchant {
		c.merchants[m.ID] = m
	}
	for _, b := range resp.Budget {
		c.budgets[budgetKey(b.Tag, b.Date)] = b
	}
	for _, r := range resp.Reminder {
		c.reminders[r.ID] = r
	}
	for _, tx := range resp.Transaction {
		if tx.Deleted {
			delete(c.transactions, tx.ID)
			continue
		}
		c.transactions[tx.ID] = tx
	}
	for _, del := range resp.Deletion {
		switch del.Object {
		case "transaction":
			delete(c.transactions, del.ID)
		case "account":
			delete(c.accounts, del.ID)
		case "tag":
			delete(c.tags, del.ID)
		case "merchant":
			delete(c.merchants, del.ID)
		case "reminder":
			delete(c.reminders, del.ID)
		case "budget":
			delete(c.budgets, del.ID)
		}
	}
}

// budgetKey identifies a budget in the snapshot. Budgets carry no id of
// their own; the server keys them by tag and month, so deletion entries use
// the same "tag,date" form.
func budgetKey(tag *string, date string) string {
	t := ""
	if tag != nil {
		t = *tag
	}
	return t + "," + date
}

// Sync implements Client: an incremental sync fetching only changes since
// the last one.
func (c *DiffClient) Sync(ctx context.Context) error {
	c.mu.RLock()
	since := c.serverTimestamp
	c.mu.RUnlock()

	return c.diff(ctx, diffRequest{
		CurrentClientTimestamp: time.Now().Unix(),
		ServerTimestamp:        since,
	})
}

// FullSync implements Client: clears local data and re-downloads everything.
func (c *DiffClient) FullSync(ctx context.Context) error {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	return c.diff(ctx, diffRequest{
		CurrentClientTimestamp: time.Now().Unix(),
		ServerTimestamp:        0,
	})
}

// PushTransactions implements Client. The server echoes accepted entities
// back in the diff response, which merge folds into the snapshot.
func (c *DiffClient) PushTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	c.mu.RLock()
	since := c.serverTimestamp
	c.mu.RUnlock()

	err := c.diff(ctx, diffRequest{
		CurrentClientTimestamp: time.Now().Unix(),
		ServerTimestamp:        since,
		Transaction:            txs,
	})
	if err != nil {
		return fmt.Errorf("push transactions: %w", err)
	}
	return nil
}

// DeleteTransactions implements Client. ZenMoney deletes by pushing
// tombstoned copies through the diff endpoint.
func (c *DiffClient) DeleteTransactions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	now := time.Now().Unix()
	tombstones := make([]domain.Transaction, 0, len(ids))
	c.mu.RLock()
	for _, id := range ids {
		tx, ok := c.transactions[id]
		if !ok {
			c.mu.RUnlock()
			return fmt.Errorf("delete transactions: unknown transaction %q", id)
		}
		cp := *tx.Clone()
		cp.Deleted = true
		cp.Changed = now
		tombstones = append(tombstones, cp)
	}
	since := c.serverTimestamp
	c.mu.RUnlock()

	err := c.diff(ctx, diffRequest{
		CurrentClientTimestamp: now,
		ServerTimestamp:        since,
		Transaction:            tombstones,
	})
	if err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}

// Accounts implements Client.
func (c *DiffClient) Accounts(ctx context.Context) ([]domain.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Account, 0, len(c.accounts))
	for _, acc := range c.accounts {
		out = append(out, acc)
	}
	return out, nil
}

// Tags implements Client.
func (c *DiffClient) Tags(ctx context.Context) ([]domain.Tag, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Tag, 0, len(c.tags))
	for _, tag := range c.tags {
		out = append(out, tag)
	}
	return out, nil
}

// Instruments implements Client.
func (c *DiffClient) Instruments(ctx context.Context) ([]domain.Instrument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Instrument, 0, len(c.instruments))
	for _, instr := range c.instruments {
		out = append(out, instr)
	}
	return out, nil
}

// Merchants implements Client.
func (c *DiffClient) Merchants(ctx context.Context) ([]domain.Merchant, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Merchant, 0, len(c.merchants))
	for _, m := range c.merchants {
		out = append(out, m)
	}
	return out, nil
}

// Budgets implements Client.
func (c *DiffClient) Budgets(ctx context.Context) ([]domain.Budget, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Budget, 0, len(c.budgets))
	for _, b := range c.budgets {
		out = append(out, b)
	}
	return out, nil
}

// Reminders implements Client.
func (c *DiffClient) Reminders(ctx context.Context) ([]domain.Reminder, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Reminder, 0, len(c.reminders))
	for _, r := range c.reminders {
		out = append(out, r)
	}
	return out, nil
}

// Transactions implements Client.
func (c *DiffClient) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Transaction, 0, len(c.transactions))
	for _, tx := range c.transactions {
		out = append(out, tx)
	}
	return out, nil
}

// Ensure DiffClient implements the ledger client interface.
var _ Client = (*DiffClient)(nil)
