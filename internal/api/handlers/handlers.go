package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/zenmoney-bridge/internal/api/middleware"
	"github.com/dvloznov/zenmoney-bridge/internal/bulk"
	"github.com/dvloznov/zenmoney-bridge/internal/preparations"
	"github.com/dvloznov/zenmoney-bridge/internal/suggest"
	"github.com/dvloznov/zenmoney-bridge/internal/view"
	"github.com/dvloznov/zenmoney-bridge/internal/zenmoney"
)

// Service is the bridge surface the HTTP layer depends on.
type Service interface {
	Sync(ctx context.Context) error
	FullSync(ctx context.Context) error
	ListAccounts(ctx context.Context, activeOnly bool) ([]view.Account, error)
	ListTransactions(ctx context.Context, filter zenmoney.TransactionFilter) ([]view.Transaction, error)
	ListTags(ctx context.Context) ([]view.Tag, error)
	ListMerchants(ctx context.Context) ([]view.Merchant, error)
	ListBudgets(ctx context.Context, month string) ([]view.Budget, error)
	ListReminders(ctx context.Context) ([]view.Reminder, error)
	ListInstruments(ctx context.Context) ([]view.Instrument, error)
	FindAccount(ctx context.Context, title string) (*view.Account, error)
	FindTag(ctx context.Context, title string) (*view.Tag, error)
	GetInstrument(ctx context.Context, id int) (*view.Instrument, error)
	CreateTransaction(ctx context.Context, spec *bulk.CreateSpec) (*view.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (*view.DeletedTransaction, error)
	Prepare(ctx context.Context, ops []bulk.Operation) (*view.PrepareResult, error)
	Execute(ctx context.Context, preparationID string) (*view.ExecuteResult, error)
}

// Suggester proposes category tags for a transaction.
type Suggester interface {
	Suggest(ctx context.Context, input suggest.Input, tags []view.Tag) ([]view.Suggestion, error)
}

// LedgerHandler handles all ledger endpoints.
type LedgerHandler struct {
	svc       Service
	suggester Suggester
	log       zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler. suggester may be nil,
// which disables the suggest endpoint.
func NewLedgerHandler(svc Service, suggester Suggester, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		svc:       svc,
		suggester: suggester,
		log:       log,
	}
}

// writeServiceError maps bridge errors onto HTTP status codes.
func (h *LedgerHandler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case bulk.IsInvalidInput(err):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case bulk.IsNotFound(err) || errors.Is(err, preparations.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg(fallback)
		middleware.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// Sync handles POST /api/sync
func (h *LedgerHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Sync(r.Context()); err != nil {
		h.writeServiceError(w, err, "Failed to sync")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

// FullSync handles POST /api/sync/full
func (h *LedgerHandler) FullSync(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.FullSync(r.Context()); err != nil {
		h.writeServiceError(w, err, "Failed to full-sync")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

// ListAccounts handles GET /api/accounts
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	accounts, err := h.svc.ListAccounts(r.Context(), activeOnly)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list accounts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// FindAccount handles GET /api/accounts/find
func (h *LedgerHandler) FindAccount(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	account, err := h.svc.FindAccount(r.Context(), title)
	if err != nil {
		h.writeServiceError(w, err, "Failed to find account")
		return
	}
	if account == nil {
		middleware.WriteError(w, http.StatusNotFound, "Account not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, account)
}

// ListTransactions handles GET /api/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := zenmoney.TransactionFilter{
		DateFrom:   query.Get("date_from"),
		DateTo:     query.Get("date_to"),
		AccountID:  query.Get("account_id"),
		TagID:      query.Get("tag_id"),
		Payee:      query.Get("payee"),
		MerchantID: query.Get("merchant_id"),
	}

	if s := query.Get("min_amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid min_amount")
			return
		}
		filter.MinAmount = &v
	}
	if s := query.Get("max_amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid max_amount")
			return
		}
		filter.MaxAmount = &v
	}
	if s := query.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}

	transactions, err := h.svc.ListTransactions(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var spec bulk.CreateSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.svc.CreateTransaction(r.Context(), &spec)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		middleware.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	deleted, err := h.svc.DeleteTransaction(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, deleted)
}

// ListTags handles GET /api/tags
func (h *LedgerHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list tags")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tags":  tags,
		"count": len(tags),
	})
}

// FindTag handles GET /api/tags/find
func (h *LedgerHandler) FindTag(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	tag, err := h.svc.FindTag(r.Context(), title)
	if err != nil {
		h.writeServiceError(w, err, "Failed to find tag")
		return
	}
	if tag == nil {
		middleware.WriteError(w, http.StatusNotFound, "Tag not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tag)
}

// ListMerchants handles GET /api/merchants
func (h *LedgerHandler) ListMerchants(w http.ResponseWriter, r *http.Request) {
	merchants, err := h.svc.ListMerchants(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list merchants")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"merchants": merchants,
		"count":     len(merchants),
	})
}

// ListBudgets handles GET /api/budgets
func (h *LedgerHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.svc.ListBudgets(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to list budgets")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"budgets": budgets,
		"count":   len(budgets),
	})
}

// ListReminders handles GET /api/reminders
func (h *LedgerHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.svc.ListReminders(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list reminders")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

// ListInstruments handles GET /api/instruments
func (h *LedgerHandler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.svc.ListInstruments(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list instruments")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"instruments": instruments,
		"count":       len(instruments),
	})
}

// GetInstrument handles GET /api/instruments/{id}
func (h *LedgerHandler) GetInstrument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid instrument id")
		return
	}

	instrument, err := h.svc.GetInstrument(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get instrument")
		return
	}
	if instrument == nil {
		middleware.WriteError(w, http.StatusNotFound, "Instrument not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, instrument)
}

// SuggestTags handles POST /api/suggest
func (h *LedgerHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	if h.suggester == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Suggestions are not configured")
		return
	}

	var input suggest.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if input.Payee == "" && input.Comment == "" {
		middleware.WriteError(w, http.StatusBadRequest, "payee or comment is required")
		return
	}

	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list tags")
		return
	}

	suggestions, err := h.suggester.Suggest(r.Context(), input, tags)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to suggest tags")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to suggest tags")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// PrepareBulk handles POST /api/bulk/prepare
func (h *LedgerHandler) PrepareBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Operations []bulk.Operation `json:"operations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Operations) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "operations is required")
		return
	}

	result, err := h.svc.Prepare(r.Context(), req.Operations)
	if err != nil {
		h.writeServiceError(w, err, "Failed to prepare bulk batch")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ExecuteBulk handles POST /api/bulk/execute
func (h *LedgerHandler) ExecuteBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PreparationID string `json:"preparation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PreparationID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "preparation_id is required")
		return
	}

	result, err := h.svc.Execute(r.Context(), req.PreparationID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to execute bulk batch")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}
