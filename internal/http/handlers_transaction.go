package http

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"budget/internal/core"
	"budget/internal/log"
)

// transactionResponse renders the amount with two decimals.
type transactionResponse struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Amount     string               `json:"amount"`
	Currency   core.Currency        `json:"currency"`
	Date       core.Date            `json:"date"`
	Note       string               `json:"note"`
	Type       core.TransactionType `json:"type"`
	CategoryID string               `json:"category_id"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		Name:       t.Name,
		Amount:     t.Amount.StringFixed(2),
		Currency:   t.Currency,
		Date:       t.Date,
		Note:       t.Note,
		Type:       t.Type,
		CategoryID: t.CategoryID,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func newTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionResponse(t))
	}
	return out
}

func transactionListKey(t core.TransactionType) string {
	if t == "" {
		return "transactions:all"
	}
	return "transactions:type:" + string(t)
}

// getTransactions serves a listing from cache when possible. An empty
// type lists everything. The returned slice is a copy.
func (s *Server) getTransactions(ctx context.Context, t core.TransactionType) ([]core.Transaction, error) {
	key := transactionListKey(t)
	if cached, ok := s.transactionCache.Get(key); ok {
		log.FromContext(ctx).DebugContext(ctx, "Transactions cache hit", log.FieldTransactionType, string(t), log.FieldCount, len(cached))
		return cloneList(cached), nil
	}

	var (
		txs []core.Transaction
		err error
	)
	if t == "" {
		txs, err = s.transactions.ListAll(ctx)
	} else {
		txs, err = s.transactions.ListByType(ctx, t)
	}
	if err != nil {
		return nil, err
	}
	s.transactionCache.Set(key, txs)
	return cloneList(txs), nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var txType core.TransactionType
	if r.URL.Query().Has("type") {
		txType = core.TransactionType(strings.TrimSpace(r.URL.Query().Get("type")))
		if !txType.IsValid() {
			BadRequestError("Valid transaction type is required").Write(w)
			return
		}
	}

	txs, err := s.getTransactions(r.Context(), txType)
	if err != nil {
		s.writeServiceError(w, r, err, log.OpList, transactionErrors.withFailure("Failed to fetch transactions"))
		return
	}
	NewJSONResponse().Data(newTransactionResponses(txs)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead, transactionErrors)
		return
	}
	NewJSONResponse().Data(newTransactionResponse(tx)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	tx, err := s.transactions.Create(r.Context(), ParseTransactionInput(p))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate, transactionErrors.withFailure("Failed to create transaction"))
		return
	}

	s.invalidateTransactions()
	atomic.AddInt64(&s.appMetrics.transactionsCreated, 1)
	NewJSONResponse().Status(http.StatusCreated).Data(newTransactionResponse(tx)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	tx, err := s.transactions.Update(r.Context(), r.PathValue("id"), ParseTransactionInput(p))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate, transactionErrors.withFailure("Failed to update transaction"))
		return
	}

	s.invalidateTransactions()
	NewJSONResponse().Data(newTransactionResponse(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.transactions.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpDelete, transactionErrors.withFailure("Failed to delete transaction"))
		return
	}
	if !deleted {
		NotFoundError(transactionErrors.notFound).Write(w)
		return
	}

	s.invalidateTransactions()
	NewJSONResponse().Write(w)
}
