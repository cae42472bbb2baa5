package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"parkwash/backend/services/parking-service/internal/models"
)

// TransactionService is what the transaction endpoints need.
type TransactionService interface {
	Get(ctx context.Context, id int64) (*models.Transaction, error)
	List(ctx context.Context, startDate, endDate string) ([]models.Transaction, error)
}

// NewTransactionsHandler returns GET /api/transactions handler.
func NewTransactionsHandler(svc TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		transactions, err := svc.List(r.Context(), q.Get("start_date"), q.Get("end_date"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
	}
}

// NewTransactionHandler returns GET /api/transactions/{id} handler.
func NewTransactionHandler(svc TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		transaction, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, transaction)
	}
}
