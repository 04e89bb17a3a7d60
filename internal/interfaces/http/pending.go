package http

import (
	"context"
	"errors"
	"net/http"

	"smsledger/internal/domain/transaction"
	"smsledger/internal/shared/logger"
)

// PendingManager is implemented by transaction.PendingService.
type PendingManager interface {
	List(ctx context.Context) ([]*transaction.Record, error)
	Remove(ctx context.Context, id string) (*transaction.Record, error)
	Restore(ctx context.Context, rec *transaction.Record) error
	Clear(ctx context.Context) (int, error)
}

type PendingHandler struct {
	service PendingManager
}

func NewPendingHandler(service PendingManager) *PendingHandler {
	return &PendingHandler{service: service}
}

type ClearResponse struct {
	Removed int `json:"removed"`
}

// HandlePending routes /api/pending/ by method.
func (h *PendingHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleRestore(w, r)
	case http.MethodDelete:
		h.handleClear(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePendingByID handles DELETE /api/pending/{id}
func (h *PendingHandler) HandlePendingByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Transaction ID is required", http.StatusBadRequest)
		return
	}

	rec, err := h.service.Remove(r.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrPendingNotFound) {
			http.Error(w, "Pending transaction not found", http.StatusNotFound)
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("id", id).Msg("Error removing pending transaction")
		http.Error(w, "Failed to remove pending transaction", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, rec)
}

func (h *PendingHandler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Error listing pending transactions")
		http.Error(w, "Failed to list pending transactions", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*transaction.Record{}
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (h *PendingHandler) handleRestore(w http.ResponseWriter, r *http.Request) {
	var rec transaction.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Restore(r.Context(), &rec); err != nil {
		switch {
		case errors.Is(err, transaction.ErrMissingID),
			errors.Is(err, transaction.ErrInvalidType),
			errors.Is(err, transaction.ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log := logger.FromContext(r.Context())
			log.Error().Err(err).Str("id", rec.ID).Msg("Error restoring pending transaction")
			http.Error(w, "Failed to restore pending transaction", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, &rec)
}

func (h *PendingHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Clear(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Error clearing pending transactions")
		http.Error(w, "Failed to clear pending transactions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, ClearResponse{Removed: n})
}
