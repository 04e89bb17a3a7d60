package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"smsledger/internal/domain/ingest"
	"smsledger/internal/interfaces/scheduler"
	"smsledger/internal/shared/logger"
)

// JobSubmitter is the worker pool seen from the handler.
type JobSubmitter interface {
	Submit(job scheduler.Job) error
}

type MessageHandler struct {
	processor scheduler.MessageProcessor
	pool      JobSubmitter
}

// NewMessageHandler creates the ingest handler. pool may be nil, which
// disables ?async=true.
func NewMessageHandler(processor scheduler.MessageProcessor, pool JobSubmitter) *MessageHandler {
	return &MessageHandler{processor: processor, pool: pool}
}

type MessageRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type QueuedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleMessages handles POST /api/messages
func (h *MessageHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	msg := ingest.InboundMessage{Sender: req.Sender, Body: req.Message}
	if msg.Body == "" {
		http.Error(w, ingest.ErrEmptyMessage.Error(), http.StatusBadRequest)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		h.enqueue(w, r, msg)
		return
	}

	log := logger.FromContext(r.Context())
	out, err := h.processor.Process(r.Context(), msg)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Error processing message")
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if out.Matched() {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, out)
}

func (h *MessageHandler) enqueue(w http.ResponseWriter, r *http.Request, msg ingest.InboundMessage) {
	if h.pool == nil {
		http.Error(w, "Async processing is not enabled", http.StatusServiceUnavailable)
		return
	}

	id := uuid.NewString()
	if err := h.pool.Submit(scheduler.NewMessageJob(id, msg, h.processor)); err != nil {
		if errors.Is(err, scheduler.ErrQueueFull) {
			w.Header().Set("Retry-After", "1")
		}
		http.Error(w, "Message queue unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, r, http.StatusAccepted, QueuedResponse{ID: id, Status: "queued"})
}
