package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"smsledger/internal/domain/rule"
	"smsledger/internal/shared/logger"
)

// RuleAdmin is implemented by rule.Store.
type RuleAdmin interface {
	Rules(ctx context.Context) *rule.Snapshot
	SaveNewRules(ctx context.Context, raw []byte) (*rule.Snapshot, error)
}

type RuleHandler struct {
	store RuleAdmin
}

func NewRuleHandler(store RuleAdmin) *RuleHandler {
	return &RuleHandler{store: store}
}

type SkippedRuleResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error"`
}

type RuleSetResponse struct {
	Version   uint64                `json:"version,omitempty"`
	Source    string                `json:"source,omitempty"`
	LoadedAt  *time.Time            `json:"loadedAt,omitempty"`
	Rules     []string              `json:"rules"`
	Inactive  int                   `json:"inactive"`
	Skipped   []SkippedRuleResponse `json:"skipped"`
	LoadError string                `json:"loadError,omitempty"`
}

func toRuleSetResponse(rules []*rule.ParsingRule, skipped []*rule.EntryError, inactive int) RuleSetResponse {
	resp := RuleSetResponse{
		Rules:    make([]string, len(rules)),
		Inactive: inactive,
		Skipped:  make([]SkippedRuleResponse, len(skipped)),
	}
	for i, r := range rules {
		resp.Rules[i] = r.Name
	}
	for i, s := range skipped {
		resp.Skipped[i] = SkippedRuleResponse{Index: s.Index, Name: s.Name, Error: s.Err.Error()}
	}
	return resp
}

func toSnapshotResponse(snap *rule.Snapshot) RuleSetResponse {
	resp := toRuleSetResponse(snap.Rules, snap.Skipped, snap.Inactive)
	resp.Version = snap.Version
	resp.Source = string(snap.Source)
	loadedAt := snap.LoadedAt
	resp.LoadedAt = &loadedAt
	if snap.LoadErr != nil {
		resp.LoadError = snap.LoadErr.Error()
	}
	return resp
}

// HandleRules routes /api/rules/ by method. PUT must sit behind the admin key
// middleware.
func (h *RuleHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, r, http.StatusOK, toSnapshotResponse(h.store.Rules(r.Context())))
	case http.MethodPut:
		h.handleUpdate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleUpdate stores the body verbatim as the new rule document. With
// ?dryRun=true the document is only parsed and the report returned.
func (h *RuleHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dryRun")); dryRun {
		parsed, err := rule.Validate(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, r, http.StatusOK, toRuleSetResponse(parsed.Rules, parsed.Skipped, parsed.Inactive))
		return
	}

	snap, err := h.store.SaveNewRules(r.Context(), raw)
	if err != nil {
		if errors.Is(err, rule.ErrEmptyDocument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Error saving rule document")
		http.Error(w, "Failed to save rules", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, toSnapshotResponse(snap))
}
