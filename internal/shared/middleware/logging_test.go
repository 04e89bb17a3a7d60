package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"smsledger/internal/shared/logger"
)

func TestResponseWriter_WriteHeaderIdempotent(t *testing.T) {
	wrapped := wrapResponseWriter(httptest.NewRecorder())

	if wrapped.statusOrOK() != http.StatusOK {
		t.Errorf("statusOrOK() before write = %d, want 200", wrapped.statusOrOK())
	}

	wrapped.WriteHeader(http.StatusNotFound)
	wrapped.WriteHeader(http.StatusOK)

	if wrapped.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want %d", wrapped.Status(), http.StatusNotFound)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	var fromCtx bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logger.FromContext(r.Context())
		l.Info().Msg("inside")
		fromCtx = true
		w.WriteHeader(http.StatusAccepted)
	})

	handler := RequestID(Logging(base)(next))
	req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !fromCtx || rr.Code != http.StatusAccepted {
		t.Fatalf("handler not run as expected, status %d", rr.Code)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var access map[string]any
	if err := json.Unmarshal(lines[1], &access); err != nil {
		t.Fatalf("access line is not JSON: %v", err)
	}
	if access["request_id"] != "req-1" || access["path"] != "/api/messages" {
		t.Errorf("unexpected access fields: %v", access)
	}
	if access["status"] != float64(http.StatusAccepted) {
		t.Errorf("status field = %v", access["status"])
	}
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Fatal("expected a generated request id")
	}
	if rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match context id %q", rr.Header().Get(RequestIDHeader), seen)
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.WithContext(req.Context(), zerolog.Nop()))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
}
