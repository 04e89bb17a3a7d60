package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smsledger/internal/domain/ingest"
	"smsledger/internal/domain/transaction"
	"smsledger/internal/interfaces/scheduler"
)

type MockProcessor struct {
	ProcessFunc func(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error)
}

func (m *MockProcessor) Process(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error) {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, msg)
	}
	return ingest.Outcome{Skipped: ingest.SkipNoMatch}, nil
}

type MockSubmitter struct {
	SubmitFunc func(job scheduler.Job) error
	submitted  []scheduler.Job
}

func (m *MockSubmitter) Submit(job scheduler.Job) error {
	if m.SubmitFunc != nil {
		if err := m.SubmitFunc(job); err != nil {
			return err
		}
	}
	m.submitted = append(m.submitted, job)
	return nil
}

func TestHandleMessages_Sync(t *testing.T) {
	matched := ingest.Outcome{
		Record:   &transaction.Record{ID: "rec-1", Type: transaction.TypeExpense, Amount: 500},
		Path:     ingest.PathRule,
		RuleName: "hdfc_account_debit",
	}

	tests := []struct {
		name           string
		method         string
		body           string
		process        func(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error)
		expectedStatus int
	}{
		{
			name:   "matched",
			method: http.MethodPost,
			body:   `{"sender":"VM-HDFCBK","message":"Rs.500 debited from your HDFC A/c XX1234"}`,
			process: func(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error) {
				if msg.Sender != "VM-HDFCBK" {
					t.Errorf("sender = %q", msg.Sender)
				}
				return matched, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "no match",
			method:         http.MethodPost,
			body:           `{"message":"Your table is booked for 8pm tonight"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty message",
			method:         http.MethodPost,
			body:           `{"sender":"X","message":""}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			method:         http.MethodPost,
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "storage failure",
			method: http.MethodPost,
			body:   `{"message":"Rs.500 debited from your HDFC A/c XX1234"}`,
			process: func(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error) {
				return ingest.Outcome{}, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "wrong method",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMessageHandler(&MockProcessor{ProcessFunc: tt.process}, nil)

			req := httptest.NewRequest(tt.method, "/api/messages", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.HandleMessages(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestHandleMessages_SyncResponseBody(t *testing.T) {
	h := NewMessageHandler(&MockProcessor{ProcessFunc: func(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error) {
		return ingest.Outcome{
			Record:   &transaction.Record{ID: "rec-1", Type: transaction.TypeIncome, Amount: 250},
			Path:     ingest.PathLegacy,
		}, nil
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"message":"INR 250 credited to your account"}`))
	rr := httptest.NewRecorder()
	h.HandleMessages(rr, req)

	var out ingest.Outcome
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Path != ingest.PathLegacy || out.Record == nil || out.Record.Amount != 250 {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestHandleMessages_Async(t *testing.T) {
	tests := []struct {
		name           string
		pool           *MockSubmitter
		nilPool        bool
		expectedStatus int
	}{
		{"queued", &MockSubmitter{}, false, http.StatusAccepted},
		{"queue full", &MockSubmitter{SubmitFunc: func(job scheduler.Job) error { return scheduler.ErrQueueFull }}, false, http.StatusServiceUnavailable},
		{"pool closed", &MockSubmitter{SubmitFunc: func(job scheduler.Job) error { return scheduler.ErrPoolClosed }}, false, http.StatusServiceUnavailable},
		{"async disabled", nil, true, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h *MessageHandler
			if tt.nilPool {
				h = NewMessageHandler(&MockProcessor{}, nil)
			} else {
				h = NewMessageHandler(&MockProcessor{}, tt.pool)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/messages?async=true", strings.NewReader(`{"sender":"AX-SBIINB","message":"Rs 120 debited via UPI"}`))
			rr := httptest.NewRecorder()
			h.HandleMessages(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
			if tt.expectedStatus != http.StatusAccepted {
				return
			}

			var resp QueuedResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.ID == "" || resp.Status != "queued" {
				t.Errorf("unexpected response: %+v", resp)
			}
			if len(tt.pool.submitted) != 1 || tt.pool.submitted[0].Key() != resp.ID {
				t.Errorf("job not submitted with response id")
			}
		})
	}
}
