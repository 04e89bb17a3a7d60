package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"smsledger/internal/domain/ingest"
	"smsledger/internal/domain/notification"
	"smsledger/internal/domain/rule"
	"smsledger/internal/domain/transaction"
	"smsledger/internal/infrastructure/filestore"
	httphandlers "smsledger/internal/interfaces/http"
	"smsledger/internal/shared/config"
	"smsledger/internal/shared/logger"
	"smsledger/internal/shared/middleware"
)

type stubProcessor struct{}

func (stubProcessor) Process(ctx context.Context, msg ingest.InboundMessage) (ingest.Outcome, error) {
	return ingest.Outcome{Skipped: ingest.SkipNoMatch}, nil
}

type stubRegistrar struct{}

func (stubRegistrar) RegisterDevice(ctx context.Context, params notification.RegisterDeviceParams) (*notification.DeviceToken, error) {
	return &notification.DeviceToken{ID: "dev-1", Token: params.Token, DeviceType: params.DeviceType, IsActive: true}, nil
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("route-test-admin-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}
	cfg := &config.Config{Admin: config.AdminConfig{KeyHash: string(hash)}}

	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore.New() error = %v", err)
	}
	log := logger.Nop()

	deps := &Dependencies{
		MessageHandler: httphandlers.NewMessageHandler(stubProcessor{}, nil),
		PendingHandler: httphandlers.NewPendingHandler(transaction.NewPendingService(filestore.NewPendingRepository(fs), nil, log)),
		RuleHandler:    httphandlers.NewRuleHandler(rule.NewStore(nil, rule.BundledDocument(), log)),
		DeviceHandler:  httphandlers.NewDeviceHandler(stubRegistrar{}),
	}
	return SetupRoutes(deps, cfg, log)
}

func TestSetupRoutes(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		adminKey string
		want     int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"ingest no match", http.MethodPost, "/api/messages", `{"sender":"VM-HDFCBK","message":"Your statement for May is ready to view"}`, "", http.StatusOK},
		{"pending list", http.MethodGet, "/api/pending/", "", "", http.StatusOK},
		{"pending remove unknown", http.MethodDelete, "/api/pending/nope", "", "", http.StatusNotFound},
		{"rules summary is open", http.MethodGet, "/api/rules/", "", "", http.StatusOK},
		{"rules update needs key", http.MethodPut, "/api/rules/?dryRun=true", `{"rules":[]}`, "", http.StatusUnauthorized},
		{"rules update wrong key", http.MethodPut, "/api/rules/?dryRun=true", `{"rules":[]}`, "not-the-admin-key", http.StatusForbidden},
		{"rules dry run with key", http.MethodPut, "/api/rules/?dryRun=true", `{"rules":[]}`, "route-test-admin-key", http.StatusOK},
		{"rules delete not routed", http.MethodDelete, "/api/rules/", "", "", http.StatusMethodNotAllowed},
		{"device registration", http.MethodPost, "/api/devices/", `{"token":"fcm-abc","deviceType":"android"}`, "", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.adminKey != "" {
				req.Header.Set(middleware.AdminKeyHeader, tt.adminKey)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rr.Code, tt.want, rr.Body.String())
			}
			if rr.Header().Get(middleware.RequestIDHeader) == "" {
				t.Error("response is missing the request id header")
			}
		})
	}
}
