package main

import (
	"net/http"

	"github.com/rs/zerolog"

	httphandlers "smsledger/internal/interfaces/http"
	"smsledger/internal/shared/config"
	"smsledger/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", httphandlers.HandleHealth)

	mux.HandleFunc("/api/messages", deps.MessageHandler.HandleMessages)

	mux.HandleFunc("/api/pending/", deps.PendingHandler.HandlePending)
	mux.HandleFunc("/api/pending/{id}", deps.PendingHandler.HandlePendingByID)

	// Reads are open; updates require the admin key.
	adminOnly := middleware.AdminKey(cfg.Admin.KeyHash)
	rules := http.HandlerFunc(deps.RuleHandler.HandleRules)
	mux.Handle("GET /api/rules/", rules)
	mux.Handle("PUT /api/rules/", adminOnly(rules))

	mux.HandleFunc("/api/devices/", deps.DeviceHandler.HandleRegisterDevice)

	handler := middleware.Tracing(mux)
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(log)(handler)
	handler = middleware.RequestID(handler)

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(handler)
		log.Info().Msg("TLS security middleware enabled (HSTS)")
	}

	return handler
}
