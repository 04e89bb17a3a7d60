package http

import (
	"context"
	"errors"
	"net/http"

	"smsledger/internal/domain/notification"
	"smsledger/internal/shared/logger"
)

// DeviceRegistrar is implemented by notification.Service.
type DeviceRegistrar interface {
	RegisterDevice(ctx context.Context, params notification.RegisterDeviceParams) (*notification.DeviceToken, error)
}

type DeviceHandler struct {
	service DeviceRegistrar
}

func NewDeviceHandler(service DeviceRegistrar) *DeviceHandler {
	return &DeviceHandler{service: service}
}

type RegisterDeviceRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"deviceType"`
}

// HandleRegisterDevice handles POST /api/devices/
func (h *DeviceHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterDeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.service.RegisterDevice(r.Context(), notification.RegisterDeviceParams{
		Token:      req.Token,
		DeviceType: req.DeviceType,
	})
	if err != nil {
		if errors.Is(err, notification.ErrInvalidToken) || errors.Is(err, notification.ErrInvalidDeviceType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Error registering device")
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusCreated, token)
}
