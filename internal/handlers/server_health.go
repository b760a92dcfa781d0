package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bobmcallan/filings-portal/internal/common"
)

// Pinger checks whether an upstream answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerHealthHandler reports whether the filings backend is reachable.
type ServerHealthHandler struct {
	logger  *common.Logger
	backend Pinger
}

// NewServerHealthHandler creates a new server health handler.
func NewServerHealthHandler(logger *common.Logger, backend Pinger) *ServerHealthHandler {
	return &ServerHealthHandler{logger: logger, backend: backend}
}

// ServeHTTP handles GET /api/server-health.
func (h *ServerHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		if h.logger != nil {
			h.logger.Warn().Str("error", err.Error()).Msg("filings backend unreachable")
		}
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
