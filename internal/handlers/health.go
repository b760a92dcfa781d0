package handlers

import (
	"net/http"

	"github.com/bobmcallan/filings-portal/internal/common"
)

// SessionCounter reports how many dashboard sessions are live.
type SessionCounter interface {
	Len() int
}

// HealthHandler reports liveness and the live session count.
type HealthHandler struct {
	logger   *common.Logger
	sessions SessionCounter
}

// NewHealthHandler creates a new health handler. sessions may be nil.
func NewHealthHandler(logger *common.Logger, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{logger: logger, sessions: sessions}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	body := map[string]interface{}{
		"status": "ok",
	}
	if h.sessions != nil {
		body["sessions"] = h.sessions.Len()
	}
	WriteJSON(w, http.StatusOK, body)
}
