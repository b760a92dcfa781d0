package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/bobmcallan/filings-portal/internal/common"
	"github.com/bobmcallan/filings-portal/internal/components"
	"github.com/bobmcallan/filings-portal/internal/config"
	"github.com/bobmcallan/filings-portal/internal/dashboard"
)

// Form fields posted back by the dashboard controls.
const (
	FieldTicker  = "ticker"
	FieldConcept = "concept"
	FieldDate    = "date"
)

// DashboardHandler serves the filings dashboard and its control actions.
type DashboardHandler struct {
	logger    *common.Logger
	templates *template.Template
	sessions  *dashboard.Sessions
	devMode   bool
	settle    time.Duration
}

// NewDashboardHandler creates a new dashboard handler. settle bounds how long
// a request waits for backend fetches before rendering what has landed; the
// page polls the body fragment for anything still in flight.
func NewDashboardHandler(logger *common.Logger, devMode bool, sessions *dashboard.Sessions, settle time.Duration) *DashboardHandler {
	pagesDir := FindPagesDir()

	templates := template.Must(template.ParseGlob(filepath.Join(pagesDir, "*.html")))
	template.Must(templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")))

	return &DashboardHandler{
		logger:    logger,
		templates: templates,
		sessions:  sessions,
		devMode:   devMode,
		settle:    settle,
	}
}

// ServeHTTP handles GET /. Every page load starts a new session with the
// default selections.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if r.Method == http.MethodHead {
		// Uptime monitors and link checkers must not allocate sessions.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := h.settled(r)
	defer cancel()

	c, err := h.sessions.Create(ctx)
	if err != nil && h.logger != nil {
		h.logger.Debug().Str("session", c.ID()).Str("error", err.Error()).Msg("initial fetches still running")
	}

	h.render(w, r, c, "dashboard.html")
}

// HandleSelect returns a handler for POST /dashboard/{id}/{field}.
func (h *DashboardHandler) HandleSelect(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !RequireMethod(w, r, http.MethodPost) {
			return
		}
		c, ok := h.lookup(w, r)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid form")
			return
		}
		value := r.FormValue("value")

		ctx, cancel := h.settled(r)
		defer cancel()

		switch field {
		case FieldTicker:
			err := c.SelectTicker(ctx, value)
			if !h.checkSelect(w, err) {
				return
			}
		case FieldConcept:
			err := c.SelectConcept(ctx, value)
			if !h.checkSelect(w, err) {
				return
			}
		case FieldDate:
			if !h.checkSelect(w, c.SelectDate(value)) {
				return
			}
		default:
			http.NotFound(w, r)
			return
		}

		h.renderUpdate(w, r, c)
	}
}

// HandleInsight handles POST /dashboard/{id}/insight.
func (h *DashboardHandler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.settled(r)
	defer cancel()

	if err := c.RequestInsight(ctx); err != nil && h.logger != nil {
		h.logger.Debug().Str("session", c.ID()).Str("error", err.Error()).Msg("insight still running at response time")
	}

	h.renderUpdate(w, r, c)
}

// HandleBody handles GET /dashboard/{id}/body. It renders the current state
// without waiting, for pages polling fetches that outlived the settle window.
func (h *DashboardHandler) HandleBody(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.render(w, r, c, "dashboard-body")
}

// HandleState handles GET /dashboard/{id}.
func (h *DashboardHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, c.State())
}

// HandleDelete handles DELETE /dashboard/{id}.
func (h *DashboardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHandler) settled(r *http.Request) (context.Context, context.CancelFunc) {
	if h.settle <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.settle)
}

func (h *DashboardHandler) lookup(w http.ResponseWriter, r *http.Request) (*dashboard.Controller, bool) {
	c, ok := h.sessions.Get(r.PathValue("id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "dashboard session not found")
		return nil, false
	}
	return c, true
}

// checkSelect maps a selection error to a response. Returns false if a
// response was written.
func (h *DashboardHandler) checkSelect(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, dashboard.ErrUnknownOption):
		WriteError(w, http.StatusBadRequest, err.Error())
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away or the settle window closed; fetches continue in
		// the background and land in state when they resolve.
		return true
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
		return false
	}
}

// renderUpdate answers a control action: the body fragment for fetch()
// callers, the whole page otherwise.
func (h *DashboardHandler) renderUpdate(w http.ResponseWriter, r *http.Request, c *dashboard.Controller) {
	if isFragmentRequest(r) {
		h.render(w, r, c, "dashboard-body")
		return
	}
	h.render(w, r, c, "dashboard.html")
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, c *dashboard.Controller, name string) {
	data, err := h.viewData(c)
	if err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = h.templates.ExecuteTemplate(w, name, data)
	}
	if err != nil {
		if h.logger != nil {
			h.logger.Error().Str("template", name).Str("error", err.Error()).Msg("failed to render dashboard")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *DashboardHandler) viewData(c *dashboard.Controller) (map[string]interface{}, error) {
	// Read pending before state so a fetch landing in between still
	// triggers another poll.
	pending := c.Pending()
	state := c.State()
	opts := c.Options()

	graph, err := components.Graph(state.Graph)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"Page":          "dashboard",
		"DevMode":       h.devMode,
		"PortalVersion": config.GetVersion(),
		"SessionID":     c.ID(),
		"Pending":       pending,
		"Ticker":        components.Selector("Select a Company:", FieldTicker, opts.Tickers, state.Ticker),
		"Concepts":      components.ConceptButtons(FieldConcept, opts.Concepts, state.Concept),
		"Graph":         graph,
		"Dates":         components.DateSelector(FieldDate, state.Dates, state.SelectedDate),
		"Insight":       components.InsightPanel(state.Insight, components.Capitalize),
	}, nil
}
