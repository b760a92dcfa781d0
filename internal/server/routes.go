package server

import (
	"net/http"

	"github.com/bobmcallan/filings-portal/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	dash := s.app.DashboardHandler

	// Dashboard page (new session per load)
	mux.Handle("/", dash)

	// Static files (CSS, JS)
	mux.Handle("/static/", s.app.StaticHandler)

	// Dashboard session routes
	mux.HandleFunc("/dashboard/{id}", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, dash.HandleState, dash.HandleDelete)
	})
	mux.HandleFunc("/dashboard/{id}/ticker", RouteAction(dash.HandleSelect(handlers.FieldTicker)))
	mux.HandleFunc("/dashboard/{id}/concept", RouteAction(dash.HandleSelect(handlers.FieldConcept)))
	mux.HandleFunc("/dashboard/{id}/date", RouteAction(dash.HandleSelect(handlers.FieldDate)))
	mux.HandleFunc("/dashboard/{id}/insight", RouteAction(dash.HandleInsight))
	mux.HandleFunc("/dashboard/{id}/body", func(w http.ResponseWriter, r *http.Request) {
		RouteResourceItem(w, r, dash.HandleBody, nil)
	})

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)
	mux.HandleFunc("/api/server-health", s.app.ServerHealthHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
