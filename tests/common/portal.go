package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bobmcallan/filings-portal/internal/app"
	"github.com/bobmcallan/filings-portal/internal/config"
	portalcommon "github.com/bobmcallan/filings-portal/internal/common"
	"github.com/bobmcallan/filings-portal/internal/server"
)

// FakeBackend serves canned filings API responses and records what it was asked.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

// NewFakeBackend starts a backend that answers every ticker with two filings.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/visualize", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		fb.record("visualize " + q.Get("ticker") + " " + q.Get("concept"))
		writeJSON(w, map[string]interface{}{
			"data": []map[string]interface{}{
				{"type": "scatter", "name": q.Get("concept"), "x": []string{"2022", "2023"}, "y": []int{10, 12}},
			},
			"layout": map[string]interface{}{"title": q.Get("ticker") + " " + q.Get("concept")},
		})
	})
	mux.HandleFunc("GET /api/filing-dates/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		fb.record("filing-dates " + r.PathValue("ticker"))
		writeJSON(w, []string{"2023", "2022"})
	})
	mux.HandleFunc("POST /api/filing-insight", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Ticker     string `json:"ticker"`
			FilingYear string `json:"filing_year"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		fb.record("filing-insight " + req.Ticker + " " + req.FilingYear)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"revenue":["grew strongly","driven by services"],"risk":["supply constraints"]}`))
	})

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

func (fb *FakeBackend) record(req string) {
	fb.mu.Lock()
	fb.requests = append(fb.requests, req)
	fb.mu.Unlock()
}

// Requests returns the backend calls seen so far.
func (fb *FakeBackend) Requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]string, len(fb.requests))
	copy(out, fb.requests)
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// StartPortal runs the portal in-process against backend and returns its URL.
func StartPortal(t *testing.T, backend *FakeBackend) string {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.API.URL = backend.URL

	application, err := app.New(cfg, portalcommon.NewSilentLogger())
	if err != nil {
		t.Fatalf("failed to start portal: %v", err)
	}
	t.Cleanup(func() { application.Close() })

	srv := httptest.NewServer(server.New(application).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}
