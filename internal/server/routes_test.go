package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/bobmcallan/filings-portal/internal/app"
	"github.com/bobmcallan/filings-portal/internal/common"
	"github.com/bobmcallan/filings-portal/internal/config"
)

// newFakeBackend serves canned filings responses.
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/visualize", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"name":"` + r.URL.Query().Get("concept") + `","x":["2023"],"y":[1]}],"layout":{"title":"` + r.URL.Query().Get("ticker") + `"}}`))
	})
	mux.HandleFunc("/api/filing-dates/{ticker}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["2023","2022"]`))
	})
	mux.HandleFunc("/api/filing-insight", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"outlook":["margins expanding"]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.API.URL = newFakeBackend(t).URL

	application, err := app.New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}

	t.Cleanup(func() {
		application.Close()
	})

	return application
}

var sessionIDPattern = regexp.MustCompile(`/dashboard/([0-9a-f-]{36})/`)

// openDashboard loads the page and returns the session ID and CSRF token.
func openDashboard(t *testing.T, h http.Handler) (string, string) {
	t.Helper()

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	m := sessionIDPattern.FindStringSubmatch(w.Body.String())
	if m == nil {
		t.Fatal("expected a session ID in the dashboard page")
	}
	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == "_csrf" {
			token = c.Value
		}
	}
	if token == "" {
		t.Fatal("expected _csrf cookie")
	}
	return m[1], token
}

func postForm(h http.Handler, path, value, token string) *httptest.ResponseRecorder {
	form := url.Values{"value": {value}}
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "fetch")
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: token})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes_HealthEndpoint(t *testing.T) {
	srv := New(newTestApp(t))

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestRoutes_VersionEndpoint(t *testing.T) {
	srv := New(newTestApp(t))

	req := httptest.NewRequest("GET", "/api/version", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if _, ok := body["version"]; !ok {
		t.Error("expected version field in response")
	}
}

func TestRoutes_ServerHealthEndpoint(t *testing.T) {
	srv := New(newTestApp(t))

	req := httptest.NewRequest("GET", "/api/server-health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 with a live backend, got %d", w.Code)
	}
}

func TestRoutes_APINotFound(t *testing.T) {
	srv := New(newTestApp(t))

	req := httptest.NewRequest("GET", "/api/nonexistent", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRoutes_DashboardPage(t *testing.T) {
	srv := New(newTestApp(t))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, want := range []string{"Select a Company:", "AAPL", "activeButton", "plotly", "dashboard.css", "2023"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected dashboard page to contain %q", want)
		}
	}
}

func TestRoutes_EachLoadIsANewSession(t *testing.T) {
	h := New(newTestApp(t)).Handler()

	first, _ := openDashboard(t, h)
	second, _ := openDashboard(t, h)
	if first == second {
		t.Error("expected a fresh session per page load")
	}
}

func TestRoutes_SelectTickerFlow(t *testing.T) {
	h := New(newTestApp(t)).Handler()
	id, token := openDashboard(t, h)

	w := postForm(h, "/dashboard/"+id+"/ticker", "MSFT", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "<html") {
		t.Error("expected a fragment for fetch requests, got full page")
	}

	req := httptest.NewRequest("GET", "/dashboard/"+id, nil)
	sw := httptest.NewRecorder()
	h.ServeHTTP(sw, req)

	var state struct {
		Ticker       string   `json:"ticker"`
		Dates        []string `json:"dates"`
		SelectedDate string   `json:"selected_date"`
	}
	if err := json.Unmarshal(sw.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to unmarshal state: %v", err)
	}
	if state.Ticker != "MSFT" {
		t.Errorf("expected ticker MSFT, got %s", state.Ticker)
	}
	if state.SelectedDate != "2023" {
		t.Errorf("expected first filing date selected, got %q", state.SelectedDate)
	}
}

func TestRoutes_InsightFlow(t *testing.T) {
	h := New(newTestApp(t)).Handler()
	id, token := openDashboard(t, h)

	w := postForm(h, "/dashboard/"+id+"/insight", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Outlook:") || !strings.Contains(body, "Margins expanding") {
		t.Errorf("expected capitalized insight in fragment, got %s", body)
	}
}

func TestRoutes_SelectRejectsUnknownTicker(t *testing.T) {
	h := New(newTestApp(t)).Handler()
	id, token := openDashboard(t, h)

	w := postForm(h, "/dashboard/"+id+"/ticker", "NOPE", token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestRoutes_SelectRequiresCSRF(t *testing.T) {
	h := New(newTestApp(t)).Handler()
	id, _ := openDashboard(t, h)

	req := httptest.NewRequest("POST", "/dashboard/"+id+"/ticker", strings.NewReader("value=MSFT"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func TestRoutes_SelectMethodNotAllowed(t *testing.T) {
	h := New(newTestApp(t)).Handler()
	id, _ := openDashboard(t, h)

	req := httptest.NewRequest("GET", "/dashboard/"+id+"/ticker", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestRoutes_UnknownSession(t *testing.T) {
	h := New(newTestApp(t)).Handler()

	req := httptest.NewRequest("GET", "/dashboard/does-not-exist", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRoutes_DeleteSession(t *testing.T) {
	application := newTestApp(t)
	h := New(application).Handler()
	id, token := openDashboard(t, h)

	req := httptest.NewRequest("DELETE", "/dashboard/"+id, nil)
	req.Header.Set("X-CSRF-Token", token)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: token})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if _, ok := application.Sessions.Get(id); ok {
		t.Error("expected session to be removed")
	}
}

func TestRoutes_StaticAssets(t *testing.T) {
	h := New(newTestApp(t)).Handler()

	for _, path := range []string{"/static/css/dashboard.css", "/static/js/dashboard.js"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200 for %s, got %d", path, w.Code)
		}
	}
}

func TestRoutes_MCPDisabled(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.API.URL = newFakeBackend(t).URL
	cfg.MCP.Enabled = false

	application, err := app.New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	defer application.Close()

	if application.MCPHandler != nil {
		t.Error("expected no MCP handler when disabled")
	}
}

func TestRoutes_MiddlewareApplied(t *testing.T) {
	srv := New(newTestApp(t))

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected X-Correlation-ID header from middleware")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header from middleware")
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected Content-Security-Policy header from security middleware")
	}
}

func TestRoutes_DashboardHasNoCORS(t *testing.T) {
	srv := New(newTestApp(t))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("dashboard page must not carry CORS headers")
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store on the dashboard page, got %q", w.Header().Get("Cache-Control"))
	}
}

func TestRoutes_BodyFragment(t *testing.T) {
	srv := New(newTestApp(t))
	h := srv.Handler()
	id, _ := openDashboard(t, h)

	req := httptest.NewRequest("GET", "/dashboard/"+id+"/body", nil)
	req.Header.Set("X-Requested-With", "fetch")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("body route should return only the fragment")
	}
	if !strings.Contains(body, `data-pending="false"`) {
		t.Error("expected settled fragment after the initial load")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard/missing/body", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", w.Code)
	}

	w = postForm(h, "/dashboard/"+id+"/body", "", "tok")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST to body, got %d", w.Code)
	}
}

func TestRoutes_HeadCreatesNoSession(t *testing.T) {
	application := newTestApp(t)
	srv := New(application)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("HEAD", "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for HEAD, got %d", w.Code)
	}
	if application.Sessions.Len() != 0 {
		t.Errorf("HEAD must not create a session, got %d", application.Sessions.Len())
	}
}
