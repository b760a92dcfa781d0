package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/filings-portal/internal/common"
)

// StaticHandler serves static files (CSS, JS) from the pages directory.
type StaticHandler struct {
	logger    *common.Logger
	staticDir string
}

// NewStaticHandler creates a static file handler rooted at pages/static.
func NewStaticHandler(logger *common.Logger) *StaticHandler {
	return &StaticHandler{
		logger:    logger,
		staticDir: filepath.Join(FindPagesDir(), "static"),
	}
}

// FindPagesDir locates the pages directory.
func FindPagesDir() string {
	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		".",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// ServeHTTP handles GET /static/*.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/static/")
	fullPath := filepath.Join(h.staticDir, path)

	// Prevent directory traversal
	absStaticDir, _ := filepath.Abs(h.staticDir)
	absFullPath, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absFullPath, absStaticDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
