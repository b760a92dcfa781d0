package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// RequireMethod validates that the request uses one of methods. GET also
// admits HEAD. Writes 405 with an Allow header and returns false otherwise.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m || (m == http.MethodGet && r.Method == http.MethodHead) {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// isFragmentRequest reports whether the caller wants only the dashboard body.
func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "fetch"
}
