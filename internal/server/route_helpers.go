package server

import (
	"net/http"
	"slices"
	"strings"
)

// RouteHandler is a function type for HTTP handlers.
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers.
type MethodRouter map[string]RouteHandler

// RouteByMethod routes requests based on HTTP method. Unmatched methods get
// 405 with an Allow header listing the registered ones.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		w.Header().Set("Allow", allowed(routes))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}

func allowed(routes MethodRouter) string {
	methods := make([]string, 0, len(routes))
	for m := range routes {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

// RouteResourceItem handles a session resource.
// GET -> get, DELETE -> delete.
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, del RouteHandler) {
	routes := make(MethodRouter)
	if get != nil {
		routes["GET"] = get
	}
	if del != nil {
		routes["DELETE"] = del
	}
	RouteByMethod(w, r, routes)
}

// RouteAction wraps a handler for a POST-only action on a resource.
func RouteAction(post RouteHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{"POST": post})
	}
}
