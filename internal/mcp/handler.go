package mcp

import (
	"context"
	"net/http"

	"github.com/bobmcallan/filings-portal/internal/common"
	"github.com/bobmcallan/filings-portal/internal/config"
	"github.com/bobmcallan/filings-portal/internal/dashboard"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Backend is the filings backend as seen by the MCP tools.
type Backend interface {
	dashboard.Backend
	Ping(ctx context.Context) error
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	tools      []string
}

// NewHandler creates an MCP handler exposing the filings backend as tools.
func NewHandler(backend Backend, logger *common.Logger) *Handler {
	mcpSrv, names := newMCPServer(backend)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", len(names)).
		Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     logger,
		tools:      names,
	}
}

func newMCPServer(backend Backend) (*mcpserver.MCPServer, []string) {
	mcpSrv := mcpserver.NewMCPServer(
		"filings-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)
	return mcpSrv, registerTools(mcpSrv, backend)
}

// Tools returns the names of the registered tools.
func (h *Handler) Tools() []string {
	out := make([]string, len(h.tools))
	copy(out, h.tools)
	return out
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
