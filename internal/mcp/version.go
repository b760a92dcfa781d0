package mcp

import (
	"context"
	"encoding/json"

	"github.com/bobmcallan/filings-portal/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// versionInfo holds the portal build and backend reachability.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
	Backend string `json:"backend"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get filings portal version and backend status. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports the portal version and whether the backend answers.
func VersionToolHandler(backend Backend) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version: config.GetVersion(),
			Build:   config.GetBuild(),
			Commit:  config.GetGitCommit(),
			Backend: "ok",
		}
		if err := backend.Ping(ctx); err != nil {
			info.Backend = "unreachable"
		}

		out, err := json.Marshal(info)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}
