package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/filings-portal/internal/components"
	"github.com/bobmcallan/filings-portal/internal/dashboard"
	"github.com/bobmcallan/filings-portal/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerTools adds every filings tool to s and returns their names.
func registerTools(s *mcpserver.MCPServer, backend Backend) []string {
	tools := []struct {
		tool    mcp.Tool
		handler mcpserver.ToolHandlerFunc
	}{
		{VersionTool(), VersionToolHandler(backend)},
		{FilingDatesTool(), FilingDatesHandler(backend)},
		{VisualizationTool(), VisualizationHandler(backend)},
		{FilingInsightTool(), FilingInsightHandler(backend)},
	}

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		s.AddTool(t.tool, t.handler)
		names = append(names, t.tool.Name)
	}
	return names
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// FilingDatesTool lists filing dates for a ticker.
func FilingDatesTool() mcp.Tool {
	return mcp.NewTool("get_filing_dates",
		mcp.WithDescription("List the SEC filing dates available for a ticker, newest first."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Stock ticker (e.g., 'AAPL', 'BRK-B')")),
	)
}

// VisualizationTool summarises the time series chart for a ticker and concept.
func VisualizationTool() mcp.Tool {
	return mcp.NewTool("get_visualization",
		mcp.WithDescription("Summarise the time series chart of a financial concept reported in a company's filings."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Stock ticker (e.g., 'AAPL')")),
		mcp.WithString("concept", mcp.Required(), mcp.Description("Financial concept: Assets, StockholdersEquity, CommonStockDividendsPerShareDeclared, EarningsPerShareDiluted")),
	)
}

// FilingInsightTool returns the generated commentary for one filing.
func FilingInsightTool() mcp.Tool {
	return mcp.NewTool("get_filing_insight",
		mcp.WithDescription("Get generated commentary for one filing, grouped by topic."),
		mcp.WithString("ticker", mcp.Required(), mcp.Description("Stock ticker (e.g., 'NVDA')")),
		mcp.WithString("filing_year", mcp.Required(), mcp.Description("Filing date or year as listed by get_filing_dates")),
	)
}

// FilingDatesHandler handles get_filing_dates.
func FilingDatesHandler(backend dashboard.Backend) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		dates, err := backend.FilingDates(ctx, ticker)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if len(dates) == 0 {
			return textResult(fmt.Sprintf("No filings found for %s.", ticker)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Filing dates for %s:\n", ticker)
		for _, d := range dates {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
		return textResult(sb.String()), nil
	}
}

// VisualizationHandler handles get_visualization.
func VisualizationHandler(backend dashboard.Backend) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}
		concept, err := request.RequireString("concept")
		if err != nil || strings.TrimSpace(concept) == "" {
			return errorResult("Error: concept parameter is required"), nil
		}

		graph, err := backend.Visualize(ctx, ticker, concept)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(formatVisualization(ticker, concept, graph)), nil
	}
}

// FilingInsightHandler handles get_filing_insight.
func FilingInsightHandler(backend dashboard.Backend) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}
		year, err := request.RequireString("filing_year")
		if err != nil {
			return errorResult("Error: filing_year parameter is required"), nil
		}

		insight, err := backend.FilingInsight(ctx, ticker, year)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(formatInsight(ticker, year, insight)), nil
	}
}

// plotSeries is the subset of a Plotly trace the summary needs.
type plotSeries struct {
	Name string            `json:"name"`
	X    []json.RawMessage `json:"x"`
	Y    []json.RawMessage `json:"y"`
}

func formatVisualization(ticker, concept string, graph *models.GraphData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s %s\n\n", ticker, concept)

	if graph == nil || len(graph.Data) == 0 {
		sb.WriteString("No data series.\n")
		return sb.String()
	}

	for i, raw := range graph.Data {
		var s plotSeries
		if err := json.Unmarshal(raw, &s); err != nil {
			fmt.Fprintf(&sb, "- series %d: unreadable\n", i+1)
			continue
		}
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("series %d", i+1)
		}
		fmt.Fprintf(&sb, "- %s: %d points", name, len(s.Y))
		if n := len(s.X); n > 0 && n == len(s.Y) {
			fmt.Fprintf(&sb, ", latest %s = %s", strings.Trim(string(s.X[n-1]), `"`), string(s.Y[n-1]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatInsight(ticker, year string, insight *models.Insight) string {
	blocks := components.InsightPanel(insight, components.Capitalize)
	if len(blocks) == 0 {
		return fmt.Sprintf("No insight available for %s %s.", ticker, year)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s filing %s\n", ticker, year)
	for _, b := range blocks {
		fmt.Fprintf(&sb, "\n## %s\n%s\n", b.Heading, b.Body)
	}
	return sb.String()
}
