package config

import "github.com/bobmcallan/filings-portal/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 3000,
			Host: "localhost",
		},
		API: APIConfig{
			URL:     "http://localhost:5000",
			Timeout: "0s",
		},
		Dashboard: DashboardConfig{
			Tickers: []string{
				"MSFT", "AAPL", "NVDA", "GOOGL", "AMZN", "META", "BRK-B", "LLY", "TSM", "AVGO", "TSLA", "NVO",
				"V", "JPM", "WMT", "XOM", "SPY", "UNH", "MA", "PG", "ASML", "JNJ", "LTMAY", "HD", "MRK", "COST",
				"ORCL", "TM", "CVX", "BAC", "ABBV", "KO", "CRM", "AMD", "PEP", "NFLX", "AZN", "SHEL", "TMO", "SAP",
				"LIN", "FMX", "WFC", "ADBE", "DIS", "NVS", "MCD", "TMUS", "CSCO", "ACN",
			},
			Concepts: []string{
				"Assets",
				"StockholdersEquity",
				"CommonStockDividendsPerShareDeclared",
				"EarningsPerShareDiluted",
			},
			DefaultTicker:  "AAPL",
			DefaultConcept: "Assets",
			SessionTTL:     "30m",
			MaxSessions:    1000,
			SettleWindow:   "1500ms",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "logs/filings-portal.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
