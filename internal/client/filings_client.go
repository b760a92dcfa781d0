package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/filings-portal/internal/models"
	"github.com/go-resty/resty/v2"
)

// APIError is returned when the filings backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("filings backend returned %d: %s", e.StatusCode, e.Body)
}

// FilingsClient communicates with the filings backend REST API.
type FilingsClient struct {
	baseURL string
	http    *resty.Client
}

// NewFilingsClient creates a new client targeting the given backend URL.
// A zero timeout leaves requests unbounded.
func NewFilingsClient(baseURL string, timeout time.Duration) *FilingsClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &FilingsClient{
		baseURL: baseURL,
		http:    c,
	}
}

// BaseURL returns the backend URL this client targets.
func (c *FilingsClient) BaseURL() string {
	return c.baseURL
}

// Visualize fetches the chart for a ticker and concept.
// GET /api/visualize?ticker={ticker}&concept={concept} -> {data: [...], layout: {...}}
func (c *FilingsClient) Visualize(ctx context.Context, ticker, concept string) (*models.GraphData, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ticker":  ticker,
			"concept": concept,
		}).
		Get("/api/visualize")
	if err != nil {
		return nil, fmt.Errorf("failed to reach filings backend: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var graph models.GraphData
	if err := json.Unmarshal(resp.Body(), &graph); err != nil {
		return nil, fmt.Errorf("failed to parse visualization: %w", err)
	}
	return &graph, nil
}

// FilingDates fetches the filing dates available for a ticker, newest first.
// GET /api/filing-dates/{ticker} -> ["2023", "2022", ...]
func (c *FilingsClient) FilingDates(ctx context.Context, ticker string) ([]string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		Get("/api/filing-dates/{ticker}")
	if err != nil {
		return nil, fmt.Errorf("failed to reach filings backend: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var dates []string
	if err := json.Unmarshal(resp.Body(), &dates); err != nil {
		return nil, fmt.Errorf("failed to parse filing dates: %w", err)
	}
	if dates == nil {
		dates = []string{}
	}
	return dates, nil
}

// FilingInsight fetches the insight text for one filing.
// POST /api/filing-insight {ticker, filing_year} -> {label: [sentence, ...]}
func (c *FilingsClient) FilingInsight(ctx context.Context, ticker, filingYear string) (*models.Insight, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.FilingInsightRequest{Ticker: ticker, FilingYear: filingYear}).
		Post("/api/filing-insight")
	if err != nil {
		return nil, fmt.Errorf("failed to reach filings backend: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var insight models.Insight
	if err := json.Unmarshal(resp.Body(), &insight); err != nil {
		return nil, fmt.Errorf("failed to parse filing insight: %w", err)
	}
	return &insight, nil
}

// Ping reports whether the backend answers HTTP at all. Any status below 500
// counts as reachable since the backend exposes no health route.
func (c *FilingsClient) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return fmt.Errorf("failed to reach filings backend: %w", err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
