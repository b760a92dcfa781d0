// Package dashboard holds the per-session dashboard state and the effects
// that refresh it from the filings backend.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/bobmcallan/filings-portal/internal/common"
	"github.com/bobmcallan/filings-portal/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownOption is returned when a selection is not one of the offered options.
var ErrUnknownOption = errors.New("value is not one of the available options")

// Backend is the filings API the controller reads from.
type Backend interface {
	Visualize(ctx context.Context, ticker, concept string) (*models.GraphData, error)
	FilingDates(ctx context.Context, ticker string) ([]string, error)
	FilingInsight(ctx context.Context, ticker, filingYear string) (*models.Insight, error)
}

// Options configures the selectable values of a dashboard.
type Options struct {
	Tickers        []string
	Concepts       []string
	DefaultTicker  string
	DefaultConcept string
}

// effect is a fetch that re-runs whenever the trigger values change.
type effect struct {
	name string
	run  func(ctx context.Context, t trigger)
}

// Controller owns one dashboard's state. Ticker and concept changes re-run
// the subscribed effects concurrently; insight is fetched only on request.
//
// Responses are applied in the order they resolve. A slow response for an
// earlier ticker can overwrite a newer one.
type Controller struct {
	id      string
	backend Backend
	logger  *common.Logger
	opts    Options
	effects []effect

	mu       sync.Mutex
	state    State
	inflight int
}

// NewController creates a controller with default selections. Call Start to
// run the initial fetches.
func NewController(id string, backend Backend, logger *common.Logger, opts Options) *Controller {
	c := &Controller{
		id:      id,
		backend: backend,
		logger:  logger,
		opts:    opts,
		state:   NewState(opts.DefaultTicker, opts.DefaultConcept),
	}
	c.effects = []effect{
		{name: "visualization", run: c.fetchVisualization},
		{name: "filing_dates", run: c.fetchFilingDates},
	}
	return c
}

// ID returns the session ID.
func (c *Controller) ID() string {
	return c.id
}

// Options returns the selectable values.
func (c *Controller) Options() Options {
	return c.opts
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Pending reports whether any fetch is still in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

func (c *Controller) begin(n int) {
	c.mu.Lock()
	c.inflight += n
	c.mu.Unlock()
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
}

// Start runs the subscribed effects for the initial selection and waits for
// them to settle or for ctx to end.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	t := c.state.trigger()
	c.mu.Unlock()
	return wait(ctx, c.runEffects(ctx, t))
}

// SelectTicker changes the ticker. When the value differs from the current
// one, both effects re-run and SelectTicker waits for them or for ctx to end.
// Each effect applies its result as soon as it resolves, independently of
// the other; callers that stop waiting early see whatever has landed.
func (c *Controller) SelectTicker(ctx context.Context, ticker string) error {
	if !slices.Contains(c.opts.Tickers, ticker) {
		return fmt.Errorf("ticker %q: %w", ticker, ErrUnknownOption)
	}
	return c.selectTrigger(ctx, func(s State) State { return s.WithTicker(ticker) })
}

// SelectConcept changes the concept, with the same re-run rule as SelectTicker.
func (c *Controller) SelectConcept(ctx context.Context, concept string) error {
	if !slices.Contains(c.opts.Concepts, concept) {
		return fmt.Errorf("concept %q: %w", concept, ErrUnknownOption)
	}
	return c.selectTrigger(ctx, func(s State) State { return s.WithConcept(concept) })
}

func (c *Controller) selectTrigger(ctx context.Context, update func(State) State) error {
	c.mu.Lock()
	before := c.state.trigger()
	c.state = update(c.state)
	after := c.state.trigger()
	c.mu.Unlock()

	if before == after {
		return nil
	}
	return wait(ctx, c.runEffects(ctx, after))
}

// SelectDate changes the selected filing date. It triggers no fetch.
func (c *Controller) SelectDate(date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if date == c.state.SelectedDate {
		return nil
	}
	if !slices.Contains(c.state.Dates, date) {
		return fmt.Errorf("filing date %q: %w", date, ErrUnknownOption)
	}
	c.state = c.state.WithSelectedDate(date)
	return nil
}

// RequestInsight fetches the insight for the ticker and date selected right
// now and waits for it to settle.
func (c *Controller) RequestInsight(ctx context.Context) error {
	c.mu.Lock()
	ticker, date := c.state.Ticker, c.state.SelectedDate
	c.mu.Unlock()

	done := make(chan struct{})
	detached := context.WithoutCancel(ctx)
	c.begin(1)
	go func() {
		defer close(done)
		defer c.finish()
		c.fetchInsight(detached, ticker, date)
	}()
	return wait(ctx, done)
}

// runEffects starts every subscribed effect for t. The returned channel is
// closed once all of them have finished. Effects outlive ctx's cancellation
// so a response still lands in state after the caller stops waiting.
func (c *Controller) runEffects(ctx context.Context, t trigger) <-chan struct{} {
	done := make(chan struct{})
	detached := context.WithoutCancel(ctx)
	c.begin(len(c.effects))

	go func() {
		defer close(done)
		var g errgroup.Group
		for _, e := range c.effects {
			g.Go(func() error {
				defer c.finish()
				c.logger.Debug().
					Str("session", c.id).
					Str("effect", e.name).
					Str("ticker", t.Ticker).
					Str("concept", t.Concept).
					Msg("running dashboard effect")
				e.run(detached, t)
				return nil
			})
		}
		g.Wait()
	}()

	return done
}

func (c *Controller) fetchVisualization(ctx context.Context, t trigger) {
	graph, err := c.backend.Visualize(ctx, t.Ticker, t.Concept)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("session", c.id).
			Str("ticker", t.Ticker).
			Str("concept", t.Concept).
			Msg("error fetching visualization")
		return
	}
	c.apply(func(s State) State { return s.WithVisualization(graph) })
}

func (c *Controller) fetchFilingDates(ctx context.Context, t trigger) {
	dates, err := c.backend.FilingDates(ctx, t.Ticker)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("session", c.id).
			Str("ticker", t.Ticker).
			Msg("error fetching filing dates")
		return
	}
	c.apply(func(s State) State { return s.WithFilingDates(dates) })
}

func (c *Controller) fetchInsight(ctx context.Context, ticker, date string) {
	insight, err := c.backend.FilingInsight(ctx, ticker, date)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("session", c.id).
			Str("ticker", ticker).
			Str("filing_year", date).
			Msg("error fetching insights")
		return
	}
	c.apply(func(s State) State { return s.WithInsight(insight) })
}

func (c *Controller) apply(update func(State) State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = update(c.state)
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
