package dashboard

import "github.com/bobmcallan/filings-portal/internal/models"

// State is everything the dashboard shows. Update functions return a new
// State and never modify the receiver's slices.
type State struct {
	Ticker       string            `json:"ticker"`
	Concept      string            `json:"concept"`
	Dates        []string          `json:"dates"`
	SelectedDate string            `json:"selected_date"`
	Graph        *models.GraphData `json:"graph,omitempty"`
	Insight      *models.Insight   `json:"insight,omitempty"`
}

// NewState returns the initial state: defaults selected, nothing fetched yet.
func NewState(ticker, concept string) State {
	return State{
		Ticker:  ticker,
		Concept: concept,
		Dates:   []string{},
	}
}

// WithTicker records a user-selected ticker.
func (s State) WithTicker(ticker string) State {
	s.Ticker = ticker
	return s
}

// WithConcept records a user-selected concept.
func (s State) WithConcept(concept string) State {
	s.Concept = concept
	return s
}

// WithSelectedDate records a user-selected filing date.
func (s State) WithSelectedDate(date string) State {
	s.SelectedDate = date
	return s
}

// WithVisualization replaces the chart after a successful fetch.
func (s State) WithVisualization(g *models.GraphData) State {
	s.Graph = g
	return s
}

// WithFilingDates replaces the date list after a successful fetch and
// selects its first element, or "" when the list is empty.
func (s State) WithFilingDates(dates []string) State {
	s.Dates = append([]string{}, dates...)
	s.SelectedDate = ""
	if len(dates) > 0 {
		s.SelectedDate = dates[0]
	}
	return s
}

// WithInsight replaces the insight after a successful fetch.
func (s State) WithInsight(insight *models.Insight) State {
	s.Insight = insight
	return s
}

// clone returns a copy that shares no mutable slice with s.
func (s State) clone() State {
	s.Dates = append([]string{}, s.Dates...)
	return s
}

// trigger is the set of values the fetch effects subscribe to.
type trigger struct {
	Ticker  string
	Concept string
}

func (s State) trigger() trigger {
	return trigger{Ticker: s.Ticker, Concept: s.Concept}
}
