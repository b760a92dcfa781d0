package models

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// GraphData is a Plotly figure as produced by the filings backend.
// Both fields are forwarded to the browser untouched.
type GraphData struct {
	Data   []json.RawMessage `json:"data"`
	Layout json.RawMessage   `json:"layout"`
}

// FilingInsightRequest is the body of POST /api/filing-insight.
type FilingInsightRequest struct {
	Ticker     string `json:"ticker"`
	FilingYear string `json:"filing_year"`
}

// InsightEntry is one labelled group of sentences.
type InsightEntry struct {
	Label     string   `json:"label"`
	Sentences []string `json:"sentences"`
}

// Insight maps a topic label to its sentences, keeping the order in which
// the backend listed the labels.
type Insight struct {
	entries *orderedmap.OrderedMap[string, []string]
}

// NewInsight builds an Insight from entries in the given order.
// A repeated label replaces the earlier sentences but keeps its position.
func NewInsight(entries ...InsightEntry) *Insight {
	m := orderedmap.New[string, []string]()
	for _, e := range entries {
		m.Set(e.Label, e.Sentences)
	}
	return &Insight{entries: m}
}

// Len returns the number of labels. A nil Insight has none.
func (i *Insight) Len() int {
	if i == nil || i.entries == nil {
		return 0
	}
	return i.entries.Len()
}

// Entries returns the labels and sentences in insertion order.
func (i *Insight) Entries() []InsightEntry {
	if i.Len() == 0 {
		return nil
	}
	out := make([]InsightEntry, 0, i.entries.Len())
	for pair := i.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, InsightEntry{Label: pair.Key, Sentences: pair.Value})
	}
	return out
}

// Sentences returns the sentences for label.
func (i *Insight) Sentences(label string) ([]string, bool) {
	if i.Len() == 0 {
		return nil, false
	}
	return i.entries.Get(label)
}

// UnmarshalJSON decodes a JSON object of label -> [sentence] preserving key order.
func (i *Insight) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		i.entries = nil
		return nil
	}
	m := orderedmap.New[string, []string]()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	i.entries = m
	return nil
}

// MarshalJSON encodes the insight as a JSON object in insertion order.
func (i *Insight) MarshalJSON() ([]byte, error) {
	if i == nil || i.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(i.entries)
}
