// Package components builds the view models for the dashboard's leaf
// widgets. Every function is a pure mapping from inputs to what the
// templates in pages/partials render; none of them keep state.
package components

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bobmcallan/filings-portal/internal/models"
)

// CSS classes for concept buttons.
const (
	ActiveButtonClass = "activeButton"
	ButtonClass       = "button"
)

// Fixed chart size.
const (
	GraphWidth  = "100%"
	GraphHeight = "400px"
)

// Option is one entry in a dropdown.
type Option struct {
	Value    string
	Selected bool
}

// SelectorView is a single-choice dropdown. Field is the form field the
// browser posts the chosen value back under.
type SelectorView struct {
	Label   string
	Field   string
	Options []Option
}

// Selector renders a labelled dropdown from options, marking value as chosen.
func Selector(label, field string, options []string, value string) SelectorView {
	return SelectorView{
		Label:   label,
		Field:   field,
		Options: buildOptions(options, value),
	}
}

// DateSelector renders an unlabelled dropdown of filing dates.
func DateSelector(field string, dates []string, value string) SelectorView {
	return SelectorView{
		Field:   field,
		Options: buildOptions(dates, value),
	}
}

func buildOptions(values []string, selected string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Value: v, Selected: v == selected})
	}
	return opts
}

// ConceptButton is one button in the concept group.
type ConceptButton struct {
	Field  string
	Value  string
	Class  string
	Active bool
}

// ConceptButtons renders one button per concept; only the selected one gets
// the active class.
func ConceptButtons(field string, concepts []string, selected string) []ConceptButton {
	buttons := make([]ConceptButton, 0, len(concepts))
	for _, c := range concepts {
		b := ConceptButton{Field: field, Value: c, Class: ButtonClass}
		if c == selected {
			b.Class = ActiveButtonClass
			b.Active = true
		}
		buttons = append(buttons, b)
	}
	return buttons
}

// GraphView carries a Plotly figure to the browser.
type GraphView struct {
	DataJSON   string
	LayoutJSON string
	Width      string
	Height     string
}

// Graph wraps g for the plotting library. Returns nil when g is nil.
func Graph(g *models.GraphData) (*GraphView, error) {
	if g == nil {
		return nil, nil
	}

	series := g.Data
	if series == nil {
		series = []json.RawMessage{}
	}
	data, err := json.Marshal(series)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph series: %w", err)
	}

	layout := "{}"
	if len(g.Layout) > 0 {
		layout = string(g.Layout)
	}

	return &GraphView{
		DataJSON:   string(data),
		LayoutJSON: layout,
		Width:      GraphWidth,
		Height:     GraphHeight,
	}, nil
}

// InsightBlock is one heading and its paragraph.
type InsightBlock struct {
	Heading string
	Body    string
}

// InsightPanel turns an insight into display blocks in the insight's own
// order. capitalize is applied to the label and to every sentence.
func InsightPanel(insight *models.Insight, capitalize func(string) string) []InsightBlock {
	entries := insight.Entries()
	if len(entries) == 0 {
		return nil
	}

	blocks := make([]InsightBlock, 0, len(entries))
	for _, e := range entries {
		sentences := make([]string, len(e.Sentences))
		for i, s := range e.Sentences {
			sentences[i] = capitalize(s)
		}
		blocks = append(blocks, InsightBlock{
			Heading: capitalize(e.Label) + ":",
			Body:    strings.Join(sentences, ", "),
		})
	}
	return blocks
}

// Capitalize upper-cases the first character and leaves the rest alone.
// Mapping is rune to rune, so characters whose upper case is longer than one
// rune keep their form: "ßtraße" stays "ßtraße" where a browser would give
// "SStraße".
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
