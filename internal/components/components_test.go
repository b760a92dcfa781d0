package components

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bobmcallan/filings-portal/internal/models"
)

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"liquidity":            "Liquidity",
		"strong cash position": "Strong cash position",
		"Already":              "Already",
		"éclair":               "Éclair",
		"1st quarter":          "1st quarter",
		"a":                    "A",
		"ßtraße":               "ßtraße",
		"ǆungla":               "Ǆungla",
	}
	for in, want := range cases {
		if got := Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInsightPanel_HeadingAndBody(t *testing.T) {
	var insight models.Insight
	if err := json.Unmarshal([]byte(`{"liquidity": ["strong cash position", "low debt"]}`), &insight); err != nil {
		t.Fatal(err)
	}

	blocks := InsightPanel(&insight, Capitalize)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Heading != "Liquidity:" {
		t.Errorf("expected heading Liquidity:, got %q", blocks[0].Heading)
	}
	if blocks[0].Body != "Strong cash position, Low debt" {
		t.Errorf("expected body %q, got %q", "Strong cash position, Low debt", blocks[0].Body)
	}
}

func TestInsightPanel_KeepsOrder(t *testing.T) {
	insight := models.NewInsight(
		models.InsightEntry{Label: "negative", Sentences: []string{"costs rose"}},
		models.InsightEntry{Label: "positive", Sentences: []string{"sales grew"}},
	)

	blocks := InsightPanel(insight, Capitalize)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Heading != "Negative:" || blocks[1].Heading != "Positive:" {
		t.Errorf("unexpected order: %q, %q", blocks[0].Heading, blocks[1].Heading)
	}
}

func TestInsightPanel_EmptySentencesAndEmptyLabel(t *testing.T) {
	insight := models.NewInsight(
		models.InsightEntry{Label: "", Sentences: []string{"", "x"}},
		models.InsightEntry{Label: "neutral", Sentences: nil},
	)

	blocks := InsightPanel(insight, Capitalize)
	if blocks[0].Heading != ":" {
		t.Errorf("expected heading ':', got %q", blocks[0].Heading)
	}
	if blocks[0].Body != ", X" {
		t.Errorf("expected body ', X', got %q", blocks[0].Body)
	}
	if blocks[1].Body != "" {
		t.Errorf("expected empty body, got %q", blocks[1].Body)
	}
}

func TestInsightPanel_NoData(t *testing.T) {
	if blocks := InsightPanel(nil, Capitalize); blocks != nil {
		t.Errorf("expected nil for nil insight, got %v", blocks)
	}
	if blocks := InsightPanel(models.NewInsight(), Capitalize); blocks != nil {
		t.Errorf("expected nil for empty insight, got %v", blocks)
	}
}

func TestInsightPanel_UsesInjectedCapitalize(t *testing.T) {
	insight := models.NewInsight(models.InsightEntry{Label: "risk", Sentences: []string{"a", "b"}})

	blocks := InsightPanel(insight, strings.ToUpper)
	if blocks[0].Heading != "RISK:" || blocks[0].Body != "A, B" {
		t.Errorf("injected function not applied: %+v", blocks[0])
	}
}

func TestConceptButtons_ActiveStyle(t *testing.T) {
	concepts := []string{"Assets", "StockholdersEquity", "CommonStockDividendsPerShareDeclared", "EarningsPerShareDiluted"}

	buttons := ConceptButtons("concept", concepts, "StockholdersEquity")
	if len(buttons) != 4 {
		t.Fatalf("expected 4 buttons, got %d", len(buttons))
	}

	active := 0
	for _, b := range buttons {
		if b.Value == "StockholdersEquity" {
			if b.Class != ActiveButtonClass || !b.Active {
				t.Errorf("selected concept should be active, got %+v", b)
			}
		} else if b.Class != ButtonClass || b.Active {
			t.Errorf("unselected concept %s should use default style, got %+v", b.Value, b)
		}
		if b.Active {
			active++
		}
		if b.Field != "concept" {
			t.Errorf("expected field concept, got %s", b.Field)
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active button, got %d", active)
	}
}

func TestConceptButtons_NoMatch(t *testing.T) {
	buttons := ConceptButtons("concept", []string{"Assets"}, "Unknown")
	if buttons[0].Active {
		t.Error("no button should be active when selection is not listed")
	}
}

func TestSelector_MarksValue(t *testing.T) {
	view := Selector("Select a Company:", "ticker", []string{"MSFT", "AAPL", "NVDA"}, "AAPL")

	if view.Label != "Select a Company:" || view.Field != "ticker" {
		t.Errorf("unexpected view: %+v", view)
	}
	if len(view.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(view.Options))
	}
	for _, o := range view.Options {
		if o.Selected != (o.Value == "AAPL") {
			t.Errorf("option %s selected=%v", o.Value, o.Selected)
		}
	}
}

func TestSelector_EmptyOptions(t *testing.T) {
	view := Selector("Select a Company:", "ticker", nil, "AAPL")
	if len(view.Options) != 0 {
		t.Errorf("expected no options, got %d", len(view.Options))
	}
}

func TestDateSelector(t *testing.T) {
	view := DateSelector("date", []string{"2023", "2022"}, "2022")
	if view.Label != "" {
		t.Errorf("date selector has no label, got %q", view.Label)
	}
	if !view.Options[1].Selected || view.Options[0].Selected {
		t.Errorf("expected 2022 selected: %+v", view.Options)
	}

	empty := DateSelector("date", []string{}, "")
	if len(empty.Options) != 0 {
		t.Errorf("expected no options, got %d", len(empty.Options))
	}
}

func TestGraph_Nil(t *testing.T) {
	view, err := Graph(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view != nil {
		t.Error("expected nil view for absent graph")
	}
}

func TestGraph_FixedSizeAndPassthrough(t *testing.T) {
	g := &models.GraphData{
		Data:   []json.RawMessage{json.RawMessage(`{"x":[1],"y":[2],"name":"Last 5 Years"}`)},
		Layout: json.RawMessage(`{"title":{"text":"Assets"}}`),
	}

	view, err := Graph(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Width != "100%" || view.Height != "400px" {
		t.Errorf("unexpected size %s x %s", view.Width, view.Height)
	}
	if view.DataJSON != `[{"x":[1],"y":[2],"name":"Last 5 Years"}]` {
		t.Errorf("unexpected data json: %s", view.DataJSON)
	}
	if view.LayoutJSON != `{"title":{"text":"Assets"}}` {
		t.Errorf("unexpected layout json: %s", view.LayoutJSON)
	}
}

func TestGraph_EmptyFigure(t *testing.T) {
	view, err := Graph(&models.GraphData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.DataJSON != "[]" || view.LayoutJSON != "{}" {
		t.Errorf("expected empty figure defaults, got %s / %s", view.DataJSON, view.LayoutJSON)
	}
}
