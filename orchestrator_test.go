package papyrus

import (
	"context"
	"errors"
	"testing"
)

func TestContentPipeline_Process(t *testing.T) {
	t.Parallel()

	enhancer := NewAnalyzer(&mockCompleter{reply: "# Budget\n\nSales: 100, Marketing: 50\n\n[CHART: budget]"})
	p := NewContentPipeline(enhancer, nil)

	got, err := p.Process(context.Background(), ProcessRequest{
		Text:          "budget sales 100 marketing 50",
		Suggestions:   []Suggestion{{Type: SuggestHeading, Suggested: "Budget"}},
		ExtractCharts: true,
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got.Markdown != "# Budget\n\nSales: 100, Marketing: 50\n\n[CHART: budget]" {
		t.Errorf("Markdown = %q", got.Markdown)
	}
	if got.Statistics.LineCount != 5 {
		t.Errorf("LineCount = %d, want 5", got.Statistics.LineCount)
	}
	if len(got.Signals.KeyValue) != 2 {
		t.Errorf("KeyValue = %v", got.Signals.KeyValue)
	}
	if got.Charts == nil || len(got.Charts.SuggestedCharts) != 1 {
		t.Fatalf("Charts = %+v, want the pattern chart only", got.Charts)
	}
	if got.Charts.SuggestedCharts[0].Source != SourceSimpleExtraction {
		t.Errorf("suggested = %+v", got.Charts.SuggestedCharts[0])
	}
}

func TestContentPipeline_ProcessWithoutSuggestions(t *testing.T) {
	t.Parallel()

	m := &mockCompleter{reply: "unused"}
	p := NewContentPipeline(NewAnalyzer(m), nil)

	got, err := p.Process(context.Background(), ProcessRequest{Text: "plain text"})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got.Markdown != "plain text" {
		t.Errorf("Markdown = %q, want input unchanged", got.Markdown)
	}
	if got.Charts != nil {
		t.Error("Charts should be nil when not requested")
	}
	if len(m.reqs) != 0 {
		t.Error("model should not be called without suggestions")
	}
}

func TestContentPipeline_ModelCharts(t *testing.T) {
	t.Parallel()

	ai := &mockExtractor{out: &ChartExtraction{Charts: []ChartSuggestion{{Title: "AI", Type: ChartBar}}}}
	p := NewContentPipeline(nil, ai)

	got, err := p.Process(context.Background(), ProcessRequest{Text: "x", ExtractCharts: true})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got.Charts.SuggestedCharts) != 1 || got.Charts.SuggestedCharts[0].Title != "AI" {
		t.Errorf("SuggestedCharts = %+v", got.Charts.SuggestedCharts)
	}
}

func TestContentPipeline_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	withSuggestion := []Suggestion{{Type: SuggestList}}

	tests := []struct {
		name    string
		p       *ContentPipeline
		req     ProcessRequest
		wantErr error
	}{
		{"empty text", NewContentPipeline(nil, nil), ProcessRequest{Text: " "}, ErrEmptyText},
		{"invalid format", NewContentPipeline(nil, nil), ProcessRequest{Text: "x", Format: "pdf"}, ErrInvalidFormat},
		{"suggestions without enhancer", NewContentPipeline(nil, nil), ProcessRequest{Text: "x", Suggestions: withSuggestion}, ErrNoCompleter},
		{
			"enhancer failure",
			NewContentPipeline(NewAnalyzer(&mockCompleter{err: errors.New("down")}), nil),
			ProcessRequest{Text: "x", Suggestions: withSuggestion},
			ErrEnhancement,
		},
		{
			"chart extraction failure",
			NewContentPipeline(nil, &mockExtractor{err: ErrChartDataExtraction}),
			ProcessRequest{Text: "x", ExtractCharts: true},
			ErrChartDataExtraction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.p.Process(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
