package papyrus

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Enhancer rewrites text according to suggestions.
type Enhancer interface {
	Enhance(ctx context.Context, text string, suggestions []Suggestion, format Format) (string, error)
}

var _ Enhancer = (*Analyzer)(nil)

// ProcessRequest is the input of ContentPipeline.Process.
type ProcessRequest struct {
	Text          string       `json:"text"`
	Suggestions   []Suggestion `json:"suggestions,omitempty"`
	Format        Format       `json:"format,omitempty"`
	ExtractCharts bool         `json:"extract_charts,omitempty"`
}

// ProcessResult is the enhanced document and what was harvested from it.
type ProcessResult struct {
	Markdown   string             `json:"markdown"`
	Statistics Stats              `json:"statistics"`
	Signals    ExtractedData      `json:"signals"`
	Charts     *CombinedChartData `json:"charts,omitempty"`
}

// ContentPipeline turns raw text into enhanced markdown plus extracted data.
type ContentPipeline struct {
	enhancer Enhancer
	charts   ChartDataExtractor
	logger   *zap.Logger
}

// NewContentPipeline creates a ContentPipeline. Both collaborators may be
// nil: without an enhancer, suggestions cannot be applied; without a chart
// extractor, chart data comes from pattern matching alone.
func NewContentPipeline(enhancer Enhancer, charts ChartDataExtractor, opts ...Option) *ContentPipeline {
	s := newSettings(opts)
	return &ContentPipeline{enhancer: enhancer, charts: charts, logger: s.logger}
}

// Process applies req.Suggestions (if any), then extracts signals from the
// resulting markdown, and chart data too when req.ExtractCharts is set.
func (p *ContentPipeline) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	markdown := req.Text
	if len(req.Suggestions) > 0 {
		if p.enhancer == nil {
			return nil, ErrNoCompleter
		}
		markdown, err = p.enhancer.Enhance(ctx, req.Text, req.Suggestions, format)
		if err != nil {
			return nil, err
		}
	}

	res := &ProcessResult{
		Markdown:   markdown,
		Statistics: ComputeStats(markdown),
		Signals:    ExtractSignals(markdown),
	}

	if req.ExtractCharts {
		extractor := p.charts
		if extractor == nil {
			extractor = patternsOnly{}
		}
		res.Charts, err = ExtractChartData(ctx, extractor, markdown)
		if err != nil {
			return nil, err
		}
	}

	p.logger.Debug("content processed",
		zap.Int("suggestions", len(req.Suggestions)),
		zap.Int("key_values", len(res.Signals.KeyValue)),
		zap.Bool("charts", res.Charts != nil),
	)
	return res, nil
}

// patternsOnly is a ChartDataExtractor that never finds anything, leaving
// ExtractChartData with its pattern-based chart.
type patternsOnly struct{}

func (patternsOnly) ExtractChartData(context.Context, string) (*ChartExtraction, error) {
	return &ChartExtraction{Charts: []ChartSuggestion{}}, nil
}
