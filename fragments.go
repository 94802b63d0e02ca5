package papyrus

import (
	"context"
	"encoding/base64"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/papyrus/internal/pipeline"
	"github.com/alnah/papyrus/internal/signals"
)

var _ pipeline.FragmentGenerator = (*MarkerFragments)(nil)

// DiagramCoder produces mermaid source for a description.
type DiagramCoder interface {
	GenerateDiagramCode(ctx context.Context, text string, kind DiagramType) (string, error)
}

var _ DiagramCoder = (*Analyzer)(nil)

// MarkerFragments renders [CHART: ...] markers as inline PNG charts and
// [DIAGRAM: ...] markers as mermaid blocks.
//
// Chart data comes from the key-value pairs in the description, then from
// the model when ai is set. A marker with no usable data, or a diagram
// marker without a model, keeps the placeholder panel, as does a chart
// the rasterizer rejects. Diagram fragments carry no script: the compiler
// loads mermaid once per document (see withMermaid).
type MarkerFragments struct {
	charts   *ChartService
	ai       ChartDataExtractor
	diagrams DiagramCoder
	logger   *zap.Logger
}

// NewMarkerFragments creates a MarkerFragments. ai and diagrams may be nil.
func NewMarkerFragments(charts *ChartService, ai ChartDataExtractor, diagrams DiagramCoder, logger *zap.Logger) *MarkerFragments {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkerFragments{charts: charts, ai: ai, diagrams: diagrams, logger: logger}
}

// Fragment implements pipeline.FragmentGenerator.
func (m *MarkerFragments) Fragment(ctx context.Context, kind pipeline.MarkerKind, description string) (string, error) {
	if kind == pipeline.MarkerDiagram {
		return m.diagram(ctx, description)
	}
	return m.chart(ctx, description)
}

func (m *MarkerFragments) chart(ctx context.Context, description string) (string, error) {
	suggestion, ok, err := m.chartData(ctx, description)
	if err != nil {
		return "", err
	}
	if !ok {
		return pipeline.PlaceholderFragments{}.Fragment(ctx, pipeline.MarkerChart, description)
	}

	png, err := m.charts.RenderPNG(ctx, suggestion.Type, suggestion.Data, ChartOptions{Title: suggestion.Title})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// A rejected chart degrades to its own placeholder only.
		m.logger.Warn("chart marker kept as placeholder",
			zap.String("title", suggestion.Title), zap.Error(err))
		return pipeline.PlaceholderFragments{}.Fragment(ctx, pipeline.MarkerChart, description)
	}
	return `<div class="chart-container"><img src="data:image/png;base64,` +
		base64.StdEncoding.EncodeToString(png) +
		`" alt="` + html.EscapeString(suggestion.Title) + `"></div>`, nil
}

// chartData finds something to plot for description.
func (m *MarkerFragments) chartData(ctx context.Context, description string) (ChartSuggestion, bool, error) {
	if pairs := signals.KeyValues(description); len(pairs) > 0 {
		s := SignalsChart(pairs)
		s.Title = chartTitle(description)
		return s, true, nil
	}
	if m.ai == nil {
		return ChartSuggestion{}, false, nil
	}

	extracted, err := m.ai.ExtractChartData(ctx, description)
	if err != nil {
		return ChartSuggestion{}, false, err
	}
	for _, c := range extracted.Charts {
		if c.Data.Validate(c.Type) == nil {
			return c, true, nil
		}
		m.logger.Debug("skipping unusable model chart", zap.String("title", c.Title))
	}
	return ChartSuggestion{}, false, nil
}

func (m *MarkerFragments) diagram(ctx context.Context, description string) (string, error) {
	if m.diagrams == nil {
		return pipeline.PlaceholderFragments{}.Fragment(ctx, pipeline.MarkerDiagram, description)
	}
	code, err := m.diagrams.GenerateDiagramCode(ctx, description, DiagramFlowchart)
	if err != nil {
		return "", err
	}
	return `<div class="diagram-container">` + MermaidBlock(code) + "</div>", nil
}

// chartTitle is the description text before its first "label: value" pair,
// or the whole description when that prefix is empty.
func chartTitle(description string) string {
	title := description
	if i := strings.IndexByte(description, ':'); i >= 0 {
		prefix := description[:i]
		// drop the label word of the first pair
		if j := strings.LastIndexAny(prefix, " ,;-("); j >= 0 {
			title = strings.TrimSpace(prefix[:j])
		} else {
			title = ""
		}
	}
	title = strings.TrimRight(title, " ,;:-(")
	if title == "" {
		return strings.TrimSpace(description)
	}
	return title
}
