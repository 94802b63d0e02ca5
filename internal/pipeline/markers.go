package pipeline

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// MarkerKind identifies what a marker asks to be rendered.
type MarkerKind string

// Supported marker kinds. The kind is the keyword inside the brackets.
const (
	MarkerChart   MarkerKind = "CHART"
	MarkerDiagram MarkerKind = "DIAGRAM"
)

// markerPattern matches "[CHART: text]" and "[DIAGRAM: text]", stopping at
// the first closing bracket. One combined pattern keeps matches in document
// order regardless of kind.
var markerPattern = regexp.MustCompile(`\[(CHART|DIAGRAM):\s*([^\]]+)\]`)

// Marker is one marker occurrence in an HTML string.
type Marker struct {
	Kind        MarkerKind
	Description string // HTML-unescaped and trimmed
	Start, End  int    // byte offsets of the whole marker
}

// FindMarkers returns every marker in s, first to last.
// The scan is a pure function of s: regex matching is isolated here so
// it can be replaced by a real tokenizer without touching callers.
func FindMarkers(s string) []Marker {
	locs := markerPattern.FindAllStringSubmatchIndex(s, -1)
	markers := make([]Marker, 0, len(locs))
	for _, loc := range locs {
		markers = append(markers, Marker{
			Kind:        MarkerKind(s[loc[2]:loc[3]]),
			Description: strings.TrimSpace(html.UnescapeString(s[loc[4]:loc[5]])),
			Start:       loc[0],
			End:         loc[1],
		})
	}
	return markers
}

// FragmentGenerator produces the HTML that replaces a marker.
type FragmentGenerator interface {
	Fragment(ctx context.Context, kind MarkerKind, description string) (string, error)
}

// PlaceholderFragments renders a labeled panel naming the requested
// chart or diagram. It never fails.
type PlaceholderFragments struct{}

// Fragment implements FragmentGenerator.
func (PlaceholderFragments) Fragment(_ context.Context, kind MarkerKind, description string) (string, error) {
	class, label := "chart", "Chart"
	if kind == MarkerDiagram {
		class, label = "diagram", "Diagram"
	}
	return fmt.Sprintf(`<div class="%[1]s-container">
<div class="%[1]s-placeholder">
<p><strong>%[2]s:</strong> %[3]s</p>
<p><em>%[2]s generation in progress...</em></p>
</div>
</div>`, class, label, html.EscapeString(description)), nil
}

// MarkerExpander replaces chart and diagram markers with rendered fragments.
type MarkerExpander interface {
	Expand(ctx context.Context, htmlContent string) string
}

// Expander implements MarkerExpander with a pluggable FragmentGenerator.
type Expander struct {
	generator FragmentGenerator
	logger    *zap.Logger
}

// NewExpander creates an Expander. A nil generator means placeholder panels,
// a nil logger means no logging.
func NewExpander(generator FragmentGenerator, logger *zap.Logger) *Expander {
	if generator == nil {
		generator = PlaceholderFragments{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{generator: generator, logger: logger}
}

// Expand replaces every marker in htmlContent, in order of appearance.
//
// Expansion is all or nothing: if any fragment fails, or ctx is done, the
// input is returned unchanged and the cause is logged. Content without
// markers is returned as is.
func (e *Expander) Expand(ctx context.Context, htmlContent string) string {
	markers := FindMarkers(htmlContent)
	if len(markers) == 0 {
		return htmlContent
	}

	var b strings.Builder
	b.Grow(len(htmlContent))
	last := 0
	for _, m := range markers {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("marker expansion interrupted", zap.Error(err))
			return htmlContent
		}
		fragment, err := e.generator.Fragment(ctx, m.Kind, m.Description)
		if err != nil {
			e.logger.Warn("marker expansion failed, keeping original HTML",
				zap.String("kind", string(m.Kind)),
				zap.String("description", m.Description),
				zap.Error(err),
			)
			return htmlContent
		}
		b.WriteString(htmlContent[last:m.Start])
		b.WriteString(fragment)
		last = m.End
	}
	b.WriteString(htmlContent[last:])

	e.logger.Debug("markers expanded", zap.Int("count", len(markers)))
	return b.String()
}
