package papyrus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/papyrus/internal/signals"
)

// CompletionRequest is a single system+user exchange with a language model.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string // empty = the backend's default
	Temperature float64
	MaxTokens   int
}

// Completer returns the text reply of a language model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ModelSet names the model used by each Analyzer operation.
type ModelSet struct {
	Analyze string
	Enhance string
	Extract string
	Diagram string
}

// DefaultModels returns the OpenAI model names.
func DefaultModels() ModelSet {
	return ModelSet{
		Analyze: "gpt-4",
		Enhance: "gpt-4",
		Extract: "gpt-3.5-turbo",
		Diagram: "gpt-3.5-turbo",
	}
}

// Sampling settings per operation.
const (
	analyzeTemperature = 0.3
	analyzeMaxTokens   = 2000
	enhanceTemperature = 0.2
	enhanceMaxTokens   = 3000
	extractTemperature = 0.1
	extractMaxTokens   = 1500
	diagramTemperature = 0.3
	diagramMaxTokens   = 1000
)

// Format is the markup of submitted text.
type Format string

const (
	FormatPlain    Format = "plain"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates s. An empty string means plain text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPlain, nil
	case FormatPlain, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want plain, markdown or html)", ErrInvalidFormat, s)
	}
}

// Suggestion kinds.
const (
	SuggestHeading = "heading"
	SuggestList    = "list"
	SuggestTable   = "table"
	SuggestChart   = "chart"
	SuggestDiagram = "diagram"
)

// Suggestion is one proposed change. Type selects which of the optional
// fields are meaningful. Position is free text and may no longer match
// the document once it has been edited.
type Suggestion struct {
	Type        string          `json:"type"`
	Position    string          `json:"position,omitempty"`
	Current     string          `json:"current,omitempty"`
	Suggested   string          `json:"suggested,omitempty"`
	Level       int             `json:"level,omitempty"`
	ListType    string          `json:"listType,omitempty"`
	ChartType   string          `json:"chartType,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	DiagramType string          `json:"diagramType,omitempty"`
	Description string          `json:"description,omitempty"`
	Reasoning   string          `json:"reasoning,omitempty"`
}

// DocumentStructure is the proposed outline of a document.
type DocumentStructure struct {
	Title          string   `json:"title"`
	Sections       []string `json:"sections"`
	EstimatedPages int      `json:"estimated_pages"`
	DocumentType   string   `json:"document_type"`
}

// TypographyAdvice lists font and style recommendations.
type TypographyAdvice struct {
	FontSuggestions      []string `json:"font_suggestions"`
	StyleRecommendations []string `json:"style_recommendations"`
}

// Analysis is the result of Analyzer.Analyze.
type Analysis struct {
	Suggestions      []Suggestion      `json:"suggestions"`
	OverallStructure DocumentStructure `json:"overall_structure"`
	Typography       TypographyAdvice  `json:"typography"`
}

// ChartSuggestion is a chart proposed for a document.
type ChartSuggestion struct {
	Title    string    `json:"title"`
	Type     ChartType `json:"type"`
	Data     ChartData `json:"data"`
	Context  string    `json:"context,omitempty"`
	Position string    `json:"position,omitempty"`
	Source   string    `json:"source,omitempty"`
}

// ChartExtraction is the model's view of the chartable data in a text.
type ChartExtraction struct {
	Charts []ChartSuggestion `json:"charts"`
}

// Analyzer runs the language-model operations.
type Analyzer struct {
	completer Completer
	models    ModelSet
	logger    *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil completer makes every operation
// return ErrNoCompleter.
func NewAnalyzer(c Completer, opts ...Option) *Analyzer {
	s := newSettings(opts)
	return &Analyzer{completer: c, models: s.models, logger: s.logger}
}

// Analyze asks for structure, formatting, visualization and typography
// suggestions. A reply that is not the expected JSON is an error.
func (a *Analyzer) Analyze(ctx context.Context, text string, format Format) (*Analysis, error) {
	if err := a.check(text); err != nil {
		return nil, err
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	reply, err := a.complete(ctx, "analyze", CompletionRequest{
		System:      analyzeSystem,
		Prompt:      analyzePrompt(text, formatOrPlain(format)),
		Model:       a.models.Analyze,
		Temperature: analyzeTemperature,
		MaxTokens:   analyzeMaxTokens,
	})
	if err != nil {
		return nil, ErrAnalysis
	}

	var analysis Analysis
	if err := decodeReply(reply, &analysis); err != nil {
		a.logger.Error("analysis reply is not valid JSON", zap.Error(err))
		return nil, ErrAnalysis
	}
	if analysis.Suggestions == nil {
		analysis.Suggestions = []Suggestion{}
	}
	return &analysis, nil
}

// Enhance applies suggestions and returns markdown. Chart and diagram
// suggestions come back as [CHART: ...] and [DIAGRAM: ...] markers.
func (a *Analyzer) Enhance(ctx context.Context, text string, suggestions []Suggestion, format Format) (string, error) {
	if err := a.check(text); err != nil {
		return "", err
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}

	encoded, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding suggestions: %v", ErrEnhancement, err)
	}

	reply, err := a.complete(ctx, "enhance", CompletionRequest{
		System:      enhanceSystem,
		Prompt:      enhancePrompt(text, formatOrPlain(format), string(encoded)),
		Model:       a.models.Enhance,
		Temperature: enhanceTemperature,
		MaxTokens:   enhanceMaxTokens,
	})
	if err != nil {
		return "", ErrEnhancement
	}
	return reply, nil
}

// ExtractChartData asks the model for chartable numeric data.
func (a *Analyzer) ExtractChartData(ctx context.Context, text string) (*ChartExtraction, error) {
	if err := a.check(text); err != nil {
		return nil, err
	}

	reply, err := a.complete(ctx, "extract", CompletionRequest{
		System:      extractSystem,
		Prompt:      extractPrompt(text),
		Model:       a.models.Extract,
		Temperature: extractTemperature,
		MaxTokens:   extractMaxTokens,
	})
	if err != nil {
		return nil, ErrChartDataExtraction
	}

	var out ChartExtraction
	if err := decodeReply(reply, &out); err != nil {
		a.logger.Error("chart data reply is not valid JSON", zap.Error(err))
		return nil, ErrChartDataExtraction
	}
	if out.Charts == nil {
		out.Charts = []ChartSuggestion{}
	}
	return &out, nil
}

// GenerateDiagramCode returns mermaid.js source for a diagram of text.
// An empty kind means flowchart.
func (a *Analyzer) GenerateDiagramCode(ctx context.Context, text string, kind DiagramType) (string, error) {
	if kind == "" {
		kind = DiagramFlowchart
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDiagramType, kind)
	}
	if err := a.check(text); err != nil {
		return "", err
	}

	reply, err := a.complete(ctx, "diagram", CompletionRequest{
		System:      diagramSystem,
		Prompt:      diagramPrompt(text, kind),
		Model:       a.models.Diagram,
		Temperature: diagramTemperature,
		MaxTokens:   diagramMaxTokens,
	})
	if err != nil {
		return "", ErrDiagramDescription
	}
	return stripCodeFence(reply), nil
}

func (a *Analyzer) check(text string) error {
	if a.completer == nil {
		return ErrNoCompleter
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}

// complete calls the model and logs failures; callers return their own
// sentinel so the cause never leaves the package.
func (a *Analyzer) complete(ctx context.Context, op string, req CompletionRequest) (string, error) {
	reply, err := a.completer.Complete(ctx, req)
	if err != nil {
		a.logger.Error("language model call failed",
			zap.String("operation", op),
			zap.String("model", req.Model),
			zap.Error(err),
		)
		return "", err
	}
	a.logger.Debug("language model call",
		zap.String("operation", op),
		zap.String("model", req.Model),
		zap.Int("reply_bytes", len(reply)),
	)
	return reply, nil
}

func formatOrPlain(f Format) Format {
	if f == "" {
		return FormatPlain
	}
	return f
}

// decodeReply parses a JSON reply, tolerating a surrounding code fence.
func decodeReply(reply string, v any) error {
	return json.Unmarshal([]byte(stripCodeFence(reply)), v)
}

// stripCodeFence removes a leading ```lang line and a trailing ``` line.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ChartDataExtractor is the model-backed half of chart data extraction.
type ChartDataExtractor interface {
	ExtractChartData(ctx context.Context, text string) (*ChartExtraction, error)
}

var _ ChartDataExtractor = (*Analyzer)(nil)

// CombinedChartData merges pattern-based and model-based extraction.
type CombinedChartData struct {
	SimpleExtraction ExtractedData     `json:"simple_extraction"`
	AIExtraction     ChartExtraction   `json:"ai_extraction"`
	SuggestedCharts  []ChartSuggestion `json:"suggested_charts"`
}

// SourceSimpleExtraction marks charts built from ExtractSignals.
const SourceSimpleExtraction = "simple_extraction"

// ExtractChartData runs ExtractSignals and the model extraction over text.
// SuggestedCharts lists every model chart first, then one "Extracted Data"
// chart built from the key-value pairs when there are any.
func ExtractChartData(ctx context.Context, ai ChartDataExtractor, text string) (*CombinedChartData, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	simple := ExtractSignals(text)
	extracted, err := ai.ExtractChartData(ctx, text)
	if err != nil {
		return nil, err
	}

	combined := &CombinedChartData{
		SimpleExtraction: simple,
		AIExtraction:     *extracted,
		SuggestedCharts:  make([]ChartSuggestion, 0, len(extracted.Charts)+1),
	}
	for _, c := range extracted.Charts {
		combined.SuggestedCharts = append(combined.SuggestedCharts, ChartSuggestion{
			Title:    c.Title,
			Type:     c.Type,
			Data:     c.Data,
			Position: c.Position,
		})
	}
	if len(simple.KeyValue) > 0 {
		combined.SuggestedCharts = append(combined.SuggestedCharts, SignalsChart(simple.KeyValue))
	}
	return combined, nil
}

// SignalsChart turns key-value pairs into a bar-styled chart suggestion
// typed by SuggestChartType.
func SignalsChart(data []Datum) ChartSuggestion {
	labels, values := signals.Labels(data), signals.Values(data)
	return ChartSuggestion{
		Title:  "Extracted Data",
		Type:   SuggestChartType(len(values)),
		Data:   NewBarChart(labels, SeriesInput{Label: "Values", Data: values}),
		Source: SourceSimpleExtraction,
	}
}
