package papyrus

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/papyrus/internal/fileutil"
)

// ChartType names a chart kind.
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartPie      ChartType = "pie"
	ChartDoughnut ChartType = "doughnut"
	ChartScatter  ChartType = "scatter"
	ChartBubble   ChartType = "bubble"
)

// ChartTypes lists every supported kind.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartDoughnut, ChartScatter, ChartBubble}

// Valid reports whether t is a supported chart kind.
func (t ChartType) Valid() bool {
	for _, k := range ChartTypes {
		if t == k {
			return true
		}
	}
	return false
}

// DiagramType names a mermaid diagram kind.
type DiagramType string

const (
	DiagramFlowchart DiagramType = "flowchart"
	DiagramSequence  DiagramType = "sequence"
	DiagramClass     DiagramType = "class"
	DiagramState     DiagramType = "state"
	DiagramGantt     DiagramType = "gantt"
)

// DiagramTypes lists every supported diagram kind.
var DiagramTypes = []DiagramType{DiagramFlowchart, DiagramSequence, DiagramClass, DiagramState, DiagramGantt}

// Valid reports whether t is a supported diagram kind.
func (t DiagramType) Valid() bool {
	for _, k := range DiagramTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Palette is the default series color cycle.
var Palette = []string{
	"#2563eb", "#dc2626", "#059669", "#d97706",
	"#7c3aed", "#db2777", "#0891b2", "#65a30d",
}

const (
	defaultLineBorder     = "#2563eb"
	defaultLineBackground = "rgba(37, 99, 235, 0.1)"
	defaultLineTension    = 0.1
	defaultChartTitle     = "Chart"
)

// Colors is a single color or one color per data point. It decodes from
// either a JSON string or an array of strings.
type Colors []string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Colors) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*c = Colors{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("colors: want string or array of strings: %w", err)
	}
	*c = many
	return nil
}

// At returns the color for point i, cycling; "" when empty.
func (c Colors) At(i int) string {
	if len(c) == 0 {
		return ""
	}
	return c[i%len(c)]
}

// Point is an x/y sample, with a radius for bubble charts.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r,omitempty"`
}

// Dataset is one named numeric series. Data decodes from either an array
// of numbers or, for scatter and bubble charts, an array of points.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"-"`
	Points          []Point   `json:"-"`
	BackgroundColor Colors    `json:"backgroundColor,omitempty"`
	BorderColor     Colors    `json:"borderColor,omitempty"`
	BorderWidth     float64   `json:"borderWidth,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

type datasetJSON struct {
	Label           string          `json:"label,omitempty"`
	Data            json.RawMessage `json:"data"`
	BackgroundColor Colors          `json:"backgroundColor,omitempty"`
	BorderColor     Colors          `json:"borderColor,omitempty"`
	BorderWidth     float64         `json:"borderWidth,omitempty"`
	Fill            bool            `json:"fill,omitempty"`
	Tension         float64         `json:"tension,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	var raw datasetJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Dataset{
		Label:           raw.Label,
		BackgroundColor: raw.BackgroundColor,
		BorderColor:     raw.BorderColor,
		BorderWidth:     raw.BorderWidth,
		Fill:            raw.Fill,
		Tension:         raw.Tension,
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.Data, &d.Data); err == nil {
		return nil
	}
	if err := json.Unmarshal(raw.Data, &d.Points); err != nil {
		return fmt.Errorf("dataset %q: data must be numbers or points", raw.Label)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Dataset) MarshalJSON() ([]byte, error) {
	var data any = d.Data
	if len(d.Points) > 0 {
		data = d.Points
	} else if d.Data == nil {
		data = []float64{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(datasetJSON{
		Label:           d.Label,
		Data:            payload,
		BackgroundColor: d.BackgroundColor,
		BorderColor:     d.BorderColor,
		BorderWidth:     d.BorderWidth,
		Fill:            d.Fill,
		Tension:         d.Tension,
	})
}

// ChartData is a chart specification: labels paired with datasets.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Validate checks that kind is supported, that there is data, and that
// every numeric dataset has exactly one value per label. Point datasets
// carry their own x values and are exempt from the label check.
func (d ChartData) Validate(kind ChartType) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedChartType, kind)
	}
	if len(d.Datasets) == 0 {
		return ErrEmptyChart
	}
	for i, ds := range d.Datasets {
		if len(ds.Points) > 0 {
			continue
		}
		if len(ds.Data) == 0 {
			return fmt.Errorf("%w: dataset %d", ErrEmptyChart, i)
		}
		if len(ds.Data) != len(d.Labels) {
			return fmt.Errorf("%w: dataset %d has %d values for %d labels",
				ErrDatasetLength, i, len(ds.Data), len(d.Labels))
		}
	}
	return nil
}

// SeriesInput is the minimal description of a dataset passed to builders.
type SeriesInput struct {
	Label string
	Data  []float64
}

// NewBarChart builds bar chart data with palette fills and half-transparent borders.
func NewBarChart(labels []string, series ...SeriesInput) ChartData {
	datasets := make([]Dataset, len(series))
	for i, s := range series {
		datasets[i] = Dataset{
			Label:           s.Label,
			Data:            s.Data,
			BackgroundColor: DefaultColors(len(s.Data)),
			BorderColor:     DefaultBorderColors(len(s.Data)),
			BorderWidth:     1,
		}
	}
	return ChartData{Labels: labels, Datasets: datasets}
}

// NewLineChart builds unfilled line chart data in the accent blue.
func NewLineChart(labels []string, series ...SeriesInput) ChartData {
	datasets := make([]Dataset, len(series))
	for i, s := range series {
		datasets[i] = Dataset{
			Label:           s.Label,
			Data:            s.Data,
			BorderColor:     Colors{defaultLineBorder},
			BackgroundColor: Colors{defaultLineBackground},
			Tension:         defaultLineTension,
		}
	}
	return ChartData{Labels: labels, Datasets: datasets}
}

// NewPieChart builds single-series pie chart data.
func NewPieChart(labels []string, data []float64) ChartData {
	return ChartData{
		Labels: labels,
		Datasets: []Dataset{{
			Data:            data,
			BackgroundColor: DefaultColors(len(data)),
			BorderColor:     DefaultBorderColors(len(data)),
			BorderWidth:     1,
		}},
	}
}

// DefaultColors cycles Palette for n points.
func DefaultColors(n int) Colors {
	out := make(Colors, n)
	for i := range out {
		out[i] = Palette[i%len(Palette)]
	}
	return out
}

// DefaultBorderColors is DefaultColors with 50% alpha ("80" suffix).
func DefaultBorderColors(n int) Colors {
	out := DefaultColors(n)
	for i := range out {
		out[i] += "80"
	}
	return out
}

// ChartOptions holds rendering hints.
type ChartOptions struct {
	Title string `json:"title,omitempty"`
}

// ChartRequest is one entry of a GenerateCharts batch.
type ChartRequest struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Type        ChartType    `json:"type"`
	Data        ChartData    `json:"data"`
	Options     ChartOptions `json:"options,omitempty"`
}

// chartRenderer rasterizes validated chart data to PNG.
type chartRenderer interface {
	RenderPNG(kind ChartType, data ChartData, title string, width, height int) ([]byte, error)
}

// ChartService renders charts to PNG files and writes mermaid diagram pages.
type ChartService struct {
	renderer  chartRenderer
	dir       string
	urlPrefix string
	width     int
	height    int
	logger    *zap.Logger
}

// NewChartService creates a ChartService writing under <outputDir>/charts.
func NewChartService(opts ...Option) *ChartService {
	s := newSettings(opts)
	return &ChartService{
		renderer:  goChartRenderer{},
		dir:       filepath.Join(s.outputDir, "charts"),
		urlPrefix: path.Join(s.urlPrefix, "charts"),
		width:     s.chartWidth,
		height:    s.chartHeight,
		logger:    s.logger,
	}
}

// RenderPNG validates data and rasterizes it without writing a file.
func (s *ChartService) RenderPNG(ctx context.Context, kind ChartType, data ChartData, opts ChartOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := data.Validate(kind); err != nil {
		return nil, err
	}
	title := opts.Title
	if title == "" {
		title = defaultChartTitle
	}
	png, err := s.renderer.RenderPNG(kind, data, title, s.width, s.height)
	if err != nil {
		s.logger.Error("chart rendering failed", zap.String("type", string(kind)), zap.Error(err))
		return nil, ErrChartGeneration
	}
	return png, nil
}

// GenerateChart renders data and writes chart_<uuid>.png.
func (s *ChartService) GenerateChart(ctx context.Context, kind ChartType, data ChartData, opts ChartOptions) (*ChartArtifact, error) {
	png, err := s.RenderPNG(ctx, kind, data, opts)
	if err != nil {
		return nil, err
	}

	art, err := s.write(fileutil.UniqueName("chart", "png"), png)
	if err != nil {
		s.logger.Error("writing chart failed", zap.Error(err))
		return nil, ErrChartGeneration
	}

	s.logger.Debug("chart generated", zap.String("file", art.Filename), zap.String("type", string(kind)))
	return &ChartArtifact{Artifact: *art, Width: s.width, Height: s.height}, nil
}

// GenerateCharts renders every request in order. The first failure aborts
// the batch and no result is returned.
func (s *ChartService) GenerateCharts(ctx context.Context, reqs []ChartRequest) ([]ChartArtifact, error) {
	results := make([]ChartArtifact, 0, len(reqs))
	for i, req := range reqs {
		opts := req.Options
		if opts.Title == "" {
			opts.Title = req.Title
		}
		art, err := s.GenerateChart(ctx, req.Type, req.Data, opts)
		if err != nil {
			return nil, fmt.Errorf("chart %d: %w", i, err)
		}
		art.Title = req.Title
		if art.Title == "" {
			art.Title = defaultChartTitle
		}
		art.Description = req.Description
		results = append(results, *art)
	}
	return results, nil
}

// GenerateDiagram writes diagram_<uuid>.html, a page that renders code with
// mermaid.js when opened.
func (s *ChartService) GenerateDiagram(ctx context.Context, code string) (*DiagramArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyText
	}

	art, err := s.write(fileutil.UniqueName("diagram", "html"), []byte(DiagramPage(code)))
	if err != nil {
		s.logger.Error("writing diagram failed", zap.Error(err))
		return nil, ErrDiagramGeneration
	}
	return &DiagramArtifact{Artifact: *art, Type: "diagram"}, nil
}

func (s *ChartService) write(name string, data []byte) (*Artifact, error) {
	p, size, err := fileutil.WriteArtifact(s.dir, name, data)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return &Artifact{
		Filename: name,
		Path:     p,
		URL:      s.urlPrefix + "/" + name,
		Size:     size,
	}, nil
}

const mermaidScript = `<script src="https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"></script>
<script>mermaid.initialize({startOnLoad:true});</script>`

// DiagramPage returns a standalone HTML page rendering mermaid code.
func DiagramPage(code string) string {
	return `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
` + mermaidScript + `
</head>
<body>
` + MermaidBlock(code) + `
</body>
</html>
`
}

// mermaidTag opens every block mermaid.js renders.
const mermaidTag = `<div class="mermaid">`

// withMermaid appends the mermaid loader once when fragment holds at least
// one diagram block.
func withMermaid(fragment string) string {
	if !strings.Contains(fragment, mermaidTag) {
		return fragment
	}
	return fragment + "\n" + mermaidScript
}

// MermaidBlock wraps code in the element mermaid.js renders from.
func MermaidBlock(code string) string {
	return mermaidTag + `
` + html.EscapeString(strings.TrimSpace(code)) + `
</div>`
}
