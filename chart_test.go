package papyrus

// Notes:
// - ChartService tests swap in mockChartRenderer to check validation and
//   file handling; TestGoChartRenderer renders real PNGs with go-chart.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

type mockChartRenderer struct {
	png   []byte
	err   error
	calls []string
}

func (m *mockChartRenderer) RenderPNG(kind ChartType, _ ChartData, title string, _, _ int) ([]byte, error) {
	m.calls = append(m.calls, string(kind)+":"+title)
	return m.png, m.err
}

func newTestChartService(t *testing.T, r chartRenderer) *ChartService {
	t.Helper()
	s := NewChartService(WithOutputDir(t.TempDir()), WithURLPrefix("/generated"), WithChartSize(640, 480))
	s.renderer = r
	return s
}

// ---------------------------------------------------------------------------
// TestChartData_Validate
// ---------------------------------------------------------------------------

func TestChartData_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    ChartType
		data    ChartData
		wantErr error
	}{
		{
			name: "valid bar",
			kind: ChartBar,
			data: NewBarChart([]string{"A", "B"}, SeriesInput{Label: "x", Data: []float64{1, 2}}),
		},
		{
			name:    "unsupported kind",
			kind:    "radar",
			data:    NewPieChart([]string{"A"}, []float64{1}),
			wantErr: ErrUnsupportedChartType,
		},
		{
			name:    "no datasets",
			kind:    ChartLine,
			data:    ChartData{Labels: []string{"A"}},
			wantErr: ErrEmptyChart,
		},
		{
			name:    "empty dataset",
			kind:    ChartLine,
			data:    ChartData{Labels: []string{"A"}, Datasets: []Dataset{{Label: "x"}}},
			wantErr: ErrEmptyChart,
		},
		{
			name:    "length mismatch",
			kind:    ChartBar,
			data:    ChartData{Labels: []string{"A", "B", "C"}, Datasets: []Dataset{{Data: []float64{1, 2}}}},
			wantErr: ErrDatasetLength,
		},
		{
			name: "points exempt from label count",
			kind: ChartScatter,
			data: ChartData{Datasets: []Dataset{{Points: []Point{{X: 1, Y: 2}, {X: 3, Y: 4}}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.data.Validate(tt.kind)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBuilders
// ---------------------------------------------------------------------------

func TestNewBarChart(t *testing.T) {
	t.Parallel()

	got := NewBarChart([]string{"Q1", "Q2"}, SeriesInput{Label: "Revenue", Data: []float64{10, 20}})

	if len(got.Datasets) != 1 {
		t.Fatalf("datasets = %d, want 1", len(got.Datasets))
	}
	ds := got.Datasets[0]
	if want := (Colors{"#2563eb", "#dc2626"}); !reflect.DeepEqual(ds.BackgroundColor, want) {
		t.Errorf("BackgroundColor = %v, want %v", ds.BackgroundColor, want)
	}
	if want := (Colors{"#2563eb80", "#dc262680"}); !reflect.DeepEqual(ds.BorderColor, want) {
		t.Errorf("BorderColor = %v, want %v", ds.BorderColor, want)
	}
	if ds.BorderWidth != 1 {
		t.Errorf("BorderWidth = %v, want 1", ds.BorderWidth)
	}
}

func TestNewLineChart(t *testing.T) {
	t.Parallel()

	ds := NewLineChart([]string{"a", "b"}, SeriesInput{Data: []float64{1, 2}}).Datasets[0]

	if ds.Fill {
		t.Error("line datasets must not be filled")
	}
	if ds.Tension != 0.1 {
		t.Errorf("Tension = %v, want 0.1", ds.Tension)
	}
	if ds.BorderColor.At(0) != "#2563eb" {
		t.Errorf("BorderColor = %v", ds.BorderColor)
	}
	if ds.BackgroundColor.At(0) != "rgba(37, 99, 235, 0.1)" {
		t.Errorf("BackgroundColor = %v", ds.BackgroundColor)
	}
}

func TestDefaultColors_Cycles(t *testing.T) {
	t.Parallel()

	got := DefaultColors(10)
	if got[8] != Palette[0] || got[9] != Palette[1] {
		t.Errorf("DefaultColors(10) did not cycle: %v", got)
	}
	if len(DefaultColors(0)) != 0 {
		t.Error("DefaultColors(0) should be empty")
	}
}

// ---------------------------------------------------------------------------
// TestDatasetJSON
// ---------------------------------------------------------------------------

func TestDataset_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantData   []float64
		wantPoints []Point
		wantBg     Colors
		wantErr    bool
	}{
		{
			name:     "numbers and single color",
			input:    `{"label":"a","data":[1,2.5],"backgroundColor":"#fff"}`,
			wantData: []float64{1, 2.5},
			wantBg:   Colors{"#fff"},
		},
		{
			name:       "points and color array",
			input:      `{"data":[{"x":1,"y":2,"r":3}],"backgroundColor":["#000","#111"]}`,
			wantPoints: []Point{{X: 1, Y: 2, R: 3}},
			wantBg:     Colors{"#000", "#111"},
		},
		{
			name:    "strings rejected",
			input:   `{"data":["a","b"]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ds Dataset
			err := json.Unmarshal([]byte(tt.input), &ds)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ds.Data, tt.wantData) {
				t.Errorf("Data = %v, want %v", ds.Data, tt.wantData)
			}
			if !reflect.DeepEqual(ds.Points, tt.wantPoints) {
				t.Errorf("Points = %v, want %v", ds.Points, tt.wantPoints)
			}
			if !reflect.DeepEqual(ds.BackgroundColor, tt.wantBg) {
				t.Errorf("BackgroundColor = %v, want %v", ds.BackgroundColor, tt.wantBg)
			}
		})
	}
}

func TestDataset_MarshalJSON_EmptyDataIsArray(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Dataset{Label: "x"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(b), `"data":[]`) {
		t.Errorf("Marshal() = %s, want data as empty array", b)
	}
}

// ---------------------------------------------------------------------------
// TestParseColor
// ---------------------------------------------------------------------------

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		want   drawing.Color
		wantOK bool
	}{
		{"#2563eb", drawing.Color{R: 0x25, G: 0x63, B: 0xeb, A: 255}, true},
		{"#2563EB80", drawing.Color{R: 0x25, G: 0x63, B: 0xeb, A: 0x80}, true},
		{"#fff", drawing.Color{R: 255, G: 255, B: 255, A: 255}, true},
		{"rgb(1, 2, 3)", drawing.Color{R: 1, G: 2, B: 3, A: 255}, true},
		{"rgba(37, 99, 235, 0.1)", drawing.Color{R: 37, G: 99, B: 235, A: 26}, true},
		{"rgba(0,0,0,2)", drawing.Color{}, false},
		{"rgb(300,0,0)", drawing.Color{}, false},
		{"#12345", drawing.Color{}, false},
		{"blue", drawing.Color{}, false},
		{"", drawing.Color{}, false},
	}

	for _, tt := range tests {
		got, ok := parseColor(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseColor(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

// ---------------------------------------------------------------------------
// TestChartService
// ---------------------------------------------------------------------------

func TestChartService_GenerateChart(t *testing.T) {
	t.Parallel()

	r := &mockChartRenderer{png: []byte("png-bytes")}
	s := newTestChartService(t, r)

	art, err := s.GenerateChart(context.Background(), ChartPie,
		NewPieChart([]string{"A", "B"}, []float64{1, 2}), ChartOptions{})
	if err != nil {
		t.Fatalf("GenerateChart() error = %v", err)
	}

	if !strings.HasPrefix(art.Filename, "chart_") || !strings.HasSuffix(art.Filename, ".png") {
		t.Errorf("Filename = %q", art.Filename)
	}
	if art.URL != "/generated/charts/"+art.Filename {
		t.Errorf("URL = %q", art.URL)
	}
	if !filepath.IsAbs(art.Path) {
		t.Errorf("Path %q is not absolute", art.Path)
	}
	if art.Width != 640 || art.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", art.Width, art.Height)
	}
	got, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if int64(len(got)) != art.Size {
		t.Errorf("Size = %d, file has %d bytes", art.Size, len(got))
	}
	if r.calls[0] != "pie:Chart" {
		t.Errorf("renderer called with %q, want default title", r.calls[0])
	}
}

func TestChartService_GenerateChart_Errors(t *testing.T) {
	t.Parallel()

	t.Run("validation error before rendering", func(t *testing.T) {
		t.Parallel()

		r := &mockChartRenderer{}
		s := newTestChartService(t, r)

		_, err := s.GenerateChart(context.Background(), "radar", ChartData{}, ChartOptions{})
		if !errors.Is(err, ErrUnsupportedChartType) {
			t.Errorf("error = %v, want ErrUnsupportedChartType", err)
		}
		if len(r.calls) != 0 {
			t.Error("renderer must not be called for invalid data")
		}
	})

	t.Run("renderer error", func(t *testing.T) {
		t.Parallel()

		s := newTestChartService(t, &mockChartRenderer{err: errors.New("raster")})

		_, err := s.GenerateChart(context.Background(), ChartBar,
			NewBarChart([]string{"A"}, SeriesInput{Data: []float64{1}}), ChartOptions{})
		if !errors.Is(err, ErrChartGeneration) {
			t.Errorf("error = %v, want ErrChartGeneration", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		s := newTestChartService(t, &mockChartRenderer{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.GenerateChart(ctx, ChartBar, ChartData{}, ChartOptions{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestChartService_GenerateCharts(t *testing.T) {
	t.Parallel()

	valid := NewPieChart([]string{"A"}, []float64{1})

	t.Run("titles and descriptions carried", func(t *testing.T) {
		t.Parallel()

		r := &mockChartRenderer{png: []byte("x")}
		s := newTestChartService(t, r)

		got, err := s.GenerateCharts(context.Background(), []ChartRequest{
			{Title: "Share", Description: "market share", Type: ChartPie, Data: valid},
			{Type: ChartPie, Data: valid},
		})
		if err != nil {
			t.Fatalf("GenerateCharts() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d results, want 2", len(got))
		}
		if got[0].Title != "Share" || got[0].Description != "market share" {
			t.Errorf("first = %+v", got[0])
		}
		if got[1].Title != "Chart" {
			t.Errorf("second title = %q, want Chart", got[1].Title)
		}
		if want := []string{"pie:Share", "pie:Chart"}; !reflect.DeepEqual(r.calls, want) {
			t.Errorf("renderer calls = %v, want %v", r.calls, want)
		}
	})

	t.Run("first failure aborts", func(t *testing.T) {
		t.Parallel()

		r := &mockChartRenderer{png: []byte("x")}
		s := newTestChartService(t, r)

		got, err := s.GenerateCharts(context.Background(), []ChartRequest{
			{Type: ChartPie, Data: valid},
			{Type: "radar", Data: valid},
			{Type: ChartPie, Data: valid},
		})
		if !errors.Is(err, ErrUnsupportedChartType) {
			t.Fatalf("error = %v, want ErrUnsupportedChartType", err)
		}
		if !strings.Contains(err.Error(), "chart 1") {
			t.Errorf("error %q does not name the failing index", err)
		}
		if got != nil {
			t.Errorf("results = %v, want nil", got)
		}
		if len(r.calls) != 1 {
			t.Errorf("renderer called %d times, want 1", len(r.calls))
		}
	})
}

func TestChartService_GenerateDiagram(t *testing.T) {
	t.Parallel()

	s := newTestChartService(t, &mockChartRenderer{})

	art, err := s.GenerateDiagram(context.Background(), "graph TD\n  A --> B")
	if err != nil {
		t.Fatalf("GenerateDiagram() error = %v", err)
	}
	if art.Type != "diagram" {
		t.Errorf("Type = %q", art.Type)
	}
	if !strings.HasPrefix(art.Filename, "diagram_") || !strings.HasSuffix(art.Filename, ".html") {
		t.Errorf("Filename = %q", art.Filename)
	}

	page, err := os.ReadFile(art.Path)
	if err != nil {
		t.Fatalf("reading page: %v", err)
	}
	for _, want := range []string{`<div class="mermaid">`, "A --&gt; B", "mermaid.initialize"} {
		if !strings.Contains(string(page), want) {
			t.Errorf("page missing %q", want)
		}
	}

	if _, err := s.GenerateDiagram(context.Background(), "  "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("empty code error = %v, want ErrEmptyText", err)
	}
}

// ---------------------------------------------------------------------------
// TestGoChartRenderer
// ---------------------------------------------------------------------------

func TestGoChartRenderer(t *testing.T) {
	t.Parallel()

	labels := []string{"Jan", "Feb", "Mar"}
	tests := []struct {
		name string
		kind ChartType
		data ChartData
	}{
		{"bar", ChartBar, NewBarChart(labels, SeriesInput{Label: "a", Data: []float64{3, 7, 5}})},
		{"stacked bar", ChartBar, NewBarChart(labels,
			SeriesInput{Label: "a", Data: []float64{3, 7, 5}},
			SeriesInput{Label: "b", Data: []float64{1, 2, 4}})},
		{"line", ChartLine, NewLineChart(labels, SeriesInput{Label: "a", Data: []float64{3, 7, 5}})},
		{"pie", ChartPie, NewPieChart(labels, []float64{3, 7, 5})},
		{"doughnut", ChartDoughnut, NewPieChart(labels, []float64{3, 7, 5})},
		{"scatter", ChartScatter, ChartData{Datasets: []Dataset{{
			Points: []Point{{X: 1, Y: 2}, {X: 2, Y: 5}, {X: 4, Y: 3}},
		}}}},
		{"bubble", ChartBubble, ChartData{Datasets: []Dataset{{
			Points: []Point{{X: 1, Y: 2, R: 4}, {X: 2, Y: 5, R: 8}, {X: 4, Y: 3, R: 12}},
		}}}},
		{"flat bar", ChartBar, NewBarChart(labels, SeriesInput{Label: "a", Data: []float64{5, 5, 5}})},
		{"zero bar", ChartBar, NewBarChart(labels, SeriesInput{Label: "a", Data: []float64{0, 0, 0}})},
		{"negative flat bar", ChartBar, NewBarChart(labels, SeriesInput{Label: "a", Data: []float64{-2, -2, -2}})},
		{"zero pie", ChartPie, NewPieChart([]string{"A", "B"}, []float64{0, 0})},
		{"zero doughnut", ChartDoughnut, NewPieChart([]string{"A", "B"}, []float64{0, 0})},
		{"flat line", ChartLine, NewLineChart(labels, SeriesInput{Label: "a", Data: []float64{4, 4, 4}})},
		{"single point line", ChartLine, NewLineChart([]string{"Jan"}, SeriesInput{Label: "a", Data: []float64{4}})},
		{"single point scatter", ChartScatter, ChartData{Datasets: []Dataset{{Points: []Point{{X: 3, Y: 3}}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			png, err := goChartRenderer{}.RenderPNG(tt.kind, tt.data, "Title", 400, 300)
			if err != nil {
				t.Fatalf("RenderPNG() error = %v", err)
			}
			if !bytes.HasPrefix(png, pngSignature) {
				t.Error("output is not a PNG")
			}
		})
	}
}

func TestMermaidBlock_Escapes(t *testing.T) {
	t.Parallel()

	got := MermaidBlock("  A-->B<script>  ")
	if strings.Contains(got, "<script>") {
		t.Errorf("MermaidBlock did not escape: %q", got)
	}
	if !strings.Contains(got, "A--&gt;B&lt;script&gt;") {
		t.Errorf("MermaidBlock = %q", got)
	}
}
