package papyrus

import (
	"strings"
	"unicode/utf8"

	"github.com/alnah/papyrus/internal/assets"
	"github.com/alnah/papyrus/internal/pipeline"
	"github.com/alnah/papyrus/internal/signals"
)

// StyleOptions overrides the template typography. Empty fields keep the
// defaults: Arial, 12pt, line height 1.6, #333333 text, #2563eb accent.
type StyleOptions struct {
	FontFamily   string `json:"fontFamily,omitempty"`
	FontSize     string `json:"fontSize,omitempty"`
	LineHeight   string `json:"lineHeight,omitempty"`
	PrimaryColor string `json:"primaryColor,omitempty"`
	AccentColor  string `json:"accentColor,omitempty"`
}

func (o StyleOptions) styleData() pipeline.StyleData {
	return pipeline.StyleData{
		FontFamily:   o.FontFamily,
		FontSize:     o.FontSize,
		LineHeight:   o.LineHeight,
		PrimaryColor: o.PrimaryColor,
		AccentColor:  o.AccentColor,
	}
}

// RenderOptions carries the per-document values merged into a template.
type RenderOptions struct {
	Title  string       `json:"title,omitempty"`
	Author string       `json:"author,omitempty"`
	Date   string       `json:"date,omitempty"` // empty = today, formatted by WithDateFormat
	Styles StyleOptions `json:"styles,omitempty"`

	// SourceDir resolves relative image and link paths of local documents.
	SourceDir string `json:"-"`
}

// Artifact is a generated file exposed under the serving URL prefix.
type Artifact struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Pages    int    `json:"pages,omitempty"`
}

// ChartArtifact is a rendered chart image.
type ChartArtifact struct {
	Artifact
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// DiagramArtifact is a standalone mermaid page.
type DiagramArtifact struct {
	Artifact
	Type string `json:"type"`
}

// TemplateInfo describes an available document template.
type TemplateInfo = assets.TemplateInfo

// Datum is a label/value pair harvested from text.
type Datum = signals.Datum

// ExtractedData groups the three pattern passes of ExtractSignals.
type ExtractedData = signals.Data

// Stats holds the derived counts of a text.
type Stats struct {
	CharacterCount int `json:"character_count"`
	WordCount      int `json:"word_count"`
	LineCount      int `json:"line_count"`
}

// ComputeStats counts runes, whitespace-separated words and
// newline-separated lines. An empty text has one (empty) line.
func ComputeStats(text string) Stats {
	return Stats{
		CharacterCount: utf8.RuneCountInString(text),
		WordCount:      len(strings.Fields(text)),
		LineCount:      strings.Count(text, "\n") + 1,
	}
}

// DocumentContent is markdown text moving through the pipeline.
// Its statistics are derived on every call, never stored.
type DocumentContent struct {
	Text string
}

// Stats recomputes the counts of the current text.
func (d DocumentContent) Stats() Stats {
	return ComputeStats(d.Text)
}

// ExtractSignals runs the key-value, table-row and bullet passes over text.
// Every sequence is non-nil and keeps the order of appearance.
func ExtractSignals(text string) ExtractedData {
	return signals.Extract(text)
}

// SuggestChartType picks a chart kind from a series length:
// n <= 0 bar, 1..5 pie, 6..10 bar, otherwise line.
func SuggestChartType(n int) ChartType {
	return ChartType(signals.SuggestChartType(n))
}
