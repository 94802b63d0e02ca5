// Package signals harvests numeric label/value data from free text.
//
// Every pass is a pure function over its input: patterns are compiled once
// at package init and each call walks its own match list, so no iterator
// state is shared between calls or goroutines.
package signals

import (
	"regexp"
	"strconv"
	"strings"
)

// Chart kinds returned by SuggestChartType.
const (
	KindBar  = "bar"
	KindPie  = "pie"
	KindLine = "line"
)

var (
	// "Sales: 100", "ratio:2.5". Non-negative decimals only, no units.
	keyValuePattern = regexp.MustCompile(`(\w+):\s*(\d+(?:\.\d+)?)`)

	// "| cell |" fragments of a pipe table row.
	tableRowPattern = regexp.MustCompile(`\|[^|]+\|`)

	// "- Label: 42" or "* Label: 42".
	bulletPattern = regexp.MustCompile(`[-*]\s*([^:]+):\s*(\d+(?:\.\d+)?)`)
)

// Datum is a label/value pair harvested from text.
type Datum struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Data holds the results of the three independent passes.
// Labels are not deduplicated and overlapping matches across passes are kept.
type Data struct {
	KeyValue []Datum  `json:"keyValue"`
	Tables   []string `json:"tables"`
	Bullets  []Datum  `json:"bullets"`
}

// Extract runs every pass over text. Sequences are never nil.
func Extract(text string) Data {
	return Data{
		KeyValue: KeyValues(text),
		Tables:   TableRows(text),
		Bullets:  Bullets(text),
	}
}

// KeyValues returns every "word: number" pair in order of appearance.
func KeyValues(text string) []Datum {
	return labeledNumbers(keyValuePattern, text)
}

// Bullets returns every bulleted "label: number" pair in order of appearance.
func Bullets(text string) []Datum {
	return labeledNumbers(bulletPattern, text)
}

// TableRows returns every pipe-delimited cell fragment in order of appearance.
func TableRows(text string) []string {
	matches := tableRowPattern.FindAllString(text, -1)
	rows := make([]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, strings.TrimSpace(m))
	}
	return rows
}

// labeledNumbers collects (label, value) submatch pairs for patterns whose
// first group is the label and second group is the number.
func labeledNumbers(re *regexp.Regexp, text string) []Datum {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]Datum, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue // unreachable: the pattern only admits decimal digits
		}
		out = append(out, Datum{Label: strings.TrimSpace(m[1]), Value: v})
	}
	return out
}

// SuggestChartType picks a chart kind from the length of a series.
//
//	n <= 0      bar
//	1 <= n <= 5 pie
//	6 <= n <= 10 bar
//	n > 10      line
func SuggestChartType(n int) string {
	switch {
	case n <= 0:
		return KindBar
	case n <= 5:
		return KindPie
	case n <= 10:
		return KindBar
	default:
		return KindLine
	}
}

// Labels returns the labels of data in order.
func Labels(data []Datum) []string {
	out := make([]string, len(data))
	for i, d := range data {
		out[i] = d.Label
	}
	return out
}

// Values returns the values of data in order.
func Values(data []Datum) []float64 {
	out := make([]float64, len(data))
	for i, d := range data {
		out[i] = d.Value
	}
	return out
}
