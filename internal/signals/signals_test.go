package signals

import (
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKeyValues - "word: number" pass
// ---------------------------------------------------------------------------

func TestKeyValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Datum
	}{
		{
			name: "comma separated pairs keep order",
			text: "Sales: 100, Marketing: 50",
			want: []Datum{{Label: "Sales", Value: 100}, {Label: "Marketing", Value: 50}},
		},
		{
			name: "fractional value",
			text: "Growth: 12.75",
			want: []Datum{{Label: "Growth", Value: 12.75}},
		},
		{
			name: "no space after colon",
			text: "Q1:40",
			want: []Datum{{Label: "Q1", Value: 40}},
		},
		{
			name: "duplicate labels preserved",
			text: "A: 1 A: 2",
			want: []Datum{{Label: "A", Value: 1}, {Label: "A", Value: 2}},
		},
		{
			name: "negative numbers not matched",
			text: "Delta: -5",
			want: []Datum{},
		},
		{
			name: "thousands separator stops the number",
			text: "Users: 1,500",
			want: []Datum{{Label: "Users", Value: 1}},
		},
		{
			name: "multi word label keeps last word only",
			text: "Net profit: 40",
			want: []Datum{{Label: "profit", Value: 40}},
		},
		{
			name: "empty text",
			text: "",
			want: []Datum{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := KeyValues(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("KeyValues(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestBullets - bulleted "label: number" pass
// ---------------------------------------------------------------------------

func TestBullets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Datum
	}{
		{
			name: "dash and star bullets",
			text: "- Revenue: 120\n* Cost: 80.5",
			want: []Datum{{Label: "Revenue", Value: 120}, {Label: "Cost", Value: 80.5}},
		},
		{
			name: "multi word label is trimmed",
			text: "-   Net profit : 40",
			want: []Datum{{Label: "Net profit", Value: 40}},
		},
		{
			name: "plain pairs are not bullets",
			text: "Sales: 100, Marketing: 50",
			want: []Datum{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Bullets(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bullets(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTableRows - pipe fragment pass
// ---------------------------------------------------------------------------

func TestTableRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single cell",
			text: "| Region |",
			want: []string{"| Region |"},
		},
		{
			name: "matches do not overlap",
			text: "| a | b |",
			want: []string{"| a |"},
		},
		{
			name: "one fragment per line",
			text: "| a |\n| b |",
			want: []string{"| a |", "| b |"},
		},
		{
			name: "no pipes",
			text: "no table here",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := TableRows(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TableRows(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExtract - passes run independently
// ---------------------------------------------------------------------------

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("overlapping matches are not deduplicated", func(t *testing.T) {
		t.Parallel()

		got := Extract("- Revenue: 120")
		want := Data{
			KeyValue: []Datum{{Label: "Revenue", Value: 120}},
			Tables:   []string{},
			Bullets:  []Datum{{Label: "Revenue", Value: 120}},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Extract() = %+v, want %+v", got, want)
		}
	})

	t.Run("repeated calls return equal results", func(t *testing.T) {
		t.Parallel()

		text := "A: 1 B: 2 - C: 3 | x |"
		first := Extract(text)
		second := Extract(text)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Extract() not deterministic: %+v vs %+v", first, second)
		}
	})

	t.Run("empty text yields empty non-nil sequences", func(t *testing.T) {
		t.Parallel()

		got := Extract("")
		if got.KeyValue == nil || got.Tables == nil || got.Bullets == nil {
			t.Errorf("Extract(\"\") has nil sequence: %+v", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestSuggestChartType - series length lookup
// ---------------------------------------------------------------------------

func TestSuggestChartType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want string
	}{
		{-1, KindBar},
		{0, KindBar},
		{1, KindPie},
		{3, KindPie},
		{5, KindPie},
		{6, KindBar},
		{8, KindBar},
		{10, KindBar},
		{11, KindLine},
		{15, KindLine},
	}

	for _, tt := range tests {
		if got := SuggestChartType(tt.n); got != tt.want {
			t.Errorf("SuggestChartType(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestLabelsValues(t *testing.T) {
	t.Parallel()

	data := []Datum{{Label: "a", Value: 1}, {Label: "b", Value: 2}}
	if got := Labels(data); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Labels() = %v", got)
	}
	if got := Values(data); !reflect.DeepEqual(got, []float64{1, 2}) {
		t.Errorf("Values() = %v", got)
	}
}
