package papyrus

import "fmt"

// Style suggestion catalogs.
const (
	SuggestionsTypography = "typography"
	SuggestionsColors     = "colors"
	SuggestionsLayouts    = "layouts"
)

// TypographyCatalog lists selectable fonts, sizes and styles.
type TypographyCatalog struct {
	Fonts  []string `json:"fonts"`
	Sizes  []string `json:"sizes"`
	Styles []string `json:"styles"`
}

// ColorCatalog lists selectable palettes.
type ColorCatalog struct {
	Primary     []string `json:"primary"`
	Accent      []string `json:"accent"`
	Backgrounds []string `json:"backgrounds"`
}

// LayoutChoice is one selectable layout.
type LayoutChoice struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Suggestions returns the catalog for kind: a TypographyCatalog, a
// ColorCatalog, or a []LayoutChoice. Unknown kinds wrap ErrUnknownSuggestion.
func Suggestions(kind string) (any, error) {
	switch kind {
	case SuggestionsTypography:
		return TypographyCatalog{
			Fonts:  []string{"Arial", "Helvetica", "Georgia", "Times New Roman", "Verdana", "Calibri"},
			Sizes:  []string{"10pt", "11pt", "12pt", "14pt", "16pt", "18pt"},
			Styles: []string{"Normal", "Bold", "Italic", "Bold Italic"},
		}, nil
	case SuggestionsColors:
		return ColorCatalog{
			Primary:     []string{"#333333", "#000000", "#2c3e50", "#34495e"},
			Accent:      []string{"#3498db", "#e74c3c", "#2ecc71", "#f39c12", "#9b59b6"},
			Backgrounds: []string{"#ffffff", "#f8f9fa", "#ecf0f1", "#bdc3c7"},
		}, nil
	case SuggestionsLayouts:
		return []LayoutChoice{
			{Name: "default", Description: "Clean and simple"},
			{Name: "modern", Description: "Contemporary design"},
			{Name: "classic", Description: "Traditional layout"},
			{Name: "minimal", Description: "Ultra-clean design"},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuggestion, kind)
	}
}
