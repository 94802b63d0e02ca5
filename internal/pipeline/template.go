package pipeline

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
)

// Placeholder tokens recognized in document templates.
const (
	TokenTitle   = "{{TITLE}}"
	TokenContent = "{{CONTENT}}"
	TokenAuthor  = "{{AUTHOR}}"
	TokenDate    = "{{DATE}}"
	TokenStyles  = "{{STYLES}}"
)

// DefaultTitle is used when no title is supplied.
const DefaultTitle = "Document"

// Style defaults applied under caller overrides.
const (
	DefaultFontFamily   = "Arial, sans-serif"
	DefaultFontSize     = "12pt"
	DefaultLineHeight   = "1.6"
	DefaultPrimaryColor = "#333333"
	DefaultAccentColor  = "#2563eb"
)

// StyleData holds typographic preferences. Empty fields mean "use default".
type StyleData struct {
	FontFamily   string
	FontSize     string
	LineHeight   string
	PrimaryColor string
	AccentColor  string
}

// DefaultStyleData returns the built-in typography.
func DefaultStyleData() StyleData {
	return StyleData{
		FontFamily:   DefaultFontFamily,
		FontSize:     DefaultFontSize,
		LineHeight:   DefaultLineHeight,
		PrimaryColor: DefaultPrimaryColor,
		AccentColor:  DefaultAccentColor,
	}
}

// Merge returns s with every non-empty field of over applied on top.
func (s StyleData) Merge(over StyleData) StyleData {
	if over.FontFamily != "" {
		s.FontFamily = over.FontFamily
	}
	if over.FontSize != "" {
		s.FontSize = over.FontSize
	}
	if over.LineHeight != "" {
		s.LineHeight = over.LineHeight
	}
	if over.PrimaryColor != "" {
		s.PrimaryColor = over.PrimaryColor
	}
	if over.AccentColor != "" {
		s.AccentColor = over.AccentColor
	}
	return s
}

// BuildStyleBlock renders a complete <style> element for s.
func BuildStyleBlock(s StyleData) string {
	css := fmt.Sprintf(`
body {
  font-family: %[1]s;
  font-size: %[2]s;
  line-height: %[3]s;
  color: %[4]s;
  max-width: 210mm;
  margin: 0 auto;
}
h1, h2, h3, h4, h5, h6 {
  color: %[5]s;
  margin-top: 24px;
  margin-bottom: 12px;
}
h1 { font-size: 24pt; border-bottom: 2px solid %[5]s; padding-bottom: 8px; }
h2 { font-size: 20pt; }
h3 { font-size: 16pt; }
h4 { font-size: 14pt; }
table { width: 100%%; border-collapse: collapse; margin: 16px 0; }
th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
th { background-color: %[5]s; color: white; }
.chart-container, .diagram-container {
  margin: 20px 0;
  padding: 16px;
  border: 1px dashed #ccc;
  text-align: center;
  background-color: #f9f9f9;
}
.chart-container img { max-width: 100%%; }
blockquote { border-left: 4px solid %[5]s; margin-left: 0; padding-left: 20px; color: #666; }
code { background-color: #f4f4f4; padding: 2px 4px; border-radius: 3px; font-family: 'Courier New', monospace; }
pre { background-color: #f4f4f4; padding: 16px; border-radius: 5px; overflow-x: auto; }
`,
		sanitizeCSSValue(s.FontFamily),
		sanitizeCSSValue(s.FontSize),
		sanitizeCSSValue(s.LineHeight),
		sanitizeCSSValue(s.PrimaryColor),
		sanitizeCSSValue(s.AccentColor),
	)
	return "<style>" + sanitizeCSS(css) + "</style>"
}

// sanitizeCSS escapes sequences that could close the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// cssValueBreakers are characters that would let a value escape its declaration.
var cssValueBreakers = strings.NewReplacer(
	";", "", "{", "", "}", "", "<", "", ">", "", "\n", " ", "\r", "",
)

// sanitizeCSSValue keeps a user-supplied value inside a single declaration.
func sanitizeCSSValue(v string) string {
	return strings.TrimSpace(cssValueBreakers.Replace(v))
}

// TemplateSource resolves template identifiers to HTML.
type TemplateSource interface {
	LoadTemplate(id string) (string, error)
}

// TemplateData is everything substituted into a template.
type TemplateData struct {
	Title   string // DefaultTitle when empty
	Author  string
	Date    string
	Content string // HTML fragment
	Styles  StyleData
}

// TemplateRenderer merges content into a named template.
type TemplateRenderer interface {
	Render(templateID string, data TemplateData) string
}

// Renderer implements TemplateRenderer.
type Renderer struct {
	source   TemplateSource
	fallback string
	logger   *zap.Logger
}

// NewRenderer creates a Renderer. fallback is the template used whenever
// source cannot produce the requested one.
func NewRenderer(source TemplateSource, fallback string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{source: source, fallback: fallback, logger: logger}
}

// Render resolves templateID and substitutes data into it. Resolution never
// fails: any lookup error selects the fallback template.
func (r *Renderer) Render(templateID string, data TemplateData) string {
	tmpl := r.fallback
	if r.source != nil && templateID != "" {
		t, err := r.source.LoadTemplate(templateID)
		if err != nil {
			r.logger.Debug("template not resolved, using fallback",
				zap.String("template", templateID),
				zap.Error(err),
			)
		} else {
			tmpl = t
		}
	}
	return Substitute(tmpl, data)
}

// Substitute fills the placeholder tokens of tmpl.
//
// Title, author and date are HTML-escaped; content is inserted as is.
// Only the first occurrence of each token is replaced, in the order title,
// content, author, date, styles. A repeated token keeps its later copies
// verbatim and a missing token silently drops that field.
func Substitute(tmpl string, data TemplateData) string {
	title := data.Title
	if title == "" {
		title = DefaultTitle
	}
	styles := BuildStyleBlock(DefaultStyleData().Merge(data.Styles))

	out := strings.Replace(tmpl, TokenTitle, html.EscapeString(title), 1)
	out = strings.Replace(out, TokenContent, data.Content, 1)
	out = strings.Replace(out, TokenAuthor, html.EscapeString(data.Author), 1)
	out = strings.Replace(out, TokenDate, html.EscapeString(data.Date), 1)
	return strings.Replace(out, TokenStyles, styles, 1)
}
