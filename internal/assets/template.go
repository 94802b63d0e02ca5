package assets

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTemplateName is the built-in template used as the universal fallback.
const DefaultTemplateName = "default"

// TemplateInfo describes a template available for compilation.
type TemplateInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path,omitempty"` // empty for built-ins
	BuiltIn     bool   `json:"builtIn"`
}

// builtInDescriptions documents the embedded templates.
var builtInDescriptions = map[string]string{
	"default": "Clean, professional layout",
	"modern":  "Contemporary design",
	"classic": "Traditional layout",
	"minimal": "Ultra-clean design",
}

// displayName capitalizes the first letter of id.
func displayName(id string) string {
	r, size := utf8.DecodeRuneInString(id)
	if r == utf8.RuneError {
		return id
	}
	return string(unicode.ToUpper(r)) + id[size:]
}

// templateID strips the .html extension from a file name.
// Returns false for anything that is not an .html file.
func templateID(fileName string) (string, bool) {
	id, ok := strings.CutSuffix(fileName, ".html")
	if !ok || id == "" || ValidateAssetName(id) != nil {
		return "", false
	}
	return id, true
}
