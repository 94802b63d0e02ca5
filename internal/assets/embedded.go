package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed templates/*.html
var templates embed.FS

// EmbeddedLoader loads the built-in templates.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate loads a built-in template by identifier.
func (e *EmbeddedLoader) LoadTemplate(id string) (string, error) {
	if err := ValidateAssetName(id); err != nil {
		return "", err
	}

	content, err := templates.ReadFile("templates/" + id + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}

	return string(content), nil
}

// ListTemplates lists the built-in templates, default first then by id.
func (e *EmbeddedLoader) ListTemplates() ([]TemplateInfo, error) {
	entries, err := fs.ReadDir(templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}

	infos := make([]TemplateInfo, 0, len(entries))
	for _, entry := range entries {
		id, ok := templateID(entry.Name())
		if !ok {
			continue
		}
		infos = append(infos, TemplateInfo{
			ID:          id,
			Name:        displayName(id),
			Description: builtInDescriptions[id],
			BuiltIn:     true,
		})
	}
	sortTemplates(infos)
	return infos, nil
}

// DefaultTemplate returns the built-in default template.
// It is embedded at compile time, so a failure here is a build defect.
func DefaultTemplate() string {
	content, err := templates.ReadFile("templates/" + DefaultTemplateName + ".html")
	if err != nil {
		panic(fmt.Sprintf("assets: embedded default template missing: %v", err))
	}
	return string(content)
}

// sortTemplates orders the default template first, the rest by id.
func sortTemplates(infos []TemplateInfo) {
	sort.SliceStable(infos, func(i, j int) bool {
		if (infos[i].ID == DefaultTemplateName) != (infos[j].ID == DefaultTemplateName) {
			return infos[i].ID == DefaultTemplateName
		}
		return infos[i].ID < infos[j].ID
	})
}

// Compile-time interface check.
var _ TemplateLoader = (*EmbeddedLoader)(nil)
