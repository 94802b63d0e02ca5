package assets

import (
	"errors"
)

// AssetResolver combines a custom template directory with the built-ins.
// Custom templates take precedence; the built-in of the same id is used
// only when the custom one does not exist.
type AssetResolver struct {
	custom   TemplateLoader // nil if no directory configured
	embedded TemplateLoader
}

// NewAssetResolver creates an AssetResolver.
// If customDir is empty, only built-in templates are used.
// Returns an error if customDir is set but unusable.
func NewAssetResolver(customDir string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customDir != "" {
		fsLoader, err := NewFilesystemLoader(customDir)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTemplate loads a template, trying the custom directory first.
func (r *AssetResolver) LoadTemplate(id string) (string, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate(id)
	}

	content, err := r.custom.LoadTemplate(id)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found", not validation or I/O errors.
	if !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}

	return r.embedded.LoadTemplate(id)
}

// ListTemplates merges built-in and custom templates.
// A custom template shadows the built-in with the same id.
func (r *AssetResolver) ListTemplates() ([]TemplateInfo, error) {
	builtIns, err := r.embedded.ListTemplates()
	if err != nil {
		return nil, err
	}
	if r.custom == nil {
		return builtIns, nil
	}

	customs, err := r.custom.ListTemplates()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(builtIns)+len(customs))
	merged := make([]TemplateInfo, 0, len(builtIns)+len(customs))
	for _, t := range builtIns {
		byID[t.ID] = len(merged)
		merged = append(merged, t)
	}
	for _, t := range customs {
		if i, ok := byID[t.ID]; ok {
			if t.Description == "" {
				t.Description = merged[i].Description
			}
			merged[i] = t
			continue
		}
		merged = append(merged, t)
	}
	sortTemplates(merged)
	return merged, nil
}

// HasCustomLoader reports whether a template directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ TemplateLoader = (*AssetResolver)(nil)
