package assets

// TemplateLoader resolves template identifiers to HTML.
// Implementations may load from embedded files, a directory, a database, etc.
type TemplateLoader interface {
	// LoadTemplate loads a template by identifier (without .html extension).
	// Returns ErrTemplateNotFound if it does not exist and
	// ErrInvalidAssetName if the identifier is unsafe.
	LoadTemplate(id string) (string, error)

	// ListTemplates describes every template the loader can serve.
	ListTemplates() ([]TemplateInfo, error)
}
