// Package assets provides the HTML document templates used for compilation.
//
// # Loader Architecture
//
//	TemplateLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in templates compiled in with go:embed
//	    ├── FilesystemLoader  - {id}.html files from a template directory
//	    └── AssetResolver     - custom first, embedded on not-found
//
// A template is a complete HTML document carrying the placeholder tokens
// {{TITLE}}, {{CONTENT}}, {{AUTHOR}}, {{DATE}} and {{STYLES}}.
//
// # Security
//
// Template identifiers are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within its directory.
package assets
