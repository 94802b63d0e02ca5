// Package pipeline implements the content-to-HTML stages of document compilation.
//
// Stages, in order:
//   - Markdown to HTML fragment via goldmark (GFM, footnotes, highlighting)
//   - Local path resolution for images and links (optional)
//   - Chart and diagram marker expansion
//   - Template rendering: placeholder substitution and style block
//
// PDF rasterization is handled by the root papyrus package using headless
// Chrome (go-rod). This package only produces HTML strings.
package pipeline
