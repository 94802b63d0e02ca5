package assets

import "errors"

// Sentinel errors for template operations.
var (
	// ErrTemplateNotFound indicates the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName indicates the identifier contains path separators,
	// dots or is empty.
	ErrInvalidAssetName = errors.New("invalid template name")

	// ErrInvalidBasePath indicates the template directory is unusable.
	ErrInvalidBasePath = errors.New("invalid template directory")

	// ErrAssetRead indicates an I/O error while reading a template file.
	ErrAssetRead = errors.New("failed to read template")

	// ErrPathTraversal indicates an attempt to read outside the template directory.
	ErrPathTraversal = errors.New("path traversal detected")
)
