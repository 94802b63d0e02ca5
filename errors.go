package papyrus

import (
	"errors"

	"github.com/alnah/papyrus/internal/assets"
	"github.com/alnah/papyrus/internal/pipeline"
)

// Sentinel errors for library operations.
//
// Collaborator failures (browser, chart renderer, language model) are
// returned as the bare sentinel; the cause is logged, not wrapped.
var (
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Rasterization sub-errors, logged before ErrPDFGeneration is returned.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPoolClosed     = errors.New("compiler pool is closed")

	// Language model operations.
	ErrAnalysis            = errors.New("failed to analyze content with AI")
	ErrEnhancement         = errors.New("failed to enhance content with AI")
	ErrChartDataExtraction = errors.New("failed to extract chart data")
	ErrDiagramDescription  = errors.New("failed to generate diagram description")
	ErrNoCompleter         = errors.New("no language model configured")

	// Charts and diagrams.
	ErrChartGeneration      = errors.New("failed to generate chart")
	ErrDiagramGeneration    = errors.New("failed to generate diagram")
	ErrUnsupportedChartType = errors.New("unsupported chart type")
	ErrInvalidDiagramType   = errors.New("unsupported diagram type")
	ErrDatasetLength        = errors.New("dataset length does not match label count")
	ErrEmptyChart           = errors.New("chart has no data")

	// Input validation.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidFormat     = errors.New("invalid content format")
	ErrUnknownSuggestion = errors.New("suggestion type not found")
	ErrTemplateNotFound  = assets.ErrTemplateNotFound
)
