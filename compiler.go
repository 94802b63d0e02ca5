package papyrus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/alnah/papyrus/internal/assets"
	"github.com/alnah/papyrus/internal/dateutil"
	"github.com/alnah/papyrus/internal/fileutil"
	"github.com/alnah/papyrus/internal/pipeline"
)

var (
	_ pipeline.HTMLConverter    = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.MarkerExpander   = (*pipeline.Expander)(nil)
	_ pipeline.TemplateRenderer = (*pipeline.Renderer)(nil)
	_ pipeline.TemplateSource   = (*assets.AssetResolver)(nil)
)

// templateCatalog lists and loads templates.
type templateCatalog interface {
	LoadTemplate(id string) (string, error)
	ListTemplates() ([]assets.TemplateInfo, error)
}

// pageCounter reports the number of pages in a PDF.
type pageCounter func(pdf []byte) (int, error)

// Compiler turns markdown into a templated HTML document or a PDF artifact.
// It is safe for concurrent use; the browser is shared and started lazily.
type Compiler struct {
	timeout    time.Duration
	outputDir  string
	urlPrefix  string
	dateFormat string
	now        func() time.Time
	logger     *zap.Logger

	templates     templateCatalog
	htmlConverter pipeline.HTMLConverter
	expander      pipeline.MarkerExpander
	renderer      pipeline.TemplateRenderer
	pdfConverter  pdfConverter
	countPages    pageCounter
}

// NewCompiler creates a Compiler. The template directory is optional: when
// it does not exist only the built-in templates are available.
func NewCompiler(opts ...Option) (*Compiler, error) {
	s := newSettings(opts)

	if err := dateutil.Validate(s.dateFormat); err != nil {
		return nil, err
	}

	templateDir := s.templateDir
	if templateDir != "" {
		if _, err := os.Stat(templateDir); errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("template directory not found, using built-ins", zap.String("dir", templateDir))
			templateDir = ""
		}
	}
	resolver, err := assets.NewAssetResolver(templateDir)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return &Compiler{
		timeout:       s.timeout,
		outputDir:     s.outputDir,
		urlPrefix:     s.urlPrefix,
		dateFormat:    s.dateFormat,
		now:           s.now,
		logger:        s.logger,
		templates:     resolver,
		htmlConverter: pipeline.NewGoldmarkConverter(),
		expander:      pipeline.NewExpander(s.fragments, s.logger),
		renderer:      pipeline.NewRenderer(resolver, assets.DefaultTemplate(), s.logger),
		pdfConverter:  newRodConverter(s.timeout),
		countPages:    pdfPageCount,
	}, nil
}

// CompileToHTML converts markdown to HTML, expands chart and diagram
// markers, and merges the result into templateID. An unknown template
// falls back to the default one.
func (c *Compiler) CompileToHTML(ctx context.Context, content, templateID string, opts RenderOptions) (doc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic during compilation", zap.Any("panic", r))
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	fragment, err := c.htmlConverter.ToHTML(ctx, content)
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}

	if opts.SourceDir != "" {
		fragment, err = pipeline.ResolveLocalPaths(fragment, opts.SourceDir)
		if err != nil {
			return "", fmt.Errorf("resolving local paths: %w", err)
		}
	}

	fragment = withMermaid(c.expander.Expand(ctx, fragment))
	if err := ctx.Err(); err != nil {
		return "", err
	}

	date := opts.Date
	if date == "" {
		date, err = dateutil.Format(c.now(), c.dateFormat)
		if err != nil {
			return "", err
		}
	}

	return c.renderer.Render(templateID, pipeline.TemplateData{
		Title:   opts.Title,
		Author:  opts.Author,
		Date:    date,
		Content: fragment,
		Styles:  opts.Styles.styleData(),
	}), nil
}

// CompileToPDF compiles content and rasterizes it with headless Chrome into
// document_<uuid>.pdf under the output directory. Any rasterization or
// write failure is logged and reported as ErrPDFGeneration.
func (c *Compiler) CompileToPDF(ctx context.Context, content, templateID string, opts RenderOptions) (*Artifact, error) {
	doc, err := c.CompileToHTML(ctx, content, templateID, opts)
	if err != nil {
		return nil, err
	}

	start := c.now()
	pdf, err := c.pdfConverter.ToPDF(ctx, doc)
	if err != nil {
		c.logger.Error("PDF rasterization failed", zap.Error(err))
		return nil, ErrPDFGeneration
	}

	name := fileutil.UniqueName("document", "pdf")
	path, size, err := fileutil.WriteArtifact(c.outputDir, name, pdf)
	if err != nil {
		c.logger.Error("writing PDF failed", zap.String("file", name), zap.Error(err))
		return nil, ErrPDFGeneration
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	art := &Artifact{
		Filename: name,
		Path:     path,
		URL:      c.urlPrefix + "/" + name,
		Size:     size,
	}
	if pages, err := c.countPages(pdf); err != nil {
		c.logger.Warn("counting PDF pages failed", zap.String("file", name), zap.Error(err))
	} else {
		art.Pages = pages
	}

	c.logger.Info("PDF generated",
		zap.String("file", name),
		zap.Int64("size", size),
		zap.Int("pages", art.Pages),
		zap.Duration("elapsed", c.now().Sub(start)),
	)
	return art, nil
}

// ListTemplates returns the built-in templates followed by custom ones.
func (c *Compiler) ListTemplates() ([]TemplateInfo, error) {
	return c.templates.ListTemplates()
}

// Template returns the details of one template. Unlike rendering, an
// unknown id is an error here (ErrTemplateNotFound).
func (c *Compiler) Template(id string) (*TemplateInfo, error) {
	list, err := c.templates.ListTemplates()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}

// Close releases the headless browser.
func (c *Compiler) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// pdfPageCount reads the page count with pdfcpu.
func pdfPageCount(pdf []byte) (int, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}
