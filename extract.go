package papyrus

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/papyrus/internal/fileutil"
)

// SupportedExtensions lists the file kinds Extract accepts.
var SupportedExtensions = []string{".txt", ".md", ".docx", ".html", ".htm"}

// Extracted text formats.
const (
	TextPlain    = "plain"
	TextMarkdown = "markdown"
	TextHTML     = "html"
	TextDocx     = "docx"
)

// HTMLStrategy selects how HTML files become text.
type HTMLStrategy string

const (
	// HTMLStripTags removes anything between < and > and trims. It mangles
	// literal angle brackets in text.
	HTMLStripTags HTMLStrategy = "strip"
	// HTMLText parses the document and keeps its text nodes, without
	// scripts and styles.
	HTMLText HTMLStrategy = "text"
	// HTMLMarkdown converts the document to markdown.
	HTMLMarkdown HTMLStrategy = "markdown"
)

// ParseHTMLStrategy validates s. An empty string means HTMLStripTags.
func ParseHTMLStrategy(s string) (HTMLStrategy, error) {
	switch h := HTMLStrategy(strings.ToLower(s)); h {
	case "":
		return HTMLStripTags, nil
	case HTMLStripTags, HTMLText, HTMLMarkdown:
		return h, nil
	default:
		return "", fmt.Errorf("%w: html strategy %q (want strip, text or markdown)", ErrInvalidFormat, s)
	}
}

// Extraction is the text read from one file.
type Extraction struct {
	UploadID   string   `json:"upload_id"`
	Filename   string   `json:"filename"`
	Text       string   `json:"extracted_text"`
	Format     string   `json:"format"`
	Warnings   []string `json:"warnings,omitempty"`
	Statistics Stats    `json:"statistics"`
}

// SourceFile is a file to extract: where it is and what it was called.
// The extension of Name decides the format.
type SourceFile struct {
	Path string
	Name string
}

// BatchItemError records one failed file of a batch.
type BatchItemError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchExtraction is the outcome of ExtractBatch.
type BatchExtraction struct {
	BatchID        string           `json:"batch_id"`
	ProcessedCount int              `json:"processed_count"`
	ErrorCount     int              `json:"error_count"`
	Results        []Extraction     `json:"results"`
	Errors         []BatchItemError `json:"errors"`
}

// Extractor reads text out of uploaded documents.
type Extractor struct {
	removeAfter bool
	htmlMode    HTMLStrategy
	logger      *zap.Logger
	markdown    *converter.Converter
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	s := newSettings(opts)
	return &Extractor{
		removeAfter: s.removeAfter,
		htmlMode:    s.htmlMode,
		logger:      s.logger,
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Extract reads the text of file. With WithRemoveAfter the file is deleted
// afterwards, on success and on failure alike.
func (e *Extractor) Extract(ctx context.Context, file SourceFile) (*Extraction, error) {
	if e.removeAfter {
		defer e.remove(file.Path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := "." + fileutil.Extension(file.Name)
	var (
		text     string
		format   string
		warnings []string
		err      error
	)

	switch ext {
	case ".txt", ".md":
		text, err = readText(file.Path)
		format = TextPlain
		if ext == ".md" {
			format = TextMarkdown
		}
	case ".html", ".htm":
		var raw string
		if raw, err = readText(file.Path); err == nil {
			text, err = e.htmlToText(raw)
		}
		format = TextHTML
	case ".docx":
		text, warnings, err = extractDocx(file.Path)
		format = TextDocx
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
	}
	if err != nil {
		e.logger.Error("text extraction failed", zap.String("file", file.Name), zap.Error(err))
		return nil, fmt.Errorf("extracting %s: %w", file.Name, err)
	}

	return &Extraction{
		UploadID:   uuid.NewString(),
		Filename:   file.Name,
		Text:       text,
		Format:     format,
		Warnings:   warnings,
		Statistics: ComputeStats(text),
	}, nil
}

// ExtractBatch extracts every file in order. A failed file is recorded in
// Errors and the rest are still processed.
func (e *Extractor) ExtractBatch(ctx context.Context, files []SourceFile) *BatchExtraction {
	out := &BatchExtraction{
		BatchID: uuid.NewString(),
		Results: make([]Extraction, 0, len(files)),
		Errors:  []BatchItemError{},
	}
	for _, f := range files {
		res, err := e.Extract(ctx, f)
		if err != nil {
			out.Errors = append(out.Errors, BatchItemError{Filename: f.Name, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, *res)
	}
	out.ProcessedCount = len(out.Results)
	out.ErrorCount = len(out.Errors)
	return out
}

func (e *Extractor) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.logger.Warn("removing processed file failed", zap.String("path", path), zap.Error(err))
	}
}

func (e *Extractor) htmlToText(raw string) (string, error) {
	switch e.htmlMode {
	case HTMLText:
		return HTMLTextContent(raw)
	case HTMLMarkdown:
		md, err := e.markdown.ConvertString(raw)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(md), nil
	default:
		return StripTags(raw), nil
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes every <...> run and trims the result. It is not an
// HTML parser: entities stay encoded and a literal "<" in text swallows
// everything up to the next ">".
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// HTMLTextContent parses s and returns its trimmed text without script and
// style contents.
func HTMLTextContent(s string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Text()), nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the upload handler or CLI args
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Only WordprocessingML elements carry document text. DrawingML a:p and a:t
// inside shapes are not paragraphs.
const (
	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	mcNS   = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// docxEmbedded maps WordprocessingML elements that carry no text to the
// warning reported when they are skipped.
var docxEmbedded = map[string]string{
	"drawing": "image or drawing skipped",
	"pict":    "legacy picture skipped",
	"object":  "embedded object skipped",
}

// extractDocx returns the raw text of word/document.xml: paragraphs are
// separated by a blank line, tabs and breaks are kept.
func extractDocx(path string) (string, []string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = r.Close() }()

	var doc *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", nil, errors.New("word/document.xml not found in archive")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	return docxText(rc)
}

// docxParagraph is an open w:p. Paragraphs nested in text boxes are
// emitted right after the paragraph that anchors them.
type docxParagraph struct {
	text   strings.Builder
	nested []string
}

func docxText(r io.Reader) (string, []string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		open       []*docxParagraph
		runDepth   int
		inText     bool
		skipped    = map[string]int{}
	)

	top := func() *docxParagraph {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// The fallback repeats its mc:Choice sibling for older readers.
			if t.Name.Space == mcNS && t.Name.Local == "Fallback" {
				if err := decoder.Skip(); err != nil {
					return "", nil, fmt.Errorf("parse document.xml: %w", err)
				}
				continue
			}
			if t.Name.Space != wordNS {
				continue
			}
			p := top()
			switch t.Name.Local {
			case "p":
				open = append(open, &docxParagraph{})
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if runDepth > 0 && p != nil {
					p.text.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 && p != nil {
					p.text.WriteByte('\n')
				}
			default:
				if _, ok := docxEmbedded[t.Name.Local]; ok {
					skipped[t.Name.Local]++
				}
			}
		case xml.CharData:
			if p := top(); inText && p != nil {
				p.text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				runDepth--
			case "p":
				p := top()
				if p == nil {
					continue
				}
				open = open[:len(open)-1]
				done := append([]string{p.text.String()}, p.nested...)
				if parent := top(); parent != nil {
					parent.nested = append(parent.nested, done...)
				} else {
					paragraphs = append(paragraphs, done...)
				}
			}
		}
	}

	var warnings []string
	for _, name := range []string{"drawing", "pict", "object"} {
		if n := skipped[name]; n > 0 {
			warnings = append(warnings, fmt.Sprintf("%s (%d)", docxEmbedded[name], n))
		}
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n\n")), warnings, nil
}
