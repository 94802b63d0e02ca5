package papyrus

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) SourceFile {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return SourceFile{Path: p, Name: name}
}

// writeDocx builds a minimal .docx holding body as word/document.xml.
func writeDocx(t *testing.T, name, body string) SourceFile {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return SourceFile{Path: p, Name: name}
}

// ---------------------------------------------------------------------------
// TestExtractor_Extract
// ---------------------------------------------------------------------------

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		file       func(t *testing.T) SourceFile
		opts       []Option
		wantText   string
		wantFormat string
	}{
		{
			name:       "plain text kept as is",
			file:       func(t *testing.T) SourceFile { return writeFile(t, "notes.txt", "  hello\nworld  ") },
			wantText:   "  hello\nworld  ",
			wantFormat: TextPlain,
		},
		{
			name:       "markdown",
			file:       func(t *testing.T) SourceFile { return writeFile(t, "README.MD", "# Title") },
			wantText:   "# Title",
			wantFormat: TextMarkdown,
		},
		{
			name:       "html stripped by default",
			file:       func(t *testing.T) SourceFile { return writeFile(t, "page.html", "<p>Hello <b>there</b></p>\n") },
			wantText:   "Hello there",
			wantFormat: TextHTML,
		},
		{
			name: "html text strategy drops scripts",
			file: func(t *testing.T) SourceFile {
				return writeFile(t, "page.htm", "<html><head><script>var x=1;</script></head><body><p>Body</p></body></html>")
			},
			opts:       []Option{WithHTMLStrategy(HTMLText)},
			wantText:   "Body",
			wantFormat: TextHTML,
		},
		{
			name:       "html markdown strategy",
			file:       func(t *testing.T) SourceFile { return writeFile(t, "page.html", "<h1>Title</h1><p>Some <strong>bold</strong></p>") },
			opts:       []Option{WithHTMLStrategy(HTMLMarkdown)},
			wantText:   "# Title\n\nSome **bold**",
			wantFormat: TextHTML,
		},
		{
			name: "docx paragraphs tabs and breaks",
			file: func(t *testing.T) SourceFile {
				return writeDocx(t, "report.docx",
					`<w:p><w:r><w:t>First</w:t></w:r><w:r><w:tab/><w:t>tabbed</w:t></w:r></w:p>`+
						`<w:p><w:r><w:t xml:space="preserve">Second </w:t><w:br/><w:t>line</w:t></w:r></w:p>`)
			},
			wantText:   "First\ttabbed\n\nSecond \nline",
			wantFormat: TextDocx,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewExtractor(tt.opts...)
			got, err := e.Extract(context.Background(), tt.file(t))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", got.Format, tt.wantFormat)
			}
			if got.UploadID == "" {
				t.Error("UploadID is empty")
			}
			if got.Statistics != ComputeStats(tt.wantText) {
				t.Errorf("Statistics = %+v", got.Statistics)
			}
		})
	}
}

func TestExtractor_DocxWarnings(t *testing.T) {
	t.Parallel()

	file := writeDocx(t, "pics.docx",
		`<w:p><w:r><w:t>Caption</w:t></w:r><w:r><w:drawing/></w:r><w:r><w:drawing/></w:r></w:p>`+
			`<w:p><w:r><w:object/></w:r></w:p>`)

	got, err := NewExtractor().Extract(context.Background(), file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Text != "Caption" {
		t.Errorf("Text = %q", got.Text)
	}
	want := []string{"image or drawing skipped (2)", "embedded object skipped (1)"}
	if strings.Join(got.Warnings, "|") != strings.Join(want, "|") {
		t.Errorf("Warnings = %v, want %v", got.Warnings, want)
	}
}

func TestExtractor_DocxTextBox(t *testing.T) {
	t.Parallel()

	const ns = ` xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"`

	box := `<w:txbxContent><w:p><w:r><w:t>Inside box.</w:t></w:r></w:p></w:txbxContent>`
	body := `<w:p` + ns + `>` +
		`<w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Before box.</w:t></w:r>` +
		`<w:r><mc:AlternateContent>` +
		`<mc:Choice Requires="wps"><w:drawing><a:graphic><a:graphicData><wps:wsp>` +
		`<a:p><a:r><a:t>shape label</a:t></a:r></a:p>` +
		`<wps:txbx>` + box + `</wps:txbx>` +
		`</wps:wsp></a:graphicData></a:graphic></w:drawing></mc:Choice>` +
		`<mc:Fallback><w:pict>` + box + `</w:pict></mc:Fallback>` +
		`</mc:AlternateContent></w:r>` +
		`<w:r><w:t xml:space="preserve"> After box.</w:t></w:r>` +
		`</w:p>` +
		`<w:p><w:r><w:t>Next paragraph.</w:t></w:r></w:p>`

	got, err := NewExtractor().Extract(context.Background(), writeDocx(t, "box.docx", body))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "Before box. After box.\n\nInside box.\n\nNext paragraph."
	if got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
	if got.Statistics != ComputeStats(want) {
		t.Errorf("Statistics = %+v, want %+v", got.Statistics, ComputeStats(want))
	}
	if strings.Join(got.Warnings, "|") != "image or drawing skipped (1)" {
		t.Errorf("Warnings = %v, want only the drawing", got.Warnings)
	}
}

func TestExtractor_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		_, err := NewExtractor().Extract(context.Background(), writeFile(t, "data.csv", "a,b"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		t.Parallel()

		_, err := NewExtractor().Extract(context.Background(), writeFile(t, "fake.docx", "plain bytes"))
		if err == nil || !strings.Contains(err.Error(), "fake.docx") {
			t.Errorf("error = %v, want wrapped docx error", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := NewExtractor().Extract(context.Background(), SourceFile{Path: "/nonexistent/x.txt", Name: "x.txt"})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestExtractor_RemoveAfter(t *testing.T) {
	t.Parallel()

	ok := writeFile(t, "a.txt", "x")
	bad := writeFile(t, "b.csv", "x")
	e := NewExtractor(WithRemoveAfter(true))

	if _, err := e.Extract(context.Background(), ok); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	_, _ = e.Extract(context.Background(), bad)

	for _, f := range []SourceFile{ok, bad} {
		if _, err := os.Stat(f.Path); !os.IsNotExist(err) {
			t.Errorf("%s was not removed", f.Name)
		}
	}
}

func TestExtractor_ExtractBatch(t *testing.T) {
	t.Parallel()

	files := []SourceFile{
		writeFile(t, "one.txt", "one"),
		writeFile(t, "two.bin", "two"),
		writeFile(t, "three.md", "three"),
	}

	got := NewExtractor().ExtractBatch(context.Background(), files)

	if got.BatchID == "" {
		t.Error("BatchID is empty")
	}
	if got.ProcessedCount != 2 || got.ErrorCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", got.ProcessedCount, got.ErrorCount)
	}
	if got.Results[0].Filename != "one.txt" || got.Results[1].Filename != "three.md" {
		t.Errorf("results out of order: %+v", got.Results)
	}
	if got.Errors[0].Filename != "two.bin" {
		t.Errorf("errors = %+v", got.Errors)
	}
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"<p>a</p>", "a"},
		{"  <br/>x&amp;y ", "x&amp;y"},
		{"1 < 2 and 3 > 2", "1  2"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := StripTags(tt.in); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseHTMLStrategy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]HTMLStrategy{"": HTMLStripTags, "TEXT": HTMLText, "markdown": HTMLMarkdown} {
		got, err := ParseHTMLStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseHTMLStrategy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseHTMLStrategy("pdf"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}
