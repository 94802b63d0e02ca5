package main

// Notes:
// - This file contains fakes and fixtures shared by the command tests.
// - These are not functions under test themselves, but supporting infrastructure.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/papyrus"
	"github.com/alnah/papyrus/internal/config"
)

// fixedNow is the clock of every test environment.
var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// testConfig returns a valid configuration rooted in a temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Paths.OutputDir = filepath.Join(root, "generated")
	cfg.Paths.UploadDir = filepath.Join(root, "uploads")
	cfg.Paths.TemplateDir = filepath.Join(root, "templates") // absent: built-ins only
	cfg.LLM.APIKey = ""
	return cfg
}

// testEnv returns an Environment with captured output and cfg as its
// fixed configuration.
func testEnv(cfg *config.Config) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: &stdout,
		Stderr: &stderr,
		Config: cfg,
	}, &stdout, &stderr
}

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Mock Implementations - For unit testing
// ---------------------------------------------------------------------------

// fakeCompiler records calls and writes a small file for every PDF.
type fakeCompiler struct {
	dir       string // where PDF artifacts are written
	pages     int
	html      string
	err       error
	templates []papyrus.TemplateInfo

	mu        sync.Mutex
	calls     int
	lastOpts  papyrus.RenderOptions
	lastTmpl  string
	lastInput string
}

var _ DocumentCompiler = (*fakeCompiler)(nil)

func (f *fakeCompiler) record(content, templateID string, opts papyrus.RenderOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastOpts = opts
	f.lastTmpl = templateID
	f.lastInput = content
}

func (f *fakeCompiler) CompileToHTML(_ context.Context, content, templateID string, opts papyrus.RenderOptions) (string, error) {
	f.record(content, templateID, opts)
	if f.err != nil {
		return "", f.err
	}
	if f.html != "" {
		return f.html, nil
	}
	return "<html><body>" + content + "</body></html>", nil
}

func (f *fakeCompiler) CompileToPDF(_ context.Context, content, templateID string, opts papyrus.RenderOptions) (*papyrus.Artifact, error) {
	f.record(content, templateID, opts)
	if f.err != nil {
		return nil, f.err
	}
	tmp, err := os.CreateTemp(f.dir, "document_*.pdf")
	if err != nil {
		return nil, err
	}
	data := []byte("%PDF-1.4 fake")
	if _, err := tmp.Write(data); err != nil {
		return nil, err
	}
	_ = tmp.Close()
	name := filepath.Base(tmp.Name())
	return &papyrus.Artifact{
		Filename: name,
		Path:     tmp.Name(),
		URL:      "/generated/" + name,
		Size:     int64(len(data)),
		Pages:    f.pages,
	}, nil
}

func (f *fakeCompiler) ListTemplates() ([]papyrus.TemplateInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.templates, nil
}

func (f *fakeCompiler) Template(id string) (*papyrus.TemplateInfo, error) {
	for i := range f.templates {
		if f.templates[i].ID == id {
			return &f.templates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", papyrus.ErrTemplateNotFound, id)
}

func (f *fakeCompiler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePool hands out one shared compiler.
type fakePool struct {
	compiler   DocumentCompiler
	size       int
	acquireErr error

	acquired atomic.Int32
	released atomic.Int32
	closed   atomic.Bool
}

var _ Pool = (*fakePool)(nil)

func (p *fakePool) Acquire() (DocumentCompiler, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired.Add(1)
	return p.compiler, nil
}

func (p *fakePool) Release(DocumentCompiler) { p.released.Add(1) }

func (p *fakePool) Size() int {
	if p.size == 0 {
		return 1
	}
	return p.size
}

func (p *fakePool) Close() error {
	p.closed.Store(true)
	return nil
}

// stubCompleter replies with a fixed string and records every request.
type stubCompleter struct {
	reply string
	err   error

	mu       sync.Mutex
	requests []papyrus.CompletionRequest
}

var _ papyrus.Completer = (*stubCompleter)(nil)

func (s *stubCompleter) Complete(_ context.Context, req papyrus.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

var errFake = errors.New("fake failure")
