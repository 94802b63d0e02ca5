package main

import (
	"context"

	"github.com/alnah/papyrus"
)

// DocumentCompiler is the part of papyrus.Compiler the commands use.
type DocumentCompiler interface {
	CompileToHTML(ctx context.Context, content, templateID string, opts papyrus.RenderOptions) (string, error)
	CompileToPDF(ctx context.Context, content, templateID string, opts papyrus.RenderOptions) (*papyrus.Artifact, error)
	ListTemplates() ([]papyrus.TemplateInfo, error)
	Template(id string) (*papyrus.TemplateInfo, error)
}

// Compile-time interface implementation check.
var _ DocumentCompiler = (*papyrus.Compiler)(nil)

// Pool abstracts compiler pool operations for testability.
type Pool interface {
	Acquire() (DocumentCompiler, error)
	Release(DocumentCompiler)
	Size() int
	Close() error
}

// compilerPool adapts papyrus.CompilerPool to Pool.
type compilerPool struct {
	pool *papyrus.CompilerPool
}

// Compile-time check that compilerPool implements Pool.
var _ Pool = (*compilerPool)(nil)

func newCompilerPool(size int, opts ...papyrus.Option) *compilerPool {
	return &compilerPool{pool: papyrus.NewCompilerPool(size, opts...)}
}

// Acquire gets a compiler from the pool, creating one if needed.
// Blocks if all compilers are in use.
func (p *compilerPool) Acquire() (DocumentCompiler, error) {
	c, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Release returns a compiler to the pool. Compilers that did not come
// from a papyrus.CompilerPool are ignored.
func (p *compilerPool) Release(c DocumentCompiler) {
	if compiler, ok := c.(*papyrus.Compiler); ok {
		p.pool.Release(compiler)
	}
}

// Size returns the pool capacity.
func (p *compilerPool) Size() int {
	return p.pool.Size()
}

// Close releases all browser resources.
func (p *compilerPool) Close() error {
	return p.pool.Close()
}

// withCompiler runs fn with a pooled compiler.
func withCompiler(pool Pool, fn func(DocumentCompiler) error) error {
	c, err := pool.Acquire()
	if err != nil {
		return err
	}
	defer pool.Release(c)
	return fn(c)
}
