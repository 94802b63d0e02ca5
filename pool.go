package papyrus

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// CompilerPool hands out Compilers, each with its own browser, so several
// PDFs can be rasterized in parallel. Compilers are created on first use.
type CompilerPool struct {
	size      int
	opts      []Option
	newFn     func(...Option) (*Compiler, error)
	compilers []*Compiler
	sem       chan *Compiler
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewCompilerPool creates a pool of at most n Compilers built with opts.
func NewCompilerPool(n int, opts ...Option) *CompilerPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &CompilerPool{
		size:      n,
		opts:      opts,
		newFn:     NewCompiler,
		compilers: make([]*Compiler, 0, n),
		sem:       make(chan *Compiler, n),
	}
}

// Acquire returns an idle Compiler, creates one if the pool is not full,
// or blocks until one is released.
func (p *CompilerPool) Acquire() (*Compiler, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case c, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return c, nil
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		c, err := p.newFn(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			_ = c.Close()
			return nil, ErrPoolClosed
		}
		p.compilers = append(p.compilers, c)
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return c, nil
}

// Release returns c to the pool. Releasing after Close is a no-op.
// The send never blocks: sem holds every Compiler ever created.
func (p *CompilerPool) Release(c *Compiler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.sem <- c
	}
}

// Close releases every browser. Errors are joined.
func (p *CompilerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	compilers := p.compilers
	p.mu.Unlock()

	var errs []error
	for _, c := range compilers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *CompilerPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
