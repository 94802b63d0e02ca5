package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/papyrus"
	"github.com/alnah/papyrus/internal/config"
)

// Sentinel errors for batch compilation.
var (
	ErrReadInput    = errors.New("failed to read input file")
	ErrWriteOutput  = errors.New("failed to write output file")
	ErrCompilerInit = errors.New("failed to initialize compiler")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// CompileResult holds the outcome of a single compilation.
type CompileResult struct {
	InputPath  string
	OutputPath string
	Pages      int
	Err        error
	Duration   time.Duration
}

// compileParams groups parameters shared by every file of a batch.
type compileParams struct {
	template string
	html     bool
	render   papyrus.RenderOptions // empty Title = per-file heading
}

// runCompile orchestrates the compile command.
func runCompile(ctx context.Context, args []string, env *Environment) error {
	flags, inputs, err := parseCompileFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := applyTimeoutFlag(flags.timeout, cfg); err != nil {
		return err
	}

	files, err := discoverFiles(inputs, flags.output)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, strings.Join(inputs, ", "))
	}

	// Artifacts are staged and then moved next to their final name.
	staging, err := os.MkdirTemp("", "papyrus-compile-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()
	cfg.Paths.OutputDir = staging

	workers := flags.workers
	if workers == 0 {
		workers = envWorkers()
	}

	logger := newLogger(env.Stderr, false, flags.common.verbose)
	defer func() { _ = logger.Sync() }()

	svc, err := newServices(cfg, logger, serviceOptions{
		workers: min(papyrus.ResolvePoolSize(workers), len(files)),
		noAI:    flags.noAI,
		now:     env.Now,
	})
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	params := &compileParams{
		template: flags.template,
		html:     flags.html,
		render: papyrus.RenderOptions{
			Title:  flags.document.title,
			Author: flags.document.author,
			Date:   flags.document.date,
			Styles: papyrus.StyleOptions{
				FontFamily:   flags.style.fontFamily,
				FontSize:     flags.style.fontSize,
				LineHeight:   flags.style.lineHeight,
				PrimaryColor: flags.style.primaryColor,
				AccentColor:  flags.style.accentColor,
			},
		},
	}

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", svc.pool.Size())
	}

	results := compileBatch(ctx, svc.pool, files, params, logger)

	failedCount := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d compilation(s) failed", failedCount)
	}
	return nil
}

// applyTimeoutFlag overrides pdf.timeout when --timeout is set.
func applyTimeoutFlag(timeout string, cfg *config.Config) error {
	if timeout == "" {
		return nil
	}
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("%w: --timeout %q must be a positive duration", config.ErrInvalidConfig, timeout)
	}
	cfg.PDF.Timeout = d.String()
	return cfg.Validate()
}

// compileBatch processes files concurrently using the compiler pool.
func compileBatch(ctx context.Context, pool Pool, files []FileToCompile, params *compileParams, logger *zap.Logger) []CompileResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]CompileResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			compiler, err := pool.Acquire()
			if err != nil {
				logger.Error("compiler creation failed", zap.Error(err))
				// Mark the jobs this worker would have taken as failed.
				for idx := range jobs {
					results[idx] = CompileResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %v", ErrCompilerInit, err),
					}
				}
				return
			}
			defer pool.Release(compiler)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = CompileResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = compileFile(ctx, compiler, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// compileFile compiles a single file and returns the result.
func compileFile(ctx context.Context, compiler DocumentCompiler, f FileToCompile, params *compileParams) CompileResult {
	start := time.Now()
	result := CompileResult{InputPath: f.InputPath}
	done := func(err error) CompileResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return done(fmt.Errorf("%w: %v", ErrReadInput, err))
	}

	opts := params.render
	if opts.Title == "" {
		opts.Title = extractFirstHeading(string(content))
	}
	if opts.Title == "" {
		opts.Title = strings.TrimSuffix(filepath.Base(f.InputPath), filepath.Ext(f.InputPath))
	}
	if dir, err := filepath.Abs(filepath.Dir(f.InputPath)); err == nil {
		opts.SourceDir = dir
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return done(fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err))
	}

	if params.html {
		doc, err := compiler.CompileToHTML(ctx, string(content), params.template, opts)
		if err != nil {
			return done(err)
		}
		result.OutputPath = f.OutputPath + ".html"
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(result.OutputPath, []byte(doc), filePermissions); err != nil {
			return done(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
		return done(nil)
	}

	artifact, err := compiler.CompileToPDF(ctx, string(content), params.template, opts)
	if err != nil {
		return done(err)
	}
	result.OutputPath = f.OutputPath + ".pdf"
	result.Pages = artifact.Pages
	if err := moveFile(artifact.Path, result.OutputPath); err != nil {
		return done(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}
	return done(nil)
}

// moveFile renames src to dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src) // #nosec G304 -- artifact written by this process
	if err != nil {
		return err
	}
	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(dst, data, filePermissions); err != nil {
		return err
	}
	return os.Remove(src)
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// extractFirstHeading extracts the first # heading from markdown content.
func extractFirstHeading(markdown string) string {
	matches := firstHeadingPattern.FindStringSubmatch(markdown)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

// ResultSummary holds the count of succeeded and failed compilations.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed compilations.
func countResults(results []CompileResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs compilation results and returns the
// number of failures.
func printResultsWithWriter(results []CompileResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			pages := ""
			if r.Pages > 0 {
				pages = fmt.Sprintf(", %d page(s)", r.Pages)
			}
			fmt.Fprintf(env.Stdout, "%s -> %s (%v%s)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond), pages)
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
