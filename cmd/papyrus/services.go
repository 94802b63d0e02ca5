package main

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/papyrus"
	"github.com/alnah/papyrus/internal/config"
)

// serviceOptions tunes newServices for a command.
type serviceOptions struct {
	workers       int              // compiler pool size, 0 = auto
	noAI          bool             // ignore any configured language model
	removeUploads bool             // extractor deletes files after reading
	htmlMode      papyrus.HTMLStrategy
	now           func() time.Time // nil = time.Now
}

// services bundles the library components built from a configuration.
type services struct {
	cfg       *config.Config
	logger    *zap.Logger
	pool      Pool
	charts    *papyrus.ChartService
	analyzer  *papyrus.Analyzer // every call fails with ErrNoCompleter when llmReady is false
	extractor *papyrus.Extractor
	content   *papyrus.ContentPipeline
	llmReady  bool
}

// newServices wires the library from cfg. A missing API key is not an
// error: the language-model features report ErrNoCompleter and markers
// fall back to pattern-extracted charts and placeholder panels.
func newServices(cfg *config.Config, logger *zap.Logger, o serviceOptions) (*services, error) {
	var completer papyrus.Completer
	if !o.noAI {
		var err error
		if completer, err = newCompleter(cfg.LLM); err != nil {
			return nil, err
		}
	}
	if completer == nil && !o.noAI {
		logger.Warn("no language model configured, AI features disabled",
			zap.String("provider", cfg.LLM.Provider))
	}

	base := []papyrus.Option{
		papyrus.WithLogger(logger),
		papyrus.WithOutputDir(cfg.Paths.OutputDir),
	}
	if o.now != nil {
		base = append(base, papyrus.WithClock(o.now))
	}
	with := func(extra ...papyrus.Option) []papyrus.Option {
		return append(slices.Clone(base), extra...)
	}

	charts := papyrus.NewChartService(with(papyrus.WithChartSize(cfg.Chart.Width, cfg.Chart.Height))...)
	analyzer := papyrus.NewAnalyzer(completer, with(papyrus.WithModels(papyrus.ModelSet{
		Analyze: cfg.LLM.AnalyzeModel,
		Enhance: cfg.LLM.EnhanceModel,
		Extract: cfg.LLM.ExtractModel,
		Diagram: cfg.LLM.DiagramModel,
	}))...)

	// Interfaces stay nil (not typed nil) without a model.
	var (
		enhancer   papyrus.Enhancer
		chartAI    papyrus.ChartDataExtractor
		diagramsAI papyrus.DiagramCoder
	)
	if completer != nil {
		enhancer, chartAI, diagramsAI = analyzer, analyzer, analyzer
	}

	fragments := papyrus.NewMarkerFragments(charts, chartAI, diagramsAI, logger)
	pool := newCompilerPool(papyrus.ResolvePoolSize(o.workers), with(
		papyrus.WithTimeout(cfg.PDF.TimeoutDuration()),
		papyrus.WithTemplateDir(cfg.Paths.TemplateDir),
		papyrus.WithDateFormat(cfg.Document.DateFormat),
		papyrus.WithFragmentGenerator(fragments),
	)...)

	htmlMode := o.htmlMode
	if htmlMode == "" {
		htmlMode = papyrus.HTMLStripTags
	}

	return &services{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		charts:   charts,
		analyzer: analyzer,
		extractor: papyrus.NewExtractor(
			papyrus.WithLogger(logger),
			papyrus.WithRemoveAfter(o.removeUploads),
			papyrus.WithHTMLStrategy(htmlMode),
		),
		content:  papyrus.NewContentPipeline(enhancer, chartAI, papyrus.WithLogger(logger)),
		llmReady: completer != nil,
	}, nil
}

// Close releases the compiler pool.
func (s *services) Close() error {
	return s.pool.Close()
}

// newCompleter builds the completion backend named by llm.provider.
// It returns nil, nil when the provider needs an API key and none is set.
func newCompleter(llm config.LLMConfig) (papyrus.Completer, error) {
	switch llm.Provider {
	case config.ProviderAnthropic:
		if llm.APIKey == "" {
			return nil, nil
		}
		return papyrus.NewAnthropicCompleter(llm.APIKey), nil
	case config.ProviderOllama:
		return papyrus.NewOllamaCompleter(llm.BaseURL, llm.AnalyzeModel)
	default:
		if llm.APIKey == "" {
			return nil, nil
		}
		return papyrus.NewOpenAICompleter(llm.APIKey, llm.BaseURL)
	}
}
