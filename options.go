package papyrus

import (
	"time"

	"go.uber.org/zap"

	"github.com/alnah/papyrus/internal/pipeline"
)

// Option configures the components built by NewCompiler, NewChartService,
// NewAnalyzer, NewExtractor and NewPipeline. Each constructor reads the
// settings it needs and ignores the rest.
type Option func(*settings)

// settings holds the configuration shared by every component.
type settings struct {
	timeout     time.Duration
	outputDir   string
	urlPrefix   string
	templateDir string
	dateFormat  string
	chartWidth  int
	chartHeight int
	logger      *zap.Logger
	now         func() time.Time
	fragments   pipeline.FragmentGenerator
	models      ModelSet
	removeAfter bool
	htmlMode    HTMLStrategy
}

const (
	defaultTimeout     = 30 * time.Second
	defaultOutputDir   = "generated"
	defaultURLPrefix   = "/generated"
	defaultChartWidth  = 800
	defaultChartHeight = 600
)

func newSettings(opts []Option) settings {
	s := settings{
		timeout:     defaultTimeout,
		outputDir:   defaultOutputDir,
		urlPrefix:   defaultURLPrefix,
		chartWidth:  defaultChartWidth,
		chartHeight: defaultChartHeight,
		logger:      zap.NewNop(),
		now:         time.Now,
		models:      DefaultModels(),
		htmlMode:    HTMLStripTags,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTimeout sets the page readiness timeout used during PDF rasterization.
// Panics if d is not positive.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("papyrus: WithTimeout duration must be positive")
	}
	return func(s *settings) {
		s.timeout = d
	}
}

// WithOutputDir sets the directory generated artifacts are written to.
// Charts and diagrams go to its charts/ subdirectory.
func WithOutputDir(dir string) Option {
	return func(s *settings) {
		s.outputDir = dir
	}
}

// WithURLPrefix sets the URL path artifacts are served under (default /generated).
func WithURLPrefix(prefix string) Option {
	return func(s *settings) {
		s.urlPrefix = prefix
	}
}

// WithTemplateDir adds a directory of custom {id}.html templates. A missing
// directory leaves only the built-ins.
func WithTemplateDir(dir string) Option {
	return func(s *settings) {
		s.templateDir = dir
	}
}

// WithDateFormat sets the pattern for the date placeholder (see dateutil).
func WithDateFormat(format string) Option {
	return func(s *settings) {
		s.dateFormat = format
	}
}

// WithChartSize sets the raster size of generated charts.
// Panics if either side is not positive.
func WithChartSize(width, height int) Option {
	if width <= 0 || height <= 0 {
		panic("papyrus: WithChartSize dimensions must be positive")
	}
	return func(s *settings) {
		s.chartWidth = width
		s.chartHeight = height
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for the date placeholder.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithFragmentGenerator sets what replaces [CHART: ...] and [DIAGRAM: ...]
// markers. The default emits placeholder panels.
func WithFragmentGenerator(g pipeline.FragmentGenerator) Option {
	return func(s *settings) {
		s.fragments = g
	}
}

// WithModels sets the model name used by each Analyzer operation.
func WithModels(m ModelSet) Option {
	return func(s *settings) {
		s.models = m
	}
}

// WithRemoveAfter makes the Extractor delete each file once it has been read,
// whether extraction succeeded or not.
func WithRemoveAfter(remove bool) Option {
	return func(s *settings) {
		s.removeAfter = remove
	}
}

// WithHTMLStrategy selects how the Extractor turns HTML into text.
func WithHTMLStrategy(h HTMLStrategy) Option {
	return func(s *settings) {
		s.htmlMode = h
	}
}
