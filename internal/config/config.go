// Package config loads papyrus.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/papyrus/internal/dateutil"
	"github.com/alnah/papyrus/internal/fileutil"
	"github.com/alnah/papyrus/internal/yamlutil"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// FileName is the config file searched for when no path is given.
const FileName = "papyrus.yaml"

// Providers accepted by llm.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Limits enforced by Validate.
const (
	MinChartSide   = 100
	MaxChartSide   = 4000
	MaxBatchFiles  = 100
	MaxPDFTimeout  = 10 * time.Minute
	MaxUploadBytes = 100 << 20
)

// Config holds the server, rendering and model settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Paths    PathsConfig    `yaml:"paths"`
	PDF      PDFConfig      `yaml:"pdf"`
	Chart    ChartConfig    `yaml:"chart"`
	Upload   UploadConfig   `yaml:"upload"`
	LLM      LLMConfig      `yaml:"llm"`
	Document DocumentConfig `yaml:"document"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	CORSOrigin   string `yaml:"corsOrigin"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes"`
}

type PathsConfig struct {
	OutputDir   string `yaml:"outputDir"`
	TemplateDir string `yaml:"templateDir"` // missing directory = built-ins only
	UploadDir   string `yaml:"uploadDir"`
}

type PDFConfig struct {
	Timeout string `yaml:"timeout"` // Go duration, e.g. "30s"
}

// TimeoutDuration parses Timeout. Validate guarantees it succeeds.
func (p PDFConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0
	}
	return d
}

type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type UploadConfig struct {
	MaxFileSize   int64 `yaml:"maxFileSize"`
	MaxBatchFiles int   `yaml:"maxBatchFiles"`
}

// LLMConfig selects the completion backend and a model per analysis task.
type LLMConfig struct {
	Provider     string `yaml:"provider"`
	APIKey       string `yaml:"apiKey"`
	BaseURL      string `yaml:"baseURL"`
	AnalyzeModel string `yaml:"analyzeModel"`
	EnhanceModel string `yaml:"enhanceModel"`
	ExtractModel string `yaml:"extractModel"`
	DiagramModel string `yaml:"diagramModel"`
}

// providerModels are the per-task defaults (analyze, enhance, extract,
// diagram) for each provider.
var providerModels = map[string][4]string{
	ProviderOpenAI:    {"gpt-4", "gpt-4", "gpt-3.5-turbo", "gpt-3.5-turbo"},
	ProviderAnthropic: {"claude-3-5-sonnet-latest", "claude-3-5-sonnet-latest", "claude-3-5-haiku-latest", "claude-3-5-haiku-latest"},
	ProviderOllama:    {"llama3.1", "llama3.1", "llama3.1", "llama3.1"},
}

// ApplyProviderDefaults replaces every model left at the OpenAI default
// (or empty) with the default of the selected provider.
func (l *LLMConfig) ApplyProviderDefaults() {
	defaults, ok := providerModels[l.Provider]
	if !ok {
		return
	}
	openai := providerModels[ProviderOpenAI]
	fields := [4]*string{&l.AnalyzeModel, &l.EnhanceModel, &l.ExtractModel, &l.DiagramModel}
	for i, f := range fields {
		if *f == "" || *f == openai[i] {
			*f = defaults[i]
		}
	}
}

type DocumentConfig struct {
	DateFormat string `yaml:"dateFormat"` // dateutil pattern or preset
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":5000",
			CORSOrigin:   "http://localhost:3000",
			MaxBodyBytes: 50 << 20,
		},
		Paths: PathsConfig{
			OutputDir:   "generated",
			TemplateDir: "templates",
			UploadDir:   "uploads",
		},
		PDF:    PDFConfig{Timeout: "30s"},
		Chart:  ChartConfig{Width: 800, Height: 600},
		Upload: UploadConfig{MaxFileSize: 10 << 20, MaxBatchFiles: 10},
		LLM: LLMConfig{
			Provider:     ProviderOpenAI,
			AnalyzeModel: "gpt-4",
			EnhanceModel: "gpt-4",
			ExtractModel: "gpt-3.5-turbo",
			DiagramModel: "gpt-3.5-turbo",
		},
		Document: DocumentConfig{DateFormat: dateutil.DefaultDateFormat},
	}
}

// Validate checks ranges and enum values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must be positive", ErrInvalidConfig)
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("%w: paths.outputDir is required", ErrInvalidConfig)
	}

	d, err := time.ParseDuration(c.PDF.Timeout)
	if err != nil {
		return fmt.Errorf("%w: pdf.timeout: %v", ErrInvalidConfig, err)
	}
	if d <= 0 || d > MaxPDFTimeout {
		return fmt.Errorf("%w: pdf.timeout must be in (0, %s]", ErrInvalidConfig, MaxPDFTimeout)
	}

	for name, side := range map[string]int{"chart.width": c.Chart.Width, "chart.height": c.Chart.Height} {
		if side < MinChartSide || side > MaxChartSide {
			return fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidConfig, name, MinChartSide, MaxChartSide)
		}
	}

	if c.Upload.MaxFileSize <= 0 || c.Upload.MaxFileSize > MaxUploadBytes {
		return fmt.Errorf("%w: upload.maxFileSize must be between 1 and %d", ErrInvalidConfig, MaxUploadBytes)
	}
	if c.Upload.MaxBatchFiles <= 0 || c.Upload.MaxBatchFiles > MaxBatchFiles {
		return fmt.Errorf("%w: upload.maxBatchFiles must be between 1 and %d", ErrInvalidConfig, MaxBatchFiles)
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama:
	default:
		return fmt.Errorf("%w: llm.provider %q (want openai, anthropic or ollama)", ErrInvalidConfig, c.LLM.Provider)
	}

	if err := dateutil.Validate(c.Document.DateFormat); err != nil {
		return fmt.Errorf("%w: document.dateFormat: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads the config at path over the defaults. An empty path searches
// SearchPaths and falls back to DefaultConfig when nothing is found; an
// explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, candidate := range SearchPaths() {
			if fileutil.FileExists(candidate) {
				path = candidate
				break
			}
		}
		if path == "" {
			return DefaultConfig(), nil
		}
	}

	f, err := os.Open(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	cfg.LLM.ApplyProviderDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the implicit config locations in lookup order:
// current directory, then the user config directory.
func SearchPaths() []string {
	paths := []string{FileName, strings.TrimSuffix(FileName, ".yaml") + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "papyrus", FileName))
	}
	return paths
}
