package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/papyrus/internal/config"
)

// envConfig holds configuration from environment variables.
// Precedence: CLI flags > environment > config file > defaults.
type envConfig struct {
	ConfigPath  string        // PAPYRUS_CONFIG: config file path
	Addr        string        // PAPYRUS_ADDR (or PORT): listen address
	CORSOrigin  string        // PAPYRUS_CORS_ORIGIN: allowed browser origin
	OutputDir   string        // PAPYRUS_OUTPUT_DIR: generated artifacts
	TemplateDir string        // PAPYRUS_TEMPLATE_DIR: custom templates
	UploadDir   string        // PAPYRUS_UPLOAD_DIR: multipart spool
	Timeout     time.Duration // PAPYRUS_TIMEOUT: PDF page readiness timeout
	Workers     int           // PAPYRUS_WORKERS: compiler pool size

	LLMProvider string // PAPYRUS_LLM_PROVIDER: openai, anthropic, ollama
	LLMModel    string // PAPYRUS_LLM_MODEL: model for every task
	LLMAPIKey   string // PAPYRUS_LLM_API_KEY, else OPENAI_API_KEY / ANTHROPIC_API_KEY
	LLMBaseURL  string // PAPYRUS_LLM_BASE_URL: compatible server or ollama URL

	OpenAIKey    string // OPENAI_API_KEY
	AnthropicKey string // ANTHROPIC_API_KEY
}

// knownEnvVars lists valid PAPYRUS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PAPYRUS_CONFIG":       true,
	"PAPYRUS_ADDR":         true,
	"PAPYRUS_CORS_ORIGIN":  true,
	"PAPYRUS_OUTPUT_DIR":   true,
	"PAPYRUS_TEMPLATE_DIR": true,
	"PAPYRUS_UPLOAD_DIR":   true,
	"PAPYRUS_TIMEOUT":      true,
	"PAPYRUS_WORKERS":      true,
	"PAPYRUS_LLM_PROVIDER": true,
	"PAPYRUS_LLM_MODEL":    true,
	"PAPYRUS_LLM_API_KEY":  true,
	"PAPYRUS_LLM_BASE_URL": true,
	"PAPYRUS_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("PAPYRUS_CONFIG"),
		Addr:         os.Getenv("PAPYRUS_ADDR"),
		CORSOrigin:   os.Getenv("PAPYRUS_CORS_ORIGIN"),
		OutputDir:    os.Getenv("PAPYRUS_OUTPUT_DIR"),
		TemplateDir:  os.Getenv("PAPYRUS_TEMPLATE_DIR"),
		UploadDir:    os.Getenv("PAPYRUS_UPLOAD_DIR"),
		LLMProvider:  os.Getenv("PAPYRUS_LLM_PROVIDER"),
		LLMModel:     os.Getenv("PAPYRUS_LLM_MODEL"),
		LLMAPIKey:    os.Getenv("PAPYRUS_LLM_API_KEY"),
		LLMBaseURL:   os.Getenv("PAPYRUS_LLM_BASE_URL"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
	}

	// PORT is what most hosting platforms set.
	if cfg.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			if p, err := strconv.Atoi(port); err == nil && p > 0 && p < 65536 {
				cfg.Addr = ":" + port
			}
		}
	}

	if timeout := os.Getenv("PAPYRUS_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PAPYRUS_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized PAPYRUS_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PAPYRUS_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides cfg with every environment value that is set.
// Provider API keys only fill an empty llm.apiKey.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.CORSOrigin != "" {
		cfg.Server.CORSOrigin = env.CORSOrigin
	}
	if env.OutputDir != "" {
		cfg.Paths.OutputDir = env.OutputDir
	}
	if env.TemplateDir != "" {
		cfg.Paths.TemplateDir = env.TemplateDir
	}
	if env.UploadDir != "" {
		cfg.Paths.UploadDir = env.UploadDir
	}
	if env.Timeout > 0 {
		cfg.PDF.Timeout = env.Timeout.String()
	}

	if env.LLMProvider != "" {
		cfg.LLM.Provider = env.LLMProvider
		cfg.LLM.ApplyProviderDefaults()
	}
	if env.LLMModel != "" {
		cfg.LLM.AnalyzeModel = env.LLMModel
		cfg.LLM.EnhanceModel = env.LLMModel
		cfg.LLM.ExtractModel = env.LLMModel
		cfg.LLM.DiagramModel = env.LLMModel
	}
	if env.LLMBaseURL != "" {
		cfg.LLM.BaseURL = env.LLMBaseURL
	}

	switch {
	case env.LLMAPIKey != "":
		cfg.LLM.APIKey = env.LLMAPIKey
	case cfg.LLM.APIKey != "":
	case cfg.LLM.Provider == config.ProviderOpenAI:
		cfg.LLM.APIKey = env.OpenAIKey
	case cfg.LLM.Provider == config.ProviderAnthropic:
		cfg.LLM.APIKey = env.AnthropicKey
	}
}

// loadConfig resolves the effective configuration: the file at path (or
// PAPYRUS_CONFIG, or the search paths), then environment overrides.
func loadConfig(path string, env *Environment) (*config.Config, error) {
	if env.Config != nil {
		cfg := *env.Config
		return &cfg, nil
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)
	if path == "" {
		path = envCfg.ConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envWorkers returns PAPYRUS_WORKERS, or 0 when unset.
func envWorkers() int {
	return loadEnvConfig().Workers
}
