package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/papyrus"
	"github.com/alnah/papyrus/internal/config"
	"github.com/alnah/papyrus/internal/hints"
)

// Exit codes for the papyrus CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, papyrus.ErrBrowserConnect) ||
		errors.Is(err, papyrus.ErrPageCreate) ||
		errors.Is(err, papyrus.ErrPageLoad) ||
		errors.Is(err, papyrus.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, papyrus.ErrEmptyContent) ||
		errors.Is(err, papyrus.ErrEmptyText) ||
		errors.Is(err, papyrus.ErrInvalidFormat) ||
		errors.Is(err, papyrus.ErrUnsupportedFormat) ||
		errors.Is(err, papyrus.ErrTemplateNotFound) ||
		errors.Is(err, papyrus.ErrNoCompleter) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, env *Environment) string {
	switch {
	case errors.Is(err, papyrus.ErrPDFGeneration), errors.Is(err, papyrus.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths())
	case errors.Is(err, papyrus.ErrNoCompleter):
		provider := config.ProviderOpenAI
		if env != nil && env.Config != nil {
			provider = env.Config.LLM.Provider
		} else if p := os.Getenv("PAPYRUS_LLM_PROVIDER"); p != "" {
			provider = p
		}
		return hints.ForMissingAPIKey(provider)
	case errors.Is(err, papyrus.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(builtInTemplateIDs())
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// builtInTemplateIDs lists the embedded template ids.
func builtInTemplateIDs() []string {
	c, err := papyrus.NewCompiler()
	if err != nil {
		return nil
	}
	defer func() { _ = c.Close() }()

	infos, err := c.ListTemplates()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	return ids
}
