// Package hints appends actionable suggestions to CLI error messages.
// Every hint is rendered as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/papyrus/internal/fileutil"
)

// IsInContainer detects Docker by the /.dockerenv marker file.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout suggests a longer render timeout.
func ForTimeout() string {
	return format("for large documents, use --timeout or pdf.timeout")
}

// ForConfigNotFound suggests --config and the first user config path searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/papyrus.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepath2slash(p), "/papyrus/") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound lists the template ids that do exist.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForMissingAPIKey names the variable that configures the provider's key.
func ForMissingAPIKey(provider string) string {
	switch provider {
	case "anthropic":
		return format("set ANTHROPIC_API_KEY or llm.apiKey")
	case "ollama":
		return format("start ollama and set llm.baseURL (default http://localhost:11434)")
	default:
		return format("set OPENAI_API_KEY or llm.apiKey")
	}
}

func filepath2slash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
