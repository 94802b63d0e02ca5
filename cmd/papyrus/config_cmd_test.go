package main

// Notes:
// - runConfig: we test that the effective configuration is printed as YAML
//   with the API key masked.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestMaskKey - Secret masking
// ---------------------------------------------------------------------------

func TestMaskKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "****"},
		{"12345678", "****"},
		{"sk-abcdef1234", "****1234"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			if got := maskKey(tt.key); got != tt.want {
				t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunConfig - Command entry point
// ---------------------------------------------------------------------------

func TestRunConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.LLM.APIKey = "sk-live-secret-9876"
	env, stdout, _ := testEnv(cfg)

	if err := runConfig(nil, env); err != nil {
		t.Fatalf("runConfig: %v", err)
	}

	out := stdout.String()
	if strings.Contains(out, "secret") {
		t.Errorf("API key leaked:\n%s", out)
	}
	for _, want := range []string{"server:", "paths:", "llm:", "apiKey:", "****9876", cfg.Paths.OutputDir} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if cfg.LLM.APIKey != "sk-live-secret-9876" {
		t.Error("runConfig must not modify the loaded configuration")
	}
}
