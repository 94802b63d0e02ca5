package main

// Notes:
// - print*Usage: we test that every flag a command registers is documented
//   in its usage text, so help cannot drift from the FlagSets.
// - runHelp: we test routing to the right usage and the unknown command path.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/alnah/papyrus/internal/config"
)

// ---------------------------------------------------------------------------
// TestPrintUsage - Main usage
// ---------------------------------------------------------------------------

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	out := buf.String()

	if !strings.HasPrefix(out, "Usage: papyrus <command>") {
		t.Errorf("usage should start with the synopsis, got:\n%s", out)
	}
	for _, cmd := range getCommands() {
		if !strings.Contains(out, "  "+cmd.Name+" ") {
			t.Errorf("usage does not list command %q", cmd.Name)
		}
	}
}

// ---------------------------------------------------------------------------
// TestUsageDocumentsFlags - Help stays in sync with the FlagSets
// ---------------------------------------------------------------------------

func TestUsageDocumentsFlags(t *testing.T) {
	t.Parallel()

	usages := map[string]func(io.Writer){
		"serve":     printServeUsage,
		"compile":   printCompileUsage,
		"extract":   printExtractUsage,
		"signals":   printSignalsUsage,
		"templates": printTemplatesUsage,
		"config":    printConfigUsage,
		"doctor":    printDoctorUsage,
	}

	for _, cmd := range getCommands() {
		usage, ok := usages[cmd.Name]
		if !ok {
			continue
		}
		t.Run(cmd.Name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			usage(&buf)
			out := buf.String()

			if !strings.Contains(out, "Usage: papyrus "+cmd.Name) {
				t.Errorf("missing synopsis:\n%s", out)
			}
			for _, f := range cmd.Flags {
				if !strings.Contains(out, "--"+f.Long) {
					t.Errorf("flag --%s is not documented", f.Long)
				}
				if f.Short != "" && !strings.Contains(out, "-"+f.Short+", --"+f.Long) {
					t.Errorf("shorthand -%s for --%s is not documented", f.Short, f.Long)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHelpDefaults - Documented defaults match the code
// ---------------------------------------------------------------------------

func TestHelpDefaults(t *testing.T) {
	t.Parallel()

	t.Run("compile lists every template id", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printCompileUsage(&buf)
		for _, id := range flagCompletionMeta["template"].Values {
			if !strings.Contains(buf.String(), id) {
				t.Errorf("compile usage does not mention template %q", id)
			}
		}
	})

	t.Run("extract lists every html mode", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printExtractUsage(&buf)
		for _, mode := range flagCompletionMeta["html-mode"].Values {
			if !strings.Contains(buf.String(), mode) {
				t.Errorf("extract usage does not mention html mode %q", mode)
			}
		}
	})

	t.Run("serve shows the default address", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		printServeUsage(&buf)
		want := fmt.Sprintf("(default %s)", config.DefaultConfig().Server.Addr)
		if !strings.Contains(buf.String(), want) {
			t.Errorf("serve usage should contain %q", want)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunHelp - Help routing
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantStdout string
		wantStderr string
	}{
		{"no args", nil, "Commands:", ""},
		{"serve", []string{"serve"}, "Usage: papyrus serve", ""},
		{"compile", []string{"compile"}, "Usage: papyrus compile", ""},
		{"extract", []string{"extract"}, "Usage: papyrus extract", ""},
		{"signals", []string{"signals"}, "Usage: papyrus signals", ""},
		{"templates", []string{"templates"}, "Usage: papyrus templates", ""},
		{"config", []string{"config"}, "Usage: papyrus config", ""},
		{"doctor", []string{"doctor"}, "Usage: papyrus doctor", ""},
		{"completion", []string{"completion"}, "Usage: papyrus completion", ""},
		{"version", []string{"version"}, "Usage: papyrus version", ""},
		{"help", []string{"help"}, "Usage: papyrus help", ""},
		{"unknown", []string{"publish"}, "", "Unknown command: publish"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(config.DefaultConfig())
			runHelp(tt.args, env)

			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" {
				if !strings.Contains(stderr.String(), tt.wantStderr) {
					t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
				}
				if stdout.Len() != 0 {
					t.Errorf("unknown command should not write to stdout, got %q", stdout.String())
				}
			}
		})
	}
}
