package main

// Notes:
// - GenerateCompletion: we test that shell scripts are generated with expected
//   content markers. We do not test that the scripts actually work in the
//   target shell (that would require integration tests with actual shells).
// - getCommands: we test that commands and flags come from the registered
//   FlagSets, enriched with enum values, file globs and directories.
// These are acceptable gaps: we test observable behavior, not runtime shell behavior.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func findCommand(t *testing.T, name string) commandDef {
	t.Helper()
	for _, c := range getCommands() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("command %q not found", name)
	return commandDef{}
}

func findFlag(t *testing.T, cmd commandDef, long string) flagDef {
	t.Helper()
	for _, f := range cmd.Flags {
		if f.Long == long {
			return f
		}
	}
	t.Fatalf("command %q has no --%s", cmd.Name, long)
	return flagDef{}
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_SupportedShells - Shell completion script generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		shell        Shell
		wantContains []string
	}{
		{
			name:  "bash",
			shell: ShellBash,
			wantContains: []string{
				"_papyrus_completions",
				"complete -o filenames -F _papyrus_completions papyrus",
				"compgen",
				"compile)",
				"--template|-T)",
				"default modern classic minimal",
				"--html-mode",
			},
		},
		{
			name:  "zsh",
			shell: ShellZsh,
			wantContains: []string{
				"#compdef papyrus",
				"_papyrus",
				"_arguments",
				"_describe",
				"'(-o --output)'{-o,--output}",
				`_files -g "*.md *.markdown"`,
				"compdef _papyrus papyrus",
			},
		},
		{
			name:  "fish",
			shell: ShellFish,
			wantContains: []string{
				"complete -c papyrus",
				"__fish_papyrus_needs_command",
				"__fish_papyrus_using_command compile",
				"-l template -x -a 'default modern classic minimal'",
				"__fish_complete_suffix .yaml .yml",
			},
		},
		{
			name:  "powershell",
			shell: ShellPowerShell,
			wantContains: []string{
				"Register-ArgumentCompleter",
				"-CommandName papyrus",
				"CompletionResult",
				"'serve' = 'Run the HTTP API'",
				",@('--output',",
				"'--html-mode' = @('strip', 'text', 'markdown')",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion(%q) returned error: %v", tt.shell, err)
			}

			output := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(output, want) {
					t.Errorf("output missing expected content %q", want)
				}
			}
			for _, cmd := range getCommands() {
				if !strings.Contains(output, cmd.Name) {
					t.Errorf("output missing command %q", cmd.Name)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_UnsupportedShell - Error handling for unknown shells
// ---------------------------------------------------------------------------

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{"", "unknown", "sh", "ksh"} {
		t.Run(string(shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := GenerateCompletion(&buf, shell)
			if !errors.Is(err, ErrUnsupportedShell) {
				t.Fatalf("error = %v, want ErrUnsupportedShell", err)
			}
			if !strings.Contains(err.Error(), `"`+string(shell)+`"`) {
				t.Errorf("error should quote the shell name, got %v", err)
			}
			if buf.Len() != 0 {
				t.Error("nothing should be written for an unsupported shell")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunCompletion - Command entry point
// ---------------------------------------------------------------------------

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	t.Run("no args prints usage", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil)
		if err := runCompletion(nil, env); err != nil {
			t.Fatalf("runCompletion: %v", err)
		}
		out := stdout.String()
		if !strings.Contains(out, "Usage: papyrus completion") {
			t.Error("expected usage message")
		}
		for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
			if !strings.Contains(out, shell) {
				t.Errorf("usage should mention %s", shell)
			}
		}
	})

	t.Run("valid shell", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv(nil)
		if err := runCompletion([]string{"zsh"}, env); err != nil {
			t.Fatalf("runCompletion: %v", err)
		}
		if !strings.HasPrefix(stdout.String(), "#compdef papyrus") {
			t.Error("zsh script should start with #compdef")
		}
	})

	t.Run("invalid shell", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil)
		if err := runCompletion([]string{"tcsh"}, env); !errors.Is(err, ErrUnsupportedShell) {
			t.Errorf("error = %v, want ErrUnsupportedShell", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestGetCommands - Command registry
// ---------------------------------------------------------------------------

func TestGetCommands_Names(t *testing.T) {
	t.Parallel()

	want := []string{"serve", "compile", "extract", "signals", "templates", "config", "doctor", "completion", "version", "help"}
	got := commandNames(getCommands())
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("commands = %v, want %v", got, want)
	}

	help := findCommand(t, "help")
	if len(help.Args) != len(want)-1 {
		t.Errorf("help completes %d commands, want %d", len(help.Args), len(want)-1)
	}
}

func TestGetCommands_FlagTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command   string
		flag      string
		wantShort string
		wantType  flagType
	}{
		{"compile", "output", "o", flagDir},
		{"compile", "template", "T", flagEnum},
		{"compile", "workers", "w", flagInt},
		{"compile", "html", "", flagBool},
		{"compile", "title", "", flagString},
		{"compile", "config", "c", flagFile},
		{"serve", "output-dir", "o", flagDir},
		{"serve", "addr", "a", flagString},
		{"extract", "html-mode", "", flagEnum},
		{"doctor", "json", "", flagBool},
		{"config", "verbose", "v", flagBool},
	}

	for _, tt := range tests {
		t.Run(tt.command+" --"+tt.flag, func(t *testing.T) {
			t.Parallel()

			f := findFlag(t, findCommand(t, tt.command), tt.flag)
			if f.Short != tt.wantShort {
				t.Errorf("short = %q, want %q", f.Short, tt.wantShort)
			}
			if f.Type != tt.wantType {
				t.Errorf("type = %v, want %v", f.Type, tt.wantType)
			}
		})
	}
}

func TestGetCommands_FilePatterns(t *testing.T) {
	t.Parallel()

	compile := findCommand(t, "compile")
	if !compile.TakesFiles || compile.FilePattern != "*.md,*.markdown" {
		t.Errorf("compile files = %v %q", compile.TakesFiles, compile.FilePattern)
	}

	extract := findCommand(t, "extract")
	for _, glob := range []string{"*.txt", "*.md", "*.docx", "*.html", "*.htm"} {
		if !strings.Contains(extract.FilePattern, glob) {
			t.Errorf("extract pattern %q missing %s", extract.FilePattern, glob)
		}
	}

	cfg := findFlag(t, compile, "config")
	if cfg.FileGlob != "*.yaml,*.yml" {
		t.Errorf("--config glob = %q", cfg.FileGlob)
	}
}
