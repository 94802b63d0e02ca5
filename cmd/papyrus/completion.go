package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/papyrus"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Type     flagType
	Desc     string
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	Args        []string // fixed positional values
	TakesFiles  bool
	FilePattern string // comma separated globs, e.g. "*.md,*.markdown"
}

// completionMeta holds completion hints the FlagSet cannot express.
// Flag names, types and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string
	FileGlob string
	IsDir    bool
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"template":  {Values: []string{"default", "modern", "classic", "minimal"}},
	"html-mode": {Values: []string{string(papyrus.HTMLStripTags), string(papyrus.HTMLText), string(papyrus.HTMLMarkdown)}},

	"config": {FileGlob: "*.yaml,*.yml"},

	"output":     {IsDir: true},
	"output-dir": {IsDir: true},
}

// extractFlagsFromFlagSet converts the flags of fs, enriched with
// flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// flagsOf builds a throwaway FlagSet with register and returns its flags.
func flagsOf(register func(fs *flag.FlagSet)) []flagDef {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	register(fs)
	return extractFlagsFromFlagSet(fs)
}

func extractFilePattern() string {
	globs := make([]string, 0, len(papyrus.SupportedExtensions))
	for _, ext := range papyrus.SupportedExtensions {
		globs = append(globs, "*"+ext)
	}
	return strings.Join(globs, ",")
}

// getCommands returns the command registry for completion. Flags come from
// the same register functions the commands parse with.
func getCommands() []commandDef {
	commands := []commandDef{
		{
			Name:  "serve",
			Desc:  "Run the HTTP API",
			Flags: flagsOf(func(fs *flag.FlagSet) { registerServeFlags(fs, &serveFlags{}) }),
		},
		{
			Name:        "compile",
			Desc:        "Compile markdown files to PDF",
			Flags:       flagsOf(func(fs *flag.FlagSet) { registerCompileFlags(fs, &compileFlags{}) }),
			TakesFiles:  true,
			FilePattern: "*.md,*.markdown",
		},
		{
			Name:        "extract",
			Desc:        "Extract text from documents",
			Flags:       flagsOf(func(fs *flag.FlagSet) { registerExtractFlags(fs, &extractFlags{}) }),
			TakesFiles:  true,
			FilePattern: extractFilePattern(),
		},
		{
			Name:       "signals",
			Desc:       "Extract numeric data from text",
			Flags:      flagsOf(func(fs *flag.FlagSet) { registerOutputFormatFlags(fs, &outputFormatFlags{}) }),
			TakesFiles: true,
		},
		{
			Name:  "templates",
			Desc:  "List document templates",
			Flags: flagsOf(func(fs *flag.FlagSet) { registerOutputFormatFlags(fs, &outputFormatFlags{}) }),
			Args:  flagCompletionMeta["template"].Values,
		},
		{
			Name:  "config",
			Desc:  "Show the effective configuration",
			Flags: flagsOf(func(fs *flag.FlagSet) { addCommonFlags(fs, &commonFlags{}) }),
		},
		{
			Name:  "doctor",
			Desc:  "Check system readiness",
			Flags: flagsOf(func(fs *flag.FlagSet) { registerDoctorFlags(fs, &doctorFlags{}) }),
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)},
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
	}

	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}
	commands = append(commands, commandDef{
		Name: "help",
		Desc: "Show help for a command",
		Args: names,
	})
	return commands
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(papyrus completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(papyrus completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    papyrus completion fish > ~/.config/fish/completions/papyrus.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    papyrus completion powershell | Out-String | Invoke-Expression")
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer) error {
	commands := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for papyrus\n\n")
	b.WriteString("_papyrus_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(commandNames(commands), " "))
	b.WriteString("        return 0\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, cmd := range commands {
		fmt.Fprintf(&b, "        %s)\n", cmd.Name)

		if valued := bashValueCases(cmd.Flags); valued != "" {
			b.WriteString("            case \"${prev}\" in\n")
			b.WriteString(valued)
			b.WriteString("            esac\n")
		}
		if len(cmd.Flags) > 0 {
			b.WriteString("            if [[ ${cur} == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(flagWords(cmd.Flags), " "))
			b.WriteString("                return 0\n")
			b.WriteString("            fi\n")
		}
		switch {
		case len(cmd.Args) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n", strings.Join(cmd.Args, " "))
		case cmd.TakesFiles:
			b.WriteString("            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n")
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("    return 0\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -o filenames -F _papyrus_completions papyrus\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// bashValueCases returns the case arms completing the value of the flag
// just typed.
func bashValueCases(flags []flagDef) string {
	var b strings.Builder
	for _, f := range flags {
		var reply string
		switch f.Type {
		case flagEnum:
			reply = fmt.Sprintf("$(compgen -W %q -- \"${cur}\")", strings.Join(f.Values, " "))
		case flagFile:
			reply = "$(compgen -f -- \"${cur}\")"
		case flagDir:
			reply = "$(compgen -d -- \"${cur}\")"
		default:
			continue
		}
		fmt.Fprintf(&b, "                %s)\n", strings.Join(flagSpellings(f), "|"))
		fmt.Fprintf(&b, "                    COMPREPLY=( %s )\n", reply)
		b.WriteString("                    return 0\n")
		b.WriteString("                    ;;\n")
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(w io.Writer) error {
	commands := getCommands()
	var b strings.Builder

	b.WriteString("#compdef papyrus\n\n")
	b.WriteString("_papyrus() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "        '%s:%s'\n", cmd.Name, zshEscape(cmd.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    local cmd=\"${words[2]}\"\n")
	b.WriteString("    shift words\n")
	b.WriteString("    (( CURRENT-- ))\n\n")
	b.WriteString("    case \"${cmd}\" in\n")

	for _, cmd := range commands {
		specs := make([]string, 0, len(cmd.Flags)+1)
		for _, f := range cmd.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case len(cmd.Args) > 0:
			specs = append(specs, fmt.Sprintf("'*:argument:(%s)'", strings.Join(cmd.Args, " ")))
		case cmd.TakesFiles && cmd.FilePattern != "":
			specs = append(specs, fmt.Sprintf("'*:file:_files -g \"%s\"'", zshGlob(cmd.FilePattern)))
		case cmd.TakesFiles:
			specs = append(specs, "'*:file:_files'")
		}
		if len(specs) == 0 {
			continue
		}

		fmt.Fprintf(&b, "        %s)\n", cmd.Name)
		b.WriteString("            _arguments -s \\\n")
		for i, spec := range specs {
			b.WriteString("                " + spec)
			if i < len(specs)-1 {
				b.WriteString(" \\")
			}
			b.WriteString("\n")
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _papyrus papyrus\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func zshFlagSpec(f flagDef) string {
	desc := "[" + zshEscape(f.Desc) + "]"

	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		action = fmt.Sprintf(":file:_files -g \"%s\"", zshGlob(f.FileGlob))
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + f.Long + ": "
	}

	if f.Short == "" {
		return fmt.Sprintf("'--%s%s%s'", f.Long, desc, action)
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

// zshGlob turns "*.yaml,*.yml" into "*.yaml *.yml".
func zshGlob(pattern string) string {
	return strings.ReplaceAll(pattern, ",", " ")
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(w io.Writer) error {
	commands := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for papyrus\n\n")
	b.WriteString("function __fish_papyrus_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_papyrus_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test \"$cmd[2]\" = \"$argv[1]\"\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c papyrus -f\n\n")

	for _, cmd := range commands {
		fmt.Fprintf(&b, "complete -c papyrus -n __fish_papyrus_needs_command -a %s -d '%s'\n", cmd.Name, fishEscape(cmd.Desc))
	}

	for _, cmd := range commands {
		cond := fmt.Sprintf("-n '__fish_papyrus_using_command %s'", cmd.Name)
		b.WriteString("\n")
		for _, f := range cmd.Flags {
			line := "complete -c papyrus " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch f.Type {
			case flagBool:
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				line += fmt.Sprintf(" -r -a '(__fish_complete_suffix %s)'", fishSuffixes(f.FileGlob))
			case flagDir:
				line += " -r -a '(__fish_complete_directories)'"
			default:
				line += " -r"
			}
			line += fmt.Sprintf(" -d '%s'\n", fishEscape(f.Desc))
			b.WriteString(line)
		}
		switch {
		case len(cmd.Args) > 0:
			fmt.Fprintf(&b, "complete -c papyrus %s -a '%s'\n", cond, strings.Join(cmd.Args, " "))
		case cmd.TakesFiles:
			fmt.Fprintf(&b, "complete -c papyrus %s -F\n", cond)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fishSuffixes turns "*.yaml,*.yml" into ".yaml .yml".
func fishSuffixes(pattern string) string {
	parts := strings.Split(pattern, ",")
	for i, p := range parts {
		parts[i] = strings.TrimPrefix(p, "*")
	}
	return strings.Join(parts, " ")
}

func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(w io.Writer) error {
	commands := getCommands()
	var b strings.Builder

	b.WriteString("# powershell completion for papyrus\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName papyrus -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $elements = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, cmd := range commands {
		fmt.Fprintf(&b, "        '%s' = '%s'\n", cmd.Name, psEscape(cmd.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, cmd := range commands {
		if len(cmd.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        '%s' = @(\n", cmd.Name)
		for _, f := range cmd.Flags {
			for _, spelling := range flagSpellings(f) {
				fmt.Fprintf(&b, "            ,@('%s', '%s')\n", spelling, psEscape(f.Desc))
			}
		}
		b.WriteString("        )\n")
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $values = @{\n")
	seen := make(map[string]bool)
	for _, cmd := range commands {
		for _, f := range cmd.Flags {
			if f.Type != flagEnum || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			for _, spelling := range flagSpellings(f) {
				fmt.Fprintf(&b, "        '%s' = @(%s)\n", spelling, psList(f.Values))
			}
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $arguments = @{\n")
	for _, cmd := range commands {
		if len(cmd.Args) > 0 {
			fmt.Fprintf(&b, "        '%s' = @(%s)\n", cmd.Name, psList(cmd.Args))
		}
	}
	b.WriteString("    }\n\n")

	b.WriteString("    if ($elements.Count -eq 1 -or ($elements.Count -eq 2 -and $wordToComplete -ne '')) {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    $cmd = $elements[1]\n")
	b.WriteString("    $prev = if ($wordToComplete -eq '') { $elements[-1] } else { $elements[-2] }\n\n")

	b.WriteString("    if ($values.ContainsKey($prev)) {\n")
	b.WriteString("        $values[$prev] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    if ($wordToComplete -like '-*' -and $flags.ContainsKey($cmd)) {\n")
	b.WriteString("        $flags[$cmd] | Where-Object { $_[0] -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_[0], $_[0], 'ParameterName', $_[1])\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    if ($arguments.ContainsKey($cmd)) {\n")
	b.WriteString("        $arguments[$cmd] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func psList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + psEscape(v) + "'"
	}
	return strings.Join(quoted, ", ")
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

func commandNames(commands []commandDef) []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	return names
}

// flagSpellings returns "--long" and, when defined, "-s".
func flagSpellings(f flagDef) []string {
	out := []string{"--" + f.Long}
	if f.Short != "" {
		out = append(out, "-"+f.Short)
	}
	return out
}

// flagWords returns every spelling of flags, sorted for stable scripts.
func flagWords(flags []flagDef) []string {
	var words []string
	for _, f := range flags {
		words = append(words, flagSpellings(f)...)
	}
	sort.Strings(words)
	return words
}
