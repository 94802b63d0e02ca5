package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve       Run the HTTP API")
	fmt.Fprintln(w, "  compile     Compile markdown files to PDF")
	fmt.Fprintln(w, "  extract     Extract text from .txt, .md, .html and .docx files")
	fmt.Fprintln(w, "  signals     Extract numeric key-value pairs, table rows and bullets")
	fmt.Fprintln(w, "  templates   List document templates")
	fmt.Fprintln(w, "  config      Show the effective configuration")
	fmt.Fprintln(w, "  doctor      Check system readiness")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'papyrus help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <path>       Config file (default: ./papyrus.yaml)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP API. Generated files are served under /generated.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :5000)")
	fmt.Fprintln(w, "  -o, --output-dir <path>   Generated files directory")
	fmt.Fprintln(w, "      --cors-origin <url>   Allowed browser origin")
	fmt.Fprintln(w, "  -w, --workers <n>         PDF compilers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF page readiness timeout (e.g., 30s)")
	printCommonUsage(w)
}

// printCompileUsage prints usage for the compile command.
func printCompileUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus compile <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compile markdown files (or directories of them) to PDF.")
	fmt.Fprintln(w, "[CHART: ...] and [DIAGRAM: ...] markers become charts and diagrams.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output directory")
	fmt.Fprintln(w, "  -T, --template <id>       Template id (default, modern, classic, minimal)")
	fmt.Fprintln(w, "      --html                Write HTML instead of PDF")
	fmt.Fprintln(w, "      --no-ai               Render markers without the language model")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF page readiness timeout (e.g., 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Title (default: first H1, else file name)")
	fmt.Fprintln(w, "      --author <s>          Author")
	fmt.Fprintln(w, "      --date <s>            Date (default: today, see document.dateFormat)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Style:")
	fmt.Fprintln(w, "      --font-family <s>     Body font family")
	fmt.Fprintln(w, "      --font-size <s>       Body font size")
	fmt.Fprintln(w, "      --line-height <s>     Body line height")
	fmt.Fprintln(w, "      --primary-color <s>   Text color")
	fmt.Fprintln(w, "      --accent-color <s>    Heading and link color")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printExtractUsage prints usage for the extract command.
func printExtractUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus extract <file>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Extract plain text from .txt, .md, .html, .htm and .docx files.")
	fmt.Fprintln(w, "Failed files are reported and the rest are still processed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --html-mode <s>       HTML handling: strip, text, markdown")
	fmt.Fprintln(w, "  -o, --output <path>       Write <name>.txt files to this directory")
	fmt.Fprintln(w, "      --json                Print the batch result as JSON")
	printCommonUsage(w)
}

// printSignalsUsage prints usage for the signals command.
func printSignalsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus signals [file] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Extract \"Label: 123\" pairs, table rows and \"- Label: 45\" bullets.")
	fmt.Fprintln(w, "Reads standard input when no file (or \"-\") is given.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print JSON instead of YAML")
	printCommonUsage(w)
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus templates [id] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List built-in and custom templates, or show one.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print JSON")
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration (file, then environment overrides).")
	fmt.Fprintln(w, "API keys are masked.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papyrus doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, language model credentials and writable directories.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file (default: ./papyrus.yaml)")
	fmt.Fprintln(w, "      --json                Print JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "compile":
		printCompileUsage(env.Stdout)
	case "extract":
		printExtractUsage(env.Stdout)
	case "signals":
		printSignalsUsage(env.Stdout)
	case "templates":
		printTemplatesUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: papyrus version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: papyrus help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
