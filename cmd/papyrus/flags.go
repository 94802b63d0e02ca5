package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common     commonFlags
	addr       string
	outputDir  string
	corsOrigin string
	workers    int
	timeout    string
}

// documentFlags holds per-document template values.
type documentFlags struct {
	title  string
	author string
	date   string
}

// styleFlags holds typography overrides.
type styleFlags struct {
	fontFamily   string
	fontSize     string
	lineHeight   string
	primaryColor string
	accentColor  string
}

// compileFlags holds flags for the compile command.
type compileFlags struct {
	common   commonFlags
	output   string
	template string
	workers  int
	timeout  string
	html     bool
	noAI     bool
	document documentFlags
	style    styleFlags
}

// extractFlags holds flags for the extract command.
type extractFlags struct {
	common   commonFlags
	htmlMode string
	output   string
	json     bool
}

// outputFormatFlags selects machine-readable output.
type outputFormatFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addDocumentFlags adds template value flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "document title (default: first H1, else file name)")
	fs.StringVar(&f.author, "author", "", "document author")
	fs.StringVar(&f.date, "date", "", "document date (default: today)")
}

// addStyleFlags adds typography flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.fontFamily, "font-family", "", "body font family")
	fs.StringVar(&f.fontSize, "font-size", "", "body font size, e.g. 12pt")
	fs.StringVar(&f.lineHeight, "line-height", "", "body line height, e.g. 1.6")
	fs.StringVar(&f.primaryColor, "primary-color", "", "text color (hex)")
	fs.StringVar(&f.accentColor, "accent-color", "", "heading and link color (hex)")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

func registerServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :5000)")
	fs.StringVarP(&f.outputDir, "output-dir", "o", "", "generated files directory")
	fs.StringVar(&f.corsOrigin, "cors-origin", "", "allowed browser origin")
	fs.IntVarP(&f.workers, "workers", "w", 0, "PDF compilers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF page readiness timeout (e.g., 30s, 2m)")
	addCommonFlags(fs, &f.common)
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, error) {
	fs := newFlagSet("serve", w, printServeUsage)
	f := &serveFlags{}
	registerServeFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func registerCompileFlags(fs *flag.FlagSet, f *compileFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: paths.outputDir)")
	fs.StringVarP(&f.template, "template", "T", "default", "template id")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF page readiness timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.html, "html", false, "write the HTML document instead of a PDF")
	fs.BoolVar(&f.noAI, "no-ai", false, "render markers without the language model")
	addDocumentFlags(fs, &f.document)
	addStyleFlags(fs, &f.style)
	addCommonFlags(fs, &f.common)
}

// parseCompileFlags parses compile command flags and returns positional args.
func parseCompileFlags(args []string, w io.Writer) (*compileFlags, []string, error) {
	fs := newFlagSet("compile", w, printCompileUsage)
	f := &compileFlags{}
	registerCompileFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func registerExtractFlags(fs *flag.FlagSet, f *extractFlags) {
	fs.StringVar(&f.htmlMode, "html-mode", "strip", "HTML handling: strip, text, markdown")
	fs.StringVarP(&f.output, "output", "o", "", "write <name>.txt files to this directory")
	fs.BoolVar(&f.json, "json", false, "print the batch result as JSON")
	addCommonFlags(fs, &f.common)
}

// parseExtractFlags parses extract command flags and returns positional args.
func parseExtractFlags(args []string, w io.Writer) (*extractFlags, []string, error) {
	fs := newFlagSet("extract", w, printExtractUsage)
	f := &extractFlags{}
	registerExtractFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func registerOutputFormatFlags(fs *flag.FlagSet, f *outputFormatFlags) {
	fs.BoolVar(&f.json, "json", false, "print JSON")
	addCommonFlags(fs, &f.common)
}

// parseOutputFormatFlags parses the flags of the read-only commands
// (signals, templates, config).
func parseOutputFormatFlags(name string, args []string, w io.Writer, usage func(io.Writer)) (*outputFormatFlags, []string, error) {
	fs := newFlagSet(name, w, usage)
	f := &outputFormatFlags{}
	registerOutputFormatFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
