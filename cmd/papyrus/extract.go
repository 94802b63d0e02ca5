package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/alnah/papyrus"
)

// runExtract extracts text from files. Failed files are reported and the
// others still processed; the command fails if any file failed.
func runExtract(ctx context.Context, args []string, env *Environment) error {
	flags, inputs, err := parseExtractFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return ErrNoInput
	}
	mode, err := papyrus.ParseHTMLStrategy(flags.htmlMode)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, false, flags.common.verbose)
	defer func() { _ = logger.Sync() }()

	extractor := papyrus.NewExtractor(papyrus.WithLogger(logger), papyrus.WithHTMLStrategy(mode))

	sources := make([]papyrus.SourceFile, 0, len(inputs))
	for _, in := range inputs {
		sources = append(sources, papyrus.SourceFile{Path: in, Name: filepath.Base(in)})
	}
	batch := extractor.ExtractBatch(ctx, sources)

	switch {
	case flags.json:
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			return err
		}
	case flags.output != "":
		if err := writeExtractions(flags.output, batch.Results); err != nil {
			return err
		}
	case !flags.common.quiet:
		printExtractions(env.Stdout, batch.Results)
	}

	if !flags.json {
		printExtractSummary(env, batch, flags.output, flags.common.quiet)
	}
	if batch.ErrorCount > 0 {
		return fmt.Errorf("%d extraction(s) failed", batch.ErrorCount)
	}
	return nil
}

// writeExtractions writes each text to dir/<name>.txt.
func writeExtractions(dir string, results []papyrus.Extraction) error {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	for _, r := range results {
		path := filepath.Join(dir, textFileName(r.Filename))
		// #nosec G306 -- extracted text is meant to be readable
		if err := os.WriteFile(path, []byte(r.Text), filePermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	return nil
}

func textFileName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
}

// printExtractions prints the texts, each under a header when there are
// several.
func printExtractions(w io.Writer, results []papyrus.Extraction) {
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", r.Filename)
		}
		fmt.Fprintln(w, r.Text)
	}
}

// printExtractSummary reports every file on stderr, so that the extracted
// text on stdout stays pipeable.
func printExtractSummary(env *Environment, batch *papyrus.BatchExtraction, outputDir string, quiet bool) {
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)

	for _, e := range batch.Errors {
		fail.Fprint(env.Stderr, "FAILED ")
		fmt.Fprintf(env.Stderr, "%s: %s\n", e.Filename, e.Error)
	}
	if quiet {
		return
	}

	for _, r := range batch.Results {
		target := r.Filename
		if outputDir != "" {
			target = filepath.Join(outputDir, textFileName(r.Filename))
		}
		ok.Fprint(env.Stderr, "OK ")
		fmt.Fprintf(env.Stderr, "%s (%s, %d words, %d lines)\n",
			target, r.Format, r.Statistics.WordCount, r.Statistics.LineCount)
		for _, w := range r.Warnings {
			warn.Fprint(env.Stderr, "  warning: ")
			fmt.Fprintln(env.Stderr, w)
		}
	}

	if len(batch.Results)+len(batch.Errors) > 1 {
		fmt.Fprintf(env.Stderr, "\n%d succeeded, %d failed\n", batch.ProcessedCount, batch.ErrorCount)
	}
}
