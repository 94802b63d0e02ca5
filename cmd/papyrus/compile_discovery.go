package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/papyrus"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToCompile is a markdown source and where its output goes.
type FileToCompile struct {
	InputPath  string
	OutputPath string // extension is added by the caller (.pdf or .html)
}

// discoverFiles expands every input (a markdown file or a directory
// walked for .md and .markdown files) into the files to compile.
// Outputs keep the directory layout below each input directory.
func discoverFiles(inputs []string, outputDir string) ([]FileToCompile, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	var files []FileToCompile
	for _, input := range inputs {
		found, err := discoverInput(input, outputDir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func discoverInput(inputPath, outputDir string) ([]FileToCompile, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		return []FileToCompile{{InputPath: inputPath, OutputPath: resolveOutputBase(inputPath, outputDir, "")}}, nil
	}

	var files []FileToCompile
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}
		files = append(files, FileToCompile{InputPath: path, OutputPath: resolveOutputBase(path, outputDir, inputPath)})
		return nil
	})
	return files, err
}

// resolveOutputBase returns the output path of a markdown file, without
// extension. An empty outputDir writes next to the input.
func resolveOutputBase(inputPath, outputDir, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}

	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base)
		}
	}
	return filepath.Join(outputDir, base)
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !isMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > papyrus.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, papyrus.MaxPoolSize)
	}
	return nil
}
