package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alnah/papyrus"
	"github.com/alnah/papyrus/internal/yamlutil"
)

// maxSignalsInput bounds what signals reads from a file or stdin.
const maxSignalsInput = 10 << 20

// signalsReport is the output of the signals command.
type signalsReport struct {
	KeyValue       []papyrus.Datum   `json:"keyValue" yaml:"keyValue"`
	Tables         []string          `json:"tables" yaml:"tables"`
	Bullets        []papyrus.Datum   `json:"bullets" yaml:"bullets"`
	SuggestedChart papyrus.ChartType `json:"suggestedChart,omitempty" yaml:"suggestedChart,omitempty"`
	Statistics     papyrus.Stats     `json:"statistics" yaml:"statistics"`
}

// runSignals prints the numeric data found in a file or stdin.
func runSignals(args []string, env *Environment) error {
	flags, rest, err := parseOutputFormatFlags("signals", args, env.Stderr, printSignalsUsage)
	if err != nil {
		return err
	}

	text, err := readSignalsInput(rest, env)
	if err != nil {
		return err
	}

	data := papyrus.ExtractSignals(text)
	report := signalsReport{
		KeyValue:   data.KeyValue,
		Tables:     data.Tables,
		Bullets:    data.Bullets,
		Statistics: papyrus.ComputeStats(text),
	}
	if len(data.KeyValue) > 0 {
		report.SuggestedChart = papyrus.SuggestChartType(len(data.KeyValue))
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return yamlutil.Encode(env.Stdout, report)
}

func readSignalsInput(args []string, env *Environment) (string, error) {
	var r io.Reader
	switch {
	case len(args) > 1:
		return "", fmt.Errorf("signals takes at most one file, got %d", len(args))
	case len(args) == 0 || args[0] == "-":
		if env.Stdin == nil {
			return "", ErrNoInput
		}
		r = env.Stdin
	default:
		f, err := os.Open(args[0]) // #nosec G304 -- user-provided path
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSignalsInput))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}
