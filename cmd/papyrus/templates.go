package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/alnah/papyrus"
)

// runTemplates lists the templates, or shows the one named by the
// positional argument.
func runTemplates(args []string, env *Environment) error {
	flags, rest, err := parseOutputFormatFlags("templates", args, env.Stderr, printTemplatesUsage)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}

	logger := newLogger(env.Stderr, false, flags.common.verbose)
	defer func() { _ = logger.Sync() }()

	compiler, err := papyrus.NewCompiler(
		papyrus.WithLogger(logger),
		papyrus.WithTemplateDir(cfg.Paths.TemplateDir),
	)
	if err != nil {
		return err
	}
	defer func() { _ = compiler.Close() }()

	var out any
	if len(rest) > 0 {
		info, err := compiler.Template(rest[0])
		if err != nil {
			return err
		}
		out = info
	} else {
		infos, err := compiler.ListTemplates()
		if err != nil {
			return err
		}
		out = infos
	}

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch v := out.(type) {
	case *papyrus.TemplateInfo:
		printTemplateDetails(env, v)
	case []papyrus.TemplateInfo:
		printTemplateTable(env, v)
	}
	return nil
}

func templateSource(info papyrus.TemplateInfo) string {
	if info.BuiltIn {
		return "built-in"
	}
	return info.Path
}

func printTemplateTable(env *Environment, infos []papyrus.TemplateInfo) {
	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.ID, info.Name, templateSource(info), info.Description)
	}
	_ = tw.Flush()
}

func printTemplateDetails(env *Environment, info *papyrus.TemplateInfo) {
	fmt.Fprintf(env.Stdout, "ID:          %s\n", info.ID)
	fmt.Fprintf(env.Stdout, "Name:        %s\n", info.Name)
	fmt.Fprintf(env.Stdout, "Source:      %s\n", templateSource(*info))
	if info.Description != "" {
		fmt.Fprintf(env.Stdout, "Description: %s\n", info.Description)
	}
}
