package main

import (
	"github.com/alnah/papyrus/internal/config"
	"github.com/alnah/papyrus/internal/yamlutil"
)

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	fs := newFlagSet("config", env.Stderr, printConfigUsage)
	var common commonFlags
	addCommonFlags(fs, &common)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(common.config, env)
	if err != nil {
		return err
	}
	return yamlutil.Encode(env.Stdout, maskSecrets(cfg))
}

// maskSecrets returns a copy of cfg safe to print.
func maskSecrets(cfg *config.Config) *config.Config {
	out := *cfg
	out.LLM.APIKey = maskKey(cfg.LLM.APIKey)
	return &out
}

// maskKey keeps the last four characters of keys long enough to identify.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
