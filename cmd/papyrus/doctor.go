package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/papyrus/internal/config"
	"github.com/alnah/papyrus/internal/fileutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	LLM      llmInfo    `json:"llm"`
	Paths    pathsInfo  `json:"paths"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// llmInfo describes the configured language model backend.
type llmInfo struct {
	Provider string `json:"provider"`
	KeySet   bool   `json:"api_key_set"`
	BaseURL  string `json:"base_url,omitempty"`
}

// pathsInfo holds directory checks.
type pathsInfo struct {
	OutputDir         string `json:"output_dir"`
	OutputWritable    bool   `json:"output_writable"`
	TemplateDir       string `json:"template_dir"`
	TemplateDirExists bool   `json:"template_dir_exists"`
	UploadDir         string `json:"upload_dir"`
	UploadWritable    bool   `json:"upload_writable"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

type doctorFlags struct {
	config string
	json   bool
}

func registerDoctorFlags(fs *flag.FlagSet, f *doctorFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVar(&f.json, "json", false, "print JSON")
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	fs := newFlagSet("doctor", env.Stderr, printDoctorUsage)
	f := &doctorFlags{}
	registerDoctorFlags(fs, f)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	result := runDoctor(f.config, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configPath string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result)

	cfg, err := loadConfig(configPath, &Environment{Stderr: io.Discard, Config: env.Config})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Configuration: %v", err))
		cfg = config.DefaultConfig()
	}
	checkLLM(result, cfg)
	checkPaths(result, cfg)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	cmd := exec.Command(chromePath, "--version") // #nosec G204 -- browser path from launcher or ROD_BROWSER_BIN
	out, err := cmd.Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("PAPYRUS_CONTAINER") == "1" {
		return true, "PAPYRUS_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkLLM reports whether the AI features can run. A missing key is a
// warning: compilation and extraction work without a model.
func checkLLM(result *doctorResult, cfg *config.Config) {
	result.LLM.Provider = cfg.LLM.Provider
	result.LLM.BaseURL = cfg.LLM.BaseURL
	result.LLM.KeySet = cfg.LLM.APIKey != ""

	if cfg.LLM.Provider == config.ProviderOllama {
		return
	}
	if !result.LLM.KeySet {
		key := "OPENAI_API_KEY"
		if cfg.LLM.Provider == config.ProviderAnthropic {
			key = "ANTHROPIC_API_KEY"
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No API key for %s. AI features are disabled; set %s or llm.apiKey", cfg.LLM.Provider, key))
	}
}

// checkPaths verifies the output and upload directories can be written.
// Missing directories are created, as serve would.
func checkPaths(result *doctorResult, cfg *config.Config) {
	result.Paths.OutputDir = cfg.Paths.OutputDir
	result.Paths.TemplateDir = cfg.Paths.TemplateDir
	result.Paths.UploadDir = cfg.Paths.UploadDir

	result.Paths.OutputWritable = dirWritable(cfg.Paths.OutputDir)
	if !result.Paths.OutputWritable {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory not writable: %s", cfg.Paths.OutputDir))
	}

	if cfg.Paths.UploadDir != "" {
		result.Paths.UploadWritable = dirWritable(cfg.Paths.UploadDir)
		if !result.Paths.UploadWritable {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Upload directory not writable: %s (serve uploads will fail)", cfg.Paths.UploadDir))
		}
	}

	if cfg.Paths.TemplateDir != "" {
		info, err := os.Stat(cfg.Paths.TemplateDir)
		result.Paths.TemplateDirExists = err == nil && info.IsDir()
	}
}

func dirWritable(dir string) bool {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return false
	}
	f, err := os.CreateTemp(dir, ".papyrus-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false
	}
	return true
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "papyrus-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

func okOrError(ok bool) string {
	if ok {
		return "[OK]"
	}
	return "[ERROR]"
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "papyrus doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Language model")
	fmt.Fprintf(w, "  [OK] Provider: %s\n", r.LLM.Provider)
	switch {
	case r.LLM.Provider == config.ProviderOllama:
		fmt.Fprintln(w, "  [OK] API key: not needed")
	case r.LLM.KeySet:
		fmt.Fprintln(w, "  [OK] API key: set")
	default:
		fmt.Fprintln(w, "  [WARN] API key: missing")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Paths")
	fmt.Fprintf(w, "  %s Output directory: %s\n", okOrError(r.Paths.OutputWritable), r.Paths.OutputDir)
	if r.Paths.UploadDir != "" {
		status := "[OK]"
		if !r.Paths.UploadWritable {
			status = "[WARN]"
		}
		fmt.Fprintf(w, "  %s Upload directory: %s\n", status, r.Paths.UploadDir)
	}
	if r.Paths.TemplateDirExists {
		fmt.Fprintf(w, "  [OK] Template directory: %s\n", r.Paths.TemplateDir)
	} else {
		fmt.Fprintln(w, "  [OK] Template directory: none (built-in templates only)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
