// Package config provides configuration management for docgov.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (DOCGOV_*)
// 3. Project config (gov/config.yaml, found by walking up from cwd)
// 4. Defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all docgov configuration.
type Config struct {
	// Project names the governed project (used in rendered headers).
	Project string `yaml:"project" json:"project"`

	// GovRoot is the SSOT root directory (default: gov).
	GovRoot string `yaml:"gov_root" json:"gov_root"`

	// DocsOutput is where rendered projections are written (default: docs).
	DocsOutput string `yaml:"docs_output" json:"docs_output"`

	// DefaultOwner is stamped on newly scaffolded RFCs.
	DefaultOwner string `yaml:"default_owner" json:"default_owner"`

	// Output controls the default output format (table, json, yaml).
	Output string `yaml:"output" json:"output"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// LockTimeoutSecs bounds how long a mutating command waits for the
	// tree lock before failing.
	LockTimeoutSecs int `yaml:"lock_timeout_secs" json:"lock_timeout_secs"`

	// SourceScan settings for source-code reference checking.
	SourceScan ScanConfig `yaml:"source_scan" json:"source_scan"`
}

// ScanConfig gates and shapes the source-reference scanner.
type ScanConfig struct {
	// Enabled turns the scanner on; it is off by default.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Roots are the directories to walk (default: current directory).
	Roots []string `yaml:"roots" json:"roots"`

	// Include are doublestar globs selecting files to scan.
	Include []string `yaml:"include" json:"include"`

	// Exclude are doublestar globs removing files from the scan.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Pattern is a regexp with one capture group extracting an artifact
	// reference (e.g., `\[\[([A-Z]+-[0-9]{4}(?::C-[A-Z0-9-]+)?)\]\]`).
	Pattern string `yaml:"pattern" json:"pattern"`
}

// Default config values.
const (
	defaultOutput      = "table"
	defaultGovRoot     = "gov"
	defaultDocsOutput  = "docs"
	defaultLockTimeout = 10

	// DefaultScanPattern matches bracketed references like
	// [[RFC-0001]], [[RFC-0001:C-NAME]], [[ADR-0002]], [[WI-0003]].
	DefaultScanPattern = `\[\[((?:RFC|ADR|WI)-[0-9]{4}(?::C-[A-Z0-9-]+)?)\]\]`
)

// ConfigFileName is the project config file, relative to the gov root's
// parent.
const ConfigFileName = "gov/config.yaml"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Project:         "docgov-project",
		GovRoot:         defaultGovRoot,
		DocsOutput:      defaultDocsOutput,
		Output:          defaultOutput,
		LockTimeoutSecs: defaultLockTimeout,
		SourceScan: ScanConfig{
			Roots:   []string{"."},
			Include: []string{"**/*.go", "**/*.md"},
			Exclude: []string{"docs/**", "gov/**"},
			Pattern: DefaultScanPattern,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > defaults.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	projectConfig, err := loadFromPath(projectConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// projectConfigPath returns the project config path: an explicit
// DOCGOV_CONFIG override, or gov/config.yaml found by walking up from
// the working directory.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("DOCGOV_CONFIG")); override != "" {
		return override
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("DOCGOV_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("DOCGOV_GOV_ROOT"); v != "" {
		cfg.GovRoot = v
	}
	if v := os.Getenv("DOCGOV_DOCS_OUTPUT"); v != "" {
		cfg.DocsOutput = v
	}
	if v := os.Getenv("DOCGOV_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("DOCGOV_LOCK_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.LockTimeoutSecs = secs
		}
	}
	return cfg
}

// merge overlays non-zero values from overlay onto base.
func merge(base, overlay *Config) *Config {
	result := *base

	if overlay.Project != "" {
		result.Project = overlay.Project
	}
	if overlay.GovRoot != "" {
		result.GovRoot = overlay.GovRoot
	}
	if overlay.DocsOutput != "" {
		result.DocsOutput = overlay.DocsOutput
	}
	if overlay.DefaultOwner != "" {
		result.DefaultOwner = overlay.DefaultOwner
	}
	if overlay.Output != "" {
		result.Output = overlay.Output
	}
	if overlay.Verbose {
		result.Verbose = true
	}
	if overlay.LockTimeoutSecs > 0 {
		result.LockTimeoutSecs = overlay.LockTimeoutSecs
	}
	if overlay.SourceScan.Enabled {
		result.SourceScan.Enabled = true
	}
	if len(overlay.SourceScan.Roots) > 0 {
		result.SourceScan.Roots = overlay.SourceScan.Roots
	}
	if len(overlay.SourceScan.Include) > 0 {
		result.SourceScan.Include = overlay.SourceScan.Include
	}
	if len(overlay.SourceScan.Exclude) > 0 {
		result.SourceScan.Exclude = overlay.SourceScan.Exclude
	}
	if overlay.SourceScan.Pattern != "" {
		result.SourceScan.Pattern = overlay.SourceScan.Pattern
	}

	return &result
}

// RFCDir is the RFC SSOT directory (gov/rfc).
func (c *Config) RFCDir() string {
	return filepath.Join(c.GovRoot, "rfc")
}

// ADRDir is the decision record SSOT directory (gov/adr).
func (c *Config) ADRDir() string {
	return filepath.Join(c.GovRoot, "adr")
}

// WorkDir is the work item SSOT directory (gov/work).
func (c *Config) WorkDir() string {
	return filepath.Join(c.GovRoot, "work")
}

// ReleasesFile is the aggregate releases file (gov/releases.yaml).
func (c *Config) ReleasesFile() string {
	return filepath.Join(c.GovRoot, "releases.yaml")
}

// RFCOutput is the rendered RFC directory (docs/rfc).
func (c *Config) RFCOutput() string {
	return filepath.Join(c.DocsOutput, "rfc")
}

// ADROutput is the rendered ADR directory (docs/adr).
func (c *Config) ADROutput() string {
	return filepath.Join(c.DocsOutput, "adr")
}

// WorkOutput is the rendered work item directory (docs/work).
func (c *Config) WorkOutput() string {
	return filepath.Join(c.DocsOutput, "work")
}
