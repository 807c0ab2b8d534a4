package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output != "table" {
		t.Errorf("Default Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.GovRoot != "gov" {
		t.Errorf("Default GovRoot = %q, want %q", cfg.GovRoot, "gov")
	}
	if cfg.DocsOutput != "docs" {
		t.Errorf("Default DocsOutput = %q, want %q", cfg.DocsOutput, "docs")
	}
	if cfg.LockTimeoutSecs != 10 {
		t.Errorf("Default LockTimeoutSecs = %d, want %d", cfg.LockTimeoutSecs, 10)
	}
	if cfg.SourceScan.Enabled {
		t.Error("Default SourceScan.Enabled = true, want false")
	}
	if cfg.SourceScan.Pattern == "" {
		t.Error("Default SourceScan.Pattern should not be empty")
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		Output:  "json",
		GovRoot: "/custom/gov",
	}

	result := merge(dst, src)

	if result == dst {
		t.Fatal("merge returned the base pointer, want a fresh copy")
	}
	if dst.Output == "json" {
		t.Error("merge mutated the base config")
	}
	if result.Output != "json" {
		t.Errorf("merge Output = %q, want %q", result.Output, "json")
	}
	if result.GovRoot != "/custom/gov" {
		t.Errorf("merge GovRoot = %q, want %q", result.GovRoot, "/custom/gov")
	}
	// Defaults should be preserved when not overridden
	if result.LockTimeoutSecs != 10 {
		t.Errorf("merge preserved LockTimeoutSecs = %d, want %d", result.LockTimeoutSecs, 10)
	}
	if result.DocsOutput != "docs" {
		t.Errorf("merge preserved DocsOutput = %q, want %q", result.DocsOutput, "docs")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `project: widget
gov_root: governance
lock_timeout_secs: 3
source_scan:
  enabled: true
  include:
    - "src/**/*.go"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath failed: %v", err)
	}

	if cfg.Project != "widget" {
		t.Errorf("Project = %q, want %q", cfg.Project, "widget")
	}
	if cfg.GovRoot != "governance" {
		t.Errorf("GovRoot = %q, want %q", cfg.GovRoot, "governance")
	}
	if cfg.LockTimeoutSecs != 3 {
		t.Errorf("LockTimeoutSecs = %d, want %d", cfg.LockTimeoutSecs, 3)
	}
	if !cfg.SourceScan.Enabled {
		t.Error("SourceScan.Enabled = false, want true")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DOCGOV_OUTPUT", "yaml")
	t.Setenv("DOCGOV_LOCK_TIMEOUT", "42")

	cfg := applyEnv(Default())

	if cfg.Output != "yaml" {
		t.Errorf("env Output = %q, want %q", cfg.Output, "yaml")
	}
	if cfg.LockTimeoutSecs != 42 {
		t.Errorf("env LockTimeoutSecs = %d, want %d", cfg.LockTimeoutSecs, 42)
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := Default()

	if got := cfg.RFCDir(); got != filepath.Join("gov", "rfc") {
		t.Errorf("RFCDir = %q", got)
	}
	if got := cfg.ReleasesFile(); got != filepath.Join("gov", "releases.yaml") {
		t.Errorf("ReleasesFile = %q", got)
	}
	if got := cfg.WorkOutput(); got != filepath.Join("docs", "work") {
		t.Errorf("WorkOutput = %q", got)
	}
}
