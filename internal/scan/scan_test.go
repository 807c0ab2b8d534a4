package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/diagnostic"
	"github.com/docgov/docgov/internal/validate"
)

func scanRefs() validate.Refs {
	return validate.Refs{
		"RFC-0001":       {Kind: validate.RefRFC},
		"RFC-0001:C-OLD": {Kind: validate.RefClause, Outdated: true},
		"WI-0001":        {Kind: validate.RefWork},
	}
}

func scanConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SourceScan.Enabled = true
	cfg.SourceScan.Roots = []string{t.TempDir()}
	return cfg
}

func seed(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func codes(diags diagnostic.List) []diagnostic.Code {
	out := make([]diagnostic.Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestDisabledScannerIsSilent(t *testing.T) {
	cfg := scanConfig(t)
	cfg.SourceScan.Enabled = false
	seed(t, cfg.SourceScan.Roots[0], "main.go", "// [[RFC-9999]]\n")

	if diags := Sources(cfg, scanRefs()); diags != nil {
		t.Errorf("disabled scanner should return nil, got %v", diags)
	}
}

func TestClassification(t *testing.T) {
	cfg := scanConfig(t)
	root := cfg.SourceScan.Roots[0]
	seed(t, root, "ok.go", "// implements [[RFC-0001]]\n")
	seed(t, root, "stale.go", "// see [[RFC-0001:C-OLD]]\n")
	seed(t, root, "gone.go", "// per [[RFC-9999]]\n")

	diags := Sources(cfg, scanRefs())

	var unknown, outdated int
	for _, d := range diags {
		switch d.Code {
		case diagnostic.ErrScanRefUnknown:
			unknown++
			if !strings.HasPrefix(d.File, "gone.go:") {
				t.Errorf("unknown ref located at %q", d.File)
			}
		case diagnostic.WarnScanRefOutdated:
			outdated++
		default:
			t.Errorf("unexpected diagnostic %v", d)
		}
	}
	if unknown != 1 || outdated != 1 {
		t.Errorf("unknown = %d, outdated = %d, want 1 and 1 (%v)", unknown, outdated, codes(diags))
	}
}

func TestLineNumbersInLocation(t *testing.T) {
	cfg := scanConfig(t)
	seed(t, cfg.SourceScan.Roots[0], "a.go", "package a\n\n// [[RFC-9999]]\n")

	diags := Sources(cfg, scanRefs())
	if len(diags) != 1 || diags[0].File != "a.go:3" {
		t.Errorf("diags = %v, want one finding at a.go:3", diags)
	}
}

func TestIncludeExcludeGlobs(t *testing.T) {
	cfg := scanConfig(t)
	root := cfg.SourceScan.Roots[0]
	seed(t, root, "src/dep.go", "// [[RFC-9999]]\n")
	seed(t, root, "src/skip.txt", "[[RFC-9999]]\n")
	seed(t, root, "docs/rendered.md", "[[RFC-9999]]\n")

	diags := Sources(cfg, scanRefs())
	if len(diags) != 1 {
		t.Fatalf("diags = %v, want only the .go finding", diags)
	}
	if !strings.HasPrefix(diags[0].File, "src/dep.go:") {
		t.Errorf("finding at %q, want src/dep.go", diags[0].File)
	}
}

func TestMultipleRefsPerLine(t *testing.T) {
	cfg := scanConfig(t)
	seed(t, cfg.SourceScan.Roots[0], "b.go", "// [[RFC-9999]] and [[WI-9999]]\n")

	diags := Sources(cfg, scanRefs())
	if len(diags) != 2 {
		t.Errorf("diags = %v, want 2 unknown findings", diags)
	}
}

func TestBadPatternIsConfigError(t *testing.T) {
	cfg := scanConfig(t)
	cfg.SourceScan.Pattern = `((A)(B))` // two extra groups

	diags := Sources(cfg, scanRefs())
	if len(diags) != 1 || diags[0].Code != diagnostic.ErrScanConfig {
		t.Errorf("diags = %v, want one %s", diags, diagnostic.ErrScanConfig)
	}
}

func TestMissingRootIsConfigError(t *testing.T) {
	cfg := scanConfig(t)
	cfg.SourceScan.Roots = []string{filepath.Join(t.TempDir(), "nope")}

	diags := Sources(cfg, scanRefs())
	if !diags.HasErrors() || diags[0].Code != diagnostic.ErrScanConfig {
		t.Errorf("diags = %v, want root config error", diags)
	}
}

func TestBinaryFilesSkipped(t *testing.T) {
	cfg := scanConfig(t)
	seed(t, cfg.SourceScan.Roots[0], "blob.go", "[[RFC-9999]]\x00binary\n")

	if diags := Sources(cfg, scanRefs()); len(diags) != 0 {
		t.Errorf("binary file should be skipped, got %v", diags)
	}
}

func TestLongLineDoesNotStopTheFile(t *testing.T) {
	cfg := scanConfig(t)
	root := cfg.SourceScan.Roots[0]
	long := strings.Repeat("x", 2<<20)
	seed(t, root, "minified.go", "// generated\n"+long+"\n// per [[RFC-9999]]\n")

	diags := Sources(cfg, scanRefs())

	if got := codes(diags); len(got) != 1 || got[0] != diagnostic.ErrScanRefUnknown {
		t.Fatalf("codes = %v, want one %s", got, diagnostic.ErrScanRefUnknown)
	}
	if want := "minified.go:3"; diags[0].File != want {
		t.Errorf("location = %q, want %q", diags[0].File, want)
	}
}
