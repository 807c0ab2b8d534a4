// Package scan walks configured source roots looking for governance
// references (for example [[RFC-0001:C-LAYOUT]] in a comment) and
// reports references to unknown or outdated artifacts. It never writes.
package scan

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/diagnostic"
	"github.com/docgov/docgov/internal/validate"
)

// Sources scans every configured root against the known-ID table.
// Returns nil immediately when the scanner is disabled.
func Sources(cfg *config.Config, refs validate.Refs) diagnostic.List {
	if !cfg.SourceScan.Enabled {
		return nil
	}

	var diags diagnostic.List

	pattern, err := regexp.Compile(cfg.SourceScan.Pattern)
	if err != nil {
		diags = append(diags, diagnostic.Newf(diagnostic.ErrScanConfig, "",
			"invalid scan pattern: %v", err))
		return diags
	}
	if pattern.NumSubexp() != 1 {
		diags = append(diags, diagnostic.Newf(diagnostic.ErrScanConfig, "",
			"scan pattern must have exactly one capture group, found %d", pattern.NumSubexp()))
		return diags
	}
	for _, glob := range append(append([]string{}, cfg.SourceScan.Include...), cfg.SourceScan.Exclude...) {
		if !doublestar.ValidatePattern(glob) {
			diags = append(diags, diagnostic.Newf(diagnostic.ErrScanConfig, "",
				"invalid glob %q", glob))
		}
	}
	if diags.HasErrors() {
		return diags
	}

	for _, root := range cfg.SourceScan.Roots {
		scanRoot(root, cfg, pattern, refs, &diags)
	}

	diags.Sort()
	return diags
}

func scanRoot(root string, cfg *config.Config, pattern *regexp.Regexp, refs validate.Refs, diags *diagnostic.List) {
	if _, err := os.Stat(root); err != nil {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrScanConfig, root,
			"scan root unavailable: %v", err))
		return
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !selected(rel, cfg) {
			return nil
		}

		scanFile(path, rel, pattern, refs, diags)
		return nil
	})
	if walkErr != nil {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, root,
			"walk scan root: %v", walkErr))
	}
}

func selected(rel string, cfg *config.Config) bool {
	included := false
	for _, glob := range cfg.SourceScan.Include {
		if ok, _ := doublestar.Match(glob, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, glob := range cfg.SourceScan.Exclude {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return false
		}
	}
	return true
}

func scanFile(path, rel string, pattern *regexp.Regexp, refs validate.Refs, diags *diagnostic.List) {
	content, err := os.ReadFile(path)
	if err != nil {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, rel, "read source file: %v", err))
		return
	}
	if bytes.IndexByte(content, 0) >= 0 {
		// binary
		return
	}

	// The file is already in memory; splitting it keeps line numbers
	// without a per-line length cap.
	for i, line := range bytes.Split(content, []byte("\n")) {
		for _, match := range pattern.FindAllSubmatch(line, -1) {
			classify(string(match[1]), fmt.Sprintf("%s:%d", rel, i+1), refs, diags)
		}
	}
}

func classify(ref, location string, refs validate.Refs, diags *diagnostic.List) {
	target, ok := refs.Resolve(ref)
	switch {
	case !ok:
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrScanRefUnknown, location,
			"source references unknown artifact %s", ref))
	case target.Outdated:
		*diags = append(*diags, diagnostic.Newf(diagnostic.WarnScanRefOutdated, location,
			"source references outdated artifact %s", ref))
	}
}
