// Package loader reads the on-disk governance tree into the typed
// ProjectIndex. A malformed optional artifact (a single ADR or work
// item) is skipped with a warning so one broken file does not block
// validation of the rest of the tree; a malformed required file (an
// RFC's own metadata, a clause a section names) is a hard error for
// that artifact.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/diagnostic"
	"github.com/docgov/docgov/internal/model"
)

// RFCFileName is the metadata file inside each RFC directory.
const RFCFileName = "rfc.json"

// ClausesDirName is the clause subdirectory inside each RFC directory.
const ClausesDirName = "clauses"

// releasesFile is the YAML shape of gov/releases.yaml.
type releasesFile struct {
	Releases []model.Release `yaml:"releases"`
}

// LoadProject builds a fresh ProjectIndex from the configured gov root.
// Diagnostics collect everything recoverable; the index holds whatever
// loaded cleanly.
func LoadProject(cfg *config.Config) (*model.ProjectIndex, diagnostic.List) {
	index := &model.ProjectIndex{}
	var diags diagnostic.List

	index.RFCs = loadRFCs(cfg.RFCDir(), &diags)
	index.ADRs = loadADRs(cfg.ADRDir(), &diags)
	index.WorkItems = loadWorkItems(cfg.WorkDir(), &diags)
	index.Releases = loadReleases(cfg.ReleasesFile(), &diags)

	return index, diags
}

func loadRFCs(rfcDir string, diags *diagnostic.List) []model.RFCEntry {
	entries, err := os.ReadDir(rfcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, rfcDir, "read rfc directory: %v", err))
		return nil
	}

	var rfcs []model.RFCEntry
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(rfcDir, entry.Name(), RFCFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		rfc, ok := LoadRFC(path, diags)
		if ok {
			rfcs = append(rfcs, rfc)
		}
	}
	return rfcs
}

// LoadRFC reads one rfc.json and every clause its sections name. A
// clause path with a parent-traversal segment is rejected before any
// resolution so clause storage stays confined to the RFC's directory.
func LoadRFC(path string, diags *diagnostic.List) (model.RFCEntry, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, path, "read RFC: %v", err))
		return model.RFCEntry{}, false
	}

	var rfc model.RFC
	if err := json.Unmarshal(content, &rfc); err != nil {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrRFCSchema, path, "parse RFC JSON: %v", err))
		return model.RFCEntry{}, false
	}

	rfcDir := filepath.Dir(path)
	var clauses []model.ClauseEntry

	for _, section := range rfc.Sections {
		for _, clausePath := range section.Clauses {
			if hasTraversal(clausePath) {
				*diags = append(*diags, diagnostic.Newf(diagnostic.ErrClausePathTraversal, path,
					"clause path escapes RFC directory: %s", clausePath))
				continue
			}

			full := filepath.Join(rfcDir, filepath.FromSlash(clausePath))
			clause, ok := loadClause(full, diags)
			if !ok {
				continue
			}
			clauses = append(clauses, clause)
		}
	}

	return model.RFCEntry{RFC: rfc, Clauses: clauses, Path: path}, true
}

func loadClause(path string, diags *diagnostic.List) (model.ClauseEntry, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrClauseNotFound, path, "clause file not found"))
		} else {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, path, "read clause: %v", err))
		}
		return model.ClauseEntry{}, false
	}

	var clause model.Clause
	if err := json.Unmarshal(content, &clause); err != nil {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrClauseSchema, path, "parse clause JSON: %v", err))
		return model.ClauseEntry{}, false
	}
	if clause.Status == "" {
		clause.Status = model.ClauseActive
	}

	return model.ClauseEntry{Clause: clause, Path: path}, true
}

func loadADRs(adrDir string, diags *diagnostic.List) []model.ADREntry {
	var adrs []model.ADREntry
	for _, path := range markdownFiles(adrDir, diags) {
		content, err := os.ReadFile(path)
		if err != nil {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, path, "read ADR: %v", err))
			continue
		}
		meta, body, err := ParseADR(content)
		if err != nil {
			// A single broken record is skipped, not fatal.
			*diags = append(*diags, diagnostic.Newf(diagnostic.WarnADRSkipped, path, "skipping unparseable ADR: %v", err))
			continue
		}
		adrs = append(adrs, model.ADREntry{Meta: meta, Body: body, Path: path})
	}
	return adrs
}

func loadWorkItems(workDir string, diags *diagnostic.List) []model.WorkEntry {
	var items []model.WorkEntry
	for _, path := range markdownFiles(workDir, diags) {
		content, err := os.ReadFile(path)
		if err != nil {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, path, "read work item: %v", err))
			continue
		}
		meta, body, err := ParseWork(content)
		if err != nil {
			*diags = append(*diags, diagnostic.Newf(diagnostic.WarnWorkSkipped, path, "skipping unparseable work item: %v", err))
			continue
		}
		items = append(items, model.WorkEntry{Meta: meta, Body: body, Path: path})
	}
	return items
}

func loadReleases(path string, diags *diagnostic.List) []model.Release {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, path, "read releases: %v", err))
		return nil
	}

	var file releasesFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrReleaseSchema, path, "parse releases YAML: %v", err))
		return nil
	}
	return file.Releases
}

func markdownFiles(dir string, diags *diagnostic.List) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrIO, dir, "read directory: %v", err))
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths
}

// hasTraversal reports whether the slash-separated path contains a
// parent-directory segment.
func hasTraversal(path string) bool {
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// FindClausePath resolves a fully-qualified clause reference
// ("RFC-0001:C-NAME") to its JSON file, or "" when absent.
func FindClausePath(cfg *config.Config, ref string) string {
	rfcID, clauseID := model.SplitClauseRef(ref)
	if clauseID == "" {
		return ""
	}
	path := filepath.Join(cfg.RFCDir(), rfcID, ClausesDirName, clauseID+".json")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// ReadRFC reads and decodes one rfc.json.
func ReadRFC(path string) (model.RFC, error) {
	var rfc model.RFC
	content, err := os.ReadFile(path)
	if err != nil {
		return rfc, fmt.Errorf("read RFC %s: %w", path, err)
	}
	if err := json.Unmarshal(content, &rfc); err != nil {
		return rfc, fmt.Errorf("parse RFC %s: %w", path, err)
	}
	return rfc, nil
}

// WriteRFC encodes and writes one rfc.json.
func WriteRFC(path string, rfc *model.RFC) error {
	return writeJSON(path, rfc)
}

// WriteClause encodes and writes one clause JSON file.
func WriteClause(path string, clause *model.Clause) error {
	return writeJSON(path, clause)
}

// WriteADR writes a decision record back to disk.
func WriteADR(path string, meta model.ADRMeta, body string) error {
	content, err := FormatADR(meta, body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// WriteWork writes a work item back to disk.
func WriteWork(path string, meta model.WorkMeta, body string) error {
	content, err := FormatWork(meta, body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// WriteReleases writes the aggregate releases file.
func WriteReleases(path string, releases []model.Release) error {
	data, err := yaml.Marshal(releasesFile{Releases: releases})
	if err != nil {
		return fmt.Errorf("encode releases: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
