// Package scaffold creates new artifacts: the initial gov tree, RFCs
// with their first clause, decision records and work items. IDs are
// allocated sequentially per kind; markdown file names carry a slug of
// the title so directory listings stay readable.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/loader"
	"github.com/docgov/docgov/internal/model"
)

const (
	// slugMaxLength caps file-name slugs.
	slugMaxLength = 50

	// slugMinWordBoundary is the shortest prefix worth trimming back to
	// a hyphen when truncating.
	slugMinWordBoundary = 30
)

var clock = time.Now

func today() string {
	return clock().Format("2006-01-02")
}

// Slug turns a title into a lowercase hyphenated file-name fragment.
func Slug(title string) string {
	if title == "" {
		return "untitled"
	}
	s := slugify(strings.ToLower(title))
	s = truncateSlug(s)
	if s == "" {
		return "untitled"
	}
	return s
}

// slugify replaces non-alphanumeric runs with single hyphens and trims
// leading/trailing hyphens.
func slugify(input string) string {
	var result strings.Builder
	lastHyphen := false
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			result.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(result.String(), "-")
}

// truncateSlug limits the slug, preferring word boundaries.
func truncateSlug(s string) string {
	if len(s) <= slugMaxLength {
		return s
	}
	s = s[:slugMaxLength]
	if idx := strings.LastIndex(s, "-"); idx > slugMinWordBoundary {
		s = s[:idx]
	}
	return s
}

// NextID allocates the next sequential ID for a prefix, scanning the
// existing IDs for the highest numeric suffix.
func NextID(prefix string, existing []string) string {
	max := 0
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, max+1)
}

// ClauseID derives a clause ID from a title: C- plus the uppercased slug.
func ClauseID(title string) string {
	return "C-" + strings.ToUpper(Slug(title))
}

const defaultConfigYAML = `# docgov project configuration.
gov_root: gov
docs_output: docs
lock_timeout_secs: 10

source_scan:
  enabled: false
  roots:
    - .
  include:
    - "**/*.go"
    - "**/*.md"
  exclude:
    - "docs/**"
    - "gov/**"
`

// Init creates the gov tree, the project configuration and a seed RFC
// so a fresh checkout has something to validate. Refuses to run twice.
func Init(cfg *config.Config, projectName string) ([]string, error) {
	if _, err := os.Stat(cfg.GovRoot); err == nil {
		return nil, fmt.Errorf("%s already exists", cfg.GovRoot)
	}

	var created []string
	for _, dir := range []string{cfg.RFCDir(), cfg.ADRDir(), cfg.WorkDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("create %s: %w", dir, err)
		}
		created = append(created, dir)
	}

	configPath := filepath.Join(cfg.GovRoot, "config.yaml")
	content := defaultConfigYAML
	if projectName != "" {
		content = "project: " + projectName + "\n" + content
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return created, fmt.Errorf("write config: %w", err)
	}
	created = append(created, configPath)

	seedID, err := NewRFC(cfg, &model.ProjectIndex{}, "Governance process")
	if err != nil {
		return created, err
	}
	created = append(created, filepath.Join(cfg.RFCDir(), seedID, loader.RFCFileName))
	return created, nil
}

// NewRFC creates a draft RFC with one seed clause and returns its ID.
func NewRFC(cfg *config.Config, index *model.ProjectIndex, title string) (string, error) {
	ids := make([]string, 0, len(index.RFCs))
	for i := range index.RFCs {
		ids = append(ids, index.RFCs[i].RFC.ID)
	}
	id := NextID("RFC", ids)

	dir := filepath.Join(cfg.RFCDir(), id)
	clausesDir := filepath.Join(dir, loader.ClausesDirName)
	if err := os.MkdirAll(clausesDir, 0o755); err != nil {
		return "", fmt.Errorf("create RFC directory: %w", err)
	}

	clause := model.Clause{
		ID:     "C-SCOPE",
		Title:  "Scope",
		Kind:   model.KindNormative,
		Status: model.ClauseActive,
		Text:   "TODO: state what this specification governs.",
	}
	if err := loader.WriteClause(filepath.Join(clausesDir, clause.ID+".json"), &clause); err != nil {
		return "", err
	}

	rfc := model.RFC{
		ID:      id,
		Title:   title,
		Version: "0.1.0",
		Status:  model.RFCDraft,
		Phase:   model.PhaseSpec,
		Created: today(),
		Sections: []model.Section{{
			Title:   "General",
			Clauses: []string{loader.ClausesDirName + "/" + clause.ID + ".json"},
		}},
	}
	if cfg.DefaultOwner != "" {
		rfc.Owners = []string{cfg.DefaultOwner}
	}
	if err := loader.WriteRFC(filepath.Join(dir, loader.RFCFileName), &rfc); err != nil {
		return "", err
	}
	return id, nil
}

// NewClause adds a clause to an existing draft or normative RFC,
// appended to the named section (created when absent).
func NewClause(cfg *config.Config, index *model.ProjectIndex, rfcID, title, sectionTitle string) (string, error) {
	entry := index.FindRFC(rfcID)
	if entry == nil {
		return "", fmt.Errorf("RFC %s does not exist", rfcID)
	}

	id := ClauseID(title)
	for i := range entry.Clauses {
		if entry.Clauses[i].Clause.ID == id {
			return "", fmt.Errorf("%s already has clause %s", rfcID, id)
		}
	}

	clause := model.Clause{
		ID:     id,
		Title:  title,
		Kind:   model.KindNormative,
		Status: model.ClauseActive,
		Text:   "TODO: write the rule.",
	}
	path := filepath.Join(cfg.RFCDir(), rfcID, loader.ClausesDirName, id+".json")
	if err := loader.WriteClause(path, &clause); err != nil {
		return "", err
	}

	if sectionTitle == "" {
		sectionTitle = "General"
	}
	rel := loader.ClausesDirName + "/" + id + ".json"
	added := false
	for si := range entry.RFC.Sections {
		if entry.RFC.Sections[si].Title == sectionTitle {
			entry.RFC.Sections[si].Clauses = append(entry.RFC.Sections[si].Clauses, rel)
			added = true
			break
		}
	}
	if !added {
		entry.RFC.Sections = append(entry.RFC.Sections, model.Section{
			Title:   sectionTitle,
			Clauses: []string{rel},
		})
	}
	return id, loader.WriteRFC(entry.Path, &entry.RFC)
}

// NewADR creates a proposed decision record and returns its ID.
func NewADR(cfg *config.Config, index *model.ProjectIndex, title string, refs []string) (string, error) {
	ids := make([]string, 0, len(index.ADRs))
	for i := range index.ADRs {
		ids = append(ids, index.ADRs[i].Meta.ID)
	}
	id := NextID("ADR", ids)

	meta := model.ADRMeta{
		Schema: 1,
		ID:     id,
		Title:  title,
		Status: model.ADRProposed,
		Date:   today(),
		Refs:   refs,
	}
	body := "TODO: context, decision, consequences."
	path := filepath.Join(cfg.ADRDir(), id+"-"+Slug(title)+".md")
	if err := os.MkdirAll(cfg.ADRDir(), 0o755); err != nil {
		return "", fmt.Errorf("create ADR directory: %w", err)
	}
	return id, loader.WriteADR(path, meta, body)
}

// NewWork creates a queued work item and returns its ID.
func NewWork(cfg *config.Config, index *model.ProjectIndex, title string, refs []string) (string, error) {
	ids := make([]string, 0, len(index.WorkItems))
	for i := range index.WorkItems {
		ids = append(ids, index.WorkItems[i].Meta.ID)
	}
	id := NextID("WI", ids)

	meta := model.WorkMeta{
		Schema:  1,
		ID:      id,
		Title:   title,
		Status:  model.WorkQueue,
		Created: today(),
		Refs:    refs,
	}
	path := filepath.Join(cfg.WorkDir(), id+"-"+Slug(title)+".md")
	if err := os.MkdirAll(cfg.WorkDir(), 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	return id, loader.WriteWork(path, meta, "")
}
