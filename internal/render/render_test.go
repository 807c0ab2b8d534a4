package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/signature"
)

func sampleRFC() model.RFCEntry {
	return model.RFCEntry{
		RFC: model.RFC{
			ID: "RFC-0001", Title: "Storage Layout", Version: "1.1.0",
			Status: model.RFCNormative, Phase: model.PhaseImpl, Created: "2026-01-01",
			Sections: []model.Section{{Title: "Core", Clauses: []string{
				"clauses/C-ONE.json", "clauses/C-OLD.json",
			}}},
			Changelog: []model.ChangelogEntry{{
				Version: "1.1.0", Date: "2026-02-01", Summary: "clarified layout",
				Changes: []model.Change{{Category: model.CatChanged, Text: "tightened wording"}},
			}},
		},
		Clauses: []model.ClauseEntry{
			{Clause: model.Clause{ID: "C-ONE", Title: "One", Kind: model.KindNormative,
				Status: model.ClauseActive, Text: "One directory per spec.", Since: "1.0.0"},
				Path: "gov/rfc/RFC-0001/clauses/C-ONE.json"},
			{Clause: model.Clause{ID: "C-OLD", Title: "Old", Kind: model.KindNormative,
				Status: model.ClauseSuperseded, SupersededBy: "C-ONE", Text: "Old rule."},
				Path: "gov/rfc/RFC-0001/clauses/C-OLD.json"},
		},
		Path: "gov/rfc/RFC-0001/rfc.json",
	}
}

func TestRFCProjection(t *testing.T) {
	entry := sampleRFC()
	out, err := RFC(&entry)
	if err != nil {
		t.Fatalf("RFC: %v", err)
	}

	if !strings.HasPrefix(out, "<!-- GENERATED: do not edit. Source: RFC-0001 -->") {
		t.Errorf("missing generated marker:\n%s", out)
	}
	digest, err := signature.RFC(&entry)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := signature.Extract(out); got != digest {
		t.Errorf("embedded digest = %q, want %q", got, digest)
	}

	for _, want := range []string{
		"# RFC-0001: Storage Layout",
		"## Core",
		"### C-ONE: One",
		"_Since 1.0.0._",
		"superseded by C-ONE",
		"## Changelog",
		"- changed: tightened wording",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("projection missing %q:\n%s", want, out)
		}
	}
}

func TestClausesRenderInSectionOrder(t *testing.T) {
	entry := sampleRFC()
	out, err := RFC(&entry)
	if err != nil {
		t.Fatalf("RFC: %v", err)
	}
	if strings.Index(out, "C-ONE: One") > strings.Index(out, "C-OLD: Old") {
		t.Error("clauses should follow section order")
	}
}

func TestADRProjection(t *testing.T) {
	entry := model.ADREntry{
		Meta: model.ADRMeta{Schema: 1, ID: "ADR-0002", Title: "Pick YAML",
			Status: model.ADRAccepted, Date: "2026-01-10", Refs: []string{"RFC-0001"},
			Alternatives: []model.Alternative{{Text: "TOML frontmatter", Status: model.AltRejected}}},
		Body: "We keep metadata machine-readable.",
		Path: "gov/adr/ADR-0002-pick-yaml.md",
	}

	out, err := ADR(&entry)
	if err != nil {
		t.Fatalf("ADR: %v", err)
	}
	for _, want := range []string{
		"# ADR-0002: Pick YAML",
		"Refs: RFC-0001",
		"We keep metadata machine-readable.",
		"- TOML frontmatter (rejected)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("projection missing %q:\n%s", want, out)
		}
	}
}

func TestWorkProjectionCheckboxes(t *testing.T) {
	entry := model.WorkEntry{
		Meta: model.WorkMeta{Schema: 1, ID: "WI-0003", Title: "Ship it",
			Status: model.WorkActive, Created: "2026-01-11", Started: "2026-01-12",
			Acceptance: []model.Criterion{
				{Text: "loader works", Category: model.CatAdded, Status: model.CheckDone},
				{Text: "docs written", Category: model.CatAdded, Status: model.CheckPending},
			},
			Notes: []string{"blocked on review"}},
		Body: "Implementation notes.",
		Path: "gov/work/WI-0003-ship-it.md",
	}

	out, err := Work(&entry)
	if err != nil {
		t.Fatalf("Work: %v", err)
	}
	if !strings.Contains(out, "- [x] loader works (added)") {
		t.Errorf("done criterion not ticked:\n%s", out)
	}
	if !strings.Contains(out, "- [ ] docs written (added)") {
		t.Errorf("pending criterion not open:\n%s", out)
	}
	if !strings.Contains(out, "- blocked on review") {
		t.Errorf("notes missing:\n%s", out)
	}
}

func TestAllWritesDocsTree(t *testing.T) {
	cfg := config.Default()
	cfg.DocsOutput = t.TempDir()
	rfc := sampleRFC()
	index := &model.ProjectIndex{
		RFCs: []model.RFCEntry{rfc},
		ADRs: []model.ADREntry{{
			Meta: model.ADRMeta{Schema: 1, ID: "ADR-0001", Title: "x",
				Status: model.ADRProposed, Date: "2026-01-01"},
			Body: "body",
		}},
	}

	n, err := All(cfg, index)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}
	for _, rel := range []string{"rfc/RFC-0001.md", "adr/ADR-0001.md"} {
		if _, err := os.Stat(filepath.Join(cfg.DocsOutput, rel)); err != nil {
			t.Errorf("missing projection %s: %v", rel, err)
		}
	}
}
