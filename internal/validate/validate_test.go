package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/diagnostic"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/signature"
)

func hasCode(diags diagnostic.List, code diagnostic.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func cleanRFC() model.RFCEntry {
	return model.RFCEntry{
		RFC: model.RFC{
			ID: "RFC-0001", Title: "Layout", Version: "1.0.0",
			Status: model.RFCNormative, Phase: model.PhaseImpl, Created: "2026-01-01",
			Sections:  []model.Section{{Title: "Core", Clauses: []string{"clauses/C-ONE.json"}}},
			Changelog: []model.ChangelogEntry{{Version: "1.0.0", Date: "2026-01-02", Summary: "ratified"}},
		},
		Clauses: []model.ClauseEntry{{
			Clause: model.Clause{ID: "C-ONE", Title: "One", Kind: model.KindNormative,
				Status: model.ClauseActive, Text: "text", Since: "1.0.0"},
			Path: "gov/rfc/RFC-0001/clauses/C-ONE.json",
		}},
		Path: "gov/rfc/RFC-0001/rfc.json",
	}
}

func cleanIndex() *model.ProjectIndex {
	return &model.ProjectIndex{
		RFCs: []model.RFCEntry{cleanRFC()},
		ADRs: []model.ADREntry{{
			Meta: model.ADRMeta{Schema: 1, ID: "ADR-0001", Title: "Decision",
				Status: model.ADRAccepted, Date: "2026-01-03", Refs: []string{"RFC-0001"}},
			Body: "Context and decision prose.",
			Path: "gov/adr/ADR-0001-decision.md",
		}},
		WorkItems: []model.WorkEntry{{
			Meta: model.WorkMeta{Schema: 1, ID: "WI-0001", Title: "Build",
				Status: model.WorkActive, Created: "2026-01-04", Started: "2026-01-05",
				Refs:       []string{"RFC-0001:C-ONE"},
				Acceptance: []model.Criterion{{Text: "works", Category: model.CatAdded, Status: model.CheckPending}}},
			Path: "gov/work/WI-0001-build.md",
		}},
	}
}

func TestCleanProject(t *testing.T) {
	diags := Project(cleanIndex())
	if len(diags) != 0 {
		t.Errorf("clean project should validate, got %v", diags)
	}
}

func TestKnownRefsOutdatedCascade(t *testing.T) {
	index := cleanIndex()
	index.RFCs[0].RFC.Status = model.RFCDeprecated

	refs := KnownRefs(index)
	if target, ok := refs.Resolve("RFC-0001"); !ok || !target.Outdated {
		t.Error("deprecated RFC should resolve as outdated")
	}
	if target, ok := refs.Resolve("RFC-0001:C-ONE"); !ok || !target.Outdated {
		t.Error("clause of deprecated RFC should be outdated even while active")
	}
}

func TestRFCDirectoryMismatch(t *testing.T) {
	index := cleanIndex()
	index.RFCs[0].Path = "gov/rfc/RFC-0002/rfc.json"

	if !hasCode(Project(index), diagnostic.ErrRFCIDMismatch) {
		t.Error("want directory mismatch error")
	}
}

func TestDraftPhaseConstraint(t *testing.T) {
	index := cleanIndex()
	index.RFCs[0].RFC.Status = model.RFCDraft
	index.RFCs[0].RFC.Phase = model.PhaseImpl

	if !hasCode(Project(index), diagnostic.ErrRFCStatusPhase) {
		t.Error("draft RFC outside phase spec should be an error")
	}
}

func TestBadVersion(t *testing.T) {
	index := cleanIndex()
	index.RFCs[0].RFC.Version = "1.0"

	if !hasCode(Project(index), diagnostic.ErrRFCSchema) {
		t.Error("two-part version should be an error")
	}
}

func TestNormativeWithoutChangelog(t *testing.T) {
	index := cleanIndex()
	index.RFCs[0].RFC.Changelog = nil

	if !hasCode(Project(index), diagnostic.WarnRFCNoChangelog) {
		t.Error("want missing changelog warning")
	}
}

func TestDuplicateClauseID(t *testing.T) {
	index := cleanIndex()
	dup := index.RFCs[0].Clauses[0]
	index.RFCs[0].Clauses = append(index.RFCs[0].Clauses, dup)

	if !hasCode(Project(index), diagnostic.ErrDuplicateClause) {
		t.Error("want duplicate clause error")
	}
}

func TestClauseFileMismatch(t *testing.T) {
	index := cleanIndex()
	index.RFCs[0].Clauses[0].Path = "gov/rfc/RFC-0001/clauses/C-OTHER.json"

	if !hasCode(Project(index), diagnostic.ErrClauseIDMismatch) {
		t.Error("want clause file name mismatch error")
	}
}

func TestSupersededByRules(t *testing.T) {
	successor := model.ClauseEntry{
		Clause: model.Clause{ID: "C-TWO", Title: "Two", Kind: model.KindNormative,
			Status: model.ClauseActive, Text: "text", Since: "1.0.0"},
		Path: "gov/rfc/RFC-0001/clauses/C-TWO.json",
	}

	cases := []struct {
		name   string
		mutate func(*model.RFCEntry)
		want   diagnostic.Code
	}{
		{"superseded without successor", func(e *model.RFCEntry) {
			e.Clauses[0].Clause.Status = model.ClauseSuperseded
		}, diagnostic.ErrSupersededByInconsistent},
		{"successor without superseded", func(e *model.RFCEntry) {
			e.Clauses[0].Clause.SupersededBy = "C-TWO"
		}, diagnostic.ErrSupersededByInconsistent},
		{"missing successor", func(e *model.RFCEntry) {
			e.Clauses[0].Clause.Status = model.ClauseSuperseded
			e.Clauses[0].Clause.SupersededBy = "C-GONE"
		}, diagnostic.ErrSupersededByMissing},
		{"inactive successor", func(e *model.RFCEntry) {
			e.Clauses[0].Clause.Status = model.ClauseSuperseded
			e.Clauses[0].Clause.SupersededBy = "C-TWO"
			e.Clauses[1].Clause.Status = model.ClauseDeprecated
		}, diagnostic.ErrSupersededByNotActive},
		{"foreign successor", func(e *model.RFCEntry) {
			e.Clauses[0].Clause.Status = model.ClauseSuperseded
			e.Clauses[0].Clause.SupersededBy = "RFC-0099:C-X"
		}, diagnostic.ErrSupersededByForeignRFC},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			index := cleanIndex()
			index.RFCs[0].Clauses = append(index.RFCs[0].Clauses, successor)
			tc.mutate(&index.RFCs[0])

			if !hasCode(Project(index), tc.want) {
				t.Errorf("want %s, got %v", tc.want, Project(index))
			}
		})
	}
}

func TestADRMissingRef(t *testing.T) {
	index := cleanIndex()
	index.ADRs[0].Meta.Refs = []string{"RFC-0042"}

	if !hasCode(Project(index), diagnostic.ErrADRRefMissing) {
		t.Error("want missing reference error")
	}
}

func TestStaleRefWarnsOnlyFromLiveReferencer(t *testing.T) {
	index := cleanIndex()
	index.RFCs[0].RFC.Status = model.RFCDeprecated

	diags := Project(index)
	if !hasCode(diags, diagnostic.WarnADRStaleRef) {
		t.Errorf("accepted ADR pointing at deprecated RFC should warn, got %v", diags)
	}
	if !hasCode(diags, diagnostic.WarnWorkStaleRef) {
		t.Errorf("active work item pointing at stale clause should warn, got %v", diags)
	}

	// History pointing at history stays quiet.
	index.ADRs[0].Meta.Status = model.ADRSuperseded
	index.ADRs[0].Meta.SupersededBy = "ADR-0001"
	index.WorkItems[0].Meta.Status = model.WorkCancelled
	diags = Project(index)
	if hasCode(diags, diagnostic.WarnADRStaleRef) || hasCode(diags, diagnostic.WarnWorkStaleRef) {
		t.Errorf("resolved referencers should not warn on stale refs, got %v", diags)
	}
}

func TestADRSupersededNeedsSuccessor(t *testing.T) {
	index := cleanIndex()
	index.ADRs[0].Meta.Status = model.ADRSuperseded

	if !hasCode(Project(index), diagnostic.ErrADRSchema) {
		t.Error("superseded ADR without successor should be an error")
	}
}

func TestADRPlaceholderBody(t *testing.T) {
	index := cleanIndex()
	index.ADRs[0].Body = "TODO: write context"

	if !hasCode(Project(index), diagnostic.WarnADRPlaceholder) {
		t.Error("want placeholder warning")
	}
}

func TestWorkDoneGate(t *testing.T) {
	index := cleanIndex()
	index.WorkItems[0].Meta.Status = model.WorkDone
	index.WorkItems[0].Meta.Completed = "2026-02-01"
	// criterion still pending

	if !hasCode(Project(index), diagnostic.ErrWorkSchema) {
		t.Error("done with pending criterion should be an error")
	}

	index.WorkItems[0].Meta.Acceptance[0].Status = model.CheckDone
	if hasCode(Project(index), diagnostic.ErrWorkSchema) {
		t.Errorf("ticked criteria should pass, got %v", Project(index))
	}
}

func TestReleaseMembership(t *testing.T) {
	index := cleanIndex()
	index.Releases = []model.Release{
		{Version: "1.0.0", Date: "2026-01-20", WorkItems: []string{"WI-0001", "WI-0099"}},
		{Version: "1.1.0", Date: "2026-02-20", WorkItems: []string{"WI-0001"}},
	}

	diags := Project(index)
	if !hasCode(diags, diagnostic.ErrReleaseWorkMissing) {
		t.Error("want unknown work item error")
	}
	if !hasCode(diags, diagnostic.ErrReleaseWorkDuplicate) {
		t.Error("want duplicate membership error")
	}
}

func TestSemver(t *testing.T) {
	for s, want := range map[string]bool{
		"1.0.0": true, "0.12.3": true, "1.0": false, "v1.0.0": false, "1.0.0-rc1": false,
	} {
		if got := Semver(s); got != want {
			t.Errorf("Semver(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestProjections(t *testing.T) {
	cfg := config.Default()
	cfg.DocsOutput = t.TempDir()
	index := cleanIndex()
	entry := &index.RFCs[0]

	digest, err := signature.RFC(entry)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	path := filepath.Join(cfg.RFCOutput(), entry.RFC.ID+".md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	write := func(content string) {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	// No rendered ADR/work files: those stay silent.
	write(signature.Header(entry.RFC.ID, digest) + "\n# Body\n")
	if diags := Projections(cfg, index); len(diags) != 0 {
		t.Errorf("fresh projection should verify, got %v", diags)
	}

	write("# Body without marker\n")
	if !hasCode(Projections(cfg, index), diagnostic.ErrSignatureMissing) {
		t.Error("want missing signature error")
	}

	write(signature.Header(entry.RFC.ID, "0000") + "\n# Body\n")
	if !hasCode(Projections(cfg, index), diagnostic.ErrSignatureMismatch) {
		t.Error("want signature mismatch error")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diags := Projections(cfg, index); len(diags) != 0 {
		t.Errorf("unrendered tree should stay silent, got %v", diags)
	}
}
