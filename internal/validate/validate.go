// Package validate checks the loaded project against the structural and
// cross-reference rules. It never mutates the tree; every finding is a
// diagnostic, and the caller decides the exit policy.
package validate

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/diagnostic"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/signature"
)

// Kind classifies a resolvable reference target.
type Kind string

const (
	RefRFC    Kind = "rfc"
	RefClause Kind = "clause"
	RefADR    Kind = "adr"
	RefWork   Kind = "work"
)

// Target is one entry of the known-ID table.
type Target struct {
	Kind Kind

	// Outdated marks targets that still resolve but should no longer be
	// referenced from live artifacts: deprecated RFCs, non-active
	// clauses, clauses of a deprecated RFC, superseded or rejected
	// ADRs, cancelled work items.
	Outdated bool
}

// Refs is the known-ID table built from one project snapshot. The
// source scanner shares it with the validator.
type Refs map[string]Target

// KnownRefs indexes every referenceable ID in the project.
func KnownRefs(index *model.ProjectIndex) Refs {
	refs := make(Refs)
	for i := range index.RFCs {
		entry := &index.RFCs[i]
		rfcOutdated := entry.RFC.Status == model.RFCDeprecated
		refs[entry.RFC.ID] = Target{Kind: RefRFC, Outdated: rfcOutdated}
		for j := range entry.Clauses {
			clause := &entry.Clauses[j].Clause
			refs[model.ClauseRef(entry.RFC.ID, clause.ID)] = Target{
				Kind:     RefClause,
				Outdated: rfcOutdated || clause.Status != model.ClauseActive,
			}
		}
	}
	for i := range index.ADRs {
		meta := &index.ADRs[i].Meta
		refs[meta.ID] = Target{
			Kind:     RefADR,
			Outdated: meta.Status == model.ADRSuperseded || meta.Status == model.ADRRejected,
		}
	}
	for i := range index.WorkItems {
		meta := &index.WorkItems[i].Meta
		refs[meta.ID] = Target{
			Kind:     RefWork,
			Outdated: meta.Status == model.WorkCancelled,
		}
	}
	return refs
}

// Resolve looks up a reference, qualified clause refs included.
func (r Refs) Resolve(ref string) (Target, bool) {
	t, ok := r[ref]
	return t, ok
}

var semverPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)

// Semver reports whether s is a plain MAJOR.MINOR.PATCH version.
func Semver(s string) bool {
	return semverPattern.MatchString(s)
}

// Project runs every structural and cross-reference check over a loaded
// snapshot and returns the sorted findings.
func Project(index *model.ProjectIndex) diagnostic.List {
	var diags diagnostic.List
	refs := KnownRefs(index)

	for i := range index.RFCs {
		checkRFC(&index.RFCs[i], &diags)
	}
	for i := range index.ADRs {
		checkADR(&index.ADRs[i], refs, &diags)
	}
	for i := range index.WorkItems {
		checkWork(&index.WorkItems[i], refs, &diags)
	}
	checkReleases(index, &diags)

	diags.Sort()
	return diags
}

func checkRFC(entry *model.RFCEntry, diags *diagnostic.List) {
	rfc := &entry.RFC

	if dir := filepath.Base(filepath.Dir(entry.Path)); dir != rfc.ID {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrRFCIDMismatch, entry.Path,
			"RFC ID %s does not match directory %s", rfc.ID, dir))
	}
	if !Semver(rfc.Version) {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrRFCSchema, entry.Path,
			"version %q is not MAJOR.MINOR.PATCH", rfc.Version))
	}
	if rfc.Status == model.RFCDraft && rfc.Phase != model.PhaseSpec {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrRFCStatusPhase, entry.Path,
			"draft RFC must stay in phase spec, found %s", rfc.Phase))
	}
	if rfc.Status == model.RFCNormative && len(rfc.Changelog) == 0 {
		*diags = append(*diags, diagnostic.New(diagnostic.WarnRFCNoChangelog, entry.Path,
			"normative RFC has no changelog"))
	}

	seen := make(map[string]bool, len(entry.Clauses))
	for i := range entry.Clauses {
		ce := &entry.Clauses[i]
		if seen[ce.Clause.ID] {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrDuplicateClause, entry.Path,
				"clause %s appears more than once", ce.Clause.ID))
		}
		seen[ce.Clause.ID] = true
		checkClause(entry, ce, diags)
	}
}

func checkClause(owner *model.RFCEntry, entry *model.ClauseEntry, diags *diagnostic.List) {
	clause := &entry.Clause

	base := strings.TrimSuffix(filepath.Base(entry.Path), ".json")
	if base != clause.ID {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrClauseIDMismatch, entry.Path,
			"clause ID %s does not match file name %s", clause.ID, base))
	}

	superseded := clause.Status == model.ClauseSuperseded
	switch {
	case superseded && clause.SupersededBy == "":
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrSupersededByInconsistent, entry.Path,
			"clause %s is superseded but names no successor", clause.ID))
	case !superseded && clause.SupersededBy != "":
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrSupersededByInconsistent, entry.Path,
			"clause %s names successor %s but is not superseded", clause.ID, clause.SupersededBy))
	case superseded:
		checkSuccessor(owner, entry, diags)
	}

	if clause.Since == "" && owner.RFC.Status == model.RFCNormative {
		*diags = append(*diags, diagnostic.Newf(diagnostic.WarnClauseNoSince, entry.Path,
			"clause %s of normative RFC has no since version", clause.ID))
	}
}

func checkSuccessor(owner *model.RFCEntry, entry *model.ClauseEntry, diags *diagnostic.List) {
	ref := entry.Clause.SupersededBy
	rfcID, clauseID := model.SplitClauseRef(model.QualifyClauseRef(owner.RFC.ID, ref))

	if rfcID != owner.RFC.ID {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrSupersededByForeignRFC, entry.Path,
			"successor %s lives outside %s; successors must stay within the same RFC", ref, owner.RFC.ID))
		return
	}

	for i := range owner.Clauses {
		target := &owner.Clauses[i].Clause
		if target.ID != clauseID {
			continue
		}
		if target.Status != model.ClauseActive {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrSupersededByNotActive, entry.Path,
				"successor %s of clause %s is %s, not active", clauseID, entry.Clause.ID, target.Status))
		}
		return
	}
	*diags = append(*diags, diagnostic.Newf(diagnostic.ErrSupersededByMissing, entry.Path,
		"successor %s of clause %s does not exist", clauseID, entry.Clause.ID))
}

// adrLive reports whether the record is still an active position, as
// opposed to resolved history.
func adrLive(status model.ADRStatus) bool {
	return status == model.ADRProposed || status == model.ADRAccepted
}

func checkADR(entry *model.ADREntry, refs Refs, diags *diagnostic.List) {
	meta := &entry.Meta

	superseded := meta.Status == model.ADRSuperseded
	switch {
	case superseded && meta.SupersededBy == "":
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrADRSchema, entry.Path,
			"%s is superseded but names no successor", meta.ID))
	case !superseded && meta.SupersededBy != "":
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrADRSchema, entry.Path,
			"%s names successor %s but is not superseded", meta.ID, meta.SupersededBy))
	case superseded:
		if t, ok := refs.Resolve(meta.SupersededBy); !ok || t.Kind != RefADR {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrADRRefMissing, entry.Path,
				"successor %s of %s does not exist", meta.SupersededBy, meta.ID))
		}
	}

	if len(meta.Refs) == 0 {
		*diags = append(*diags, diagnostic.Newf(diagnostic.WarnADRNoRefs, entry.Path,
			"%s references no governing artifact", meta.ID))
	}
	checkRefs(meta.ID, meta.Refs, entry.Path, refs, adrLive(meta.Status),
		diagnostic.ErrADRRefMissing, diagnostic.WarnADRStaleRef, diags)

	if placeholderBody(entry.Body) {
		*diags = append(*diags, diagnostic.Newf(diagnostic.WarnADRPlaceholder, entry.Path,
			"%s still carries placeholder context", meta.ID))
	}
}

func placeholderBody(body string) bool {
	trimmed := strings.TrimSpace(body)
	return trimmed == "" || strings.Contains(trimmed, "TODO")
}

// workLive mirrors adrLive for work items.
func workLive(status model.WorkStatus) bool {
	return status == model.WorkQueue || status == model.WorkActive
}

func checkWork(entry *model.WorkEntry, refs Refs, diags *diagnostic.List) {
	meta := &entry.Meta

	if meta.Status == model.WorkDone {
		if meta.Completed == "" {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrWorkSchema, entry.Path,
				"%s is done but has no completed date", meta.ID))
		}
		if len(meta.Acceptance) == 0 {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrWorkSchema, entry.Path,
				"%s is done without acceptance criteria", meta.ID))
		}
		for _, crit := range meta.Acceptance {
			if crit.Status == model.CheckPending {
				*diags = append(*diags, diagnostic.Newf(diagnostic.ErrWorkSchema, entry.Path,
					"%s is done but criterion %q is still pending", meta.ID, crit.Text))
			}
		}
	}
	for _, crit := range meta.Acceptance {
		if !model.ValidCategory(crit.Category) {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrWorkSchema, entry.Path,
				"%s criterion %q has unknown category %q", meta.ID, crit.Text, crit.Category))
		}
	}

	checkRefs(meta.ID, meta.Refs, entry.Path, refs, workLive(meta.Status),
		diagnostic.ErrWorkRefMissing, diagnostic.WarnWorkStaleRef, diags)
}

// checkRefs resolves each reference of one artifact. Stale targets only
// warn when the referencer itself is still live; history pointing at
// history is expected.
func checkRefs(ownerID string, refList []string, path string, refs Refs, live bool,
	missing, stale diagnostic.Code, diags *diagnostic.List) {
	for _, ref := range refList {
		target, ok := refs.Resolve(ref)
		if !ok {
			*diags = append(*diags, diagnostic.Newf(missing, path,
				"%s references unknown artifact %s", ownerID, ref))
			continue
		}
		if target.Outdated && live {
			*diags = append(*diags, diagnostic.Newf(stale, path,
				"%s references outdated artifact %s", ownerID, ref))
		}
	}
}

func checkReleases(index *model.ProjectIndex, diags *diagnostic.List) {
	seen := make(map[string]string)
	for _, release := range index.Releases {
		if !Semver(release.Version) {
			*diags = append(*diags, diagnostic.Newf(diagnostic.ErrReleaseSchema, "",
				"release version %q is not MAJOR.MINOR.PATCH", release.Version))
		}
		for _, wi := range release.WorkItems {
			if index.FindWork(wi) == nil {
				*diags = append(*diags, diagnostic.Newf(diagnostic.ErrReleaseWorkMissing, "",
					"release %s lists unknown work item %s", release.Version, wi))
			}
			if prior, dup := seen[wi]; dup {
				*diags = append(*diags, diagnostic.Newf(diagnostic.ErrReleaseWorkDuplicate, "",
					"work item %s appears in releases %s and %s", wi, prior, release.Version))
				continue
			}
			seen[wi] = release.Version
		}
	}
}

// Projections verifies the signature markers of every rendered document
// against a fresh digest of its source. Missing files are silent; the
// tree may simply not have been rendered yet.
func Projections(cfg *config.Config, index *model.ProjectIndex) diagnostic.List {
	var diags diagnostic.List

	for i := range index.RFCs {
		entry := &index.RFCs[i]
		digest, err := signature.RFC(entry)
		if err != nil {
			continue
		}
		checkProjection(filepath.Join(cfg.RFCOutput(), entry.RFC.ID+".md"), entry.RFC.ID, digest, &diags)
	}
	for i := range index.ADRs {
		entry := &index.ADRs[i]
		digest, err := signature.ADR(entry)
		if err != nil {
			continue
		}
		checkProjection(filepath.Join(cfg.ADROutput(), entry.Meta.ID+".md"), entry.Meta.ID, digest, &diags)
	}
	for i := range index.WorkItems {
		entry := &index.WorkItems[i]
		digest, err := signature.Work(entry)
		if err != nil {
			continue
		}
		checkProjection(filepath.Join(cfg.WorkOutput(), entry.Meta.ID+".md"), entry.Meta.ID, digest, &diags)
	}

	diags.Sort()
	return diags
}

func checkProjection(path, sourceID, digest string, diags *diagnostic.List) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*diags = append(*diags, diagnostic.Newf(diagnostic.WarnRenderedUnreadable, path,
			"cannot read rendered document: %v", err))
		return
	}

	found := signature.Extract(string(content))
	if found == "" {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrSignatureMissing, path,
			"rendered document for %s carries no signature marker", sourceID))
		return
	}
	if found != digest {
		*diags = append(*diags, diagnostic.Newf(diagnostic.ErrSignatureMismatch, path,
			"rendered document for %s does not match its source; re-run render", sourceID))
	}
}
