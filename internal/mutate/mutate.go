// Package mutate implements every write operation over the SSOT:
// lifecycle transitions with their date stamps, validated field edits,
// version bumps with categorized changelog entries, release cuts and
// the two guarded deletes. Callers hold the tree lock; nothing here
// acquires it.
package mutate

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docgov/docgov/internal/config"
	"github.com/docgov/docgov/internal/lifecycle"
	"github.com/docgov/docgov/internal/loader"
	"github.com/docgov/docgov/internal/model"
	"github.com/docgov/docgov/internal/signature"
	"github.com/docgov/docgov/internal/validate"
)

// ErrNotFound indicates the named artifact does not exist in the tree.
var ErrNotFound = errors.New("artifact not found")

// clock is stubbed in tests.
var clock = time.Now

func today() string {
	return clock().Format("2006-01-02")
}

// Part selects which version component a bump increments.
type Part string

const (
	Major Part = "major"
	Minor Part = "minor"
	Patch Part = "patch"
)

func findRFC(index *model.ProjectIndex, id string) (*model.RFCEntry, error) {
	if entry := index.FindRFC(id); entry != nil {
		return entry, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func findClause(index *model.ProjectIndex, ref string) (*model.RFCEntry, *model.ClauseEntry, error) {
	rfcID, clauseID := model.SplitClauseRef(ref)
	if clauseID == "" {
		return nil, nil, fmt.Errorf("clause reference %q must be RFC-NNNN:C-NAME", ref)
	}
	rfc, err := findRFC(index, rfcID)
	if err != nil {
		return nil, nil, err
	}
	for i := range rfc.Clauses {
		if rfc.Clauses[i].Clause.ID == clauseID {
			return rfc, &rfc.Clauses[i], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

func findADR(index *model.ProjectIndex, id string) (*model.ADREntry, error) {
	if entry := index.FindADR(id); entry != nil {
		return entry, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func findWork(index *model.ProjectIndex, id string) (*model.WorkEntry, error) {
	if entry := index.FindWork(id); entry != nil {
		return entry, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// FinalizeRFC ratifies a draft. The first changelog entry is stamped
// and the content digest stored so later edits show as amendments.
func FinalizeRFC(index *model.ProjectIndex, id string) error {
	entry, err := findRFC(index, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckRFCStatus(entry.RFC.Status, model.RFCNormative); err != nil {
		return err
	}

	entry.RFC.Status = model.RFCNormative
	entry.RFC.Updated = today()
	if len(entry.RFC.Changelog) == 0 {
		entry.RFC.Changelog = []model.ChangelogEntry{{
			Version: entry.RFC.Version,
			Date:    today(),
			Summary: "ratified",
		}}
	}
	for i := range entry.Clauses {
		if entry.Clauses[i].Clause.Since == "" {
			entry.Clauses[i].Clause.Since = entry.RFC.Version
			if err := loader.WriteClause(entry.Clauses[i].Path, &entry.Clauses[i].Clause); err != nil {
				return err
			}
		}
	}
	return resign(entry)
}

// DeprecateRFC retires a normative RFC.
func DeprecateRFC(index *model.ProjectIndex, id string) error {
	entry, err := findRFC(index, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckRFCStatus(entry.RFC.Status, model.RFCDeprecated); err != nil {
		return err
	}
	entry.RFC.Status = model.RFCDeprecated
	entry.RFC.Updated = today()
	return resign(entry)
}

// AdvancePhase moves a normative RFC one phase forward.
func AdvancePhase(index *model.ProjectIndex, id string) (model.RFCPhase, error) {
	entry, err := findRFC(index, id)
	if err != nil {
		return "", err
	}
	if entry.RFC.Status != model.RFCNormative {
		return "", fmt.Errorf("%s is %s; only normative RFCs advance phases", id, entry.RFC.Status)
	}

	next, ok := nextPhase(entry.RFC.Phase)
	if !ok {
		return "", fmt.Errorf("%s is already in the final phase %s", id, entry.RFC.Phase)
	}
	if err := lifecycle.CheckRFCPhase(entry.RFC.Phase, next); err != nil {
		return "", err
	}
	entry.RFC.Phase = next
	entry.RFC.Updated = today()
	return next, resign(entry)
}

func nextPhase(p model.RFCPhase) (model.RFCPhase, bool) {
	order := []model.RFCPhase{model.PhaseSpec, model.PhaseImpl, model.PhaseTest, model.PhaseStable}
	for i, phase := range order[:len(order)-1] {
		if phase == p {
			return order[i+1], true
		}
	}
	return "", false
}

// DeprecateClause marks one clause deprecated.
func DeprecateClause(index *model.ProjectIndex, ref string) error {
	_, clause, err := findClause(index, ref)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckClause(clause.Clause.Status, model.ClauseDeprecated); err != nil {
		return err
	}
	clause.Clause.Status = model.ClauseDeprecated
	return loader.WriteClause(clause.Path, &clause.Clause)
}

// SupersedeClause marks a clause superseded by an active clause of the
// same RFC.
func SupersedeClause(index *model.ProjectIndex, ref, successor string) error {
	rfc, clause, err := findClause(index, ref)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckClause(clause.Clause.Status, model.ClauseSuperseded); err != nil {
		return err
	}
	successorID, err := resolveSuccessor(rfc, clause.Clause.ID, successor)
	if err != nil {
		return err
	}
	clause.Clause.Status = model.ClauseSuperseded
	clause.Clause.SupersededBy = successorID
	return loader.WriteClause(clause.Path, &clause.Clause)
}

func resolveSuccessor(rfc *model.RFCEntry, selfID, successor string) (string, error) {
	rfcID, clauseID := model.SplitClauseRef(model.QualifyClauseRef(rfc.RFC.ID, successor))
	if rfcID != rfc.RFC.ID {
		return "", fmt.Errorf("successor %s lives outside %s", successor, rfc.RFC.ID)
	}
	if clauseID == selfID {
		return "", fmt.Errorf("clause %s cannot supersede itself", selfID)
	}
	for i := range rfc.Clauses {
		target := &rfc.Clauses[i].Clause
		if target.ID != clauseID {
			continue
		}
		if target.Status != model.ClauseActive {
			return "", fmt.Errorf("successor %s is %s, not active", clauseID, target.Status)
		}
		return clauseID, nil
	}
	return "", fmt.Errorf("%w: %s:%s", ErrNotFound, rfc.RFC.ID, clauseID)
}

// TransitionADR moves a decision record to the target status.
// Superseding requires the successor's ID.
func TransitionADR(index *model.ProjectIndex, id string, to model.ADRStatus, successor string) error {
	entry, err := findADR(index, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckADR(entry.Meta.Status, to); err != nil {
		return err
	}
	if to == model.ADRSuperseded {
		if successor == "" {
			return fmt.Errorf("superseding %s requires --by with the successor ADR", id)
		}
		target, err := findADR(index, successor)
		if err != nil {
			return err
		}
		if target.Meta.ID == id {
			return fmt.Errorf("%s cannot supersede itself", id)
		}
		entry.Meta.SupersededBy = successor
	}
	entry.Meta.Status = to
	return loader.WriteADR(entry.Path, entry.Meta, entry.Body)
}

// MoveWork transitions a work item. Entering active stamps the started
// date once; entering done requires acceptance criteria with none
// pending. Both terminal states stamp the completed date.
func MoveWork(index *model.ProjectIndex, id string, to model.WorkStatus) error {
	entry, err := findWork(index, id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckWork(entry.Meta.Status, to); err != nil {
		return err
	}

	if to == model.WorkDone {
		if len(entry.Meta.Acceptance) == 0 {
			return fmt.Errorf("%s has no acceptance criteria; add them before done", id)
		}
		for _, crit := range entry.Meta.Acceptance {
			if crit.Status == model.CheckPending {
				return fmt.Errorf("%s criterion %q is still pending", id, crit.Text)
			}
		}
	}
	if to == model.WorkDone || to == model.WorkCancelled {
		entry.Meta.Completed = today()
	}
	if to == model.WorkActive && entry.Meta.Started == "" {
		entry.Meta.Started = today()
	}

	entry.Meta.Status = to
	return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
}

// Set assigns one validated scalar field of an artifact. The id may be
// an RFC, qualified clause ref, ADR or work item.
func Set(index *model.ProjectIndex, id, field, value string) error {
	switch {
	case strings.Contains(id, ":"):
		return setClauseField(index, id, field, value)
	case strings.HasPrefix(id, "RFC-"):
		return setRFCField(index, id, field, value)
	case strings.HasPrefix(id, "ADR-"):
		return setADRField(index, id, field, value)
	case strings.HasPrefix(id, "WI-"):
		return setWorkField(index, id, field, value)
	}
	return fmt.Errorf("unrecognized artifact ID %q", id)
}

func setRFCField(index *model.ProjectIndex, id, field, value string) error {
	entry, err := findRFC(index, id)
	if err != nil {
		return err
	}
	switch field {
	case "title":
		entry.RFC.Title = value
	case "version":
		if !validate.Semver(value) {
			return fmt.Errorf("version %q is not MAJOR.MINOR.PATCH", value)
		}
		entry.RFC.Version = value
	default:
		return fmt.Errorf("RFC field %q is not settable (title, version)", field)
	}
	entry.RFC.Updated = today()
	return loader.WriteRFC(entry.Path, &entry.RFC)
}

func setClauseField(index *model.ProjectIndex, ref, field, value string) error {
	rfc, clause, err := findClause(index, ref)
	if err != nil {
		return err
	}
	switch field {
	case "title":
		clause.Clause.Title = value
	case "text":
		clause.Clause.Text = value
	case "kind":
		kind := model.ClauseKind(value)
		if kind != model.KindNormative && kind != model.KindInformative {
			return fmt.Errorf("kind %q must be normative or informative", value)
		}
		clause.Clause.Kind = kind
	case "since":
		if !validate.Semver(value) {
			return fmt.Errorf("since %q is not MAJOR.MINOR.PATCH", value)
		}
		clause.Clause.Since = value
	case "superseded_by":
		if clause.Clause.Status != model.ClauseSuperseded {
			return fmt.Errorf("%s is not superseded; use the supersede command", ref)
		}
		successorID, err := resolveSuccessor(rfc, clause.Clause.ID, value)
		if err != nil {
			return err
		}
		clause.Clause.SupersededBy = successorID
	default:
		return fmt.Errorf("clause field %q is not settable (title, text, kind, since, superseded_by)", field)
	}
	return loader.WriteClause(clause.Path, &clause.Clause)
}

func setADRField(index *model.ProjectIndex, id, field, value string) error {
	entry, err := findADR(index, id)
	if err != nil {
		return err
	}
	switch field {
	case "title":
		entry.Meta.Title = value
	case "date":
		entry.Meta.Date = value
	default:
		return fmt.Errorf("ADR field %q is not settable (title, date)", field)
	}
	return loader.WriteADR(entry.Path, entry.Meta, entry.Body)
}

func setWorkField(index *model.ProjectIndex, id, field, value string) error {
	entry, err := findWork(index, id)
	if err != nil {
		return err
	}
	switch field {
	case "title":
		entry.Meta.Title = value
	default:
		return fmt.Errorf("work field %q is not settable (title)", field)
	}
	return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
}

// Add appends one element to an array field. Refs are validated against
// the known-ID table; acceptance criteria accept an optional
// "category:" prefix (added by default).
func Add(index *model.ProjectIndex, id, field, value string) error {
	switch field {
	case "refs":
		return addRef(index, id, value)
	case "notes":
		entry, err := findWork(index, id)
		if err != nil {
			return err
		}
		entry.Meta.Notes = append(entry.Meta.Notes, value)
		return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
	case "acceptance_criteria":
		entry, err := findWork(index, id)
		if err != nil {
			return err
		}
		crit, err := parseCriterion(value)
		if err != nil {
			return err
		}
		entry.Meta.Acceptance = append(entry.Meta.Acceptance, crit)
		return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
	}
	return fmt.Errorf("field %q is not appendable (refs, notes, acceptance_criteria)", field)
}

func parseCriterion(value string) (model.Criterion, error) {
	category := model.CatAdded
	text := value
	if head, tail, ok := strings.Cut(value, ":"); ok {
		c := model.ChangeCategory(strings.TrimSpace(head))
		if model.ValidCategory(c) {
			category = c
			text = strings.TrimSpace(tail)
		}
	}
	if strings.TrimSpace(text) == "" {
		return model.Criterion{}, errors.New("acceptance criterion text is empty")
	}
	return model.Criterion{Text: text, Category: category, Status: model.CheckPending}, nil
}

func addRef(index *model.ProjectIndex, id, ref string) error {
	refs := validate.KnownRefs(index)
	if _, ok := refs.Resolve(ref); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	if strings.HasPrefix(id, "ADR-") {
		entry, err := findADR(index, id)
		if err != nil {
			return err
		}
		if containsString(entry.Meta.Refs, ref) {
			return fmt.Errorf("%s already references %s", id, ref)
		}
		entry.Meta.Refs = append(entry.Meta.Refs, ref)
		return loader.WriteADR(entry.Path, entry.Meta, entry.Body)
	}
	entry, err := findWork(index, id)
	if err != nil {
		return err
	}
	if containsString(entry.Meta.Refs, ref) {
		return fmt.Errorf("%s already references %s", id, ref)
	}
	entry.Meta.Refs = append(entry.Meta.Refs, ref)
	return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
}

// Remove deletes one element from an array field by exact value.
func Remove(index *model.ProjectIndex, id, field, value string) error {
	switch field {
	case "refs":
		if strings.HasPrefix(id, "ADR-") {
			entry, err := findADR(index, id)
			if err != nil {
				return err
			}
			removed, ok := removeString(entry.Meta.Refs, value)
			if !ok {
				return fmt.Errorf("%s does not reference %s", id, value)
			}
			entry.Meta.Refs = removed
			return loader.WriteADR(entry.Path, entry.Meta, entry.Body)
		}
		entry, err := findWork(index, id)
		if err != nil {
			return err
		}
		removed, ok := removeString(entry.Meta.Refs, value)
		if !ok {
			return fmt.Errorf("%s does not reference %s", id, value)
		}
		entry.Meta.Refs = removed
		return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
	case "notes":
		entry, err := findWork(index, id)
		if err != nil {
			return err
		}
		removed, ok := removeString(entry.Meta.Notes, value)
		if !ok {
			return fmt.Errorf("%s has no note %q", id, value)
		}
		entry.Meta.Notes = removed
		return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
	case "acceptance_criteria":
		entry, err := findWork(index, id)
		if err != nil {
			return err
		}
		for i, crit := range entry.Meta.Acceptance {
			if crit.Text == value {
				entry.Meta.Acceptance = append(entry.Meta.Acceptance[:i], entry.Meta.Acceptance[i+1:]...)
				return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
			}
		}
		return fmt.Errorf("%s has no criterion %q", id, value)
	}
	return fmt.Errorf("field %q is not removable (refs, notes, acceptance_criteria)", field)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) ([]string, bool) {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

// Tick updates the sub-status of one checklist item, addressed by its
// 1-based position. Work items tick acceptance criteria; ADRs tick
// alternatives.
func Tick(index *model.ProjectIndex, id string, position int, status string) error {
	if strings.HasPrefix(id, "ADR-") {
		entry, err := findADR(index, id)
		if err != nil {
			return err
		}
		alt := model.AlternativeStatus(status)
		if alt != model.AltConsidered && alt != model.AltAccepted && alt != model.AltRejected {
			return fmt.Errorf("alternative status %q must be considered, accepted or rejected", status)
		}
		if position < 1 || position > len(entry.Meta.Alternatives) {
			return fmt.Errorf("%s has %d alternatives, no position %d", id, len(entry.Meta.Alternatives), position)
		}
		entry.Meta.Alternatives[position-1].Status = alt
		return loader.WriteADR(entry.Path, entry.Meta, entry.Body)
	}

	entry, err := findWork(index, id)
	if err != nil {
		return err
	}
	check := model.ChecklistStatus(status)
	if check != model.CheckPending && check != model.CheckDone && check != model.CheckCancelled {
		return fmt.Errorf("criterion status %q must be pending, done or cancelled", status)
	}
	if position < 1 || position > len(entry.Meta.Acceptance) {
		return fmt.Errorf("%s has %d criteria, no position %d", id, len(entry.Meta.Acceptance), position)
	}
	entry.Meta.Acceptance[position-1].Status = check
	return loader.WriteWork(entry.Path, entry.Meta, entry.Body)
}

// Bump increments one version part of an RFC, appends the categorized
// changelog entry and re-signs the document.
func Bump(index *model.ProjectIndex, id string, part Part, summary string, changeSpecs []string) (string, error) {
	entry, err := findRFC(index, id)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "", errors.New("a bump requires --summary")
	}

	next, err := bumpVersion(entry.RFC.Version, part)
	if err != nil {
		return "", err
	}

	changes := make([]model.Change, 0, len(changeSpecs))
	for _, spec := range changeSpecs {
		change, err := parseChange(spec)
		if err != nil {
			return "", err
		}
		changes = append(changes, change)
	}

	entry.RFC.Version = next
	entry.RFC.Updated = today()
	// Newest entry first, matching the stored changelog order.
	entry.RFC.Changelog = append([]model.ChangelogEntry{{
		Version: next,
		Date:    today(),
		Summary: summary,
		Changes: changes,
	}}, entry.RFC.Changelog...)
	return next, resign(entry)
}

func parseChange(spec string) (model.Change, error) {
	head, tail, ok := strings.Cut(spec, ":")
	if !ok {
		return model.Change{}, fmt.Errorf("change %q must be \"category: text\"", spec)
	}
	category := model.ChangeCategory(strings.TrimSpace(head))
	if !model.ValidCategory(category) {
		return model.Change{}, fmt.Errorf("unknown change category %q", head)
	}
	text := strings.TrimSpace(tail)
	if text == "" {
		return model.Change{}, fmt.Errorf("change %q has no text", spec)
	}
	return model.Change{Category: category, Text: text}, nil
}

func bumpVersion(version string, part Part) (string, error) {
	if !validate.Semver(version) {
		return "", fmt.Errorf("current version %q is not MAJOR.MINOR.PATCH", version)
	}
	fields := strings.SplitN(version, ".", 3)
	major, _ := strconv.Atoi(fields[0])
	minor, _ := strconv.Atoi(fields[1])
	patch, _ := strconv.Atoi(fields[2])

	switch part {
	case Major:
		major, minor, patch = major+1, 0, 0
	case Minor:
		minor, patch = minor+1, 0
	case Patch:
		patch++
	default:
		return "", fmt.Errorf("unknown version part %q", part)
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch), nil
}

// resign stores a fresh content digest and writes the rfc.json.
func resign(entry *model.RFCEntry) error {
	digest, err := signature.RFC(entry)
	if err != nil {
		return err
	}
	entry.RFC.Signature = digest
	return loader.WriteRFC(entry.Path, &entry.RFC)
}

// CutRelease collects every done work item not yet in a release into a
// new release stanza.
func CutRelease(cfg *config.Config, index *model.ProjectIndex, version string) (model.Release, error) {
	if !validate.Semver(version) {
		return model.Release{}, fmt.Errorf("version %q is not MAJOR.MINOR.PATCH", version)
	}
	released := make(map[string]bool)
	for _, r := range index.Releases {
		if r.Version == version {
			return model.Release{}, fmt.Errorf("release %s already exists", version)
		}
		for _, wi := range r.WorkItems {
			released[wi] = true
		}
	}

	var items []string
	for i := range index.WorkItems {
		meta := &index.WorkItems[i].Meta
		if meta.Status == model.WorkDone && !released[meta.ID] {
			items = append(items, meta.ID)
		}
	}
	if len(items) == 0 {
		return model.Release{}, errors.New("no unreleased done work items")
	}

	release := model.Release{Version: version, Date: today(), WorkItems: items}
	index.Releases = append(index.Releases, release)
	return release, loader.WriteReleases(cfg.ReleasesFile(), index.Releases)
}

// DeleteClause removes a clause file and its section entries. Only
// clauses of draft RFCs may be deleted; ratified history is immutable.
func DeleteClause(index *model.ProjectIndex, ref string) error {
	rfc, clause, err := findClause(index, ref)
	if err != nil {
		return err
	}
	if rfc.RFC.Status != model.RFCDraft {
		return fmt.Errorf("%s is %s; clauses are only deleted while the RFC is a draft", rfc.RFC.ID, rfc.RFC.Status)
	}

	target := clause.Clause.ID + ".json"
	for si := range rfc.RFC.Sections {
		section := &rfc.RFC.Sections[si]
		kept := section.Clauses[:0]
		for _, path := range section.Clauses {
			if strings.HasSuffix(path, "/"+target) || path == target {
				continue
			}
			kept = append(kept, path)
		}
		section.Clauses = kept
	}

	if err := os.Remove(clause.Path); err != nil {
		return fmt.Errorf("delete clause file: %w", err)
	}
	for i := range rfc.Clauses {
		if rfc.Clauses[i].Clause.ID == clause.Clause.ID {
			rfc.Clauses = append(rfc.Clauses[:i], rfc.Clauses[i+1:]...)
			break
		}
	}
	return loader.WriteRFC(rfc.Path, &rfc.RFC)
}

// DeleteWork removes a queued work item that nothing references.
func DeleteWork(index *model.ProjectIndex, id string) error {
	entry, err := findWork(index, id)
	if err != nil {
		return err
	}
	if entry.Meta.Status != model.WorkQueue {
		return fmt.Errorf("%s is %s; only queued work items are deleted", id, entry.Meta.Status)
	}
	for _, release := range index.Releases {
		for _, wi := range release.WorkItems {
			if wi == id {
				return fmt.Errorf("%s is part of release %s", id, release.Version)
			}
		}
	}
	for i := range index.ADRs {
		if containsString(index.ADRs[i].Meta.Refs, id) {
			return fmt.Errorf("%s is referenced by %s", id, index.ADRs[i].Meta.ID)
		}
	}
	for i := range index.WorkItems {
		if index.WorkItems[i].Meta.ID != id && containsString(index.WorkItems[i].Meta.Refs, id) {
			return fmt.Errorf("%s is referenced by %s", id, index.WorkItems[i].Meta.ID)
		}
	}

	if err := os.Remove(entry.Path); err != nil {
		return fmt.Errorf("delete work item file: %w", err)
	}
	for i := range index.WorkItems {
		if index.WorkItems[i].Meta.ID == id {
			index.WorkItems = append(index.WorkItems[:i], index.WorkItems[i+1:]...)
			break
		}
	}
	return nil
}
