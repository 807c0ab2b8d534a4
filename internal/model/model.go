// Package model defines the data structures for all governed artifacts:
// RFC specifications with their clauses, decision records, work items,
// and releases, plus the in-memory ProjectIndex built from them.
package model

import "strings"

// RFCStatus is the ratification state of an RFC.
type RFCStatus string

const (
	// RFCDraft is an unratified RFC; its clauses may still be deleted.
	RFCDraft RFCStatus = "draft"

	// RFCNormative is a ratified RFC whose clauses are binding.
	RFCNormative RFCStatus = "normative"

	// RFCDeprecated is a retired RFC. Terminal.
	RFCDeprecated RFCStatus = "deprecated"
)

// RFCPhase is the delivery phase of an RFC, advancing strictly
// spec -> impl -> test -> stable.
type RFCPhase string

const (
	PhaseSpec   RFCPhase = "spec"
	PhaseImpl   RFCPhase = "impl"
	PhaseTest   RFCPhase = "test"
	PhaseStable RFCPhase = "stable"
)

// ClauseKind distinguishes binding clauses from explanatory ones.
type ClauseKind string

const (
	KindNormative   ClauseKind = "normative"
	KindInformative ClauseKind = "informative"
)

// ClauseStatus is the lifecycle state of a single clause.
type ClauseStatus string

const (
	ClauseActive     ClauseStatus = "active"
	ClauseDeprecated ClauseStatus = "deprecated"
	ClauseSuperseded ClauseStatus = "superseded"
)

// ADRStatus is the lifecycle state of a decision record.
type ADRStatus string

const (
	ADRProposed   ADRStatus = "proposed"
	ADRAccepted   ADRStatus = "accepted"
	ADRRejected   ADRStatus = "rejected"
	ADRSuperseded ADRStatus = "superseded"
)

// WorkStatus is the lifecycle state of a work item.
type WorkStatus string

const (
	WorkQueue     WorkStatus = "queue"
	WorkActive    WorkStatus = "active"
	WorkDone      WorkStatus = "done"
	WorkCancelled WorkStatus = "cancelled"
)

// ChecklistStatus is the sub-status of an acceptance criterion.
type ChecklistStatus string

const (
	CheckPending   ChecklistStatus = "pending"
	CheckDone      ChecklistStatus = "done"
	CheckCancelled ChecklistStatus = "cancelled"
)

// AlternativeStatus is the sub-status of a considered alternative in an ADR.
type AlternativeStatus string

const (
	AltConsidered AlternativeStatus = "considered"
	AltAccepted   AlternativeStatus = "accepted"
	AltRejected   AlternativeStatus = "rejected"
)

// ChangeCategory buckets a changelog line, keep-a-changelog style.
type ChangeCategory string

const (
	CatAdded      ChangeCategory = "added"
	CatChanged    ChangeCategory = "changed"
	CatDeprecated ChangeCategory = "deprecated"
	CatRemoved    ChangeCategory = "removed"
	CatFixed      ChangeCategory = "fixed"
	CatSecurity   ChangeCategory = "security"
)

// ChangeCategories lists every valid category in render order.
var ChangeCategories = []ChangeCategory{
	CatAdded, CatChanged, CatDeprecated, CatRemoved, CatFixed, CatSecurity,
}

// ValidCategory reports whether c is a known changelog category.
func ValidCategory(c ChangeCategory) bool {
	for _, known := range ChangeCategories {
		if c == known {
			return true
		}
	}
	return false
}

// RFC is the metadata file of a specification (rfc.json). Clause bodies
// live in separate files referenced by section clause paths.
type RFC struct {
	// ID is the artifact identifier (e.g., "RFC-0001").
	ID string `json:"rfc_id" yaml:"rfc_id"`

	// Title is the human-readable name.
	Title string `json:"title" yaml:"title"`

	// Version is the semantic version of the spec content.
	Version string `json:"version" yaml:"version"`

	// Status is the ratification state.
	Status RFCStatus `json:"status" yaml:"status"`

	// Phase is the delivery phase; constrained by Status.
	Phase RFCPhase `json:"phase" yaml:"phase"`

	// Owners are the responsible parties.
	Owners []string `json:"owners,omitempty" yaml:"owners,omitempty"`

	// Created is the ISO date the RFC was scaffolded.
	Created string `json:"created" yaml:"created"`

	// Updated is the ISO date of the last mutation, if any.
	Updated string `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Sections order the clauses of the RFC.
	Sections []Section `json:"sections" yaml:"sections"`

	// Changelog holds one entry per released version, newest first.
	Changelog []ChangelogEntry `json:"changelog,omitempty" yaml:"changelog,omitempty"`

	// Signature is the digest the RFC content was last signed at, written
	// on version bump. Empty means the RFC has never been signed.
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty"`
}

// Section groups an ordered list of clause file paths under a heading.
type Section struct {
	Title   string   `json:"title" yaml:"title"`
	Clauses []string `json:"clauses,omitempty" yaml:"clauses,omitempty"`
}

// Clause is a single clause file (clauses/C-*.json).
type Clause struct {
	// ID is unique within the owning RFC (e.g., "C-LOCK-TIMEOUT").
	ID string `json:"clause_id" yaml:"clause_id"`

	Title  string       `json:"title" yaml:"title"`
	Kind   ClauseKind   `json:"kind" yaml:"kind"`
	Status ClauseStatus `json:"status" yaml:"status"`
	Text   string       `json:"text" yaml:"text"`

	// SupersededBy names the replacement clause. Set iff Status is
	// superseded; may omit the RFC prefix when the target is in the
	// same RFC.
	SupersededBy string `json:"superseded_by,omitempty" yaml:"superseded_by,omitempty"`

	// Since is the RFC version this clause first appeared in.
	Since string `json:"since,omitempty" yaml:"since,omitempty"`
}

// ChangelogEntry records one released version of an RFC.
type ChangelogEntry struct {
	Version string   `json:"version" yaml:"version"`
	Date    string   `json:"date" yaml:"date"`
	Summary string   `json:"summary" yaml:"summary"`
	Changes []Change `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// Change is a single categorized changelog line.
type Change struct {
	Category ChangeCategory `json:"category" yaml:"category"`
	Text     string         `json:"text" yaml:"text"`
}

// ADRMeta is the frontmatter of a decision record, stored under the
// docgov: namespace key.
type ADRMeta struct {
	Schema int       `json:"schema" yaml:"schema"`
	ID     string    `json:"id" yaml:"id"`
	Title  string    `json:"title" yaml:"title"`
	Status ADRStatus `json:"status" yaml:"status"`
	Date   string    `json:"date" yaml:"date"`

	// SupersededBy names the replacement ADR when Status is superseded.
	SupersededBy string `json:"superseded_by,omitempty" yaml:"superseded_by,omitempty"`

	// Refs are cross-references to other artifacts (RFC, clause, ADR, WI).
	Refs []string `json:"refs,omitempty" yaml:"refs,omitempty"`

	// Alternatives are the options weighed by the decision.
	Alternatives []Alternative `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// Alternative is one option considered by an ADR.
type Alternative struct {
	Text   string            `json:"text" yaml:"text"`
	Status AlternativeStatus `json:"status" yaml:"status"`
}

// WorkMeta is the frontmatter of a work item, stored under the
// docgov: namespace key.
type WorkMeta struct {
	Schema int        `json:"schema" yaml:"schema"`
	ID     string     `json:"id" yaml:"id"`
	Title  string     `json:"title" yaml:"title"`
	Status WorkStatus `json:"status" yaml:"status"`

	// Created is stamped at scaffold time; Started on first move to
	// active; Completed on done or cancelled.
	Created   string `json:"created" yaml:"created"`
	Started   string `json:"started,omitempty" yaml:"started,omitempty"`
	Completed string `json:"completed,omitempty" yaml:"completed,omitempty"`

	Refs []string `json:"refs,omitempty" yaml:"refs,omitempty"`

	// Acceptance are the completion criteria; a work item cannot move to
	// done while any criterion is pending.
	Acceptance []Criterion `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`

	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Criterion is a single acceptance checklist entry. Category feeds the
// changelog line written when the owning work item ships in a release.
type Criterion struct {
	Text     string          `json:"text" yaml:"text"`
	Category ChangeCategory  `json:"category" yaml:"category"`
	Status   ChecklistStatus `json:"status" yaml:"status"`
}

// Release collects the work items shipped under one version. A work item
// appears in at most one release.
type Release struct {
	Version   string   `json:"version" yaml:"version"`
	Date      string   `json:"date" yaml:"date"`
	WorkItems []string `json:"work_items,omitempty" yaml:"work_items,omitempty"`
}

// ClauseEntry pairs a loaded clause with its on-disk path.
type ClauseEntry struct {
	Clause Clause
	Path   string
}

// RFCEntry pairs a loaded RFC with its clauses and rfc.json path.
type RFCEntry struct {
	RFC     RFC
	Clauses []ClauseEntry
	Path    string
}

// ADREntry pairs decision-record frontmatter with its body and path.
type ADREntry struct {
	Meta ADRMeta
	Body string
	Path string
}

// WorkEntry pairs work-item frontmatter with its body and path.
type WorkEntry struct {
	Meta WorkMeta
	Body string
	Path string
}

// ProjectIndex is the read-mostly snapshot of the whole SSOT for one
// command invocation. It is rebuilt fresh on every load; nothing caches
// it across processes.
type ProjectIndex struct {
	RFCs      []RFCEntry
	ADRs      []ADREntry
	WorkItems []WorkEntry
	Releases  []Release
}

// FindRFC returns the RFC entry with the given ID, or nil.
func (ix *ProjectIndex) FindRFC(id string) *RFCEntry {
	for i := range ix.RFCs {
		if ix.RFCs[i].RFC.ID == id {
			return &ix.RFCs[i]
		}
	}
	return nil
}

// FindADR returns the ADR entry with the given ID, or nil.
func (ix *ProjectIndex) FindADR(id string) *ADREntry {
	for i := range ix.ADRs {
		if ix.ADRs[i].Meta.ID == id {
			return &ix.ADRs[i]
		}
	}
	return nil
}

// FindWork returns the work item entry with the given ID, or nil.
func (ix *ProjectIndex) FindWork(id string) *WorkEntry {
	for i := range ix.WorkItems {
		if ix.WorkItems[i].Meta.ID == id {
			return &ix.WorkItems[i]
		}
	}
	return nil
}

// ClauseRef builds the fully-qualified clause reference "RFC-ID:C-ID".
func ClauseRef(rfcID, clauseID string) string {
	return rfcID + ":" + clauseID
}

// SplitClauseRef splits a clause reference into RFC ID and clause ID.
// The second return is empty when ref has no colon.
func SplitClauseRef(ref string) (rfcID, clauseID string) {
	if i := strings.IndexByte(ref, ':'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// QualifyClauseRef expands a bare clause ID against its owning RFC.
// Fully-qualified references pass through unchanged.
func QualifyClauseRef(rfcID, ref string) string {
	if strings.ContainsRune(ref, ':') {
		return ref
	}
	return ClauseRef(rfcID, ref)
}
