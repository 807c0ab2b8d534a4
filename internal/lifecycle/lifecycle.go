// Package lifecycle holds the transition tables for every artifact
// kind. The tables are fixed data, not derived at runtime: each map
// lists the complete set of legal outgoing edges for a state, and a
// state with no entry (or an empty entry) is terminal.
package lifecycle

import (
	"fmt"

	"github.com/docgov/docgov/internal/model"
)

// TransitionError reports an illegal lifecycle move, naming both states.
type TransitionError struct {
	// Kind is the state machine the move was requested on
	// (e.g., "RFC status", "work item").
	Kind string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Kind, e.From, e.To)
}

// TerminalError reports a transition requested out of a terminal state.
// It is distinct from TransitionError so callers can say "already
// deprecated" instead of the generic message.
type TerminalError struct {
	Kind  string
	State string
	To    string
}

func (e *TerminalError) Error() string {
	if e.State == e.To {
		return fmt.Sprintf("%s is already %s", e.Kind, e.State)
	}
	return fmt.Sprintf("%s is %s, which is terminal; cannot move to %s", e.Kind, e.State, e.To)
}

// RFC status: draft -> normative -> deprecated. There is no edge from
// draft to deprecated: an unratified spec is deleted, not retired.
var rfcStatusEdges = map[model.RFCStatus][]model.RFCStatus{
	model.RFCDraft:      {model.RFCNormative},
	model.RFCNormative:  {model.RFCDeprecated},
	model.RFCDeprecated: nil,
}

// RFC phase: strictly forward by one step. The additional constraint
// that phase may only advance while status is normative is cross-field
// and enforced by the caller, not by this table.
var rfcPhaseEdges = map[model.RFCPhase][]model.RFCPhase{
	model.PhaseSpec:   {model.PhaseImpl},
	model.PhaseImpl:   {model.PhaseTest},
	model.PhaseTest:   {model.PhaseStable},
	model.PhaseStable: nil,
}

var clauseEdges = map[model.ClauseStatus][]model.ClauseStatus{
	model.ClauseActive:     {model.ClauseDeprecated, model.ClauseSuperseded},
	model.ClauseDeprecated: nil,
	model.ClauseSuperseded: nil,
}

// ADR status: a proposal is accepted, rejected, or superseded outright;
// an accepted decision can later be superseded by a newer one.
var adrEdges = map[model.ADRStatus][]model.ADRStatus{
	model.ADRProposed:   {model.ADRAccepted, model.ADRRejected, model.ADRSuperseded},
	model.ADRAccepted:   {model.ADRSuperseded},
	model.ADRRejected:   nil,
	model.ADRSuperseded: nil,
}

var workEdges = map[model.WorkStatus][]model.WorkStatus{
	model.WorkQueue:     {model.WorkActive, model.WorkCancelled},
	model.WorkActive:    {model.WorkDone, model.WorkCancelled},
	model.WorkDone:      nil,
	model.WorkCancelled: nil,
}

func contains[S ~string](edges []S, to S) bool {
	for _, e := range edges {
		if e == to {
			return true
		}
	}
	return false
}

func check[S ~string](kind string, edges map[S][]S, from, to S) error {
	out, known := edges[from]
	if known && len(out) == 0 {
		return &TerminalError{Kind: kind, State: string(from), To: string(to)}
	}
	if !contains(out, to) {
		return &TransitionError{Kind: kind, From: string(from), To: string(to)}
	}
	return nil
}

// ValidRFCStatus reports whether from -> to is a legal RFC status move.
func ValidRFCStatus(from, to model.RFCStatus) bool {
	return contains(rfcStatusEdges[from], to)
}

// CheckRFCStatus returns a TerminalError or TransitionError for an
// illegal RFC status move, nil otherwise.
func CheckRFCStatus(from, to model.RFCStatus) error {
	return check("RFC status", rfcStatusEdges, from, to)
}

// ValidRFCPhase reports whether from -> to is a legal phase step.
func ValidRFCPhase(from, to model.RFCPhase) bool {
	return contains(rfcPhaseEdges[from], to)
}

// CheckRFCPhase returns an error for an illegal phase step.
func CheckRFCPhase(from, to model.RFCPhase) error {
	return check("RFC phase", rfcPhaseEdges, from, to)
}

// ValidClause reports whether from -> to is a legal clause status move.
func ValidClause(from, to model.ClauseStatus) bool {
	return contains(clauseEdges[from], to)
}

// CheckClause returns an error for an illegal clause status move.
func CheckClause(from, to model.ClauseStatus) error {
	return check("clause", clauseEdges, from, to)
}

// ValidADR reports whether from -> to is a legal ADR status move.
func ValidADR(from, to model.ADRStatus) bool {
	return contains(adrEdges[from], to)
}

// CheckADR returns an error for an illegal ADR status move.
func CheckADR(from, to model.ADRStatus) error {
	return check("ADR", adrEdges, from, to)
}

// ValidWork reports whether from -> to is a legal work item move.
func ValidWork(from, to model.WorkStatus) bool {
	return contains(workEdges[from], to)
}

// CheckWork returns an error for an illegal work item move. The
// acceptance-criteria gate on entering done is a business precondition
// checked by the caller, not by the table.
func CheckWork(from, to model.WorkStatus) error {
	return check("work item", workEdges, from, to)
}

// TerminalWork reports whether the work status has no outgoing edges.
func TerminalWork(s model.WorkStatus) bool {
	return len(workEdges[s]) == 0
}

// TerminalClause reports whether the clause status has no outgoing edges.
func TerminalClause(s model.ClauseStatus) bool {
	return len(clauseEdges[s]) == 0
}
