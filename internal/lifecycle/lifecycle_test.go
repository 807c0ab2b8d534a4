package lifecycle

import (
	"errors"
	"testing"

	"github.com/docgov/docgov/internal/model"
)

func TestRFCStatusTransitions(t *testing.T) {
	statuses := []model.RFCStatus{model.RFCDraft, model.RFCNormative, model.RFCDeprecated}
	legal := map[[2]model.RFCStatus]bool{
		{model.RFCDraft, model.RFCNormative}:      true,
		{model.RFCNormative, model.RFCDeprecated}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := ValidRFCStatus(from, to)
			want := legal[[2]model.RFCStatus{from, to}]
			if got != want {
				t.Errorf("ValidRFCStatus(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestRFCPhaseForwardOnly(t *testing.T) {
	phases := []model.RFCPhase{model.PhaseSpec, model.PhaseImpl, model.PhaseTest, model.PhaseStable}

	for i, from := range phases {
		for j, to := range phases {
			got := ValidRFCPhase(from, to)
			want := j == i+1
			if got != want {
				t.Errorf("ValidRFCPhase(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestRFCPhaseSkipRejected(t *testing.T) {
	if ValidRFCPhase(model.PhaseSpec, model.PhaseStable) {
		t.Error("spec -> stable should be rejected")
	}
	if ValidRFCPhase(model.PhaseSpec, model.PhaseTest) {
		t.Error("spec -> test should be rejected")
	}
}

func TestClauseTerminalStates(t *testing.T) {
	if !ValidClause(model.ClauseActive, model.ClauseDeprecated) {
		t.Error("active -> deprecated should be legal")
	}
	if !ValidClause(model.ClauseActive, model.ClauseSuperseded) {
		t.Error("active -> superseded should be legal")
	}

	for _, terminal := range []model.ClauseStatus{model.ClauseDeprecated, model.ClauseSuperseded} {
		for _, to := range []model.ClauseStatus{model.ClauseActive, model.ClauseDeprecated, model.ClauseSuperseded} {
			if ValidClause(terminal, to) {
				t.Errorf("terminal state %s should reject transition to %s", terminal, to)
			}
		}
	}
}

func TestCheckClauseAlreadyTerminal(t *testing.T) {
	err := CheckClause(model.ClauseDeprecated, model.ClauseDeprecated)
	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("CheckClause(deprecated, deprecated) = %v, want TerminalError", err)
	}
	if terminal.Error() != "clause is already deprecated" {
		t.Errorf("message = %q, want already-deprecated phrasing", terminal.Error())
	}
}

func TestCheckClauseInvalidPairIsTransitionError(t *testing.T) {
	err := CheckClause(model.ClauseActive, model.ClauseActive)
	var transition *TransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("CheckClause(active, active) = %v, want TransitionError", err)
	}
}

func TestADRTransitions(t *testing.T) {
	cases := []struct {
		from, to model.ADRStatus
		want     bool
	}{
		{model.ADRProposed, model.ADRAccepted, true},
		{model.ADRProposed, model.ADRRejected, true},
		{model.ADRProposed, model.ADRSuperseded, true},
		{model.ADRAccepted, model.ADRSuperseded, true},
		{model.ADRAccepted, model.ADRProposed, false},
		{model.ADRRejected, model.ADRSuperseded, false},
		{model.ADRSuperseded, model.ADRAccepted, false},
		{model.ADRRejected, model.ADRAccepted, false},
	}

	for _, tc := range cases {
		if got := ValidADR(tc.from, tc.to); got != tc.want {
			t.Errorf("ValidADR(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestWorkTransitions(t *testing.T) {
	cases := []struct {
		from, to model.WorkStatus
		want     bool
	}{
		{model.WorkQueue, model.WorkActive, true},
		{model.WorkQueue, model.WorkCancelled, true},
		{model.WorkActive, model.WorkDone, true},
		{model.WorkActive, model.WorkCancelled, true},
		{model.WorkQueue, model.WorkDone, false},
		{model.WorkDone, model.WorkActive, false},
		{model.WorkDone, model.WorkQueue, false},
		{model.WorkCancelled, model.WorkActive, false},
	}

	for _, tc := range cases {
		if got := ValidWork(tc.from, tc.to); got != tc.want {
			t.Errorf("ValidWork(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTransitionErrorNamesBothStates(t *testing.T) {
	err := CheckWork(model.WorkQueue, model.WorkDone)
	if err == nil {
		t.Fatal("CheckWork(queue, done) should fail")
	}
	want := "invalid work item transition: queue -> done"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestTerminalHelpers(t *testing.T) {
	if !TerminalWork(model.WorkDone) || !TerminalWork(model.WorkCancelled) {
		t.Error("done and cancelled should be terminal")
	}
	if TerminalWork(model.WorkQueue) || TerminalWork(model.WorkActive) {
		t.Error("queue and active should not be terminal")
	}
	if !TerminalClause(model.ClauseSuperseded) {
		t.Error("superseded clause should be terminal")
	}
}
