package model

import "testing"

func TestClauseRefRoundTrip(t *testing.T) {
	ref := ClauseRef("RFC-0001", "C-LAYOUT")
	if ref != "RFC-0001:C-LAYOUT" {
		t.Errorf("ClauseRef = %q", ref)
	}
	rfcID, clauseID := SplitClauseRef(ref)
	if rfcID != "RFC-0001" || clauseID != "C-LAYOUT" {
		t.Errorf("SplitClauseRef = %q, %q", rfcID, clauseID)
	}
}

func TestSplitClauseRefBareID(t *testing.T) {
	rfcID, clauseID := SplitClauseRef("RFC-0002")
	if rfcID != "RFC-0002" || clauseID != "" {
		t.Errorf("SplitClauseRef = %q, %q, want RFC-0002 and empty", rfcID, clauseID)
	}
}

func TestQualifyClauseRef(t *testing.T) {
	if got := QualifyClauseRef("RFC-0001", "C-X"); got != "RFC-0001:C-X" {
		t.Errorf("bare ID: got %q", got)
	}
	if got := QualifyClauseRef("RFC-0001", "RFC-0002:C-Y"); got != "RFC-0002:C-Y" {
		t.Errorf("qualified ref should pass through, got %q", got)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range ChangeCategories {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%s) = false", c)
		}
	}
	if ValidCategory("refactored") {
		t.Error("unknown category should be invalid")
	}
}

func TestProjectIndexFind(t *testing.T) {
	ix := ProjectIndex{
		RFCs:      []RFCEntry{{RFC: RFC{ID: "RFC-0001"}}},
		ADRs:      []ADREntry{{Meta: ADRMeta{ID: "ADR-0001"}}},
		WorkItems: []WorkEntry{{Meta: WorkMeta{ID: "WI-0001"}}},
	}
	if ix.FindRFC("RFC-0001") == nil || ix.FindRFC("RFC-0002") != nil {
		t.Error("FindRFC lookup wrong")
	}
	if ix.FindADR("ADR-0001") == nil || ix.FindADR("ADR-0002") != nil {
		t.Error("FindADR lookup wrong")
	}
	if ix.FindWork("WI-0001") == nil || ix.FindWork("WI-0002") != nil {
		t.Error("FindWork lookup wrong")
	}
}
