package tracklevel

import "testing"

func TestValid(t *testing.T) {
	for _, level := range []int{Critical, Standard, Verbose} {
		if !Valid(level) {
			t.Error("Level should be valid", level)
		}
	}
	for _, level := range []int{-1, 0, 4, 100} {
		if Valid(level) {
			t.Error("Level should not be valid", level)
		}
	}
}

func TestAdmit(t *testing.T) {
	if !Admit(Critical, Critical) {
		t.Error("A critical event should be admitted at level 1")
	}
	if Admit(Standard, Critical) {
		t.Error("A standard event should not be admitted at level 1")
	}
	if Admit(Verbose, Standard) {
		t.Error("A verbose event should not be admitted at level 2")
	}
	if !Admit(Standard, Standard) {
		t.Error("A standard event should be admitted at level 2")
	}
	if !Admit(Critical, Verbose) || !Admit(Standard, Verbose) || !Admit(Verbose, Verbose) {
		t.Error("Every event should be admitted at level 3")
	}
}

func TestAdmitRejectsUnknownLevels(t *testing.T) {
	if Admit(0, Verbose) {
		t.Error("Unknown required level should be rejected")
	}
	if Admit(Critical, 0) {
		t.Error("Unknown current level should reject everything")
	}
}
