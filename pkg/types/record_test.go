package types

import "testing"

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in      string
		want    Decision
		wantErr bool
	}{
		{"include", DecisionInclude, false},
		{"exclude", DecisionExclude, false},
		{"uncertain", DecisionUncertain, false},
		{"", DecisionUnset, false},
		{"maybe", DecisionUnset, true},
		{"Include", DecisionUnset, true},
	}

	for _, tt := range tests {
		got, err := ParseDecision(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDecision(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecision(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDecision(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecided(t *testing.T) {
	if DecisionUnset.Decided() {
		t.Error("unset decision reported as decided")
	}
	for _, d := range []Decision{DecisionInclude, DecisionExclude, DecisionUncertain} {
		if !d.Decided() {
			t.Errorf("%q reported as undecided", d)
		}
	}
}
