package grading

import (
	"errors"
	"testing"
)

func TestNumericTolerance(t *testing.T) {
	ev := NewDefaultEvaluator()
	q := Q{Type: TypeNumerical, Target: 100, TolerancePercent: 5}

	cases := []struct {
		candidate string
		want      bool
	}{
		{"104", true},
		{"106", false},
		{"95", true},
		{"94", false},
		{"105", true}, // boundary equality counts as correct
		{"95.0", true},
		{" 100 ", true},
	}
	for _, c := range cases {
		got, err := ev.Evaluate(q, c.candidate)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", c.candidate, err)
		}
		if got != c.want {
			t.Errorf("Evaluate(%q) = %v, want %v", c.candidate, got, c.want)
		}
	}
}

func TestNumericInvalidInput(t *testing.T) {
	ev := NewDefaultEvaluator()
	q := Q{Type: TypeNumerical, Target: 42, TolerancePercent: 1}

	for _, bad := range []string{"", "abc", "1e999", "NaN", "Inf"} {
		if _, err := ev.Evaluate(q, bad); !errors.Is(err, ErrNotANumber) {
			t.Errorf("Evaluate(%q) err = %v, want ErrNotANumber", bad, err)
		}
	}
}

func TestNumericZeroTarget(t *testing.T) {
	ev := NewDefaultEvaluator()
	q := Q{Type: TypeNumerical, Target: 0, TolerancePercent: 10}

	if ok, _ := ev.Evaluate(q, "0"); !ok {
		t.Error("exact zero should pass a zero target")
	}
	if ok, _ := ev.Evaluate(q, "0.0001"); ok {
		t.Error("nonzero candidate must fail a zero target (tolerance is relative to target)")
	}
}

func TestNegativeTarget(t *testing.T) {
	ev := NewDefaultEvaluator()
	q := Q{Type: TypeNumerical, Target: -50, TolerancePercent: 10}

	if ok, _ := ev.Evaluate(q, "-45"); !ok {
		t.Error("-45 is within 10% of -50")
	}
	if ok, _ := ev.Evaluate(q, "-56"); ok {
		t.Error("-56 is outside 10% of -50")
	}
}

func TestChoiceExactLabel(t *testing.T) {
	ev := NewDefaultEvaluator()
	q := Q{Type: TypeMultipleChoice, CorrectLabel: "B"}

	if ok, err := ev.Evaluate(q, "B"); err != nil || !ok {
		t.Errorf("exact label should pass, got ok=%v err=%v", ok, err)
	}
	if ok, _ := ev.Evaluate(q, "b"); ok {
		t.Error("label comparison is case-sensitive")
	}
	if ok, _ := ev.Evaluate(q, "A"); ok {
		t.Error("wrong label must fail")
	}
}

func TestUnknownType(t *testing.T) {
	ev := NewDefaultEvaluator()
	if _, err := ev.Evaluate(Q{Type: "essay"}, "whatever"); err == nil {
		t.Error("unknown question type should error")
	}
}
