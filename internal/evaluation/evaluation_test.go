package evaluation

import (
	"math"
	"testing"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Indian Director", "indian director"},
		{"Gowariker, Ashutosh!", "gowariker ashutosh"},
		{"  An  answer  ", "answer"},
		{"a an the", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeAnswer(tt.in); got != tt.want {
			t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExactMatch(t *testing.T) {
	if !ExactMatch("The Indian", "Indian") {
		t.Error("article and case differences should not break exact match")
	}
	if ExactMatch("Indian", "British") {
		t.Error("different answers must not match")
	}
}

func TestF1(t *testing.T) {
	tests := []struct {
		name string
		pred string
		gold string
		want float64
	}{
		{"identical", "Ashutosh Gowariker", "Ashutosh Gowariker", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "Indian", "", 0.0},
		{"no overlap", "British", "Indian", 0.0},
		{"partial", "Ashutosh Gowariker director", "Ashutosh Gowariker", 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := F1(tt.pred, tt.gold); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("F1(%q, %q) = %.4f, want %.4f", tt.pred, tt.gold, got, tt.want)
			}
		})
	}
}

func TestEvaluatorMetrics(t *testing.T) {
	var e Evaluator
	e.Score("q1", "Indian", "Indian", 1)
	e.Score("q2", "British", "Indian", 3)

	m := e.Metrics()
	if m.TotalExamples != 2 {
		t.Fatalf("total = %d", m.TotalExamples)
	}
	if math.Abs(m.ExactMatch-0.5) > 1e-9 {
		t.Errorf("exact match = %.3f", m.ExactMatch)
	}
	if math.Abs(m.AvgHops-2.0) > 1e-9 {
		t.Errorf("avg hops = %.3f", m.AvgHops)
	}
}

func TestEvaluatorEmpty(t *testing.T) {
	var e Evaluator
	m := e.Metrics()
	if m.TotalExamples != 0 || m.F1 != 0 {
		t.Errorf("empty evaluator should report zeros, got %+v", m)
	}
}
