package evaluation

import (
	"strings"
	"unicode"
)

// NormalizeAnswer lowercases, strips punctuation and the articles a/an/the,
// and collapses whitespace, matching standard HotpotQA answer scoring.
func NormalizeAnswer(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsPunct(r) {
			continue
		}
		sb.WriteRune(r)
	}

	fields := strings.Fields(sb.String())
	out := fields[:0]
	for _, f := range fields {
		if f == "a" || f == "an" || f == "the" {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// ExactMatch reports whether prediction and gold normalize identically.
func ExactMatch(prediction, gold string) bool {
	return NormalizeAnswer(prediction) == NormalizeAnswer(gold)
}

// F1 is the token-level F1 between prediction and gold after normalization.
// Two empty answers score 1; one empty answer scores 0.
func F1(prediction, gold string) float64 {
	predTokens := strings.Fields(NormalizeAnswer(prediction))
	goldTokens := strings.Fields(NormalizeAnswer(gold))

	if len(predTokens) == 0 && len(goldTokens) == 0 {
		return 1.0
	}
	if len(predTokens) == 0 || len(goldTokens) == 0 {
		return 0.0
	}

	goldCounts := make(map[string]int, len(goldTokens))
	for _, tok := range goldTokens {
		goldCounts[tok]++
	}
	common := 0
	for _, tok := range predTokens {
		if goldCounts[tok] > 0 {
			goldCounts[tok]--
			common++
		}
	}
	if common == 0 {
		return 0.0
	}

	precision := float64(common) / float64(len(predTokens))
	recall := float64(common) / float64(len(goldTokens))
	return 2 * precision * recall / (precision + recall)
}

// Result scores one prediction.
type Result struct {
	ID         string  `json:"id"`
	Prediction string  `json:"prediction"`
	Gold       string  `json:"ground_truth"`
	ExactMatch bool    `json:"exact_match"`
	F1         float64 `json:"f1"`
	NumHops    int     `json:"num_hops"`
}

// Metrics aggregates a result set.
type Metrics struct {
	ExactMatch    float64 `json:"exact_match"`
	F1            float64 `json:"f1"`
	AvgHops       float64 `json:"avg_hops"`
	TotalExamples int     `json:"total_examples"`
}

// Evaluator accumulates per-question scores.
type Evaluator struct {
	results []Result
}

// Score evaluates one prediction and records it.
func (e *Evaluator) Score(id, prediction, gold string, numHops int) Result {
	r := Result{
		ID:         id,
		Prediction: prediction,
		Gold:       gold,
		ExactMatch: ExactMatch(prediction, gold),
		F1:         F1(prediction, gold),
		NumHops:    numHops,
	}
	e.results = append(e.results, r)
	return r
}

// Results returns everything scored so far.
func (e *Evaluator) Results() []Result {
	return e.results
}

// Metrics aggregates the recorded results.
func (e *Evaluator) Metrics() Metrics {
	if len(e.results) == 0 {
		return Metrics{}
	}
	var em, f1, hops float64
	for _, r := range e.results {
		if r.ExactMatch {
			em++
		}
		f1 += r.F1
		hops += float64(r.NumHops)
	}
	n := float64(len(e.results))
	return Metrics{
		ExactMatch:    em / n,
		F1:            f1 / n,
		AvgHops:       hops / n,
		TotalExamples: len(e.results),
	}
}
