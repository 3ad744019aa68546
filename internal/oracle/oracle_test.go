package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hopqa/internal/llm"
	"hopqa/internal/multihop"
)

func TestPlanParsesSections(t *testing.T) {
	client := llm.NewMockClient(`QUERIES:
1. Lagaan director
2. director nationality

OBJECTIVES:
1. identify who directed Lagaan
2. find that person's nationality`)
	o := New(client, Config{}, nil)

	plan, err := o.Plan(context.Background(), "What nationality is the director of Lagaan?", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"1. Lagaan director", "2. director nationality"}, plan.Queries)
	assert.Len(t, plan.Objectives, 2)
}

func TestPlanTransportError(t *testing.T) {
	client := llm.NewMockClient().WithError(errors.New("connection refused"))
	o := New(client, Config{}, nil)

	_, err := o.Plan(context.Background(), "question", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHopStepParsesLabeledLines(t *testing.T) {
	client := llm.NewMockClient(`EVIDENCE_SUMMARY: Lagaan was directed by Ashutosh Gowariker,
an acclaimed filmmaker.
CONCLUSION: The director is Gowariker.
NEXT_QUERY: Gowariker nationality
NEXT_OBJECTIVE: determine his nationality
CONFIDENCE: needs_more`)
	o := New(client, Config{}, nil)

	resp, err := o.HopStep(context.Background(), multihop.HopInput{
		Question:      "What nationality is the director of Lagaan?",
		Query:         "Lagaan director",
		Objective:     "identify the director",
		RankedContext: "[1] (relevance 0.900) Lagaan was directed by Ashutosh Gowariker.",
		MaxHops:       3,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.EvidenceSummary, "an acclaimed filmmaker")
	assert.Equal(t, "The director is Gowariker.", resp.Conclusion)
	assert.Equal(t, "Gowariker nationality", resp.NextQuery)
	assert.Equal(t, "needs_more", resp.Confidence)
}

func TestHopStepCoercesConfidence(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"sufficient", "sufficient"},
		{"Sufficient.", "sufficient"},
		{"needs_more", "needs_more"},
		{"I think we should keep looking", "needs_more"},
		{"", "needs_more"},
	}
	for _, tt := range tests {
		if got := coerceHopConfidence(tt.raw); got != tt.want {
			t.Errorf("coerceHopConfidence(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestHopStepUnparseableOutput(t *testing.T) {
	client := llm.NewMockClient("I could not process this request, sorry.")
	o := New(client, Config{}, nil)

	_, err := o.HopStep(context.Background(), multihop.HopInput{Question: "q", Query: "q", MaxHops: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable")
}

func TestHopStepSummaryWithoutNextQuery(t *testing.T) {
	// A summary-only reply is valid oracle output; deciding that a missing
	// follow-up ends the run is the orchestrator's call, not a parse failure.
	client := llm.NewMockClient(`EVIDENCE_SUMMARY: The passages settle the question.
CONFIDENCE: needs_more`)
	o := New(client, Config{}, nil)

	resp, err := o.HopStep(context.Background(), multihop.HopInput{Question: "q", Query: "q", MaxHops: 3})
	require.NoError(t, err)
	assert.Equal(t, "The passages settle the question.", resp.EvidenceSummary)
	assert.Empty(t, resp.NextQuery)
	assert.Equal(t, "needs_more", resp.Confidence)
}

func TestSynthesizeParsesAnswer(t *testing.T) {
	client := llm.NewMockClient(`REASONING_SUMMARY: Lagaan was directed by Gowariker; Gowariker is Indian.
ANSWER: Indian
CONFIDENCE: High`)
	o := New(client, Config{}, nil)

	syn, err := o.Synthesize(context.Background(), "What nationality is the director of Lagaan?",
		"evidence text", []string{"Lagaan director"}, []string{"Gowariker directed Lagaan."})
	require.NoError(t, err)
	assert.Equal(t, "Indian", syn.Answer)
	assert.Equal(t, "high", syn.Confidence)
	assert.Contains(t, syn.ReasoningSummary, "Gowariker is Indian")
}

func TestSynthesizeBareTextFallsBackToAnswer(t *testing.T) {
	client := llm.NewMockClient("Indian")
	o := New(client, Config{}, nil)

	syn, err := o.Synthesize(context.Background(), "q", "ctx", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Indian", syn.Answer)
	assert.Equal(t, "unknown", syn.Confidence)
}

func TestSynthesizeEmptyOutputFails(t *testing.T) {
	client := llm.NewMockClient("   \n  ")
	o := New(client, Config{}, nil)

	_, err := o.Synthesize(context.Background(), "q", "ctx", nil, nil)
	require.Error(t, err)
}

func TestCompressRejectsEmptySummary(t *testing.T) {
	client := llm.NewMockClient("  \n ")
	o := New(client, Config{}, nil)

	_, err := o.Compress(context.Background(), "long context")
	require.Error(t, err)
}

func TestValidateStrictJSON(t *testing.T) {
	client := llm.NewMockClient(`{"is_supported": "YES", "supporting_evidence": "Gowariker is an Indian film director."}`)
	o := New(client, Config{}, nil)

	v, err := o.Validate(context.Background(), "q", "ctx", "Indian")
	require.NoError(t, err)
	assert.True(t, v.IsSupported)
	assert.Equal(t, "Gowariker is an Indian film director.", v.SupportingEvidence)
}

func TestValidateRepairsBrokenJSON(t *testing.T) {
	// Single quotes and a trailing comma, wrapped in prose.
	client := llm.NewMockClient("Here is my verdict:\n{'is_supported': 'YES', 'supporting_evidence': 'the passage',}")
	o := New(client, Config{}, nil)

	v, err := o.Validate(context.Background(), "q", "ctx", "answer")
	require.NoError(t, err)
	assert.True(t, v.IsSupported)
	assert.Equal(t, "the passage", v.SupportingEvidence)
}

func TestValidateBooleanSupported(t *testing.T) {
	client := llm.NewMockClient(`{"is_supported": true, "supporting_evidence": "e"}`)
	o := New(client, Config{}, nil)

	v, err := o.Validate(context.Background(), "q", "ctx", "answer")
	require.NoError(t, err)
	assert.True(t, v.IsSupported)
}

func TestValidateGarbageMeansUnsupported(t *testing.T) {
	client := llm.NewMockClient("I cannot tell whether this is supported.")
	o := New(client, Config{}, nil)

	v, err := o.Validate(context.Background(), "q", "ctx", "answer")
	require.NoError(t, err)
	assert.False(t, v.IsSupported)
	assert.Empty(t, v.SupportingEvidence)
}

func TestParseLabeledIgnoresUnknownLabels(t *testing.T) {
	fields := parseLabeled("NOTE: ignore me\nANSWER: forty-two", "ANSWER")
	assert.Equal(t, "forty-two", fields["ANSWER"])
	assert.Len(t, fields, 1)
}
