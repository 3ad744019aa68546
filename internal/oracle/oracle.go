package oracle

import (
	"context"
	"fmt"
	"strings"

	"hopqa/internal/llm"
	"hopqa/internal/logging"
	"hopqa/internal/multihop"
)

// Config tunes the oracle's model calls.
type Config struct {
	Temperature float64
	MaxTokens   int
}

// Oracle implements the reasoning capability behind a multi-hop run by
// prompting an LLM and parsing its free-text replies tolerantly. Transport
// failures surface as errors; malformed content degrades to documented
// fallbacks instead.
type Oracle struct {
	client llm.Client
	config Config
	logger logging.Logger
}

var _ multihop.Oracle = (*Oracle)(nil)

// New creates an oracle over the given LLM client.
func New(client llm.Client, config Config, logger logging.Logger) *Oracle {
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1500
	}
	return &Oracle{client: client, config: config, logger: logging.OrNop(logger)}
}

func (o *Oracle) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.Complete(ctx, llm.CompletionRequest{
		System:      system,
		Messages:    []llm.Message{{Role: "user", Content: user}},
		Temperature: o.config.Temperature,
		MaxTokens:   o.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Plan decomposes a question into at most maxHops search queries with
// objectives. A transport failure is returned to the caller, which falls back
// to searching the question verbatim.
func (o *Oracle) Plan(ctx context.Context, question string, maxHops int) (multihop.QueryPlan, error) {
	user := fmt.Sprintf("Question: %s\n\nProduce at most %d queries.", question, maxHops)
	content, err := o.complete(ctx, planSystemPrompt, user)
	if err != nil {
		return multihop.QueryPlan{}, fmt.Errorf("plan: %w", err)
	}

	headers := []string{"QUERIES", "OBJECTIVES"}
	plan := multihop.QueryPlan{
		Queries:    parseSection(content, "QUERIES", headers...),
		Objectives: parseSection(content, "OBJECTIVES", headers...),
	}
	o.logger.Debug("plan parsed: %d queries, %d objectives", len(plan.Queries), len(plan.Objectives))
	return plan, nil
}

// HopStep judges one hop's evidence and proposes the next query. Content that
// is missing both a summary and a next query is treated as malformed.
func (o *Oracle) HopStep(ctx context.Context, input multihop.HopInput) (multihop.HopResponse, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n", input.Question)
	fmt.Fprintf(&sb, "Hop %d of %d.\n", input.HopNumber+1, input.MaxHops)
	fmt.Fprintf(&sb, "Current query: %s\n", input.Query)
	fmt.Fprintf(&sb, "Current objective: %s\n", input.Objective)
	if len(input.PriorSummaries) > 0 {
		fmt.Fprintf(&sb, "\nEvidence from earlier hops:\n")
		for i, s := range input.PriorSummaries {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
		}
	}
	if len(input.RemainingSuggestions) > 0 {
		fmt.Fprintf(&sb, "\nPlanned queries not yet used:\n")
		for _, q := range input.RemainingSuggestions {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
	}
	fmt.Fprintf(&sb, "\nRetrieved passages:\n%s\n", input.RankedContext)

	content, err := o.complete(ctx, hopSystemPrompt, sb.String())
	if err != nil {
		return multihop.HopResponse{}, fmt.Errorf("hop step: %w", err)
	}

	fields := parseLabeled(content,
		"EVIDENCE_SUMMARY", "CONCLUSION", "NEXT_QUERY", "NEXT_OBJECTIVE", "CONFIDENCE")
	resp := multihop.HopResponse{
		EvidenceSummary: fields["EVIDENCE_SUMMARY"],
		Conclusion:      fields["CONCLUSION"],
		NextQuery:       fields["NEXT_QUERY"],
		NextObjective:   fields["NEXT_OBJECTIVE"],
		Confidence:      coerceHopConfidence(fields["CONFIDENCE"]),
	}
	if resp.EvidenceSummary == "" && resp.NextQuery == "" {
		return multihop.HopResponse{}, fmt.Errorf("hop step: unparseable output %q", truncateForLog(content))
	}
	return resp, nil
}

// Compress rewrites accumulated context as a dense summary.
func (o *Oracle) Compress(ctx context.Context, fullContext string) (string, error) {
	content, err := o.complete(ctx, compressSystemPrompt, fullContext)
	if err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}
	summary := strings.TrimSpace(content)
	if summary == "" {
		return "", fmt.Errorf("compress: empty summary")
	}
	return summary, nil
}

// Synthesize produces the final answer from the full evidence trail.
func (o *Oracle) Synthesize(ctx context.Context, question, fullContext string, queriesUsed, evidenceSummaries []string) (multihop.Synthesis, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n", question)
	if len(queriesUsed) > 0 {
		fmt.Fprintf(&sb, "\nQueries used:\n")
		for i, q := range queriesUsed {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
		}
	}
	if len(evidenceSummaries) > 0 {
		fmt.Fprintf(&sb, "\nPer-hop evidence summaries:\n")
		for i, s := range evidenceSummaries {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
		}
	}
	fmt.Fprintf(&sb, "\nAccumulated evidence:\n%s\n", fullContext)

	content, err := o.complete(ctx, synthesizeSystemPrompt, sb.String())
	if err != nil {
		return multihop.Synthesis{}, fmt.Errorf("synthesize: %w", err)
	}

	fields := parseLabeled(content, "REASONING_SUMMARY", "ANSWER", "CONFIDENCE")
	answer := fields["ANSWER"]
	if answer == "" {
		// A reply with no ANSWER label is still an answer if it is the only
		// content; a fully empty reply is not.
		if fallback := strings.TrimSpace(content); fallback != "" && len(fields["REASONING_SUMMARY"]) == 0 {
			answer = fallback
		} else {
			return multihop.Synthesis{}, fmt.Errorf("synthesize: no answer in output %q", truncateForLog(content))
		}
	}
	return multihop.Synthesis{
		ReasoningSummary: fields["REASONING_SUMMARY"],
		Answer:           answer,
		Confidence:       coerceFinalConfidence(fields["CONFIDENCE"]),
	}, nil
}

// Validate checks the answer against the evidence. Malformed output degrades
// to an unsupported verdict; only transport failures are errors.
func (o *Oracle) Validate(ctx context.Context, question, fullContext, answer string) (multihop.Validation, error) {
	user := fmt.Sprintf("Question: %s\n\nAnswer: %s\n\nEvidence:\n%s\n", question, answer, fullContext)
	content, err := o.complete(ctx, validateSystemPrompt, user)
	if err != nil {
		return multihop.Validation{}, fmt.Errorf("validate: %w", err)
	}
	supported, evidence := parseValidation(content)
	return multihop.Validation{IsSupported: supported, SupportingEvidence: evidence}, nil
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
