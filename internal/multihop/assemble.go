package multihop

// assembleResult collects the run's audit trail and the synthesis outcome
// into an immutable RunResult. Pure aggregation; the only logic is defaulting
// absent fields.
func assembleResult(state *runState, synthesis Synthesis, validation Validation) *RunResult {
	confidence := synthesis.Confidence
	if confidence == "" {
		confidence = "unknown"
	}

	conclusions := make([]string, 0, len(state.records))
	for _, record := range state.records {
		if record.Conclusion != "" {
			conclusions = append(conclusions, record.Conclusion)
		}
	}

	return &RunResult{
		Question:          state.question,
		Answer:            synthesis.Answer,
		Confidence:        confidence,
		ReasoningSummary:  synthesis.ReasoningSummary,
		QueriesUsed:       append([]string(nil), state.queries...),
		QueryObjectives:   append([]string(nil), state.objectives...),
		EvidenceSummaries: append([]string(nil), state.summaries...),
		HopConclusions:    conclusions,
		NumHops:           len(state.records),
		StopReason:        state.stopReason,
		Validation:        validation,
		Hops:              append([]HopRecord(nil), state.records...),
	}
}
