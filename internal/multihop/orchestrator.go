package multihop

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hopqa/internal/logging"
)

// DefaultObjective is used when the planner supplies no objective for a query.
const DefaultObjective = "gather evidence to answer the question"

// StopPolicy selects which follow-up signals terminate the hop loop. The
// max-hops bound always applies.
type StopPolicy struct {
	// StopOnDone stops when the oracle returns the DONE sentinel.
	StopOnDone bool
	// StopOnConfidence stops when the oracle judges evidence sufficient.
	StopOnConfidence bool
}

// Config tunes one orchestrator. The zero value selects sensible defaults.
type Config struct {
	MaxHops          int
	RetrieveK        int
	RankTopK         int
	ContextBudget    int
	StepTimeout      time.Duration
	SynthesisTimeout time.Duration
	StopPolicy       *StopPolicy
}

func (c *Config) applyDefaults() {
	if c.MaxHops <= 0 {
		c.MaxHops = 3
	}
	if c.RetrieveK <= 0 {
		c.RetrieveK = 10
	}
	if c.RankTopK <= 0 {
		c.RankTopK = 5
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = 120 * time.Second
	}
	if c.SynthesisTimeout <= 0 {
		c.SynthesisTimeout = 180 * time.Second
	}
	if c.StopPolicy == nil {
		c.StopPolicy = &StopPolicy{StopOnDone: true, StopOnConfidence: true}
	}
}

// Orchestrator drives multi-hop question answering: plan queries, retrieve
// and deduplicate passages, rank them, ask the oracle for per-hop judgments,
// and synthesize a final answer. One orchestrator serves concurrent runs;
// all mutable state lives in a per-run context created inside Run.
type Orchestrator struct {
	config    Config
	retriever Retriever
	oracle    Oracle
	ranker    *Ranker
	budget    *BudgetManager
	metrics   *Metrics
	logger    logging.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics overrides the shared default metrics (tests supply a fresh
// registry through this).
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an orchestrator over the given collaborators.
func New(retriever Retriever, oracle Oracle, config Config, logger logging.Logger, opts ...Option) *Orchestrator {
	config.applyDefaults()
	logger = logging.OrNop(logger)
	o := &Orchestrator{
		config:    config,
		retriever: retriever,
		oracle:    oracle,
		ranker:    NewRanker(RankerConfig{}, logger),
		budget:    NewBudgetManager(config.ContextBudget, oracle, logger),
		metrics:   defaultMetrics(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// runState is the per-run mutable state: created at the start of Run,
// discarded at the end. Nothing here is shared across runs.
type runState struct {
	question   string
	maxHops    int
	seen       SeenContentSet
	acc        *ContextAccumulator
	records    []HopRecord
	queries    []string
	objectives []string
	summaries  []string
	remaining  []plannedQuery
	current    plannedQuery
	stopReason string
}

type plannedQuery struct {
	query     string
	objective string
}

// Run answers one question using at most maxHops retrieve-and-reason cycles.
// maxHops <= 0 selects the configured default.
func (o *Orchestrator) Run(ctx context.Context, question string, maxHops int) (*RunResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	if maxHops <= 0 {
		maxHops = o.config.MaxHops
	}

	o.metrics.IncActiveRuns()
	defer o.metrics.DecActiveRuns()
	start := time.Now()

	result, err := o.run(ctx, question, maxHops)
	if err != nil {
		o.metrics.ObserveRun("error", time.Since(start))
		return nil, err
	}
	o.metrics.ObserveRun("ok", time.Since(start))
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, question string, maxHops int) (*RunResult, error) {
	state := &runState{
		question: question,
		maxHops:  maxHops,
		seen:     NewSeenContentSet(),
		acc:      NewContextAccumulator(),
	}

	o.plan(ctx, state)

	if err := o.hopLoop(ctx, state); err != nil {
		return nil, err
	}

	return o.synthesize(ctx, state)
}

// plan asks the oracle for a query plan and establishes the first query. Any
// planner failure or empty plan falls back to the question itself.
func (o *Orchestrator) plan(ctx context.Context, state *runState) {
	planCtx, cancel := context.WithTimeout(ctx, o.config.StepTimeout)
	defer cancel()

	plan, err := o.oracle.Plan(planCtx, state.question, state.maxHops)
	if err != nil {
		o.logger.Warn("query planning failed, falling back to the question: %v", err)
	}

	var planned []plannedQuery
	for i, raw := range plan.Queries {
		query := CleanLine(raw)
		if query == "" {
			continue
		}
		objective := DefaultObjective
		if i < len(plan.Objectives) {
			if cleaned := CleanLine(plan.Objectives[i]); cleaned != "" {
				objective = cleaned
			}
		}
		planned = append(planned, plannedQuery{query: query, objective: objective})
		if len(planned) == state.maxHops {
			break
		}
	}
	if len(planned) == 0 {
		planned = []plannedQuery{{query: state.question, objective: DefaultObjective}}
	}

	state.current = planned[0]
	state.remaining = planned[1:]
	o.logger.Debug("plan: %d queries, first %q", len(planned), state.current.query)
}

// hopLoop executes up to maxHops retrieve-dedup-rank-judge cycles.
func (o *Orchestrator) hopLoop(ctx context.Context, state *runState) error {
	for hop := 0; hop < state.maxHops; hop++ {
		// Cooperative cancellation point: a hop either runs to commit or
		// not at all.
		if err := ctx.Err(); err != nil {
			return err
		}

		candidates, err := o.retriever.Retrieve(ctx, state.current.query, o.config.RetrieveK)
		if err != nil {
			// Answering from partial context would be misleading; surface
			// the failure and let the caller retry the whole request.
			return fmt.Errorf("retrieve hop %d %q: %w", hop, state.current.query, err)
		}

		unique := FilterUnique(candidates, state.seen)
		if len(unique) == 0 {
			o.logger.Info("hop %d: no new evidence for %q, stopping", hop, state.current.query)
			state.stopReason = StopReasonNoEvidence
			o.markStop(state, StopReasonNoEvidence)
			return nil
		}

		ranked := o.ranker.Rank(state.question, unique, o.config.RankTopK)
		rankedContext := FormatRankedContext(ranked)

		stepCtx, cancel := context.WithTimeout(ctx, o.config.StepTimeout)
		resp, err := o.oracle.HopStep(stepCtx, HopInput{
			Question:             state.question,
			Query:                state.current.query,
			Objective:            state.current.objective,
			RankedContext:        rankedContext,
			PriorSummaries:       state.summaries,
			RemainingSuggestions: remainingQueries(state.remaining),
			HopNumber:            hop,
			MaxHops:              state.maxHops,
		})
		cancel()

		record := HopRecord{
			HopIndex:  hop,
			Query:     state.current.query,
			Objective: state.current.objective,
		}

		if err != nil {
			// Malformed or timed-out follow-up degrades to a terminal hop;
			// the retrieved evidence still counts.
			o.logger.Warn("hop %d follow-up degraded to terminal: %v", hop, err)
			record.StopReason = StopReasonBadOutput
			o.commitHop(ctx, state, record, contextBlock(ranked))
			state.stopReason = StopReasonBadOutput
			o.metrics.IncStopReason(StopReasonBadOutput)
			return nil
		}

		record.EvidenceSummary = resp.EvidenceSummary
		record.Conclusion = resp.Conclusion
		record.NextQuery = CleanLine(resp.NextQuery)
		record.NextObjective = CleanLine(resp.NextObjective)

		stop, reason := o.shouldStop(hop, state.maxHops, record.NextQuery, resp.Confidence)
		if !stop && record.NextQuery == "" {
			// A reply with no follow-up query leaves nothing to retrieve;
			// the hop is terminal.
			stop, reason = true, StopReasonBadOutput
		}
		if stop {
			record.StopReason = reason
		}
		o.commitHop(ctx, state, record, contextBlock(ranked))

		if stop {
			state.stopReason = reason
			o.metrics.IncStopReason(reason)
			o.logger.Info("hop %d: stopping (%s)", hop, reason)
			return nil
		}

		state.current = plannedQuery{query: record.NextQuery, objective: record.NextObjective}
		if state.current.objective == "" {
			state.current.objective = DefaultObjective
		}
		state.remaining = dropSuggestion(state.remaining, state.current.query)
	}
	return nil
}

// commitHop appends the hop's record and context block, then applies the
// budget manager so compression always precedes the next oracle call.
func (o *Orchestrator) commitHop(ctx context.Context, state *runState, record HopRecord, block string) {
	state.records = append(state.records, record)
	state.queries = append(state.queries, record.Query)
	state.objectives = append(state.objectives, record.Objective)
	if record.EvidenceSummary != "" {
		state.summaries = append(state.summaries, record.EvidenceSummary)
	}
	state.acc.Append(block)
	o.metrics.IncHops()

	before := state.acc.Blocks()
	if err := o.budget.MaybeCompress(ctx, state.acc); err != nil {
		// Keep the uncompressed context; an oversized prompt beats losing
		// evidence mid-run.
		o.logger.Warn("context compression failed: %v", err)
		return
	}
	if state.acc.Blocks() < before {
		o.metrics.IncCompressions()
	}
}

func (o *Orchestrator) shouldStop(hop, maxHops int, nextQuery, confidence string) (bool, string) {
	if o.config.StopPolicy.StopOnDone && strings.EqualFold(nextQuery, "DONE") {
		return true, StopReasonDone
	}
	if o.config.StopPolicy.StopOnConfidence && strings.EqualFold(strings.TrimSpace(confidence), "sufficient") {
		return true, StopReasonSufficient
	}
	if hop == maxHops-1 {
		return true, StopReasonMaxHops
	}
	return false, ""
}

// markStop records an early-termination reason on the last executed hop, so
// the audit trail explains runs that end before any new evidence arrives.
func (o *Orchestrator) markStop(state *runState, reason string) {
	o.metrics.IncStopReason(reason)
	if len(state.records) > 0 && state.records[len(state.records)-1].StopReason == "" {
		state.records[len(state.records)-1].StopReason = reason
	}
}

// synthesize joins the accumulated context, requests the final reasoning, and
// validates the answer against the evidence.
func (o *Orchestrator) synthesize(ctx context.Context, state *runState) (*RunResult, error) {
	fullContext := state.acc.Join()

	synthCtx, cancel := context.WithTimeout(ctx, o.config.SynthesisTimeout)
	defer cancel()

	synthesis, err := o.oracle.Synthesize(synthCtx, state.question, fullContext, state.queries, state.summaries)
	if err != nil {
		return nil, fmt.Errorf("final synthesis: %w", err)
	}

	validation, err := o.oracle.Validate(synthCtx, state.question, fullContext, synthesis.Answer)
	if err != nil {
		// Validation is advisory; a failed check must not discard a
		// completed answer.
		o.logger.Warn("answer validation failed: %v", err)
		validation = Validation{}
	}

	return assembleResult(state, synthesis, validation), nil
}

func remainingQueries(remaining []plannedQuery) []string {
	out := make([]string, 0, len(remaining))
	for _, p := range remaining {
		out = append(out, p.query)
	}
	return out
}

// dropSuggestion removes a planned query once the oracle chose it as the next
// hop, so it is not re-suggested as a fresh idea.
func dropSuggestion(remaining []plannedQuery, chosen string) []plannedQuery {
	target := Normalize(chosen)
	out := remaining[:0]
	for _, p := range remaining {
		if Normalize(p.query) == target {
			continue
		}
		out = append(out, p)
	}
	return out
}

// contextBlock joins the ranked documents into the hop's context text.
func contextBlock(ranked []RankedCandidate) string {
	docs := make([]string, 0, len(ranked))
	for _, rc := range ranked {
		docs = append(docs, rc.Document)
	}
	return strings.Join(docs, "\n")
}

// FormatRankedContext renders ranked passages for oracle consumption.
func FormatRankedContext(ranked []RankedCandidate) string {
	if len(ranked) == 0 {
		return "No passages found."
	}
	var sb strings.Builder
	for i, rc := range ranked {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%d] (relevance %.3f) %s", i+1, rc.Similarity, strings.TrimSpace(rc.Document))
	}
	return sb.String()
}

var listPrefixRe = regexp.MustCompile(`^(\d+[.)]\s*)+`)

// CleanLine strips a leading "<digits>. " list prefix and surrounding
// whitespace from an oracle-produced line. Oracle output is free text and
// must not be trusted to omit numbering.
func CleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = listPrefixRe.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}
