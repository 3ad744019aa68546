package multihop

import "context"

// Candidate is the unit returned by the retrieval collaborator.
type Candidate struct {
	Document string  `json:"document"`
	Score    float64 `json:"score"`
	Index    int     `json:"index"`
}

// RankedCandidate is a Candidate with a lexical similarity score attached.
// Ranked candidates are ephemeral and recomputed every hop.
type RankedCandidate struct {
	Candidate
	Similarity float64 `json:"similarity"`
}

// Retriever is the read-only retrieval collaborator. Implementations must be
// safe for concurrent use across runs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Candidate, error)
}

// QueryPlan is the ordered set of search queries produced before hopping.
type QueryPlan struct {
	Queries    []string
	Objectives []string
}

// HopResponse is the oracle's judgment after one evidence-gathering hop.
type HopResponse struct {
	EvidenceSummary string
	Conclusion      string
	NextQuery       string
	NextObjective   string
	// Confidence is "sufficient" or "needs_more".
	Confidence string
}

// HopInput carries everything the oracle needs to judge one hop.
type HopInput struct {
	Question             string
	Query                string
	Objective            string
	RankedContext        string
	PriorSummaries       []string
	RemainingSuggestions []string
	HopNumber            int
	MaxHops              int
}

// Synthesis is the oracle's final reasoning output.
type Synthesis struct {
	ReasoningSummary string
	Answer           string
	// Confidence is "high", "medium" or "low"; "unknown" when absent.
	Confidence string
}

// Validation is the oracle's answer-support check.
type Validation struct {
	IsSupported        bool   `json:"is_supported"`
	SupportingEvidence string `json:"supporting_evidence"`
}

// Oracle abstracts the external reasoning capability. All five operations are
// slow network calls returning untrusted free text; implementations parse
// tolerantly but may still fail on transport errors.
type Oracle interface {
	Plan(ctx context.Context, question string, maxHops int) (QueryPlan, error)
	HopStep(ctx context.Context, input HopInput) (HopResponse, error)
	Compress(ctx context.Context, fullContext string) (string, error)
	Synthesize(ctx context.Context, question, fullContext string, queriesUsed, evidenceSummaries []string) (Synthesis, error)
	Validate(ctx context.Context, question, fullContext, answer string) (Validation, error)
}

// HopRecord is the audit trail entry for one executed hop.
type HopRecord struct {
	HopIndex        int    `json:"hop_index"`
	Query           string `json:"query"`
	Objective       string `json:"objective"`
	EvidenceSummary string `json:"evidence_summary"`
	Conclusion      string `json:"conclusion"`
	NextQuery       string `json:"next_query,omitempty"`
	NextObjective   string `json:"next_objective,omitempty"`
	StopReason      string `json:"stop_reason,omitempty"`
}

// RunResult is the immutable outcome of one orchestration run.
type RunResult struct {
	Question          string     `json:"question"`
	Answer            string     `json:"answer"`
	Confidence        string     `json:"confidence"`
	ReasoningSummary  string     `json:"reasoning_summary"`
	QueriesUsed       []string   `json:"queries_used"`
	QueryObjectives   []string   `json:"query_objectives"`
	EvidenceSummaries []string   `json:"evidence_summaries"`
	HopConclusions    []string   `json:"hop_conclusions"`
	NumHops           int        `json:"num_hops"`
	// StopReason records how the hop loop ended, even when it ends before
	// any hop commits a record.
	StopReason string      `json:"stop_reason,omitempty"`
	Validation Validation  `json:"validation"`
	Hops       []HopRecord `json:"hops,omitempty"`
}

// Stop reasons recorded on the final hop of a run.
const (
	StopReasonDone       = "done"
	StopReasonSufficient = "confidence_sufficient"
	StopReasonMaxHops    = "max_hops"
	StopReasonNoEvidence = "no new evidence"
	StopReasonBadOutput  = "unparseable follow-up"
)
