package multihop

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"hopqa/internal/logging"
)

// contextBlockSeparator joins per-hop context blocks when building the full
// context text for the oracle.
const contextBlockSeparator = "\n---\n"

// ContextAccumulator holds the ordered per-hop context blocks of one run plus
// a running character counter. It is owned by a single run and mutated only
// by the orchestrator and the budget manager.
type ContextAccumulator struct {
	blocks []string
	length int
}

// NewContextAccumulator returns an empty accumulator.
func NewContextAccumulator() *ContextAccumulator {
	return &ContextAccumulator{}
}

// Append adds one context block.
func (a *ContextAccumulator) Append(block string) {
	a.blocks = append(a.blocks, block)
	a.length += len(block)
}

// Join returns all blocks joined by the block separator.
func (a *ContextAccumulator) Join() string {
	return strings.Join(a.blocks, contextBlockSeparator)
}

// Len returns the running character length of the blocks (separators
// excluded).
func (a *ContextAccumulator) Len() int {
	return a.length
}

// Blocks returns the current block count.
func (a *ContextAccumulator) Blocks() int {
	return len(a.blocks)
}

// replaceAll atomically swaps every block for a single compressed one.
func (a *ContextAccumulator) replaceAll(block string) {
	a.blocks = []string{block}
	a.length = len(block)
}

// Compressor is the oracle capability the budget manager depends on.
type Compressor interface {
	Compress(ctx context.Context, fullContext string) (string, error)
}

// BudgetManager collapses the accumulator into a single summarized block once
// the accumulated context exceeds the character threshold. The collapse is
// one-shot: immediately after it the fresh block is below threshold, so a
// second call is a no-op.
type BudgetManager struct {
	threshold  int
	compressor Compressor
	encoding   *tiktoken.Tiktoken
	logger     logging.Logger
}

// NewBudgetManager creates a budget manager. threshold <= 0 selects the
// 500000-character default.
func NewBudgetManager(threshold int, compressor Compressor, logger logging.Logger) *BudgetManager {
	if threshold <= 0 {
		threshold = 500000
	}
	// Token counts are informational only; a missing encoding file must not
	// disable compression.
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		encoding = nil
	}
	return &BudgetManager{
		threshold:  threshold,
		compressor: compressor,
		encoding:   encoding,
		logger:     logging.OrNop(logger),
	}
}

// MaybeCompress collapses acc when over budget. A compression failure leaves
// the accumulator untouched and is returned to the caller, who decides
// whether to proceed with the oversized context.
func (b *BudgetManager) MaybeCompress(ctx context.Context, acc *ContextAccumulator) error {
	if acc.Len() <= b.threshold {
		return nil
	}

	full := acc.Join()
	b.logger.Info("context budget exceeded (%d > %d chars%s), compressing %d blocks",
		acc.Len(), b.threshold, b.tokenNote(full), acc.Blocks())

	summary, err := b.compressor.Compress(ctx, full)
	if err != nil {
		return fmt.Errorf("compress context: %w", err)
	}

	acc.replaceAll(summary)
	b.logger.Info("context compressed to %d chars%s", acc.Len(), b.tokenNote(summary))
	return nil
}

func (b *BudgetManager) tokenNote(text string) string {
	if b.encoding == nil {
		return ""
	}
	return fmt.Sprintf(", ~%d tokens", len(b.encoding.Encode(text, nil, nil)))
}
