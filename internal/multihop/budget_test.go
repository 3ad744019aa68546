package multihop

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCompressor struct {
	calls   int
	summary string
	err     error
}

func (s *stubCompressor) Compress(ctx context.Context, fullContext string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func TestMaybeCompressBelowThresholdIsNoop(t *testing.T) {
	comp := &stubCompressor{summary: "summary"}
	manager := NewBudgetManager(1000, comp, nil)

	acc := NewContextAccumulator()
	acc.Append(strings.Repeat("a", 100))
	acc.Append(strings.Repeat("b", 100))

	if err := manager.MaybeCompress(context.Background(), acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comp.calls != 0 {
		t.Errorf("compressor called below threshold")
	}
	if acc.Blocks() != 2 {
		t.Errorf("blocks changed: %d", acc.Blocks())
	}
}

func TestMaybeCompressCollapsesToSingleBlock(t *testing.T) {
	comp := &stubCompressor{summary: "condensed evidence summary"}
	manager := NewBudgetManager(500, comp, nil)

	acc := NewContextAccumulator()
	for i := 0; i < 6; i++ {
		acc.Append(strings.Repeat("x", 100))
	}
	if acc.Len() != 600 {
		t.Fatalf("setup: length %d", acc.Len())
	}

	if err := manager.MaybeCompress(context.Background(), acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.Blocks() != 1 {
		t.Fatalf("collapse must leave exactly one block, got %d", acc.Blocks())
	}
	if acc.Len() != len(comp.summary) {
		t.Errorf("running length not reset: %d", acc.Len())
	}
	if acc.Join() != comp.summary {
		t.Errorf("joined context is not the summary: %q", acc.Join())
	}

	// Idempotence: the fresh block is below threshold, so a second call is
	// a no-op.
	if err := manager.MaybeCompress(context.Background(), acc); err != nil {
		t.Fatalf("second call errored: %v", err)
	}
	if comp.calls != 1 {
		t.Errorf("compressor called again after collapse: %d calls", comp.calls)
	}
	if acc.Blocks() != 1 || acc.Join() != comp.summary {
		t.Errorf("second call mutated the accumulator")
	}
}

func TestMaybeCompressFailureLeavesAccumulator(t *testing.T) {
	comp := &stubCompressor{err: errors.New("oracle down")}
	manager := NewBudgetManager(100, comp, nil)

	acc := NewContextAccumulator()
	acc.Append(strings.Repeat("x", 90))
	acc.Append(strings.Repeat("y", 90))

	err := manager.MaybeCompress(context.Background(), acc)
	if err == nil {
		t.Fatal("expected error")
	}
	if acc.Blocks() != 2 || acc.Len() != 180 {
		t.Errorf("failed compression mutated the accumulator: %d blocks, %d chars", acc.Blocks(), acc.Len())
	}
}

func TestContextAccumulatorJoin(t *testing.T) {
	acc := NewContextAccumulator()
	acc.Append("first block")
	acc.Append("second block")

	if got := acc.Join(); got != "first block\n---\nsecond block" {
		t.Errorf("unexpected join: %q", got)
	}
	if acc.Len() != len("first block")+len("second block") {
		t.Errorf("length counter wrong: %d", acc.Len())
	}
}
