package multihop

import "testing"

func candidate(doc string) Candidate {
	return Candidate{Document: doc, Score: 0.5}
}

func TestFilterUniqueRemovesDuplicates(t *testing.T) {
	seen := NewSeenContentSet()
	candidates := []Candidate{
		candidate("Ashutosh Gowariker directed the film Lagaan."),
		candidate("ashutosh   gowariker DIRECTED the film lagaan."), // same fingerprint
		candidate("Lagaan was released in the year 2001."),
	}

	unique := FilterUnique(candidates, seen)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique candidates, got %d", len(unique))
	}
	if unique[0].Document != candidates[0].Document || unique[1].Document != candidates[2].Document {
		t.Errorf("order not preserved: %+v", unique)
	}
}

func TestFilterUniqueIsSetSafe(t *testing.T) {
	seen := NewSeenContentSet()
	candidates := []Candidate{
		candidate("Ashutosh Gowariker directed the film Lagaan."),
		candidate("Lagaan was released in the year 2001."),
	}

	first := FilterUnique(candidates, seen)
	if len(first) != 2 {
		t.Fatalf("first pass: expected 2, got %d", len(first))
	}

	second := FilterUnique(candidates, seen)
	if len(second) != 0 {
		t.Errorf("second pass with same seen set should be empty, got %d", len(second))
	}
}

func TestFilterUniqueLengthFloor(t *testing.T) {
	seen := NewSeenContentSet()
	candidates := []Candidate{
		candidate("short passage"),         // 13 chars normalized, rejected
		candidate("exactly twenty chars!"), // 21 chars, accepted
		candidate(""),
	}

	unique := FilterUnique(candidates, seen)
	if len(unique) != 1 {
		t.Fatalf("expected 1 candidate above the floor, got %d", len(unique))
	}
	if unique[0].Document != "exactly twenty chars!" {
		t.Errorf("wrong survivor: %q", unique[0].Document)
	}

	// Short candidates are rejected for length, not recorded as seen.
	if seen.Contains(Normalize("short passage")) {
		t.Error("length-rejected candidate must not enter the seen set")
	}
}

func TestFilterUniqueCrossHop(t *testing.T) {
	seen := NewSeenContentSet()
	hop0 := []Candidate{candidate("Ashutosh Gowariker directed the film Lagaan.")}
	hop1 := []Candidate{
		candidate("Ashutosh Gowariker directed the film Lagaan."),
		candidate("Gowariker is an Indian film director."),
	}

	FilterUnique(hop0, seen)
	unique := FilterUnique(hop1, seen)
	if len(unique) != 1 || unique[0].Document != "Gowariker is an Indian film director." {
		t.Errorf("cross-hop dedup failed: %+v", unique)
	}
}
