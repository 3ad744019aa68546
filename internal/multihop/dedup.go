package multihop

// minUniqueLength is the floor below which normalized passages are treated as
// noise and never accepted as evidence.
const minUniqueLength = 20

// SeenContentSet tracks normalized-content fingerprints for one run. It is
// owned by a single run and must not be shared.
type SeenContentSet map[string]struct{}

// NewSeenContentSet returns an empty fingerprint set.
func NewSeenContentSet() SeenContentSet {
	return make(SeenContentSet)
}

// Contains reports whether the fingerprint is already present.
func (s SeenContentSet) Contains(fingerprint string) bool {
	_, ok := s[fingerprint]
	return ok
}

// FilterUnique returns the candidates whose normalized content has not been
// seen before and exceeds the minimum length, preserving order. Accepted
// fingerprints are inserted into seen, so callers re-running a hop must use
// a fresh set.
func FilterUnique(candidates []Candidate, seen SeenContentSet) []Candidate {
	unique := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		fingerprint := Normalize(c.Document)
		if len(fingerprint) <= minUniqueLength {
			continue
		}
		if seen.Contains(fingerprint) {
			continue
		}
		seen[fingerprint] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
