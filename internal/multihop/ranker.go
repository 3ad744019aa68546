package multihop

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"hopqa/internal/logging"
)

// RankerConfig tunes the lexical relevance ranker.
type RankerConfig struct {
	// MaxFeatures caps the vocabulary size (default 5000).
	MaxFeatures int
	// MaxDocChars truncates each candidate document before vectorizing
	// (default 2000).
	MaxDocChars int
}

// Ranker orders candidate passages by tf-idf cosine similarity against the
// question. Ranking never fails: any degenerate input degrades to the
// original retrieval order.
type Ranker struct {
	config RankerConfig
	logger logging.Logger
}

// NewRanker creates a ranker.
func NewRanker(config RankerConfig, logger logging.Logger) *Ranker {
	if config.MaxFeatures == 0 {
		config.MaxFeatures = 5000
	}
	if config.MaxDocChars == 0 {
		config.MaxDocChars = 2000
	}
	return &Ranker{config: config, logger: logging.OrNop(logger)}
}

// Rank scores candidates against the question and returns the top topK by
// descending similarity. On any vectorization failure the first topK
// candidates are returned unscored in retrieval order.
func (r *Ranker) Rank(question string, candidates []Candidate, topK int) []RankedCandidate {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}

	ranked, ok := r.tryRank(question, candidates, topK)
	if !ok {
		r.logger.Warn("ranking degraded to retrieval order for %d candidates", len(candidates))
		return fallbackOrder(candidates, topK)
	}
	return ranked
}

func (r *Ranker) tryRank(question string, candidates []Candidate, topK int) ([]RankedCandidate, bool) {
	docs := make([][]string, 0, len(candidates)+1)
	docs = append(docs, tokenize(question))
	for _, c := range candidates {
		text := c.Document
		if len(text) > r.config.MaxDocChars {
			text = text[:r.config.MaxDocChars]
		}
		docs = append(docs, tokenize(text))
	}

	vocab := buildVocabulary(docs, r.config.MaxFeatures)
	if len(vocab) == 0 {
		return nil, false
	}

	// Document frequency per term across the question+candidate corpus.
	df := make([]int, len(vocab))
	vectors := make([]map[int]float64, len(docs))
	for i, terms := range docs {
		counts := make(map[int]float64)
		for _, term := range terms {
			if idx, ok := vocab[term]; ok {
				counts[idx]++
			}
		}
		for idx := range counts {
			df[idx]++
		}
		vectors[i] = counts
	}

	// Smoothed idf weighting, then L2 normalization.
	n := float64(len(docs))
	for _, vec := range vectors {
		var norm float64
		for idx, tf := range vec {
			idf := math.Log((1+n)/(1+float64(df[idx]))) + 1
			w := tf * idf
			vec[idx] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}

	questionVec := vectors[0]
	if len(questionVec) == 0 {
		// The question shares no vocabulary with the corpus; cosine scores
		// would all be zero and the order meaningless.
		return nil, false
	}

	ranked := make([]RankedCandidate, len(candidates))
	for i, c := range candidates {
		ranked[i] = RankedCandidate{
			Candidate:  c,
			Similarity: dot(questionVec, vectors[i+1]),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked, true
}

func fallbackOrder(candidates []Candidate, topK int) []RankedCandidate {
	if topK > len(candidates) {
		topK = len(candidates)
	}
	ranked := make([]RankedCandidate, topK)
	for i := 0; i < topK; i++ {
		ranked[i] = RankedCandidate{Candidate: candidates[i]}
	}
	return ranked
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, av := range a {
		if bv, ok := b[idx]; ok {
			sum += av * bv
		}
	}
	return sum
}

// tokenize lowercases, strips punctuation, removes stopwords, and emits
// unigrams plus bigrams.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	kept := words[:0]
	for _, w := range words {
		if _, stop := englishStopwords[w]; !stop {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, len(kept)*2)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// buildVocabulary maps the most frequent terms to indices, capped at
// maxFeatures. Ties are broken alphabetically for determinism.
func buildVocabulary(docs [][]string, maxFeatures int) map[string]int {
	freq := make(map[string]int)
	for _, terms := range docs {
		for _, term := range terms {
			freq[term]++
		}
	}
	if len(freq) == 0 {
		return nil
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	return vocab
}

// englishStopwords mirrors the usual english stopword list trimmed to the
// words that actually show up in encyclopedic passages.
var englishStopwords = func() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an",
		"and", "any", "are", "as", "at", "be", "because", "been", "before",
		"being", "below", "between", "both", "but", "by", "can", "did", "do",
		"does", "doing", "down", "during", "each", "few", "for", "from",
		"further", "had", "has", "have", "having", "he", "her", "here", "hers",
		"herself", "him", "himself", "his", "how", "i", "if", "in", "into",
		"is", "it", "its", "itself", "just", "me", "more", "most", "my",
		"myself", "no", "nor", "not", "now", "of", "off", "on", "once", "only",
		"or", "other", "our", "ours", "ourselves", "out", "over", "own", "s",
		"same", "she", "should", "so", "some", "such", "t", "than", "that",
		"the", "their", "theirs", "them", "themselves", "then", "there",
		"these", "they", "this", "those", "through", "to", "too", "under",
		"until", "up", "very", "was", "we", "were", "what", "when", "where",
		"which", "while", "who", "whom", "why", "will", "with", "you", "your",
		"yours", "yourself", "yourselves",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()
