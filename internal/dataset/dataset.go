package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"hopqa/internal/logging"
	"hopqa/internal/multihop"
	"hopqa/internal/retrieval"
)

// Example is one HotpotQA question with its context paragraphs.
type Example struct {
	ID              string           `json:"_id"`
	Question        string           `json:"question"`
	Answer          string           `json:"answer"`
	Type            string           `json:"type"`
	Level           string           `json:"level"`
	Context         []Paragraph      `json:"context"`
	SupportingFacts []SupportingFact `json:"supporting_facts"`
}

// Paragraph is a titled list of sentences. The raw dump encodes it as a
// two-element array: [title, [sentences...]].
type Paragraph struct {
	Title     string
	Sentences []string
}

// SupportingFact points at one sentence: [title, sentence index].
type SupportingFact struct {
	Title      string
	SentenceID int
}

func (p *Paragraph) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("paragraph: expected [title, sentences], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Title); err != nil {
		return fmt.Errorf("paragraph title: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Sentences); err != nil {
		return fmt.Errorf("paragraph sentences: %w", err)
	}
	return nil
}

func (f *SupportingFact) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("supporting fact: expected [title, sent_id], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &f.Title); err != nil {
		return fmt.Errorf("supporting fact title: %w", err)
	}
	if err := json.Unmarshal(raw[1], &f.SentenceID); err != nil {
		return fmt.Errorf("supporting fact sent_id: %w", err)
	}
	return nil
}

// Load reads a raw HotpotQA JSON dump (an array of examples).
func Load(path string, logger logging.Logger) ([]Example, error) {
	logger = logging.OrNop(logger)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var examples []Example
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	logger.Info("loaded %d examples from %s", len(examples), path)
	return examples, nil
}

// FilterByLevel keeps examples of the given difficulty ("easy", "medium",
// "hard"). An empty level keeps everything.
func FilterByLevel(examples []Example, level string) []Example {
	if level == "" {
		return examples
	}
	var out []Example
	for _, ex := range examples {
		if strings.EqualFold(ex.Level, level) {
			out = append(out, ex)
		}
	}
	return out
}

// Split partitions examples into train and dev by fraction.
func Split(examples []Example, trainFraction float64) (train, dev []Example) {
	if trainFraction <= 0 {
		return nil, examples
	}
	if trainFraction >= 1 {
		return examples, nil
	}
	cut := int(float64(len(examples)) * trainFraction)
	return examples[:cut], examples[cut:]
}

// Passages extracts every context sentence as an indexable passage, dropping
// duplicate sentences across examples. IDs are deterministic so re-indexing
// the same dump overwrites rather than duplicates.
func Passages(examples []Example, maxExamples int) []retrieval.Passage {
	if maxExamples > 0 && maxExamples < len(examples) {
		examples = examples[:maxExamples]
	}

	var passages []retrieval.Passage
	seen := make(map[string]bool)
	for _, ex := range examples {
		for _, para := range ex.Context {
			for i, sentence := range para.Sentences {
				content := strings.TrimSpace(sentence)
				if content == "" {
					continue
				}
				fingerprint := multihop.Normalize(content)
				if seen[fingerprint] {
					continue
				}
				seen[fingerprint] = true
				passages = append(passages, retrieval.Passage{
					ID:      fmt.Sprintf("%s/%s/%d", ex.ID, para.Title, i),
					Content: content,
					Metadata: map[string]string{
						"title": para.Title,
						"level": ex.Level,
					},
				})
			}
		}
	}
	return passages
}

// SupportingSentences resolves an example's supporting facts to sentence text,
// skipping facts whose title or index does not resolve.
func SupportingSentences(ex Example) []string {
	byTitle := make(map[string][]string, len(ex.Context))
	for _, para := range ex.Context {
		byTitle[para.Title] = para.Sentences
	}

	var facts []string
	for _, fact := range ex.SupportingFacts {
		sentences, ok := byTitle[fact.Title]
		if !ok || fact.SentenceID < 0 || fact.SentenceID >= len(sentences) {
			continue
		}
		facts = append(facts, strings.TrimSpace(sentences[fact.SentenceID]))
	}
	return facts
}
