package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `[
  {
    "_id": "5a7a0693",
    "question": "What nationality is the director of Lagaan?",
    "answer": "Indian",
    "type": "bridge",
    "level": "medium",
    "context": [
      ["Lagaan", ["Lagaan is a 2001 Indian film.", " It was directed by Ashutosh Gowariker."]],
      ["Ashutosh Gowariker", ["Ashutosh Gowariker is an Indian film director."]]
    ],
    "supporting_facts": [
      ["Lagaan", 1],
      ["Ashutosh Gowariker", 0],
      ["Missing Title", 0],
      ["Lagaan", 99]
    ]
  },
  {
    "_id": "5a7a0694",
    "question": "Duplicate context example?",
    "answer": "yes",
    "type": "comparison",
    "level": "hard",
    "context": [
      ["Lagaan", ["Lagaan is a 2001 Indian film."]]
    ],
    "supporting_facts": []
  }
]`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hotpot_dev.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0o644))
	return path
}

func TestLoadParsesTupleEncoding(t *testing.T) {
	examples, err := Load(writeSample(t), nil)
	require.NoError(t, err)
	require.Len(t, examples, 2)

	ex := examples[0]
	assert.Equal(t, "What nationality is the director of Lagaan?", ex.Question)
	require.Len(t, ex.Context, 2)
	assert.Equal(t, "Lagaan", ex.Context[0].Title)
	assert.Len(t, ex.Context[0].Sentences, 2)
	require.Len(t, ex.SupportingFacts, 4)
	assert.Equal(t, 1, ex.SupportingFacts[0].SentenceID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/hotpot.json", nil)
	require.Error(t, err)
}

func TestPassagesDeduplicatesAcrossExamples(t *testing.T) {
	examples, err := Load(writeSample(t), nil)
	require.NoError(t, err)

	passages := Passages(examples, 0)
	// 3 unique sentences; the second example repeats the first one.
	require.Len(t, passages, 3)
	assert.Equal(t, "5a7a0693/Lagaan/0", passages[0].ID)
	assert.Equal(t, "Lagaan is a 2001 Indian film.", passages[0].Content)
	assert.Equal(t, "Lagaan", passages[0].Metadata["title"])
}

func TestPassagesMaxExamples(t *testing.T) {
	examples, err := Load(writeSample(t), nil)
	require.NoError(t, err)

	passages := Passages(examples, 1)
	assert.Len(t, passages, 3)
	for _, p := range passages {
		assert.Contains(t, p.ID, "5a7a0693")
	}
}

func TestFilterByLevel(t *testing.T) {
	examples, err := Load(writeSample(t), nil)
	require.NoError(t, err)

	hard := FilterByLevel(examples, "hard")
	require.Len(t, hard, 1)
	assert.Equal(t, "5a7a0694", hard[0].ID)

	all := FilterByLevel(examples, "")
	assert.Len(t, all, 2)
}

func TestSplit(t *testing.T) {
	examples := make([]Example, 10)
	train, dev := Split(examples, 0.8)
	assert.Len(t, train, 8)
	assert.Len(t, dev, 2)

	train, dev = Split(examples, 1.0)
	assert.Len(t, train, 10)
	assert.Empty(t, dev)
}

func TestSupportingSentencesSkipsUnresolvable(t *testing.T) {
	examples, err := Load(writeSample(t), nil)
	require.NoError(t, err)

	facts := SupportingSentences(examples[0])
	require.Len(t, facts, 2)
	assert.Equal(t, "It was directed by Ashutosh Gowariker.", facts[0])
	assert.Equal(t, "Ashutosh Gowariker is an Indian film director.", facts[1])
}
