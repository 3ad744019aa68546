package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"hopqa/internal/logging"
)

// Experiment is one saved evaluation run.
type Experiment struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	Config      map[string]any     `json:"config,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Summary is the listing view of an experiment.
type Summary struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	Metrics     map[string]float64 `json:"metrics"`
}

// MetricValue pairs an experiment with one of its metric readings.
type MetricValue struct {
	Experiment string   `json:"experiment"`
	Value      *float64 `json:"value"`
}

// Comparison lines up metrics across experiments. Value is nil for
// experiments that never recorded the metric.
type Comparison struct {
	Experiments []Summary                `json:"experiments"`
	Metrics     map[string][]MetricValue `json:"metrics_comparison"`
}

// Tracker persists experiments as one JSON file per experiment.
type Tracker struct {
	dir    string
	logger logging.Logger
}

// NewTracker creates the experiments directory if needed.
func NewTracker(dir string, logger logging.Logger) (*Tracker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create experiments dir: %w", err)
	}
	return &Tracker{dir: dir, logger: logging.OrNop(logger)}, nil
}

// Save writes an experiment, filling ID and CreatedAt when absent.
func (t *Tracker) Save(exp Experiment) (string, error) {
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	if exp.ID == "" {
		exp.ID = fmt.Sprintf("%s-%s", slugify(exp.Name), exp.CreatedAt.Format("20060102-150405"))
	}

	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal experiment: %w", err)
	}
	path := filepath.Join(t.dir, exp.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write experiment %s: %w", exp.ID, err)
	}
	t.logger.Info("saved experiment %s", exp.ID)
	return exp.ID, nil
}

// Get loads one experiment by ID.
func (t *Tracker) Get(id string) (*Experiment, error) {
	data, err := os.ReadFile(filepath.Join(t.dir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("experiment %s not found: %w", id, err)
	}
	var exp Experiment
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parse experiment %s: %w", id, err)
	}
	return &exp, nil
}

// List returns all experiments, newest first. Unreadable files are skipped
// with a warning.
func (t *Tracker) List() ([]Summary, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, fmt.Errorf("read experiments dir: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		exp, err := t.Get(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			t.logger.Warn("skipping unreadable experiment file %s: %v", entry.Name(), err)
			continue
		}
		summaries = append(summaries, Summary{
			ID:          exp.ID,
			Name:        exp.Name,
			Description: exp.Description,
			CreatedAt:   exp.CreatedAt,
			Metrics:     exp.Metrics,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Compare lines up the named experiments (by ID or name) metric by metric.
// Unknown names are logged and skipped.
func (t *Tracker) Compare(namesOrIDs []string) (*Comparison, error) {
	all, err := t.List()
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{Metrics: make(map[string][]MetricValue)}
	for _, nameOrID := range namesOrIDs {
		found := false
		for _, s := range all {
			if s.ID == nameOrID || s.Name == nameOrID {
				cmp.Experiments = append(cmp.Experiments, s)
				found = true
				break
			}
		}
		if !found {
			t.logger.Warn("no experiment found matching %q", nameOrID)
		}
	}

	metricKeys := make(map[string]bool)
	for _, s := range cmp.Experiments {
		for k := range s.Metrics {
			metricKeys[k] = true
		}
	}
	for metric := range metricKeys {
		for _, s := range cmp.Experiments {
			var value *float64
			if v, ok := s.Metrics[metric]; ok {
				value = &v
			}
			cmp.Metrics[metric] = append(cmp.Metrics[metric], MetricValue{
				Experiment: s.Name,
				Value:      value,
			})
		}
	}
	return cmp, nil
}

func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('-')
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		slug = "experiment"
	}
	return slug
}
