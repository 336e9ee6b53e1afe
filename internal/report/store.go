package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mmr-tortoise/matrixctl/internal/model"
)

// Journal file names inside the work directory.
const (
	resultsFile = "results.json"
	timesFile   = "times.json"
)

// Store reads and writes the journal files for one work directory.
type Store struct {
	// dir is the work directory holding the journals.
	dir string
}

// NewStore creates a Store for the given work directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// resultsDocument is the on-disk shape of results.json.
type resultsDocument struct {
	// UpdatedAt is when the journal was last rewritten.
	UpdatedAt time.Time `json:"updatedAt"`

	// Results maps environment name to its last recorded outcome.
	Results map[string]model.EnvResult `json:"results"`
}

// RecordSummary merges a run summary into both journals: each
// environment's last outcome replaces the previous one, and terminal
// non-skipped runs update the timing history.
func (s *Store) RecordSummary(summary *model.RunSummary) error {
	results, err := s.LastResults()
	if err != nil {
		return err
	}
	if results == nil {
		results = make(map[string]model.EnvResult)
	}

	timings, err := s.Timings()
	if err != nil {
		return err
	}
	if timings == nil {
		timings = make(map[string]time.Duration)
	}

	for _, r := range summary.Results {
		// Only final outcomes belong in the journal; a pending or
		// running entry would be stale the moment it was written.
		// Skipped runs carry no signal worth recording either.
		if !r.Status.IsTerminal() || r.Status == model.StatusSkipped {
			continue
		}
		results[r.Name] = r
		if r.Duration > 0 {
			timings[r.Name] = r.Duration
		}
	}

	if err := s.writeJSON(resultsFile, resultsDocument{
		UpdatedAt: time.Now().UTC(),
		Results:   results,
	}); err != nil {
		return err
	}

	secs := make(map[string]float64, len(timings))
	for name, d := range timings {
		secs[name] = d.Seconds()
	}
	return s.writeJSON(timesFile, secs)
}

// LastResults loads the last recorded outcome per environment. A missing
// journal returns nil without error: a fresh checkout has no history.
func (s *Store) LastResults() (map[string]model.EnvResult, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, resultsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results journal: %w", err)
	}

	var doc resultsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse results journal: %w", err)
	}
	return doc.Results, nil
}

// Timings loads the duration history. A missing journal returns nil
// without error.
func (s *Store) Timings() (map[string]time.Duration, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, timesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read timing journal: %w", err)
	}

	var secs map[string]float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return nil, fmt.Errorf("failed to parse timing journal: %w", err)
	}

	timings := make(map[string]time.Duration, len(secs))
	for name, s := range secs {
		timings[name] = time.Duration(s * float64(time.Second))
	}
	return timings, nil
}

// OrderSlowestFirst returns the names reordered so historically slow
// environments start first. Names without history sort after known ones,
// keeping their relative order; ties keep configuration order. Slow-first
// scheduling minimizes the tail of a parallel run.
func OrderSlowestFirst(names []string, timings map[string]time.Duration) []string {
	ordered := append([]string(nil), names...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return timings[ordered[i]] > timings[ordered[j]]
	})
	return ordered
}

// writeJSON writes a journal file via a temp-file rename so a crash
// mid-write never leaves a truncated journal behind.
func (s *Store) writeJSON(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create work directory %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp journal: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
