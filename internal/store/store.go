// Package store persists one engine run's metadata and tuning log to disk,
// and reloads it for the CLI's list/export commands: a run-directory
// layout of metadata.json plus a CSV detail file per run.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cellgrid/autotune/internal/autotune"
	"github.com/cellgrid/autotune/internal/engine"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store { return &Store{baseDir: baseDir} }

func (s *Store) Init() error { return os.MkdirAll(s.baseDir, 0755) }

// RunMetadata summarizes one engine run: what scenario produced it, how
// long it ran, and which configuration the tuner ultimately committed to.
type RunMetadata struct {
	ID          string    `json:"id"`
	Scenario    string    `json:"scenario"`
	Timestamp   time.Time `json:"timestamp"`
	Seed        int64     `json:"seed"`
	Strategy    string    `json:"strategy"`
	StepsTaken  int       `json:"steps_taken"`
	FinalConfig string    `json:"final_config"`
	ErrorCount  int       `json:"error_count"`
}

// Save writes metadata.json and tuning_log.csv under baseDir/<runID>,
// returning the generated run ID.
func (s *Store) Save(scenario string, seed int64, strategy string, result *engine.Result, log []autotune.LogEntry) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var finalConfig string
	if len(result.Configs) > 0 {
		finalConfig = result.Configs[len(result.Configs)-1].String()
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    scenario,
		Timestamp:   time.Now(),
		Seed:        seed,
		Strategy:    strategy,
		StepsTaken:  result.StepsTaken,
		FinalConfig: finalConfig,
		ErrorCount:  len(result.Errors),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeLog(filepath.Join(runDir, "tuning_log.csv"), log); err != nil {
		return "", err
	}

	return runID, nil
}

func writeLog(path string, log []autotune.LogEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"phase", "container", "traversal", "layout", "newton3", "cell_size_factor", "committed", "error"}); err != nil {
		return err
	}
	for _, e := range log {
		errStr := ""
		if e.Err != nil {
			errStr = e.Err.Error()
		}
		row := []string{
			strconv.Itoa(e.Phase),
			e.Config.Container,
			e.Config.Traversal,
			e.Config.Layout.String(),
			strconv.FormatBool(e.Config.Newton3),
			strconv.FormatFloat(e.Config.CellSizeFactor, 'f', 4, 64),
			strconv.FormatBool(e.Committed),
			errStr,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadLog reparses a run's tuning_log.csv back into rows of raw strings,
// since autotune.LogEntry isn't itself JSON/CSV round-trippable (it embeds
// an error). Callers that just want to display the log use this directly.
func (s *Store) LoadLog(runID string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "tuning_log.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
