package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cellgrid/autotune/internal/autotune"
	"github.com/cellgrid/autotune/internal/engine"
	"github.com/cellgrid/autotune/internal/traversal"
)

func sampleResult() *engine.Result {
	return &engine.Result{
		Configs: []autotune.Config{
			{Container: "linked-cells", Traversal: "c08", Layout: traversal.AoS, Newton3: true, CellSizeFactor: 1.0},
		},
		StepsTaken: 1,
	}
}

func sampleLog() []autotune.LogEntry {
	return []autotune.LogEntry{
		{Phase: 0, Config: autotune.Config{Container: "linked-cells", Traversal: "c08", CellSizeFactor: 1.0}, Committed: true},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("lj-fluid", 42, "full-search", sampleResult(), sampleLog())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "lj-fluid" {
		t.Errorf("expected scenario 'lj-fluid', got %q", meta.Scenario)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.StepsTaken != 1 {
		t.Errorf("expected 1 step taken, got %d", meta.StepsTaken)
	}

	log, err := st.LoadLog(runID)
	if err != nil {
		t.Fatalf("load log failed: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(log))
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save("lj-fluid", 1, "full-search", sampleResult(), sampleLog()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("lj-fluid", 1, "full-search", sampleResult(), sampleLog())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(runDir, "tuning_log.csv")); os.IsNotExist(err) {
		t.Error("tuning_log.csv not created")
	}
}
