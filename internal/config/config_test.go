package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cellgrid/autotune/internal/migration"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cutoff <= 0 {
		t.Error("cutoff should be positive")
	}
	if cfg.Skin < 0 {
		t.Error("skin should be non-negative")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("lj-fluid", "dense")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.ParticleCount != 2000 {
		t.Errorf("expected particle count 2000, got %d", cfg.ParticleCount)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("lj-fluid", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "dense"); cfg != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("lj-fluid")
	if len(presets) == 0 {
		t.Error("expected presets for lj-fluid")
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestBoundaryConfigToMigrationConfig(t *testing.T) {
	b := BoundaryConfig{XMin: "reflective", XMax: "none", YMin: "periodic", YMax: "periodic", ZMin: "periodic", ZMax: "periodic"}
	mc := b.ToMigrationConfig()
	if mc.Faces[migration.FaceXMin] != migration.Reflective {
		t.Errorf("expected x_min reflective, got %v", mc.Faces[migration.FaceXMin])
	}
	if mc.Faces[migration.FaceXMax] != migration.None {
		t.Errorf("expected x_max none, got %v", mc.Faces[migration.FaceXMax])
	}
	if mc.Faces[migration.FaceYMin] != migration.Periodic {
		t.Errorf("expected y_min periodic, got %v", mc.Faces[migration.FaceYMin])
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")

	cfg := GetPreset("lj-fluid", "wall-bounded")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ParticleCount != cfg.ParticleCount {
		t.Errorf("expected particle count %d, got %d", cfg.ParticleCount, loaded.ParticleCount)
	}
	if loaded.Boundaries.XMin != "reflective" {
		t.Errorf("expected x_min reflective, got %s", loaded.Boundaries.XMin)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/scenario.yaml"); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}
