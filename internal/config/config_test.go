package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.SpikeThreshold != DefaultSpikeThreshold {
		t.Errorf("SpikeThreshold = %v, want %v", cfg.SpikeThreshold, DefaultSpikeThreshold)
	}
	if len(cfg.DataFiles) != 0 {
		t.Errorf("DataFiles = %v, want empty", cfg.DataFiles)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should default to true")
	}
	if cfg.Output.Width != 80 {
		t.Errorf("Output.Width = %d, want 80", cfg.Output.Width)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `data_files:
  - /data/gold.json
  - /data/fresh.json
spike_threshold: 45
output:
  color: false
  width: 120
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.DataFiles) != 2 || cfg.DataFiles[0] != "/data/gold.json" {
		t.Errorf("DataFiles = %v", cfg.DataFiles)
	}
	if cfg.SpikeThreshold != 45 {
		t.Errorf("SpikeThreshold = %v, want 45", cfg.SpikeThreshold)
	}
	if cfg.Output.Color {
		t.Error("Output.Color should be false")
	}
	if cfg.Output.Width != 120 {
		t.Errorf("Output.Width = %d, want 120", cfg.Output.Width)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("spike_threshold: 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SpikeThreshold != 20 {
		t.Errorf("SpikeThreshold = %v, want 20", cfg.SpikeThreshold)
	}
	if cfg.Output.Width != DefaultOutput.Width {
		t.Errorf("Output.Width = %d, want default %d", cfg.Output.Width, DefaultOutput.Width)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_files: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got := expandPath("~/data/sessions.json")
	want := filepath.Join(home, "data", "sessions.json")
	if got != want {
		t.Errorf("expandPath = %q, want %q", got, want)
	}

	if got := expandPath("/abs/path.json"); got != "/abs/path.json" {
		t.Errorf("absolute path must pass through, got %q", got)
	}
}

func TestDataFilesExpanded(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_files:\n  - ~/sessions.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "sessions.json"); cfg.DataFiles[0] != want {
		t.Errorf("DataFiles[0] = %q, want %q", cfg.DataFiles[0], want)
	}
}

func TestDBPathUnderConfigDir(t *testing.T) {
	path := DBPath()
	if filepath.Base(path) != DefaultDBName {
		t.Errorf("DBPath = %q, want basename %q", path, DefaultDBName)
	}
	if filepath.Dir(path) != ConfigDir() {
		t.Errorf("DBPath dir = %q, want %q", filepath.Dir(path), ConfigDir())
	}
}
