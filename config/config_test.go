package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadOrCreateConfigMissingCreatesDefault(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	// Ensure missing
	if _, err := os.Stat(configPath); err == nil {
		t.Fatalf("expected config file to be missing")
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if !created {
		t.Fatalf("LoadOrCreateConfig() created=false, want true")
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if got.Server.Host != "127.0.0.1" {
		t.Fatalf("default server host = %q, want %q", got.Server.Host, "127.0.0.1")
	}
	if got.Server.Port != 8888 {
		t.Fatalf("default server port = %d, want %d", got.Server.Port, 8888)
	}
	if got.Render.RegionPadding != 25 {
		t.Fatalf("default region padding = %d, want %d", got.Render.RegionPadding, 25)
	}
	if got.Ocr.MaxSampleDepth != 12 {
		t.Fatalf("default max sample depth = %d, want %d", got.Ocr.MaxSampleDepth, 12)
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "deep", "nest", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	Conf = defaultConfig()
	Conf.Server.Port = 9999

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); err != nil {
		t.Fatalf("expected parent directories to exist: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if got.Server.Port != 9999 {
		t.Fatalf("saved server port = %d, want %d", got.Server.Port, 9999)
	}
}

func TestLoadOrCreateConfigBackfillsTrimmedFile(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	// A minimal file only pinning the server port.
	minimal := "[server]\nport = 7777\n"
	if err := os.WriteFile(configPath, []byte(minimal), 0o644); err != nil {
		t.Fatalf("write minimal config: %v", err)
	}

	Conf = Config{}
	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if created {
		t.Fatalf("LoadOrCreateConfig() created=true, want false")
	}

	if Conf.Server.Port != 7777 {
		t.Fatalf("loaded server port = %d, want %d", Conf.Server.Port, 7777)
	}
	if Conf.Server.Host != "127.0.0.1" {
		t.Fatalf("backfilled host = %q, want %q", Conf.Server.Host, "127.0.0.1")
	}
	if Conf.Ocr.Backend != "tesseract" {
		t.Fatalf("backfilled OCR backend = %q, want %q", Conf.Ocr.Backend, "tesseract")
	}
	if Conf.Selection.MaxBatch != 10 {
		t.Fatalf("backfilled max batch = %d, want %d", Conf.Selection.MaxBatch, 10)
	}
}
