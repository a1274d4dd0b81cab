package rmconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() is not valid: %v", err)
	}
	d := Default()
	if d.BufferPoolFrames != 5 || d.ReplacementPolicy != "lru" || d.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rm.yaml")
	if err := os.WriteFile(path, []byte("logLevel: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected overridden logLevel, got %q", cfg.LogLevel)
	}
	if cfg.BufferPoolFrames != 5 || cfg.ReplacementPolicy != "lru" {
		t.Fatalf("expected default frames/policy to survive partial override: %+v", cfg)
	}
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rm.yaml")
	if err := os.WriteFile(path, []byte("replacementPolicy: mru\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown replacementPolicy")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
