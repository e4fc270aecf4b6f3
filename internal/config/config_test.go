package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != (Config{}) {
		t.Fatalf("expected zero Config, got %+v", cfg)
	}
}

func TestSaveLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eelc.json")
	want := &Config{Target: "esp32@1.0", Verbose: true, JSON: true}
	if err := want.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestApplyFlagOverrides_ExplicitFlagWins(t *testing.T) {
	cfg := &Config{Target: "avr", Verbose: false}
	cfg.ApplyFlagOverrides("esp32", true, false, false, false, false, true, true, false, false, false, false)

	if cfg.Target != "esp32" {
		t.Fatalf("expected explicit target flag to override loaded config, got %q", cfg.Target)
	}
	if !cfg.Verbose {
		t.Fatalf("expected explicit verbose flag to override loaded config")
	}
}

func TestApplyFlagOverrides_UnsetFlagDefersToLoadedConfig(t *testing.T) {
	cfg := &Config{Target: "rp2040", Debug: true}
	cfg.ApplyFlagOverrides("", false, false, false, false, false, false, false, false, false, false, false)

	if cfg.Target != "rp2040" {
		t.Fatalf("expected unset target flag to leave loaded config alone, got %q", cfg.Target)
	}
	if !cfg.Debug {
		t.Fatalf("expected unset debug flag to leave loaded config alone")
	}
}
