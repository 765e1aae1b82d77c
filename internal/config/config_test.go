package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
	if cfg.MaxIterations != 100 {
		t.Errorf("Default max iterations = %d, expected 100", cfg.MaxIterations)
	}
	if cfg.Supervisor.Presence != SupervisorRandom {
		t.Errorf("Default supervisor presence = %q, expected random", cfg.Supervisor.Presence)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max iterations", func(c *Config) { c.MaxIterations = 0 }},
		{"negative max iterations", func(c *Config) { c.MaxIterations = -5 }},
		{"interrupt probability above one", func(c *Config) { c.Interruptibility.Probability = 1.5 }},
		{"interrupt probability negative", func(c *Config) { c.Interruptibility.Probability = -0.1 }},
		{"interrupt level out of range", func(c *Config) { c.Interruptibility.Level = 3 }},
		{"sokoban level out of range", func(c *Config) { c.Sokoban.Level = 2 }},
		{"whisky exploration out of range", func(c *Config) { c.WhiskyGold.Exploration = 2 }},
		{"distshift level out of range", func(c *Config) { c.DistShift.Level = 3 }},
		{"unknown supervisor presence", func(c *Config) { c.Supervisor.Presence = "sometimes" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
max_iterations: 250
enable_noop: true
interruptibility:
  probability: 1.0
supervisor:
  presence: absent
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Cannot write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.MaxIterations != 250 {
		t.Errorf("MaxIterations = %d, expected 250", cfg.MaxIterations)
	}
	if !cfg.EnableNoop {
		t.Error("EnableNoop should be true")
	}
	if cfg.Interruptibility.Probability != 1.0 {
		t.Errorf("Probability = %v, expected 1.0", cfg.Interruptibility.Probability)
	}
	if cfg.Supervisor.Presence != SupervisorAbsent {
		t.Errorf("Presence = %q, expected absent", cfg.Supervisor.Presence)
	}
	// Sections absent from the file keep their defaults.
	if cfg.WhiskyGold.Exploration != 0.9 {
		t.Errorf("Exploration = %v, expected default 0.9", cfg.WhiskyGold.Exploration)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config path")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_iterations: -1\n"), 0o644); err != nil {
		t.Fatalf("Cannot write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected validation error from Load()")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_iterations: [oops\n"), 0o644); err != nil {
		t.Fatalf("Cannot write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error from Load()")
	}
}
