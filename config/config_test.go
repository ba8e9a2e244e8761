package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Validates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoad_LayersOverDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qpo.yaml")
	body := "decision:\n  approve_below: 30\n  reject_at_or_above: 60\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Decision.ApproveBelow != 30 || cfg.Decision.RejectAtOrAbove != 60 {
		t.Fatalf("thresholds not applied: %+v", cfg.Decision)
	}
	if cfg.Compute.Backend != "ckks" {
		t.Fatalf("defaults lost: %+v", cfg.Compute)
	}
}

func TestValidate_RejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.Decision.ApproveBelow = 80
	cfg.Decision.RejectAtOrAbove = 40
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for inverted thresholds")
	}
}

func TestValidate_ArchiveNeedsRoot(t *testing.T) {
	cfg := Default()
	cfg.Archive.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for enabled archive without root")
	}
}
