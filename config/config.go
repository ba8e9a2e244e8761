// Package config loads pipeline configuration.
//
// Decision thresholds and CKKS parameters are configuration, not code:
// operators tune them per deployment without touching the pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for the pipeline and its daemon.
type Config struct {
	Compute  ComputeConfig  `yaml:"compute"`
	Decision DecisionConfig `yaml:"decision"`
	Proof    ProofConfig    `yaml:"proof"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Server   ServerConfig   `yaml:"server"`
}

// ProofConfig selects the proof system backing the verification gate.
type ProofConfig struct {
	// System names a proof engine: "hash-commitment" or "groth16".
	System string `yaml:"system"`
}

// ComputeConfig selects and parameterizes the compute backend.
type ComputeConfig struct {
	// Backend names a registered compute backend ("ckks" or "plain").
	Backend string `yaml:"backend"`
	// LogN is the CKKS ring dimension exponent.
	LogN int `yaml:"log_n"`
	// LogDefaultScale is the CKKS encoding scale exponent.
	LogDefaultScale int `yaml:"log_default_scale"`
	// RiskOffset and RiskRatio define the affine risk transform
	// (value - RiskOffset) * RiskRatio evaluated under encryption.
	RiskOffset float64 `yaml:"risk_offset"`
	RiskRatio  float64 `yaml:"risk_ratio"`
}

// DecisionConfig holds the tri-state classification thresholds applied to
// the risk signal. Signals strictly below ApproveBelow are approved,
// signals at or above RejectAtOrAbove are rejected, everything between is
// routed to review.
type DecisionConfig struct {
	ApproveBelow    float64 `yaml:"approve_below"`
	RejectAtOrAbove float64 `yaml:"reject_at_or_above"`
}

// ArchiveConfig configures the optional content-addressed audit archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Root    string `yaml:"root"`
	// Replica is an optional second root; writes are replicated to it.
	Replica string `yaml:"replica"`
}

// ServerConfig configures the gRPC daemon.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file is supplied.
//
// The risk transform mirrors the reference demo: a credit-score-like value
// in [300, 850] maps onto a [0, 100] risk signal via (x-300)*2/11.
func Default() Config {
	return Config{
		Compute: ComputeConfig{
			Backend:         "ckks",
			LogN:            13,
			LogDefaultScale: 40,
			RiskOffset:      300,
			RiskRatio:       0.18181818,
		},
		Decision: DecisionConfig{
			ApproveBelow:    40,
			RejectAtOrAbove: 75,
		},
		Proof: ProofConfig{
			System: "hash-commitment",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Root:    "",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:7711",
		},
	}
}

// Load reads a YAML config file, layering it over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Compute.Backend == "" {
		return fmt.Errorf("config: compute.backend is required")
	}
	if c.Compute.LogN < 10 || c.Compute.LogN > 16 {
		return fmt.Errorf("config: compute.log_n %d outside [10, 16]", c.Compute.LogN)
	}
	if c.Compute.LogDefaultScale <= 0 {
		return fmt.Errorf("config: compute.log_default_scale must be positive")
	}
	if c.Compute.RiskRatio <= 0 {
		return fmt.Errorf("config: compute.risk_ratio must be positive")
	}
	if c.Decision.ApproveBelow < 0 || c.Decision.RejectAtOrAbove <= c.Decision.ApproveBelow {
		return fmt.Errorf("config: decision thresholds must satisfy 0 <= approve_below < reject_at_or_above")
	}
	switch c.Proof.System {
	case "hash-commitment", "groth16":
	default:
		return fmt.Errorf("config: unknown proof.system %q", c.Proof.System)
	}
	if c.Archive.Enabled && c.Archive.Root == "" {
		return fmt.Errorf("config: archive.root is required when archive is enabled")
	}
	return nil
}
