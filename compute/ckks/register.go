package ckks

import (
	"qproof.io/qpo/compute"
	"qproof.io/qpo/compute/registry"
)

func init() {
	registry.MustRegister(registry.Factory{
		Name:        backendName,
		Description: "CKKS homomorphic evaluation (lattigo)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		Open: func(cfg registry.Config) (compute.Backend, error) {
			return New(Params{LogN: cfg.LogN, LogDefaultScale: cfg.LogDefaultScale}, cfg.Transform)
		},
	})
}
