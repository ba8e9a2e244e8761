package plain

import (
	"qproof.io/qpo/compute"
	"qproof.io/qpo/compute/registry"
)

func init() {
	registry.MustRegister(registry.Factory{
		Name:        backendName,
		Description: "plaintext fallback evaluation",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		Open: func(cfg registry.Config) (compute.Backend, error) {
			return New(cfg.Transform), nil
		},
	})
}
