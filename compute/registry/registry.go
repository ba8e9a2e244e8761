// Package registry names compute backends so binaries can select one
// without linking the orchestrator to any concrete implementation.
//
// In Go, "plugins" are linked at build time: a backend registers itself via
// init(), and is enabled in a binary by importing the backend package
// (often as a blank import).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"qproof.io/qpo/compute"
)

// Usage restricts which programs should accept a given backend.
type Usage uint8

const (
	// UsageCLI indicates the backend should be available in CLI programs (e.g. qpo).
	UsageCLI Usage = 1 << iota
	// UsageDaemon indicates the backend should be available in long-running daemons (e.g. qpod).
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }

// Config carries backend construction parameters resolved from the
// operator's configuration.
type Config struct {
	LogN            int
	LogDefaultScale int
	Transform       compute.Transform
}

// Factory is a build-time plugin that can open a compute.Backend.
type Factory struct {
	Name        string
	Description string
	Usage       Usage

	// Open constructs the backend from cfg.
	Open func(cfg Config) (compute.Backend, error)
}

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers a backend factory.
func Register(f Factory) error {
	if f.Name == "" {
		return fmt.Errorf("registry: backend name is required")
	}
	if f.Open == nil {
		return fmt.Errorf("registry: backend %q missing Open", f.Name)
	}
	if f.Usage == 0 {
		return fmt.Errorf("registry: backend %q missing Usage", f.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[f.Name]; exists {
		return fmt.Errorf("registry: backend %q already registered", f.Name)
	}
	factories[f.Name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(f Factory) {
	if err := Register(f); err != nil {
		panic(err)
	}
}

// List returns factories matching usage, sorted by name.
func List(usage Usage) []Factory {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Factory, 0, len(factories))
	for _, f := range factories {
		if f.Usage.allows(usage) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns factory names matching usage, sorted.
func Names(usage Usage) []string {
	fs := List(usage)
	n := make([]string, 0, len(fs))
	for _, f := range fs {
		n = append(n, f.Name)
	}
	return n
}

// Open opens the named backend if it exists and matches usage.
func Open(name string, usage Usage, cfg Config) (compute.Backend, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", name)
	}
	if !f.Usage.allows(usage) {
		return nil, fmt.Errorf("backend %q not supported in this binary", name)
	}
	return f.Open(cfg)
}
