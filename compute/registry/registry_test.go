package registry

import (
	"context"
	"testing"

	"qproof.io/qpo/compute"
)

type fakeBackend struct{ name string }

func (f *fakeBackend) Name() string                  { return f.name }
func (f *fakeBackend) Library() (string, string)     { return "fake", "0" }
func (f *fakeBackend) Available() bool               { return true }
func (f *fakeBackend) Compute(ctx context.Context, req compute.Request) (compute.Result, error) {
	return compute.Result{Mode: compute.ModeFallback, Backend: f.name}, nil
}

func TestRegisterAndOpen(t *testing.T) {
	MustRegister(Factory{
		Name:  "fake-cli",
		Usage: UsageCLI,
		Open: func(cfg Config) (compute.Backend, error) {
			return &fakeBackend{name: "fake-cli"}, nil
		},
	})

	b, err := Open("fake-cli", UsageCLI, Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if b.Name() != "fake-cli" {
		t.Fatalf("opened wrong backend: %s", b.Name())
	}

	if _, err := Open("fake-cli", UsageDaemon, Config{}); err == nil {
		t.Fatalf("expected usage restriction error")
	}
	if _, err := Open("absent", UsageCLI, Config{}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestRegister_RejectsDuplicatesAndIncomplete(t *testing.T) {
	f := Factory{
		Name:  "fake-dup",
		Usage: UsageCLI,
		Open:  func(cfg Config) (compute.Backend, error) { return &fakeBackend{}, nil },
	}
	if err := Register(f); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(f); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := Register(Factory{Name: "no-open", Usage: UsageCLI}); err == nil {
		t.Fatalf("expected missing Open error")
	}
	if err := Register(Factory{Name: "no-usage", Open: f.Open}); err == nil {
		t.Fatalf("expected missing Usage error")
	}
}

func TestNames_SortedAndFiltered(t *testing.T) {
	MustRegister(Factory{
		Name:  "fake-daemon",
		Usage: UsageDaemon,
		Open:  func(cfg Config) (compute.Backend, error) { return &fakeBackend{}, nil },
	})
	names := Names(UsageDaemon)
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	for _, n := range Names(UsageCLI) {
		if n == "fake-daemon" {
			t.Fatalf("daemon-only backend leaked into CLI list")
		}
	}
}
