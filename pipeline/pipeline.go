// Package pipeline sequences fingerprint, compute, prove and verify into a
// single Run, enforcing the verification gate: no result leaves the
// orchestrator unless its proof verifies against the public statement.
//
// The orchestrator owns Run construction. Compute backends, the proof
// engine and the security-mode controller are injected, so the pipeline
// logic is independent of which concrete primitives back it.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"qproof.io/qpo/compute"
	"qproof.io/qpo/fingerprint"
	"qproof.io/qpo/model"
	"qproof.io/qpo/proof"
	"qproof.io/qpo/securitymode"
)

// FallbackPolicy selects how the orchestrator reacts when the encrypted
// backend is unavailable.
//
// Strict surfaces BackendUnavailable to the caller. Permissive retries the
// run on the plaintext fallback and tags the result, surfacing the loss of
// trust level instead of hiding it. There is no silent fallback.
type FallbackPolicy int

const (
	Strict FallbackPolicy = iota
	Permissive
)

// Request is one orchestration call.
type Request struct {
	// Input is the sensitive input. Never retained, logged or exported.
	Input    []byte
	Scenario string
	// ForceFallback runs on the plaintext backend regardless of encrypted
	// backend health.
	ForceFallback bool
	// ModeOverride, when non-empty, pins this run to the named security
	// mode. Overrides may only strengthen the posture: a mode below the
	// controller's current one is rejected. The controller itself is not
	// touched.
	ModeOverride string
}

// Config assembles an Orchestrator.
type Config struct {
	// Primary is the encrypted backend. Required.
	Primary compute.Backend
	// Fallback is the plaintext backend. Required when ForceFallback or a
	// Permissive policy can select it.
	Fallback compute.Backend
	// Engine generates and verifies proofs. Required.
	Engine proof.Engine
	// Modes is the shared security-mode controller. Required.
	Modes *securitymode.Controller
	// Thresholds classify the risk signal into a decision.
	Thresholds compute.Thresholds
	// Policy governs orchestrator-level fallback. Defaults to Strict.
	Policy FallbackPolicy
	// Label overrides the fingerprint domain-separation label.
	Label string
	// CircuitVersion tags proofs and audit records.
	CircuitVersion string
	// Logger receives stage-level events. Raw input never reaches it.
	Logger zerolog.Logger
}

// Orchestrator is the pipeline entry point. Safe for concurrent use; runs
// share no mutable state except the mode controller.
type Orchestrator struct {
	primary    compute.Backend
	fallback   compute.Backend
	engine     proof.Engine
	modes      *securitymode.Controller
	thresholds compute.Thresholds
	policy     FallbackPolicy
	label      string
	circuitVer string
	log        zerolog.Logger
}

// New validates the configuration and returns an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Primary == nil {
		return nil, newError(KindInternal, "QPO-CFG-001", "pipeline: primary backend is required")
	}
	if cfg.Engine == nil {
		return nil, newError(KindInternal, "QPO-CFG-002", "pipeline: proof engine is required")
	}
	if cfg.Modes == nil {
		return nil, newError(KindInternal, "QPO-CFG-003", "pipeline: security-mode controller is required")
	}
	label := cfg.Label
	if label == "" {
		label = fingerprint.DefaultLabel
	}
	return &Orchestrator{
		primary:    cfg.Primary,
		fallback:   cfg.Fallback,
		engine:     cfg.Engine,
		modes:      cfg.Modes,
		thresholds: cfg.Thresholds,
		policy:     cfg.Policy,
		label:      label,
		circuitVer: cfg.CircuitVersion,
		log:        cfg.Logger,
	}, nil
}

// Run executes one fingerprint -> compute -> prove -> verify sequence.
//
// Cancellation is honored strictly before the verification gate. Once the
// proof verifies the Run is complete; it is never partially surfaced.
func (o *Orchestrator) Run(ctx context.Context, req Request) (model.Run, error) {
	start := time.Now()

	if len(req.Input) == 0 {
		return model.Run{}, newError(KindInvalidInput, "QPO-IN-001", "pipeline: sensitive input must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return model.Run{}, wrapError(KindCanceled, "QPO-CTX-001", "pipeline: run canceled", err)
	}

	// Mode snapshot: one consistent posture for the whole run.
	mode := o.modes.Current()
	if req.ModeOverride != "" {
		override, err := securitymode.Parse(req.ModeOverride)
		if err != nil {
			return model.Run{}, wrapError(KindInvalidInput, "QPO-IN-003", "pipeline: invalid security-mode override", err)
		}
		if securitymode.Less(override, mode) {
			return model.Run{}, newError(KindInvalidInput, "QPO-IN-004",
				fmt.Sprintf("pipeline: security-mode override %s is below the current posture %s", override, mode))
		}
		mode = override
	}

	fpStart := time.Now()
	fp, err := fingerprint.New(req.Input, o.label, fingerprint.Options{RequireNonEmpty: true})
	if err != nil {
		return model.Run{}, wrapError(KindInvalidInput, "QPO-IN-002", "pipeline: fingerprinting rejected input", err)
	}
	fpDur := time.Since(fpStart)

	computeStart := time.Now()
	result, err := o.compute(ctx, req)
	if err != nil {
		return model.Run{}, err
	}
	computeDur := time.Since(computeStart)

	decision := o.thresholds.Classify(result.RiskSignal)

	st := proof.Statement{
		Fingerprint:     fp,
		RiskSignal:      result.RiskSignal,
		OverheadPercent: result.OverheadPercent,
		ComputeMode:     string(result.Mode),
		Decision:        string(decision),
		Scenario:        req.Scenario,
		CircuitVersion:  o.circuitVer,
	}

	proofStart := time.Now()
	pf, err := o.engine.Generate(ctx, st)
	if err != nil {
		return model.Run{}, wrapError(KindInternal, "QPO-PRF-001", "pipeline: proof generation failed", err)
	}
	if err := ctx.Err(); err != nil {
		return model.Run{}, wrapError(KindCanceled, "QPO-CTX-002", "pipeline: run canceled before verification", err)
	}
	ok, err := o.engine.Verify(ctx, pf, st)
	if err != nil {
		return model.Run{}, wrapError(KindInternal, "QPO-PRF-002", "pipeline: proof verification errored", err)
	}
	proofDur := time.Since(proofStart)

	// Verification gate. A failed proof blocks all output.
	if !ok {
		o.log.Error().
			Str("scenario", req.Scenario).
			Str("fingerprint", fp).
			Msg("verification gate blocked run")
		return model.Run{}, newError(KindVerificationFailed, "QPO-GATE-001",
			"pipeline: proof did not verify; output blocked")
	}

	run := model.Run{
		RunID:        newRunID(),
		TimestampUTC: start.UTC().Format(time.RFC3339),
		Scenario:     req.Scenario,
		SecurityMode: model.SecurityMode(mode),
		Fingerprint:  fp,
		ComputeResult: model.ComputeResult{
			RiskSignal:       result.RiskSignal,
			OverheadPercent:  result.OverheadPercent,
			ComputeMode:      model.ComputeMode(result.Mode),
			Decision:         model.Decision(decision),
			Scheme:           result.Scheme,
			Backend:          result.Backend,
			SchemeParameters: result.Parameters,
		},
		Proof: model.Proof{
			ProofHash:      pf.ProofHash,
			ProofSystem:    pf.System,
			CircuitVersion: pf.CircuitVersion,
			Verified:       true,
		},
		Benchmark: model.Benchmark{
			RuntimeMs:         time.Since(start).Milliseconds(),
			FingerprintTimeMs: fpDur.Milliseconds(),
			ComputeTimeMs:     computeDur.Milliseconds(),
			ProofTimeMs:       proofDur.Milliseconds(),
		},
		Primitives: securitymode.StackFor(mode),
	}

	o.log.Info().
		Str("run_id", run.RunID).
		Str("scenario", run.Scenario).
		Str("mode", string(run.SecurityMode)).
		Str("compute_mode", string(run.ComputeResult.ComputeMode)).
		Str("decision", string(run.ComputeResult.Decision)).
		Int64("runtime_ms", run.Benchmark.RuntimeMs).
		Msg("run verified")
	return run, nil
}

// compute selects a backend and evaluates the request.
func (o *Orchestrator) compute(ctx context.Context, req Request) (compute.Result, error) {
	creq := compute.Request{Input: req.Input, Scenario: req.Scenario}

	if req.ForceFallback {
		if o.fallback == nil {
			return compute.Result{}, newError(KindBackendUnavailable, "QPO-BCK-001",
				"pipeline: fallback forced but no fallback backend configured")
		}
		return o.runBackend(ctx, o.fallback, creq)
	}

	result, err := o.runBackend(ctx, o.primary, creq)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, compute.ErrBackendUnavailable) {
		return compute.Result{}, err
	}
	if o.policy == Permissive && o.fallback != nil {
		o.log.Warn().
			Str("backend", o.primary.Name()).
			Msg("encrypted backend unavailable, retrying on plaintext fallback")
		return o.runBackend(ctx, o.fallback, creq)
	}
	return compute.Result{}, wrapError(KindBackendUnavailable, "QPO-BCK-002",
		fmt.Sprintf("pipeline: encrypted backend %q unavailable", o.primary.Name()), err)
}

func (o *Orchestrator) runBackend(ctx context.Context, b compute.Backend, req compute.Request) (compute.Result, error) {
	result, err := b.Compute(ctx, req)
	if err != nil {
		if errors.Is(err, compute.ErrBackendUnavailable) {
			return compute.Result{}, err
		}
		return compute.Result{}, wrapError(KindInternal, "QPO-BCK-003",
			fmt.Sprintf("pipeline: backend %q failed", b.Name()), err)
	}
	return result, nil
}

// SimulateAttack applies one threat event to the shared mode controller.
func (o *Orchestrator) SimulateAttack(attack string) (model.AttackSimulation, error) {
	tr, err := o.modes.Simulate(securitymode.AttackType(attack))
	if err != nil {
		return model.AttackSimulation{}, wrapError(KindUnknownAttack, "QPO-ATK-001",
			fmt.Sprintf("pipeline: unknown attack type %q", attack), err)
	}
	return model.AttackSimulation{
		AttackType:       string(tr.AttackType),
		PreviousMode:     model.SecurityMode(tr.Previous),
		NewMode:          model.SecurityMode(tr.New),
		DetectorSummary:  tr.DetectorSummary,
		AutoResponse:     tr.AutoResponse,
		PostQuantumStack: tr.PostQuantumStack,
	}, nil
}

// Status reports the encrypted backend's health and active library.
// Read-only, side-effect-free.
func (o *Orchestrator) Status() model.BackendStatus {
	name, version := o.primary.Library()
	return model.BackendStatus{
		Available:    o.primary.Available(),
		Backend:      o.primary.Name(),
		Library:      name,
		Version:      version,
		SecurityMode: model.SecurityMode(o.modes.Current()),
	}
}

func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return "run-00000000"
	}
	return "run-" + hex.EncodeToString(b[:])
}
