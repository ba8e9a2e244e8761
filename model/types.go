package model

// SecurityMode is the process-wide defensive posture.
//
// Modes escalate monotonically: NORMAL < HYBRID < POST_QUANTUM.
type SecurityMode string

const (
	ModeNormal      SecurityMode = "NORMAL"
	ModeHybrid      SecurityMode = "HYBRID"
	ModePostQuantum SecurityMode = "POST_QUANTUM"
)

// ComputeMode records which backend produced a result.
type ComputeMode string

const (
	ComputeEncrypted ComputeMode = "ENCRYPTED"
	ComputeFallback  ComputeMode = "FALLBACK"
)

// Decision is the tri-state outcome for scenarios that classify inputs.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReview  Decision = "REVIEW"
	DecisionReject  Decision = "REJECT"
)

// ComputeResult is the output of one backend evaluation.
//
// The raw sensitive input never appears here; only the derived risk
// signal and mode metadata survive the compute stage.
type ComputeResult struct {
	RiskSignal      float64     `json:"riskSignal"`
	OverheadPercent float64     `json:"overheadPercent"`
	ComputeMode     ComputeMode `json:"computeMode"`
	Decision        Decision    `json:"decision,omitempty"`
	Scheme          string      `json:"scheme,omitempty"`
	Backend         string      `json:"backend,omitempty"`
	// SchemeParameters describes the active encryption parameter set
	// (ring dimension, security level, library) for audit reports.
	SchemeParameters map[string]string `json:"schemeParameters,omitempty"`
}

// Proof is the correctness artifact bound to a ComputeResult.
type Proof struct {
	ProofHash      string `json:"proofHash"`
	ProofSystem    string `json:"proofSystem"`
	CircuitVersion string `json:"circuitVersion"`
	Verified       bool   `json:"verified"`
}

// Benchmark holds advisory wall-clock measurements per pipeline stage.
type Benchmark struct {
	RuntimeMs         int64 `json:"runtimeMs"`
	FingerprintTimeMs int64 `json:"fingerprintTimeMs"`
	ComputeTimeMs     int64 `json:"computeTimeMs"`
	ProofTimeMs       int64 `json:"proofTimeMs"`
}

// Run is a completed, verified pipeline execution.
type Run struct {
	RunID         string        `json:"runId"`
	TimestampUTC  string        `json:"timestampUtc"`
	Scenario      string        `json:"scenario"`
	SecurityMode  SecurityMode  `json:"securityMode"`
	Fingerprint   string        `json:"fingerprint"`
	ComputeResult ComputeResult `json:"computeResult"`
	Proof         Proof         `json:"proof"`
	Benchmark     Benchmark     `json:"benchmark"`
	Primitives    []string      `json:"cryptoPrimitives,omitempty"`
}

// RunRequest is the invocation-surface input for one pipeline run.
//
// JSON note: SensitiveInput bytes are base64-encoded by encoding/json.
type RunRequest struct {
	SensitiveInput []byte `json:"sensitiveInput"`
	Scenario       string `json:"scenario"`
	ForceFallback  bool   `json:"forceFallback,omitempty"`
	// SecurityModeOverride pins the run to the named mode. It may only
	// strengthen the current posture.
	SecurityModeOverride string `json:"securityModeOverride,omitempty"`
}

// RunResponse wraps a Run with its canonical audit evidence.
type RunResponse struct {
	Run      Run    `json:"run"`
	AuditCID string `json:"auditCid,omitempty"`
}

// AttackSimulation reports one security-mode transition.
type AttackSimulation struct {
	AttackType       string       `json:"attackType"`
	PreviousMode     SecurityMode `json:"previousMode"`
	NewMode          SecurityMode `json:"newMode"`
	DetectorSummary  string       `json:"detectorSummary"`
	AutoResponse     string       `json:"autoResponse"`
	PostQuantumStack []string     `json:"postQuantumStack"`
}

// BackendStatus is the read-only status surface for the compute backend.
type BackendStatus struct {
	Available    bool         `json:"available"`
	Backend      string       `json:"backend"`
	Library      string       `json:"library"`
	Version      string       `json:"version"`
	SecurityMode SecurityMode `json:"securityMode"`
}
