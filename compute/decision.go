package compute

// Decision is the tri-state classification of a risk signal.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReview  Decision = "REVIEW"
	DecisionReject  Decision = "REJECT"
)

// Thresholds classify a risk signal. Values come from configuration, never
// from call sites.
type Thresholds struct {
	// ApproveBelow approves signals strictly below this value.
	ApproveBelow float64
	// RejectAtOrAbove rejects signals at or above this value.
	RejectAtOrAbove float64
}

// Classify maps a risk signal onto APPROVE / REVIEW / REJECT.
func (t Thresholds) Classify(risk float64) Decision {
	switch {
	case risk < t.ApproveBelow:
		return DecisionApprove
	case risk >= t.RejectAtOrAbove:
		return DecisionReject
	default:
		return DecisionReview
	}
}
