package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"qproof.io/qpo/model"
)

// Format selects an export representation.
type Format string

const (
	FormatJSON     Format = "JSON"
	FormatMarkdown Format = "MARKDOWN"
)

// Export serializes a verified run. Pure and deterministic; never mutates
// the run. The raw sensitive input was never stored in the Run, so no
// export can contain it.
func Export(run model.Run, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return ExportJSON(run)
	case FormatMarkdown:
		return ExportMarkdown(run), nil
	default:
		return "", fmt.Errorf("audit: unsupported export format %q", format)
	}
}

// ExportJSON renders the full Run as indented JSON.
func ExportJSON(run model.Run) (string, error) {
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// ExportMarkdown renders the human-readable report subset.
func ExportMarkdown(run model.Run) string {
	verification := "FAILED"
	if run.Proof.Verified {
		verification = "VERIFIED"
	}

	var sb strings.Builder
	sb.WriteString("# Verifiable Compute Report\n\n")

	sb.WriteString("## Run Metadata\n")
	fmt.Fprintf(&sb, "- **Run ID**: `%s`\n", run.RunID)
	fmt.Fprintf(&sb, "- **Timestamp**: `%s`\n", run.TimestampUTC)
	fmt.Fprintf(&sb, "- **Scenario**: `%s`\n", run.Scenario)
	fmt.Fprintf(&sb, "- **Security Mode**: `%s`\n", run.SecurityMode)
	fmt.Fprintf(&sb, "- **Verification**: `%s`\n\n", verification)

	if len(run.Primitives) > 0 {
		sb.WriteString("## Cryptographic Primitives\n")
		for _, p := range run.Primitives {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Result\n")
	fmt.Fprintf(&sb, "- **Risk Signal**: `%s`\n", formatFloat(run.ComputeResult.RiskSignal))
	if run.ComputeResult.Decision != "" {
		fmt.Fprintf(&sb, "- **Decision**: `%s`\n", run.ComputeResult.Decision)
	}
	fmt.Fprintf(&sb, "- **Compute Mode**: `%s`\n", run.ComputeResult.ComputeMode)
	fmt.Fprintf(&sb, "- **Overhead**: `%s%%`\n\n", formatFloat(run.ComputeResult.OverheadPercent))

	if len(run.ComputeResult.SchemeParameters) > 0 {
		sb.WriteString("## Scheme Parameters\n")
		keys := make([]string, 0, len(run.ComputeResult.SchemeParameters))
		for k := range run.ComputeResult.SchemeParameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- **%s**: `%s`\n", k, run.ComputeResult.SchemeParameters[k])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Performance\n")
	sb.WriteString("| Stage | Time (ms) |\n")
	sb.WriteString("|-------|-----------|\n")
	fmt.Fprintf(&sb, "| Fingerprint | %d |\n", run.Benchmark.FingerprintTimeMs)
	fmt.Fprintf(&sb, "| Compute | %d |\n", run.Benchmark.ComputeTimeMs)
	fmt.Fprintf(&sb, "| Proof | %d |\n", run.Benchmark.ProofTimeMs)
	fmt.Fprintf(&sb, "| Total | %d |\n\n", run.Benchmark.RuntimeMs)

	sb.WriteString("## Audit Trail\n")
	fmt.Fprintf(&sb, "- **Proof Hash**: `%s`\n", run.Proof.ProofHash)
	fmt.Fprintf(&sb, "- **Proof System**: `%s`\n", run.Proof.ProofSystem)
	fmt.Fprintf(&sb, "- **Circuit Version**: `%s`\n", run.Proof.CircuitVersion)
	fmt.Fprintf(&sb, "- **Input Fingerprint**: `%s`\n", run.Fingerprint)

	return sb.String()
}
