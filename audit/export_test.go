package audit

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"qproof.io/qpo/model"
)

func TestExportJSON_RoundTrip(t *testing.T) {
	run := sampleRun()
	out, err := ExportJSON(run)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var back model.Run
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if !reflect.DeepEqual(run, back) {
		t.Fatalf("JSON export lost information:\n%+v\n%+v", run, back)
	}
}

func TestExportJSON_Deterministic(t *testing.T) {
	run := sampleRun()
	a, _ := ExportJSON(run)
	b, _ := ExportJSON(run)
	if a != b {
		t.Fatalf("same run exported different JSON")
	}
}

func TestExportMarkdown_ContainsReportFields(t *testing.T) {
	run := sampleRun()
	md := ExportMarkdown(run)
	for _, want := range []string{
		run.RunID,
		run.TimestampUTC,
		run.Scenario,
		"VERIFIED",
		"42.5",
		string(run.ComputeResult.Decision),
		run.Proof.ProofHash,
		run.Proof.CircuitVersion,
		run.Fingerprint,
		"| Compute | 162 |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown report missing %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdown_SchemeParametersSorted(t *testing.T) {
	run := sampleRun()
	md := ExportMarkdown(run)
	if strings.Contains(md, "## Scheme Parameters") {
		t.Fatalf("runs without parameters must omit the section")
	}

	run.ComputeResult.SchemeParameters = map[string]string{
		"security_level": "128-bit",
		"log_n":          "13",
		"scheme":         "CKKS",
	}
	md = ExportMarkdown(run)
	logN := strings.Index(md, "**log_n**")
	scheme := strings.Index(md, "**scheme**")
	level := strings.Index(md, "**security_level**")
	if logN < 0 || scheme < 0 || level < 0 {
		t.Fatalf("markdown report missing scheme parameters:\n%s", md)
	}
	if !(logN < scheme && scheme < level) {
		t.Fatalf("scheme parameters must render in sorted key order")
	}
}

func TestExportMarkdown_FailedVerificationLabeled(t *testing.T) {
	run := sampleRun()
	run.Proof.Verified = false
	md := ExportMarkdown(run)
	if !strings.Contains(md, "FAILED") || strings.Contains(md, "`VERIFIED`") {
		t.Fatalf("unverified run must be labeled FAILED")
	}
}

func TestExport_Dispatch(t *testing.T) {
	run := sampleRun()
	if _, err := Export(run, FormatJSON); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if _, err := Export(run, FormatMarkdown); err != nil {
		t.Fatalf("MARKDOWN: %v", err)
	}
	if _, err := Export(run, Format("YAML")); err == nil {
		t.Fatalf("unsupported format must error")
	}
}

func TestExport_DoesNotMutateRun(t *testing.T) {
	run := sampleRun()
	snapshot := run
	if _, err := Export(run, FormatJSON); err != nil {
		t.Fatalf("Export: %v", err)
	}
	ExportMarkdown(run)
	if !reflect.DeepEqual(run, snapshot) {
		t.Fatalf("export mutated the run")
	}
}
