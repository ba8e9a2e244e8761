package audit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Canonicalize is the mandatory canonicalization choke point for audit
// evidence.
//
// Evidence MUST be canonical before CID derivation or signature
// verification. This function enforces byte-level canonical rules by
// rejecting any non-canonical input rather than repairing it.
func Canonicalize(input []byte) ([]byte, error) {
	if !utf8.Valid(input) {
		return nil, errors.New("audit document must be valid UTF-8")
	}
	if bytes.HasPrefix(input, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, errors.New("BOM not allowed")
	}
	if bytes.Contains(input, []byte("\r")) {
		return nil, errors.New("CR line endings not allowed")
	}
	if len(input) == 0 {
		return nil, errors.New("empty audit document")
	}
	if input[len(input)-1] != '\n' {
		return nil, errors.New("missing trailing newline")
	}
	for _, line := range bytes.Split(input, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, errors.New("trailing whitespace forbidden")
		}
	}

	if err := validateCanonical(string(input)); err != nil {
		return nil, err
	}

	// Return a copy to prevent caller mutation.
	return append([]byte(nil), input...), nil
}

var sectionOrder = []string{"META", "INPUTS", "RESULT", "PROOF", "BENCHMARK", "CRYPTO"}

func validateCanonical(doc string) error {
	lines := strings.Split(doc, "\n")
	// Canonical documents end with a newline, so the last line is empty.
	if len(lines) < 3 {
		return errors.New("audit document too short")
	}
	if lines[0] != Preamble {
		return errors.New("missing audit preamble")
	}
	if lines[len(lines)-1] != "" {
		return errors.New("missing trailing newline")
	}
	if lines[len(lines)-2] != Postamble {
		return errors.New("missing audit postamble")
	}

	i := 1
	for _, sec := range sectionOrder {
		if i >= len(lines)-2 {
			return fmt.Errorf("missing section %q", sec)
		}
		if lines[i] != sec {
			return fmt.Errorf("sections missing or out of order (expected %q got %q)", sec, lines[i])
		}
		i++
		start := i
		for i < len(lines)-2 && lines[i] != "" {
			i++
		}
		if i >= len(lines)-2 {
			return fmt.Errorf("missing blank line after section %q", sec)
		}
		if err := validateSection(sec, lines[start:i]); err != nil {
			return err
		}
		// Consume the section terminator blank line.
		i++
	}

	if i != len(lines)-2 {
		return errors.New("unexpected content before postamble")
	}
	return nil
}

// required fields per section; CRYPTO may be empty (unsigned document).
var requiredFields = map[string][]string{
	"META":      {"Exporter-ID", "Run-ID", "Scenario", "Spec", "Timestamp", "Version"},
	"INPUTS":    {"Fingerprint"},
	"RESULT":    {"Compute-Mode", "Overhead-Percent", "Risk-Signal", "Security-Mode"},
	"PROOF":     {"Circuit-Version", "Proof-Hash", "Proof-System", "Verified"},
	"BENCHMARK": {"Compute-Time-Ms", "Fingerprint-Time-Ms", "Proof-Time-Ms", "Runtime-Ms"},
	"CRYPTO":    nil,
}

func validateSection(section string, body []string) error {
	if err := validateSortedStrict(body); err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}
	need := map[string]bool{}
	for _, k := range requiredFields[section] {
		need[k] = false
	}
	if section == "CRYPTO" && len(body) > 0 {
		// A non-empty CRYPTO section must carry a complete signature set.
		for _, k := range []string{"Hash-Alg", "Signature", "Signature-Alg", "Signer-Key"} {
			need[k] = false
		}
	}
	for _, l := range body {
		k, _, err := validateKVLine(l)
		if err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
		if _, ok := need[k]; ok {
			need[k] = true
		}
	}
	for k, ok := range need {
		if !ok {
			return fmt.Errorf("%s: missing %s", section, k)
		}
	}
	return nil
}

func validateSortedStrict(lines []string) error {
	seen := make(map[string]bool)
	for i, l := range lines {
		if l == "" {
			return errors.New("empty line inside section")
		}
		if seen[l] {
			return errors.New("duplicate line")
		}
		seen[l] = true
		if i > 0 && !(lines[i-1] < l) {
			return errors.New("lines not sorted lexicographically")
		}
	}
	return nil
}

func validateKVLine(line string) (string, string, error) {
	if !strings.Contains(line, ": ") {
		return "", "", errors.New("invalid key-value formatting")
	}
	k, v, _ := strings.Cut(line, ": ")
	if k == "" {
		return "", "", errors.New("empty key")
	}
	if v == "" {
		return "", "", errors.New("empty value")
	}
	return k, v, nil
}

// sectionLines returns the body lines of one section from canonical bytes.
func sectionLines(canon []byte, name string) ([]string, error) {
	lines := strings.Split(string(canon), "\n")
	for i := 1; i < len(lines)-2; i++ {
		if lines[i] != name {
			continue
		}
		var body []string
		for j := i + 1; j < len(lines)-2 && lines[j] != ""; j++ {
			body = append(body, lines[j])
		}
		return body, nil
	}
	return nil, fmt.Errorf("section %q not found", name)
}

// fieldFromSection returns the value of a unique key within a section.
func fieldFromSection(canon []byte, section, key string) (string, bool, error) {
	body, err := sectionLines(canon, section)
	if err != nil {
		return "", false, err
	}
	var value string
	var found bool
	for _, l := range body {
		k, v, err := validateKVLine(l)
		if err != nil {
			return "", false, err
		}
		if k != key {
			continue
		}
		if found {
			return "", false, fmt.Errorf("%s: duplicate %s", section, key)
		}
		value, found = v, true
	}
	return value, found, nil
}
