// Package measurement implements the host side of the runner wire protocol:
// parsing the single-line JSON payload every generated runner prints, and
// turning its raw samples into a model.Measurement with outlier rejection
// and stability statistics applied.
package measurement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// WireResult is the runner-to-host payload, one JSON object per run on the
// final non-empty stdout line (spec.md §6). encoding/json is used verbatim
// here: the wire contract is a single flat object with no nested schema
// evolution, so no third-party decoder in the retrieved examples offers
// anything beyond what the standard library already does for it.
type WireResult struct {
	Iterations  uint64    `json:"iterations"`
	TotalNanos  float64   `json:"totalNanos"`
	WarmupNanos *uint64   `json:"warmupNanos,omitempty"`
	NanosPerOp  float64   `json:"nanosPerOp"`
	OpsPerSec   float64   `json:"opsPerSec"`
	Samples     []float64 `json:"samples"`
	BytesPerOp  *uint64   `json:"bytesPerOp,omitempty"`
	AllocsPerOp *uint64   `json:"allocsPerOp,omitempty"`
	RawResult   *string   `json:"rawResult,omitempty"`
}

// ErrNoResultLine is returned when a runner's stdout contains no non-empty
// line at all.
var ErrNoResultLine = errors.New("measurement: no result line in runner output")

// ExtractLastLine returns the last non-empty line of stdout. Any content on
// earlier lines is diagnostic only and must not be parsed (spec.md §6).
func ExtractLastLine(stdout []byte) ([]byte, error) {
	lines := bytes.Split(stdout, []byte("\n"))

	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) > 0 {
			return line, nil
		}
	}

	return nil, ErrNoResultLine
}

// ParseWireLine decodes a runner's stdout into a WireResult, using only the
// final non-empty line.
func ParseWireLine(stdout []byte) (*WireResult, error) {
	line, err := ExtractLastLine(stdout)
	if err != nil {
		return nil, err
	}

	var result WireResult
	if err := json.Unmarshal(line, &result); err != nil {
		return nil, fmt.Errorf("measurement: decoding result line: %w", err)
	}

	return &result, nil
}
