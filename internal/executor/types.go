package executor

import "github.com/polybench/polybench/internal/ir"

// FileTask is one lowered .bench file queued for validation/execution,
// carrying its source path for error reporting.
type FileTask struct {
	Path   string
	Suites []ir.SuiteIR
}
