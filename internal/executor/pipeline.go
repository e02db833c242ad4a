package executor

import (
	"context"
	"fmt"

	"github.com/polybench/polybench/internal/model"
)

// RunAll drives the full validate → precompile → (anvil) → run pipeline for
// a batch of files, the shape `polybench run` invokes (spec.md §4.6).
// anvilBinary/anvilDefaultFork come from the project config (internal/config);
// randSeed seeds the `random` suite order.
func (e *Executor) RunAll(ctx context.Context, files []FileTask, anvilBinary string, randSeed int64) (model.BenchmarkResults, error) {
	if err := e.Validate(ctx, files); err != nil {
		return model.BenchmarkResults{}, err
	}

	if err := e.Precompile(ctx, files); err != nil {
		return model.BenchmarkResults{}, err
	}

	if anvilRequired(files) {
		forkURL := firstAnvilForkURL(files)
		if err := e.EnsureAnvil(ctx, anvilBinary, forkURL); err != nil {
			return model.BenchmarkResults{}, fmt.Errorf("executor: anvil required but failed to start: %w", err)
		}
	}

	return e.Run(ctx, files, randSeed)
}

func firstAnvilForkURL(files []FileTask) string {
	for _, f := range files {
		for _, suite := range f.Suites {
			if suite.GlobalSetup != nil && suite.GlobalSetup.Anvil != nil {
				return suite.GlobalSetup.Anvil.ForkURL
			}
		}
	}

	return ""
}
