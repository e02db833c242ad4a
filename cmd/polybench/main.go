// Command polybench is the cross-language benchmark orchestrator's CLI
// entry point.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/polybench/polybench/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default().With(slog.String("module", "main"))

	root := cli.NewRootCommand()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())
		log.Fatalf("%v", err)
	}
}
