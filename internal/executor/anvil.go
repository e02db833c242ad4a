package executor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sync"
	"time"
)

// anvilNode is the process-wide Anvil Ethereum dev node singleton, spawned
// before the first suite that declares `use std::anvil` / global_setup.anvil
// and reaped at the end of the run (spec.md §5 "process-wide singleton").
type anvilNode struct {
	cmd    *exec.Cmd
	rpcURL string

	mu sync.Mutex
}

var anvilListenPattern = regexp.MustCompile(`Listening on (127\.0\.0\.1:\d+)`)

// startAnvil spawns the Anvil binary and blocks until its RPC endpoint is
// reported on stdout, or ctx is cancelled.
func startAnvil(ctx context.Context, binaryPath, forkURL string) (*anvilNode, error) {
	args := []string{"--port", "0"}
	if forkURL != "" {
		args = append(args, "--fork-url", forkURL)
	}

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("executor: anvil stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("executor: spawning anvil: %w", err)
	}

	node := &anvilNode{cmd: cmd}

	rpcURL, err := waitForRPCURL(stdout)
	if err != nil {
		_ = cmd.Process.Kill()

		return nil, fmt.Errorf("executor: anvil did not come up: %w", err)
	}

	node.rpcURL = rpcURL

	return node, nil
}

func waitForRPCURL(stdout io.Reader) (string, error) {
	scanner := bufio.NewScanner(stdout)

	deadline := time.Now().Add(10 * time.Second)
	for scanner.Scan() {
		line := scanner.Text()
		if m := anvilListenPattern.FindStringSubmatch(line); m != nil {
			return "http://" + m[1], nil
		}
		if time.Now().After(deadline) {
			break
		}
	}

	return "", fmt.Errorf("timed out waiting for anvil's listening address")
}

// stop kills the Anvil process, ignoring an already-exited process.
func (a *anvilNode) stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cmd == nil || a.cmd.Process == nil {
		return nil
	}

	if err := a.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("executor: stopping anvil: %w", err)
	}

	_ = a.cmd.Wait()

	return nil
}

// EnsureAnvil spawns the Anvil singleton on first call for a suite
// declaring it, matching spec.md §4.6's "spawns/despawns the Anvil node as
// an external collaborator around the suite" and re-injects the RPC URL
// into every already-constructed Runtime.
func (e *Executor) EnsureAnvil(ctx context.Context, binaryPath, forkURL string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.anvil != nil {
		return nil
	}

	node, err := startAnvil(ctx, binaryPath, forkURL)
	if err != nil {
		return err
	}

	e.anvil = node
	for _, rt := range e.runtimes {
		rt.SetAnvilRPCURL(node.rpcURL)
	}

	return nil
}

// anvilRequired reports whether any suite in files has a global setup and
// imports `std::anvil`.
func anvilRequired(files []FileTask) bool {
	for _, f := range files {
		for _, suite := range f.Suites {
			if suite.GlobalSetup != nil && hasStdlibModule(suite.StdlibImports, "anvil") {
				return true
			}
		}
	}

	return false
}

func hasStdlibModule(imports []string, module string) bool {
	for _, m := range imports {
		if m == module {
			return true
		}
	}

	return false
}
