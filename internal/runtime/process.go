package runtime

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
	"github.com/polybench/polybench/internal/measurement"
	"github.com/polybench/polybench/internal/model"
)

// adapter is the per-language seam: source generation plus the three shell
// commands every Runtime method reduces to (check, build, run). Compiled
// languages build a real artifact; interpreted languages return
// producesArtifact=false and runCmd re-invokes the interpreter on the
// source file directly.
type adapter interface {
	lang() dsl.Lang
	sourceFileName(safeName string) string
	toolchainProbe() (cmd string, args []string)
	toolchainID(probeOutput string) string
	checkCmd(sourcePath string) (cmd string, args []string)
	buildCmd(sourcePath, artifactPath string) (cmd string, args []string, producesArtifact bool)
	runCmd(artifactPath, sourcePath string) (cmd string, args []string)
	generateSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR, checkOnly bool) (string, error)
}

// processRuntime is the shared Runtime implementation used by every
// language adapter: it owns the work directory, the cached precompiled
// artifact, and the Anvil RPC URL injection, per spec.md §4.6.
type processRuntime struct {
	ad      adapter
	workDir string

	anvilRPCURL string

	cachedHash     string
	cachedArtifact string
	lastPrecompile *uint64
}

func newProcessRuntime(ad adapter, workDir string) (*processRuntime, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("runtime: creating work dir: %w", err)
	}

	return &processRuntime{ad: ad, workDir: workDir}, nil
}

func (p *processRuntime) Lang() dsl.Lang { return p.ad.lang() }

func (p *processRuntime) GenerateCheckSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (string, error) {
	return p.ad.generateSource(spec, suite, true)
}

func (p *processRuntime) SetAnvilRPCURL(url string) { p.anvilRPCURL = url }

// ToolchainID reports the major.minor compiler/interpreter version used for
// the compile-cache key (spec.md §4.5).
func (p *processRuntime) ToolchainID(ctx context.Context) (string, error) {
	return probeToolchainID(ctx, p.ad)
}

func (p *processRuntime) LastPrecompileNanos() *uint64 { return p.lastPrecompile }

func (p *processRuntime) Shutdown() error {
	return nil
}

func safeName(name string) string {
	replacer := strings.NewReplacer(".", "_", "/", "_", " ", "_")

	return replacer.Replace(name)
}

func hashSource(source string) string {
	sum := sha256.Sum256([]byte(source))

	return hex.EncodeToString(sum[:])
}

func (p *processRuntime) writeSource(source, suffix string) (string, error) {
	name := p.ad.sourceFileName(suffix)
	path := filepath.Join(p.workDir, name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("runtime: writing source %s: %w", path, err)
	}

	return path, nil
}

func runCommand(ctx context.Context, dir, cmdName string, args []string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, cmdName, args...)
	cmd.Dir = dir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()

	return outBuf.Bytes(), errBuf.Bytes(), err
}

// CompileCheck generates check-only source (empty main, per spec.md §4.4)
// and runs the language's check command, discarding any produced artifact.
func (p *processRuntime) CompileCheck(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) error {
	source, err := p.ad.generateSource(spec, suite, true)
	if err != nil {
		return err
	}

	sourcePath, err := p.writeSource(source, "check_"+safeName(spec.FullName))
	if err != nil {
		return err
	}

	cmdName, args := p.ad.checkCmd(sourcePath)
	if cmdName == "" {
		return nil
	}

	_, stderr, err := runCommand(ctx, p.workDir, cmdName, args)
	if err != nil {
		return &CompileError{
			Lang:       string(p.ad.lang()),
			Benchmark:  spec.FullName,
			SourceKind: "implementation",
			Stderr:     TruncateStderr(string(stderr), 12),
		}
	}

	return nil
}

// Precompile builds the real run artifact and caches it by source hash so a
// repeated RunBenchmark call (count>1, or re-running the same suite) skips
// rebuilding when nothing changed.
func (p *processRuntime) Precompile(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) error {
	source, err := p.ad.generateSource(spec, suite, false)
	if err != nil {
		return err
	}

	hash := hashSource(source)
	if hash == p.cachedHash && p.cachedArtifact != "" {
		var zero uint64
		p.lastPrecompile = &zero

		return nil
	}

	start := time.Now()

	sourcePath, err := p.writeSource(source, "run_"+safeName(spec.FullName))
	if err != nil {
		return err
	}

	artifactPath := filepath.Join(p.workDir, "artifact_"+safeName(spec.FullName)+hash[:8])
	cmdName, args, producesArtifact := p.ad.buildCmd(sourcePath, artifactPath)

	if cmdName != "" {
		_, stderr, err := runCommand(ctx, p.workDir, cmdName, args)
		if err != nil {
			return &CompileError{
				Lang:       string(p.ad.lang()),
				Benchmark:  spec.FullName,
				SourceKind: "implementation",
				Stderr:     TruncateStderr(string(stderr), 12),
			}
		}
	}

	if producesArtifact {
		p.cachedArtifact = artifactPath
	} else {
		p.cachedArtifact = sourcePath
	}
	p.cachedHash = hash

	elapsed := uint64(time.Since(start).Nanoseconds())
	p.lastPrecompile = &elapsed

	return nil
}

// RunBenchmark launches the precompiled runner, enforcing spec.Timeout via
// context cancellation (kill-on-drop semantics), and parses its one-line
// JSON result into a model.Measurement.
func (p *processRuntime) RunBenchmark(ctx context.Context, spec *ir.BenchmarkSpec, suite *ir.SuiteIR) (model.Measurement, error) {
	// Precompile is a no-op when spec's source hash matches the cached
	// artifact, and rebuilds when another benchmark was precompiled last.
	if err := p.Precompile(ctx, spec, suite); err != nil {
		return model.Measurement{}, err
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if spec.Timeout != nil {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(*spec.Timeout)*time.Millisecond)
		defer cancel()
	}

	cmdName, args := p.ad.runCmd(p.cachedArtifact, p.cachedArtifact)
	cmd := exec.CommandContext(runCtx, cmdName, args...)
	cmd.Dir = p.workDir
	if p.anvilRPCURL != "" {
		cmd.Env = append(os.Environ(), "ANVIL_RPC_URL="+p.anvilRPCURL)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runStart := time.Now()
	err := cmd.Run()
	runWall := time.Since(runStart)

	if runCtx.Err() == context.DeadlineExceeded {
		return model.Measurement{}, &ExecutionError{
			Lang:      string(p.ad.lang()),
			Benchmark: spec.FullName,
			TimedOut:  true,
		}
	}
	if err != nil {
		return model.Measurement{}, &ExecutionError{
			Lang:      string(p.ad.lang()),
			Benchmark: spec.FullName,
			Stderr:    TruncateStderr(errBuf.String(), 12),
		}
	}

	wire, err := measurement.ParseWireLine(outBuf.Bytes())
	if err != nil {
		return model.Measurement{}, &ExecutionError{
			Lang:      string(p.ad.lang()),
			Benchmark: spec.FullName,
			Stderr:    err.Error(),
		}
	}

	m := measurement.Build(wire, spec.OutlierDetection, spec.CVThreshold)

	spawn := uint64(runWall.Nanoseconds())
	if spawn > uint64(m.TotalNanos) {
		spawn -= uint64(m.TotalNanos)
	} else {
		spawn = 0
	}
	m.SpawnNanos = &spawn

	return m, nil
}

// probeToolchainID runs the adapter's version probe and extracts the
// major.minor identity used in the compile-cache key (spec.md §4.5).
func probeToolchainID(ctx context.Context, ad adapter) (string, error) {
	cmdName, args := ad.toolchainProbe()

	cmd := exec.CommandContext(ctx, cmdName, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("runtime: probing %s toolchain: %w", ad.lang(), err)
	}

	output := outBuf.String()
	if output == "" {
		output = errBuf.String()
	}

	return ad.toolchainID(output), nil
}
