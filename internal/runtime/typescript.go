package runtime

import (
	"fmt"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

func init() {
	Register(dsl.LangTypeScript, func(workDir string) (Runtime, error) {
		return newProcessRuntime(typescriptAdapter{}, workDir)
	})
}

type typescriptAdapter struct{}

func (typescriptAdapter) lang() dsl.Lang { return dsl.LangTypeScript }

func (typescriptAdapter) sourceFileName(suffix string) string {
	return fmt.Sprintf("bench_%s.ts", suffix)
}

func (typescriptAdapter) toolchainProbe() (string, []string) {
	return "node", []string{"--version"}
}

func (typescriptAdapter) toolchainID(output string) string {
	// "v22.4.0" -> "22.4"
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(output), "v"))
	parts := strings.Split(v, ".")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}

	return v
}

func (typescriptAdapter) checkCmd(sourcePath string) (string, []string) {
	return "npx", []string{"tsc", "--noEmit", "--strict", sourcePath}
}

// TypeScript has no separate build step: the run command re-invokes the
// interpreter (tsx) on the generated source directly, so producesArtifact
// is false and the "artifact" is the source file itself.
func (typescriptAdapter) buildCmd(_, _ string) (string, []string, bool) {
	return "", nil, false
}

func (typescriptAdapter) runCmd(_, sourcePath string) (string, []string) {
	return "npx", []string{"tsx", sourcePath}
}

func (typescriptAdapter) generateSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR, checkOnly bool) (string, error) {
	impl, ok := spec.Implementations[dsl.LangTypeScript]
	if !ok {
		return "", fmt.Errorf("runtime: no TypeScript implementation for benchmark %s", spec.FullName)
	}

	var b strings.Builder

	if raw, ok := suite.Imports[dsl.LangTypeScript]; ok && strings.TrimSpace(raw) != "" {
		b.WriteString(normalizeIndent(raw))
		b.WriteString("\n\n")
	}

	if hasStdlibModule(suite.StdlibImports, "constants") {
		b.WriteString(constantsSnippet(dsl.LangTypeScript))
		b.WriteString("\n")
	}

	if decl, ok := suite.Declarations[dsl.LangTypeScript]; ok && strings.TrimSpace(decl) != "" {
		b.WriteString(normalizeIndent(decl))
		b.WriteString("\n\n")
	}
	if helpers, ok := suite.Helpers[dsl.LangTypeScript]; ok && strings.TrimSpace(helpers) != "" {
		b.WriteString(normalizeIndent(helpers))
		b.WriteString("\n\n")
	}

	if initCode, ok := suite.InitCode[dsl.LangTypeScript]; ok && strings.TrimSpace(initCode) != "" {
		b.WriteString("async function __polybenchInit() {\n")
		b.WriteString(indentBlock(initCode, "  "))
		b.WriteString("}\n\n")
	}

	for _, name := range orderedFixtureNames(spec) {
		fixture, ok := suite.Fixtures[name]
		if !ok {
			continue
		}
		if code, ok := fixture.Implementations[dsl.LangTypeScript]; ok {
			fmt.Fprintf(&b, "let %s = %s;\n", name, strings.TrimSpace(code))
		} else if len(fixture.Bytes) > 0 {
			fmt.Fprintf(&b, "let %s = new Uint8Array([%s]);\n", name, byteLiteralList(fixture.Bytes, "0x"))
		}
	}
	b.WriteString("\n")

	b.WriteString("let __polybenchSink: unknown;\n\n")
	b.WriteString("function __polybenchBench(): unknown {\n")
	b.WriteString(indentBlock(impl, "  "))
	b.WriteString("}\n\n")

	if checkOnly {
		b.WriteString("async function main() {}\nmain();\n")

		return b.String(), nil
	}

	b.WriteString("async function main() {\n")
	if _, ok := suite.InitCode[dsl.LangTypeScript]; ok {
		b.WriteString("  await __polybenchInit();\n")
	}
	if before, ok := spec.BeforeHooks[dsl.LangTypeScript]; ok {
		b.WriteString(indentBlock(before, "  "))
	}

	b.WriteString("  const warmupStart = performance.now();\n")
	if spec.WarmupTimeMs > 0 {
		fmt.Fprintf(&b, "  while (performance.now() - warmupStart < %d) {\n", spec.WarmupTimeMs)
	} else if spec.WarmupIterations > 0 {
		fmt.Fprintf(&b, "  for (let i = 0; i < %d; i++) {\n", spec.WarmupIterations)
	} else {
		b.WriteString("  while (false) {\n")
	}
	if each, ok := spec.EachHooks[dsl.LangTypeScript]; ok {
		b.WriteString(indentBlock(each, "    "))
	}
	b.WriteString("    __polybenchSink = __polybenchBench();\n")
	b.WriteString("  }\n")
	b.WriteString("  const warmupNanos = Math.round((performance.now() - warmupStart) * 1e6);\n\n")

	switch spec.Mode {
	case dsl.ModeAuto:
		fmt.Fprintf(&b, "  const targetNs = %d * 1e6;\n", spec.TargetTimeMs)
		fmt.Fprintf(&b, "  const minIterations = %d;\n", spec.MinIterations)
		fmt.Fprintf(&b, "  const maxIterations = %d;\n", spec.MaxIterations)
		b.WriteString("  const samples: number[] = [];\n")
		b.WriteString("  let totalIterations = 0;\n")
		b.WriteString("  let totalNs = 0;\n")
		b.WriteString("  let batch = 100;\n")
		b.WriteString("  while (totalIterations < minIterations || (totalNs < targetNs && totalIterations < maxIterations)) {\n")
		b.WriteString("    const t0 = performance.now();\n")
		b.WriteString("    for (let i = 0; i < batch; i++) {\n")
		if each, ok := spec.EachHooks[dsl.LangTypeScript]; ok {
			b.WriteString(indentBlock(each, "      "))
		}
		b.WriteString("      __polybenchSink = __polybenchBench();\n")
		b.WriteString("    }\n")
		b.WriteString("    const elapsed = (performance.now() - t0) * 1e6;\n")
		b.WriteString("    totalNs += elapsed;\n")
		b.WriteString("    totalIterations += batch;\n")
		b.WriteString("    samples.push(elapsed / Math.max(1, batch));\n")
		b.WriteString("    if (elapsed > 0) {\n")
		b.WriteString("      const remaining = Math.max(0, targetNs - totalNs);\n")
		b.WriteString("      batch = Math.min(1000000, Math.max(1, Math.round((batch * remaining / elapsed) * 1.1)));\n")
		b.WriteString("    } else {\n      batch = Math.min(1000000, batch * 2);\n    }\n")
		b.WriteString("  }\n")
		b.WriteString("  const nanosPerOp = totalNs / totalIterations;\n")
		b.WriteString("  const opsPerSec = 1e9 / nanosPerOp;\n")
		writeTSResultEmission(&b, "totalIterations", "totalNs", "samples")
	default:
		fmt.Fprintf(&b, "  const iterations = %d;\n", spec.Iterations)
		b.WriteString("  const samples: number[] = [];\n")
		b.WriteString("  for (let i = 0; i < iterations; i++) {\n")
		b.WriteString("    const t0 = performance.now();\n")
		if each, ok := spec.EachHooks[dsl.LangTypeScript]; ok {
			b.WriteString(indentBlock(each, "    "))
		}
		b.WriteString("    __polybenchSink = __polybenchBench();\n")
		b.WriteString("    samples.push((performance.now() - t0) * 1e6);\n")
		b.WriteString("  }\n")
		b.WriteString("  const totalNs = samples.reduce((a, b) => a + b, 0);\n")
		b.WriteString("  const nanosPerOp = totalNs / iterations;\n")
		b.WriteString("  const opsPerSec = 1e9 / nanosPerOp;\n")
		writeTSResultEmission(&b, "iterations", "totalNs", "samples")
	}

	if after, ok := spec.AfterHooks[dsl.LangTypeScript]; ok {
		b.WriteString(indentBlock(after, "  "))
	}

	b.WriteString("}\n\nmain();\n")

	return b.String(), nil
}

func writeTSResultEmission(b *strings.Builder, itersVar, totalNsVar, samplesVar string) {
	b.WriteString("  const result = {\n")
	fmt.Fprintf(b, "    iterations: %s,\n", itersVar)
	fmt.Fprintf(b, "    totalNanos: %s,\n", totalNsVar)
	b.WriteString("    warmupNanos,\n")
	b.WriteString("    nanosPerOp,\n")
	b.WriteString("    opsPerSec,\n")
	fmt.Fprintf(b, "    samples: %s,\n", samplesVar)
	b.WriteString("  };\n")
	b.WriteString("  console.log(JSON.stringify(result));\n")
}
