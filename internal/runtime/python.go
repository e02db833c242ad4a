package runtime

import (
	"fmt"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

func init() {
	Register(dsl.LangPython, func(workDir string) (Runtime, error) {
		return newProcessRuntime(pythonAdapter{}, workDir)
	})
}

type pythonAdapter struct{}

func (pythonAdapter) lang() dsl.Lang { return dsl.LangPython }

func (pythonAdapter) sourceFileName(suffix string) string {
	return fmt.Sprintf("bench_%s.py", suffix)
}

func (pythonAdapter) toolchainProbe() (string, []string) {
	return "python3", []string{"--version"}
}

func (pythonAdapter) toolchainID(output string) string {
	// "Python 3.12.3" -> "3.12"
	fields := strings.Fields(output)
	if len(fields) < 2 {
		return "unknown"
	}
	parts := strings.Split(fields[1], ".")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}

	return fields[1]
}

func (pythonAdapter) checkCmd(sourcePath string) (string, []string) {
	return "python3", []string{"-m", "py_compile", sourcePath}
}

func (pythonAdapter) buildCmd(_, _ string) (string, []string, bool) {
	return "", nil, false
}

func (pythonAdapter) runCmd(_, sourcePath string) (string, []string) {
	return "python3", []string{sourcePath}
}

func (pythonAdapter) generateSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR, checkOnly bool) (string, error) {
	impl, ok := spec.Implementations[dsl.LangPython]
	if !ok {
		return "", fmt.Errorf("runtime: no Python implementation for benchmark %s", spec.FullName)
	}

	var b strings.Builder
	b.WriteString("import time\nimport json\nimport sys\n\n")

	if raw, ok := suite.Imports[dsl.LangPython]; ok && strings.TrimSpace(raw) != "" {
		b.WriteString(normalizeIndent(raw))
		b.WriteString("\n\n")
	}

	if hasStdlibModule(suite.StdlibImports, "constants") {
		b.WriteString(constantsSnippet(dsl.LangPython))
		b.WriteString("\n")
	}

	if decl, ok := suite.Declarations[dsl.LangPython]; ok && strings.TrimSpace(decl) != "" {
		b.WriteString(normalizeIndent(decl))
		b.WriteString("\n\n")
	}
	if helpers, ok := suite.Helpers[dsl.LangPython]; ok && strings.TrimSpace(helpers) != "" {
		b.WriteString(normalizeIndent(helpers))
		b.WriteString("\n\n")
	}

	if initCode, ok := suite.InitCode[dsl.LangPython]; ok && strings.TrimSpace(initCode) != "" {
		b.WriteString("def __polybench_init():\n")
		b.WriteString(indentBlock(initCode, "    "))
		b.WriteString("\n")
	}

	for _, name := range orderedFixtureNames(spec) {
		fixture, ok := suite.Fixtures[name]
		if !ok {
			continue
		}
		if code, ok := fixture.Implementations[dsl.LangPython]; ok {
			fmt.Fprintf(&b, "%s = %s\n", name, strings.TrimSpace(code))
		} else if len(fixture.Bytes) > 0 {
			fmt.Fprintf(&b, "%s = bytearray([%s])\n", name, byteLiteralList(fixture.Bytes, "0x"))
		}
	}
	b.WriteString("\n__polybench_sink = None\n\n")

	b.WriteString("def __polybench_bench():\n")
	b.WriteString(indentBlock(impl, "    "))
	b.WriteString("\n\n")

	if checkOnly {
		return b.String(), nil
	}

	b.WriteString("def main():\n")
	b.WriteString("    global __polybench_sink\n")
	if _, ok := suite.InitCode[dsl.LangPython]; ok {
		b.WriteString("    __polybench_init()\n")
	}
	if before, ok := spec.BeforeHooks[dsl.LangPython]; ok {
		b.WriteString(indentBlock(before, "    "))
	}

	b.WriteString("    warmup_start = time.perf_counter_ns()\n")
	if spec.WarmupTimeMs > 0 {
		fmt.Fprintf(&b, "    while (time.perf_counter_ns() - warmup_start) / 1e6 < %d:\n", spec.WarmupTimeMs)
	} else if spec.WarmupIterations > 0 {
		fmt.Fprintf(&b, "    for _ in range(%d):\n", spec.WarmupIterations)
	} else {
		b.WriteString("    for _ in range(0):\n")
	}
	if each, ok := spec.EachHooks[dsl.LangPython]; ok {
		b.WriteString(indentBlock(each, "        "))
	}
	b.WriteString("        __polybench_sink = __polybench_bench()\n")
	b.WriteString("    warmup_nanos = time.perf_counter_ns() - warmup_start\n\n")

	switch spec.Mode {
	case dsl.ModeAuto:
		fmt.Fprintf(&b, "    target_ns = %d * 1e6\n", spec.TargetTimeMs)
		fmt.Fprintf(&b, "    min_iterations = %d\n", spec.MinIterations)
		fmt.Fprintf(&b, "    max_iterations = %d\n", spec.MaxIterations)
		b.WriteString("    samples = []\n")
		b.WriteString("    total_iterations = 0\n")
		b.WriteString("    total_ns = 0.0\n")
		b.WriteString("    batch = 100\n")
		b.WriteString("    while total_iterations < min_iterations or (total_ns < target_ns and total_iterations < max_iterations):\n")
		b.WriteString("        t0 = time.perf_counter_ns()\n")
		b.WriteString("        for _ in range(batch):\n")
		if each, ok := spec.EachHooks[dsl.LangPython]; ok {
			b.WriteString(indentBlock(each, "            "))
		}
		b.WriteString("            __polybench_sink = __polybench_bench()\n")
		b.WriteString("        elapsed = time.perf_counter_ns() - t0\n")
		b.WriteString("        total_ns += elapsed\n")
		b.WriteString("        total_iterations += batch\n")
		b.WriteString("        samples.append(elapsed / max(1, batch))\n")
		b.WriteString("        if elapsed > 0:\n")
		b.WriteString("            remaining = max(0.0, target_ns - total_ns)\n")
		b.WriteString("            batch = min(1000000, max(1, int((batch * remaining / elapsed) * 1.1)))\n")
		b.WriteString("        else:\n            batch = min(1000000, batch * 2)\n")
		b.WriteString("    nanos_per_op = total_ns / total_iterations\n")
		b.WriteString("    ops_per_sec = 1e9 / nanos_per_op\n")
		writePythonResultEmission(&b, "total_iterations", "total_ns", "samples")
	default:
		fmt.Fprintf(&b, "    iterations = %d\n", spec.Iterations)
		b.WriteString("    samples = []\n")
		b.WriteString("    for _ in range(iterations):\n")
		b.WriteString("        t0 = time.perf_counter_ns()\n")
		if each, ok := spec.EachHooks[dsl.LangPython]; ok {
			b.WriteString(indentBlock(each, "        "))
		}
		b.WriteString("        __polybench_sink = __polybench_bench()\n")
		b.WriteString("        samples.append(time.perf_counter_ns() - t0)\n")
		b.WriteString("    total_ns = float(sum(samples))\n")
		b.WriteString("    nanos_per_op = total_ns / iterations\n")
		b.WriteString("    ops_per_sec = 1e9 / nanos_per_op\n")
		writePythonResultEmission(&b, "iterations", "total_ns", "samples")
	}

	if after, ok := spec.AfterHooks[dsl.LangPython]; ok {
		b.WriteString(indentBlock(after, "    "))
	}

	b.WriteString("\nif __name__ == \"__main__\":\n    main()\n")

	return b.String(), nil
}

func writePythonResultEmission(b *strings.Builder, itersVar, totalNsVar, samplesVar string) {
	b.WriteString("    result = {\n")
	fmt.Fprintf(b, "        \"iterations\": %s,\n", itersVar)
	fmt.Fprintf(b, "        \"totalNanos\": %s,\n", totalNsVar)
	b.WriteString("        \"warmupNanos\": warmup_nanos,\n")
	b.WriteString("        \"nanosPerOp\": nanos_per_op,\n")
	b.WriteString("        \"opsPerSec\": ops_per_sec,\n")
	fmt.Fprintf(b, "        \"samples\": %s,\n", samplesVar)
	b.WriteString("    }\n")
	b.WriteString("    print(json.dumps(result))\n")
}
