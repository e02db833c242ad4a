package runtime

import (
	"fmt"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

func init() {
	Register(dsl.LangC, func(workDir string) (Runtime, error) {
		return newProcessRuntime(cAdapter{}, workDir)
	})
}

type cAdapter struct{}

func (cAdapter) lang() dsl.Lang { return dsl.LangC }

func (cAdapter) sourceFileName(suffix string) string {
	return fmt.Sprintf("bench_%s.c", suffix)
}

func (cAdapter) toolchainProbe() (string, []string) {
	return "cc", []string{"--version"}
}

func (cAdapter) toolchainID(output string) string {
	// first line typically "cc (GCC) 13.2.0" or "Apple clang version 15.0.0"
	fields := strings.Fields(strings.SplitN(output, "\n", 2)[0])
	for _, f := range fields {
		if len(f) > 0 && (f[0] >= '0' && f[0] <= '9') {
			parts := strings.Split(f, ".")
			if len(parts) >= 2 {
				return parts[0] + "." + parts[1]
			}

			return f
		}
	}

	return "unknown"
}

func (cAdapter) checkCmd(sourcePath string) (string, []string) {
	return "cc", []string{"-std=c11", "-fsyntax-only", sourcePath}
}

func (cAdapter) buildCmd(sourcePath, artifactPath string) (string, []string, bool) {
	return "cc", []string{"-std=c11", "-O2", sourcePath, "-o", artifactPath, "-lm"}, true
}

func (cAdapter) runCmd(artifactPath, _ string) (string, []string) {
	return artifactPath, nil
}

func (cAdapter) generateSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR, checkOnly bool) (string, error) {
	impl, ok := spec.Implementations[dsl.LangC]
	if !ok {
		return "", fmt.Errorf("runtime: no C implementation for benchmark %s", spec.FullName)
	}

	var b strings.Builder
	b.WriteString("#include <stdio.h>\n#include <stdint.h>\n#include <time.h>\n#include <stdlib.h>\n\n")

	if raw, ok := suite.Imports[dsl.LangC]; ok && strings.TrimSpace(raw) != "" {
		b.WriteString(normalizeIndent(raw))
		b.WriteString("\n\n")
	}

	if hasStdlibModule(suite.StdlibImports, "constants") {
		b.WriteString(constantsSnippet(dsl.LangC))
		b.WriteString("\n")
	}

	if decl, ok := suite.Declarations[dsl.LangC]; ok && strings.TrimSpace(decl) != "" {
		b.WriteString(normalizeIndent(decl))
		b.WriteString("\n\n")
	}
	if helpers, ok := suite.Helpers[dsl.LangC]; ok && strings.TrimSpace(helpers) != "" {
		b.WriteString(normalizeIndent(helpers))
		b.WriteString("\n\n")
	}

	if initCode, ok := suite.InitCode[dsl.LangC]; ok && strings.TrimSpace(initCode) != "" {
		b.WriteString("static void __polybench_init(void) {\n")
		b.WriteString(indentBlock(initCode, "    "))
		b.WriteString("}\n\n")
	}

	for _, name := range orderedFixtureNames(spec) {
		fixture, ok := suite.Fixtures[name]
		if !ok {
			continue
		}
		if code, ok := fixture.Implementations[dsl.LangC]; ok {
			fmt.Fprintf(&b, "static unsigned char %s[] = %s;\n", name, strings.TrimSpace(code))
		} else if len(fixture.Bytes) > 0 {
			fmt.Fprintf(&b, "static unsigned char %s[] = {%s};\n", name, byteLiteralList(fixture.Bytes, "0x"))
		}
	}
	b.WriteString("\nstatic volatile void *__polybench_sink;\n\n")

	b.WriteString("static void *__polybench_bench(void) {\n")
	b.WriteString(indentBlock(impl, "    "))
	b.WriteString("}\n\n")

	b.WriteString("static double __polybench_now_ns(void) {\n")
	b.WriteString("    struct timespec ts;\n    clock_gettime(CLOCK_MONOTONIC, &ts);\n")
	b.WriteString("    return (double)ts.tv_sec * 1e9 + (double)ts.tv_nsec;\n}\n\n")

	if checkOnly {
		b.WriteString("int main(void) { return 0; }\n")

		return b.String(), nil
	}

	b.WriteString("int main(void) {\n")
	if _, ok := suite.InitCode[dsl.LangC]; ok {
		b.WriteString("    __polybench_init();\n")
	}
	if before, ok := spec.BeforeHooks[dsl.LangC]; ok {
		b.WriteString(indentBlock(before, "    "))
	}

	b.WriteString("    double warmup_start = __polybench_now_ns();\n")
	if spec.WarmupTimeMs > 0 {
		fmt.Fprintf(&b, "    while ((__polybench_now_ns() - warmup_start) / 1e6 < %d) {\n", spec.WarmupTimeMs)
	} else if spec.WarmupIterations > 0 {
		fmt.Fprintf(&b, "    for (uint64_t i = 0; i < %d; i++) {\n", spec.WarmupIterations)
	} else {
		b.WriteString("    for (uint64_t i = 0; i < 0; i++) {\n")
	}
	if each, ok := spec.EachHooks[dsl.LangC]; ok {
		b.WriteString(indentBlock(each, "        "))
	}
	b.WriteString("        __polybench_sink = __polybench_bench();\n")
	b.WriteString("    }\n")
	b.WriteString("    double warmup_nanos = __polybench_now_ns() - warmup_start;\n\n")

	fmt.Fprintf(&b, "    const size_t max_samples = %d;\n", max64(spec.Iterations, spec.MaxIterations))
	b.WriteString("    double *samples = (double *)malloc(sizeof(double) * max_samples);\n")
	b.WriteString("    size_t sample_count = 0;\n\n")

	switch spec.Mode {
	case dsl.ModeAuto:
		fmt.Fprintf(&b, "    double target_ns = %d * 1e6;\n", spec.TargetTimeMs)
		fmt.Fprintf(&b, "    uint64_t min_iterations = %d;\n", spec.MinIterations)
		fmt.Fprintf(&b, "    uint64_t max_iterations = %d;\n", spec.MaxIterations)
		b.WriteString("    uint64_t total_iterations = 0;\n")
		b.WriteString("    double total_ns = 0;\n")
		b.WriteString("    uint64_t batch = 100;\n")
		b.WriteString("    while (total_iterations < min_iterations || (total_ns < target_ns && total_iterations < max_iterations)) {\n")
		b.WriteString("        double t0 = __polybench_now_ns();\n")
		b.WriteString("        for (uint64_t i = 0; i < batch; i++) {\n")
		if each, ok := spec.EachHooks[dsl.LangC]; ok {
			b.WriteString(indentBlock(each, "            "))
		}
		b.WriteString("            __polybench_sink = __polybench_bench();\n")
		b.WriteString("        }\n")
		b.WriteString("        double elapsed = __polybench_now_ns() - t0;\n")
		b.WriteString("        total_ns += elapsed;\n        total_iterations += batch;\n")
		b.WriteString("        if (sample_count < max_samples) samples[sample_count++] = elapsed / (batch > 0 ? batch : 1);\n")
		b.WriteString("        if (elapsed > 0) {\n")
		b.WriteString("            double remaining = target_ns - total_ns;\n            if (remaining < 0) remaining = 0;\n")
		b.WriteString("            double next = ((double)batch * remaining / elapsed) * 1.1;\n")
		b.WriteString("            batch = (uint64_t)next;\n            if (batch < 1) batch = 1;\n            if (batch > 1000000) batch = 1000000;\n")
		b.WriteString("        } else {\n            batch *= 2;\n            if (batch > 1000000) batch = 1000000;\n        }\n")
		b.WriteString("    }\n")
		b.WriteString("    double nanos_per_op = total_ns / (double)total_iterations;\n")
		b.WriteString("    double ops_per_sec = 1e9 / nanos_per_op;\n")
		writeCResultEmission(&b, "total_iterations", "total_ns")
	default:
		fmt.Fprintf(&b, "    uint64_t iterations = %d;\n", spec.Iterations)
		b.WriteString("    for (uint64_t i = 0; i < iterations; i++) {\n")
		b.WriteString("        double t0 = __polybench_now_ns();\n")
		if each, ok := spec.EachHooks[dsl.LangC]; ok {
			b.WriteString(indentBlock(each, "        "))
		}
		b.WriteString("        __polybench_sink = __polybench_bench();\n")
		b.WriteString("        if (sample_count < max_samples) samples[sample_count++] = __polybench_now_ns() - t0;\n")
		b.WriteString("    }\n")
		b.WriteString("    double total_ns = 0;\n    for (size_t i = 0; i < sample_count; i++) total_ns += samples[i];\n")
		b.WriteString("    double nanos_per_op = total_ns / (double)iterations;\n")
		b.WriteString("    double ops_per_sec = 1e9 / nanos_per_op;\n")
		writeCResultEmission(&b, "iterations", "total_ns")
	}

	if after, ok := spec.AfterHooks[dsl.LangC]; ok {
		b.WriteString(indentBlock(after, "    "))
	}

	b.WriteString("    free(samples);\n")
	b.WriteString("    return 0;\n}\n")

	return b.String(), nil
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}

	return b
}

func writeCResultEmission(b *strings.Builder, itersVar, totalNsVar string) {
	b.WriteString("    printf(\"{\\\"iterations\\\":%llu,\\\"totalNanos\\\":%.0f,\\\"warmupNanos\\\":%.0f,\\\"nanosPerOp\\\":%.6f,\\\"opsPerSec\\\":%.6f,\\\"samples\\\":[\",\n")
	fmt.Fprintf(b, "        (unsigned long long)%s, %s, warmup_nanos, nanos_per_op, ops_per_sec);\n", itersVar, totalNsVar)
	b.WriteString("    for (size_t i = 0; i < sample_count; i++) {\n")
	b.WriteString("        if (i > 0) printf(\",\");\n")
	b.WriteString("        printf(\"%.0f\", samples[i]);\n")
	b.WriteString("    }\n")
	b.WriteString("    printf(\"]}\\n\");\n")
}
