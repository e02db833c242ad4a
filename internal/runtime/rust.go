package runtime

import (
	"fmt"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

func init() {
	Register(dsl.LangRust, func(workDir string) (Runtime, error) {
		return newProcessRuntime(rustAdapter{}, workDir)
	})
}

type rustAdapter struct{}

func (rustAdapter) lang() dsl.Lang { return dsl.LangRust }

func (rustAdapter) sourceFileName(suffix string) string {
	return fmt.Sprintf("bench_%s.rs", suffix)
}

func (rustAdapter) toolchainProbe() (string, []string) {
	return "rustc", []string{"--version"}
}

func (rustAdapter) toolchainID(output string) string {
	// "rustc 1.80.1 (...)" -> "1.80"
	fields := strings.Fields(output)
	for i, f := range fields {
		if f == "rustc" && i+1 < len(fields) {
			parts := strings.Split(fields[i+1], ".")
			if len(parts) >= 2 {
				return parts[0] + "." + parts[1]
			}
		}
	}

	return "unknown"
}

func (rustAdapter) checkCmd(sourcePath string) (string, []string) {
	return "rustc", []string{"--edition", "2021", "--emit=metadata", "-O", sourcePath, "-o", sourcePath + ".check"}
}

func (rustAdapter) buildCmd(sourcePath, artifactPath string) (string, []string, bool) {
	return "rustc", []string{"--edition", "2021", "-O", sourcePath, "-o", artifactPath}, true
}

func (rustAdapter) runCmd(artifactPath, _ string) (string, []string) {
	return artifactPath, nil
}

func (rustAdapter) generateSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR, checkOnly bool) (string, error) {
	impl, ok := spec.Implementations[dsl.LangRust]
	if !ok {
		return "", fmt.Errorf("runtime: no Rust implementation for benchmark %s", spec.FullName)
	}

	var b strings.Builder
	b.WriteString("use std::time::Instant;\n\n")

	if raw, ok := suite.Imports[dsl.LangRust]; ok && strings.TrimSpace(raw) != "" {
		b.WriteString(normalizeIndent(raw))
		b.WriteString("\n\n")
	}

	if hasStdlibModule(suite.StdlibImports, "constants") {
		b.WriteString(constantsSnippet(dsl.LangRust))
		b.WriteString("\n")
	}

	if decl, ok := suite.Declarations[dsl.LangRust]; ok && strings.TrimSpace(decl) != "" {
		b.WriteString(normalizeIndent(decl))
		b.WriteString("\n\n")
	}
	if helpers, ok := suite.Helpers[dsl.LangRust]; ok && strings.TrimSpace(helpers) != "" {
		b.WriteString(normalizeIndent(helpers))
		b.WriteString("\n\n")
	}

	if initCode, ok := suite.InitCode[dsl.LangRust]; ok && strings.TrimSpace(initCode) != "" {
		b.WriteString("fn __polybench_init() {\n")
		b.WriteString(indentBlock(initCode, "    "))
		b.WriteString("}\n\n")
	}

	for _, name := range orderedFixtureNames(spec) {
		fixture, ok := suite.Fixtures[name]
		if !ok {
			continue
		}
		if code, ok := fixture.Implementations[dsl.LangRust]; ok {
			fmt.Fprintf(&b, "static %s: std::sync::LazyLock<Vec<u8>> = std::sync::LazyLock::new(|| %s);\n", name, strings.TrimSpace(code))
		} else if len(fixture.Bytes) > 0 {
			fmt.Fprintf(&b, "static %s: [u8; %d] = [%s];\n", name, len(fixture.Bytes), byteLiteralList(fixture.Bytes, "0x"))
		}
	}
	b.WriteString("\n")

	b.WriteString("fn __polybench_bench() -> impl std::any::Any {\n")
	b.WriteString(indentBlock(impl, "    "))
	b.WriteString("}\n\n")

	if checkOnly {
		b.WriteString("fn main() {}\n")

		return b.String(), nil
	}

	b.WriteString("fn main() {\n")
	if _, ok := suite.InitCode[dsl.LangRust]; ok {
		b.WriteString("    __polybench_init();\n")
	}
	if before, ok := spec.BeforeHooks[dsl.LangRust]; ok {
		b.WriteString(indentBlock(before, "    "))
	}

	b.WriteString("    let warmup_start = Instant::now();\n")
	if spec.WarmupTimeMs > 0 {
		fmt.Fprintf(&b, "    while warmup_start.elapsed().as_millis() < %d {\n", spec.WarmupTimeMs)
	} else if spec.WarmupIterations > 0 {
		fmt.Fprintf(&b, "    for _ in 0..%d {\n", spec.WarmupIterations)
	} else {
		b.WriteString("    for _ in 0..0 {\n")
	}
	if each, ok := spec.EachHooks[dsl.LangRust]; ok {
		b.WriteString(indentBlock(each, "        "))
	}
	b.WriteString("        std::hint::black_box(__polybench_bench());\n")
	b.WriteString("    }\n")
	b.WriteString("    let warmup_nanos = warmup_start.elapsed().as_nanos() as u64;\n\n")

	switch spec.Mode {
	case dsl.ModeAuto:
		fmt.Fprintf(&b, "    let target_ns = %d as f64 * 1e6;\n", spec.TargetTimeMs)
		fmt.Fprintf(&b, "    let min_iterations: u64 = %d;\n", spec.MinIterations)
		fmt.Fprintf(&b, "    let max_iterations: u64 = %d;\n", spec.MaxIterations)
		b.WriteString("    let mut samples: Vec<f64> = Vec::new();\n")
		b.WriteString("    let mut total_iterations: u64 = 0;\n")
		b.WriteString("    let mut total_ns: f64 = 0.0;\n")
		b.WriteString("    let mut batch: u64 = 100;\n")
		b.WriteString("    while total_iterations < min_iterations || (total_ns < target_ns && total_iterations < max_iterations) {\n")
		b.WriteString("        let t0 = Instant::now();\n")
		b.WriteString("        for _ in 0..batch {\n")
		if each, ok := spec.EachHooks[dsl.LangRust]; ok {
			b.WriteString(indentBlock(each, "            "))
		}
		b.WriteString("            std::hint::black_box(__polybench_bench());\n")
		b.WriteString("        }\n")
		b.WriteString("        let elapsed = t0.elapsed().as_nanos() as f64;\n")
		b.WriteString("        total_ns += elapsed;\n")
		b.WriteString("        total_iterations += batch;\n")
		b.WriteString("        samples.push(elapsed / (batch.max(1) as f64));\n")
		b.WriteString("        if elapsed > 0.0 {\n")
		b.WriteString("            let remaining = (target_ns - total_ns).max(0.0);\n")
		b.WriteString("            let next = ((batch as f64) * remaining / elapsed) * 1.1;\n")
		b.WriteString("            batch = (next as u64).clamp(1, 1_000_000);\n")
		b.WriteString("        } else {\n            batch = (batch * 2).min(1_000_000);\n        }\n")
		b.WriteString("    }\n")
		b.WriteString("    let nanos_per_op = total_ns / total_iterations as f64;\n")
		b.WriteString("    let ops_per_sec = 1e9 / nanos_per_op;\n")
		writeRustResultEmission(&b, "total_iterations", "total_ns", "samples")
	default:
		fmt.Fprintf(&b, "    let iterations: u64 = %d;\n", spec.Iterations)
		b.WriteString("    let mut samples: Vec<f64> = Vec::with_capacity(iterations as usize);\n")
		b.WriteString("    for _ in 0..iterations {\n")
		b.WriteString("        let t0 = Instant::now();\n")
		if each, ok := spec.EachHooks[dsl.LangRust]; ok {
			b.WriteString(indentBlock(each, "        "))
		}
		b.WriteString("        std::hint::black_box(__polybench_bench());\n")
		b.WriteString("        samples.push(t0.elapsed().as_nanos() as f64);\n")
		b.WriteString("    }\n")
		b.WriteString("    let total_ns: f64 = samples.iter().sum();\n")
		b.WriteString("    let nanos_per_op = total_ns / iterations as f64;\n")
		b.WriteString("    let ops_per_sec = 1e9 / nanos_per_op;\n")
		writeRustResultEmission(&b, "iterations", "total_ns", "samples")
	}

	if after, ok := spec.AfterHooks[dsl.LangRust]; ok {
		b.WriteString(indentBlock(after, "    "))
	}

	b.WriteString("}\n")

	return b.String(), nil
}

func writeRustResultEmission(b *strings.Builder, itersVar, totalNsVar, samplesVar string) {
	b.WriteString(`    let samples_json: Vec<String> = ` + samplesVar + `.iter().map(|s| format!("{:.0}", s)).collect();` + "\n")
	fmt.Fprintf(b, "    println!(\"{{\\\"iterations\\\":{},\\\"totalNanos\\\":{:.0},\\\"warmupNanos\\\":{},\\\"nanosPerOp\\\":{:.6},\\\"opsPerSec\\\":{:.6},\\\"samples\\\":[{}]}}\", %s, %s, warmup_nanos, nanos_per_op, ops_per_sec, samples_json.join(\",\"));\n", itersVar, totalNsVar)
}
