package runtime

import (
	"fmt"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

func init() {
	Register(dsl.LangCSharp, func(workDir string) (Runtime, error) {
		return newProcessRuntime(csharpAdapter{}, workDir)
	})
}

type csharpAdapter struct{}

func (csharpAdapter) lang() dsl.Lang { return dsl.LangCSharp }

func (csharpAdapter) sourceFileName(suffix string) string {
	return fmt.Sprintf("bench_%s.cs", suffix)
}

func (csharpAdapter) toolchainProbe() (string, []string) {
	return "dotnet", []string{"--version"}
}

func (csharpAdapter) toolchainID(output string) string {
	// "8.0.104" -> "8.0"
	parts := strings.Split(strings.TrimSpace(output), ".")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}

	return strings.TrimSpace(output)
}

// C# compile-check runs `dotnet build` on the generated source; there is no
// separate precompile step, and the run uses `dotnet run --project`, which
// performs its own implicit build.
func (csharpAdapter) checkCmd(sourcePath string) (string, []string) {
	return "dotnet", []string{"build", sourcePath}
}

func (csharpAdapter) buildCmd(sourcePath, _ string) (string, []string, bool) {
	return "", nil, false
}

func (csharpAdapter) runCmd(_, sourcePath string) (string, []string) {
	return "dotnet", []string{"run", "--project", sourcePath}
}

func (csharpAdapter) generateSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR, checkOnly bool) (string, error) {
	impl, ok := spec.Implementations[dsl.LangCSharp]
	if !ok {
		return "", fmt.Errorf("runtime: no C# implementation for benchmark %s", spec.FullName)
	}

	var b strings.Builder
	b.WriteString("using System;\nusing System.Diagnostics;\nusing System.Text.Json;\n\n")

	if raw, ok := suite.Imports[dsl.LangCSharp]; ok && strings.TrimSpace(raw) != "" {
		b.WriteString(normalizeIndent(raw))
		b.WriteString("\n\n")
	}

	if hasStdlibModule(suite.StdlibImports, "constants") {
		b.WriteString(constantsSnippet(dsl.LangCSharp))
		b.WriteString("\n")
	}

	b.WriteString("class Polybench {\n")

	if decl, ok := suite.Declarations[dsl.LangCSharp]; ok && strings.TrimSpace(decl) != "" {
		b.WriteString(indentBlock(decl, "    "))
		b.WriteString("\n")
	}
	if helpers, ok := suite.Helpers[dsl.LangCSharp]; ok && strings.TrimSpace(helpers) != "" {
		b.WriteString(indentBlock(helpers, "    "))
		b.WriteString("\n")
	}

	if initCode, ok := suite.InitCode[dsl.LangCSharp]; ok && strings.TrimSpace(initCode) != "" {
		b.WriteString("    static void PolybenchInit() {\n")
		b.WriteString(indentBlock(initCode, "        "))
		b.WriteString("    }\n\n")
	}

	for _, name := range orderedFixtureNames(spec) {
		fixture, ok := suite.Fixtures[name]
		if !ok {
			continue
		}
		if code, ok := fixture.Implementations[dsl.LangCSharp]; ok {
			fmt.Fprintf(&b, "    static var %s = %s;\n", name, strings.TrimSpace(code))
		} else if len(fixture.Bytes) > 0 {
			fmt.Fprintf(&b, "    static byte[] %s = new byte[] {%s};\n", name, byteLiteralList(fixture.Bytes, "0x"))
		}
	}
	b.WriteString("\n    static object PolybenchSink;\n\n")

	b.WriteString("    static object PolybenchBench() {\n")
	b.WriteString(indentBlock(impl, "        "))
	b.WriteString("    }\n\n")

	if checkOnly {
		b.WriteString("    static void Main() {}\n}\n")

		return b.String(), nil
	}

	b.WriteString("    static void Main() {\n")
	if _, ok := suite.InitCode[dsl.LangCSharp]; ok {
		b.WriteString("        PolybenchInit();\n")
	}
	if before, ok := spec.BeforeHooks[dsl.LangCSharp]; ok {
		b.WriteString(indentBlock(before, "        "))
	}

	b.WriteString("        var warmupSw = Stopwatch.StartNew();\n")
	if spec.WarmupTimeMs > 0 {
		fmt.Fprintf(&b, "        while (warmupSw.ElapsedMilliseconds < %d) {\n", spec.WarmupTimeMs)
	} else if spec.WarmupIterations > 0 {
		fmt.Fprintf(&b, "        for (ulong i = 0; i < %d; i++) {\n", spec.WarmupIterations)
	} else {
		b.WriteString("        while (false) {\n")
	}
	if each, ok := spec.EachHooks[dsl.LangCSharp]; ok {
		b.WriteString(indentBlock(each, "            "))
	}
	b.WriteString("            PolybenchSink = PolybenchBench();\n")
	b.WriteString("        }\n")
	b.WriteString("        long warmupNanos = warmupSw.ElapsedTicks * (1_000_000_000L / Stopwatch.Frequency);\n\n")

	switch spec.Mode {
	case dsl.ModeAuto:
		fmt.Fprintf(&b, "        double targetNs = %d * 1e6;\n", spec.TargetTimeMs)
		fmt.Fprintf(&b, "        ulong minIterations = %d;\n", spec.MinIterations)
		fmt.Fprintf(&b, "        ulong maxIterations = %d;\n", spec.MaxIterations)
		b.WriteString("        var samples = new System.Collections.Generic.List<double>();\n")
		b.WriteString("        ulong totalIterations = 0;\n")
		b.WriteString("        double totalNs = 0;\n")
		b.WriteString("        ulong batch = 100;\n")
		b.WriteString("        while (totalIterations < minIterations || (totalNs < targetNs && totalIterations < maxIterations)) {\n")
		b.WriteString("            var sw = Stopwatch.StartNew();\n")
		b.WriteString("            for (ulong i = 0; i < batch; i++) {\n")
		if each, ok := spec.EachHooks[dsl.LangCSharp]; ok {
			b.WriteString(indentBlock(each, "                "))
		}
		b.WriteString("                PolybenchSink = PolybenchBench();\n")
		b.WriteString("            }\n")
		b.WriteString("            double elapsed = sw.ElapsedTicks * (1e9 / Stopwatch.Frequency);\n")
		b.WriteString("            totalNs += elapsed;\n            totalIterations += batch;\n")
		b.WriteString("            samples.Add(elapsed / Math.Max(1UL, batch));\n")
		b.WriteString("            if (elapsed > 0) {\n")
		b.WriteString("                double remaining = Math.Max(0, targetNs - totalNs);\n")
		b.WriteString("                double next = (batch * remaining / elapsed) * 1.1;\n")
		b.WriteString("                batch = (ulong)Math.Clamp(next, 1, 1_000_000);\n")
		b.WriteString("            } else {\n                batch = Math.Min(1_000_000UL, batch * 2);\n            }\n")
		b.WriteString("        }\n")
		b.WriteString("        double nanosPerOp = totalNs / totalIterations;\n")
		b.WriteString("        double opsPerSec = 1e9 / nanosPerOp;\n")
		writeCSharpResultEmission(&b, "totalIterations", "totalNs", "samples")
	default:
		fmt.Fprintf(&b, "        ulong iterations = %d;\n", spec.Iterations)
		b.WriteString("        var samples = new System.Collections.Generic.List<double>();\n")
		b.WriteString("        for (ulong i = 0; i < iterations; i++) {\n")
		b.WriteString("            var sw = Stopwatch.StartNew();\n")
		if each, ok := spec.EachHooks[dsl.LangCSharp]; ok {
			b.WriteString(indentBlock(each, "            "))
		}
		b.WriteString("            PolybenchSink = PolybenchBench();\n")
		b.WriteString("            samples.Add(sw.ElapsedTicks * (1e9 / Stopwatch.Frequency));\n")
		b.WriteString("        }\n")
		b.WriteString("        double totalNs = 0;\n        foreach (var s in samples) totalNs += s;\n")
		b.WriteString("        double nanosPerOp = totalNs / iterations;\n")
		b.WriteString("        double opsPerSec = 1e9 / nanosPerOp;\n")
		writeCSharpResultEmission(&b, "iterations", "totalNs", "samples")
	}

	if after, ok := spec.AfterHooks[dsl.LangCSharp]; ok {
		b.WriteString(indentBlock(after, "        "))
	}

	b.WriteString("    }\n}\n")

	return b.String(), nil
}

func writeCSharpResultEmission(b *strings.Builder, itersVar, totalNsVar, samplesVar string) {
	b.WriteString("        var result = new {\n")
	fmt.Fprintf(b, "            iterations = %s,\n", itersVar)
	fmt.Fprintf(b, "            totalNanos = %s,\n", totalNsVar)
	b.WriteString("            warmupNanos,\n")
	b.WriteString("            nanosPerOp,\n")
	b.WriteString("            opsPerSec,\n")
	fmt.Fprintf(b, "            samples = %s,\n", samplesVar)
	b.WriteString("        };\n")
	b.WriteString("        Console.WriteLine(JsonSerializer.Serialize(result));\n")
}
