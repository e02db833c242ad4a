package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/polybench/polybench/internal/dsl"
	"github.com/polybench/polybench/internal/ir"
)

func init() {
	Register(dsl.LangGo, func(workDir string) (Runtime, error) {
		pr, err := newProcessRuntime(goAdapter{}, workDir)
		if err != nil {
			return nil, err
		}

		return pr, nil
	})
}

type goAdapter struct{}

func (goAdapter) lang() dsl.Lang { return dsl.LangGo }

func (goAdapter) sourceFileName(suffix string) string {
	return fmt.Sprintf("bench_%s.go", suffix)
}

func (goAdapter) toolchainProbe() (string, []string) {
	return "go", []string{"version"}
}

func (goAdapter) toolchainID(output string) string {
	// "go version go1.25.0 linux/amd64" -> "1.25"
	fields := strings.Fields(output)
	for _, f := range fields {
		if strings.HasPrefix(f, "go1") {
			v := strings.TrimPrefix(f, "go")
			parts := strings.Split(v, ".")
			if len(parts) >= 2 {
				return parts[0] + "." + parts[1]
			}

			return v
		}
	}

	return "unknown"
}

func (goAdapter) checkCmd(sourcePath string) (string, []string) {
	return "go", []string{"build", "-o", sourcePath + ".check", sourcePath}
}

func (goAdapter) buildCmd(sourcePath, artifactPath string) (string, []string, bool) {
	return "go", []string{"build", "-o", artifactPath, sourcePath}, true
}

func (goAdapter) runCmd(artifactPath, _ string) (string, []string) {
	return artifactPath, nil
}

func (goAdapter) generateSource(spec *ir.BenchmarkSpec, suite *ir.SuiteIR, checkOnly bool) (string, error) {
	impl, ok := spec.Implementations[dsl.LangGo]
	if !ok {
		return "", fmt.Errorf("runtime: no Go implementation for benchmark %s", spec.FullName)
	}

	var b strings.Builder
	b.WriteString("package main\n\n")

	imports := map[string]bool{
		"fmt": true, "time": true, "encoding/json": true, "os": true,
	}
	if spec.Memory {
		imports["runtime"] = true
	}
	if raw, ok := suite.Imports[dsl.LangGo]; ok {
		for _, line := range strings.Split(normalizeIndent(raw), "\n") {
			line = strings.TrimSpace(line)
			line = strings.Trim(line, `"`)
			if line != "" {
				imports[line] = true
			}
		}
	}

	b.WriteString("import (\n")
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "\t%q\n", name)
	}
	b.WriteString(")\n\n")

	if hasStdlibModule(suite.StdlibImports, "constants") {
		b.WriteString(constantsSnippet(dsl.LangGo))
		b.WriteString("\n")
	}

	if decl, ok := suite.Declarations[dsl.LangGo]; ok && strings.TrimSpace(decl) != "" {
		b.WriteString(normalizeIndent(decl))
		b.WriteString("\n\n")
	}
	if helpers, ok := suite.Helpers[dsl.LangGo]; ok && strings.TrimSpace(helpers) != "" {
		b.WriteString(normalizeIndent(helpers))
		b.WriteString("\n\n")
	}

	if initCode, ok := suite.InitCode[dsl.LangGo]; ok && strings.TrimSpace(initCode) != "" {
		b.WriteString("func __polybenchInit() {\n")
		b.WriteString(indentBlock(initCode, "\t"))
		b.WriteString("}\n\n")
	}

	for _, name := range orderedFixtureNames(spec) {
		fixture, ok := suite.Fixtures[name]
		if !ok {
			continue
		}
		if code, ok := fixture.Implementations[dsl.LangGo]; ok {
			fmt.Fprintf(&b, "var %s = %s\n", name, strings.TrimSpace(code))
		} else if len(fixture.Bytes) > 0 {
			fmt.Fprintf(&b, "var %s = []byte{%s}\n", name, byteLiteralList(fixture.Bytes, "0x"))
		}
	}
	b.WriteString("\n")

	b.WriteString("var __polybenchSink interface{}\n\n")
	b.WriteString("func __polybenchBench() interface{} {\n")
	b.WriteString(indentBlock(impl, "\t"))
	b.WriteString("}\n\n")

	if spec.Memory {
		b.WriteString("func __polybenchMemSnapshot() uint64 {\n")
		b.WriteString("\tvar m runtime.MemStats\n")
		b.WriteString("\truntime.ReadMemStats(&m)\n")
		b.WriteString("\treturn m.HeapAlloc\n")
		b.WriteString("}\n\n")
	}

	if checkOnly {
		b.WriteString("func main() {}\n")

		return b.String(), nil
	}

	b.WriteString("func main() {\n")
	if _, ok := suite.InitCode[dsl.LangGo]; ok {
		b.WriteString("\t__polybenchInit()\n")
	}
	if before, ok := spec.BeforeHooks[dsl.LangGo]; ok {
		b.WriteString(indentBlock(before, "\t"))
	}

	b.WriteString("\twarmupStart := time.Now()\n")
	if spec.WarmupTimeMs > 0 {
		fmt.Fprintf(&b, "\tfor time.Since(warmupStart) < %d*time.Millisecond {\n", spec.WarmupTimeMs)
	} else if spec.WarmupIterations > 0 {
		fmt.Fprintf(&b, "\tfor i := uint64(0); i < %d; i++ {\n", spec.WarmupIterations)
	} else {
		b.WriteString("\tfor false {\n")
	}
	if each, ok := spec.EachHooks[dsl.LangGo]; ok {
		b.WriteString(indentBlock(each, "\t\t"))
	}
	b.WriteString("\t\t__polybenchSink = __polybenchBench()\n")
	b.WriteString("\t}\n")
	b.WriteString("\twarmupNanos := uint64(time.Since(warmupStart).Nanoseconds())\n\n")

	if spec.Memory {
		b.WriteString("\tvar totalAllocated uint64\n")
		b.WriteString("\tmemLast := __polybenchMemSnapshot()\n")
	}

	switch spec.Mode {
	case dsl.ModeAuto:
		fmt.Fprintf(&b, "\ttargetNs := float64(%d) * 1e6\n", spec.TargetTimeMs)
		fmt.Fprintf(&b, "\tminIterations := uint64(%d)\n", spec.MinIterations)
		fmt.Fprintf(&b, "\tmaxIterations := uint64(%d)\n", spec.MaxIterations)
		b.WriteString("\tvar samples []float64\n")
		b.WriteString("\tvar totalIterations uint64\n")
		b.WriteString("\tvar totalNs float64\n")
		b.WriteString("\tbatch := uint64(100)\n")
		b.WriteString("\tfor totalIterations < minIterations || (totalNs < targetNs && totalIterations < maxIterations) {\n")
		b.WriteString("\t\tt0 := time.Now()\n")
		b.WriteString("\t\tfor i := uint64(0); i < batch; i++ {\n")
		if each, ok := spec.EachHooks[dsl.LangGo]; ok {
			b.WriteString(indentBlock(each, "\t\t\t"))
		}
		b.WriteString("\t\t\t__polybenchSink = __polybenchBench()\n")
		b.WriteString("\t\t}\n")
		b.WriteString("\t\telapsed := float64(time.Since(t0).Nanoseconds())\n")
		if spec.Memory {
			b.WriteString("\t\tmemNow := __polybenchMemSnapshot()\n")
			b.WriteString("\t\tif memNow > memLast {\n\t\t\ttotalAllocated += memNow - memLast\n\t\t}\n")
			b.WriteString("\t\tmemLast = memNow\n")
		}
		b.WriteString("\t\ttotalNs += elapsed\n")
		b.WriteString("\t\ttotalIterations += batch\n")
		b.WriteString("\t\tif batch == 0 {\n\t\t\tbatch = 1\n\t\t}\n")
		b.WriteString("\t\tsamples = append(samples, elapsed/float64(batch))\n")
		b.WriteString("\t\tif elapsed > 0 {\n")
		b.WriteString("\t\t\tremaining := targetNs - totalNs\n")
		b.WriteString("\t\t\tif remaining < 0 {\n\t\t\t\tremaining = 0\n\t\t\t}\n")
		b.WriteString("\t\t\tnext := (float64(batch) * remaining / elapsed) * 1.1\n")
		b.WriteString("\t\t\tbatch = uint64(next)\n")
		b.WriteString("\t\t\tif batch < 1 {\n\t\t\t\tbatch = 1\n\t\t\t}\n")
		b.WriteString("\t\t\tif batch > 1000000 {\n\t\t\t\tbatch = 1000000\n\t\t\t}\n")
		b.WriteString("\t\t} else {\n\t\t\tbatch *= 2\n\t\t\tif batch > 1000000 {\n\t\t\t\tbatch = 1000000\n\t\t\t}\n\t\t}\n")
		b.WriteString("\t}\n")
		b.WriteString("\tnanosPerOp := totalNs / float64(totalIterations)\n")
		b.WriteString("\topsPerSec := 1e9 / nanosPerOp\n")
		writeGoResultEmission(&b, spec, "totalIterations", "totalNs", "samples")
	default:
		fmt.Fprintf(&b, "\titerations := uint64(%d)\n", spec.Iterations)
		b.WriteString("\tsamples := make([]float64, iterations)\n")
		b.WriteString("\tfor i := uint64(0); i < iterations; i++ {\n")
		b.WriteString("\t\tt0 := time.Now()\n")
		if each, ok := spec.EachHooks[dsl.LangGo]; ok {
			b.WriteString(indentBlock(each, "\t\t"))
		}
		b.WriteString("\t\t__polybenchSink = __polybenchBench()\n")
		b.WriteString("\t\tsamples[i] = float64(time.Since(t0).Nanoseconds())\n")
		if spec.Memory {
			b.WriteString("\t\tmemNow := __polybenchMemSnapshot()\n")
			b.WriteString("\t\tif memNow > memLast {\n\t\t\ttotalAllocated += memNow - memLast\n\t\t}\n")
			b.WriteString("\t\tmemLast = memNow\n")
		}
		b.WriteString("\t}\n")
		b.WriteString("\tvar totalNs float64\n")
		b.WriteString("\tfor _, s := range samples {\n\t\ttotalNs += s\n\t}\n")
		b.WriteString("\tnanosPerOp := totalNs / float64(iterations)\n")
		b.WriteString("\topsPerSec := 1e9 / nanosPerOp\n")
		writeGoResultEmission(&b, spec, "iterations", "totalNs", "samples")
	}

	if after, ok := spec.AfterHooks[dsl.LangGo]; ok {
		b.WriteString(indentBlock(after, "\t"))
	}

	b.WriteString("}\n")

	return b.String(), nil
}

func writeGoResultEmission(b *strings.Builder, spec *ir.BenchmarkSpec, itersVar, totalNsVar, samplesVar string) {
	b.WriteString("\tresult := map[string]interface{}{\n")
	fmt.Fprintf(b, "\t\t\"iterations\": %s,\n", itersVar)
	fmt.Fprintf(b, "\t\t\"totalNanos\": %s,\n", totalNsVar)
	b.WriteString("\t\t\"warmupNanos\": warmupNanos,\n")
	b.WriteString("\t\t\"nanosPerOp\": nanosPerOp,\n")
	b.WriteString("\t\t\"opsPerSec\": opsPerSec,\n")
	fmt.Fprintf(b, "\t\t\"samples\": %s,\n", samplesVar)
	if spec.Memory {
		fmt.Fprintf(b, "\t\t\"bytesPerOp\": totalAllocated / %s,\n", itersVar)
	}
	b.WriteString("\t}\n")
	b.WriteString("\tline, _ := json.Marshal(result)\n")
	b.WriteString("\tfmt.Fprintln(os.Stdout, string(line))\n")
}
