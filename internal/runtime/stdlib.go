package runtime

import "github.com/polybench/polybench/internal/dsl"

// constantsSnippet returns the per-language source injected by
// `use std::constants` (spec.md §4.4's "stdlib-injected constants"). The
// polybench stdlib's "constants" module exposes a single fixed PRNG seed so
// every language's benchmark implementation can draw deterministic random
// input without each one hand-rolling its own seed value.
func constantsSnippet(lang dsl.Lang) string {
	switch lang {
	case dsl.LangGo:
		return "const PolybenchSeed uint64 = 0x2545F4914F6CDD1D\n"
	case dsl.LangTypeScript:
		return "const POLYBENCH_SEED = 0x2545F4914F6CDD1Dn;\n"
	case dsl.LangRust:
		return "const POLYBENCH_SEED: u64 = 0x2545F4914F6CDD1D;\n"
	case dsl.LangPython:
		return "POLYBENCH_SEED = 0x2545F4914F6CDD1D\n"
	case dsl.LangC:
		return "static const unsigned long long POLYBENCH_SEED = 0x2545F4914F6CDD1DULL;\n"
	case dsl.LangCSharp:
		return "const ulong PolybenchSeed = 0x2545F4914F6CDD1D;\n"
	case dsl.LangZig:
		return "const polybench_seed: u64 = 0x2545F4914F6CDD1D;\n"
	default:
		return ""
	}
}

// hasStdlibModule reports whether a suite's `use std::<module>` directives
// include module.
func hasStdlibModule(stdlibImports []string, module string) bool {
	for _, m := range stdlibImports {
		if m == module {
			return true
		}
	}

	return false
}
