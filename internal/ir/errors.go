package ir

import (
	"fmt"

	"github.com/polybench/polybench/internal/dsl"
)

// LowerError is the semantic-validation error surface raised while lowering
// an AST to IR (spec.md §7).
type LowerError struct {
	Kind     string
	Suite    string
	Name     string
	Lang     string
	Path     string
	Span     dsl.Span
	Detail   string
	Required []string
}

func (e *LowerError) Error() string {
	switch e.Kind {
	case "FixtureFileNotFound":
		return fmt.Sprintf("suite %q: fixture %q: file not found: %s", e.Suite, e.Name, e.Path)
	case "InvalidHex":
		return fmt.Sprintf("suite %q: fixture %q: invalid hex data: %s", e.Suite, e.Name, e.Detail)
	case "MissingRequiredImpl":
		return fmt.Sprintf("suite %q: benchmark %q: missing required implementation for %s", e.Suite, e.Name, e.Lang)
	case "InvalidBaseline":
		return fmt.Sprintf("suite %q: baseline %q is not in requires", e.Suite, e.Lang)
	case "DuplicateName":
		return fmt.Sprintf("suite %q: duplicate name %q", e.Suite, e.Name)
	case "UnknownStdlibModule":
		return fmt.Sprintf("suite %q: unknown stdlib module %q", e.Suite, e.Name)
	default:
		return fmt.Sprintf("suite %q: lower error: %s", e.Suite, e.Detail)
	}
}

func errFixtureFileNotFound(suite, fixture, path string) *LowerError {
	return &LowerError{Kind: "FixtureFileNotFound", Suite: suite, Name: fixture, Path: path}
}

func errInvalidHex(suite, fixture, detail string) *LowerError {
	return &LowerError{Kind: "InvalidHex", Suite: suite, Name: fixture, Detail: detail}
}

func errMissingRequiredImpl(suite, benchmark string, lang dsl.Lang) *LowerError {
	return &LowerError{Kind: "MissingRequiredImpl", Suite: suite, Name: benchmark, Lang: string(lang)}
}

func errInvalidBaseline(suite string, lang dsl.Lang) *LowerError {
	return &LowerError{Kind: "InvalidBaseline", Suite: suite, Lang: string(lang)}
}

func errDuplicateName(suite, name string) *LowerError {
	return &LowerError{Kind: "DuplicateName", Suite: suite, Name: name}
}

func errUnknownStdlibModule(suite, module string) *LowerError {
	return &LowerError{Kind: "UnknownStdlibModule", Suite: suite, Name: module}
}
