package dsl

import (
	"strconv"
)

// Parser is a recursive-descent parser over a Token stream. In strict mode
// (the build command path) it fails on the first error; in lenient mode
// (the editor path, spec.md §4.8) it records errors via onError and keeps
// going so the rest of the file can still produce diagnostics/completions.
type Parser struct {
	tokens  []Token
	current int
	source  string
	lenient bool
	onError func(error)
	errs    []error
}

// NewParser creates a strict-mode Parser over source, which has already been
// tokenized into tokens.
func NewParser(tokens []Token, source string) *Parser {
	return &Parser{tokens: tokens, source: source}
}

// NewLenientParser creates a Parser that records errors instead of failing,
// used by the diagnostics/completion surface (spec.md §4.8).
func NewLenientParser(tokens []Token, source string) *Parser {
	p := &Parser{tokens: tokens, source: source, lenient: true}
	p.onError = func(err error) { p.errs = append(p.errs, err) }

	return p
}

// Errors returns every error recorded while parsing in lenient mode.
func (p *Parser) Errors() []error {
	return p.errs
}

// Parse parses the file source into a File, given pre-lexed tokens.
func Parse(source string) (*File, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}

	p := NewParser(tokens, source)
	file := p.ParseFile()
	if len(p.errs) > 0 {
		return file, p.errs[0]
	}

	return file, nil
}

// ParseLenient parses source without aborting on error, returning whatever
// partial File it could build plus the errors it recorded.
func ParseLenient(source string) (*File, []error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, []error{err}
	}

	p := NewLenientParser(tokens, source)
	file := p.ParseFile()

	return file, p.Errors()
}

// ParseFile parses the whole token stream into a File AST.
func (p *Parser) ParseFile() *File {
	file := &File{}

	for p.check(TokUse) {
		useStd, err := p.parseUseStd()
		if err != nil {
			if !p.fail(err) {
				return file
			}

			continue
		}
		file.UseStds = append(file.UseStds, useStd)
	}

	for !p.atEnd() {
		if p.check(TokGlobalSetup) {
			gs, err := p.parseGlobalSetup()
			if err != nil {
				if !p.fail(err) {
					return file
				}

				continue
			}
			file.GlobalSetup = gs

			continue
		}

		suite, err := p.parseSuite()
		if err != nil {
			if !p.fail(err) {
				return file
			}

			continue
		}
		file.Suites = append(file.Suites, suite)
	}

	return file
}

// fail reports err. In strict mode it always returns false (meaning: stop).
// In lenient mode it records the error, skips a token to make forward
// progress, and returns true (meaning: keep going).
func (p *Parser) fail(err error) bool {
	if !p.lenient {
		p.errs = []error{err}

		return false
	}

	p.onError(err)
	if !p.atEnd() {
		p.advance()
	}

	return true
}

func (p *Parser) parseUseStd() (UseStd, error) {
	useTok, err := p.expect(TokUse)
	if err != nil {
		return UseStd{}, err
	}

	stdTok, err := p.expectIdentifier()
	if err != nil {
		return UseStd{}, err
	}
	if stdTok.Lexeme != "std" {
		return UseStd{}, errExpectedToken("std", stdTok.Lexeme, stdTok.Span)
	}

	if _, err := p.expect(TokDoubleColon); err != nil {
		return UseStd{}, err
	}

	moduleTok, err := p.expectIdentifier()
	if err != nil {
		return UseStd{}, err
	}

	return UseStd{
		Module:     moduleTok.Lexeme,
		FullSpan:   Cover(useTok.Span, moduleTok.Span),
		UseSpan:    useTok.Span,
		StdSpan:    stdTok.Span,
		ModuleSpan: moduleTok.Span,
	}, nil
}

func (p *Parser) parseGlobalSetup() (*GlobalSetup, error) {
	tok, err := p.expect(TokGlobalSetup)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	gs := &GlobalSetup{Span: tok.Span}

	for !p.check(TokRBrace) && !p.atEnd() {
		ident, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}

		switch ident.Lexeme {
		case "anvil":
			gs.Anvil = &AnvilSetupConfig{}
			if p.check(TokLBrace) {
				if _, err := p.expect(TokLBrace); err != nil {
					return nil, err
				}
				for !p.check(TokRBrace) && !p.atEnd() {
					key, err := p.expectIdentifier()
					if err != nil {
						return nil, err
					}
					if _, err := p.expect(TokColon); err != nil {
						return nil, err
					}
					val, err := p.expectString()
					if err != nil {
						return nil, err
					}
					if key.Lexeme == "forkUrl" {
						gs.Anvil.ForkURL = val
					}
				}
				if _, err := p.expect(TokRBrace); err != nil {
					return nil, err
				}
			}
		default:
			return nil, errInvalidProperty(ident.Lexeme, ident.Span)
		}
	}

	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}

	return gs, nil
}

func (p *Parser) parseSuite() (*Suite, error) {
	if _, err := p.expect(TokSuite); err != nil {
		return nil, err
	}

	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	suite := NewSuite(nameTok.Lexeme, nameTok.Span)

	for !p.check(TokRBrace) && !p.atEnd() {
		if err := p.parseSuiteItem(suite); err != nil {
			if !p.fail(err) {
				return suite, err
			}

			continue
		}
	}

	if _, err := p.expect(TokRBrace); err != nil {
		return suite, err
	}

	return suite, nil
}

func (p *Parser) parseSuiteItem(suite *Suite) error {
	tok := p.peek()

	switch tok.Kind {
	case TokDescription:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectString()
		if err != nil {
			return err
		}
		suite.Description = v
	case TokIterations:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		suite.Iterations = &v
	case TokWarmup:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		suite.Warmup = &v
	case TokTimeout:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectDuration()
		if err != nil {
			return err
		}
		suite.Timeout = &v
	case TokRequires:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		langs, err := p.parseLangArray()
		if err != nil {
			return err
		}
		suite.Requires = langs
	case TokOrder:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		ident, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		order, ok := ExecutionOrderFromString(ident.Lexeme)
		if !ok {
			return errExpectedToken("execution order", ident.Lexeme, ident.Span)
		}
		suite.Order = order
	case TokBaseline:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		s, err := p.expectString()
		if err != nil {
			return err
		}
		lang, ok := LangFromString(s)
		if !ok {
			return errUnknownLang(s, p.previous().Span)
		}
		suite.Baseline = &lang
	case TokMode:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		ident, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		mode, ok := RunModeFromString(ident.Lexeme)
		if !ok {
			return errExpectedToken("run mode", ident.Lexeme, ident.Span)
		}
		suite.Mode = mode
	case TokTargetTime:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectDuration()
		if err != nil {
			return err
		}
		suite.TargetTimeMs = &v
	case TokMinIterations:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		suite.MinIterations = &v
	case TokMaxIterations:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		suite.MaxIterations = &v
	case TokOutlierDetection:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		suite.OutlierDetection = &v
	case TokCVThreshold:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectFloat()
		if err != nil {
			return err
		}
		suite.CVThreshold = &v
	case TokCount:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		suite.Count = &v
	case TokMemory:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		suite.Memory = &v
	case TokConcurrency:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		suite.Concurrency = &v
	case TokGlobalSetup:
		gs, err := p.parseGlobalSetup()
		if err != nil {
			return err
		}
		suite.GlobalSetup = gs
	case TokSetup:
		lang, setup, err := p.parseStructuredSetup()
		if err != nil {
			return err
		}
		suite.Setups[lang] = setup
	case TokFixture:
		fixture, err := p.parseFixture()
		if err != nil {
			return err
		}
		suite.Fixtures = append(suite.Fixtures, fixture)
	case TokBench:
		bench, err := p.parseBenchmark()
		if err != nil {
			return err
		}
		suite.Benchmarks = append(suite.Benchmarks, bench)
	case TokAfter:
		// Suite-level `after { }` holds charting directives, distinguished
		// from a benchmark-level `after <lang>:` hook by the absence of a
		// language token before the brace (spec.md §4.2).
		directives, err := p.parseAfterCharting()
		if err != nil {
			return err
		}
		suite.ChartDirectives = append(suite.ChartDirectives, directives...)
	case TokIdentifier:
		if lang, ok := LangFromString(tok.Lexeme); ok {
			_ = lang

			return errInvalidProperty(tok.Lexeme, tok.Span)
		}

		return errInvalidProperty(tok.Lexeme, tok.Span)
	default:
		return errExpectedToken("suite item (setup, fixture, bench, or property)", tok.Lexeme, tok.Span)
	}

	return nil
}

func (p *Parser) parseStructuredSetup() (Lang, *StructuredSetup, error) {
	setupTok, err := p.expect(TokSetup)
	if err != nil {
		return "", nil, err
	}

	lang, err := p.expectLang()
	if err != nil {
		return "", nil, err
	}

	if _, err := p.expect(TokLBrace); err != nil {
		return "", nil, err
	}

	setup := &StructuredSetup{Span: setupTok.Span}

	for !p.check(TokRBrace) && !p.atEnd() {
		tok := p.peek()
		switch tok.Kind {
		case TokImport:
			p.advance()
			code, err := p.parseImportBlock()
			if err != nil {
				return "", nil, err
			}
			setup.Imports = code
		case TokDeclare:
			p.advance()
			code, err := p.parseCodeBlock()
			if err != nil {
				return "", nil, err
			}
			setup.Declarations = code
		case TokAsync:
			p.advance()
			if _, err := p.expect(TokInit); err != nil {
				return "", nil, err
			}
			code, err := p.parseCodeBlock()
			if err != nil {
				return "", nil, err
			}
			setup.Init = code
			setup.AsyncInit = true
		case TokInit:
			p.advance()
			code, err := p.parseCodeBlock()
			if err != nil {
				return "", nil, err
			}
			setup.Init = code
		case TokHelpers:
			p.advance()
			code, err := p.parseCodeBlock()
			if err != nil {
				return "", nil, err
			}
			setup.Helpers = code
		default:
			return "", nil, errExpectedToken("setup section (import, declare, init, helpers)", tok.Lexeme, tok.Span)
		}
	}

	if _, err := p.expect(TokRBrace); err != nil {
		return "", nil, err
	}

	return lang, setup, nil
}

// parseImportBlock handles Go-style grouped `import ( ... )` as well as
// brace-delimited `import { ... }` imports (TypeScript-style), per
// original_source/src/dsl/parser.rs.
func (p *Parser) parseImportBlock() (*CodeBlock, error) {
	if p.check(TokLParen) {
		return p.parseParenBlock()
	}
	if p.check(TokLBrace) {
		return p.parseCodeBlock()
	}

	return p.parseInlineCode(stopAtSectionKeywords)
}

func (p *Parser) parseParenBlock() (*CodeBlock, error) {
	open, err := p.expect(TokLParen)
	if err != nil {
		return nil, err
	}

	contentStart := open.Span.End
	depth := 1
	var lastSpan Span

	for depth > 0 && !p.atEnd() {
		tok := p.advance()
		switch tok.Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
			if depth == 0 {
				lastSpan = tok.Span
			}
		}
	}

	if depth > 0 {
		return nil, errUnclosedBrace(open.Span)
	}

	contentEnd := lastSpan.Start
	code := ""
	if contentEnd > contentStart && contentEnd <= len(p.source) {
		code = p.source[contentStart:contentEnd]
	}

	return &CodeBlock{
		Code:    "import (\n" + trimSpace(code) + "\n)",
		IsBlock: true,
		Span:    Span{Start: contentStart, End: contentEnd, Line: open.Span.Line, Col: open.Span.Col},
	}, nil
}

// parseFixture parses a `fixture name(params) { ... }` declaration.
func (p *Parser) parseFixture() (*Fixture, error) {
	if _, err := p.expect(TokFixture); err != nil {
		return nil, err
	}

	nameTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	fixture := NewFixture(nameTok.Lexeme, nameTok.Span)

	if p.check(TokLParen) {
		p.advance()
		params, err := p.parseFixtureParams()
		if err != nil {
			return nil, err
		}
		fixture.Params = params
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	for !p.check(TokRBrace) && !p.atEnd() {
		if err := p.parseFixtureItem(fixture); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}

	return fixture, nil
}

func (p *Parser) parseFixtureParams() ([]FixtureParam, error) {
	var params []FixtureParam

	for !p.check(TokRParen) && !p.atEnd() {
		nameTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		typeTok, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		params = append(params, FixtureParam{Name: nameTok.Lexeme, Type: typeTok.Lexeme})

		if !p.check(TokRParen) {
			if _, err := p.expect(TokComma); err != nil {
				return nil, err
			}
		}
	}

	return params, nil
}

func (p *Parser) parseFixtureItem(fixture *Fixture) error {
	tok := p.peek()

	switch tok.Kind {
	case TokDescription:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectString()
		if err != nil {
			return err
		}
		fixture.Description = v
	case TokHex:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		if p.check(TokFileRef) {
			p.advance()
			if _, err := p.expect(TokLParen); err != nil {
				return err
			}
			path, err := p.expectString()
			if err != nil {
				return err
			}
			if _, err := p.expect(TokRParen); err != nil {
				return err
			}
			fixture.HexFile = &path
		} else {
			v, err := p.expectString()
			if err != nil {
				return err
			}
			fixture.HexData = &v
		}
	case TokShape:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		code, err := p.parseCodeBlock()
		if err != nil {
			return err
		}
		fixture.Shape = code.Code
	case TokIdentifier:
		lang, ok := LangFromString(tok.Lexeme)
		if !ok {
			return errInvalidProperty(tok.Lexeme, tok.Span)
		}
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		code, err := p.parseInlineOrBlockCode()
		if err != nil {
			return err
		}
		fixture.SetImpl(lang, code)
	default:
		return errExpectedToken("fixture property (hex, description, shape) or language", tok.Lexeme, tok.Span)
	}

	return nil
}

// parseBenchmark parses a `bench name { ... }` declaration.
func (p *Parser) parseBenchmark() (*Benchmark, error) {
	if _, err := p.expect(TokBench); err != nil {
		return nil, err
	}

	nameTok, err := p.expectName()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	bench := NewBenchmark(nameTok.Lexeme, nameTok.Span)

	for !p.check(TokRBrace) && !p.atEnd() {
		if err := p.parseBenchmarkItem(bench); err != nil {
			if !p.fail(err) {
				return bench, err
			}

			continue
		}
	}

	if _, err := p.expect(TokRBrace); err != nil {
		return bench, err
	}

	return bench, nil
}

func (p *Parser) parseBenchmarkItem(bench *Benchmark) error {
	tok := p.peek()

	switch tok.Kind {
	case TokDescription:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectString()
		if err != nil {
			return err
		}
		bench.Description = v
	case TokIterations:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		bench.Iterations = &v
	case TokWarmup:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		bench.Warmup = &v
	case TokTimeout:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectDuration()
		if err != nil {
			return err
		}
		bench.Timeout = &v
	case TokTags:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		tags, err := p.parseStringArray()
		if err != nil {
			return err
		}
		bench.Tags = tags
	case TokSkip:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		m, err := p.parseLangCodeMap()
		if err != nil {
			return err
		}
		bench.Skip = m
	case TokValidate:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		m, err := p.parseLangCodeMap()
		if err != nil {
			return err
		}
		bench.Validate = m
	case TokMode:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		ident, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		mode, ok := RunModeFromString(ident.Lexeme)
		if !ok {
			return errExpectedToken("run mode", ident.Lexeme, ident.Span)
		}
		bench.Mode = &mode
	case TokSink:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		bench.Sink = &v
	case TokTargetTime:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectDuration()
		if err != nil {
			return err
		}
		bench.TargetTimeMs = &v
	case TokMinIterations:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		bench.MinIterations = &v
	case TokMaxIterations:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		bench.MaxIterations = &v
	case TokOutlierDetection:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		bench.OutlierDetection = &v
	case TokCVThreshold:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectFloat()
		if err != nil {
			return err
		}
		bench.CVThreshold = &v
	case TokCount:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		bench.Count = &v
	case TokMemory:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		bench.Memory = &v
	case TokConcurrency:
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		bench.Concurrency = &v
	case TokBefore:
		return p.parseHookProperty(bench, TokBefore, &bench.Before)
	case TokAfter:
		return p.parseHookProperty(bench, TokAfter, &bench.After)
	case TokEach:
		return p.parseHookProperty(bench, TokEach, &bench.Each)
	case TokIdentifier:
		lang, ok := LangFromString(tok.Lexeme)
		if !ok {
			return errInvalidProperty(tok.Lexeme, tok.Span)
		}
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		code, err := p.parseInlineOrBlockCode()
		if err != nil {
			return err
		}
		bench.Implementations[lang] = code
	default:
		return errExpectedToken("benchmark property or language implementation", tok.Lexeme, tok.Span)
	}

	return nil
}

// parseHookProperty parses either `before: { go: CODE }` (grouped) or
// `before go: CODE` (flat). A benchmark is single-use per hook style: once
// one style is seen for a given hook keyword, switching styles yields
// InvalidProperty (spec.md §4.2).
func (p *Parser) parseHookProperty(bench *Benchmark, kind TokenKind, target *map[Lang]*CodeBlock) error {
	hookTok := p.peek()
	p.advance()

	grouped := p.check(TokColon) && p.peekAt(1).Kind == TokLBrace

	if grouped {
		if bench.HookStyle == HookStyleFlat {
			return errInvalidProperty("grouped hook after flat hook", hookTok.Span)
		}
		bench.HookStyle = HookStyleGrouped

		if _, err := p.expect(TokColon); err != nil {
			return err
		}
		m, err := p.parseLangCodeMap()
		if err != nil {
			return err
		}
		for lang, code := range m {
			(*target)[lang] = code
		}

		return nil
	}

	if bench.HookStyle == HookStyleGrouped {
		return errInvalidProperty("flat hook after grouped hook", hookTok.Span)
	}
	bench.HookStyle = HookStyleFlat

	lang, err := p.expectLang()
	if err != nil {
		return err
	}
	if _, err := p.expect(TokColon); err != nil {
		return err
	}
	code, err := p.parseInlineOrBlockCode()
	if err != nil {
		return err
	}
	(*target)[lang] = code

	return nil
}

func (p *Parser) parseLangCodeMap() (map[Lang]*CodeBlock, error) {
	m := make(map[Lang]*CodeBlock)

	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	for !p.check(TokRBrace) && !p.atEnd() {
		lang, err := p.expectLang()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}
		code, err := p.parseInlineOrBlockCode()
		if err != nil {
			return nil, err
		}
		m[lang] = code
	}

	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}

	return m, nil
}

// parseAfterCharting parses a suite-level `after { charting.fn(...) ... }`
// block. Per spec.md §4.2 this is distinguished from a benchmark hook by the
// absence of a language identifier right after `after`.
func (p *Parser) parseAfterCharting() ([]*ChartDirective, error) {
	if _, err := p.expect(TokAfter); err != nil {
		return nil, err
	}

	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}

	var directives []*ChartDirective
	for !p.check(TokRBrace) && !p.atEnd() {
		d, err := p.parseChartingCall()
		if err != nil {
			return nil, err
		}
		directives = append(directives, d)
	}

	if _, err := p.expect(TokRBrace); err != nil {
		return nil, err
	}

	return directives, nil
}

func (p *Parser) parseChartingCall() (*ChartDirective, error) {
	nsTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if nsTok.Lexeme != "charting" {
		return nil, errExpectedToken("charting", nsTok.Lexeme, nsTok.Span)
	}

	if _, err := p.expect(TokDot); err != nil {
		return nil, err
	}

	fnTok, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	chartType, ok := chartTypeFromFunctionName(fnTok.Lexeme)
	if !ok {
		return nil, errInvalidProperty(fnTok.Lexeme, fnTok.Span)
	}

	directive := &ChartDirective{Type: chartType, SortOrder: SortDesc, TimeUnit: TimeAuto, Theme: ThemeDark, Span: Cover(nsTok.Span, fnTok.Span)}

	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}

	for !p.check(TokRParen) && !p.atEnd() {
		paramTok := p.peek()
		if paramTok.Kind != TokIdentifier && paramTok.Kind != TokDescription {
			return nil, errExpectedIdentifier(paramTok.Span)
		}
		p.advance()
		if _, err := p.expect(TokColon); err != nil {
			return nil, err
		}

		if !IsParamAllowed(chartType, paramTok.Lexeme) {
			return nil, errInvalidProperty(paramTok.Lexeme, paramTok.Span)
		}

		if err := p.applyChartParam(directive, paramTok.Lexeme); err != nil {
			return nil, err
		}

		if !p.check(TokRParen) {
			if _, err := p.expect(TokComma); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}

	return directive, nil
}

//nolint:cyclop // closed option set, one branch per parameter, mirrors a dispatch table
func (p *Parser) applyChartParam(d *ChartDirective, name string) error {
	switch name {
	case "title":
		v, err := p.expectString()
		if err != nil {
			return err
		}
		d.Title = v
	case "description":
		v, err := p.expectString()
		if err != nil {
			return err
		}
		d.Description = v
	case "xAxisLabel":
		v, err := p.expectString()
		if err != nil {
			return err
		}
		d.XAxisLabel = v
	case "yAxisLabel":
		v, err := p.expectString()
		if err != nil {
			return err
		}
		d.YAxisLabel = v
	case "output":
		v, err := p.expectString()
		if err != nil {
			return err
		}
		d.Output = v
	case "minSpeedup":
		v, err := p.expectFloat()
		if err != nil {
			return err
		}
		d.MinSpeedup = &v
	case "filterWinner":
		v, err := p.expectString()
		if err != nil {
			return err
		}
		d.FilterWinner = v
	case "includeBenchmarks":
		v, err := p.parseStringArray()
		if err != nil {
			return err
		}
		d.IncludeBenchmarks = v
	case "excludeBenchmarks":
		v, err := p.parseStringArray()
		if err != nil {
			return err
		}
		d.ExcludeBenchmarks = v
	case "limit":
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		n := int(v)
		d.Limit = &n
	case "sortBy":
		v, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		d.SortBy = SortBy(v.Lexeme)
	case "sortOrder":
		v, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		d.SortOrder = SortOrder(v.Lexeme)
	case "width":
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		n := int(v)
		d.Width = &n
	case "height":
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		n := int(v)
		d.Height = &n
	case "barWidth":
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		n := int(v)
		d.BarWidth = &n
	case "barGap":
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		n := int(v)
		d.BarGap = &n
	case "showStats":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowStats = &v
	case "showConfig":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowConfig = &v
	case "showWinCounts":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowWinCounts = &v
	case "showGeoMean":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowGeoMean = &v
	case "showDistribution":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowDistribution = &v
	case "showMemory":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowMemory = &v
	case "showTotalTime":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowTotalTime = &v
	case "compact":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.Compact = &v
	case "showGrid":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowGrid = &v
	case "showErrorBars":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowErrorBars = &v
	case "showRegression":
		v, err := p.expectBool()
		if err != nil {
			return err
		}
		d.ShowRegression = &v
	case "timeUnit":
		v, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		d.TimeUnit = TimeUnit(v.Lexeme)
	case "precision":
		v, err := p.expectNumber()
		if err != nil {
			return err
		}
		n := int(v)
		d.Precision = &n
	case "theme":
		v, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		d.Theme = Theme(v.Lexeme)
	default:
		return errInvalidProperty(name, p.peek().Span)
	}

	return nil
}

// parseCodeBlock extracts the raw source between a required pair of braces,
// counting brace depth through subsequent tokens (ignoring strings/comments,
// which the lexer already stripped), per spec.md §4.2.
func (p *Parser) parseCodeBlock() (*CodeBlock, error) {
	open, err := p.expect(TokLBrace)
	if err != nil {
		return nil, err
	}

	contentStart := open.Span.End
	depth := 1
	var closeSpan Span

	for depth > 0 && !p.atEnd() {
		tok := p.advance()
		switch tok.Kind {
		case TokLBrace:
			depth++
		case TokRBrace:
			depth--
			if depth == 0 {
				closeSpan = tok.Span
			}
		}
	}

	if depth > 0 {
		return nil, errUnclosedBrace(open.Span)
	}

	contentEnd := closeSpan.Start
	code := ""
	if contentEnd > contentStart && contentEnd <= len(p.source) {
		code = p.source[contentStart:contentEnd]
	}
	for code != "" && isSpaceByte(code[len(code)-1]) {
		code = code[:len(code)-1]
	}

	return &CodeBlock{
		Code:    stripCommonIndent(code),
		IsBlock: true,
		Span:    Span{Start: contentStart, End: contentEnd, Line: open.Span.Line, Col: open.Span.Col + 1},
	}, nil
}

type stopPredicate func(TokenKind, Token) bool

func stopAtSectionKeywords(kind TokenKind, tok Token) bool {
	switch kind {
	case TokRBrace, TokImport, TokDeclare, TokInit, TokHelpers, TokAsync:
		return true
	default:
		if kind == TokIdentifier {
			if _, ok := LangFromString(tok.Lexeme); ok {
				return true
			}
		}

		return false
	}
}

func stopAtBenchmarkBoundary(kind TokenKind, tok Token) bool {
	switch kind {
	case TokRBrace, TokDescription, TokIterations, TokWarmup, TokTimeout, TokTags,
		TokSkip, TokValidate, TokBefore, TokAfter, TokEach, TokHex, TokShape,
		TokBench, TokSetup, TokFixture:
		return true
	default:
		if kind == TokIdentifier {
			if _, ok := LangFromString(tok.Lexeme); ok {
				return true
			}
		}

		return false
	}
}

// parseInlineOrBlockCode parses either a `{ }` block, or — per spec.md
// §4.2 — collects tokens until one that cannot legally continue an
// expression in any host language.
func (p *Parser) parseInlineOrBlockCode() (*CodeBlock, error) {
	if p.check(TokLBrace) {
		return p.parseCodeBlock()
	}

	return p.parseInlineCode(stopAtBenchmarkBoundary)
}

func (p *Parser) parseInlineCode(stop stopPredicate) (*CodeBlock, error) {
	startIdx := p.current
	for !p.atEnd() && !stop(p.peek().Kind, p.peek()) {
		p.advance()
	}

	if p.current == startIdx {
		return &CodeBlock{}, nil
	}

	first := p.tokens[startIdx]
	last := p.tokens[p.current-1]

	code := ""
	if last.Span.End <= len(p.source) {
		code = p.source[first.Span.Start:last.Span.End]
	}

	return &CodeBlock{
		Code:    trimSpace(code),
		IsBlock: false,
		Span:    Span{Start: first.Span.Start, End: last.Span.End, Line: first.Span.Line, Col: first.Span.Col},
	}, nil
}

func (p *Parser) parseStringArray() ([]string, error) {
	if _, err := p.expect(TokLBracket); err != nil {
		return nil, err
	}

	var items []string
	for !p.check(TokRBracket) && !p.atEnd() {
		v, err := p.expectString()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		if !p.check(TokRBracket) && p.check(TokComma) {
			p.advance()
		}
	}

	if _, err := p.expect(TokRBracket); err != nil {
		return nil, err
	}

	return items, nil
}

func (p *Parser) parseLangArray() ([]Lang, error) {
	if _, err := p.expect(TokLBracket); err != nil {
		return nil, err
	}

	var items []Lang
	for !p.check(TokRBracket) && !p.atEnd() {
		v, err := p.expectString()
		if err != nil {
			return nil, err
		}
		lang, ok := LangFromString(v)
		if !ok {
			return nil, errUnknownLang(v, p.previous().Span)
		}
		items = append(items, lang)

		if !p.check(TokRBracket) && p.check(TokComma) {
			p.advance()
		}
	}

	if _, err := p.expect(TokRBracket); err != nil {
		return nil, err
	}

	return items, nil
}

// ---- token-stream helpers ----

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.current]
}

func (p *Parser) peekAt(off int) Token {
	idx := p.current + off
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[idx]
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}

	return p.tokens[p.current-1]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.atEnd() {
		p.current++
	}

	return tok
}

func (p *Parser) atEnd() bool {
	return p.peek().Kind == TokEOF
}

func (p *Parser) check(kind TokenKind) bool {
	return !p.atEnd() && p.peek().Kind == kind
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}

	tok := p.peek()

	return Token{}, errExpectedToken(tokenKindName(kind), tokenKindName(tok.Kind), tok.Span)
}

func (p *Parser) expectIdentifier() (Token, error) {
	tok := p.peek()
	if tok.Kind == TokIdentifier {
		return p.advance(), nil
	}

	return Token{}, errExpectedIdentifier(tok.Span)
}

// expectName reads a suite or benchmark name, written either as a bare
// identifier or as a string literal; the returned token's Lexeme holds the name.
func (p *Parser) expectName() (Token, error) {
	tok := p.peek()
	if tok.Kind == TokString {
		p.advance()
		tok.Lexeme = tok.Str

		return tok, nil
	}

	return p.expectIdentifier()
}

func (p *Parser) expectString() (string, error) {
	tok := p.peek()
	if tok.Kind != TokString {
		return "", errExpectedToken("string", tokenKindName(tok.Kind), tok.Span)
	}
	p.advance()

	return tok.Str, nil
}

func (p *Parser) expectNumber() (uint64, error) {
	tok := p.peek()
	if tok.Kind != TokNumber {
		return 0, errExpectedToken("number", tokenKindName(tok.Kind), tok.Span)
	}
	p.advance()

	return tok.Num, nil
}

func (p *Parser) expectFloat() (float64, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokFloat:
		p.advance()

		return tok.Float, nil
	case TokNumber:
		p.advance()

		return float64(tok.Num), nil
	default:
		return 0, errExpectedToken("float", tokenKindName(tok.Kind), tok.Span)
	}
}

// expectDuration implements spec.md §4.2's numeric coercion: a plain number
// in a duration slot is interpreted as milliseconds.
func (p *Parser) expectDuration() (uint64, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokDuration:
		p.advance()

		return tok.Num, nil
	case TokNumber:
		p.advance()

		return tok.Num, nil
	default:
		return 0, errExpectedToken("duration (e.g. 30s, 500ms, 1m)", tokenKindName(tok.Kind), tok.Span)
	}
}

func (p *Parser) expectBool() (bool, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokTrue:
		p.advance()

		return true, nil
	case TokFalse:
		p.advance()

		return false, nil
	default:
		return false, errExpectedToken("boolean (true/false)", tokenKindName(tok.Kind), tok.Span)
	}
}

func (p *Parser) expectLang() (Lang, error) {
	tok := p.peek()
	if tok.Kind == TokIdentifier {
		if lang, ok := LangFromString(tok.Lexeme); ok {
			p.advance()

			return lang, nil
		}
	}

	return "", errUnknownLang(tok.Lexeme, tok.Span)
}

func tokenKindName(k TokenKind) string {
	switch k {
	case TokEOF:
		return "eof"
	case TokIdentifier:
		return "identifier"
	case TokString:
		return "string"
	case TokNumber:
		return "number"
	case TokFloat:
		return "float"
	case TokDuration:
		return "duration"
	case TokLBrace:
		return "{"
	case TokRBrace:
		return "}"
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	case TokLBracket:
		return "["
	case TokRBracket:
		return "]"
	case TokColon:
		return ":"
	case TokDoubleColon:
		return "::"
	case TokComma:
		return ","
	case TokDot:
		return "."
	default:
		return strconv.Itoa(int(k))
	}
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpaceByte(s[start]) {
		start++
	}
	for end > start && isSpaceByte(s[end-1]) {
		end--
	}

	return s[start:end]
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// stripCommonIndent removes the common leading whitespace from every
// non-empty line, per spec.md §4.2's "common leading indentation is
// stripped" rule.
func stripCommonIndent(code string) string {
	lines := splitLines(code)
	minIndent := -1

	for _, line := range lines {
		trimmed := trimSpace(line)
		if trimmed == "" {
			continue
		}
		indent := 0
		for indent < len(line) && (line[indent] == ' ' || line[indent] == '\t') {
			indent++
		}
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	if minIndent <= 0 {
		return trimNewlines(code)
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= minIndent {
			out[i] = line[minIndent:]
		} else {
			out[i] = trimSpace(line)
		}
	}

	return trimNewlines(joinLines(out))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])

	return lines
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}

	return out
}

func trimNewlines(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}

	return s[start:end]
}
