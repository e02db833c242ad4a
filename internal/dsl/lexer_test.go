package dsl

import "testing"

func TestTokenizeCoversEntireInput(t *testing.T) {
	source := `suite "math" {
  iterations: 1000
  timeout: 30s
  requires: ["go", "rust"]
}
`
	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	if tokens[len(tokens)-1].Kind != TokEOF {
		t.Fatalf("expected stream to end in TokEOF, got %v", tokens[len(tokens)-1].Kind)
	}

	if tokens[0].Kind != TokSuite {
		t.Fatalf("expected first token to be TokSuite, got %v", tokens[0].Kind)
	}
}

func TestDurationSuffixConvertsToMilliseconds(t *testing.T) {
	cases := map[string]uint64{
		"500ms": 500,
		"30s":   30_000,
		"2m":    120_000,
		"1h":    3_600_000,
	}

	for lexeme, want := range cases {
		tokens, err := Tokenize(lexeme)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", lexeme, err)
		}

		if tokens[0].Kind != TokDuration {
			t.Fatalf("Tokenize(%q): expected TokDuration, got %v", lexeme, tokens[0].Kind)
		}
		if tokens[0].Num != want {
			t.Fatalf("Tokenize(%q): got %d ms, want %d ms", lexeme, tokens[0].Num, want)
		}
	}
}

func TestScanStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`"line1\nline2\ttabbed\\done"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	want := "line1\nline2\ttabbed\\done"
	if tokens[0].Str != want {
		t.Fatalf("got %q, want %q", tokens[0].Str, want)
	}
}

func TestScanStringUnterminatedReturnsLexError(t *testing.T) {
	_, err := Tokenize(`"unterminated`)
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}

	var lexErr *LexError
	if !asLexError(err, &lexErr) {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if lexErr.Kind != "UnterminatedString" {
		t.Fatalf("got kind %q", lexErr.Kind)
	}
}

func TestSkipCommentsLineBlockAndNested(t *testing.T) {
	source := `// line comment
# hash comment
/* block /* nested */ still skipped */
suite`
	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if tokens[0].Kind != TokSuite {
		t.Fatalf("expected comments skipped down to TokSuite, got %v", tokens[0].Kind)
	}
}

func TestFileRefToken(t *testing.T) {
	tokens, err := Tokenize(`@file("data.hex")`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if tokens[0].Kind != TokFileRef {
		t.Fatalf("expected TokFileRef, got %v", tokens[0].Kind)
	}
	if tokens[1].Kind != TokLParen {
		t.Fatalf("expected TokLParen after @file, got %v", tokens[1].Kind)
	}
}

func asLexError(err error, target **LexError) bool {
	le, ok := err.(*LexError)
	if ok {
		*target = le
	}

	return ok
}
