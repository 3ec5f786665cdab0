package combinator

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lemonberrylabs/toyparse/pkg/types"
)

func TestPrimitiveParsers(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		input  string
		rest   string
		want   Value
	}{
		{"digit", Digit, "1AB", "AB", NewChar('1')},
		{"unsigned", UnsignedInt, "1234AB", "AB", NewUnsignedInt(1234)},
		{"signed negative", SignedInt, "-1234AB", "AB", NewSignedInt(-1234)},
		{"signed positive", SignedInt, "77;", ";", NewSignedInt(77)},
		{"float", Float, "4.2", "", NewFloat(4.2)},
		{"negative float", Float, "-0.5x", "x", NewFloat(-0.5)},
		{"ident", Ident, "snake_Case9", "9", NewIdent("snake_Case")},
		{"bool true", Bool, "truesomeshitaftertrue", "someshitaftertrue", NewBool(true)},
		{"bool false", Bool, "false;", ";", NewBool(false)},
		{"keyword", Keyword("struct"), "struct{}", "{}", NewKeyword("struct")},
		{"char", Char('x'), "xy", "y", NewChar('x')},
		{"multibyte char", Char('é'), "éa", "a", NewChar('é')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, got, err := Run(tt.parser, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rest != tt.rest {
				t.Errorf("rest: got %q, want %q", rest, tt.rest)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnyOfFirstMatchWins(t *testing.T) {
	p := AnyOf(Keyword("true"), Keyword("false"))
	rest, got, err := Run(p, "truesomeshitaftertrue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rest != "someshitaftertrue" {
		t.Errorf("rest: got %q", rest)
	}
	if !got.Equal(NewKeyword("true")) {
		t.Errorf("got %v", got)
	}

	// A shorter alternative listed first shadows a longer one.
	rest, got, err = Run(AnyOf(Keyword("for"), Keyword("format")), "format")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rest != "mat" || !got.Equal(NewKeyword("for")) {
		t.Errorf("got (%q, %v), want (\"mat\", Keyword(\"for\"))", rest, got)
	}
}

func TestAnyOfRetriesFromSameCursor(t *testing.T) {
	// "fa" consumes 'f' before failing; the second alternative must still
	// see the whole input.
	p := AnyOf(Keyword("fa"), Keyword("fo"))
	rest, got, err := Run(p, "fox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rest != "x" || !got.Equal(NewKeyword("fo")) {
		t.Errorf("got (%q, %v)", rest, got)
	}
}

func TestAnyOfAllFail(t *testing.T) {
	_, _, err := Run(AnyOf(Char('a'), Char('b')), "zz")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *types.ParseError, got %T (%v)", err, err)
	}
	if pe.Kind != types.KindUnexpected {
		t.Errorf("kind: got %s", pe.Kind)
	}
	if pe.Found != "z" {
		t.Errorf("found: got %q", pe.Found)
	}
}

func TestCharErrors(t *testing.T) {
	tests := []struct {
		input string
		found string
	}{
		{"", types.Nothing},
		{"b", "b"},
	}
	for _, tt := range tests {
		_, _, err := Run(Char('a'), tt.input)
		var pe *types.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Char('a')(%q): expected ParseError, got %v", tt.input, err)
		}
		if pe.Expected != "a" || pe.Found != tt.found || pe.Position != 0 {
			t.Errorf("Char('a')(%q): got %+v", tt.input, pe)
		}
	}
}

func TestRepetition(t *testing.T) {
	t.Run("zeroOrMore no match", func(t *testing.T) {
		rest, got, err := Run(ZeroOrMore(Char('a')), "bbb")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rest != "bbb" || len(got.AsSequence()) != 0 || got.Type() != TypeSequence {
			t.Errorf("got (%q, %v)", rest, got)
		}
	})

	t.Run("zeroOrMore many", func(t *testing.T) {
		rest, got, err := Run(ZeroOrMore(Char('a')), "aaab")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := NewSequence([]Value{NewChar('a'), NewChar('a'), NewChar('a')})
		if rest != "b" || !got.Equal(want) {
			t.Errorf("got (%q, %v)", rest, got)
		}
	})

	t.Run("zeroOrMore stops on zero-width success", func(t *testing.T) {
		rest, _, err := Run(ZeroOrMore(ZeroOrOne(Char('a'))), "b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rest != "b" {
			t.Errorf("rest: got %q", rest)
		}
	})

	t.Run("oneOrMore propagates first failure", func(t *testing.T) {
		_, _, err := Run(OneOrMore(Char('a')), "b")
		var pe *types.ParseError
		if !errors.As(err, &pe) || pe.Expected != "a" || pe.Found != "b" {
			t.Errorf("got %v", err)
		}
	})

	t.Run("oneOrMore digits stay chars", func(t *testing.T) {
		_, got, err := Run(OneOrMore(Digit), "42")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, item := range got.AsSequence() {
			if item.Type() != TypeChar {
				t.Errorf("non-char item %v", item)
			}
		}
	})

	t.Run("zeroOrOne", func(t *testing.T) {
		rest, got, err := Run(ZeroOrOne(Char('-')), "5")
		if err != nil || rest != "5" || got.Type() != TypeEmpty {
			t.Errorf("got (%q, %v, %v)", rest, got, err)
		}
		rest, got, err = Run(ZeroOrOne(Char('-')), "-5")
		if err != nil || rest != "5" || !got.Equal(NewChar('-')) {
			t.Errorf("got (%q, %v, %v)", rest, got, err)
		}
	})
}

func TestSequenceOfCharsRanges(t *testing.T) {
	p := SequenceOfChars("a-c_")
	for _, in := range []string{"a", "b", "c", "_"} {
		if _, _, err := Run(p, in); err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
		}
	}
	if _, _, err := Run(p, "d"); err == nil {
		t.Error("expected 'd' to fail")
	}
	// A dash that is not between two characters is literal.
	if _, _, err := Run(SequenceOfChars("-+"), "-"); err != nil {
		t.Errorf("literal dash: %v", err)
	}
}

func TestKeywordMismatchPosition(t *testing.T) {
	_, _, err := Run(Keyword("true"), "trap")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Expected != "u" || pe.Found != "a" || pe.Position != 2 {
		t.Errorf("got %+v", pe)
	}
}

func TestErrorPositionsAreOffsets(t *testing.T) {
	_, _, err := Run(Seq(Keyword("ab"), Digit), "abX")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Position != 2 || pe.Expected != "digit" || pe.Found != "X" {
		t.Errorf("got %+v", pe)
	}
}

func TestNumericOverflow(t *testing.T) {
	_, _, err := Run(UnsignedInt, "99999999999999999999999")
	var pe *types.ParseError
	if !errors.As(err, &pe) || pe.Kind != types.KindUnknown {
		t.Fatalf("expected Unknown error, got %v", err)
	}

	_, _, err = ParsePrimitive("-99999999999999999999999")
	if !errors.As(err, &pe) || pe.Kind != types.KindUnknown {
		t.Fatalf("expected Unknown error from ParsePrimitive, got %v", err)
	}
}

func TestNumericOverflowPosition(t *testing.T) {
	tests := []struct {
		name  string
		p     Parser
		input string
		pos   int
	}{
		{"unsigned after prefix", Seq(Keyword("ab"), UnsignedInt), "ab99999999999999999999999", 2},
		{"signed after prefix", Seq(Keyword("x="), SignedInt), "x=-99999999999999999999999", 2},
		{"primitive after whitespace", primitive, "  99999999999999999999", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Run(tt.p, tt.input)
			var pe *types.ParseError
			if !errors.As(err, &pe) || pe.Kind != types.KindUnknown {
				t.Fatalf("expected Unknown error, got %v", err)
			}
			if pe.Position != tt.pos {
				t.Errorf("position: got %d, want %d", pe.Position, tt.pos)
			}
		})
	}
}

func TestPrimitiveFailureNamesAlternatives(t *testing.T) {
	_, _, err := ParsePrimitive("-")
	var pe *types.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	want := "one of [one of [true false] float signed integer identifier]"
	if pe.Expected != want {
		t.Errorf("expected: got %q, want %q", pe.Expected, want)
	}
	if pe.Found != "-" || pe.Position != 0 {
		t.Errorf("got %+v", pe)
	}

	tests := []struct {
		p    Parser
		name string
	}{
		{Float, "float"},
		{SignedInt, "signed integer"},
		{UnsignedInt, "unsigned integer"},
	}
	for _, tt := range tests {
		_, _, err := Run(tt.p, "x")
		if !errors.As(err, &pe) || pe.Expected != tt.name {
			t.Errorf("%s: got %v", tt.name, err)
		}
	}
}

func TestWhitespace(t *testing.T) {
	rest, got, err := Run(Whitespace, " \t\n x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rest != "x" || len(got.AsSequence()) != 4 {
		t.Errorf("got (%q, %v)", rest, got)
	}
	rest, _, err = Run(Whitespace, "x")
	if err != nil || rest != "x" {
		t.Errorf("got (%q, %v)", rest, err)
	}
}

func TestParsePrimitive(t *testing.T) {
	tests := []struct {
		input string
		rest  string
		want  Value
	}{
		{"  true", "", NewBool(true)},
		{"false rest", " rest", NewBool(false)},
		{"4.25", "", NewFloat(4.25)},
		{"-12;", ";", NewSignedInt(-12)},
		{"42", "", NewSignedInt(42)},
		{"\tname = 1", " = 1", NewIdent("name")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rest, got, err := ParsePrimitive(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rest != tt.rest {
				t.Errorf("rest: got %q, want %q", rest, tt.rest)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, _, err := ParsePrimitive("?"); err == nil {
		t.Error("expected error for '?'")
	}
}

func TestParseDecl(t *testing.T) {
	intType := NewIdent("int")
	tests := []struct {
		input string
		want  Value
	}{
		{"a = false", NewDecl("a", nil, NewBool(false))},
		{"  a = -2", NewDecl("a", nil, NewSignedInt(-2))},
		{"pi = 3.14;", NewDecl("pi", nil, NewFloat(3.14))},
		{"b = other", NewDecl("b", nil, NewIdent("other"))},
		{"n: int = 4;", NewDecl("n", &intType, NewSignedInt(4))},
		{"n :int= 4", NewDecl("n", &intType, NewSignedInt(4))},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rest, got, err := Run(Decl, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rest != "" {
				t.Errorf("rest: got %q", rest)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDeclErrors(t *testing.T) {
	for _, input := range []string{"= 1", "a 1", "a = ", "a: = 1"} {
		if _, _, err := ParseDecl(input); err == nil {
			t.Errorf("ParseDecl(%q): expected error", input)
		}
	}
}

func TestParseDeclMultiple(t *testing.T) {
	rest, d, err := ParseDecl("a = 1; b = true;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "a" || !d.Value.Equal(NewSignedInt(1)) {
		t.Errorf("first decl: got %+v", d)
	}
	_, d, err = ParseDecl(rest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name != "b" || !d.Value.Equal(NewBool(true)) {
		t.Errorf("second decl: got %+v", d)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewChar('1'), "Char('1')"},
		{NewUnsignedInt(7), "UnsignedInt(7)"},
		{NewSignedInt(-7), "SignedInt(-7)"},
		{NewFloat(4.2), "Float(4.2)"},
		{NewIdent("x"), `Ident("x")`},
		{NewBool(true), "Bool(true)"},
		{Empty, "Empty"},
		{NewSequence([]Value{NewChar('a'), NewChar('b')}), "Sequence[Char('a'), Char('b')]"},
		{NewDecl("a", nil, NewBool(false)), "Decl(a = Bool(false))"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}

func TestMustCharsPanicsOnForeignItem(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	mustChars(NewSequence([]Value{NewChar('a'), NewBool(true)}))
}
