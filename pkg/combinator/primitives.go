package combinator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/toyparse/pkg/types"
)

// Character classes.
const (
	Digits     = "0-9"
	IdentChars = "a-zA-Z_"
	blankChars = " \t\n"
)

var (
	// Digit matches one decimal digit.
	Digit = Named("digit", SequenceOfChars(Digits))

	digitRun = Map(OneOrMore(Digit), textOf)

	// UnsignedInt matches one or more digits.
	UnsignedInt = Named("unsigned integer", ParserFunc(parseUnsignedInt))

	// SignedInt matches an optional '-' followed by digits.
	SignedInt = Named("signed integer", ParserFunc(parseSignedInt))

	// Float matches signedInt '.' unsignedInt.
	Float = Named("float", ParserFunc(parseFloat))

	// Ident matches one or more letters or underscores.
	Ident Parser = Named("identifier", Map(OneOrMore(SequenceOfChars(IdentChars)), func(v Value) (Value, error) {
		s, _ := textOf(v)
		return NewIdent(s.AsString()), nil
	}))

	// Bool matches the keywords true or false.
	Bool Parser = Map(AnyOf(Keyword("true"), Keyword("false")), func(v Value) (Value, error) {
		return NewBool(v.AsString() == "true"), nil
	})

	// Whitespace consumes any run of spaces, tabs and newlines.
	Whitespace = ZeroOrMore(SequenceOfChars(blankChars))

	// Expr is the value grammar used on the right-hand side of declarations.
	// Order matters: the first alternative that matches wins.
	Expr = AnyOf(Bool, Float, SignedInt, Ident)

	// Decl parses ident [':' expr] '=' expr [';'].
	Decl Parser = ParserFunc(parseDecl)
)

// textOf reduces a Sequence of Char values to a Str value.
func textOf(v Value) (Value, error) {
	return NewStr(mustChars(v)), nil
}

// mustChars concatenates a Sequence of Char values. Any other element means
// a combinator broke its contract.
func mustChars(v Value) string {
	var sb strings.Builder
	for _, item := range v.AsSequence() {
		if item.Type() != TypeChar {
			panic(fmt.Sprintf("combinator: expected Char in sequence, got %s", item))
		}
		sb.WriteRune(item.AsChar())
	}
	return sb.String()
}

// signedText parses an optional minus sign and a digit run and returns the
// literal text.
func signedText(c Cursor) (Cursor, string, error) {
	next, sign, _ := ZeroOrOne(Char('-')).Parse(c)
	next, digits, err := digitRun.Parse(next)
	if err != nil {
		return c, "", err
	}
	text := digits.AsString()
	if sign.Type() == TypeChar {
		text = "-" + text
	}
	return next, text, nil
}

func parseUnsignedInt(c Cursor) (Cursor, Value, error) {
	next, digits, err := digitRun.Parse(c)
	if err != nil {
		return c, Empty, err
	}
	u, err := strconv.ParseUint(digits.AsString(), 10, 64)
	if err != nil {
		return c, Empty, types.NewUnknown("invalid unsigned integer", c.pos, err)
	}
	return next, NewUnsignedInt(u), nil
}

func parseSignedInt(c Cursor) (Cursor, Value, error) {
	next, text, err := signedText(c)
	if err != nil {
		return c, Empty, types.NewUnexpected("signed integer", c.found(), c.pos)
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return c, Empty, types.NewUnknown("invalid signed integer", c.pos, err)
	}
	return next, NewSignedInt(i), nil
}

func parseFloat(c Cursor) (Cursor, Value, error) {
	next, whole, err := signedText(c)
	if err != nil {
		return c, Empty, types.NewUnexpected("float", c.found(), c.pos)
	}
	next, _, err = Char('.').Parse(next)
	if err != nil {
		return c, Empty, err
	}
	next, frac, err := digitRun.Parse(next)
	if err != nil {
		return c, Empty, err
	}
	f, err := strconv.ParseFloat(whole+"."+frac.AsString(), 64)
	if err != nil {
		return c, Empty, types.NewUnknown("invalid float", c.pos, err)
	}
	return next, NewFloat(f), nil
}

func parseDecl(c Cursor) (Cursor, Value, error) {
	next, _, _ := Whitespace.Parse(c)
	next, name, err := Ident.Parse(next)
	if err != nil {
		return c, Empty, err
	}
	next, _, _ = Whitespace.Parse(next)

	var typ *Value
	if afterColon, _, err := Char(':').Parse(next); err == nil {
		afterColon, _, _ = Whitespace.Parse(afterColon)
		var t Value
		next, t, err = Expr.Parse(afterColon)
		if err != nil {
			return c, Empty, err
		}
		typ = &t
		next, _, _ = Whitespace.Parse(next)
	}

	next, _, err = Char('=').Parse(next)
	if err != nil {
		return c, Empty, err
	}
	next, _, _ = Whitespace.Parse(next)
	next, val, err := Expr.Parse(next)
	if err != nil {
		return c, Empty, err
	}
	next, _, _ = Whitespace.Parse(next)
	next, _, _ = ZeroOrOne(Char(';')).Parse(next)
	return next, NewDecl(name.AsString(), typ, val), nil
}

// primitive is the grammar ParsePrimitive tries after leading whitespace.
var primitive = Seq(Whitespace, Expr)

// ParsePrimitive parses one literal (bool, float, signed integer or
// identifier) from input after optional leading whitespace and returns the
// remaining text.
func ParsePrimitive(input string) (string, Value, error) {
	rest, v, err := Run(primitive, input)
	if err != nil {
		return input, Empty, err
	}
	return rest, v.AsSequence()[1], nil
}

// ParseDecl parses a single declaration from input.
func ParseDecl(input string) (string, *Declaration, error) {
	rest, v, err := Run(Decl, input)
	if err != nil {
		return input, nil, err
	}
	return rest, v.AsDecl(), nil
}
