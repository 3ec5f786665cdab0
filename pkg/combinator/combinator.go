// Package combinator implements a small parser-combinator toolkit over text.
//
// A Parser takes an immutable Cursor and returns a new Cursor positioned
// after the consumed input together with the parsed Value. The input cursor
// is never modified, so alternatives can be retried from the same position
// without any bookkeeping.
package combinator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lemonberrylabs/toyparse/pkg/types"
)

// Cursor is a position within an input string.
type Cursor struct {
	input string
	pos   int
}

// NewCursor returns a cursor at the start of input.
func NewCursor(input string) Cursor {
	return Cursor{input: input}
}

// Rest returns the unconsumed suffix of the input.
func (c Cursor) Rest() string { return c.input[c.pos:] }

// Pos returns the byte offset of the cursor.
func (c Cursor) Pos() int { return c.pos }

// AtEnd reports whether all input has been consumed.
func (c Cursor) AtEnd() bool { return c.pos >= len(c.input) }

// peek decodes the next rune without consuming it.
func (c Cursor) peek() (rune, int) {
	return utf8.DecodeRuneInString(c.input[c.pos:])
}

func (c Cursor) advance(n int) Cursor {
	return Cursor{input: c.input, pos: c.pos + n}
}

// found describes the next character for error messages.
func (c Cursor) found() string {
	if c.AtEnd() {
		return types.Nothing
	}
	r, _ := c.peek()
	return string(r)
}

// Parser is anything that can parse a prefix of a cursor.
type Parser interface {
	Parse(c Cursor) (Cursor, Value, error)
}

// ParserFunc adapts a plain function to the Parser interface.
type ParserFunc func(c Cursor) (Cursor, Value, error)

// Parse calls f(c).
func (f ParserFunc) Parse(c Cursor) (Cursor, Value, error) {
	return f(c)
}

// Run applies p to input and returns the remaining text and the value.
func Run(p Parser, input string) (string, Value, error) {
	next, v, err := p.Parse(NewCursor(input))
	if err != nil {
		return input, Empty, err
	}
	return next.Rest(), v, nil
}

// describe returns a human-readable expectation for p.
func describe(p Parser) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return "alternative"
}

// --- char ---

type charParser struct {
	c rune
}

// Char matches exactly the character c.
func Char(c rune) Parser {
	return charParser{c: c}
}

func (p charParser) String() string { return string(p.c) }

func (p charParser) Parse(c Cursor) (Cursor, Value, error) {
	if c.AtEnd() {
		return c, Empty, types.NewUnexpected(string(p.c), types.Nothing, c.pos)
	}
	r, size := c.peek()
	if r != p.c {
		return c, Empty, types.NewUnexpected(string(p.c), string(r), c.pos)
	}
	return c.advance(size), NewChar(r), nil
}

// --- anyOf ---

// AnyOfParser tries each alternative from the same cursor and returns the
// first success. There is no longest-match policy. When every alternative
// fails, an Unknown failure (a malformed literal such as an overflowing
// number) takes precedence over the generic mismatch.
type AnyOfParser struct {
	Parsers []Parser
	name    string
}

// AnyOf returns a parser that succeeds with the first alternative that does.
func AnyOf(parsers ...Parser) *AnyOfParser {
	return &AnyOfParser{Parsers: parsers}
}

func (p *AnyOfParser) String() string {
	if p.name != "" {
		return p.name
	}
	parts := make([]string, len(p.Parsers))
	for i, alt := range p.Parsers {
		parts[i] = describe(alt)
	}
	return "one of [" + strings.Join(parts, " ") + "]"
}

func (p *AnyOfParser) Parse(c Cursor) (Cursor, Value, error) {
	var committed error
	for _, alt := range p.Parsers {
		next, v, err := alt.Parse(c)
		if err == nil {
			return next, v, nil
		}
		var pe *types.ParseError
		if committed == nil && errors.As(err, &pe) && pe.Kind == types.KindUnknown {
			committed = err
		}
	}
	if committed != nil {
		return c, Empty, committed
	}
	return c, Empty, types.NewUnexpected(p.String(), c.found(), c.pos)
}

// --- repetition ---

type zeroOrMoreParser struct {
	p Parser
}

// ZeroOrMore applies p until it fails and collects the results in a
// Sequence. It never fails.
func ZeroOrMore(p Parser) Parser {
	return zeroOrMoreParser{p: p}
}

func (z zeroOrMoreParser) Parse(c Cursor) (Cursor, Value, error) {
	next, items := repeat(z.p, c, nil)
	return next, NewSequence(items), nil
}

type oneOrMoreParser struct {
	p Parser
}

// OneOrMore is ZeroOrMore requiring at least one match. The first failure
// is returned unchanged.
func OneOrMore(p Parser) Parser {
	return oneOrMoreParser{p: p}
}

func (o oneOrMoreParser) String() string { return describe(o.p) }

func (o oneOrMoreParser) Parse(c Cursor) (Cursor, Value, error) {
	next, first, err := o.p.Parse(c)
	if err != nil {
		return c, Empty, err
	}
	next, items := repeat(o.p, next, []Value{first})
	return next, NewSequence(items), nil
}

// repeat stops on the first failure or on a success that consumed nothing.
func repeat(p Parser, c Cursor, items []Value) (Cursor, []Value) {
	if items == nil {
		items = []Value{}
	}
	for {
		next, v, err := p.Parse(c)
		if err != nil || next.pos == c.pos {
			return c, items
		}
		items = append(items, v)
		c = next
	}
}

type zeroOrOneParser struct {
	p Parser
}

// ZeroOrOne applies p at most once. It never fails; on no match the value is
// Empty and the cursor is unchanged.
func ZeroOrOne(p Parser) Parser {
	return zeroOrOneParser{p: p}
}

func (z zeroOrOneParser) Parse(c Cursor) (Cursor, Value, error) {
	next, v, err := z.p.Parse(c)
	if err != nil {
		return c, Empty, nil
	}
	return next, v, nil
}

// --- sugar ---

// SequenceOfChars matches any single character of charset. A dash between
// two characters denotes an inclusive range, so "0-9" matches any digit.
func SequenceOfChars(charset string) *AnyOfParser {
	chars := expandCharset(charset)
	parsers := make([]Parser, len(chars))
	for i, ch := range chars {
		parsers[i] = Char(ch)
	}
	return &AnyOfParser{Parsers: parsers, name: "[" + charset + "]"}
}

func expandCharset(charset string) []rune {
	in := []rune(charset)
	var out []rune
	for i := 0; i < len(in); i++ {
		if i+2 < len(in) && in[i+1] == '-' && in[i] <= in[i+2] {
			for r := in[i]; r <= in[i+2]; r++ {
				out = append(out, r)
			}
			i += 2
			continue
		}
		out = append(out, in[i])
	}
	return out
}

type keywordParser struct {
	word string
}

// Keyword matches word literally, one character at a time.
func Keyword(word string) Parser {
	return keywordParser{word: word}
}

func (k keywordParser) String() string { return k.word }

func (k keywordParser) Parse(c Cursor) (Cursor, Value, error) {
	next := c
	for _, r := range k.word {
		var err error
		next, _, err = Char(r).Parse(next)
		if err != nil {
			return c, Empty, err
		}
	}
	return next, NewKeyword(k.word), nil
}

// Seq applies parsers in order, threading the cursor, and collects their
// values in a Sequence. It fails with the first failure.
func Seq(parsers ...Parser) Parser {
	return ParserFunc(func(c Cursor) (Cursor, Value, error) {
		next := c
		items := make([]Value, 0, len(parsers))
		for _, p := range parsers {
			var v Value
			var err error
			next, v, err = p.Parse(next)
			if err != nil {
				return c, Empty, err
			}
			items = append(items, v)
		}
		return next, NewSequence(items), nil
	})
}

type mapParser struct {
	p  Parser
	fn func(Value) (Value, error)
}

// Map transforms the value of a successful parse. An error from fn fails the
// parse without consuming input.
func Map(p Parser, fn func(Value) (Value, error)) Parser {
	return mapParser{p: p, fn: fn}
}

func (m mapParser) String() string { return describe(m.p) }

func (m mapParser) Parse(c Cursor) (Cursor, Value, error) {
	next, v, err := m.p.Parse(c)
	if err != nil {
		return c, Empty, err
	}
	out, err := m.fn(v)
	if err != nil {
		return c, Empty, err
	}
	return next, out, nil
}

type namedParser struct {
	name string
	p    Parser
}

// Named relabels p so failures report name as the expectation.
func Named(name string, p Parser) Parser {
	return namedParser{name: name, p: p}
}

func (n namedParser) String() string { return n.name }

func (n namedParser) Parse(c Cursor) (Cursor, Value, error) {
	next, v, err := n.p.Parse(c)
	if err != nil {
		var pe *types.ParseError
		if errors.As(err, &pe) && pe.Kind == types.KindUnknown {
			return c, Empty, err
		}
		return c, Empty, types.NewUnexpected(n.name, c.found(), c.pos)
	}
	return next, v, nil
}
