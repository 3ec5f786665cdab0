// Package types defines the error taxonomy shared by the lexer, the
// combinator core and the token parser.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kind constants. They double as the machine-readable status reported
// by the HTTP and gRPC surfaces.
const (
	KindCannotStartStringInOtherToken = "CannotStartStringInOtherToken"
	KindUnterminatedString            = "UnterminatedString"
	KindUnexpectedCharacter           = "UnexpectedCharacter"

	KindUnexpected      = "Unexpected"
	KindUnexpectedToken = "UnexpectedToken"
	KindUnknown         = "Unknown"
)

// Nothing is the found-description used when input ran out.
const Nothing = "nothing"

// LexError is a tokenizer failure.
type LexError struct {
	Kind string
	Char rune // offending character, 0 for UnterminatedString
	Pos  int  // byte offset in the source
}

// Error implements the error interface.
func (e *LexError) Error() string {
	switch e.Kind {
	case KindCannotStartStringInOtherToken:
		return fmt.Sprintf("cannot start string in other token at position %d", e.Pos)
	case KindUnterminatedString:
		return fmt.Sprintf("unterminated string starting at position %d", e.Pos)
	case KindUnexpectedCharacter:
		return fmt.Sprintf("unexpected character %q at position %d", e.Char, e.Pos)
	default:
		return fmt.Sprintf("%s at position %d", e.Kind, e.Pos)
	}
}

// NewCannotStartStringError reports a '"' seen while another token is pending.
func NewCannotStartStringError(pos int) *LexError {
	return &LexError{Kind: KindCannotStartStringInOtherToken, Char: '"', Pos: pos}
}

// NewUnterminatedStringError reports end of input inside a string literal.
// pos is the offset of the opening quote.
func NewUnterminatedStringError(pos int) *LexError {
	return &LexError{Kind: KindUnterminatedString, Pos: pos}
}

// NewUnexpectedCharacterError reports a character no token can start with.
func NewUnexpectedCharacterError(ch rune, pos int) *LexError {
	return &LexError{Kind: KindUnexpectedCharacter, Char: ch, Pos: pos}
}

// ParseError is a failure of either the combinator core (Position is a byte
// offset) or the token parser (Position is a token index).
type ParseError struct {
	Kind     string
	Expected string
	Found    string
	Position int
	Message  string // only for KindUnknown
	Err      error  // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case KindUnexpected:
		return fmt.Sprintf("expected %s, found %s at position %d", e.Expected, e.Found, e.Position)
	case KindUnexpectedToken:
		return fmt.Sprintf("expected %s, found %s at token %d", e.Expected, e.Found, e.Position)
	default:
		var sb strings.Builder
		sb.WriteString(e.Message)
		if e.Err != nil {
			if sb.Len() > 0 {
				sb.WriteString(": ")
			}
			sb.WriteString(e.Err.Error())
		}
		return sb.String()
	}
}

// Unwrap returns the wrapped cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewUnexpected creates a combinator-level mismatch.
func NewUnexpected(expected, found string, pos int) *ParseError {
	return &ParseError{Kind: KindUnexpected, Expected: expected, Found: found, Position: pos}
}

// NewUnexpectedToken creates a token-level mismatch. index is the token index.
func NewUnexpectedToken(expected, found string, index int) *ParseError {
	return &ParseError{Kind: KindUnexpectedToken, Expected: expected, Found: found, Position: index}
}

// NewUnknown wraps an arbitrary cause with context. pos is where the
// offending literal starts: a byte offset or a token index.
func NewUnknown(msg string, pos int, err error) *ParseError {
	return &ParseError{Kind: KindUnknown, Message: msg, Position: pos, Err: err}
}

// Describe flattens any error from this module into kind, expected, found
// and position, for transports that report structured diagnostics.
func Describe(err error) (kind, expected, found string, pos int) {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		found = Nothing
		if lexErr.Char != 0 {
			found = string(lexErr.Char)
		}
		return lexErr.Kind, "", found, lexErr.Pos
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Kind, parseErr.Expected, parseErr.Found, parseErr.Position
	}
	return KindUnknown, "", "", 0
}
