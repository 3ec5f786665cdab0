// Package lexer implements the single-pass tokenizer for the toy language:
// identifiers, numbers, string literals, keywords and structural punctuation.
package lexer

import "fmt"

// TokenKind represents the type of a lexical token.
type TokenKind int

const (
	// Valued tokens
	TokenIdent         TokenKind = iota // identifier
	TokenNumber                         // digit run
	TokenStringLiteral                  // text between double quotes

	TokenKeyword // if, struct, interface, for

	// Punctuation
	TokenSemiColon        // ;
	TokenAssignOp         // =
	TokenLParen           // (
	TokenRParen           // )
	TokenComma            // ,
	TokenColon            // :
	TokenDoubleQuoteStart // opening "
	TokenDoubleQuoteEnd   // closing "
	TokenSqBracketOpen    // [
	TokenSqBracketClose   // ]
	TokenCuBracketOpen    // {
	TokenCuBracketClose   // }
)

// Keywords recognised by the tokenizer.
var Keywords = map[string]bool{
	"if":        true,
	"struct":    true,
	"interface": true,
	"for":       true,
}

// Token represents a single lexical token.
//
// Value holds the accumulated text for Ident, Number and StringLiteral
// tokens and the keyword itself for Keyword tokens. It is empty for
// punctuation.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int // byte offset of the first character in the source
}

// HasValue reports whether the token kind carries text.
func (t Token) HasValue() bool {
	switch t.Kind {
	case TokenIdent, TokenNumber, TokenStringLiteral:
		return true
	default:
		return false
	}
}

// Same reports whether two tokens are structurally equal, ignoring position.
func (t Token) Same(o Token) bool {
	return t.Kind == o.Kind && t.Value == o.Value
}

// String renders the token the way diagnostics show it, e.g. Ident("x").
func (t Token) String() string {
	if t.HasValue() || t.Kind == TokenKeyword {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
	}
	return t.Kind.String()
}

// String returns the kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "Ident"
	case TokenNumber:
		return "Number"
	case TokenStringLiteral:
		return "StringLiteral"
	case TokenKeyword:
		return "Keyword"
	case TokenSemiColon:
		return "SemiColon"
	case TokenAssignOp:
		return "AssignOp"
	case TokenLParen:
		return "LParen"
	case TokenRParen:
		return "RParen"
	case TokenComma:
		return "Comma"
	case TokenColon:
		return "Colon"
	case TokenDoubleQuoteStart:
		return "DoubleQuoteStart"
	case TokenDoubleQuoteEnd:
		return "DoubleQuoteEnd"
	case TokenSqBracketOpen:
		return "SqBracketOpen"
	case TokenSqBracketClose:
		return "SqBracketClose"
	case TokenCuBracketOpen:
		return "CuBracketOpen"
	case TokenCuBracketClose:
		return "CuBracketClose"
	default:
		return "Unknown"
	}
}

// punctuation maps single characters to their structural token kind.
var punctuation = map[rune]TokenKind{
	';': TokenSemiColon,
	'=': TokenAssignOp,
	'(': TokenLParen,
	')': TokenRParen,
	',': TokenComma,
	':': TokenColon,
	'[': TokenSqBracketOpen,
	']': TokenSqBracketClose,
	'{': TokenCuBracketOpen,
	'}': TokenCuBracketClose,
}
