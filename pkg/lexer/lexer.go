package lexer

import (
	"strings"

	"github.com/lemonberrylabs/toyparse/pkg/types"
)

// Lexer tokenizes toy-language source in one left-to-right pass.
type Lexer struct {
	input  string
	tokens []Token

	// pending is the Ident, Number or StringLiteral being accumulated.
	pending    *Token
	pendingBuf strings.Builder

	inString    bool
	stringStart int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize scans source and returns its tokens.
func Tokenize(source string) ([]Token, error) {
	return NewLexer(source).Tokenize()
}

// Tokenize scans the entire input and returns all tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for pos, ch := range l.input {
		if l.inString {
			l.scanStringChar(ch, pos)
			continue
		}

		switch {
		case isSpace(ch):
			l.flush()
		case ch == '"':
			if l.pending != nil {
				return nil, types.NewCannotStartStringError(pos)
			}
			l.emit(Token{Kind: TokenDoubleQuoteStart, Pos: pos})
			l.inString = true
			l.stringStart = pos
		case isIdentStart(ch):
			if l.pending != nil && l.pending.Kind != TokenIdent {
				return nil, types.NewUnexpectedCharacterError(ch, pos)
			}
			l.accumulate(TokenIdent, ch, pos)
		case isDigit(ch):
			if l.pending != nil {
				// digits continue an identifier (fn1) or a number
				l.pendingBuf.WriteRune(ch)
			} else {
				l.accumulate(TokenNumber, ch, pos)
			}
		default:
			kind, ok := punctuation[ch]
			if !ok {
				return nil, types.NewUnexpectedCharacterError(ch, pos)
			}
			l.flush()
			l.emit(Token{Kind: kind, Pos: pos})
		}
	}

	if l.inString {
		return nil, types.NewUnterminatedStringError(l.stringStart)
	}
	l.flush()
	return l.tokens, nil
}

// scanStringChar handles one character while inside a string literal.
func (l *Lexer) scanStringChar(ch rune, pos int) {
	if ch == '"' {
		l.flush()
		l.emit(Token{Kind: TokenDoubleQuoteEnd, Pos: pos})
		l.inString = false
		return
	}
	l.accumulate(TokenStringLiteral, ch, pos)
}

// accumulate appends ch to the pending token, starting one of kind if none
// is pending.
func (l *Lexer) accumulate(kind TokenKind, ch rune, pos int) {
	if l.pending == nil {
		l.pending = &Token{Kind: kind, Pos: pos}
		l.pendingBuf.Reset()
	}
	l.pendingBuf.WriteRune(ch)
}

// flush emits the pending token, promoting identifiers that spell a keyword.
// Keywords are only committed here, at a token boundary, so "structure"
// stays a single identifier.
func (l *Lexer) flush() {
	if l.pending == nil {
		return
	}
	tok := *l.pending
	tok.Value = l.pendingBuf.String()
	if tok.Kind == TokenIdent && Keywords[tok.Value] {
		tok.Kind = TokenKeyword
	}
	l.emit(tok)
	l.pending = nil
}

func (l *Lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
