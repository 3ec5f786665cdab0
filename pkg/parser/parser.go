// Package parser builds expression trees and declarations from the token
// stream produced by package lexer.
package parser

import (
	"fmt"
	"strconv"

	"github.com/lemonberrylabs/toyparse/pkg/lexer"
	"github.com/lemonberrylabs/toyparse/pkg/types"
)

// endOfInput is reported as the found token when the stream runs out.
const endOfInput = "end of input"

// Parser consumes a token slice left to right. Nested calls are tracked on an
// explicit stack, so nesting depth is limited by memory rather than by the
// goroutine stack.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a parser positioned at the first token.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseNextExpr parses the first expression of tokens.
func ParseNextExpr(tokens []lexer.Token) (Expr, error) {
	return New(tokens).ParseNextExpr()
}

// ParseExpression tokenizes source and parses exactly one expression from it.
func ParseExpression(source string) (Expr, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, fmt.Errorf("lexer error: %w", err)
	}
	p := New(tokens)
	expr, err := p.ParseNextExpr()
	if err != nil {
		return nil, err
	}
	if !p.Done() {
		return nil, p.unexpected(endOfInput)
	}
	return expr, nil
}

// ParseDeclaration tokenizes source and parses exactly one declaration.
func ParseDeclaration(source string) (*Decl, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, fmt.Errorf("lexer error: %w", err)
	}
	p := New(tokens)
	decl, err := p.ParseDecl()
	if err != nil {
		return nil, err
	}
	if !p.Done() {
		return nil, p.unexpected(endOfInput)
	}
	return decl, nil
}

// ParseProgram tokenizes source and parses declarations until the tokens
// are exhausted.
func ParseProgram(source string) ([]*Decl, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, fmt.Errorf("lexer error: %w", err)
	}
	p := New(tokens)
	var decls []*Decl
	for !p.Done() {
		decl, err := p.ParseDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// Pos returns the index of the next unconsumed token.
func (p *Parser) Pos() int {
	return p.pos
}

// Done reports whether every token has been consumed.
func (p *Parser) Done() bool {
	return p.pos >= len(p.tokens)
}

// current returns the current token. ok is false at end of input.
func (p *Parser) current() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

// peek returns the token after the current one.
func (p *Parser) peek() (lexer.Token, bool) {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos+1], true
}

// is reports whether the current token has kind k.
func (p *Parser) is(k lexer.TokenKind) bool {
	tok, ok := p.current()
	return ok && tok.Kind == k
}

// advance consumes the current token and returns it.
func (p *Parser) advance() lexer.Token {
	tok, _ := p.current()
	p.pos++
	return tok
}

// expect consumes a token of kind k or returns an UnexpectedToken error.
func (p *Parser) expect(k lexer.TokenKind) (lexer.Token, error) {
	if !p.is(k) {
		return lexer.Token{}, p.unexpected(k.String())
	}
	return p.advance(), nil
}

// unexpected builds an UnexpectedToken error for the current token.
func (p *Parser) unexpected(expected string) error {
	found := endOfInput
	if tok, ok := p.current(); ok {
		found = tok.String()
	}
	return types.NewUnexpectedToken(expected, found, p.pos)
}

// ParseNextExpr parses one expression starting at the current token:
//
//	expr := Ident '(' [expr (',' expr)*] ')' | Number | Ident | '"' [StringLiteral] '"'
func (p *Parser) ParseNextExpr() (Expr, error) {
	var open []*FnCallExpr

	for {
		operand, call, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if call != nil {
			if p.is(lexer.TokenRParen) {
				p.advance()
				operand = call
			} else {
				open = append(open, call)
				continue
			}
		}

		// Attach the finished operand to the innermost open call, closing
		// calls for as long as ')' follows.
		for {
			if len(open) == 0 {
				return operand, nil
			}
			top := open[len(open)-1]
			top.Args = append(top.Args, operand)

			if p.is(lexer.TokenComma) {
				p.advance()
				break
			}
			if !p.is(lexer.TokenRParen) {
				return nil, p.unexpected("Comma or RParen")
			}
			p.advance()
			open = open[:len(open)-1]
			operand = top
		}
	}
}

// parseOperand parses a literal or identifier, or the head of a call. For a
// call head, the returned FnCallExpr has no arguments yet and the '(' has
// been consumed.
func (p *Parser) parseOperand() (Expr, *FnCallExpr, error) {
	tok, ok := p.current()
	if !ok {
		return nil, nil, p.unexpected("expression")
	}

	switch tok.Kind {
	case lexer.TokenIdent:
		if next, ok := p.peek(); ok && next.Kind == lexer.TokenLParen {
			p.advance()
			p.advance()
			return nil, &FnCallExpr{Name: tok.Value}, nil
		}
		p.advance()
		switch tok.Value {
		case "true":
			return &BoolExpr{Value: true}, nil, nil
		case "false":
			return &BoolExpr{Value: false}, nil, nil
		}
		return &IdentExpr{Name: tok.Value}, nil, nil
	case lexer.TokenNumber:
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, nil, types.NewUnknown(fmt.Sprintf("invalid integer %q at token %d", tok.Value, p.pos), p.pos, err)
		}
		p.advance()
		return &IntExpr{Value: i}, nil, nil
	case lexer.TokenDoubleQuoteStart:
		p.advance()
		var value string
		if p.is(lexer.TokenStringLiteral) {
			value = p.advance().Value
		}
		if _, err := p.expect(lexer.TokenDoubleQuoteEnd); err != nil {
			return nil, nil, err
		}
		return &StringExpr{Value: value}, nil, nil
	default:
		return nil, nil, p.unexpected("expression")
	}
}

// ParseDecl parses a declaration starting at the current token:
//
//	decl := Ident [':' expr] '=' expr ';'
func (p *Parser) ParseDecl() (*Decl, error) {
	name, err := p.expect(lexer.TokenIdent)
	if err != nil {
		return nil, err
	}
	decl := &Decl{Name: name.Value}

	if p.is(lexer.TokenColon) {
		p.advance()
		decl.Type, err = p.ParseNextExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenAssignOp); err != nil {
		return nil, err
	}
	decl.Value, err = p.ParseNextExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenSemiColon); err != nil {
		return nil, err
	}
	return decl, nil
}
