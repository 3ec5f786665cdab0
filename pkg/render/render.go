// Package render converts tokens, expression trees, primitive values and
// errors into documents for text, JSON or YAML output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/toyparse/pkg/combinator"
	"github.com/lemonberrylabs/toyparse/pkg/lexer"
	"github.com/lemonberrylabs/toyparse/pkg/parser"
	"github.com/lemonberrylabs/toyparse/pkg/types"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Tokens returns one map per token: {"kind": ..., "value": ..., "pos": ...}.
// Punctuation tokens have no value key.
func Tokens(tokens []lexer.Token) []map[string]interface{} {
	out := make([]map[string]interface{}, len(tokens))
	for i, tok := range tokens {
		m := map[string]interface{}{
			"kind": tok.Kind.String(),
			"pos":  tok.Pos,
		}
		if tok.HasValue() || tok.Kind == lexer.TokenKeyword {
			m["value"] = tok.Value
		}
		out[i] = m
	}
	return out
}

// TokensText renders tokens as a bracketed list: [Ident("x"), AssignOp].
func TokensText(tokens []lexer.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Expr converts an expression tree into nested maps.
func Expr(e parser.Expr) map[string]interface{} {
	switch n := e.(type) {
	case *parser.IntExpr:
		return map[string]interface{}{"type": "Int", "value": n.Value}
	case *parser.IdentExpr:
		return map[string]interface{}{"type": "Ident", "name": n.Name}
	case *parser.StringExpr:
		return map[string]interface{}{"type": "Str", "value": n.Value}
	case *parser.BoolExpr:
		return map[string]interface{}{"type": "Bool", "value": n.Value}
	case *parser.FnCallExpr:
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			args[i] = Expr(a)
		}
		return map[string]interface{}{"type": "FnCall", "name": n.Name, "args": args}
	default:
		return map[string]interface{}{"type": "unknown"}
	}
}

// Decl converts a declaration into a map.
func Decl(d *parser.Decl) map[string]interface{} {
	m := map[string]interface{}{
		"name":  d.Name,
		"value": Expr(d.Value),
	}
	if d.Type != nil {
		m["type"] = Expr(d.Type)
	}
	return m
}

// Primitive converts a combinator result and its remaining input.
func Primitive(v combinator.Value, rest string) map[string]interface{} {
	m := combinator.Tagged(v)
	m["rest"] = rest
	return m
}

// Error converts any error from the lexer, combinator core or parser into a
// diagnostic map with kind, expected, found and position.
func Error(err error) map[string]interface{} {
	kind, expected, found, pos := types.Describe(err)
	m := map[string]interface{}{
		"kind":     kind,
		"message":  err.Error(),
		"position": pos,
	}
	if expected != "" {
		m["expected"] = expected
	}
	if found != "" {
		m["found"] = found
	}
	return m
}

// Write encodes doc to w in the given format. In text format, text is
// written instead.
func Write(w io.Writer, format Format, text string, doc interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, text)
		return err
	}
}
