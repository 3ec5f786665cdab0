package parser

import (
	"strconv"
	"strings"
)

// Expr is the interface for all expression tree nodes.
type Expr interface {
	exprType() string
	String() string
}

// IntExpr is an integer literal.
type IntExpr struct {
	Value int64
}

func (e *IntExpr) exprType() string { return "Int" }
func (e *IntExpr) String() string   { return strconv.FormatInt(e.Value, 10) }

// FnCallExpr is a call such as fn1(fn2(1), 2). Args are in source order.
type FnCallExpr struct {
	Name string
	Args []Expr
}

func (e *FnCallExpr) exprType() string { return "FnCall" }

func (e *FnCallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Name + "(" + strings.Join(args, ", ") + ")"
}

// IdentExpr is a bare identifier reference.
type IdentExpr struct {
	Name string
}

func (e *IdentExpr) exprType() string { return "Ident" }
func (e *IdentExpr) String() string   { return e.Name }

// StringExpr is a double-quoted string literal.
type StringExpr struct {
	Value string
}

func (e *StringExpr) exprType() string { return "Str" }
func (e *StringExpr) String() string   { return strconv.Quote(e.Value) }

// BoolExpr is the identifier true or false.
type BoolExpr struct {
	Value bool
}

func (e *BoolExpr) exprType() string { return "Bool" }
func (e *BoolExpr) String() string   { return strconv.FormatBool(e.Value) }

// Decl is a declaration: name [: type] = value;
type Decl struct {
	Name  string
	Type  Expr // nil when no annotation was given
	Value Expr
}

func (d *Decl) String() string {
	if d.Type != nil {
		return d.Name + ": " + d.Type.String() + " = " + d.Value.String() + ";"
	}
	return d.Name + " = " + d.Value.String() + ";"
}

// Kind returns the node variant name (Int, FnCall, Ident, Str, Bool).
func Kind(e Expr) string {
	return e.exprType()
}
