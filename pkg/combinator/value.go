package combinator

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType represents the variant held by a Value.
type ValueType int

const (
	TypeEmpty       ValueType = iota
	TypeChar                  // rune
	TypeUnsignedInt           // uint64
	TypeSignedInt             // int64
	TypeFloat                 // float64
	TypeStr                   // string
	TypeKeyword               // string
	TypeIdent                 // string
	TypeBool                  // bool
	TypeSequence              // []Value
	TypeDecl                  // *Declaration
)

// String returns the variant name.
func (t ValueType) String() string {
	switch t {
	case TypeEmpty:
		return "Empty"
	case TypeChar:
		return "Char"
	case TypeUnsignedInt:
		return "UnsignedInt"
	case TypeSignedInt:
		return "SignedInt"
	case TypeFloat:
		return "Float"
	case TypeStr:
		return "Str"
	case TypeKeyword:
		return "Keyword"
	case TypeIdent:
		return "Ident"
	case TypeBool:
		return "Bool"
	case TypeSequence:
		return "Sequence"
	case TypeDecl:
		return "Decl"
	default:
		return "unknown"
	}
}

// Value is the result produced by a parser. It is a tagged union; the zero
// Value is Empty.
type Value struct {
	typ      ValueType
	charVal  rune
	uintVal  uint64
	intVal   int64
	floatVal float64
	strVal   string
	boolVal  bool
	items    []Value
	decl     *Declaration
}

// Declaration is the payload of a Decl value: name [: type] = value.
type Declaration struct {
	Name  string
	Type  *Value // nil when no annotation was given
	Value Value
}

// Empty is the value produced by parsers that match nothing.
var Empty = Value{typ: TypeEmpty}

func NewChar(c rune) Value            { return Value{typ: TypeChar, charVal: c} }
func NewUnsignedInt(u uint64) Value   { return Value{typ: TypeUnsignedInt, uintVal: u} }
func NewSignedInt(i int64) Value      { return Value{typ: TypeSignedInt, intVal: i} }
func NewFloat(f float64) Value        { return Value{typ: TypeFloat, floatVal: f} }
func NewStr(s string) Value           { return Value{typ: TypeStr, strVal: s} }
func NewKeyword(s string) Value       { return Value{typ: TypeKeyword, strVal: s} }
func NewIdent(s string) Value         { return Value{typ: TypeIdent, strVal: s} }
func NewBool(b bool) Value            { return Value{typ: TypeBool, boolVal: b} }
func NewSequence(items []Value) Value { return Value{typ: TypeSequence, items: items} }

// NewDecl creates a Decl value. typ may be nil.
func NewDecl(name string, typ *Value, val Value) Value {
	return Value{typ: TypeDecl, decl: &Declaration{Name: name, Type: typ, Value: val}}
}

// Type returns the variant of v.
func (v Value) Type() ValueType { return v.typ }

func (v Value) AsChar() rune          { return v.charVal }
func (v Value) AsUnsignedInt() uint64 { return v.uintVal }
func (v Value) AsSignedInt() int64    { return v.intVal }
func (v Value) AsFloat() float64      { return v.floatVal }
func (v Value) AsBool() bool          { return v.boolVal }
func (v Value) AsSequence() []Value   { return v.items }
func (v Value) AsDecl() *Declaration  { return v.decl }

// AsString returns the text of a Str, Keyword or Ident value.
func (v Value) AsString() string { return v.strVal }

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeEmpty:
		return true
	case TypeChar:
		return v.charVal == o.charVal
	case TypeUnsignedInt:
		return v.uintVal == o.uintVal
	case TypeSignedInt:
		return v.intVal == o.intVal
	case TypeFloat:
		return v.floatVal == o.floatVal
	case TypeStr, TypeKeyword, TypeIdent:
		return v.strVal == o.strVal
	case TypeBool:
		return v.boolVal == o.boolVal
	case TypeSequence:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case TypeDecl:
		a, b := v.decl, o.decl
		if a.Name != b.Name || !a.Value.Equal(b.Value) {
			return false
		}
		if a.Type == nil || b.Type == nil {
			return a.Type == nil && b.Type == nil
		}
		return a.Type.Equal(*b.Type)
	}
	return false
}

// String renders v in constructor form, e.g. SignedInt(-12).
func (v Value) String() string {
	switch v.typ {
	case TypeEmpty:
		return "Empty"
	case TypeChar:
		return fmt.Sprintf("Char(%q)", v.charVal)
	case TypeUnsignedInt:
		return fmt.Sprintf("UnsignedInt(%d)", v.uintVal)
	case TypeSignedInt:
		return fmt.Sprintf("SignedInt(%d)", v.intVal)
	case TypeFloat:
		return "Float(" + strconv.FormatFloat(v.floatVal, 'g', -1, 64) + ")"
	case TypeStr, TypeKeyword, TypeIdent:
		return fmt.Sprintf("%s(%q)", v.typ, v.strVal)
	case TypeBool:
		return fmt.Sprintf("Bool(%t)", v.boolVal)
	case TypeSequence:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "Sequence[" + strings.Join(parts, ", ") + "]"
	case TypeDecl:
		if v.decl.Type != nil {
			return fmt.Sprintf("Decl(%s: %s = %s)", v.decl.Name, v.decl.Type, v.decl.Value)
		}
		return fmt.Sprintf("Decl(%s = %s)", v.decl.Name, v.decl.Value)
	default:
		return "unknown"
	}
}

// Native converts v into plain Go values for encoding: numbers, strings,
// bools, []interface{} and map[string]interface{}.
func (v Value) Native() interface{} {
	switch v.typ {
	case TypeChar:
		return string(v.charVal)
	case TypeUnsignedInt:
		return v.uintVal
	case TypeSignedInt:
		return v.intVal
	case TypeFloat:
		return v.floatVal
	case TypeStr, TypeKeyword, TypeIdent:
		return v.strVal
	case TypeBool:
		return v.boolVal
	case TypeSequence:
		out := make([]interface{}, len(v.items))
		for i, item := range v.items {
			out[i] = item.Native()
		}
		return out
	case TypeDecl:
		m := map[string]interface{}{
			"name":  v.decl.Name,
			"value": Tagged(v.decl.Value),
		}
		if v.decl.Type != nil {
			m["type"] = Tagged(*v.decl.Type)
		}
		return m
	default:
		return nil
	}
}

// Tagged wraps Native with the variant name: {"type": "SignedInt", "value": -3}.
func Tagged(v Value) map[string]interface{} {
	return map[string]interface{}{
		"type":  v.typ.String(),
		"value": v.Native(),
	}
}
