package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/qmlc/internal/token"
)

// Int is an expression node that holds an integer literal.
type Int struct {
	ValuePos token.Position // position of literal
	Literal  string         // original source text
	Value    int64          // parsed value
}

func (x *Int) exprNode() {}

func (x *Int) Pos() token.Position { return x.ValuePos }
func (x *Int) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Int) String() string { return x.Literal }

// Float is an expression node that holds a floating point literal.
type Float struct {
	ValuePos token.Position // position of literal
	Literal  string         // original source text
	Value    float64        // parsed value
}

func (x *Float) exprNode() {}

func (x *Float) Pos() token.Position { return x.ValuePos }
func (x *Float) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Float) String() string { return x.Literal }

// Null is the "null" literal.
type Null struct {
	NullPos token.Position
}

func (x *Null) exprNode() {}

func (x *Null) Pos() token.Position { return x.NullPos }
func (x *Null) End() token.Position { return x.NullPos.Advance(4) }

func (x *Null) String() string { return "null" }

// Undefined is the "undefined" literal.
type Undefined struct {
	UndefinedPos token.Position
}

func (x *Undefined) exprNode() {}

func (x *Undefined) Pos() token.Position { return x.UndefinedPos }
func (x *Undefined) End() token.Position { return x.UndefinedPos.Advance(9) }

func (x *Undefined) String() string { return "undefined" }

// Bool is an expression node that holds a boolean literal.
type Bool struct {
	ValuePos token.Position // position of literal
	Literal  string         // "true" or "false"
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Bool) String() string { return x.Literal }

// String is an expression node that holds a string literal.
type String struct {
	ValuePos token.Position // position of the opening quote
	EndPos   token.Position // position after the closing quote
	Value    string         // unescaped value
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.ValuePos }
func (x *String) End() token.Position { return x.EndPos }

func (x *String) String() string { return fmt.Sprintf("%q", x.Value) }

// Func holds a function declaration or function expression. Signal handler
// bindings are wrapped in a Func carrying the handler name.
type Func struct {
	Func   token.Position // position of "function" keyword
	Name   *Ident         // function name; nil for anonymous functions
	Lparen token.Position // position of "("
	Params []*Ident       // parameter names
	Rparen token.Position // position of ")"
	Body   *Block         // function body
}

func (x *Func) exprNode() {}
func (x *Func) stmtNode() {} // named functions are also statements

func (x *Func) Pos() token.Position { return x.Func }

func (x *Func) End() token.Position {
	if x.Body != nil {
		return x.Body.End()
	}
	return x.Rparen.Advance(1)
}

// ParamNames returns the names of the formal parameters.
func (x *Func) ParamNames() []string {
	names := make([]string, 0, len(x.Params))
	for _, p := range x.Params {
		names = append(names, p.Name)
	}
	return names
}

func (x *Func) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if x.Name != nil {
		out.WriteString(" ")
		out.WriteString(x.Name.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(x.ParamNames(), ", "))
	out.WriteString(") ")
	if x.Body != nil {
		out.WriteString(x.Body.String())
	} else {
		out.WriteString("{}")
	}
	return out.String()
}

// List is an array literal.
type List struct {
	Lbrack token.Position // position of "["
	Items  []Expr         // list elements
	Rbrack token.Position // position of "]"
}

func (x *List) exprNode() {}

func (x *List) Pos() token.Position { return x.Lbrack }
func (x *List) End() token.Position { return x.Rbrack.Advance(1) }

func (x *List) String() string {
	items := make([]string, 0, len(x.Items))
	for _, item := range x.Items {
		items = append(items, item.String())
	}
	return "[" + strings.Join(items, ", ") + "]"
}

// MapItem is one key/value pair of an object literal.
type MapItem struct {
	Key   string // property name
	Value Expr   // property value
}

// Map is an object literal.
type Map struct {
	Lbrace token.Position // position of "{"
	Items  []MapItem      // key-value pairs in source order
	Rbrace token.Position // position of "}"
}

func (x *Map) exprNode() {}

func (x *Map) Pos() token.Position { return x.Lbrace }
func (x *Map) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Map) String() string {
	items := make([]string, 0, len(x.Items))
	for _, item := range x.Items {
		items = append(items, fmt.Sprintf("%q: %s", item.Key, item.Value.String()))
	}
	return "{" + strings.Join(items, ", ") + "}"
}
