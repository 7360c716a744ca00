// Package ast defines the abstract syntax tree for scripts embedded in QML
// documents: binding expressions, signal handler bodies and functions.
package ast

import (
	"bytes"

	"github.com/deepnoodle-ai/qmlc/internal/token"
)

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Program is the root node of one parsed script. A binding expression is a
// Program whose last statement yields the binding value.
type Program struct {
	Stmts []Node
}

func (p *Program) Pos() token.Position {
	if len(p.Stmts) == 0 {
		return token.NoPos
	}
	return p.Stmts[0].Pos()
}

func (p *Program) End() token.Position {
	if len(p.Stmts) == 0 {
		return token.NoPos
	}
	return p.Stmts[len(p.Stmts)-1].End()
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// First returns the first statement of the program, or nil if it is empty.
func (p *Program) First() Node {
	if len(p.Stmts) == 0 {
		return nil
	}
	return p.Stmts[0]
}
