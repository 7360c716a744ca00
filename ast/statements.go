package ast

import (
	"bytes"

	"github.com/deepnoodle-ai/qmlc/internal/token"
)

// Var is a variable declaration introduced by "var", "let" or "const".
type Var struct {
	Keyword string         // "var", "let" or "const"
	VarPos  token.Position // position of the keyword
	Name    *Ident         // declared name
	Value   Expr           // initializer; nil if absent
}

func (s *Var) stmtNode() {}

func (s *Var) Pos() token.Position { return s.VarPos }

func (s *Var) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.Name.End()
}

func (s *Var) String() string {
	if s.Value == nil {
		return s.Keyword + " " + s.Name.Name
	}
	return s.Keyword + " " + s.Name.Name + " = " + s.Value.String()
}

// Return is a return statement.
type Return struct {
	Return token.Position // position of "return" keyword
	Value  Expr           // returned value; nil for a bare return
}

func (s *Return) stmtNode() {}

func (s *Return) Pos() token.Position { return s.Return }

func (s *Return) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.Return.Advance(6)
}

func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// Block is a brace-delimited sequence of statements.
type Block struct {
	Lbrace token.Position // position of "{"
	Stmts  []Node         // statements in the block
	Rbrace token.Position // position of "}"
}

func (b *Block) stmtNode() {}

func (b *Block) Pos() token.Position { return b.Lbrace }
func (b *Block) End() token.Position { return b.Rbrace.Advance(1) }

func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for i, s := range b.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

// If is an if/else statement. Alternative is a *Block, an *If or nil.
type If struct {
	If          token.Position // position of "if" keyword
	Cond        Expr           // condition
	Consequence *Block         // then branch
	Alternative Stmt           // else branch; nil if no else
}

func (s *If) stmtNode() {}

func (s *If) Pos() token.Position { return s.If }

func (s *If) End() token.Position {
	if s.Alternative != nil {
		return s.Alternative.End()
	}
	return s.Consequence.End()
}

func (s *If) String() string {
	out := "if (" + s.Cond.String() + ") " + s.Consequence.String()
	if s.Alternative != nil {
		out += " else " + s.Alternative.String()
	}
	return out
}
