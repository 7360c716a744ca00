// Package token defines the tokens produced when lexing binding scripts.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the script
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // document URL
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes on the same line.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	AND       Type = "&&"
	ASSIGN    Type = "="
	ASTERISK  Type = "*"
	BANG      Type = "!"
	BITAND    Type = "&"
	BITOR     Type = "|"
	COLON     Type = ":"
	COMMA     Type = ","
	CONST     Type = "CONST"
	ELSE      Type = "ELSE"
	EOF       Type = "EOF"
	EQ        Type = "=="
	FALSE     Type = "FALSE"
	FLOAT     Type = "FLOAT"
	FUNCTION  Type = "FUNCTION"
	GT        Type = ">"
	GT_EQUALS Type = ">="
	IDENT     Type = "IDENT"
	IF        Type = "IF"
	ILLEGAL   Type = "ILLEGAL"
	INT       Type = "INT"
	LBRACE    Type = "{"
	LBRACKET  Type = "["
	LET       Type = "LET"
	LPAREN    Type = "("
	LT        Type = "<"
	LT_EQUALS Type = "<="
	MINUS     Type = "-"
	MOD       Type = "%"
	NOT_EQ    Type = "!="
	NULL      Type = "NULL"
	OR        Type = "||"
	PERIOD    Type = "."
	PLUS      Type = "+"
	QUESTION  Type = "?"
	RBRACE    Type = "}"
	RBRACKET  Type = "]"
	RETURN    Type = "RETURN"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	SLASH     Type = "/"
	STRICT_EQ Type = "==="
	STRICT_NE Type = "!=="
	STRING    Type = "STRING"
	TRUE      Type = "TRUE"
	UNDEFINED Type = "UNDEFINED"
	VAR       Type = "VAR"
)

// Reserved keywords
var keywords = map[string]Type{
	"const":     CONST,
	"else":      ELSE,
	"false":     FALSE,
	"function":  FUNCTION,
	"if":        IF,
	"let":       LET,
	"null":      NULL,
	"return":    RETURN,
	"true":      TRUE,
	"undefined": UNDEFINED,
	"var":       VAR,
}

// LookupIdentifier returns the keyword type for the identifier, or IDENT if
// the identifier is not reserved.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}
