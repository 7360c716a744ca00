// Package parser builds script ASTs from the source text of QML bindings,
// signal handlers and functions.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling Parse() to produce the AST. Parsing stops
// at the first syntax error.
package parser

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/errors"
	"github.com/deepnoodle-ai/qmlc/internal/lexer"
	"github.com/deepnoodle-ai/qmlc/internal/token"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Parse the provided script source and return the AST. This is shorthand for
// creating a Lexer and Parser and then calling Parse.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	p := New(input, options...)
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in positions and errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.lexerOpts = append(p.lexerOpts, lexer.WithFilename(filename))
	}
}

// WithOffset shifts positions so they are relative to the enclosing document.
// Line and column are 0-indexed.
func WithOffset(line, column int) Option {
	return func(p *Parser) {
		p.lexerOpts = append(p.lexerOpts, lexer.WithOffset(line, column))
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 200

// Parser object
type Parser struct {
	l         *lexer.Lexer
	lexerOpts []lexer.Option

	prevToken token.Token
	curToken  token.Token
	peekToken token.Token

	// first error encountered; parsing stops once set
	err *errors.CompileError

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	depth    int
	maxDepth int
}

// New returns a Parser for the given script source.
func New(input string, options ...Option) *Parser {
	p := &Parser{
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	p.l = lexer.New(input, p.lexerOpts...)

	// Prime the token pump
	p.nextToken()
	p.nextToken()

	p.registerPrefix(token.BANG, p.parsePrefixExpr)
	p.registerPrefix(token.MINUS, p.parsePrefixExpr)
	p.registerPrefix(token.PLUS, p.parsePrefixExpr)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FLOAT, p.parseFloat)
	p.registerPrefix(token.INT, p.parseInt)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.UNDEFINED, p.parseUndefined)
	p.registerPrefix(token.FUNCTION, p.parseFuncExpr)
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.LBRACE, p.parseMap)
	p.registerPrefix(token.LBRACKET, p.parseList)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)

	for _, typ := range []token.Type{
		token.OR, token.AND, token.BITOR, token.BITAND,
		token.EQ, token.NOT_EQ, token.STRICT_EQ, token.STRICT_NE,
		token.LT, token.LT_EQUALS, token.GT, token.GT_EQUALS,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.MOD,
	} {
		p.registerInfix(typ, p.parseInfixExpr)
	}
	p.registerInfix(token.ASSIGN, p.parseAssign)
	p.registerInfix(token.QUESTION, p.parseTernary)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.PERIOD, p.parseGetAttr)
	p.registerInfix(token.LBRACKET, p.parseIndex)
	return p
}

// Parse the script and return its AST.
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	if p.err != nil {
		return nil, p.err
	}
	var stmts []ast.Node
	for !p.curTokenIs(token.EOF) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return nil, p.err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	if p.err != nil {
		return nil, p.err
	}
	return &ast.Program{Stmts: stmts}, nil
}

func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	if p.err != nil {
		p.peekToken = token.Token{Type: token.EOF, StartPosition: p.curToken.EndPosition}
		return
	}
	tok, err := p.l.Next()
	p.peekToken = tok
	if err != nil {
		p.errorAt(tok, "%s", err.Error())
	}
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the next token has the expected type and records a
// syntax error otherwise.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorAt(p.peekToken, "syntax error: unexpected %s while parsing %s (expected %s)",
		describe(p.peekToken), context, t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) currentPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) {
	if p.err != nil {
		return
	}
	pos := tok.StartPosition
	p.err = &errors.CompileError{
		Code:       errors.E4001,
		Message:    fmt.Sprintf(format, args...),
		Filename:   pos.File,
		Line:       pos.LineNumber(),
		Column:     pos.ColumnNumber(),
		SourceLine: p.l.GetLineText(tok),
	}
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

// atStatementEnd reports whether the current statement may end after the
// current token: an explicit semicolon, a closing brace, end of input, or a
// line break before the next token.
func (p *Parser) atStatementEnd() bool {
	switch p.peekToken.Type {
	case token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	return p.peekToken.StartPosition.Line > p.curToken.EndPosition.Line
}

func (p *Parser) finishStatement() {
	if p.err != nil {
		return
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return
	}
	if !p.atStatementEnd() {
		p.errorAt(p.peekToken, "syntax error: unexpected %s following statement", describe(p.peekToken))
	}
}

func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.errorAt(p.curToken, "syntax error: maximum nesting depth exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}
