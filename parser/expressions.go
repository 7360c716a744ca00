package parser

import (
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorAt(p.curToken, "syntax error: unexpected %s", describe(p.curToken))
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
}

func (p *Parser) parseIdent() ast.Expr {
	return p.newIdent(p.curToken)
}

func (p *Parser) parseInt() ast.Expr {
	tok := p.curToken
	lit := tok.Literal
	var value int64
	var err error
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		value, err = strconv.ParseInt(lit[2:], 16, 64)
	} else {
		value, err = strconv.ParseInt(lit, 10, 64)
	}
	if err != nil {
		// Out of int64 range literals are still valid numbers.
		f, ferr := strconv.ParseFloat(lit, 64)
		if ferr != nil {
			p.errorAt(tok, "syntax error: invalid integer %q", lit)
			return nil
		}
		return &ast.Float{ValuePos: tok.StartPosition, Literal: lit, Value: f}
	}
	return &ast.Int{ValuePos: tok.StartPosition, Literal: lit, Value: value}
}

func (p *Parser) parseFloat() ast.Expr {
	tok := p.curToken
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorAt(tok, "syntax error: invalid number %q", tok.Literal)
		return nil
	}
	return &ast.Float{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseString() ast.Expr {
	return &ast.String{
		ValuePos: p.curToken.StartPosition,
		EndPos:   p.curToken.EndPosition,
		Value:    p.curToken.Literal,
	}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.Bool{
		ValuePos: p.curToken.StartPosition,
		Literal:  p.curToken.Literal,
		Value:    p.curTokenIs(token.TRUE),
	}
}

func (p *Parser) parseNull() ast.Expr {
	return &ast.Null{NullPos: p.curToken.StartPosition}
}

func (p *Parser) parseUndefined() ast.Expr {
	return &ast.Undefined{UndefinedPos: p.curToken.StartPosition}
}

func (p *Parser) parseFuncExpr() ast.Expr {
	fn := p.parseFunc()
	if fn == nil {
		return nil
	}
	return fn
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.Prefix{OpPos: opPos, Op: op, X: right}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	opPos := p.curToken.StartPosition
	op := p.curToken.Literal
	precedence := p.currentPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{X: left, OpPos: opPos, Op: op, Y: right}
}

func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	switch left.(type) {
	case *ast.Ident, *ast.GetAttr, *ast.Index:
	default:
		p.errorAt(p.curToken, "syntax error: invalid assignment target")
		return nil
	}
	opPos := p.curToken.StartPosition
	p.nextToken()
	// Assignment is right associative.
	value := p.parseExpression(ASSIGN - 1)
	if value == nil {
		return nil
	}
	return &ast.Assign{Target: left, OpPos: opPos, Value: value}
}

func (p *Parser) parseTernary(cond ast.Expr) ast.Expr {
	expr := &ast.Ternary{Cond: cond, Question: p.curToken.StartPosition}
	p.nextToken()
	expr.IfTrue = p.parseExpression(LOWEST)
	if expr.IfTrue == nil || !p.expectPeek("ternary expression", token.COLON) {
		return nil
	}
	expr.Colon = p.curToken.StartPosition
	p.nextToken()
	expr.IfFalse = p.parseExpression(TERNARY - 1)
	if expr.IfFalse == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil || !p.expectPeek("grouped expression", token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	call := &ast.Call{Fun: fn, Lparen: p.curToken.StartPosition}
	args, ok := p.parseExprList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Args = args
	call.Rparen = p.curToken.StartPosition
	return call
}

func (p *Parser) parseGetAttr(obj ast.Expr) ast.Expr {
	period := p.curToken.StartPosition
	if !p.expectPeek("attribute access", token.IDENT) {
		return nil
	}
	return &ast.GetAttr{X: obj, Period: period, Attr: p.newIdent(p.curToken)}
}

func (p *Parser) parseIndex(obj ast.Expr) ast.Expr {
	expr := &ast.Index{X: obj, Lbrack: p.curToken.StartPosition}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if expr.Index == nil || !p.expectPeek("index expression", token.RBRACKET) {
		return nil
	}
	expr.Rbrack = p.curToken.StartPosition
	return expr
}

func (p *Parser) parseList() ast.Expr {
	list := &ast.List{Lbrack: p.curToken.StartPosition}
	items, ok := p.parseExprList(token.RBRACKET)
	if !ok {
		return nil
	}
	list.Items = items
	list.Rbrack = p.curToken.StartPosition
	return list
}

func (p *Parser) parseMap() ast.Expr {
	m := &ast.Map{Lbrace: p.curToken.StartPosition}
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		var key string
		switch p.curToken.Type {
		case token.IDENT, token.STRING, token.INT:
			key = p.curToken.Literal
		default:
			p.errorAt(p.curToken, "syntax error: invalid object key %s", describe(p.curToken))
			return nil
		}
		if !p.expectPeek("object literal", token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		m.Items = append(m.Items, ast.MapItem{Key: key, Value: value})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.RBRACE) {
			p.errorAt(p.peekToken, "syntax error: unexpected %s in object literal", describe(p.peekToken))
			return nil
		}
	}
	p.nextToken()
	m.Rbrace = p.curToken.StartPosition
	return m
}

// parseExprList parses comma separated expressions up to the end token,
// which becomes the current token. Trailing commas are allowed.
func (p *Parser) parseExprList(end token.Type) ([]ast.Expr, bool) {
	var list []ast.Expr
	for !p.peekTokenIs(end) {
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(end) {
			p.errorAt(p.peekToken, "syntax error: unexpected %s (expected %s)", describe(p.peekToken), end)
			return nil, false
		}
	}
	p.nextToken()
	return list, true
}
