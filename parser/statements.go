package parser

import (
	"github.com/deepnoodle-ai/qmlc/ast"
	"github.com/deepnoodle-ai/qmlc/internal/token"
)

func (p *Parser) parseStatement() ast.Node {
	if !p.enter() {
		return nil
	}
	defer p.leave()
	switch p.curToken.Type {
	case token.SEMICOLON:
		return nil
	case token.VAR, token.LET, token.CONST:
		return p.parseVar()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.LBRACE:
		return p.parseBlock()
	case token.FUNCTION:
		if p.peekTokenIs(token.IDENT) {
			fn := p.parseFunc()
			if fn == nil {
				return nil
			}
			return fn
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() ast.Node {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	p.finishStatement()
	return expr
}

func (p *Parser) parseVar() ast.Node {
	stmt := &ast.Var{Keyword: p.curToken.Literal, VarPos: p.curToken.StartPosition}
	if !p.expectPeek("declaration", token.IDENT) {
		return nil
	}
	stmt.Name = p.newIdent(p.curToken)
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	} else if stmt.Keyword == "const" {
		p.errorAt(p.peekToken, "syntax error: missing initializer in const declaration")
		return nil
	}
	p.finishStatement()
	return stmt
}

func (p *Parser) parseReturn() ast.Node {
	stmt := &ast.Return{Return: p.curToken.StartPosition}
	if p.atStatementEnd() {
		p.finishStatement()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.finishStatement()
	return stmt
}

func (p *Parser) parseIf() ast.Node {
	stmt := &ast.If{If: p.curToken.StartPosition}
	if !p.expectPeek("if statement", token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil || !p.expectPeek("if statement", token.RPAREN) {
		return nil
	}
	stmt.Consequence = p.parseBranch()
	if stmt.Consequence == nil {
		return nil
	}
	if !p.peekTokenIs(token.ELSE) {
		return stmt
	}
	p.nextToken()
	if p.peekTokenIs(token.IF) {
		p.nextToken()
		alt, ok := p.parseIf().(*ast.If)
		if !ok {
			return nil
		}
		stmt.Alternative = alt
		return stmt
	}
	alt := p.parseBranch()
	if alt == nil {
		return nil
	}
	stmt.Alternative = alt
	return stmt
}

// parseBranch parses the body of an if or else. A single statement body is
// wrapped in a block.
func (p *Parser) parseBranch() *ast.Block {
	p.nextToken()
	if p.curTokenIs(token.LBRACE) {
		return p.parseBlock()
	}
	start := p.curToken.StartPosition
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	return &ast.Block{Lbrace: start, Stmts: []ast.Node{stmt}, Rbrace: p.curToken.StartPosition}
}

// parseBlock parses statements up to the closing brace. The current token
// is the opening brace on entry and the closing brace on return.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Lbrace: p.curToken.StartPosition}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorAt(p.curToken, "syntax error: unterminated block statement")
			return nil
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return nil
		}
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.nextToken()
	}
	block.Rbrace = p.curToken.StartPosition
	return block
}

// parseFunc parses "function name(params) { body }". The name is optional.
func (p *Parser) parseFunc() *ast.Func {
	fn := &ast.Func{Func: p.curToken.StartPosition}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		fn.Name = p.newIdent(p.curToken)
	}
	if !p.expectPeek("function", token.LPAREN) {
		return nil
	}
	fn.Lparen = p.curToken.StartPosition
	for !p.peekTokenIs(token.RPAREN) {
		if !p.expectPeek("function parameters", token.IDENT) {
			return nil
		}
		fn.Params = append(fn.Params, p.newIdent(p.curToken))
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(token.RPAREN) {
			p.errorAt(p.peekToken, "syntax error: unexpected %s in parameter list", describe(p.peekToken))
			return nil
		}
	}
	p.nextToken()
	fn.Rparen = p.curToken.StartPosition
	if !p.expectPeek("function", token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlock()
	if fn.Body == nil {
		return nil
	}
	return fn
}
