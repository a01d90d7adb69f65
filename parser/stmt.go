// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/token"
)

// parseBlock parses `{ statement* }`.
func (p *Parser) parseBlock() (*ast.Block, *Error) {
	start, err := p.expect(token.LeftBrace)
	if err != nil {
		return nil, err
	}

	var stmts []ast.Stmt

	for !p.at(token.RightBrace) && !p.atEOF() {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)

		// Statement separators are optional; a semicolon is accepted
		// and skipped.
		p.match(token.Semicolon)
	}

	end, err := p.expect(token.RightBrace)
	if err != nil {
		return nil, err
	}

	return &ast.Block{Statements: stmts, Sp: token.Merge(start.Span, end.Span)}, nil
}

func (p *Parser) parseStatement() (ast.Stmt, *Error) {
	switch p.cur().Kind {
	case token.Let, token.Const:
		return p.parseLet()
	case token.Return:
		return p.parseReturn()
	case token.Break:
		return p.parseBreak()
	case token.Continue:
		return p.parseContinue()
	default:
		return p.parseExpressionOrAssignment()
	}
}

// parseLet parses `let [mut] name [: type | ?] = expr`, or the same
// with `const` in place of `let` (no mut allowed).
func (p *Parser) parseLet() (ast.Stmt, *Error) {
	isConst := p.at(token.Const)
	start := p.advance()

	mutable := false
	if !isConst && p.at(token.Mut) {
		p.advance()

		mutable = true
	}

	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}

	var declType ast.TypeExpr

	nullableTag := false

	switch {
	case p.match(token.Colon):
		declType, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	case p.match(token.Question):
		nullableTag = true
	}

	if _, err := p.expect(token.Equal); err != nil {
		return nil, err
	}

	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.Let{
		Name:        name.Text,
		Mutable:     mutable,
		IsConst:     isConst,
		Type:        declType,
		NullableTag: nullableTag,
		Init:        init,
		Sp:          token.Merge(start.Span, init.Span()),
	}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, *Error) {
	start := p.advance()

	if p.at(token.RightBrace) || p.atEOF() || p.at(token.Semicolon) ||
		p.at(token.Let) || p.at(token.Const) || p.at(token.Return) ||
		p.at(token.Break) || p.at(token.Continue) {
		return &ast.Return{Sp: start.Span}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.Return{Value: value, Sp: token.Merge(start.Span, value.Span())}, nil
}

// parseBreak parses `break [depth | label] [with expr]`. Depth is a
// positive integer literal counting loops outward from the innermost
// (1); a label addresses a specific enclosing loop by name.
func (p *Parser) parseBreak() (ast.Stmt, *Error) {
	start := p.advance()

	end := start.Span

	depth := 0

	label := ""

	switch {
	case p.at(token.Integer):
		t := p.advance()

		n, err := parseIntLiteral(t.Text)
		if err != nil || n < 1 {
			return nil, newError(t.Span, "break depth must be a positive integer, found %q", t.Text)
		}

		depth = int(n)
		end = t.Span
	case p.at(token.Identifier):
		t := p.advance()
		label = t.Text
		end = t.Span
	}

	var value ast.Expr

	if p.match(token.With) {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		value = v
		end = v.Span()
	}

	return &ast.Break{Label: label, Depth: depth, Value: value, Sp: token.Merge(start.Span, end)}, nil
}

func (p *Parser) parseContinue() (ast.Stmt, *Error) {
	start := p.advance()

	end := start.Span

	depth := 0

	label := ""

	switch {
	case p.at(token.Integer):
		t := p.advance()

		n, err := parseIntLiteral(t.Text)
		if err != nil || n < 1 {
			return nil, newError(t.Span, "continue depth must be a positive integer, found %q", t.Text)
		}

		depth = int(n)
		end = t.Span
	case p.at(token.Identifier):
		t := p.advance()
		label = t.Text
		end = t.Span
	}

	return &ast.Continue{Label: label, Depth: depth, Sp: token.Merge(start.Span, end)}, nil
}

// parseExpressionOrAssignment decides between `name = expr` and a bare
// expression statement with one token of lookahead, the same way the
// let/assign split works: only a plain identifier can be assigned to.
func (p *Parser) parseExpressionOrAssignment() (ast.Stmt, *Error) {
	if p.at(token.Identifier) && p.peekKind(1) == token.Equal {
		name := p.advance()
		p.advance() // =

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		return &ast.Assign{Name: name.Text, Value: value, Sp: token.Merge(name.Span, value.Span())}, nil
	}

	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.ExprStmt{X: x, Sp: x.Span()}, nil
}

func (p *Parser) peekKind(offset int) token.Kind {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return token.EOF
	}

	return p.toks[idx].Kind
}
