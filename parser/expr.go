// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"strings"
	"unicode"

	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/lexer"
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// parseExpression parses a full expression. Precedence from lowest to
// highest: Elvis, ||, &&, equality, relational, additive, range,
// multiplicative, unary, call/safe-call/index/field, primary.
func (p *Parser) parseExpression() (ast.Expr, *Error) {
	return p.parseElvis()
}

func (p *Parser) parseElvis() (ast.Expr, *Error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	for p.at(token.Elvis) {
		p.advance()

		fallback, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		expr = &ast.Elvis{Left: expr, Right: fallback, Sp: token.Merge(expr.Span(), fallback.Span())}
	}

	return expr, nil
}

func (p *Parser) parseOr() (ast.Expr, *Error) {
	return p.parseBinaryLevel(p.parseAnd, map[token.Kind]ast.BinaryOp{
		token.PipePipe: ast.Or,
	})
}

func (p *Parser) parseAnd() (ast.Expr, *Error) {
	return p.parseBinaryLevel(p.parseEquality, map[token.Kind]ast.BinaryOp{
		token.AmpAmp: ast.And,
	})
}

func (p *Parser) parseEquality() (ast.Expr, *Error) {
	return p.parseBinaryLevel(p.parseComparison, map[token.Kind]ast.BinaryOp{
		token.EqualEqual: ast.Eq,
		token.BangEqual:  ast.NotEq,
	})
}

func (p *Parser) parseComparison() (ast.Expr, *Error) {
	return p.parseBinaryLevel(p.parseAdditive, map[token.Kind]ast.BinaryOp{
		token.Less:         ast.Lt,
		token.LessEqual:    ast.LtEq,
		token.Greater:      ast.Gt,
		token.GreaterEqual: ast.GtEq,
	})
}

func (p *Parser) parseAdditive() (ast.Expr, *Error) {
	return p.parseBinaryLevel(p.parseRange, map[token.Kind]ast.BinaryOp{
		token.Plus:  ast.Add,
		token.Minus: ast.Sub,
	})
}

// parseRange parses `a..b` / `a..=b`. Ranges do not chain: `a..b..c`
// is a syntax error at the second `..`.
func (p *Parser) parseRange() (ast.Expr, *Error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	if p.at(token.DotDot) || p.at(token.DotDotEq) {
		op := ast.RangeExcl
		if p.advance().Kind == token.DotDotEq {
			op = ast.RangeIncl
		}

		hi, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		return &ast.Binary{Op: op, Left: expr, Right: hi, Sp: token.Merge(expr.Span(), hi.Span())}, nil
	}

	return expr, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, *Error) {
	return p.parseBinaryLevel(p.parseUnary, map[token.Kind]ast.BinaryOp{
		token.Star:    ast.Mul,
		token.Slash:   ast.Div,
		token.Percent: ast.Mod,
	})
}

func (p *Parser) parseBinaryLevel(next func() (ast.Expr, *Error), ops map[token.Kind]ast.BinaryOp) (ast.Expr, *Error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := ops[p.cur().Kind]
		if !ok {
			return expr, nil
		}

		p.advance()

		right, err := next()
		if err != nil {
			return nil, err
		}

		expr = &ast.Binary{Op: op, Left: expr, Right: right, Sp: token.Merge(expr.Span(), right.Span())}
	}
}

func (p *Parser) parseUnary() (ast.Expr, *Error) {
	switch p.cur().Kind {
	case token.Minus:
		start := p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.Unary{Op: ast.Neg, Operand: operand, Sp: token.Merge(start.Span, operand.Span())}, nil
	case token.Bang:
		start := p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.Unary{Op: ast.Not, Operand: operand, Sp: token.Merge(start.Span, operand.Span())}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary followed by any chain of calls, safe
// calls, field accesses, method calls, and index operations.
func (p *Parser) parsePostfix() (ast.Expr, *Error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.at(token.LeftParen):
			e, err := p.parseCallOn(expr)
			if err != nil {
				return nil, err
			}

			expr = e

		case p.at(token.Dot):
			p.advance()

			e, err := p.parseMemberOn(expr, false)
			if err != nil {
				return nil, err
			}

			expr = e

		case p.at(token.QuestionDot):
			p.advance()

			e, err := p.parseMemberOn(expr, true)
			if err != nil {
				return nil, err
			}

			expr = e

		case p.at(token.LeftBracket):
			p.advance()

			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			end, eerr := p.expect(token.RightBracket)
			if eerr != nil {
				return nil, eerr
			}

			expr = &ast.Index{Receiver: expr, Index: idx, Sp: token.Merge(expr.Span(), end.Span)}

		default:
			return expr, nil
		}
	}
}

// parseCallOn consumes `(args...)` after expr. Only a bare identifier
// can be called; a call on a registered struct name becomes a struct
// construction.
func (p *Parser) parseCallOn(expr ast.Expr) (ast.Expr, *Error) {
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return nil, newError(expr.Span(), "only identifiers can be called")
	}

	p.advance() // (

	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}

	end, eerr := p.expect(token.RightParen)
	if eerr != nil {
		return nil, eerr
	}

	sp := token.Merge(expr.Span(), end.Span)

	if p.isRegisteredKind(ident.Name, typesys.KStruct) {
		return &ast.StructConstruct{TypeName: ident.Name, Fields: args, Sp: sp}, nil
	}

	return &ast.Call{Callee: ident.Name, Args: args, Sp: sp}, nil
}

// parseMemberOn consumes `name` or `name(args...)` after `.` or `?.`.
// `EnumName.Variant(...)` becomes an enum-variant construction when
// the receiver is a bare identifier naming a registered enum.
func (p *Parser) parseMemberOn(expr ast.Expr, safe bool) (ast.Expr, *Error) {
	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}

	if ident, ok := expr.(*ast.Ident); ok && !safe && p.isRegisteredKind(ident.Name, typesys.KEnum) {
		var args []ast.Expr

		end := name.Span

		if p.match(token.LeftParen) {
			for !p.at(token.RightParen) {
				a, err := p.parseExpression()
				if err != nil {
					return nil, err
				}

				args = append(args, a)

				if !p.match(token.Comma) {
					break
				}
			}

			rp, err := p.expect(token.RightParen)
			if err != nil {
				return nil, err
			}

			end = rp.Span
		}

		return &ast.EnumConstruct{EnumName: ident.Name, Variant: name.Text, Args: args, Sp: token.Merge(expr.Span(), end)}, nil
	}

	if !p.at(token.LeftParen) {
		return &ast.FieldAccess{Receiver: expr, Field: name.Text, Safe: safe, Sp: token.Merge(expr.Span(), name.Span)}, nil
	}

	p.advance() // (

	args, aerr := p.parseArgumentList()
	if aerr != nil {
		return nil, aerr
	}

	end, eerr := p.expect(token.RightParen)
	if eerr != nil {
		return nil, eerr
	}

	return &ast.MethodCall{Receiver: expr, Method: name.Text, Args: args, Safe: safe, Sp: token.Merge(expr.Span(), end.Span)}, nil
}

// parseArgumentList parses a possibly empty, comma-separated list of
// `[name:] expr` arguments, stopping before the closing paren.
func (p *Parser) parseArgumentList() ([]ast.Arg, *Error) {
	var args []ast.Arg

	for !p.at(token.RightParen) {
		var name string

		if p.at(token.Identifier) && p.peekKind(1) == token.Colon && !p.labelFollows(2) {
			name = p.advance().Text
			p.advance() // :
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		args = append(args, ast.Arg{Name: name, Value: value})

		if !p.match(token.Comma) {
			break
		}
	}

	return args, nil
}

// labelFollows reports whether the token at offset begins a loop, so
// that `ident:` can be told apart from a named argument.
func (p *Parser) labelFollows(offset int) bool {
	switch p.peekKind(offset) {
	case token.For, token.While, token.Loop:
		return true
	default:
		return false
	}
}

func (p *Parser) isRegisteredKind(name string, tag typesys.KindTag) bool {
	id, ok := p.reg.GetByName(name)
	if !ok {
		return false
	}

	m, ok := p.reg.Get(id)

	return ok && m.Kind.Tag == tag
}

func (p *Parser) parsePrimary() (ast.Expr, *Error) {
	tok := p.cur()

	switch tok.Kind {
	case token.Integer:
		p.advance()

		v, err := parseIntLiteral(tok.Text)
		if err != nil {
			return nil, newError(tok.Span, "invalid integer literal %q", tok.Text)
		}

		return &ast.IntLit{Value: v, Sp: tok.Span}, nil

	case token.Float:
		p.advance()

		v, err := parseFloatLiteral(tok.Text)
		if err != nil {
			return nil, newError(tok.Span, "invalid float literal %q", tok.Text)
		}

		return &ast.FloatLit{Value: v, Sp: tok.Span}, nil

	case token.True, token.False:
		p.advance()
		return &ast.BoolLit{Value: tok.Kind == token.True, Sp: tok.Span}, nil

	case token.Null:
		p.advance()
		return &ast.NullLit{Sp: tok.Span}, nil

	case token.String:
		p.advance()
		return p.parseStringLiteral(tok)

	case token.Self:
		p.advance()
		return &ast.Ident{Name: "self", Sp: tok.Span}, nil

	case token.Identifier:
		if p.peekKind(1) == token.Colon && p.labelFollows(2) {
			label := p.advance().Text
			p.advance() // :

			return p.parseLoop(label, tok.Span)
		}

		p.advance()

		return &ast.Ident{Name: tok.Text, Sp: tok.Span}, nil

	case token.Print:
		p.advance()

		if _, err := p.expect(token.LeftParen); err != nil {
			return nil, err
		}

		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		end, eerr := p.expect(token.RightParen)
		if eerr != nil {
			return nil, eerr
		}

		return &ast.Print{Arg: arg, Sp: token.Merge(tok.Span, end.Span)}, nil

	case token.If:
		return p.parseIf()

	case token.When:
		return p.parseWhen()

	case token.While, token.For, token.Loop:
		return p.parseLoop("", tok.Span)

	case token.LeftParen:
		return p.parseParenOrTuple()

	case token.LeftBracket:
		return p.parseArrayLit()

	case token.LeftBrace:
		return p.parseBraceExpression()

	default:
		return nil, newError(tok.Span, "unexpected token %s", tok)
	}
}

func (p *Parser) parseParenOrTuple() (ast.Expr, *Error) {
	start := p.advance()

	var elems []ast.Expr

	sawComma := false

	for !p.at(token.RightParen) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		elems = append(elems, e)

		if !p.match(token.Comma) {
			break
		}

		sawComma = true
	}

	end, err := p.expect(token.RightParen)
	if err != nil {
		return nil, err
	}

	if len(elems) == 1 && !sawComma {
		return elems[0], nil
	}

	return &ast.TupleLit{Elements: elems, Sp: token.Merge(start.Span, end.Span)}, nil
}

func (p *Parser) parseArrayLit() (ast.Expr, *Error) {
	start := p.advance()

	var elems []ast.Expr

	for !p.at(token.RightBracket) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		elems = append(elems, e)

		if !p.match(token.Comma) {
			break
		}
	}

	end, err := p.expect(token.RightBracket)
	if err != nil {
		return nil, err
	}

	return &ast.ArrayLit{Elements: elems, Sp: token.Merge(start.Span, end.Span)}, nil
}

// parseBraceExpression disambiguates a dict literal from a block
// expression by lookahead: `{` STRING `:` begins a dict, and so does
// the empty dict `{}` ... which is ambiguous with the empty block; the
// dict reading wins, matching the original language.
func (p *Parser) parseBraceExpression() (ast.Expr, *Error) {
	if p.peekKind(1) == token.String && p.peekKind(2) == token.Colon {
		return p.parseDictLit()
	}

	if p.peekKind(1) == token.RightBrace {
		return p.parseDictLit()
	}

	return p.parseBlock()
}

func (p *Parser) parseDictLit() (ast.Expr, *Error) {
	start := p.advance() // {

	var entries []ast.DictEntry

	for !p.at(token.RightBrace) {
		keyTok, err := p.expect(token.String)
		if err != nil {
			return nil, err
		}

		key, kerr := p.parseStringLiteral(keyTok)
		if kerr != nil {
			return nil, kerr
		}

		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}

		value, verr := p.parseExpression()
		if verr != nil {
			return nil, verr
		}

		entries = append(entries, ast.DictEntry{Key: key, Value: value})

		if !p.match(token.Comma) {
			break
		}
	}

	end, err := p.expect(token.RightBrace)
	if err != nil {
		return nil, err
	}

	return &ast.DictLit{Entries: entries, Sp: token.Merge(start.Span, end.Span)}, nil
}

func (p *Parser) parseIf() (ast.Expr, *Error) {
	start := p.advance()

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	then, berr := p.parseBlock()
	if berr != nil {
		return nil, berr
	}

	node := &ast.If{Cond: cond, Then: then, Sp: token.Merge(start.Span, then.Sp)}

	if !p.at(token.Else) {
		return node, nil
	}

	p.advance()

	if p.at(token.If) {
		// else-if chain: wrap the nested if in a one-statement block.
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}

		node.Else = &ast.Block{
			Statements: []ast.Stmt{&ast.ExprStmt{X: nested, Sp: nested.Span()}},
			Sp:         nested.Span(),
		}
		node.Sp = token.Merge(node.Sp, nested.Span())

		return node, nil
	}

	els, err2 := p.parseBlock()
	if err2 != nil {
		return nil, err2
	}

	node.Else = els
	node.Sp = token.Merge(node.Sp, els.Sp)

	return node, nil
}

// parseLoop parses `loop { }`, `while cond { }`, or
// `for name in lo..hi { }`, with label already consumed by the caller
// (empty if none).
func (p *Parser) parseLoop(label string, startSpan token.Span) (ast.Expr, *Error) {
	switch p.cur().Kind {
	case token.Loop:
		p.advance()

		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		return &ast.Loop{Kind: ast.LoopBare, Label: label, Body: body, Sp: token.Merge(startSpan, body.Sp)}, nil

	case token.While:
		p.advance()

		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		body, berr := p.parseBlock()
		if berr != nil {
			return nil, berr
		}

		return &ast.Loop{Kind: ast.LoopWhile, Label: label, Cond: cond, Body: body, Sp: token.Merge(startSpan, body.Sp)}, nil

	case token.For:
		p.advance()

		name, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.In); err != nil {
			return nil, err
		}

		iter, ierr := p.parseExpression()
		if ierr != nil {
			return nil, ierr
		}

		rng, ok := iter.(*ast.Binary)
		if !ok || (rng.Op != ast.RangeExcl && rng.Op != ast.RangeIncl) {
			return nil, newError(iter.Span(), "for loops iterate a range, e.g. 0..10")
		}

		body, berr := p.parseBlock()
		if berr != nil {
			return nil, berr
		}

		return &ast.Loop{
			Kind:      ast.LoopFor,
			Label:     label,
			VarName:   name.Text,
			RangeLo:   rng.Left,
			RangeHi:   rng.Right,
			Inclusive: rng.Op == ast.RangeIncl,
			Body:      body,
			Sp:        token.Merge(startSpan, body.Sp),
		}, nil

	default:
		return nil, newError(p.cur().Span, "expected 'for', 'while', or 'loop' after label")
	}
}

// parseWhen parses `when scrutinee { pattern[, pattern] [if guard] ->
// body ... }` with an optional comma after each arm body.
func (p *Parser) parseWhen() (ast.Expr, *Error) {
	start := p.advance()

	scrutinee, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LeftBrace); err != nil {
		return nil, err
	}

	var arms []ast.WhenArm

	for !p.at(token.RightBrace) && !p.atEOF() {
		arm, aerr := p.parseWhenArm()
		if aerr != nil {
			return nil, aerr
		}

		arms = append(arms, arm)

		p.match(token.Comma)
	}

	end, eerr := p.expect(token.RightBrace)
	if eerr != nil {
		return nil, eerr
	}

	if len(arms) == 0 {
		return nil, newError(token.Merge(start.Span, end.Span), "when expression must have at least one arm")
	}

	return &ast.When{Scrutinee: scrutinee, Arms: arms, Sp: token.Merge(start.Span, end.Span)}, nil
}

func (p *Parser) parseWhenArm() (ast.WhenArm, *Error) {
	startSpan := p.cur().Span

	var patterns []ast.Pattern

	for {
		pat, err := p.parsePattern()
		if err != nil {
			return ast.WhenArm{}, err
		}

		patterns = append(patterns, pat)

		if p.at(token.Comma) && !p.armEndsAfterComma() {
			p.advance()
			continue
		}

		break
	}

	var guard ast.Expr

	if p.match(token.If) {
		g, err := p.parseExpression()
		if err != nil {
			return ast.WhenArm{}, err
		}

		guard = g
	}

	if _, err := p.expect(token.Arrow); err != nil {
		return ast.WhenArm{}, err
	}

	var body ast.Expr

	if p.at(token.LeftBrace) {
		b, err := p.parseBlock()
		if err != nil {
			return ast.WhenArm{}, err
		}

		body = b
	} else {
		b, err := p.parseExpression()
		if err != nil {
			return ast.WhenArm{}, err
		}

		body = b
	}

	return ast.WhenArm{Patterns: patterns, Guard: guard, Body: body, Sp: token.Merge(startSpan, body.Span())}, nil
}

// armEndsAfterComma reports whether the comma under the cursor is a
// trailing arm separator rather than a multi-pattern separator: true
// when the next token is the closing brace or end of input.
func (p *Parser) armEndsAfterComma() bool {
	switch p.peekKind(1) {
	case token.RightBrace, token.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parsePattern() (ast.Pattern, *Error) {
	tok := p.cur()

	switch tok.Kind {
	case token.Underscore:
		p.advance()
		return &ast.WildcardPattern{Sp: tok.Span}, nil

	case token.Integer, token.Float, token.String, token.True, token.False, token.Null:
		lit, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		return &ast.LiteralPattern{Value: lit, Sp: lit.Span()}, nil

	case token.Minus:
		lit, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.LiteralPattern{Value: lit, Sp: lit.Span()}, nil

	case token.In:
		p.advance()

		lo, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		inclusive := false

		switch {
		case p.match(token.DotDotEq):
			inclusive = true
		case p.match(token.DotDot):
		default:
			return nil, newError(p.cur().Span, "expected '..' or '..=' in range pattern")
		}

		hi, herr := p.parseMultiplicative()
		if herr != nil {
			return nil, herr
		}

		return &ast.RangePattern{Lo: lo, Hi: hi, Inclusive: inclusive, Sp: token.Merge(tok.Span, hi.Span())}, nil

	case token.Identifier:
		return p.parseIdentPattern()

	default:
		return nil, newError(tok.Span, "expected a pattern, found %s", tok)
	}
}

// parseIdentPattern decides between an enum-variant pattern and a
// plain binding. `Enum.Variant`, `Variant(...)`, and a bare
// capitalized identifier read as variants; a lowercase identifier
// binds the scrutinee.
func (p *Parser) parseIdentPattern() (ast.Pattern, *Error) {
	name := p.advance()

	enumName := ""
	variant := name.Text
	end := name.Span

	if p.isRegisteredKind(name.Text, typesys.KEnum) && p.at(token.Dot) {
		p.advance()

		v, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}

		enumName = name.Text
		variant = v.Text
		end = v.Span
	}

	var bindings []string

	if p.at(token.LeftParen) {
		p.advance()

		for !p.at(token.RightParen) {
			b, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}

			bindings = append(bindings, b.Text)

			if !p.match(token.Comma) {
				break
			}
		}

		rp, err := p.expect(token.RightParen)
		if err != nil {
			return nil, err
		}

		end = rp.Span
	} else if enumName == "" && !startsUpper(variant) {
		return &ast.BindingPattern{Name: variant, Sp: name.Span}, nil
	}

	return &ast.EnumVariantPattern{EnumName: enumName, Variant: variant, Bindings: bindings, Sp: token.Merge(name.Span, end)}, nil
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}

	return false
}

// parseStringLiteral resolves escapes in the raw lexed text and splits
// interpolation segments, re-parsing each `${...}` through a nested
// parser instance over the same registry. `$ident` is shorthand for
// `${ident}`.
func (p *Parser) parseStringLiteral(tok token.Token) (ast.Expr, *Error) {
	raw := tok.Text

	var parts []string

	var exprs []ast.Expr

	var current strings.Builder

	runes := []rune(raw)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == '\\' && i+1 < len(runes):
			i++

			switch runes[i] {
			case 'n':
				current.WriteRune('\n')
			case 't':
				current.WriteRune('\t')
			case 'r':
				current.WriteRune('\r')
			case '\\':
				current.WriteRune('\\')
			case '"':
				current.WriteRune('"')
			case '$':
				current.WriteRune('$')
			default:
				current.WriteRune('\\')
				current.WriteRune(runes[i])
			}

		case r == '$' && i+1 < len(runes) && runes[i+1] == '{':
			depth := 1
			j := i + 2

			var inner strings.Builder

			for ; j < len(runes); j++ {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}

				inner.WriteRune(runes[j])
			}

			if depth != 0 {
				return nil, newError(tok.Span, "unterminated '${' in string interpolation")
			}

			expr, err := p.parseInterpolated(inner.String(), tok.Span)
			if err != nil {
				return nil, err
			}

			parts = append(parts, current.String())
			current.Reset()

			exprs = append(exprs, expr)

			i = j

		case r == '$':
			var ident strings.Builder

			j := i + 1
			for ; j < len(runes); j++ {
				if runes[j] == '_' || unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) {
					ident.WriteRune(runes[j])
				} else {
					break
				}
			}

			if ident.Len() == 0 {
				return nil, newError(tok.Span, "expected identifier or '{' after '$'")
			}

			parts = append(parts, current.String())
			current.Reset()

			exprs = append(exprs, &ast.Ident{Name: ident.String(), Sp: tok.Span})

			i = j - 1

		default:
			current.WriteRune(r)
		}
	}

	parts = append(parts, current.String())

	return &ast.StringLit{Parts: parts, Exprs: exprs, Sp: tok.Span}, nil
}

func (p *Parser) parseInterpolated(src string, sp token.Span) (ast.Expr, *Error) {
	toks, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		return nil, newError(sp, "invalid interpolated expression %q", src)
	}

	nested := New(toks, p.reg)

	expr, err := nested.parseExpression()
	if err != nil {
		return nil, newError(sp, "invalid interpolated expression %q: %s", src, err.Message)
	}

	if !nested.atEOF() {
		return nil, newError(sp, "unexpected trailing tokens in interpolated expression %q", src)
	}

	return expr, nil
}
