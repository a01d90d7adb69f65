// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package parser turns a Rive token stream into an ast.Program,
// recursive-descent with Pratt-style precedence climbing for
// expressions. There is no error recovery: the first syntax error
// aborts parsing, mirroring how the teacher's token.Lexer/PosError
// pair is used for a single fail-fast diagnostic rather than a list.
//
// Type declarations are resolved into the shared typesys.Registry as
// they are parsed (not deferred to a later pass) so that a
// constructor call `TypeName(...)` appearing anywhere in the program
// can be told apart from an ordinary function call while the rest of
// the program is still being parsed. To let struct and enum
// declarations refer to each other regardless of source order, type
// items are parsed in an initial pass before function and impl bodies
// are parsed in a second pass; see Parse.
package parser

import (
	"github.com/rive-lang/rivec/ast"
	"github.com/rive-lang/rivec/lexer"
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Parser holds a fully lexed token stream and the registry that type
// declarations populate as they are parsed.
type Parser struct {
	toks []token.Token
	pos  int
	reg  *typesys.Registry
}

// New creates a Parser over an already-lexed token stream.
func New(toks []token.Token, reg *typesys.Registry) *Parser {
	return &Parser{toks: toks, reg: reg}
}

// Parse lexes source and parses it into a Program, registering every
// struct/enum declaration into reg.
func Parse(source string, reg *typesys.Registry) (*ast.Program, *Error) {
	toks, lexErr := lexer.Tokenize(source)
	if lexErr != nil {
		return nil, &Error{lexErr.PosError}
	}

	return New(toks, reg).ParseProgram()
}

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func (p *Parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if t.Kind != token.EOF {
		p.pos++
	}

	return t
}

// match consumes and returns true if the current token is k.
func (p *Parser) match(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) expect(k token.Kind) (token.Token, *Error) {
	if !p.at(k) {
		return token.Token{}, newError(p.cur().Span, "expected %s, found %s", k, p.cur())
	}

	return p.advance(), nil
}

// ParseProgram parses the whole token stream into a Program. Pass one
// parses every `type` item (populating the registry); pass two parses
// every `fun`/`impl` item, re-using the positions recorded in pass one
// to skip back over already-parsed type declarations in source order.
func (p *Parser) ParseProgram() (*ast.Program, *Error) {
	type typeSpan struct {
		decl *ast.TypeDecl
		end  int
	}

	typeDecls := make(map[int]typeSpan)

	// Reserve every declared type name first, so struct/enum fields
	// can refer to types declared later in the file.
	for i := 0; i+2 < len(p.toks); i++ {
		if p.toks[i].Kind != token.Type || p.toks[i+1].Kind != token.Identifier {
			continue
		}

		name := p.toks[i+1].Text
		if _, exists := p.reg.GetByName(name); exists {
			continue
		}

		switch p.toks[i+2].Kind {
		case token.LeftBrace:
			p.reg.ReserveStruct(name, false)
		case token.Equal:
			p.reg.ReserveEnum(name)
		}
	}

	for !p.atEOF() {
		if p.at(token.Type) {
			start := p.pos

			td, err := p.parseTypeDecl()
			if err != nil {
				return nil, err
			}

			typeDecls[start] = typeSpan{decl: td, end: p.pos}

			continue
		}

		if err := p.skipItemBody(); err != nil {
			return nil, err
		}
	}

	p.pos = 0

	prog := &ast.Program{}

	for !p.atEOF() {
		switch {
		case p.at(token.Type):
			ts := typeDecls[p.pos]
			p.pos = ts.end
			prog.Items = append(prog.Items, ts.decl)

		case p.at(token.Fun):
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}

			prog.Items = append(prog.Items, fn)

		case p.at(token.Impl):
			ib, err := p.parseImplBlock()
			if err != nil {
				return nil, err
			}

			prog.Items = append(prog.Items, ib)

		default:
			return nil, newError(p.cur().Span, "expected a function, type, or impl declaration, found %s", p.cur())
		}
	}

	return prog, nil
}

// skipItemBody advances past one `fun`/`impl` item's braced body
// without building any AST, used while pass one is only interested in
// `type` items.
func (p *Parser) skipItemBody() *Error {
	for !p.atEOF() && !p.at(token.LeftBrace) {
		p.advance()
	}

	if p.atEOF() {
		return newError(p.cur().Span, "unexpected end of input while skipping a declaration")
	}

	return p.skipBalancedBraces()
}

func (p *Parser) skipBalancedBraces() *Error {
	depth := 0

	for !p.atEOF() {
		switch p.cur().Kind {
		case token.LeftBrace:
			depth++
		case token.RightBrace:
			depth--
			if depth == 0 {
				p.advance()
				return nil
			}
		}

		p.advance()
	}

	return newError(p.cur().Span, "unterminated block")
}

// parseTypeDecl parses `type Name { field: Type, ... }` (struct) or
// `type Name = Variant(Type, ...) | Variant | ...` (enum), registering
// the declared type (and its fields/variants) into the registry.
func (p *Parser) parseTypeDecl() (*ast.TypeDecl, *Error) {
	start, err := p.expect(token.Type)
	if err != nil {
		return nil, err
	}

	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}

	id, alreadyReserved := p.reg.GetByName(name.Text)

	if p.at(token.LeftBrace) {
		if !alreadyReserved {
			id = p.reg.ReserveStruct(name.Text, false)
		}

		p.advance()

		var fields []ast.FieldDecl

		var regFields []typesys.StructField

		for !p.at(token.RightBrace) {
			fname, err := p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}

			ftype, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}

			fields = append(fields, ast.FieldDecl{Name: fname.Text, Type: ftype, Sp: fname.Span})

			fid, rerr := typesys.ResolveTypeExpr(p.reg, ftype)
			if rerr != nil {
				return nil, newError(ftype.Span(), "%s", rerr)
			}

			regFields = append(regFields, typesys.StructField{Name: fname.Text, Type: fid})

			if !p.match(token.Comma) {
				break
			}
		}

		end, err := p.expect(token.RightBrace)
		if err != nil {
			return nil, err
		}

		p.reg.DefineStructFields(id, regFields)

		return &ast.TypeDecl{Name: name.Text, Fields: fields, Sp: token.Merge(start.Span, end.Span)}, nil
	}

	if _, err := p.expect(token.Equal); err != nil {
		return nil, err
	}

	if !alreadyReserved {
		id = p.reg.ReserveEnum(name.Text)
	}

	var variants []ast.VariantDecl

	var regVariants []typesys.EnumVariant

	last := name.Span

	for {
		vname, err := p.expect(token.Identifier)
		if err != nil {
			return nil, err
		}

		var vfields []ast.TypeExpr

		var regFieldIDs []typesys.ID

		last = vname.Span

		if p.at(token.LeftParen) {
			p.advance()

			for !p.at(token.RightParen) {
				ft, err := p.parseTypeExpr()
				if err != nil {
					return nil, err
				}

				vfields = append(vfields, ft)

				fid, rerr := typesys.ResolveTypeExpr(p.reg, ft)
				if rerr != nil {
					return nil, newError(ft.Span(), "%s", rerr)
				}

				regFieldIDs = append(regFieldIDs, fid)

				if !p.match(token.Comma) {
					break
				}
			}

			rp, err := p.expect(token.RightParen)
			if err != nil {
				return nil, err
			}

			last = rp.Span
		}

		variants = append(variants, ast.VariantDecl{Name: vname.Text, Fields: vfields, Sp: vname.Span})
		regVariants = append(regVariants, typesys.EnumVariant{Name: vname.Text, Fields: regFieldIDs})

		if !p.match(token.Pipe) {
			break
		}
	}

	p.reg.DefineEnumVariants(id, regVariants)

	return &ast.TypeDecl{Name: name.Text, IsEnum: true, Variants: variants, Sp: token.Merge(start.Span, last)}, nil
}

// parseImplBlock parses `impl TypeName { fun ... ... }`.
func (p *Parser) parseImplBlock() (*ast.ImplBlock, *Error) {
	start, err := p.expect(token.Impl)
	if err != nil {
		return nil, err
	}

	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LeftBrace); err != nil {
		return nil, err
	}

	var methods []*ast.Function

	for !p.at(token.RightBrace) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}

		methods = append(methods, fn)
	}

	end, err := p.expect(token.RightBrace)
	if err != nil {
		return nil, err
	}

	return &ast.ImplBlock{TypeName: name.Text, Methods: methods, Sp: token.Merge(start.Span, end.Span)}, nil
}

// parseFunction parses `fun name(params) [-> ret] { body }`.
func (p *Parser) parseFunction() (*ast.Function, *Error) {
	start, err := p.expect(token.Fun)
	if err != nil {
		return nil, err
	}

	name, err := p.expect(token.Identifier)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LeftParen); err != nil {
		return nil, err
	}

	var params []ast.Param

	for !p.at(token.RightParen) {
		var pname token.Token

		if p.at(token.Self) {
			pname = p.advance()
		} else {
			pname, err = p.expect(token.Identifier)
			if err != nil {
				return nil, err
			}
		}

		var ptype ast.TypeExpr

		if pname.Kind != token.Self {
			if _, err := p.expect(token.Colon); err != nil {
				return nil, err
			}

			ptype, err = p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
		}

		params = append(params, ast.Param{Name: pname.Text, Type: ptype, Sp: pname.Span})

		if !p.match(token.Comma) {
			break
		}
	}

	if _, err := p.expect(token.RightParen); err != nil {
		return nil, err
	}

	var ret ast.TypeExpr

	// Both `fun f() -> T` and the shorthand `fun f(): T` declare a
	// return type.
	if p.match(token.Arrow) || p.match(token.Colon) {
		ret, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.Function{Name: name.Text, Params: params, ReturnType: ret, Body: body, Sp: token.Merge(start.Span, body.Sp)}, nil
}

// parseTypeExpr parses a syntactic type annotation: a named type, an
// optional suffix `?` (possibly repeated), `[T; N]`, `List<T>`,
// `Map<K, V>`, a parenthesized tuple, or `fun(T, ...) -> R`.
func (p *Parser) parseTypeExpr() (ast.TypeExpr, *Error) {
	base, err := p.parseTypeExprAtom()
	if err != nil {
		return nil, err
	}

	for p.at(token.Question) {
		q := p.advance()
		base = &ast.OptionalType{Inner: base, Sp: token.Merge(base.Span(), q.Span)}
	}

	return base, nil
}

func (p *Parser) parseTypeExprAtom() (ast.TypeExpr, *Error) {
	switch {
	case p.at(token.LeftBracket):
		start := p.advance()

		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}

		sizeTok, err := p.expect(token.Integer)
		if err != nil {
			return nil, err
		}

		end, err := p.expect(token.RightBracket)
		if err != nil {
			return nil, err
		}

		size, perr := parseIntLiteral(sizeTok.Text)
		if perr != nil {
			return nil, newError(sizeTok.Span, "invalid array size %q", sizeTok.Text)
		}

		return &ast.ArrayType{Elem: elem, Size: int(size), Sp: token.Merge(start.Span, end.Span)}, nil

	case p.at(token.LeftParen):
		start := p.advance()

		var elems []ast.TypeExpr

		for !p.at(token.RightParen) {
			te, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}

			elems = append(elems, te)

			if !p.match(token.Comma) {
				break
			}
		}

		end, err := p.expect(token.RightParen)
		if err != nil {
			return nil, err
		}

		if len(elems) == 1 {
			return elems[0], nil
		}

		return &ast.TupleType{Elems: elems, Sp: token.Merge(start.Span, end.Span)}, nil

	case p.at(token.Fun):
		start := p.advance()

		if _, err := p.expect(token.LeftParen); err != nil {
			return nil, err
		}

		var params []ast.TypeExpr

		for !p.at(token.RightParen) {
			pt, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}

			params = append(params, pt)

			if !p.match(token.Comma) {
				break
			}
		}

		end, err := p.expect(token.RightParen)
		if err != nil {
			return nil, err
		}

		var ret ast.TypeExpr

		if p.match(token.Arrow) {
			ret, err = p.parseTypeExpr()
			if err != nil {
				return nil, err
			}

			end = token.Token{Span: ret.Span()}
		}

		return &ast.FunctionType{Params: params, Ret: ret, Sp: token.Merge(start.Span, end.Span)}, nil

	case p.at(token.Identifier):
		name := p.advance()

		if (name.Text == "List" || name.Text == "Map") && p.at(token.Less) {
			p.advance()

			if name.Text == "List" {
				elem, err := p.parseTypeExpr()
				if err != nil {
					return nil, err
				}

				end, err := p.expect(token.Greater)
				if err != nil {
					return nil, err
				}

				return &ast.ListType{Elem: elem, Sp: token.Merge(name.Span, end.Span)}, nil
			}

			key, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}

			val, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}

			end, err := p.expect(token.Greater)
			if err != nil {
				return nil, err
			}

			return &ast.MapType{Key: key, Val: val, Sp: token.Merge(name.Span, end.Span)}, nil
		}

		return &ast.NamedType{Name: name.Text, Sp: name.Span}, nil

	default:
		return nil, newError(p.cur().Span, "expected a type, found %s", p.cur())
	}
}
