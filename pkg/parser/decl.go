package parser

import (
	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

// fieldState is the four-state tracker from spec.md §4.2 that detects a
// declaration sandwiched between container fields.
type fieldState int

const (
	fieldNone fieldState = iota
	fieldSeen
	fieldEnd
	fieldErr
)

// parseContainerMembers accumulates members onto the scratch stack until
// `}` or EOF (spec.md §4.2), returning the parsed member indices.
// isRoot suppresses the `}` terminator since the root has none.
func (p *Parser) parseContainerMembers(isRoot bool) []ast.Index {
	mark := p.tree.ScratchTop()
	state := fieldNone
	var lastFieldTok int

	for {
		for p.cur() == token.DocComment {
			p.advance()
		}
		switch p.cur() {
		case token.EOF:
			return p.commitScratchSlice(mark)
		case token.RBrace:
			if !isRoot {
				return p.commitScratchSlice(mark)
			}
		}

		startTok := p.tok
		var member ast.Index
		var isField bool
		ok := p.recoverMember(func() {
			member, isField = p.parseContainerMember()
		})
		if !ok {
			continue
		}
		if member == ast.NoneNode {
			continue
		}
		p.tree.ScratchPush(member)

		if isField {
			switch state {
			case fieldNone:
				state = fieldSeen
			case fieldEnd:
				p.errAt(ast.DeclBetweenFields, startTok, false)
				p.errAt(ast.PreviousField, lastFieldTok, true)
				p.errAt(ast.NextField, startTok, true)
				state = fieldErr
			}
			lastFieldTok = startTok
		} else {
			if state == fieldSeen {
				state = fieldEnd
			}
		}
	}
}

// commitScratchSlice commits the scratch items pushed since mark into
// the extra arena and returns them as a plain slice, for callers that
// need the member list itself rather than just its SubRange.
func (p *Parser) commitScratchSlice(mark int) []ast.Index {
	r := p.tree.CommitScratch(mark)
	return p.tree.ExtraRangeNodes(r)
}

// parseContainerMember parses one member and reports whether it is a
// container field (for the four-state tracker) as opposed to a
// declaration.
func (p *Parser) parseContainerMember() (ast.Index, bool) {
	switch p.cur() {
	case token.KeywordTest:
		return p.parseTestDecl(), false
	case token.KeywordComptime:
		if p.at(1) == token.LBrace {
			tok := p.advance()
			block := p.parseBlock(ast.NoneNode)
			return p.tree.AddNode(ast.Node{Tag: ast.ComptimeTag, MainToken: tok, Data: ast.Data{LHS: uint32(block)}}), false
		}
		return p.parseContainerField(), true
	case token.KeywordPub:
		p.advance()
		return p.expectTopLevelDecl(), false
	case token.KeywordExport, token.KeywordExtern, token.KeywordInline,
		token.KeywordNoinline, token.KeywordThreadlocal, token.KeywordConst,
		token.KeywordVar, token.KeywordFn:
		return p.expectTopLevelDecl(), false
	case token.KeywordStruct, token.KeywordUnion, token.KeywordEnum:
		if p.at(1) == token.Identifier && p.at(2) == token.LBrace {
			return p.recoverCStyleContainer(), false
		}
		return p.parseContainerField(), true
	case token.Identifier:
		return p.parseContainerField(), true
	default:
		p.errAt(ast.ExpectedContainerMembers, p.tok, false)
		panic(parseError{})
	}
}

// recoverCStyleContainer diagnoses `struct Foo { ... };` at container
// scope (spec.md §4.2, testable property 9) and skips past the body and
// trailing semicolon.
func (p *Parser) recoverCStyleContainer() ast.Index {
	tok := p.tok
	p.errAt(ast.CStyleContainer, tok, false)
	p.errAt(ast.ZigStyleContainer, tok, true)
	p.advance() // struct/union/enum
	p.advance() // identifier
	depth := 0
	for {
		switch p.cur() {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				p.advance()
				goto skippedBody
			}
		case token.EOF:
			goto skippedBody
		}
		p.advance()
	}
skippedBody:
	if p.cur() == token.Semicolon {
		p.advance()
	}
	return p.tree.AddNode(ast.Node{Tag: ast.UnreachableLiteral, MainToken: uint32(tok)})
}

// parseContainerField parses `IDENT : Type align(E)? = Expr?` and
// requires a trailing comma unless it is the last member: when the field
// is followed by neither `,` nor `}`/EOF it records
// expected_comma_after_field here and returns the field anyway.
func (p *Parser) parseContainerField() ast.Index {
	nameTok := p.expect(token.Identifier)
	var typeExpr ast.Index = ast.NoneNode
	if _, ok := p.eat(token.Colon); ok {
		typeExpr = p.expectTypeExpr()
	}
	var alignExpr ast.Index = ast.NoneNode
	if _, ok := p.eat(token.KeywordAlign); ok {
		p.expect(token.LParen)
		alignExpr = p.expectExpr()
		p.expect(token.RParen)
	}
	var valueExpr ast.Index = ast.NoneNode
	if _, ok := p.eat(token.Equal); ok {
		valueExpr = p.expectExpr()
	}

	var node ast.Index
	switch {
	case alignExpr == ast.NoneNode:
		node = p.tree.AddNode(ast.Node{Tag: ast.ContainerFieldInit, MainToken: nameTok,
			Data: ast.Data{LHS: uint32(typeExpr), RHS: uint32(valueExpr)}})
	case valueExpr == ast.NoneNode:
		node = p.tree.AddNode(ast.Node{Tag: ast.ContainerFieldAlign, MainToken: nameTok,
			Data: ast.Data{LHS: uint32(typeExpr), RHS: uint32(alignExpr)}})
	default:
		extra := p.tree.AddContainerField(ast.ExtraContainerField{AlignExpr: alignExpr, ValueExpr: valueExpr})
		node = p.tree.AddNode(ast.Node{Tag: ast.ContainerField, MainToken: nameTok,
			Data: ast.Data{LHS: uint32(typeExpr), RHS: extra}})
	}

	if p.cur() != token.Comma {
		if p.cur() != token.RBrace && p.cur() != token.EOF {
			p.errAt(ast.ExpectedCommaAfterField, p.tok, false)
		}
		return node
	}
	p.advance()
	return node
}

func (p *Parser) parseTestDecl() ast.Index {
	tok := p.advance() // test
	var nameTok ast.Index = ast.NoneNode
	if i, ok := p.eat(token.StringLiteral); ok {
		nameTok = ast.Index(i)
	} else if i, ok := p.eat(token.Identifier); ok {
		nameTok = ast.Index(i)
	}
	block := p.parseBlock(ast.NoneNode)
	return p.tree.AddNode(ast.Node{Tag: ast.TestDecl, MainToken: tok,
		Data: ast.Data{LHS: uint32(nameTok), RHS: uint32(block)}})
}

// expectTopLevelDecl parses an extern/export/inline/noinline-qualified
// function prototype or declaration, or a threadlocal-qualified global
// var-decl, per spec.md §4.3.
func (p *Parser) expectTopLevelDecl() ast.Index {
	isExtern := false
	if _, ok := p.eat(token.KeywordExport); ok {
	} else if _, ok := p.eat(token.KeywordExtern); ok {
		isExtern = true
		p.eat(token.StringLiteral) // optional linkage-name string
	}
	p.eat(token.KeywordInline)
	p.eat(token.KeywordNoinline)

	if p.cur() == token.KeywordFn {
		proto, protoTok := p.parseFnProto()
		switch {
		case p.cur() == token.Semicolon:
			p.advance()
			return proto
		case p.cur() == token.LBrace:
			if isExtern {
				p.errAt(ast.ExpectedSemiAfterStmt, p.tok, false)
			}
			body := p.parseBlock(ast.NoneNode)
			decl := p.tree.AddNode(ast.Node{Tag: ast.FnDecl, MainToken: protoTok,
				Data: ast.Data{LHS: uint32(proto), RHS: uint32(body)}})
			return decl
		default:
			p.errExpectedToken(token.Semicolon)
			panic(parseError{})
		}
	}

	p.eat(token.KeywordThreadlocal)
	decl := p.parseGlobalVarDecl()
	return decl
}

// parseGlobalVarDecl parses `(const|var) IDENT : Type? align? addrspace?
// section? (= Expr)? ;`, choosing one of the four var-decl node shapes
// by which qualifiers are present (spec.md §4.3).
func (p *Parser) parseGlobalVarDecl() ast.Index {
	if _, ok := p.eat(token.KeywordConst); !ok {
		p.expect(token.KeywordVar)
	}
	nameTok := p.expect(token.Identifier)

	var typeExpr ast.Index = ast.NoneNode
	if _, ok := p.eat(token.Colon); ok {
		typeExpr = p.expectTypeExpr()
	}
	align := p.parseOptAlign()
	addrspace := p.parseOptAddrspace()
	section := p.parseOptSection()

	var initExpr ast.Index = ast.NoneNode
	switch p.cur() {
	case token.Equal:
		p.advance()
		initExpr = p.expectExpr()
	case token.EqualEqual:
		p.errAt(ast.WrongEqualVarDecl, p.tok, false)
		p.advance()
		initExpr = p.expectExpr()
	}
	p.expectOrRecoverToken(token.Semicolon)

	switch {
	case align == ast.NoneNode && addrspace == ast.NoneNode && section == ast.NoneNode:
		return p.tree.AddNode(ast.Node{Tag: ast.SimpleVarDecl, MainToken: nameTok,
			Data: ast.Data{LHS: uint32(typeExpr), RHS: uint32(initExpr)}})
	case addrspace == ast.NoneNode && section == ast.NoneNode && typeExpr == ast.NoneNode:
		return p.tree.AddNode(ast.Node{Tag: ast.AlignedVarDecl, MainToken: nameTok,
			Data: ast.Data{LHS: uint32(align), RHS: uint32(initExpr)}})
	case addrspace == ast.NoneNode && section == ast.NoneNode:
		extra := p.tree.AddLocalVarDecl(ast.ExtraLocalVarDecl{Type: typeExpr, Align: align})
		return p.tree.AddNode(ast.Node{Tag: ast.LocalVarDecl, MainToken: nameTok,
			Data: ast.Data{LHS: extra, RHS: uint32(initExpr)}})
	default:
		extra := p.tree.AddGlobalVarDecl(ast.ExtraGlobalVarDecl{
			Type: typeExpr, Align: align, Addrspace: addrspace, Section: section,
		})
		return p.tree.AddNode(ast.Node{Tag: ast.GlobalVarDecl, MainToken: nameTok,
			Data: ast.Data{LHS: extra, RHS: uint32(initExpr)}})
	}
}

func (p *Parser) parseOptAlign() ast.Index {
	if _, ok := p.eat(token.KeywordAlign); !ok {
		return ast.NoneNode
	}
	p.expect(token.LParen)
	e := p.expectExpr()
	p.expect(token.RParen)
	return e
}

func (p *Parser) parseOptAddrspace() ast.Index {
	if _, ok := p.eat(token.KeywordAddrspace); !ok {
		return ast.NoneNode
	}
	p.expect(token.LParen)
	e := p.expectExpr()
	p.expect(token.RParen)
	return e
}

func (p *Parser) parseOptSection() ast.Index {
	if _, ok := p.eat(token.KeywordSection); !ok {
		return ast.NoneNode
	}
	p.expect(token.LParen)
	e := p.expectExpr()
	p.expect(token.RParen)
	return e
}

// parseFnProto parses `fn IDENT? (params) modifiers? ReturnType` and
// selects the narrowest of the four proto node shapes (spec.md §4.3),
// returning the node and the `fn` token (its main_token, used by callers
// attaching a body).
func (p *Parser) parseFnProto() (ast.Index, uint32) {
	fnTok := p.expect(token.KeywordFn)
	p.eat(token.Identifier) // optional name

	p.expect(token.LParen)
	var params []ast.Index
	for p.cur() != token.RParen && p.cur() != token.EOF {
		if _, ok := p.eat(token.Ellipsis3); ok {
			if p.cur() != token.RParen {
				p.errAt(ast.VarargsNonfinal, p.tok, false)
			}
			break
		}
		p.eat(token.KeywordComptime)
		p.eat(token.KeywordNoalias)
		if p.cur() == token.Identifier && p.at(1) == token.Colon {
			p.advance()
			p.advance()
		}
		if _, ok := p.eat(token.KeywordAnytype); !ok {
			params = append(params, p.expectTypeExpr())
		}
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen)

	align := p.parseOptAlign()
	addrspace := p.parseOptAddrspace()
	section := p.parseOptSection()
	var callconv ast.Index = ast.NoneNode
	if _, ok := p.eat(token.KeywordCallconv); ok {
		p.expect(token.LParen)
		callconv = p.expectExpr()
		p.expect(token.RParen)
	}

	retType := p.expectTypeExpr()
	hasModifiers := align != ast.NoneNode || addrspace != ast.NoneNode || section != ast.NoneNode || callconv != ast.NoneNode

	switch {
	case len(params) <= 1 && !hasModifiers:
		var param ast.Index = ast.NoneNode
		if len(params) == 1 {
			param = params[0]
		}
		return p.tree.AddNode(ast.Node{Tag: ast.FnProtoSimple, MainToken: fnTok,
			Data: ast.Data{LHS: uint32(param), RHS: uint32(retType)}}), fnTok
	case len(params) > 1 && !hasModifiers:
		r := p.tree.AddExtraRange(params)
		extra := p.tree.AddExtra(r.Start, r.End)
		return p.tree.AddNode(ast.Node{Tag: ast.FnProtoMulti, MainToken: fnTok,
			Data: ast.Data{LHS: extra, RHS: uint32(retType)}}), fnTok
	case len(params) <= 1:
		var param ast.Index = ast.NoneNode
		if len(params) == 1 {
			param = params[0]
		}
		extra := p.tree.AddFnProtoOne(ast.ExtraFnProtoOne{
			Param: param, AlignExpr: align, Addrspace: addrspace, Section: section, Callconv: callconv,
		})
		return p.tree.AddNode(ast.Node{Tag: ast.FnProtoOne, MainToken: fnTok,
			Data: ast.Data{LHS: extra, RHS: uint32(retType)}}), fnTok
	default:
		r := p.tree.AddExtraRange(params)
		extra := p.tree.AddFnProto(ast.ExtraFnProto{
			ParamsStart: r.Start, ParamsEnd: r.End,
			Align: align, Addrspace: addrspace, Section: section, Callconv: callconv,
		})
		return p.tree.AddNode(ast.Node{Tag: ast.FnProto, MainToken: fnTok,
			Data: ast.Data{LHS: extra, RHS: uint32(retType)}}), fnTok
	}
}
