package parser

import (
	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

// expectTypeExpr parses a type expression: the optional/anyframe/pointer/
// array/slice prefix forms of spec.md §4.4, falling back to the ordinary
// expression grammar for everything else (identifiers, field-access
// chains, container decls, etc. are all valid type expressions here).
func (p *Parser) expectTypeExpr() ast.Index {
	switch {
	case p.cur() == token.QuestionMark:
		tok := p.advance()
		child := p.expectTypeExpr()
		return p.tree.AddNode(ast.Node{Tag: ast.OptionalType, MainToken: tok, Data: ast.Data{LHS: uint32(child)}})
	case p.cur() == token.KeywordAnyframe && p.at(1) == token.Arrow:
		tok := p.advance()
		p.advance()
		child := p.expectTypeExpr()
		return p.tree.AddNode(ast.Node{Tag: ast.AnyframeType, MainToken: tok, Data: ast.Data{RHS: uint32(child)}})
	case p.cur() == token.Asterisk || p.cur() == token.AsteriskAsterisk:
		return p.parsePtrType()
	case p.cur() == token.LBracket:
		return p.parseBracketType()
	}
	e := p.parsePrefixExprOrNone()
	if e == ast.NoneNode {
		return p.expectExpr()
	}
	return e
}

// parsePtrModifiers consumes any of align(expr[:start:end])?, addrspace
// (expr)?, const?, volatile?, allowzero? in any order, diagnosing a
// repeated align/addrspace/const (spec.md §4.4).
func (p *Parser) parsePtrModifiers() (align, bitStart, bitEnd, addrspace ast.Index) {
	align, bitStart, bitEnd, addrspace = ast.NoneNode, ast.NoneNode, ast.NoneNode, ast.NoneNode
	seenAlign, seenAddrspace, seenConst := false, false, false
	for {
		switch p.cur() {
		case token.KeywordAlign:
			if seenAlign {
				p.errAt(ast.ExtraAlignQualifier, p.tok, false)
			}
			seenAlign = true
			p.advance()
			p.expect(token.LParen)
			align = p.expectExpr()
			if _, ok := p.eat(token.Colon); ok {
				bitStart = p.expectExpr()
				p.expect(token.Colon)
				bitEnd = p.expectExpr()
			}
			p.expect(token.RParen)
		case token.KeywordAddrspace:
			if seenAddrspace {
				p.errAt(ast.ExtraAddrspaceQualifier, p.tok, false)
			}
			seenAddrspace = true
			p.advance()
			p.expect(token.LParen)
			addrspace = p.expectExpr()
			p.expect(token.RParen)
		case token.KeywordConst:
			if seenConst {
				p.errAt(ast.ExtraConstQualifier, p.tok, false)
			}
			seenConst = true
			p.advance()
		case token.KeywordVolatile, token.KeywordAllowzero:
			p.advance()
		default:
			return
		}
	}
}

func isArrayTag(tag ast.Tag) bool {
	return tag == ast.ArrayType || tag == ast.ArrayTypeSentinel
}

// buildPtrTypeNode selects the narrowest ptr_type_* shape for the given
// modifiers (spec.md §4.4) and diagnoses invalid combinations.
func (p *Parser) buildPtrTypeNode(tok uint32, sentinel, align, bitStart, bitEnd, addrspace, child ast.Index) ast.Index {
	if bitStart != ast.NoneNode && align == ast.NoneNode {
		p.errAt(ast.InvalidBitRange, int(tok), false)
	}
	childNode := p.tree.Nodes[child]
	if bitStart != ast.NoneNode && isArrayTag(childNode.Tag) {
		p.errAt(ast.PtrModOnArrayChildType, int(tok), false)
	}

	switch {
	case bitStart != ast.NoneNode:
		extra := p.tree.AddPtrTypeBitRange(ast.ExtraPtrTypeBitRange{
			Sentinel: sentinel, Align: align, Addrspace: addrspace, BitStart: bitStart, BitEnd: bitEnd,
		})
		return p.tree.AddNode(ast.Node{Tag: ast.PtrTypeBitRange, MainToken: tok, Data: ast.Data{LHS: extra, RHS: uint32(child)}})
	case sentinel != ast.NoneNode:
		extra := p.tree.AddPtrType(ast.ExtraPtrType{Sentinel: sentinel, Align: align, Addrspace: addrspace})
		return p.tree.AddNode(ast.Node{Tag: ast.PtrTypeSentinel, MainToken: tok, Data: ast.Data{LHS: extra, RHS: uint32(child)}})
	case addrspace != ast.NoneNode:
		extra := p.tree.AddPtrType(ast.ExtraPtrType{Sentinel: ast.NoneNode, Align: align, Addrspace: addrspace})
		return p.tree.AddNode(ast.Node{Tag: ast.PtrType, MainToken: tok, Data: ast.Data{LHS: extra, RHS: uint32(child)}})
	case align != ast.NoneNode:
		extra := p.tree.AddPtrType(ast.ExtraPtrType{Sentinel: ast.NoneNode, Align: align, Addrspace: ast.NoneNode})
		return p.tree.AddNode(ast.Node{Tag: ast.PtrTypeAligned, MainToken: tok, Data: ast.Data{LHS: extra, RHS: uint32(child)}})
	default:
		return p.tree.AddNode(ast.Node{Tag: ast.PtrTypeAligned, MainToken: tok, Data: ast.Data{LHS: uint32(ast.NoneNode), RHS: uint32(child)}})
	}
}

// parsePtrType handles the single-asterisk pointer and the `**` sugar
// for pointer-to-pointer.
func (p *Parser) parsePtrType() ast.Index {
	tok := uint32(p.tok)
	if _, ok := p.eat(token.AsteriskAsterisk); ok {
		align, bitStart, bitEnd, addrspace := p.parsePtrModifiers()
		child := p.expectTypeExpr()
		inner := p.buildPtrTypeNode(tok, ast.NoneNode, align, bitStart, bitEnd, addrspace, child)
		return p.buildPtrTypeNode(tok, ast.NoneNode, ast.NoneNode, ast.NoneNode, ast.NoneNode, ast.NoneNode, inner)
	}
	p.expect(token.Asterisk)
	align, bitStart, bitEnd, addrspace := p.parsePtrModifiers()
	child := p.expectTypeExpr()
	return p.buildPtrTypeNode(tok, ast.NoneNode, align, bitStart, bitEnd, addrspace, child)
}

// parseBracketType handles `[]T`, `[*]T`, `[*:s]T`, `[N]T`, and
// `[N:s]T` (spec.md §4.4).
func (p *Parser) parseBracketType() ast.Index {
	tok := uint32(p.tok)
	p.expect(token.LBracket)

	if _, ok := p.eat(token.Asterisk); ok {
		var sentinel ast.Index = ast.NoneNode
		if _, ok := p.eat(token.Colon); ok {
			sentinel = p.expectExpr()
		}
		p.expect(token.RBracket)
		align, bitStart, bitEnd, addrspace := p.parsePtrModifiers()
		child := p.expectTypeExpr()
		return p.buildPtrTypeNode(tok, sentinel, align, bitStart, bitEnd, addrspace, child)
	}

	if _, ok := p.eat(token.RBracket); ok {
		align, bitStart, bitEnd, addrspace := p.parsePtrModifiers()
		child := p.expectTypeExpr()
		return p.buildPtrTypeNode(tok, ast.NoneNode, align, bitStart, bitEnd, addrspace, child)
	}

	lenExpr := p.expectExpr()
	var sentinel ast.Index = ast.NoneNode
	if _, ok := p.eat(token.Colon); ok {
		sentinel = p.expectExpr()
	}
	p.expect(token.RBracket)
	child := p.expectTypeExpr()
	if sentinel == ast.NoneNode {
		return p.tree.AddNode(ast.Node{Tag: ast.ArrayType, MainToken: tok, Data: ast.Data{LHS: uint32(lenExpr), RHS: uint32(child)}})
	}
	extra := p.tree.AddArrayTypeSentinel(ast.ExtraArrayTypeSentinel{Sentinel: sentinel, ElemType: child})
	return p.tree.AddNode(ast.Node{Tag: ast.ArrayTypeSentinel, MainToken: tok, Data: ast.Data{LHS: uint32(lenExpr), RHS: extra}})
}
