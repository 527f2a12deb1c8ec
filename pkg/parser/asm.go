package parser

import (
	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

// parseAsmExpr parses `asm volatile? (template [: outputs [: inputs [:
// clobbers]]])` (spec.md §4.8). Missing separating commas are recorded
// without aborting the parse; a truly malformed operand list unwinds
// through expect().
func (p *Parser) parseAsmExpr() ast.Index {
	tok := p.advance() // asm
	p.eat(token.KeywordVolatile)
	p.expect(token.LParen)
	template := p.expectExpr()

	if p.cur() != token.Colon {
		rparen := p.expect(token.RParen)
		return p.tree.AddNode(ast.Node{Tag: ast.AsmSimple, MainToken: tok, Data: ast.Data{LHS: uint32(template), RHS: rparen}})
	}

	mark := p.tree.ScratchTop()
	p.advance() // ':'
	if p.cur() != token.Colon && p.cur() != token.RParen {
		p.parseAsmOperandList(true)
	}
	if _, ok := p.eat(token.Colon); ok {
		if p.cur() != token.Colon && p.cur() != token.RParen {
			p.parseAsmOperandList(false)
		}
		if _, ok := p.eat(token.Colon); ok {
			p.parseAsmClobberList()
		}
	}
	r := p.tree.CommitScratch(mark)
	rparen := p.expect(token.RParen)
	extra := p.tree.AddAsm(ast.ExtraAsm{ItemsStart: r.Start, ItemsEnd: r.End, Rparen: rparen})
	return p.tree.AddNode(ast.Node{Tag: ast.Asm, MainToken: tok, Data: ast.Data{LHS: uint32(template), RHS: extra}})
}

// parseAsmOperandList parses one or more `[name] "constraint" (expr_or_type)`
// entries, pushing them onto the scratch stack as AsmOutput/AsmInput nodes.
func (p *Parser) parseAsmOperandList(isOutput bool) {
	for {
		lbracket := p.expect(token.LBracket)
		p.expect(token.Identifier)
		p.expect(token.RBracket)
		p.expect(token.StringLiteral)
		p.expect(token.LParen)
		var operand ast.Index
		if isOutput && p.cur() == token.Arrow {
			p.advance()
			operand = p.expectTypeExpr()
		} else {
			operand = p.expectExpr()
		}
		p.expect(token.RParen)
		tag := ast.AsmInput
		if isOutput {
			tag = ast.AsmOutput
		}
		p.tree.ScratchPush(p.tree.AddNode(ast.Node{Tag: tag, MainToken: lbracket, Data: ast.Data{LHS: uint32(operand)}}))
		if _, ok := p.eat(token.Comma); !ok {
			if p.cur() == token.Colon || p.cur() == token.RParen {
				return
			}
			p.errExpectedToken(token.Comma)
			continue
		}
		if p.cur() == token.Colon || p.cur() == token.RParen {
			return
		}
	}
}

// parseAsmClobberList parses the trailing comma-separated string-literal
// clobber list. Clobbers get no AST nodes: the parser checks their
// syntax, records a missing separating comma, and discards them.
func (p *Parser) parseAsmClobberList() {
	for {
		if _, ok := p.eat(token.StringLiteral); !ok {
			break
		}
		if _, ok := p.eat(token.Comma); !ok {
			if p.cur() != token.StringLiteral {
				break
			}
			p.errExpectedToken(token.Comma)
			continue
		}
		if p.cur() == token.RParen {
			break
		}
	}
}
