package parser

import "github.com/kestrel-lang/kestrel/pkg/token"

// findNextContainerMember implements spec.md §4.2's recovery scanner: it
// tracks bracket depth and stops at the next plausible start of a
// container member, or at a top-level `,`/`;`, or at `}`/EOF.
func (p *Parser) findNextContainerMember() {
	depth := 0
	for {
		switch p.cur() {
		case token.KeywordTest, token.KeywordComptime, token.KeywordPub,
			token.KeywordExport, token.KeywordExtern, token.KeywordInline,
			token.KeywordNoinline, token.KeywordThreadlocal, token.KeywordConst,
			token.KeywordVar, token.KeywordFn:
			if depth == 0 {
				return
			}
		case token.Identifier:
			if depth == 0 && p.at(1) == token.Comma {
				return
			}
		case token.Comma, token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.EOF:
			return
		}
		p.advance()
	}
}

// findNextStmt scans forward to the next `;` at bracket depth zero, or a
// `}`/EOF, per spec.md §4.9.
func (p *Parser) findNextStmt() {
	depth := 0
	for {
		switch p.cur() {
		case token.LParen, token.LBrace, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			if depth > 0 {
				depth--
			}
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		case token.Semicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case token.EOF:
			return
		}
		p.advance()
	}
}

// recoverMember runs fn inside a panic guard; on a parseError it invokes
// the container-member scanner, drops whatever the failed production left
// on the scratch stack, and reports that this iteration produced no
// member.
func (p *Parser) recoverMember(fn func()) (ok bool) {
	mark := p.tree.ScratchTop()
	defer func() {
		if r := recover(); r != nil {
			if _, is := r.(parseError); is {
				p.tree.DropScratch(mark)
				p.findNextContainerMember()
				ok = false
				return
			}
			panic(r)
		}
	}()
	fn()
	return true
}

// recoverStmt is recoverMember's statement-loop counterpart.
func (p *Parser) recoverStmt(fn func()) (ok bool) {
	mark := p.tree.ScratchTop()
	defer func() {
		if r := recover(); r != nil {
			if _, is := r.(parseError); is {
				p.tree.DropScratch(mark)
				p.findNextStmt()
				ok = false
				return
			}
			panic(r)
		}
	}()
	fn()
	return true
}
