// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a token.Stream into an ast.Tree. Errors never abort a
// parse: a production that hits a syntactic fault records a diagnostic
// and either resolves it locally or unwinds to the nearest recovery
// scanner (container-member or statement), which skips ahead and lets
// parsing continue.
package parser

import (
	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

// parseError is the recoverable-syntax-fault signal productions raise to
// unwind to the nearest recovery scanner. It carries no data beyond its
// type: the diagnostic itself has already been appended to the tree by
// the time this is raised.
type parseError struct{}

func (parseError) Error() string { return "parse error" }

// Parser holds the mutable state of a single parse: the token cursor and
// the tree being built. It is not safe for concurrent use, and a value
// is discarded after ParseRoot/ParseZon returns.
type Parser struct {
	s    *token.Stream
	tree *ast.Tree
	tok  int
}

// ParseRoot parses a full container-member list terminated by end of
// input, per spec.md §4.1: node 0 is the root, and its payload is the
// top-level member list packed by packMemberList (up to two members
// inline, an extra-range only for more than two).
func ParseRoot(s *token.Stream) *ast.Tree {
	p := &Parser{s: s, tree: ast.NewTree()}
	members := p.parseContainerMembers(true)
	if p.cur() != token.EOF {
		p.errAt(ast.ExpectedContainerMembers, p.tok, false)
	}
	p.tree.Nodes[ast.Root] = ast.Node{
		Tag:  ast.Root,
		Data: p.packMemberList(members),
	}
	return p.tree
}

// ParseZon parses a single expression terminated by end of input, per
// spec.md §4.1. The source restricts ZON to a literal-value subset but
// defers enforcement to a future flag (spec.md §9 open question) — this
// is deliberately not enforced here.
func ParseZon(s *token.Stream) *ast.Tree {
	p := &Parser{s: s, tree: ast.NewTree()}
	var expr ast.Index = ast.NoneNode
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, is := r.(parseError); !is {
					panic(r)
				}
			}
		}()
		expr = p.expectExpr()
	}()
	if p.cur() != token.EOF {
		p.errAt(ast.ExpectedToken, p.tok, false)
	}
	// TODO: enforce the ZON literal-value subset once the driving flag exists.
	p.tree.Nodes[ast.Root] = ast.Node{Tag: ast.Root, Data: ast.Data{LHS: uint32(expr)}}
	return p.tree
}

// --- token cursor ---

func (p *Parser) cur() token.Tag       { return p.s.At(p.tok).Tag }
func (p *Parser) curTok() token.Token  { return p.s.At(p.tok) }
func (p *Parser) at(off int) token.Tag { return p.s.At(p.tok + off).Tag }

func (p *Parser) advance() uint32 {
	i := uint32(p.tok)
	if p.cur() != token.EOF {
		p.tok++
	}
	return i
}

// eat consumes the current token if it matches tag, returning its index.
func (p *Parser) eat(tag token.Tag) (uint32, bool) {
	if p.cur() == tag {
		return p.advance(), true
	}
	return 0, false
}

// expect consumes the current token if it matches tag; otherwise it
// records an expected_token diagnostic (retargeted to the previous token
// when the current one starts a new source line, per spec.md §9) and
// raises parseError.
func (p *Parser) expect(tag token.Tag) uint32 {
	if i, ok := p.eat(tag); ok {
		return i
	}
	p.errExpectedToken(tag)
	panic(parseError{})
}

// expectOrRecoverToken is like expect but the caller wants to keep going
// locally instead of unwinding (e.g. a missing comma in a list): it
// records the diagnostic without panicking.
func (p *Parser) expectOrRecoverToken(tag token.Tag) {
	if _, ok := p.eat(tag); !ok {
		p.errExpectedToken(tag)
	}
}

func (p *Parser) errExpectedToken(tag token.Tag) {
	idx, isPrev := p.diagPosition()
	p.tree.Diags = append(p.tree.Diags, ast.Diagnostic{
		Tag: ast.ExpectedToken, Token: idx, TokenIsPrev: isPrev, Extra: uint32(tag),
	})
}

// diagPosition implements the "look-back adjustment" from spec.md §9:
// when the current token starts on a new source line relative to the
// previous token, point the diagnostic at the previous token instead, so
// e.g. a missing semicolon is reported at the end of the line that needs
// it rather than at the start of the next one.
func (p *Parser) diagPosition() (idx uint32, isPrev bool) {
	if p.tok == 0 {
		return 0, false
	}
	curStart := p.curTok().Start
	prevStart := p.s.At(p.tok - 1).Start
	if p.newlineBetween(prevStart, curStart) {
		return uint32(p.tok - 1), true
	}
	return uint32(p.tok), false
}

func (p *Parser) newlineBetween(from, to uint32) bool {
	for i := from; i < to && int(i) < len(p.s.Source); i++ {
		if p.s.Source[i] == '\n' {
			return true
		}
	}
	return false
}

func (p *Parser) errAt(tag ast.DiagTag, tokIdx int, isNote bool) {
	p.tree.Diags = append(p.tree.Diags, ast.Diagnostic{Tag: tag, Token: uint32(tokIdx), IsNote: isNote})
}

func (p *Parser) errAtExtra(tag ast.DiagTag, tokIdx int, isNote bool, extra uint32) {
	p.tree.Diags = append(p.tree.Diags, ast.Diagnostic{Tag: tag, Token: uint32(tokIdx), IsNote: isNote, Extra: extra})
}

// packMemberList implements the packing rule shared by root and
// container declarations (spec.md §4.2): two or fewer members pack into
// the node's own Data as two optional indices; more spill to an
// extra-range.
func (p *Parser) packMemberList(members []ast.Index) ast.Data {
	switch len(members) {
	case 0:
		return ast.Data{LHS: uint32(ast.NoneNode), RHS: uint32(ast.NoneNode)}
	case 1:
		return ast.Data{LHS: uint32(members[0]), RHS: uint32(ast.NoneNode)}
	case 2:
		return ast.Data{LHS: uint32(members[0]), RHS: uint32(members[1])}
	default:
		r := p.tree.AddExtraRange(members)
		return ast.Data{LHS: r.Start, RHS: r.End}
	}
}
