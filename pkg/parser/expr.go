package parser

import (
	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

type binOp struct {
	prec  int
	tag   ast.Tag
	assoc string // "left" or "none"
}

var binOps = map[token.Tag]binOp{
	token.KeywordOr: {10, ast.BoolOr, "left"},

	token.KeywordAnd: {20, ast.BoolAnd, "left"},

	token.EqualEqual:   {30, ast.EqualEqual, "none"},
	token.BangEqual:    {30, ast.BangEqual, "none"},
	token.Less:         {30, ast.LessThan, "none"},
	token.Greater:      {30, ast.GreaterThan, "none"},
	token.LessEqual:    {30, ast.LessOrEqual, "none"},
	token.GreaterEqual: {30, ast.GreaterOrEqual, "none"},

	token.Ampersand:    {40, ast.BitAnd, "left"},
	token.Caret:        {40, ast.BitXor, "left"},
	token.Pipe:         {40, ast.BitOr, "left"},
	token.KeywordOrelse: {40, ast.Orelse, "left"},
	token.KeywordCatch: {40, ast.Catch, "left"},

	token.LArrow2:     {50, ast.Shl, "left"},
	token.LArrow2Pipe: {50, ast.ShlSat, "left"},
	token.RArrow2:     {50, ast.Shr, "left"},

	token.Plus:         {60, ast.Add, "left"},
	token.Minus:        {60, ast.Sub, "left"},
	token.PlusPlus:     {60, ast.ArrayCat, "left"},
	token.PlusPercent:  {60, ast.AddWrap, "left"},
	token.MinusPercent: {60, ast.SubWrap, "left"},
	token.PlusPipe:     {60, ast.AddSat, "left"},
	token.MinusPipe:    {60, ast.SubSat, "left"},

	token.PipePipe:         {70, ast.MergeErrorSets, "left"},
	token.Asterisk:         {70, ast.Mul, "left"},
	token.Slash:            {70, ast.Div, "left"},
	token.Percent:          {70, ast.Mod, "left"},
	token.AsteriskAsterisk: {70, ast.Mul, "left"}, // array-repeat folds into mul: no dedicated tag
	token.AsteriskPercent:  {70, ast.MulWrap, "left"},
	token.AsteriskPipe:     {70, ast.MulSat, "left"},
}

// expectExpr parses an expression and diagnoses expected_expr if none is
// present at the current position.
func (p *Parser) expectExpr() ast.Index {
	e := p.parseExprOrNone()
	if e == ast.NoneNode {
		idx, isPrev := p.diagPosition()
		p.tree.Diags = append(p.tree.Diags, ast.Diagnostic{Tag: ast.ExpectedExpr, Token: idx, TokenIsPrev: isPrev})
		panic(parseError{})
	}
	return e
}

// parseExprOrNone parses a binary expression at the lowest precedence,
// returning ast.NoneNode if the current token cannot start one.
func (p *Parser) parseExprOrNone() ast.Index {
	lhs := p.parsePrefixExprOrNone()
	if lhs == ast.NoneNode {
		return ast.NoneNode
	}
	return p.parseBinRHS(lhs, 0)
}

func (p *Parser) parseBinRHS(lhs ast.Index, minPrec int) ast.Index {
	chainWarned := false
	for {
		op, ok := binOps[p.cur()]
		if !ok || op.prec < minPrec {
			return lhs
		}
		p.checkOperatorWhitespace()
		opTok := p.advance()

		if op.tag == ast.Catch {
			if _, ok := p.eat(token.Pipe); ok {
				p.eat(token.Identifier)
				p.expect(token.Pipe)
			}
		}

		rhs := p.parsePrefixExprOrNone()
		if rhs == ast.NoneNode {
			idx, isPrev := p.diagPosition()
			p.tree.Diags = append(p.tree.Diags, ast.Diagnostic{Tag: ast.ExpectedExpr, Token: idx, TokenIsPrev: isPrev})
			panic(parseError{})
		}
		rhs = p.parseBinRHS(rhs, op.prec+1)

		lhs = p.tree.AddNode(ast.Node{Tag: op.tag, MainToken: opTok, Data: ast.Data{LHS: uint32(lhs), RHS: uint32(rhs)}})

		if op.assoc == "none" {
			if next, ok2 := binOps[p.cur()]; ok2 && next.prec == op.prec && next.assoc == "none" {
				if !chainWarned {
					p.errAt(ast.ChainedComparisonOperators, p.tok, false)
					chainWarned = true
				}
				continue
			}
		}
	}
}

// checkOperatorWhitespace implements spec.md §4.4's mismatched-whitespace
// diagnostic: asymmetric spacing around a binary operator (space before
// but not after, or vice versa) is suspicious and gets flagged, though
// parsing proceeds normally either way.
func (p *Parser) checkOperatorWhitespace() {
	tok := p.curTok()
	if tok.Start == 0 {
		return
	}
	before := p.s.ByteAt(tok.Start - 1)
	lexLen := uint32(len(p.s.Lexeme(p.tok)))
	after := p.s.ByteAt(tok.Start + lexLen)
	if isSpaceByte(before) != isSpaceByte(after) {
		p.errAt(ast.MismatchedBinaryOpWhitespace, p.tok, false)
	}
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

var prefixOps = map[token.Tag]ast.Tag{
	token.Bang:          ast.BoolNot,
	token.Minus:         ast.Negation,
	token.Tilde:         ast.BitNot,
	token.MinusPercent:  ast.NegationWrap,
	token.Ampersand:     ast.AddressOf,
	token.KeywordTry:    ast.Try,
	token.KeywordResume: ast.Resume,
}

func (p *Parser) parsePrefixExprOrNone() ast.Index {
	if p.cur() == token.AmpersandAmpersand {
		idx, isPrev := p.diagPosition()
		p.tree.Diags = append(p.tree.Diags, ast.Diagnostic{Tag: ast.InvalidAmpersandAmpersand, Token: idx, TokenIsPrev: isPrev})
		tok := p.advance()
		operand := p.parsePrefixExprOrNone()
		if operand == ast.NoneNode {
			operand = p.expectExpr()
		}
		inner := p.tree.AddNode(ast.Node{Tag: ast.AddressOf, MainToken: tok, Data: ast.Data{LHS: uint32(operand)}})
		return p.tree.AddNode(ast.Node{Tag: ast.AddressOf, MainToken: tok, Data: ast.Data{LHS: uint32(inner)}})
	}
	if tag, ok := prefixOps[p.cur()]; ok {
		tok := p.advance()
		operand := p.expectPrefixOperand()
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: tok, Data: ast.Data{LHS: uint32(operand)}})
	}
	primary := p.parsePrimaryExprOrNone()
	if primary == ast.NoneNode {
		return ast.NoneNode
	}
	return p.parseSuffixChain(primary)
}

func (p *Parser) expectPrefixOperand() ast.Index {
	e := p.parsePrefixExprOrNone()
	if e == ast.NoneNode {
		return p.expectExpr()
	}
	return e
}

// parseSuffixChain applies postfix operators (indexing, slicing, field
// access, optional-unwrap, deref, call) to base for as long as one
// matches (spec.md §4.4).
func (p *Parser) parseSuffixChain(base ast.Index) ast.Index {
	for {
		switch p.cur() {
		case token.Dot:
			switch p.at(1) {
			case token.QuestionMark:
				tok := p.advance()
				p.advance()
				base = p.tree.AddNode(ast.Node{Tag: ast.UnwrapOptional, MainToken: tok, Data: ast.Data{LHS: uint32(base)}})
			case token.Asterisk:
				tok := p.advance()
				p.advance()
				base = p.tree.AddNode(ast.Node{Tag: ast.Deref, MainToken: tok, Data: ast.Data{LHS: uint32(base)}})
			case token.Identifier:
				tok := p.advance()
				fieldTok := p.advance()
				base = p.tree.AddNode(ast.Node{Tag: ast.FieldAccess, MainToken: tok, Data: ast.Data{LHS: uint32(base), RHS: fieldTok}})
			default:
				return base
			}
		case token.LBracket:
			base = p.parseIndexOrSlice(base)
		case token.LParen:
			base = p.parseCall(base)
		default:
			return base
		}
	}
}

func (p *Parser) parseIndexOrSlice(base ast.Index) ast.Index {
	lbrack := p.advance()
	start := p.expectExpr()
	if _, ok := p.eat(token.DotDot); !ok {
		p.expect(token.RBracket)
		return p.tree.AddNode(ast.Node{Tag: ast.ArrayAccess, MainToken: lbrack, Data: ast.Data{LHS: uint32(base), RHS: uint32(start)}})
	}
	var end ast.Index = ast.NoneNode
	if p.cur() != token.RBracket && p.cur() != token.Colon {
		end = p.expectExpr()
	}
	if _, ok := p.eat(token.Colon); ok {
		sentinel := p.expectExpr()
		p.expect(token.RBracket)
		extra := p.tree.AddSliceSentinel(ast.ExtraSliceSentinel{Start: start, End: end, Sentinel: sentinel})
		return p.tree.AddNode(ast.Node{Tag: ast.SliceSentinel, MainToken: lbrack, Data: ast.Data{LHS: uint32(base), RHS: extra}})
	}
	p.expect(token.RBracket)
	if end == ast.NoneNode {
		return p.tree.AddNode(ast.Node{Tag: ast.SliceOpen, MainToken: lbrack, Data: ast.Data{LHS: uint32(base), RHS: uint32(start)}})
	}
	extra := p.tree.AddSlice(ast.ExtraSlice{Start: start, End: end})
	return p.tree.AddNode(ast.Node{Tag: ast.Slice, MainToken: lbrack, Data: ast.Data{LHS: uint32(base), RHS: extra}})
}

func (p *Parser) parseCall(callee ast.Index) ast.Index {
	lparen := p.advance()
	mark := p.tree.ScratchTop()
	trailingComma := false
	for p.cur() != token.RParen && p.cur() != token.EOF {
		p.tree.ScratchPush(p.expectExpr())
		if _, ok := p.eat(token.Comma); ok {
			trailingComma = true
			continue
		}
		trailingComma = false
		break
	}
	p.expect(token.RParen)
	args := p.tree.ScratchSlice(mark)
	switch len(args) {
	case 0:
		p.tree.DropScratch(mark)
		tag := ast.CallOne
		if trailingComma {
			tag = ast.CallOneComma
		}
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: lparen, Data: ast.Data{LHS: uint32(callee), RHS: uint32(ast.NoneNode)}})
	case 1:
		arg := args[0]
		p.tree.DropScratch(mark)
		tag := ast.CallOne
		if trailingComma {
			tag = ast.CallOneComma
		}
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: lparen, Data: ast.Data{LHS: uint32(callee), RHS: uint32(arg)}})
	default:
		r := p.tree.CommitScratch(mark)
		tag := ast.Call
		if trailingComma {
			tag = ast.CallComma
		}
		extra := p.tree.AddExtra(r.Start, r.End)
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: lparen, Data: ast.Data{LHS: uint32(callee), RHS: extra}})
	}
}

// parsePrimaryExprOrNone dispatches on the head token (spec.md §4.4).
func (p *Parser) parsePrimaryExprOrNone() ast.Index {
	switch p.cur() {
	case token.IntegerLiteral, token.FloatLiteral:
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.NumberLiteral, MainToken: tok})
	case token.CharLiteral:
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.CharLiteralTag, MainToken: tok})
	case token.StringLiteral:
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.StringLiteral, MainToken: tok})
	case token.MultilineStringLiteralLine:
		start := p.tok
		tok := p.advance()
		for p.cur() == token.MultilineStringLiteralLine {
			p.advance()
		}
		r := ast.SubRange{Start: uint32(start), End: uint32(p.tok)}
		extra := p.tree.AddExtra(r.Start, r.End)
		return p.tree.AddNode(ast.Node{Tag: ast.MultilineStringLiteral, MainToken: tok, Data: ast.Data{LHS: extra}})
	case token.KeywordUnreachable:
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.UnreachableLiteral, MainToken: tok})
	case token.Identifier:
		if p.at(1) == token.Colon {
			return p.parseLabeledPrimary()
		}
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.IdentifierTag, MainToken: tok})
	case token.Dot:
		return p.parseDotInitOrEnumLiteral()
	case token.Builtin:
		return p.parseBuiltinCall()
	case token.KeywordFn:
		proto, _ := p.parseFnProto()
		return proto
	case token.KeywordIf:
		return p.parseIfExpr()
	case token.KeywordWhile:
		return p.parseWhileExpr(ast.NoneNode)
	case token.KeywordFor:
		return p.parseForExpr(ast.NoneNode)
	case token.KeywordSwitch:
		return p.parseSwitchExpr(ast.NoneNode)
	case token.LBrace:
		return p.parseBlock(ast.NoneNode)
	case token.KeywordStruct, token.KeywordUnion, token.KeywordEnum, token.KeywordOpaque:
		return p.parseContainerDecl()
	case token.KeywordError:
		return p.parseErrorSetOrValue()
	case token.KeywordAsm:
		return p.parseAsmExpr()
	case token.LParen:
		lparen := p.advance()
		inner := p.expectExpr()
		rparen := p.expect(token.RParen)
		return p.tree.AddNode(ast.Node{Tag: ast.GroupedExpression, MainToken: lparen, Data: ast.Data{LHS: uint32(inner), RHS: rparen}})
	case token.KeywordComptime:
		tok := p.advance()
		e := p.expectExpr()
		return p.tree.AddNode(ast.Node{Tag: ast.ComptimeTag, MainToken: tok, Data: ast.Data{LHS: uint32(e)}})
	case token.KeywordNosuspend:
		tok := p.advance()
		e := p.expectExpr()
		return p.tree.AddNode(ast.Node{Tag: ast.NosuspendTag, MainToken: tok, Data: ast.Data{LHS: uint32(e)}})
	case token.KeywordSuspend:
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.SuspendTag, MainToken: tok})
	case token.KeywordResume:
		tok := p.advance()
		e := p.expectExpr()
		return p.tree.AddNode(ast.Node{Tag: ast.Resume, MainToken: tok, Data: ast.Data{LHS: uint32(e)}})
	case token.KeywordAnyframe:
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.AnyframeLiteral, MainToken: tok})
	default:
		return ast.NoneNode
	}
}

func (p *Parser) parseBuiltinCall() ast.Index {
	tok := p.advance()
	p.expect(token.LParen)
	mark := p.tree.ScratchTop()
	trailingComma := false
	for p.cur() != token.RParen && p.cur() != token.EOF {
		p.tree.ScratchPush(p.expectExpr())
		if _, ok := p.eat(token.Comma); ok {
			trailingComma = true
			continue
		}
		trailingComma = false
		break
	}
	p.expect(token.RParen)
	args := p.tree.ScratchSlice(mark)
	switch len(args) {
	case 0, 1, 2:
		var a, b ast.Index = ast.NoneNode, ast.NoneNode
		if len(args) > 0 {
			a = args[0]
		}
		if len(args) > 1 {
			b = args[1]
		}
		p.tree.DropScratch(mark)
		tag := ast.BuiltinCallTwo
		if trailingComma {
			tag = ast.BuiltinCallTwoComma
		}
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: tok, Data: ast.Data{LHS: uint32(a), RHS: uint32(b)}})
	default:
		r := p.tree.CommitScratch(mark)
		tag := ast.BuiltinCall
		if trailingComma {
			tag = ast.BuiltinCallComma
		}
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: tok, Data: ast.Data{LHS: r.Start, RHS: r.End}})
	}
}

// parseDotInitOrEnumLiteral parses `.identifier` (enum literal) or a
// `.{...}` struct/array initializer.
func (p *Parser) parseDotInitOrEnumLiteral() ast.Index {
	dotTok := p.tok
	if p.at(1) == token.Identifier {
		p.advance()
		tok := p.advance()
		return p.tree.AddNode(ast.Node{Tag: ast.EnumLiteral, MainToken: tok})
	}
	p.advance()
	p.expect(token.LBrace)
	return p.parseInitList(uint32(dotTok), ast.NoneNode)
}

// parseInitList parses the body of a struct/array initializer after the
// opening brace has been consumed, dispatching on whether entries look
// like `.name = value` (struct init) or bare expressions (array init).
// typeExpr is NoneNode for the dot-prefixed `.{...}` forms.
func (p *Parser) parseInitList(mainTok uint32, typeExpr ast.Index) ast.Index {
	if p.cur() == token.RBrace {
		p.advance()
		return p.packInit(mainTok, typeExpr, nil, false, true)
	}
	isStruct := p.cur() == token.Dot && p.at(1) == token.Identifier && p.at(2) == token.Equal
	mark := p.tree.ScratchTop()
	trailing := false
	for p.cur() != token.RBrace && p.cur() != token.EOF {
		var item ast.Index
		if isStruct {
			p.expect(token.Dot)
			nameTok := p.expect(token.Identifier)
			p.expect(token.Equal)
			val := p.expectExpr()
			item = p.tree.AddNode(ast.Node{Tag: ast.Assign, MainToken: nameTok, Data: ast.Data{RHS: uint32(val)}})
		} else {
			item = p.expectExpr()
		}
		p.tree.ScratchPush(item)
		if _, ok := p.eat(token.Comma); ok {
			trailing = true
			continue
		}
		trailing = false
		break
	}
	p.expect(token.RBrace)
	items := p.tree.ScratchSlice(mark)
	result := p.packInit(mainTok, typeExpr, items, isStruct, trailing)
	p.tree.DropScratch(mark)
	return result
}

func (p *Parser) packInit(mainTok uint32, typeExpr ast.Index, items []ast.Index, isStruct, trailing bool) ast.Index {
	hasType := typeExpr != ast.NoneNode
	switch {
	case len(items) <= 2:
		var a, b ast.Index = ast.NoneNode, ast.NoneNode
		if len(items) > 0 {
			a = items[0]
		}
		if len(items) > 1 {
			b = items[1]
		}
		var tag ast.Tag
		switch {
		case hasType && isStruct:
			tag = ast.StructInitOne
		case hasType && !isStruct:
			tag = ast.ArrayInitOne
		case !hasType && isStruct:
			tag = ast.StructInitDotTwo
		default:
			tag = ast.ArrayInitDotTwo
		}
		if trailing {
			tag++ // the *_comma variant is the next tag in every one of these families
		}
		lhs, rhs := uint32(a), uint32(b)
		if hasType {
			lhs, rhs = uint32(typeExpr), uint32(a)
			if len(items) == 0 {
				rhs = uint32(ast.NoneNode)
			}
		}
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: mainTok, Data: ast.Data{LHS: lhs, RHS: rhs}})
	default:
		r := p.tree.AddExtraRange(items)
		var tag ast.Tag
		switch {
		case hasType && isStruct:
			tag = ast.StructInit
		case hasType && !isStruct:
			tag = ast.ArrayInit
		case !hasType && isStruct:
			tag = ast.StructInitDot
		default:
			tag = ast.ArrayInitDot
		}
		if trailing {
			tag++
		}
		if hasType {
			extra := p.tree.AddExtra(r.Start, r.End)
			return p.tree.AddNode(ast.Node{Tag: tag, MainToken: mainTok, Data: ast.Data{LHS: uint32(typeExpr), RHS: extra}})
		}
		return p.tree.AddNode(ast.Node{Tag: tag, MainToken: mainTok, Data: ast.Data{LHS: r.Start, RHS: r.End}})
	}
}

func (p *Parser) parseErrorSetOrValue() ast.Index {
	tok := p.advance() // error
	if _, ok := p.eat(token.Dot); ok {
		nameTok := p.expect(token.Identifier)
		return p.tree.AddNode(ast.Node{Tag: ast.ErrorValue, MainToken: nameTok})
	}
	p.expect(token.LBrace)
	mark := p.tree.ScratchTop()
	for p.cur() != token.RBrace && p.cur() != token.EOF {
		nameTok := p.expect(token.Identifier)
		p.tree.ScratchPush(p.tree.AddNode(ast.Node{Tag: ast.ErrorValue, MainToken: nameTok}))
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace)
	r := p.tree.CommitScratch(mark)
	return p.tree.AddNode(ast.Node{Tag: ast.ErrorSetDecl, MainToken: tok, Data: ast.Data{LHS: r.Start, RHS: r.End}})
}

func (p *Parser) parseLabeledPrimary() ast.Index {
	labelTok := p.advance() // identifier
	p.advance()             // ':'
	if !isLabelableAhead(p.cur()) {
		if isTypeExprModifierAhead(p) {
			p.errAt(ast.ExpectedVarConst, p.tok, false)
		} else {
			p.errAt(ast.ExpectedLabelable, p.tok, false)
		}
		panic(parseError{})
	}
	switch p.cur() {
	case token.LBrace:
		return p.parseBlock(ast.Index(labelTok))
	case token.KeywordWhile:
		return p.parseWhileExpr(ast.Index(labelTok))
	case token.KeywordFor:
		return p.parseForExpr(ast.Index(labelTok))
	default: // token.KeywordSwitch
		return p.parseSwitchExpr(ast.Index(labelTok))
	}
}

func isLabelableAhead(tag token.Tag) bool {
	switch tag {
	case token.LBrace, token.KeywordWhile, token.KeywordFor, token.KeywordSwitch:
		return true
	default:
		return false
	}
}

func isTypeExprModifierAhead(p *Parser) bool {
	switch p.cur() {
	case token.KeywordAlign, token.KeywordAddrspace, token.KeywordSection, token.Equal:
		return true
	default:
		return false
	}
}
