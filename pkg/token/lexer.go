package token

// Lexer is a minimal reference tokenizer used only to build Streams for
// tests, the cmd/kestrel driver and pkg/lspserver. Production lexers are an external,
// out-of-scope collaborator (spec.md §1/§6); this one exists solely so the
// parser can be exercised end-to-end without a real lexer dependency.
type Lexer struct {
	src []byte
	pos int
}

// NewLexer creates a reference lexer over src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src}
}

// Tokenize scans the full input and returns a Stream, always terminated by
// an EOF sentinel token.
func Tokenize(src []byte) *Stream {
	l := NewLexer(src)
	var toks []Token
	for {
		t := l.next()
		toks = append(toks, t)
		if t.Tag == EOF {
			break
		}
	}
	return &Stream{Tokens: toks, Source: src}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		b := l.peek()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.pos++
		case b == '/' && l.peekAt(1) == '/':
			// Line comments that start with /// or //! are doc comments and
			// are tokenized separately by next(); a bare "//" is trivia.
			if l.peekAt(2) == '/' || l.peekAt(2) == '!' {
				return
			}
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) next() Token {
	l.skipTrivia()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Tag: EOF, Start: uint32(start)}
	}
	b := l.peek()

	switch {
	case b == '/' && l.peekAt(1) == '/' && (l.peekAt(2) == '/' || l.peekAt(2) == '!'):
		tag := DocComment
		if l.peekAt(2) == '!' {
			tag = ContainerDocComment
		}
		for l.pos < len(l.src) && l.peek() != '\n' {
			l.pos++
		}
		return Token{Tag: tag, Start: uint32(start)}

	case isIdentStart(b):
		for l.pos < len(l.src) && isIdentCont(l.peek()) {
			l.pos++
		}
		word := string(l.src[start:l.pos])
		if tag, ok := Lookup(word); ok {
			return Token{Tag: tag, Start: uint32(start)}
		}
		return Token{Tag: Identifier, Start: uint32(start)}

	case b == '@':
		l.pos++
		for l.pos < len(l.src) && isIdentCont(l.peek()) {
			l.pos++
		}
		return Token{Tag: Builtin, Start: uint32(start)}

	case isDigit(b):
		isFloat := false
		for l.pos < len(l.src) && (isIdentCont(l.peek()) || l.peek() == '.') {
			if l.peek() == '.' {
				if l.peekAt(1) == '.' {
					break // don't eat a range's ".."
				}
				isFloat = true
			}
			l.pos++
		}
		if isFloat {
			return Token{Tag: FloatLiteral, Start: uint32(start)}
		}
		return Token{Tag: IntegerLiteral, Start: uint32(start)}

	case b == '\'':
		l.pos++
		for l.pos < len(l.src) && l.peek() != '\'' {
			if l.peek() == '\\' {
				l.pos++
			}
			l.pos++
		}
		if l.pos < len(l.src) {
			l.pos++
		}
		return Token{Tag: CharLiteral, Start: uint32(start)}

	case b == '"':
		l.pos++
		for l.pos < len(l.src) && l.peek() != '"' {
			if l.peek() == '\\' {
				l.pos++
			}
			l.pos++
		}
		if l.pos < len(l.src) {
			l.pos++
		}
		return Token{Tag: StringLiteral, Start: uint32(start)}

	case b == '\\' && l.peekAt(1) == '\\':
		for l.pos < len(l.src) && l.peek() != '\n' {
			l.pos++
		}
		return Token{Tag: MultilineStringLiteralLine, Start: uint32(start)}
	}

	return l.punctuation(start)
}

// punctuation consumes the longest matching operator/delimiter starting at
// l.pos (already validated to be in range by next()).
func (l *Lexer) punctuation(start int) Token {
	if l.take(4) == "<<|=" {
		l.pos += 4
		return Token{Tag: LArrow2PipeEq, Start: uint32(start)}
	}
	three := l.take(3)
	if tag, ok := punct3[three]; ok {
		l.pos += 3
		return Token{Tag: tag, Start: uint32(start)}
	}
	two := l.take(2)
	if tag, ok := punct2[two]; ok {
		l.pos += 2
		return Token{Tag: tag, Start: uint32(start)}
	}
	one := l.take(1)
	if tag, ok := punct1[one]; ok {
		l.pos += 1
		return Token{Tag: tag, Start: uint32(start)}
	}
	l.pos++
	return Token{Tag: Invalid, Start: uint32(start)}
}

func (l *Lexer) take(n int) string {
	end := l.pos + n
	if end > len(l.src) {
		end = len(l.src)
	}
	return string(l.src[l.pos:end])
}

var punct3 = map[string]Tag{
	"...": Ellipsis3, "<<|": LArrow2Pipe, "<<=": LArrow2Eq, ">>=": RArrow2Eq,
	"+%=": PlusPercentEq, "-%=": MinusPercentEq, "*%=": AsteriskPercentEq,
	"+|=": PlusPipeEq, "-|=": MinusPipeEq, "*|=": AsteriskPipeEq,
}

var punct2 = map[string]Tag{
	"::": ColonColon, "..": DotDot, ".*": DotStar, ".?": DotQuestion,
	"->": Arrow, "=>": FatArrow, "!=": BangEqual, "==": EqualEqual,
	"<=": LessEqual, ">=": GreaterEqual, "+%": PlusPercent, "+|": PlusPipe,
	"++": PlusPlus, "-%": MinusPercent, "-|": MinusPipe,
	"**": AsteriskAsterisk, "*%": AsteriskPercent, "*|": AsteriskPipe,
	"||": PipePipe, "&&": AmpersandAmpersand, "<<": LArrow2, ">>": RArrow2,
	"&=": AmpersandEq, "^=": CaretEq, "|=": PipeEq, "+=": PlusEq,
	"-=": MinusEq, "*=": AsteriskEq, "/=": SlashEq, "%=": PercentEq,
}

var punct1 = map[string]Tag{
	"(": LParen, ")": RParen, "{": LBrace, "}": RBrace,
	"[": LBracket, "]": RBracket, ",": Comma, ";": Semicolon,
	":": Colon, ".": Dot, "?": QuestionMark, "@": At,
	"!": Bang, "=": Equal, "<": Less, ">": Greater,
	"+": Plus, "-": Minus, "*": Asterisk, "/": Slash, "%": Percent,
	"&": Ampersand, "|": Pipe, "^": Caret, "~": Tilde,
}
