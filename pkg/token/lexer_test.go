package token

import "testing"

func tagsOf(s *Stream) []Tag {
	tags := make([]Tag, len(s.Tokens))
	for i, t := range s.Tokens {
		tags[i] = t.Tag
	}
	return tags
}

func TestTokenizeAlwaysEndsInEOF(t *testing.T) {
	s := Tokenize([]byte("fn main() {}"))
	if got := s.Tokens[len(s.Tokens)-1].Tag; got != EOF {
		t.Fatalf("last tag = %v, want EOF", got)
	}
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	s := Tokenize([]byte("fn main"))
	got := tagsOf(s)
	want := []Tag{KeywordFn, Identifier, EOF}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tag[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeLineCommentsAreTrivia(t *testing.T) {
	s := Tokenize([]byte("x // a plain comment\ny"))
	got := tagsOf(s)
	want := []Tag{Identifier, Identifier, EOF}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v (line comment should be skipped)", got, want)
	}
}

func TestTokenizeDocCommentVariants(t *testing.T) {
	s := Tokenize([]byte("/// doc\n//! container doc\n"))
	got := tagsOf(s)
	want := []Tag{DocComment, ContainerDocComment, EOF}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
}

func TestTokenizeNumberLiterals(t *testing.T) {
	cases := []struct {
		src string
		tag Tag
	}{
		{"123", IntegerLiteral},
		{"1.5", FloatLiteral},
		{"0x1f", IntegerLiteral},
	}
	for _, c := range cases {
		s := Tokenize([]byte(c.src))
		if s.Tokens[0].Tag != c.tag {
			t.Fatalf("Tokenize(%q)[0] = %v, want %v", c.src, s.Tokens[0].Tag, c.tag)
		}
	}
}

func TestTokenizeRangeDotDotNotConsumedAsFloat(t *testing.T) {
	s := Tokenize([]byte("0..1"))
	got := tagsOf(s)
	want := []Tag{IntegerLiteral, DotDot, IntegerLiteral, EOF}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tag[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeStringAndCharLiterals(t *testing.T) {
	s := Tokenize([]byte(`"hi \"there\"" 'a'`))
	got := tagsOf(s)
	want := []Tag{StringLiteral, CharLiteral, EOF}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
}

func TestTokenizePunctuationLongestMatchFirst(t *testing.T) {
	cases := []struct {
		src string
		tag Tag
	}{
		{"<<|=", LArrow2PipeEq},
		{"<<|", LArrow2Pipe},
		{"<<=", LArrow2Eq},
		{"<<", LArrow2},
		{"<=", LessEqual},
		{"<", Less},
		{"...", Ellipsis3},
		{"..", DotDot},
		{".", Dot},
	}
	for _, c := range cases {
		s := Tokenize([]byte(c.src))
		if s.Tokens[0].Tag != c.tag {
			t.Fatalf("Tokenize(%q)[0] = %v, want %v", c.src, s.Tokens[0].Tag, c.tag)
		}
	}
}

func TestTokenizeInvalidByteProducesInvalidTag(t *testing.T) {
	s := Tokenize([]byte("$"))
	if s.Tokens[0].Tag != Invalid {
		t.Fatalf("tag = %v, want Invalid", s.Tokens[0].Tag)
	}
}
