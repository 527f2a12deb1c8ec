package lspserver

import (
	"testing"

	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

func TestLineAndColumn(t *testing.T) {
	src := []byte("line one\nline two\nline three")
	cases := []struct {
		offset     uint32
		line, char uint32
	}{
		{0, 0, 0},
		{4, 0, 4},
		{9, 1, 0},
		{14, 1, 5},
	}
	for _, c := range cases {
		line, char := lineAndColumn(src, c.offset)
		if line != c.line || char != c.char {
			t.Fatalf("lineAndColumn(%d) = (%d,%d), want (%d,%d)", c.offset, line, char, c.line, c.char)
		}
	}
}

func TestToLSPDiagnosticUsesTokenOffset(t *testing.T) {
	stream := token.Tokenize([]byte("const x == 1;"))
	d := ast.Diagnostic{Tag: ast.WrongEqualVarDecl, Token: 2}

	diag := toLSPDiagnostic(stream, d)
	if diag.Range.Start.Line != 0 {
		t.Fatalf("expected single-line source, got line %d", diag.Range.Start.Line)
	}
	if diag.Message == "" {
		t.Fatalf("expected a non-empty diagnostic message")
	}
}
