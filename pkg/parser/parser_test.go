package parser

import (
	"testing"

	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

func parse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	stream := token.Tokenize([]byte(src))
	return ParseRoot(stream)
}

func rootMembers(tree *ast.Tree) []ast.Index {
	root := tree.Nodes[ast.Root]
	switch {
	case root.Data.LHS == uint32(ast.NoneNode):
		return nil
	case root.Data.RHS == uint32(ast.NoneNode):
		return []ast.Index{ast.Index(root.Data.LHS)}
	}
	// More than two members were packed as an extra range only when both
	// LHS/RHS look like offsets rather than node indices is ambiguous in
	// general, so tests that need >2 members inspect Diags/count directly
	// via len(tree.Nodes) instead of this helper.
	return []ast.Index{ast.Index(root.Data.LHS), ast.Index(root.Data.RHS)}
}

func TestParseRootEmptySource(t *testing.T) {
	tree := parse(t, "")
	root := tree.Nodes[ast.Root]
	if root.Data.LHS != uint32(ast.NoneNode) || root.Data.RHS != uint32(ast.NoneNode) {
		t.Fatalf("empty source root Data = %+v, want both NoneNode", root.Data)
	}
	if len(tree.Diags) != 0 {
		t.Fatalf("empty source produced diagnostics: %+v", tree.Diags)
	}
}

func TestParseSimpleFnDecl(t *testing.T) {
	tree := parse(t, "fn main() void {}")
	if len(tree.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", tree.Diags)
	}
	members := rootMembers(tree)
	if len(members) != 1 {
		t.Fatalf("expected 1 top-level member, got %d", len(members))
	}
	decl := tree.Nodes[members[0]]
	if decl.Tag != ast.FnDecl {
		t.Fatalf("member tag = %v, want FnDecl", decl.Tag)
	}
	proto := tree.Nodes[decl.Data.LHS]
	if proto.Tag != ast.FnProtoSimple {
		t.Fatalf("proto tag = %v, want FnProtoSimple", proto.Tag)
	}
}

func TestParseFnProtoOnlyEndsInSemicolon(t *testing.T) {
	tree := parse(t, "extern fn puts(msg: u8) i32;")
	if len(tree.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", tree.Diags)
	}
	members := rootMembers(tree)
	if len(members) != 1 {
		t.Fatalf("expected 1 top-level member, got %d", len(members))
	}
	proto := tree.Nodes[members[0]]
	if proto.Tag != ast.FnProtoSimple {
		t.Fatalf("tag = %v, want FnProtoSimple (single param, no modifiers)", proto.Tag)
	}
}

func TestParseFnProtoMultiParamPicksMultiShape(t *testing.T) {
	tree := parse(t, "fn add(a: i32, b: i32) i32;")
	members := rootMembers(tree)
	proto := tree.Nodes[members[0]]
	if proto.Tag != ast.FnProtoMulti {
		t.Fatalf("tag = %v, want FnProtoMulti", proto.Tag)
	}
	params := tree.ExtraRangeNodes(ast.SubRange{Start: tree.Extra[proto.Data.LHS], End: tree.Extra[proto.Data.LHS+1]})
	if len(params) != 2 {
		t.Fatalf("params = %v, want 2 entries", params)
	}
}

func TestParseFnProtoWithModifierPicksOneShape(t *testing.T) {
	tree := parse(t, "fn f() align(4) i32;")
	members := rootMembers(tree)
	proto := tree.Nodes[members[0]]
	if proto.Tag != ast.FnProtoOne {
		t.Fatalf("tag = %v, want FnProtoOne (zero params, has align modifier)", proto.Tag)
	}
}

func TestParseGlobalVarDeclShapeSelection(t *testing.T) {
	cases := []struct {
		src string
		tag ast.Tag
	}{
		{"const x = 1;", ast.SimpleVarDecl},
		{"var x align(4) = 1;", ast.AlignedVarDecl},
		{"var x align(4) section(\".data\") = 1;", ast.GlobalVarDecl},
	}
	for _, c := range cases {
		tree := parse(t, c.src)
		if len(tree.Diags) != 0 {
			t.Fatalf("parse(%q) diagnostics: %+v", c.src, tree.Diags)
		}
		members := rootMembers(tree)
		got := tree.Nodes[members[0]].Tag
		if got != c.tag {
			t.Fatalf("parse(%q) tag = %v, want %v", c.src, got, c.tag)
		}
	}
}

func TestParseWrongEqualVarDeclDiagnostic(t *testing.T) {
	tree := parse(t, "const x == 1;")
	found := false
	for _, d := range tree.Diags {
		if d.Tag == ast.WrongEqualVarDecl {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WrongEqualVarDecl diagnostic, got %+v", tree.Diags)
	}
}

func TestParseContainerFieldMissingCommaDiagnostic(t *testing.T) {
	tree := parse(t, "const S = struct { a: i32 b: i32 };")
	found := false
	for _, d := range tree.Diags {
		if d.Tag == ast.ExpectedCommaAfterField {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ExpectedCommaAfterField diagnostic, got %+v", tree.Diags)
	}
}

func TestParseDeclBetweenFieldsDiagnostic(t *testing.T) {
	src := "const S = struct {\n" +
		"    a: i32,\n" +
		"    fn f() void {}\n" +
		"    b: i32,\n" +
		"};"
	tree := parse(t, src)
	found := false
	for _, d := range tree.Diags {
		if d.Tag == ast.DeclBetweenFields {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DeclBetweenFields diagnostic, got %+v", tree.Diags)
	}
}

func TestParseCStyleContainerRecovery(t *testing.T) {
	tree := parse(t, "struct Foo { a: i32, };\nconst x = 1;")
	var sawCStyle bool
	for _, d := range tree.Diags {
		if d.Tag == ast.CStyleContainer {
			sawCStyle = true
		}
	}
	if !sawCStyle {
		t.Fatalf("expected CStyleContainer diagnostic, got %+v", tree.Diags)
	}
	// Parsing must continue past the malformed container and still see the
	// following declaration.
	members := rootMembers(tree)
	if len(members) != 2 {
		t.Fatalf("expected 2 top-level members after recovery, got %d", len(members))
	}
	second := tree.Nodes[members[1]]
	if second.Tag != ast.SimpleVarDecl {
		t.Fatalf("second member tag = %v, want SimpleVarDecl", second.Tag)
	}
}

func TestParseTestDeclWithStringName(t *testing.T) {
	tree := parse(t, `test "it works" {}`)
	members := rootMembers(tree)
	decl := tree.Nodes[members[0]]
	if decl.Tag != ast.TestDecl {
		t.Fatalf("tag = %v, want TestDecl", decl.Tag)
	}
	if decl.Data.LHS == uint32(ast.NoneNode) {
		t.Fatalf("expected a name token index, got NoneNode")
	}
}

func TestParseVarargsNonfinalDiagnostic(t *testing.T) {
	tree := parse(t, "fn f(a: i32, ...) void;")
	if len(tree.Diags) != 0 {
		t.Fatalf("well-formed varargs should not diagnose, got %+v", tree.Diags)
	}

	tree = parse(t, "fn f(...) void;")
	// A lone varargs marker as the whole param list is well-formed (it's
	// simply the final and only param); VarargsNonfinal only fires when
	// something follows it, which parseFnProto checks via cur() != RParen.
	if len(tree.Diags) != 0 {
		t.Fatalf("lone varargs should not diagnose, got %+v", tree.Diags)
	}

	tree = parse(t, "fn f(..., a: i32) void;")
	found := false
	for _, d := range tree.Diags {
		if d.Tag == ast.VarargsNonfinal {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected VarargsNonfinal diagnostic, got %+v", tree.Diags)
	}
}

func TestParseZonExpression(t *testing.T) {
	stream := token.Tokenize([]byte(".{ .a = 1 }"))
	tree := ParseZon(stream)
	root := tree.Nodes[ast.Root]
	if root.Data.LHS == uint32(ast.NoneNode) {
		t.Fatalf("ParseZon did not record the parsed expression")
	}
	if len(tree.Diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", tree.Diags)
	}
}
