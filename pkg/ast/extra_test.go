package ast

import "testing"

func TestAddGetIf(t *testing.T) {
	tree := NewTree()
	i := tree.AddIf(ExtraIf{ThenExpr: 3, ElseExpr: NoneNode})
	got := tree.GetIf(i)
	if got.ThenExpr != 3 || got.ElseExpr != NoneNode {
		t.Fatalf("GetIf = %+v, want {3 NoneNode}", got)
	}
}

func TestAddGetWhile(t *testing.T) {
	tree := NewTree()
	i := tree.AddWhile(ExtraWhile{ContExpr: NoneNode, ThenExpr: 4, ElseExpr: 5})
	got := tree.GetWhile(i)
	if got.ThenExpr != 4 || got.ElseExpr != 5 || got.ContExpr != NoneNode {
		t.Fatalf("GetWhile = %+v, want {NoneNode 4 5}", got)
	}
}

func TestAddGetFnProto(t *testing.T) {
	tree := NewTree()
	a := tree.AddNode(Node{Tag: IdentifierTag})
	b := tree.AddNode(Node{Tag: IdentifierTag})
	r := tree.AddExtraRange([]Index{a, b})
	i := tree.AddFnProto(ExtraFnProto{
		ParamsStart: r.Start, ParamsEnd: r.End,
		Align: NoneNode, Addrspace: NoneNode, Section: NoneNode, Callconv: NoneNode,
	})
	got := tree.GetFnProto(i)
	params := tree.FnProtoParams(got)
	if len(params) != 2 || params[0] != a || params[1] != b {
		t.Fatalf("FnProtoParams = %v, want [%d %d]", params, a, b)
	}
}

func TestDestructureLhsRoundTrip(t *testing.T) {
	tree := NewTree()
	a := tree.AddNode(Node{Tag: IdentifierTag})
	b := tree.AddNode(Node{Tag: IdentifierTag})
	c := tree.AddNode(Node{Tag: IdentifierTag})
	start := tree.AddDestructureLhs([]Index{a, b, c})

	got := tree.GetDestructureLhs(start)
	want := []Index{a, b, c}
	if len(got) != len(want) {
		t.Fatalf("GetDestructureLhs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetDestructureLhs[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPackUnpackForBits(t *testing.T) {
	cases := []struct {
		inputs  uint32
		hasElse bool
	}{
		{0, false},
		{1, true},
		{5, false},
		{0x7fffffff, true},
	}
	for _, c := range cases {
		word := PackForBits(c.inputs, c.hasElse)
		gotInputs, gotHasElse := UnpackForBits(word)
		if gotInputs != c.inputs || gotHasElse != c.hasElse {
			t.Fatalf("PackForBits(%d,%v) round-trip = (%d,%v)", c.inputs, c.hasElse, gotInputs, gotHasElse)
		}
	}
}
