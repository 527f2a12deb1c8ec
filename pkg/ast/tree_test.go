package ast

import "testing"

func TestNewTreeReservesRootAtIndexZero(t *testing.T) {
	tree := NewTree()
	if len(tree.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(tree.Nodes))
	}
	if tree.Nodes[0].Tag != Root {
		t.Fatalf("Nodes[0].Tag = %v, want Root", tree.Nodes[0].Tag)
	}
}

func TestAddNodeReturnsSequentialIndices(t *testing.T) {
	tree := NewTree()
	a := tree.AddNode(Node{Tag: IdentifierTag, MainToken: 1})
	b := tree.AddNode(Node{Tag: NumberLiteral, MainToken: 2})
	if a != 1 || b != 2 {
		t.Fatalf("indices = (%d,%d), want (1,2)", a, b)
	}
}

func TestReserveNodeThenSetNode(t *testing.T) {
	tree := NewTree()
	idx := tree.ReserveNode()
	tree.SetNode(idx, Node{Tag: FnDecl, Data: Data{LHS: 5, RHS: 6}})
	if tree.Nodes[idx].Tag != FnDecl {
		t.Fatalf("Nodes[idx].Tag = %v, want FnDecl", tree.Nodes[idx].Tag)
	}
}

func TestUnreservePastEndShrinksTailReservation(t *testing.T) {
	tree := NewTree()
	idx := tree.ReserveNode()
	before := len(tree.Nodes)
	tree.UnreservePastEnd(idx)
	if len(tree.Nodes) != before-1 {
		t.Fatalf("len(Nodes) = %d, want %d (tail reservation should shrink)", len(tree.Nodes), before-1)
	}
}

func TestUnreservePastEndRewritesNonTailReservation(t *testing.T) {
	tree := NewTree()
	idx := tree.ReserveNode()
	tree.AddNode(Node{Tag: IdentifierTag}) // idx is no longer the tail
	tree.UnreservePastEnd(idx)
	if tree.Nodes[idx].Tag != UnreachableLiteral {
		t.Fatalf("Nodes[idx].Tag = %v, want UnreachableLiteral placeholder", tree.Nodes[idx].Tag)
	}
	// Every live index still refers to a real node.
	if int(idx) >= len(tree.Nodes) {
		t.Fatalf("idx %d out of range after unreserve", idx)
	}
}

func TestUnreservePastEndIsIdempotent(t *testing.T) {
	tree := NewTree()
	idx := tree.ReserveNode()
	tree.AddNode(Node{Tag: IdentifierTag})
	tree.UnreservePastEnd(idx)
	tree.UnreservePastEnd(idx) // second call is a no-op
	if tree.Nodes[idx].Tag != UnreachableLiteral {
		t.Fatalf("Nodes[idx].Tag = %v, want UnreachableLiteral after repeated unreserve", tree.Nodes[idx].Tag)
	}
}

func TestAddExtraRangeAndExtraRangeNodes(t *testing.T) {
	tree := NewTree()
	a := tree.AddNode(Node{Tag: IdentifierTag})
	b := tree.AddNode(Node{Tag: NumberLiteral})
	r := tree.AddExtraRange([]Index{a, b})

	got := tree.ExtraRangeNodes(r)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("ExtraRangeNodes = %v, want [%d %d]", got, a, b)
	}
}

func TestScratchPushSliceAndCommit(t *testing.T) {
	tree := NewTree()
	mark := tree.ScratchTop()
	a := tree.AddNode(Node{Tag: IdentifierTag})
	b := tree.AddNode(Node{Tag: NumberLiteral})
	tree.ScratchPush(a)
	tree.ScratchPush(b)

	if got := tree.ScratchSlice(mark); len(got) != 2 {
		t.Fatalf("ScratchSlice = %v, want 2 items", got)
	}

	r := tree.CommitScratch(mark)
	if tree.ScratchTop() != mark {
		t.Fatalf("ScratchTop() = %d after commit, want %d", tree.ScratchTop(), mark)
	}
	got := tree.ExtraRangeNodes(r)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("committed range = %v, want [%d %d]", got, a, b)
	}
}

func TestScratchDropDiscardsWithoutCommitting(t *testing.T) {
	tree := NewTree()
	mark := tree.ScratchTop()
	tree.ScratchPush(tree.AddNode(Node{Tag: IdentifierTag}))
	extraLenBefore := len(tree.Extra)

	tree.DropScratch(mark)

	if tree.ScratchTop() != mark {
		t.Fatalf("ScratchTop() = %d after drop, want %d", tree.ScratchTop(), mark)
	}
	if len(tree.Extra) != extraLenBefore {
		t.Fatalf("Extra grew after DropScratch, len = %d, want %d", len(tree.Extra), extraLenBefore)
	}
}
