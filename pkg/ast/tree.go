package ast

// Tree is the AST produced by a single parse: the node arena, the extra
// u32 arena, and the diagnostics accumulated along the way. Both arenas
// are append-only for the lifetime of a parse — nothing is ever deleted,
// only unreserved (see Tree.UnreservePastEnd) — so an Index handed out
// earlier always refers to a live node.
type Tree struct {
	Nodes   []Node
	Extra   []uint32
	Diags   []Diagnostic

	// scratch is a stack used while parsing comma/semicolon-separated
	// lists: productions push node indices as they parse list elements,
	// then either pop them into a two-slot Data payload (short lists) or
	// commit them as an ExtraRange (longer lists). It always returns to
	// its pre-call length before a production returns.
	scratch []Index
}

// NewTree allocates an empty tree with node 0 reserved for the root, as
// spec.md §3 requires ("The root node occupies index 0").
func NewTree() *Tree {
	t := &Tree{}
	t.Nodes = append(t.Nodes, Node{Tag: Root})
	return t
}

// AddNode appends a fully-formed node and returns its index.
func (t *Tree) AddNode(n Node) Index {
	t.Nodes = append(t.Nodes, n)
	return Index(len(t.Nodes) - 1)
}

// ReserveNode appends a zero-value placeholder and returns its index, for
// productions that must know a node's own index before they can compute
// its Data (e.g. a local var decl, which the parser reserves before it
// parses the type and init expressions, so the decl precedes them in
// index order).
func (t *Tree) ReserveNode() Index {
	return t.AddNode(Node{})
}

// SetNode overwrites a previously reserved node in place.
func (t *Tree) SetNode(i Index, n Node) {
	t.Nodes[i] = n
}

// UnreservePastEnd discards a reservation if it is still the last node in
// the arena (nothing was appended after it), shrinking the arena; if other
// nodes were appended in the meantime the reservation cannot be safely
// removed without invalidating their indices, so it is rewritten in place
// as an UnreachableLiteral placeholder instead. Both outcomes leave every
// live Index referring to a real node, satisfying spec.md §8 invariant 2.
// Unreserving twice for the same index is a no-op the second time: a
// shrunk tail index is past the end and is ignored, and a rewritten one
// is already a placeholder.
func (t *Tree) UnreservePastEnd(i Index) {
	if int(i) >= len(t.Nodes) {
		return
	}
	if int(i) == len(t.Nodes)-1 {
		t.Nodes = t.Nodes[:i]
		return
	}
	t.Nodes[i] = Node{Tag: UnreachableLiteral}
}

// AddExtra appends a flat list of u32 words (a packed struct's fields, in
// declaration order) and returns the index of the first word.
func (t *Tree) AddExtra(words ...uint32) uint32 {
	start := uint32(len(t.Extra))
	t.Extra = append(t.Extra, words...)
	return start
}

// AddExtraRange appends a list of node indices and returns the SubRange
// spanning them.
func (t *Tree) AddExtraRange(nodes []Index) SubRange {
	start := uint32(len(t.Extra))
	for _, n := range nodes {
		t.Extra = append(t.Extra, uint32(n))
	}
	return SubRange{Start: start, End: uint32(len(t.Extra))}
}

// ExtraRangeNodes reads back the node indices spanned by a SubRange.
func (t *Tree) ExtraRangeNodes(r SubRange) []Index {
	out := make([]Index, 0, r.End-r.Start)
	for _, w := range t.Extra[r.Start:r.End] {
		out = append(out, Index(w))
	}
	return out
}

// --- scratch stack, used during list parsing ---

// ScratchTop marks the current top of the scratch stack; a production
// records this before pushing its list items, then passes it back to
// ScratchSlice/CommitScratch to know where its own items begin.
func (t *Tree) ScratchTop() int {
	return len(t.scratch)
}

// ScratchPush pushes a node index onto the scratch stack.
func (t *Tree) ScratchPush(i Index) {
	t.scratch = append(t.scratch, i)
}

// ScratchSlice returns the items pushed since mark, without popping them.
func (t *Tree) ScratchSlice(mark int) []Index {
	return t.scratch[mark:]
}

// CommitScratch moves the items pushed since mark into the extra arena as
// a SubRange and pops them off the scratch stack.
func (t *Tree) CommitScratch(mark int) SubRange {
	items := t.scratch[mark:]
	r := t.AddExtraRange(items)
	t.scratch = t.scratch[:mark]
	return r
}

// DropScratch pops the items pushed since mark without committing them
// (used when a production discovers it needs a different packing, e.g.
// falling back from an *_two shape it no longer fits).
func (t *Tree) DropScratch(mark int) {
	t.scratch = t.scratch[:mark]
}
