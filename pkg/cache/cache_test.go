package cache

import (
	"testing"

	"github.com/kestrel-lang/kestrel/pkg/ast"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	tree := ast.NewTree()
	tree.AddNode(ast.Node{Tag: ast.IdentifierTag, MainToken: 3})
	tree.Diags = append(tree.Diags, ast.Diagnostic{Tag: 1, Token: 3})

	e := &Entry{
		Tree:        tree,
		TokenTags:   []uint8{1, 2, 3},
		TokenStarts: []uint32{0, 4, 9},
	}

	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Tree.Nodes) != len(tree.Nodes) || len(got.TokenTags) != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestStorePutGet(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	key := Key([]byte("const x = 1;"))
	tree := ast.NewTree()
	entry := &Entry{Tree: tree}

	if err := store.Put(key, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a cached entry")
	}

	missing, err := store.Get(Key([]byte("something else")))
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for an uncached key")
	}
}
