package main

import (
	"testing"

	"github.com/kestrel-lang/kestrel/pkg/exporttrie"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

func TestAddDeclaredNamesTopLevelOnly(t *testing.T) {
	src := []byte(`
fn main() {
    const nested = 1;
}
const top = 2;
`)
	stream := token.Tokenize(src)
	trie := exporttrie.New()
	addDeclaredNames(trie, stream)
	trie.Finalize()

	found := map[string]bool{}
	var walk func(n *exporttrie.Node, prefix string)
	walk = func(n *exporttrie.Node, prefix string) {
		if n.HasExport {
			found[prefix] = true
		}
		for _, e := range n.Edges {
			walk(e.Child, prefix+string(e.Label))
		}
	}
	walk(trie.Root, "")

	if !found["main"] || !found["top"] {
		t.Fatalf("expected top-level names main/top, got %v", found)
	}
	if found["nested"] {
		t.Fatalf("nested decl should not be treated as top-level, got %v", found)
	}
}
