package dist

import (
	"testing"

	"github.com/kestrel-lang/kestrel/pkg/exporttrie"
)

func TestChunksFromTrieRoundTripsIntoMerge(t *testing.T) {
	src := exporttrie.New()
	src.Put("_main", 0, 0x1000)
	src.Put("__mh_execute_header", 0, 0)

	chunks := ChunksFromTrie(src)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 symbol chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if err := VerifyChunkSymbol(&c); err != nil {
			t.Fatalf("VerifyChunkSymbol: %v", err)
		}
	}

	dst := exporttrie.New()
	MergeIntoTrie(dst, chunks)
	dst.Finalize()
	src.Finalize()

	got, err := dst.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want, err := src.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("merged trie diverged from source trie")
	}
}

func TestFlagPolicyRejectsUnsupportedBits(t *testing.T) {
	p := NewPermissivePolicy()
	if err := p.Check(&FlagManifest{UnionFlags: 0x08}); err == nil {
		t.Fatalf("expected reexport bit to be rejected even by a permissive policy")
	}
}

func TestFlagPolicyRestricted(t *testing.T) {
	p := NewRestrictedPolicy(0x04)
	if err := p.Check(&FlagManifest{UnionFlags: 0x04}); err != nil {
		t.Fatalf("expected allowed bit to pass: %v", err)
	}
	if err := p.Check(&FlagManifest{UnionFlags: 0x01}); err == nil {
		t.Fatalf("expected bit outside allowed set to be rejected")
	}
}

func TestVerifyChunkModuleMissingDependency(t *testing.T) {
	c := ModuleToChunk("mymodule", [][32]byte{{1, 2, 3}})
	if err := VerifyChunkModule(&c, map[[32]byte]bool{}); err == nil {
		t.Fatalf("expected missing dependency to fail verification")
	}
	if err := VerifyChunkModule(&c, map[[32]byte]bool{c.Dependencies[0]: true}); err != nil {
		t.Fatalf("expected present dependency to pass: %v", err)
	}
}

func TestPeerStoreBansAfterThreshold(t *testing.T) {
	ps := NewPeerStore()
	for i := 0; i < defaultBanThreshold; i++ {
		ps.RecordHashMismatch("peer-a")
	}
	if !ps.IsBanned("peer-a") {
		t.Fatalf("expected peer to be banned after %d mismatches", defaultBanThreshold)
	}
	if ps.IsBanned("peer-b") {
		t.Fatalf("unrelated peer should not be banned")
	}
}
