package exporttrie

import (
	"bytes"
	"testing"
)

func TestPutReinsertDoesNotGrowNodeCount(t *testing.T) {
	tr := New()
	tr.Put("_main", 0, 0x1000)
	tr.Finalize()
	before := len(tr.Nodes)

	tr.Put("_main", 0, 0x2000)
	tr.Finalize()
	after := len(tr.Nodes)

	if before != after {
		t.Fatalf("node count changed on re-insert: %d -> %d", before, after)
	}
	if tr.Root.Edges[0].Child.VMAddrOffset != 0x2000 {
		t.Fatalf("re-insert did not update payload")
	}
}

func TestPutSplicesSharedPrefix(t *testing.T) {
	tr := New()
	tr.Put("__mh_execute_header", 0, 0)
	tr.Put("_main", 0, 0x1000)
	tr.Finalize()

	if len(tr.Root.Edges) != 1 {
		t.Fatalf("expected a single edge off root sharing the '_' prefix, got %d", len(tr.Root.Edges))
	}
	mid := tr.Root.Edges[0].Child
	if mid.HasExport {
		t.Fatalf("intermediate splice node should not be terminal")
	}
	if len(mid.Edges) != 2 {
		t.Fatalf("expected two edges off the spliced node, got %d", len(mid.Edges))
	}
}

func TestWriteRequiresFinalize(t *testing.T) {
	tr := New()
	tr.Put("_main", 0, 0x1000)
	if _, err := tr.Write(); err == nil {
		t.Fatalf("expected Write to reject a dirty trie")
	}
}

func TestFinalizeIsStableAfterConvergence(t *testing.T) {
	tr := New()
	tr.Put("__mh_execute_header", 0, 0)
	tr.Put("_main", 0, 0x1000)
	tr.Finalize()
	first, err := tr.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	tr.Finalize()
	second, err := tr.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("re-running Finalize on a converged trie changed the encoding")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	tr := New()
	tr.Put("__mh_execute_header", 0, 0)
	tr.Put("_main", 0, 0x1000)
	tr.Put("_main_helper", FlagWeakDefinition, 0x1040)
	tr.Finalize()

	encoded, err := tr.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(encoded)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	wantSyms := map[string]struct {
		flags, vmaddr uint64
	}{
		"__mh_execute_header": {0, 0},
		"_main":                {0, 0x1000},
		"_main_helper":         {FlagWeakDefinition, 0x1040},
	}
	found := collectTerminals(got.Root, nil, map[string][2]uint64{})
	if len(found) != len(wantSyms) {
		t.Fatalf("round trip lost or gained symbols: got %v", found)
	}
	for sym, want := range wantSyms {
		got, ok := found[sym]
		if !ok {
			t.Fatalf("missing symbol %q after round trip", sym)
		}
		if got[0] != want.flags || got[1] != want.vmaddr {
			t.Fatalf("symbol %q payload mismatch: got flags=%#x vmaddr=%#x, want flags=%#x vmaddr=%#x",
				sym, got[0], got[1], want.flags, want.vmaddr)
		}
	}
}

// TestFinalizeGoldenVector reproduces the worked example from spec.md §8
// invariant 5: inserting __mh_execute_header@0x0 and _main@0x1000 must
// finalize to this exact byte stream.
func TestFinalizeGoldenVector(t *testing.T) {
	tr := New()
	tr.Put("__mh_execute_header", 0, 0x0)
	tr.Put("_main", 0, 0x1000)
	tr.Finalize()

	got, err := tr.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []byte{
		0x00, 0x01, 0x5F, 0x00, 0x05, 0x00, 0x02, 0x5F, 0x6D, 0x68, 0x5F, 0x65,
		0x78, 0x65, 0x63, 0x75, 0x74, 0x65, 0x5F, 0x68, 0x65, 0x61, 0x64, 0x65,
		0x72, 0x00, 0x21, 0x6D, 0x61, 0x69, 0x6E, 0x00, 0x25, 0x02, 0x00, 0x00,
		0x00, 0x03, 0x00, 0x80, 0x20, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("golden mismatch:\n got  % X\n want % X", got, want)
	}
}

func TestReadRejectsReexportFlag(t *testing.T) {
	tr := New()
	tr.Put("_reexported", FlagReexport, 0)
	tr.Finalize()
	encoded, err := tr.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Read(encoded); err == nil {
		t.Fatalf("expected Read to reject an unsupported reexport flag")
	}
}

func collectTerminals(n *Node, prefix []byte, out map[string][2]uint64) map[string][2]uint64 {
	if n.HasExport {
		out[string(prefix)] = [2]uint64{n.Flags, n.VMAddrOffset}
	}
	for _, e := range n.Edges {
		collectTerminals(e.Child, append(append([]byte(nil), prefix...), e.Label...), out)
	}
	return out
}
