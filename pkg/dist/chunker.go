package dist

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/kestrel-lang/kestrel/pkg/exporttrie"
)

// SymbolToChunk creates a Chunk for one export-trie terminal node.
func SymbolToChunk(name string, flags, vmAddrOffset uint64) Chunk {
	return Chunk{
		Hash:         hashSymbol(name, flags, vmAddrOffset),
		Type:         ChunkSymbol,
		Name:         name,
		Flags:        flags,
		VMAddrOffset: vmAddrOffset,
	}
}

// ModuleToChunk creates a Chunk grouping the symbol hashes contributed by
// one source file under namespace.
func ModuleToChunk(namespace string, symbolHashes [][32]byte) Chunk {
	deps := make([][32]byte, len(symbolHashes))
	copy(deps, symbolHashes)
	return Chunk{
		Hash:         hashModule(namespace, symbolHashes),
		Type:         ChunkModule,
		Name:         namespace,
		Dependencies: deps,
	}
}

func hashSymbol(name string, flags, vmAddrOffset uint64) [32]byte {
	h := sha256.New()
	h.Write([]byte(name))
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], flags)
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], vmAddrOffset)
	h.Write(buf[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashModule(namespace string, deps [][32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(namespace))
	for _, d := range deps {
		h.Write(d[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ChunksFromTrie walks a finalized trie and emits one ChunkSymbol per
// terminal node, keyed by its fully reconstructed symbol name.
func ChunksFromTrie(t *exporttrie.Trie) []Chunk {
	var chunks []Chunk
	var walk func(n *exporttrie.Node, prefix []byte)
	walk = func(n *exporttrie.Node, prefix []byte) {
		if n.HasExport {
			chunks = append(chunks, SymbolToChunk(string(prefix), n.Flags, n.VMAddrOffset))
		}
		for _, e := range n.Edges {
			walk(e.Child, append(append([]byte(nil), prefix...), e.Label...))
		}
	}
	if t.Root != nil {
		walk(t.Root, nil)
	}
	return chunks
}

// MergeIntoTrie applies a set of symbol chunks onto a trie, in effect
// replaying a peer's partial compile results into the local canonical
// trie. Module chunks are structural bookkeeping only; their dependency
// hashes are not cross-checked here since merge is append-only and a
// missing dependency just means that chunk hasn't arrived yet.
func MergeIntoTrie(t *exporttrie.Trie, chunks []Chunk) {
	for _, c := range chunks {
		if c.Type != ChunkSymbol {
			continue
		}
		t.Put(c.Name, c.Flags, c.VMAddrOffset)
	}
}

// BuildFlagManifest gathers the union of export flags used by a set of
// chunks, for a SyncAnnouncement's FlagManifest field.
func BuildFlagManifest(chunks []Chunk) *FlagManifest {
	var union uint64
	for _, c := range chunks {
		union |= c.Flags
	}
	if union == 0 {
		return nil
	}
	return &FlagManifest{UnionFlags: union}
}
