// Package exporttrie implements a Mach-O-style export trie: a labeled-edge
// radix tree over symbol names, laid out to a ULEB128-based byte stream by
// an iterative fixed-point sizing pass (spec.md §4.10–4.12).
package exporttrie

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Export symbol flag bits recognized by the reader/writer. REEXPORT and
// STUB_AND_RESOLVER are deliberately unsupported (spec.md §9 open
// question) and rejected on read.
const (
	FlagWeakDefinition   uint64 = 0x04
	FlagReexport         uint64 = 0x08
	FlagStubAndResolver  uint64 = 0x10
	FlagThreadLocal      uint64 = 0x01
	FlagAbsoluteSymbol   uint64 = 0x02
)

// Node is one trie node: an optional terminal export payload plus a set of
// owned outgoing edges. TrieOffset is populated by Finalize.
type Node struct {
	HasExport    bool
	Flags        uint64
	VMAddrOffset uint64

	Edges []*Edge

	TrieOffset uint32
}

// Edge is a labeled, owned edge to a child node.
type Edge struct {
	Label []byte
	Child *Node
}

// Trie is a radix tree over symbol names, exclusively owning its root and,
// transitively, every node and edge label beneath it.
type Trie struct {
	Root *Node

	// Nodes holds the node list in the order Finalize walked it; empty
	// until the first Finalize call, and only valid until the next Put.
	Nodes []*Node
	Size  uint32

	dirty bool
}

// New returns an empty trie with a single (non-terminal) root node.
func New() *Trie {
	return &Trie{Root: &Node{}, dirty: true}
}

// Put inserts symbol with the given export payload, splicing edges as
// needed (spec.md §4.10). Re-inserting a symbol that already exists in the
// trie overwrites its payload without adding any node.
func (t *Trie) Put(symbol string, flags, vmAddrOffset uint64) {
	t.dirty = true
	t.Root.put([]byte(symbol), flags, vmAddrOffset)
}

func (n *Node) put(label []byte, flags, vmAddrOffset uint64) {
	for _, e := range n.Edges {
		cp := commonPrefixLen(e.Label, label)
		if cp == 0 {
			continue
		}
		if cp == len(e.Label) {
			e.Child.put(label[cp:], flags, vmAddrOffset)
			return
		}

		// Splice: shorten the edge to the shared prefix and re-parent the
		// old child under a fresh intermediate node.
		oldChild, oldLabel := e.Child, e.Label
		mid := &Node{}
		e.Label = append([]byte(nil), oldLabel[:cp]...)
		e.Child = mid
		mid.Edges = append(mid.Edges, &Edge{Label: append([]byte(nil), oldLabel[cp:]...), Child: oldChild})

		rem := label[cp:]
		if len(rem) == 0 {
			mid.HasExport = true
			mid.Flags = flags
			mid.VMAddrOffset = vmAddrOffset
		} else {
			leaf := &Node{HasExport: true, Flags: flags, VMAddrOffset: vmAddrOffset}
			mid.Edges = append(mid.Edges, &Edge{Label: append([]byte(nil), rem...), Child: leaf})
		}
		return
	}

	if len(label) == 0 {
		n.HasExport = true
		n.Flags = flags
		n.VMAddrOffset = vmAddrOffset
		return
	}
	n.Edges = append(n.Edges, &Edge{
		Label: append([]byte(nil), label...),
		Child: &Node{HasExport: true, Flags: flags, VMAddrOffset: vmAddrOffset},
	})
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Finalize assigns a byte offset to every node by iterating the
// size-then-offset computation to a fixed point (spec.md §4.11):
// child offsets feed a node's edge sizes, so a single pass isn't enough
// until sizes stop growing under ULEB128 encoding.
func (t *Trie) Finalize() {
	nodes := bfsOrder(t.Root)
	for {
		changed := false
		offset := uint32(0)
		for _, n := range nodes {
			size := n.serializedSize()
			if n.TrieOffset != offset {
				n.TrieOffset = offset
				changed = true
			}
			offset += size
		}
		if !changed {
			t.Nodes = nodes
			t.Size = offset
			t.dirty = false
			return
		}
	}
}

func bfsOrder(root *Node) []*Node {
	order := []*Node{root}
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range n.Edges {
			order = append(order, e.Child)
			queue = append(queue, e.Child)
		}
	}
	return order
}

func uvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// serializedSize computes this node's encoded byte length given the
// current (possibly stale, mid-fixed-point) TrieOffset of its children.
func (n *Node) serializedSize() uint32 {
	var terminalSize int
	if n.HasExport {
		fs := uvarintSize(n.Flags)
		vs := uvarintSize(n.VMAddrOffset)
		terminalSize = uvarintSize(uint64(fs+vs)) + fs + vs
	} else {
		terminalSize = 1
	}
	size := terminalSize + 1 // edge count byte
	for _, e := range n.Edges {
		size += len(e.Label) + 1 + uvarintSize(uint64(e.Child.TrieOffset))
	}
	return uint32(size)
}

// Write serializes the finalized trie node by node in the breadth-first
// order Finalize laid out (spec.md §4.12).
// It refuses a dirty trie: Put invalidates any previous Finalize, and
// writing stale offsets would silently corrupt the stream.
func (t *Trie) Write() ([]byte, error) {
	if t.dirty || t.Nodes == nil {
		return nil, errors.New("exporttrie: write on a dirty trie; call Finalize first")
	}
	buf := make([]byte, 0, t.Size)
	for _, n := range t.Nodes {
		buf = n.appendEncoded(buf)
	}
	return buf, nil
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func (n *Node) appendEncoded(buf []byte) []byte {
	if n.HasExport {
		fs := uvarintSize(n.Flags)
		vs := uvarintSize(n.VMAddrOffset)
		buf = appendUvarint(buf, uint64(fs+vs))
		buf = appendUvarint(buf, n.Flags)
		buf = appendUvarint(buf, n.VMAddrOffset)
	} else {
		buf = append(buf, 0x00)
	}
	buf = append(buf, byte(len(n.Edges)))
	for _, e := range n.Edges {
		buf = append(buf, e.Label...)
		buf = append(buf, 0x00)
		buf = appendUvarint(buf, uint64(e.Child.TrieOffset))
	}
	return buf
}

// Read parses a serialized trie back into node/edge form by recursive
// descent from offset 0, per spec.md §4.12. Offsets that are visited more
// than once (shared via multiple incoming edges, which this package never
// produces itself but a foreign trie might) resolve to the same *Node.
func Read(data []byte) (*Trie, error) {
	seen := make(map[uint32]*Node)
	root, err := readNode(data, 0, seen)
	if err != nil {
		return nil, fmt.Errorf("exporttrie: read: %w", err)
	}
	return &Trie{Root: root, dirty: false}, nil
}

func readNode(data []byte, offset uint32, seen map[uint32]*Node) (*Node, error) {
	if n, ok := seen[offset]; ok {
		return n, nil
	}
	if int(offset) >= len(data) {
		return nil, fmt.Errorf("node offset %d out of range (len=%d)", offset, len(data))
	}
	n := &Node{TrieOffset: offset}
	seen[offset] = n
	pos := int(offset)

	length, ln := binary.Uvarint(data[pos:])
	if ln <= 0 {
		return nil, errors.New("malformed terminal-info length")
	}
	pos += ln

	if length != 0 {
		flags, fn := binary.Uvarint(data[pos:])
		if fn <= 0 {
			return nil, errors.New("malformed export flags")
		}
		pos += fn
		vmaddr, vn := binary.Uvarint(data[pos:])
		if vn <= 0 {
			return nil, errors.New("malformed vmaddr offset")
		}
		pos += vn
		if flags&FlagReexport != 0 || flags&FlagStubAndResolver != 0 {
			return nil, fmt.Errorf("unsupported export flags %#x (reexport/stub-and-resolver)", flags)
		}
		n.HasExport = true
		n.Flags = flags
		n.VMAddrOffset = vmaddr
	}

	if pos >= len(data) {
		return nil, errors.New("truncated edge count")
	}
	edgeCount := int(data[pos])
	pos++

	for i := 0; i < edgeCount; i++ {
		nul := bytes.IndexByte(data[pos:], 0)
		if nul < 0 {
			return nil, errors.New("unterminated edge label")
		}
		label := append([]byte(nil), data[pos:pos+nul]...)
		pos += nul + 1

		childOffset, cn := binary.Uvarint(data[pos:])
		if cn <= 0 {
			return nil, errors.New("malformed child offset")
		}
		pos += cn

		child, err := readNode(data, uint32(childOffset), seen)
		if err != nil {
			return nil, err
		}
		n.Edges = append(n.Edges, &Edge{Label: label, Child: child})
	}
	return n, nil
}
