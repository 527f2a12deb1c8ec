package dist

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode holds canonical encoding options for deterministic output,
// so two peers that build the same chunk set produce byte-identical wire
// messages.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalChunk serializes a Chunk to CBOR bytes.
func MarshalChunk(c *Chunk) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// UnmarshalChunk deserializes a Chunk from CBOR bytes.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var c Chunk
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("dist: unmarshal chunk: %w", err)
	}
	return &c, nil
}

// MarshalAnnouncement serializes a SyncAnnouncement to CBOR bytes.
func MarshalAnnouncement(a *SyncAnnouncement) ([]byte, error) {
	return cborEncMode.Marshal(a)
}

// UnmarshalAnnouncement deserializes a SyncAnnouncement from CBOR bytes.
func UnmarshalAnnouncement(data []byte) (*SyncAnnouncement, error) {
	var a SyncAnnouncement
	if err := cbor.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("dist: unmarshal announcement: %w", err)
	}
	return &a, nil
}

// MarshalSyncRequest serializes a SyncRequest to CBOR bytes.
func MarshalSyncRequest(r *SyncRequest) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalSyncRequest deserializes a SyncRequest from CBOR bytes.
func UnmarshalSyncRequest(data []byte) (*SyncRequest, error) {
	var r SyncRequest
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("dist: unmarshal sync request: %w", err)
	}
	return &r, nil
}

// MarshalSyncResponse serializes a SyncResponse to CBOR bytes.
func MarshalSyncResponse(r *SyncResponse) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalSyncResponse deserializes a SyncResponse from CBOR bytes.
func UnmarshalSyncResponse(data []byte) (*SyncResponse, error) {
	var r SyncResponse
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("dist: unmarshal sync response: %w", err)
	}
	return &r, nil
}

// MarshalAnnounceResponse serializes an AnnounceResponse to CBOR bytes.
func MarshalAnnounceResponse(r *AnnounceResponse) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// UnmarshalAnnounceResponse deserializes an AnnounceResponse from CBOR bytes.
func UnmarshalAnnounceResponse(data []byte) (*AnnounceResponse, error) {
	var r AnnounceResponse
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("dist: unmarshal announce response: %w", err)
	}
	return &r, nil
}

// MarshalFlagManifest serializes a FlagManifest to CBOR bytes.
func MarshalFlagManifest(m *FlagManifest) ([]byte, error) {
	return cborEncMode.Marshal(m)
}

// UnmarshalFlagManifest deserializes a FlagManifest from CBOR bytes.
func UnmarshalFlagManifest(data []byte) (*FlagManifest, error) {
	var m FlagManifest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("dist: unmarshal flag manifest: %w", err)
	}
	return &m, nil
}

// VerifyChunkSymbol recomputes a symbol chunk's hash from its content and
// verifies it matches the declared Hash.
func VerifyChunkSymbol(c *Chunk) error {
	if c.Type != ChunkSymbol {
		return fmt.Errorf("dist: cannot verify non-symbol chunk (type=%d)", c.Type)
	}
	computed := hashSymbol(c.Name, c.Flags, c.VMAddrOffset)
	if computed != c.Hash {
		return fmt.Errorf("dist: hash mismatch for %q: declared %x, computed %x", c.Name, c.Hash, computed)
	}
	return nil
}

// VerifyChunkModule verifies that a module chunk's declared dependency
// hashes (symbol hashes) are all present in have.
func VerifyChunkModule(c *Chunk, have map[[32]byte]bool) error {
	if c.Type != ChunkModule {
		return fmt.Errorf("dist: cannot verify non-module chunk (type=%d)", c.Type)
	}
	for _, dep := range c.Dependencies {
		if !have[dep] {
			return fmt.Errorf("dist: module chunk %q missing dependency %x", c.Name, dep)
		}
	}
	return nil
}
