package dist

import (
	"sync"
	"time"
)

const defaultBanThreshold = 3

// PeerReputation tracks the trust level of a single build worker peer.
type PeerReputation struct {
	PeerID          string
	SuccessfulSyncs int
	FailedSyncs     int
	HashMismatches  int
	LastSeen        time.Time
	Banned          bool
}

// PeerStore maintains reputation data for all known peers.
type PeerStore struct {
	mu           sync.RWMutex
	peers        map[string]*PeerReputation
	banThreshold int
}

// NewPeerStore creates a new peer store with default settings.
func NewPeerStore() *PeerStore {
	return &PeerStore{
		peers:        make(map[string]*PeerReputation),
		banThreshold: defaultBanThreshold,
	}
}

func (ps *PeerStore) getOrCreate(peerID string) *PeerReputation {
	p, ok := ps.peers[peerID]
	if !ok {
		p = &PeerReputation{PeerID: peerID}
		ps.peers[peerID] = p
	}
	p.LastSeen = time.Now()
	return p
}

// RecordSuccess records a successful sync with a peer.
func (ps *PeerStore) RecordSuccess(peerID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p := ps.getOrCreate(peerID)
	p.SuccessfulSyncs++
}

// RecordFailure records a failed sync with a peer.
func (ps *PeerStore) RecordFailure(peerID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p := ps.getOrCreate(peerID)
	p.FailedSyncs++
}

// RecordHashMismatch records a chunk whose content didn't hash to its
// declared Hash. The peer is automatically banned after reaching the
// threshold (default: 3), since a peer that repeatedly sends bad chunks
// is either corrupt or malicious and either way not worth continuing to
// merge from.
func (ps *PeerStore) RecordHashMismatch(peerID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p := ps.getOrCreate(peerID)
	p.HashMismatches++
	if p.HashMismatches >= ps.banThreshold {
		p.Banned = true
	}
}

// IsBanned returns true if the peer has been banned.
func (ps *PeerStore) IsBanned(peerID string) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.peers[peerID]
	if !ok {
		return false
	}
	return p.Banned
}

// GetReputation returns a copy of the peer's reputation data. Returns nil
// if the peer is unknown.
func (ps *PeerStore) GetReputation(peerID string) *PeerReputation {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.peers[peerID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// PeerCount returns the number of known peers.
func (ps *PeerStore) PeerCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.peers)
}
