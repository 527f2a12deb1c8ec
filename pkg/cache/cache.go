// Package cache stores CBOR-encoded parse results keyed by source content
// hash, so a file whose bytes haven't changed since the last parse never
// needs to be re-tokenized and re-parsed.
package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/kestrel-lang/kestrel/pkg/ast"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cache: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Entry is the cached artifact for one source file: its tree plus enough
// of the token stream to re-render diagnostics without re-lexing.
type Entry struct {
	Tree        *ast.Tree
	TokenTags   []uint8
	TokenStarts []uint32
}

// Key derives a content-addressed cache key from source bytes.
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return fmt.Sprintf("%x", sum)
}

// Marshal serializes an Entry to CBOR bytes.
func Marshal(e *Entry) ([]byte, error) {
	data, err := cborEncMode.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("cache: marshal entry: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes an Entry from CBOR bytes.
func Unmarshal(data []byte) (*Entry, error) {
	var e Entry
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("cache: unmarshal entry: %w", err)
	}
	return &e, nil
}

// Store is a directory of CBOR-encoded Entry files, one per content hash.
type Store struct {
	Dir string
}

// Open returns a Store rooted at dir, creating dir if it doesn't exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, key+".cbor")
}

// Get loads the cached Entry for key, or (nil, nil) if absent.
func (s *Store) Get(key string) (*Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache: read %s: %w", key, err)
	}
	e, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("cache: load %s: %w", key, err)
	}
	return e, nil
}

// Put stores an Entry under key, replacing any previous value.
func (s *Store) Put(key string, e *Entry) error {
	data, err := Marshal(e)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", key, err)
	}
	return nil
}
