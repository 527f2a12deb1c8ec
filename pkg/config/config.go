// Package config loads kestrel.toml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents a kestrel.toml project configuration.
type Config struct {
	Project Project    `toml:"project"`
	Source  Source     `toml:"source"`
	Zon     Zon        `toml:"zon"`
	Trie    TrieOutput `toml:"trie"`
	Grammar string     `toml:"grammar"`

	// Dir is the directory containing the kestrel.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// Zon configures the restricted object-notation literal subset.
//
// StrictLiterals is read but never enforced by pkg/parser: the grammar
// parses zon's literal-only subset the same as any other expression.
// TODO: wire this into the parser once the restricted grammar is specified.
type Zon struct {
	StrictLiterals bool `toml:"strict-literals"`
}

// TrieOutput configures export-trie codec behavior.
type TrieOutput struct {
	OutputPath       string `toml:"output"`
	RejectReexport   bool   `toml:"reject-reexport"`
}

// Load parses a kestrel.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "kestrel.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: cannot resolve path %s: %w", dir, err)
	}

	if len(c.Source.Dirs) == 0 {
		c.Source.Dirs = []string{"src"}
	}
	if c.Trie.OutputPath == "" {
		c.Trie.OutputPath = "exports.trie"
	}
	// Always reject unsupported export flags, whatever the file sets for
	// reject-reexport, rather than silently accepting a trie we can't
	// round-trip.
	c.Trie.RejectReexport = true

	if c.Grammar != "" {
		if err := validateGrammarExtension(c.Grammar); err != nil {
			return nil, fmt.Errorf("config: invalid [grammar] block: %w", err)
		}
	}

	return &c, nil
}

// FindAndLoad walks up from startDir to find a kestrel.toml file, then
// loads and returns the config. Returns nil if no config file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "kestrel.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (c *Config) SourceDirPaths() []string {
	var paths []string
	for _, d := range c.Source.Dirs {
		paths = append(paths, filepath.Join(c.Dir, d))
	}
	return paths
}

// TrieOutputPath returns the absolute path to write the export trie to.
func (c *Config) TrieOutputPath() string {
	return filepath.Join(c.Dir, c.Trie.OutputPath)
}
