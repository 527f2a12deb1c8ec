// Command kestrel parses source files, reports diagnostics, optionally
// builds an export trie over top-level declarations, and can run as a
// Language Server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kestrel-lang/kestrel/pkg/ast"
	"github.com/kestrel-lang/kestrel/pkg/cache"
	"github.com/kestrel-lang/kestrel/pkg/config"
	"github.com/kestrel-lang/kestrel/pkg/exporttrie"
	"github.com/kestrel-lang/kestrel/pkg/lspserver"
	"github.com/kestrel-lang/kestrel/pkg/parser"
	"github.com/kestrel-lang/kestrel/pkg/token"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	serveMode := flag.Bool("serve", false, "Start the language server on stdio")
	trieOut := flag.String("trie-out", "", "Write an export trie over top-level declarations to this path")
	cacheDir := flag.String("cache-dir", "", "Reuse cached parse results from this directory")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kestrel [options] [paths...]\n\n")
		fmt.Fprintf(os.Stderr, "Parses the given source files and reports diagnostics.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  kestrel a.kes b.kes              # parse and report diagnostics\n")
		fmt.Fprintf(os.Stderr, "  kestrel --trie-out out.trie a.kes # also emit an export trie\n")
		fmt.Fprintf(os.Stderr, "  kestrel --serve                  # run as a language server\n")
	}
	flag.Parse()

	if *serveMode {
		srv := lspserver.New()
		if err := srv.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "kestrel: language server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "kestrel: loading kestrel.toml: %v\n", err)
		os.Exit(1)
	}
	if *verbose && cfg != nil {
		fmt.Fprintf(os.Stderr, "kestrel: loaded config from %s\n", cfg.Dir)
	}

	var store *cache.Store
	if *cacheDir != "" {
		store, err = cache.Open(*cacheDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "kestrel: %v\n", err)
			os.Exit(1)
		}
	}

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	trie := exporttrie.New()
	hadErrors := false

	for _, path := range paths {
		diagCount, err := processFile(path, store, trie, *verbose)
		if err != nil {
			fmt.Fprintf(os.Stderr, "kestrel: %s: %v\n", path, err)
			hadErrors = true
			continue
		}
		if diagCount > 0 {
			hadErrors = true
		}
	}

	if *trieOut != "" {
		trie.Finalize()
		data, err := trie.Write()
		if err != nil {
			fmt.Fprintf(os.Stderr, "kestrel: building export trie: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*trieOut, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "kestrel: writing %s: %v\n", *trieOut, err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "kestrel: wrote %d bytes to %s\n", len(data), *trieOut)
		}
	}

	if hadErrors {
		os.Exit(1)
	}
}

// processFile parses one source file, prints its diagnostics, and feeds
// its top-level declaration names into trie. It returns the number of
// diagnostics reported.
func processFile(path string, store *cache.Store, trie *exporttrie.Trie, verbose bool) (int, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	stream := token.Tokenize(source)

	var key string
	if store != nil {
		key = cache.Key(source)
		if entry, err := store.Get(key); err == nil && entry != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "kestrel: %s: cache hit\n", path)
			}
			reportDiagnostics(path, entry.Tree, entry.TokenStarts)
			addDeclaredNames(trie, stream)
			return len(entry.Tree.Diags), nil
		}
	}

	tree := parser.ParseRoot(stream)

	tags := make([]uint8, len(stream.Tokens))
	starts := make([]uint32, len(stream.Tokens))
	for i, t := range stream.Tokens {
		tags[i] = uint8(t.Tag)
		starts[i] = t.Start
	}
	if store != nil {
		_ = store.Put(key, &cache.Entry{Tree: tree, TokenTags: tags, TokenStarts: starts})
	}

	reportDiagnostics(path, tree, starts)
	addDeclaredNames(trie, stream)
	return len(tree.Diags), nil
}

func reportDiagnostics(path string, tree *ast.Tree, tokenStarts []uint32) {
	for _, d := range tree.Diags {
		offset := uint32(0)
		if int(d.Token) < len(tokenStarts) {
			offset = tokenStarts[d.Token]
		}
		fmt.Fprintf(os.Stderr, "%s:%d: %s\n", path, offset, d.Tag)
	}
}

// addDeclaredNames scans a token stream for top-level `fn`/`const`/`var`
// keywords followed by an identifier and feeds each name into trie, in
// lieu of a dedicated export-visibility grammar annotation.
func addDeclaredNames(trie *exporttrie.Trie, stream *token.Stream) {
	depth := 0
	for i := 0; i < len(stream.Tokens); i++ {
		tag := stream.Tokens[i].Tag
		switch tag {
		case token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.RBrace, token.RParen, token.RBracket:
			depth--
		}
		if depth != 0 {
			continue
		}
		if tag != token.KeywordFn && tag != token.KeywordConst && tag != token.KeywordVar {
			continue
		}
		if i+1 >= len(stream.Tokens) || stream.Tokens[i+1].Tag != token.Identifier {
			continue
		}
		name := strings.TrimSpace(string(stream.Lexeme(i + 1)))
		if name == "" {
			continue
		}
		trie.Put(name, 0, uint64(stream.Tokens[i+1].Start))
	}
}
