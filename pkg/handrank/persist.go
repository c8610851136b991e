package handrank

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// entryJSON is the on-disk shape of one lookup-table row: a decimal
// prime-product string mapping to its integer rank, per spec §6's
// "basic"/"flush" lookup JSON files.
type entryJSON struct {
	PrimeProduct string `json:"prime_product"`
	Rank         int    `json:"rank"`
}

// SaveTable writes a generated entry list to the JSON format the server
// loads at startup. This mirrors what the (out-of-scope, build-time)
// table-generation script is expected to emit; kept here so the repo has a
// concrete way to produce its own fixtures.
func SaveTable(path string, entries []Entry) error {
	rows := make([]entryJSON, len(entries))
	for i, e := range entries {
		rows[i] = entryJSON{PrimeProduct: e.PrimeProduct.String(), Rank: e.Rank}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("handrank: marshal table: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("handrank: create table dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadTable reads a lookup-table JSON file back into entries, tagging each
// with isFlush as declared by the caller (the file format itself does not
// carry it, since the two roots are looked up by filename/config key).
func LoadTable(path string, isFlush bool) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("handrank: read table %s: %w", path, err)
	}
	var rows []entryJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("handrank: unmarshal table %s: %w", path, err)
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		pp, ok := new(big.Int).SetString(r.PrimeProduct, 10)
		if !ok {
			return nil, fmt.Errorf("handrank: invalid prime product %q in %s", r.PrimeProduct, path)
		}
		entries[i] = Entry{PrimeProduct: pp, Rank: r.Rank, IsFlush: isFlush}
	}
	return entries, nil
}

// Config names the two lookup files. It holds no roots: nothing in this
// package compares the built trees' roots against pinned values.
type Config struct {
	BasicTablePath string
	FlushTablePath string
}

// Loaded bundles both tables and their Merkle trees, ready for proof
// verification.
type Loaded struct {
	Basic     *Table
	Flush     *Table
	BasicTree *MerkleTree
	FlushTree *MerkleTree
}

// Load reads both lookup files from cfg, rebuilds their Merkle trees, and
// returns them; the roots are available via BasicTree.Root() and
// FlushTree.Root(). Load does not check them against any pinned root, and
// no code in this module calls Load.
func Load(cfg Config) (*Loaded, error) {
	basicEntries, err := LoadTable(cfg.BasicTablePath, false)
	if err != nil {
		return nil, err
	}
	flushEntries, err := LoadTable(cfg.FlushTablePath, true)
	if err != nil {
		return nil, err
	}

	basicTree, err := BuildMerkleTree(basicEntries)
	if err != nil {
		return nil, fmt.Errorf("handrank: build basic tree: %w", err)
	}
	flushTree, err := BuildMerkleTree(flushEntries)
	if err != nil {
		return nil, fmt.Errorf("handrank: build flush tree: %w", err)
	}

	return &Loaded{
		Basic:     NewTable(basicEntries, false),
		Flush:     NewTable(flushEntries, true),
		BasicTree: basicTree,
		FlushTree: flushTree,
	}, nil
}
