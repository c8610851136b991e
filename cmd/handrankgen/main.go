// Command handrankgen regenerates the basic/flush hand-rank lookup tables
// consumed by pkg/handrank. In a real deployment this is a build-time step
// external to the coordinator (spec §1); it is kept as a small standalone
// binary here rather than folded into server startup.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vctt94/pokerbisonrelay/pkg/handrank"
)

func main() {
	outDir := flag.String("out", "handranktables", "directory to write basic.json and flush.json into")
	flag.Parse()

	basic := handrank.GenerateBasicHands()
	flush := handrank.GenerateFlushHands()
	handrank.SortByPrimeProduct(basic)
	handrank.SortByPrimeProduct(flush)

	if len(basic) != 6175 {
		fmt.Fprintf(os.Stderr, "handrankgen: expected 6175 basic entries, got %d\n", len(basic))
		os.Exit(1)
	}
	if len(flush) != 1287 {
		fmt.Fprintf(os.Stderr, "handrankgen: expected 1287 flush entries, got %d\n", len(flush))
		os.Exit(1)
	}

	basicPath := filepath.Join(*outDir, "basic.json")
	flushPath := filepath.Join(*outDir, "flush.json")
	if err := handrank.SaveTable(basicPath, basic); err != nil {
		fmt.Fprintf(os.Stderr, "handrankgen: %v\n", err)
		os.Exit(1)
	}
	if err := handrank.SaveTable(flushPath, flush); err != nil {
		fmt.Fprintf(os.Stderr, "handrankgen: %v\n", err)
		os.Exit(1)
	}

	basicTree, err := handrank.BuildMerkleTree(basic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "handrankgen: build basic tree: %v\n", err)
		os.Exit(1)
	}
	flushTree, err := handrank.BuildMerkleTree(flush)
	if err != nil {
		fmt.Fprintf(os.Stderr, "handrankgen: build flush tree: %v\n", err)
		os.Exit(1)
	}

	basicRoot := basicTree.Root()
	flushRoot := flushTree.Root()
	fmt.Printf("wrote %s (%d entries), root=%s\n", basicPath, len(basic), basicRoot.String())
	fmt.Printf("wrote %s (%d entries), root=%s\n", flushPath, len(flush), flushRoot.String())
}
