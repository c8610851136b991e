package handrank

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vctt94/pokerbisonrelay/pkg/poseidon"
)

// TreeDepth is log2(2^13): leaves are padded to 8192 entries.
const TreeDepth = 13

// NumLeaves is the padded leaf count, 2^13.
const NumLeaves = 1 << TreeDepth

// ErrLeafOutOfRange is returned when a requested leaf index falls outside
// [0, NumLeaves); padding leaves are inside that range.
var ErrLeafOutOfRange = errors.New("handrank: leaf index out of range")

// MerkleTree is a fixed-depth binary tree over leaf hashes H(primeProduct,
// rank, isFlush), built with the Poseidon-2 algebraic hash at every
// internal node, per spec §3.
type MerkleTree struct {
	levels [][]fr.Element // levels[0] = leaves, levels[len-1] = [root]
}

func isFlushElement(isFlush bool) fr.Element {
	var e fr.Element
	if isFlush {
		e.SetOne()
	}
	return e
}

// LeafHash computes H(primeProduct, rank, isFlush) for one table entry.
func LeafHash(e Entry) (fr.Element, error) {
	var primeElem, rankElem fr.Element
	primeElem.SetBigInt(e.PrimeProduct)
	rankElem.SetInt64(int64(e.Rank))
	flushElem := isFlushElement(e.IsFlush)
	return poseidon.Hash(primeElem, rankElem, flushElem)
}

// BuildMerkleTree hashes every entry to a leaf, pads to NumLeaves with the
// zero field element, and hashes pairwise up to a single root.
func BuildMerkleTree(entries []Entry) (*MerkleTree, error) {
	if len(entries) > NumLeaves {
		return nil, errors.New("handrank: too many entries for tree depth")
	}

	leaves := make([]fr.Element, NumLeaves)
	for i, e := range entries {
		h, err := LeafHash(e)
		if err != nil {
			return nil, err
		}
		leaves[i] = h
	}
	// Remaining leaves stay at the zero value (padding), as required.

	tree := &MerkleTree{levels: [][]fr.Element{leaves}}
	current := leaves
	for depth := 0; depth < TreeDepth; depth++ {
		next := make([]fr.Element, len(current)/2)
		for i := 0; i < len(next); i++ {
			h, err := poseidon.Hash(current[2*i], current[2*i+1])
			if err != nil {
				return nil, err
			}
			next[i] = h
		}
		tree.levels = append(tree.levels, next)
		current = next
	}
	return tree, nil
}

// Root returns the tree's root hash.
func (t *MerkleTree) Root() fr.Element {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof is a sibling path from a leaf to the root.
type Proof struct {
	LeafIndex int
	Siblings  []fr.Element // bottom (leaf's sibling) to top
}

// ProveLeaf returns the sibling path for the given leaf index.
func (t *MerkleTree) ProveLeaf(index int) (Proof, error) {
	if index < 0 || index >= NumLeaves {
		return Proof{}, ErrLeafOutOfRange
	}
	siblings := make([]fr.Element, TreeDepth)
	idx := index
	for depth := 0; depth < TreeDepth; depth++ {
		level := t.levels[depth]
		siblingIdx := idx ^ 1
		siblings[depth] = level[siblingIdx]
		idx /= 2
	}
	return Proof{LeafIndex: index, Siblings: siblings}, nil
}

// VerifyProof recomputes the root from a leaf hash and sibling path and
// compares it against the expected root. This is what the server (or a
// client building a hand_eval witness) uses instead of walking the in-
// memory tree directly.
func VerifyProof(expectedRoot fr.Element, leaf fr.Element, proof Proof) (bool, error) {
	idx := proof.LeafIndex
	current := leaf
	for depth := 0; depth < len(proof.Siblings); depth++ {
		sibling := proof.Siblings[depth]
		var left, right fr.Element
		if idx%2 == 0 {
			left, right = current, sibling
		} else {
			left, right = sibling, current
		}
		h, err := poseidon.Hash(left, right)
		if err != nil {
			return false, err
		}
		current = h
		idx /= 2
	}
	return current.Equal(&expectedRoot), nil
}

// RootFromBigInt is a convenience for comparing a root persisted as a
// decimal string (per spec §6's big-integer-safe wire convention) against
// a computed fr.Element root.
func RootFromBigInt(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}
