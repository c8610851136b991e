// Package handrank builds and verifies the Merkle-committed table of all
// 7462 equivalence classes of a 5-card poker hand, addressed by a
// prime-product key, so a player can prove their hand rank without
// disclosing hole cards until showdown.
package handrank

import (
	"fmt"
	"math/big"
	"sort"

	chpoker "github.com/chehsunliu/poker"
)

// Entry is one equivalence class: a prime-product key, its rank in
// [0, 7461] (0 best), and whether it belongs to the flush table.
type Entry struct {
	PrimeProduct *big.Int
	Rank         int
	IsFlush      bool
}

// rankPrimes maps a card rank (2..14, Ace high) to the prime the Cactus
// Kevs-style scheme assigns it, matching the prime basis chehsunliu/poker
// uses internally so a lookupKey computed here agrees with its evaluator.
var rankPrimes = map[int]int64{
	2: 2, 3: 3, 4: 5, 5: 7, 6: 11, 7: 13, 8: 17, 9: 19, 10: 23,
	11: 29, 12: 31, 13: 37, 14: 41,
}

// RankPrime returns the prime associated with a card rank in 2..14.
func RankPrime(rank int) (int64, error) {
	p, ok := rankPrimes[rank]
	if !ok {
		return 0, fmt.Errorf("handrank: invalid rank %d", rank)
	}
	return p, nil
}

func rankChar(rank int) byte {
	switch rank {
	case 2, 3, 4, 5, 6, 7, 8, 9:
		return byte('0' + rank)
	case 10:
		return 'T'
	case 11:
		return 'J'
	case 12:
		return 'Q'
	case 13:
		return 'K'
	case 14:
		return 'A'
	}
	return 0
}

var suitChars = [4]byte{'s', 'h', 'd', 'c'}

// fiveRankMultisets enumerates every non-decreasing 5-tuple drawn from
// ranks 2..14 with repetition allowed, i.e. every distinct rank multiset a
// 5-card hand can show ignoring suit. There are C(17,5) = 6188 of them.
func fiveRankMultisets() [][5]int {
	var out [][5]int
	var combo [5]int
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == 5 {
			out = append(out, combo)
			return
		}
		for r := start; r <= 14; r++ {
			combo[depth] = r
			rec(r, depth+1)
		}
	}
	rec(2, 0)
	return out
}

func isAllSameRank(m [5]int) bool {
	for i := 1; i < 5; i++ {
		if m[i] != m[0] {
			return false
		}
	}
	return true
}

func primeProduct(ranks [5]int) *big.Int {
	product := big.NewInt(1)
	for _, r := range ranks {
		p, _ := RankPrime(r)
		product.Mul(product, big.NewInt(p))
	}
	return product
}

// evaluate runs chehsunliu/poker over 5 concrete cards and returns its
// rank value (1..7462, lower is better).
func evaluate(cards [5]chpoker.Card) int32 {
	return chpoker.Evaluate(cards[:])
}

func cardsForBasic(ranks [5]int) [5]chpoker.Card {
	var cards [5]chpoker.Card
	for i, r := range ranks {
		cs := string([]byte{rankChar(r), suitChars[i%4]})
		cards[i] = chpoker.NewCard(cs)
	}
	return cards
}

func cardsForFlush(ranks [5]int, suit byte) [5]chpoker.Card {
	var cards [5]chpoker.Card
	for i, r := range ranks {
		cs := string([]byte{rankChar(r), suit})
		cards[i] = chpoker.NewCard(cs)
	}
	return cards
}

// GenerateBasicHands produces the 6175 non-flush equivalence classes of
// spec §3: every 5-rank multiset that is not a "five of a kind" (impossible
// with a single 52-card deck, since each rank has only 4 suits).
func GenerateBasicHands() []Entry {
	multisets := fiveRankMultisets()
	entries := make([]Entry, 0, 6175)
	for _, m := range multisets {
		if isAllSameRank(m) {
			continue
		}
		cards := cardsForBasic(m)
		rankValue := evaluate(cards)
		entries = append(entries, Entry{
			PrimeProduct: primeProduct(m),
			Rank:         int(rankValue) - 1,
			IsFlush:      false,
		})
	}
	return entries
}

// GenerateFlushHands produces the 1287 flush equivalence classes: every
// 5-distinct-rank combination (C(13,5)), all in the same suit.
func GenerateFlushHands() []Entry {
	ranks := []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	var combos [][5]int
	var combo [5]int
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == 5 {
			combos = append(combos, combo)
			return
		}
		for i := start; i < len(ranks); i++ {
			combo[depth] = ranks[i]
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)

	entries := make([]Entry, 0, 1287)
	for _, m := range combos {
		cards := cardsForFlush(m, 's')
		rankValue := evaluate(cards)
		entries = append(entries, Entry{
			PrimeProduct: primeProduct(m),
			Rank:         int(rankValue) - 1,
			IsFlush:      true,
		})
	}
	return entries
}

// SortByPrimeProduct orders entries ascending by prime-product key, the
// canonical order tables are stored and looked up in.
func SortByPrimeProduct(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PrimeProduct.Cmp(entries[j].PrimeProduct) < 0
	})
}

// LookupByLookupKey performs a linear scan for the entry matching a given
// prime-product lookup key. Tables are small (<=6175 entries) and this is
// only used off the hot path (verifying a submitted hand_eval's declared
// rank against the table), so a map-backed index is unnecessary; Table
// below provides one anyway for O(1) repeated lookups at the server.
func LookupByLookupKey(entries []Entry, key *big.Int) (Entry, bool) {
	for _, e := range entries {
		if e.PrimeProduct.Cmp(key) == 0 {
			return e, true
		}
	}
	return Entry{}, false
}

// Table indexes a generated entry list by its decimal prime-product string
// for O(1) lookup, and tracks which leaf index each entry was assigned in
// the Merkle tree so a caller can request its sibling path.
type Table struct {
	Entries    []Entry
	byKey      map[string]int // decimal prime-product -> index into Entries
	IsFlush    bool
}

// NewTable builds an index over entries, keeping their given order as the
// leaf order used by BuildMerkleTree.
func NewTable(entries []Entry, isFlush bool) *Table {
	t := &Table{Entries: entries, byKey: make(map[string]int, len(entries)), IsFlush: isFlush}
	for i, e := range entries {
		t.byKey[e.PrimeProduct.String()] = i
	}
	return t
}

// Lookup returns the entry and leaf index for a given prime-product key.
func (t *Table) Lookup(key *big.Int) (Entry, int, bool) {
	idx, ok := t.byKey[key.String()]
	if !ok {
		return Entry{}, 0, false
	}
	return t.Entries[idx], idx, true
}
