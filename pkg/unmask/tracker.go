// Package unmask implements the per-card unmask coordinator described in
// spec §4.9: hole cards unmask via parallel fan-out from every non-owner,
// community cards unmask via a strictly sequential per-player queue, and
// canonical deck indices are used throughout (hole cards 0..2N-1, community
// cards 2N..2N+4), mirroring the teacher's table.go's habit of keeping one
// small tracker struct per piece of shared hand state rather than a single
// monolithic lock.
package unmask

import (
	"fmt"
	"sync"

	"github.com/vctt94/pokerbisonrelay/pkg/mentalcard"
)

// Owner identifies who a card tracker belongs to. Community is the
// sentinel for the five shared board cards.
const Community = ""

// Tracker holds the live unmask state of a single deck index.
type Tracker struct {
	mu sync.Mutex

	cardIndex int
	owner     string // "" (Community) for community cards

	card        mentalcard.Card
	contributed map[string]bool // players who have submitted a partial unmask
	pending     []string        // community cards only: ordered queue of players still to act

	fullyUnmasked bool
	value         *mentalcard.Card // set once Contribute or Reveal reports the card done
}

// NewHoleTracker constructs a tracker for a hole card owned by ownerID.
// The tracker holds no seat list; Coordinator.PendingHoleContributors
// derives the non-owners still to contribute from the coordinator's seats.
func NewHoleTracker(cardIndex int, ownerID string, card mentalcard.Card) *Tracker {
	return &Tracker{
		cardIndex:   cardIndex,
		owner:       ownerID,
		card:        card,
		contributed: make(map[string]bool),
	}
}

// NewCommunityTracker constructs a tracker for a community card, requiring
// every player in seatOrder to contribute an unmask strictly in order.
func NewCommunityTracker(cardIndex int, card mentalcard.Card, seatOrder []string) *Tracker {
	pending := make([]string, len(seatOrder))
	copy(pending, seatOrder)
	return &Tracker{
		cardIndex:   cardIndex,
		owner:       Community,
		card:        card,
		contributed: make(map[string]bool),
		pending:     pending,
	}
}

// IsCommunity reports whether this tracker is for a community card.
func (t *Tracker) IsCommunity() bool {
	return t.owner == Community
}

// IsOwner reports whether playerID is the hole card's owner.
func (t *Tracker) IsOwner(playerID string) bool {
	return !t.IsCommunity() && t.owner == playerID
}

// NextExpectedContributor returns the player the coordinator should next
// request an unmask from for a community card, or "" once the queue is
// empty. Always "" for hole card trackers (they fan out in parallel).
func (t *Tracker) NextExpectedContributor() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.IsCommunity() || len(t.pending) == 0 {
		return ""
	}
	return t.pending[0]
}

// CardState returns the tracker's current (possibly still partially
// masked) card state, for computing the commitment to send in a
// card_partially_unmasked notification.
func (t *Tracker) CardState() mentalcard.Card {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.card
}

// ErrNotPlayersTurn is returned when a community-card unmask is submitted
// out of queue order.
type ErrNotPlayersTurn struct {
	CardIndex int
	Expected  string
	Got       string
}

func (e *ErrNotPlayersTurn) Error() string {
	return fmt.Sprintf("unmask: card %d expects next contribution from %q, got %q", e.CardIndex, e.Expected, e.Got)
}

// ErrAlreadyContributed is returned when a player submits a second unmask
// for the same card.
type ErrAlreadyContributed struct {
	CardIndex int
	PlayerID  string
}

func (e *ErrAlreadyContributed) Error() string {
	return fmt.Sprintf("unmask: player %q already contributed to card %d", e.PlayerID, e.CardIndex)
}

// ErrCardOwnerCannotUnmaskOwnCard is returned when a hole card's owner
// submits an unmask for their own card (they must only ever receive it).
type ErrCardOwnerCannotUnmaskOwnCard struct {
	CardIndex int
	PlayerID  string
}

func (e *ErrCardOwnerCannotUnmaskOwnCard) Error() string {
	return fmt.Sprintf("unmask: card %d owner %q cannot unmask their own hole card", e.CardIndex, e.PlayerID)
}

// Contribute applies a verified partial unmask from playerID, producing
// the new card state (already verified by the caller against a ZK proof
// before this is called — Contribute only enforces fan-out/ordering and
// updates bookkeeping). It returns the updated card state and whether the
// card is now fully unmasked; a community card reports done only once its
// queue is empty as well. A second contribution from the same player is
// rejected with ErrAlreadyContributed, also after the card has completed.
func (t *Tracker) Contribute(playerID string, newCard mentalcard.Card) (mentalcard.Card, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.contributed[playerID] {
		return mentalcard.Card{}, false, &ErrAlreadyContributed{CardIndex: t.cardIndex, PlayerID: playerID}
	}
	if t.fullyUnmasked {
		return t.card, true, nil
	}
	if t.IsOwner(playerID) {
		return mentalcard.Card{}, false, &ErrCardOwnerCannotUnmaskOwnCard{CardIndex: t.cardIndex, PlayerID: playerID}
	}

	if t.IsCommunity() {
		if len(t.pending) == 0 || t.pending[0] != playerID {
			expected := ""
			if len(t.pending) > 0 {
				expected = t.pending[0]
			}
			return mentalcard.Card{}, false, &ErrNotPlayersTurn{CardIndex: t.cardIndex, Expected: expected, Got: playerID}
		}
		t.pending = t.pending[1:]
	}

	t.contributed[playerID] = true
	t.card = newCard

	done := mentalcard.IsFullyUnmasked(t.card)
	if t.IsCommunity() && len(t.pending) > 0 {
		// A community card completes only once its whole queue has contributed.
		done = false
	}
	if done {
		t.fullyUnmasked = true
		v := t.card
		t.value = &v
	}
	return t.card, done, nil
}

// ErrNotCardOwner is returned when a hand-reveal submission for a hole
// card doesn't come from the card's actual owner.
type ErrNotCardOwner struct {
	CardIndex int
	PlayerID  string
}

func (e *ErrNotCardOwner) Error() string {
	return fmt.Sprintf("unmask: card %d reveal must come from its owner, got %q", e.CardIndex, e.PlayerID)
}

// Reveal applies the hole card owner's own unmask contribution at
// showdown — the one contribution Contribute forbids during ordinary
// play. A hole card's owner masks it during the shuffle phase same as
// everyone else, so during play they decrypt it locally with their own
// key and never submit anything; once a hand reaches showdown, every
// remaining active player's cards must become visible to everyone
// resolving the pot, which requires the owner to finally contribute the
// layer only they could have removed.
func (t *Tracker) Reveal(playerID string, newCard mentalcard.Card) (mentalcard.Card, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fullyUnmasked {
		return t.card, true, nil
	}
	if t.IsCommunity() {
		return mentalcard.Card{}, false, fmt.Errorf("unmask: card %d is a community card, not a hand reveal", t.cardIndex)
	}
	if t.owner != playerID {
		return mentalcard.Card{}, false, &ErrNotCardOwner{CardIndex: t.cardIndex, PlayerID: playerID}
	}

	t.contributed[playerID] = true
	t.card = newCard

	done := mentalcard.IsFullyUnmasked(t.card)
	if done {
		t.fullyUnmasked = true
		v := t.card
		t.value = &v
	}
	return t.card, done, nil
}

// ContributorCount returns how many players have contributed so far.
func (t *Tracker) ContributorCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.contributed)
}

// Value returns the fully unmasked card and true once complete.
func (t *Tracker) Value() (mentalcard.Card, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.value == nil {
		return mentalcard.Card{}, false
	}
	return *t.value, true
}
