package room

import (
	"math/big"
	"testing"

	"github.com/vctt94/pokerbisonrelay/pkg/curve"
	"github.com/vctt94/pokerbisonrelay/pkg/mentalcard"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
	"github.com/vctt94/pokerbisonrelay/pkg/unmask"
)

// startReadyHand joins and readies n players, which fires StartHand
// synchronously (SetReady's final call drives it inline), and returns the
// seated player IDs in seat order.
func startReadyHand(t *testing.T, r *Room, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = []string{"p1", "p2", "p3", "p4"}[i]
	}
	joinAll(t, r, ids...)
	for i, id := range ids {
		if err := r.SetReady(id, true); err != nil {
			t.Fatalf("SetReady %s: %v", id, err)
		}
		if i < len(ids)-1 && r.Phase() != PhaseWaiting {
			t.Fatalf("expected WAITING before the last ready signal, got %s", r.Phase())
		}
	}
	if r.Phase() != PhaseShuffle {
		t.Fatalf("expected SHUFFLE once all players are ready, got %s", r.Phase())
	}
	return ids
}

// passThroughShuffle drives every queued player's shuffle turn with the
// room's current (unmodified) deck — Room never inspects the shuffle proof
// itself (that is pkg/proof.Verifier's job at the coordinator edge), so a
// no-op re-submission exercises the queue/turn-order logic the same as a
// real re-mask would.
func passThroughShuffle(t *testing.T, r *Room, ids []string) {
	t.Helper()
	for _, id := range ids {
		if err := r.ApplyShuffle(id, r.deck, "commitment-"+id); err != nil {
			t.Fatalf("ApplyShuffle %s: %v", id, err)
		}
	}
	if r.Phase() != PhaseUnmaskingHole {
		t.Fatalf("expected UNMASKING_HOLE once the shuffle queue drains, got %s", r.Phase())
	}
}

// resolveHoleCardFanOut contributes, on behalf of every non-owner, the
// already-canonical (never masked) deck card for each dealt hole index —
// legitimate for a room-level test since Room trusts its caller's card
// values. It is used on heads-up hands, where each hole card has exactly
// one non-owner, so a single contribution drains its fan-out.
func resolveHoleCardFanOut(t *testing.T, r *Room, ids []string) {
	t.Helper()
	for _, owner := range ids {
		indices := r.holeIndices[owner]
		for _, idx := range indices {
			for _, contributor := range ids {
				if contributor == owner {
					continue
				}
				if err := r.ApplyUnmask(idx, contributor, r.deck[idx]); err != nil {
					t.Fatalf("ApplyUnmask hole card %d by %s: %v", idx, contributor, err)
				}
			}
		}
	}
}

func dealtHeadsUpRoom(t *testing.T) (*Room, *eventRecorder, []string) {
	t.Helper()
	r, rec := newTestRoom(t, 2)
	ids := startReadyHand(t, r, 2)
	passThroughShuffle(t, r, ids)
	resolveHoleCardFanOut(t, r, ids)
	if r.Phase() != PhaseBetting {
		t.Fatalf("expected BETTING once hole cards clear, got %s", r.Phase())
	}
	return r, rec, ids
}

func TestHeadsUpHandDealsAndStartsBetting(t *testing.T) {
	r, rec, _ := dealtHeadsUpRoom(t)

	evt, ok := rec.last().(PlayerTurnEvent)
	if !ok {
		t.Fatalf("expected the final broadcast to be a PlayerTurnEvent, got %T", rec.last())
	}
	if evt.PlayerID == "" {
		t.Error("expected a player to be on the clock")
	}
	if len(evt.ValidActions) == 0 {
		t.Error("expected at least one valid action for the player to act")
	}
}

func TestApplyShuffleEnforcesTurnOrder(t *testing.T) {
	r, _ := newTestRoom(t, 2)
	ids := startReadyHand(t, r, 2)

	if err := r.ApplyShuffle(ids[1], r.deck, "out-of-order"); err != ErrNotYourShuffleTurn {
		t.Errorf("expected ErrNotYourShuffleTurn, got %v", err)
	}
	if err := r.ApplyShuffle(ids[0], r.deck, "in-order"); err != nil {
		t.Fatalf("ApplyShuffle in order: %v", err)
	}
}

func TestApplyUnmaskRejectsUnregisteredCard(t *testing.T) {
	r, _, _ := dealtHeadsUpRoom(t)
	if err := r.ApplyUnmask(51, "p1", r.deck[51]); err != ErrUnmaskCardNotRegistered {
		t.Errorf("expected ErrUnmaskCardNotRegistered, got %v", err)
	}
}

func TestApplyActionRejectsOutOfTurn(t *testing.T) {
	r, _, _ := dealtHeadsUpRoom(t)
	current := r.game.GetCurrentPlayerObject().ID
	other := "p1"
	if current == "p1" {
		other = "p2"
	}
	if err := r.ApplyAction(other, poker.ActionCheck, 0); err != ErrNotYourTurn {
		t.Errorf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestFoldHeadsUpResolvesShowdownImmediately(t *testing.T) {
	r, rec, _ := dealtHeadsUpRoom(t)
	toAct := r.game.GetCurrentPlayerObject().ID

	if err := r.ApplyAction(toAct, poker.ActionFold, 0); err != nil {
		t.Fatalf("ApplyAction fold: %v", err)
	}

	if r.Phase() != PhaseWaiting {
		t.Fatalf("expected the hand to settle back to WAITING, got %s", r.Phase())
	}
	if n := rec.count(func(e interface{}) bool { _, ok := e.(ShowdownEvent); return ok }); n != 1 {
		t.Errorf("expected exactly one ShowdownEvent, got %d", n)
	}
	if n := rec.count(func(e interface{}) bool { _, ok := e.(GameEndedEvent); return ok }); n != 1 {
		t.Errorf("expected exactly one GameEndedEvent, got %d", n)
	}
}

func TestHandleTurnTimeoutAutoFolds(t *testing.T) {
	r, rec, _ := dealtHeadsUpRoom(t)
	toAct := r.game.GetCurrentPlayerObject().ID

	r.handleTurnTimeout(toAct)

	if r.Phase() != PhaseWaiting {
		t.Fatalf("expected a heads-up auto-fold to end the hand, got %s", r.Phase())
	}
	if n := rec.count(func(e interface{}) bool {
		a, ok := e.(ActionResultEvent)
		return ok && a.ActionType == poker.ActionFold && a.PlayerID == toAct
	}); n != 1 {
		t.Errorf("expected one fold ActionResultEvent for %s, got %d", toAct, n)
	}
}

func TestDisconnectMidHandForfeitsHand(t *testing.T) {
	r, rec, _ := dealtHeadsUpRoom(t)
	toAct := r.game.GetCurrentPlayerObject().ID

	r.Disconnect(toAct)

	if r.Phase() != PhaseWaiting {
		t.Fatalf("expected disconnecting the player to act to forfeit the hand, got %s", r.Phase())
	}
	if n := rec.count(func(e interface{}) bool { _, ok := e.(GameEndedEvent); return ok }); n != 1 {
		t.Errorf("expected exactly one GameEndedEvent, got %d", n)
	}
}

// layeredCard masks value with one AddPlayerToMask/Mask pass per secret, the
// same composition the shuffle circuit applies per player, in order.
func layeredCard(t *testing.T, value curve.Point, secrets []*big.Int) mentalcard.Card {
	t.Helper()
	card := mentalcard.NewUnmaskedCard(value)
	for _, s := range secrets {
		added, err := mentalcard.AddPlayerToMask(card, s)
		if err != nil {
			t.Fatalf("AddPlayerToMask: %v", err)
		}
		card = added
	}
	rho, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	masked, err := mentalcard.Mask(card, rho)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	return masked
}

// TestApplyUnmaskCommunityCardRequiresFullSequence exercises the sequential
// ordering rule with genuinely layered ElGamal masking (not a
// trivially-already-unmasked stand-in), so the tracker cannot report the
// card done before every contributor in queue order has stripped their
// layer.
func TestApplyUnmaskCommunityCardRequiresFullSequence(t *testing.T) {
	r, _ := newTestRoom(t, 3)
	ids := startReadyHand(t, r, 3)
	if err := r.game.BeginBettingRound(); err != nil {
		t.Fatalf("BeginBettingRound: %v", err)
	}

	secrets := make([]*big.Int, len(ids))
	for i := range ids {
		s, err := curve.RandomScalar()
		if err != nil {
			t.Fatalf("RandomScalar: %v", err)
		}
		secrets[i] = s
	}
	value := mentalcard.CardValuePoint(20)
	card := layeredCard(t, value, secrets)

	const cardIndex = 40
	r.mu.Lock()
	r.unmask.RegisterCommunityCard(cardIndex, card)
	r.pendingCommunity = []int{cardIndex}
	r.phase = PhaseUnmaskingCommunity
	r.mu.Unlock()

	current := card
	for i, s := range secrets {
		unmasked, err := mentalcard.PartialUnmask(current, s)
		if err != nil {
			t.Fatalf("PartialUnmask step %d: %v", i, err)
		}
		current = unmasked

		if err := r.ApplyUnmask(cardIndex, ids[i], current); err != nil {
			t.Fatalf("ApplyUnmask step %d by %s: %v", i, ids[i], err)
		}

		_, resolved := r.unmask.Tracker(cardIndex).Value()
		wantResolved := i == len(secrets)-1
		if resolved != wantResolved {
			t.Fatalf("step %d (%s): tracker resolved=%v, want %v", i, ids[i], resolved, wantResolved)
		}
	}

	if r.Phase() != PhaseBetting {
		t.Errorf("expected the room to return to BETTING once the card resolves, got %s", r.Phase())
	}
}

// showdownFixture builds a Room/Game pair already parked at PhaseShowdown
// with two active players, each holding a single-layer (owner-only masked)
// hole card — the state a hand is actually in by the time beginShowdown
// requests reveals, since every non-owner layer was already stripped during
// ordinary play's fan-out.
func showdownFixture(t *testing.T) (r *Room, rec *eventRecorder, secrets map[string]*big.Int, indices map[string][2]int) {
	t.Helper()
	r, rec = newTestRoom(t, 3)
	ids := startReadyHand(t, r, 3)

	r.mu.Lock()
	r.unmask = unmask.NewCoordinator(ids)
	r.holeIndices = make(map[string][2]int)
	secrets = make(map[string]*big.Int)
	indices = make(map[string][2]int)

	for i, id := range ids[:2] {
		idx, err := r.game.HoleCardIndicesFor(i)
		if err != nil {
			r.mu.Unlock()
			t.Fatalf("HoleCardIndicesFor %s: %v", id, err)
		}
		indices[id] = idx
		r.holeIndices[id] = idx

		s, err := curve.RandomScalar()
		if err != nil {
			r.mu.Unlock()
			t.Fatalf("RandomScalar: %v", err)
		}
		secrets[id] = s

		for slot, cardIdx := range idx {
			masked := layeredCard(t, mentalcard.CardValuePoint(cardIdx+slot), []*big.Int{s})
			r.unmask.RegisterHoleCard(cardIdx, id, masked)
		}
	}

	// The third seated player already folded before showdown.
	r.game.ModifyPlayers(func(players []*poker.Player) {
		for _, p := range players {
			if p.ID == ids[2] {
				p.HasFolded = true
			}
		}
	})

	r.phase = PhaseShowdown
	r.showdownPending = append([]string(nil), ids[:2]...)
	r.mu.Unlock()

	return r, rec, secrets, indices
}

func TestApplyHandRevealResolvesShowdownOnceBothPlayersReveal(t *testing.T) {
	r, rec, secrets, indices := showdownFixture(t)

	for id, idx := range indices {
		for _, cardIdx := range idx {
			tracker := r.unmask.Tracker(cardIdx)
			masked := tracker.CardState()
			unmasked, err := mentalcard.PartialUnmask(masked, secrets[id])
			if err != nil {
				t.Fatalf("PartialUnmask %s: %v", id, err)
			}
			if err := r.ApplyHandReveal(id, cardIdx, unmasked); err != nil {
				t.Fatalf("ApplyHandReveal %s card %d: %v", id, cardIdx, err)
			}
		}
	}

	if r.Phase() != PhaseWaiting {
		t.Fatalf("expected showdown to resolve and settle, got %s", r.Phase())
	}
	if n := rec.count(func(e interface{}) bool { _, ok := e.(ShowdownEvent); return ok }); n != 1 {
		t.Errorf("expected exactly one ShowdownEvent, got %d", n)
	}
}

func TestApplyHandRevealRejectsWrongOwner(t *testing.T) {
	r, _, _, indices := showdownFixture(t)
	var otherOwnerIdx int
	var otherID string
	for id, idx := range indices {
		otherOwnerIdx = idx[0]
		otherID = id
		break
	}
	var impostor string
	for id := range indices {
		if id != otherID {
			impostor = id
		}
	}
	if err := r.ApplyHandReveal(impostor, otherOwnerIdx, r.unmask.Tracker(otherOwnerIdx).CardState()); err == nil {
		t.Error("expected an error when a non-owner submits a hand reveal")
	}
}

func TestForfeitOverdueRevealsResolvesShowdownWithoutBothReveals(t *testing.T) {
	r, rec, secrets, indices := showdownFixture(t)

	var revealed string
	for id := range indices {
		revealed = id
		break
	}
	for _, cardIdx := range indices[revealed] {
		tracker := r.unmask.Tracker(cardIdx)
		masked := tracker.CardState()
		unmasked, err := mentalcard.PartialUnmask(masked, secrets[revealed])
		if err != nil {
			t.Fatalf("PartialUnmask: %v", err)
		}
		if err := r.ApplyHandReveal(revealed, cardIdx, unmasked); err != nil {
			t.Fatalf("ApplyHandReveal: %v", err)
		}
	}

	r.mu.Lock()
	stillPending := len(r.showdownPending)
	r.mu.Unlock()
	if stillPending != 1 {
		t.Fatalf("expected exactly one player still pending reveal, got %d", stillPending)
	}

	r.forfeitOverdueReveals()

	if r.Phase() != PhaseWaiting {
		t.Fatalf("expected the overdue reveal to forfeit and settle the hand, got %s", r.Phase())
	}
	if n := rec.count(func(e interface{}) bool { _, ok := e.(GameEndedEvent); return ok }); n != 1 {
		t.Errorf("expected exactly one GameEndedEvent, got %d", n)
	}

	result, ok := rec.last().(GameEndedEvent)
	if ok {
		if _, revealedWon := result.FinalStacks[revealed]; !revealedWon {
			t.Errorf("expected %s to still have a final stack recorded", revealed)
		}
	}
}
