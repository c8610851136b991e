package room

import (
	"fmt"
	"time"

	"github.com/vctt94/pokerbisonrelay/pkg/mentalcard"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
	"github.com/vctt94/pokerbisonrelay/pkg/unmask"
)

// resetPlayerForHand clears a player's per-hand fields without touching
// Balance/StartingBalance, so chip stacks carry across hands within a
// room's lifetime (poker.Player.ResetForNewHand sets Balance to its
// startingChips argument, so it is not used here; Join seats a new player
// with poker.NewPlayer).
func resetPlayerForHand(p *poker.Player) {
	p.Hand = make([]poker.Card, 0, 2)
	p.HasBet = 0
	p.HasFolded = false
	p.IsAllIn = false
	p.IsDealer = false
	p.IsTurn = false
	p.HandValue = nil
	p.HandDescription = ""
	p.LastAction = time.Now()
	p.SetGameState("IN_GAME")
}

// StartHand begins a new hand once enough seated players are ready. It is
// a no-op if the room isn't Waiting or doesn't have enough ready players
// (SetReady calls it only when both hold, but Disconnect/settling can race
// a ready toggle, so this stays defensive).
func (r *Room) StartHand() {
	r.mu.Lock()

	if r.phase != PhaseWaiting {
		r.mu.Unlock()
		return
	}

	handSeats := r.seatedPlayerIDsLocked()
	ready := make([]string, 0, len(handSeats))
	for _, id := range handSeats {
		if r.seats[id].IsReady {
			ready = append(ready, id)
		}
	}
	if len(ready) < r.config.MinPlayers {
		r.mu.Unlock()
		return
	}

	players := make([]*poker.Player, len(ready))
	for i, id := range ready {
		p := r.seats[id].player
		resetPlayerForHand(p)
		players[i] = p
	}

	var err error
	if r.game == nil {
		r.game, err = poker.NewGame(poker.GameConfig{
			NumPlayers:    len(players),
			StartingChips: r.config.StartingChips,
			SmallBlind:    r.config.SmallBlind,
			BigBlind:      r.config.BigBlind,
			Log:           r.log,
		})
		if err != nil {
			r.log.Errorf("room %s: StartHand: %v", r.config.ID, err)
			r.mu.Unlock()
			return
		}
		r.game.SetPlayers(players)
	} else {
		r.game.ResetForNewHand(players)
	}

	r.handSeats = ready
	r.deck = mentalcard.NewUnmaskedDeck()
	r.unmask = unmask.NewCoordinator(ready)
	r.holeIndices = make(map[string][2]int)
	r.dealer = r.game.GetDealer()
	r.shuffleQueue = append([]string(nil), ready...)
	r.phase = PhaseShuffle
	r.stateMachine.SetState(stateShuffle)

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(GameStartedEvent{Dealer: r.dealer, Players: ready})
	}
	r.mu.Unlock()

	r.requestNextShuffle()
}

// requestNextShuffle notifies the next player in the shuffle queue it is
// their turn to re-mask the deck, or starts dealing once the queue has
// drained.
func (r *Room) requestNextShuffle() {
	r.mu.Lock()
	if r.phase != PhaseShuffle {
		r.mu.Unlock()
		return
	}
	if len(r.shuffleQueue) == 0 {
		r.mu.Unlock()
		r.dealHoleCards()
		return
	}
	playerID := r.shuffleQueue[0]
	seatIdx := r.seats[playerID].SeatIndex
	r.armPhaseTimerLocked()
	r.mu.Unlock()

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(ShuffleTurnEvent{PlayerID: playerID, SeatIndex: seatIdx})
	}
}

// ErrNotYourShuffleTurn is returned when a shuffle submission arrives from
// someone other than the head of the shuffle queue.
var ErrNotYourShuffleTurn = fmt.Errorf("room: not your shuffle turn")

// ApplyShuffle records a verified re-mask of the full deck by the player
// whose turn it currently is, then either requests the next player's
// shuffle or, once everyone has contributed, moves on to dealing.
func (r *Room) ApplyShuffle(playerID string, shuffled [mentalcard.NumCards]mentalcard.Card, deckCommitment string) error {
	r.mu.Lock()
	if r.phase != PhaseShuffle {
		r.mu.Unlock()
		return fmt.Errorf("room: not in shuffle phase")
	}
	if len(r.shuffleQueue) == 0 || r.shuffleQueue[0] != playerID {
		r.mu.Unlock()
		return ErrNotYourShuffleTurn
	}

	r.deck = shuffled
	r.shuffleQueue = r.shuffleQueue[1:]
	r.cancelPhaseTimerLocked()
	r.mu.Unlock()

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(ShuffleCompleteEvent{PlayerID: playerID, DeckCommitment: deckCommitment})
	}

	r.requestNextShuffle()
	return nil
}

// dealHoleCards assigns each seated player's canonical hole-card indices,
// registers their unmask trackers, and requests the fan-out of partial
// unmasks from every non-owner.
func (r *Room) dealHoleCards() {
	r.mu.Lock()
	if r.phase != PhaseShuffle && r.phase != PhaseDealing {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseDealing
	r.stateMachine.SetState(stateDealing)

	type dealt struct {
		playerID string
		indices  [2]int
	}
	var deals []dealt
	for i, id := range r.handSeats {
		indices, err := r.game.HoleCardIndicesFor(i)
		if err != nil {
			r.log.Errorf("room %s: dealHoleCards: %v", r.config.ID, err)
			r.mu.Unlock()
			return
		}
		r.holeIndices[id] = indices
		r.unmask.RegisterHoleCard(indices[0], id, r.deck[indices[0]])
		r.unmask.RegisterHoleCard(indices[1], id, r.deck[indices[1]])
		deals = append(deals, dealt{playerID: id, indices: indices})
	}
	r.phase = PhaseUnmaskingHole
	r.stateMachine.SetState(stateUnmaskingHole)
	r.mu.Unlock()

	for _, d := range deals {
		if r.cb.Send != nil {
			r.cb.Send(d.playerID, CardsDealtEvent{PlayerID: d.playerID, YourCards: []int{d.indices[0], d.indices[1]}})
		}
		r.requestHoleUnmaskFanOut(d.indices[0])
		r.requestHoleUnmaskFanOut(d.indices[1])
	}
}

// requestHoleUnmaskFanOut asks every non-owner still pending on cardIndex
// to contribute their partial unmask, in parallel.
func (r *Room) requestHoleUnmaskFanOut(cardIndex int) {
	r.mu.Lock()
	pending, err := r.unmask.PendingHoleContributors(cardIndex)
	r.mu.Unlock()
	if err != nil {
		r.log.Errorf("room %s: requestHoleUnmaskFanOut: %v", r.config.ID, err)
		return
	}
	for _, playerID := range pending {
		if r.cb.Send != nil {
			r.cb.Send(playerID, UnmaskRequestEvent{CardIndex: cardIndex, ForPlayerID: playerID})
		}
	}
}

// ErrUnmaskCardNotRegistered mirrors the coordinator's own not-registered
// error at the room's public boundary.
var ErrUnmaskCardNotRegistered = fmt.Errorf("room: card not registered for unmask")

// ApplyUnmask records a verified partial unmask contribution for a hole or
// community card. Once a card becomes fully unmasked, its value is pushed
// into the betting engine and, for hole cards, the room checks whether all
// hole cards are now resolved and betting can begin.
func (r *Room) ApplyUnmask(cardIndex int, playerID string, newCard mentalcard.Card) error {
	r.mu.Lock()
	if r.phase != PhaseUnmaskingHole && r.phase != PhaseUnmaskingCommunity {
		r.mu.Unlock()
		return fmt.Errorf("room: not in an unmasking phase")
	}
	tracker := r.unmask.Tracker(cardIndex)
	if tracker == nil {
		r.mu.Unlock()
		return ErrUnmaskCardNotRegistered
	}
	card, done, err := r.unmask.Contribute(cardIndex, playerID, newCard)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	isCommunity := tracker.IsCommunity()
	remaining := 0
	if !isCommunity && !done {
		pending, _ := r.unmask.PendingHoleContributors(cardIndex)
		remaining = len(pending)
	}
	r.mu.Unlock()

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(CardPartiallyUnmaskedEvent{CardIndex: cardIndex, ByPlayerID: playerID, RemainingUnmasks: remaining})
	}

	// A hole card's owner never contributes during play (see Tracker.Reveal),
	// so for hole cards "done" (mentalcard.IsFullyUnmasked) never fires here
	// — readiness instead means the fan-out queue has drained, which
	// maybeFinishHoleUnmask checks directly across every dealt hole card.
	if !isCommunity {
		r.maybeFinishHoleUnmask()
		return nil
	}

	if !done {
		r.requestNextCommunityUnmask(cardIndex)
		return nil
	}

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(CardFullyUnmaskedEvent{CardIndex: cardIndex, IsCommunity: true})
	}
	r.applyResolvedCommunityCard(cardIndex, card)
	r.maybeFinishCommunityUnmask()
	return nil
}

func (r *Room) requestNextCommunityUnmask(cardIndex int) {
	r.mu.Lock()
	next, err := r.unmask.NextCommunityContributor(cardIndex)
	r.mu.Unlock()
	if err != nil || next == "" {
		return
	}
	if r.cb.Send != nil {
		r.cb.Send(next, UnmaskRequestEvent{CardIndex: cardIndex, ForPlayerID: next})
	}
}

func (r *Room) applyResolvedCommunityCard(cardIndex int, card mentalcard.Card) {
	idx, err := mentalcard.ValueIndex(card)
	if err != nil {
		r.log.Errorf("room %s: applyResolvedCommunityCard: %v", r.config.ID, err)
		return
	}
	resolved, err := poker.CardFromIndex(idx)
	if err != nil {
		r.log.Errorf("room %s: applyResolvedCommunityCard: %v", r.config.ID, err)
		return
	}
	r.mu.Lock()
	game := r.game
	r.mu.Unlock()
	game.SetCommunityCard(cardIndex, resolved)
}

// maybeFinishHoleUnmask checks whether every dealt hole card has had every
// non-owner contribute their partial unmask. A hole card never reaches
// mentalcard.IsFullyUnmasked during ordinary play — the owner's own mask
// layer is the one they strip locally with their private key, not
// something they submit — so "ready" here means the fan-out queue for
// every hole card has drained, not that Tracker.Value is set. Once every
// hole card clears, the server still doesn't know any plaintext value;
// it only knows enough to let blinds get posted and betting begin.
func (r *Room) maybeFinishHoleUnmask() {
	r.mu.Lock()
	if r.phase != PhaseUnmaskingHole {
		r.mu.Unlock()
		return
	}
	for _, indices := range r.holeIndices {
		for _, idx := range indices {
			pending, err := r.unmask.PendingHoleContributors(idx)
			if err != nil || len(pending) > 0 {
				r.mu.Unlock()
				return
			}
		}
	}
	game := r.game
	r.mu.Unlock()

	if err := game.BeginBettingRound(); err != nil {
		r.log.Errorf("room %s: BeginBettingRound: %v", r.config.ID, err)
		return
	}

	r.mu.Lock()
	r.phase = PhaseBetting
	r.stateMachine.SetState(stateBetting)
	r.mu.Unlock()

	r.announceCurrentTurn()
}

// announceCurrentTurn notifies the player to act and arms their turn
// timer, or — if nobody can act (everyone folded/all-in) — advances the
// hand straight through to its next phase.
func (r *Room) announceCurrentTurn() {
	r.mu.Lock()
	if r.phase != PhaseBetting {
		r.mu.Unlock()
		return
	}
	game := r.game
	r.mu.Unlock()

	current := game.GetCurrentPlayerObject()
	if current == nil || current.HasFolded || current.IsAllIn {
		r.maybeAdvanceAfterAction()
		return
	}

	valid := game.ValidActions(current.ID)
	toCall := game.GetCurrentBet() - current.HasBet
	if toCall < 0 {
		toCall = 0
	}

	r.mu.Lock()
	seatIdx := r.seats[current.ID].SeatIndex
	r.armTurnTimerLocked(current.ID)
	r.mu.Unlock()

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(PlayerTurnEvent{
			PlayerID:     current.ID,
			SeatIndex:    seatIdx,
			ValidActions: valid,
			AmountToCall: toCall,
			TimeoutMs:    int(r.config.TurnTimeout / time.Millisecond),
		})
	}
}

// armTurnTimerLocked schedules an auto-fold for playerID if they don't act
// before the room's turn timeout elapses.
func (r *Room) armTurnTimerLocked(playerID string) {
	r.cancelTurnTimerLocked()
	r.turnTimer = time.AfterFunc(r.config.TurnTimeout, func() {
		r.handleTurnTimeout(playerID)
	})
}

func (r *Room) cancelTurnTimerLocked() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

func (r *Room) armPhaseTimerLocked() {
	r.cancelPhaseTimerLocked()
	r.phaseTimer = time.AfterFunc(r.config.PhaseTimeout, r.handlePhaseTimeout)
}

func (r *Room) cancelPhaseTimerLocked() {
	if r.phaseTimer != nil {
		r.phaseTimer.Stop()
		r.phaseTimer = nil
	}
}

// handleTurnTimeout auto-folds a player who let their turn timer expire.
func (r *Room) handleTurnTimeout(playerID string) {
	r.mu.Lock()
	if r.phase != PhaseBetting || r.game == nil {
		r.mu.Unlock()
		return
	}
	game := r.game
	current := game.GetCurrentPlayerObject()
	if current == nil || current.ID != playerID {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	if err := game.HandlePlayerFold(playerID); err != nil {
		r.log.Debugf("room %s: handleTurnTimeout fold: %v", r.config.ID, err)
		return
	}
	if r.cb.Broadcast != nil {
		r.cb.Broadcast(ActionResultEvent{PlayerID: playerID, ActionType: poker.ActionFold, NewPot: game.GetPot()})
	}
	r.maybeAdvanceAfterAction()
}

// handlePhaseTimeout forfeits whichever shuffle or showdown-reveal
// contribution is overdue: a missed shuffle turn and a missed showdown
// reveal both forfeit.
func (r *Room) handlePhaseTimeout() {
	r.mu.Lock()
	phase := r.phase
	var forfeit string
	switch phase {
	case PhaseShuffle:
		if len(r.shuffleQueue) > 0 {
			forfeit = r.shuffleQueue[0]
		}
	case PhaseShowdown:
		r.mu.Unlock()
		r.forfeitOverdueReveals()
		return
	}
	r.mu.Unlock()

	if forfeit == "" {
		return
	}
	r.log.Infof("room %s: %s forfeited on phase timeout", r.config.ID, forfeit)
	r.Disconnect(forfeit)
}

// forfeitOverdueReveals folds every player who still hasn't revealed their
// hole cards once the showdown phase timer expires, the same "missed
// reveal surrenders the pot" rule Disconnect applies to a mid-hand drop,
// then resolves the showdown with whoever is left.
func (r *Room) forfeitOverdueReveals() {
	r.mu.Lock()
	if r.phase != PhaseShowdown {
		r.mu.Unlock()
		return
	}
	game := r.game
	overdue := append([]string(nil), r.showdownPending...)
	r.showdownPending = nil
	r.mu.Unlock()

	if len(overdue) == 0 {
		return
	}
	overdueSet := make(map[string]bool, len(overdue))
	for _, id := range overdue {
		overdueSet[id] = true
		r.log.Infof("room %s: %s forfeited pot on missed showdown reveal", r.config.ID, id)
	}
	game.ModifyPlayers(func(players []*poker.Player) {
		for _, p := range players {
			if overdueSet[p.ID] {
				p.HasFolded = true
			}
		}
	})
	r.resolveShowdown()
}

// ErrNotYourTurn mirrors protoerr.NotYourTurn.
var ErrNotYourTurn = fmt.Errorf("room: not your turn")

// ApplyAction applies a verified betting action from the current player to
// act, then advances the hand.
func (r *Room) ApplyAction(playerID string, action poker.ActionType, amount int64) error {
	r.mu.Lock()
	if r.phase != PhaseBetting || r.game == nil {
		r.mu.Unlock()
		return fmt.Errorf("room: not in a betting phase")
	}
	game := r.game
	if game.GetCurrentPlayerObject() == nil || game.GetCurrentPlayerObject().ID != playerID {
		r.mu.Unlock()
		return ErrNotYourTurn
	}
	if !game.IsLegal(playerID, action, amount) {
		r.mu.Unlock()
		return fmt.Errorf("room: illegal action %s(%d) for %s", action, amount, playerID)
	}
	r.cancelTurnTimerLocked()
	r.mu.Unlock()

	var err error
	switch action {
	case poker.ActionFold:
		err = game.HandlePlayerFold(playerID)
	case poker.ActionCheck:
		err = game.HandlePlayerCheck(playerID)
	case poker.ActionCall:
		err = game.HandlePlayerCall(playerID)
	case poker.ActionBet, poker.ActionRaise, poker.ActionAllIn:
		err = game.HandlePlayerBet(playerID, amount)
	default:
		err = fmt.Errorf("room: unsupported action %s", action)
	}
	if err != nil {
		return err
	}

	if r.cb.Broadcast != nil {
		var stack int64
		for _, p := range game.GetPlayers() {
			if p.ID == playerID {
				stack = p.Balance
				break
			}
		}
		r.cb.Broadcast(ActionResultEvent{PlayerID: playerID, ActionType: action, Amount: amount, NewPot: game.GetPot(), PlayerStack: stack})
	}

	r.maybeAdvanceAfterAction()
	return nil
}

// maybeAdvanceAfterAction is the single choke point a normal action and a
// disconnect-forced fold both funnel through: it asks the betting engine
// whether the round is over and, if the street changed, either kicks off
// the next street's community-card unmask or moves to showdown.
func (r *Room) maybeAdvanceAfterAction() {
	r.mu.Lock()
	if r.phase != PhaseBetting || r.game == nil {
		r.mu.Unlock()
		return
	}
	game := r.game
	before := game.GetPhase()
	r.mu.Unlock()

	game.MaybeAdvancePhase()
	after := game.GetPhase()

	if after == before {
		r.announceCurrentTurn()
		return
	}

	if after == poker.PhaseShowdown {
		r.beginShowdown()
		return
	}

	r.beginCommunityUnmask(after)
}

// beginCommunityUnmask registers trackers for the next street's community
// cards and requests their (independently sequential, per-card) unmask.
func (r *Room) beginCommunityUnmask(street poker.Phase) {
	r.mu.Lock()
	if r.phase != PhaseBetting {
		r.mu.Unlock()
		return
	}
	game := r.game
	r.phase = PhaseUnmaskingCommunity
	r.stateMachine.SetState(stateUnmaskingCommunity)
	r.mu.Unlock()

	indices := game.NextCommunityCardIndices()

	r.mu.Lock()
	for _, idx := range indices {
		r.unmask.RegisterCommunityCard(idx, r.deck[idx])
	}
	r.pendingCommunity = indices
	r.mu.Unlock()

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(StreetAdvancedEvent{Street: street, CommunityCardIndices: indices})
	}
	for _, idx := range indices {
		r.requestNextCommunityUnmask(idx)
	}
}

// maybeFinishCommunityUnmask moves the hand back into betting once every
// pending community card for the current street has been fully revealed.
func (r *Room) maybeFinishCommunityUnmask() {
	r.mu.Lock()
	if r.phase != PhaseUnmaskingCommunity {
		r.mu.Unlock()
		return
	}
	for _, idx := range r.pendingCommunity {
		t := r.unmask.Tracker(idx)
		if t == nil {
			r.mu.Unlock()
			return
		}
		if _, ok := t.Value(); !ok {
			r.mu.Unlock()
			return
		}
	}
	r.pendingCommunity = nil
	r.phase = PhaseBetting
	r.stateMachine.SetState(stateBetting)
	r.mu.Unlock()

	r.announceCurrentTurn()
}

// beginShowdown requests a final hand-reveal contribution from every
// active (non-folded) player's hole cards — the one contribution
// Contribute always refused them during play — then resolves the pot once
// every active player has revealed.
func (r *Room) beginShowdown() {
	r.mu.Lock()
	r.phase = PhaseShowdown
	r.stateMachine.SetState(stateShowdown)
	r.cancelTurnTimerLocked()
	r.armPhaseTimerLocked()
	game := r.game
	r.mu.Unlock()

	var pending []string
	for _, p := range game.GetPlayers() {
		if p.HasFolded {
			continue
		}
		pending = append(pending, p.ID)
	}

	r.mu.Lock()
	r.showdownPending = pending
	r.mu.Unlock()

	if len(pending) <= 1 {
		r.resolveShowdown()
		return
	}

	for _, id := range pending {
		indices := r.holeIndices[id]
		if r.cb.Send != nil {
			r.cb.Send(id, RevealHandRequestEvent{PlayerID: id, CardIndices: indices[:]})
		}
	}
}

// ErrNotActiveAtShowdown is returned when a hand-reveal submission comes
// from a player who already folded or isn't part of the current hand.
var ErrNotActiveAtShowdown = fmt.Errorf("room: not an active player at showdown")

// ApplyHandReveal records a verified final unmask contribution from a hole
// card's own owner at showdown. Once every active player's cards are
// fully revealed, the pot is resolved.
func (r *Room) ApplyHandReveal(playerID string, cardIndex int, newCard mentalcard.Card) error {
	r.mu.Lock()
	if r.phase != PhaseShowdown {
		r.mu.Unlock()
		return fmt.Errorf("room: not at showdown")
	}
	indices, ok := r.holeIndices[playerID]
	if !ok || (indices[0] != cardIndex && indices[1] != cardIndex) {
		r.mu.Unlock()
		return ErrNotActiveAtShowdown
	}
	game := r.game
	r.mu.Unlock()

	card, done, err := r.unmask.Reveal(cardIndex, playerID, newCard)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	idx, err := mentalcard.ValueIndex(card)
	if err != nil {
		return err
	}
	resolved, err := poker.CardFromIndex(idx)
	if err != nil {
		return err
	}
	slot := 0
	if indices[1] == cardIndex {
		slot = 1
	}
	if err := game.SetHoleCard(playerID, slot, resolved); err != nil {
		return err
	}

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(CardFullyUnmaskedEvent{CardIndex: cardIndex, IsCommunity: false})
	}

	if r.bothHoleCardsRevealed(playerID) {
		r.markShowdownRevealed(playerID)
	}
	return nil
}

func (r *Room) bothHoleCardsRevealed(playerID string) bool {
	indices := r.holeIndices[playerID]
	for _, idx := range indices {
		t := r.unmask.Tracker(idx)
		if t == nil {
			return false
		}
		if _, ok := t.Value(); !ok {
			return false
		}
	}
	return true
}

func (r *Room) markShowdownRevealed(playerID string) {
	r.mu.Lock()
	remaining := r.showdownPending[:0]
	for _, id := range r.showdownPending {
		if id != playerID {
			remaining = append(remaining, id)
		}
	}
	r.showdownPending = remaining
	done := len(r.showdownPending) == 0
	r.mu.Unlock()

	if done {
		r.resolveShowdown()
	}
}

// resolveShowdown distributes the pot and returns the room to Waiting via
// settle, whatever chip stacks remain.
func (r *Room) resolveShowdown() {
	r.mu.Lock()
	r.cancelPhaseTimerLocked()
	game := r.game
	r.mu.Unlock()

	result := game.HandleShowdown()
	if r.cb.Broadcast != nil {
		r.cb.Broadcast(ShowdownEvent{Result: result})
	}

	r.settle()
}

// settle resets every seat's readiness and returns the room to Waiting.
// Chip stacks carry over (poker.Player.Balance is untouched here). No
// stack is checked: a player left with less than a big blind can still
// signal ready, since SetReady's MinPlayers gate only counts ready seats.
func (r *Room) settle() {
	r.mu.Lock()
	r.phase = PhaseSettling
	r.stateMachine.SetState(stateSettling)
	game := r.game
	r.mu.Unlock()

	finalStacks := make(map[string]int64)
	for _, p := range game.GetPlayers() {
		finalStacks[p.ID] = p.Balance
	}

	r.mu.Lock()
	for _, id := range r.handSeats {
		if seat, ok := r.seats[id]; ok {
			seat.IsReady = false
		}
	}
	r.handSeats = nil
	r.holeIndices = make(map[string][2]int)
	r.showdownPending = nil
	r.pendingCommunity = nil
	r.phase = PhaseWaiting
	r.mu.Unlock()

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(GameEndedEvent{Reason: "showdown", FinalStacks: finalStacks})
	}
}
