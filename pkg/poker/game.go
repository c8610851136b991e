package poker

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/pokerbisonrelay/pkg/statemachine"
)

// GameStateFn represents a game state function following Rob Pike's pattern.
type GameStateFn = statemachine.StateFn[Game]

// Phase is the current street of a hand.
type Phase int

const (
	PhaseNewHandDealing Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
)

func (p Phase) String() string {
	switch p {
	case PhasePreFlop:
		return "pre_flop"
	case PhaseFlop:
		return "flop"
	case PhaseTurn:
		return "turn"
	case PhaseRiver:
		return "river"
	case PhaseShowdown:
		return "showdown"
	default:
		return "new_hand_dealing"
	}
}

// GameConfig holds configuration for a new game.
type GameConfig struct {
	NumPlayers     int
	StartingChips  int64
	SmallBlind     int64
	BigBlind       int64
	AutoStartDelay time.Duration // Delay before automatically starting next hand after showdown
	TimeBank       time.Duration
	Log            slog.Logger
}

// AutoStartCallbacks defines the callback functions needed for auto-start
// functionality, grounded on the teacher's identically-named mechanism.
type AutoStartCallbacks struct {
	MinPlayers       func() int
	StartNewHand     func() error
	OnNewHandStarted func()
}

// Winner describes one player's share of a resolved hand.
type Winner struct {
	PlayerID string
	HandRank HandRank
	BestHand []Card
	Winnings int64
}

// ShowdownResult is the outcome of resolving a hand at showdown.
type ShowdownResult struct {
	Winners  []Winner
	TotalPot int64
}

// Game holds the betting-engine state machine for one table. It never
// shuffles or deals cards itself: the canonical index each player's hole
// cards and the board occupy is computed deterministically (see deck.go),
// and the actual values arrive via SetHoleCard/SetCommunityCard as the
// mental-poker unmask coordinator resolves them. This keeps the betting
// engine a pure function of chip and card-index state, independent of how
// cards are masked, unmasked, or proven.
type Game struct {
	players       []*Player
	currentPlayer int
	dealer        int

	communityCards        []Card
	communityCardIndices  [MaxCommunityCards]int
	communityCardsRevealed int

	potManager     *PotManager
	currentBet     int64
	lastRaiseSize  int64
	round          int
	betRound       int
	actionsInRound int

	config GameConfig

	autoStartTimer     *time.Timer
	autoStartCanceled  bool
	autoStartCallbacks *AutoStartCallbacks

	log slog.Logger

	mu sync.RWMutex

	phase   Phase
	winners []string

	stateMachine *statemachine.StateMachine[Game]
}

// NewGame creates a new poker game with the given configuration. Players
// are supplied separately via ResetForNewHand/SetPlayers once the table
// knows who is seated.
func NewGame(cfg GameConfig) (*Game, error) {
	if cfg.NumPlayers < 2 || cfg.NumPlayers > 10 {
		return nil, fmt.Errorf("poker: numPlayers %d out of range", cfg.NumPlayers)
	}
	if cfg.Log == nil {
		return nil, fmt.Errorf("poker: log is required")
	}

	g := &Game{
		players:    make([]*Player, 0, cfg.NumPlayers),
		potManager: NewPotManager(),
		config:     cfg,
		log:        cfg.Log,
		phase:      PhaseNewHandDealing,
	}
	g.stateMachine = statemachine.NewStateMachine(g, stateNewHandDealing)
	return g, nil
}

// State functions following Rob Pike's pattern.

func stateNewHandDealing(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	entity.phase = PhaseNewHandDealing
	if callback != nil {
		callback("NEW_HAND_DEALING", statemachine.StateEntered)
	}
	return statePreDeal
}

func statePreDeal(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	entity.round++
	entity.communityCards = nil
	entity.communityCardsRevealed = 0
	entity.potManager = NewPotManager()
	entity.currentBet = 0
	entity.lastRaiseSize = 0
	entity.betRound = 0
	entity.dealer = (entity.dealer + 1) % len(entity.players)
	entity.phase = PhasePreFlop

	if indices, err := CommunityCardIndices(len(entity.players)); err == nil {
		entity.communityCardIndices = indices
	}

	if callback != nil {
		callback("PRE_DEAL", statemachine.StateEntered)
	}
	return stateDeal
}

func stateDeal(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	// Hole-card index assignment and unmasking happen outside the betting
	// engine (pkg/room, pkg/unmask); this state exists purely for state
	// machine progression once that's done.
	if callback != nil {
		callback("DEAL", statemachine.StateEntered)
	}
	return stateBlinds
}

func stateBlinds(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	if err := entity.postBlinds(); err != nil {
		entity.log.Debugf("stateBlinds: %v", err)
		if callback != nil {
			callback("END", statemachine.StateEntered)
		}
		return stateEnd
	}

	entity.initializeCurrentPlayer()

	if callback != nil {
		callback("BLINDS", statemachine.StateEntered)
	}
	return statePreFlop
}

func statePreFlop(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	if callback != nil {
		callback("PRE_FLOP", statemachine.StateEntered)
	}
	return statePreFlop
}

func stateFlop(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	entity.phase = PhaseFlop
	entity.currentBet = 0
	entity.lastRaiseSize = 0
	entity.potManager.ResetCurrentBets()
	if callback != nil {
		callback("FLOP", statemachine.StateEntered)
	}
	return stateFlop
}

func stateTurn(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	entity.phase = PhaseTurn
	entity.currentBet = 0
	entity.lastRaiseSize = 0
	entity.potManager.ResetCurrentBets()
	if callback != nil {
		callback("TURN", statemachine.StateEntered)
	}
	return stateTurn
}

func stateRiver(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	entity.phase = PhaseRiver
	entity.currentBet = 0
	entity.lastRaiseSize = 0
	entity.potManager.ResetCurrentBets()
	if callback != nil {
		callback("RIVER", statemachine.StateEntered)
	}
	return stateRiver
}

func stateShowdown(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	entity.phase = PhaseShowdown
	if callback != nil {
		callback("SHOWDOWN", statemachine.StateEntered)
	}
	return stateShowdown
}

func stateEnd(entity *Game, callback func(stateName string, event statemachine.StateEvent)) GameStateFn {
	if callback != nil {
		callback("END", statemachine.StateEntered)
	}
	return nil
}

// GetPot returns the total pot amount.
func (g *Game) GetPot() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.potManager.GetTotalPot()
}

// HoleCardIndicesFor returns the two canonical deck indices dealt to the
// player at the given table seat for the current hand.
func (g *Game) HoleCardIndicesFor(dealPos int) ([2]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return HoleCardIndices(dealPos, len(g.players))
}

// NextCommunityCardIndices returns the canonical indices for the next
// street to be revealed (3 for the flop, 1 each for turn/river), advancing
// the internal cursor. It does not populate card values — SetCommunityCard
// does that once the unmask coordinator resolves them.
func (g *Game) NextCommunityCardIndices() []int {
	g.mu.Lock()
	defer g.mu.Unlock()

	var n int
	switch g.phase {
	case PhaseFlop:
		n = 3
	case PhaseTurn, PhaseRiver:
		n = 1
	default:
		return nil
	}

	out := make([]int, 0, n)
	for i := 0; i < n && g.communityCardsRevealed < len(g.communityCardIndices); i++ {
		out = append(out, g.communityCardIndices[g.communityCardsRevealed])
		g.communityCardsRevealed++
	}
	return out
}

// SetCommunityCard records the resolved value of a community card index
// once the unmask coordinator has revealed it.
func (g *Game) SetCommunityCard(index int, card Card) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.communityCards = append(g.communityCards, card)
}

// SetHoleCard records the resolved value of a player's hole card once
// unmasked to them (or, at showdown, to the server).
func (g *Game) SetHoleCard(playerID string, slot int, card Card) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.getPlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("poker: player %s not in game", playerID)
	}
	for len(p.Hand) <= slot {
		p.Hand = append(p.Hand, Card{})
	}
	p.Hand[slot] = card
	return nil
}

// GetPhase returns the current phase of the game.
func (g *Game) GetPhase() Phase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

// GetCurrentBet returns the current bet amount.
func (g *Game) GetCurrentBet() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentBet
}

// AddToPotForPlayer adds the specified amount to the pot for a specific player.
func (g *Game) AddToPotForPlayer(playerIndex int, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.potManager.AddBet(playerIndex, amount)
}

// GetCommunityCards returns a copy of the resolved community cards.
func (g *Game) GetCommunityCards() []Card {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cards := make([]Card, len(g.communityCards))
	copy(cards, g.communityCards)
	return cards
}

// GetPlayers returns the game's players slice.
func (g *Game) GetPlayers() []*Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players
}

// GetCurrentPlayer returns the index of the current player to act.
func (g *Game) GetCurrentPlayer() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentPlayer
}

// GetCurrentPlayerObject returns the current player object.
func (g *Game) GetCurrentPlayerObject() *Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.currentPlayer >= 0 && g.currentPlayer < len(g.players) {
		return g.players[g.currentPlayer]
	}
	return nil
}

// GetWinners returns the winners of the last resolved hand.
func (g *Game) GetWinners() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.winners
}

// SetPlayers installs the seated players for this game, in seat order,
// preserving their existing state (balances, IDs) rather than recreating
// them, so a single Player object threads through every hand at a table.
func (g *Game) SetPlayers(players []*Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.players = players
}

// ResetForNewHand resets the game state for a new hand while preserving the
// game instance and player objects.
func (g *Game) ResetForNewHand(activePlayers []*Player) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.players = activePlayers
	g.communityCards = nil
	g.communityCardsRevealed = 0
	g.potManager = NewPotManager()
	g.currentBet = 0
	g.lastRaiseSize = 0
	g.round++
	g.betRound = 0
	g.winners = nil
	g.actionsInRound = 0

	if len(activePlayers) > 0 {
		g.dealer = (g.dealer + 1) % len(activePlayers)
	}
	if indices, err := CommunityCardIndices(len(activePlayers)); err == nil {
		g.communityCardIndices = indices
	}

	g.phase = PhaseNewHandDealing
	g.currentPlayer = -1
	g.stateMachine.SetState(stateNewHandDealing)
}

// BeginBettingRound posts blinds and seats the first actor for a freshly
// dealt hand. Dealing and hole-card unmasking happen entirely outside the
// betting engine (pkg/room, pkg/unmask); this is the explicit handoff
// point the room calls once hole cards are assigned and unmasked to their
// owners, mirroring the teacher's StartGame/startNewHand calling postBlinds
// immediately after dealCardsToPlayers.
func (g *Game) BeginBettingRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.postBlinds(); err != nil {
		return err
	}
	g.phase = PhasePreFlop
	g.initializeCurrentPlayer()
	g.stateMachine.SetState(statePreFlop)
	return nil
}

// postBlinds posts the small and big blind for the hand, capping either at
// a player's remaining balance (treating them as immediately all-in) and
// setting the street's opening bet and first actor.
func (g *Game) postBlinds() error {
	numPlayers := len(g.players)
	if numPlayers < 2 {
		return fmt.Errorf("poker: need at least 2 players for blinds")
	}

	smallBlindPos := (g.dealer + 1) % numPlayers
	bigBlindPos := (g.dealer + 2) % numPlayers
	if numPlayers == 2 {
		smallBlindPos = g.dealer
		bigBlindPos = (g.dealer + 1) % numPlayers
	}

	post := func(pos int, amount int64) {
		p := g.players[pos]
		if amount > p.Balance {
			amount = p.Balance
			p.IsAllIn = true
		}
		p.Balance -= amount
		p.HasBet += amount
		g.potManager.AddBet(pos, amount)
	}

	post(smallBlindPos, g.config.SmallBlind)
	post(bigBlindPos, g.config.BigBlind)

	g.currentBet = g.config.BigBlind
	g.lastRaiseSize = g.config.BigBlind

	if numPlayers == 2 {
		g.currentPlayer = smallBlindPos
	} else {
		g.currentPlayer = (bigBlindPos + 1) % numPlayers
	}
	return nil
}

// HandlePlayerFold handles a player folding.
func (g *Game) HandlePlayerFold(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handlePlayerFold(playerID)
}

func (g *Game) handlePlayerFold(playerID string) error {
	player := g.getPlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("poker: player not found in game")
	}
	if g.currentPlayerID() != playerID {
		return fmt.Errorf("poker: not your turn to act")
	}

	player.HasFolded = true
	player.LastAction = time.Now()
	g.updatePlayerState(player)

	g.actionsInRound++
	g.advanceToNextPlayer()
	return nil
}

// HandlePlayerCall handles a player calling.
func (g *Game) HandlePlayerCall(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handlePlayerCall(playerID)
}

func (g *Game) handlePlayerCall(playerID string) error {
	player := g.getPlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("poker: player not found in game")
	}
	if g.currentPlayerID() != playerID {
		return fmt.Errorf("poker: not your turn to act")
	}
	if g.currentBet <= player.HasBet {
		return fmt.Errorf("poker: nothing to call - use check instead")
	}

	delta := g.currentBet - player.HasBet
	if delta > player.Balance {
		delta = player.Balance // call all-in for less
	}

	player.Balance -= delta
	player.HasBet += delta
	player.LastAction = time.Now()
	g.updatePlayerState(player)

	if idx := g.indexOf(playerID); idx >= 0 {
		g.potManager.AddBet(idx, delta)
	}

	g.actionsInRound++
	g.advanceToNextPlayer()
	return nil
}

// HandlePlayerCheck handles a player checking.
func (g *Game) HandlePlayerCheck(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handlePlayerCheck(playerID)
}

func (g *Game) handlePlayerCheck(playerID string) error {
	player := g.getPlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("poker: player not found in game")
	}
	if g.currentPlayerID() != playerID {
		return fmt.Errorf("poker: not your turn to act")
	}
	if player.HasBet < g.currentBet {
		return fmt.Errorf("poker: cannot check with a bet to call (player bet %d, current bet %d)",
			player.HasBet, g.currentBet)
	}

	player.LastAction = time.Now()
	g.actionsInRound++
	g.advanceToNextPlayer()
	return nil
}

// HandlePlayerBet handles a player betting or raising to amount (the total
// size of their bet this street, not the delta).
func (g *Game) HandlePlayerBet(playerID string, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handlePlayerBet(playerID, amount)
}

func (g *Game) handlePlayerBet(playerID string, amount int64) error {
	player := g.getPlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("poker: player not found in game")
	}
	if g.currentPlayerID() != playerID {
		return fmt.Errorf("poker: not your turn to act")
	}
	if amount < player.HasBet {
		return fmt.Errorf("poker: cannot decrease bet")
	}

	delta := amount - player.HasBet
	if delta > 0 && delta > player.Balance {
		return fmt.Errorf("poker: insufficient balance")
	}

	if delta > 0 {
		player.Balance -= delta
	}
	player.HasBet = amount
	player.LastAction = time.Now()
	g.updatePlayerState(player)

	if amount > g.currentBet {
		raiseSize := amount - g.currentBet
		if raiseSize > g.lastRaiseSize {
			g.lastRaiseSize = raiseSize
		}
		g.currentBet = amount
	}

	if delta > 0 {
		if idx := g.indexOf(playerID); idx >= 0 {
			g.potManager.AddBet(idx, delta)
		}
	}

	g.actionsInRound++
	g.advanceToNextPlayer()
	return nil
}

func (g *Game) indexOf(playerID string) int {
	for i, p := range g.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (g *Game) updatePlayerState(player *Player) {
	if player == nil || player.stateMachine == nil {
		return
	}
	player.stateMachine.Dispatch(func(string, statemachine.StateEvent) {})
}

func (g *Game) getPlayerByID(playerID string) *Player {
	for _, p := range g.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (g *Game) currentPlayerID() string {
	if g.currentPlayer < 0 || g.currentPlayer >= len(g.players) {
		return ""
	}
	return g.players[g.currentPlayer].ID
}

func (g *Game) advanceToNextPlayer() {
	if len(g.players) == 0 {
		return
	}
	checked := 0
	maxPlayers := len(g.players)
	for {
		g.currentPlayer = (g.currentPlayer + 1) % len(g.players)
		checked++
		if checked >= maxPlayers {
			break
		}
		if !g.players[g.currentPlayer].HasFolded && !g.players[g.currentPlayer].IsAllIn {
			break
		}
	}
}

// HandleShowdown processes the showdown logic and returns results.
func (g *Game) HandleShowdown() *ShowdownResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handleShowdown()
}

func (g *Game) handleShowdown() *ShowdownResult {
	activePlayers := make([]*Player, 0, len(g.players))
	for _, player := range g.players {
		if !player.HasFolded {
			activePlayers = append(activePlayers, player)
		}
	}

	result := &ShowdownResult{TotalPot: g.potManager.GetTotalPot()}

	if len(activePlayers) <= 1 {
		if len(activePlayers) == 1 {
			winner := activePlayers[0]
			winnings := g.potManager.GetTotalPot()
			winner.Balance += winnings
			result.Winners = append(result.Winners, Winner{PlayerID: winner.ID, BestHand: winner.Hand, Winnings: winnings})
		}
		g.phase = PhaseShowdown
		return result
	}

	canEvaluate := true
	for _, player := range activePlayers {
		if len(player.Hand)+len(g.communityCards) < 5 {
			canEvaluate = false
			break
		}
	}

	if !canEvaluate {
		// Incomplete reveal (should not happen once the unmask coordinator
		// has finished its job); award the pot to the first active player
		// rather than leave chips stranded.
		winner := activePlayers[0]
		winnings := g.potManager.GetTotalPot()
		winner.Balance += winnings
		result.Winners = append(result.Winners, Winner{PlayerID: winner.ID, Winnings: winnings})
		g.phase = PhaseShowdown
		return result
	}

	for _, player := range activePlayers {
		handValue, err := EvaluateHand(player.Hand, g.communityCards)
		if err != nil {
			g.log.Errorf("handleShowdown: evaluate hand for %s: %v", player.ID, err)
			continue
		}
		player.HandValue = &handValue
		player.HandDescription = GetHandDescription(handValue)
	}

	g.potManager.ReturnUncalledBet(g.players)
	g.potManager.CreateSidePots(g.players)

	prevBalances := make(map[string]int64, len(g.players))
	for _, p := range g.players {
		prevBalances[p.ID] = p.Balance
	}

	g.potManager.DistributePots(g.players, g.dealer)

	for _, p := range g.players {
		delta := p.Balance - prevBalances[p.ID]
		if delta <= 0 {
			continue
		}
		w := Winner{PlayerID: p.ID, Winnings: delta}
		if p.HandValue != nil {
			w.HandRank = p.HandValue.Rank
			w.BestHand = p.HandValue.BestHand
		} else {
			w.BestHand = p.Hand
		}
		result.Winners = append(result.Winners, w)
	}

	g.phase = PhaseShowdown
	g.winners = make([]string, len(result.Winners))
	for i, w := range result.Winners {
		g.winners[i] = w.PlayerID
	}
	return result
}

// MaybeAdvancePhase checks if the betting round is finished and, if so,
// progresses the game to the next phase.
func (g *Game) MaybeAdvancePhase() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maybeAdvancePhase()
}

func (g *Game) maybeAdvancePhase() {
	if g.phase == PhaseNewHandDealing {
		return
	}

	activePlayers := 0
	playersToAct := 0
	for _, p := range g.players {
		if p.HasFolded {
			continue
		}
		activePlayers++
		if !p.IsAllIn {
			playersToAct++
		}
	}

	if activePlayers <= 1 {
		g.phase = PhaseShowdown
		g.stateMachine.SetState(stateShowdown)
		return
	}

	// Everyone who can still act must have acted at least once, and every
	// non-all-in active player's bet must match the current bet.
	if playersToAct > 0 && g.actionsInRound < activePlayers {
		return
	}
	for _, p := range g.players {
		if p.HasFolded || p.IsAllIn {
			continue
		}
		if p.HasBet != g.currentBet {
			return
		}
	}

	switch g.phase {
	case PhasePreFlop:
		g.stateMachine.SetState(stateFlop)
		g.phase = PhaseFlop
	case PhaseFlop:
		g.stateMachine.SetState(stateTurn)
		g.phase = PhaseTurn
	case PhaseTurn:
		g.stateMachine.SetState(stateRiver)
		g.phase = PhaseRiver
	case PhaseRiver:
		g.phase = PhaseShowdown
		g.stateMachine.SetState(stateShowdown)
		return
	}

	for _, p := range g.players {
		p.HasBet = 0
	}
	g.currentBet = 0
	g.lastRaiseSize = 0
	g.actionsInRound = 0
	g.initializeCurrentPlayer()
}

// AdvanceToNextPlayer moves to the next active player.
func (g *Game) AdvanceToNextPlayer() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advanceToNextPlayer()
}

func (g *Game) initializeCurrentPlayer() {
	if len(g.players) == 0 {
		g.currentPlayer = -1
		return
	}
	numPlayers := len(g.players)

	if numPlayers == 2 {
		g.currentPlayer = g.dealer
	} else {
		g.currentPlayer = (g.dealer + 1) % numPlayers
	}

	checked := 0
	for {
		if g.currentPlayer < 0 || g.currentPlayer >= len(g.players) {
			g.currentPlayer = 0
		}
		p := g.players[g.currentPlayer]
		if !p.HasFolded && !p.IsAllIn {
			break
		}
		g.currentPlayer = (g.currentPlayer + 1) % len(g.players)
		checked++
		if checked >= numPlayers {
			break
		}
	}
}

// GetRound returns the current round (hand) number.
func (g *Game) GetRound() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.round
}

// GetDealer returns the dealer's seat index.
func (g *Game) GetDealer() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dealer
}

// SetAutoStartCallbacks sets the callback functions for auto-start functionality.
func (g *Game) SetAutoStartCallbacks(callbacks *AutoStartCallbacks) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.autoStartCallbacks = callbacks
}

// ScheduleAutoStart schedules the automatic start of the next hand after the
// configured delay, so the table doesn't sit idle waiting for a coordinator
// round-trip between hands.
func (g *Game) ScheduleAutoStart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scheduleAutoStart()
}

func (g *Game) scheduleAutoStart() {
	g.cancelAutoStart()

	if g.config.AutoStartDelay <= 0 || g.autoStartCallbacks == nil {
		return
	}

	g.autoStartCanceled = false
	g.autoStartTimer = time.AfterFunc(g.config.AutoStartDelay, func() {
		g.mu.Lock()
		canceled := g.autoStartCanceled
		callbacks := g.autoStartCallbacks
		log := g.log
		g.mu.Unlock()

		if canceled || callbacks == nil {
			return
		}

		readyCount := 0
		for _, player := range g.players {
			if player.Balance >= g.config.BigBlind {
				readyCount++
			}
		}

		if readyCount >= callbacks.MinPlayers() {
			if err := callbacks.StartNewHand(); err != nil {
				log.Debugf("auto-start new hand failed: %v", err)
			} else if callbacks.OnNewHandStarted != nil {
				go callbacks.OnNewHandStarted()
			}
		}
	})
}

// CancelAutoStart cancels any pending auto-start timer.
func (g *Game) CancelAutoStart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelAutoStart()
}

func (g *Game) cancelAutoStart() {
	if g.autoStartTimer != nil {
		g.autoStartTimer.Stop()
		g.autoStartTimer = nil
	}
	g.autoStartCanceled = true
}

// GameStateSnapshot is a point-in-time snapshot of game state for
// persistence and safe concurrent access, grounded on the teacher's
// identically-purposed snapshot.
type GameStateSnapshot struct {
	Dealer         int
	CurrentPlayer  int
	CurrentBet     int64
	Pot            int64
	Round          int
	BetRound       int
	CommunityCards []Card
	Players        []*Player
}

// GetStateSnapshot returns an atomic snapshot of the game state.
func (g *Game) GetStateSnapshot() GameStateSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	playersCopy := make([]*Player, len(g.players))
	for i, player := range g.players {
		playerCopy := &Player{
			ID:              player.ID,
			Name:            player.Name,
			TableSeat:       player.TableSeat,
			IsReady:         player.IsReady,
			Balance:         player.Balance,
			StartingBalance: player.StartingBalance,
			HasBet:          player.HasBet,
			HasFolded:       player.HasFolded,
			IsAllIn:         player.IsAllIn,
			IsDealer:        player.IsDealer,
			IsTurn:          player.IsTurn,
			Hand:            append([]Card{}, player.Hand...),
			HandDescription: player.HandDescription,
			HandValue:       player.HandValue,
			LastAction:      player.LastAction,
		}
		playersCopy[i] = playerCopy
	}

	return GameStateSnapshot{
		Dealer:         g.dealer,
		CurrentPlayer:  g.currentPlayer,
		CurrentBet:     g.currentBet,
		Pot:            g.potManager.GetTotalPot(),
		Round:          g.round,
		BetRound:       g.betRound,
		CommunityCards: append([]Card{}, g.communityCards...),
		Players:        playersCopy,
	}
}

// ModifyPlayers executes fn while holding the game's write lock, giving
// callers safe, exclusive access to the underlying player slice (e.g. when
// restoring a persisted snapshot).
func (g *Game) ModifyPlayers(fn func(players []*Player)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.players)
}

// SetOnNewHandStartedCallback registers a callback invoked each time a new
// hand is successfully auto-started. It runs on a goroutine of its own,
// started after StartNewHand returns, so it must be thread-safe.
func (g *Game) SetOnNewHandStartedCallback(cb func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.autoStartCallbacks == nil {
		g.autoStartCallbacks = &AutoStartCallbacks{}
	}
	g.autoStartCallbacks.OnNewHandStarted = cb
}
