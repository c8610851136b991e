package poker

// ActionType is a player's choice on their turn. Numeric values are fixed
// and match the wire encoding in spec §6 (Action: Null=0/Bet=1/Call=2/
// Fold=3/Raise=4/Check=5/AllIn=6).
type ActionType int

const (
	ActionNull ActionType = iota
	ActionBet
	ActionCall
	ActionFold
	ActionRaise
	ActionCheck
	ActionAllIn
)

func (a ActionType) String() string {
	switch a {
	case ActionBet:
		return "bet"
	case ActionCall:
		return "call"
	case ActionFold:
		return "fold"
	case ActionRaise:
		return "raise"
	case ActionCheck:
		return "check"
	case ActionAllIn:
		return "all_in"
	default:
		return "null"
	}
}

// LegalAction describes one action a player may currently take, along with
// the bet-size bounds that apply to it (zero for actions that carry no
// amount).
type LegalAction struct {
	Action ActionType
	MinAmount int64
	MaxAmount int64
}

// ValidActions is the legal-action oracle spec §4.8 requires: given the
// current betting state, it enumerates every action the player to act may
// take, so a client never has to discover illegality by trial and error and
// the coordinator can reject anything outside this set without running the
// betting logic twice.
func (g *Game) ValidActions(playerID string) []LegalAction {
	g.mu.RLock()
	defer g.mu.RUnlock()

	player := g.getPlayerByID(playerID)
	if player == nil || g.currentPlayerID() != playerID || player.HasFolded || player.IsAllIn {
		return nil
	}

	toCall := g.currentBet - player.HasBet
	actions := []LegalAction{{Action: ActionFold}}

	if toCall <= 0 {
		actions = append(actions, LegalAction{Action: ActionCheck})
	} else if toCall < player.Balance {
		actions = append(actions, LegalAction{Action: ActionCall, MinAmount: toCall, MaxAmount: toCall})
	}

	if player.Balance > 0 {
		if toCall >= player.Balance {
			// Only option besides folding is calling all-in for less than toCall.
			actions = append(actions, LegalAction{Action: ActionAllIn, MinAmount: player.Balance, MaxAmount: player.Balance})
		} else {
			minRaiseTo := g.currentBet + g.lastRaiseSize
			if g.currentBet == 0 {
				minRaiseTo = g.config.BigBlind
			}
			maxRaiseTo := player.HasBet + player.Balance
			if minRaiseTo > maxRaiseTo {
				minRaiseTo = maxRaiseTo
			}
			action := ActionRaise
			if g.currentBet == 0 {
				action = ActionBet
			}
			actions = append(actions, LegalAction{Action: action, MinAmount: minRaiseTo, MaxAmount: maxRaiseTo})
			actions = append(actions, LegalAction{Action: ActionAllIn, MinAmount: maxRaiseTo, MaxAmount: maxRaiseTo})
		}
	}

	return actions
}

// IsLegal reports whether the given action/amount pair is currently
// included in ValidActions for playerID, the check the coordinator must run
// before forwarding any game_action proof to the verifier (spec §4.8:
// "reject proposed actions outside the oracle's result before even looking
// at the proof").
func (g *Game) IsLegal(playerID string, action ActionType, amount int64) bool {
	for _, la := range g.ValidActions(playerID) {
		if la.Action != action {
			continue
		}
		if la.MinAmount == 0 && la.MaxAmount == 0 {
			return true
		}
		return amount >= la.MinAmount && amount <= la.MaxAmount
	}
	return false
}
