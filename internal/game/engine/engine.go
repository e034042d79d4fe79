package engine

import (
	"fmt"
	"sort"

	"kaboom/internal/game/cards"
)

const (
	handSize     = 4
	maxPeeks     = 2
	peekLogLimit = 5
)

// NewGame builds a fresh setup-phase state from the agreed roster. Turn
// order is the roster order and stays fixed for the whole game.
func NewGame(roster []Seat) *GameState {
	players := make([]*Player, 0, len(roster))
	peeks := make(map[string]int, len(roster))
	for _, seat := range roster {
		players = append(players, &Player{
			ID:     seat.ID,
			Name:   seat.Name,
			Hand:   []cards.Card{},
			Active: true,
		})
		peeks[seat.ID] = 0
	}
	current := ""
	if len(players) > 0 {
		current = players[0].ID
	}
	return &GameState{
		Phase:           PhaseSetup,
		Players:         players,
		Deck:            cards.NewDeck(),
		DiscardPile:     []cards.Card{},
		CurrentPlayerID: current,
		PeeksUsed:       peeks,
		PeekedCards:     make(map[string][]int),
		PeekLog:         []PeekEntry{},
		PeekingPlayerID: current,
	}
}

// DealInitialHands moves setup → pre_peek: four cards to every player and a
// clean slate for peeks and end-of-game markers.
func (g *GameState) DealInitialHands() error {
	if g.Phase != PhaseSetup {
		return fmt.Errorf("%w: deal only allowed during setup, not %s", ErrInvalidPhase, g.Phase)
	}
	if len(g.Players) == 0 {
		return fmt.Errorf("%w: empty roster", ErrPlayerNotFound)
	}
	for _, p := range g.Players {
		hand := make([]cards.Card, 0, handSize)
		for i := 0; i < handSize; i++ {
			hand = append(hand, g.drawFromDeck())
		}
		p.Hand = hand
		p.Active = true
		p.Revealed = false
	}
	g.Phase = PhasePrePeek
	g.DrawnCard = nil
	g.PeekLog = []PeekEntry{}
	g.PeekedCards = make(map[string][]int)
	g.PeeksUsed = make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		g.PeeksUsed[p.ID] = 0
	}
	g.KaboomCallerID = ""
	g.InstantWinnerID = ""
	g.ReactionState = nil
	g.FinalScores = nil
	g.CurrentPlayerID = g.Players[0].ID
	g.PeekingPlayerID = g.Players[0].ID
	return nil
}

// Peek privately reveals one of the peeking player's own cards. A position
// already seen is free to look at again; each new position consumes one of
// the two allowances.
func (g *GameState) Peek(playerID string, idx int) (cards.Card, error) {
	if g.Phase != PhasePrePeek {
		return cards.Card{}, fmt.Errorf("%w: peeking only allowed during pre_peek, not %s", ErrInvalidPhase, g.Phase)
	}
	p := g.findPlayer(playerID)
	if p == nil {
		return cards.Card{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if playerID != g.PeekingPlayerID {
		return cards.Card{}, fmt.Errorf("%w: it is not your peek turn", ErrNotYourTurn)
	}
	if idx < 0 || idx >= len(p.Hand) {
		return cards.Card{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	for _, seen := range g.PeekedCards[playerID] {
		if seen == idx {
			return p.Hand[idx], nil
		}
	}
	if g.PeeksUsed[playerID] >= maxPeeks {
		return cards.Card{}, fmt.Errorf("%w: both peeks already used", ErrActionAlreadyTaken)
	}
	g.PeekedCards[playerID] = append(g.PeekedCards[playerID], idx)
	g.PeeksUsed[playerID]++
	g.PeekLog = append(g.PeekLog, PeekEntry{
		PlayerName: p.Name,
		CardPos:    idx + 1,
		Label:      cards.Label(p.Hand[idx]),
	})
	if len(g.PeekLog) > peekLogLimit {
		g.PeekLog = g.PeekLog[len(g.PeekLog)-peekLogLimit:]
	}
	return p.Hand[idx], nil
}

// CompletePeeking signals the peeking player is done. When the last player
// in order signals, the phase moves to playing with the first player up.
func (g *GameState) CompletePeeking(playerID string) error {
	if g.Phase != PhasePrePeek {
		return fmt.Errorf("%w: peeking only allowed during pre_peek, not %s", ErrInvalidPhase, g.Phase)
	}
	if g.findPlayer(playerID) == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if playerID != g.PeekingPlayerID {
		return fmt.Errorf("%w: it is not your peek turn", ErrNotYourTurn)
	}
	idx := g.playerIndex(playerID)
	if idx < len(g.Players)-1 {
		g.PeekingPlayerID = g.Players[idx+1].ID
		return nil
	}
	g.Phase = PhasePlaying
	g.PeekingPlayerID = ""
	g.CurrentPlayerID = g.Players[0].ID
	return nil
}

// Draw takes the next card from the deck into the current player's
// unresolved draw slot. One draw per turn.
func (g *GameState) Draw(playerID string) error {
	if err := g.requireTurn(playerID); err != nil {
		return err
	}
	if g.DrawnCard != nil {
		return fmt.Errorf("%w: you already drew this turn", ErrActionAlreadyTaken)
	}
	c := g.drawFromDeck()
	g.DrawnCard = &c
	return nil
}

// Replace swaps the drawn card into hand position idx; the replaced card
// goes to the discard pile and opens a reaction window keyed on its rank.
func (g *GameState) Replace(playerID string, idx int) error {
	if err := g.requireTurn(playerID); err != nil {
		return err
	}
	if g.DrawnCard == nil {
		return fmt.Errorf("%w: nothing drawn to resolve", ErrActionAlreadyTaken)
	}
	p := g.findPlayer(playerID)
	if idx < 0 || idx >= len(p.Hand) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	replaced := p.Hand[idx]
	g.DiscardPile = append(g.DiscardPile, replaced)
	p.Hand[idx] = *g.DrawnCard
	g.DrawnCard = nil
	g.triggerReaction(replaced.Rank, playerID, "replace")
	return nil
}

// Discard sends the drawn card straight to the discard pile and opens a
// reaction window keyed on its rank.
func (g *GameState) Discard(playerID string) error {
	if err := g.requireTurn(playerID); err != nil {
		return err
	}
	if g.DrawnCard == nil {
		return fmt.Errorf("%w: nothing drawn to resolve", ErrActionAlreadyTaken)
	}
	drawn := *g.DrawnCard
	g.DiscardPile = append(g.DiscardPile, drawn)
	g.DrawnCard = nil
	g.triggerReaction(drawn.Rank, playerID, "discard")
	return nil
}

// CallKaboom ends the round for the caller: hand revealed, caller out,
// phase moves to kaboom. Exactly one caller per game, in place of a draw.
func (g *GameState) CallKaboom(playerID string) error {
	if err := g.requireTurn(playerID); err != nil {
		return err
	}
	if g.DrawnCard != nil {
		return fmt.Errorf("%w: resolve your draw before calling kaboom", ErrActionAlreadyTaken)
	}
	if g.KaboomCallerID != "" {
		return fmt.Errorf("%w: kaboom already called", ErrActionAlreadyTaken)
	}
	p := g.findPlayer(playerID)
	p.Active = false
	p.Revealed = true
	g.KaboomCallerID = playerID
	g.Phase = PhaseKaboom
	g.advanceTurn()
	return nil
}

// ComputeFinalScores moves kaboom → game_over: every player's hand total,
// sorted ascending. Ties are not broken; all lowest totals win jointly.
func (g *GameState) ComputeFinalScores() error {
	if g.Phase != PhaseKaboom {
		return fmt.Errorf("%w: scoring only allowed after kaboom, not %s", ErrInvalidPhase, g.Phase)
	}
	scores := make([]Score, 0, len(g.Players))
	for _, p := range g.Players {
		scores = append(scores, Score{PlayerID: p.ID, Name: p.Name, Total: HandTotal(p.Hand)})
		p.Revealed = true
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Total < scores[j].Total })
	g.FinalScores = scores
	g.Phase = PhaseGameOver
	return nil
}

// Winners returns every score tied for the lowest total, or nil before
// scoring.
func (g *GameState) Winners() []Score {
	if len(g.FinalScores) == 0 {
		return nil
	}
	best := g.FinalScores[0].Total
	var winners []Score
	for _, s := range g.FinalScores {
		if s.Total == best {
			winners = append(winners, s)
		}
	}
	return winners
}

// HandTotal sums the scoring values of a hand.
func HandTotal(hand []cards.Card) int {
	total := 0
	for _, c := range hand {
		total += cards.Value(c)
	}
	return total
}

// TopDiscard returns the top of the discard pile.
func (g *GameState) TopDiscard() (cards.Card, bool) {
	if len(g.DiscardPile) == 0 {
		return cards.Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// requireTurn guards the normal turn actions: playing phase, no open
// reaction window, acting player is the current player.
func (g *GameState) requireTurn(playerID string) error {
	if g.Phase != PhasePlaying {
		return fmt.Errorf("%w: action only allowed during playing, not %s", ErrInvalidPhase, g.Phase)
	}
	if g.ReactionState != nil {
		return fmt.Errorf("%w: a reaction window is open", ErrInvalidPhase)
	}
	if g.findPlayer(playerID) == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if playerID != g.CurrentPlayerID {
		return ErrNotYourTurn
	}
	return nil
}

func (g *GameState) findPlayer(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *GameState) playerIndex(id string) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// drawFromDeck pops the next card, atomically replenishing with a fresh
// shuffled deck on exhaustion. Replenishment forfeits strict card
// conservation; Reshuffles records that it happened.
func (g *GameState) drawFromDeck() cards.Card {
	if len(g.Deck) == 0 {
		g.Deck = cards.NewDeck()
		g.Reshuffles++
	}
	c := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return c
}

// advanceTurn moves the marker to the next active player in the fixed
// cyclic order, skipping inactive players. No-op when nobody is active.
func (g *GameState) advanceTurn() {
	if len(g.Players) == 0 {
		return
	}
	anyActive := false
	for _, p := range g.Players {
		if p.Active {
			anyActive = true
			break
		}
	}
	if !anyActive {
		return
	}
	idx := g.playerIndex(g.CurrentPlayerID)
	if idx < 0 {
		idx = 0
	}
	for {
		idx = (idx + 1) % len(g.Players)
		if g.Players[idx].Active {
			g.CurrentPlayerID = g.Players[idx].ID
			return
		}
	}
}

// checkInstantWin returns the id of an active player with an empty hand.
func (g *GameState) checkInstantWin() string {
	for _, p := range g.Players {
		if p.Active && len(p.Hand) == 0 {
			return p.ID
		}
	}
	return ""
}

func (g *GameState) endInstantWin(winnerID string) {
	g.Phase = PhaseGameOver
	g.FinalScores = nil
	g.KaboomCallerID = ""
	g.InstantWinnerID = winnerID
}

func (g *GameState) triggerReaction(rank, initiatorID, source string) {
	g.ReactionState = &ReactionState{
		Rank:          rank,
		InitiatorID:   initiatorID,
		Source:        source,
		PendingAction: pendingAdvanceTurn,
	}
}
