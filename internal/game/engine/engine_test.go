package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaboom/internal/game/cards"
)

func testRoster(n int) []Seat {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"}
	roster := make([]Seat, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, Seat{ID: "p" + string(rune('1'+i)), Name: names[i]})
	}
	return roster
}

// playingState builds a 2-player state in the playing phase with fixed
// hands and a fixed deck so every draw is predictable. Deck is consumed
// from the end.
func playingState(deckTopFirst ...cards.Card) *GameState {
	g := NewGame(testRoster(2))
	g.Players[0].Hand = []cards.Card{{Rank: "A", Suit: "♠"}, {Rank: "2", Suit: "♠"}, {Rank: "3", Suit: "♠"}, {Rank: "4", Suit: "♠"}}
	g.Players[1].Hand = []cards.Card{{Rank: "5", Suit: "♠"}, {Rank: "6", Suit: "♠"}, {Rank: "7", Suit: "♠"}, {Rank: "8", Suit: "♠"}}
	deck := make([]cards.Card, len(deckTopFirst))
	for i, c := range deckTopFirst {
		deck[len(deck)-1-i] = c
	}
	g.Deck = deck
	g.DiscardPile = []cards.Card{}
	g.Phase = PhasePlaying
	g.CurrentPlayerID = "p1"
	g.PeekingPlayerID = ""
	return g
}

func stateJSON(t *testing.T, g *GameState) string {
	t.Helper()
	b, err := json.Marshal(g)
	require.NoError(t, err)
	return string(b)
}

func totalCards(g *GameState) int {
	n := len(g.Deck) + len(g.DiscardPile)
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	if g.DrawnCard != nil {
		n++
	}
	return n
}

func TestDealInitialHands(t *testing.T) {
	g := NewGame(testRoster(3))
	require.NoError(t, g.DealInitialHands())

	assert.Equal(t, PhasePrePeek, g.Phase)
	for _, p := range g.Players {
		assert.Len(t, p.Hand, 4)
		assert.True(t, p.Active)
		assert.False(t, p.Revealed)
	}
	assert.Equal(t, "p1", g.CurrentPlayerID)
	assert.Equal(t, "p1", g.PeekingPlayerID)
	assert.Equal(t, 52, totalCards(g))
	assert.Equal(t, 0, g.Reshuffles)

	// dealing twice is not a thing
	assert.ErrorIs(t, g.DealInitialHands(), ErrInvalidPhase)
}

func TestDealInitialHandsEmptyRoster(t *testing.T) {
	g := NewGame(nil)
	assert.ErrorIs(t, g.DealInitialHands(), ErrPlayerNotFound)
	assert.Equal(t, PhaseSetup, g.Phase)
}

func TestPeekCapAndRepeek(t *testing.T) {
	g := NewGame(testRoster(2))
	require.NoError(t, g.DealInitialHands())

	c0, err := g.Peek("p1", 0)
	require.NoError(t, err)
	assert.Equal(t, g.Players[0].Hand[0], c0)
	_, err = g.Peek("p1", 1)
	require.NoError(t, err)

	// re-peeking a seen position is free
	again, err := g.Peek("p1", 0)
	require.NoError(t, err)
	assert.Equal(t, c0, again)
	assert.Equal(t, 2, g.PeeksUsed["p1"])

	// a third distinct position is rejected
	_, err = g.Peek("p1", 2)
	assert.ErrorIs(t, err, ErrActionAlreadyTaken)
	assert.Equal(t, 2, g.PeeksUsed["p1"])

	// out of range and out of turn
	_, err = g.Peek("p1", 7)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = g.Peek("p2", 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = g.Peek("ghost", 0)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestCompletePeekingAdvances(t *testing.T) {
	g := NewGame(testRoster(3))
	require.NoError(t, g.DealInitialHands())

	assert.ErrorIs(t, g.CompletePeeking("p2"), ErrNotYourTurn)
	require.NoError(t, g.CompletePeeking("p1"))
	assert.Equal(t, "p2", g.PeekingPlayerID)
	assert.Equal(t, PhasePrePeek, g.Phase)

	require.NoError(t, g.CompletePeeking("p2"))
	require.NoError(t, g.CompletePeeking("p3"))
	assert.Equal(t, PhasePlaying, g.Phase)
	assert.Equal(t, "p1", g.CurrentPlayerID)
	assert.Empty(t, g.PeekingPlayerID)
}

func TestPeekLogCapped(t *testing.T) {
	g := NewGame(testRoster(4))
	require.NoError(t, g.DealInitialHands())
	for _, p := range g.Players {
		_, err := g.Peek(p.ID, 0)
		require.NoError(t, err)
		_, err = g.Peek(p.ID, 1)
		require.NoError(t, err)
		require.NoError(t, g.CompletePeeking(p.ID))
	}
	assert.Len(t, g.PeekLog, 5)
	// oldest entries trimmed: the log ends with the last peek made
	assert.Equal(t, "Dave", g.PeekLog[4].PlayerName)
}

func TestTurnExclusivityLeavesStateUntouched(t *testing.T) {
	g := playingState(cards.Card{Rank: "K", Suit: "♦"})
	before := stateJSON(t, g)

	assert.ErrorIs(t, g.Draw("p2"), ErrNotYourTurn)
	assert.ErrorIs(t, g.Discard("p2"), ErrNotYourTurn)
	assert.ErrorIs(t, g.Replace("p2", 0), ErrNotYourTurn)
	assert.ErrorIs(t, g.CallKaboom("p2"), ErrNotYourTurn)
	assert.ErrorIs(t, g.Draw("ghost"), ErrPlayerNotFound)

	assert.Equal(t, before, stateJSON(t, g), "failed actions must not mutate state")
}

func TestDrawReplaceScenario(t *testing.T) {
	// 2 players, deterministic deck: Alice draws K♦ and replaces slot 0.
	g := playingState(cards.Card{Rank: "K", Suit: "♦"})

	require.NoError(t, g.Draw("p1"))
	require.NotNil(t, g.DrawnCard)
	assert.Equal(t, cards.Card{Rank: "K", Suit: "♦"}, *g.DrawnCard)

	// second draw in the same turn
	assert.ErrorIs(t, g.Draw("p1"), ErrActionAlreadyTaken)

	require.NoError(t, g.Replace("p1", 0))
	assert.Nil(t, g.DrawnCard)
	assert.Equal(t, []cards.Card{{Rank: "K", Suit: "♦"}, {Rank: "2", Suit: "♠"}, {Rank: "3", Suit: "♠"}, {Rank: "4", Suit: "♠"}}, g.Players[0].Hand)

	top, ok := g.TopDiscard()
	require.True(t, ok)
	assert.Equal(t, cards.Card{Rank: "A", Suit: "♠"}, top)

	// reaction window keyed on the replaced card's rank suspends turn flow
	require.NotNil(t, g.ReactionState)
	assert.Equal(t, "A", g.ReactionState.Rank)
	assert.Equal(t, "p1", g.ReactionState.InitiatorID)
	assert.Equal(t, "p1", g.CurrentPlayerID)
	assert.ErrorIs(t, g.Draw("p1"), ErrInvalidPhase)

	// Bob declines; the deferred advance runs
	require.NoError(t, g.ResolveReaction("p2", ReactionAction{Type: ReactDecline}))
	assert.Nil(t, g.ReactionState)
	assert.Equal(t, "p2", g.CurrentPlayerID)
	assert.Equal(t, 52, totalCards(g))
}

func TestResolveBeforeDraw(t *testing.T) {
	g := playingState(cards.Card{Rank: "9", Suit: "♣"})
	assert.ErrorIs(t, g.Discard("p1"), ErrActionAlreadyTaken)
	assert.ErrorIs(t, g.Replace("p1", 0), ErrActionAlreadyTaken)
}

func TestReplaceIndexOutOfRange(t *testing.T) {
	g := playingState(cards.Card{Rank: "9", Suit: "♣"})
	require.NoError(t, g.Draw("p1"))
	before := stateJSON(t, g)
	assert.ErrorIs(t, g.Replace("p1", 4), ErrIndexOutOfRange)
	assert.ErrorIs(t, g.Replace("p1", -1), ErrIndexOutOfRange)
	assert.Equal(t, before, stateJSON(t, g))
}

// openReaction puts the state mid-reaction: Alice discarded a drawn 5♣.
func openReaction(t *testing.T, extraDeck ...cards.Card) *GameState {
	t.Helper()
	deck := append([]cards.Card{{Rank: "5", Suit: "♣"}}, extraDeck...)
	g := playingState(deck...)
	g.Players[1].Hand = []cards.Card{{Rank: "5", Suit: "♥"}, {Rank: "5", Suit: "♦"}, {Rank: "7", Suit: "♣"}, {Rank: "9", Suit: "♠"}}
	require.NoError(t, g.Draw("p1"))
	require.NoError(t, g.Discard("p1"))
	require.NotNil(t, g.ReactionState)
	require.Equal(t, "5", g.ReactionState.Rank)
	return g
}

func TestReactionMatchAll(t *testing.T) {
	g := openReaction(t)
	require.NoError(t, g.ResolveReaction("p2", ReactionAction{Type: ReactMatch, CardIndexes: []int{0, 1}}))

	assert.Equal(t, []cards.Card{{Rank: "7", Suit: "♣"}, {Rank: "9", Suit: "♠"}}, g.Players[1].Hand)
	top, _ := g.TopDiscard()
	assert.Equal(t, "5", top.Rank)
	assert.Nil(t, g.ReactionState)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestReactionMismatchVoidsSelection(t *testing.T) {
	// Selection of two 5s and one 7 against rank 5: the first mismatching
	// card (the 7) is discarded with a penalty, the matches stay in hand.
	penalty := cards.Card{Rank: "Q", Suit: "♥"}
	g := openReaction(t, penalty)

	require.NoError(t, g.ResolveReaction("p2", ReactionAction{Type: ReactMatch, CardIndexes: []int{0, 1, 2}}))

	assert.Equal(t, []cards.Card{
		{Rank: "5", Suit: "♥"},
		{Rank: "5", Suit: "♦"},
		{Rank: "9", Suit: "♠"},
		penalty,
	}, g.Players[1].Hand)
	top, _ := g.TopDiscard()
	assert.Equal(t, cards.Card{Rank: "7", Suit: "♣"}, top)
	assert.Nil(t, g.ReactionState)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestReactionMatchValidation(t *testing.T) {
	g := openReaction(t)
	before := stateJSON(t, g)

	err := g.ResolveReaction("p2", ReactionAction{Type: ReactMatch})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	err = g.ResolveReaction("p2", ReactionAction{Type: ReactMatch, CardIndexes: []int{0, 0}})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	err = g.ResolveReaction("p2", ReactionAction{Type: ReactMatch, CardIndexes: []int{9}})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// the initiator is not an eligible reactor
	err = g.ResolveReaction("p1", ReactionAction{Type: ReactDecline})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	assert.Equal(t, before, stateJSON(t, g))
}

func TestReactionWrongMatchPenalty(t *testing.T) {
	penalty := cards.Card{Rank: "3", Suit: "♦"}
	g := openReaction(t, penalty)

	require.NoError(t, g.ResolveReaction("p2", ReactionAction{Type: ReactWrongMatch, CardIndex: 3}))

	assert.Equal(t, []cards.Card{
		{Rank: "5", Suit: "♥"},
		{Rank: "5", Suit: "♦"},
		{Rank: "7", Suit: "♣"},
		penalty,
	}, g.Players[1].Hand)
	top, _ := g.TopDiscard()
	assert.Equal(t, cards.Card{Rank: "9", Suit: "♠"}, top)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestReactionSteal(t *testing.T) {
	// 3 players: Alice discards a 5, Carol steals Bob's 5♥ and gives him
	// her 8♦ in exchange.
	g := NewGame(testRoster(3))
	g.Players[0].Hand = []cards.Card{{Rank: "A", Suit: "♠"}, {Rank: "2", Suit: "♠"}, {Rank: "3", Suit: "♠"}, {Rank: "4", Suit: "♠"}}
	g.Players[1].Hand = []cards.Card{{Rank: "5", Suit: "♥"}, {Rank: "6", Suit: "♠"}, {Rank: "7", Suit: "♠"}, {Rank: "8", Suit: "♠"}}
	g.Players[2].Hand = []cards.Card{{Rank: "8", Suit: "♦"}, {Rank: "9", Suit: "♦"}, {Rank: "10", Suit: "♦"}, {Rank: "J", Suit: "♦"}}
	g.Deck = []cards.Card{{Rank: "5", Suit: "♣"}}
	g.DiscardPile = []cards.Card{}
	g.Phase = PhasePlaying
	g.CurrentPlayerID = "p1"
	g.PeekingPlayerID = ""

	require.NoError(t, g.Draw("p1"))
	require.NoError(t, g.Discard("p1"))

	require.NoError(t, g.ResolveReaction("p3", ReactionAction{
		Type:            ReactSteal,
		TargetID:        "p2",
		TargetCardIndex: 0,
		GiveCardIndex:   0,
	}))

	// Bob: lost the 5♥, gained Carol's 8♦; hand size unchanged
	assert.Equal(t, []cards.Card{{Rank: "6", Suit: "♠"}, {Rank: "7", Suit: "♠"}, {Rank: "8", Suit: "♠"}, {Rank: "8", Suit: "♦"}}, g.Players[1].Hand)
	// Carol: gave away the 8♦
	assert.Equal(t, []cards.Card{{Rank: "9", Suit: "♦"}, {Rank: "10", Suit: "♦"}, {Rank: "J", Suit: "♦"}}, g.Players[2].Hand)
	top, _ := g.TopDiscard()
	assert.Equal(t, cards.Card{Rank: "5", Suit: "♥"}, top)
	assert.Equal(t, "p2", g.CurrentPlayerID)
}

func TestReactionStealValidation(t *testing.T) {
	g := openReaction(t)
	before := stateJSON(t, g)

	err := g.ResolveReaction("p2", ReactionAction{Type: ReactSteal, TargetID: "p2", TargetCardIndex: 0, GiveCardIndex: 0})
	assert.ErrorIs(t, err, ErrPlayerNotFound, "cannot steal from yourself")
	err = g.ResolveReaction("p2", ReactionAction{Type: ReactSteal, TargetID: "ghost", TargetCardIndex: 0, GiveCardIndex: 0})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	// p1's hand has no 5 at index 1
	err = g.ResolveReaction("p2", ReactionAction{Type: ReactSteal, TargetID: "p1", TargetCardIndex: 1, GiveCardIndex: 0})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.Equal(t, before, stateJSON(t, g))
}

func TestInstantWinPrecedence(t *testing.T) {
	// Bob's whole hand matches the triggering rank; discarding all of it
	// empties his hand and must end the game instead of advancing the turn.
	g := playingState(cards.Card{Rank: "5", Suit: "♣"})
	g.Players[1].Hand = []cards.Card{{Rank: "5", Suit: "♥"}, {Rank: "5", Suit: "♦"}}

	require.NoError(t, g.Draw("p1"))
	require.NoError(t, g.Discard("p1"))
	require.NoError(t, g.ResolveReaction("p2", ReactionAction{Type: ReactMatch, CardIndexes: []int{0, 1}}))

	assert.Equal(t, PhaseGameOver, g.Phase)
	assert.Equal(t, "p2", g.InstantWinnerID)
	assert.Empty(t, g.FinalScores, "instant win bypasses scoring")
	assert.Nil(t, g.ReactionState)
}

func TestInstantWinViaStealGive(t *testing.T) {
	// Carol is down to one card; giving it away during a steal leaves her
	// hand empty and wins instantly.
	g := NewGame(testRoster(3))
	g.Players[0].Hand = []cards.Card{{Rank: "A", Suit: "♠"}, {Rank: "2", Suit: "♠"}, {Rank: "3", Suit: "♠"}, {Rank: "4", Suit: "♠"}}
	g.Players[1].Hand = []cards.Card{{Rank: "5", Suit: "♥"}, {Rank: "6", Suit: "♠"}}
	g.Players[2].Hand = []cards.Card{{Rank: "Q", Suit: "♣"}}
	g.Deck = []cards.Card{{Rank: "5", Suit: "♣"}}
	g.DiscardPile = []cards.Card{}
	g.Phase = PhasePlaying
	g.CurrentPlayerID = "p1"
	g.PeekingPlayerID = ""

	require.NoError(t, g.Draw("p1"))
	require.NoError(t, g.Discard("p1"))
	require.NoError(t, g.ResolveReaction("p3", ReactionAction{
		Type:            ReactSteal,
		TargetID:        "p2",
		TargetCardIndex: 0,
		GiveCardIndex:   0,
	}))

	assert.Equal(t, PhaseGameOver, g.Phase)
	assert.Equal(t, "p3", g.InstantWinnerID)
}

func TestKaboomFlow(t *testing.T) {
	g := playingState(cards.Card{Rank: "9", Suit: "♣"})

	require.NoError(t, g.CallKaboom("p1"))
	caller := g.Players[0]
	assert.False(t, caller.Active)
	assert.True(t, caller.Revealed)
	assert.Equal(t, "p1", g.KaboomCallerID)
	assert.Equal(t, PhaseKaboom, g.Phase)
	assert.Equal(t, "p2", g.CurrentPlayerID)

	// no further turn actions once kaboom is called
	assert.ErrorIs(t, g.Draw("p2"), ErrInvalidPhase)
	assert.ErrorIs(t, g.CallKaboom("p2"), ErrInvalidPhase)

	require.NoError(t, g.ComputeFinalScores())
	assert.Equal(t, PhaseGameOver, g.Phase)
	require.Len(t, g.FinalScores, 2)
	// Alice: A+2+3+4 = 10, Bob: 5+6+7+8 = 26
	assert.Equal(t, Score{PlayerID: "p1", Name: "Alice", Total: 10}, g.FinalScores[0])
	assert.Equal(t, Score{PlayerID: "p2", Name: "Bob", Total: 26}, g.FinalScores[1])
	assert.Equal(t, []Score{{PlayerID: "p1", Name: "Alice", Total: 10}}, g.Winners())
}

func TestKaboomRequiresResolvedDraw(t *testing.T) {
	g := playingState(cards.Card{Rank: "9", Suit: "♣"})
	require.NoError(t, g.Draw("p1"))
	assert.ErrorIs(t, g.CallKaboom("p1"), ErrActionAlreadyTaken)
}

func TestScoringTie(t *testing.T) {
	g := playingState(cards.Card{Rank: "9", Suit: "♣"})
	// both hands total 10; red king counts zero
	g.Players[0].Hand = []cards.Card{{Rank: "K", Suit: "♥"}, {Rank: "10", Suit: "♠"}}
	g.Players[1].Hand = []cards.Card{{Rank: "4", Suit: "♣"}, {Rank: "6", Suit: "♦"}}

	require.NoError(t, g.CallKaboom("p1"))
	require.NoError(t, g.ComputeFinalScores())

	winners := g.Winners()
	require.Len(t, winners, 2)
	assert.Equal(t, 10, winners[0].Total)
	assert.Equal(t, 10, winners[1].Total)
}

func TestDeckAutoReplenish(t *testing.T) {
	g := playingState()
	require.Empty(t, g.Deck)

	require.NoError(t, g.Draw("p1"))
	require.NotNil(t, g.DrawnCard)
	assert.Equal(t, 1, g.Reshuffles)
	assert.Len(t, g.Deck, 51)
}

func TestCardConservation(t *testing.T) {
	g := NewGame(testRoster(4))
	require.NoError(t, g.DealInitialHands())
	for _, p := range g.Players {
		require.NoError(t, g.CompletePeeking(p.ID))
	}

	// a few full turns without exhausting the deck
	for i := 0; i < 6; i++ {
		pid := g.CurrentPlayerID
		require.NoError(t, g.Draw(pid))
		assert.Equal(t, 52, totalCards(g))
		require.NoError(t, g.Discard(pid))
		reactor := ""
		for _, p := range g.Players {
			if p.ID != pid && p.Active {
				reactor = p.ID
				break
			}
		}
		require.NoError(t, g.ResolveReaction(reactor, ReactionAction{Type: ReactDecline}))
		require.Equal(t, 0, g.Reshuffles)
		assert.Equal(t, 52, totalCards(g))
	}
}

func TestStateSerializationRoundTrip(t *testing.T) {
	g := openReaction(t)
	b, err := json.Marshal(g)
	require.NoError(t, err)

	var back GameState
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, stateJSON(t, g), stateJSON(t, &back))
	assert.Equal(t, g.ReactionState.Rank, back.ReactionState.Rank)
	assert.Equal(t, g.Players[1].Hand, back.Players[1].Hand)
}
