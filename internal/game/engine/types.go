package engine

import "kaboom/internal/game/cards"

// Phase enumerates the game state machine.
// setup → pre_peek → playing ⇄ reaction → kaboom → game_over,
// with instant-win short-circuiting into game_over.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhasePrePeek  Phase = "pre_peek"
	PhasePlaying  Phase = "playing"
	PhaseKaboom   Phase = "kaboom"
	PhaseGameOver Phase = "game_over"
)

// Seat is one roster entry handed over by the room layer at game creation.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Player struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Hand     []cards.Card `json:"hand"`
	Active   bool         `json:"active"`
	Revealed bool         `json:"revealed"`
}

// ReactionState suspends normal turn progression between a triggering
// discard and its resolution.
type ReactionState struct {
	Rank          string `json:"rank"`
	InitiatorID   string `json:"initiator_id"`
	Source        string `json:"source"`         // "discard" or "replace"
	PendingAction string `json:"pending_action"` // deferred until the window closes
}

const pendingAdvanceTurn = "advance_turn"

// PeekEntry is one line of the public peek history. CardPos is 1-based
// because it is display-only.
type PeekEntry struct {
	PlayerName string `json:"player_name"`
	CardPos    int    `json:"card_pos"`
	Label      string `json:"label"`
}

type Score struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
}

// GameState is the single source of truth for one game. It is fully
// JSON-serializable so the store can persist and reload it; Version backs
// the store's compare-and-swap.
type GameState struct {
	Phase           Phase            `json:"phase"`
	Players         []*Player        `json:"players"`
	Deck            []cards.Card     `json:"deck"`
	DiscardPile     []cards.Card     `json:"discard_pile"`
	CurrentPlayerID string           `json:"current_player_id"`
	DrawnCard       *cards.Card      `json:"drawn_card"`
	PeeksUsed       map[string]int   `json:"peeks_used"`
	PeekedCards     map[string][]int `json:"peeked_cards"`
	PeekLog         []PeekEntry      `json:"peek_log"`
	PeekingPlayerID string           `json:"peeking_player_id"`
	KaboomCallerID  string           `json:"kaboom_caller_id"`
	InstantWinnerID string           `json:"instant_winner_id"`
	FinalScores     []Score          `json:"final_scores"`
	ReactionState   *ReactionState   `json:"reaction_state"`
	Reshuffles      int              `json:"reshuffles"`
	Version         int64            `json:"version"`
}

// ReactionType selects one of the permitted responses to an open window.
type ReactionType string

const (
	ReactMatch      ReactionType = "match"
	ReactWrongMatch ReactionType = "wrong_match"
	ReactSteal      ReactionType = "steal"
	ReactDecline    ReactionType = "decline"
)

// ReactionAction carries the arguments for ResolveReaction. Which fields
// matter depends on Type: CardIndexes for match, CardIndex for wrong_match,
// the three target fields for steal.
type ReactionAction struct {
	Type            ReactionType `json:"type"`
	CardIndexes     []int        `json:"card_indexes,omitempty"`
	CardIndex       int          `json:"card_index,omitempty"`
	TargetID        string       `json:"target_id,omitempty"`
	TargetCardIndex int          `json:"target_card_index,omitempty"`
	GiveCardIndex   int          `json:"give_card_index,omitempty"`
}
