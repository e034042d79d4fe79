package engine

import (
	"fmt"
	"sort"

	"kaboom/internal/game/cards"
)

// ResolveReaction applies one response to the open reaction window. Any
// active player except the initiator may respond; the window closes on
// every path (match, wrong match, steal, decline, penalty) and then either
// ends the game on instant win or performs the deferred turn advance.
func (g *GameState) ResolveReaction(playerID string, act ReactionAction) error {
	if g.ReactionState == nil {
		return fmt.Errorf("%w: no reaction window is open", ErrInvalidPhase)
	}
	actor := g.findPlayer(playerID)
	if actor == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	if playerID == g.ReactionState.InitiatorID {
		return fmt.Errorf("%w: the initiator cannot respond to their own discard", ErrNotYourTurn)
	}
	if !actor.Active {
		return fmt.Errorf("%w: inactive players cannot react", ErrNotYourTurn)
	}

	rank := g.ReactionState.Rank
	switch act.Type {
	case ReactDecline:
		g.closeReaction()
		return nil

	case ReactMatch:
		if len(act.CardIndexes) == 0 {
			return fmt.Errorf("%w: empty selection", ErrIndexOutOfRange)
		}
		seen := make(map[int]bool, len(act.CardIndexes))
		for _, idx := range act.CardIndexes {
			if idx < 0 || idx >= len(actor.Hand) || seen[idx] {
				return fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
			}
			seen[idx] = true
		}
		// The first mismatch in the selection is discarded and penalized;
		// the rest of the selection is abandoned.
		for _, idx := range act.CardIndexes {
			if actor.Hand[idx].Rank != rank {
				g.DiscardPile = append(g.DiscardPile, actor.Hand[idx])
				actor.Hand = removeAt(actor.Hand, idx)
				g.applyPenalty(actor)
				return nil
			}
		}
		order := append([]int(nil), act.CardIndexes...)
		sort.Sort(sort.Reverse(sort.IntSlice(order)))
		for _, idx := range order {
			g.DiscardPile = append(g.DiscardPile, actor.Hand[idx])
			actor.Hand = removeAt(actor.Hand, idx)
		}
		g.closeReaction()
		return nil

	case ReactWrongMatch:
		if act.CardIndex < 0 || act.CardIndex >= len(actor.Hand) {
			return fmt.Errorf("%w: %d", ErrIndexOutOfRange, act.CardIndex)
		}
		g.DiscardPile = append(g.DiscardPile, actor.Hand[act.CardIndex])
		actor.Hand = removeAt(actor.Hand, act.CardIndex)
		g.applyPenalty(actor)
		return nil

	case ReactSteal:
		target := g.findPlayer(act.TargetID)
		if target == nil || target.ID == actor.ID || !target.Active {
			return fmt.Errorf("%w: invalid steal target %q", ErrPlayerNotFound, act.TargetID)
		}
		if act.TargetCardIndex < 0 || act.TargetCardIndex >= len(target.Hand) {
			return fmt.Errorf("%w: target card %d", ErrIndexOutOfRange, act.TargetCardIndex)
		}
		if target.Hand[act.TargetCardIndex].Rank != rank {
			return fmt.Errorf("%w: target card %d does not match rank %s", ErrIndexOutOfRange, act.TargetCardIndex, rank)
		}
		if act.GiveCardIndex < 0 || act.GiveCardIndex >= len(actor.Hand) {
			return fmt.Errorf("%w: give card %d", ErrIndexOutOfRange, act.GiveCardIndex)
		}
		stolen := target.Hand[act.TargetCardIndex]
		target.Hand = removeAt(target.Hand, act.TargetCardIndex)
		g.DiscardPile = append(g.DiscardPile, stolen)
		given := actor.Hand[act.GiveCardIndex]
		actor.Hand = removeAt(actor.Hand, act.GiveCardIndex)
		target.Hand = append(target.Hand, given)
		g.closeReaction()
		return nil

	default:
		return fmt.Errorf("unknown reaction action %q", act.Type)
	}
}

// applyPenalty appends one face-down card from the deck to the player's
// hand and closes the window.
func (g *GameState) applyPenalty(p *Player) {
	p.Hand = append(p.Hand, g.drawFromDeck())
	g.closeReaction()
}

// closeReaction clears the pending descriptor, re-checks instant win, and
// only then performs the deferred turn advance.
func (g *GameState) closeReaction() {
	reaction := g.ReactionState
	g.ReactionState = nil
	if winner := g.checkInstantWin(); winner != "" {
		g.endInstantWin(winner)
		return
	}
	if reaction != nil && reaction.PendingAction == pendingAdvanceTurn {
		g.advanceTurn()
	}
}

func removeAt(hand []cards.Card, idx int) []cards.Card {
	return append(hand[:idx:idx], hand[idx+1:]...)
}
