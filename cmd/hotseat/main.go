// Hotseat runs a local pass-and-play game in the terminal. All players share
// one screen, so the screen is cleared between secret prompts.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"kaboom/internal/game/engine"
)

func main() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Ka", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("BOOM", pterm.FgRed.ToStyle()),
	).Render()
	pterm.Info.Println("Pass-and-play: hand the keyboard over when prompted.")
	pterm.Println()

	state := setup()

	runPeeks(state)
	for state.Phase == engine.PhasePlaying {
		runTurn(state)
	}
	if state.Phase == engine.PhaseKaboom {
		if err := state.ComputeFinalScores(); err != nil {
			fatal(err)
		}
	}
	showResults(state)
}

func setup() *engine.GameState {
	countStr, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("How many players?").
		WithOptions([]string{"2", "3", "4", "5", "6"}).Show()
	count, _ := strconv.Atoi(countStr)

	seats := make([]engine.Seat, 0, count)
	for i := 0; i < count; i++ {
		name, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("Player %d name", i+1)).
			WithDefaultValue(fmt.Sprintf("Player %d", i+1)).Show()
		name = strings.TrimSpace(name)
		seats = append(seats, engine.Seat{ID: fmt.Sprintf("p%d", i+1), Name: name})
	}

	state := engine.NewGame(seats)
	if err := state.DealInitialHands(); err != nil {
		fatal(err)
	}
	return state
}

func runPeeks(state *engine.GameState) {
	for state.Phase == engine.PhasePrePeek {
		p := mustPlayer(state, state.PeekingPlayerID)
		handOff(p.Name)
		pterm.DefaultSection.Printfln("%s: memorise up to 2 of your 4 cards", p.Name)

		for {
			used := state.PeeksUsed[p.ID]
			opts := []string{"Peek position 1", "Peek position 2", "Peek position 3", "Peek position 4", "Done peeking"}
			if used >= 2 {
				pterm.Warning.Println("Both peeks used.")
			}
			choice, _ := pterm.DefaultInteractiveSelect.
				WithDefaultText(fmt.Sprintf("Peeks used: %d/2", used)).
				WithOptions(opts).Show()
			if choice == "Done peeking" {
				if err := state.CompletePeeking(p.ID); err != nil {
					pterm.Error.Println(err)
					continue
				}
				break
			}
			idx := int(choice[len(choice)-1] - '1')
			card, err := state.Peek(p.ID, idx)
			if err != nil {
				pterm.Error.Println(err)
				continue
			}
			pterm.Success.Printfln("Position %d is %s", idx+1, card.String())
		}
	}
}

func runTurn(state *engine.GameState) {
	p := mustPlayer(state, state.CurrentPlayerID)
	handOff(p.Name)
	showTable(state, p)

	opts := []string{"Draw a card"}
	if state.KaboomCallerID == "" {
		opts = append(opts, "Call KABOOM")
	}
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText(fmt.Sprintf("%s, your move", p.Name)).
		WithOptions(opts).Show()

	if choice == "Call KABOOM" {
		if err := state.CallKaboom(p.ID); err != nil {
			pterm.Error.Println(err)
			return
		}
		pterm.DefaultBox.WithTitle(pterm.LightRed("|KABOOM|")).WithTitleTopCenter().
			Printfln("%s calls Kaboom! Hands go face up.", p.Name)
		return
	}

	if err := state.Draw(p.ID); err != nil {
		fatal(err)
	}
	drawn := *state.DrawnCard
	pterm.Success.Printfln("You drew %s", drawn.String())

	resolve, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Keep it or toss it?").
		WithOptions([]string{"Replace a hand card", "Discard the drawn card"}).Show()

	if resolve == "Replace a hand card" {
		slot := pickIndex("Which position to replace?", len(p.Hand))
		if err := state.Replace(p.ID, slot); err != nil {
			fatal(err)
		}
	} else {
		if err := state.Discard(p.ID); err != nil {
			fatal(err)
		}
	}
	if top, ok := state.TopDiscard(); ok {
		pterm.Info.Printfln("Discard pile top: %s", top.String())
	}

	runReaction(state)
}

// runReaction walks the table until somebody acts on the open window or
// everybody declines.
func runReaction(state *engine.GameState) {
	for state.ReactionState != nil {
		rs := state.ReactionState
		acted := false
		for _, reactor := range state.Players {
			if state.ReactionState == nil {
				return
			}
			if reactor.ID == rs.InitiatorID || !reactor.Active {
				continue
			}
			handOff(reactor.Name)
			pterm.DefaultSection.Printfln("Reaction window: a %s was discarded", rs.Rank)

			choice, _ := pterm.DefaultInteractiveSelect.
				WithDefaultText(fmt.Sprintf("%s, react?", reactor.Name)).
				WithOptions([]string{"Pass", "Match from my hand", "Steal a matching card"}).Show()

			switch choice {
			case "Pass":
				continue
			case "Match from my hand":
				idxs := pickIndexes(fmt.Sprintf("Pick the positions you believe hold a %s", rs.Rank), len(reactor.Hand))
				err := state.ResolveReaction(reactor.ID, engine.ReactionAction{
					Type:        engine.ReactMatch,
					CardIndexes: idxs,
				})
				if err != nil {
					pterm.Error.Println(err)
					continue
				}
			case "Steal a matching card":
				target := pickOpponent(state, reactor.ID)
				targetIdx := pickIndex(fmt.Sprintf("Which of %s's positions holds a %s?", target.Name, rs.Rank), len(target.Hand))
				giveIdx := pickIndex("Which of your cards do you give away?", len(reactor.Hand))
				err := state.ResolveReaction(reactor.ID, engine.ReactionAction{
					Type:            engine.ReactSteal,
					TargetID:        target.ID,
					TargetCardIndex: targetIdx,
					GiveCardIndex:   giveIdx,
				})
				if err != nil {
					pterm.Error.Println(err)
					continue
				}
			}
			acted = true
			break
		}
		if state.ReactionState == nil {
			return
		}
		if !acted {
			// Nobody wants the window: the initiator's opponent closes it.
			for _, p := range state.Players {
				if p.ID != rs.InitiatorID && p.Active {
					if err := state.ResolveReaction(p.ID, engine.ReactionAction{Type: engine.ReactDecline}); err != nil {
						fatal(err)
					}
					break
				}
			}
		}
	}
}

func showTable(state *engine.GameState, current *engine.Player) {
	var rows [][]string
	rows = append(rows, []string{"Player", "Cards", "Status"})
	for _, p := range state.Players {
		status := "waiting"
		switch {
		case !p.Active:
			status = "called kaboom"
		case p.ID == current.ID:
			status = pterm.LightGreen("to move")
		}
		rows = append(rows, []string{p.Name, strconv.Itoa(len(p.Hand)), status})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if top, ok := state.TopDiscard(); ok {
		pterm.Info.Printfln("Discard pile top: %s | Deck: %d cards", top.String(), len(state.Deck))
	} else {
		pterm.Info.Printfln("Discard pile empty | Deck: %d cards", len(state.Deck))
	}
}

func showResults(state *engine.GameState) {
	pterm.Println()
	if state.InstantWinnerID != "" {
		winner := mustPlayer(state, state.InstantWinnerID)
		pterm.DefaultBox.WithTitle(pterm.LightGreen("|INSTANT WIN|")).WithTitleTopCenter().
			Printfln("%s emptied their hand and wins on the spot!", winner.Name)
		return
	}

	rows := [][]string{{"Player", "Hand", "Total"}}
	for _, sc := range state.FinalScores {
		p := mustPlayer(state, sc.PlayerID)
		labels := make([]string, len(p.Hand))
		for i, c := range p.Hand {
			labels[i] = c.String()
		}
		rows = append(rows, []string{sc.Name, strings.Join(labels, " "), strconv.Itoa(sc.Total)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	winners := state.Winners()
	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = w.Name
	}
	pterm.DefaultBox.WithTitle(pterm.LightGreen("|WINNER|")).WithTitleTopCenter().
		Printfln("%s", strings.Join(names, " & "))
}

func pickIndex(prompt string, n int) int {
	opts := make([]string, n)
	for i := range opts {
		opts[i] = fmt.Sprintf("Position %d", i+1)
	}
	choice, _ := pterm.DefaultInteractiveSelect.WithDefaultText(prompt).WithOptions(opts).Show()
	return int(choice[len(choice)-1] - '1')
}

func pickIndexes(prompt string, n int) []int {
	opts := make([]string, n)
	for i := range opts {
		opts[i] = fmt.Sprintf("Position %d", i+1)
	}
	picked, _ := pterm.DefaultInteractiveMultiselect.WithDefaultText(prompt).WithOptions(opts).Show()
	idxs := make([]int, 0, len(picked))
	for _, s := range picked {
		idxs = append(idxs, int(s[len(s)-1]-'1'))
	}
	return idxs
}

func pickOpponent(state *engine.GameState, reactorID string) *engine.Player {
	var opts []string
	for _, p := range state.Players {
		if p.ID != reactorID && p.Active && len(p.Hand) > 0 {
			opts = append(opts, p.Name)
		}
	}
	choice, _ := pterm.DefaultInteractiveSelect.WithDefaultText("Steal from whom?").WithOptions(opts).Show()
	for _, p := range state.Players {
		if p.Name == choice {
			return p
		}
	}
	return nil
}

func handOff(name string) {
	pterm.Println()
	pterm.DefaultInteractiveTextInput.
		WithDefaultText(fmt.Sprintf("Pass the keyboard to %s, then press enter", name)).
		WithDefaultValue("").Show()
	print("\033[H\033[2J")
}

func mustPlayer(state *engine.GameState, id string) *engine.Player {
	for _, p := range state.Players {
		if p.ID == id {
			return p
		}
	}
	fatal(fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, id))
	return nil
}

func fatal(err error) {
	pterm.Error.Println(err)
	os.Exit(1)
}
