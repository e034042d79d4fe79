package cards

import "math/rand"

// Card is an immutable rank+suit pair. Rank is one of Ranks, Suit one of Suits.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

var (
	Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	Suits = []string{"♠", "♥", "♦", "♣"}
)

// NewDeck returns the 52 distinct cards in uniformly random order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, r := range Ranks {
		for _, s := range Suits {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// NewDeckWithRand shuffles with the given source, for deterministic tests.
func NewDeckWithRand(rnd *rand.Rand) []Card {
	deck := make([]Card, 0, 52)
	for _, r := range Ranks {
		for _, s := range Suits {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	rnd.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// IsRedKing reports whether c is the K♥ or K♦, the zero-value cards.
func IsRedKing(c Card) bool {
	return c.Rank == "K" && (c.Suit == "♥" || c.Suit == "♦")
}

// Value returns the scoring value: A=1, 2-10 face value, J/Q/K=10,
// red kings 0.
func Value(c Card) int {
	if IsRedKing(c) {
		return 0
	}
	switch c.Rank {
	case "A":
		return 1
	case "J", "Q", "K":
		return 10
	case "10":
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

// Label is the display form, e.g. "K♥".
func Label(c Card) string {
	return c.Rank + c.Suit
}

func (c Card) String() string {
	return Label(c)
}
