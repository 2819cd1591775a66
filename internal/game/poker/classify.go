// Package poker classifies a played selection of 1-5 cards into one of the
// thirteen recognized hand categories. Classification is pure: the same cards
// always produce the same result, and no combat state is consulted.
package poker

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gambition/combat-server-go/internal/game/card"
)

// ErrInvalidHandSize is returned when the submitted selection is outside 1..5.
var ErrInvalidHandSize = errors.New("hand must contain between 1 and 5 cards")

// Category is the closed set of hand classifications, ordered by strength.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
	FiveOfAKind
	FlushHouse
	FlushFive
)

var categoryNames = map[Category]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
	FiveOfAKind:   "Five of a Kind",
	FlushHouse:    "Flush House",
	FlushFive:     "Flush Five",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CATEGORY_%d", int(c))
}

// Base damage multipliers per category. These are fixed configuration
// constants: each category maps to exactly one multiplier.
var baseMultipliers = map[Category]int{
	HighCard:      1,
	Pair:          2,
	TwoPair:       3,
	ThreeOfAKind:  4,
	Straight:      5,
	Flush:         6,
	FullHouse:     7,
	FourOfAKind:   8,
	StraightFlush: 10,
	RoyalFlush:    10,
	FiveOfAKind:   40,
	FlushHouse:    35,
	FlushFive:     100,
}

// RoyalFlushFinalMultiplier is applied to the final damage of a Royal Flush,
// after the base multiplier.
const RoyalFlushFinalMultiplier = 4

// Multiplier returns the category's base damage multiplier.
func (c Category) Multiplier() int {
	return baseMultipliers[c]
}

// Result describes a classified hand.
type Result struct {
	Category   Category
	Multiplier int
	// Ranks holds the involved card ranks in ascending order; damage is
	// computed from their face values.
	Ranks []card.Rank
}

// FaceValueSum returns the total face value of the involved ranks.
func (r Result) FaceValueSum() int {
	sum := 0
	for _, rank := range r.Ranks {
		sum += rank.Value()
	}
	return sum
}

// Classify maps a selection of 1-5 cards to its hand category. Five-card
// selections run the full detection cascade; shorter selections detect only
// rank-count combinations (a four-card flush is still just its best
// rank combination). Input is assumed duplicate-free: deck integrity is
// enforced upstream by the deck container, not re-checked here.
func Classify(cards []card.Card) (Result, error) {
	if len(cards) < 1 || len(cards) > 5 {
		return Result{}, ErrInvalidHandSize
	}

	ranks := make([]card.Rank, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })

	var category Category
	if len(cards) == 5 {
		category = classifyFive(cards, ranks)
	} else {
		category = classifyPartial(ranks)
	}

	return Result{
		Category:   category,
		Multiplier: category.Multiplier(),
		Ranks:      ranks,
	}, nil
}

// classifyFive runs the full cascade, most specific category first. Several
// categories are supersets of others (a Flush Five is also a Five of a Kind),
// so order is decisive.
func classifyFive(cards []card.Card, ranks []card.Rank) Category {
	counts := rankCounts(ranks)
	flush := sameSuit(cards)
	straight := isStraight(ranks)

	switch {
	case counts[0] == 5 && flush:
		return FlushFive
	case counts[0] == 3 && counts[1] == 2 && flush:
		return FlushHouse
	case counts[0] == 5:
		return FiveOfAKind
	case straight && flush && ranks[0] == card.Ten:
		return RoyalFlush
	case straight && flush:
		return StraightFlush
	case counts[0] == 4:
		return FourOfAKind
	case counts[0] == 3 && counts[1] == 2:
		return FullHouse
	case flush:
		return Flush
	case straight:
		return Straight
	case counts[0] == 3:
		return ThreeOfAKind
	case counts[0] == 2 && counts[1] == 2:
		return TwoPair
	case counts[0] == 2:
		return Pair
	default:
		return HighCard
	}
}

// classifyPartial detects rank-count combinations for 1-4 card selections.
func classifyPartial(ranks []card.Rank) Category {
	counts := rankCounts(ranks)
	switch {
	case counts[0] == 4:
		return FourOfAKind
	case counts[0] == 3:
		return ThreeOfAKind
	case counts[0] == 2 && len(counts) > 1 && counts[1] == 2:
		return TwoPair
	case counts[0] == 2:
		return Pair
	default:
		return HighCard
	}
}

// rankCounts returns the rank occurrence histogram sorted descending.
func rankCounts(ranks []card.Rank) []int {
	hist := make(map[card.Rank]int)
	for _, r := range ranks {
		hist[r]++
	}
	counts := make([]int, 0, len(hist))
	for _, n := range hist {
		counts = append(counts, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	return counts
}

func sameSuit(cards []card.Card) bool {
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// isStraight reports whether the sorted ranks form five sequential values.
// The wheel (A-2-3-4-5, Ace acting low) counts as a straight.
func isStraight(ranks []card.Rank) bool {
	if len(ranks) != 5 {
		return false
	}
	sequential := true
	for i := 0; i < 4; i++ {
		if ranks[i+1] != ranks[i]+1 {
			sequential = false
			break
		}
	}
	if sequential {
		return true
	}
	return ranks[0] == card.Two && ranks[1] == card.Three &&
		ranks[2] == card.Four && ranks[3] == card.Five && ranks[4] == card.Ace
}
