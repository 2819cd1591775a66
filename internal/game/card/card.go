// Package card provides the immutable playing-card value type and the deck
// container used by the combat core.
package card

import "fmt"

// Suit identifies one of the four French suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

var suitNames = map[Suit]string{
	Clubs:    "Clubs",
	Diamonds: "Diamonds",
	Hearts:   "Hearts",
	Spades:   "Spades",
}

var suitSymbols = map[Suit]string{
	Clubs:    "C",
	Diamonds: "D",
	Hearts:   "H",
	Spades:   "S",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SUIT_%d", uint8(s))
}

// Suits lists every suit in canonical order.
func Suits() []Suit {
	return []Suit{Clubs, Diamonds, Hearts, Spades}
}

// Rank is the numeric card rank, 2 through 14 with Ace high.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankSymbols = map[Rank]string{
	Two:   "2",
	Three: "3",
	Four:  "4",
	Five:  "5",
	Six:   "6",
	Seven: "7",
	Eight: "8",
	Nine:  "9",
	Ten:   "10",
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (r Rank) String() string {
	if sym, ok := rankSymbols[r]; ok {
		return sym
	}
	return fmt.Sprintf("RANK_%d", uint8(r))
}

// Value returns the rank's face value used for damage computation (2..14).
func (r Rank) Value() int {
	return int(r)
}

// Valid reports whether the rank is within the playable range.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Ranks lists every rank in ascending order.
func Ranks() []Rank {
	ranks := make([]Rank, 0, 13)
	for r := Two; r <= Ace; r++ {
		ranks = append(ranks, r)
	}
	return ranks
}

// Card is an immutable (rank, suit) value. Cards carry no identity beyond
// their rank and suit; a deck holds at most one card per combination.
type Card struct {
	Rank Rank
	Suit Suit
}

// New constructs a card, validating rank and suit.
func New(rank Rank, suit Suit) (Card, error) {
	if !rank.Valid() {
		return Card{}, fmt.Errorf("invalid rank: %d", rank)
	}
	if suit > Spades {
		return Card{}, fmt.Errorf("invalid suit: %d", suit)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustNew is New for static card literals in tests and catalogues.
func MustNew(rank Rank, suit Suit) Card {
	c, err := New(rank, suit)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) String() string {
	return c.Rank.String() + suitSymbols[c.Suit]
}
