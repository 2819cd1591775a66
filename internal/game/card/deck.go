package card

import (
	"errors"
	"math/rand"
)

// ErrEmptyDraw is returned when a draw is requested from an exhausted deck.
var ErrEmptyDraw = errors.New("draw from empty deck")

// Deck is an ordered pile of unique cards. Draws come off the top (the end of
// the slice), matching physical dealing.
type Deck struct {
	cards []Card
}

// NewDeck builds the standard 52-card deck in canonical order.
func NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for _, s := range Suits() {
		for _, r := range Ranks() {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return &Deck{cards: cards}
}

// NewDeckFrom builds a deck from an explicit card list. Duplicates are
// rejected: each physical card is unique within a deck.
func NewDeckFrom(cards []Card) (*Deck, error) {
	seen := make(map[Card]struct{}, len(cards))
	for _, c := range cards {
		if _, dup := seen[c]; dup {
			return nil, errors.New("duplicate card in deck: " + c.String())
		}
		seen[c] = struct{}{}
	}
	copied := make([]Card, len(cards))
	copy(copied, cards)
	return &Deck{cards: copied}, nil
}

// Shuffle permutes the deck using the supplied random source.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns up to count cards from the top of the deck. It
// returns ErrEmptyDraw when no cards remain; a short draw (fewer cards than
// requested, but at least one) is not an error.
func (d *Deck) Draw(count int) ([]Card, error) {
	if count <= 0 {
		return nil, nil
	}
	if len(d.cards) == 0 {
		return nil, ErrEmptyDraw
	}
	if count > len(d.cards) {
		count = len(d.cards)
	}
	drawn := make([]Card, count)
	copy(drawn, d.cards[len(d.cards)-count:])
	d.cards = d.cards[:len(d.cards)-count]
	return drawn, nil
}

// Return places cards at the bottom of the deck.
func (d *Deck) Return(cards []Card) {
	d.cards = append(append(make([]Card, 0, len(cards)+len(d.cards)), cards...), d.cards...)
}

// Len reports the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}
