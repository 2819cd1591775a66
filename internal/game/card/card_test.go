package card

import (
	"math/rand"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(Ace, Spades); err != nil {
		t.Fatalf("expected valid card, got error: %v", err)
	}
	if _, err := New(Rank(1), Hearts); err == nil {
		t.Error("expected error for rank below 2")
	}
	if _, err := New(Rank(15), Hearts); err == nil {
		t.Error("expected error for rank above ace")
	}
	if _, err := New(Ten, Suit(4)); err == nil {
		t.Error("expected error for invalid suit")
	}
}

func TestRankValue(t *testing.T) {
	if Two.Value() != 2 {
		t.Errorf("expected 2, got %d", Two.Value())
	}
	if Ace.Value() != 14 {
		t.Errorf("expected 14, got %d", Ace.Value())
	}
	if Jack.Value() != 11 {
		t.Errorf("expected 11, got %d", Jack.Value())
	}
}

func TestCardString(t *testing.T) {
	c := MustNew(Queen, Hearts)
	if c.String() != "QH" {
		t.Errorf("expected QH, got %s", c.String())
	}
	c = MustNew(Ten, Clubs)
	if c.String() != "10C" {
		t.Errorf("expected 10C, got %s", c.String())
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if deck.Len() != 52 {
		t.Fatalf("expected 52 cards, got %d", deck.Len())
	}

	// Every card unique
	seen := make(map[Card]struct{})
	drawn, err := deck.Draw(52)
	if err != nil {
		t.Fatalf("unexpected draw error: %v", err)
	}
	for _, c := range drawn {
		if _, dup := seen[c]; dup {
			t.Errorf("duplicate card in fresh deck: %s", c)
		}
		seen[c] = struct{}{}
	}
}

func TestNewDeckFromRejectsDuplicates(t *testing.T) {
	cards := []Card{MustNew(Nine, Spades), MustNew(Nine, Spades)}
	if _, err := NewDeckFrom(cards); err == nil {
		t.Error("expected duplicate card error")
	}
}

func TestDeckDraw(t *testing.T) {
	deck := NewDeck()

	drawn, err := deck.Draw(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drawn) != 5 {
		t.Errorf("expected 5 cards, got %d", len(drawn))
	}
	if deck.Len() != 47 {
		t.Errorf("expected 47 remaining, got %d", deck.Len())
	}

	// Short draw is not an error
	if _, err := deck.Draw(47); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := deck.Draw(1); err != ErrEmptyDraw {
		t.Errorf("expected ErrEmptyDraw, got %v", err)
	}
}

func TestDeckShuffleDeterministic(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(rand.New(rand.NewSource(42)))
	b.Shuffle(rand.New(rand.NewSource(42)))

	da, _ := a.Draw(52)
	db, _ := b.Draw(52)
	for i := range da {
		if da[i] != db[i] {
			t.Fatalf("same seed produced different orders at %d: %s vs %s", i, da[i], db[i])
		}
	}
}

func TestDeckReturn(t *testing.T) {
	deck := NewDeck()
	drawn, _ := deck.Draw(3)
	deck.Return(drawn)
	if deck.Len() != 52 {
		t.Errorf("expected 52 after return, got %d", deck.Len())
	}
}
