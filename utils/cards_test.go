package utils

import (
	"math/rand"
	"testing"
)

func TestHandValue(t *testing.T) {
	tests := []struct {
		name      string
		ranks     []string
		want      int
		blackjack bool
		busted    bool
	}{
		{"natural", []string{"A", "K"}, 21, true, false},
		{"soft seventeen", []string{"A", "6"}, 17, false, false},
		{"two aces", []string{"A", "A"}, 12, false, false},
		{"ace demoted", []string{"A", "9", "5"}, 15, false, false},
		{"three card twenty one", []string{"7", "7", "7"}, 21, false, false},
		{"bust", []string{"K", "Q", "2"}, 22, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHand()
			for _, r := range tt.ranks {
				h.AddCard(NewCard(r, "♠️"))
			}
			if got := h.GetValue(); got != tt.want {
				t.Errorf("GetValue() = %d, want %d", got, tt.want)
			}
			if h.IsBlackjack() != tt.blackjack {
				t.Errorf("IsBlackjack() = %v", h.IsBlackjack())
			}
			if h.IsBusted() != tt.busted {
				t.Errorf("IsBusted() = %v", h.IsBusted())
			}
		})
	}
}

func TestNewDeckIsCompleteAndSeeded(t *testing.T) {
	a := NewDeck(rand.New(rand.NewSource(7)))
	b := NewDeck(rand.New(rand.NewSource(7)))

	if len(a.Cards) != 52 {
		t.Fatalf("Expected 52 cards, got %d", len(a.Cards))
	}
	seen := map[string]bool{}
	for i, c := range a.Cards {
		seen[c.String()] = true
		if c != b.Cards[i] {
			t.Fatalf("Decks with the same seed differ at %d", i)
		}
	}
	if len(seen) != 52 {
		t.Errorf("Expected 52 distinct cards, got %d", len(seen))
	}
}

func TestStackedDeckDealsInOrderThenReshuffles(t *testing.T) {
	d := NewStackedDeck(NewCard("A", "♠️"), NewCard("K", "♥️"))
	if got := d.Deal().String(); got != "A♠️" {
		t.Errorf("Expected A♠️ first, got %s", got)
	}
	if got := d.Deal().String(); got != "K♥️" {
		t.Errorf("Expected K♥️ second, got %s", got)
	}
	if d.CardsRemaining() != 0 {
		t.Errorf("Expected an empty deck, got %d left", d.CardsRemaining())
	}
	d.Deal()
	if d.CardsRemaining() != 1 {
		t.Errorf("Expected a reshuffled deck with 1 left, got %d", d.CardsRemaining())
	}
}
