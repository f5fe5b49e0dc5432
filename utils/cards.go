package utils

import (
	"math/rand"
	"strings"
	"time"
)

// Card represents a playing card
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// NewCard creates a new card
func NewCard(rank, suit string) Card {
	return Card{
		Rank: rank,
		Suit: suit,
	}
}

// String returns the string representation of a card
func (c Card) String() string {
	return c.Rank + c.Suit
}

// CardRanks defines the blackjack values for card ranks; aces start at 11
var CardRanks = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"J": 10, "Q": 10, "K": 10, "A": 11,
}

// CardSuits defines the available card suits
var CardSuits = []string{"♠️", "♥️", "♦️", "♣️"}

var rankOrder = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Value returns the face value of the card with aces counted as 11
func (c Card) Value() int {
	return CardRanks[c.Rank]
}

// IsAce checks if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == "A"
}

// Deck represents a single standard 52-card deck
type Deck struct {
	Cards      []Card `json:"cards"`
	DealtCards int    `json:"dealt_cards"`
	rng        *rand.Rand
}

// NewDeck creates a freshly shuffled 52-card deck
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	deck := &Deck{
		Cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for _, suit := range CardSuits {
		for _, rank := range rankOrder {
			deck.Cards = append(deck.Cards, NewCard(rank, suit))
		}
	}

	deck.Shuffle()
	return deck
}

// NewStackedDeck creates a deck that deals cards in the given order
func NewStackedDeck(cards ...Card) *Deck {
	return &Deck{
		Cards: append([]Card(nil), cards...),
		rng:   rand.New(rand.NewSource(1)),
	}
}

// Shuffle shuffles the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
	d.DealtCards = 0
}

// Deal deals one card from the deck
func (d *Deck) Deal() Card {
	if d.DealtCards >= len(d.Cards) {
		// Reshuffle if no cards left
		d.Shuffle()
	}

	card := d.Cards[d.DealtCards]
	d.DealtCards++
	return card
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.Cards) - d.DealtCards
}

// Hand represents a blackjack hand
type Hand struct {
	Cards []Card `json:"cards"`
}

// NewHand creates a new hand
func NewHand(cards ...Card) *Hand {
	return &Hand{
		Cards: append(make([]Card, 0, 4), cards...),
	}
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card Card) {
	h.Cards = append(h.Cards, card)
}

// GetValue calculates the hand value, demoting aces from 11 to 1 one at a time while over 21
func (h *Hand) GetValue() int {
	total := 0
	aces := 0

	for _, card := range h.Cards {
		if card.IsAce() {
			aces++
		}
		total += card.Value()
	}

	for aces > 0 && total > BlackjackTarget {
		total -= 10
		aces--
	}

	return total
}

// IsBlackjack checks if the hand is a natural blackjack (21 with 2 cards)
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && h.GetValue() == BlackjackTarget
}

// IsBusted checks if the hand is over 21
func (h *Hand) IsBusted() bool {
	return h.GetValue() > BlackjackTarget
}

// Count returns the number of cards in the hand
func (h *Hand) Count() int {
	return len(h.Cards)
}

// String returns string representation of the hand
func (h *Hand) String() string {
	cards := make([]string, len(h.Cards))
	for i, card := range h.Cards {
		cards[i] = card.String()
	}
	return strings.Join(cards, " ")
}
