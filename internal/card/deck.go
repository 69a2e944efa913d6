package card

import (
	"errors"
	"math/rand"
)

var (
	// ErrInvalidDeckSize is returned by Deal when the deck does not hold all 54 cards.
	ErrInvalidDeckSize = errors.New("deck does not contain exactly 54 cards")
	// ErrDeckAlreadyDealt is returned when a deck is consumed a second time.
	ErrDeckAlreadyDealt = errors.New("deck has already been dealt")
)

// Deck is an ordered set of the 54 cards, consumed once per game.
type Deck struct {
	cards []Card
	dealt bool
}

// NewDeck returns a full deck in fixed enumeration order: ranks 3..2 by suit,
// then the two jokers. The fixed order keeps pre-shuffle state testable.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for c := Card(0); c < DeckSize; c++ {
		cards = append(cards, c)
	}
	return &Deck{cards: cards}
}

// Cards returns the deck's current order. The slice is shared; callers must
// not mutate it.
func (d *Deck) Cards() []Card {
	return d.cards
}

// Shuffle applies a Fisher-Yates permutation using the provided source, so a
// seeded rng yields a reproducible deal.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal splits the deck into three 17-card hands and the 3-card bottom,
// in seat order. The deck is consumed; dealing it again fails.
func (d *Deck) Deal() (hands [3][]Card, bottom []Card, err error) {
	if d.dealt {
		return hands, nil, ErrDeckAlreadyDealt
	}
	if len(d.cards) != DeckSize {
		return hands, nil, ErrInvalidDeckSize
	}
	for seat := 0; seat < 3; seat++ {
		hands[seat] = make([]Card, 17)
		copy(hands[seat], d.cards[seat*17:(seat+1)*17])
	}
	bottom = make([]Card, 3)
	copy(bottom, d.cards[51:])
	d.dealt = true
	return hands, bottom, nil
}
