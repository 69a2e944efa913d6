// Package card implements the Dou Dizhu card set: the 54-card deck, the hand
// classifier and the beats relation used to validate plays.
package card

import "fmt"

// Rank is a card's face value. Ordering for play purposes is
// 3 < 4 < ... < K < A < 2; the constants below carry that order directly.
type Rank int

const (
	Three Rank = iota + 3
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
	Two
)

// String returns the conventional face label for a rank.
func (r Rank) String() string {
	switch {
	case r >= Three && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	case r == Two:
		return "2"
	default:
		return "?"
	}
}

// Suit represents a card suit.
type Suit int

const (
	Spade Suit = iota
	Heart
	Club
	Diamond
)

// String returns the suit glyph.
func (s Suit) String() string {
	switch s {
	case Spade:
		return "♠"
	case Heart:
		return "♥"
	case Club:
		return "♣"
	case Diamond:
		return "♦"
	default:
		return "?"
	}
}

// Card is one of the 54 cards, packed into a single byte: values 0..51 encode
// (rank, suit), 52 and 53 are the jokers. A rank-and-joker combination is
// unrepresentable, and cards compare and hash as plain integers, which keeps
// duplicate detection and the wire encoding trivial.
type Card uint8

const (
	SmallJoker Card = 52
	BigJoker   Card = 53

	// DeckSize is the number of cards in a full deck.
	DeckSize = 54
)

// New returns the card for a rank/suit pair.
func New(r Rank, s Suit) Card {
	return Card(int(r-Three)*4 + int(s))
}

// Valid reports whether c encodes one of the 54 cards.
func (c Card) Valid() bool {
	return c < DeckSize
}

// IsJoker reports whether c is the small or big joker.
func (c Card) IsJoker() bool {
	return c == SmallJoker || c == BigJoker
}

// Rank returns the face value of a non-joker card. Jokers have no rank;
// use Order for comparisons that span the whole deck.
func (c Card) Rank() Rank {
	return Three + Rank(c/4)
}

// Suit returns the suit of a non-joker card.
func (c Card) Suit() Suit {
	return Suit(c % 4)
}

// Order returns the comparison value of the card: ranks map to their Rank
// constant (3..15) and the jokers sit above 2 at 16 and 17. Straights only
// admit orders up to Ace (14).
func (c Card) Order() int {
	switch c {
	case SmallJoker:
		return int(Two) + 1
	case BigJoker:
		return int(Two) + 2
	default:
		return int(c.Rank())
	}
}

// String renders the card for logs and test failures, e.g. "3♠" or "BJ".
func (c Card) String() string {
	switch {
	case c == SmallJoker:
		return "SJ"
	case c == BigJoker:
		return "BJ"
	case c.Valid():
		return c.Rank().String() + c.Suit().String()
	default:
		return fmt.Sprintf("Card(%d)", uint8(c))
	}
}

// maxRunOrder is the highest order allowed inside straights, pair straights
// and plane cores: runs stop at A, excluding 2 and the jokers.
const maxRunOrder = int(Ace)
