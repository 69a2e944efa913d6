package card

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckEnumeration(t *testing.T) {
	d := NewDeck()
	require.Len(t, d.Cards(), DeckSize)

	seen := make(map[Card]bool, DeckSize)
	for _, c := range d.Cards() {
		require.True(t, c.Valid(), "card %v out of range", c)
		require.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}

	// Fixed order before shuffling: 3♠ first, big joker last.
	assert.Equal(t, New(Three, Spade), d.Cards()[0])
	assert.Equal(t, BigJoker, d.Cards()[DeckSize-1])
}

func TestShuffleIsPermutation(t *testing.T) {
	d := NewDeck()
	d.Shuffle(rand.New(rand.NewSource(42)))

	seen := make(map[Card]bool, DeckSize)
	for _, c := range d.Cards() {
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize, "shuffle must not drop or duplicate cards")
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))
	assert.Equal(t, a.Cards(), b.Cards())

	c := NewDeck()
	c.Shuffle(rand.New(rand.NewSource(8)))
	assert.NotEqual(t, a.Cards(), c.Cards())
}

func TestDealSplit(t *testing.T) {
	d := NewDeck()
	d.Shuffle(rand.New(rand.NewSource(1)))

	hands, bottom, err := d.Deal()
	require.NoError(t, err)
	require.Len(t, bottom, 3)

	seen := make(map[Card]bool, DeckSize)
	total := 0
	for seat := 0; seat < 3; seat++ {
		require.Len(t, hands[seat], 17)
		for _, c := range hands[seat] {
			require.False(t, seen[c], "card %v dealt twice", c)
			seen[c] = true
			total++
		}
	}
	for _, c := range bottom {
		require.False(t, seen[c], "bottom card %v overlaps a hand", c)
		seen[c] = true
		total++
	}
	assert.Equal(t, DeckSize, total)
}

func TestDealTwiceFails(t *testing.T) {
	d := NewDeck()
	_, _, err := d.Deal()
	require.NoError(t, err)

	_, _, err = d.Deal()
	assert.ErrorIs(t, err, ErrDeckAlreadyDealt)
}

func TestDealWrongSizeFails(t *testing.T) {
	d := &Deck{cards: NewDeck().Cards()[:53]}
	_, _, err := d.Deal()
	assert.ErrorIs(t, err, ErrInvalidDeckSize)
}
