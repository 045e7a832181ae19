package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCardRoundTrip(t *testing.T) {
	for _, s := range []string{"2c", "9d", "Th", "As", "Kc", "Qh", "Js"} {
		c, err := ParseCard(s)
		require.NoError(t, err)
		require.Equal(t, s, c.String())
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "A", "1c", "Ax", "10c", "as"} {
		if _, err := ParseCard(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCardSetMembership(t *testing.T) {
	ace, _ := ParseCard("As")
	ten, _ := ParseCard("Tc")
	s := CardSet(0).Add(ace).Add(ten)

	require.Equal(t, 2, s.Count())
	require.True(t, s.Contains(ace))
	require.ElementsMatch(t, []string{"As", "Tc"}, s.Strings())
}

func TestDeckDealsUniqueCards(t *testing.T) {
	d := NewDeck(rand.New(rand.NewSource(1)))
	seen := CardSet(0)
	for _, c := range d.Deal(52) {
		if seen.Contains(c) {
			t.Fatalf("card %s dealt twice", c)
		}
		seen = seen.Add(c)
	}
	require.Equal(t, 52, seen.Count())
	require.Equal(t, 0, d.Remaining())
}

func TestDeckShuffleVariesBySeed(t *testing.T) {
	a := NewDeck(rand.New(rand.NewSource(1))).Deal(52)
	b := NewDeck(rand.New(rand.NewSource(2))).Deal(52)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	require.False(t, same, "different seeds produced identical decks")
}
