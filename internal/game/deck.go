package game

import "math/rand"

// Deck is a shuffled 52-card deck. Not safe for concurrent use; each
// hand owns its own deck.
type Deck struct {
	cards [52]Card
	next  int
	rng   *rand.Rand
}

// NewDeck returns a freshly shuffled deck drawing randomness from rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	for i := 0; i < 52; i++ {
		d.cards[i] = Card(1) << uint(i)
	}
	d.shuffle()
	return d
}

func (d *Deck) shuffle() {
	for i := 51; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	d.next = 0
}

// Deal removes and returns the next n cards.
func (d *Deck) Deal(n int) []Card {
	if d.next+n > 52 {
		panic("deck exhausted")
	}
	out := d.cards[d.next : d.next+n]
	d.next += n
	return out
}

// DealOne removes and returns a single card.
func (d *Deck) DealOne() Card {
	return d.Deal(1)[0]
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return 52 - d.next
}
