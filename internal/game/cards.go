package game

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single bit in a 52-bit layout: 13 ranks per suit, suits
// ordered clubs, diamonds, hearts, spades from bit 0.
type Card uint64

// CardSet is a bitset of cards. The zero value is the empty set.
type CardSet uint64

const (
	ranks = "23456789TJQKA"
	suits = "cdhs"
)

// NewCard builds a card from a rank index (0 = deuce, 12 = ace) and a
// suit index (0 = clubs, 3 = spades).
func NewCard(rank, suit int) Card {
	return Card(1) << uint(suit*13+rank)
}

// ParseCard parses the two-character wire form, e.g. "As" or "Tc".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	rank := strings.IndexByte(ranks, s[0])
	suit := strings.IndexByte(suits, s[1])
	if rank < 0 || suit < 0 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	return NewCard(rank, suit), nil
}

// Rank returns the rank index, 0 for a deuce through 12 for an ace.
func (c Card) Rank() int {
	return bits.TrailingZeros64(uint64(c)) % 13
}

// Suit returns the suit index, 0 clubs through 3 spades.
func (c Card) Suit() int {
	return bits.TrailingZeros64(uint64(c)) / 13
}

func (c Card) String() string {
	return string([]byte{ranks[c.Rank()], suits[c.Suit()]})
}

// Add returns the set with c included.
func (s CardSet) Add(c Card) CardSet {
	return s | CardSet(c)
}

// Contains reports whether c is in the set.
func (s CardSet) Contains(c Card) bool {
	return s&CardSet(c) != 0
}

// Count returns the number of cards in the set.
func (s CardSet) Count() int {
	return bits.OnesCount64(uint64(s))
}

// Cards returns the members in bit order.
func (s CardSet) Cards() []Card {
	out := make([]Card, 0, s.Count())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, Card(v&-v))
	}
	return out
}

// Strings returns the wire form of every card in the set.
func (s CardSet) Strings() []string {
	cards := s.Cards()
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func (s CardSet) String() string {
	return strings.Join(s.Strings(), " ")
}
