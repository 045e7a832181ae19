package game

import "github.com/chehsunliu/poker"

// handStrength evaluates the best five-card hand from the player's
// hole cards plus the board. Lower values are stronger.
func handStrength(hole, board CardSet) int32 {
	all := hole | board
	cards := make([]poker.Card, 0, 7)
	for _, s := range all.Strings() {
		cards = append(cards, poker.NewCard(s))
	}
	return poker.Evaluate(cards)
}

// BestHandName returns a human-readable class for the player's best
// hand, e.g. "Two Pair". Used for showdown logging.
func BestHandName(hole, board CardSet) string {
	return poker.RankString(handStrength(hole, board))
}
