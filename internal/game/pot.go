package game

import "sort"

// Pot is a main or side pot. Eligible lists the player indexes with a
// claim on it, in seat order.
type Pot struct {
	Amount   int
	Eligible []int
}

// computePots layers the players' total contributions into a main pot
// and one side pot per distinct all-in level. Folded contributions are
// counted into the layers they reach but confer no eligibility.
func computePots(players []*Player) []Pot {
	levels := allInLevels(players)

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for i, p := range players {
			if p.TotalBet <= prev {
				continue
			}
			contrib := min(p.TotalBet, level) - prev
			pot.Amount += contrib
			if p.Live() && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, i)
			}
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}

	// Remainder above the highest all-in level.
	rest := Pot{}
	for i, p := range players {
		if p.TotalBet <= prev {
			continue
		}
		rest.Amount += p.TotalBet - prev
		if p.Live() {
			rest.Eligible = append(rest.Eligible, i)
		}
	}
	if rest.Amount > 0 {
		pots = append(pots, rest)
	}
	if pots == nil {
		pots = []Pot{}
	}
	return pots
}

// allInLevels returns the distinct total contributions of live all-in
// players, ascending. An empty slice means a single undivided pot.
func allInLevels(players []*Player) []int {
	seen := map[int]bool{}
	var levels []int
	for _, p := range players {
		if p.Live() && p.AllIn && p.TotalBet > 0 && !seen[p.TotalBet] {
			seen[p.TotalBet] = true
			levels = append(levels, p.TotalBet)
		}
	}
	sort.Ints(levels)
	return levels
}
