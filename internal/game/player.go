package game

// Player is one seat's state within a single hand. Bet is the amount
// committed on the current street, TotalBet across the whole hand.
type Player struct {
	Name      string
	Stack     int
	HoleCards CardSet
	Folded    bool
	AllIn     bool
	Bet       int
	TotalBet  int
}

// Live reports whether the player still has a claim on the pot.
func (p *Player) Live() bool {
	return !p.Folded
}

// CanAct reports whether the player can still make betting decisions.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// put moves up to amount chips from the stack into the current bet,
// returning the amount actually moved.
func (p *Player) put(amount int) int {
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Stack == 0 {
		p.AllIn = true
	}
	return amount
}
