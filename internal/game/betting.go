package game

// Street identifies the phase of a hand.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

var streetNames = [...]string{"preflop", "flop", "turn", "river", "showdown"}

func (s Street) String() string {
	if s < Preflop || s > Showdown {
		return "unknown"
	}
	return streetNames[s]
}

// ActionKind is one of the four betting decisions a player can make.
// All-in is expressed as a call for the full stack or a raise to the
// maximum, never as a distinct kind.
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
)

var actionNames = [...]string{"fold", "check", "call", "raise"}

func (k ActionKind) String() string {
	if k < Fold || k > Raise {
		return "unknown"
	}
	return actionNames[k]
}

// ValidAction describes one legal action for the current actor. Amount
// is the chips owed for a call; Min and Max bound the total a raise
// brings the actor's street commitment to.
type ValidAction struct {
	Kind   ActionKind
	Amount int
	Min    int
	Max    int
}

// bettingRound tracks the open bet on the current street. currentBet
// and minRaise are totals relative to street commitment, so a raise to
// amount sets currentBet = amount and minRaise = amount - previous bet.
type bettingRound struct {
	currentBet int
	minRaise   int
	bigBlind   int
	acted      []bool
}

func newBettingRound(n, bigBlind int) *bettingRound {
	return &bettingRound{
		minRaise: bigBlind,
		bigBlind: bigBlind,
		acted:    make([]bool, n),
	}
}

// reset prepares the round for a new street.
func (b *bettingRound) reset() {
	b.currentBet = 0
	b.minRaise = b.bigBlind
	for i := range b.acted {
		b.acted[i] = false
	}
}

// reopen clears acted flags after a raise so everyone gets another
// decision, keeping only the raiser marked.
func (b *bettingRound) reopen(raiser int) {
	for i := range b.acted {
		b.acted[i] = i == raiser
	}
}

// complete reports whether the street's betting is closed: every
// player who can still act has acted and matched the current bet. A
// big blind who merely posted has not acted, which preserves the
// preflop option.
func (b *bettingRound) complete(players []*Player) bool {
	for i, p := range players {
		if !p.CanAct() {
			continue
		}
		if !b.acted[i] || p.Bet != b.currentBet {
			return false
		}
	}
	return true
}
