package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrHandComplete is returned by Apply once the hand has resolved.
var ErrHandComplete = errors.New("hand is complete")

// Hand is a single hand of no-limit hold'em. It owns the deck, the
// betting state and the pot; street transitions, board dealing and
// showdown resolution happen inside Apply as soon as a betting round
// closes. Player indexes are positions in the names slice passed to
// NewHand, not table seats.
type Hand struct {
	players    []*Player
	dealer     int
	smallBlind int
	bigBlind   int

	street  Street
	board   CardSet
	deck    *Deck
	betting *bettingRound

	actor          int
	resolved       bool
	showdown       bool
	initialStacks  []int
	payoffs        []int
	liveBeforeLast []int
}

// Winner is a player index together with its positive net payoff.
type Winner struct {
	Index  int
	Amount int
}

// Results summarises a resolved hand. Payoffs are net stack deltas,
// so a returned uncalled bet contributes nothing and a split pot can
// leave every payoff at zero.
type Results struct {
	Payoffs     []int
	FinalStacks []int
	Winners     []Winner
	Showdown    bool
	LiveAtEnd   []int
	Board       CardSet
}

// NewHand deals a fresh hand. Blinds are posted immediately (heads-up
// the dealer posts the small blind) and the first actor is in place,
// or the board is run out at once if the blinds leave no betting to be
// had.
func NewHand(rng *rand.Rand, names []string, stacks []int, dealer, smallBlind, bigBlind int) *Hand {
	if len(names) < 2 {
		panic("hand requires at least two players")
	}
	if len(names) != len(stacks) {
		panic("names and stacks length mismatch")
	}

	n := len(names)
	h := &Hand{
		players:    make([]*Player, n),
		dealer:     dealer,
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		street:     Preflop,
		deck:       NewDeck(rng),
		betting:    newBettingRound(n, bigBlind),
	}
	h.initialStacks = append([]int(nil), stacks...)
	for i := range names {
		h.players[i] = &Player{Name: names[i], Stack: stacks[i]}
	}

	for _, p := range h.players {
		for _, c := range h.deck.Deal(2) {
			p.HoleCards = p.HoleCards.Add(c)
		}
	}

	h.players[h.SmallBlindIndex()].put(smallBlind)
	h.players[h.BigBlindIndex()].put(bigBlind)
	h.betting.currentBet = bigBlind

	if n == 2 {
		h.actor = h.nextActor(h.dealer)
	} else {
		h.actor = h.nextActor(h.dealer + 3)
	}
	h.liveBeforeLast = h.liveIndexes()

	if !h.bettingOpen() {
		h.actor = -1
		h.nextStreet()
		h.resolve()
	}
	return h
}

// ActorIndex returns the player index due to act, or -1 once the hand
// is terminal.
func (h *Hand) ActorIndex() int {
	if h.resolved {
		return -1
	}
	return h.actor
}

// LegalActions enumerates the current actor's options. Call amounts
// are capped at the actor's stack; raise bounds are totals the raise
// brings the actor's street commitment to, with an all-in below the
// minimum raise permitted.
func (h *Hand) LegalActions() []ValidAction {
	if h.resolved || h.actor < 0 {
		return nil
	}
	p := h.players[h.actor]
	owed := h.betting.currentBet - p.Bet

	actions := []ValidAction{{Kind: Fold}}
	if owed <= 0 {
		actions = append(actions, ValidAction{Kind: Check})
	} else {
		actions = append(actions, ValidAction{Kind: Call, Amount: min(owed, p.Stack)})
	}
	if p.Stack > owed {
		maxTo := p.Bet + p.Stack
		minTo := min(h.betting.currentBet+h.betting.minRaise, maxTo)
		actions = append(actions, ValidAction{Kind: Raise, Min: minTo, Max: maxTo})
	}
	return actions
}

// Apply plays the current actor's action. For raises amount is the
// total street commitment; for everything else it is ignored. The
// caller is expected to have validated against LegalActions, so an
// error here means a bug upstream.
func (h *Hand) Apply(kind ActionKind, amount int) error {
	if h.resolved {
		return ErrHandComplete
	}
	if h.actor < 0 {
		return errors.New("no player to act")
	}
	p := h.players[h.actor]
	live := h.liveIndexes()

	switch kind {
	case Fold:
		p.Folded = true
		h.betting.acted[h.actor] = true
	case Check:
		if p.Bet != h.betting.currentBet {
			return fmt.Errorf("cannot check facing a bet of %d", h.betting.currentBet)
		}
		h.betting.acted[h.actor] = true
	case Call:
		owed := h.betting.currentBet - p.Bet
		if owed > 0 {
			p.put(owed)
		}
		h.betting.acted[h.actor] = true
	case Raise:
		maxTo := p.Bet + p.Stack
		minTo := h.betting.currentBet + h.betting.minRaise
		if amount > maxTo {
			return fmt.Errorf("raise to %d exceeds all-in total %d", amount, maxTo)
		}
		if amount <= h.betting.currentBet {
			return fmt.Errorf("raise to %d does not exceed current bet %d", amount, h.betting.currentBet)
		}
		if amount < minTo && amount < maxTo {
			return fmt.Errorf("raise to %d below minimum %d and not all-in", amount, minTo)
		}
		h.betting.minRaise = amount - h.betting.currentBet
		h.betting.currentBet = amount
		p.put(amount - p.Bet)
		h.betting.reopen(h.actor)
	default:
		return fmt.Errorf("unknown action kind %d", kind)
	}

	h.liveBeforeLast = live
	h.advance()
	return nil
}

// Terminal reports whether the hand has resolved.
func (h *Hand) Terminal() bool {
	return h.resolved
}

// Results returns the outcome of a resolved hand. Calling it before
// Terminal reports true is a bug.
func (h *Hand) Results() Results {
	if !h.resolved {
		panic("hand not resolved")
	}
	var winners []Winner
	for i, payoff := range h.payoffs {
		if payoff > 0 {
			winners = append(winners, Winner{Index: i, Amount: payoff})
		}
	}
	return Results{
		Payoffs:     append([]int(nil), h.payoffs...),
		FinalStacks: h.Stacks(),
		Winners:     winners,
		Showdown:    h.showdown,
		LiveAtEnd:   append([]int(nil), h.liveBeforeLast...),
		Board:       h.board,
	}
}

func (h *Hand) advance() {
	if h.liveCount() <= 1 {
		h.actor = -1
		h.resolve()
		return
	}
	if h.betting.complete(h.players) {
		h.nextStreet()
	} else {
		h.actor = h.nextActor(h.actor + 1)
	}
	if h.street == Showdown {
		h.resolve()
	}
}

func (h *Hand) nextStreet() {
	for _, p := range h.players {
		p.Bet = 0
	}
	h.betting.reset()

	switch h.street {
	case Preflop:
		h.street = Flop
		for _, c := range h.deck.Deal(3) {
			h.board = h.board.Add(c)
		}
	case Flop:
		h.street = Turn
		h.board = h.board.Add(h.deck.DealOne())
	case Turn:
		h.street = River
		h.board = h.board.Add(h.deck.DealOne())
	default:
		h.street = Showdown
		h.actor = -1
		return
	}

	h.actor = h.nextActor(h.dealer + 1)
	if h.actor == -1 || !h.bettingOpen() {
		h.actor = -1
		h.nextStreet()
	}
}

func (h *Hand) resolve() {
	if h.resolved {
		return
	}
	h.resolved = true
	h.actor = -1
	for _, p := range h.players {
		p.Bet = 0
	}
	h.showdown = h.liveCount() > 1

	for _, pot := range computePots(h.players) {
		h.award(pot)
	}
	h.payoffs = make([]int, len(h.players))
	for i, p := range h.players {
		h.payoffs[i] = p.Stack - h.initialStacks[i]
	}
}

// award pays out one pot. With several claimants the best hand wins;
// ties split, with odd chips going to the earliest winner clockwise
// from the dealer.
func (h *Hand) award(pot Pot) {
	if len(pot.Eligible) == 0 {
		return
	}
	winners := pot.Eligible
	if len(winners) > 1 {
		best := handStrength(h.players[winners[0]].HoleCards, h.board)
		for _, i := range winners[1:] {
			if s := handStrength(h.players[i].HoleCards, h.board); s < best {
				best = s
			}
		}
		var tied []int
		for _, i := range winners {
			if handStrength(h.players[i].HoleCards, h.board) == best {
				tied = append(tied, i)
			}
		}
		winners = tied
	}

	n := len(h.players)
	sort.Slice(winners, func(a, b int) bool {
		return (winners[a]-h.dealer-1+n)%n < (winners[b]-h.dealer-1+n)%n
	})
	share := pot.Amount / len(winners)
	for idx, w := range winners {
		h.players[w].Stack += share
		if idx == 0 {
			h.players[w].Stack += pot.Amount % len(winners)
		}
	}
}

// bettingOpen reports whether any betting decision remains meaningful:
// at least two players can act, or a lone actor still owes chips.
func (h *Hand) bettingOpen() bool {
	var sole *Player
	count := 0
	for _, p := range h.players {
		if p.CanAct() {
			count++
			sole = p
		}
	}
	if count == 0 {
		return false
	}
	if count == 1 {
		return sole.Bet < h.betting.currentBet
	}
	return true
}

func (h *Hand) nextActor(from int) int {
	n := len(h.players)
	for i := 0; i < n; i++ {
		idx := ((from + i) % n + n) % n
		if h.players[idx].CanAct() {
			return idx
		}
	}
	return -1
}

func (h *Hand) liveCount() int {
	count := 0
	for _, p := range h.players {
		if p.Live() {
			count++
		}
	}
	return count
}

func (h *Hand) liveIndexes() []int {
	var out []int
	for i, p := range h.players {
		if p.Live() {
			out = append(out, i)
		}
	}
	return out
}

// PlayerCount returns the number of players dealt in.
func (h *Hand) PlayerCount() int { return len(h.players) }

// DealerIndex returns the dealer position.
func (h *Hand) DealerIndex() int { return h.dealer }

// SmallBlindIndex returns the small blind position; heads-up this is
// the dealer.
func (h *Hand) SmallBlindIndex() int {
	if len(h.players) == 2 {
		return h.dealer
	}
	return (h.dealer + 1) % len(h.players)
}

// BigBlindIndex returns the big blind position.
func (h *Hand) BigBlindIndex() int {
	if len(h.players) == 2 {
		return (h.dealer + 1) % 2
	}
	return (h.dealer + 2) % len(h.players)
}

// SmallBlind returns the small blind amount for this hand.
func (h *Hand) SmallBlind() int { return h.smallBlind }

// BigBlind returns the big blind amount for this hand.
func (h *Hand) BigBlind() int { return h.bigBlind }

// Street returns the current phase of the hand.
func (h *Hand) Street() Street { return h.street }

// Board returns the community cards dealt so far.
func (h *Hand) Board() CardSet { return h.board }

// HoleCards returns the cards dealt to player i. Folded players keep
// theirs, so this is always the originally dealt pair.
func (h *Hand) HoleCards(i int) CardSet { return h.players[i].HoleCards }

// Stacks returns every player's current stack.
func (h *Hand) Stacks() []int {
	out := make([]int, len(h.players))
	for i, p := range h.players {
		out[i] = p.Stack
	}
	return out
}

// Bets returns every player's commitment on the current street.
func (h *Hand) Bets() []int {
	out := make([]int, len(h.players))
	for i, p := range h.players {
		out[i] = p.Bet
	}
	return out
}

// Pots returns the current pot layering including live street bets.
func (h *Hand) Pots() []Pot {
	return computePots(h.players)
}

// TotalPot returns all chips committed to the hand so far.
func (h *Hand) TotalPot() int {
	total := 0
	for _, p := range h.players {
		total += p.TotalBet
	}
	return total
}

// IsLive reports whether player i has not folded.
func (h *Hand) IsLive(i int) bool { return h.players[i].Live() }

// IsAllIn reports whether player i is all-in.
func (h *Hand) IsAllIn(i int) bool { return h.players[i].AllIn }

// Name returns the name player i was dealt in under.
func (h *Hand) Name(i int) string { return h.players[i].Name }
