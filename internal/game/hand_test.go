package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHand(t *testing.T, stacks []int, dealer, sb, bb int) *Hand {
	t.Helper()
	names := make([]string, len(stacks))
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	return NewHand(rand.New(rand.NewSource(42)), names, stacks, dealer, sb, bb)
}

func totalChips(h *Hand) int {
	total := h.TotalPot()
	for _, s := range h.Stacks() {
		total += s
	}
	return total
}

func TestNewHandPostsBlinds(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)

	require.Equal(t, 1, h.SmallBlindIndex())
	require.Equal(t, 2, h.BigBlindIndex())
	require.Equal(t, []int{0, 50, 100}, h.Bets())
	require.Equal(t, []int{1000, 950, 900}, h.Stacks())
	require.Equal(t, 0, h.ActorIndex(), "under the gun acts first")
	require.Equal(t, Preflop, h.Street())
	require.Equal(t, 150, h.TotalPot())
}

func TestHeadsUpDealerPostsSmallBlindAndActsFirst(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000}, 0, 50, 100)

	require.Equal(t, 0, h.SmallBlindIndex())
	require.Equal(t, 1, h.BigBlindIndex())
	require.Equal(t, 0, h.ActorIndex())

	require.NoError(t, h.Apply(Call, 0))
	require.Equal(t, 1, h.ActorIndex(), "big blind has the option")
	require.NoError(t, h.Apply(Check, 0))

	require.Equal(t, Flop, h.Street())
	require.Equal(t, 1, h.ActorIndex(), "non-dealer acts first postflop")
	require.Equal(t, 3, h.Board().Count())
}

func TestLegalActionsAmounts(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)

	actions := h.LegalActions()
	require.Len(t, actions, 3)
	require.Equal(t, Fold, actions[0].Kind)
	require.Equal(t, Call, actions[1].Kind)
	require.Equal(t, 100, actions[1].Amount)
	require.Equal(t, Raise, actions[2].Kind)
	require.Equal(t, 200, actions[2].Min)
	require.Equal(t, 1000, actions[2].Max)
}

func TestLegalActionsShortStackCannotRaise(t *testing.T) {
	// Actor's stack cannot exceed a call, so only fold and call remain.
	h := newTestHand(t, []int{80, 1000, 1000}, 0, 50, 100)

	actions := h.LegalActions()
	require.Len(t, actions, 2)
	require.Equal(t, Fold, actions[0].Kind)
	require.Equal(t, Call, actions[1].Kind)
	require.Equal(t, 80, actions[1].Amount, "call capped at stack")
}

func TestBigBlindOptionAfterLimps(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)

	require.NoError(t, h.Apply(Call, 0))
	require.NoError(t, h.Apply(Call, 0))
	require.Equal(t, 2, h.ActorIndex(), "big blind keeps the option")

	var kinds []ActionKind
	for _, a := range h.LegalActions() {
		kinds = append(kinds, a.Kind)
	}
	require.Contains(t, kinds, Check)
	require.Contains(t, kinds, Raise)

	require.NoError(t, h.Apply(Check, 0))
	require.Equal(t, Flop, h.Street())
}

func TestFoldToBlindEndsHand(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000}, 0, 50, 100)

	require.NoError(t, h.Apply(Fold, 0))
	require.True(t, h.Terminal())
	require.Equal(t, -1, h.ActorIndex())

	res := h.Results()
	require.False(t, res.Showdown)
	require.Equal(t, []int{-50, 50}, res.Payoffs)
	require.Equal(t, []Winner{{Index: 1, Amount: 50}}, res.Winners)
	require.Equal(t, 2000, totalChips(h))
}

func TestUncalledRaiseReturned(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000}, 0, 50, 100)

	require.NoError(t, h.Apply(Raise, 300))
	require.NoError(t, h.Apply(Fold, 0))

	res := h.Results()
	require.Equal(t, []int{100, -100}, res.Payoffs, "winner only collects the called portion")
	require.Equal(t, 2000, totalChips(h))
}

func TestCheckDownReachesShowdown(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000}, 0, 50, 100)

	require.NoError(t, h.Apply(Call, 0))
	require.NoError(t, h.Apply(Check, 0))
	for street := Flop; street <= River; street++ {
		require.Equal(t, street, h.Street())
		require.NoError(t, h.Apply(Check, 0))
		require.NoError(t, h.Apply(Check, 0))
	}

	require.True(t, h.Terminal())
	res := h.Results()
	require.True(t, res.Showdown)
	require.Equal(t, 5, res.Board.Count())
	require.ElementsMatch(t, []int{0, 1}, res.LiveAtEnd)
	require.Equal(t, 2000, totalChips(h))

	sum := 0
	for _, p := range res.Payoffs {
		sum += p
	}
	require.Equal(t, 0, sum)
}

func TestRaiseValidation(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)

	require.Error(t, h.Apply(Raise, 150), "below minimum raise")
	require.Error(t, h.Apply(Raise, 1500), "beyond all-in total")
	require.Error(t, h.Apply(Raise, 100), "does not exceed current bet")
	require.NoError(t, h.Apply(Raise, 200))
	require.Equal(t, 1, h.ActorIndex())
}

func TestAllInBelowMinimumRaiseAllowed(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 150}, 0, 50, 100)

	require.NoError(t, h.Apply(Call, 0))
	require.NoError(t, h.Apply(Call, 0))
	// Big blind shoves for less than a full raise.
	require.NoError(t, h.Apply(Raise, 150))
	require.True(t, h.IsAllIn(2))
}

func TestAllInsRunOutTheBoard(t *testing.T) {
	h := newTestHand(t, []int{500, 100, 300}, 0, 10, 20)

	require.Equal(t, 0, h.ActorIndex())
	require.NoError(t, h.Apply(Raise, 500))
	require.NoError(t, h.Apply(Call, 0))
	require.NoError(t, h.Apply(Call, 0))

	require.True(t, h.Terminal())
	res := h.Results()
	require.True(t, res.Showdown)
	require.Equal(t, 5, res.Board.Count())
	require.Equal(t, 900, totalChips(h))

	// The short stacks can only win the layers they covered, so the big
	// stack's overage always comes back to it.
	require.GreaterOrEqual(t, res.FinalStacks[0], 200)
}

func TestSidePotLayering(t *testing.T) {
	players := []*Player{
		{Name: "A", TotalBet: 500},
		{Name: "B", TotalBet: 100, AllIn: true},
		{Name: "C", TotalBet: 300, AllIn: true},
		{Name: "D", TotalBet: 500, Folded: true},
	}

	pots := computePots(players)
	require.Len(t, pots, 3)

	require.Equal(t, 400, pots[0].Amount)
	require.Equal(t, []int{0, 1, 2}, pots[0].Eligible)

	require.Equal(t, 600, pots[1].Amount)
	require.Equal(t, []int{0, 2}, pots[1].Eligible)

	require.Equal(t, 400, pots[2].Amount)
	require.Equal(t, []int{0}, pots[2].Eligible)
}

func TestBlindsShorterThanStacksGoAllIn(t *testing.T) {
	h := newTestHand(t, []int{1000, 30}, 0, 50, 100)

	// Big blind could only post 30; dealer still owes the difference up
	// to its own posted 50, but calling can win no more than the layers
	// the short stack covers.
	require.True(t, h.IsAllIn(1))
	require.Equal(t, 1030, h.TotalPot()+h.Stacks()[0]+h.Stacks()[1])
}

func TestRandomisedHandsConserveChips(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		n := 2 + rng.Intn(5)
		names := make([]string, n)
		stacks := make([]int, n)
		total := 0
		for j := range stacks {
			names[j] = string(rune('A' + j))
			stacks[j] = 100 + rng.Intn(2000)
			total += stacks[j]
		}
		h := NewHand(rng, names, stacks, rng.Intn(n), 50, 100)

		for steps := 0; !h.Terminal(); steps++ {
			if steps > 500 {
				t.Fatalf("hand %d did not terminate", i)
			}
			actions := h.LegalActions()
			require.NotEmpty(t, actions)
			choice := actions[rng.Intn(len(actions))]
			amount := 0
			if choice.Kind == Raise {
				amount = choice.Min + rng.Intn(choice.Max-choice.Min+1)
			}
			require.NoError(t, h.Apply(choice.Kind, amount))
			require.Equal(t, total, totalChips(h), "hand %d leaked chips mid-hand", i)
		}

		res := h.Results()
		sum := 0
		for _, p := range res.Payoffs {
			sum += p
		}
		require.Equal(t, 0, sum, "hand %d payoffs do not balance", i)
		require.Equal(t, total, totalChips(h), "hand %d leaked chips", i)
	}
}

func TestApplyAfterTerminalFails(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000}, 0, 50, 100)
	require.NoError(t, h.Apply(Fold, 0))
	require.ErrorIs(t, h.Apply(Check, 0), ErrHandComplete)
}
