package server

import (
	"github.com/lox/algopoker/internal/game"
	"github.com/lox/algopoker/internal/protocol"
)

// spectatorView as a perspective reveals every hole card.
const spectatorView = -1

// buildGameState renders the table for one recipient. perspective is
// the recipient's table seat, or spectatorView. Hole cards belonging
// to anyone else are replaced with placeholders; the cards dealt are
// otherwise identical for every recipient.
func buildGameState(h *game.Hand, active []*Player, handNumber, perspective int) *protocol.GameState {
	state := &protocol.GameState{
		Street:           h.Street().String(),
		HandNumber:       handNumber,
		CommunityCards:   h.Board().Strings(),
		DealerSeat:       active[h.DealerIndex()].Seat,
		SmallBlindSeat:   active[h.SmallBlindIndex()].Seat,
		BigBlindSeat:     active[h.BigBlindIndex()].Seat,
		SmallBlindAmount: h.SmallBlind(),
		BigBlindAmount:   h.BigBlind(),
	}
	if state.CommunityCards == nil {
		state.CommunityCards = []string{}
	}

	state.Pot = protocol.PotState{Total: h.TotalPot(), Pots: []protocol.SidePot{}}
	for _, pot := range h.Pots() {
		side := protocol.SidePot{Amount: pot.Amount, EligibleSeats: []int{}}
		for _, idx := range pot.Eligible {
			side.EligibleSeats = append(side.EligibleSeats, active[idx].Seat)
		}
		state.Pot.Pots = append(state.Pot.Pots, side)
	}

	stacks := h.Stacks()
	bets := h.Bets()
	for i, p := range active {
		known := perspective == spectatorView || perspective == p.Seat
		ps := protocol.PlayerState{
			Seat:           p.Seat,
			Name:           p.Name,
			Stack:          stacks[i],
			CurrentBet:     bets[i],
			IsActive:       h.IsLive(i),
			IsAllIn:        h.IsAllIn(i),
			IsDealer:       i == h.DealerIndex(),
			IsSmallBlind:   i == h.SmallBlindIndex(),
			IsBigBlind:     i == h.BigBlindIndex(),
			HoleCardsKnown: known,
		}
		if known {
			ps.HoleCards = h.HoleCards(i).Strings()
		} else {
			ps.HoleCards = []string{protocol.HiddenCard, protocol.HiddenCard}
		}
		state.Players = append(state.Players, ps)
	}

	if idx := h.ActorIndex(); idx >= 0 {
		seat := active[idx].Seat
		state.ActorSeat = &seat
	}
	state.ValidActions = validActionsToWire(h.LegalActions())
	return state
}

func validActionsToWire(actions []game.ValidAction) []protocol.ValidAction {
	out := make([]protocol.ValidAction, 0, len(actions))
	for _, a := range actions {
		switch a.Kind {
		case game.Fold:
			out = append(out, protocol.ValidAction{Type: protocol.ActionFold})
		case game.Check:
			out = append(out, protocol.ValidAction{Type: protocol.ActionCheck})
		case game.Call:
			amount := a.Amount
			out = append(out, protocol.ValidAction{Type: protocol.ActionCall, Amount: &amount})
		case game.Raise:
			minAmount, maxAmount := a.Min, a.Max
			out = append(out, protocol.ValidAction{Type: protocol.ActionRaise, MinAmount: &minAmount, MaxAmount: &maxAmount})
		}
	}
	return out
}
