package server

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/algopoker/internal/game"
	"github.com/lox/algopoker/internal/protocol"
)

// handLoop drives one hand from deal to hand_end: prompt the actor,
// await exactly one decision, validate it against the engine's legal
// set, apply it, and broadcast the outcome. All engine interaction is
// single-threaded here; sessions only feed the mailboxes.
type handLoop struct {
	logger     *log.Logger
	clock      quartz.Clock
	timeout    time.Duration
	handNumber int

	hand       *game.Hand
	active     []*Player
	everyone   []*Player
	spectators []*Session
}

func newHandLoop(logger *log.Logger, clock quartz.Clock, rng *rand.Rand, timeout time.Duration,
	handNumber int, active, everyone []*Player, spectators []*Session, dealerIdx, sb, bb int) *handLoop {

	names := make([]string, len(active))
	stacks := make([]int, len(active))
	for i, p := range active {
		names[i] = p.Name
		stacks[i] = p.Stack
	}

	return &handLoop{
		logger:     logger.WithPrefix("hand").With("hand", handNumber),
		clock:      clock,
		timeout:    timeout,
		handNumber: handNumber,
		hand:       game.NewHand(rng, names, stacks, dealerIdx, sb, bb),
		active:     active,
		everyone:   everyone,
		spectators: spectators,
	}
}

// run plays the hand to completion and returns the seats eliminated
// by it. Roster stacks are updated in place.
func (hl *handLoop) run() []int {
	hl.logger.Info("hand starting",
		"players", len(hl.active),
		"dealer", hl.active[hl.hand.DealerIndex()].Seat,
		"blinds", fmt.Sprintf("%d/%d", hl.hand.SmallBlind(), hl.hand.BigBlind()))

	hl.broadcastHandStart()

	for {
		idx := hl.hand.ActorIndex()
		if idx < 0 {
			break
		}
		actor := hl.active[idx]
		valid := hl.hand.LegalActions()

		actor.Session.DrainActions()
		hl.broadcastActionRequest(actor.Seat)

		kind, applyAmount, wireAmount, timedOut := hl.collectAction(actor, valid)
		if err := hl.hand.Apply(kind, applyAmount); err != nil {
			hl.logger.Error("engine rejected validated action, forcing fold",
				"seat", actor.Seat, "action", kind.String(), "err", err)
			kind, wireAmount = game.Fold, nil
			if err := hl.hand.Apply(game.Fold, 0); err != nil {
				hl.logger.Error("forced fold failed, abandoning hand", "err", err)
				break
			}
		}
		hl.broadcastActionResult(actor, kind, wireAmount, timedOut)
	}

	return hl.finish()
}

// collectAction awaits the actor's decision and reduces it to an
// engine action. Timeouts and disconnects fold with timed_out set;
// malformed or illegal submissions earn a BAD_ACTION error and fold
// without it. Out-of-range raises are clamped, not punished.
func (hl *handLoop) collectAction(actor *Player, valid []game.ValidAction) (kind game.ActionKind, applyAmount int, wireAmount *int, timedOut bool) {
	raw, ok := actor.Session.AwaitAction(hl.clock, hl.timeout)
	if !ok {
		hl.logger.Info("no action received, auto-folding", "seat", actor.Seat, "name", actor.Name)
		return game.Fold, 0, nil, true
	}

	kindStr, amount, err := protocol.DecodeAction(raw)
	if err != nil {
		hl.badAction(actor, err.Error())
		return game.Fold, 0, nil, false
	}

	kind, known := actionKind(kindStr)
	if !known {
		hl.badAction(actor, fmt.Sprintf("unknown action type %q", kindStr))
		return game.Fold, 0, nil, false
	}

	allowed := findAction(valid, kind)
	if allowed == nil && kind == game.Call {
		// Calling with nothing owed is accepted as a check.
		if chk := findAction(valid, game.Check); chk != nil {
			kind, allowed = game.Check, chk
		}
	}
	if allowed == nil {
		hl.badAction(actor, fmt.Sprintf("%s is not a valid action right now", kindStr))
		return game.Fold, 0, nil, false
	}

	if kind == game.Raise {
		if amount == nil {
			hl.badAction(actor, "raise requires an amount")
			return game.Fold, 0, nil, false
		}
		clamped := *amount
		if clamped < allowed.Min {
			clamped = allowed.Min
		}
		if clamped > allowed.Max {
			clamped = allowed.Max
		}
		if clamped != *amount {
			hl.logger.Warn("raise amount clamped",
				"seat", actor.Seat, "requested", *amount, "applied", clamped)
		}
		return game.Raise, clamped, &clamped, false
	}
	return kind, 0, amount, false
}

func (hl *handLoop) badAction(actor *Player, detail string) {
	hl.logger.Warn("invalid action, auto-folding", "seat", actor.Seat, "detail", detail)
	actor.Session.Send(&protocol.Error{
		Type:    protocol.TypeError,
		Code:    protocol.ErrBadAction,
		Message: detail,
	})
}

// finish settles the hand: stacks back onto the roster, eliminations,
// showdown reveals, and the hand_end broadcast to everyone.
func (hl *handLoop) finish() []int {
	res := hl.hand.Results()

	var eliminated []int
	for i, p := range hl.active {
		p.Stack = res.FinalStacks[i]
		if p.Stack == 0 && !p.Eliminated {
			p.Eliminated = true
			eliminated = append(eliminated, p.Seat)
			hl.logger.Info("player eliminated", "seat", p.Seat, "name", p.Name)
		}
	}
	if eliminated == nil {
		eliminated = []int{}
	}

	winners := []protocol.WinnerInfo{}
	for _, w := range res.Winners {
		p := hl.active[w.Index]
		winners = append(winners, protocol.WinnerInfo{Seat: p.Seat, Name: p.Name, AmountWon: w.Amount})
	}

	revealed := []protocol.RevealedCards{}
	if res.Showdown {
		for _, idx := range res.LiveAtEnd {
			p := hl.active[idx]
			revealed = append(revealed, protocol.RevealedCards{
				Seat:      p.Seat,
				Name:      p.Name,
				HoleCards: hl.hand.HoleCards(idx).Strings(),
			})
			hl.logger.Debug("showdown reveal",
				"seat", p.Seat,
				"cards", hl.hand.HoleCards(idx).String(),
				"best", game.BestHandName(hl.hand.HoleCards(idx), res.Board))
		}
	}

	names := make([]string, len(hl.everyone))
	stacks := make([]int, len(hl.everyone))
	for i, p := range hl.everyone {
		names[i] = p.Name
		stacks[i] = p.Stack
	}
	board := res.Board.Strings()
	if board == nil {
		board = []string{}
	}

	handEnd := &protocol.HandEnd{
		Type:              protocol.TypeHandEnd,
		HandNumber:        hl.handNumber,
		Winners:           winners,
		HoleCardsRevealed: revealed,
		CommunityCards:    board,
		FinalStacks:       stacks,
		PlayerNames:       names,
		EliminatedSeats:   eliminated,
	}
	broadcastPlayers(hl.recipients(), func(*Player) any { return handEnd })
	broadcastSessions(hl.spectators, func() any { return handEnd })

	hl.logger.Info("hand complete", "winners", len(winners), "eliminated", eliminated)
	return eliminated
}

func (hl *handLoop) broadcastHandStart() {
	names := make([]string, len(hl.active))
	stacks := make([]int, len(hl.active))
	for i, p := range hl.active {
		names[i] = p.Name
		stacks[i] = p.Stack
	}
	base := protocol.HandStart{
		Type:             protocol.TypeHandStart,
		HandNumber:       hl.handNumber,
		DealerSeat:       hl.active[hl.hand.DealerIndex()].Seat,
		SmallBlindSeat:   hl.active[hl.hand.SmallBlindIndex()].Seat,
		BigBlindSeat:     hl.active[hl.hand.BigBlindIndex()].Seat,
		SmallBlindAmount: hl.hand.SmallBlind(),
		BigBlindAmount:   hl.hand.BigBlind(),
		PlayerNames:      names,
		Stacks:           stacks,
	}

	broadcastPlayers(hl.recipients(), func(p *Player) any {
		msg := base
		msg.HoleCards = hl.holeCardsFor(p)
		return &msg
	})
	broadcastSessions(hl.spectators, func() any {
		msg := base
		msg.HoleCards = []string{}
		return &msg
	})
}

// holeCardsFor returns the recipient's own dealt cards, or an empty
// list for players sitting out the hand.
func (hl *handLoop) holeCardsFor(p *Player) []string {
	for i, a := range hl.active {
		if a.Seat == p.Seat {
			return hl.hand.HoleCards(i).Strings()
		}
	}
	return []string{}
}

func (hl *handLoop) broadcastActionRequest(actorSeat int) {
	broadcastPlayers(hl.recipients(), func(p *Player) any {
		return &protocol.ActionRequest{
			Type:           protocol.TypeActionRequest,
			ActorSeat:      actorSeat,
			TimeoutSeconds: int(hl.timeout / time.Second),
			GameState:      buildGameState(hl.hand, hl.active, hl.handNumber, p.Seat),
		}
	})
	broadcastSessions(hl.spectators, func() any {
		return &protocol.ActionRequest{
			Type:           protocol.TypeActionRequest,
			ActorSeat:      actorSeat,
			TimeoutSeconds: int(hl.timeout / time.Second),
			GameState:      buildGameState(hl.hand, hl.active, hl.handNumber, spectatorView),
		}
	})
}

func (hl *handLoop) broadcastActionResult(actor *Player, kind game.ActionKind, amount *int, timedOut bool) {
	action := protocol.Action{Type: kind.String(), Amount: amount}
	broadcastPlayers(hl.recipients(), func(p *Player) any {
		return &protocol.ActionResult{
			Type:       protocol.TypeActionResult,
			ActorSeat:  actor.Seat,
			PlayerName: actor.Name,
			Action:     action,
			TimedOut:   timedOut,
			GameState:  buildGameState(hl.hand, hl.active, hl.handNumber, p.Seat),
		}
	})
	broadcastSessions(hl.spectators, func() any {
		return &protocol.ActionResult{
			Type:       protocol.TypeActionResult,
			ActorSeat:  actor.Seat,
			PlayerName: actor.Name,
			Action:     action,
			TimedOut:   timedOut,
			GameState:  buildGameState(hl.hand, hl.active, hl.handNumber, spectatorView),
		}
	})
}

// recipients are the players still receiving broadcasts. Matches the
// elimination rule: once a seat is marked eliminated it stops getting
// records, spectators excepted.
func (hl *handLoop) recipients() []*Player {
	var out []*Player
	for _, p := range hl.everyone {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func actionKind(s string) (game.ActionKind, bool) {
	switch s {
	case protocol.ActionFold:
		return game.Fold, true
	case protocol.ActionCheck:
		return game.Check, true
	case protocol.ActionCall:
		return game.Call, true
	case protocol.ActionRaise:
		return game.Raise, true
	}
	return game.Fold, false
}

func findAction(valid []game.ValidAction, kind game.ActionKind) *game.ValidAction {
	for i := range valid {
		if valid[i].Kind == kind {
			return &valid[i]
		}
	}
	return nil
}
