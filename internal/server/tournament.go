package server

import (
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/algopoker/internal/protocol"
)

// Player is one tournament entrant. Seat is the join order and never
// changes, even after elimination.
type Player struct {
	Seat       int
	Name       string
	Stack      int
	Eliminated bool
	Session    *Session
}

// RegistrationError is a lobby rejection with its wire error code.
type RegistrationError struct {
	Code    string
	Message string
}

func (e *RegistrationError) Error() string {
	return e.Message
}

// Tournament owns the roster and runs the freeze-out from lobby to
// game_end. Registration is serialised under mu; once started, all
// game state is touched only from the run goroutine.
type Tournament struct {
	cfg      *Config
	schedule []BlindLevel
	logger   *log.Logger
	clock    quartz.Clock
	rng      *rand.Rand

	mu         sync.Mutex
	players    []*Player
	spectators []*Session
	started    bool
	graceTimer *quartz.Timer

	handNumber int
	dealerSeat int

	done chan struct{}
}

func NewTournament(cfg *Config, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Tournament {
	return &Tournament{
		cfg:      cfg,
		schedule: cfg.BlindSchedule(),
		logger:   logger.WithPrefix("tournament"),
		clock:    clock,
		rng:      rng,
		done:     make(chan struct{}),
	}
}

// RegisterPlayer seats a new player, broadcasts the lobby state and
// arms or triggers the start conditions. The returned error carries
// the code to send before closing the connection.
func (t *Tournament) RegisterPlayer(sess *Session, name string) (*Player, *RegistrationError) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil, &RegistrationError{protocol.ErrTournamentStarted, "tournament already in progress"}
	}
	if len(t.players) >= t.cfg.Tournament.MaxPlayers {
		return nil, &RegistrationError{protocol.ErrTournamentFull, "table is full"}
	}
	for _, p := range t.players {
		if p.Name == name {
			return nil, &RegistrationError{protocol.ErrBadName, "name already taken"}
		}
	}

	p := &Player{
		Seat:    len(t.players),
		Name:    name,
		Stack:   t.cfg.Tournament.StartingStack,
		Session: sess,
	}
	t.players = append(t.players, p)
	t.logger.Info("player joined", "seat", p.Seat, "name", p.Name, "players", len(t.players))

	t.broadcastWaitingLocked()

	switch {
	case len(t.players) >= t.cfg.Tournament.MaxPlayers:
		t.startLocked("table full")
	case len(t.players) == t.cfg.Tournament.MinPlayers:
		t.logger.Info("minimum players reached, waiting for more", "grace", t.cfg.LobbyWait())
		t.graceTimer = t.clock.AfterFunc(t.cfg.LobbyWait(), t.graceExpired)
	}
	return p, nil
}

// RegisterSpectator attaches a read-only session.
func (t *Tournament) RegisterSpectator(sess *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spectators = append(t.spectators, sess)
	t.logger.Info("spectator connected", "spectators", len(t.spectators))
}

// RemoveSpectator detaches a spectator after its connection closes.
func (t *Tournament) RemoveSpectator(sess *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.spectators {
		if s == sess {
			t.spectators = append(t.spectators[:i], t.spectators[i+1:]...)
			break
		}
	}
	t.logger.Info("spectator disconnected", "spectators", len(t.spectators))
}

// HandleDisconnect marks a player's session dead. The seat stays in
// the tournament and auto-folds from now on; there is no reconnect.
func (t *Tournament) HandleDisconnect(p *Player) {
	p.Session.SignalDisconnect()
	t.logger.Info("player disconnected", "seat", p.Seat, "name", p.Name)
}

// ForceStart begins the tournament early if the minimum is met.
// Triggered by a spectator start record. Safe to race with the grace
// timer and with a max-players join; exactly one start wins.
func (t *Tournament) ForceStart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	if len(t.players) < t.cfg.Tournament.MinPlayers {
		t.logger.Warn("force start ignored, not enough players",
			"players", len(t.players), "min", t.cfg.Tournament.MinPlayers)
		return
	}
	t.startLocked("force start")
}

// Started reports whether the tournament has begun.
func (t *Tournament) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Done is closed once the tournament has finished.
func (t *Tournament) Done() <-chan struct{} {
	return t.done
}

func (t *Tournament) graceExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || len(t.players) < t.cfg.Tournament.MinPlayers {
		return
	}
	t.startLocked("lobby wait expired")
}

func (t *Tournament) startLocked(reason string) {
	if t.started {
		return
	}
	t.started = true
	if t.graceTimer != nil {
		t.graceTimer.Stop()
	}
	t.logger.Info("tournament starting", "reason", reason, "players", len(t.players))
	go t.run()
}

func (t *Tournament) broadcastWaitingLocked() {
	msg := &protocol.Waiting{
		Type:           protocol.TypeWaiting,
		CurrentPlayers: len(t.players),
		MinPlayers:     t.cfg.Tournament.MinPlayers,
		MaxPlayers:     t.cfg.Tournament.MaxPlayers,
	}
	broadcastPlayers(t.players, func(*Player) any { return msg })
	broadcastSessions(t.spectators, func() any { return msg })
}

// run plays the whole tournament. It owns the roster from here on;
// registration is closed and lobby state is frozen.
func (t *Tournament) run() {
	defer close(t.done)

	players := t.playersSnapshot()
	t.dealerSeat = players[0].Seat

	names := make([]string, len(players))
	stacks := make([]int, len(players))
	for i, p := range players {
		names[i] = p.Name
		stacks[i] = p.Stack
	}
	sb, bb := t.blindsFor(0)
	gameStart := &protocol.GameStart{
		Type:           protocol.TypeGameStart,
		PlayerNames:    names,
		StartingStacks: stacks,
		SmallBlind:     sb,
		BigBlind:       bb,
	}
	broadcastPlayers(players, func(*Player) any { return gameStart })
	broadcastSessions(t.spectatorsSnapshot(), func() any { return gameStart })

	for len(t.activePlayers()) > 1 {
		t.handNumber++
		t.runHand()
	}

	t.finish()
}

func (t *Tournament) runHand() {
	active := t.activePlayers()
	if len(active) < 2 {
		return
	}
	t.rotateDealer(active)

	dealerIdx := 0
	for i, p := range active {
		if p.Seat == t.dealerSeat {
			dealerIdx = i
			break
		}
	}
	sb, bb := t.blindsFor(t.handNumber)

	hl := newHandLoop(
		t.logger,
		t.clock,
		rand.New(rand.NewSource(t.rng.Int63())),
		t.cfg.ActionTimeout(),
		t.handNumber,
		active,
		t.playersSnapshot(),
		t.spectatorsSnapshot(),
		dealerIdx, sb, bb,
	)
	hl.run()
}

func (t *Tournament) finish() {
	players := t.playersSnapshot()

	var winner *Player
	for _, p := range players {
		if !p.Eliminated {
			winner = p
			break
		}
	}

	names := make([]string, len(players))
	stacks := make([]int, len(players))
	for i, p := range players {
		names[i] = p.Name
		stacks[i] = p.Stack
	}
	gameEnd := &protocol.GameEnd{
		Type:        protocol.TypeGameEnd,
		Winner:      winner.Name,
		WinnerSeat:  winner.Seat,
		FinalStacks: stacks,
		PlayerNames: names,
		TotalHands:  t.handNumber,
	}
	t.logger.Info("tournament over", "winner", winner.Name, "seat", winner.Seat, "hands", t.handNumber)

	recipients := []*Player{}
	for _, p := range players {
		if !p.Eliminated {
			recipients = append(recipients, p)
		}
	}
	broadcastPlayers(recipients, func(*Player) any { return gameEnd })
	broadcastSessions(t.spectatorsSnapshot(), func() any { return gameEnd })
}

// rotateDealer advances the button to the next surviving seat after
// the current dealer, wrapping around and skipping busted seats.
func (t *Tournament) rotateDealer(active []*Player) {
	n := len(t.players)
	for off := 1; off <= n; off++ {
		seat := (t.dealerSeat + off) % n
		for _, p := range active {
			if p.Seat == seat {
				t.dealerSeat = seat
				return
			}
		}
	}
}

// blindsFor returns the blinds for a hand number: the level with the
// greatest threshold not exceeding it.
func (t *Tournament) blindsFor(handNumber int) (sb, bb int) {
	sb, bb = t.schedule[0].Small, t.schedule[0].Big
	for _, level := range t.schedule {
		if level.Hand > handNumber {
			break
		}
		sb, bb = level.Small, level.Big
	}
	return sb, bb
}

// activePlayers returns the surviving seats in seat order.
func (t *Tournament) activePlayers() []*Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Player
	for _, p := range t.players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func (t *Tournament) playersSnapshot() []*Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Player(nil), t.players...)
}

func (t *Tournament) spectatorsSnapshot() []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Session(nil), t.spectators...)
}
