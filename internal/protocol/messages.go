// Package protocol defines the wire records exchanged with agents and
// spectators. Every WebSocket text frame carries exactly one
// JSON-encoded record with a "type" discriminator.
package protocol

// Server to client record types.
const (
	TypeWaiting       = "waiting"
	TypeGameStart     = "game_start"
	TypeHandStart     = "hand_start"
	TypeActionRequest = "action_request"
	TypeActionResult  = "action_result"
	TypeHandEnd       = "hand_end"
	TypeGameEnd       = "game_end"
	TypeError         = "error"
)

// Client to server record types.
const (
	TypeJoin     = "join"
	TypeSpectate = "spectate"
	TypeAction   = "action"
	TypeStart    = "start"
)

// Action types inside action records and valid_actions.
const (
	ActionFold  = "fold"
	ActionCheck = "check"
	ActionCall  = "call"
	ActionRaise = "raise"
)

// Error codes carried by Error records.
const (
	ErrBadJoin           = "BAD_JOIN"
	ErrBadName           = "BAD_NAME"
	ErrTournamentFull    = "TOURNAMENT_FULL"
	ErrTournamentStarted = "TOURNAMENT_STARTED"
	ErrBadJSON           = "BAD_JSON"
	ErrUnknownType       = "UNKNOWN_TYPE"
	ErrBadAction         = "BAD_ACTION"
)

// HiddenCard is the placeholder for a hole card the recipient is not
// entitled to see.
const HiddenCard = "??"

// Waiting is broadcast whenever the lobby roster changes.
type Waiting struct {
	Type           string `json:"type"`
	CurrentPlayers int    `json:"current_players"`
	MinPlayers     int    `json:"min_players"`
	MaxPlayers     int    `json:"max_players"`
}

// GameStart announces the tournament. Indexes into PlayerNames are
// permanent seat numbers.
type GameStart struct {
	Type           string   `json:"type"`
	PlayerNames    []string `json:"player_names"`
	StartingStacks []int    `json:"starting_stacks"`
	SmallBlind     int      `json:"small_blind"`
	BigBlind       int      `json:"big_blind"`
}

// HandStart opens a hand. HoleCards holds the recipient's own two
// cards; spectators receive an empty list.
type HandStart struct {
	Type             string   `json:"type"`
	HandNumber       int      `json:"hand_number"`
	DealerSeat       int      `json:"dealer_seat"`
	SmallBlindSeat   int      `json:"small_blind_seat"`
	BigBlindSeat     int      `json:"big_blind_seat"`
	SmallBlindAmount int      `json:"small_blind_amount"`
	BigBlindAmount   int      `json:"big_blind_amount"`
	PlayerNames      []string `json:"player_names"`
	Stacks           []int    `json:"stacks"`
	HoleCards        []string `json:"hole_cards"`
}

// ActionRequest prompts the seat in ActorSeat to act. It is sent to
// every participant; only the actor should answer.
type ActionRequest struct {
	Type           string     `json:"type"`
	ActorSeat      int        `json:"actor_seat"`
	TimeoutSeconds int        `json:"timeout_seconds"`
	GameState      *GameState `json:"game_state"`
}

// Action is a betting decision, inbound inside a client action record
// and outbound inside ActionResult. Amount is null except for raises,
// where it is the total the raise brings the street commitment to.
type Action struct {
	Type   string `json:"type"`
	Amount *int   `json:"amount"`
}

// ActionResult reports the action actually applied, after timeout
// substitution and raise clamping.
type ActionResult struct {
	Type       string     `json:"type"`
	ActorSeat  int        `json:"actor_seat"`
	PlayerName string     `json:"player_name"`
	Action     Action     `json:"action"`
	TimedOut   bool       `json:"timed_out"`
	GameState  *GameState `json:"game_state"`
}

// WinnerInfo is one winning seat within HandEnd. AmountWon is the net
// payoff for the hand.
type WinnerInfo struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	AmountWon int    `json:"amount_won"`
}

// RevealedCards shows a seat's originally dealt hole cards at showdown.
type RevealedCards struct {
	Seat      int      `json:"seat"`
	Name      string   `json:"name"`
	HoleCards []string `json:"hole_cards"`
}

// HandEnd closes a hand. FinalStacks and PlayerNames cover every seat
// in the tournament, eliminated ones included.
type HandEnd struct {
	Type              string          `json:"type"`
	HandNumber        int             `json:"hand_number"`
	Winners           []WinnerInfo    `json:"winners"`
	HoleCardsRevealed []RevealedCards `json:"hole_cards_revealed"`
	CommunityCards    []string        `json:"community_cards"`
	FinalStacks       []int           `json:"final_stacks"`
	PlayerNames       []string        `json:"player_names"`
	EliminatedSeats   []int           `json:"eliminated_seats"`
}

// GameEnd announces the tournament winner.
type GameEnd struct {
	Type        string   `json:"type"`
	Winner      string   `json:"winner"`
	WinnerSeat  int      `json:"winner_seat"`
	FinalStacks []int    `json:"final_stacks"`
	PlayerNames []string `json:"player_names"`
	TotalHands  int      `json:"total_hands"`
}

// Error reports a protocol violation. Depending on the code the
// connection may be closed immediately afterwards.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GameState is the per-recipient view of the table embedded in
// ActionRequest and ActionResult.
type GameState struct {
	Street           string        `json:"street"`
	HandNumber       int           `json:"hand_number"`
	CommunityCards   []string      `json:"community_cards"`
	Pot              PotState      `json:"pot"`
	Players          []PlayerState `json:"players"`
	ActorSeat        *int          `json:"actor_seat"`
	ValidActions     []ValidAction `json:"valid_actions"`
	DealerSeat       int           `json:"dealer_seat"`
	SmallBlindSeat   int           `json:"small_blind_seat"`
	BigBlindSeat     int           `json:"big_blind_seat"`
	SmallBlindAmount int           `json:"small_blind_amount"`
	BigBlindAmount   int           `json:"big_blind_amount"`
}

// PotState is the pot layering including live street bets.
type PotState struct {
	Total int       `json:"total"`
	Pots  []SidePot `json:"pots"`
}

// SidePot is one layer of the pot and the seats with a claim on it.
type SidePot struct {
	Amount        int   `json:"amount"`
	EligibleSeats []int `json:"eligible_seats"`
}

// PlayerState is one seat within GameState. HoleCards contains real
// cards only when HoleCardsKnown is true, otherwise placeholders.
type PlayerState struct {
	Seat           int      `json:"seat"`
	Name           string   `json:"name"`
	Stack          int      `json:"stack"`
	CurrentBet     int      `json:"current_bet"`
	IsActive       bool     `json:"is_active"`
	IsAllIn        bool     `json:"is_all_in"`
	IsDealer       bool     `json:"is_dealer"`
	IsSmallBlind   bool     `json:"is_small_blind"`
	IsBigBlind     bool     `json:"is_big_blind"`
	HoleCards      []string `json:"hole_cards"`
	HoleCardsKnown bool     `json:"hole_cards_known"`
}

// ValidAction is one entry of valid_actions. Amount is set for calls,
// MinAmount and MaxAmount for raises.
type ValidAction struct {
	Type      string `json:"type"`
	Amount    *int   `json:"amount,omitempty"`
	MinAmount *int   `json:"min_amount,omitempty"`
	MaxAmount *int   `json:"max_amount,omitempty"`
}
