package main

import (
	"encoding/json"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/algopoker/internal/protocol"
)

// A minimal reference agent: joins the tournament and answers every
// prompt by checking when it is free and calling otherwise. Useful as
// a sparring partner and as a smoke test for the server.

var CLI struct {
	URL   string `short:"u" default:"ws://localhost:8765/ws" help:"Server WebSocket URL."`
	Name  string `short:"n" default:"callingstation" help:"Player name."`
	Debug bool   `short:"d" help:"Enable debug logging."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("algopoker-bot"),
		kong.Description("Sample AlgoPoker agent that calls everything."),
	)

	logger := log.New(os.Stderr).With("name", CLI.Name)
	if CLI.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	conn, _, err := websocket.DefaultDialer.Dial(CLI.URL, nil)
	kctx.FatalIfErrorf(err)
	defer conn.Close()

	err = conn.WriteJSON(map[string]string{"type": protocol.TypeJoin, "name": CLI.Name})
	kctx.FatalIfErrorf(err)

	seat := -1
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Info("connection closed", "err", err)
			return
		}

		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			logger.Warn("unreadable frame", "err", err)
			continue
		}

		switch envelope.Type {
		case protocol.TypeWaiting:
			logger.Info("waiting for players")

		case protocol.TypeGameStart:
			var msg protocol.GameStart
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			for i, n := range msg.PlayerNames {
				if n == CLI.Name {
					seat = i
				}
			}
			logger.Info("tournament started", "seat", seat, "players", len(msg.PlayerNames))

		case protocol.TypeHandStart:
			var msg protocol.HandStart
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			logger.Debug("hand started", "hand", msg.HandNumber, "cards", msg.HoleCards)

		case protocol.TypeActionRequest:
			var msg protocol.ActionRequest
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if msg.ActorSeat != seat {
				continue
			}
			action := chooseAction(msg.GameState)
			logger.Debug("acting", "action", action.Type)
			if err := conn.WriteJSON(map[string]any{"type": protocol.TypeAction, "action": action}); err != nil {
				logger.Error("send action failed", "err", err)
				return
			}

		case protocol.TypeHandEnd:
			var msg protocol.HandEnd
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if seat >= 0 && seat < len(msg.FinalStacks) {
				logger.Info("hand over", "hand", msg.HandNumber, "stack", msg.FinalStacks[seat])
			}

		case protocol.TypeGameEnd:
			var msg protocol.GameEnd
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			logger.Info("tournament over", "winner", msg.Winner, "hands", msg.TotalHands)
			return

		case protocol.TypeError:
			var msg protocol.Error
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			logger.Warn("server error", "code", msg.Code, "message", msg.Message)
		}
	}
}

// chooseAction checks when checking is free and calls otherwise. The
// server treats a call with nothing owed as a check, but being exact
// here keeps the wire log clean.
func chooseAction(state *protocol.GameState) *protocol.Action {
	if state == nil {
		return &protocol.Action{Type: protocol.ActionFold}
	}
	fallback := &protocol.Action{Type: protocol.ActionFold}
	for _, v := range state.ValidActions {
		switch v.Type {
		case protocol.ActionCheck:
			return &protocol.Action{Type: protocol.ActionCheck}
		case protocol.ActionCall:
			fallback = &protocol.Action{Type: protocol.ActionCall, Amount: v.Amount}
		}
	}
	return fallback
}
