package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/algopoker/internal/protocol"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// recordingConn is an in-memory transport that captures every frame a
// session writes and optionally reacts to each one.
type recordingConn struct {
	mu      sync.Mutex
	frames  [][]byte
	onFrame func(data []byte)
	closed  bool
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	cp := append([]byte(nil), data...)
	c.mu.Lock()
	c.frames = append(c.frames, cp)
	fn := c.onFrame
	c.mu.Unlock()
	if fn != nil {
		fn(cp)
	}
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// framesOfType returns every captured frame carrying the given type
// discriminator.
func framesOfType(t *testing.T, c *recordingConn, typeName string) []json.RawMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []json.RawMessage
	for _, frame := range c.frames {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("unreadable frame %s: %v", frame, err)
		}
		if env.Type == typeName {
			out = append(out, json.RawMessage(append([]byte(nil), frame...)))
		}
	}
	return out
}

func decodeFrame[T any](t *testing.T, raw json.RawMessage) *T {
	t.Helper()
	var msg T
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode frame %s: %v", raw, err)
	}
	return &msg
}

// scriptedAgent couples a session with a strategy that answers its
// own action_request frames synchronously, the way a remote bot's
// read loop would. A nil strategy or nil payload leaves the prompt
// unanswered.
type scriptedAgent struct {
	conn *recordingConn
	sess *Session
	seat int

	mu       sync.Mutex
	strategy func(req *protocol.ActionRequest) json.RawMessage
}

func newScriptedAgent(seat int, strategy func(req *protocol.ActionRequest) json.RawMessage) *scriptedAgent {
	a := &scriptedAgent{
		conn:     &recordingConn{},
		seat:     seat,
		strategy: strategy,
	}
	a.sess = newSession(a.conn, testLogger())
	a.conn.onFrame = a.handleFrame
	return a
}

func (a *scriptedAgent) handleFrame(data []byte) {
	var req protocol.ActionRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Type != protocol.TypeActionRequest {
		return
	}
	if req.ActorSeat != a.seat {
		return
	}
	a.mu.Lock()
	strategy := a.strategy
	a.mu.Unlock()
	if strategy == nil {
		return
	}
	if payload := strategy(&req); payload != nil {
		a.sess.EnqueueAction(payload)
	}
}

// checkOrCall answers every prompt with a check when available and a
// call otherwise.
func checkOrCall(req *protocol.ActionRequest) json.RawMessage {
	fallback := &protocol.Action{Type: protocol.ActionFold}
	for _, v := range req.GameState.ValidActions {
		switch v.Type {
		case protocol.ActionCheck:
			return mustJSON(&protocol.Action{Type: protocol.ActionCheck})
		case protocol.ActionCall:
			fallback = &protocol.Action{Type: protocol.ActionCall, Amount: v.Amount}
		}
	}
	return mustJSON(fallback)
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
