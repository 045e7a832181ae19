package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/algopoker/internal/protocol"
)

// transport is the slice of *websocket.Conn the session writes through.
type transport interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is the server-side half of one connection: a serialised send
// path and a single-slot mailbox for inbound action payloads. Reads
// stay with the connection handler; the hand loop only ever consumes
// the mailbox.
type Session struct {
	conn   transport
	logger *log.Logger

	sendMu sync.Mutex

	// actions holds at most one pending action payload. A newer
	// payload displaces an older unconsumed one.
	actions chan json.RawMessage

	disconnected chan struct{}
	closeOnce    sync.Once
}

func newSession(conn transport, logger *log.Logger) *Session {
	return &Session{
		conn:         conn,
		logger:       logger,
		actions:      make(chan json.RawMessage, 1),
		disconnected: make(chan struct{}),
	}
}

// Send marshals v and writes it as one text frame. Sends are FIFO per
// session with at most one in flight. Write errors are swallowed: a
// broken connection surfaces through the read side as a disconnect.
func (s *Session) Send(v any) {
	data, err := protocol.Marshal(v)
	if err != nil {
		s.logger.Error("marshal outbound record", "err", err)
		return
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("send failed", "err", err)
	}
}

// EnqueueAction places an inbound action payload in the mailbox,
// displacing any unconsumed one. Never blocks.
func (s *Session) EnqueueAction(raw json.RawMessage) {
	select {
	case s.actions <- raw:
		return
	default:
	}
	select {
	case <-s.actions:
	default:
	}
	select {
	case s.actions <- raw:
	default:
	}
}

// DrainActions discards anything in the mailbox. Called before every
// prompt so a stale payload can never answer a new one.
func (s *Session) DrainActions() {
	for {
		select {
		case <-s.actions:
		default:
			return
		}
	}
}

// SignalDisconnect marks the session dead for any current or future
// AwaitAction. Idempotent.
func (s *Session) SignalDisconnect() {
	s.closeOnce.Do(func() {
		close(s.disconnected)
	})
}

// Gone reports whether the session has been disconnected.
func (s *Session) Gone() bool {
	select {
	case <-s.disconnected:
		return true
	default:
		return false
	}
}

// AwaitAction blocks until an action payload arrives, the timeout
// fires, or the session disconnects. ok is false for the latter two;
// the caller treats both as a fold.
func (s *Session) AwaitAction(clock quartz.Clock, timeout time.Duration) (raw json.RawMessage, ok bool) {
	// A dead session never acts, even with a payload already queued.
	select {
	case <-s.disconnected:
		return nil, false
	default:
	}

	timedOut := make(chan struct{})
	timer := clock.AfterFunc(timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case raw = <-s.actions:
		return raw, true
	case <-s.disconnected:
		return nil, false
	case <-timedOut:
		return nil, false
	}
}

// Close tears down the underlying connection.
func (s *Session) Close() {
	s.SignalDisconnect()
	_ = s.conn.Close()
}
