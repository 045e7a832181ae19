package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/algopoker/internal/protocol"
)

// joinDeadline bounds how long a fresh connection may sit silent
// before it must have sent its join or spectate record.
const joinDeadline = 10 * time.Second

const maxNameLength = 32

// Server accepts WebSocket connections and hands them to the
// tournament. One server hosts exactly one tournament.
type Server struct {
	addr       string
	logger     *log.Logger
	upgrader   websocket.Upgrader
	tournament *Tournament
	httpServer *http.Server
}

func New(addr string, logger *log.Logger, tournament *Tournament) *Server {
	return &Server{
		addr:   addr,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		tournament: tournament,
	}
}

// Handler returns the HTTP routes, exposed separately so tests can
// mount them on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}
	s.logger.Info("listening", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	go s.handleConnection(conn)
}

// handleConnection runs the whole lifecycle of one connection: the
// admission handshake, then the read pump for its role. Writes happen
// through the Session from other goroutines; reads stay here.
func (s *Server) handleConnection(conn *websocket.Conn) {
	logger := s.logger.WithPrefix("conn").With("remote", conn.RemoteAddr().String())
	logger.Info("new connection")
	defer func() {
		_ = conn.Close()
		logger.Info("connection closed")
	}()

	_ = conn.SetReadDeadline(time.Now().Add(joinDeadline))
	_, data, err := conn.ReadMessage()
	if err != nil {
		s.rejectConn(conn, protocol.ErrBadJoin, "no join message received within 10 seconds")
		return
	}

	msg, err := protocol.ParseClient(data)
	if err != nil {
		s.rejectConn(conn, protocol.ErrBadJoin, "first message must be a JSON object")
		return
	}

	switch msg.Type {
	case protocol.TypeSpectate:
		s.runSpectator(conn, logger)
	case protocol.TypeJoin:
		s.runPlayer(conn, logger, msg.Name)
	default:
		s.rejectConn(conn, protocol.ErrBadJoin, `first message must be {"type": "join", "name": "..."}`)
	}
}

func (s *Server) runSpectator(conn *websocket.Conn, logger *log.Logger) {
	_ = conn.SetReadDeadline(time.Time{})
	sess := newSession(conn, logger)
	s.tournament.RegisterSpectator(sess)
	defer func() {
		sess.SignalDisconnect()
		s.tournament.RemoveSpectator(sess)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.ParseClient(data)
		if err != nil {
			continue
		}
		if msg.Type == protocol.TypeStart {
			s.tournament.ForceStart()
		}
	}
}

func (s *Server) runPlayer(conn *websocket.Conn, logger *log.Logger, rawName string) {
	name := strings.TrimSpace(rawName)
	if name == "" || len(name) > maxNameLength {
		s.rejectConn(conn, protocol.ErrBadName, "name must be 1-32 non-whitespace characters")
		return
	}

	sess := newSession(conn, logger)
	player, rerr := s.tournament.RegisterPlayer(sess, name)
	if rerr != nil {
		sess.Send(&protocol.Error{Type: protocol.TypeError, Code: rerr.Code, Message: rerr.Message})
		return
	}
	logger.Info("registered", "name", name, "seat", player.Seat)

	_ = conn.SetReadDeadline(time.Time{})
	defer s.tournament.HandleDisconnect(player)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.ParseClient(data)
		if err != nil {
			sess.Send(&protocol.Error{Type: protocol.TypeError, Code: protocol.ErrBadJSON, Message: "message is not a JSON object"})
			continue
		}
		switch msg.Type {
		case protocol.TypeAction:
			sess.EnqueueAction(msg.Action)
		default:
			sess.Send(&protocol.Error{
				Type:    protocol.TypeError,
				Code:    protocol.ErrUnknownType,
				Message: "unknown message type " + strconv.Quote(msg.Type) + ", expected \"action\"",
			})
		}
	}
}

// rejectConn sends an admission error straight on the conn. There is
// no Session yet at this point, so the write is unserialised; nothing
// else can be writing.
func (s *Server) rejectConn(conn *websocket.Conn, code, message string) {
	data, err := protocol.Marshal(&protocol.Error{Type: protocol.TypeError, Code: code, Message: message})
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, data)
}
