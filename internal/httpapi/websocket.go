package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"sim-dashboard/internal/dashboard"
	"sim-dashboard/internal/observability"
	"sim-dashboard/internal/selector"
)

// Client message types.
const (
	MsgSelectStrategy = "select_strategy"
	MsgSelectRun      = "select_run"
	MsgRefresh        = "refresh"
)

// Server message types.
const (
	MsgStrategies = "strategies"
	MsgRuns       = "runs"
	MsgRun        = "run"
	MsgError      = "error"
)

// ErrNoRunSelected is returned for a refresh before any run was selected.
var ErrNoRunSelected = errors.New("no run selected")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isLocalOrigin(origin) || isSameOrigin(origin, r)
	},
}

// ClientMessage is a selection change sent by the page.
type ClientMessage struct {
	Type     string `json:"type"`
	Strategy string `json:"strategy,omitempty"`
	ExeID    string `json:"exeId,omitempty"`
}

// ServerMessage is a recomputed view pushed to the page.
type ServerMessage struct {
	Type       string               `json:"type"`
	Strategies []string             `json:"strategies,omitempty"`
	Strategy   string               `json:"strategy,omitempty"`
	Runs       []selector.RunOption `json:"runs,omitempty"`
	Run        *dashboard.RunView   `json:"run,omitempty"`
	Error      *ErrorBody           `json:"error,omitempty"`
}

// session is the selection state of one websocket connection. It lives
// only as long as the connection.
type session struct {
	id       string
	conn     *websocket.Conn
	strategy string
	exeID    string
	logger   zerolog.Logger
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	if !s.trackSession(conn) {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		return
	}
	defer s.untrackSession(conn)

	observability.WebsocketOpened()
	defer observability.WebsocketClosed()

	sess := &session{
		id:   uuid.New().String(),
		conn: conn,
	}
	sess.logger = s.logger.With().Str("session", sess.id).Logger()
	sess.logger.Info().Str("remote", r.RemoteAddr).Msg("websocket session opened")
	defer func() { sess.logger.Info().Msg("websocket session closed") }()

	if err := s.pushStrategies(sess); err != nil {
		return
	}

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		if err := s.dispatch(sess, msg); err != nil {
			sess.logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}

// dispatch handles one client message. The returned error is a write
// failure; pipeline errors are sent to the client instead.
func (s *Server) dispatch(sess *session, msg ClientMessage) error {
	switch msg.Type {
	case MsgSelectStrategy:
		sess.strategy = msg.Strategy
		sess.exeID = ""
		return s.pushRuns(sess)
	case MsgSelectRun:
		sess.exeID = msg.ExeID
		return s.pushRun(sess)
	case MsgRefresh:
		if sess.exeID == "" {
			return sess.conn.WriteJSON(ServerMessage{Type: MsgError, Error: &ErrorBody{
				Kind:    "bad_request",
				Message: ErrNoRunSelected.Error(),
			}})
		}
		return s.pushRun(sess)
	default:
		return sess.conn.WriteJSON(ServerMessage{Type: MsgError, Error: &ErrorBody{
			Kind:    "bad_request",
			Message: "unknown message type " + msg.Type,
		}})
	}
}

func (s *Server) pushStrategies(sess *session) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
	defer cancel()

	strategies, err := s.service.Strategies(ctx)
	if err != nil {
		return s.pushError(sess, err)
	}
	return sess.conn.WriteJSON(ServerMessage{Type: MsgStrategies, Strategies: strategies})
}

func (s *Server) pushRuns(sess *session) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
	defer cancel()

	runs, err := s.service.Runs(ctx, sess.strategy)
	if err != nil {
		return s.pushError(sess, err)
	}
	return sess.conn.WriteJSON(ServerMessage{Type: MsgRuns, Strategy: sess.strategy, Runs: runs})
}

func (s *Server) pushRun(sess *session) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
	defer cancel()

	rv, err := s.service.Load(ctx, sess.exeID)
	if err != nil {
		return s.pushError(sess, err)
	}
	return sess.conn.WriteJSON(ServerMessage{Type: MsgRun, Run: rv})
}

func (s *Server) pushError(sess *session, err error) error {
	body, _ := errorBody(err, sess.exeID)
	return sess.conn.WriteJSON(ServerMessage{Type: MsgError, Error: &body})
}
