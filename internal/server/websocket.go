// Package server exposes combat runs over a websocket: the client sends
// action frames, the server answers with state snapshots and the event
// stream the world layer renders from.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gambition/combat-server-go/internal/config"
	"github.com/gambition/combat-server-go/internal/game"
	"github.com/gambition/combat-server-go/internal/run"
)

// Server handles websocket combat connections. Each connection owns at most
// one run.
type Server struct {
	cfg      *config.Config
	runs     *run.Manager
	logger   *zap.Logger
	upgrader websocket.Upgrader
	version  string
}

// New creates the websocket server over the run manager.
func New(cfg *config.Config, runs *run.Manager, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:    cfg,
		runs:   runs,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The world client is a native app, not a browser; origin
			// checking is left to the deployment proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		version: version,
	}
}

// Handler returns the HTTP mux: /ws for combat connections, /healthz for
// liveness.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{
		server: s,
		conn:   conn,
		ctx:    r.Context(),
		logger: s.logger.With(zap.String("remote", r.RemoteAddr)),
	}
	c.logger.Info("combat connection opened")
	c.loop()
	if c.run != nil {
		s.runs.Remove(c.run.ID())
	}
	c.logger.Info("combat connection closed")
}

// client is the per-connection state. One goroutine reads, dispatches and
// writes, so no write lock is needed.
type client struct {
	server *Server
	conn   *websocket.Conn
	ctx    context.Context
	logger *zap.Logger

	run    *run.Run
	cursor int
}

func (c *client) loop() {
	for {
		var frame ClientFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("connection error", zap.Error(err))
			}
			return
		}
		if err := c.dispatch(frame); err != nil {
			return
		}
	}
}

// dispatch handles one client frame. Frame-level failures go back to the
// client as error frames; only write failures terminate the connection.
func (c *client) dispatch(frame ClientFrame) error {
	switch frame.Type {
	case FrameStart:
		return c.handleStart(frame)
	case FramePlay:
		return c.withSession(func(sess *game.Session) error {
			_, err := sess.SubmitPlayerAction(frame.Indices)
			return err
		})
	case FrameAdvance:
		return c.withSession(func(sess *game.Session) error {
			_, err := sess.AdvanceEnemyTurn()
			return err
		})
	case FrameDiscard:
		return c.withSession(func(sess *game.Session) error {
			return sess.DiscardCards(frame.Indices)
		})
	case FrameSwap:
		return c.withSession(func(sess *game.Session) error {
			return sess.MagicianSwap(frame.Index)
		})
	case FrameRetrieve:
		return c.withSession(func(sess *game.Session) error {
			return sess.NecromancerRetrieve(frame.Index)
		})
	case FrameState:
		if c.run == nil {
			return c.sendError("no active run")
		}
		return c.sendState()
	default:
		return c.sendError("unknown frame type: " + frame.Type)
	}
}

func (c *client) handleStart(frame ClientFrame) error {
	if c.run != nil {
		return c.sendError("run already started on this connection")
	}
	if max := c.server.cfg.Server.MaxSessions; max > 0 && c.server.runs.Count() >= max {
		return c.sendError("server is full")
	}
	if len(frame.Companions) > 5 {
		return c.sendError("at most 5 companions")
	}

	r, err := c.server.runs.StartRun(c.ctx, frame.Player, frame.Companions, frame.Tarots, frame.Seed)
	if err != nil {
		c.logger.Warn("run start rejected", zap.Error(err))
		return c.sendError(err.Error())
	}
	c.run = r
	c.cursor = 0
	c.logger.Info("run started",
		zap.String("run_id", r.ID().String()),
		zap.String("player", frame.Player),
	)
	return c.sendState()
}

// withSession runs a session action, flushes new events, and rolls the run
// forward when the session reached a terminal outcome.
func (c *client) withSession(action func(*game.Session) error) error {
	if c.run == nil {
		return c.sendError("no active run")
	}
	sess := c.run.Session()
	if err := action(sess); err != nil {
		if sendErr := c.sendError(err.Error()); sendErr != nil {
			return sendErr
		}
		return c.sendState()
	}

	if err := c.flushEvents(sess); err != nil {
		return err
	}

	if sess.Outcome() != game.OutcomeNone {
		next, err := c.server.runs.CompleteEncounter(c.ctx, c.run)
		if err != nil {
			return c.sendError(err.Error())
		}
		if next != nil {
			// New encounter, fresh event stream.
			c.cursor = 0
		}
	}
	return c.sendState()
}

func (c *client) flushEvents(sess *game.Session) error {
	events, next := sess.EventsSince(c.cursor)
	c.cursor = next
	if len(events) == 0 {
		return nil
	}
	return c.conn.WriteJSON(ServerFrame{Type: FrameEvents, Events: events})
}

func (c *client) sendState() error {
	return c.conn.WriteJSON(stateFrame(c.run, c.server.version))
}

func (c *client) sendError(msg string) error {
	return c.conn.WriteJSON(ServerFrame{Type: FrameError, Error: msg})
}
