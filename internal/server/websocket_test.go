package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gambition/combat-server-go/internal/config"
	"github.com/gambition/combat-server-go/internal/run"
)

func dialTestServer(t *testing.T, cfg *config.Config) *websocket.Conn {
	t.Helper()
	if cfg == nil {
		var err error
		cfg, err = config.Load("")
		require.NoError(t, err)
	}
	runs := run.NewManager(run.Config{
		PlayerHP:     cfg.Combat.PlayerHP,
		HandSize:     cfg.Combat.HandSize,
		DiscardLimit: cfg.Combat.DiscardLimit,
		Stages:       cfg.Combat.RunStages,
	}, nil, nil, nil)
	srv := New(cfg, runs, "test", nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) ServerFrame {
	t.Helper()
	var frame ServerFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHealthz(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	srv := New(cfg, run.NewManager(run.Config{}, nil, nil, nil), "test", nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartFrameReturnsState(t *testing.T) {
	conn := dialTestServer(t, nil)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameStart, Player: "Arlo", Seed: 42}))
	frame := readFrame(t, conn)

	assert.Equal(t, FrameStateUpdate, frame.Type)
	require.NotNil(t, frame.Run)
	assert.Equal(t, "IN_PROGRESS", frame.Run.State)
	assert.Equal(t, "PLAYER_TURN_START", frame.Phase)
	assert.Equal(t, "NONE", frame.Outcome)
	require.NotNil(t, frame.Player)
	assert.Equal(t, "Arlo", frame.Player.Name)
	require.NotNil(t, frame.Enemy)
	assert.Len(t, frame.Hand, 8)
	assert.Equal(t, 4, frame.DiscardsLeft)
}

func TestActionBeforeStartRejected(t *testing.T) {
	conn := dialTestServer(t, nil)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FramePlay, Indices: []int{0}}))
	frame := readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)
	assert.Contains(t, frame.Error, "no active run")
}

func TestDoubleStartRejected(t *testing.T) {
	conn := dialTestServer(t, nil)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameStart, Player: "Arlo", Seed: 1}))
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameStart, Player: "Arlo", Seed: 2}))
	frame := readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)
}

func TestStartRejectsOversizedRoster(t *testing.T) {
	conn := dialTestServer(t, nil)

	require.NoError(t, conn.WriteJSON(ClientFrame{
		Type:       FrameStart,
		Player:     "Arlo",
		Companions: []string{"joker", "archon", "ruse", "emperor", "hierophant", "fool"},
	}))
	frame := readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)
	assert.Contains(t, frame.Error, "5 companions")
}

func TestPlayFrameEmitsEventsAndState(t *testing.T) {
	conn := dialTestServer(t, nil)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameStart, Player: "Arlo", Seed: 7}))
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FramePlay, Indices: []int{0, 1, 2, 3, 4}}))

	events := readFrame(t, conn)
	require.Equal(t, FrameEvents, events.Type)
	assert.NotEmpty(t, events.Events)

	state := readFrame(t, conn)
	require.Equal(t, FrameStateUpdate, state.Type)
	assert.Equal(t, "ENEMY_TURN_START", state.Phase)
	assert.Len(t, state.Hand, 8, "hand topped back up")
}

func TestInvalidPlayKeepsSessionUsable(t *testing.T) {
	conn := dialTestServer(t, nil)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameStart, Player: "Arlo", Seed: 9}))
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FramePlay, Indices: []int{99}}))
	frame := readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)
	state := readFrame(t, conn)
	assert.Equal(t, "PLAYER_TURN_START", state.Phase, "rejected input leaves the turn boundary intact")

	// A valid play still proceeds.
	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FramePlay, Indices: []int{0}}))
	events := readFrame(t, conn)
	assert.Equal(t, FrameEvents, events.Type)
	state = readFrame(t, conn)
	assert.Equal(t, "ENEMY_TURN_START", state.Phase)
}

func TestDiscardFrame(t *testing.T) {
	conn := dialTestServer(t, nil)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameStart, Player: "Arlo", Seed: 11}))
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(ClientFrame{Type: FrameDiscard, Indices: []int{0, 1}}))
	events := readFrame(t, conn)
	require.Equal(t, FrameEvents, events.Type)
	state := readFrame(t, conn)
	require.Equal(t, FrameStateUpdate, state.Type)
	assert.Equal(t, 3, state.DiscardsLeft)
	assert.Len(t, state.Hand, 8)
}

func TestServerFullRejectsStart(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.MaxSessions = 1

	runs := run.NewManager(run.Config{Stages: cfg.Combat.RunStages}, nil, nil, nil)
	srv := New(cfg, runs, "test", nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	require.NoError(t, first.WriteJSON(ClientFrame{Type: FrameStart, Player: "Arlo", Seed: 1}))
	require.Equal(t, FrameStateUpdate, readFrame(t, first).Type)

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.WriteJSON(ClientFrame{Type: FrameStart, Player: "Brin", Seed: 2}))
	frame := readFrame(t, second)
	assert.Equal(t, FrameError, frame.Type)
	assert.Contains(t, frame.Error, "full")
}

func TestUnknownFrameType(t *testing.T) {
	conn := dialTestServer(t, nil)
	require.NoError(t, conn.WriteJSON(ClientFrame{Type: "juggle"}))
	frame := readFrame(t, conn)
	assert.Equal(t, FrameError, frame.Type)
}
