package server

import (
	"github.com/gambition/combat-server-go/internal/game"
	"github.com/gambition/combat-server-go/internal/run"
)

// Client frame types.
const (
	FrameStart    = "start"
	FramePlay     = "play"
	FrameAdvance  = "advance"
	FrameDiscard  = "discard"
	FrameSwap     = "swap"
	FrameRetrieve = "retrieve"
	FrameState    = "state"
)

// Server frame types.
const (
	FrameStateUpdate = "state"
	FrameEvents      = "events"
	FrameError       = "error"
)

// ClientFrame is one inbound action. Fields are populated per Type.
type ClientFrame struct {
	Type       string   `json:"type"`
	Player     string   `json:"player,omitempty"`
	Companions []string `json:"companions,omitempty"`
	Tarots     []string `json:"tarots,omitempty"`
	Seed       int64    `json:"seed,omitempty"`
	Indices    []int    `json:"indices,omitempty"`
	Index      int      `json:"index,omitempty"`
}

// CombatantView is the wire form of a combatant.
type CombatantView struct {
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
}

// RunView is the wire form of a run snapshot.
type RunView struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	Stages     int    `json:"stages"`
	Completed  int    `json:"completed"`
	GoldEarned int    `json:"gold_earned"`
}

// ServerFrame is one outbound message.
type ServerFrame struct {
	Type    string       `json:"type"`
	Version string       `json:"version,omitempty"`
	Error   string       `json:"error,omitempty"`
	Events  []game.Event `json:"events,omitempty"`

	Run          *RunView       `json:"run,omitempty"`
	Phase        string         `json:"phase,omitempty"`
	Outcome      string         `json:"outcome,omitempty"`
	Turn         int            `json:"turn,omitempty"`
	Player       *CombatantView `json:"player,omitempty"`
	Enemy        *CombatantView `json:"enemy,omitempty"`
	Hand         []string       `json:"hand,omitempty"`
	DiscardsLeft int            `json:"discards_left,omitempty"`
}

// stateFrame builds the full state snapshot for the client.
func stateFrame(r *run.Run, version string) ServerFrame {
	snap := r.Snapshot()
	frame := ServerFrame{
		Type:    FrameStateUpdate,
		Version: version,
		Run: &RunView{
			ID:         snap.ID,
			State:      snap.State.String(),
			Stages:     snap.Stages,
			Completed:  snap.Completed,
			GoldEarned: snap.GoldEarned,
		},
	}

	sess := r.Session()
	if sess == nil {
		return frame
	}
	frame.Phase = sess.Phase().String()
	frame.Outcome = sess.Outcome().String()
	frame.Turn = sess.Turn()
	frame.Player = &CombatantView{Name: sess.Player().Name, HP: sess.Player().HP, MaxHP: sess.Player().MaxHP}
	frame.Enemy = &CombatantView{Name: sess.Enemy().Name, HP: sess.Enemy().HP, MaxHP: sess.Enemy().MaxHP}
	for _, c := range sess.Hand() {
		frame.Hand = append(frame.Hand, c.String())
	}
	frame.DiscardsLeft = sess.DiscardsLeft()
	return frame
}
