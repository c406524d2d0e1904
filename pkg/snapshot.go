package pkg

import "github.com/notnil/chess"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingEngine
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingEngine:
		return "awaiting engine"
	case PhaseGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Snapshot is everything a frontend needs to draw the session. It is built
// from scratch after every change and shares nothing with the session.
type Snapshot struct {
	Seq  uint64
	Name string

	Board       map[chess.Square]chess.Piece
	Perspective PlayerColor
	Turn        chess.Color
	Selected    chess.Square // chess.NoSquare when nothing is selected
	Targets     map[chess.Square]bool
	LastFrom    chess.Square
	LastTo      chess.Square
	Check       chess.Square // king in check, or chess.NoSquare

	Phase    Phase
	Thinking bool
	Status   string
	Eval     string
	Moves    []string // SAN
	Opening  string
	Engine   string

	Transcript []Entry
}

// Renderer draws snapshots. Render is called with the session lock held and
// must not call back into the session.
type Renderer interface {
	Render(Snapshot)
}
