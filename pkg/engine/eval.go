package engine

import (
	"fmt"

	"github.com/notnil/chess"
)

// Score is an engine score, relative to whoever it was computed for.
type Score struct {
	CP     int
	Mate   int
	IsMate bool
}

func (s Score) Negate() Score {
	return Score{CP: -s.CP, Mate: -s.Mate, IsMate: s.IsMate}
}

// Evaluation is a score from white's point of view.
type Evaluation struct {
	Score
	Known bool
}

// FromEngine converts a score reported for the side to move (turn) to
// white's point of view.
func FromEngine(s Score, turn chess.Color) Evaluation {
	if turn == chess.Black {
		s = s.Negate()
	}
	return Evaluation{Score: s, Known: true}
}

// String formats the evaluation as "+0.35", "-1.20", "+M3" or "-M2".
func (e Evaluation) String() string {
	if !e.Known {
		return "--"
	}
	if e.IsMate {
		if e.Mate < 0 {
			return fmt.Sprintf("-M%d", -e.Mate)
		}
		return fmt.Sprintf("+M%d", e.Mate)
	}
	return fmt.Sprintf("%+.2f", float64(e.CP)/100)
}
