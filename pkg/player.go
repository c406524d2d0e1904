package pkg

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// PlayerColor is the side the human plays. It also decides which way up the
// board is drawn.
type PlayerColor int

const (
	White PlayerColor = iota
	Black
)

func (pc PlayerColor) String() string {
	switch pc {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "Unknown"
	}
}

func (pc PlayerColor) Chess() chess.Color {
	if pc == Black {
		return chess.Black
	}
	return chess.White
}

func (pc PlayerColor) Opponent() PlayerColor {
	if pc == Black {
		return White
	}
	return Black
}

func ParsePlayerColor(s string) (PlayerColor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

// colorName is the upper case side name used in status lines.
func colorName(c chess.Color) string {
	if c == chess.Black {
		return "BLACK"
	}
	return "WHITE"
}
