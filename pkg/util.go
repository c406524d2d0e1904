package pkg

import (
	"io"
	"os"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

// GameFromFEN starts a game at fen, or at the initial position when fen is
// empty.
func GameFromFEN(fen string) (*chess.Game, error) {
	if fen == "" {
		return chess.NewGame(), nil
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt), nil
}

// InitLog opens dest for appending and returns a logger writing to it. The
// terminal belongs to the board, so logs never go to stdout.
func InitLog(dest, component string, debug bool) (zerolog.Logger, io.Closer, error) {
	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(f).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
	return logger, f, nil
}
