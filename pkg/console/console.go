// Package console is the line mode frontend: the board printed as coloured
// text after every move and commands read with readline.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/notnil/chess"
	"github.com/qnkhuat/chesstutor/pkg"
	"github.com/qnkhuat/chesstutor/pkg/tutor"
)

const Prompt = "C:\\> "

var (
	lightSquare = color.New(color.BgGreen, color.FgHiWhite)
	darkSquare  = color.New(color.BgHiBlack, color.FgHiWhite)
	lastSquare  = color.New(color.BgYellow, color.FgBlack)
	checkSquare = color.New(color.BgRed, color.FgHiWhite)
	label       = color.New(color.FgGreen)
	status      = color.New(color.FgHiGreen, color.Bold)
	tutorText   = color.New(color.FgHiGreen)
	errorText   = color.New(color.FgRed)
	userText    = color.New(color.FgHiWhite)
)

type Console struct {
	rl  *readline.Instance
	out io.Writer

	mu    sync.Mutex
	board string
	shown uint64 // Seq of the last transcript entry printed
}

func New(historyFile string) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

func newWithWriter(out io.Writer) *Console {
	return &Console{out: out}
}

// Run reads lines until EOF, ^C on an empty line, "exit" or ctx is done.
func (c *Console) Run(ctx context.Context, submit func(string)) error {
	defer c.rl.Close()
	go func() {
		<-ctx.Done()
		c.rl.Close()
	}()

	for {
		line, err := c.rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		submit(line)
	}
}

// Render prints the board when it changed and the transcript entries not
// printed yet.
func (c *Console) Render(snap pkg.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	if board := DrawBoard(snap); board != c.board {
		c.board = board
		b.WriteString("\n")
		b.WriteString(board)
		fmt.Fprintf(&b, "%s  %s\n", status.Sprint(snap.Status), label.Sprint(snap.Eval))
		if len(snap.Moves) > 0 {
			fmt.Fprintf(&b, "%s\n", tutor.RecentMoves(snap.Moves, 0))
		}
		if snap.Opening != "" {
			fmt.Fprintf(&b, "%s\n", label.Sprint(snap.Opening))
		}
	}

	for _, e := range snap.Transcript {
		if e.Seq <= c.shown {
			continue
		}
		b.WriteString(formatEntry(e))
		b.WriteString("\n")
		c.shown = e.Seq
	}

	io.WriteString(c.out, b.String())
}

func formatEntry(e pkg.Entry) string {
	switch {
	case e.Role == pkg.RoleUser:
		return userText.Sprint(e.Text)
	case e.Role == pkg.RoleAI:
		return tutorText.Sprint(e.Text)
	case strings.HasPrefix(e.Text, "[ERROR]"), strings.HasPrefix(e.Text, "[CRITICAL]"):
		return errorText.Sprint(e.Text)
	}
	return label.Sprint(e.Text)
}

// DrawBoard renders the board from the snapshot's perspective, rank labels
// on the left and files underneath.
func DrawBoard(snap pkg.Snapshot) string {
	ranks := []int{7, 6, 5, 4, 3, 2, 1, 0}
	files := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if snap.Perspective == pkg.Black {
		ranks, files = files, ranks
	}

	var b strings.Builder
	for _, r := range ranks {
		b.WriteString(label.Sprintf("%d ", r+1))
		for _, f := range files {
			sq := chess.Square(r*8 + f)
			b.WriteString(squareColor(sq, snap).Sprintf(" %s ", glyph(snap.Board[sq])))
		}
		b.WriteString("\n")
	}
	b.WriteString("  ")
	for _, f := range files {
		b.WriteString(label.Sprintf(" %c ", 'a'+f))
	}
	b.WriteString("\n")
	return b.String()
}

func glyph(p chess.Piece) string {
	if p == chess.NoPiece {
		return " "
	}
	return p.String()
}

func squareColor(sq chess.Square, snap pkg.Snapshot) *color.Color {
	switch {
	case sq == snap.Check:
		return checkSquare
	case sq == snap.LastFrom || sq == snap.LastTo:
		return lastSquare
	case (int(sq.Rank())+int(sq.File()))%2 == 0:
		return darkSquare
	}
	return lightSquare
}
