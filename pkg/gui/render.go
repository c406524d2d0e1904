package gui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/notnil/chess"
	"github.com/qnkhuat/chesstutor/pkg"
	"github.com/rivo/tview"
)

const (
	numrows = 8
	numcols = 8
)

// posToSquare maps a board table cell to its square. Column 0 holds the rank
// labels and row 8 the files, so those are not squares.
func posToSquare(row, col int, perspective pkg.PlayerColor) (chess.Square, bool) {
	if row < 0 || row >= numrows || col < 1 || col > numcols {
		return chess.NoSquare, false
	}
	rank, file := numrows-row-1, col-1
	if perspective == pkg.Black {
		rank, file = row, numcols-col
	}
	return chess.Square(rank*8 + file), true
}

func squareToPos(sq chess.Square, perspective pkg.PlayerColor) (row, col int) {
	rank, file := int(sq.Rank()), int(sq.File())
	if perspective == pkg.Black {
		return rank, numcols - file
	}
	return numrows - rank - 1, file + 1
}

// squareBg returns the theme's color corresponding to the square
func squareBg(sq chess.Square, snap pkg.Snapshot, t Theme) tcell.Color {
	switch {
	case sq == snap.Check:
		return t.SquareCheck
	case sq == snap.Selected:
		return t.SquareSel
	case snap.Targets[sq]:
		return t.SquareHint
	case sq == snap.LastFrom || sq == snap.LastTo:
		return t.SquareHigh
	case (int(sq.Rank())+int(sq.File()))%2 == 0:
		return t.SquareDark
	default:
		return t.SquareLight
	}
}

func pieceText(p chess.Piece) string {
	if p == chess.NoPiece {
		return "   "
	}
	return fmt.Sprintf(" %s ", p.String())
}

// drawBoard fills table with the snapshot, labels included.
func drawBoard(table *tview.Table, snap pkg.Snapshot, t Theme) {
	for row := 0; row < numrows; row++ {
		sq, _ := posToSquare(row, 1, snap.Perspective)
		table.SetCell(row, 0, tview.NewTableCell(sq.Rank().String()+" ").
			SetTextColor(t.Label).
			SetSelectable(false))

		for col := 1; col <= numcols; col++ {
			sq, _ := posToSquare(row, col, snap.Perspective)
			p := snap.Board[sq]
			fg := t.White
			if p.Color() == chess.Black {
				fg = t.Black
			}
			table.SetCell(row, col, tview.NewTableCell(pieceText(p)).
				SetAlign(tview.AlignCenter).
				SetTextColor(fg).
				SetBackgroundColor(squareBg(sq, snap, t)))
		}
	}

	table.SetCell(numrows, 0, tview.NewTableCell("").SetSelectable(false))
	for col := 1; col <= numcols; col++ {
		sq, _ := posToSquare(0, col, snap.Perspective)
		table.SetCell(numrows, col, tview.NewTableCell(sq.File().String()).
			SetAlign(tview.AlignCenter).
			SetTextColor(t.Label).
			SetSelectable(false))
	}
}

// colorTag is the tview colour tag for c.
func colorTag(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return "[-]"
	}
	return fmt.Sprintf("[#%06x]", c.Hex())
}

// formatMoves numbers the moves, one move pair per line.
func formatMoves(moves []string) string {
	var b strings.Builder
	for i := 0; i < len(moves); i += 2 {
		fmt.Fprintf(&b, "%3d. %-8s", i/2+1, moves[i])
		if i+1 < len(moves) {
			b.WriteString(moves[i+1])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatTranscript(entries []pkg.Entry, t Theme) string {
	var b strings.Builder
	for _, e := range entries {
		c := t.System
		switch {
		case e.Role == pkg.RoleUser:
			c = t.User
		case e.Role == pkg.RoleAI:
			c = t.AI
		case strings.HasPrefix(e.Text, "[ERROR]"), strings.HasPrefix(e.Text, "[CRITICAL]"):
			c = t.Error
		}
		b.WriteString(colorTag(c))
		b.WriteString(tview.Escape(e.Text))
		b.WriteString("[-]\n")
	}
	return b.String()
}

func formatStatus(snap pkg.Snapshot, t Theme) string {
	var b strings.Builder
	b.WriteString(colorTag(t.Status))
	b.WriteString(snap.Status)
	if snap.Thinking {
		b.WriteString("  ANALYZING...")
	}
	b.WriteString("[-]")
	if snap.Opening != "" {
		fmt.Fprintf(&b, "\n%s", tview.Escape(snap.Opening))
	}
	return b.String()
}

func formatEval(snap pkg.Snapshot, t Theme) string {
	engine := snap.Engine
	if engine == "" {
		engine = "ENGINE OFFLINE"
	}
	return fmt.Sprintf("%s%s[-]\n%s", colorTag(t.Eval), snap.Eval, tview.Escape(engine))
}
