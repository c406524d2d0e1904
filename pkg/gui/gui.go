// Package gui draws a session with tview: the board as a selectable table,
// the status and evaluation, the move list, the transcript and a command
// line.
package gui

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/notnil/chess"
	"github.com/qnkhuat/chesstutor/pkg"
	"github.com/rivo/tview"
)

// Controller is what the view drives.
type Controller interface {
	Click(sq chess.Square) bool
	Submit(input string)
}

type View struct {
	App        *tview.Application
	Board      *tview.Table
	Status     *tview.TextView
	Eval       *tview.TextView
	Moves      *tview.TextView
	Transcript *tview.TextView
	Input      *tview.InputField
	Layout     *tview.Grid

	theme  Theme
	closed int32
	stop   chan struct{}

	// input waiting for Serve, oldest first
	mu      sync.Mutex
	ctrl    Controller
	pending []func(Controller)
	ready   chan struct{}

	// only touched on the tview event goroutine
	seq         uint64
	perspective pkg.PlayerColor
}

func New(app *tview.Application, theme Theme) *View {
	board := tview.NewTable().
		SetSelectable(true, true)
	board.SetBorder(true).SetTitle(" BOARD ")

	status := tview.NewTextView().SetDynamicColors(true)
	eval := tview.NewTextView().SetDynamicColors(true)
	moves := tview.NewTextView()
	moves.SetBorder(true).SetTitle(" MOVES ")

	transcript := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	transcript.SetBorder(true).SetTitle(" TUTOR ")

	input := tview.NewInputField().
		SetLabel("C:\\> ").
		SetLabelColor(theme.Prompt).
		SetFieldBackgroundColor(tcell.ColorDefault)

	layout := tview.NewGrid().
		SetRows(2, 11, -1, 1).
		SetColumns(30, 20, -1).
		AddItem(status, 0, 0, 1, 2, 0, 0, false).
		AddItem(eval, 0, 2, 1, 1, 0, 0, false).
		AddItem(board, 1, 0, 1, 1, 0, 0, false).
		AddItem(moves, 1, 1, 2, 1, 0, 0, false).
		AddItem(transcript, 1, 2, 2, 1, 0, 0, false).
		AddItem(input, 3, 0, 1, 3, 0, 0, true)

	return &View{
		App:        app,
		Board:      board,
		Status:     status,
		Eval:       eval,
		Moves:      moves,
		Transcript: transcript,
		Input:      input,
		Layout:     layout,
		theme:      theme,
		stop:       make(chan struct{}),
		ready:      make(chan struct{}, 1),
	}
}

// Bind routes board selections and typed lines to c, in the order they
// were made, once Serve runs. Tab moves the focus between the command line
// and the board; Esc quits.
func (v *View) Bind(c Controller) {
	v.mu.Lock()
	v.ctrl = c
	v.mu.Unlock()

	v.Board.SetSelectedFunc(func(row, col int) {
		if sq, ok := posToSquare(row, col, v.perspective); ok {
			v.click(sq)
		}
	})
	v.Board.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEscape:
			v.App.Stop()
		case tcell.KeyTab:
			v.App.SetFocus(v.Input)
		}
	})

	v.Input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			text := v.Input.GetText()
			v.Input.SetText("")
			if text != "" {
				v.submit(text)
			}
		case tcell.KeyEscape:
			v.App.Stop()
		case tcell.KeyTab:
			v.App.SetFocus(v.Board)
		}
	})
}

func (v *View) click(sq chess.Square) {
	v.enqueue(func(c Controller) { c.Click(sq) })
}

func (v *View) submit(text string) {
	v.enqueue(func(c Controller) { c.Submit(text) })
}

// enqueue never blocks: it runs on the event goroutine, which the
// controller's Render waits on.
func (v *View) enqueue(fn func(Controller)) {
	v.mu.Lock()
	v.pending = append(v.pending, fn)
	v.mu.Unlock()

	select {
	case v.ready <- struct{}{}:
	default:
	}
}

// Serve hands queued input to the bound controller one at a time until ctx
// is done or the view is closed.
func (v *View) Serve(ctx context.Context) error {
	for {
		v.mu.Lock()
		batch, c := v.pending, v.ctrl
		v.pending = nil
		v.mu.Unlock()

		for _, fn := range batch {
			if c != nil {
				fn(c)
			}
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-v.ready:
		case <-v.stop:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Render queues snap for drawing. Frames can arrive out of order from
// different goroutines; an older frame than the one on screen is dropped.
func (v *View) Render(snap pkg.Snapshot) {
	if atomic.LoadInt32(&v.closed) == 1 {
		return
	}
	v.App.QueueUpdateDraw(func() {
		v.draw(snap)
	})
}

func (v *View) draw(snap pkg.Snapshot) {
	if snap.Seq != 0 && snap.Seq <= v.seq {
		return
	}
	v.seq = snap.Seq
	v.perspective = snap.Perspective

	drawBoard(v.Board, snap, v.theme)
	if snap.Selected != chess.NoSquare {
		v.Board.Select(squareToPos(snap.Selected, snap.Perspective))
	}
	v.Status.SetText(formatStatus(snap, v.theme))
	v.Eval.SetText(formatEval(snap, v.theme))
	v.Moves.SetText(formatMoves(snap.Moves))
	v.Moves.ScrollToEnd()
	v.Transcript.SetText(formatTranscript(snap.Transcript, v.theme))
	v.Transcript.ScrollToEnd()

	if snap.Name != "" {
		v.Board.SetTitle(" " + snap.Name + " ")
	}
}

// Close makes Render a no-op once the application stopped drawing, and
// ends Serve.
func (v *View) Close() {
	if atomic.CompareAndSwapInt32(&v.closed, 0, 1) {
		close(v.stop)
	}
}

func (v *View) Root() tview.Primitive {
	return v.Layout
}
