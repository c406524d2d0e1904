package gui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/notnil/chess"
	"github.com/qnkhuat/chesstutor/pkg"
	"github.com/rivo/tview"
)

func TestDrawDropsOlderFrames(t *testing.T) {
	v := New(tview.NewApplication(), ThemeDOS)

	snap := pkg.Snapshot{
		Seq:         2,
		Board:       chess.NewGame().Position().Board().SquareMap(),
		Perspective: pkg.Black,
		Selected:    chess.NoSquare,
		LastFrom:    chess.NoSquare,
		LastTo:      chess.NoSquare,
		Check:       chess.NoSquare,
		Status:      "TURN: BLACK",
		Eval:        "EVAL: +0.20",
		Moves:       []string{"e4"},
	}
	v.draw(snap)

	older := snap
	older.Seq = 1
	older.Status = "TURN: WHITE"
	v.draw(older)

	if got := v.Status.GetText(true); !strings.Contains(got, "TURN: BLACK") {
		t.Errorf("status = %q, older frame drawn over newer", got)
	}
	if v.perspective != pkg.Black {
		t.Error("perspective not taken from the frame")
	}
	if got := v.Eval.GetText(true); !strings.Contains(got, "ENGINE OFFLINE") {
		t.Errorf("eval = %q", got)
	}
	if got := v.Moves.GetText(true); !strings.Contains(got, "1. e4") {
		t.Errorf("moves = %q", got)
	}
}

type recordingController struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingController) Click(sq chess.Square) bool {
	time.Sleep(time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "click "+sq.String())
	return true
}

func (r *recordingController) Submit(input string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "submit "+input)
}

func (r *recordingController) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestInputReachesControllerInOrder(t *testing.T) {
	v := New(tview.NewApplication(), ThemeDOS)
	ctrl := &recordingController{}
	v.Bind(ctrl)

	served := make(chan error, 1)
	go func() { served <- v.Serve(context.Background()) }()

	var want []string
	for i := 0; i < 20; i++ {
		v.click(chess.E2)
		v.click(chess.E4)
		v.submit("undo")
		want = append(want, "click e2", "click e4", "submit undo")
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(ctrl.recorded()) < len(want) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if diff := cmp.Diff(want, ctrl.recorded()); diff != "" {
		t.Errorf("controller calls (-want +got):\n%s", diff)
	}

	v.Close()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve still running after Close")
	}
	v.Close()
}
