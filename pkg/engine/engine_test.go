package engine

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/notnil/chess"
)

// fakeUCI is an in-memory engine: reply maps each received command to the
// lines it prints back.
type fakeUCI struct {
	mu       sync.Mutex
	received []string
}

func (f *fakeUCI) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.received...)
}

func startFake(t *testing.T, reply func(cmd string) []string) (*Engine, *fakeUCI) {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	f := &fakeUCI{}

	go func() {
		defer outW.Close()
		scanner := bufio.NewScanner(inR)
		for scanner.Scan() {
			cmd := scanner.Text()
			f.mu.Lock()
			f.received = append(f.received, cmd)
			f.mu.Unlock()
			if cmd == "quit" {
				return
			}
			for _, line := range reply(cmd) {
				if _, err := io.WriteString(outW, line+"\n"); err != nil {
					return
				}
			}
		}
	}()

	e := New(outR, inW)
	t.Cleanup(func() { e.Close() })
	return e, f
}

func stockfishLike(cmd string) []string {
	switch {
	case cmd == "uci":
		return []string{"id name Fakefish 1", "id author nobody", "uciok"}
	case cmd == "isready":
		return []string{"readyok"}
	case strings.HasPrefix(cmd, "go"):
		return []string{
			"info depth 10 score cp 23 nodes 1000 pv e7e5",
			"bestmove e7e5 ponder g1f3",
		}
	}
	return nil
}

// collect reads lines until n bestmove/score lines were seen.
func collect(t *testing.T, e *Engine, n int) []Line {
	t.Helper()

	var got []Line
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case line, ok := <-e.Lines():
			if !ok {
				t.Fatalf("lines closed after %d of %d lines: %v", len(got), n, got)
			}
			if ParseLine(line.Text).Kind == KindOther {
				continue
			}
			got = append(got, line)
		case <-timeout:
			t.Fatalf("timed out after %d of %d lines: %v", len(got), n, got)
		}
	}
	return got
}

func afterE4(t *testing.T) *chess.Position {
	t.Helper()
	game := chess.NewGame()
	if err := game.MoveStr("e4"); err != nil {
		t.Fatal(err)
	}
	return game.Position()
}

func TestAnalyzeSendsHandshakeAndSearch(t *testing.T) {
	e, f := startFake(t, stockfishLike)

	if err := e.Init(); err != nil {
		t.Fatal(err)
	}
	pos := afterE4(t)
	gen, err := e.Analyze(pos, 0)
	if err != nil {
		t.Fatal(err)
	}
	if gen != 1 {
		t.Errorf("first generation = %d, want 1", gen)
	}
	collect(t, e, 2)

	cmds := f.commands()
	if len(cmds) != 5 {
		t.Fatalf("got %d commands, want 5: %q", len(cmds), cmds)
	}
	if diff := cmp.Diff([]string{"uci", "isready", "isready"}, cmds[:3]); diff != "" {
		t.Errorf("handshake mismatch (-want +got):\n%s", diff)
	}
	if want := "position fen " + pos.String(); !strings.HasPrefix(cmds[3], want) {
		t.Errorf("position command = %q, want prefix %q", cmds[3], want)
	}
	if cmds[4] != "go movetime 1000" {
		t.Errorf("search command = %q, want %q", cmds[4], "go movetime 1000")
	}
	if name := e.Name(); name != "Fakefish 1" {
		t.Errorf("Name() = %q", name)
	}
}

func TestLinesCarrySearchGeneration(t *testing.T) {
	e, _ := startFake(t, stockfishLike)
	pos := afterE4(t)

	for want := uint64(1); want <= 2; want++ {
		gen, err := e.Analyze(pos, 500*time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		if gen != want {
			t.Fatalf("generation = %d, want %d", gen, want)
		}
		got := collect(t, e, 2)
		wantLines := []Line{
			{Gen: want, Text: "info depth 10 score cp 23 nodes 1000 pv e7e5"},
			{Gen: want, Text: "bestmove e7e5 ponder g1f3"},
		}
		if diff := cmp.Diff(wantLines, got); diff != "" {
			t.Errorf("search %d lines mismatch (-want +got):\n%s", want, diff)
		}
	}
	if n := e.Pending(); n != 0 {
		t.Errorf("Pending() = %d after all searches answered", n)
	}
}

func TestStoppedSearchKeepsItsGeneration(t *testing.T) {
	var gos int
	e, _ := startFake(t, func(cmd string) []string {
		switch {
		case cmd == "isready":
			return []string{"readyok"}
		case cmd == "stop":
			return []string{"bestmove e2e4"}
		case strings.HasPrefix(cmd, "go"):
			gos++
			if gos == 1 {
				return nil // still thinking until stopped
			}
			return []string{"info score mate 2", "bestmove d2d4"}
		}
		return nil
	})
	pos := chess.NewGame().Position()

	if _, err := e.Analyze(pos, time.Second); err != nil {
		t.Fatal(err)
	}
	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Analyze(pos, time.Second); err != nil {
		t.Fatal(err)
	}

	want := []Line{
		{Gen: 1, Text: "bestmove e2e4"},
		{Gen: 2, Text: "info score mate 2"},
		{Gen: 2, Text: "bestmove d2d4"},
	}
	if diff := cmp.Diff(want, collect(t, e, 3)); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestSetSkill(t *testing.T) {
	e, f := startFake(t, stockfishLike)

	if err := e.SetSkill(21); err == nil {
		t.Error("SetSkill(21) succeeded")
	}
	if err := e.SetSkill(5); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	want := []string{"setoption name Skill Level value 5", "quit"}
	if diff := cmp.Diff(want, f.commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestClose(t *testing.T) {
	e, _ := startFake(t, stockfishLike)

	if err := e.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if _, ok := <-e.Lines(); ok {
		t.Error("Lines() still open after Close")
	}
	if _, err := e.Analyze(chess.NewGame().Position(), 0); err != ErrClosed {
		t.Errorf("Analyze after Close = %v, want ErrClosed", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestChattyEngineDoesNotBlockCommands(t *testing.T) {
	const infoLines = 3 * LineQueueSize
	e, _ := startFake(t, func(cmd string) []string {
		if !strings.HasPrefix(cmd, "go") {
			return nil
		}
		out := make([]string, 0, infoLines+1)
		for i := 0; i < infoLines; i++ {
			out = append(out, fmt.Sprintf("info depth %d score cp %d", i+1, i))
		}
		return append(out, "bestmove e7e5")
	})
	pos := afterE4(t)

	// Nobody reads Lines while the searches are started.
	done := make(chan error, 1)
	go func() {
		for i := 0; i < 3; i++ {
			if _, err := e.Analyze(pos, time.Millisecond); err != nil {
				done <- err
				return
			}
		}
		done <- e.Stop()
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("commands blocked behind unread engine output")
	}

	var bestmoves []Line
	counts := map[uint64]int{}
	timeout := time.After(2 * time.Second)
	for len(bestmoves) < 3 {
		select {
		case line := <-e.Lines():
			if strings.HasPrefix(line.Text, "bestmove") {
				bestmoves = append(bestmoves, line)
			} else {
				counts[line.Gen]++
			}
		case <-timeout:
			t.Fatalf("got %d of 3 bestmoves", len(bestmoves))
		}
	}
	want := []Line{{Gen: 1, Text: "bestmove e7e5"}, {Gen: 2, Text: "bestmove e7e5"}, {Gen: 3, Text: "bestmove e7e5"}}
	if diff := cmp.Diff(want, bestmoves); diff != "" {
		t.Errorf("bestmoves mismatch (-want +got):\n%s", diff)
	}
	for gen := uint64(1); gen <= 3; gen++ {
		if counts[gen] != infoLines {
			t.Errorf("search %d got %d info lines, want %d", gen, counts[gen], infoLines)
		}
	}
}

func TestFailedWriteDropsSearch(t *testing.T) {
	outR, outW := io.Pipe()
	inR, inW := io.Pipe()
	inR.Close()
	e := New(outR, inW)
	t.Cleanup(func() {
		outW.Close()
		e.Close()
	})

	if _, err := e.Analyze(chess.NewGame().Position(), 0); err == nil {
		t.Fatal("Analyze succeeded with a closed stdin")
	}
	if n := e.Pending(); n != 0 {
		t.Errorf("Pending() = %d after a failed write", n)
	}
}
