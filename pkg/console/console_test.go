package console

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/notnil/chess"
	"github.com/qnkhuat/chesstutor/pkg"
)

func init() {
	color.NoColor = true
}

func startSnapshot(perspective pkg.PlayerColor) pkg.Snapshot {
	return pkg.Snapshot{
		Board:       chess.NewGame().Position().Board().SquareMap(),
		Perspective: perspective,
		LastFrom:    chess.NoSquare,
		LastTo:      chess.NoSquare,
		Check:       chess.NoSquare,
		Status:      "TURN: WHITE",
		Eval:        "EVAL: --",
	}
}

func TestDrawBoard(t *testing.T) {
	lines := strings.Split(strings.TrimRight(DrawBoard(startSnapshot(pkg.White)), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("board has %d lines, want 9", len(lines))
	}
	if !strings.HasPrefix(lines[0], "8 ") || !strings.HasPrefix(lines[7], "1 ") {
		t.Errorf("ranks out of order:\n%s", strings.Join(lines, "\n"))
	}
	if !strings.Contains(lines[0], chess.BlackRook.String()) {
		t.Errorf("rank 8 = %q", lines[0])
	}
	if got := strings.Join(strings.Fields(lines[8]), ""); got != "abcdefgh" {
		t.Errorf("files = %q", got)
	}

	lines = strings.Split(DrawBoard(startSnapshot(pkg.Black)), "\n")
	if !strings.HasPrefix(lines[0], "1 ") {
		t.Errorf("black perspective starts with %q", lines[0])
	}
	if got := strings.Join(strings.Fields(lines[8]), ""); got != "hgfedcba" {
		t.Errorf("files from black = %q", got)
	}
}

func TestRenderPrintsEachEntryOnce(t *testing.T) {
	var out bytes.Buffer
	c := newWithWriter(&out)
	var tr pkg.Transcript

	snap := startSnapshot(pkg.White)
	tr.Append(pkg.RoleSystem, "[SYSTEM] TUTOR_ONLINE.")
	snap.Transcript = tr.Entries()
	c.Render(snap)
	tr.Append(pkg.RoleAI, "[TUTOR] Take the centre.")
	snap.Transcript = tr.Entries()
	c.Render(snap)

	got := out.String()
	if n := strings.Count(got, "TUTOR_ONLINE"); n != 1 {
		t.Errorf("first entry printed %d times", n)
	}
	if n := strings.Count(got, "TURN: WHITE"); n != 1 {
		t.Errorf("unchanged board printed %d times", n)
	}
	if !strings.Contains(got, "[TUTOR] Take the centre.") {
		t.Errorf("output lacks the tutor entry:\n%s", got)
	}

	out.Reset()
	tr.Clear()
	tr.Append(pkg.RoleSystem, "[SYSTEM] TERMINAL_CLEARED.")
	snap.Transcript = tr.Entries()
	c.Render(snap)
	if got := out.String(); !strings.Contains(got, "TERMINAL_CLEARED") || strings.Contains(got, "TUTOR_ONLINE") {
		t.Errorf("output after clear = %q", got)
	}
}

func TestRenderAfterClearingSingleEntry(t *testing.T) {
	var out bytes.Buffer
	c := newWithWriter(&out)
	var tr pkg.Transcript
	snap := startSnapshot(pkg.White)

	tr.Append(pkg.RoleSystem, "[SYSTEM] TUTOR_ONLINE.")
	snap.Transcript = tr.Entries()
	c.Render(snap)

	out.Reset()
	tr.Reset()
	tr.Append(pkg.RoleSystem, "[SYSTEM] RESETTING_STATE... OK.")
	snap.Transcript = tr.Entries()
	c.Render(snap)
	if !strings.Contains(out.String(), "RESETTING_STATE") {
		t.Errorf("entry after reset not printed: %q", out.String())
	}
}

func TestRenderKeepsPrintingFullTranscript(t *testing.T) {
	var out bytes.Buffer
	c := newWithWriter(&out)
	var tr pkg.Transcript
	snap := startSnapshot(pkg.White)

	for i := 0; i < pkg.MaxTranscript; i++ {
		tr.Append(pkg.RoleSystem, fmt.Sprintf("[SYSTEM] line %d", i))
	}
	snap.Transcript = tr.Entries()
	c.Render(snap)

	for i := 0; i < 2; i++ {
		out.Reset()
		text := fmt.Sprintf("[TUTOR] advice %d", i)
		tr.Append(pkg.RoleAI, text)
		snap.Transcript = tr.Entries()
		if len(snap.Transcript) != pkg.MaxTranscript {
			t.Fatalf("transcript holds %d entries", len(snap.Transcript))
		}
		c.Render(snap)
		if got := out.String(); !strings.Contains(got, text) || strings.Contains(got, "[SYSTEM] line") {
			t.Errorf("render %d printed %q", i, got)
		}
	}
}
