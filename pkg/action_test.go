package pkg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		input  string
		action Action
		args   []string
	}{
		{"undo", ActionUndo, nil},
		{"  BACK ", ActionUndo, nil},
		{"takeback", ActionUndo, nil},
		{"u", ActionUndo, nil},
		{"cls", ActionClear, nil},
		{"Reset", ActionReset, nil},
		{"restart", ActionReset, nil},
		{"?", ActionHelp, nil},
		{"go", ActionGo, nil},
		{"skill 12", ActionSkill, []string{"12"}},
		{"pgn", ActionPGN, nil},
		{"fen", ActionFEN, nil},
		{"flip", ActionFlip, nil},
		{"save Board.SVG", ActionSave, []string{"Board.SVG"}},

		{"", ActionNone, nil},
		{"e4", ActionNone, nil},
		{"undo that last move please", ActionNone, nil},
		{"skill", ActionNone, nil},
		{"skill high", ActionNone, nil},
		{"save the queen?", ActionNone, nil},
		{"go on then", ActionNone, nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			action, args := ParseAction(tt.input)
			if action != tt.action {
				t.Errorf("ParseAction(%q) action = %v, want %v", tt.input, action, tt.action)
			}
			if diff := cmp.Diff(tt.args, args); diff != "" {
				t.Errorf("args (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLooksLikeMove(t *testing.T) {
	for _, s := range []string{"e4", "Nf3", "exd5", "Qh4#", "e8=Q", "O-O", "0-0-0", "e2e4", "e7e8q", "Rae1+"} {
		if !looksLikeMove(s) {
			t.Errorf("looksLikeMove(%q) = false", s)
		}
	}
	for _, s := range []string{"why e4?", "hello", "e9", "i4", "Nf3 please"} {
		if looksLikeMove(s) {
			t.Errorf("looksLikeMove(%q) = true", s)
		}
	}
}
