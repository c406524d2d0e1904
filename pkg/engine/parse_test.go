package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/notnil/chess"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Reply
	}{
		{
			name: "bestmove with ponder",
			line: "bestmove e7e5 ponder g1f3",
			want: Reply{Kind: KindBestMove, Move: "e7e5", Ponder: "g1f3"},
		},
		{
			name: "bestmove promotion",
			line: "bestmove a7a8q",
			want: Reply{Kind: KindBestMove, Move: "a7a8q"},
		},
		{
			name: "no legal move",
			line: "bestmove (none)",
			want: Reply{Kind: KindBestMove, NoMove: true},
		},
		{
			name: "null move",
			line: "bestmove 0000",
			want: Reply{Kind: KindBestMove, NoMove: true},
		},
		{
			name: "missing target",
			line: "bestmove",
			want: Reply{Kind: KindBestMove, Malformed: true},
		},
		{
			name: "garbage target",
			line: "bestmove e9z1",
			want: Reply{Kind: KindBestMove, Malformed: true},
		},
		{
			name: "centipawns",
			line: "info depth 12 seldepth 18 multipv 1 score cp -37 nodes 12345 pv d7d5",
			want: Reply{Kind: KindScore, Score: Score{CP: -37}},
		},
		{
			name: "centipawns with bound",
			line: "info depth 3 score cp 15 lowerbound",
			want: Reply{Kind: KindScore, Score: Score{CP: 15}},
		},
		{
			name: "mate",
			line: "info depth 20 score mate -3 pv h7h8",
			want: Reply{Kind: KindScore, Score: Score{Mate: -3, IsMate: true}},
		},
		{
			name: "bad score number",
			line: "info score cp x",
			want: Reply{},
		},
		{
			name: "readyok",
			line: "readyok",
			want: Reply{},
		},
		{
			name: "empty",
			line: "   ",
			want: Reply{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseLine(tt.line)); diff != "" {
				t.Errorf("ParseLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestEvaluationString(t *testing.T) {
	tests := []struct {
		name string
		eval Evaluation
		want string
	}{
		{"unknown", Evaluation{}, "--"},
		{"zero", Evaluation{Known: true}, "+0.00"},
		{"small positive", Evaluation{Score: Score{CP: 15}, Known: true}, "+0.15"},
		{"negative", Evaluation{Score: Score{CP: -45}, Known: true}, "-0.45"},
		{"large", Evaluation{Score: Score{CP: 1250}, Known: true}, "+12.50"},
		{"mate for white", Evaluation{Score: Score{Mate: 3, IsMate: true}, Known: true}, "+M3"},
		{"mate for black", Evaluation{Score: Score{Mate: -5, IsMate: true}, Known: true}, "-M5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eval.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromEngineUsesWhitePointOfView(t *testing.T) {
	if got := FromEngine(Score{CP: 40}, chess.White).String(); got != "+0.40" {
		t.Errorf("white to move: %q", got)
	}
	if got := FromEngine(Score{CP: 40}, chess.Black).String(); got != "-0.40" {
		t.Errorf("black to move: %q", got)
	}
	if got := FromEngine(Score{Mate: 2, IsMate: true}, chess.Black).String(); got != "-M2" {
		t.Errorf("black mates: %q", got)
	}
}
