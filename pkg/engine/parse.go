package engine

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindOther Kind = iota
	KindBestMove
	KindScore
)

func (k Kind) String() string {
	switch k {
	case KindBestMove:
		return "bestmove"
	case KindScore:
		return "score"
	default:
		return "other"
	}
}

// Reply is the part of an engine line the controller cares about.
type Reply struct {
	Kind Kind

	// bestmove
	Move      string
	Ponder    string
	NoMove    bool // "(none)": the position has no legal move
	Malformed bool

	// info ... score
	Score Score
}

// ParseLine recognises "bestmove <uci> [ponder <uci>]" and any line carrying
// "score cp <n>" or "score mate <n>". Everything else is KindOther.
func ParseLine(text string) Reply {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Reply{}
	}

	if fields[0] == "bestmove" {
		r := Reply{Kind: KindBestMove}
		switch {
		case len(fields) < 2:
			r.Malformed = true
		case fields[1] == "(none)" || fields[1] == "0000":
			r.NoMove = true
		case !isUCIMove(fields[1]):
			r.Malformed = true
		default:
			r.Move = fields[1]
		}
		if len(fields) >= 4 && fields[2] == "ponder" && isUCIMove(fields[3]) {
			r.Ponder = fields[3]
		}
		return r
	}

	for i := 0; i+2 < len(fields); i++ {
		if fields[i] != "score" {
			continue
		}
		n, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return Reply{}
		}
		switch fields[i+1] {
		case "cp":
			return Reply{Kind: KindScore, Score: Score{CP: n}}
		case "mate":
			return Reply{Kind: KindScore, Score: Score{Mate: n, IsMate: true}}
		}
	}
	return Reply{}
}

// isUCIMove accepts long algebraic moves such as e2e4 or e7e8q.
func isUCIMove(s string) bool {
	if len(s) != 4 && len(s) != 5 {
		return false
	}
	for i := 0; i < 4; i += 2 {
		if s[i] < 'a' || s[i] > 'h' || s[i+1] < '1' || s[i+1] > '8' {
			return false
		}
	}
	return len(s) == 4 || strings.ContainsRune("qrbn", rune(s[4]))
}
