package pkg

import (
	"strconv"
	"strings"
)

// Action is a terminal command recognised before move parsing.
type Action int

const (
	ActionNone Action = iota
	ActionUndo
	ActionClear
	ActionReset
	ActionHelp
	ActionGo
	ActionSkill
	ActionPGN
	ActionFEN
	ActionFlip
	ActionSave
)

var actionNames = map[string]Action{
	"undo":     ActionUndo,
	"back":     ActionUndo,
	"takeback": ActionUndo,
	"u":        ActionUndo,
	"clear":    ActionClear,
	"cls":      ActionClear,
	"new":      ActionReset,
	"reset":    ActionReset,
	"restart":  ActionReset,
	"help":     ActionHelp,
	"?":        ActionHelp,
	"go":       ActionGo,
	"skill":    ActionSkill,
	"pgn":      ActionPGN,
	"fen":      ActionFEN,
	"flip":     ActionFlip,
	"save":     ActionSave,
}

// argChecks accepts the single argument of the actions that need one.
var argChecks = map[Action]func(string) bool{
	ActionSkill: func(arg string) bool {
		_, err := strconv.Atoi(arg)
		return err == nil
	},
	ActionSave: func(arg string) bool {
		return strings.HasSuffix(strings.ToLower(arg), ".svg")
	},
}

var helpLines = []string{
	"[HELP] <move>            e4, Nf3, O-O, e8=Q or e2e4",
	"[HELP] undo|back|u       take back your last move",
	"[HELP] new|reset         start a new game",
	"[HELP] clear|cls         clear this terminal",
	"[HELP] go                let the engine move now",
	"[HELP] skill <0-20>      engine strength",
	"[HELP] pgn | fen         print the game",
	"[HELP] flip              turn the board around",
	"[HELP] save <file.svg>   save the board as an image, white at the bottom",
	"[HELP] anything else     ask the tutor",
}

// ParseAction matches input against the command names. A command must be
// the whole input, except "skill <n>" and "save <file.svg>" which carry one
// argument. Anything else is ActionNone, so "save the queen?" still reaches
// the tutor.
func ParseAction(input string) (Action, []string) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return ActionNone, nil
	}
	action, ok := actionNames[strings.ToLower(fields[0])]
	if !ok {
		return ActionNone, nil
	}
	check, needsArg := argChecks[action]
	switch {
	case needsArg && len(fields) == 2 && check(fields[1]):
		return action, fields[1:]
	case !needsArg && len(fields) == 1:
		return action, nil
	}
	return ActionNone, nil
}
