package gui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
)

// Themes should stay inside the xterm 256 colour palette so they survive
// ssh sessions and plain terminals.

// Theme is used for dynamically coloring the UI
type Theme struct {
	Name        string
	SquareDark  tcell.Color
	SquareLight tcell.Color
	SquareHigh  tcell.Color // last move
	SquareHint  tcell.Color // legal destinations
	SquareSel   tcell.Color
	SquareCheck tcell.Color
	White       tcell.Color
	Black       tcell.Color
	Label       tcell.Color // ranks and files
	Status      tcell.Color
	Eval        tcell.Color
	System      tcell.Color
	User        tcell.Color
	AI          tcell.Color
	Error       tcell.Color
	Prompt      tcell.Color
}

// ThemeHex is the JSON form of a Theme, colours written as "#rrggbb" or
// colour names.
type ThemeHex struct {
	Name        string `json:"name"`
	SquareDark  string `json:"squareDark"`
	SquareLight string `json:"squareLight"`
	SquareHigh  string `json:"squareHigh"`
	SquareHint  string `json:"squareHint"`
	SquareSel   string `json:"squareSel"`
	SquareCheck string `json:"squareCheck"`
	White       string `json:"white"`
	Black       string `json:"black"`
	Label       string `json:"label"`
	Status      string `json:"status"`
	Eval        string `json:"eval"`
	System      string `json:"system"`
	User        string `json:"user"`
	AI          string `json:"ai"`
	Error       string `json:"error"`
	Prompt      string `json:"prompt"`
}

var ErrNoTheme = errors.New("theme: no theme found")

// fmtHex returns "#0" for ColorDefault so it reads back as the default
// colour rather than black.
func fmtHex(v int32) string {
	if v == -1 {
		return "#0"
	}
	return fmt.Sprintf("#%06x", v)
}

// Hex converts a Theme to a ThemeHex
func (t Theme) Hex() ThemeHex {
	return ThemeHex{
		Name:        t.Name,
		SquareDark:  fmtHex(t.SquareDark.Hex()),
		SquareLight: fmtHex(t.SquareLight.Hex()),
		SquareHigh:  fmtHex(t.SquareHigh.Hex()),
		SquareHint:  fmtHex(t.SquareHint.Hex()),
		SquareSel:   fmtHex(t.SquareSel.Hex()),
		SquareCheck: fmtHex(t.SquareCheck.Hex()),
		White:       fmtHex(t.White.Hex()),
		Black:       fmtHex(t.Black.Hex()),
		Label:       fmtHex(t.Label.Hex()),
		Status:      fmtHex(t.Status.Hex()),
		Eval:        fmtHex(t.Eval.Hex()),
		System:      fmtHex(t.System.Hex()),
		User:        fmtHex(t.User.Hex()),
		AI:          fmtHex(t.AI.Hex()),
		Error:       fmtHex(t.Error.Hex()),
		Prompt:      fmtHex(t.Prompt.Hex()),
	}
}

// Theme converts a ThemeHex to a Theme
func (t ThemeHex) Theme() Theme {
	return Theme{
		Name:        t.Name,
		SquareDark:  tcell.GetColor(t.SquareDark),
		SquareLight: tcell.GetColor(t.SquareLight),
		SquareHigh:  tcell.GetColor(t.SquareHigh),
		SquareHint:  tcell.GetColor(t.SquareHint),
		SquareSel:   tcell.GetColor(t.SquareSel),
		SquareCheck: tcell.GetColor(t.SquareCheck),
		White:       tcell.GetColor(t.White),
		Black:       tcell.GetColor(t.Black),
		Label:       tcell.GetColor(t.Label),
		Status:      tcell.GetColor(t.Status),
		Eval:        tcell.GetColor(t.Eval),
		System:      tcell.GetColor(t.System),
		User:        tcell.GetColor(t.User),
		AI:          tcell.GetColor(t.AI),
		Error:       tcell.GetColor(t.Error),
		Prompt:      tcell.GetColor(t.Prompt),
	}
}

// ReadThemes decodes a JSON list of themes.
func ReadThemes(r io.Reader) ([]ThemeHex, error) {
	var themes []ThemeHex
	if err := json.NewDecoder(r).Decode(&themes); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return themes, nil
}

// ImportThemes returns the theme named want, looking at the custom themes
// first and the built in ones after.
func ImportThemes(want string, themes []ThemeHex) (Theme, error) {
	for _, t := range themes {
		if t.Name == want {
			return t.Theme(), nil
		}
	}
	for _, t := range Builtin {
		if t.Name == want {
			return t, nil
		}
	}
	return Theme{}, ErrNoTheme
}

// ThemeDOS is the default theme: green phosphor on black.
var ThemeDOS = Theme{
	Name:        "dos",
	SquareDark:  tcell.Color22,
	SquareLight: tcell.Color65,
	SquareHigh:  tcell.Color100,
	SquareHint:  tcell.Color28,
	SquareSel:   tcell.Color142,
	SquareCheck: tcell.Color124,
	White:       tcell.Color231,
	Black:       tcell.Color232,
	Label:       tcell.Color34,
	Status:      tcell.Color46,
	Eval:        tcell.Color226,
	System:      tcell.Color34,
	User:        tcell.Color231,
	AI:          tcell.Color46,
	Error:       tcell.Color196,
	Prompt:      tcell.Color46,
}

var ThemeBasic = Theme{
	Name:        "basic",
	SquareDark:  tcell.Color188,
	SquareLight: tcell.Color230,
	SquareHigh:  tcell.Color226,
	SquareHint:  tcell.Color223,
	SquareSel:   tcell.Color222,
	SquareCheck: tcell.Color218,
	White:       tcell.Color232,
	Black:       tcell.Color232,
	Label:       tcell.Color247,
	Status:      tcell.ColorDefault,
	Eval:        tcell.Color247,
	System:      tcell.Color247,
	User:        tcell.ColorDefault,
	AI:          tcell.Color45,
	Error:       tcell.Color160,
	Prompt:      tcell.Color160,
}

var Builtin = []Theme{ThemeDOS, ThemeBasic}
