package graphic

import (
	"image/color"

	"github.com/nsf/termbox-go"
)

// Action is a key binding.
type Action int

const (
	ActionQuit Action = iota
	ActionRecord
	ActionNextPreset
	ActionPrevPreset
	ActionRandomize
	ActionCycleFit
	ActionToggleAudio
	ActionSnapshot
)

var actionNames = [...]string{
	ActionQuit:        "quit",
	ActionRecord:      "record",
	ActionNextPreset:  "next preset",
	ActionPrevPreset:  "previous preset",
	ActionRandomize:   "randomize",
	ActionCycleFit:    "cycle fit",
	ActionToggleAudio: "toggle audio",
	ActionSnapshot:    "snapshot",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// KeyAction maps a key event to its action.
func KeyAction(key termbox.Key, ch rune) (Action, bool) {
	switch key {
	case termbox.KeyCtrlC, termbox.KeyEsc:
		return ActionQuit, true
	}

	switch ch {
	case 'q', 'Q':
		return ActionQuit, true
	case 'r', 'R':
		return ActionRecord, true
	case 'p':
		return ActionNextPreset, true
	case 'P':
		return ActionPrevPreset, true
	case 'x', 'X':
		return ActionRandomize, true
	case 'f', 'F':
		return ActionCycleFit, true
	case 'a', 'A':
		return ActionToggleAudio, true
	case 's', 'S':
		return ActionSnapshot, true
	}

	return 0, false
}

func rgbaAt(row []byte, x int) color.RGBA {
	p := row[x*4 : x*4+4]
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}
