package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/talgya/chaosmode/internal/game"
)

// ActionKind is what a key or mouse event asks the UI to do.
type ActionKind int

const (
	ActNone ActionKind = iota
	ActClick
	ActBuy
	ActToggle
	ActIntensity
	ActVisibility
	ActMove
	ActReset
	ActTrack
	ActRedraw
	ActQuit
)

// Action is one decoded input.
type Action struct {
	Kind    ActionKind
	Item    game.ItemID      // ActBuy
	Setting game.SettingName // ActToggle
	Delta   int              // ActIntensity
	X, Y    int              // ActMove (delta), ActTrack (cell)
}

// toggleKeys maps a key to the setting it flips.
var toggleKeys = map[rune]game.SettingName{
	'd': game.SettingDarkMode,
	'c': game.SettingComicSans,
	'r': game.SettingRainbowText,
	'f': game.SettingFlipPage,
	'm': game.SettingMeltPage,
	'x': game.SettingMatrixRain,
	'w': game.SettingFireworksOnClick,
	't': game.SettingCursorTrail,
	'i': game.SettingReplaceImages,
	'a': game.SettingAnimateButtons,
	'p': game.SettingPeriodicConfetti,
}

// intensityStep is how far one +/- press moves the chaos slider.
const intensityStep = 10

// ActionFor decodes ev. onButton hit-tests the click button.
func ActionFor(ev tcell.Event, onButton func(x, y int) bool) Action {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return Action{Kind: ActRedraw}

	case *tcell.EventMouse:
		x, y := ev.Position()
		if ev.Buttons()&tcell.Button1 != 0 && onButton != nil && onButton(x, y) {
			return Action{Kind: ActClick}
		}
		return Action{Kind: ActTrack, X: x, Y: y}

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return Action{Kind: ActQuit}
		case tcell.KeyEnter:
			return Action{Kind: ActClick}
		case tcell.KeyUp:
			return Action{Kind: ActMove, Y: -1}
		case tcell.KeyDown:
			return Action{Kind: ActMove, Y: 1}
		case tcell.KeyLeft:
			return Action{Kind: ActMove, X: -2}
		case tcell.KeyRight:
			return Action{Kind: ActMove, X: 2}
		case tcell.KeyRune:
		default:
			return Action{}
		}

		r := ev.Rune()
		if name, ok := toggleKeys[r]; ok {
			return Action{Kind: ActToggle, Setting: name}
		}
		switch r {
		case ' ':
			return Action{Kind: ActClick}
		case '1', '2', '3':
			return Action{Kind: ActBuy, Item: game.Items[r-'1']}
		case '+', '=':
			return Action{Kind: ActIntensity, Delta: intensityStep}
		case '-', '_':
			return Action{Kind: ActIntensity, Delta: -intensityStep}
		case 'v':
			return Action{Kind: ActVisibility}
		case 'R':
			return Action{Kind: ActReset}
		case 'q', 'Q':
			return Action{Kind: ActQuit}
		}
	}
	return Action{}
}
