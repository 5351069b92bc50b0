package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
)

// canvas maps panel coordinates onto the screen, applying the page-wide
// transforms (flip, melt, shake).
type canvas struct {
	screen tcell.Screen
	w, h   int
	flip   bool
	melt   bool
	frame  uint64
	dx     int
}

// meltOffset is how far column x has dripped at frame. Each column drips
// to its own depth and then snaps back.
func meltOffset(x int, frame uint64) int {
	depth := 1 + (x*7919)%4
	return int((frame/6 + uint64(x)) % uint64(depth+1))
}

func (c *canvas) set(x, y int, ch rune, style tcell.Style) {
	x += c.dx
	if c.melt {
		y += meltOffset(x, c.frame)
	}
	if c.flip {
		x, y = c.w-1-x, c.h-1-y
	}
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.screen.SetContent(x, y, ch, nil, style)
}

// glyph draws one possibly wide glyph and returns its cell width.
func (c *canvas) glyph(x, y int, g string, style tcell.Style) int {
	runes := []rune(g)
	if len(runes) == 0 {
		return 0
	}
	width := runewidth.StringWidth(g)
	tx, ty := x+c.dx, y
	if c.melt {
		ty += meltOffset(tx, c.frame)
	}
	if c.flip {
		tx, ty = c.w-width-tx, c.h-1-ty
	}
	if tx < 0 || ty < 0 || tx+width > c.w || ty >= c.h {
		return max(width, 1)
	}
	c.screen.SetContent(tx, ty, runes[0], runes[1:], style)
	if width == 2 {
		c.screen.SetContent(tx+1, ty, ' ', nil, style)
	}
	return max(width, 1)
}

// text writes s starting at (x, y), one grapheme per glyph.
func (c *canvas) text(x, y int, s string, style tcell.Style) {
	for _, g := range graphemes(s) {
		x += c.glyph(x, y, g, style)
	}
}

// styledText is text with the per-cell settings effects applied.
func (c *canvas) styledText(x, y int, s string, style tcell.Style, th theme, st game.Settings) {
	if st.ComicSans {
		style = style.Italic(true)
	}
	for i, g := range graphemes(s) {
		cell := style
		if st.RainbowText {
			cell = cell.Foreground(th.rainbow[(i+int(c.frame))%len(th.rainbow)])
		}
		x += c.glyph(x, y, g, cell)
	}
}

func (c *canvas) box(x, y, w, h int, style tcell.Style) {
	for col := x; col < x+w; col++ {
		c.set(col, y, '─', style)
		c.set(col, y+h-1, '─', style)
	}
	for row := y; row < y+h; row++ {
		c.set(x, row, '│', style)
		c.set(x+w-1, row, '│', style)
	}
	c.set(x, y, '┌', style)
	c.set(x+w-1, y, '┐', style)
	c.set(x, y+h-1, '└', style)
	c.set(x+w-1, y+h-1, '┘', style)
}

// graphemes splits s so that emoji with variation selectors stay whole.
func graphemes(s string) []string {
	var out []string
	for _, r := range s {
		joined := len(out) > 0 && strings.HasSuffix(out[len(out)-1], "\u200D")
		if len(out) > 0 && (joined || r == '\uFE0F' || r == '\u200D') {
			out[len(out)-1] += string(r)
			continue
		}
		out = append(out, string(r))
	}
	return out
}

type theme struct {
	base, text, dim, title, border, button tcell.Style
	rainbow                                []tcell.Color
}

func themeFor(s game.Settings) theme {
	fg, bg, dim := tcell.ColorBlack, tcell.ColorWhite, tcell.ColorGray
	if s.DarkMode {
		fg, bg, dim = tcell.ColorWhite, tcell.ColorBlack, tcell.ColorDarkGray
	}
	base := tcell.StyleDefault.Foreground(fg).Background(bg)
	return theme{
		base:   base,
		text:   base,
		dim:    base.Foreground(dim),
		title:  base.Foreground(tcell.ColorFuchsia).Bold(true),
		border: base.Foreground(tcell.ColorPurple),
		button: base.Foreground(tcell.ColorYellow).Bold(true),
		rainbow: []tcell.Color{
			tcell.ColorRed, tcell.ColorOrange, tcell.ColorYellow,
			tcell.ColorGreen, tcell.ColorBlue, tcell.ColorPurple,
		},
	}
}

func (th theme) toast(kind string) tcell.Style {
	switch kind {
	case events.NoticeError:
		return th.base.Foreground(tcell.ColorRed).Bold(true)
	case events.NoticeLevelUp:
		return th.base.Foreground(tcell.ColorAqua)
	case events.NoticeAchievement:
		return th.base.Foreground(tcell.ColorGold).Bold(true)
	case events.NoticePurchase:
		return th.base.Foreground(tcell.ColorGreen)
	}
	return th.text
}
