// Package render draws the chaos overlay onto a tcell screen and applies
// the active effect set to it.
package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/talgya/chaosmode/internal/effects"
	"github.com/talgya/chaosmode/internal/engine"
	"github.com/talgya/chaosmode/internal/entropy"
	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
)

// Panel geometry. The click button row is fixed so mouse hits can be
// tested against it.
const (
	panelWidth  = 52
	buttonRow   = 5
	buttonLabel = "[  CLICK ME  ]"
	shopRow     = 7
	maxToasts   = 4
	toastFrames = 40 // ~4s at the default frame rate
	introFrames = 25
	trailLength = 8
	catIcon     = "🐱"
)

// Renderer draws snapshots. It also keeps the short-lived presentation
// state the engine never sees: toasts, particles, the cursor trail.
// Not safe for concurrent use; the UI loop owns it.
type Renderer struct {
	screen tcell.Screen
	rng    entropy.Source
	frame  uint64

	toasts    []toast
	particles []particle
	trail     []point
	shake     int
	cutscene  int // Frames of cutscene text left
	intro     int // Frames of the welcome card left
	originX   int
	originY   int
	lastPanel rect
}

type toast struct {
	notice events.Notice
	left   int
}

type point struct{ x, y int }

type rect struct{ x, y, w, h int }

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// New creates a Renderer for screen.
func New(screen tcell.Screen, rng entropy.Source) *Renderer {
	return &Renderer{screen: screen, rng: rng}
}

// Intro shows the welcome card for the next introFrames frames.
func (r *Renderer) Intro() { r.intro = introFrames }

// SkipIntro dismisses the welcome card.
func (r *Renderer) SkipIntro() { r.intro = 0 }

// Frame returns how many frames have been drawn.
func (r *Renderer) Frame() uint64 { return r.frame }

// Apply feeds one bus event into the presentation state.
func (r *Renderer) Apply(e events.Event) {
	switch e.Type {
	case events.Notification:
		if e.Notice != nil {
			r.toasts = append(r.toasts, toast{notice: *e.Notice, left: toastFrames})
			if len(r.toasts) > maxToasts {
				r.toasts = r.toasts[len(r.toasts)-maxToasts:]
			}
		}
	case events.EffectRequested:
		if e.Effect != nil {
			r.request(*e.Effect)
		}
	case events.AscensionStarted:
		r.cutscene = int(e.DurationMS / 100)
	case events.OmegaEntered, events.StateReset:
		r.cutscene = 0
		r.shake = 0
	}
}

// Track records a mouse position for the cursor trail.
func (r *Renderer) Track(x, y int) {
	r.trail = append(r.trail, point{x, y})
	if len(r.trail) > trailLength {
		r.trail = r.trail[len(r.trail)-trailLength:]
	}
}

// OnButton reports whether screen cell (x, y) is on the click button as
// last drawn.
func (r *Renderer) OnButton(x, y int) bool {
	b := rect{x: r.lastPanel.x + 1, y: r.lastPanel.y + buttonRow, w: runewidth.StringWidth(buttonLabel), h: 1}
	return b.contains(x, y)
}

// Draw renders one frame of snap and advances animations.
func (r *Renderer) Draw(snap engine.Snapshot) {
	r.frame++
	w, h := r.screen.Size()
	st := snap.State
	c := &canvas{
		screen: r.screen,
		w:      w,
		h:      h,
		flip:   st.Settings.FlipPage,
		melt:   st.Settings.MeltPage,
		frame:  r.frame,
	}
	if r.shake > 0 {
		c.dx = 1 - 2*int(r.frame%2)
		r.shake--
	}

	th := themeFor(st.Settings)
	r.screen.SetStyle(th.base)
	r.screen.Clear()

	if st.Settings.MatrixRain {
		r.drawRain(c)
	}
	if !snap.Visible {
		c.text(1, h-1, "chaos mode hidden · press v", th.dim)
		r.drawTrail(c, st.Settings)
		r.ageToasts()
		r.screen.Show()
		return
	}

	r.originX, r.originY = panelOrigin(st.MenuPosition, w, h)
	r.lastPanel = rect{x: r.originX, y: r.originY, w: panelWidth, h: shopRow + len(snap.Shop) + 5}
	switch {
	case r.intro > 0:
		r.drawIntro(c, th)
		r.intro--
	case r.cutscene > 0 || snap.Phase == effects.PhaseAscending:
		r.drawCutscene(c, th)
		if r.cutscene > 0 {
			r.cutscene--
		}
	default:
		r.drawPanel(c, th, snap)
	}
	r.drawParticles(c)
	r.drawTrail(c, st.Settings)
	r.drawToasts(c, th)
	r.screen.Show()
}

func (r *Renderer) drawPanel(c *canvas, th theme, snap engine.Snapshot) {
	st := snap.State
	x, y := r.originX, r.originY
	text := func(row int, s string, style tcell.Style) {
		c.styledText(x+1, y+row, s, style, th, st.Settings)
	}

	title := "⚡ CHAOS MODE ⚡"
	if st.OmegaMode {
		title = "Ω OMEGA MODE Ω"
	}
	c.box(x, y, panelWidth, r.lastPanel.h, th.border)
	text(0, " "+title+" ", th.title)
	text(1, fmt.Sprintf("Clicks: %s  (+%s/s)", snap.ClicksText, game.FormatCount(snap.ClicksPerSecond)), th.text)
	text(2, fmt.Sprintf("Level %s  %s %d/%d", snap.LevelText, xpBar(st.XP, st.XPToNextLevel, 16), st.XP, st.XPToNextLevel), th.text)
	text(3, fmt.Sprintf("Chaos %d (effective %d)  Tier %d  %s", st.Settings.ChaosIntensity,
		snap.EffectiveIntensity, len(snap.Tiers), snap.ElapsedText), th.text)

	button := th.button
	if st.Settings.AnimateButtons && r.frame%10 < 5 {
		button = button.Reverse(true)
	}
	text(buttonRow, buttonLabel, button)

	text(shopRow-1, "Shop", th.title)
	for i, e := range snap.Shop {
		mark := " "
		style := th.dim
		if e.Affordable {
			mark, style = "✓", th.text
		}
		icon := iconFor(e.Icon, st.Settings)
		text(shopRow+i, fmt.Sprintf("%d %s %-18s x%-4d %8s %s", i+1, icon, e.Name, e.Owned, e.PriceText, mark), style)
	}

	row := shopRow + len(snap.Shop) + 1
	unlocked := 0
	var icons strings.Builder
	for _, a := range snap.Achievements {
		if a.Unlocked {
			unlocked++
			icons.WriteString(iconFor(a.Icon, st.Settings))
		}
	}
	text(row, fmt.Sprintf("Achievements %d/%d %s", unlocked, len(snap.Achievements), icons.String()), th.text)
	text(row+1, "Effects: "+strings.Join(snap.ActiveEffects, " "), th.dim)
	text(row+2, "space click · 1-3 buy · +/- chaos · v hide · q quit", th.dim)
}

func (r *Renderer) drawIntro(c *canvas, th theme) {
	title := "WELCOME TO CHAOS MODE"
	style := th.title.Bold(true)
	if r.frame%4 < 2 {
		style = style.Reverse(true)
	}
	mid := c.h / 2
	c.text((c.w-runewidth.StringWidth(title))/2, mid-1, title, style)
	hint := "press any key"
	c.text((c.w-runewidth.StringWidth(hint))/2, mid+1, hint, th.dim)
}

func (r *Renderer) drawCutscene(c *canvas, th theme) {
	lines := []string{"✨ ASCENDING ✨", "reality is dissolving", "please hold"}
	mid := c.h / 2
	for i, l := range lines {
		x := (c.w - runewidth.StringWidth(l)) / 2
		c.text(x, mid-1+i, l, th.title.Bold(true))
	}
}

func (r *Renderer) drawToasts(c *canvas, th theme) {
	y := c.h - 1
	for i := len(r.toasts) - 1; i >= 0; i-- {
		t := r.toasts[i]
		s := fmt.Sprintf("%s %s %s", t.notice.Icon, t.notice.Title, t.notice.Message)
		x := c.w - runewidth.StringWidth(s) - 1
		if x < 0 {
			x = 0
		}
		c.text(x, y, s, th.toast(t.notice.Kind))
		y--
	}
	r.ageToasts()
}

func (r *Renderer) ageToasts() {
	kept := r.toasts[:0]
	for _, t := range r.toasts {
		t.left--
		if t.left > 0 {
			kept = append(kept, t)
		}
	}
	r.toasts = kept
}

func (r *Renderer) drawTrail(c *canvas, s game.Settings) {
	if !s.CursorTrail {
		return
	}
	glyphs := []rune("·•✦★")
	for i, p := range r.trail {
		g := glyphs[i*len(glyphs)/len(r.trail)]
		c.set(p.x, p.y, g, tcell.StyleDefault.Foreground(tcell.ColorGold))
	}
}

// panelOrigin turns the persisted menu position into a top-left cell,
// clamped so the panel stays on screen.
func panelOrigin(m game.MenuPosition, w, h int) (int, int) {
	x, y := 1, 1
	if m.X != nil {
		x = int(*m.X)
	}
	if m.Y != nil {
		y = int(*m.Y)
	}
	x = min(max(x, 0), max(w-panelWidth, 0))
	y = min(max(y, 0), max(h-4, 0))
	return x, y
}

func xpBar(xp, next uint64, width int) string {
	filled := 0
	if next > 0 {
		filled = int(float64(xp) / float64(next) * float64(width))
	}
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func iconFor(icon string, s game.Settings) string {
	if s.ReplaceImages {
		return catIcon
	}
	return icon
}
