package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/talgya/chaosmode/internal/events"
)

const (
	burstLife    = 8
	confettiLife = 30
	maxParticles = 400
)

// particle is one moving glyph of a burst or confetti shower. Positions
// are absolute screen cells before canvas transforms.
type particle struct {
	x, y   float64
	vx, vy float64
	glyph  rune
	color  tcell.Color
	life   int
}

var (
	burstGlyphs    = []rune("*✦✧+·")
	confettiGlyphs = []rune("▪▫◆◇●○")
	confettiColors = []tcell.Color{
		tcell.ColorRed, tcell.ColorYellow, tcell.ColorLime,
		tcell.ColorAqua, tcell.ColorFuchsia, tcell.ColorOrange,
	}
)

// request turns a one-shot effect into particles or shake frames.
func (r *Renderer) request(req events.EffectRequest) {
	switch req.Kind {
	case events.EffectParticleBurst:
		cx := float64(r.lastPanel.x + 1 + len(buttonLabel)/2)
		cy := float64(r.lastPanel.y + buttonRow)
		for range req.Count {
			r.spawn(particle{
				x:     cx,
				y:     cy,
				vx:    (r.rng.Float()*2 - 1) * 2.5,
				vy:    (r.rng.Float()*2 - 1) * 1.2,
				glyph: burstGlyphs[r.pick(len(burstGlyphs))],
				color: tcell.ColorGold,
				life:  burstLife,
			})
		}
	case events.EffectConfetti:
		w, _ := r.screen.Size()
		for range req.Count {
			r.spawn(particle{
				x:     r.rng.Float() * float64(w),
				y:     -r.rng.Float() * 10,
				vx:    (r.rng.Float()*2 - 1) * 0.3,
				vy:    0.5 + r.rng.Float()*0.5,
				glyph: confettiGlyphs[r.pick(len(confettiGlyphs))],
				color: confettiColors[r.pick(len(confettiColors))],
				life:  confettiLife,
			})
		}
	case events.EffectPageShake:
		r.shake = max(r.shake, req.Count)
	}
}

func (r *Renderer) spawn(p particle) {
	if len(r.particles) >= maxParticles {
		return
	}
	r.particles = append(r.particles, p)
}

func (r *Renderer) pick(n int) int {
	i := int(r.rng.Float() * float64(n))
	return min(max(i, 0), n-1)
}

// drawParticles draws live particles and steps them one frame.
func (r *Renderer) drawParticles(c *canvas) {
	kept := r.particles[:0]
	for _, p := range r.particles {
		c.set(int(p.x), int(p.y), p.glyph, tcell.StyleDefault.Foreground(p.color))
		p.x += p.vx
		p.y += p.vy
		p.life--
		if p.life > 0 && int(p.y) < c.h {
			kept = append(kept, p)
		}
	}
	r.particles = kept
}

// drawRain paints falling katakana behind the panel. Columns and speeds
// derive from the frame counter so the rain is stable across redraws.
func (r *Renderer) drawRain(c *canvas) {
	const tail = 5
	head := tcell.StyleDefault.Foreground(tcell.ColorLime)
	body := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	for x := 0; x < c.w; x += 3 {
		speed := uint64(1 + x%3)
		y := int((r.frame*speed + uint64(x*13)) % uint64(c.h+tail))
		for i := range tail {
			ch := rune(0x30A0 + (x*31+y+i)%96)
			style := body
			if i == 0 {
				style = head
			}
			c.set(x, y-i, ch, style)
		}
	}
}
