package effects

import (
	"fmt"
	"slices"

	"github.com/talgya/chaosmode/internal/achievements"
	"github.com/talgya/chaosmode/internal/entropy"
	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
	"github.com/talgya/chaosmode/internal/tuning"
)

// Orchestrator listens to game events and requests presentation actions.
// It reads state through the accessor and never mutates it.
type Orchestrator struct {
	params   tuning.Params
	bus      *events.Bus
	registry *achievements.Registry
	rng      entropy.Source
	weather  *Weather
	state    func() *game.State

	active []string // Last published continuous set
}

// NewOrchestrator subscribes an orchestrator to bus.
func NewOrchestrator(params tuning.Params, bus *events.Bus, registry *achievements.Registry,
	rng entropy.Source, weather *Weather, state func() *game.State) *Orchestrator {
	o := &Orchestrator{
		params:   params,
		bus:      bus,
		registry: registry,
		rng:      rng,
		weather:  weather,
		state:    state,
	}
	bus.Subscribe(o.handle)
	return o
}

// Active returns the last published continuous effect set.
func (o *Orchestrator) Active() []string {
	return slices.Clone(o.active)
}

// Sync recomputes the continuous set and publishes it. force publishes
// even when the set did not change.
func (o *Orchestrator) Sync(force bool) []string {
	next := ActiveEffects(o.state().Settings)
	if force || !slices.Equal(next, o.active) {
		o.active = next
		e := events.New(events.EffectsChanged)
		e.Effects = slices.Clone(next)
		o.bus.Emit(e)
	}
	return o.Active()
}

func (o *Orchestrator) handle(e events.Event) {
	switch e.Type {
	case events.ClickRegistered:
		o.clickBurst()

	case events.LevelUp:
		o.notify(events.NoticeLevelUp, "⬆️", "Level Up!",
			fmt.Sprintf("You reached level %d.", e.Level))
		for _, t := range NewTiers(e.Level-1, e.Level) {
			o.notify(events.NoticeInfo, "🔓", "New chaos unlocked",
				fmt.Sprintf("Tier %d: %s", t.Tier, t.Name))
		}

	case events.AchievementUnlocked:
		title, icon := e.AchievementID, "🏆"
		if d, ok := o.registry.Lookup(game.AchievementID(e.AchievementID)); ok {
			title, icon = d.Title, d.Icon
		}
		o.notify(events.NoticeAchievement, icon, "Achievement Unlocked!", title)

	case events.PurchaseMade:
		info := game.ItemID(e.ItemID).Info()
		o.notify(events.NoticePurchase, info.Icon, "Purchased!",
			fmt.Sprintf("%s (owned: %d)", info.Name, e.Owned))

	case events.PurchaseRejected:
		o.notify(events.NoticeError, "💸", "Not enough clicks",
			fmt.Sprintf("You need %s clicks.", game.FormatCount(e.Value)))

	case events.AscensionStarted:
		o.request(events.EffectPageShake, 30)

	case events.OmegaEntered:
		o.notify(events.NoticeAchievement, "Ω", "OMEGA MODE", "You have ascended beyond chaos.")
		o.request(events.EffectConfetti, 200)

	case events.StateReset:
		o.Sync(true)
	}
}

// clickBurst fires a particle burst with probability FireChance.
func (o *Orchestrator) clickBurst() {
	s := o.state()
	if !s.Settings.FireworksOnClick {
		return
	}
	intensity := EffectiveIntensity(s, o.params)
	if o.rng.Float() >= FireChance(intensity) {
		return
	}
	o.request(events.EffectParticleBurst, BurstSize(intensity))
}

// Ambient runs the periodic effect pass: confetti when enabled and, from
// tier 5, page shakes. Both follow the chaos weather.
func (o *Orchestrator) Ambient(tick uint64) {
	s := o.state()
	intensity := EffectiveIntensity(s, o.params)
	chance := FireChance(intensity) * o.weather.At(tick)

	if s.Settings.PeriodicConfetti && o.rng.Float() < chance {
		o.request(events.EffectConfetti, 20+intensity/2)
	}
	if HighestTier(s.Level) >= Tier5 && o.rng.Float() < chance/2 {
		o.request(events.EffectPageShake, 5+intensity/20)
	}
}

func (o *Orchestrator) request(kind string, count int) {
	e := events.New(events.EffectRequested)
	e.Effect = &events.EffectRequest{
		Kind:      kind,
		Count:     count,
		Intensity: EffectiveIntensity(o.state(), o.params),
	}
	o.bus.Emit(e)
}

func (o *Orchestrator) notify(kind, icon, title, message string) {
	e := events.New(events.Notification)
	e.Notice = &events.Notice{Title: title, Message: message, Icon: icon, Kind: kind}
	o.bus.Emit(e)
}
