package engine

import (
	"github.com/talgya/chaosmode/internal/effects"
	"github.com/talgya/chaosmode/internal/game"
)

// ShopEntry is one shop row as presented.
type ShopEntry struct {
	ID          game.ItemID `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Price       float64     `json:"price"`
	PriceText   string      `json:"priceText"`
	Owned       uint32      `json:"owned"`
	Affordable  bool        `json:"affordable"`
}

// AchievementEntry is one achievement row as presented.
type AchievementEntry struct {
	ID          game.AchievementID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Unlocked    bool               `json:"unlocked"`
}

// Snapshot is a read-only copy of everything a presenter needs.
type Snapshot struct {
	State              *game.State        `json:"state"`
	ClicksText         string             `json:"clicksText"`
	LevelText          string             `json:"levelText"`
	ElapsedText        string             `json:"elapsedText"`
	ClicksPerSecond    float64            `json:"clicksPerSecond"`
	EffectiveIntensity int                `json:"effectiveIntensity"`
	Shop               []ShopEntry        `json:"shop"`
	Achievements       []AchievementEntry `json:"achievements"`
	ActiveEffects      []string           `json:"activeEffects"`
	Tiers              []effects.Tier     `json:"tiers"`
	Phase              effects.Phase      `json:"phase"`
	Suspended          bool               `json:"suspended"`
	Visible            bool               `json:"visible"`
}

// Snapshot copies the current state for presentation.
func (g *Game) Snapshot() Snapshot {
	s := g.state
	now := g.now()
	params := g.prog.Params()

	shop := make([]ShopEntry, 0, len(game.Items))
	for _, id := range game.Items {
		item := s.ShopItems.Get(id)
		price := Price(*item, params.PriceGrowth)
		info := id.Info()
		shop = append(shop, ShopEntry{
			ID:          id,
			Name:        info.Name,
			Description: info.Description,
			Icon:        info.Icon,
			Price:       price,
			PriceText:   game.FormatCount(price),
			Owned:       item.Owned,
			Affordable:  s.Clicks >= price,
		})
	}

	defs := g.eval.Registry().All()
	achs := make([]AchievementEntry, 0, len(defs))
	for _, d := range defs {
		achs = append(achs, AchievementEntry{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Icon:        d.Icon,
			Unlocked:    s.UnlockedAchievements.Has(d.ID),
		})
	}

	return Snapshot{
		State:              s.Clone(),
		ClicksText:         game.FormatCount(s.Clicks),
		LevelText:          game.FormatLevel(s.Level),
		ElapsedText:        game.FormatElapsed(s.StartedAt(), now),
		ClicksPerSecond:    g.prog.ClicksPerSecond(s),
		EffectiveIntensity: effects.EffectiveIntensity(s, params),
		Shop:               shop,
		Achievements:       achs,
		ActiveEffects:      effects.ActiveEffects(s.Settings),
		Tiers:              effects.TiersForLevel(s.Level),
		Phase:              g.ascension.Phase(),
		Suspended:          g.ascension.Suspended(),
		Visible:            g.visible,
	}
}
