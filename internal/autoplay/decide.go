package autoplay

import (
	"fmt"
	"math"
)

// Actions a cycle can take.
const (
	ActionClick = "click"
	ActionBuy   = "buy"
	ActionWait  = "wait"
)

// itemWeight is how much one unit of each item is worth to the bot,
// relative to a minion.
var itemWeight = map[string]float64{
	"minion":       1.0,
	"multiplier":   0.8,
	"chaosBooster": 0.15,
}

// Health holds derived signals computed from an Observation. Runs before
// Decide and is deterministic.
type Health struct {
	Spendable   float64 // Clicks above the reserve
	Affordable  []ShopItem
	BestValue   *ShopItem // Highest weight per click among affordable items
	Cheapest    *ShopItem // Cheapest item overall
	SecsToNext  float64   // Passive seconds to afford Cheapest, +Inf with no income
	ToNextLevel uint64
}

// Triage computes Health from obs, keeping reserve clicks unspent.
func Triage(obs *Observation, reserve float64) *Health {
	h := &Health{
		Spendable:  obs.Status.Clicks - reserve,
		SecsToNext: math.Inf(1),
	}
	if obs.Status.XPToNextLevel > obs.Status.XP {
		h.ToNextLevel = obs.Status.XPToNextLevel - obs.Status.XP
	}

	bestScore := 0.0
	for i := range obs.Shop {
		item := &obs.Shop[i]
		if h.Cheapest == nil || item.Price < h.Cheapest.Price {
			h.Cheapest = item
		}
		if item.Price > h.Spendable {
			continue
		}
		h.Affordable = append(h.Affordable, *item)
		if score := itemWeight[item.ID] / item.Price; score > bestScore {
			bestScore = score
			h.BestValue = item
		}
	}

	if h.Cheapest != nil && obs.Status.ClicksPerSecond > 0 {
		missing := math.Max(0, h.Cheapest.Price-h.Spendable)
		h.SecsToNext = missing / obs.Status.ClicksPerSecond
	}
	return h
}

// Decision is one move.
type Decision struct {
	Action    string `json:"action"`
	Item      string `json:"item,omitempty"`
	Rationale string `json:"rationale"`
}

// Decide picks the next move: wait while the game is suspended, buy the
// best-value affordable item, otherwise click.
func Decide(obs *Observation, h *Health) Decision {
	if obs.Status.Suspended {
		return Decision{Action: ActionWait, Rationale: "ascension cutscene in progress"}
	}
	if h.BestValue != nil {
		return Decision{
			Action: ActionBuy,
			Item:   h.BestValue.ID,
			Rationale: fmt.Sprintf("%s costs %.0f of %.0f spendable",
				h.BestValue.Name, h.BestValue.Price, h.Spendable),
		}
	}
	return Decision{
		Action:    ActionClick,
		Rationale: fmt.Sprintf("%d xp to next level", h.ToNextLevel),
	}
}
