// Package events is the typed notification channel between the chaos
// engine and everything that presents it (HTTP stream, terminal UI, audio).
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names an event on the bus.
type Type string

const (
	// ClickRegistered: a manual click was counted. Value = clicks awarded.
	ClickRegistered Type = "clickRegistered"

	// LevelUp: one level threshold was crossed. Level = the new level.
	// A multi-level gain emits one event per level, ascending.
	LevelUp Type = "levelUp"

	// PurchaseMade: ItemID bought, Owned = new count, Value = price paid.
	PurchaseMade Type = "purchaseMade"

	// PurchaseRejected: insufficient funds. Value = the price asked.
	PurchaseRejected Type = "purchaseRejected"

	// AchievementUnlocked: AchievementID joined the unlocked set.
	AchievementUnlocked Type = "achievementUnlocked"

	// AscensionStarted: the omega cutscene begins; interaction is suspended
	// for DurationMS.
	AscensionStarted Type = "ascensionStarted"

	// OmegaEntered: terminal progression reached. Emitted once per save.
	OmegaEntered Type = "omegaEntered"

	// EffectsChanged: Effects holds the full active continuous-effect set.
	EffectsChanged Type = "effectsChanged"

	// EffectRequested: a one-shot presentation effect should play.
	EffectRequested Type = "effectRequested"

	// Notification: a toast for the player.
	Notification Type = "notification"

	// VisibilityToggled: the overlay was shown or hidden.
	VisibilityToggled Type = "visibilityToggled"

	// StateReset: progress was wiped and a default state installed.
	StateReset Type = "stateReset"
)

// Notice kinds.
const (
	NoticeInfo        = "info"
	NoticeLevelUp     = "levelup"
	NoticeAchievement = "achievement"
	NoticePurchase    = "purchase"
	NoticeError       = "error"
)

// Effect kinds for EffectRequested.
const (
	EffectParticleBurst = "particleBurst"
	EffectConfetti      = "confetti"
	EffectPageShake     = "pageShake"
)

// Notice is a player-facing toast.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon,omitempty"`
	Kind    string `json:"kind"`
}

// EffectRequest describes one one-shot presentation effect.
type EffectRequest struct {
	Kind      string `json:"kind"`
	Count     int    `json:"count,omitempty"`     // Particles, confetti pieces, shake frames
	Intensity int    `json:"intensity,omitempty"` // Effective intensity at request time
}

// Event is a single occurrence. Only the fields relevant to Type are set.
type Event struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	Time          time.Time      `json:"time"`
	Level         uint32         `json:"level,omitempty"`
	Value         float64        `json:"value,omitempty"`
	ItemID        string         `json:"itemId,omitempty"`
	Owned         uint32         `json:"owned,omitempty"`
	AchievementID string         `json:"achievementId,omitempty"`
	Effects       []string       `json:"effects,omitempty"`
	Effect        *EffectRequest `json:"effect,omitempty"`
	Notice        *Notice        `json:"notice,omitempty"`
	DurationMS    int64          `json:"durationMs,omitempty"`
	Visible       *bool          `json:"visible,omitempty"`
}

// New stamps an event of type t with a fresh id and the current time.
func New(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, Time: time.Now()}
}

// Notable reports whether an event belongs in the persistent journal.
func (e Event) Notable() bool {
	switch e.Type {
	case LevelUp, PurchaseMade, AchievementUnlocked, OmegaEntered, StateReset:
		return true
	}
	return false
}
