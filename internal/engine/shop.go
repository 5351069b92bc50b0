package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/chaosmode/internal/events"
	"github.com/talgya/chaosmode/internal/game"
)

// ErrInsufficientFunds is the normal "can't afford it" result of Buy.
var ErrInsufficientFunds = errors.New("insufficient clicks")

// Price is what the next unit of an item costs given how many are owned:
// basePrice × growth^owned, rounded up to whole clicks.
func Price(item game.ShopItem, growth float64) float64 {
	return math.Ceil(item.BasePrice * math.Pow(growth, float64(item.Owned)))
}

// Price returns the current price of id in s.
func (p *Progression) Price(s *game.State, id game.ItemID) (float64, error) {
	if _, err := game.ParseItemID(string(id)); err != nil {
		return 0, err
	}
	return Price(*s.ShopItems.Get(id), p.params.PriceGrowth), nil
}

// Purchase describes a completed buy.
type Purchase struct {
	Item  game.ItemID `json:"itemId"`
	Price float64     `json:"price"`
	Owned uint32      `json:"owned"`
}

// Buy debits the pre-purchase price, increments the owned count and
// applies the item's effect. Insufficient funds leaves s untouched.
func (p *Progression) Buy(s *game.State, id game.ItemID) (Purchase, error) {
	price, err := p.Price(s, id)
	if err != nil {
		return Purchase{}, err
	}
	item := s.ShopItems.Get(id)

	if s.Clicks < price {
		e := events.New(events.PurchaseRejected)
		e.ItemID = string(id)
		e.Value = price
		p.bus.Emit(e)
		return Purchase{}, fmt.Errorf("%w: %s costs %s, have %s", ErrInsufficientFunds,
			id, game.FormatCount(price), game.FormatCount(s.Clicks))
	}

	s.Clicks -= price
	if item.Owned < math.MaxUint32 {
		item.Owned++
	}
	switch id {
	case game.ItemMinion:
		s.Minions = item.Owned
	case game.ItemMultiplier:
		s.ClickMultiplier += p.params.MultiplierStep
	case game.ItemChaosBooster:
		// effects.EffectiveIntensity reads the owned count directly.
	}

	e := events.New(events.PurchaseMade)
	e.ItemID = string(id)
	e.Owned = item.Owned
	e.Value = price
	p.bus.Emit(e)

	return Purchase{Item: id, Price: price, Owned: item.Owned}, nil
}
