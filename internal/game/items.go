package game

import "fmt"

// ItemID names one of the three fixed shop items.
type ItemID string

const (
	ItemMinion       ItemID = "minion"
	ItemMultiplier   ItemID = "multiplier"
	ItemChaosBooster ItemID = "chaosBooster"
)

// Items lists the shop in display order.
var Items = []ItemID{ItemMinion, ItemMultiplier, ItemChaosBooster}

// ItemInfo is shop metadata that is not persisted.
type ItemInfo struct {
	Name        string
	Description string
	Icon        string
}

var itemInfo = map[ItemID]ItemInfo{
	ItemMinion:       {Name: "Chaos Minion", Description: "Clicks for you, forever.", Icon: "👾"},
	ItemMultiplier:   {Name: "Click Multiplier", Description: "Every click counts for more.", Icon: "✖️"},
	ItemChaosBooster: {Name: "Chaos Booster", Description: "Raises the chaos ceiling.", Icon: "🌀"},
}

// Info returns display metadata for id.
func (id ItemID) Info() ItemInfo {
	return itemInfo[id]
}

// ParseItemID validates a wire item id.
func ParseItemID(s string) (ItemID, error) {
	for _, id := range Items {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownItem, s)
}

// ShopItem is the persisted record of one item.
type ShopItem struct {
	BasePrice float64 `json:"basePrice"`
	Owned     uint32  `json:"owned"`
}

// ShopItems is a struct rather than a map so a partial persisted record
// merges field by field onto the defaults.
type ShopItems struct {
	Minion       ShopItem `json:"minion"`
	Multiplier   ShopItem `json:"multiplier"`
	ChaosBooster ShopItem `json:"chaosBooster"`
}

// DefaultShopItems returns the base prices with nothing owned.
func DefaultShopItems() ShopItems {
	return ShopItems{
		Minion:       ShopItem{BasePrice: 50},
		Multiplier:   ShopItem{BasePrice: 250},
		ChaosBooster: ShopItem{BasePrice: 1000},
	}
}

// Get returns a pointer to the item record. Unknown ids panic: ItemID
// values only come from the constants or ParseItemID.
func (s *ShopItems) Get(id ItemID) *ShopItem {
	switch id {
	case ItemMinion:
		return &s.Minion
	case ItemMultiplier:
		return &s.Multiplier
	case ItemChaosBooster:
		return &s.ChaosBooster
	}
	panic(fmt.Sprintf("game: unknown item id %q", id))
}
