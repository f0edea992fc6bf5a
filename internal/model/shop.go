package model

// ShopItem is one purchasable entry. Stock of -1 means unlimited.
type ShopItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
	Usable      bool   `json:"usable"`
	Effect      string `json:"effect,omitempty"`
	EffectValue int    `json:"effect_value,omitempty"`
}

// Unlimited reports whether the item never runs out.
func (s ShopItem) Unlimited() bool { return s.Stock < 0 }

// PurchaseReceipt summarizes a completed buy.
type PurchaseReceipt struct {
	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	Paid      int    `json:"paid"`
	MoneyLeft int    `json:"money_left"`
	OwnedNow  int    `json:"owned_now"`
}

// UseOutcome summarizes consuming an item from the inventory.
type UseOutcome struct {
	UserID   string `json:"user_id"`
	ItemID   string `json:"item_id"`
	Effect   string `json:"effect"`
	Applied  int    `json:"applied"`
	OwnedNow int    `json:"owned_now"`
}

// Backpack is a user's item inventory alongside their wallet balances.
type Backpack struct {
	UserID string         `json:"user_id"`
	Money  int            `json:"money"`
	Fates  int            `json:"fates"`
	Items  map[string]int `json:"items"`
}

// GiftOutcome summarizes transferring an item between users.
type GiftOutcome struct {
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	LoveGain int    `json:"love_gain"`
}
