package model

// DrawResult is the outcome of a single pull.
type DrawResult struct {
	Weapon    Weapon `json:"weapon"`
	Rarity    Rarity `json:"rarity"`
	IsNew     bool   `json:"is_new"`
	OwnedNow  int    `json:"owned_now"`
	PityAfter Pity   `json:"pity_after"`
}

// DrawSummary aggregates a batch of pulls.
type DrawSummary struct {
	UserID     string       `json:"user_id"`
	Requested  int          `json:"requested"`
	Cost       int          `json:"cost"`
	Results    []DrawResult `json:"results"`
	FatesLeft  int          `json:"fates_left"`
	TotalDraws int          `json:"total_draws"`
	Pity       Pity         `json:"pity"`
}

// ArmoryReport is the computed combat summary of a user's weapon bag.
type ArmoryReport struct {
	UserID      string         `json:"user_id"`
	TotalOwned  int            `json:"total_owned"`
	TotalDraws  int            `json:"total_draws"`
	ByRarity    map[Rarity]int `json:"by_rarity"`
	CombatPower int            `json:"combat_power"`
	Rank        string         `json:"rank"`
}
