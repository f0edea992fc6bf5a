package model

// Rarity is the weapon tier, serialized as its star count.
type Rarity int

const (
	RarityThreeStar Rarity = 3
	RarityFourStar  Rarity = 4
	RarityFiveStar  Rarity = 5
)

// Catalog id ranges. A weapon's tier is derived from its numeric id,
// never stored alongside it.
const (
	ThreeStarMinID = 300
	ThreeStarMaxID = 399
	FourStarMinID  = 400
	FourStarMaxID  = 499
	FiveStarMinID  = 500
	FiveStarMaxID  = 599
)

// Weapon is a catalog entry.
type Weapon struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Rarity classifies the weapon by its id range. Ids outside every range
// return 0; the catalog loader rejects such entries up front.
func (w Weapon) Rarity() Rarity {
	return RarityForID(w.ID)
}

// RarityForID maps a catalog id to its tier, or 0 when out of range.
func RarityForID(id int) Rarity {
	switch {
	case id >= ThreeStarMinID && id <= ThreeStarMaxID:
		return RarityThreeStar
	case id >= FourStarMinID && id <= FourStarMaxID:
		return RarityFourStar
	case id >= FiveStarMinID && id <= FiveStarMaxID:
		return RarityFiveStar
	default:
		return 0
	}
}
