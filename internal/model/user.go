package model

import "time"

// UserRecord is the per-user persisted document. One JSON file per user id,
// created lazily with zero/empty defaults on first interaction.
type UserRecord struct {
	ID      string         `json:"id"`
	Profile *Profile       `json:"profile,omitempty"`
	Battle  *BattleStats   `json:"battle,omitempty"`
	Home    *Home          `json:"home,omitempty"`
	Quest   *QuestLog      `json:"quest,omitempty"`
	Weapons *WeaponBag     `json:"weapons,omitempty"`
	Pity    *Pity          `json:"pity,omitempty"`
	Items   map[string]int `json:"items,omitempty"`
	Sign    *SignInfo      `json:"sign,omitempty"`
}

// Profile holds basic identity fields.
type Profile struct {
	Nickname   string `json:"nickname"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
	CreatedAt  int64  `json:"created_at"`
}

// BattleStats holds the duel-relevant progression state.
type BattleStats struct {
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
	LevelName  string `json:"levelname"`
	Privilege  int    `json:"privilege"`
}

// Home holds money, relationship and housing state.
type Home struct {
	Money      int    `json:"money"`
	Love       int    `json:"love"`
	SpouseID   string `json:"spouse_id"`
	SpouseName string `json:"spouse_name"`
	Place      string `json:"place"`
	HouseLevel int    `json:"house_level"`
	Workshop   int    `json:"workshop_level"`
}

// TaskProgress tracks one assigned task.
type TaskProgress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

// QuestLog holds assigned tasks and accumulated quest points.
type QuestLog struct {
	Daily           map[string]*TaskProgress `json:"daily"`
	Weekly          map[string]*TaskProgress `json:"weekly"`
	QuestPoints     int                      `json:"quest_points"`
	LastDailyReset  string                   `json:"last_daily_reset"`
	LastWeeklyReset string                   `json:"last_weekly_reset"`
}

// TierDetail is the per-rarity breakdown of owned weapons. Count is the
// number of DISTINCT weapons ever acquired in the tier; repeat pulls only
// bump the per-weapon counter in WeaponBag.Counts.
type TierDetail struct {
	Count   int      `json:"count"`
	Weapons []Weapon `json:"weapons"`
}

// WeaponBag is the gacha inventory: the fate currency spent per draw, the
// lifetime draw counter, per-weapon owned counts and the by-tier breakdown.
type WeaponBag struct {
	Fates      int                    `json:"fates"`
	TotalDraws int                    `json:"total_draws"`
	Counts     map[string]int         `json:"counts"`
	Tiers      map[Rarity]*TierDetail `json:"tiers"`
}

// Pity holds the two miss counters driving soft/hard pity.
// TopMiss resets on every five-star pull and increments otherwise;
// MidMiss resets on four-star-or-better and increments on three-star.
type Pity struct {
	TopMiss int `json:"top_tier_miss"`
	MidMiss int `json:"mid_tier_miss"`
}

// SignInfo tracks daily sign-in state.
type SignInfo struct {
	LastSign   string `json:"last_sign"`
	StreakDays int    `json:"streak_days"`
}

// NewWeaponBag returns an empty, fully initialized bag.
func NewWeaponBag() *WeaponBag {
	return &WeaponBag{
		Counts: make(map[string]int),
		Tiers: map[Rarity]*TierDetail{
			RarityThreeStar: {},
			RarityFourStar:  {},
			RarityFiveStar:  {},
		},
	}
}

// FillDefaults populates any missing section with its zero-value template.
// Sections already present are left untouched, but maps inside a present
// section are still initialized: a hand-edited or partially written record
// may carry a section with its maps omitted, and every caller assumes they
// are writable. It reports whether anything was added, so callers know the
// record needs persisting.
func (u *UserRecord) FillDefaults(now time.Time) bool {
	changed := false
	if u.Profile == nil {
		u.Profile = &Profile{Level: 1, CreatedAt: now.Unix()}
		changed = true
	}
	if u.Battle == nil {
		u.Battle = &BattleStats{LevelName: "unranked"}
		changed = true
	}
	if u.Home == nil {
		u.Home = &Home{Money: 100, Place: "home", Workshop: 1}
		changed = true
	}
	if u.Quest == nil {
		u.Quest = &QuestLog{}
		changed = true
	}
	if u.Quest.Daily == nil {
		u.Quest.Daily = make(map[string]*TaskProgress)
		changed = true
	}
	if u.Quest.Weekly == nil {
		u.Quest.Weekly = make(map[string]*TaskProgress)
		changed = true
	}
	if u.Weapons == nil {
		u.Weapons = &WeaponBag{}
		changed = true
	}
	if u.Weapons.Counts == nil {
		u.Weapons.Counts = make(map[string]int)
		changed = true
	}
	if u.Weapons.Tiers == nil {
		u.Weapons.Tiers = map[Rarity]*TierDetail{
			RarityThreeStar: {},
			RarityFourStar:  {},
			RarityFiveStar:  {},
		}
		changed = true
	}
	if u.Pity == nil {
		u.Pity = &Pity{}
		changed = true
	}
	if u.Items == nil {
		u.Items = make(map[string]int)
		changed = true
	}
	if u.Sign == nil {
		u.Sign = &SignInfo{}
		changed = true
	}
	return changed
}
