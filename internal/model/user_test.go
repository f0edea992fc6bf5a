package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillDefaultsPopulatesMissingSections(t *testing.T) {
	u := &UserRecord{ID: "x"}
	changed := u.FillDefaults(time.Now())

	assert.True(t, changed)
	assert.NotNil(t, u.Profile)
	assert.NotNil(t, u.Weapons)
	assert.NotNil(t, u.Pity)
	assert.NotNil(t, u.Items)
	assert.Equal(t, 100, u.Home.Money)
	assert.Equal(t, 1, u.Home.Workshop)

	// second pass is a no-op
	assert.False(t, u.FillDefaults(time.Now()))
}

func TestFillDefaultsKeepsExistingSections(t *testing.T) {
	u := &UserRecord{
		ID:   "x",
		Pity: &Pity{TopMiss: 77, MidMiss: 3},
	}
	u.FillDefaults(time.Now())

	assert.Equal(t, 77, u.Pity.TopMiss)
	assert.Equal(t, 3, u.Pity.MidMiss)
}

func TestPityJSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(Pity{TopMiss: 5, MidMiss: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"top_tier_miss": 5, "mid_tier_miss": 2}`, string(raw))
}

func TestRarityForID(t *testing.T) {
	assert.Equal(t, RarityThreeStar, RarityForID(300))
	assert.Equal(t, RarityThreeStar, RarityForID(399))
	assert.Equal(t, RarityFourStar, RarityForID(400))
	assert.Equal(t, RarityFiveStar, RarityForID(599))
	assert.Equal(t, Rarity(0), RarityForID(299))
	assert.Equal(t, Rarity(0), RarityForID(600))
	assert.Equal(t, Rarity(0), RarityForID(-1))
}

func TestTaskDefDaily(t *testing.T) {
	assert.True(t, TaskDef{ID: "daily_x"}.Daily())
	assert.False(t, TaskDef{ID: "weekly_x"}.Daily())
}

func TestFillDefaultsInitializesInnerMaps(t *testing.T) {
	// A section may be present with its maps omitted, e.g. a record parsed
	// from {"weapons":{"fates":1600}}.
	var u UserRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"vet","weapons":{"fates":1600},"quest":{"quest_points":3}}`), &u))

	changed := u.FillDefaults(time.Now())
	assert.True(t, changed)

	require.NotNil(t, u.Weapons.Counts)
	require.NotNil(t, u.Weapons.Tiers)
	require.NotNil(t, u.Quest.Daily)
	require.NotNil(t, u.Quest.Weekly)

	// Writable without panicking, and existing values survive.
	u.Weapons.Counts["500"]++
	u.Quest.Daily["daily_x"] = &TaskProgress{Target: 1}
	assert.Equal(t, 1600, u.Weapons.Fates)
	assert.Equal(t, 3, u.Quest.QuestPoints)
}
