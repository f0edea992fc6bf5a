package gacha

import "akasha-terminal-api/internal/model"

// Tuning holds the probability table driving tier resolution. All
// percentages are on a 0..100 scale.
type Tuning struct {
	FiveStarBase  float64 // base five-star chance
	FourStarBase  float64 // base four-star chance
	SoftPityStart int     // misses after which the five-star ramp begins
	SoftPityStep  float64 // percentage points added per miss past the start
	FourStarPity  int     // consecutive three-star misses forcing a four-star
}

// DefaultTuning mirrors the standard banner rates.
func DefaultTuning() Tuning {
	return Tuning{
		FiveStarBase:  1.0,
		FourStarBase:  5.0,
		SoftPityStart: 64,
		SoftPityStep:  6.5,
		FourStarPity:  9,
	}
}

// EffectiveFiveStarPct returns the five-star chance for the current miss
// streak. Past the soft-pity start every further miss adds a fixed ramp,
// capped at 100.
func (t Tuning) EffectiveFiveStarPct(topMiss int) float64 {
	eff := t.FiveStarBase
	if topMiss > t.SoftPityStart {
		eff += float64(topMiss-t.SoftPityStart) * t.SoftPityStep
	}
	if eff > 100 {
		eff = 100
	}
	return eff
}

// ResolveTier rolls one draw's rarity from the pity state. The roll is a
// single uniform value scaled to 0..100 and compared against stacked
// thresholds, so the five-star ramp eats into the four-star band rather
// than the three-star band. Four-star hard pity bypasses the roll once the
// miss streak reaches the threshold.
func (t Tuning) ResolveTier(p model.Pity, rng RandomSource) model.Rarity {
	effTop := t.EffectiveFiveStarPct(p.TopMiss)
	r := rng.Float64() * 100

	switch {
	case r <= effTop:
		return model.RarityFiveStar
	case p.MidMiss >= t.FourStarPity:
		return model.RarityFourStar
	case r <= effTop+t.FourStarBase:
		return model.RarityFourStar
	default:
		return model.RarityThreeStar
	}
}

// ApplyPity advances the miss counters for a resolved tier. A five-star
// clears both counters; a four-star clears only the four-star counter.
func ApplyPity(p model.Pity, tier model.Rarity) model.Pity {
	switch tier {
	case model.RarityFiveStar:
		return model.Pity{}
	case model.RarityFourStar:
		return model.Pity{TopMiss: p.TopMiss + 1, MidMiss: 0}
	default:
		return model.Pity{TopMiss: p.TopMiss + 1, MidMiss: p.MidMiss + 1}
	}
}
