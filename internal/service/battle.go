package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"akasha-terminal-api/internal/cache"
	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/pkg/apierror"
)

// BattleTuning mirrors the duel settings from configuration. BotID names
// the host bot's own user id; challenging it never touches a record.
type BattleTuning struct {
	Cooldown   time.Duration
	LevelCoeff float64
	WinExp     int
	WinMoney   int
	BotID      string
}

// BattleService runs duels between users. Challenge cooldowns live in the
// cache so they survive however the deployment configures it.
type BattleService struct {
	users  repository.UserRepository
	cache  cache.Cache
	rng    RandomSource
	tuning BattleTuning
	log    *zap.SugaredLogger
}

// NewBattleService creates a battle service.
func NewBattleService(users repository.UserRepository, c cache.Cache, rng RandomSource, tuning BattleTuning, log *zap.SugaredLogger) *BattleService {
	if tuning.Cooldown <= 0 {
		tuning.Cooldown = 5 * time.Minute
	}
	if tuning.LevelCoeff == 0 {
		tuning.LevelCoeff = 2.0
	}
	return &BattleService{users: users, cache: c, rng: rng, tuning: tuning, log: log}
}

func cooldownKey(userID string) string { return "duel:cooldown:" + userID }

// weaponWeight scores an arsenal for the win-chance formula: each distinct
// five-star counts 3, four-star 2, three-star 1.
func weaponWeight(bag *model.WeaponBag) int {
	w := 0
	for tier, detail := range bag.Tiers {
		if detail == nil {
			continue
		}
		switch tier {
		case model.RarityFiveStar:
			w += detail.Count * 3
		case model.RarityFourStar:
			w += detail.Count * 2
		default:
			w += detail.Count
		}
	}
	return w
}

// winChance computes the challenger's percent chance to win: an even 50
// shifted by the level gap and the arsenal gap, clamped to 0..100.
func (s *BattleService) winChance(challenger, target *model.UserRecord) float64 {
	levelDiff := float64(challenger.Battle.Level - target.Battle.Level)
	weightDiff := float64(weaponWeight(challenger.Weapons) - weaponWeight(target.Weapons))

	chance := 50 + s.tuning.LevelCoeff*levelDiff + weightDiff
	if chance < 0 {
		chance = 0
	}
	if chance > 100 {
		chance = 100
	}
	return chance
}

// Duel resolves a challenge. The challenger enters cooldown regardless of
// outcome; the winner earns exp and money and the loser gets a mute
// penalty to serve, longer for a defeated target than for a failed
// challenger.
func (s *BattleService) Duel(ctx context.Context, challengerID, targetID string) (*model.DuelResult, error) {
	if challengerID == targetID {
		return nil, apierror.ValidationError("cannot duel yourself")
	}

	if ttl, err := s.cache.TTL(ctx, cooldownKey(challengerID)); err == nil {
		return nil, apierror.Cooldown(fmt.Sprintf(
			"next duel available in %s", ttl.Round(time.Second)))
	}

	res := &model.DuelResult{ChallengerID: challengerID, TargetID: targetID}

	// Challenging the bot itself is a guaranteed loss served with a mute;
	// the bot has no record to settle against.
	if s.tuning.BotID != "" && targetID == s.tuning.BotID {
		res.WinnerID, res.LoserID = targetID, challengerID
		res.WinChance = 0
		res.MuteMinutes = 1 + int(s.rng.Float64()*3) // 1-3
		if err := s.cache.Set(ctx, cooldownKey(challengerID), []byte("1"), s.tuning.Cooldown); err != nil {
			s.log.Warnw("failed to set duel cooldown", "user", challengerID, "error", err)
		}
		s.log.Infow("duel against the bot", "challenger", challengerID, "mute_minutes", res.MuteMinutes)
		return res, nil
	}

	err := s.users.UpdatePair(ctx, challengerID, targetID, func(ch, tg *model.UserRecord) error {
		if ch.Battle.Privilege > 0 && tg.Battle.Privilege > 0 {
			return apierror.Conflict("privileged users cannot duel each other")
		}

		res.WinChance = s.winChance(ch, tg)
		res.Roll = s.rng.Float64() * 100

		challengerWins := res.Roll < res.WinChance
		if challengerWins {
			res.WinnerID, res.LoserID = challengerID, targetID
			res.MuteMinutes = 1 + int(s.rng.Float64()*5) // 1-5
			ch.Battle.Experience += s.tuning.WinExp
			ch.Home.Money += s.tuning.WinMoney
			applyLevelUps(ch.Battle)
			res.ExpGain = s.tuning.WinExp
			res.MoneyGain = s.tuning.WinMoney
		} else {
			res.WinnerID, res.LoserID = targetID, challengerID
			res.MuteMinutes = 1 + int(s.rng.Float64()*3) // 1-3
			tg.Battle.Experience += s.tuning.WinExp
			tg.Home.Money += s.tuning.WinMoney
			applyLevelUps(tg.Battle)
			res.ExpGain = s.tuning.WinExp
			res.MoneyGain = s.tuning.WinMoney
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cooldownKey(challengerID), []byte("1"), s.tuning.Cooldown); err != nil {
		s.log.Warnw("failed to set duel cooldown", "user", challengerID, "error", err)
	}

	s.log.Infow("duel resolved",
		"challenger", challengerID, "target", targetID,
		"winner", res.WinnerID, "chance", res.WinChance, "roll", res.Roll)
	return res, nil
}

// CooldownRemaining reports how long until the user may duel again.
func (s *BattleService) CooldownRemaining(ctx context.Context, userID string) (time.Duration, error) {
	ttl, err := s.cache.TTL(ctx, cooldownKey(userID))
	if err == cache.ErrCacheMiss {
		return 0, nil
	}
	return ttl, err
}

// Battle level names, lowest threshold first.
var levelNames = []struct {
	level int
	name  string
}{
	{1, "unranked"},
	{5, "bronze duelist"},
	{10, "silver duelist"},
	{20, "gold duelist"},
	{35, "platinum duelist"},
	{50, "grandmaster"},
}

// applyLevelUps consumes accumulated experience into levels. Each level
// costs level*100 exp.
func applyLevelUps(b *model.BattleStats) {
	if b.Level < 1 {
		b.Level = 1
	}
	for b.Experience >= b.Level*100 {
		b.Experience -= b.Level * 100
		b.Level++
	}
	for _, ln := range levelNames {
		if b.Level >= ln.level {
			b.LevelName = ln.name
		}
	}
}
