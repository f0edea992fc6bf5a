package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"akasha-terminal-api/internal/catalog"
	"akasha-terminal-api/internal/gacha"
	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/pkg/apierror"
)

// DrawService runs gacha batches against user records.
type DrawService struct {
	users    repository.UserRepository
	history  repository.HistoryRepository
	catalog  *catalog.Catalog
	tuning   gacha.Tuning
	rng      gacha.RandomSource
	drawCost int
	maxBatch int
	log      *zap.SugaredLogger
}

// NewDrawService creates a draw service. history may be nil when the audit
// log is disabled.
func NewDrawService(
	users repository.UserRepository,
	history repository.HistoryRepository,
	cat *catalog.Catalog,
	tuning gacha.Tuning,
	rng gacha.RandomSource,
	drawCost, maxBatch int,
	log *zap.SugaredLogger,
) *DrawService {
	if rng == nil {
		rng = gacha.DefaultRNG()
	}
	if drawCost <= 0 {
		drawCost = 160
	}
	if maxBatch <= 0 {
		maxBatch = 10
	}
	return &DrawService{
		users:    users,
		history:  history,
		catalog:  cat,
		tuning:   tuning,
		rng:      rng,
		drawCost: drawCost,
		maxBatch: maxBatch,
		log:      log,
	}
}

// Relationship affinity gained alongside a rare pull when a spouse is bound.
const (
	loveOnFiveStar = 30
	loveOnFourStar = 20
)

// ExecuteBatch performs count draws for one user. The whole batch holds
// the user's lock, but every draw settles in its own write: a crash
// mid-batch keeps the draws the user already received. The cost for the
// full batch is still checked up front, so an underfunded request mutates
// nothing and retrying it is safe.
func (s *DrawService) ExecuteBatch(ctx context.Context, userID string, count int) (*model.DrawSummary, error) {
	if count < 1 || count > s.maxBatch {
		return nil, apierror.ValidationError(fmt.Sprintf("draw count must be between 1 and %d", s.maxBatch))
	}

	cost := count * s.drawCost
	summary := &model.DrawSummary{
		UserID:    userID,
		Requested: count,
		Cost:      cost,
		Results:   make([]model.DrawResult, 0, count),
	}
	var events []repository.DrawEvent

	err := s.users.WithLock(ctx, userID, func(txn repository.UserTxn) error {
		u := txn.User()
		if u.Weapons.Fates < cost {
			return apierror.InsufficientFunds(fmt.Sprintf(
				"need %d fates, have %d", cost, u.Weapons.Fates))
		}

		now := time.Now()
		for i := 0; i < count; i++ {
			u.Weapons.Fates -= s.drawCost

			tier := s.tuning.ResolveTier(*u.Pity, s.rng)
			weapon, err := s.catalog.PickRandom(tier, s.rng.Float64())
			if err != nil {
				return err
			}

			*u.Pity = gacha.ApplyPity(*u.Pity, tier)
			u.Weapons.TotalDraws++

			key := strconv.Itoa(weapon.ID)
			isNew := u.Weapons.Counts[key] == 0
			u.Weapons.Counts[key]++

			detail := u.Weapons.Tiers[tier]
			if detail == nil {
				detail = &model.TierDetail{}
				u.Weapons.Tiers[tier] = detail
			}
			if isNew {
				detail.Count++
				detail.Weapons = append(detail.Weapons, weapon)
			}

			if u.Home.SpouseID != "" {
				switch tier {
				case model.RarityFiveStar:
					u.Home.Love += loveOnFiveStar
				case model.RarityFourStar:
					u.Home.Love += loveOnFourStar
				}
			}

			if err := txn.Save(); err != nil {
				return err
			}

			summary.Results = append(summary.Results, model.DrawResult{
				Weapon:    weapon,
				Rarity:    tier,
				IsNew:     isNew,
				OwnedNow:  u.Weapons.Counts[key],
				PityAfter: *u.Pity,
			})
			events = append(events, repository.DrawEvent{
				UserID:   userID,
				WeaponID: weapon.ID,
				Rarity:   int(tier),
				IsNew:    isNew,
				DrawnAt:  now,
			})
		}

		summary.FatesLeft = u.Weapons.Fates
		summary.TotalDraws = u.Weapons.TotalDraws
		summary.Pity = *u.Pity
		return nil
	})
	if err != nil {
		return nil, err
	}

	// History is an audit trail, not part of the draw transaction. A
	// failed append must not undo a draw the user already received.
	if s.history != nil {
		if err := s.history.AppendDraws(ctx, events); err != nil {
			s.log.Warnw("draw history append failed", "user", userID, "error", err)
		}
	}

	s.log.Infow("draw batch complete",
		"user", userID, "count", count, "cost", cost,
		"fates_left", summary.FatesLeft, "pity", summary.Pity)
	return summary, nil
}

// GrantFates adds fate currency to a user. Negative amounts are rejected.
func (s *DrawService) GrantFates(ctx context.Context, userID string, amount int) (*model.UserRecord, error) {
	if amount <= 0 {
		return nil, apierror.ValidationError("amount must be positive")
	}
	return s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		u.Weapons.Fates += amount
		return nil
	})
}

// RecentDraws returns the user's newest history entries.
func (s *DrawService) RecentDraws(ctx context.Context, userID string, limit int) ([]repository.DrawEvent, error) {
	if s.history == nil {
		return nil, apierror.NotFound("draw history is disabled")
	}
	return s.history.RecentDraws(ctx, userID, limit)
}

// Armory computes the user's combat summary from the weapon bag.
func (s *DrawService) Armory(ctx context.Context, userID string) (*model.ArmoryReport, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &model.ArmoryReport{
		UserID:     userID,
		TotalDraws: u.Weapons.TotalDraws,
		ByRarity:   make(map[model.Rarity]int),
	}
	for tier, detail := range u.Weapons.Tiers {
		if detail == nil {
			continue
		}
		report.ByRarity[tier] = detail.Count
		report.TotalOwned += detail.Count
	}

	report.CombatPower = report.ByRarity[model.RarityFiveStar]*500 +
		report.ByRarity[model.RarityFourStar]*100 +
		report.ByRarity[model.RarityThreeStar]*20

	switch {
	case report.CombatPower >= 3000:
		report.Rank = "Adventurer Legend"
	case report.CombatPower >= 1500:
		report.Rank = "Seasoned Adventurer"
	case report.CombatPower >= 500:
		report.Rank = "Rising Adventurer"
	default:
		report.Rank = "Fresh Traveler"
	}
	return report, nil
}
