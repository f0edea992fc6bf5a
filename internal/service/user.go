package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/pkg/apierror"
)

const (
	signBase        = 10
	signStreakCap   = 30
	signNewUserGift = 5
	signLuckyPct    = 10
)

// Where the user lives nudges the daily reward. Unknown places count as
// home.
var signPlaceBonus = map[string]int{
	"home":     0,
	"city":     2,
	"business": 3,
	"bank":     1,
	"prison":   -1,
}

// UserService covers profile access and the daily sign-in.
type UserService struct {
	users repository.UserRepository
	rng   RandomSource
	loc   *time.Location
	log   *zap.SugaredLogger
}

// RandomSource matches the gacha package's source so services share one
// seedable stream in tests.
type RandomSource interface {
	Float64() float64
}

// NewUserService creates a user service operating in the given timezone.
func NewUserService(users repository.UserRepository, rng RandomSource, loc *time.Location, log *zap.SugaredLogger) *UserService {
	if loc == nil {
		loc = time.UTC
	}
	return &UserService{users: users, rng: rng, loc: loc, log: log}
}

// Get returns the user's record, defaulted if new.
func (s *UserService) Get(ctx context.Context, id string) (*model.UserRecord, error) {
	return s.users.Get(ctx, id)
}

// List returns all known user ids.
func (s *UserService) List(ctx context.Context) ([]string, error) {
	return s.users.List(ctx)
}

// Delete removes a user record.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// SetNickname updates the display name.
func (s *UserService) SetNickname(ctx context.Context, id, nickname string) (*model.UserRecord, error) {
	if nickname == "" || len(nickname) > 32 {
		return nil, apierror.ValidationError("nickname must be 1-32 characters")
	}
	return s.users.Update(ctx, id, func(u *model.UserRecord) error {
		u.Profile.Nickname = nickname
		return nil
	})
}

// GrantMoney adjusts a user's balance by amount. Negative grants are
// allowed for corrections but never push the balance below zero.
func (s *UserService) GrantMoney(ctx context.Context, id string, amount int) (*model.UserRecord, error) {
	if amount == 0 {
		return nil, apierror.ValidationError("amount must be non-zero")
	}
	rec, err := s.users.Update(ctx, id, func(u *model.UserRecord) error {
		u.Home.Money += amount
		if u.Home.Money < 0 {
			u.Home.Money = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Infow("money granted", "user", id, "amount", amount, "balance", rec.Home.Money)
	return rec, nil
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// SignIn performs the once-per-day check-in. Consecutive days grow a
// streak (capped) that feeds a bonus; where the user lives, their house
// level and affection add small extras, and one sign-in in ten hits a
// lucky payout.
func (s *UserService) SignIn(ctx context.Context, id string) (*model.SignResult, error) {
	now := time.Now().In(s.loc)
	today := dayKey(now)
	yesterday := dayKey(now.AddDate(0, 0, -1))

	res := &model.SignResult{UserID: id}

	_, err := s.users.Update(ctx, id, func(u *model.UserRecord) error {
		if u.Sign.LastSign == today {
			return apierror.Conflict("already signed in today")
		}

		res.FirstEver = u.Sign.LastSign == ""
		if u.Sign.LastSign == yesterday {
			u.Sign.StreakDays++
		} else {
			u.Sign.StreakDays = 1
		}
		if u.Sign.StreakDays > signStreakCap {
			u.Sign.StreakDays = signStreakCap
		}
		u.Sign.LastSign = today

		res.Streak = u.Sign.StreakDays
		res.Base = signBase

		streakBonus := u.Sign.StreakDays / 3
		if streakBonus > 5 {
			streakBonus = 5
		}
		res.Bonus = streakBonus + signPlaceBonus[u.Home.Place] + u.Home.HouseLevel/2 + u.Home.Love/50

		if s.rng.Float64()*100 < signLuckyPct {
			res.Lucky = true
			res.LuckyGain = 5 + int(s.rng.Float64()*11)
		}

		res.Total = res.Base + res.Bonus + res.LuckyGain
		if res.FirstEver {
			res.Total += signNewUserGift
		}

		u.Home.Money += res.Total
		res.MoneyNow = u.Home.Money
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("sign-in complete", "user", id, "streak", res.Streak, "total", res.Total, "lucky", res.Lucky)
	return res, nil
}
