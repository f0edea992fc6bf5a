package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/logger"
)

func newUserService(t *testing.T, rng RandomSource) *UserService {
	t.Helper()
	if rng == nil {
		rng = &scriptedRNG{vals: []float64{0.99}} // never lucky
	}
	return NewUserService(newTestUserRepo(t), rng, time.UTC, logger.Nop())
}

func TestSignInFirstEver(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	res, err := svc.SignIn(ctx, "fresh")
	require.NoError(t, err)

	assert.True(t, res.FirstEver)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 10, res.Base)
	assert.False(t, res.Lucky)
	// base 10 + house level 0 bonus + new user gift 5
	assert.Equal(t, 15, res.Total)
	assert.Equal(t, 115, res.MoneyNow) // 100 starting money
}

func TestSignInTwiceSameDayRejected(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "eager")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "eager")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONFLICT", apiErr.Code)
}

func TestSignInStreakContinuesFromYesterday(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := svc.users.Update(ctx, "streaker", func(u *model.UserRecord) error {
		u.Sign.LastSign = yesterday
		u.Sign.StreakDays = 6
		return nil
	})
	require.NoError(t, err)

	res, err := svc.SignIn(ctx, "streaker")
	require.NoError(t, err)
	assert.Equal(t, 7, res.Streak)
	assert.False(t, res.FirstEver)
	// streak bonus 7/3 = 2
	assert.Equal(t, 12, res.Total)
}

func TestSignInStreakBreaksAfterGap(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	lastWeek := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	_, err := svc.users.Update(ctx, "lapsed", func(u *model.UserRecord) error {
		u.Sign.LastSign = lastWeek
		u.Sign.StreakDays = 20
		return nil
	})
	require.NoError(t, err)

	res, err := svc.SignIn(ctx, "lapsed")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
}

func TestSignInLuckyPayout(t *testing.T) {
	// lucky roll 0.05 → lucky, bonus roll 0.5 → 5 + 5 = 10
	svc := newUserService(t, &scriptedRNG{vals: []float64{0.05, 0.5}})
	ctx := context.Background()

	res, err := svc.SignIn(ctx, "lucky")
	require.NoError(t, err)

	assert.True(t, res.Lucky)
	assert.Equal(t, 10, res.LuckyGain)
}

func TestSetNicknameValidation(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	_, err := svc.SetNickname(ctx, "n", "")
	require.Error(t, err)

	rec, err := svc.SetNickname(ctx, "n", "Traveler")
	require.NoError(t, err)
	assert.Equal(t, "Traveler", rec.Profile.Nickname)
}

func TestGrantMoney(t *testing.T) {
	svc := newUserService(t, nil)
	ctx := context.Background()

	rec, err := svc.GrantMoney(ctx, "payee", 250)
	require.NoError(t, err)
	assert.Equal(t, 350, rec.Home.Money)

	// Negative corrections floor at zero.
	rec, err = svc.GrantMoney(ctx, "payee", -1000)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Home.Money)

	_, err = svc.GrantMoney(ctx, "payee", 0)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestSignInPlaceHouseAndLoveBonuses(t *testing.T) {
	svc := newUserService(t, &scriptedRNG{vals: []float64{0.99}}) // no lucky roll
	ctx := context.Background()

	_, err := svc.users.Update(ctx, "mayor", func(u *model.UserRecord) error {
		u.Home.Place = "business"
		u.Home.HouseLevel = 4
		u.Home.Love = 120
		return nil
	})
	require.NoError(t, err)

	res, err := svc.SignIn(ctx, "mayor")
	require.NoError(t, err)

	// business +3, house 4/2 = 2, love 120/50 = 2, streak 1/3 = 0.
	assert.Equal(t, 7, res.Bonus)
	assert.Equal(t, 22, res.Total, "base 10 + bonus 7 + first-ever 5")
}

func TestSignInPrisonPenalty(t *testing.T) {
	svc := newUserService(t, &scriptedRNG{vals: []float64{0.99}})
	ctx := context.Background()

	_, err := svc.users.Update(ctx, "inmate", func(u *model.UserRecord) error {
		u.Home.Place = "prison"
		return nil
	})
	require.NoError(t, err)

	res, err := svc.SignIn(ctx, "inmate")
	require.NoError(t, err)

	assert.Equal(t, -1, res.Bonus)
	assert.Equal(t, 14, res.Total)
}
