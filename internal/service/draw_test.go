package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akasha-terminal-api/internal/gacha"
	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/internal/store"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/logger"
)

func newDrawService(t *testing.T, rng gacha.RandomSource) (*DrawService, *fakeHistory) {
	t.Helper()
	hist := &fakeHistory{}
	svc := NewDrawService(newTestUserRepo(t), hist, newTestCatalog(t),
		gacha.DefaultTuning(), rng, 160, 10, logger.Nop())
	return svc, hist
}

func fund(t *testing.T, svc *DrawService, userID string, fates int) {
	t.Helper()
	_, err := svc.GrantFates(context.Background(), userID, fates)
	require.NoError(t, err)
}

func TestExecuteBatchInsufficientFundsMutatesNothing(t *testing.T) {
	svc, hist := newDrawService(t, gacha.NewSeededRNG(1))
	ctx := context.Background()

	fund(t, svc, "poor", 100) // less than one draw

	_, err := svc.ExecuteBatch(ctx, "poor", 1)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INSUFFICIENT_FUNDS", apiErr.Code)

	rec, err := svc.users.Get(ctx, "poor")
	require.NoError(t, err)
	assert.Equal(t, 100, rec.Weapons.Fates)
	assert.Equal(t, 0, rec.Weapons.TotalDraws)
	assert.Equal(t, model.Pity{}, *rec.Pity)
	assert.Empty(t, hist.events)
}

func TestExecuteBatchRejectsPartialAffordability(t *testing.T) {
	svc, _ := newDrawService(t, gacha.NewSeededRNG(1))
	ctx := context.Background()

	fund(t, svc, "partial", 160*5) // can afford 5, asks for 10

	_, err := svc.ExecuteBatch(ctx, "partial", 10)
	require.Error(t, err)

	rec, _ := svc.users.Get(ctx, "partial")
	assert.Equal(t, 160*5, rec.Weapons.Fates)
	assert.Equal(t, 0, rec.Weapons.TotalDraws)
}

func TestExecuteBatchAccounting(t *testing.T) {
	svc, hist := newDrawService(t, gacha.NewSeededRNG(3))
	ctx := context.Background()

	fund(t, svc, "alice", 160*10)

	summary, err := svc.ExecuteBatch(ctx, "alice", 10)
	require.NoError(t, err)

	assert.Len(t, summary.Results, 10)
	assert.Equal(t, 160*10, summary.Cost)
	assert.Equal(t, 0, summary.FatesLeft)
	assert.Equal(t, 10, summary.TotalDraws)
	assert.Len(t, hist.events, 10)

	rec, err := svc.users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Weapons.TotalDraws)
	assert.Equal(t, *rec.Pity, summary.Pity)
}

func TestExecuteBatchCountValidation(t *testing.T) {
	svc, _ := newDrawService(t, gacha.NewSeededRNG(1))
	ctx := context.Background()

	_, err := svc.ExecuteBatch(ctx, "v", 0)
	require.Error(t, err)
	_, err = svc.ExecuteBatch(ctx, "v", 11)
	require.Error(t, err)
}

func TestFirstAcquisitionTracking(t *testing.T) {
	// rolls: tier roll 0.5 → three-star, pick 0.0 → id 300, repeated
	rng := &scriptedRNG{vals: []float64{0.5, 0.0}}
	svc, _ := newDrawService(t, rng)
	ctx := context.Background()

	fund(t, svc, "dup", 160*2)

	s1, err := svc.ExecuteBatch(ctx, "dup", 1)
	require.NoError(t, err)
	require.True(t, s1.Results[0].IsNew)
	assert.Equal(t, 1, s1.Results[0].OwnedNow)

	s2, err := svc.ExecuteBatch(ctx, "dup", 1)
	require.NoError(t, err)
	require.False(t, s2.Results[0].IsNew)
	assert.Equal(t, 2, s2.Results[0].OwnedNow)

	rec, _ := svc.users.Get(ctx, "dup")
	detail := rec.Weapons.Tiers[model.RarityThreeStar]
	assert.Equal(t, 1, detail.Count, "repeat pulls must not grow the distinct count")
	require.Len(t, detail.Weapons, 1)
	assert.Equal(t, 300, detail.Weapons[0].ID)
}

func TestPityCountersAcrossBatch(t *testing.T) {
	// three three-stars then a five-star: tier rolls 0.5/0.5/0.5/0.005
	rng := &scriptedRNG{vals: []float64{
		0.5, 0.1,
		0.5, 0.1,
		0.5, 0.1,
		0.005, 0.1,
	}}
	svc, _ := newDrawService(t, rng)
	ctx := context.Background()

	fund(t, svc, "pity", 160*4)

	summary, err := svc.ExecuteBatch(ctx, "pity", 4)
	require.NoError(t, err)

	assert.Equal(t, model.Pity{TopMiss: 1, MidMiss: 1}, summary.Results[0].PityAfter)
	assert.Equal(t, model.Pity{TopMiss: 2, MidMiss: 2}, summary.Results[1].PityAfter)
	assert.Equal(t, model.Pity{TopMiss: 3, MidMiss: 3}, summary.Results[2].PityAfter)
	assert.Equal(t, model.RarityFiveStar, summary.Results[3].Rarity)
	assert.Equal(t, model.Pity{}, summary.Results[3].PityAfter)
}

func TestHistoryFailureDoesNotUndoDraw(t *testing.T) {
	svc, hist := newDrawService(t, gacha.NewSeededRNG(5))
	hist.failed = true
	ctx := context.Background()

	fund(t, svc, "audit", 160)

	summary, err := svc.ExecuteBatch(ctx, "audit", 1)
	require.NoError(t, err)
	assert.Len(t, summary.Results, 1)

	rec, _ := svc.users.Get(ctx, "audit")
	assert.Equal(t, 1, rec.Weapons.TotalDraws)
}

func TestConcurrentBatchesSerialize(t *testing.T) {
	svc, _ := newDrawService(t, gacha.NewSeededRNG(9))
	ctx := context.Background()

	const workers = 8
	fund(t, svc, "busy", 160*workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ExecuteBatch(ctx, "busy", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := svc.users.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, workers, rec.Weapons.TotalDraws)
	assert.Equal(t, 0, rec.Weapons.Fates)
}

func TestArmoryReport(t *testing.T) {
	// one five-star then one three-star
	rng := &scriptedRNG{vals: []float64{0.005, 0.0, 0.5, 0.0}}
	svc, _ := newDrawService(t, rng)
	ctx := context.Background()

	fund(t, svc, "rank", 160*2)
	_, err := svc.ExecuteBatch(ctx, "rank", 2)
	require.NoError(t, err)

	report, err := svc.Armory(ctx, "rank")
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalOwned)
	assert.Equal(t, 2, report.TotalDraws)
	assert.Equal(t, 520, report.CombatPower) // 500 + 20
	assert.Equal(t, "Rising Adventurer", report.Rank)
}

func TestExecuteBatchSpouseAffinity(t *testing.T) {
	// Tier roll then pick roll per draw: five-star, four-star, three-star.
	rng := &scriptedRNG{vals: []float64{0.005, 0.0, 0.03, 0.0, 0.5, 0.0}}
	svc, _ := newDrawService(t, rng)
	ctx := context.Background()

	fund(t, svc, "married", 160*3)
	_, err := svc.users.Update(ctx, "married", func(u *model.UserRecord) error {
		u.Home.SpouseID = "beloved"
		return nil
	})
	require.NoError(t, err)

	summary, err := svc.ExecuteBatch(ctx, "married", 3)
	require.NoError(t, err)
	require.Equal(t, model.RarityFiveStar, summary.Results[0].Rarity)
	require.Equal(t, model.RarityFourStar, summary.Results[1].Rarity)
	require.Equal(t, model.RarityThreeStar, summary.Results[2].Rarity)

	rec, err := svc.users.Get(ctx, "married")
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Home.Love, "five-star adds 30, four-star 20, three-star nothing")
}

func TestExecuteBatchNoAffinityWithoutSpouse(t *testing.T) {
	rng := &scriptedRNG{vals: []float64{0.005, 0.0}}
	svc, _ := newDrawService(t, rng)
	ctx := context.Background()

	fund(t, svc, "single", 160)
	_, err := svc.ExecuteBatch(ctx, "single", 1)
	require.NoError(t, err)

	rec, _ := svc.users.Get(ctx, "single")
	assert.Equal(t, 0, rec.Home.Love)
}

func TestExecuteBatchHandlesPartialRecord(t *testing.T) {
	st, err := store.New(t.TempDir(), time.Second, logger.Nop())
	require.NoError(t, err)
	repo := repository.NewJSONUserRepository(st)

	// A record holding only a fate balance, the way an external importer
	// might seed one: every inner map is absent.
	require.NoError(t, st.Write("veteran", map[string]interface{}{
		"weapons": map[string]interface{}{"fates": 1600},
	}))

	svc := NewDrawService(repo, nil, newTestCatalog(t),
		gacha.DefaultTuning(), gacha.NewSeededRNG(11), 160, 10, logger.Nop())

	summary, err := svc.ExecuteBatch(context.Background(), "veteran", 10)
	require.NoError(t, err)
	assert.Len(t, summary.Results, 10)
	assert.Equal(t, 0, summary.FatesLeft)
	assert.Equal(t, 10, summary.TotalDraws)
}

type savesCountingRepo struct {
	repository.UserRepository
	saves int
}

func (r *savesCountingRepo) WithLock(ctx context.Context, id string, fn func(repository.UserTxn) error) error {
	return r.UserRepository.WithLock(ctx, id, func(txn repository.UserTxn) error {
		return fn(&savesCountingTxn{UserTxn: txn, counter: &r.saves})
	})
}

type savesCountingTxn struct {
	repository.UserTxn
	counter *int
}

func (t *savesCountingTxn) Save() error {
	*t.counter++
	return t.UserTxn.Save()
}

func TestExecuteBatchPersistsEveryDraw(t *testing.T) {
	repo := &savesCountingRepo{UserRepository: newTestUserRepo(t)}
	svc := NewDrawService(repo, nil, newTestCatalog(t),
		gacha.DefaultTuning(), gacha.NewSeededRNG(5), 160, 10, logger.Nop())
	ctx := context.Background()

	fund(t, svc, "steady", 160*5)

	summary, err := svc.ExecuteBatch(ctx, "steady", 5)
	require.NoError(t, err)
	require.Len(t, summary.Results, 5)

	assert.Equal(t, 5, repo.saves, "each draw settles in its own write")

	rec, _ := repo.Get(ctx, "steady")
	assert.Equal(t, 0, rec.Weapons.Fates)
	assert.Equal(t, 5, rec.Weapons.TotalDraws)
}
