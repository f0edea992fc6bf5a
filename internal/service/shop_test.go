package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/pkg/apierror"
	"akasha-terminal-api/pkg/logger"
)

func newShopService(t *testing.T) (*ShopService, repository.UserRepository) {
	t.Helper()
	users := newTestUserRepo(t)
	return NewShopService(users, nil, logger.Nop()), users
}

func giveMoney(t *testing.T, users repository.UserRepository, userID string, amount int) {
	t.Helper()
	_, err := users.Update(context.Background(), userID, func(u *model.UserRecord) error {
		u.Home.Money = amount
		return nil
	})
	require.NoError(t, err)
}

func TestBuyDeductsMoneyAndAddsItem(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "buyer", 200)

	receipt, err := svc.Buy(ctx, "buyer", "rose", 2)
	require.NoError(t, err)

	assert.Equal(t, 60, receipt.Paid)
	assert.Equal(t, 140, receipt.MoneyLeft)
	assert.Equal(t, 2, receipt.OwnedNow)

	rec, _ := users.Get(ctx, "buyer")
	assert.Equal(t, 2, rec.Items["rose"])
}

func TestBuyInsufficientFundsChangesNothing(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "broke", 10)

	_, err := svc.Buy(ctx, "broke", "rose", 1)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INSUFFICIENT_FUNDS", apiErr.Code)

	rec, _ := users.Get(ctx, "broke")
	assert.Equal(t, 10, rec.Home.Money)
	assert.Empty(t, rec.Items)
}

func TestBuyUnknownItem(t *testing.T) {
	svc, _ := newShopService(t)
	_, err := svc.Buy(context.Background(), "u", "no_such_item", 1)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestBuyLimitedStockRunsOut(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "hoarder", 100000)

	_, err := svc.Buy(ctx, "hoarder", "lucky_charm", 20)
	require.NoError(t, err)

	_, err = svc.Buy(ctx, "hoarder", "lucky_charm", 1)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONFLICT", apiErr.Code)
}

func TestBuyFatesCreditsGachaWallet(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "wisher", 2000)

	receipt, err := svc.Buy(ctx, "wisher", "fate_x10", 1)
	require.NoError(t, err)
	assert.Equal(t, 1600, receipt.OwnedNow)

	rec, _ := users.Get(ctx, "wisher")
	assert.Equal(t, 1600, rec.Weapons.Fates)
	assert.Empty(t, rec.Items)
}

func TestUseAppliesEffectAndConsumes(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "user1", 100)
	_, err := svc.Buy(ctx, "user1", "mora_pouch", 1)
	require.NoError(t, err)

	out, err := svc.Use(ctx, "user1", "mora_pouch")
	require.NoError(t, err)
	assert.Equal(t, EffectMoney, out.Effect)
	assert.Equal(t, 0, out.OwnedNow)

	rec, _ := users.Get(ctx, "user1")
	// 100 - 50 price + 60 effect
	assert.Equal(t, 110, rec.Home.Money)
	assert.Empty(t, rec.Items)
}

func TestUseUnownedItem(t *testing.T) {
	svc, _ := newShopService(t)
	_, err := svc.Use(context.Background(), "nobody", "rose")
	require.Error(t, err)
}

func TestUseNonUsableItem(t *testing.T) {
	svc, _ := newShopService(t)
	_, err := svc.Use(context.Background(), "u", "crystal_ore")
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestGiftTransfersItems(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "giver", 100)
	_, err := svc.Buy(ctx, "giver", "rose", 3)
	require.NoError(t, err)

	out, err := svc.Gift(ctx, "giver", "taker", "rose", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, out.LoveGain)

	giver, _ := users.Get(ctx, "giver")
	taker, _ := users.Get(ctx, "taker")
	assert.Equal(t, 1, giver.Items["rose"])
	assert.Equal(t, 2, taker.Items["rose"])
}

func TestGiftToSpouseGrowsLove(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "wife", 100)
	_, err := users.Update(ctx, "wife", func(u *model.UserRecord) error {
		u.Home.SpouseID = "husband"
		u.Items["rose"] = 5
		return nil
	})
	require.NoError(t, err)

	out, err := svc.Gift(ctx, "wife", "husband", "rose", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out.LoveGain)

	wife, _ := users.Get(ctx, "wife")
	husband, _ := users.Get(ctx, "husband")
	assert.Equal(t, 3, wife.Home.Love)
	assert.Equal(t, 3, husband.Home.Love)
}

func TestGiftMoreThanOwnedFails(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	_, err := users.Update(ctx, "small", func(u *model.UserRecord) error {
		u.Items["rose"] = 1
		return nil
	})
	require.NoError(t, err)

	_, err = svc.Gift(ctx, "small", "other", "rose", 2)
	require.Error(t, err)

	small, _ := users.Get(ctx, "small")
	other, _ := users.Get(ctx, "other")
	assert.Equal(t, 1, small.Items["rose"])
	assert.Empty(t, other.Items)
}

func TestBackpackReflectsOwnership(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "packer", 500)
	_, err := svc.Buy(ctx, "packer", "rose", 3)
	require.NoError(t, err)
	_, err = svc.Buy(ctx, "packer", "fate", 1)
	require.NoError(t, err)

	bp, err := svc.Backpack(ctx, "packer")
	require.NoError(t, err)

	assert.Equal(t, "packer", bp.UserID)
	assert.Equal(t, 3, bp.Items["rose"])
	assert.Equal(t, 160, bp.Fates)
	assert.Equal(t, 250, bp.Money)
	assert.NotContains(t, bp.Items, "fate")
}

func stockOf(t *testing.T, svc *ShopService, itemID string) int {
	t.Helper()
	for _, it := range svc.Catalog() {
		if it.ID == itemID {
			return it.Stock
		}
	}
	t.Fatalf("item %q not in catalog", itemID)
	return 0
}

func TestRefreshStockRestoresLimitedItems(t *testing.T) {
	svc, users := newShopService(t)
	ctx := context.Background()

	giveMoney(t, users, "hoarder", 10000)
	_, err := svc.Buy(ctx, "hoarder", "lucky_charm", 15)
	require.NoError(t, err)
	require.Equal(t, 5, stockOf(t, svc, "lucky_charm"))

	svc.RefreshStock()

	assert.Equal(t, 20, stockOf(t, svc, "lucky_charm"))
	assert.Equal(t, -1, stockOf(t, svc, "fate"), "unlimited items stay unlimited")
}

// failingWriteRepo runs the mutation but reports the final write as failed.
type failingWriteRepo struct {
	repository.UserRepository
}

func (r *failingWriteRepo) Update(ctx context.Context, id string, fn func(*model.UserRecord) error) (*model.UserRecord, error) {
	rec, err := r.UserRepository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	return nil, apierror.StorageFailure("record write failed")
}

func TestBuyReturnsStockWhenWriteFails(t *testing.T) {
	base := newTestUserRepo(t)
	giveMoney(t, base, "unlucky", 1000)

	svc := NewShopService(&failingWriteRepo{base}, nil, logger.Nop())
	ctx := context.Background()

	_, err := svc.Buy(ctx, "unlucky", "lucky_charm", 2)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "STORAGE_FAILURE", apiErr.Code)

	assert.Equal(t, 20, stockOf(t, svc, "lucky_charm"), "reserved stock is handed back")
}
