package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/pkg/apierror"
)

// Item effects understood by Use.
const (
	EffectMoney = "money"
	EffectExp   = "exp"
	EffectLove  = "love"
	EffectFates = "fates"
	EffectNone  = ""
)

// DefaultShopItems is the built-in storefront.
func DefaultShopItems() []model.ShopItem {
	return []model.ShopItem{
		{ID: "fate", Name: "Intertwined Fate", Description: "One wish on the weapon banner", Price: 160, Stock: -1, Usable: false},
		{ID: "fate_x10", Name: "Fate Bundle", Description: "Ten wishes at a small discount", Price: 1500, Stock: -1, Usable: false},
		{ID: "mora_pouch", Name: "Mora Pouch", Description: "A small bag of mora", Price: 50, Stock: -1, Usable: true, Effect: EffectMoney, EffectValue: 60},
		{ID: "exp_book", Name: "Hero's Wit", Description: "Adventure experience in book form", Price: 120, Stock: -1, Usable: true, Effect: EffectExp, EffectValue: 100},
		{ID: "rose", Name: "Sweet Rose", Description: "A gift that warms the heart", Price: 30, Stock: -1, Usable: true, Effect: EffectLove, EffectValue: 5},
		{ID: "crystal_ore", Name: "Crystal Ore", Description: "Forging material", Price: 40, Stock: -1, Usable: false},
		{ID: "mystic_ore", Name: "Mystic Enhancement Ore", Description: "Refined forging material", Price: 90, Stock: -1, Usable: false},
		{ID: "lucky_charm", Name: "Lucky Charm", Description: "Limited stock, while supplies last", Price: 200, Stock: 20, Usable: true, Effect: EffectMoney, EffectValue: 250},
	}
}

// ShopService sells, consumes and transfers items. The storefront itself
// lives in memory; per-user ownership lives in the user records.
type ShopService struct {
	users repository.UserRepository
	log   *zap.SugaredLogger

	mu           sync.RWMutex
	items        map[string]*model.ShopItem
	order        []string
	initialStock map[string]int
}

// NewShopService creates a shop over the given catalog. A nil catalog gets
// the built-in storefront.
func NewShopService(users repository.UserRepository, items []model.ShopItem, log *zap.SugaredLogger) *ShopService {
	if items == nil {
		items = DefaultShopItems()
	}
	s := &ShopService{
		users:        users,
		log:          log,
		items:        make(map[string]*model.ShopItem, len(items)),
		initialStock: make(map[string]int),
	}
	for i := range items {
		it := items[i]
		s.items[it.ID] = &it
		s.order = append(s.order, it.ID)
		if !it.Unlimited() {
			s.initialStock[it.ID] = it.Stock
		}
	}
	return s
}

// RefreshStock restores every limited item to its opening stock. Runs from
// the daily reset job.
func (s *ShopService) RefreshStock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, stock := range s.initialStock {
		s.items[id].Stock = stock
	}
	s.log.Infow("shop stock refreshed", "limited_items", len(s.initialStock))
}

// Catalog returns the storefront in its display order.
func (s *ShopService) Catalog() []model.ShopItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ShopItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

func (s *ShopService) item(id string) (*model.ShopItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, apierror.NotFound(fmt.Sprintf("shop item %q not found", id))
	}
	cp := *it
	return &cp, nil
}

// Buy purchases qty of an item. Money and stock are both checked before
// anything is deducted, so a failed purchase changes nothing.
func (s *ShopService) Buy(ctx context.Context, userID, itemID string, qty int) (*model.PurchaseReceipt, error) {
	if qty < 1 || qty > 99 {
		return nil, apierror.ValidationError("quantity must be between 1 and 99")
	}
	it, err := s.item(itemID)
	if err != nil {
		return nil, err
	}

	receipt := &model.PurchaseReceipt{
		UserID:   userID,
		ItemID:   itemID,
		ItemName: it.Name,
		Quantity: qty,
		Paid:     it.Price * qty,
	}

	stockTaken := false
	_, err = s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		if u.Home.Money < receipt.Paid {
			return apierror.InsufficientFunds(fmt.Sprintf(
				"need %d mora, have %d", receipt.Paid, u.Home.Money))
		}
		if err := s.takeStock(itemID, qty); err != nil {
			return err
		}
		stockTaken = true
		u.Home.Money -= receipt.Paid

		// Fate purchases credit the gacha wallet directly.
		switch itemID {
		case "fate":
			u.Weapons.Fates += 160 * qty
			receipt.OwnedNow = u.Weapons.Fates
		case "fate_x10":
			u.Weapons.Fates += 1600 * qty
			receipt.OwnedNow = u.Weapons.Fates
		default:
			u.Items[itemID] += qty
			receipt.OwnedNow = u.Items[itemID]
		}
		receipt.MoneyLeft = u.Home.Money
		return nil
	})
	if err != nil {
		// The record write failed after the stock reservation; hand the
		// units back so an aborted purchase does not burn inventory.
		if stockTaken {
			s.returnStock(itemID, qty)
		}
		return nil, err
	}

	s.log.Infow("purchase complete", "user", userID, "item", itemID, "qty", qty, "paid", receipt.Paid)
	return receipt, nil
}

// returnStock undoes a reservation made by takeStock.
func (s *ShopService) returnStock(itemID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok || it.Unlimited() {
		return
	}
	it.Stock += qty
}

// takeStock decrements limited stock, failing when not enough remains.
func (s *ShopService) takeStock(itemID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return apierror.NotFound(fmt.Sprintf("shop item %q not found", itemID))
	}
	if it.Unlimited() {
		return nil
	}
	if it.Stock < qty {
		return apierror.Conflict(fmt.Sprintf("only %d of %q left in stock", it.Stock, it.Name))
	}
	it.Stock -= qty
	return nil
}

// Use consumes one owned item and applies its effect.
func (s *ShopService) Use(ctx context.Context, userID, itemID string) (*model.UseOutcome, error) {
	it, err := s.item(itemID)
	if err != nil {
		return nil, err
	}
	if !it.Usable {
		return nil, apierror.BadRequest(fmt.Sprintf("%q cannot be used directly", it.Name))
	}

	out := &model.UseOutcome{UserID: userID, ItemID: itemID, Effect: it.Effect, Applied: it.EffectValue}

	_, err = s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		if u.Items[itemID] < 1 {
			return apierror.NotFound(fmt.Sprintf("you do not own any %q", it.Name))
		}
		u.Items[itemID]--
		if u.Items[itemID] == 0 {
			delete(u.Items, itemID)
		}
		out.OwnedNow = u.Items[itemID]

		switch it.Effect {
		case EffectMoney:
			u.Home.Money += it.EffectValue
		case EffectExp:
			u.Battle.Experience += it.EffectValue
			applyLevelUps(u.Battle)
		case EffectLove:
			u.Home.Love += it.EffectValue
		case EffectFates:
			u.Weapons.Fates += it.EffectValue
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("item used", "user", userID, "item", itemID, "effect", it.Effect)
	return out, nil
}

// Backpack returns what the user owns along with their balances.
func (s *ShopService) Backpack(ctx context.Context, userID string) (*model.Backpack, error) {
	rec, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make(map[string]int, len(rec.Items))
	for id, n := range rec.Items {
		items[id] = n
	}
	return &model.Backpack{
		UserID: rec.ID,
		Money:  rec.Home.Money,
		Fates:  rec.Weapons.Fates,
		Items:  items,
	}, nil
}

// Gift moves qty of an item from one user to another. Gifting to a spouse
// grows affection.
func (s *ShopService) Gift(ctx context.Context, fromID, toID, itemID string, qty int) (*model.GiftOutcome, error) {
	if qty < 1 || qty > 99 {
		return nil, apierror.ValidationError("quantity must be between 1 and 99")
	}
	it, err := s.item(itemID)
	if err != nil {
		return nil, err
	}

	out := &model.GiftOutcome{FromID: fromID, ToID: toID, ItemID: itemID, Quantity: qty}

	err = s.users.UpdatePair(ctx, fromID, toID, func(from, to *model.UserRecord) error {
		if from.Items[itemID] < qty {
			return apierror.NotFound(fmt.Sprintf(
				"you own %d of %q, tried to gift %d", from.Items[itemID], it.Name, qty))
		}
		from.Items[itemID] -= qty
		if from.Items[itemID] == 0 {
			delete(from.Items, itemID)
		}
		to.Items[itemID] += qty

		if from.Home.SpouseID == to.ID {
			out.LoveGain = qty
			from.Home.Love += qty
			to.Home.Love += qty
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("gift complete", "from", fromID, "to", toID, "item", itemID, "qty", qty)
	return out, nil
}
