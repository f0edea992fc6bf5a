package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"akasha-terminal-api/internal/model"
	"akasha-terminal-api/internal/repository"
	"akasha-terminal-api/pkg/apierror"
)

// DefaultRecipes is the built-in synthesis book.
func DefaultRecipes() []model.Recipe {
	return []model.Recipe{
		{
			ID: "mystic_ore", Name: "Refine Mystic Ore",
			Inputs:      map[string]int{"crystal_ore": 3},
			Output:      "mystic_ore", OutputCount: 1,
			SuccessPct:  90, MinWorkshop: 1, FailRefund: true,
		},
		{
			ID: "lucky_charm", Name: "Weave Lucky Charm",
			Inputs:      map[string]int{"mystic_ore": 2, "rose": 1},
			Output:      "lucky_charm", OutputCount: 1,
			SuccessPct:  60, MinWorkshop: 2, FailRefund: false,
		},
		{
			ID: "fate_shard", Name: "Condense Fate Shard",
			Inputs:      map[string]int{"mystic_ore": 5, "lucky_charm": 1},
			Output:      "fate", OutputCount: 1,
			SuccessPct:  40, MinWorkshop: 3, FailRefund: false,
		},
	}
}

// decomposeTable maps an item to the materials it breaks down into.
var decomposeTable = map[string]map[string]int{
	"mystic_ore":  {"crystal_ore": 2},
	"lucky_charm": {"mystic_ore": 1, "rose": 1},
}

// workshopUpgradeCost returns the mora price for reaching the next level.
func workshopUpgradeCost(currentLevel int) int {
	return currentLevel * 500
}

const maxWorkshopLevel = 5

// SynthesisService crafts and decomposes items at the user's workshop.
type SynthesisService struct {
	users   repository.UserRepository
	recipes map[string]model.Recipe
	order   []string
	rng     RandomSource
	log     *zap.SugaredLogger
}

// NewSynthesisService creates a synthesis service. A nil recipe list gets
// the built-in book.
func NewSynthesisService(users repository.UserRepository, recipes []model.Recipe, rng RandomSource, log *zap.SugaredLogger) *SynthesisService {
	if recipes == nil {
		recipes = DefaultRecipes()
	}
	s := &SynthesisService{
		users:   users,
		recipes: make(map[string]model.Recipe, len(recipes)),
		rng:     rng,
		log:     log,
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
		s.order = append(s.order, r.ID)
	}
	return s
}

// Recipes returns the synthesis book in display order.
func (s *SynthesisService) Recipes() []model.Recipe {
	out := make([]model.Recipe, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.recipes[id])
	}
	return out
}

// Craft attempts one synthesis. Inputs are consumed up front; a failed
// roll returns them only when the recipe allows a refund. Workshop level
// gates access to higher recipes.
func (s *SynthesisService) Craft(ctx context.Context, userID, recipeID string) (*model.CraftOutcome, error) {
	recipe, ok := s.recipes[recipeID]
	if !ok {
		return nil, apierror.NotFound(fmt.Sprintf("recipe %q not found", recipeID))
	}

	out := &model.CraftOutcome{UserID: userID, RecipeID: recipeID}

	_, err := s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		if u.Home.Workshop < recipe.MinWorkshop {
			return apierror.BadRequest(fmt.Sprintf(
				"%q needs workshop level %d, yours is %d", recipe.Name, recipe.MinWorkshop, u.Home.Workshop))
		}
		for item, need := range recipe.Inputs {
			if u.Items[item] < need {
				return apierror.InsufficientFunds(fmt.Sprintf(
					"need %d %s, have %d", need, item, u.Items[item]))
			}
		}
		for item, need := range recipe.Inputs {
			u.Items[item] -= need
			if u.Items[item] == 0 {
				delete(u.Items, item)
			}
		}

		out.Success = s.rng.Float64()*100 < float64(recipe.SuccessPct)
		if out.Success {
			out.Output = recipe.Output
			out.Count = recipe.OutputCount
			if recipe.Output == "fate" {
				u.Weapons.Fates += 160 * recipe.OutputCount
			} else {
				u.Items[recipe.Output] += recipe.OutputCount
			}
		} else if recipe.FailRefund {
			out.Refunded = true
			for item, need := range recipe.Inputs {
				u.Items[item] += need
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("craft attempt", "user", userID, "recipe", recipeID, "success", out.Success, "refunded", out.Refunded)
	return out, nil
}

// Decompose breaks one owned item back into materials.
func (s *SynthesisService) Decompose(ctx context.Context, userID, itemID string) (*model.DecomposeOutcome, error) {
	materials, ok := decomposeTable[itemID]
	if !ok {
		return nil, apierror.BadRequest(fmt.Sprintf("%q cannot be decomposed", itemID))
	}

	out := &model.DecomposeOutcome{UserID: userID, ItemID: itemID, Materials: materials}

	_, err := s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		if u.Items[itemID] < 1 {
			return apierror.NotFound(fmt.Sprintf("you do not own any %q", itemID))
		}
		u.Items[itemID]--
		if u.Items[itemID] == 0 {
			delete(u.Items, itemID)
		}
		for item, n := range materials {
			u.Items[item] += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("item decomposed", "user", userID, "item", itemID)
	return out, nil
}

// UpgradeWorkshop raises the workshop one level for mora.
func (s *SynthesisService) UpgradeWorkshop(ctx context.Context, userID string) (*model.UserRecord, error) {
	return s.users.Update(ctx, userID, func(u *model.UserRecord) error {
		if u.Home.Workshop >= maxWorkshopLevel {
			return apierror.Conflict("workshop is already at max level")
		}
		cost := workshopUpgradeCost(u.Home.Workshop)
		if u.Home.Money < cost {
			return apierror.InsufficientFunds(fmt.Sprintf(
				"upgrade costs %d mora, have %d", cost, u.Home.Money))
		}
		u.Home.Money -= cost
		u.Home.Workshop++
		return nil
	})
}
