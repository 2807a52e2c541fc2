package core

import (
	"context"
	"fmt"
	"strings"

	"mealweek/internal/mealsync"
	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

// RecipeInput is the form data for creating or editing a recipe. A nil
// Favorite leaves the flag as it is (false for new recipes).
type RecipeInput struct {
	ID       string
	Name     string
	Type     string
	Recipe   string
	Favorite *bool
}

func (in RecipeInput) validate() (string, MealType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", "", &domain.ValidationError{Field: "name", Message: "recipe name is required"}
	}
	typ, err := domain.ParseMealType(in.Type)
	if err != nil {
		return "", "", err
	}
	return name, typ, nil
}

// SaveRecipe creates the recipe when in.ID is empty and edits it otherwise.
func (s *Service) SaveRecipe(ctx context.Context, in RecipeInput) (Recipe, SyncReport, error) {
	if in.ID == "" {
		created, err := s.CreateRecipe(ctx, in)
		return created, SyncReport{}, err
	}
	return s.UpdateRecipe(ctx, in)
}

// CreateRecipe adds a recipe to the library. A recipe whose name is already
// taken, ignoring case, is rejected with ErrDuplicateRecipe.
func (s *Service) CreateRecipe(ctx context.Context, in RecipeInput) (Recipe, error) {
	var created Recipe
	err := s.run(ctx, "create_recipe", func(ctx context.Context) (string, error) {
		name, typ, err := in.validate()
		if err != nil {
			return "", err
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if taken, ok := recipeNamed(tx.Snapshot().ListRecipes(), name); ok {
				return &domain.ValidationError{
					Field:   "name",
					Message: fmt.Sprintf("recipe %q already exists as %q", name, taken.Name),
					Err:     domain.ErrDuplicateRecipe,
				}
			}
			r := Recipe{Name: name, Type: typ, Recipe: in.Recipe}
			if in.Favorite != nil {
				r.Favorite = *in.Favorite
			}
			var err error
			created, err = tx.CreateRecipe(r)
			return err
		})
		s.logWarnings("create_recipe", res)
		return created.ID, err
	})
	return created, err
}

// UpdateRecipe edits a recipe. When name, type or recipe text changed, every
// meal carrying the old name is updated to match.
func (s *Service) UpdateRecipe(ctx context.Context, in RecipeInput) (Recipe, SyncReport, error) {
	var before, after Recipe
	err := s.run(ctx, "update_recipe", func(ctx context.Context) (string, error) {
		name, typ, err := in.validate()
		if err != nil {
			return in.ID, err
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			current, ok := tx.FindRecipe(in.ID)
			if !ok {
				return domain.NotFoundError{Entity: EntityRecipe, ID: in.ID}
			}
			before = current
			var err error
			after, err = tx.UpdateRecipe(in.ID, func(r *Recipe) error {
				r.Name = name
				r.Type = typ
				r.Recipe = in.Recipe
				if in.Favorite != nil {
					r.Favorite = *in.Favorite
				}
				return nil
			})
			return err
		})
		s.logWarnings("update_recipe", res)
		return in.ID, err
	})
	if err != nil {
		return Recipe{}, SyncReport{}, err
	}
	return after, s.propagateRecipeEdit(ctx, before, after), nil
}

// ToggleFavorite flips the recipe's favorite flag.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (Recipe, error) {
	var updated Recipe
	err := s.run(ctx, "toggle_favorite", func(ctx context.Context) (string, error) {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateRecipe(id, func(r *Recipe) error {
				r.Favorite = !r.Favorite
				return nil
			})
			return err
		})
		return id, err
	})
	return updated, err
}

// DeleteRecipe removes a recipe. Meals sharing its name stay scheduled.
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	return s.run(ctx, "delete_recipe", func(ctx context.Context) (string, error) {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteRecipe(id)
		})
		return id, err
	})
}

func (s *Service) propagateRecipeEdit(ctx context.Context, before, after Recipe) SyncReport {
	var report SyncReport
	var updated []Meal
	_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		updated = updated[:0]
		for _, planned := range mealsync.MealUpdatesForRecipeEdit(before, after, tx.Snapshot().ListMeals()) {
			m, err := tx.UpdateMeal(planned.ID, func(m *Meal) error {
				m.Name = planned.Name
				m.Type = planned.Type
				m.Recipe = planned.Recipe
				return nil
			})
			if err != nil {
				return err
			}
			updated = append(updated, m)
		}
		return nil
	})
	if err != nil {
		s.syncFailed(ctx, &report, "recipe_to_meals", err)
		return report
	}
	report.UpdatedMeals = updated
	return report
}

// recipeNamed finds a recipe whose name equals name under locale case folding.
func recipeNamed(recipes []Recipe, name string) (Recipe, bool) {
	want := ordering.Fold(name)
	for _, r := range recipes {
		if ordering.Fold(r.Name) == want {
			return r, true
		}
	}
	return Recipe{}, false
}
