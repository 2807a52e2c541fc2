// Package mealsync computes the name-keyed propagation between scheduled meals
// and the recipe library. Functions are pure: they plan writes and leave
// applying them to the caller.
package mealsync

import "mealweek/pkg/domain"

// SyncedFieldsChanged reports whether an edit touched a field shared with the
// paired record (name, type or recipe text).
func SyncedFieldsChanged(beforeName string, beforeType domain.MealType, beforeRecipe string, afterName string, afterType domain.MealType, afterRecipe string) bool {
	return beforeName != afterName || beforeType != afterType || beforeRecipe != afterRecipe
}

// FirstRecipeNamed returns the earliest-created recipe whose name equals name exactly.
func FirstRecipeNamed(recipes []domain.Recipe, name string) (domain.Recipe, bool) {
	var (
		found domain.Recipe
		ok    bool
	)
	for _, r := range recipes {
		if r.Name != name {
			continue
		}
		if !ok || earlier(r.Base, found.Base) {
			found, ok = r, true
		}
	}
	return found, ok
}

func earlier(a, b domain.Base) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// RecipeUpdateForMealEdit plans the meal-to-recipe propagation. When the edit
// changed a synced field and a recipe carries the pre-edit meal name, that one
// recipe is returned with the edited name, type and recipe text.
func RecipeUpdateForMealEdit(before, after domain.Meal, recipes []domain.Recipe) (domain.Recipe, bool) {
	if !SyncedFieldsChanged(before.Name, before.Type, before.Recipe, after.Name, after.Type, after.Recipe) {
		return domain.Recipe{}, false
	}
	target, ok := FirstRecipeNamed(recipes, before.Name)
	if !ok {
		return domain.Recipe{}, false
	}
	target.Name = after.Name
	target.Type = after.Type
	target.Recipe = after.Recipe
	return target, true
}

// MealUpdatesForRecipeEdit plans the recipe-to-meal fan-out: every meal named
// like the pre-edit recipe receives the edited name, type and recipe text.
func MealUpdatesForRecipeEdit(before, after domain.Recipe, meals []domain.Meal) []domain.Meal {
	if !SyncedFieldsChanged(before.Name, before.Type, before.Recipe, after.Name, after.Type, after.Recipe) {
		return nil
	}
	var out []domain.Meal
	for _, m := range meals {
		if m.Name != before.Name {
			continue
		}
		m.Name = after.Name
		m.Type = after.Type
		m.Recipe = after.Recipe
		out = append(out, m)
	}
	return out
}

// MissingRecipes returns one new recipe per distinct meal name that has no
// recipe of exactly that name. The first meal seen for a name supplies its
// type and recipe text. Returned recipes carry no id.
func MissingRecipes(meals []domain.Meal, recipes []domain.Recipe) []domain.Recipe {
	known := make(map[string]struct{}, len(recipes))
	for _, r := range recipes {
		known[r.Name] = struct{}{}
	}
	var out []domain.Recipe
	for _, m := range meals {
		if m.Name == "" {
			continue
		}
		if _, ok := known[m.Name]; ok {
			continue
		}
		known[m.Name] = struct{}{}
		out = append(out, domain.Recipe{Name: m.Name, Type: m.Type, Recipe: m.Recipe, OwnerID: m.OwnerID})
	}
	return out
}

// Reconcile returns recipes followed by the auto-created entries for meal
// names that have no recipe yet. Running it on its own output adds nothing.
func Reconcile(meals []domain.Meal, recipes []domain.Recipe) []domain.Recipe {
	out := make([]domain.Recipe, 0, len(recipes))
	out = append(out, recipes...)
	return append(out, MissingRecipes(meals, recipes)...)
}
