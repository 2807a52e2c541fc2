package core

import (
	"time"

	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

// WeekView is the week board with today's date marked.
type WeekView struct {
	ordering.Week
	Today string
}

// IsToday reports whether date is the service clock's current day.
func (w WeekView) IsToday(date string) bool { return date == w.Today }

// Meals returns every meal in per-day insertion order.
func (s *Service) Meals() []Meal {
	meals := s.store.ListMeals()
	ordering.ByOrder(meals)
	return meals
}

// MealsForDay returns the meals on date ordered by type rank.
func (s *Service) MealsForDay(date string) []Meal {
	meals := s.store.ListMealsByDate(date)
	ordering.ByOrder(meals)
	return ordering.MealsForDay(meals, date)
}

// Week returns the Monday-first week containing anchor.
func (s *Service) Week(anchor time.Time) WeekView {
	now := s.clock.Now()
	if anchor.IsZero() {
		anchor = now
	}
	return WeekView{
		Week:  ordering.WeekOf(anchor, s.Meals()),
		Today: now.In(anchor.Location()).Format(domain.DateLayout),
	}
}

// Meal looks up a meal by id.
func (s *Service) Meal(id string) (Meal, error) {
	m, ok := s.store.GetMeal(id)
	if !ok {
		return Meal{}, domain.NotFoundError{Entity: EntityMeal, ID: id}
	}
	return m, nil
}

// Recipe looks up a recipe by id.
func (s *Service) Recipe(id string) (Recipe, error) {
	r, ok := s.store.GetRecipe(id)
	if !ok {
		return Recipe{}, domain.NotFoundError{Entity: EntityRecipe, ID: id}
	}
	return r, nil
}

// SortedRecipes returns the library with favorites first, then by name.
func (s *Service) SortedRecipes() []Recipe {
	return ordering.SortedRecipes(s.store.ListRecipes())
}

// FilteredRecipes narrows the sorted library by type and name search.
func (s *Service) FilteredRecipes(typ *MealType, search string) []Recipe {
	return ordering.FilteredRecipes(s.store.ListRecipes(), typ, search)
}

// FavoriteRecipes returns only the favorites, by name.
func (s *Service) FavoriteRecipes() []Recipe {
	return ordering.FavoriteRecipes(s.store.ListRecipes())
}

// UniqueMealNames returns one representative meal per name, the first in
// plan order.
func (s *Service) UniqueMealNames() []Meal {
	return ordering.UniqueMealNames(s.Meals())
}

// Counts returns the number of stored meals and recipes.
func (s *Service) Counts() (meals, recipes int) {
	return len(s.store.ListMeals()), len(s.store.ListRecipes())
}
