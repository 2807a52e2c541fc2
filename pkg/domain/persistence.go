package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateMeal(Meal) (Meal, error)
	UpdateMeal(id string, mutator func(*Meal) error) (Meal, error)
	DeleteMeal(id string) error
	CreateRecipe(Recipe) (Recipe, error)
	UpdateRecipe(id string, mutator func(*Recipe) error) (Recipe, error)
	DeleteRecipe(id string) error
	FindMeal(id string) (Meal, bool)
	FindRecipe(id string) (Recipe, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetMeal(id string) (Meal, bool)
	ListMeals() []Meal
	ListMealsByDate(date string) []Meal
	GetRecipe(id string) (Recipe, bool)
	ListRecipes() []Recipe
	ListRecipesByType(t MealType) []Recipe
}
