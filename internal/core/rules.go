package core

import (
	"context"
	"fmt"
	"time"

	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

// Built-in rule names.
const (
	RuleMealDateRequired = "meal_date_required"
	RuleMealTypeKnown    = "meal_type_known"
	RuleRecipeNameUnique = "recipe_name_unique"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(MealDateRequiredRule())
	engine.Register(MealTypeKnownRule())
	engine.Register(RecipeNameUniqueRule())
	return engine
}

type ruleFunc struct {
	name string
	fn   func(ctx context.Context, view TransactionView, changes []Change) (Result, error)
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Evaluate(ctx context.Context, view TransactionView, changes []Change) (Result, error) {
	return r.fn(ctx, view, changes)
}

func changedMeals(changes []Change) []Meal {
	var out []Meal
	for _, c := range changes {
		if c.Entity != EntityMeal || c.Action == ActionDelete {
			continue
		}
		if m, ok := c.After.(Meal); ok {
			out = append(out, m)
		}
	}
	return out
}

func changedRecipes(changes []Change) []Recipe {
	var out []Recipe
	for _, c := range changes {
		if c.Entity != EntityRecipe || c.Action == ActionDelete {
			continue
		}
		if r, ok := c.After.(Recipe); ok {
			out = append(out, r)
		}
	}
	return out
}

// MealDateRequiredRule blocks meals stored without a valid calendar date.
func MealDateRequiredRule() Rule {
	return ruleFunc{name: RuleMealDateRequired, fn: func(_ context.Context, _ TransactionView, changes []Change) (Result, error) {
		var res Result
		for _, m := range changedMeals(changes) {
			if _, err := time.Parse(domain.DateLayout, m.Date); err == nil {
				continue
			}
			res.Violations = append(res.Violations, Violation{
				Rule:     RuleMealDateRequired,
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("meal %q needs a YYYY-MM-DD date, got %q", m.Name, m.Date),
				Entity:   EntityMeal,
				EntityID: m.ID,
			})
		}
		return res, nil
	}}
}

// MealTypeKnownRule blocks meals and recipes with a type outside the taxonomy.
func MealTypeKnownRule() Rule {
	return ruleFunc{name: RuleMealTypeKnown, fn: func(_ context.Context, _ TransactionView, changes []Change) (Result, error) {
		var res Result
		block := func(entity EntityType, id, name string, typ MealType) {
			res.Violations = append(res.Violations, Violation{
				Rule:     RuleMealTypeKnown,
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("%s %q has unknown type %q", entity, name, typ),
				Entity:   entity,
				EntityID: id,
			})
		}
		for _, m := range changedMeals(changes) {
			if !m.Type.Valid() {
				block(EntityMeal, m.ID, m.Name, m.Type)
			}
		}
		for _, r := range changedRecipes(changes) {
			if !r.Type.Valid() {
				block(EntityRecipe, r.ID, r.Name, r.Type)
			}
		}
		return res, nil
	}}
}

// RecipeNameUniqueRule warns when a written recipe shares its name with
// another recipe, ignoring case. Synchronization then targets the earliest one.
func RecipeNameUniqueRule() Rule {
	return ruleFunc{name: RuleRecipeNameUnique, fn: func(_ context.Context, view TransactionView, changes []Change) (Result, error) {
		var res Result
		written := changedRecipes(changes)
		if len(written) == 0 {
			return res, nil
		}
		counts := make(map[string]int)
		for _, r := range view.ListRecipes() {
			counts[ordering.Fold(r.Name)]++
		}
		reported := make(map[string]bool)
		for _, r := range written {
			key := ordering.Fold(r.Name)
			if counts[key] < 2 || reported[key] {
				continue
			}
			reported[key] = true
			res.Violations = append(res.Violations, Violation{
				Rule:     RuleRecipeNameUnique,
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("%d recipes are named %q ignoring case", counts[key], r.Name),
				Entity:   EntityRecipe,
				EntityID: r.ID,
			})
		}
		return res, nil
	}}
}
