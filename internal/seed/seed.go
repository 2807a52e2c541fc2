// Package seed loads a starter plan into an empty service.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mealweek/internal/core"
	"mealweek/pkg/domain"
)

//go:embed default.yaml
var defaultData []byte

// Mode picks which collections Seed fills.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeMeals   Mode = "meals"
	ModeRecipes Mode = "recipes"
)

// ParseMode accepts a mode name; empty means ModeAll.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeMeals:
		return ModeMeals, nil
	case ModeRecipes:
		return ModeRecipes, nil
	default:
		return "", &domain.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown seed mode %q", raw)}
	}
}

// MealRecord is a meal as written in a seed file.
type MealRecord struct {
	Name   string `yaml:"name" json:"name"`
	Type   string `yaml:"type" json:"type"`
	Date   string `yaml:"date" json:"date"`
	Order  int    `yaml:"order" json:"order"`
	Recipe string `yaml:"recipe,omitempty" json:"recipe,omitempty"`
	Notes  string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// RecipeRecord is a recipe as written in a seed file.
type RecipeRecord struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Recipe   string `yaml:"recipe,omitempty" json:"recipe,omitempty"`
	Favorite bool   `yaml:"favorite,omitempty" json:"favorite,omitempty"`
}

// Data is a seed file.
type Data struct {
	Meals   []MealRecord   `yaml:"meals" json:"meals"`
	Recipes []RecipeRecord `yaml:"recipes" json:"recipes"`
}

// Report is the outcome of Seed.
type Report struct {
	MealsAdded   int      `json:"meals_added"`
	RecipesAdded int      `json:"recipes_added"`
	Message      string   `json:"message"`
	Skipped      []string `json:"skipped,omitempty"`
}

// Default returns the embedded starter plan.
func Default() (Data, error) {
	return Parse(defaultData)
}

// Parse reads a YAML or JSON seed document.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parse seed: %w", err)
	}
	return d, nil
}

// Load reads a seed file from disk.
func Load(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(raw)
}

// meals converts the meal records, skipping the ones that do not validate.
func (d Data) meals() ([]domain.Meal, []error) {
	out := make([]domain.Meal, 0, len(d.Meals))
	var skipped []error
	for i, rec := range d.Meals {
		typ, err := domain.ParseMealType(rec.Type)
		if err == nil {
			_, err = core.ValidateDate(rec.Date)
		}
		if err == nil && strings.TrimSpace(rec.Name) == "" {
			err = &domain.ValidationError{Field: "name", Message: "meal name is required"}
		}
		if err != nil {
			skipped = append(skipped, fmt.Errorf("meal %d (%s): %w", i, rec.Name, err))
			continue
		}
		out = append(out, domain.Meal{
			Name:   rec.Name,
			Type:   typ,
			Date:   strings.TrimSpace(rec.Date),
			Order:  rec.Order,
			Recipe: rec.Recipe,
			Notes:  rec.Notes,
		})
	}
	return out, skipped
}

// recipes converts the recipe records, skipping the ones that do not validate.
func (d Data) recipes() ([]domain.Recipe, []error) {
	out := make([]domain.Recipe, 0, len(d.Recipes))
	var skipped []error
	for i, rec := range d.Recipes {
		typ, err := domain.ParseMealType(rec.Type)
		if err == nil && strings.TrimSpace(rec.Name) == "" {
			err = &domain.ValidationError{Field: "name", Message: "recipe name is required"}
		}
		if err != nil {
			skipped = append(skipped, fmt.Errorf("recipe %d (%s): %w", i, rec.Name, err))
			continue
		}
		out = append(out, domain.Recipe{
			Name:     rec.Name,
			Type:     typ,
			Recipe:   rec.Recipe,
			Favorite: rec.Favorite,
		})
	}
	return out, skipped
}

// Seed inserts data into svc as-is. ModeAll skips when either collection
// has records; the single-collection modes skip when their own collection
// does. Records that do not validate are left out and listed in
// Report.Skipped; the rest are inserted together. Seeded records are not
// synchronized against each other.
func Seed(ctx context.Context, svc *core.Service, data Data, mode Mode) (Report, error) {
	meals, skippedMeals := data.meals()
	recipes, skippedRecipes := data.recipes()
	haveMeals, haveRecipes := svc.Counts()
	switch mode {
	case ModeAll, "":
		if haveMeals > 0 || haveRecipes > 0 {
			return Report{Message: "plan already has data; seed skipped"}, nil
		}
	case ModeMeals:
		if haveMeals > 0 {
			return Report{Message: "meals already present; seed skipped"}, nil
		}
		recipes = nil
	case ModeRecipes:
		if haveRecipes > 0 {
			return Report{Message: "recipes already present; seed skipped"}, nil
		}
		meals = nil
	default:
		return Report{}, &domain.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown seed mode %q", mode)}
	}
	var skipped []error
	if meals != nil {
		skipped = append(skipped, skippedMeals...)
	}
	if recipes != nil {
		skipped = append(skipped, skippedRecipes...)
	}
	res, err := svc.ImportRecords(ctx, meals, recipes)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		MealsAdded:   res.Meals,
		RecipesAdded: res.Recipes,
		Message:      fmt.Sprintf("seeded %d meals and %d recipes", res.Meals, res.Recipes),
	}
	for _, e := range skipped {
		report.Skipped = append(report.Skipped, e.Error())
	}
	if n := len(report.Skipped); n > 0 {
		report.Message += fmt.Sprintf(", skipped %d invalid", n)
	}
	return report, nil
}
