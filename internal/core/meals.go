package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mealweek/internal/mealsync"
	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

// MealInput is the form data for creating or editing a meal. A nil Order
// places a new meal after the day's last one and keeps an edited meal's order.
type MealInput struct {
	ID     string
	Name   string
	Type   string
	Date   string
	Order  *int
	Recipe string
	Notes  string
}

type validMeal struct {
	name string
	typ  MealType
	date string
}

func (in MealInput) validate() (validMeal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return validMeal{}, &domain.ValidationError{Field: "name", Message: "meal name is required"}
	}
	typ, err := domain.ParseMealType(in.Type)
	if err != nil {
		return validMeal{}, err
	}
	date, err := ValidateDate(in.Date)
	if err != nil {
		return validMeal{}, err
	}
	return validMeal{name: name, typ: typ, date: date}, nil
}

// ValidateDate checks that raw is an ISO calendar date.
func ValidateDate(raw string) (string, error) {
	date := strings.TrimSpace(raw)
	if date == "" {
		return "", &domain.ValidationError{Field: "date", Message: "meal date is required"}
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return "", &domain.ValidationError{Field: "date", Message: fmt.Sprintf("date %q is not YYYY-MM-DD", raw), Err: err}
	}
	return date, nil
}

// SaveMeal creates the meal when in.ID is empty and edits it otherwise.
func (s *Service) SaveMeal(ctx context.Context, in MealInput) (Meal, SyncReport, error) {
	if in.ID == "" {
		return s.CreateMeal(ctx, in)
	}
	return s.UpdateMeal(ctx, in)
}

// CreateMeal schedules a new meal, then creates recipes for any meal names
// the library does not know yet.
func (s *Service) CreateMeal(ctx context.Context, in MealInput) (Meal, SyncReport, error) {
	var created Meal
	err := s.run(ctx, "create_meal", func(ctx context.Context) (string, error) {
		valid, err := in.validate()
		if err != nil {
			return "", err
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			order := 0
			if in.Order != nil {
				order = *in.Order
			} else if highest, ok := ordering.MaxOrder(tx.Snapshot().ListMealsByDate(valid.date), valid.date); ok {
				order = highest + 1
			}
			var err error
			created, err = tx.CreateMeal(Meal{
				Name:   valid.name,
				Type:   valid.typ,
				Date:   valid.date,
				Order:  order,
				Recipe: in.Recipe,
				Notes:  in.Notes,
			})
			return err
		})
		s.logWarnings("create_meal", res)
		return created.ID, err
	})
	if err != nil {
		return Meal{}, SyncReport{}, err
	}
	return created, s.reconcileAfter(ctx), nil
}

// UpdateMeal replaces the meal's editable fields. When name, type or recipe
// text changed, the first recipe carrying the old name is updated to match.
func (s *Service) UpdateMeal(ctx context.Context, in MealInput) (Meal, SyncReport, error) {
	var before, after Meal
	err := s.run(ctx, "update_meal", func(ctx context.Context) (string, error) {
		valid, err := in.validate()
		if err != nil {
			return in.ID, err
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			current, ok := tx.FindMeal(in.ID)
			if !ok {
				return domain.NotFoundError{Entity: EntityMeal, ID: in.ID}
			}
			before = current
			var err error
			after, err = tx.UpdateMeal(in.ID, func(m *Meal) error {
				m.Name = valid.name
				m.Type = valid.typ
				m.Date = valid.date
				if in.Order != nil {
					m.Order = *in.Order
				}
				m.Recipe = in.Recipe
				m.Notes = in.Notes
				return nil
			})
			return err
		})
		s.logWarnings("update_meal", res)
		return in.ID, err
	})
	if err != nil {
		return Meal{}, SyncReport{}, err
	}
	report := s.propagateMealEdit(ctx, before, after)
	report.merge(s.reconcileAfter(ctx))
	return after, report, nil
}

// moveMeal reschedules a meal without touching its synced fields.
func (s *Service) moveMeal(ctx context.Context, id, date string, order int) (Meal, SyncReport, error) {
	var moved Meal
	err := s.run(ctx, "move_meal", func(ctx context.Context) (string, error) {
		if _, err := ValidateDate(date); err != nil {
			return id, err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			moved, err = tx.UpdateMeal(id, func(m *Meal) error {
				m.Date = date
				m.Order = order
				return nil
			})
			return err
		})
		return id, err
	})
	if err != nil {
		return Meal{}, SyncReport{}, err
	}
	return moved, s.reconcileAfter(ctx), nil
}

// DeleteMeal removes a scheduled meal. Recipes are never touched.
func (s *Service) DeleteMeal(ctx context.Context, id string) error {
	return s.run(ctx, "delete_meal", func(ctx context.Context) (string, error) {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteMeal(id)
		})
		return id, err
	})
}

// Reconcile creates a recipe for every meal name missing from the library
// and returns the created recipes.
func (s *Service) Reconcile(ctx context.Context) ([]Recipe, error) {
	var created []Recipe
	err := s.run(ctx, "reconcile_recipes", func(ctx context.Context) (string, error) {
		var err error
		created, err = s.createMissingRecipes(ctx)
		return "", err
	})
	return created, err
}

func (s *Service) createMissingRecipes(ctx context.Context) ([]Recipe, error) {
	var created []Recipe
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		view := tx.Snapshot()
		created = created[:0]
		for _, r := range mealsync.MissingRecipes(view.ListMeals(), view.ListRecipes()) {
			rec, err := tx.CreateRecipe(r)
			if err != nil {
				return err
			}
			created = append(created, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logWarnings("reconcile_recipes", res)
	return created, nil
}

func (s *Service) reconcileAfter(ctx context.Context) SyncReport {
	var report SyncReport
	created, err := s.createMissingRecipes(ctx)
	if err != nil {
		s.syncFailed(ctx, &report, "reconcile_recipes", err)
		return report
	}
	if len(created) > 0 {
		s.logger.Info("recipes created from meals", "count", len(created))
	}
	report.CreatedRecipes = created
	return report
}

func (s *Service) propagateMealEdit(ctx context.Context, before, after Meal) SyncReport {
	var report SyncReport
	var updated Recipe
	var changed bool
	_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		target, ok := mealsync.RecipeUpdateForMealEdit(before, after, tx.Snapshot().ListRecipes())
		if !ok {
			return nil
		}
		var err error
		updated, err = tx.UpdateRecipe(target.ID, func(r *Recipe) error {
			r.Name = target.Name
			r.Type = target.Type
			r.Recipe = target.Recipe
			return nil
		})
		changed = err == nil
		return err
	})
	if err != nil {
		s.syncFailed(ctx, &report, "meal_to_recipe", err)
		return report
	}
	if changed {
		report.UpdatedRecipes = append(report.UpdatedRecipes, updated)
	}
	return report
}

func (s *Service) syncFailed(ctx context.Context, report *SyncReport, step string, err error) {
	report.fail(step, err)
	s.metrics.Observe(ctx, "sync_"+step, false, 0)
	s.logger.Warn("sync step failed", "step", step, "error", err)
}
