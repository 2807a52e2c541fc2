package core

import (
	"context"
	"fmt"

	"mealweek/internal/drag"
)

// RecipePayload builds the drag payload for a library recipe. The payload
// carries a fresh id, never the recipe's own.
func (s *Service) RecipePayload(recipeID string) (drag.Payload, error) {
	r, err := s.Recipe(recipeID)
	if err != nil {
		return drag.Payload{}, err
	}
	return drag.PayloadFromRecipe(r, s.newID()), nil
}

// MealPayload builds the drag payload for a scheduled meal.
func (s *Service) MealPayload(mealID string) (drag.Payload, error) {
	m, err := s.Meal(mealID)
	if err != nil {
		return drag.Payload{}, err
	}
	return drag.PayloadFromMeal(m), nil
}

// Drop resolves the session's drop on target against the current meals and
// applies the resulting effect. The returned session is Idle and records
// Dropped when the effect was applied. When applying fails the session records
// Cancelled, since nothing changed.
func (s *Service) Drop(ctx context.Context, session drag.Session, target drag.Target) (drag.Session, Meal, SyncReport, error) {
	next, effect, err := drag.Drop(session, target, s.store.ListMeals())
	if err != nil {
		return session, Meal{}, SyncReport{}, err
	}
	meal, report, err := s.ApplyDrop(ctx, effect)
	if err != nil {
		cancelled, _ := drag.Cancel(session)
		return cancelled, Meal{}, SyncReport{}, err
	}
	return next, meal, report, nil
}

// ApplyDrop turns a drop effect into store commands.
func (s *Service) ApplyDrop(ctx context.Context, effect drag.Effect) (Meal, SyncReport, error) {
	m := effect.Meal
	switch effect.Kind {
	case drag.EffectNone:
		return Meal{}, SyncReport{}, nil
	case drag.EffectCreate:
		order := m.Order
		return s.CreateMeal(ctx, MealInput{
			Name:   m.Name,
			Type:   string(m.Type),
			Date:   m.Date,
			Order:  &order,
			Recipe: m.Recipe,
			Notes:  m.Notes,
		})
	case drag.EffectMove:
		return s.moveMeal(ctx, m.ID, m.Date, m.Order)
	case drag.EffectDelete:
		if err := s.DeleteMeal(ctx, m.ID); err != nil {
			return Meal{}, SyncReport{}, err
		}
		return m, SyncReport{}, nil
	default:
		return Meal{}, SyncReport{}, fmt.Errorf("unknown drop effect %s", effect.Kind)
	}
}
