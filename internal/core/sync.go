package core

import (
	"errors"
	"fmt"
)

// SyncFailure is a follow-up write that did not apply.
type SyncFailure struct {
	Step string
	Err  error
}

func (f SyncFailure) Error() string {
	return fmt.Sprintf("sync %s: %v", f.Step, f.Err)
}

func (f SyncFailure) Unwrap() error { return f.Err }

// SyncReport describes the follow-up writes run after a committed meal or
// recipe mutation. Failures here never undo the primary write.
type SyncReport struct {
	UpdatedRecipes []Recipe
	UpdatedMeals   []Meal
	CreatedRecipes []Recipe
	Failures       []SyncFailure
}

// Err joins the follow-up failures, or returns nil.
func (r SyncReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

func (r *SyncReport) fail(step string, err error) {
	r.Failures = append(r.Failures, SyncFailure{Step: step, Err: err})
}

func (r *SyncReport) merge(other SyncReport) {
	r.UpdatedRecipes = append(r.UpdatedRecipes, other.UpdatedRecipes...)
	r.UpdatedMeals = append(r.UpdatedMeals, other.UpdatedMeals...)
	r.CreatedRecipes = append(r.CreatedRecipes, other.CreatedRecipes...)
	r.Failures = append(r.Failures, other.Failures...)
}
