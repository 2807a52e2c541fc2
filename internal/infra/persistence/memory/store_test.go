package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mealweek/pkg/domain"
)

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindMeal("missing"); ok {
			t.Fatalf("expected missing meal lookup")
		}
		created, err := tx.CreateMeal(domain.Meal{Name: "Sucuk", Type: domain.MealTypeBreakfast, Date: "2024-06-03"})
		if err != nil {
			return err
		}
		if created.ID == "" {
			t.Fatalf("expected generated ID")
		}
		view := tx.Snapshot()
		if len(view.ListMeals()) != 1 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	if len(store.ListMeals()) != 1 {
		t.Fatalf("expected persisted meal")
	}
	snapshot := store.ExportState()
	store.ImportState(Snapshot{})
	if len(store.ListMeals()) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if len(store.ListMeals()) != 1 {
		t.Fatalf("expected restored state")
	}
	if store.RulesEngine() == nil {
		t.Fatalf("expected rules engine")
	}
	if store.NowFunc() == nil {
		t.Fatalf("expected now func")
	}
}

func TestStoreRuleViolation(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	store.RulesEngine().Register(blockingRule{})
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateRecipe(domain.Recipe{Name: "Fail", Type: domain.MealTypeMain})
		return e
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if len(store.ListRecipes()) != 0 {
		t.Fatalf("expected blocked transaction to leave no recipe behind")
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block" }

func (blockingRule) Evaluate(ctx context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	res.Merge(domain.Result{Violations: []domain.Violation{{Rule: "block", Severity: domain.SeverityBlock}}})
	return res, nil
}

func TestMealCRUD(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var id string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		m, err := tx.CreateMeal(domain.Meal{Name: " Menemen ", Type: domain.MealTypeBreakfast, Date: "2024-06-03"})
		id = m.ID
		if m.Name != "Menemen" {
			t.Fatalf("expected trimmed name, got %q", m.Name)
		}
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateMeal(id, func(m *domain.Meal) error {
			m.Date = "2024-06-04"
			m.Order = 3
			m.ID = "hijack"
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := store.GetMeal(id)
	if !ok || got.Date != "2024-06-04" || got.Order != 3 {
		t.Fatalf("unexpected meal after update: %+v", got)
	}
	if len(store.ListMealsByDate("2024-06-04")) != 1 || len(store.ListMealsByDate("2024-06-03")) != 0 {
		t.Fatalf("expected date index to follow update")
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteMeal(id)
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.GetMeal(id); ok {
		t.Fatalf("expected meal removed")
	}
}

func TestNotFoundErrors(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	cases := map[string]func(tx domain.Transaction) error{
		"update meal": func(tx domain.Transaction) error {
			_, err := tx.UpdateMeal("nope", func(*domain.Meal) error { return nil })
			return err
		},
		"delete meal": func(tx domain.Transaction) error { return tx.DeleteMeal("nope") },
		"update recipe": func(tx domain.Transaction) error {
			_, err := tx.UpdateRecipe("nope", func(*domain.Recipe) error { return nil })
			return err
		},
		"delete recipe": func(tx domain.Transaction) error { return tx.DeleteRecipe("nope") },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := store.RunInTransaction(ctx, fn)
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestEmptyNameRejected(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateMeal(domain.Meal{Name: "   ", Type: domain.MealTypeMain, Date: "2024-06-03"})
		return err
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateRecipe(domain.Recipe{Type: domain.MealTypeMain})
		return err
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for recipe, got %v", err)
	}
	if len(store.ListMeals()) != 0 || len(store.ListRecipes()) != 0 {
		t.Fatalf("expected no writes")
	}
}

func TestUpdateMutatorErrorLeavesStateUntouched(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var id string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		r, err := tx.CreateRecipe(domain.Recipe{Name: "Pilav", Type: domain.MealTypeMain})
		id = r.ID
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateRecipe(id, func(r *domain.Recipe) error {
			r.Name = "Bulgur Pilavı"
			return fmt.Errorf("boom")
		})
		return err
	})
	if err == nil {
		t.Fatalf("expected mutator error")
	}
	got, _ := store.GetRecipe(id)
	if got.Name != "Pilav" {
		t.Fatalf("expected unchanged recipe, got %q", got.Name)
	}
}

func TestCommitHookErrorKeepsPreviousState(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	hookErr := errors.New("disk unavailable")
	_, err := store.RunInTransactionWithHook(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateRecipe(domain.Recipe{Name: "Tavuk Sote", Type: domain.MealTypeMain})
		return err
	}, func(_ context.Context, next Snapshot) error {
		if len(next.Recipes) != 1 {
			t.Fatalf("expected hook to observe the candidate state")
		}
		return hookErr
	})
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if len(store.ListRecipes()) != 0 {
		t.Fatalf("expected failed hook to abort the commit")
	}
}

func TestCommitHookSkippedForReadOnlyTransactions(t *testing.T) {
	store := NewStore(nil)
	called := false
	if _, err := store.RunInTransactionWithHook(context.Background(), func(domain.Transaction) error { return nil }, func(context.Context, Snapshot) error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if called {
		t.Fatalf("expected hook to be skipped when nothing changed")
	}
}

func TestListsFollowInsertionOrder(t *testing.T) {
	store := NewStore(nil)
	fixed := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })
	names := []string{"Çorba", "Ayran", "Börek", "Zeytin"}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		for _, n := range names {
			if _, err := tx.CreateRecipe(domain.Recipe{Name: n, Type: domain.MealTypeSnack}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := store.ListRecipesByType(domain.MealTypeSnack)
	for i, r := range got {
		if r.Name != names[i] {
			t.Fatalf("expected insertion order %v, got %s at %d", names, r.Name, i)
		}
	}
	if len(store.ListRecipesByType(domain.MealTypeMain)) != 0 {
		t.Fatalf("expected type filter")
	}
}

func TestCreationStampsIncreaseAcrossTransactions(t *testing.T) {
	store := NewStore(nil)
	fixed := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return fixed })
	ctx := context.Background()
	var created []domain.Recipe
	for _, n := range []string{"Zeytin", "Ayran", "Börek"} {
		if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			r, err := tx.CreateRecipe(domain.Recipe{Name: n, Type: domain.MealTypeSnack})
			created = append(created, r)
			return err
		}); err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
	}
	if !created[0].CreatedAt.Equal(fixed) {
		t.Fatalf("expected first stamp to use the clock, got %v", created[0].CreatedAt)
	}
	for i := 1; i < len(created); i++ {
		if !created[i].CreatedAt.After(created[i-1].CreatedAt) {
			t.Fatalf("expected increasing stamps, got %v then %v", created[i-1].CreatedAt, created[i].CreatedAt)
		}
	}
	got := store.ListRecipesByType(domain.MealTypeSnack)
	if got[0].Name != "Zeytin" || got[2].Name != "Börek" {
		t.Fatalf("expected insertion order under a fixed clock, got %+v", got)
	}
}

func TestImportStateMigratesLegacySnapshot(t *testing.T) {
	store := NewStore(nil)
	owner := "u1"
	store.ImportState(Snapshot{
		Meals:   map[string]domain.Meal{"m1": {Name: " Sucuk ", Type: "Breakfast", Date: "2024-06-03", OwnerID: &owner}},
		Recipes: map[string]domain.Recipe{"r1": {Name: "Sucuk", Type: "BREAKFAST"}},
	})
	m, ok := store.GetMeal("m1")
	if !ok || m.ID != "m1" || m.Name != "Sucuk" || m.Type != domain.MealTypeBreakfast {
		t.Fatalf("unexpected migrated meal %+v", m)
	}
	owner = "changed"
	if again, _ := store.GetMeal("m1"); *again.OwnerID != "u1" {
		t.Fatalf("expected owner id to be copied on import")
	}
	r, ok := store.GetRecipe("r1")
	if !ok || r.Type != domain.MealTypeBreakfast {
		t.Fatalf("unexpected migrated recipe %+v", r)
	}
}

func TestViewIsolatedFromLaterWrites(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if len(v.ListMeals()) != 0 {
			t.Fatalf("expected empty view")
		}
		return nil
	})
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateMeal(domain.Meal{Name: "Kuru Fasulye", Type: domain.MealTypeMain, Date: "2024-06-05"})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if got := v.ListMealsByDate("2024-06-05"); len(got) != 1 {
			t.Fatalf("expected meal visible in view, got %d", len(got))
		}
		return nil
	})
}
