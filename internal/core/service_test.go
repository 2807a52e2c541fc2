package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealweek/internal/blob"
	"mealweek/internal/drag"
	"mealweek/internal/infra/persistence/memory"
	"mealweek/pkg/domain"
)

var fixedNow = time.Date(2024, 3, 13, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	opts = append([]ServiceOption{WithClock(ClockFunc(func() time.Time { return fixedNow }))}, opts...)
	return NewInMemoryService(NewDefaultRulesEngine(), opts...)
}

func mustMeal(t *testing.T, svc *Service, name, typ, date string) Meal {
	t.Helper()
	m, report, err := svc.CreateMeal(context.Background(), MealInput{Name: name, Type: typ, Date: date})
	if err != nil {
		t.Fatalf("create meal %q: %v", name, err)
	}
	if err := report.Err(); err != nil {
		t.Fatalf("create meal %q sync: %v", name, err)
	}
	return m
}

func mustRecipe(t *testing.T, svc *Service, name, typ, text string) Recipe {
	t.Helper()
	r, err := svc.CreateRecipe(context.Background(), RecipeInput{Name: name, Type: typ, Recipe: text})
	if err != nil {
		t.Fatalf("create recipe %q: %v", name, err)
	}
	return r
}

func recipesNamed(svc *Service, name string) []Recipe {
	var out []Recipe
	for _, r := range svc.Store().ListRecipes() {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// failingStore lets the first ok transactions through and fails the rest.
type failingStore struct {
	PersistentStore
	ok    int
	calls int
}

func (f *failingStore) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	f.calls++
	if f.calls > f.ok {
		return Result{}, &domain.PersistenceError{Op: "commit", Err: errors.New("disk full")}
	}
	return f.PersistentStore.RunInTransaction(ctx, fn)
}

func TestCreateMealAutoCreatesRecipeOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, report, err := svc.CreateMeal(ctx, MealInput{Name: "  Menemen ", Type: "breakfast", Date: "2024-03-11", Recipe: "Domates, biber, yumurta"})
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}
	if m.Name != "Menemen" || m.Order != 0 {
		t.Fatalf("expected trimmed first meal with order 0, got %+v", m)
	}
	if len(report.CreatedRecipes) != 1 {
		t.Fatalf("expected one recipe created, got %+v", report.CreatedRecipes)
	}
	created := report.CreatedRecipes[0]
	if created.Name != "Menemen" || created.Type != domain.MealTypeBreakfast || created.Recipe != "Domates, biber, yumurta" || created.Favorite {
		t.Fatalf("unexpected auto-created recipe %+v", created)
	}

	second, report, err := svc.CreateMeal(ctx, MealInput{Name: "Menemen", Type: "breakfast", Date: "2024-03-11"})
	if err != nil {
		t.Fatalf("create second meal: %v", err)
	}
	if second.Order != 1 {
		t.Fatalf("expected order 1 after existing meal, got %d", second.Order)
	}
	if len(report.CreatedRecipes) != 0 {
		t.Fatalf("expected no new recipe, got %+v", report.CreatedRecipes)
	}
	if got := len(recipesNamed(svc, "Menemen")); got != 1 {
		t.Fatalf("expected exactly one Menemen recipe, got %d", got)
	}

	again, err := svc.Reconcile(ctx)
	if err != nil || len(again) != 0 {
		t.Fatalf("expected idempotent reconcile, got %v %v", again, err)
	}
}

func TestCreateMealValidation(t *testing.T) {
	svc := newTestService(t)
	cases := []struct {
		name string
		in   MealInput
	}{
		{"empty name", MealInput{Name: "  ", Type: "main", Date: "2024-03-11"}},
		{"unknown type", MealInput{Name: "Pilav", Type: "brunch", Date: "2024-03-11"}},
		{"missing date", MealInput{Name: "Pilav", Type: "main"}},
		{"bad date", MealInput{Name: "Pilav", Type: "main", Date: "11.03.2024"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.CreateMeal(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if meals, recipes := svc.Counts(); meals != 0 || recipes != 0 {
		t.Fatalf("expected nothing stored, got %d meals %d recipes", meals, recipes)
	}
}

func TestUpdateMealPropagatesToEarliestRecipe(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.ImportRecords(ctx, nil, []Recipe{
		{Base: Base{ID: "r2", CreatedAt: older.Add(time.Hour)}, Name: "Mercimek Çorbası", Type: domain.MealTypeMain},
		{Base: Base{ID: "r1", CreatedAt: older}, Name: "Mercimek Çorbası", Type: domain.MealTypeMain},
	}); err != nil {
		t.Fatalf("import: %v", err)
	}
	meal := mustMeal(t, svc, "Mercimek Çorbası", "main", "2024-03-12")

	updated, report, err := svc.UpdateMeal(ctx, MealInput{ID: meal.ID, Name: "Ezogelin Çorbası", Type: "main", Date: meal.Date, Recipe: "Bulgur ekle"})
	if err != nil {
		t.Fatalf("update meal: %v", err)
	}
	if updated.Name != "Ezogelin Çorbası" {
		t.Fatalf("expected renamed meal, got %+v", updated)
	}
	if len(report.UpdatedRecipes) != 1 || report.UpdatedRecipes[0].ID != "r1" {
		t.Fatalf("expected r1 updated, got %+v", report.UpdatedRecipes)
	}
	r1, _ := svc.Recipe("r1")
	r2, _ := svc.Recipe("r2")
	if r1.Name != "Ezogelin Çorbası" || r1.Recipe != "Bulgur ekle" {
		t.Fatalf("expected r1 to follow the meal, got %+v", r1)
	}
	if r2.Name != "Mercimek Çorbası" {
		t.Fatalf("expected r2 untouched, got %+v", r2)
	}
	if len(report.CreatedRecipes) != 0 {
		t.Fatalf("expected no reconcile creations after propagation, got %+v", report.CreatedRecipes)
	}
}

func TestUpdateMealNotesOnlySkipsPropagation(t *testing.T) {
	svc := newTestService(t)
	meal := mustMeal(t, svc, "Pilav", "main", "2024-03-12")
	before := recipesNamed(svc, "Pilav")[0]

	_, report, err := svc.UpdateMeal(context.Background(), MealInput{ID: meal.ID, Name: "Pilav", Type: "main", Date: "2024-03-12", Notes: "az tuz"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(report.UpdatedRecipes) != 0 {
		t.Fatalf("expected no recipe update, got %+v", report.UpdatedRecipes)
	}
	after, _ := svc.Recipe(before.ID)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("expected recipe untouched")
	}
}

func TestUpdateMealMissing(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.UpdateMeal(context.Background(), MealInput{ID: "nope", Name: "Pilav", Type: "main", Date: "2024-03-12"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateRecipeFansOutToMeals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	recipe := mustRecipe(t, svc, "Karnıyarık", "main", "")
	a := mustMeal(t, svc, "Karnıyarık", "main", "2024-03-11")
	b := mustMeal(t, svc, "Karnıyarık", "main", "2024-03-14")
	other := mustMeal(t, svc, "karnıyarık", "main", "2024-03-15")

	_, report, err := svc.UpdateRecipe(ctx, RecipeInput{ID: recipe.ID, Name: "Patlıcan Karnıyarık", Type: "main", Recipe: "Kıymalı"})
	if err != nil {
		t.Fatalf("update recipe: %v", err)
	}
	if len(report.UpdatedMeals) != 2 {
		t.Fatalf("expected two meals updated, got %+v", report.UpdatedMeals)
	}
	for _, id := range []string{a.ID, b.ID} {
		m, _ := svc.Meal(id)
		if m.Name != "Patlıcan Karnıyarık" || m.Recipe != "Kıymalı" {
			t.Fatalf("expected meal %s to follow recipe, got %+v", id, m)
		}
	}
	untouched, _ := svc.Meal(other.ID)
	if untouched.Name != "karnıyarık" {
		t.Fatalf("expected case-different meal untouched, got %+v", untouched)
	}
}

func TestToggleFavoriteDoesNotSync(t *testing.T) {
	svc := newTestService(t)
	r := mustRecipe(t, svc, "Sütlaç", "snack", "")
	meal := mustMeal(t, svc, "Sütlaç", "snack", "2024-03-13")

	toggled, err := svc.ToggleFavorite(context.Background(), r.ID)
	if err != nil || !toggled.Favorite {
		t.Fatalf("expected favorite, got %+v %v", toggled, err)
	}
	after, _ := svc.Meal(meal.ID)
	if !after.UpdatedAt.Equal(meal.UpdatedAt) {
		t.Fatalf("expected meal untouched by favorite toggle")
	}
	if _, err := svc.ToggleFavorite(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRecipeRejectsDuplicateName(t *testing.T) {
	svc := newTestService(t)
	mustRecipe(t, svc, "Börek", "breakfast", "")
	_, err := svc.CreateRecipe(context.Background(), RecipeInput{Name: " Börek ", Type: "snack"})
	if !errors.Is(err, domain.ErrDuplicateRecipe) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected duplicate validation error, got %v", err)
	}
}

func TestCreateRecipeRejectsCaseVariantName(t *testing.T) {
	svc := newTestService(t)
	mustRecipe(t, svc, "Mercimek Çorbası", "main", "")
	cases := []string{"mercimek çorbası", "MERCİMEK ÇORBASI"}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateRecipe(context.Background(), RecipeInput{Name: name, Type: "main"})
			if !errors.Is(err, domain.ErrDuplicateRecipe) {
				t.Fatalf("expected duplicate error for %q, got %v", name, err)
			}
		})
	}
	if _, recipes := svc.Counts(); recipes != 1 {
		t.Fatalf("expected a single recipe, got %d", recipes)
	}
	if _, err := svc.CreateRecipe(context.Background(), RecipeInput{Name: "Mercimek Köftesi", Type: "snack"}); err != nil {
		t.Fatalf("expected distinct name to be accepted, got %v", err)
	}
}

func TestStoreTimestampsFollowServiceClock(t *testing.T) {
	svc := newTestService(t)
	first := mustRecipe(t, svc, "Zeytinyağlı Fasulye", "main", "")
	second := mustRecipe(t, svc, "Ayran", "snack", "")
	if !first.CreatedAt.Equal(fixedNow) {
		t.Fatalf("expected creation time from the service clock, got %v", first.CreatedAt)
	}
	if !second.CreatedAt.After(first.CreatedAt) {
		t.Fatalf("expected later creation to sort after, got %v then %v", first.CreatedAt, second.CreatedAt)
	}
}

func TestDeletionAsymmetry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	meal := mustMeal(t, svc, "Mantı", "main", "2024-03-12")
	recipe := recipesNamed(svc, "Mantı")[0]

	if err := svc.DeleteRecipe(ctx, recipe.ID); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}
	if _, err := svc.Meal(meal.ID); err != nil {
		t.Fatalf("expected meal to survive recipe deletion: %v", err)
	}
	if err := svc.DeleteMeal(ctx, meal.ID); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	if err := svc.DeleteMeal(ctx, meal.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}

	kept := mustRecipe(t, svc, "Lahmacun", "main", "")
	m := mustMeal(t, svc, "Lahmacun", "main", "2024-03-13")
	if err := svc.DeleteMeal(ctx, m.ID); err != nil {
		t.Fatalf("delete meal: %v", err)
	}
	if _, err := svc.Recipe(kept.ID); err != nil {
		t.Fatalf("expected recipe to survive meal deletion: %v", err)
	}
}

func TestSecondarySyncFailureKeepsPrimaryWrite(t *testing.T) {
	store := &failingStore{PersistentStore: memory.NewStore(NewDefaultRulesEngine()), ok: 1}
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	svc := NewService(store, WithAuditRecorder(audit), WithMetricsRecorder(metrics))

	meal, report, err := svc.CreateMeal(context.Background(), MealInput{Name: "Kuru Fasulye", Type: "main", Date: "2024-03-12"})
	if err != nil {
		t.Fatalf("expected primary write to succeed, got %v", err)
	}
	if _, err := svc.Meal(meal.ID); err != nil {
		t.Fatalf("expected meal persisted: %v", err)
	}
	if report.Err() == nil || !errors.Is(report.Err(), domain.ErrPersistenceUnavailable) {
		t.Fatalf("expected persistence failure in report, got %v", report.Err())
	}
	if len(report.Failures) != 1 || report.Failures[0].Step != "reconcile_recipes" {
		t.Fatalf("unexpected failures %+v", report.Failures)
	}
	if !audit.has("create_meal", AuditStatusSuccess, nil) {
		t.Fatalf("expected successful create audit, got %+v", audit.entries)
	}
	if !metrics.has("sync_reconcile_recipes", false) {
		t.Fatalf("expected sync failure metric, got %+v", metrics.calls)
	}
	if len(svc.Store().ListRecipes()) != 0 {
		t.Fatalf("expected no recipe after failed reconcile")
	}
}

func TestPrimaryFailureReturnsError(t *testing.T) {
	store := &failingStore{PersistentStore: memory.NewStore(nil)}
	svc := NewService(store)
	_, _, err := svc.CreateMeal(context.Background(), MealInput{Name: "Pilav", Type: "main", Date: "2024-03-12"})
	if !errors.Is(err, domain.ErrPersistenceUnavailable) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestDragRecipeToDayCopies(t *testing.T) {
	svc := newTestService(t, WithIDGenerator(func() string { return "payload-1" }))
	ctx := context.Background()
	recipe := mustRecipe(t, svc, "Simit", "breakfast", "Susamlı")
	mustMeal(t, svc, "Çay", "breakfast", "2024-03-14")

	payload, err := svc.RecipePayload(recipe.ID)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Meal.ID != "payload-1" || payload.Meal.HasDate() {
		t.Fatalf("expected fresh undated payload, got %+v", payload.Meal)
	}
	session, err := drag.Start(drag.Session{}, payload, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	session, meal, _, err := svc.Drop(ctx, session, drag.DayTarget("2024-03-14"))
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if session.State != drag.StateIdle || session.Last != drag.StateDropped {
		t.Fatalf("unexpected session %+v", session)
	}
	if meal.ID == "" || meal.ID == "payload-1" || meal.ID == recipe.ID {
		t.Fatalf("expected a new stored id, got %q", meal.ID)
	}
	if meal.Name != "Simit" || meal.Recipe != "Susamlı" || meal.Date != "2024-03-14" || meal.Order != 1 {
		t.Fatalf("unexpected dropped meal %+v", meal)
	}
	if got := len(recipesNamed(svc, "Simit")); got != 1 {
		t.Fatalf("expected drop not to duplicate the recipe, got %d", got)
	}
}

func TestDragMealMoveCopyAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	meal := mustMeal(t, svc, "Köfte", "main", "2024-03-11")
	mustMeal(t, svc, "Cacık", "snack", "2024-03-12")

	payload, err := svc.MealPayload(meal.ID)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	session, _ := drag.Start(drag.Session{}, payload, false)
	_, moved, _, err := svc.Drop(ctx, session, drag.DayTarget("2024-03-12"))
	if err != nil {
		t.Fatalf("move drop: %v", err)
	}
	if moved.ID != meal.ID || moved.Date != "2024-03-12" || moved.Order != 1 {
		t.Fatalf("unexpected moved meal %+v", moved)
	}

	payload, _ = svc.MealPayload(meal.ID)
	session, _ = drag.Start(drag.Session{}, payload, true)
	_, copied, _, err := svc.Drop(ctx, session, drag.DayTarget("2024-03-13"))
	if err != nil {
		t.Fatalf("copy drop: %v", err)
	}
	if copied.ID == meal.ID || copied.Date != "2024-03-13" || copied.Order != 0 {
		t.Fatalf("unexpected copy %+v", copied)
	}
	if original, _ := svc.Meal(meal.ID); original.Date != "2024-03-12" {
		t.Fatalf("expected original to stay, got %+v", original)
	}

	session, _ = drag.Start(drag.Session{}, payload, false)
	_, _, _, err = svc.Drop(ctx, session, drag.LibraryTarget())
	if err != nil {
		t.Fatalf("library drop: %v", err)
	}
	if _, err := svc.Meal(meal.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected meal deleted, got %v", err)
	}
	if got := len(recipesNamed(svc, "Köfte")); got != 1 {
		t.Fatalf("expected recipe to survive, got %d", got)
	}
}

func TestDropOfVanishedMealEndsCancelled(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	meal := mustMeal(t, svc, "Pide", "main", "2024-03-11")
	payload, _ := svc.MealPayload(meal.ID)
	session, _ := drag.Start(drag.Session{}, payload, false)
	if err := svc.DeleteMeal(ctx, meal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	next, got, _, err := svc.Drop(ctx, session, drag.DayTarget("2024-03-12"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if next.State != drag.StateIdle || next.Last != drag.StateCancelled || got.ID != "" {
		t.Fatalf("expected idle cancelled session, got %+v %+v", next, got)
	}
	if meals, _ := svc.Counts(); meals != 0 {
		t.Fatalf("expected no meal recreated, got %d", meals)
	}
}

func TestDropOnSameDayIsNoop(t *testing.T) {
	svc := newTestService(t)
	meal := mustMeal(t, svc, "Pide", "main", "2024-03-11")
	payload, _ := svc.MealPayload(meal.ID)
	session, _ := drag.Start(drag.Session{}, payload, true)
	_, got, report, err := svc.Drop(context.Background(), session, drag.DayTarget("2024-03-11"))
	if err != nil || got.ID != "" || report.Err() != nil {
		t.Fatalf("expected no-op, got %+v %v", got, err)
	}
	if meals, _ := svc.Counts(); meals != 1 {
		t.Fatalf("expected one meal, got %d", meals)
	}
}

func TestViews(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustMeal(t, svc, "Pilav", "main", "2024-03-11")
	mustMeal(t, svc, "Menemen", "breakfast", "2024-03-11")
	mustMeal(t, svc, "Kurabiye", "snack", "2024-03-17")
	mustMeal(t, svc, "Pilav", "main", "2024-03-18")
	if _, err := svc.ToggleFavorite(ctx, recipesNamed(svc, "Pilav")[0].ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}

	day := svc.MealsForDay("2024-03-11")
	if len(day) != 2 || day[0].Name != "Menemen" || day[1].Name != "Pilav" {
		t.Fatalf("expected breakfast before main, got %+v", day)
	}

	week := svc.Week(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC))
	if week.Days[0].Date != "2024-03-11" || week.Days[6].Date != "2024-03-17" {
		t.Fatalf("unexpected week bounds %s..%s", week.Days[0].Date, week.Days[6].Date)
	}
	if len(week.Days[6].Meals) != 1 || week.Contains("2024-03-18") {
		t.Fatalf("expected week to exclude next monday")
	}
	if !week.IsToday("2024-03-13") {
		t.Fatalf("expected today marker on 2024-03-13, got %s", week.Today)
	}

	sorted := svc.SortedRecipes()
	if sorted[0].Name != "Pilav" {
		t.Fatalf("expected favorite first, got %+v", sorted)
	}
	snack := domain.MealTypeSnack
	if got := svc.FilteredRecipes(&snack, "kura"); len(got) != 1 || got[0].Name != "Kurabiye" {
		t.Fatalf("unexpected filter result %+v", got)
	}
	if got := svc.FavoriteRecipes(); len(got) != 1 {
		t.Fatalf("expected one favorite, got %+v", got)
	}
	unique := svc.UniqueMealNames()
	if len(unique) != 3 || unique[0].Name != "Pilav" || unique[0].Date != "2024-03-11" {
		t.Fatalf("expected first Pilav to represent its name, got %+v", unique)
	}
}

func TestClearAndImport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mustMeal(t, svc, "Pilav", "main", "2024-03-11")
	report, err := svc.Clear(ctx)
	if err != nil || report.Meals != 1 || report.Recipes != 1 {
		t.Fatalf("unexpected clear %+v %v", report, err)
	}

	imported, err := svc.ImportRecords(ctx,
		[]Meal{{Name: "Dolma", Type: domain.MealTypeMain, Date: "2024-03-12"}},
		nil)
	if err != nil || imported.Meals != 1 {
		t.Fatalf("unexpected import %+v %v", imported, err)
	}
	if len(svc.Store().ListRecipes()) != 0 {
		t.Fatalf("expected import to skip synchronization")
	}
	_, err = svc.ImportRecords(ctx, []Meal{{Name: "Dolma", Type: domain.MealTypeMain}}, nil)
	var blocked RuleViolationError
	if !errors.As(err, &blocked) || blocked.Result.Violations[0].Rule != RuleMealDateRequired {
		t.Fatalf("expected blocked undated import, got %v", err)
	}
}

func TestBackupAndRestore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	archive := blob.NewMemory()
	meal := mustMeal(t, svc, "Pilav", "main", "2024-03-11")

	info, err := svc.Backup(ctx, archive)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if info.Metadata["meals"] != "1" || info.Metadata["recipes"] != "1" {
		t.Fatalf("unexpected backup metadata %+v", info.Metadata)
	}
	if _, err := svc.Backup(ctx, archive); err == nil {
		t.Fatalf("expected second backup at the same instant to collide")
	}

	if _, err := svc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	mustMeal(t, svc, "Çorba", "main", "2024-03-12")

	report, err := svc.Restore(ctx, archive, "")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if report.Meals != 1 || report.Recipes != 1 {
		t.Fatalf("unexpected restore report %+v", report)
	}
	restored, err := svc.Meal(meal.ID)
	if err != nil || !restored.CreatedAt.Equal(meal.CreatedAt) {
		t.Fatalf("expected meal restored with its id and creation time, got %+v %v", restored, err)
	}
	if meals, _ := svc.Counts(); meals != 1 {
		t.Fatalf("expected restore to replace the plan, got %d meals", meals)
	}

	if _, err := svc.Restore(ctx, blob.NewMemory(), ""); !IsMissingBackup(err) {
		t.Fatalf("expected missing backup, got %v", err)
	}
}

func TestServiceObservability(t *testing.T) {
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc := newTestService(t, WithAuditRecorder(audit), WithMetricsRecorder(metrics), WithTracer(tracer))
	ctx := context.Background()

	meal := mustMeal(t, svc, "Pilav", "main", "2024-03-11")
	if err := svc.DeleteMeal(ctx, "missing"); err == nil {
		t.Fatalf("expected delete error")
	}

	if !audit.has("create_meal", AuditStatusSuccess, func(e AuditEntry) bool {
		return e.EntityID == meal.ID && e.Entity == EntityMeal && e.Action == ActionCreate && e.Timestamp.Equal(fixedNow)
	}) {
		t.Fatalf("expected create audit entry, got %+v", audit.entries)
	}
	if !audit.has("delete_meal", AuditStatusError, func(e AuditEntry) bool { return e.Error != "" }) {
		t.Fatalf("expected delete error audit entry, got %+v", audit.entries)
	}
	if !metrics.has("create_meal", true) || !metrics.has("delete_meal", false) {
		t.Fatalf("unexpected metrics %+v", metrics.calls)
	}
	if !tracer.has("create_meal", true) || !tracer.has("delete_meal", false) {
		t.Fatalf("unexpected spans %+v", tracer.ended)
	}
}

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus, predicate func(AuditEntry) bool) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			if predicate == nil || predicate(entry) {
				return true
			}
		}
	}
	return false
}

type metricsCall struct {
	op       string
	success  bool
	duration time.Duration
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success, duration: duration})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureTracer struct {
	ended []spanRecord
}

type spanRecord struct {
	op  string
	err error
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, record := range c.ended {
		if record.op == op && (record.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}
