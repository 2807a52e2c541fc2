package mealsync

import (
	"testing"
	"time"

	"mealweek/pkg/domain"
)

func recipe(id, name string, typ domain.MealType, created time.Time) domain.Recipe {
	return domain.Recipe{Base: domain.Base{ID: id, CreatedAt: created}, Name: name, Type: typ}
}

func TestRecipeUpdateForMealEditRename(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recipes := []domain.Recipe{
		recipe("r2", "Mercimek Çorbası", domain.MealTypeMain, t0.Add(time.Hour)),
		recipe("r1", "Mercimek Çorbası", domain.MealTypeMain, t0),
		recipe("r3", "Pilav", domain.MealTypeMain, t0),
	}
	before := domain.Meal{Name: "Mercimek Çorbası", Type: domain.MealTypeMain, Date: "2024-06-03"}
	after := before
	after.Name = "Ezogelin Çorbası"
	after.Recipe = "bulgur, mercimek"

	got, ok := RecipeUpdateForMealEdit(before, after, recipes)
	if !ok {
		t.Fatalf("expected recipe update")
	}
	if got.ID != "r1" {
		t.Fatalf("expected earliest matching recipe r1, got %s", got.ID)
	}
	if got.Name != "Ezogelin Çorbası" || got.Recipe != "bulgur, mercimek" {
		t.Fatalf("unexpected propagated recipe %+v", got)
	}
	if got.CreatedAt != t0 {
		t.Fatalf("expected identity fields preserved")
	}
}

func TestRecipeUpdateForMealEditNoop(t *testing.T) {
	recipes := []domain.Recipe{recipe("r1", "Pilav", domain.MealTypeMain, time.Time{})}
	base := domain.Meal{Name: "Pilav", Type: domain.MealTypeMain, Date: "2024-06-03"}

	moved := base
	moved.Date = "2024-06-04"
	moved.Notes = "extra"
	if _, ok := RecipeUpdateForMealEdit(base, moved, recipes); ok {
		t.Fatalf("expected date/notes edits not to propagate")
	}

	unmatched := domain.Meal{Name: "Menemen", Type: domain.MealTypeBreakfast}
	renamed := unmatched
	renamed.Name = "Sucuklu Menemen"
	if _, ok := RecipeUpdateForMealEdit(unmatched, renamed, recipes); ok {
		t.Fatalf("expected no update when no recipe matches the old name")
	}
}

func TestMealUpdatesForRecipeEditFansOut(t *testing.T) {
	meals := []domain.Meal{
		{Base: domain.Base{ID: "m1"}, Name: "Tavuk Sote", Type: domain.MealTypeMain, Date: "2024-06-03", Notes: "keep"},
		{Base: domain.Base{ID: "m2"}, Name: "Tavuk Sote", Type: domain.MealTypeMain, Date: "2024-06-05"},
		{Base: domain.Base{ID: "m3"}, Name: "tavuk sote", Type: domain.MealTypeMain, Date: "2024-06-06"},
	}
	before := domain.Recipe{Name: "Tavuk Sote", Type: domain.MealTypeMain}
	after := domain.Recipe{Name: "Fırında Tavuk", Type: domain.MealTypeMain, Recipe: "180 derece"}
	got := MealUpdatesForRecipeEdit(before, after, meals)
	if len(got) != 2 {
		t.Fatalf("expected exact-name fan-out to two meals, got %d", len(got))
	}
	for _, m := range got {
		if m.Name != "Fırında Tavuk" || m.Recipe != "180 derece" {
			t.Fatalf("unexpected meal %+v", m)
		}
	}
	if got[0].Notes != "keep" || got[0].Date != "2024-06-03" {
		t.Fatalf("expected schedule fields untouched, got %+v", got[0])
	}
	if MealUpdatesForRecipeEdit(before, before, meals) != nil {
		t.Fatalf("expected favorite-only edits to skip fan-out")
	}
}

func TestMissingRecipesFirstOccurrenceWins(t *testing.T) {
	meals := []domain.Meal{
		{Name: "Menemen", Type: domain.MealTypeBreakfast, Recipe: "yumurta"},
		{Name: "Pilav", Type: domain.MealTypeMain},
		{Name: "Menemen", Type: domain.MealTypeMain, Recipe: "ignored"},
		{Name: ""},
	}
	recipes := []domain.Recipe{{Name: "Pilav", Type: domain.MealTypeMain}}
	got := MissingRecipes(meals, recipes)
	if len(got) != 1 {
		t.Fatalf("expected one missing recipe, got %+v", got)
	}
	if got[0].Name != "Menemen" || got[0].Type != domain.MealTypeBreakfast || got[0].Recipe != "yumurta" || got[0].Favorite {
		t.Fatalf("unexpected auto-created recipe %+v", got[0])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	meals := []domain.Meal{
		{Name: "Sucuk", Type: domain.MealTypeBreakfast},
		{Name: "Mercimek Çorbası", Type: domain.MealTypeMain},
		{Name: "Sucuk", Type: domain.MealTypeBreakfast},
	}
	once := Reconcile(meals, nil)
	if len(once) != 2 {
		t.Fatalf("expected two recipes after first pass, got %d", len(once))
	}
	twice := Reconcile(meals, once)
	if len(twice) != len(once) {
		t.Fatalf("expected second pass to add nothing, got %d recipes", len(twice))
	}
	if len(MissingRecipes(meals, once)) != 0 {
		t.Fatalf("expected no missing recipes after reconcile")
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	recipes := make([]domain.Recipe, 1, 4)
	recipes[0] = domain.Recipe{Name: "Ayran"}
	_ = Reconcile([]domain.Meal{{Name: "Gözleme"}}, recipes)
	if extended := recipes[:2]; extended[1].Name != "" {
		t.Fatalf("expected input backing array untouched, got %+v", extended[1])
	}
}
