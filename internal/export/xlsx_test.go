package export

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"mealweek/internal/blob"
	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

func sampleWeek() ordering.Week {
	meals := []domain.Meal{
		{Base: domain.Base{ID: "1"}, Name: "Menemen", Type: domain.MealTypeBreakfast, Date: "2024-06-03"},
		{Base: domain.Base{ID: "2"}, Name: "Mercimek Çorbası", Type: domain.MealTypeMain, Date: "2024-06-03"},
		{Base: domain.Base{ID: "3"}, Name: "Pilav", Type: domain.MealTypeMain, Date: "2024-06-03", Order: 1},
		{Base: domain.Base{ID: "4"}, Name: "Sütlaç", Type: domain.MealTypeSnack, Date: "2024-06-09"},
	}
	return ordering.WeekOf(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), meals)
}

func TestWriteWeekXLSX(t *testing.T) {
	var buf bytes.Buffer
	recipes := []domain.Recipe{{Name: "Pilav", Type: domain.MealTypeMain}}
	if err := WriteWeekXLSX(&buf, sampleWeek(), recipes); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(WeekSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	// header + breakfast(1) + main(2) + snack(1)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][1] != "Pazartesi 2024-06-03" || rows[0][7] != "Pazar 2024-06-09" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "Kahvaltı" || rows[1][1] != "Menemen" {
		t.Fatalf("unexpected breakfast row %v", rows[1])
	}
	if rows[2][0] != "Ana Yemek" || rows[2][1] != "Mercimek Çorbası" || rows[3][1] != "Pilav" {
		t.Fatalf("unexpected main rows %v %v", rows[2], rows[3])
	}
	if rows[4][0] != "Ara Öğün" || rows[4][7] != "Sütlaç" {
		t.Fatalf("unexpected snack row %v", rows[4])
	}

	recipeRows, err := f.GetRows(RecipeSheet)
	if err != nil {
		t.Fatalf("recipe rows: %v", err)
	}
	if len(recipeRows) != 2 || recipeRows[1][2] != ordering.RecipePlaceholder {
		t.Fatalf("unexpected recipe sheet %v", recipeRows)
	}
}

func TestStoreWeek(t *testing.T) {
	archive := blob.NewMemory()
	ctx := context.Background()
	at := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	info, err := StoreWeek(ctx, archive, sampleWeek(), nil, at)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if !strings.HasPrefix(info.Key, "exports/2024-06-03/") || info.ContentType != ContentType {
		t.Fatalf("unexpected info %+v", info)
	}
	_, body, err := archive.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()
	raw, _ := io.ReadAll(body)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("open stored workbook: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex(RecipeSheet); idx != -1 {
		t.Fatalf("expected no recipe sheet without recipes")
	}
}
