// Package export writes week plans as spreadsheets.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"mealweek/internal/blob"
	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

// Sheet names.
const (
	WeekSheet   = "Hafta"
	RecipeSheet = "Tarifler"
)

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWeekXLSX writes week to w: a header row of days, then one block of
// rows per meal type with one meal name per cell. When recipes is non-empty
// a second sheet lists their text.
func WriteWeekXLSX(w io.Writer, week ordering.Week, recipes []domain.Recipe) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", WeekSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(WeekSheet)
	if err != nil {
		return err
	}
	header := []any{""}
	for _, d := range week.Days {
		header = append(header, fmt.Sprintf("%s %s", d.Label, d.Date))
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	row := 2
	for _, typ := range domain.AllMealTypes() {
		for _, cells := range typeRows(week, typ) {
			addr, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := sw.SetRow(addr, cells); err != nil {
				return err
			}
			row++
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	if len(recipes) > 0 {
		if err := writeRecipes(f, recipes); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// typeRows lays out the meals of typ, at least one row, labeled on the first.
func typeRows(week ordering.Week, typ domain.MealType) [][]any {
	perDay := make([][]string, len(week.Days))
	height := 1
	for i, d := range week.Days {
		for _, m := range d.Meals {
			if m.Type == typ {
				perDay[i] = append(perDay[i], m.Name)
			}
		}
		if len(perDay[i]) > height {
			height = len(perDay[i])
		}
	}
	rows := make([][]any, height)
	for r := range rows {
		label := ""
		if r == 0 {
			label = typ.Label()
		}
		cells := []any{label}
		for _, names := range perDay {
			name := ""
			if r < len(names) {
				name = names[r]
			}
			cells = append(cells, name)
		}
		rows[r] = cells
	}
	return rows
}

func writeRecipes(f *excelize.File, recipes []domain.Recipe) error {
	if _, err := f.NewSheet(RecipeSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(RecipeSheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", []any{"Ad", "Tür", "Tarif"}); err != nil {
		return err
	}
	for i, r := range ordering.SortedRecipes(recipes) {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(addr, []any{r.Name, r.Type.Label(), ordering.RecipeText(r.Recipe)}); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// StoreWeek writes the workbook into archive under the week's export key.
func StoreWeek(ctx context.Context, archive blob.Store, week ordering.Week, recipes []domain.Recipe, at time.Time) (blob.Info, error) {
	var buf bytes.Buffer
	if err := WriteWeekXLSX(&buf, week, recipes); err != nil {
		return blob.Info{}, fmt.Errorf("write workbook: %w", err)
	}
	return archive.Put(ctx, blob.ExportKey(week.Start, at), &buf, blob.PutOptions{
		ContentType: ContentType,
		Metadata:    map[string]string{"week": week.Days[0].Date},
	})
}
