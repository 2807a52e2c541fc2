package ordering

import (
	"time"

	"mealweek/pkg/domain"
)

// DaysPerWeek is the length of a planning week.
const DaysPerWeek = 7

var dayLabels = map[time.Weekday]string{
	time.Monday:    "Pazartesi",
	time.Tuesday:   "Salı",
	time.Wednesday: "Çarşamba",
	time.Thursday:  "Perşembe",
	time.Friday:    "Cuma",
	time.Saturday:  "Cumartesi",
	time.Sunday:    "Pazar",
}

// Day is one column of the week board.
type Day struct {
	Date  string
	Label string
	Meals []domain.Meal
}

// Week is a Monday-first run of seven days.
type Week struct {
	Start time.Time
	Days  [DaysPerWeek]Day
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % DaysPerWeek
	return day.AddDate(0, 0, -offset)
}

// WeekOf builds the week containing t and fills each day with its meals in
// type-rank order.
func WeekOf(t time.Time, meals []domain.Meal) Week {
	w := Week{Start: WeekStart(t)}
	for i := range w.Days {
		d := w.Start.AddDate(0, 0, i)
		date := d.Format(domain.DateLayout)
		w.Days[i] = Day{Date: date, Label: dayLabels[d.Weekday()], Meals: MealsForDay(meals, date)}
	}
	return w
}

// Prev returns the start of the previous week.
func (w Week) Prev() time.Time { return w.Start.AddDate(0, 0, -DaysPerWeek) }

// Next returns the start of the following week.
func (w Week) Next() time.Time { return w.Start.AddDate(0, 0, DaysPerWeek) }

// Contains reports whether date falls inside the week.
func (w Week) Contains(date string) bool {
	for _, d := range w.Days {
		if d.Date == date {
			return true
		}
	}
	return false
}
