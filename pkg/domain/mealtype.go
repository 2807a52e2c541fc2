package domain

import (
	"fmt"
	"strings"
)

// MealType categorizes meals and recipes for sorting, filtering and grouping.
type MealType string

// Canonical meal types in display order.
const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeMain      MealType = "main"
	MealTypeSnack     MealType = "snack"
)

var mealTypeOrder = []MealType{MealTypeBreakfast, MealTypeMain, MealTypeSnack}

var mealTypeLabels = map[MealType]string{
	MealTypeBreakfast: "Kahvaltı",
	MealTypeMain:      "Ana Yemek",
	MealTypeSnack:     "Ara Öğün",
}

// AllMealTypes returns the meal types ordered by rank.
func AllMealTypes() []MealType {
	return append([]MealType(nil), mealTypeOrder...)
}

// Rank returns the display rank of the type. Unknown types sort after snack.
func (t MealType) Rank() int {
	for i, known := range mealTypeOrder {
		if known == t {
			return i
		}
	}
	return len(mealTypeOrder)
}

// Valid reports whether t is one of the canonical meal types.
func (t MealType) Valid() bool {
	return t.Rank() < len(mealTypeOrder)
}

// Label returns the display label for the type.
func (t MealType) Label() string {
	if label, ok := mealTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// ParseMealType normalizes user input into a MealType.
func ParseMealType(raw string) (MealType, error) {
	t := MealType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", &ValidationError{Field: "type", Message: fmt.Sprintf("unknown meal type %q (expected breakfast, main or snack)", raw)}
	}
	return t, nil
}
