// Package ordering holds the read-side ordering, filtering and text helpers
// used to present meals and recipes.
package ordering

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mealweek/pkg/domain"
)

// RecipePlaceholder is shown in place of an empty recipe text.
const RecipePlaceholder = "Henüz tarif eklenmemiş"

// Locale drives collation and case mapping for display text.
var Locale = language.Turkish

// Collators and casers are stateful; the shared collator is guarded and
// casers are built per call.
var (
	collatorMu sync.Mutex
	collator   = collate.New(Locale, collate.IgnoreCase)
)

// MealsForDay returns the meals scheduled on date, ordered by type rank.
// Meals of equal rank keep their relative input order.
func MealsForDay(meals []domain.Meal, date string) []domain.Meal {
	out := make([]domain.Meal, 0, len(meals))
	for _, m := range meals {
		if m.Date == date {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Type.Rank() < out[j].Type.Rank()
	})
	return out
}

// ByOrder sorts meals in place by their Order field, then creation time and id.
func ByOrder(meals []domain.Meal) {
	sort.SliceStable(meals, func(i, j int) bool {
		a, b := meals[i], meals[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// MaxOrder returns the highest Order among meals on date and whether any exist.
func MaxOrder(meals []domain.Meal, date string) (int, bool) {
	highest, found := 0, false
	for _, m := range meals {
		if m.Date != date {
			continue
		}
		if !found || m.Order > highest {
			highest, found = m.Order, true
		}
	}
	return highest, found
}

// SortedRecipes returns a copy of recipes with favorites first, each group in
// locale-aware name order.
func SortedRecipes(recipes []domain.Recipe) []domain.Recipe {
	out := append([]domain.Recipe(nil), recipes...)
	collatorMu.Lock()
	defer collatorMu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return collator.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// FilteredRecipes narrows the sorted recipes by type and a case-insensitive
// name search. A nil type or blank search disables that filter.
func FilteredRecipes(recipes []domain.Recipe, typ *domain.MealType, search string) []domain.Recipe {
	needle := Fold(strings.TrimSpace(search))
	var out []domain.Recipe
	for _, r := range SortedRecipes(recipes) {
		if typ != nil && r.Type != *typ {
			continue
		}
		if needle != "" && !strings.Contains(Fold(r.Name), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FavoriteRecipes returns the favorite recipes in name order.
func FavoriteRecipes(recipes []domain.Recipe) []domain.Recipe {
	var out []domain.Recipe
	for _, r := range SortedRecipes(recipes) {
		if r.Favorite {
			out = append(out, r)
		}
	}
	return out
}

// UniqueMealNames returns the first meal seen for each distinct name, in
// first-seen order.
func UniqueMealNames(meals []domain.Meal) []domain.Meal {
	seen := make(map[string]struct{}, len(meals))
	var out []domain.Meal
	for _, m := range meals {
		if m.Name == "" {
			continue
		}
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Fold lower-cases s with locale rules so "İ" matches "i".
func Fold(s string) string {
	return cases.Lower(Locale).String(s)
}

// Capitalize upper-cases the first character of every whitespace-separated
// word and lower-cases the rest. Separators are kept as they are.
func Capitalize(s string) string {
	upper, lower := cases.Upper(Locale), cases.Lower(Locale)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			b.WriteRune(r)
			i += size
			continue
		}
		end := strings.IndexFunc(s[i:], unicode.IsSpace)
		if end < 0 {
			end = len(s)
		} else {
			end += i
		}
		b.WriteString(upper.String(s[i : i+size]))
		b.WriteString(lower.String(s[i+size : end]))
		i = end
	}
	return b.String()
}

// RecipeText returns text, or the placeholder when it is blank.
func RecipeText(text string) string {
	if strings.TrimSpace(text) == "" {
		return RecipePlaceholder
	}
	return text
}
