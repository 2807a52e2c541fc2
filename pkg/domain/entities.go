// Package domain defines the persistent meal-planning entities, value types,
// and rule evaluation primitives used by mealweek.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityMeal identifies a meal scheduled on a calendar day.
	EntityMeal EntityType = "meal"
	// EntityRecipe identifies a reusable recipe definition.
	EntityRecipe EntityType = "recipe"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// DateLayout is the ISO calendar date format used for Meal.Date.
const DateLayout = "2006-01-02"

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Meal is a dish scheduled on a specific calendar day. It carries its own
// copy of the name, type and recipe text; the recipe library is kept in step
// by name, not by reference.
type Meal struct {
	Base
	Name    string   `json:"name"`
	Type    MealType `json:"type"`
	Date    string   `json:"date"`
	Order   int      `json:"order"`
	Recipe  string   `json:"recipe,omitempty"`
	Notes   string   `json:"notes,omitempty"`
	OwnerID *string  `json:"owner_id,omitempty"`
}

// HasDate reports whether the meal is scheduled on a day.
func (m Meal) HasDate() bool {
	return strings.TrimSpace(m.Date) != ""
}

// Recipe is a reusable, date-independent dish definition.
type Recipe struct {
	Base
	Name     string   `json:"name"`
	Type     MealType `json:"type"`
	Recipe   string   `json:"recipe,omitempty"`
	Favorite bool     `json:"favorite,omitempty"`
	OwnerID  *string  `json:"owner_id,omitempty"`
}

// Snapshot captures a point-in-time copy of every stored record keyed by id.
type Snapshot struct {
	Meals   map[string]Meal   `json:"meals"`
	Recipes map[string]Recipe `json:"recipes"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violations.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity != SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}
