// Package drag models moving and copying meals between days as an explicit
// state machine. Sessions are values: each transition takes the current
// session and returns the next one together with the effect to apply.
package drag

import (
	"errors"
	"fmt"

	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

// Mode is the effect a drop has on its source.
type Mode int

// Transfer modes.
const (
	ModeMove Mode = iota
	ModeCopy
)

func (m Mode) String() string {
	if m == ModeCopy {
		return "copy"
	}
	return "move"
}

// TransferMode decides between move and copy. A source without a date has
// nothing to move from, so it always copies.
func TransferMode(sourceHasDate, modifierHeld bool) Mode {
	if !sourceHasDate || modifierHeld {
		return ModeCopy
	}
	return ModeMove
}

// State is a drag lifecycle state.
type State int

// Lifecycle states. Dropped and Cancelled are recorded as the last terminal
// state; the session itself returns to Idle.
const (
	StateIdle State = iota
	StateDragging
	StateDropped
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateDropped:
		return "dropped"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

var (
	// ErrDragInProgress is returned when a drag starts while another is in flight.
	ErrDragInProgress = errors.New("drag already in progress")
	// ErrNoDrag is returned when dropping or cancelling without an active drag.
	ErrNoDrag = errors.New("no drag in progress")
)

// Payload is the meal-shaped value carried by a drag.
type Payload struct {
	Meal       domain.Meal
	FromRecipe bool
}

// PayloadFromMeal carries a scheduled meal.
func PayloadFromMeal(m domain.Meal) Payload {
	return Payload{Meal: m}
}

// PayloadFromRecipe builds a synthetic, unsaved meal from a recipe. The
// payload gets its own id and no date; the recipe's identity is not carried.
func PayloadFromRecipe(r domain.Recipe, id string) Payload {
	return Payload{
		Meal: domain.Meal{
			Base:    domain.Base{ID: id},
			Name:    r.Name,
			Type:    r.Type,
			Recipe:  r.Recipe,
			OwnerID: r.OwnerID,
		},
		FromRecipe: true,
	}
}

// TargetKind distinguishes drop zones.
type TargetKind int

// Drop zones.
const (
	TargetDay TargetKind = iota
	TargetLibrary
)

// Target is where a drag ends.
type Target struct {
	Kind TargetKind
	Date string
}

// DayTarget targets the given calendar day.
func DayTarget(date string) Target { return Target{Kind: TargetDay, Date: date} }

// LibraryTarget targets the recipe library zone.
func LibraryTarget() Target { return Target{Kind: TargetLibrary} }

// EffectKind enumerates store commands produced by a drop.
type EffectKind int

// Effect kinds.
const (
	EffectNone EffectKind = iota
	EffectCreate
	EffectMove
	EffectDelete
)

func (k EffectKind) String() string {
	switch k {
	case EffectCreate:
		return "create"
	case EffectMove:
		return "move"
	case EffectDelete:
		return "delete"
	default:
		return "none"
	}
}

// Effect is the store command a drop resolves to. For EffectCreate Meal is the
// new meal without an id; for EffectMove it is the relocated meal; for
// EffectDelete only Meal.ID matters.
type Effect struct {
	Kind EffectKind
	Meal domain.Meal
}

// Session is the drag state threaded through the lifecycle.
type Session struct {
	State    State
	Last     State
	Payload  Payload
	Modifier bool
}

// Mode reports the transfer mode for the current payload and modifier.
func (s Session) Mode() Mode {
	return TransferMode(s.Payload.Meal.HasDate(), s.Modifier)
}

// Start begins a drag.
func Start(s Session, p Payload, modifier bool) (Session, error) {
	if s.State == StateDragging {
		return s, ErrDragInProgress
	}
	return Session{State: StateDragging, Last: s.Last, Payload: p, Modifier: modifier}, nil
}

// Over records the modifier state while hovering.
func Over(s Session, modifier bool) (Session, error) {
	if s.State != StateDragging {
		return s, ErrNoDrag
	}
	s.Modifier = modifier
	return s, nil
}

// Cancel ends the drag with no effect.
func Cancel(s Session) (Session, error) {
	if s.State != StateDragging {
		return s, ErrNoDrag
	}
	return Session{State: StateIdle, Last: StateCancelled}, nil
}

// Drop ends the drag on target. meals is the current meal list, used to place
// the result after the target day's highest order.
func Drop(s Session, target Target, meals []domain.Meal) (Session, Effect, error) {
	if s.State != StateDragging {
		return s, Effect{}, ErrNoDrag
	}
	effect, err := resolve(s, target, meals)
	if err != nil {
		return s, Effect{}, err
	}
	return Session{State: StateIdle, Last: StateDropped}, effect, nil
}

func resolve(s Session, target Target, meals []domain.Meal) (Effect, error) {
	src := s.Payload.Meal
	switch target.Kind {
	case TargetLibrary:
		if !src.HasDate() {
			return Effect{Kind: EffectNone}, nil
		}
		return Effect{Kind: EffectDelete, Meal: src}, nil
	case TargetDay:
		if target.Date == "" {
			return Effect{}, &domain.ValidationError{Field: "date", Message: "drop target has no date"}
		}
		if target.Date == src.Date {
			return Effect{Kind: EffectNone}, nil
		}
		order := 0
		if highest, ok := ordering.MaxOrder(meals, target.Date); ok {
			order = highest + 1
		}
		out := src
		out.Date = target.Date
		out.Order = order
		if s.Mode() == ModeCopy {
			out.Base = domain.Base{}
			return Effect{Kind: EffectCreate, Meal: out}, nil
		}
		return Effect{Kind: EffectMove, Meal: out}, nil
	default:
		return Effect{}, fmt.Errorf("unknown drop target %d", target.Kind)
	}
}
