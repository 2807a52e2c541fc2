// Package memory provides an in-memory implementation of the meal-planning
// persistence store used for tests, ephemeral sessions, and as the
// transactional engine underneath the durable backends.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mealweek/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Meal aliases domain.Meal for in-memory persistence operations.
	Meal = domain.Meal
	// Recipe aliases domain.Recipe.
	Recipe = domain.Recipe
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// CommitHook receives the post-transaction state before it becomes visible.
// A non-nil error aborts the commit and leaves the previous state in place.
type CommitHook func(ctx context.Context, next Snapshot) error

type memoryState struct {
	meals   map[string]Meal
	recipes map[string]Recipe
}

func newMemoryState() memoryState {
	return memoryState{
		meals:   make(map[string]Meal),
		recipes: make(map[string]Recipe),
	}
}

func (s memoryState) clone() memoryState {
	cp := memoryState{
		meals:   make(map[string]Meal, len(s.meals)),
		recipes: make(map[string]Recipe, len(s.recipes)),
	}
	for k, v := range s.meals {
		cp.meals[k] = cloneMeal(v)
	}
	for k, v := range s.recipes {
		cp.recipes[k] = cloneRecipe(v)
	}
	return cp
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	cp := state.clone()
	return Snapshot{Meals: cp.meals, Recipes: cp.recipes}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Meals {
		state.meals[k] = cloneMeal(v)
	}
	for k, v := range s.Recipes {
		state.recipes[k] = cloneRecipe(v)
	}
	return state
}

// migrateSnapshot normalizes snapshots written by older builds: ids are
// backfilled from map keys, types are lower-cased, and names are trimmed.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	out := Snapshot{
		Meals:   make(map[string]Meal, len(snapshot.Meals)),
		Recipes: make(map[string]Recipe, len(snapshot.Recipes)),
	}
	for id, m := range snapshot.Meals {
		if m.ID == "" {
			m.ID = id
		}
		m.Name = strings.TrimSpace(m.Name)
		m.Type = domain.MealType(strings.ToLower(string(m.Type)))
		out.Meals[m.ID] = cloneMeal(m)
	}
	for id, r := range snapshot.Recipes {
		if r.ID == "" {
			r.ID = id
		}
		r.Name = strings.TrimSpace(r.Name)
		r.Type = domain.MealType(strings.ToLower(string(r.Type)))
		out.Recipes[r.ID] = cloneRecipe(r)
	}
	return out
}

func cloneMeal(m Meal) Meal {
	if m.OwnerID != nil {
		owner := *m.OwnerID
		m.OwnerID = &owner
	}
	return m
}

func cloneRecipe(r Recipe) Recipe {
	if r.OwnerID != nil {
		owner := *r.OwnerID
		r.OwnerID = &owner
	}
	return r
}

// Store provides an in-memory transactional store for meals and recipes.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	// last is the latest creation stamp committed; later stamps sort after it.
	last time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used for record timestamps.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the timestamp source. A nil fn restores UTC wall time.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func() time.Time { return time.Now().UTC() }
	}
	s.nowFn = fn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
	created int
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func sortMeals(meals []Meal) {
	sort.Slice(meals, func(i, j int) bool {
		if !meals[i].CreatedAt.Equal(meals[j].CreatedAt) {
			return meals[i].CreatedAt.Before(meals[j].CreatedAt)
		}
		return meals[i].ID < meals[j].ID
	})
}

func sortRecipes(recipes []Recipe) {
	sort.Slice(recipes, func(i, j int) bool {
		if !recipes[i].CreatedAt.Equal(recipes[j].CreatedAt) {
			return recipes[i].CreatedAt.Before(recipes[j].CreatedAt)
		}
		return recipes[i].ID < recipes[j].ID
	})
}

func listMeals(state *memoryState, keep func(Meal) bool) []Meal {
	out := make([]Meal, 0, len(state.meals))
	for _, m := range state.meals {
		if keep == nil || keep(m) {
			out = append(out, cloneMeal(m))
		}
	}
	sortMeals(out)
	return out
}

func listRecipes(state *memoryState, keep func(Recipe) bool) []Recipe {
	out := make([]Recipe, 0, len(state.recipes))
	for _, r := range state.recipes {
		if keep == nil || keep(r) {
			out = append(out, cloneRecipe(r))
		}
	}
	sortRecipes(out)
	return out
}

// ListMeals returns all meals in insertion order.
func (v transactionView) ListMeals() []Meal { return listMeals(v.state, nil) }

// ListMealsByDate returns meals scheduled on the exact date.
func (v transactionView) ListMealsByDate(date string) []Meal {
	return listMeals(v.state, func(m Meal) bool { return m.Date == date })
}

// ListRecipes returns all recipes in insertion order.
func (v transactionView) ListRecipes() []Recipe { return listRecipes(v.state, nil) }

// ListRecipesByType returns recipes of the given type.
func (v transactionView) ListRecipesByType(t domain.MealType) []Recipe {
	return listRecipes(v.state, func(r Recipe) bool { return r.Type == t })
}

// FindMeal retrieves a meal by id.
func (v transactionView) FindMeal(id string) (Meal, bool) {
	m, ok := v.state.meals[id]
	if !ok {
		return Meal{}, false
	}
	return cloneMeal(m), true
}

// FindRecipe retrieves a recipe by id.
func (v transactionView) FindRecipe(id string) (Recipe, bool) {
	r, ok := v.state.recipes[id]
	if !ok {
		return Recipe{}, false
	}
	return cloneRecipe(r), true
}

// RunInTransaction executes fn against a private copy of the state, evaluates
// the rules engine, and commits when no blocking violation is reported.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	return s.RunInTransactionWithHook(ctx, fn, nil)
}

// RunInTransactionWithHook behaves like RunInTransaction but calls hook with
// the candidate state before swapping it in. Durable backends use the hook to
// write through; a hook error leaves the committed state untouched.
func (s *Store) RunInTransactionWithHook(ctx context.Context, fn func(tx Transaction) error, hook CommitHook) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   now,
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if hook != nil && len(tx.changes) > 0 {
		if err := hook(ctx, snapshotFromMemoryState(tx.state)); err != nil {
			return result, err
		}
	}

	s.state = tx.state
	if tx.created > 0 {
		s.last = tx.now.Add(time.Duration(tx.created-1) * time.Microsecond)
	}
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// stamp returns a creation time that strictly increases within the transaction
// so insertion order survives a shared clock reading.
func (tx *transaction) stamp() time.Time {
	ts := tx.now.Add(time.Duration(tx.created) * time.Microsecond)
	tx.created++
	return ts
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindMeal exposes meal lookup within the transaction scope.
func (tx *transaction) FindMeal(id string) (Meal, bool) {
	return transactionView{state: &tx.state}.FindMeal(id)
}

// FindRecipe exposes recipe lookup within the transaction scope.
func (tx *transaction) FindRecipe(id string) (Recipe, bool) {
	return transactionView{state: &tx.state}.FindRecipe(id)
}

func requireName(entity domain.EntityType, name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Field: "name", Message: string(entity) + " name is required"}
	}
	return nil
}

// CreateMeal stores a new meal, assigning an id when none is provided.
func (tx *transaction) CreateMeal(m Meal) (Meal, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := requireName(domain.EntityMeal, m.Name); err != nil {
		return Meal{}, err
	}
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.meals[m.ID]; exists {
		return Meal{}, &domain.ValidationError{Field: "id", Message: "meal " + m.ID + " already exists"}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = tx.stamp()
	}
	m.UpdatedAt = tx.now
	tx.state.meals[m.ID] = cloneMeal(m)
	tx.recordChange(Change{Entity: domain.EntityMeal, Action: domain.ActionCreate, After: cloneMeal(m)})
	return cloneMeal(m), nil
}

// UpdateMeal mutates a meal using the provided mutator function.
func (tx *transaction) UpdateMeal(id string, mutator func(*Meal) error) (Meal, error) {
	current, ok := tx.state.meals[id]
	if !ok {
		return Meal{}, domain.NotFoundError{Entity: domain.EntityMeal, ID: id}
	}
	before := cloneMeal(current)
	if err := mutator(&current); err != nil {
		return Meal{}, err
	}
	current.Name = strings.TrimSpace(current.Name)
	if err := requireName(domain.EntityMeal, current.Name); err != nil {
		return Meal{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.meals[id] = cloneMeal(current)
	tx.recordChange(Change{Entity: domain.EntityMeal, Action: domain.ActionUpdate, Before: before, After: cloneMeal(current)})
	return cloneMeal(current), nil
}

// DeleteMeal removes a meal from the transaction state.
func (tx *transaction) DeleteMeal(id string) error {
	current, ok := tx.state.meals[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityMeal, ID: id}
	}
	delete(tx.state.meals, id)
	tx.recordChange(Change{Entity: domain.EntityMeal, Action: domain.ActionDelete, Before: cloneMeal(current)})
	return nil
}

// CreateRecipe stores a new recipe, assigning an id when none is provided.
func (tx *transaction) CreateRecipe(r Recipe) (Recipe, error) {
	r.Name = strings.TrimSpace(r.Name)
	if err := requireName(domain.EntityRecipe, r.Name); err != nil {
		return Recipe{}, err
	}
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.recipes[r.ID]; exists {
		return Recipe{}, &domain.ValidationError{Field: "id", Message: "recipe " + r.ID + " already exists"}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = tx.stamp()
	}
	r.UpdatedAt = tx.now
	tx.state.recipes[r.ID] = cloneRecipe(r)
	tx.recordChange(Change{Entity: domain.EntityRecipe, Action: domain.ActionCreate, After: cloneRecipe(r)})
	return cloneRecipe(r), nil
}

// UpdateRecipe mutates a recipe using the provided mutator function.
func (tx *transaction) UpdateRecipe(id string, mutator func(*Recipe) error) (Recipe, error) {
	current, ok := tx.state.recipes[id]
	if !ok {
		return Recipe{}, domain.NotFoundError{Entity: domain.EntityRecipe, ID: id}
	}
	before := cloneRecipe(current)
	if err := mutator(&current); err != nil {
		return Recipe{}, err
	}
	current.Name = strings.TrimSpace(current.Name)
	if err := requireName(domain.EntityRecipe, current.Name); err != nil {
		return Recipe{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.recipes[id] = cloneRecipe(current)
	tx.recordChange(Change{Entity: domain.EntityRecipe, Action: domain.ActionUpdate, Before: before, After: cloneRecipe(current)})
	return cloneRecipe(current), nil
}

// DeleteRecipe removes a recipe. Meals sharing its name are left untouched.
func (tx *transaction) DeleteRecipe(id string) error {
	current, ok := tx.state.recipes[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityRecipe, ID: id}
	}
	delete(tx.state.recipes, id)
	tx.recordChange(Change{Entity: domain.EntityRecipe, Action: domain.ActionDelete, Before: cloneRecipe(current)})
	return nil
}

// GetMeal retrieves a meal by id from committed state.
func (s *Store) GetMeal(id string) (Meal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.meals[id]
	if !ok {
		return Meal{}, false
	}
	return cloneMeal(m), true
}

// ListMeals returns all meals from committed state.
func (s *Store) ListMeals() []Meal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMeals(&s.state, nil)
}

// ListMealsByDate returns committed meals scheduled on date.
func (s *Store) ListMealsByDate(date string) []Meal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMeals(&s.state, func(m Meal) bool { return m.Date == date })
}

// GetRecipe retrieves a recipe by id from committed state.
func (s *Store) GetRecipe(id string) (Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.recipes[id]
	if !ok {
		return Recipe{}, false
	}
	return cloneRecipe(r), true
}

// ListRecipes returns all recipes from committed state.
func (s *Store) ListRecipes() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRecipes(&s.state, nil)
}

// ListRecipesByType returns committed recipes of type t.
func (s *Store) ListRecipesByType(t domain.MealType) []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRecipes(&s.state, func(r Recipe) bool { return r.Type == t })
}
