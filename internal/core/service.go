// Package core hosts the meal-planning service: commands that mutate meals
// and recipes, the follow-up synchronization between them, and read views.
package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mealweek/internal/infra/persistence/memory"
)

// Service exposes transactional meal and recipe commands over a store.
type Service struct {
	store   PersistentStore
	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	newID   func() string
}

// clockedStore is a store whose record timestamps follow the service clock.
type clockedStore interface {
	SetNowFunc(func() time.Time)
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	cfg := defaultServiceOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if st, ok := store.(clockedStore); ok {
		st.SetNowFunc(cfg.clock.Now)
	}
	return &Service{
		store:   store,
		clock:   cfg.clock,
		logger:  cfg.logger,
		audit:   cfg.audit,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
		newID:   cfg.newID,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

func newPayloadID() string { return uuid.NewString() }

type operationMeta struct {
	entity EntityType
	action Action
}

var operations = map[string]operationMeta{
	"create_meal":       {EntityMeal, ActionCreate},
	"update_meal":       {EntityMeal, ActionUpdate},
	"move_meal":         {EntityMeal, ActionUpdate},
	"delete_meal":       {EntityMeal, ActionDelete},
	"create_recipe":     {EntityRecipe, ActionCreate},
	"update_recipe":     {EntityRecipe, ActionUpdate},
	"toggle_favorite":   {EntityRecipe, ActionUpdate},
	"delete_recipe":     {EntityRecipe, ActionDelete},
	"reconcile_recipes": {EntityRecipe, ActionCreate},
	"clear_all":         {"", ActionDelete},
	"import_records":    {"", ActionCreate},
	"backup":            {"", ActionCreate},
	"restore_backup":    {"", ActionUpdate},
}

// run wraps a command with tracing, metrics, logging and auditing. fn
// returns the id of the affected record, if any.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) (string, error)) error {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, op)
	id, err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", op, "entity_id", id, "error", err)
		s.recordAuditError(ctx, op, id, duration, err)
		return err
	}
	s.logger.Debug("operation completed", "operation", op, "entity_id", id, "duration", duration)
	s.recordAuditSuccess(ctx, op, id, duration)
	return nil
}

func (s *Service) recordAuditSuccess(ctx context.Context, op, id string, duration time.Duration) {
	s.recordAudit(ctx, op, id, duration, AuditStatusSuccess, nil)
}

func (s *Service) recordAuditError(ctx context.Context, op, id string, duration time.Duration, err error) {
	s.recordAudit(ctx, op, id, duration, AuditStatusError, err)
}

func (s *Service) recordAudit(ctx context.Context, op, id string, duration time.Duration, status AuditStatus, err error) {
	meta, ok := operations[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  id,
		Status:    status,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// logWarnings reports non-blocking rule violations from a committed transaction.
func (s *Service) logWarnings(op string, res Result) {
	for _, v := range res.Warnings() {
		s.logger.Warn("rule warning", "operation", op, "rule", v.Rule, "entity", v.Entity, "entity_id", v.EntityID, "message", v.Message)
	}
}
