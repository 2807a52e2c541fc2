package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "mealweek_service_metrics_") {
		t.Fatalf("unexpected generated name %q", rec.Name())
	}
	rec.Observe(context.Background(), "create_meal", true, 2*time.Millisecond)
	rec.Observe(context.Background(), "create_meal", false, 3*time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Second)

	snap := rec.Snapshot()
	if snap.DurationsMS["create_meal"] != 5 {
		t.Fatalf("expected 5ms total, got %v", snap.DurationsMS["create_meal"])
	}
	if snap.Results["create_meal"]["success"] != 1 || snap.Results["create_meal"]["error"] != 1 {
		t.Fatalf("unexpected results %+v", snap.Results)
	}
	if len(snap.Results) != 1 {
		t.Fatalf("expected empty operation ignored, got %+v", snap.Results)
	}
	if v := expvar.Get(rec.Name()); v == nil || !strings.Contains(v.String(), "create_meal") {
		t.Fatalf("expected recorder published via expvar")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	svc := newTestService(t, WithMetricsRecorder(rec))
	mustMeal(t, svc, "Pilav", "main", "2024-03-11")
	_ = svc.DeleteMeal(context.Background(), "missing")

	if got := testutil.ToFloat64(rec.total.WithLabelValues("create_meal", "success")); got != 1 {
		t.Fatalf("expected one successful create, got %v", got)
	}
	if got := testutil.ToFloat64(rec.total.WithLabelValues("delete_meal", "error")); got != 1 {
		t.Fatalf("expected one failed delete, got %v", got)
	}
	if n := testutil.CollectAndCount(rec.duration); n != 2 {
		t.Fatalf("expected two latency series, got %d", n)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestJSONTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	svc := newTestService(t, WithTracer(tracer))
	mustMeal(t, svc, "Pilav", "main", "2024-03-11")
	_, span := tracer.Start(context.Background(), "manual")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 || entries[0].Operation != "create_meal" || entries[0].Status != "success" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected error span %+v", entries[1])
	}
	dec := json.NewDecoder(&buf)
	var lines int
	for dec.More() {
		var e JSONTraceEntry
		if err := dec.Decode(&e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected two JSON lines, got %d", lines)
	}
}
