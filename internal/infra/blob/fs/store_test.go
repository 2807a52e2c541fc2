package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mealweek/internal/blob/core"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "archive")
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	payload := `{"meals":{},"recipes":{}}`
	info, err := s.Put(ctx, "backups/20240603T080000Z.json", strings.NewReader(payload), core.PutOptions{ContentType: "application/json", Metadata: map[string]string{"meals": "0"}})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != int64(len(payload)) || len(info.ETag) != 64 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(root, "backups", "20240603T080000Z.json.meta")); err != nil {
		t.Fatalf("expected sidecar: %v", err)
	}

	got, rc, err := s.Get(ctx, "backups/20240603T080000Z.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, _ := io.ReadAll(rc)
	if string(body) != payload || got.ContentType != "application/json" || got.Metadata["meals"] != "0" {
		t.Fatalf("unexpected object %+v %q", got, body)
	}

	head, err := s.Head(ctx, "backups/20240603T080000Z.json")
	if err != nil || head.ETag != info.ETag {
		t.Fatalf("Head: %+v %v", head, err)
	}
	if u, err := s.PresignURL(ctx, "backups/20240603T080000Z.json", core.SignedURLOptions{}); err != nil || !strings.HasSuffix(u, "/backups/20240603T080000Z.json") {
		t.Fatalf("PresignURL: %s %v", u, err)
	}
}

func TestStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir())
	for _, key := range []string{"exports/w1.xlsx", "backups/b.json", "backups/a.json"} {
		if _, err := s.Put(ctx, key, bytes.NewBufferString(key), core.PutOptions{}); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}
	list, err := s.List(ctx, "backups/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Key != "backups/a.json" || list[1].Key != "backups/b.json" {
		t.Fatalf("unexpected listing %+v", list)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected three objects, got %d", len(all))
	}
	if ok, err := s.Delete(ctx, "backups/a.json"); err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	if ok, _ := s.Delete(ctx, "backups/a.json"); ok {
		t.Fatalf("expected missing delete to report false")
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := New(t.TempDir())
	cases := []string{"", "/abs", "../escape", "a/../../b", "x.meta"}
	for _, key := range cases {
		if _, err := s.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("expected invalid key for %q, got %v", key, err)
		}
	}
	if _, err := s.Put(ctx, "k", bytes.NewReader(nil), core.PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Put(ctx, "k", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if _, err := s.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
