package blob

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mealweek/internal/config"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		cfg  config.Archive
		want Driver
	}{
		{"fs", config.Archive{Driver: "fs", FSRoot: filepath.Join(t.TempDir(), "a")}, DriverFilesystem},
		{"memory", config.Archive{Driver: "memory"}, DriverMemory},
		{"s3", config.Archive{Driver: "s3", S3: config.S3{Bucket: "plans", Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true}}, DriverS3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if store.Driver() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, store.Driver())
			}
		})
	}
	if _, err := Open(ctx, config.Archive{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, config.Archive{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestKeysSortByTime(t *testing.T) {
	early := BackupKey(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC))
	late := BackupKey(time.Date(2024, 6, 3, 8, 0, 0, 5, time.UTC))
	if !strings.HasPrefix(early, BackupPrefix) || !strings.HasSuffix(early, ".json") {
		t.Fatalf("unexpected key %s", early)
	}
	if early >= late {
		t.Fatalf("expected %s < %s", early, late)
	}
	week := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if got := ExportKey(week, week); !strings.HasPrefix(got, "exports/2024-06-03/") || !strings.HasSuffix(got, ".xlsx") {
		t.Fatalf("unexpected export key %s", got)
	}
}
