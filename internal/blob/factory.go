package blob

import (
	"context"
	"fmt"
	"time"

	"mealweek/internal/config"
	"mealweek/internal/infra/blob/fs"
	infraS3 "mealweek/internal/infra/blob/s3"
)

// Key prefixes inside the archive.
const (
	BackupPrefix = "backups/"
	ExportPrefix = "exports/"
)

// keyTimeLayout sorts lexically in time order.
const keyTimeLayout = "20060102T150405.000000000Z"

// BackupKey names the snapshot taken at t.
func BackupKey(t time.Time) string {
	return BackupPrefix + t.UTC().Format(keyTimeLayout) + ".json"
}

// ExportKey names the spreadsheet for the week starting at weekStart.
func ExportKey(weekStart, at time.Time) string {
	return ExportPrefix + weekStart.Format("2006-01-02") + "/" + at.UTC().Format(keyTimeLayout) + ".xlsx"
}

// Open returns the archive selected by cfg.
func Open(ctx context.Context, cfg config.Archive) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverFilesystem, "":
		return fs.New(cfg.FSRoot)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return infraS3.New(ctx, infraS3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}
