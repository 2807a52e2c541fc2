package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mealweek/internal/blob"
	"mealweek/pkg/domain"
)

// BackupVersion is the schema version written into plan backups.
const BackupVersion = 1

// Backup is the archived form of the whole plan.
type Backup struct {
	Version int       `json:"version"`
	TakenAt time.Time `json:"taken_at"`
	Meals   []Meal    `json:"meals"`
	Recipes []Recipe  `json:"recipes"`
}

// ClearReport counts the records removed by Clear.
type ClearReport struct {
	Meals   int `json:"meals"`
	Recipes int `json:"recipes"`
}

// ImportReport counts the records written by ImportRecords.
type ImportReport struct {
	Meals   int `json:"meals"`
	Recipes int `json:"recipes"`
}

// Clear deletes every meal and recipe in one transaction.
func (s *Service) Clear(ctx context.Context) (ClearReport, error) {
	var report ClearReport
	err := s.run(ctx, "clear_all", func(ctx context.Context) (string, error) {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			report, err = clearAll(tx)
			return err
		})
		return "", err
	})
	return report, err
}

func clearAll(tx Transaction) (ClearReport, error) {
	view := tx.Snapshot()
	var report ClearReport
	for _, m := range view.ListMeals() {
		if err := tx.DeleteMeal(m.ID); err != nil {
			return ClearReport{}, err
		}
		report.Meals++
	}
	for _, r := range view.ListRecipes() {
		if err := tx.DeleteRecipe(r.ID); err != nil {
			return ClearReport{}, err
		}
		report.Recipes++
	}
	return report, nil
}

// ImportRecords inserts meals and recipes as given, without synchronization.
// Records keep any preset id and creation time.
func (s *Service) ImportRecords(ctx context.Context, meals []Meal, recipes []Recipe) (ImportReport, error) {
	var report ImportReport
	err := s.run(ctx, "import_records", func(ctx context.Context) (string, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			report, err = insertAll(tx, meals, recipes)
			return err
		})
		s.logWarnings("import_records", res)
		return "", err
	})
	return report, err
}

func insertAll(tx Transaction, meals []Meal, recipes []Recipe) (ImportReport, error) {
	var report ImportReport
	for _, r := range recipes {
		if _, err := tx.CreateRecipe(r); err != nil {
			return ImportReport{}, fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		report.Recipes++
	}
	for _, m := range meals {
		if _, err := tx.CreateMeal(m); err != nil {
			return ImportReport{}, fmt.Errorf("meal %q: %w", m.Name, err)
		}
		report.Meals++
	}
	return report, nil
}

// Backup writes the whole plan to archive under a timestamped key.
func (s *Service) Backup(ctx context.Context, archive blob.Store) (blob.Info, error) {
	var info blob.Info
	err := s.run(ctx, "backup", func(ctx context.Context) (string, error) {
		now := s.clock.Now().UTC()
		doc := Backup{
			Version: BackupVersion,
			TakenAt: now,
			Meals:   s.Meals(),
			Recipes: s.store.ListRecipes(),
		}
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode backup: %w", err)
		}
		key := blob.BackupKey(now)
		info, err = archive.Put(ctx, key, bytes.NewReader(raw), blob.PutOptions{
			ContentType: "application/json",
			Metadata: map[string]string{
				"meals":   strconv.Itoa(len(doc.Meals)),
				"recipes": strconv.Itoa(len(doc.Recipes)),
			},
		})
		return key, err
	})
	return info, err
}

// Backups lists archived backups, newest first.
func (s *Service) Backups(ctx context.Context, archive blob.Store) ([]blob.Info, error) {
	infos, err := archive.List(ctx, blob.BackupPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]blob.Info, 0, len(infos))
	for i := len(infos) - 1; i >= 0; i-- {
		if strings.HasSuffix(infos[i].Key, ".json") {
			out = append(out, infos[i])
		}
	}
	return out, nil
}

// Restore replaces the whole plan with the backup stored at key. An empty
// key selects the newest backup.
func (s *Service) Restore(ctx context.Context, archive blob.Store, key string) (ImportReport, error) {
	var report ImportReport
	err := s.run(ctx, "restore_backup", func(ctx context.Context) (string, error) {
		if key == "" {
			backups, err := s.Backups(ctx, archive)
			if err != nil {
				return "", err
			}
			if len(backups) == 0 {
				return "", fmt.Errorf("no backups under %s: %w", blob.BackupPrefix, blob.ErrNotExist)
			}
			key = backups[0].Key
		}
		doc, err := readBackup(ctx, archive, key)
		if err != nil {
			return key, err
		}
		_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, err := clearAll(tx); err != nil {
				return err
			}
			var err error
			report, err = insertAll(tx, doc.Meals, doc.Recipes)
			return err
		})
		return key, err
	})
	return report, err
}

func readBackup(ctx context.Context, archive blob.Store, key string) (Backup, error) {
	_, body, err := archive.Get(ctx, key)
	if err != nil {
		return Backup{}, err
	}
	defer body.Close()
	var doc Backup
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return Backup{}, &domain.ValidationError{Field: "backup", Message: fmt.Sprintf("backup %s is not valid JSON", key), Err: err}
	}
	if doc.Version != BackupVersion {
		return Backup{}, &domain.ValidationError{Field: "backup", Message: fmt.Sprintf("backup %s has unsupported version %d", key, doc.Version)}
	}
	return doc, nil
}

// IsMissingBackup reports whether err means the requested backup is absent.
func IsMissingBackup(err error) bool {
	return errors.Is(err, blob.ErrNotExist)
}
