package tester

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emrgen/content/internal/model"
)

// TestDB opens a fresh migrated sqlite database living in the test's temp dir.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	_ = os.Setenv("ENV", "test")

	path := filepath.Join(t.TempDir(), "db", "content.db")
	err := os.MkdirAll(filepath.Dir(path), os.ModePerm)
	if err != nil {
		t.Fatal(err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = model.Migrate(db)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// Licence creates a licence row, as most contents need one.
func Licence(t testing.TB, db *gorm.DB, code string) *model.Licence {
	t.Helper()

	licence := &model.Licence{Code: code, Title: code}
	if err := db.WithContext(context.Background()).Create(licence).Error; err != nil {
		t.Fatal(err)
	}
	return licence
}
