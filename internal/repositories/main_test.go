package repositories

import (
	"path/filepath"
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB migrates a fresh SQLite file with the PostgreSQL-backed models.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FollowingEdge{},
		&models.FollowerEdge{},
		&models.Notification{},
	))
	return db
}

func createUsers(t *testing.T, repo *PostgresUserRepository, names ...string) []uint {
	t.Helper()
	ids := make([]uint, len(names))
	for i, name := range names {
		u := &models.User{Username: name, Email: name + "@example.com", Password: "hash"}
		require.NoError(t, repo.CreateUser(t.Context(), u))
		ids[i] = u.ID
	}
	return ids
}
