package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"github.com/anonto42/instaclone/backend/pkg/config"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedUsername = "testuser"
	seedEmail    = "test@example.com"
	seedPassword = "test1234"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Migrate schemas, create indexes and seed a test account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		return initDB(ctx, cfg, log)
	},
}

func initDB(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := prepareStores(ctx, db, repositories.NewMongoPostRepository(db.MongoDB), log); err != nil {
		return err
	}
	collections, err := db.MongoDB.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	log.Info("MongoDB ready", zap.Strings("collections", collections))

	return seedTestUser(ctx, repositories.NewPostgresUserRepository(db.Postgres), log)
}

type migrator interface {
	Migrate() error
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// prepareStores applies the PostgreSQL migrations and creates the MongoDB
// indexes. Both steps are idempotent and run on every start.
func prepareStores(ctx context.Context, m migrator, idx indexer, log *zap.Logger) error {
	if err := m.Migrate(); err != nil {
		return err
	}
	log.Info("PostgreSQL migrations applied")

	if err := idx.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	log.Info("MongoDB indexes ensured")
	return nil
}

// seedTestUser creates the well-known test account unless it already exists.
func seedTestUser(ctx context.Context, users repositories.UserRepository, log *zap.Logger) error {
	existing, err := users.GetUserByEmail(ctx, seedEmail)
	if err == nil {
		log.Info("test user already exists", zap.Uint("user_id", existing.ID))
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{Username: seedUsername, Email: seedEmail, Password: string(hash)}
	if err := users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create test user: %w", err)
	}
	log.Info("test user created", zap.Uint("user_id", user.ID), zap.String("email", seedEmail))
	return nil
}
