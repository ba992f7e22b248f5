package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"anniversary-api/internal/config"
	"anniversary-api/internal/db"
	"anniversary-api/internal/domain"
	"anniversary-api/internal/repository"
)

const (
	seedEmail       = "testuser@example.com"
	seedProviderID  = "google-123456"
	seedCategory    = "Personal"
	seedAnniversary = "記念日"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	users := repository.NewPgUserRepository(pool)
	categories := repository.NewPgCategoryRepository(pool)
	anniversaries := repository.NewPgAnniversaryRepository(pool)

	user, err := users.UpsertFederated(ctx, domain.User{
		Name:       "Test User",
		Email:      seedEmail,
		Provider:   domain.ProviderGoogle,
		ProviderID: seedProviderID,
	})
	if err != nil {
		logger.Fatal("seed user", zap.Error(err))
	}

	category, err := findOrCreateCategory(ctx, categories, user.ID, seedCategory)
	if err != nil {
		logger.Fatal("seed category", zap.Error(err))
	}

	existing, err := anniversaries.List(ctx, user.ID)
	if err != nil {
		logger.Fatal("list anniversaries", zap.Error(err))
	}
	for _, a := range existing {
		if a.Name == seedAnniversary {
			logger.Info("seed already applied", zap.Int64("user_id", user.ID))
			return
		}
	}

	description := "Sample anniversary"
	anniversary, err := anniversaries.Create(ctx, user.ID, repository.AnniversaryInput{
		CategoryID:  category.ID,
		Name:        seedAnniversary,
		Date:        time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		Description: &description,
	})
	if err != nil {
		logger.Fatal("seed anniversary", zap.Error(err))
	}

	logger.Info("seed completed",
		zap.Int64("user_id", user.ID),
		zap.Int64("category_id", category.ID),
		zap.Int64("anniversary_id", anniversary.ID),
	)
}

func findOrCreateCategory(ctx context.Context, repo repository.CategoryRepository, ownerID int64, name string) (domain.Category, error) {
	list, err := repo.List(ctx, ownerID)
	if err != nil {
		return domain.Category{}, err
	}
	for _, c := range list {
		if c.Name == name {
			return c, nil
		}
	}
	return repo.Create(ctx, ownerID, name)
}
