package mock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"batchbook/internal/db"
	applog "batchbook/internal/log"
	"batchbook/models"
)

const (
	SeedEmail    = "baker@batchbook.app"
	SeedPassword = "sourdough"
)

// Open returns an isolated, migrated in-memory sqlite database with no rows.
func Open(ctx context.Context) (*gorm.DB, error) {
	cfg := db.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	dsn := fmt.Sprintf("file:batchbook-%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	// a single connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.WithContext(ctx)); err != nil {
		return nil, err
	}
	return database, nil
}

// New returns an in-memory sqlite database seeded with a demo account and
// one recipe with two batches.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := Open(ctx)
	if err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        SeedEmail,
		PasswordHash: string(password),
		FirstName:    "Avery",
		LastName:     "Baker",
		Username:     "avery",
	}
	if err := database.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	recipe := &models.Recipe{
		Name:   "Country Sourdough",
		Notes:  "75% hydration, overnight retard.",
		UserID: user.ID,
	}
	if err := database.WithContext(ctx).Create(recipe).Error; err != nil {
		return err
	}

	batches := []struct {
		batch       models.Batch
		ingredients []string
		steps       []string
	}{
		{
			batch:       models.Batch{Name: models.DefaultBatchName(1), BatchNumber: 1, Notes: "Under-proofed, tight crumb."},
			ingredients: []string{"500 g bread flour", "375 g water", "100 g levain", "10 g salt"},
			steps:       []string{"Autolyse 1 hour", "Mix in levain and salt", "Bulk ferment 4 hours", "Shape and bake"},
		},
		{
			batch:       models.Batch{Name: models.DefaultBatchName(2), BatchNumber: 2, Notes: "Longer bulk, better open crumb."},
			ingredients: []string{"500 g bread flour", "380 g water", "100 g levain", "10 g salt"},
			steps:       []string{"Autolyse 1 hour", "Mix in levain and salt", "Bulk ferment 5 hours", "Shape and bake"},
		},
	}

	for _, entry := range batches {
		entry := entry
		err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry.batch.RecipeID = recipe.ID
			if err := tx.Create(&entry.batch).Error; err != nil {
				return err
			}
			ingredients := make([]models.Ingredient, 0, len(entry.ingredients))
			for i, description := range entry.ingredients {
				ingredients = append(ingredients, models.Ingredient{BatchID: entry.batch.ID, Description: description, Position: i + 1})
			}
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
			steps := make([]models.Step, 0, len(entry.steps))
			for i, description := range entry.steps {
				steps = append(steps, models.Step{BatchID: entry.batch.ID, StepNumber: i + 1, Description: description})
			}
			return tx.Create(&steps).Error
		})
		if err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
