package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"batchbook/internal/exceptions"
	"batchbook/models"
)

// Store groups the entity repositories over one database handle. A Store
// obtained inside Transaction shares that transaction.
type Store struct {
	db          *gorm.DB
	Recipes     *RecipeRepository
	Batches     *BatchRepository
	Ingredients *IngredientRepository
	Steps       *StepRepository
}

// New builds a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Recipes:     &RecipeRepository{Repository: NewRepository[models.Recipe](db, "recipe", "recipes", "user_id", "created_on")},
		Batches:     &BatchRepository{Repository: NewRepository[models.Batch](db, "batch", "batches", "recipe_id", "created_on"), db: db},
		Ingredients: &IngredientRepository{Repository: NewRepository[models.Ingredient](db, "ingredient", "ingredients", "batch_id")},
		Steps:       &StepRepository{Repository: NewRepository[models.Step](db, "step", "steps", "batch_id")},
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a single database transaction. Any error rolls
// back every write made through the Store passed to fn.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
	if err == nil {
		return nil
	}
	var requestErr exceptions.RequestError
	if errors.As(err, &requestErr) {
		return err
	}
	return exceptions.Backend("Failed to save changes", err)
}
