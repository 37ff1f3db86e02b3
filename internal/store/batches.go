package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"batchbook/internal/exceptions"
	"batchbook/models"
)

type BatchRepository struct {
	*Repository[models.Batch]
	db *gorm.DB
}

// ListForRecipe returns a recipe's batches, newest first.
func (r *BatchRepository) ListForRecipe(ctx context.Context, recipeID string) ([]models.Batch, error) {
	return r.List(ctx, Filter{"recipe_id": recipeID},
		Order{Column: "created_on", Desc: true},
		Order{Column: "id", Desc: true},
	)
}

// GetOwned loads a batch whose recipe belongs to userID.
func (r *BatchRepository) GetOwned(ctx context.Context, id, userID string) (models.Batch, error) {
	var batch models.Batch
	owned := r.db.WithContext(ctx).Model(&models.Recipe{}).Select("id").Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Where("id = ? AND recipe_id IN (?)", id, owned).
		Take(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return batch, exceptions.NotFound("batch", id)
		}
		return batch, r.fail("fetch", err)
	}
	return batch, nil
}

// NextNumber is the batch number suggested for a new batch of recipeID.
func (r *BatchRepository) NextNumber(ctx context.Context, recipeID string) (int, error) {
	count, err := r.Count(ctx, Filter{"recipe_id": recipeID})
	if err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// LatestImages maps each recipe id to the image of its most recent batch
// that has one. Recipes without such a batch are absent from the map.
func (r *BatchRepository) LatestImages(ctx context.Context, recipeIDs ...string) (map[string]string, error) {
	images := make(map[string]string, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return images, nil
	}

	var rows []models.Batch
	err := r.db.WithContext(ctx).
		Select("id", "recipe_id", "image_url", "created_on").
		Where("recipe_id IN ?", recipeIDs).
		Where("image_url IS NOT NULL AND image_url <> ''").
		Order("created_on desc").
		Order("id desc").
		Find(&rows).Error
	if err != nil {
		return nil, r.fail("fetch", err)
	}

	for _, row := range rows {
		if _, ok := images[row.RecipeID]; !ok {
			images[row.RecipeID] = row.ImageURL
		}
	}
	return images, nil
}
