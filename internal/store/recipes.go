package store

import (
	"context"

	"batchbook/models"
)

type RecipeRepository struct {
	*Repository[models.Recipe]
}

// ListForOwner returns the owner's recipes, newest first.
func (r *RecipeRepository) ListForOwner(ctx context.Context, userID string) ([]models.Recipe, error) {
	return r.List(ctx, Filter{"user_id": userID},
		Order{Column: "created_on", Desc: true},
		Order{Column: "id", Desc: true},
	)
}

// GetOwned loads a recipe visible to userID.
func (r *RecipeRepository) GetOwned(ctx context.Context, id, userID string) (models.Recipe, error) {
	return r.GetScoped(ctx, Filter{"user_id": userID}, id)
}

// UpdateOwned changes a recipe owned by userID.
func (r *RecipeRepository) UpdateOwned(ctx context.Context, id, userID string, fields Fields) error {
	return r.UpdateScoped(ctx, Filter{"user_id": userID}, id, fields)
}
