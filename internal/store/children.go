package store

import (
	"context"

	"batchbook/models"
)

type IngredientRepository struct {
	*Repository[models.Ingredient]
}

// ListForBatch returns ingredients in entry order.
func (r *IngredientRepository) ListForBatch(ctx context.Context, batchID string) ([]models.Ingredient, error) {
	return r.List(ctx, Filter{"batch_id": batchID},
		Order{Column: "position"},
		Order{Column: "id"},
	)
}

type StepRepository struct {
	*Repository[models.Step]
}

// ListForBatch returns steps by ascending step number.
func (r *StepRepository) ListForBatch(ctx context.Context, batchID string) ([]models.Step, error) {
	return r.List(ctx, Filter{"batch_id": batchID},
		Order{Column: "step_number"},
		Order{Column: "id"},
	)
}
