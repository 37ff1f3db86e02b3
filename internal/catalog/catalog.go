package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	applog "batchbook/internal/log"
	"batchbook/internal/store"
	"batchbook/models"
)

// RecipeCard is one entry of the home list.
type RecipeCard struct {
	Recipe       models.Recipe
	Image        DisplayImage
	CreatedLabel string
}

type RecipeDetail struct {
	Recipe          models.Recipe
	Batches         []models.Batch
	Image           DisplayImage
	CreatedLabel    string
	NextBatchNumber int
}

type BatchDetail struct {
	Recipe      models.Recipe
	Batch       models.Batch
	Ingredients []models.Ingredient
	Steps       []models.Step
}

// Catalog composes the read-only views. Every call goes to storage.
type Catalog struct {
	store *store.Store
	now   func() time.Time
}

func New(st *store.Store) *Catalog {
	return &Catalog{store: st, now: time.Now}
}

// WithClock returns a copy of the catalog labelling dates against now.
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	clone := *c
	clone.now = now
	return &clone
}

// Home lists the owner's recipes newest first.
func (c *Catalog) Home(ctx context.Context, ownerID string) ([]RecipeCard, error) {
	recipes, err := c.store.Recipes.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		ids = append(ids, recipe.ID)
	}
	images, err := c.store.Batches.LatestImages(ctx, ids...)
	if err != nil {
		return nil, err
	}

	now := c.now()
	cards := make([]RecipeCard, 0, len(recipes))
	for _, recipe := range recipes {
		cards = append(cards, RecipeCard{
			Recipe:       recipe,
			Image:        ResolveDisplayImage(recipe, images[recipe.ID]),
			CreatedLabel: FormatCreationDate(recipe.CreatedOn, now),
		})
	}
	applog.Debug(ctx, "home catalog loaded", "userID", ownerID, "recipes", len(cards))
	return cards, nil
}

// Recipe loads a recipe with its batches.
func (c *Catalog) Recipe(ctx context.Context, ownerID, recipeID string) (RecipeDetail, error) {
	var (
		recipe  models.Recipe
		batches []models.Batch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recipe, err = c.store.Recipes.GetOwned(gctx, recipeID, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		batches, err = c.store.Batches.ListForRecipe(gctx, recipeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return RecipeDetail{}, err
	}

	return RecipeDetail{
		Recipe:          recipe,
		Batches:         batches,
		Image:           ResolveDisplayImage(recipe, latestBatchImage(batches)),
		CreatedLabel:    FormatCreationDate(recipe.CreatedOn, c.now()),
		NextBatchNumber: len(batches) + 1,
	}, nil
}

// Batch loads a batch owned through its recipe, with ingredients and steps.
func (c *Catalog) Batch(ctx context.Context, ownerID, batchID string) (BatchDetail, error) {
	batch, err := c.store.Batches.GetOwned(ctx, batchID, ownerID)
	if err != nil {
		return BatchDetail{}, err
	}

	detail := BatchDetail{Batch: batch}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail.Recipe, err = c.store.Recipes.Get(gctx, batch.RecipeID)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Ingredients, err = c.store.Ingredients.ListForBatch(gctx, batch.ID)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Steps, err = c.store.Steps.ListForBatch(gctx, batch.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return BatchDetail{}, err
	}
	return detail, nil
}
