package editor

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"batchbook/internal/exceptions"
	applog "batchbook/internal/log"
	"batchbook/internal/metrics"
	"batchbook/internal/store"
	"batchbook/models"
)

// RecipeForm edits the name, notes and image of one recipe.
type RecipeForm struct {
	ID       string
	Name     string
	Notes    string
	ImageURL string

	store   *store.Store
	metrics *metrics.Collector
	saving  atomic.Bool
}

// NewRecipeForm returns an empty form for a recipe that does not exist yet.
func NewRecipeForm(st *store.Store, collector *metrics.Collector) *RecipeForm {
	return &RecipeForm{store: st, metrics: collector}
}

// OpenRecipeForm loads a recipe owned by ownerID into a form.
func OpenRecipeForm(ctx context.Context, st *store.Store, collector *metrics.Collector, ownerID, recipeID string) (*RecipeForm, error) {
	recipe, err := st.Recipes.GetOwned(ctx, recipeID, ownerID)
	if err != nil {
		return nil, err
	}
	return &RecipeForm{
		ID:       recipe.ID,
		Name:     recipe.Name,
		Notes:    recipe.Notes,
		ImageURL: recipe.ImageURL,
		store:    st,
		metrics:  collector,
	}, nil
}

func (f *RecipeForm) IsNew() bool {
	return f.ID == ""
}

func (f *RecipeForm) SetImage(url string) {
	f.ImageURL = url
}

// RemoveImage clears the image reference. The stored object is kept.
func (f *RecipeForm) RemoveImage() {
	f.ImageURL = ""
}

func (f *RecipeForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return exceptions.InvalidInput("Recipe name is required")
	}
	return nil
}

// Save creates the recipe for ownerID or updates its name, notes and image.
func (f *RecipeForm) Save(ctx context.Context, ownerID string) (models.Recipe, error) {
	if !f.saving.CompareAndSwap(false, true) {
		return models.Recipe{}, ErrSaveInProgress
	}
	defer f.saving.Store(false)

	started := time.Now()
	recipe, err := f.save(ctx, ownerID)
	f.metrics.ObserveSave("recipe", time.Since(started).Seconds(), err)
	return recipe, err
}

func (f *RecipeForm) save(ctx context.Context, ownerID string) (models.Recipe, error) {
	if ownerID == "" {
		return models.Recipe{}, exceptions.Authentication("You must be logged in to create or edit recipes")
	}
	if err := f.Validate(); err != nil {
		return models.Recipe{}, err
	}

	if f.IsNew() {
		recipe := models.Recipe{
			Name:     strings.TrimSpace(f.Name),
			Notes:    f.Notes,
			ImageURL: f.ImageURL,
			UserID:   ownerID,
		}
		if err := f.store.Recipes.Insert(ctx, &recipe); err != nil {
			applog.Error(ctx, "failed to create recipe", "userID", ownerID, "error", err)
			return models.Recipe{}, err
		}
		f.ID = recipe.ID
		applog.Debug(ctx, "recipe created", "recipeID", recipe.ID)
		return recipe, nil
	}

	if err := f.store.Recipes.UpdateOwned(ctx, f.ID, ownerID, store.Fields{
		"name":      strings.TrimSpace(f.Name),
		"notes":     f.Notes,
		"image_url": f.ImageURL,
	}); err != nil {
		applog.Error(ctx, "failed to update recipe", "recipeID", f.ID, "error", err)
		return models.Recipe{}, err
	}
	return f.store.Recipes.GetOwned(ctx, f.ID, ownerID)
}
