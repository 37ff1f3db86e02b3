package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"batchbook/internal/db/mock"
	"batchbook/internal/exceptions"
	"batchbook/internal/store"
	"batchbook/models"
)

// Wednesday.
var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestCatalog(t *testing.T) (*Catalog, *store.Store) {
	t.Helper()

	database, err := mock.Open(context.Background())
	if err != nil {
		t.Fatalf("mock.Open() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	st := store.New(database)
	return New(st).WithClock(func() time.Time { return testNow }), st
}

func TestFormatCreationDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		created time.Time
		want    string
	}{
		{"hours ago", testNow.Add(-3 * time.Hour), "Created 3 hours ago"},
		{"start of week", time.Date(2024, 5, 12, 1, 0, 0, 0, time.UTC), "Created 3 days ago"},
		{"last saturday", time.Date(2024, 5, 11, 23, 0, 0, 0, time.UTC), "Created on May 11, 2024"},
		{"last year", time.Date(2023, 1, 2, 8, 0, 0, 0, time.UTC), "Created on Jan 2, 2023"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatCreationDate(tt.created, testNow); got != tt.want {
				t.Fatalf("FormatCreationDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveDisplayImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		recipe    models.Recipe
		latest    string
		want      DisplayImage
		wantLabel string
	}{
		{"batch wins", models.Recipe{ImageURL: "r.png"}, "b.png", DisplayImage{URL: "b.png", Source: SourceBatch}, "Latest batch image"},
		{"recipe fallback", models.Recipe{ImageURL: "r.png"}, "", DisplayImage{URL: "r.png", Source: SourceRecipe}, "Recipe image"},
		{"none", models.Recipe{}, "", DisplayImage{}, "No image"},
	}

	for _, tt := range tests {
		got := ResolveDisplayImage(tt.recipe, tt.latest)
		if got != tt.want {
			t.Fatalf("%s: ResolveDisplayImage() = %+v, want %+v", tt.name, got, tt.want)
		}
		if got.Label() != tt.wantLabel {
			t.Fatalf("%s: Label() = %q, want %q", tt.name, got.Label(), tt.wantLabel)
		}
	}
}

func TestHomeListsNewRecipeFirst(t *testing.T) {
	t.Parallel()

	c, st := newTestCatalog(t)
	ctx := context.Background()

	older := models.Recipe{Name: "Focaccia", UserID: "u1", ImageURL: "focaccia.png", CreatedOn: testNow.AddDate(0, -1, 0)}
	if err := st.Recipes.Insert(ctx, &older); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	batch := models.Batch{RecipeID: older.ID, Name: "Batch #1", BatchNumber: 1, ImageURL: "crumb.png"}
	if err := st.Batches.Insert(ctx, &batch); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	sourdough := models.Recipe{Name: "Sourdough", UserID: "u1", CreatedOn: testNow.Add(-time.Hour)}
	if err := st.Recipes.Insert(ctx, &sourdough); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	cards, err := c.Home(ctx, "u1")
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}

	type card struct {
		Name  string
		Image DisplayImage
		Label string
	}
	got := make([]card, 0, len(cards))
	for _, c := range cards {
		got = append(got, card{Name: c.Recipe.Name, Image: c.Image, Label: c.CreatedLabel})
	}
	want := []card{
		{Name: "Sourdough", Label: "Created 1 hour ago"},
		{Name: "Focaccia", Image: DisplayImage{URL: "crumb.png", Source: SourceBatch}, Label: "Created on Apr 15, 2024"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Home() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecipeDetail(t *testing.T) {
	t.Parallel()

	c, st := newTestCatalog(t)
	ctx := context.Background()

	recipe := models.Recipe{Name: "Rye", UserID: "u1", ImageURL: "rye.png"}
	if err := st.Recipes.Insert(ctx, &recipe); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	for i, image := range []string{"first.png", ""} {
		batch := models.Batch{
			RecipeID:    recipe.ID,
			Name:        models.DefaultBatchName(i + 1),
			BatchNumber: i + 1,
			ImageURL:    image,
			CreatedOn:   testNow.Add(time.Duration(i) * time.Hour),
		}
		if err := st.Batches.Insert(ctx, &batch); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	detail, err := c.Recipe(ctx, "u1", recipe.ID)
	if err != nil {
		t.Fatalf("Recipe() error = %v", err)
	}
	if detail.NextBatchNumber != 3 {
		t.Fatalf("NextBatchNumber = %d, want 3", detail.NextBatchNumber)
	}
	if detail.Batches[0].Name != "Batch #2" {
		t.Fatalf("Batches[0] = %q, want newest first", detail.Batches[0].Name)
	}
	if detail.Image != (DisplayImage{URL: "first.png", Source: SourceBatch}) {
		t.Fatalf("Image = %+v, want the latest batch that has an image", detail.Image)
	}

	_, err = c.Recipe(ctx, "u2", recipe.ID)
	var notFound *exceptions.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Recipe() by other user error = %v, want NotFoundError", err)
	}
}

func TestBatchDetail(t *testing.T) {
	t.Parallel()

	c, st := newTestCatalog(t)
	ctx := context.Background()

	recipe := models.Recipe{Name: "Rye", UserID: "u1"}
	if err := st.Recipes.Insert(ctx, &recipe); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	batch := models.Batch{RecipeID: recipe.ID, Name: "Batch #1", BatchNumber: 1}
	if err := st.Batches.Insert(ctx, &batch); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := st.Steps.InsertMany(ctx, []models.Step{
		{BatchID: batch.ID, StepNumber: 2, Description: "Bake"},
		{BatchID: batch.ID, StepNumber: 1, Description: "Mix"},
	}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	detail, err := c.Batch(ctx, "u1", batch.ID)
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if detail.Recipe.Name != "Rye" {
		t.Fatalf("Recipe = %q, want Rye", detail.Recipe.Name)
	}
	if len(detail.Steps) != 2 || detail.Steps[0].Description != "Mix" {
		t.Fatalf("Steps = %+v, want Mix first", detail.Steps)
	}
	if len(detail.Ingredients) != 0 {
		t.Fatalf("Ingredients = %+v, want none", detail.Ingredients)
	}

	if _, err := c.Batch(ctx, "u2", batch.ID); err == nil {
		t.Fatalf("Batch() by other user error = nil, want error")
	}
}
