package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"

	"batchbook/internal/config"
	"batchbook/internal/db"
	"batchbook/internal/editor"
	applog "batchbook/internal/log"
	"batchbook/internal/store"
	"batchbook/models"
)

// listSeparator splits the ingredients and steps columns into lines.
const listSeparator = "|"

type summary struct {
	Recipes int
	Batches int
	Skipped int
}

func main() {
	csvPath := "recipes.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}
	defer file.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	rows, err := readCSV(file)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	ownerID, err := resolveImportOwner(ctx, database, os.Getenv("BATCHBOOK_IMPORT_OWNER_EMAIL"))
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}

	result, err := importRows(ctx, store.New(database), ownerID, editor.ParseChildSync(cfg.Editor.ChildSync), rows)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d recipes and %d batches (%d rows skipped)\n", result.Recipes, result.Batches, result.Skipped)
	return nil
}

func resolveImportOwner(ctx context.Context, database *gorm.DB, email string) (string, error) {
	if database == nil {
		return "", fmt.Errorf("database handle is nil")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if email != "" {
		if err := database.WithContext(ctx).Where("lower(email) = ?", email).First(&user).Error; err != nil {
			return "", fmt.Errorf("find owner by email %q: %w", email, err)
		}
		return user.ID, nil
	}

	if err := database.WithContext(ctx).Order("created_at asc").First(&user).Error; err != nil {
		return "", fmt.Errorf("find default owner: %w", err)
	}
	return user.ID, nil
}

// readCSV returns one map per data row keyed by the lower-cased header.
func readCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	hasRecipe := false
	for i, key := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(key))
		if header[i] == "recipe" {
			hasRecipe = true
		}
	}
	if !hasRecipe {
		return nil, errors.New(`csv header must include a "recipe" column`)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

// importRows creates missing recipes and appends one batch per row that
// carries batch data. Recipes are matched by exact name within the owner's
// collection.
func importRows(ctx context.Context, st *store.Store, ownerID string, sync editor.ChildSync, rows []map[string]string) (summary, error) {
	var result summary
	recipes := map[string]string{}

	existing, err := st.Recipes.ListForOwner(ctx, ownerID)
	if err != nil {
		return result, fmt.Errorf("list recipes: %w", err)
	}
	for _, recipe := range existing {
		recipes[recipe.Name] = recipe.ID
	}

	opts := editor.Options{Sync: sync}
	for idx, row := range rows {
		line := idx + 2
		name := row["recipe"]
		if name == "" {
			applog.Info(ctx, "skipping row without recipe name", "line", line)
			result.Skipped++
			continue
		}

		recipeID, ok := recipes[name]
		if !ok {
			form := editor.NewRecipeForm(st, nil)
			form.Name = name
			form.Notes = row["recipe_notes"]
			recipe, err := form.Save(ctx, ownerID)
			if err != nil {
				return result, fmt.Errorf("line %d: create recipe %q: %w", line, name, err)
			}
			recipeID = recipe.ID
			recipes[name] = recipeID
			result.Recipes++
			applog.Debug(ctx, "recipe created", "line", line, "recipe", name, "recipeID", recipeID)
		}

		ingredients := splitList(row["ingredients"])
		steps := splitList(row["steps"])
		if row["batch"] == "" && row["batch_notes"] == "" && len(ingredients) == 0 && len(steps) == 0 {
			continue
		}

		number, err := st.Batches.NextNumber(ctx, recipeID)
		if err != nil {
			return result, fmt.Errorf("line %d: number batch: %w", line, err)
		}
		draft := editor.NewBatch(st, recipeID, number, opts)
		draft.Ingredients = nil
		draft.Steps = nil
		if row["batch"] != "" {
			draft.Batch.Name = row["batch"]
		}
		draft.Batch.Notes = row["batch_notes"]
		draft.ImportLines(ingredients, steps)

		saved, err := draft.Save(ctx)
		if err != nil {
			return result, fmt.Errorf("line %d: save batch for %q: %w", line, name, err)
		}
		result.Batches++
		applog.Debug(ctx, "batch imported", "line", line, "batchID", saved.BatchID, "ingredients", len(ingredients), "steps", len(steps))
	}

	return result, nil
}

func splitList(value string) []string {
	var lines []string
	for _, part := range strings.Split(value, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			lines = append(lines, part)
		}
	}
	return lines
}
