package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"batchbook/internal/config"
	"batchbook/internal/exceptions"
	applog "batchbook/internal/log"
	"batchbook/internal/metrics"
	"batchbook/internal/store"
	"batchbook/models"
)

// ErrSaveInProgress is returned when Save is called while an earlier Save on
// the same editor has not finished.
var ErrSaveInProgress = errors.New("a save is already in progress")

// ChildSync selects how saving an existing batch treats its ingredient and
// step drafts.
type ChildSync int

const (
	// SyncUpdateOnly rewrites drafts that already have an id and nothing
	// else. Added and removed rows are not persisted.
	SyncUpdateOnly ChildSync = iota
	// SyncReconcile makes the stored rows match the drafts exactly.
	SyncReconcile
)

// ParseChildSync maps a configuration value onto a ChildSync.
func ParseChildSync(value string) ChildSync {
	if strings.EqualFold(strings.TrimSpace(value), config.ChildSyncReconcile) {
		return SyncReconcile
	}
	return SyncUpdateOnly
}

// Options are shared by every editor built for a request.
type Options struct {
	Sync    ChildSync
	Metrics *metrics.Collector
}

type BatchDraft struct {
	ID          string
	RecipeID    string
	Name        string
	Notes       string
	BatchNumber int
	ImageURL    string
	CreatedOn   time.Time
}

type IngredientDraft struct {
	ID          string
	Description string
	Amount      *float64
	Unit        string
	Note        string
}

type StepDraft struct {
	ID          string
	StepNumber  int
	Description string
	Note        string
}

type IngredientField string

const (
	IngredientDescription IngredientField = "description"
	IngredientAmount      IngredientField = "amount"
	IngredientUnit        IngredientField = "unit"
	IngredientNote        IngredientField = "note"
)

type StepField string

const (
	StepDescription StepField = "description"
	StepNote        StepField = "note"
)

// SaveResult reports what Save did. Created batches are not re-fetched.
// Stale is set when an update committed but the drafts could not be reloaded.
type SaveResult struct {
	BatchID string
	Created bool
	Stale   bool
}

// BatchEditor holds the draft state of one batch while it is being created
// or edited.
type BatchEditor struct {
	Batch       BatchDraft
	Ingredients []IngredientDraft
	Steps       []StepDraft
	Editing     bool

	store  *store.Store
	opts   Options
	saving atomic.Bool
}

// NewBatch starts a draft for the next batch of a recipe with one empty
// ingredient and one empty step.
func NewBatch(st *store.Store, recipeID string, number int, opts Options) *BatchEditor {
	if number < 1 {
		number = 1
	}
	return &BatchEditor{
		Batch: BatchDraft{
			RecipeID:    recipeID,
			Name:        models.DefaultBatchName(number),
			BatchNumber: number,
		},
		Ingredients: []IngredientDraft{{}},
		Steps:       []StepDraft{{StepNumber: 1}},
		Editing:     true,
		store:       st,
		opts:        opts,
	}
}

// OpenBatch loads a stored batch visible to ownerID in read mode.
func OpenBatch(ctx context.Context, st *store.Store, ownerID, batchID string, opts Options) (*BatchEditor, error) {
	if _, err := st.Batches.GetOwned(ctx, batchID, ownerID); err != nil {
		return nil, err
	}
	e := &BatchEditor{Batch: BatchDraft{ID: batchID}, store: st, opts: opts}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// IsNew reports whether the batch has never been saved.
func (e *BatchEditor) IsNew() bool {
	return e.Batch.ID == ""
}

// Edit switches the editor into edit mode.
func (e *BatchEditor) Edit() {
	e.Editing = true
}

// AddIngredient appends an empty ingredient and returns the index that
// should receive focus.
func (e *BatchEditor) AddIngredient() int {
	e.Ingredients = append(e.Ingredients, IngredientDraft{})
	return len(e.Ingredients) - 1
}

// RemoveIngredient drops the ingredient at i. The list may become empty.
func (e *BatchEditor) RemoveIngredient(i int) error {
	if i < 0 || i >= len(e.Ingredients) {
		return positionError("ingredient", i)
	}
	e.Ingredients = append(e.Ingredients[:i], e.Ingredients[i+1:]...)
	return nil
}

// UpdateIngredient replaces one field of the ingredient at i.
func (e *BatchEditor) UpdateIngredient(i int, field IngredientField, value string) error {
	if i < 0 || i >= len(e.Ingredients) {
		return positionError("ingredient", i)
	}
	draft := &e.Ingredients[i]
	switch field {
	case IngredientDescription:
		draft.Description = value
	case IngredientAmount:
		amount, err := parseAmount(value)
		if err != nil {
			return err
		}
		draft.Amount = amount
	case IngredientUnit:
		draft.Unit = strings.TrimSpace(value)
	case IngredientNote:
		draft.Note = value
	default:
		return exceptions.InvalidInput(fmt.Sprintf("unknown ingredient field %q", field))
	}
	return nil
}

// AddStep appends an empty step and returns the index that should receive
// focus.
func (e *BatchEditor) AddStep() int {
	e.Steps = append(e.Steps, StepDraft{StepNumber: len(e.Steps) + 1})
	return len(e.Steps) - 1
}

// RemoveStep drops the step at i and renumbers the remaining drafts.
func (e *BatchEditor) RemoveStep(i int) error {
	if i < 0 || i >= len(e.Steps) {
		return positionError("step", i)
	}
	e.Steps = append(e.Steps[:i], e.Steps[i+1:]...)
	for j := range e.Steps {
		e.Steps[j].StepNumber = j + 1
	}
	return nil
}

// UpdateStep replaces one field of the step at i. Step numbers are derived
// from position and cannot be set.
func (e *BatchEditor) UpdateStep(i int, field StepField, value string) error {
	if i < 0 || i >= len(e.Steps) {
		return positionError("step", i)
	}
	switch field {
	case StepDescription:
		e.Steps[i].Description = value
	case StepNote:
		e.Steps[i].Note = value
	default:
		return exceptions.InvalidInput(fmt.Sprintf("unknown step field %q", field))
	}
	return nil
}

// NextStepFocus is the Enter-key flow of the step list: it returns the step
// after i, appending one first when i is the last step.
func (e *BatchEditor) NextStepFocus(i int) (next int, appended bool) {
	if i+1 < len(e.Steps) {
		return i + 1, false
	}
	return e.AddStep(), true
}

// SetImage records an uploaded image URL on the draft.
func (e *BatchEditor) SetImage(url string) {
	e.Batch.ImageURL = url
}

// RemoveImage clears the draft's image reference. The stored object is kept.
func (e *BatchEditor) RemoveImage() {
	e.Batch.ImageURL = ""
}

// ImportLines fills the drafts from imported text, replacing blank drafts.
func (e *BatchEditor) ImportLines(ingredients, steps []string) {
	if len(ingredients) > 0 {
		e.Ingredients = withoutBlankIngredients(e.Ingredients)
		for _, line := range ingredients {
			e.Ingredients = append(e.Ingredients, IngredientDraft{Description: line})
		}
	}
	if len(steps) > 0 {
		e.Steps = withoutBlankSteps(e.Steps)
		for _, line := range steps {
			e.Steps = append(e.Steps, StepDraft{Description: line})
		}
		for j := range e.Steps {
			e.Steps[j].StepNumber = j + 1
		}
	}
}

// Validate checks the drafts before any storage call.
func (e *BatchEditor) Validate() error {
	if strings.TrimSpace(e.Batch.Name) == "" {
		return exceptions.InvalidInput("Batch name is required")
	}
	for i, d := range e.Ingredients {
		if strings.TrimSpace(d.Description) == "" {
			return exceptions.InvalidInput(fmt.Sprintf("Ingredient %d needs a description", i+1))
		}
	}
	for i, d := range e.Steps {
		if strings.TrimSpace(d.Description) == "" {
			return exceptions.InvalidInput(fmt.Sprintf("Step %d needs a description", i+1))
		}
	}
	return nil
}

// Save persists the drafts. A new batch is inserted together with its
// ingredients and steps, numbered from 1 in draft order. An existing batch
// is updated according to the configured ChildSync, then the editor leaves
// edit mode and reloads. Every write happens in one transaction.
func (e *BatchEditor) Save(ctx context.Context) (SaveResult, error) {
	if !e.saving.CompareAndSwap(false, true) {
		return SaveResult{}, ErrSaveInProgress
	}
	defer e.saving.Store(false)

	started := time.Now()
	result, err := e.save(ctx)
	e.opts.Metrics.ObserveSave("batch", time.Since(started).Seconds(), err)
	return result, err
}

func (e *BatchEditor) save(ctx context.Context) (SaveResult, error) {
	if err := e.Validate(); err != nil {
		return SaveResult{}, err
	}
	if e.IsNew() {
		return e.create(ctx)
	}
	return e.update(ctx)
}

func (e *BatchEditor) create(ctx context.Context) (SaveResult, error) {
	batch := models.Batch{
		RecipeID:    e.Batch.RecipeID,
		Name:        strings.TrimSpace(e.Batch.Name),
		Notes:       e.Batch.Notes,
		BatchNumber: e.Batch.BatchNumber,
		ImageURL:    e.Batch.ImageURL,
	}

	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.Batches.Insert(ctx, &batch); err != nil {
			return err
		}

		ingredients := make([]models.Ingredient, 0, len(e.Ingredients))
		for i, d := range e.Ingredients {
			ingredient := ingredientModel(d)
			ingredient.BatchID = batch.ID
			ingredient.Position = i + 1
			ingredients = append(ingredients, ingredient)
		}
		if err := tx.Ingredients.InsertMany(ctx, ingredients); err != nil {
			return err
		}

		steps := make([]models.Step, 0, len(e.Steps))
		for i, d := range e.Steps {
			steps = append(steps, models.Step{
				BatchID:     batch.ID,
				StepNumber:  i + 1,
				Description: d.Description,
				Note:        d.Note,
			})
		}
		return tx.Steps.InsertMany(ctx, steps)
	})
	if err != nil {
		applog.Error(ctx, "failed to create batch", "recipeID", e.Batch.RecipeID, "error", err)
		return SaveResult{}, saveError(err)
	}

	e.Batch.ID = batch.ID
	e.Batch.CreatedOn = batch.CreatedOn
	applog.Debug(ctx, "batch created", "batchID", batch.ID, "ingredients", len(e.Ingredients), "steps", len(e.Steps))
	return SaveResult{BatchID: batch.ID, Created: true}, nil
}

func (e *BatchEditor) update(ctx context.Context) (SaveResult, error) {
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.Batches.Update(ctx, e.Batch.ID, store.Fields{
			"name":      strings.TrimSpace(e.Batch.Name),
			"notes":     e.Batch.Notes,
			"image_url": e.Batch.ImageURL,
		}); err != nil {
			return err
		}
		if e.opts.Sync == SyncReconcile {
			return e.reconcile(ctx, tx)
		}
		return e.updateExisting(ctx, tx)
	})
	if err != nil {
		applog.Error(ctx, "failed to update batch", "batchID", e.Batch.ID, "error", err)
		return SaveResult{}, saveError(err)
	}

	result := SaveResult{BatchID: e.Batch.ID}
	e.Editing = false
	if err := e.Reload(ctx); err != nil {
		applog.Error(ctx, "batch saved but reload failed", "batchID", e.Batch.ID, "error", err)
		result.Stale = true
	}
	return result, nil
}

func (e *BatchEditor) updateExisting(ctx context.Context, tx *store.Store) error {
	scope := store.Filter{"batch_id": e.Batch.ID}
	for _, d := range e.Ingredients {
		if d.ID == "" {
			continue
		}
		if err := tx.Ingredients.UpdateScoped(ctx, scope, d.ID, ingredientFields(d)); err != nil {
			return err
		}
	}
	for _, d := range e.Steps {
		if d.ID == "" {
			continue
		}
		if err := tx.Steps.UpdateScoped(ctx, scope, d.ID, store.Fields{
			"description": d.Description,
			"note":        d.Note,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (e *BatchEditor) reconcile(ctx context.Context, tx *store.Store) error {
	scope := store.Filter{"batch_id": e.Batch.ID}

	storedIngredients, err := tx.Ingredients.ListForBatch(ctx, e.Batch.ID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(storedIngredients))
	for _, row := range storedIngredients {
		known[row.ID] = true
	}
	var newIngredients []models.Ingredient
	for i, d := range e.Ingredients {
		if d.ID != "" && known[d.ID] {
			delete(known, d.ID)
			fields := ingredientFields(d)
			fields["position"] = i + 1
			if err := tx.Ingredients.UpdateScoped(ctx, scope, d.ID, fields); err != nil {
				return err
			}
			continue
		}
		ingredient := ingredientModel(d)
		ingredient.BatchID = e.Batch.ID
		ingredient.Position = i + 1
		newIngredients = append(newIngredients, ingredient)
	}
	if err := tx.Ingredients.DeleteScoped(ctx, scope, keys(known)...); err != nil {
		return err
	}
	if err := tx.Ingredients.InsertMany(ctx, newIngredients); err != nil {
		return err
	}

	storedSteps, err := tx.Steps.ListForBatch(ctx, e.Batch.ID)
	if err != nil {
		return err
	}
	known = make(map[string]bool, len(storedSteps))
	for _, row := range storedSteps {
		known[row.ID] = true
	}
	var newSteps []models.Step
	for i, d := range e.Steps {
		if d.ID != "" && known[d.ID] {
			delete(known, d.ID)
			if err := tx.Steps.UpdateScoped(ctx, scope, d.ID, store.Fields{
				"description": d.Description,
				"note":        d.Note,
				"step_number": i + 1,
			}); err != nil {
				return err
			}
			continue
		}
		newSteps = append(newSteps, models.Step{
			BatchID:     e.Batch.ID,
			StepNumber:  i + 1,
			Description: d.Description,
			Note:        d.Note,
		})
	}
	if err := tx.Steps.DeleteScoped(ctx, scope, keys(known)...); err != nil {
		return err
	}
	return tx.Steps.InsertMany(ctx, newSteps)
}

// Reload replaces the drafts with the stored batch, ingredients and steps.
func (e *BatchEditor) Reload(ctx context.Context) error {
	batch, err := e.store.Batches.Get(ctx, e.Batch.ID)
	if err != nil {
		return err
	}
	ingredients, err := e.store.Ingredients.ListForBatch(ctx, e.Batch.ID)
	if err != nil {
		return err
	}
	steps, err := e.store.Steps.ListForBatch(ctx, e.Batch.ID)
	if err != nil {
		return err
	}

	e.Batch = BatchDraft{
		ID:          batch.ID,
		RecipeID:    batch.RecipeID,
		Name:        batch.Name,
		Notes:       batch.Notes,
		BatchNumber: batch.BatchNumber,
		ImageURL:    batch.ImageURL,
		CreatedOn:   batch.CreatedOn,
	}
	e.Ingredients = make([]IngredientDraft, 0, len(ingredients))
	for _, row := range ingredients {
		e.Ingredients = append(e.Ingredients, IngredientDraft{
			ID:          row.ID,
			Description: row.Description,
			Amount:      row.Amount,
			Unit:        row.Unit,
			Note:        row.Note,
		})
	}
	e.Steps = make([]StepDraft, 0, len(steps))
	for _, row := range steps {
		e.Steps = append(e.Steps, StepDraft{
			ID:          row.ID,
			StepNumber:  row.StepNumber,
			Description: row.Description,
			Note:        row.Note,
		})
	}
	return nil
}

func ingredientModel(d IngredientDraft) models.Ingredient {
	return models.Ingredient{
		Description: d.Description,
		Amount:      d.Amount,
		Unit:        d.Unit,
		Note:        d.Note,
	}
}

func ingredientFields(d IngredientDraft) store.Fields {
	return store.Fields{
		"description": d.Description,
		"amount":      d.Amount,
		"unit":        d.Unit,
		"note":        d.Note,
	}
}

func parseAmount(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, exceptions.InvalidInput("Amount must be a number")
	}
	return &amount, nil
}

func positionError(kind string, i int) error {
	return exceptions.InvalidInput(fmt.Sprintf("no %s at position %d", kind, i+1))
}

// saveError keeps typed validation and lookup errors and gives storage
// failures the batch save message.
func saveError(err error) error {
	var backend *exceptions.BackendError
	if errors.As(err, &backend) {
		return exceptions.Backend("Failed to save batch", backend.Cause)
	}
	return err
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func withoutBlankIngredients(drafts []IngredientDraft) []IngredientDraft {
	kept := drafts[:0]
	for _, d := range drafts {
		if d.ID != "" || strings.TrimSpace(d.Description) != "" {
			kept = append(kept, d)
		}
	}
	return kept
}

func withoutBlankSteps(drafts []StepDraft) []StepDraft {
	kept := drafts[:0]
	for _, d := range drafts {
		if d.ID != "" || strings.TrimSpace(d.Description) != "" {
			kept = append(kept, d)
		}
	}
	return kept
}
