package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"batchbook/internal/editor"
	"batchbook/internal/exceptions"
	applog "batchbook/internal/log"
	"batchbook/internal/views/pages"
)

// NewBatch starts the next batch of a recipe and saves it.
func NewBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	recipe, err := records.Recipes.GetOwned(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		renderError(w, r, "Recipe", err, "Failed to fetch recipe")
		return
	}
	number, err := records.Batches.NextNumber(r.Context(), recipe.ID)
	if err != nil {
		renderError(w, r, "Recipe", err, "Failed to fetch batches")
		return
	}

	e := editor.NewBatch(records, recipe.ID, number, editorOptions)
	view := pages.BatchFormView{
		Editor:     e,
		RecipeName: recipe.Name,
		Action:     "/recipes/" + recipe.ID + "/batches/new",
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderPage(w, r, http.StatusOK, "New batch", pages.BatchForm(view))
	case http.MethodPost:
		handleBatchForm(w, r, id.UserID, view, "/recipes/"+recipe.ID)
	default:
		methodNotAllowed(w, r)
	}
}

// BatchDetail shows a batch in read mode.
func BatchDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	detail, err := views.Batch(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		renderError(w, r, "Batch", err, "Failed to fetch batch details")
		return
	}
	renderPage(w, r, http.StatusOK, detail.Batch.Name, pages.Batch(pages.BatchView{Detail: detail}))
}

// EditBatch opens a stored batch in edit mode and saves it.
func EditBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	e, err := editor.OpenBatch(r.Context(), records, id.UserID, r.PathValue("id"), editorOptions)
	if err != nil {
		renderError(w, r, "Batch", err, "Failed to fetch batch details")
		return
	}
	e.Edit()

	recipeName := ""
	if recipe, err := records.Recipes.Get(r.Context(), e.Batch.RecipeID); err == nil {
		recipeName = recipe.Name
	}
	view := pages.BatchFormView{
		Editor:     e,
		RecipeName: recipeName,
		Action:     "/batches/" + e.Batch.ID + "/edit",
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderPage(w, r, http.StatusOK, "Edit batch", pages.BatchForm(view))
	case http.MethodPost:
		handleBatchForm(w, r, id.UserID, view, "/batches/"+e.Batch.ID)
	default:
		methodNotAllowed(w, r)
	}
}

// handleBatchForm rebuilds the editor from the posted draft and applies the
// requested action. Only "save" writes to storage.
func handleBatchForm(w http.ResponseWriter, r *http.Request, ownerID string, view pages.BatchFormView, doneURL string) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	e := view.Editor

	rerender := func(err error) {
		if err != nil {
			view.Error = userMessage(r, err, "Failed to save batch")
		}
		renderPage(w, r, http.StatusOK, "Batch", pages.BatchForm(view))
	}

	if err := loadBatchDraft(e, r.PostForm); err != nil {
		rerender(err)
		return
	}
	image, err := resolveImage(r, ownerID, batchBucket, e.Batch.ImageURL)
	if err != nil {
		rerender(err)
		return
	}
	if image == "" {
		e.RemoveImage()
	} else {
		e.SetImage(image)
	}

	action, arg, _ := strings.Cut(r.PostFormValue("action"), ":")
	switch action {
	case "", "save":
		result, err := e.Save(r.Context())
		if err != nil {
			applog.Debug(r.Context(), "batch save failed", "batchID", e.Batch.ID, "error", err)
			rerender(err)
			return
		}
		applog.Debug(r.Context(), "batch saved", "batchID", result.BatchID, "created", result.Created, "stale", result.Stale)
		redirectTo(w, r, doneURL)
		return
	case "add_ingredient":
		view.Focus = fmt.Sprintf("ingredient-%d", e.AddIngredient())
	case "add_step":
		view.Focus = fmt.Sprintf("step-%d", e.AddStep())
	case "next_step":
		i, err := strconv.Atoi(arg)
		if err != nil || i < 0 || i >= len(e.Steps) {
			rerender(exceptions.InvalidInput("Unknown step"))
			return
		}
		next, _ := e.NextStepFocus(i)
		view.Focus = fmt.Sprintf("step-%d", next)
	case "remove_ingredient", "remove_step":
		i, err := strconv.Atoi(arg)
		if err != nil {
			rerender(exceptions.InvalidInput("Unknown row"))
			return
		}
		if action == "remove_ingredient" {
			err = e.RemoveIngredient(i)
		} else {
			err = e.RemoveStep(i)
		}
		if err != nil {
			rerender(err)
			return
		}
	case "import":
		doc, err := readDocument(r)
		if err != nil {
			rerender(err)
			return
		}
		e.ImportLines(doc.Ingredients, doc.Steps)
		if strings.TrimSpace(e.Batch.Notes) == "" {
			e.Batch.Notes = doc.Notes
		}
	default:
		rerender(exceptions.InvalidInput("Unknown action"))
		return
	}
	rerender(nil)
}

// loadBatchDraft replaces the editor's drafts with the posted values. Rows
// are sent as parallel repeated fields in display order. The batch number is
// never taken from the form.
func loadBatchDraft(e *editor.BatchEditor, form url.Values) error {
	e.Batch.Name = form.Get("name")
	e.Batch.Notes = form.Get("notes")
	e.Batch.ImageURL = form.Get("image_url")

	descriptions := form["ingredient_description"]
	e.Ingredients = make([]editor.IngredientDraft, len(descriptions))
	for i, description := range descriptions {
		e.Ingredients[i].ID = valueAt(form["ingredient_id"], i)
		e.Ingredients[i].Description = description
		if err := e.UpdateIngredient(i, editor.IngredientAmount, valueAt(form["ingredient_amount"], i)); err != nil {
			return err
		}
		if err := e.UpdateIngredient(i, editor.IngredientUnit, valueAt(form["ingredient_unit"], i)); err != nil {
			return err
		}
		e.Ingredients[i].Note = valueAt(form["ingredient_note"], i)
	}

	steps := form["step_description"]
	e.Steps = make([]editor.StepDraft, len(steps))
	for i, description := range steps {
		e.Steps[i] = editor.StepDraft{
			ID:          valueAt(form["step_id"], i),
			StepNumber:  i + 1,
			Description: description,
			Note:        valueAt(form["step_note"], i),
		}
	}
	return nil
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
