package handlers

import (
	"net/http"

	"batchbook/internal/editor"
	"batchbook/internal/exceptions"
	applog "batchbook/internal/log"
	"batchbook/internal/views/pages"
)

// NewRecipe renders and saves the recipe creation form.
func NewRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderPage(w, r, http.StatusOK, "New recipe", pages.RecipeForm(pages.RecipeFormView{}))
	case http.MethodPost:
		saveRecipe(w, r, id.UserID, editor.NewRecipeForm(records, editorOptions.Metrics))
	default:
		methodNotAllowed(w, r)
	}
}

// RecipeDetail shows one recipe and its batches.
func RecipeDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	detail, err := views.Recipe(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		renderError(w, r, "Recipe", err, "Failed to fetch recipe")
		return
	}
	renderPage(w, r, http.StatusOK, detail.Recipe.Name, pages.Recipe(pages.RecipeView{Detail: detail}))
}

// EditRecipe renders and saves the edit form of an owned recipe.
func EditRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	form, err := editor.OpenRecipeForm(r.Context(), records, editorOptions.Metrics, id.UserID, r.PathValue("id"))
	if err != nil {
		renderError(w, r, "Recipe", err, "Failed to fetch recipe")
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		renderPage(w, r, http.StatusOK, "Edit recipe", pages.RecipeForm(recipeFormView(form, "")))
	case http.MethodPost:
		saveRecipe(w, r, id.UserID, form)
	default:
		methodNotAllowed(w, r)
	}
}

func saveRecipe(w http.ResponseWriter, r *http.Request, ownerID string, form *editor.RecipeForm) {
	if err := parseForm(r); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	form.Name = r.PostFormValue("name")
	form.Notes = r.PostFormValue("notes")
	form.ImageURL = r.PostFormValue("image_url")

	image, err := resolveImage(r, ownerID, recipeBucket, form.ImageURL)
	if err != nil {
		renderPage(w, r, http.StatusOK, "Recipe", pages.RecipeForm(recipeFormView(form, userMessage(r, err, "Failed to upload image"))))
		return
	}
	if image == "" {
		form.RemoveImage()
	} else {
		form.SetImage(image)
	}

	recipe, err := form.Save(r.Context(), ownerID)
	if err != nil {
		applog.Debug(r.Context(), "recipe save failed", "recipeID", form.ID, "error", err)
		renderPage(w, r, http.StatusOK, "Recipe", pages.RecipeForm(recipeFormView(form, userMessage(r, err, "Failed to save recipe"))))
		return
	}
	redirectTo(w, r, "/recipes/"+recipe.ID)
}

func recipeFormView(form *editor.RecipeForm, message string) pages.RecipeFormView {
	return pages.RecipeFormView{
		ID:       form.ID,
		Name:     form.Name,
		Notes:    form.Notes,
		ImageURL: form.ImageURL,
		Error:    message,
	}
}

// renderError shows a read failure inline with the status of err.
func renderError(w http.ResponseWriter, r *http.Request, title string, err error, fallback string) {
	status := exceptions.StatusCode(err)
	renderPage(w, r, status, title, pages.ErrorPanel(userMessage(r, err, fallback)))
}
