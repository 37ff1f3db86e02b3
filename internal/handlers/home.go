package handlers

import (
	"net/http"

	applog "batchbook/internal/log"
	"batchbook/internal/views/pages"
)

// Home lists the signed-in user's recipes. It is re-read on every visit.
func Home(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	cards, err := views.Home(r.Context(), id.UserID)
	if err != nil {
		applog.Error(r.Context(), "failed to load recipes", "userID", id.UserID, "error", err)
		renderPage(w, r, http.StatusOK, "Recipes", pages.Home(pages.HomeView{Error: userMessage(r, err, "Failed to fetch recipes")}))
		return
	}
	renderPage(w, r, http.StatusOK, "Recipes", pages.Home(pages.HomeView{Cards: cards}))
}
