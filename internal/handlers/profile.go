package handlers

import (
	"net/http"
	"strings"

	"batchbook/internal/editor"
	applog "batchbook/internal/log"
	"batchbook/internal/session"
	"batchbook/internal/views/pages"
)

// Profile shows and updates the signed-in user's metadata.
func Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		form, err := editor.LoadProfile(r.Context(), accounts, id.UserID)
		if err != nil {
			renderPage(w, r, http.StatusOK, "Profile", pages.Profile(pages.ProfileView{
				Email:   id.Email,
				Message: userMessage(r, err, "Failed to load profile"),
			}))
			return
		}
		renderPage(w, r, http.StatusOK, "Profile", pages.Profile(profileView(form)))
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		form := &editor.ProfileForm{
			Email:     id.Email,
			FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
			LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
			Username:  r.PostFormValue("username"),
		}

		user, err := form.Save(r.Context(), accounts, id.UserID)
		if err != nil {
			applog.Debug(r.Context(), "profile update rejected", "userID", id.UserID, "error", err)
			view := profileView(form)
			view.Message = userMessage(r, err, "Failed to update profile")
			renderPage(w, r, http.StatusOK, "Profile", pages.Profile(view))
			return
		}

		sessions.Refresh(r.Context(), user)
		r = r.WithContext(session.WithIdentity(r.Context(), session.FromUser(user)))
		if err := sessions.Renew(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to renew session token", "userID", id.UserID, "error", err)
		}

		view := profileView(form)
		view.Saved = true
		renderPage(w, r, http.StatusOK, "Profile", pages.Profile(view))
	default:
		methodNotAllowed(w, r)
	}
}

func profileView(form *editor.ProfileForm) pages.ProfileView {
	return pages.ProfileView{
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Username:  form.Username,
	}
}
