package handlers

import (
	"net/http"
	"strings"

	"batchbook/internal/editor"
	applog "batchbook/internal/log"
	"batchbook/internal/views/pages"
)

// Signup displays the account creation form and processes new registrations.
func Signup(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling signup request", "method", r.Method, "htmx", isHTMX(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ActiveSession(r) {
			redirectToApp(w, r)
			return
		}
		renderPage(w, r, http.StatusOK, "Sign up", pages.Signup(pages.SignupView{}))
	case http.MethodPost:
		if accounts == nil || sessions == nil {
			http.Error(w, "registration not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse signup form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		// username is not trimmed so surrounding whitespace is rejected
		form := editor.SignUpForm{
			Email:     strings.TrimSpace(r.PostFormValue("email")),
			Password:  r.PostFormValue("password"),
			FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
			LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
			Username:  r.PostFormValue("username"),
		}
		view := pages.SignupView{
			Email:     form.Email,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Username:  form.Username,
		}

		user, err := form.Submit(r.Context(), accounts)
		if err != nil {
			applog.Debug(r.Context(), "signup rejected", "email", strings.ToLower(form.Email), "error", err)
			view.Message = userMessage(r, err, "We couldn't create your account right now. Please try again.")
			renderPage(w, r, http.StatusOK, "Sign up", pages.Signup(view))
			return
		}

		if err := sessions.Establish(r.Context(), user); err != nil {
			applog.Error(r.Context(), "failed to establish session after signup", "error", err)
			view.Message = "We couldn't sign you in after creating your account. Please try again."
			renderPage(w, r, http.StatusOK, "Sign up", pages.Signup(view))
			return
		}

		applog.Debug(r.Context(), "signup completed successfully", "userID", user.ID)
		redirectToApp(w, r)
	default:
		methodNotAllowed(w, r)
	}
}
