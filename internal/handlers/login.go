package handlers

import (
	"net/http"
	"strings"

	"batchbook/internal/editor"
	applog "batchbook/internal/log"
	"batchbook/internal/views/pages"
)

// Login renders the authentication view and processes sign-in submissions.
func Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method, "htmx", isHTMX(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ActiveSession(r) {
			applog.Debug(r.Context(), "active session detected, redirecting to app")
			redirectToApp(w, r)
			return
		}
		renderPage(w, r, http.StatusOK, "Sign in", pages.Login(pages.LoginView{}))
	case http.MethodPost:
		if accounts == nil || sessions == nil {
			http.Error(w, "authentication not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse login form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		form := editor.SignInForm{
			Email:    strings.TrimSpace(r.PostFormValue("email")),
			Password: r.PostFormValue("password"),
		}

		user, err := form.Submit(r.Context(), accounts)
		if err != nil {
			applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(form.Email), "error", err)
			view := pages.LoginView{Email: form.Email, Message: userMessage(r, err, "We were unable to sign you in. Please try again.")}
			renderPage(w, r, http.StatusOK, "Sign in", pages.Login(view))
			return
		}

		if err := sessions.Establish(r.Context(), user); err != nil {
			applog.Error(r.Context(), "failed to establish session", "error", err)
			view := pages.LoginView{Email: form.Email, Message: "We were unable to sign you in. Please try again."}
			renderPage(w, r, http.StatusOK, "Sign in", pages.Login(view))
			return
		}

		applog.Debug(r.Context(), "authentication succeeded", "userID", user.ID)
		redirectToApp(w, r)
	default:
		methodNotAllowed(w, r)
	}
}
