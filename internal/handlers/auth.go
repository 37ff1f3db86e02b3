package handlers

import (
	"net/http"

	applog "batchbook/internal/log"
)

// RequireAuthentication ensures the user has an active session before accessing the resource.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActiveSession(r) {
			applog.Debug(r.Context(), "no active session, redirecting to login", "path", r.URL.Path)
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActiveSession returns true when the request carries a signed-in identity.
func ActiveSession(r *http.Request) bool {
	_, ok := currentIdentity(r)
	return ok
}

// Logout destroys the current session and redirects the user to the login screen.
func Logout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		methodNotAllowed(w, r)
		return
	}

	if err := sessions.Clear(r.Context()); err != nil {
		applog.Error(r.Context(), "failed to destroy session", "error", err)
	}
	redirectToLogin(w, r)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectTo(w, r, "/login")
}

func redirectToApp(w http.ResponseWriter, r *http.Request) {
	redirectTo(w, r, "/")
}
