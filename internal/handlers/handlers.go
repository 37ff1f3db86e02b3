package handlers

import (
	"net/http"

	"github.com/a-h/templ"

	"batchbook/internal/assets"
	"batchbook/internal/auth"
	"batchbook/internal/catalog"
	"batchbook/internal/editor"
	"batchbook/internal/exceptions"
	applog "batchbook/internal/log"
	"batchbook/internal/metrics"
	"batchbook/internal/session"
	"batchbook/internal/store"
	"batchbook/internal/views/layout"
)

// Dependencies are the shared services used by the HTTP handlers.
type Dependencies struct {
	Sessions     *session.Manager
	Accounts     *auth.Service
	Store        *store.Store
	Uploads      *assets.Manager
	Catalog      *catalog.Catalog
	Metrics      *metrics.Collector
	ChildSync    editor.ChildSync
	RecipeBucket string
	BatchBucket  string
}

var (
	sessions      *session.Manager
	accounts      *auth.Service
	records       *store.Store
	uploads       *assets.Manager
	views         *catalog.Catalog
	editorOptions editor.Options
	recipeBucket  = "recipe-images"
	batchBucket   = "batch-images"
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(deps Dependencies) {
	sessions = deps.Sessions
	accounts = deps.Accounts
	records = deps.Store
	uploads = deps.Uploads
	views = deps.Catalog
	editorOptions = editor.Options{Sync: deps.ChildSync, Metrics: deps.Metrics}
	if deps.RecipeBucket != "" {
		recipeBucket = deps.RecipeBucket
	}
	if deps.BatchBucket != "" {
		batchBucket = deps.BatchBucket
	}
}

func currentIdentity(r *http.Request) (session.Identity, bool) {
	return session.IdentityFrom(r.Context())
}

func pageHeader(r *http.Request) layout.Header {
	id, ok := currentIdentity(r)
	header := layout.Header{SignedIn: ok, Flash: sessions.PopFlash(r.Context())}
	if ok {
		header.Handle = id.Handle()
	}
	return header
}

// renderPage writes content as an HTMX fragment or wrapped in the layout.
func renderPage(w http.ResponseWriter, r *http.Request, status int, title string, content templ.Component) {
	component := content
	if !isHTMX(r) {
		component = layout.Layout(title+" · Batchbook", pageHeader(r), content)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	renderComponent(w, r, component)
}

func renderComponent(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render component", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// userMessage picks the text shown for err and logs anything unexpected.
func userMessage(r *http.Request, err error, fallback string) string {
	if exceptions.StatusCode(err) >= http.StatusInternalServerError {
		applog.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	return exceptions.Message(err, fallback)
}

func redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "method not allowed", "method", r.Method, "path", r.URL.Path)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
