package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	applog "batchbook/internal/log"
	"batchbook/models"
)

const (
	authenticatedKey = "auth:authenticated"
	userIDKey        = "auth:user:id"
	flashKey         = "auth:message"
)

// EventKind names a change in session state.
type EventKind string

const (
	SignedIn       EventKind = "signed_in"
	SignedOut      EventKind = "signed_out"
	UserUpdated    EventKind = "user_updated"
	TokenRefreshed EventKind = "token_refreshed"
)

// Event is delivered to subscribers after a session change.
type Event struct {
	Kind     EventKind
	Identity Identity
	At       time.Time
}

// UserLookup resolves a stored account by id.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Manager owns the cookie session store and tells subscribers when the
// signed-in identity changes.
type Manager struct {
	sessions *scs.SessionManager
	users    UserLookup

	mu        sync.RWMutex
	listeners map[int]func(Event)
	nextID    int
}

func NewManager(sessions *scs.SessionManager, users UserLookup) *Manager {
	return &Manager{
		sessions:  sessions,
		users:     users,
		listeners: make(map[int]func(Event)),
	}
}

// LoadAndSave wraps next with the cookie session store and the identity
// middleware.
func (m *Manager) LoadAndSave(next http.Handler) http.Handler {
	return m.sessions.LoadAndSave(m.Middleware(next))
}

// Middleware attaches the current identity to each request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := m.Current(r.Context()); ok {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Current resolves the identity of the session loaded into ctx. Any lookup
// failure is reported as "no identity".
func (m *Manager) Current(ctx context.Context) (Identity, bool) {
	if m == nil || m.sessions == nil || m.users == nil {
		return Identity{}, false
	}
	if !m.loaded(ctx) || !m.sessions.GetBool(ctx, authenticatedKey) {
		return Identity{}, false
	}
	userID := m.sessions.GetString(ctx, userIDKey)
	if userID == "" {
		return Identity{}, false
	}

	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		applog.Debug(ctx, "session identity lookup failed", "userID", userID, "error", err)
		return Identity{}, false
	}
	return FromUser(user), true
}

// Establish starts an authenticated session for user with a fresh token.
func (m *Manager) Establish(ctx context.Context, user *models.User) error {
	if m == nil || m.sessions == nil {
		return errors.New("session manager not configured")
	}
	if user == nil || user.ID == "" {
		return errors.New("session user is missing")
	}
	if err := m.sessions.RenewToken(ctx); err != nil {
		return err
	}
	m.sessions.Put(ctx, authenticatedKey, true)
	m.sessions.Put(ctx, userIDKey, user.ID)
	m.publish(ctx, SignedIn, FromUser(user))
	return nil
}

// Refresh announces that the signed-in user's metadata changed.
func (m *Manager) Refresh(ctx context.Context, user *models.User) {
	if m == nil || user == nil {
		return
	}
	m.publish(ctx, UserUpdated, FromUser(user))
}

// Renew rotates the session token of the current session.
func (m *Manager) Renew(ctx context.Context) error {
	if m == nil || m.sessions == nil {
		return errors.New("session manager not configured")
	}
	if err := m.sessions.RenewToken(ctx); err != nil {
		return err
	}
	id, _ := IdentityFrom(ctx)
	m.publish(ctx, TokenRefreshed, id)
	return nil
}

// Clear destroys the session.
func (m *Manager) Clear(ctx context.Context) error {
	if m == nil || m.sessions == nil {
		return errors.New("session manager not configured")
	}
	id, _ := IdentityFrom(ctx)
	if err := m.sessions.Destroy(ctx); err != nil {
		return err
	}
	m.publish(ctx, SignedOut, id)
	return nil
}

// Flash stores a one-shot message shown on the next page render.
func (m *Manager) Flash(ctx context.Context, message string) {
	if m == nil || m.sessions == nil || !m.loaded(ctx) {
		return
	}
	m.sessions.Put(ctx, flashKey, message)
}

// PopFlash returns and removes the pending flash message.
func (m *Manager) PopFlash(ctx context.Context) string {
	if m == nil || m.sessions == nil || !m.loaded(ctx) {
		return ""
	}
	return m.sessions.PopString(ctx, flashKey)
}

// Subscribe registers fn for every future session event. The returned
// function removes the subscription and is safe to call more than once.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) publish(ctx context.Context, kind EventKind, id Identity) {
	m.mu.RLock()
	listeners := make([]func(Event), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.RUnlock()

	applog.Debug(ctx, "session event", "kind", string(kind), "userID", id.UserID, "listeners", len(listeners))

	event := Event{Kind: kind, Identity: id, At: time.Now().UTC()}
	for _, fn := range listeners {
		fn(event)
	}
}

// loaded reports whether ctx carries session data; scs panics otherwise.
func (m *Manager) loaded(ctx context.Context) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	m.sessions.Status(ctx)
	return true
}
