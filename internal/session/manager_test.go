package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alexedwards/scs/v2"

	"batchbook/models"
)

type stubUsers struct {
	users map[string]*models.User
	err   error
}

func (s stubUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return user, nil
}

func loadedContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return ctx
}

func TestEstablishThenCurrentResolvesIdentity(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: "u1", Email: "a@b.com", Username: "abc"}
	sm := scs.New()
	manager := NewManager(sm, stubUsers{users: map[string]*models.User{"u1": user}})
	ctx := loadedContext(t, sm)

	if _, ok := manager.Current(ctx); ok {
		t.Fatal("expected no identity before sign-in")
	}
	if err := manager.Establish(ctx, user); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}

	id, ok := manager.Current(ctx)
	if !ok {
		t.Fatal("expected identity after sign-in")
	}
	if id.UserID != "u1" || id.Handle() != "@abc" {
		t.Fatalf("identity = %+v", id)
	}
}

func TestCurrentTreatsLookupFailureAsNoSession(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: "u1"}
	sm := scs.New()
	manager := NewManager(sm, stubUsers{err: errors.New("database unavailable")})
	ctx := loadedContext(t, sm)
	if err := manager.Establish(ctx, user); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}

	if _, ok := manager.Current(ctx); ok {
		t.Fatal("expected lookup failure to be treated as no session")
	}
}

func TestCurrentWithoutLoadedSession(t *testing.T) {
	t.Parallel()

	manager := NewManager(scs.New(), stubUsers{})
	if _, ok := manager.Current(context.Background()); ok {
		t.Fatal("expected no identity without session data")
	}
	if got := manager.PopFlash(context.Background()); got != "" {
		t.Fatalf("PopFlash() = %q, want empty", got)
	}
}

func TestSubscribersReceiveEventsUntilUnsubscribed(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: "u1", Username: "abc"}
	sm := scs.New()
	manager := NewManager(sm, stubUsers{users: map[string]*models.User{"u1": user}})
	ctx := loadedContext(t, sm)

	var mu sync.Mutex
	var kinds []EventKind
	unsubscribe := manager.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, e.Kind)
	})

	if err := manager.Establish(ctx, user); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}
	manager.Refresh(ctx, user)
	if err := manager.Renew(ctx); err != nil {
		t.Fatalf("Renew() error = %v", err)
	}
	if err := manager.Clear(WithIdentity(ctx, FromUser(user))); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	unsubscribe()
	unsubscribe()

	ctx = loadedContext(t, sm)
	if err := manager.Establish(ctx, user); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []EventKind{SignedIn, UserUpdated, TokenRefreshed, SignedOut}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestClearRemovesIdentity(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: "u1"}
	sm := scs.New()
	manager := NewManager(sm, stubUsers{users: map[string]*models.User{"u1": user}})
	ctx := loadedContext(t, sm)
	if err := manager.Establish(ctx, user); err != nil {
		t.Fatalf("Establish() error = %v", err)
	}
	if err := manager.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := manager.Current(ctx); ok {
		t.Fatal("expected identity to be gone after Clear")
	}
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: "u1", Username: "abc"}
	sm := scs.New()
	manager := NewManager(sm, stubUsers{users: map[string]*models.User{"u1": user}})

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if err := manager.Establish(r.Context(), user); err != nil {
			t.Errorf("Establish() error = %v", err)
		}
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			http.Error(w, "anonymous", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(id.Handle()))
	})
	handler := manager.LoadAndSave(mux)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "@abc" {
		t.Fatalf("whoami = %d %q, want 200 @abc", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous whoami = %d, want 401", rr.Code)
	}
}

func TestIdentityHandle(t *testing.T) {
	t.Parallel()

	if got := (Identity{}).Handle(); got != "@anonymous" {
		t.Fatalf("Handle() = %q, want @anonymous", got)
	}
}
