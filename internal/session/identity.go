package session

import (
	"context"
	"strings"

	"batchbook/models"
)

// Identity is the authenticated user attached to a request.
type Identity struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Username  string
}

// FromUser builds an Identity from a stored account.
func FromUser(user *models.User) Identity {
	if user == nil {
		return Identity{}
	}
	return Identity{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
	}
}

// Handle returns "@username", or "@anonymous" when no username is set.
func (i Identity) Handle() string {
	if name := strings.TrimSpace(i.Username); name != "" {
		return "@" + name
	}
	return "@anonymous"
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
