package editor

import (
	"context"

	"batchbook/internal/auth"
	"batchbook/models"
)

// Accounts is the part of the auth service used by the sign-up and sign-in
// forms.
type Accounts interface {
	SignUp(ctx context.Context, email, password string, meta auth.Metadata) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.User, error)
}

// Profiles is the part of the auth service used by the profile form.
type Profiles interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateMetadata(ctx context.Context, id string, meta auth.Metadata) (*models.User, error)
}

type SignUpForm struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Username  string
}

func (f SignUpForm) metadata() auth.Metadata {
	return auth.Metadata{FirstName: f.FirstName, LastName: f.LastName, Username: f.Username}
}

// Validate runs every sign-up rule without touching the account store.
func (f SignUpForm) Validate() error {
	if err := auth.ValidateEmail(f.Email); err != nil {
		return err
	}
	if err := auth.ValidatePassword(f.Password); err != nil {
		return err
	}
	return f.metadata().Validate()
}

func (f SignUpForm) Submit(ctx context.Context, accounts Accounts) (*models.User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return accounts.SignUp(ctx, f.Email, f.Password, f.metadata())
}

type SignInForm struct {
	Email    string
	Password string
}

func (f SignInForm) Submit(ctx context.Context, accounts Accounts) (*models.User, error) {
	return accounts.SignIn(ctx, f.Email, f.Password)
}

// ProfileForm edits the metadata of the signed-in account. Email is shown
// but never written.
type ProfileForm struct {
	Email     string
	FirstName string
	LastName  string
	Username  string
}

// LoadProfile fills a form from the stored account.
func LoadProfile(ctx context.Context, profiles Profiles, userID string) (*ProfileForm, error) {
	user, err := profiles.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileForm{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
	}, nil
}

func (f *ProfileForm) metadata() auth.Metadata {
	return auth.Metadata{FirstName: f.FirstName, LastName: f.LastName, Username: f.Username}
}

// Save validates and stores the metadata, returning the refreshed account.
func (f *ProfileForm) Save(ctx context.Context, profiles Profiles, userID string) (*models.User, error) {
	if err := f.metadata().Validate(); err != nil {
		return nil, err
	}
	user, err := profiles.UpdateMetadata(ctx, userID, f.metadata())
	if err != nil {
		return nil, err
	}
	f.Email = user.Email
	return user, nil
}
