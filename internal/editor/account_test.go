package editor

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"batchbook/internal/auth"
	"batchbook/internal/db/mock"
	"batchbook/internal/exceptions"
	"batchbook/models"
)

type recordingAccounts struct {
	signUps int
}

func (r *recordingAccounts) SignUp(_ context.Context, email, _ string, meta auth.Metadata) (*models.User, error) {
	r.signUps++
	return &models.User{ID: "u1", Email: email, Username: meta.Username}, nil
}

func (r *recordingAccounts) SignIn(context.Context, string, string) (*models.User, error) {
	return nil, exceptions.Authentication("Invalid login credentials")
}

func TestSignUpFormValidatesBeforeSubmitting(t *testing.T) {
	t.Parallel()

	base := SignUpForm{Email: "a@b.com", Password: "secret1", FirstName: "A", LastName: "B", Username: "abc"}

	tests := []struct {
		name   string
		mutate func(f *SignUpForm)
		want   string
	}{
		{"username with space", func(f *SignUpForm) { f.Username = "a b" }, "Username cannot contain spaces"},
		{"short password", func(f *SignUpForm) { f.Password = "12345" }, "Password must be at least 6 characters"},
		{"missing first name", func(f *SignUpForm) { f.FirstName = "" }, "First name is required"},
		{"bad email", func(f *SignUpForm) { f.Email = "nope" }, "Please provide a valid email address"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := base
			tt.mutate(&form)
			accounts := &recordingAccounts{}

			_, err := form.Submit(context.Background(), accounts)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("Submit() error = %v, want %q", err, tt.want)
			}
			if accounts.signUps != 0 {
				t.Fatalf("SignUp calls = %d, want 0", accounts.signUps)
			}
		})
	}

	accounts := &recordingAccounts{}
	user, err := base.Submit(context.Background(), accounts)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if user.Username != "abc" || accounts.signUps != 1 {
		t.Fatalf("Submit() = %+v after %d calls, want abc after 1", user, accounts.signUps)
	}
}

func TestSignInFormSurfacesAuthenticationError(t *testing.T) {
	t.Parallel()

	_, err := SignInForm{Email: "a@b.com", Password: "wrong"}.Submit(context.Background(), &recordingAccounts{})
	var authErr *exceptions.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Submit() error = %v, want AuthenticationError", err)
	}
}

func TestProfileFormRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := mock.Open(ctx)
	if err != nil {
		t.Fatalf("mock.Open() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	service := auth.NewService(database).WithCost(bcrypt.MinCost)

	user, err := service.SignUp(ctx, "a@b.com", "secret1", auth.Metadata{FirstName: "A", LastName: "B", Username: "abc"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	form, err := LoadProfile(ctx, service, user.ID)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if form.Email != "a@b.com" || form.Username != "abc" {
		t.Fatalf("form = %+v, want stored email and username", form)
	}

	form.Username = "abc def"
	if _, err := form.Save(ctx, service, user.ID); err == nil || err.Error() != "Username cannot contain spaces" {
		t.Fatalf("Save() error = %v, want username rejection", err)
	}

	form.Username = "baker"
	form.Email = "ignored@example.com"
	updated, err := form.Save(ctx, service, user.ID)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if updated.Username != "baker" || updated.Email != "a@b.com" {
		t.Fatalf("updated = %+v, want username baker and unchanged email", updated)
	}
	if form.Email != "a@b.com" {
		t.Fatalf("form email = %q, want %q", form.Email, "a@b.com")
	}
}
