package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"batchbook/internal/views/markup"
)

type LoginView struct {
	Email   string
	Message string
}

// Login renders the sign-in form.
func Login(view LoginView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<section class="auth" id="login"><h1>Sign in</h1>`)
		writeError(m, view.Message)
		m.Raw(`<form method="post" action="/login" hx-post="/login" hx-target="#login" hx-swap="outerHTML">`)
		writeField(m, field{label: "Email", name: "email", value: view.Email, kind: "email", required: true, autofocus: true})
		writeField(m, field{label: "Password", name: "password", kind: "password", required: true})
		m.Raw(`<button type="submit">Sign in</button></form>`)
		m.Raw(`<p>New here? <a href="/signup">Create an account</a></p></section>`)
		return m.Err()
	})
}

type SignupView struct {
	Email     string
	FirstName string
	LastName  string
	Username  string
	Message   string
}

// Signup renders the registration form with the profile metadata fields.
func Signup(view SignupView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<section class="auth" id="signup"><h1>Create an account</h1>`)
		writeError(m, view.Message)
		m.Raw(`<form method="post" action="/signup" hx-post="/signup" hx-target="#signup" hx-swap="outerHTML">`)
		writeField(m, field{label: "Email", name: "email", value: view.Email, kind: "email", required: true, autofocus: true})
		writeField(m, field{label: "Password", name: "password", kind: "password", required: true})
		writeField(m, field{label: "First name", name: "first_name", value: view.FirstName, required: true})
		writeField(m, field{label: "Last name", name: "last_name", value: view.LastName, required: true})
		writeField(m, field{label: "Username", name: "username", value: view.Username, required: true})
		m.Raw(`<button type="submit">Sign up</button></form>`)
		m.Raw(`<p>Already registered? <a href="/login">Sign in</a></p></section>`)
		return m.Err()
	})
}

type ProfileView struct {
	Email     string
	FirstName string
	LastName  string
	Username  string
	Message   string
	Saved     bool
}

// Profile renders the metadata editor. Email is read-only.
func Profile(view ProfileView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(w)
		m.Raw(`<section class="panel" id="profile"><h1>Profile</h1>`)
		writeError(m, view.Message)
		if view.Saved {
			m.Raw(`<p class="notice" role="status">Profile updated.</p>`)
		}
		m.Raw(`<form method="post" action="/profile" hx-post="/profile" hx-target="#profile" hx-swap="outerHTML">`)
		writeField(m, field{label: "Email", name: "email", value: view.Email, kind: "email", readonly: true})
		writeField(m, field{label: "First name", name: "first_name", value: view.FirstName, required: true})
		writeField(m, field{label: "Last name", name: "last_name", value: view.LastName, required: true})
		writeField(m, field{label: "Username", name: "username", value: view.Username, required: true})
		m.Raw(`<button type="submit">Save profile</button></form></section>`)
		return m.Err()
	})
}
