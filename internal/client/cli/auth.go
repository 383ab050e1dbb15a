package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/adheretrack/internal/client/client"
	"github.com/dmitrijs2005/adheretrack/internal/client/services"
	"github.com/dmitrijs2005/adheretrack/internal/client/tokenstore"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a name, email and password, creates the account and
// signs in with the same credentials.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.session.SignUp(ctx, name, email, string(password)); err != nil {
		printlnFn(describeError(err))
		return err
	}

	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and signs in. The gate switches the REPL
// to the protected commands on success.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.session.SignIn(ctx, email, string(password)); err != nil {
		printlnFn(describeError(err))
		return err
	}
	return nil
}

// Logout ends the session. A failure to clear the stored token is reported
// but the session is signed out regardless.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		printlnFn(describeError(err))
		return err
	}
	return nil
}

// WhoAmI asks the backend for the account behind the session. A rejected
// token signs the session out through the authorized transport.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		printlnFn(describeError(err))
		return err
	}

	printlnFn(fmt.Sprintf("id: %s", user.ID))
	if user.Name != "" {
		printlnFn(fmt.Sprintf("name: %s", user.Name))
	}
	if user.Email != "" {
		printlnFn(fmt.Sprintf("email: %s", user.Email))
	}
	return nil
}

// describeError turns a session error into a user-facing message.
func describeError(err error) string {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, client.ErrRegistrationFailed):
		return "Registration failed"
	case errors.Is(err, client.ErrTokenInvalid):
		return "Session expired, please log in again"
	case errors.Is(err, client.ErrNetwork):
		return "Identity service unavailable, try again later"
	case errors.Is(err, tokenstore.ErrStorage):
		return "Could not update the local session store"
	case errors.Is(err, services.ErrSuperseded):
		return "Sign-in cancelled by logout"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
