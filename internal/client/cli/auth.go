package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodfinder/internal/client/client"
	"github.com/dmitrijs2005/foodfinder/internal/client/services"
	"github.com/dmitrijs2005/foodfinder/internal/common"
)

// getSimpleText, getPassword and getChoice are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getChoice     = GetChoice
)

var userTypes = []string{"customer", "owner"}

// Register prompts for the new user's details and creates the account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	userType, err := getChoice(a.reader, "Account type", userTypes, a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Register(ctx, services.RegisterParams{
		Email:    email,
		Password: password,
		FullName: fullName,
		UserType: userType,
	})
	if err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			fmt.Fprintln(a.out, "This email is already registered, use login instead.")
		} else {
			fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		}
		return err
	}

	a.current = u.Email
	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	return a.loginAs(ctx, email)
}

// loginAs asks only for the password of email.
func (a *App) loginAs(ctx context.Context, email string) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		switch {
		case client.IsAuthRejection(err):
			fmt.Fprintln(a.out, "Wrong email or password.")
		case errors.Is(err, client.ErrUnavailable):
			fmt.Fprintln(a.out, "Server unavailable, try again later.")
		default:
			fmt.Fprintf(a.out, "Login failed: %v\n", err)
		}
		return err
	}

	a.current = u.Email
	fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.session.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotSignedIn) {
			fmt.Fprintln(a.out, "Not signed in.")
		} else {
			fmt.Fprintf(a.out, "Could not load user: %v\n", err)
		}
		return err
	}

	name := u.FullName
	if name == "" {
		name = "User"
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", name, u.Email, u.UserType)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	s, err := a.session.Refresh(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Refresh failed: %v\n", err)
		return err
	}
	if s.ExpiresAt.IsZero() {
		fmt.Fprintln(a.out, "Session refreshed.")
	} else {
		fmt.Fprintf(a.out, "Session refreshed, valid until %s\n", s.ExpiresAt.Local().Format("15:04:05"))
	}
	return nil
}

// Logout ends the session. The account stays in the saved list.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	a.current = ""
	if err != nil {
		a.logger.Warn(ctx, "remote sign out failed", "error", err)
	}
	fmt.Fprintln(a.out, "Signed out.")
	return err
}
