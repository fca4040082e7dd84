package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/foodfinder/internal/client/accounts"
)

// Accounts prints the saved accounts the user can switch to, most recently
// used first.
func (a *App) Accounts(ctx context.Context) error {
	list := a.session.Accounts(ctx)
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No other saved accounts.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tHANDLE\tEMAIL\tLAST USED")
	for _, r := range list {
		lastUsed := "-"
		if !r.LastUsedAt.IsZero() {
			lastUsed = r.LastUsedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Initials(), r.DisplayName(), r.Handle(), r.Email, lastUsed)
	}
	return w.Flush()
}

// Switch activates a saved account. When no stored credential works the
// user is asked for the password of that account.
func (a *App) Switch(ctx context.Context, email string) error {
	res, err := a.session.Switch(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrAccountNotFound):
			fmt.Fprintf(a.out, "No saved account for %s\n", email)
		case errors.Is(err, accounts.ErrSwitchInProgress):
			fmt.Fprintln(a.out, "Another switch is still running.")
		case errors.Is(err, accounts.ErrSwitchDismissed):
			a.logger.Info(ctx, "switch result discarded", "email", email)
		default:
			fmt.Fprintf(a.out, "Switch failed: %v\n", err)
		}
		return err
	}

	switch res.State {
	case accounts.StateAlreadyActive:
		fmt.Fprintf(a.out, "Already signed in as %s\n", res.Email)
		return nil

	case accounts.StateActive:
		a.current = res.Email
		fmt.Fprintf(a.out, "Switched to %s\n", res.Email)
		return nil
	}

	a.current = ""
	a.logger.Info(ctx, "stored credentials rejected", "email", res.Email, "error", res.Err())
	fmt.Fprintf(a.out, "Please sign in again as %s\n", res.Email)
	return a.loginAs(ctx, res.Email)
}

// Remove forgets a saved account.
func (a *App) Remove(ctx context.Context, email string) error {
	if err := a.session.RemoveAccount(ctx, email); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			fmt.Fprintf(a.out, "No saved account for %s\n", email)
		} else {
			fmt.Fprintf(a.out, "Could not remove account: %v\n", err)
		}
		return err
	}
	fmt.Fprintf(a.out, "Removed %s\n", email)
	return nil
}

// Reset forgets all saved accounts and signs out.
func (a *App) Reset(ctx context.Context) error {
	if err := a.session.ResetAccounts(ctx); err != nil {
		fmt.Fprintf(a.out, "Could not clear saved accounts: %v\n", err)
		return err
	}
	a.current = ""
	fmt.Fprintln(a.out, "All saved accounts cleared.")
	return nil
}
