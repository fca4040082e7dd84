package accounts

import (
	"context"

	"github.com/dmitrijs2005/foodfinder/internal/logging"
)

// Event is an authentication outcome. Empty strings are absent values.
type Event struct {
	UserID         string
	Email          string
	FullName       string
	UserType       string
	RefreshToken   string
	StoredPassword string
}

func (e Event) patch() Patch {
	return Patch{
		UserID:         Str(e.UserID),
		FullName:       Str(e.FullName),
		UserType:       Str(e.UserType),
		RefreshToken:   Str(e.RefreshToken),
		StoredPassword: Str(e.StoredPassword),
	}
}

// Reconciler keeps the store in line with what the auth backend reports.
type Reconciler struct {
	store  *Store
	logger logging.Logger
}

func NewReconciler(store *Store, logger logging.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger.With("module", "account_reconciler")}
}

// RecordLogin merges a successful login and marks the account as used.
func (r *Reconciler) RecordLogin(ctx context.Context, ev Event) error {
	if ev.UserID == "" || ev.Email == "" {
		return ErrIncompleteIdentity
	}
	if err := r.store.Upsert(ctx, ev.Email, ev.patch()); err != nil {
		return err
	}
	return r.store.Touch(ctx, ev.UserID)
}

// RecordRefresh merges a refreshed session. The account is created when it
// was never saved before; LastUsedAt is left alone.
func (r *Reconciler) RecordRefresh(ctx context.Context, ev Event) error {
	if ev.UserID == "" || ev.Email == "" {
		return ErrIncompleteIdentity
	}
	r.logger.Debug(ctx, "recording refreshed session", "user_id", ev.UserID)
	return r.store.Upsert(ctx, ev.Email, ev.patch())
}
