package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/client/client"
	"github.com/dmitrijs2005/foodfinder/internal/logging"
)

// DefaultAttemptTimeout bounds a single network attempt of a switch.
const DefaultAttemptTimeout = 12 * time.Second

// AuthBackend is the part of client.Client a switch needs.
type AuthBackend interface {
	SignInWithPassword(ctx context.Context, email string, password string) (*client.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*client.Session, error)
	SignOut(ctx context.Context) error
}

type State string

const (
	StateAlreadyActive State = "already_active"
	StateActive        State = "active"
	StateRequiresLogin State = "requires_login"
)

type Strategy string

const (
	StrategyNone     Strategy = ""
	StrategyPassword Strategy = "password_signin"
	StrategyRefresh  Strategy = "token_refresh"
)

// Attempt is one failed reactivation try.
type Attempt struct {
	Strategy Strategy
	Err      error
}

// Result is the outcome of a switch.
type Result struct {
	State    State
	Strategy Strategy
	// Email is set for StateRequiresLogin so the login form can be prefilled.
	Email    string
	Session  *client.Session
	Attempts []Attempt
}

// Err is nil unless the switch ended in StateRequiresLogin.
func (r Result) Err() error {
	if r.State != StateRequiresLogin {
		return nil
	}
	errs := []error{ErrAllStrategiesExhausted}
	for _, a := range r.Attempts {
		errs = append(errs, a.Err)
	}
	return errors.Join(errs...)
}

// Resolver makes a saved account the active session.
type Resolver struct {
	backend        AuthBackend
	store          *Store
	reconciler     *Reconciler
	logger         logging.Logger
	attemptTimeout time.Duration

	inFlight atomic.Bool
}

func NewResolver(backend AuthBackend, store *Store, reconciler *Reconciler, logger logging.Logger, attemptTimeout time.Duration) *Resolver {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Resolver{
		backend:        backend,
		store:          store,
		reconciler:     reconciler,
		logger:         logger.With("module", "switch_resolver"),
		attemptTimeout: attemptTimeout,
	}
}

// Switch activates target for a user currently signed in as currentUserID.
//
// It tries a password sign-in with the stored password, then a refresh with
// the stored refresh token. When both are missing or fail it signs out and
// returns StateRequiresLogin. Records are never removed on failure.
//
// Only one switch runs at a time; a concurrent call gets ErrSwitchInProgress.
// The chain keeps running when ctx ends; the result is then returned together
// with an error matching ErrSwitchDismissed.
func (r *Resolver) Switch(ctx context.Context, target Record, currentUserID string) (Result, error) {
	if target.UserID != "" && target.UserID == currentUserID {
		return Result{State: StateAlreadyActive, Email: target.Email}, nil
	}

	if !r.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrSwitchInProgress
	}
	defer r.inFlight.Store(false)

	res := r.resolve(context.WithoutCancel(ctx), target)

	if err := ctx.Err(); err != nil {
		r.logger.Info(ctx, "switch finished after caller left", "email", target.Email, "state", res.State)
		return res, fmt.Errorf("%w: %w", ErrSwitchDismissed, err)
	}
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, target Record) Result {
	var attempts []Attempt

	if target.StoredPassword != "" {
		s, err := r.attempt(ctx, func(ctx context.Context) (*client.Session, error) {
			return r.backend.SignInWithPassword(ctx, target.Email, target.StoredPassword)
		})
		if err == nil {
			r.onPasswordSignIn(ctx, target, s)
			return Result{State: StateActive, Strategy: StrategyPassword, Email: target.Email, Session: s, Attempts: attempts}
		}
		r.logger.Warn(ctx, "password sign-in failed", "email", target.Email, "error", err)
		attempts = append(attempts, Attempt{Strategy: StrategyPassword, Err: fmt.Errorf("%w: %w", ErrPasswordRejected, err)})
	}

	if target.RefreshToken != "" {
		s, err := r.attempt(ctx, func(ctx context.Context) (*client.Session, error) {
			return r.backend.RefreshSession(ctx, target.RefreshToken)
		})
		if err == nil {
			r.onRefresh(ctx, target, s)
			return Result{State: StateActive, Strategy: StrategyRefresh, Email: target.Email, Session: s, Attempts: attempts}
		}
		r.logger.Warn(ctx, "token refresh failed", "email", target.Email, "error", err)
		attempts = append(attempts, Attempt{Strategy: StrategyRefresh, Err: fmt.Errorf("%w: %w", ErrRefreshTokenInvalid, err)})
	}

	signOutCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()
	if err := r.backend.SignOut(signOutCtx); err != nil {
		r.logger.Warn(ctx, "sign out before interactive login failed", "error", err)
	}

	return Result{State: StateRequiresLogin, Email: target.Email, Attempts: attempts}
}

// attempt runs fn under the per-attempt timeout. A panic counts as a failure.
func (r *Resolver) attempt(ctx context.Context, fn func(context.Context) (*client.Session, error)) (s *client.Session, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			s, err = nil, fmt.Errorf("backend call panicked: %v", p)
		}
	}()

	s, err = fn(ctx)
	if err == nil && s == nil {
		err = errors.New("backend returned no session")
	}
	return s, err
}

func (r *Resolver) onPasswordSignIn(ctx context.Context, target Record, s *client.Session) {
	ev := Event{
		UserID:         s.User.ID,
		Email:          target.Email,
		FullName:       s.User.FullName,
		UserType:       s.User.UserType,
		RefreshToken:   s.RefreshToken,
		StoredPassword: target.StoredPassword,
	}
	if ev.UserID == "" {
		ev.UserID = target.UserID
	}
	if err := r.reconciler.RecordLogin(ctx, ev); err != nil {
		r.logger.Error(ctx, "failed to record sign-in", "email", target.Email, "error", err)
	}
}

func (r *Resolver) onRefresh(ctx context.Context, target Record, s *client.Session) {
	ev := Event{
		UserID:       s.User.ID,
		Email:        target.Email,
		FullName:     s.User.FullName,
		UserType:     s.User.UserType,
		RefreshToken: s.RefreshToken,
	}
	if ev.UserID == "" {
		ev.UserID = target.UserID
	}
	if err := r.reconciler.RecordRefresh(ctx, ev); err != nil {
		r.logger.Error(ctx, "failed to record refreshed session", "email", target.Email, "error", err)
	}
	if err := r.store.Touch(ctx, ev.UserID); err != nil {
		r.logger.Error(ctx, "failed to mark account as used", "email", target.Email, "error", err)
	}
}
