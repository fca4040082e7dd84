// Package services contains application services for the FoodFinder client.
// This file defines the session service: sign-up, login and logout against the
// auth backend, and housekeeping of the local multi-account cache.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/client/accounts"
	"github.com/dmitrijs2005/foodfinder/internal/client/client"
	"github.com/dmitrijs2005/foodfinder/internal/client/storage"
	"github.com/dmitrijs2005/foodfinder/internal/common"
	"github.com/dmitrijs2005/foodfinder/internal/logging"
)

// SessionService defines session operations for the CLI.
//
// Contract:
//   - Register / Login: authenticate and save the account locally.
//   - Logout: end the backend session; the saved account stays.
//   - Refresh: rotate the current refresh token and save it.
//   - Accounts / Switch: list saved accounts and activate one of them.
//   - RemoveAccount / ResetAccounts: the only ways a saved account goes away.
//   - Migrate: one-time cleanup of accounts saved by older releases.
//
// Local cache failures are logged and never fail an authentication.
type SessionService interface {
	Register(ctx context.Context, p RegisterParams) (*client.User, error)
	Login(ctx context.Context, email string, password []byte) (*client.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*client.User, error)
	Refresh(ctx context.Context) (*client.Session, error)
	Accounts(ctx context.Context) []accounts.Record
	Switch(ctx context.Context, email string) (accounts.Result, error)
	RemoveAccount(ctx context.Context, email string) error
	ResetAccounts(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

// RegisterParams describes a new user.
type RegisterParams struct {
	Email    string
	Password []byte
	FullName string
	UserType string
}

// SessionOptions tune the local account cache.
type SessionOptions struct {
	// RememberPasswords keeps the login password in the saved account so a
	// later switch can sign in without a prompt.
	RememberPasswords bool
	// SwitchAttemptTimeout bounds each network call of a switch.
	SwitchAttemptTimeout time.Duration
	// Codec serializes the saved accounts; nil means plain JSON.
	Codec accounts.Codec
}

type sessionService struct {
	client     client.Client
	storage    storage.Storage
	store      *accounts.Store
	reconciler *accounts.Reconciler
	resolver   *accounts.Resolver
	logger     logging.Logger
	opts       SessionOptions
	now        func() time.Time
}

// NewSessionService wires the account cache on top of st and c.
func NewSessionService(c client.Client, st storage.Storage, logger logging.Logger, opts SessionOptions) SessionService {
	var storeOpts []accounts.StoreOption
	if opts.Codec != nil {
		storeOpts = append(storeOpts, accounts.WithCodec(opts.Codec))
	}
	store := accounts.NewStore(st, logger, storeOpts...)
	rec := accounts.NewReconciler(store, logger)

	return &sessionService{
		client:     c,
		storage:    st,
		store:      store,
		reconciler: rec,
		resolver:   accounts.NewResolver(c, store, rec, logger, opts.SwitchAttemptTimeout),
		logger:     logger.With("module", "session_service"),
		opts:       opts,
		now:        time.Now,
	}
}

func (s *sessionService) recordLogin(ctx context.Context, email string, sess *client.Session, password []byte) {
	ev := accounts.Event{
		UserID:       sess.User.ID,
		Email:        email,
		FullName:     sess.User.FullName,
		UserType:     sess.User.UserType,
		RefreshToken: sess.RefreshToken,
	}
	if s.opts.RememberPasswords {
		ev.StoredPassword = string(password)
	}
	if err := s.reconciler.RecordLogin(ctx, ev); err != nil {
		s.logger.Warn(ctx, "failed to save account", "email", email, "error", err)
	}
}

// Register creates the user on the backend. When the backend answers with a
// session the new account is saved like a login.
func (s *sessionService) Register(ctx context.Context, p RegisterParams) (*client.User, error) {
	email := common.NormalizeEmail(p.Email)
	sess, err := s.client.SignUp(ctx, client.SignUpParams{
		Email:    email,
		Password: string(p.Password),
		FullName: p.FullName,
		UserType: p.UserType,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up error: %w", err)
	}

	s.recordLogin(ctx, email, sess, p.Password)
	u := sess.User
	if u.Email == "" {
		u.Email = email
	}
	return &u, nil
}

func (s *sessionService) Login(ctx context.Context, email string, password []byte) (*client.User, error) {
	email = common.NormalizeEmail(email)
	sess, err := s.client.SignInWithPassword(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	s.recordLogin(ctx, email, sess, password)
	u := sess.User
	if u.Email == "" {
		u.Email = email
	}
	return &u, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	return s.client.SignOut(ctx)
}

// CurrentUser asks the backend for the signed-in user. An expired access
// token is refreshed first. When the backend is unreachable the user of the
// local session is returned.
func (s *sessionService) CurrentUser(ctx context.Context) (*client.User, error) {
	sess := s.client.Session()
	if sess == nil {
		return nil, client.ErrNotSignedIn
	}

	if sess.Expired(s.now()) {
		if _, err := s.Refresh(ctx); err != nil {
			if client.IsAuthRejection(err) {
				return nil, err
			}
			s.logger.Warn(ctx, "access token expired and refresh failed", "error", err)
		}
	}

	u, err := s.client.GetUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			s.logger.Warn(ctx, "backend unreachable, using cached user", "error", err)
			cached := sess.User
			return &cached, nil
		}
		return nil, err
	}
	return u, nil
}

func (s *sessionService) Refresh(ctx context.Context) (*client.Session, error) {
	cur := s.client.Session()
	if cur == nil {
		return nil, client.ErrNotSignedIn
	}

	sess, err := s.client.RefreshSession(ctx, cur.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh error: %w", err)
	}

	email := sess.User.Email
	if email == "" {
		email = cur.User.Email
	}
	userID := sess.User.ID
	if userID == "" {
		userID = cur.User.ID
	}
	err = s.reconciler.RecordRefresh(ctx, accounts.Event{
		UserID:       userID,
		Email:        email,
		FullName:     sess.User.FullName,
		UserType:     sess.User.UserType,
		RefreshToken: sess.RefreshToken,
	})
	if err != nil {
		s.logger.Warn(ctx, "failed to save refreshed session", "email", email, "error", err)
	}
	return sess, nil
}

// Accounts lists the saved accounts the current user can switch to.
func (s *sessionService) Accounts(ctx context.Context) []accounts.Record {
	return s.store.Switchable(ctx, s.currentUserID())
}

func (s *sessionService) currentUserID() string {
	if sess := s.client.Session(); sess != nil {
		return sess.User.ID
	}
	return ""
}

func (s *sessionService) Switch(ctx context.Context, email string) (accounts.Result, error) {
	target, ok := s.store.Get(ctx, email)
	if !ok {
		return accounts.Result{}, fmt.Errorf("%w: %s", accounts.ErrAccountNotFound, email)
	}
	return s.resolver.Switch(ctx, target, s.currentUserID())
}

func (s *sessionService) RemoveAccount(ctx context.Context, email string) error {
	if _, ok := s.store.Get(ctx, email); !ok {
		return fmt.Errorf("%w: %s", accounts.ErrAccountNotFound, email)
	}
	return s.store.RemoveEmail(ctx, email)
}

// ResetAccounts forgets every saved account and signs out.
func (s *sessionService) ResetAccounts(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	if err := s.client.SignOut(ctx); err != nil {
		s.logger.Warn(ctx, "sign out after reset failed", "error", err)
	}
	return nil
}

func (s *sessionService) Migrate(ctx context.Context) error {
	migrated, err := accounts.MigrateOnce(ctx, s.storage, s.store, accounts.MigrationMarkerKey)
	if migrated {
		s.logger.Info(ctx, "saved accounts from an older release were cleared")
	}
	return err
}

// Close releases the backend client and the storage.
func (s *sessionService) Close(ctx context.Context) error {
	return errors.Join(s.client.Close(), s.storage.Close())
}
