// Package services contains the business logic of the auth server. This file
// implements UserService, which registers users, checks passwords and issues
// and rotates JWT access tokens plus server-stored refresh tokens.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/common"
	"github.com/dmitrijs2005/foodfinder/internal/cryptox"
	"github.com/dmitrijs2005/foodfinder/internal/dbx"
	"github.com/dmitrijs2005/foodfinder/internal/server/auth"
	"github.com/dmitrijs2005/foodfinder/internal/server/config"
	"github.com/dmitrijs2005/foodfinder/internal/server/models"
	"github.com/dmitrijs2005/foodfinder/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

const saltSize = 32

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// SignUpParams describes a new user.
type SignUpParams struct {
	Email    string
	Password []byte
	FullName string
	UserType string
}

// UserService provides authentication-related operations:
// - SignUp: create users and open their first session
// - PasswordGrant: verify credentials and mint tokens
// - RefreshGrant: rotate refresh tokens and mint new access tokens
// - Logout: revoke every refresh token of a user
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// SignUp validates p, stores the user with an Argon2id verifier and issues
// the first token pair in the same transaction. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) SignUp(ctx context.Context, p SignUpParams) (*models.User, *TokenPair, error) {
	user, err := s.newUser(p)
	if err != nil {
		return nil, nil, err
	}

	var (
		created *models.User
		pair    *TokenPair
	)
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, created, tx)
		return err
	}); err != nil {
		return nil, nil, err
	}
	return created, pair, nil
}

// PasswordGrant checks password against the stored verifier and returns the
// user with a new TokenPair. Unknown emails and wrong passwords both yield
// common.ErrorUnauthorized after the same amount of key stretching.
func (s *UserService) PasswordGrant(ctx context.Context, email string, password []byte) (*models.User, *TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, common.NormalizeEmail(email))
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, nil, common.ErrorInternal
	}

	salt := s.getRandomSalt()
	if user != nil {
		salt = user.Salt
	}
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	if user == nil || !s.checkVerifier(user.Verifier, cryptox.MakeVerifier(key)) {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshGrant validates a refresh token, rotates it transactionally, and
// returns the owner with a fresh TokenPair. Unknown tokens, and tokens another
// request rotated first, yield common.ErrorUnauthorized; expired ones
// common.ErrRefreshTokenExpired.
func (s *UserService) RefreshGrant(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {
	if refreshToken == "" {
		return nil, nil, common.ErrorUnauthorized
	}

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, nil, common.ErrRefreshTokenExpired
	}

	var (
		user *models.User
		pair *TokenPair
	)
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var err error
		user, err = s.repomanager.Users(tx).GetUserByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error loading user: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	}); err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes every refresh token of userID.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	return nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// ParseAccessToken returns the user id carried by a valid access token.
func (s *UserService) ParseAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) newUser(p SignUpParams) (*models.User, error) {
	email := common.NormalizeEmail(p.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", common.ErrorValidation, p.Email)
	}
	if len(p.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	userType := p.UserType
	switch userType {
	case "":
		userType = models.UserTypeCustomer
	case models.UserTypeCustomer, models.UserTypeOwner:
	default:
		return nil, fmt.Errorf("%w: unknown user type %q", common.ErrorValidation, p.UserType)
	}

	salt := s.getRandomSalt()
	key := cryptox.DeriveMasterKey(p.Password, salt)
	defer common.WipeByteArray(key)

	return &models.User{
		Email:    email,
		Salt:     salt,
		Verifier: cryptox.MakeVerifier(key),
		FullName: strings.TrimSpace(p.FullName),
		UserType: userType,
	}, nil
}

func (s *UserService) getRandomSalt() []byte { return common.GenerateRandByteArray(saltSize) }

func (s *UserService) checkVerifier(verifier []byte, candidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, expires, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expires}, nil
}
