package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/common"
	"github.com/dmitrijs2005/foodfinder/internal/logging"
	"github.com/dmitrijs2005/foodfinder/internal/server/auth"
	"github.com/dmitrijs2005/foodfinder/internal/server/models"
	"github.com/dmitrijs2005/foodfinder/internal/server/services"
)

const (
	testAPIKey = "anon-key"
	testSecret = "jwt-secret"
)

var errBoom = errors.New("boom")

type fakeAccount struct {
	user     *models.User
	password string
}

type fakeUsers struct {
	mu       sync.Mutex
	accounts map[string]*fakeAccount
	refresh  map[string]string
	expired  map[string]bool
	seq      int

	loggedOut []string
	err       error
	panicOn   string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		accounts: map[string]*fakeAccount{},
		refresh:  map[string]string{},
		expired:  map[string]bool{},
	}
}

func (f *fakeUsers) issue(u *models.User) (*services.TokenPair, error) {
	access, expires, err := auth.GenerateToken(u.ID, u.Email, []byte(testSecret), time.Hour)
	if err != nil {
		return nil, err
	}
	f.seq++
	refresh := fmt.Sprintf("refresh-%d", f.seq)
	f.refresh[refresh] = u.ID
	return &services.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expires}, nil
}

func (f *fakeUsers) byID(id string) *models.User {
	for _, a := range f.accounts {
		if a.user.ID == id {
			return a.user
		}
	}
	return nil
}

func (f *fakeUsers) SignUp(ctx context.Context, p services.SignUpParams) (*models.User, *services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn == "signup" {
		panic("boom")
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	email := common.NormalizeEmail(p.Email)
	if !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if _, ok := f.accounts[email]; ok {
		return nil, nil, common.ErrorAlreadyExists
	}
	f.seq++
	u := &models.User{
		ID:        fmt.Sprintf("user-%d", f.seq),
		Email:     email,
		FullName:  p.FullName,
		UserType:  p.UserType,
		CreatedAt: time.Now(),
	}
	f.accounts[email] = &fakeAccount{user: u, password: string(p.Password)}
	pair, err := f.issue(u)
	return u, pair, err
}

func (f *fakeUsers) PasswordGrant(ctx context.Context, email string, password []byte) (*models.User, *services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	a, ok := f.accounts[common.NormalizeEmail(email)]
	if !ok || a.password != string(password) {
		return nil, nil, common.ErrorUnauthorized
	}
	pair, err := f.issue(a.user)
	return a.user, pair, err
}

func (f *fakeUsers) RefreshGrant(ctx context.Context, refreshToken string) (*models.User, *services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	if f.expired[refreshToken] {
		return nil, nil, common.ErrRefreshTokenExpired
	}
	userID, ok := f.refresh[refreshToken]
	if !ok {
		return nil, nil, common.ErrorUnauthorized
	}
	delete(f.refresh, refreshToken)
	u := f.byID(userID)
	pair, err := f.issue(u)
	return u, pair, err
}

func (f *fakeUsers) Logout(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.loggedOut = append(f.loggedOut, userID)
	for k, v := range f.refresh {
		if v == userID {
			delete(f.refresh, k)
		}
	}
	return nil
}

func (f *fakeUsers) GetUser(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u := f.byID(userID)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) ParseAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, []byte(testSecret))
}

func newTestServer(users UserService) *HTTPServer {
	return NewHTTPServer(":0", logging.Discard(), users, testAPIKey)
}
