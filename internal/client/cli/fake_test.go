package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/foodfinder/internal/client/accounts"
	"github.com/dmitrijs2005/foodfinder/internal/client/client"
	"github.com/dmitrijs2005/foodfinder/internal/client/services"
	"github.com/dmitrijs2005/foodfinder/internal/logging"
)

// fakeSession implements services.SessionService for CLI tests.
type fakeSession struct {
	regParams services.RegisterParams
	regErr    error

	loginEmail string
	loginPass  []byte
	loginErr   error

	user    *client.User
	userErr error

	refreshed  *client.Session
	refreshErr error

	list []accounts.Record

	switchEmail string
	switchRes   accounts.Result
	switchErr   error

	removed   string
	removeErr error

	logoutCalled bool
	logoutErr    error
	resetCalled  bool
	resetErr     error
	migrated     bool
	closed       bool
}

func (f *fakeSession) Register(_ context.Context, p services.RegisterParams) (*client.User, error) {
	f.regParams = p
	f.regParams.Password = append([]byte(nil), p.Password...)
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &client.User{ID: "new", Email: p.Email}, nil
}

func (f *fakeSession) Login(_ context.Context, email string, password []byte) (*client.User, error) {
	f.loginEmail, f.loginPass = email, append([]byte(nil), password...)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &client.User{ID: "u", Email: email}, nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeSession) CurrentUser(context.Context) (*client.User, error) {
	return f.user, f.userErr
}

func (f *fakeSession) Refresh(context.Context) (*client.Session, error) {
	return f.refreshed, f.refreshErr
}

func (f *fakeSession) Accounts(context.Context) []accounts.Record { return f.list }

func (f *fakeSession) Switch(_ context.Context, email string) (accounts.Result, error) {
	f.switchEmail = email
	return f.switchRes, f.switchErr
}

func (f *fakeSession) RemoveAccount(_ context.Context, email string) error {
	f.removed = email
	return f.removeErr
}

func (f *fakeSession) ResetAccounts(context.Context) error {
	f.resetCalled = true
	return f.resetErr
}

func (f *fakeSession) Migrate(context.Context) error {
	f.migrated = true
	return nil
}

func (f *fakeSession) Close(context.Context) error {
	f.closed = true
	return nil
}

func newTestApp(s services.SessionService, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		session: s,
		logger:  logging.Discard(),
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}, out
}

func stubInputs(t *testing.T, texts []string, password []byte) {
	t.Helper()
	origST, origGP, origGC := getSimpleText, getPassword, getChoice
	t.Cleanup(func() {
		getSimpleText, getPassword, getChoice = origST, origGP, origGC
	})

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getChoice = func(_ *bufio.Reader, _ string, options []string, _ io.Writer) (string, error) {
		return options[len(options)-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return append([]byte(nil), password...), nil
	}
}
