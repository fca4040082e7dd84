package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	signUpPath = "/auth/v1/signup"
	tokenPath  = "/auth/v1/token"
	logoutPath = "/auth/v1/logout"
	userPath   = "/auth/v1/user"

	maxErrorBody = 4 << 10
)

type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time

	mu      sync.RWMutex
	session *Session
}

// NewHTTPClient builds a client for the backend at baseURL. timeout bounds
// every request; zero means no client-side limit beyond the context.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type userMetadata struct {
	FullName string `json:"full_name,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

type userResponse struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata userMetadata `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e errorResponse) message() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (u userResponse) toUser() User {
	return User{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.UserMetadata.FullName,
		UserType: u.UserMetadata.UserType,
	}
}

func (c *HTTPClient) SignUp(ctx context.Context, p SignUpParams) (*Session, error) {
	body := map[string]any{
		"email":    p.Email,
		"password": p.Password,
		"data":     userMetadata{FullName: p.FullName, UserType: p.UserType},
	}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, signUpPath, nil, body, "", &resp); err != nil {
		return nil, err
	}
	return c.storeSession(resp)
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email string, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	query := url.Values{"grant_type": {"password"}}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, tokenPath, query, body, "", &resp); err != nil {
		return nil, err
	}
	return c.storeSession(resp)
}

func (c *HTTPClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: empty refresh token", ErrUnauthorized)
	}

	body := map[string]string{"refresh_token": refreshToken}
	query := url.Values{"grant_type": {"refresh_token"}}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, tokenPath, query, body, "", &resp); err != nil {
		return nil, err
	}
	return c.storeSession(resp)
}

// SignOut revokes the current session on the server. The local session is
// dropped even when the server call fails.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	return c.do(ctx, http.MethodPost, logoutPath, nil, nil, s.AccessToken, nil)
}

func (c *HTTPClient) GetUser(ctx context.Context) (*User, error) {
	s := c.Session()
	if s == nil {
		return nil, ErrNotSignedIn
	}

	var resp userResponse
	if err := c.do(ctx, http.MethodGet, userPath, nil, nil, s.AccessToken, &resp); err != nil {
		return nil, err
	}
	u := resp.toUser()
	return &u, nil
}

// Session returns a copy of the current session, or nil.
func (c *HTTPClient) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) storeSession(resp tokenResponse) (*Session, error) {
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response without access token", ErrUnauthorized)
	}

	s := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User.toUser(),
	}

	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	if s.ExpiresAt.IsZero() || s.User.ID == "" {
		if claims, err := peekClaims(resp.AccessToken); err == nil {
			if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
				s.ExpiresAt = claims.ExpiresAt.Time
			}
			if s.User.ID == "" {
				s.User.ID = claims.Subject
			}
		}
	}

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	out := *s
	return &out, nil
}

// peekClaims reads the registered claims of an access token without checking
// its signature; the client has no key and only needs expiry and subject.
func peekClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, bearer string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set(common.APIKeyHeaderName, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return mapStatus(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	var e errorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &e)

	msg := e.message()
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch {
	case resp.StatusCode >= 500:
		sentinel = ErrUnavailable
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		sentinel = ErrAlreadyExists
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

var _ Client = (*HTTPClient)(nil)

// IsAuthRejection reports whether err means the backend refused the
// credentials, as opposed to the backend being unreachable.
func IsAuthRejection(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
