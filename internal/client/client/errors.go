package client

import "errors"

var (
	ErrUnavailable   = errors.New("auth server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("user already exists")
	ErrNotSignedIn   = errors.New("not signed in")
)
