// Package client talks to the FoodFinder auth backend.
//
// # Overview
//
// Client is the transport-agnostic contract (SignUp, SignInWithPassword,
// RefreshSession, SignOut, GetUser). HTTPClient implements it against a
// GoTrue-compatible REST API:
//
//	POST /auth/v1/signup
//	POST /auth/v1/token?grant_type=password
//	POST /auth/v1/token?grant_type=refresh_token
//	POST /auth/v1/logout
//	GET  /auth/v1/user
//
// Every request carries the project API key in the "apikey" header;
// session-bound calls add "Authorization: Bearer <access token>".
//
// # Session
//
// The current session lives in the HTTPClient value itself. There is no
// package-level client: callers construct one and pass it to the services
// that need it.
//
// # Error Handling
//
// Failures map onto sentinel errors matched with errors.Is:
// ErrUnavailable (transport failure, timeout, 5xx), ErrUnauthorized
// (rejected credentials or token), ErrAlreadyExists (duplicate sign-up),
// ErrNotSignedIn (session-bound call without a session).
package client
