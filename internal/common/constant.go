package common

const (
	// APIKeyHeaderName carries the project API key on every auth request.
	APIKeyHeaderName = "apikey"

	// AuthorizationHeaderName carries the Bearer access token.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "
)
