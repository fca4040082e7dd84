package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	signUpPath  = "/auth/v1/signup"
	tokenPath   = "/auth/v1/token"
	logoutPath  = "/auth/v1/logout"
	userPath    = "/auth/v1/user"
	metricsPath = "/metrics"
)

// Handler returns the router with every route registered.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)

	r.Method(http.MethodGet, metricsPath, s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.apiKeyMiddleware)

		r.Post(signUpPath, s.signUp)
		r.Post(tokenPath, s.token)

		r.Group(func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)

			r.Post(logoutPath, s.logout)
			r.Get(userPath, s.user)
		})
	})

	return r
}
