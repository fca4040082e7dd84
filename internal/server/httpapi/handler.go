package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/foodfinder/internal/common"
	"github.com/dmitrijs2005/foodfinder/internal/server/services"
)

const maxBodySize = 1 << 20

type signUpRequest struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Data     userMetadata `json:"data"`
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "Could not parse request body as JSON")
		return false
	}
	return true
}

func (s *HTTPServer) signUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signUpRequest
	if !decodeBody(w, r, &req) {
		s.metrics.observe("signup", outcomeRejected)
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	user, pair, err := s.users.SignUp(ctx, services.SignUpParams{
		Email:    req.Email,
		Password: password,
		FullName: req.Data.FullName,
		UserType: req.Data.UserType,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			s.metrics.observe("signup", outcomeRejected)
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		case errors.Is(err, common.ErrorAlreadyExists):
			s.metrics.observe("signup", outcomeRejected)
			writeError(w, http.StatusUnprocessableEntity, "user_already_exists", "User already registered")
		default:
			s.metrics.observe("signup", outcomeError)
			s.logger.Error(ctx, "signup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	s.metrics.observe("signup", outcomeOK)
	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	writeJSON(w, http.StatusOK, toTokenResponse(user, pair, s.now()))
}

func (s *HTTPServer) token(w http.ResponseWriter, r *http.Request) {
	switch grant := r.URL.Query().Get("grant_type"); grant {
	case "password":
		s.passwordGrant(w, r)
	case "refresh_token":
		s.refreshGrant(w, r)
	default:
		s.metrics.observe("token", outcomeRejected)
		writeError(w, http.StatusBadRequest, "unsupported_grant_type", "Unsupported grant type "+grant)
	}
}

func (s *HTTPServer) passwordGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req passwordGrantRequest
	if !decodeBody(w, r, &req) {
		s.metrics.observe("password", outcomeRejected)
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	user, pair, err := s.users.PasswordGrant(ctx, req.Email, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.metrics.observe("password", outcomeRejected)
			writeError(w, http.StatusBadRequest, "invalid_grant", "Invalid login credentials")
			return
		}
		s.metrics.observe("password", outcomeError)
		s.logger.Error(ctx, "password grant failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	s.metrics.observe("password", outcomeOK)
	writeJSON(w, http.StatusOK, toTokenResponse(user, pair, s.now()))
}

func (s *HTTPServer) refreshGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshGrantRequest
	if !decodeBody(w, r, &req) {
		s.metrics.observe("refresh", outcomeRejected)
		return
	}

	user, pair, err := s.users.RefreshGrant(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRefreshTokenExpired):
			s.metrics.observe("refresh", outcomeRejected)
			writeError(w, http.StatusBadRequest, "invalid_grant", "Refresh token expired")
		case errors.Is(err, common.ErrorUnauthorized):
			s.metrics.observe("refresh", outcomeRejected)
			writeError(w, http.StatusBadRequest, "invalid_grant", "Invalid Refresh Token: Refresh Token Not Found")
		default:
			s.metrics.observe("refresh", outcomeError)
			s.logger.Error(ctx, "refresh grant failed", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	s.metrics.observe("refresh", outcomeOK)
	writeJSON(w, http.StatusOK, toTokenResponse(user, pair, s.now()))
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.users.Logout(ctx, userIDFromContext(ctx)); err != nil {
		s.metrics.observe("logout", outcomeError)
		s.logger.Error(ctx, "logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	s.metrics.observe("logout", outcomeOK)
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) user(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := s.users.GetUser(ctx, userIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.observe("user", outcomeRejected)
			writeError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		s.metrics.observe("user", outcomeError)
		s.logger.Error(ctx, "get user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	s.metrics.observe("user", outcomeOK)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
