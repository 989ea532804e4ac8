package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tabtrack/accounts/internal/accounts/service"
	"github.com/tabtrack/accounts/pkg/httpx"
	"github.com/tabtrack/accounts/pkg/slogx"
)

type SignupHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP creates a new user account. Identity fields must be unique; a
// collision answers 400 with a message naming the field that collided.
// Required fields are rejected up front instead of being passed through
// empty.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Success: false,
			Message: "Request body must be valid JSON",
		})
		return
	}

	// Validate required fields
	if req.Username == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Success: false,
			Message: "username is required",
		})
		return
	}
	if req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Success: false,
			Message: "password is required",
		})
		return
	}
	if h.AuthService.EmailIdentity && req.Email == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Success: false,
			Message: "email is required",
		})
		return
	}

	user, err := h.AuthService.Signup(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
				Success: false,
				Message: "Email already exists",
			})
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
				Success: false,
				Message: "Username already exists",
			})
		default:
			log.Error("failed to create user", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, authResponse{
				Success: false,
				Message: "Failed to create user",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse{
		Success:  true,
		Message:  "User created",
		Username: user.Username,
		Email:    user.EmailOrEmpty(),
	})
}
