package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tabtrack/accounts/internal/accounts/service"
	"github.com/tabtrack/accounts/internal/accounts/store"
	"github.com/tabtrack/accounts/pkg/httpx"
	"github.com/tabtrack/accounts/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP verifies credentials. The outcome lives in the payload's
// success flag: both an unknown identity and a wrong password answer 200
// with "Invalid credentials", so callers cannot enumerate accounts here.
// Only a store failure produces a non-200.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Success: false,
			Message: "Request body must be valid JSON",
		})
		return
	}

	identity := req.Username
	if h.AuthService.EmailIdentity {
		identity = req.Email
	}

	// Validate required fields
	if identity == "" {
		msg := "username is required"
		if h.AuthService.EmailIdentity {
			msg = "email is required"
		}
		httpx.WriteJSON(w, http.StatusBadRequest, authResponse{
			Success: false,
			Message: msg,
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

	ok, err := h.AuthService.Login(ctx, identity, req.Password)
	if err != nil {
		log.Error("login failed against store", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authResponse{
			Success: false,
			Message: "Login temporarily unavailable",
		})
		return
	}

	resp := authResponse{
		Success: ok,
		Message: "Invalid credentials",
	}
	if h.AuthService.EmailIdentity {
		resp.Email = identity
	} else {
		resp.Username = identity
	}

	if ok {
		resp.Message = "Login successful"

		// Recover the username for display. Best effort: if the record
		// vanished between calls, omit the field rather than failing.
		user, err := h.AuthService.GetUserByIdentity(ctx, identity)
		switch {
		case err == nil:
			resp.Username = user.Username
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("could not recover username after login", "err", err)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
