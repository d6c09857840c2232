package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"finplan/internal/auth"
	"finplan/internal/models"
	"finplan/internal/service"
	"finplan/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	sessions    *auth.Sessions
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	token, user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		var vErr validation.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondError(w, http.StatusBadRequest, vErr.Message, "", nil)
		case errors.Is(err, service.ErrEmailTaken):
			respondError(w, http.StatusConflict, "Email already registered", "", nil)
		default:
			respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Registration failed", err)
		}
		return
	}

	http.SetCookie(w, h.sessions.SessionCookie(r, token))
	respondJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, ErrInvalidCredentials, "", nil)
		} else {
			respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Login failed", err)
		}
		return
	}

	http.SetCookie(w, h.sessions.SessionCookie(r, token))
	respondJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout and DELETE /api/auth/session. Tokens
// are stateless, so logout just clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie(r))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, ErrInvalidToken, "", nil)
		return
	}

	user, err := h.authService.GetUser(identity.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load user", err)
		return
	}
	if user == nil {
		// Token outlived the account
		respondError(w, http.StatusUnauthorized, ErrInvalidToken, "", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user, "valid": true})
}

// RequestReset handles POST /api/auth/reset. It responds identically whether
// or not the email belongs to an account.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Password reset request failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Reset email sent if account exists"})
}

// ConfirmReset handles POST /api/auth/reset/confirm
func (h *AuthHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := h.authService.ConfirmPasswordReset(req.Token, req.Password); err != nil {
		var vErr validation.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondError(w, http.StatusBadRequest, vErr.Message, "", nil)
		case errors.Is(err, service.ErrInvalidResetToken):
			respondError(w, http.StatusBadRequest, "Invalid or expired token", "", nil)
		default:
			respondError(w, http.StatusInternalServerError, ErrInternalServerError, "Password reset failed", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}
