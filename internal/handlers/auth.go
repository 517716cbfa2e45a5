package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/edusurvey/apiserver/internal/services"
	"github.com/edusurvey/apiserver/internal/store"
	"github.com/edusurvey/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides registration, login, and account-maintenance
// endpoints backed by HS256 JWTs.
type AuthHandler struct {
	userService *services.UserService
	secret      []byte
	tokenTTL    time.Duration
}

func NewAuthHandler(userService *services.UserService, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, jwtSecret string, tokenTTL time.Duration, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAuthHandler(userService, jwtSecret, tokenTTL)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(authMiddleware).Get("/profile", handler.Profile)
	r.With(authMiddleware).Put("/password", handler.UpdatePassword)
	r.With(authMiddleware).Post("/logout", handler.Logout)
}

// Register creates a non-admin account and returns a fresh token.
// Admin accounts are provisioned through the user-management API only.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = sanitizeString(strings.TrimSpace(req.Username))
	req.Email = sanitizeString(strings.TrimSpace(req.Email))

	if req.Role == types.RoleAdmin {
		writeError(w, http.StatusForbidden, "administrator accounts cannot be registered through this endpoint")
		return
	}
	if errs := validateRegistration(req.Username, req.Email, req.Password, req.Role); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		if store.IsDuplicate(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "user registered successfully",
		User:    user,
		Token:   token,
	})
}

// Login verifies credentials against the asserted role. The denial
// message depends only on the claimed role, so a failed password and a
// role mismatch are indistinguishable to the caller.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = sanitizeString(strings.TrimSpace(req.Email))
	if errs := validateLogin(req.Email, req.Password, req.Role); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, loginDeniedMessage(req.Role))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "logged in successfully",
		User:    user,
		Token:   token,
	})
}

// Profile returns the authenticated account.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Success: true,
		Message: "profile retrieved successfully",
		User:    user,
	})
}

// UpdatePassword replaces the authenticated account's password after
// verifying the current one.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "current password and new password are required")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	writeMessage(w, http.StatusOK, "password updated successfully")
}

// Logout exists for client symmetry; tokens are stateless and simply
// discarded client-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "logged out successfully")
}

func loginDeniedMessage(role types.Role) string {
	switch role {
	case types.RoleStudent:
		return "student access only"
	case types.RoleTeacher:
		return "teacher access only"
	case types.RoleAdmin:
		return "admin access only"
	default:
		return "invalid credentials"
	}
}

type RegisterRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     types.Role `json:"role"`
}

type LoginRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     types.Role `json:"role"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AuthResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	User    types.User `json:"user"`
	Token   string     `json:"token"`
}

type UserResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	User    types.User `json:"user"`
}
