package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/edusurvey/apiserver/internal/services"
	"github.com/edusurvey/apiserver/internal/store"
	"github.com/edusurvey/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides the user-management endpoints. Listing,
// creating, and deleting accounts is restricted to administrators;
// reads are open to every authenticated user and updates to the
// account owner or an administrator.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user-management routes; the router is expected
// to already sit behind Authenticate.
func UserRouter(r chi.Router, userService *services.UserService) {
	handler := NewUserHandler(userService)
	admin := RequireRole(types.RoleAdmin)

	r.With(admin).Get("/statistics", handler.Statistics)
	r.With(admin).Get("/", handler.List)
	r.With(admin).Post("/", handler.Create)
	r.With(admin).Delete("/{userID}", handler.Delete)
	r.Get("/{userID}", handler.Get)
	r.Put("/{userID}", handler.Update)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []types.User
	var err error

	if raw := r.URL.Query().Get("role"); raw != "" {
		role := types.Role(raw)
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, "role must be one of: student, teacher, admin")
			return
		}
		users, err = h.userService.ListByRole(r.Context(), role)
	} else {
		users, err = h.userService.List(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Success: true,
		Message: "users retrieved successfully",
		Count:   len(users),
		Users:   users,
	})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Success: true,
		Message: "user retrieved successfully",
		User:    user,
	})
}

// Create provisions an account with any role, including admin. Only
// reachable by administrators.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = sanitizeString(strings.TrimSpace(req.Username))
	req.Email = sanitizeString(strings.TrimSpace(req.Email))
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
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{
		Success: true,
		Message: "user created successfully",
		User:    user,
	})
}

// Update edits an account. Owners may change their own username and
// email; role changes take an administrator.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := idParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if actor.Role != types.RoleAdmin && actor.ID != id {
		writeError(w, http.StatusForbidden, "you do not have permission to edit this user")
		return
	}

	var update types.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if update.Username != nil {
		*update.Username = sanitizeString(strings.TrimSpace(*update.Username))
	}
	if update.Email != nil {
		*update.Email = sanitizeString(strings.TrimSpace(*update.Email))
	}
	if errs := validateUserUpdate(update); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	if update.Role != nil && actor.Role != types.RoleAdmin {
		writeError(w, http.StatusForbidden, "only administrators can change roles")
		return
	}

	user, err := h.userService.Update(r.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case store.IsDuplicate(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		Success: true,
		Message: "user updated successfully",
		User:    user,
	})
}

// Delete removes an account. Administrators cannot delete themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := idParam(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if id == actor.ID {
		writeError(w, http.StatusBadRequest, "you cannot delete your own account")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	writeMessage(w, http.StatusOK, "user deleted successfully")
}

func (h *UserHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	statistics, err := h.userService.Statistics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	writeJSON(w, http.StatusOK, UserStatisticsResponse{
		Success:    true,
		Message:    "statistics retrieved successfully",
		Statistics: statistics,
	})
}

type UserListResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Count   int          `json:"count"`
	Users   []types.User `json:"users"`
}

type UserStatisticsResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Statistics types.UserStatistics `json:"statistics"`
}
