package handlers

import (
	"errors"
	"net/http"

	"github.com/edusurvey/apiserver/internal/services"
	"github.com/edusurvey/apiserver/internal/store"
	"github.com/edusurvey/apiserver/types"
)

// Authenticate verifies the bearer token and loads the account behind
// it into the request context. A token whose account has since been
// deleted is rejected the same way as a forged one.
func Authenticate(userService *services.UserService, jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "no authentication token provided")
				return
			}

			userID, err := parseTokenSubject(tokenString, secret)
			if err != nil {
				if errors.Is(err, errTokenExpired) {
					writeError(w, http.StatusUnauthorized, "token expired, please log in again")
					return
				}
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := userService.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "user not found or token invalid")
					return
				}
				writeError(w, http.StatusInternalServerError, "failed to verify token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects authenticated requests whose account does not
// hold the required role. Administrators satisfy every role.
func RequireRole(required types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			if !user.Role.Satisfies(required) {
				writeError(w, http.StatusForbidden, roleDeniedMessage(required))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func roleDeniedMessage(required types.Role) string {
	switch required {
	case types.RoleAdmin:
		return "access denied: administrator role required"
	case types.RoleTeacher:
		return "access denied: teacher or administrator role required"
	case types.RoleStudent:
		return "access denied: student or administrator role required"
	default:
		return "access denied"
	}
}
