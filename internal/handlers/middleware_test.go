package handlers

import (
	"net/http"
	"testing"

	"github.com/edusurvey/apiserver/types"
)

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/auth/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Message != "no authentication token provided" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/auth/profile", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "invalid token" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add(t, "ghost", "ghost@uni.edu", "secret1", types.RoleStudent)
	token := env.tokenFor(t, user)
	delete(env.users.users, user.ID)

	rec := env.do(t, http.MethodGet, "/auth/profile", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "user not found or token invalid" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestAuthenticateLoadsProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.users.add(t, "alice", "alice@uni.edu", "secret1", types.RoleStudent)

	rec := env.do(t, http.MethodGet, "/auth/profile", env.tokenFor(t, user), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp UserResponse
	decodeBody(t, rec, &resp)
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.User.ID != user.ID || resp.User.Username != "alice" {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestRequireRoleDeniesWrongRole(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.users.add(t, "prof", "prof@uni.edu", "secret1", types.RoleTeacher)

	rec := env.do(t, http.MethodPost, "/student-surveys", env.tokenFor(t, teacher), map[string]any{
		"has_used_chatbot": false,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "access denied: student or administrator role required" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRequireRoleAdminSatisfiesAll(t *testing.T) {
	env := newTestEnv(t)
	admin := env.users.add(t, "root", "root@uni.edu", "secret1", types.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/student-surveys", env.tokenFor(t, admin), map[string]any{
		"has_used_chatbot": false,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}
