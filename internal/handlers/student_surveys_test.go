package handlers

import (
	"net/http"
	"testing"

	"github.com/edusurvey/apiserver/types"
)

func TestStudentSurveyGetOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.users.add(t, "alice", "alice@uni.edu", "secret1", types.RoleStudent)
	other := env.users.add(t, "bob", "bob@uni.edu", "secret1", types.RoleStudent)
	admin := env.users.add(t, "root", "root@uni.edu", "secret1", types.RoleAdmin)
	survey := env.surveys.add(owner.ID)

	t.Run("owner reads own survey", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/student-surveys/1", env.tokenFor(t, owner), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var resp StudentSurveyResponse
		decodeBody(t, rec, &resp)
		if resp.Survey.ID != survey.ID {
			t.Errorf("survey id = %d, want %d", resp.Survey.ID, survey.ID)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/student-surveys/1", env.tokenFor(t, other), nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		if resp.Message != "you do not have permission to view this survey" {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("admin reads any survey", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/student-surveys/1", env.tokenFor(t, admin), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing survey is 404 for everyone", func(t *testing.T) {
		for _, user := range []types.User{owner, other, admin} {
			rec := env.do(t, http.MethodGet, "/student-surveys/99", env.tokenFor(t, user), nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("%s: status = %d, want %d", user.Username, rec.Code, http.StatusNotFound)
			}
		}
	})
}

func TestStudentSurveyDeleteOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.users.add(t, "alice", "alice@uni.edu", "secret1", types.RoleStudent)
	other := env.users.add(t, "bob", "bob@uni.edu", "secret1", types.RoleStudent)
	env.surveys.add(owner.ID)

	rec := env.do(t, http.MethodDelete, "/student-surveys/1", env.tokenFor(t, other), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if _, ok := env.surveys.surveys[1]; !ok {
		t.Fatal("survey deleted by non-owner")
	}

	rec = env.do(t, http.MethodDelete, "/student-surveys/1", env.tokenFor(t, owner), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := env.surveys.surveys[1]; ok {
		t.Fatal("survey still present after delete")
	}
}

func TestStudentSurveyUpdateValidates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.users.add(t, "alice", "alice@uni.edu", "secret1", types.RoleStudent)
	env.surveys.add(owner.ID)

	rec := env.do(t, http.MethodPut, "/student-surveys/1", env.tokenFor(t, owner), map[string]any{
		"has_used_chatbot": true,
		// chatbot answers missing
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Message != "validation failed" {
		t.Errorf("message = %q", resp.Message)
	}
	if len(resp.Errors) == 0 {
		t.Error("expected validation errors")
	}
}

func TestStudentSurveyListAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	student := env.users.add(t, "alice", "alice@uni.edu", "secret1", types.RoleStudent)
	admin := env.users.add(t, "root", "root@uni.edu", "secret1", types.RoleAdmin)
	env.surveys.add(student.ID)
	env.surveys.add(student.ID)

	rec := env.do(t, http.MethodGet, "/student-surveys", env.tokenFor(t, student), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student list status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = env.do(t, http.MethodGet, "/student-surveys", env.tokenFor(t, admin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp StudentSurveyListResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 2 || len(resp.Surveys) != 2 {
		t.Errorf("count = %d, surveys = %d, want 2", resp.Count, len(resp.Surveys))
	}
}

func TestStudentSurveyMySurveys(t *testing.T) {
	env := newTestEnv(t)
	alice := env.users.add(t, "alice", "alice@uni.edu", "secret1", types.RoleStudent)
	bob := env.users.add(t, "bob", "bob@uni.edu", "secret1", types.RoleStudent)
	env.surveys.add(alice.ID)
	env.surveys.add(bob.ID)

	rec := env.do(t, http.MethodGet, "/student-surveys/my-surveys", env.tokenFor(t, alice), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp StudentSurveyListResponse
	decodeBody(t, rec, &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Surveys[0].UserID != alice.ID {
		t.Errorf("survey owner = %d, want %d", resp.Surveys[0].UserID, alice.ID)
	}
}
