package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edusurvey/apiserver/types"
)

func newMockTeacherSurveyRepo(t *testing.T) (*TeacherSurveyRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewTeacherSurveyRepository(db), mock
}

var teacherSurveyRowColumns = []string{
	"id", "user_id", "has_used_chatbot", "chatbots_used", "courses_used",
	"purposes", "outcomes", "challenges", "likelihood_future_use",
	"advantages", "concerns", "resources_needed", "would_recommend",
	"age_range", "institution_type", "country", "years_experience",
	"additional_comments", "created_at",
	"username", "email", "role",
}

func TestTeacherSurveyCreateDefaults(t *testing.T) {
	repo, mock := newMockTeacherSurveyRepo(t)

	mock.ExpectQuery(`INSERT INTO teacher_surveys`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	survey, err := repo.Create(context.Background(), 9, types.TeacherSurveyInput{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if survey.ID != 4 || survey.UserID != 9 {
		t.Fatalf("unexpected survey identity: %+v", survey)
	}
	if survey.Purposes == nil || len(survey.Purposes) != 0 {
		t.Fatalf("expected empty purposes, got %#v", survey.Purposes)
	}
	if survey.Country != nil {
		t.Fatalf("expected nil country, got %v", *survey.Country)
	}
}

func TestTeacherSurveyGetScansArrays(t *testing.T) {
	repo, mock := newMockTeacherSurveyRepo(t)

	country := "Ecuador"
	rows := sqlmock.NewRows(teacherSurveyRowColumns).AddRow(
		5, 9, true, "{ChatGPT}", "{Algorithms,Databases}",
		"{Lesson planning,Grading}", "{Faster feedback}", "{Accuracy}",
		types.LikelihoodVeryLikely,
		"{Saves time}", "{Plagiarism}", "{Training}", true,
		"35-44", "University", country, 12,
		nil, time.Now(),
		"prof", "prof@example.com", "teacher",
	)
	mock.ExpectQuery(`FROM teacher_surveys t\s+JOIN users u`).
		WithArgs(5).
		WillReturnRows(rows)

	survey, err := repo.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(survey.CoursesUsed) != 2 || survey.CoursesUsed[1] != "Databases" {
		t.Fatalf("unexpected courses_used: %#v", survey.CoursesUsed)
	}
	if survey.Country == nil || *survey.Country != country {
		t.Fatalf("unexpected country: %v", survey.Country)
	}
	if survey.AdditionalComments != nil {
		t.Fatalf("expected nil additional_comments, got %v", *survey.AdditionalComments)
	}
	if survey.Role != types.RoleTeacher {
		t.Fatalf("unexpected owner role: %q", survey.Role)
	}
}

func TestTeacherSurveyGetNotFound(t *testing.T) {
	repo, mock := newMockTeacherSurveyRepo(t)

	mock.ExpectQuery(`FROM teacher_surveys t\s+JOIN users u`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows(teacherSurveyRowColumns))

	_, err := repo.Get(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTeacherSurveyUpdateMissing(t *testing.T) {
	repo, mock := newMockTeacherSurveyRepo(t)

	mock.ExpectQuery(`UPDATE teacher_surveys`).
		WillReturnRows(sqlmock.NewRows(teacherSurveyRowColumns[:19]))

	_, err := repo.Update(context.Background(), 404, types.TeacherSurveyInput{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTeacherSurveyCountryDistribution(t *testing.T) {
	repo, mock := newMockTeacherSurveyRepo(t)

	rows := sqlmock.NewRows([]string{"country", "count"}).
		AddRow("Ecuador", 14).
		AddRow("Colombia", 3)
	mock.ExpectQuery(`SELECT country, COUNT\(\*\) AS count`).WillReturnRows(rows)

	dist, err := repo.CountryDistribution(context.Background())
	if err != nil {
		t.Fatalf("CountryDistribution: %v", err)
	}
	if len(dist) != 2 || dist[0].Value != "Ecuador" || dist[0].Count != 14 {
		t.Fatalf("unexpected distribution: %+v", dist)
	}
}
