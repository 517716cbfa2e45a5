package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/edusurvey/apiserver/types"
	"github.com/lib/pq"
)

func newMockUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func userRows(user types.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}).
		AddRow(user.ID, user.Username, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt)
}

func TestUserGetByEmail(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	want := types.User{
		ID:           7,
		Username:     "alice",
		Email:        "alice@example.com",
		Role:         types.RoleStudent,
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	mock.ExpectQuery(`SELECT id, username, email, password, role, created_at\s+FROM users\s+WHERE email = \$1`).
		WithArgs(want.Email).
		WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), want.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != want.ID || got.Username != want.Username || got.Role != want.Role {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(`SELECT id, username, email, password, role, created_at\s+FROM users\s+WHERE id = \$1`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}))

	_, err := repo.GetByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserListByRole(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}).
		AddRow(2, "bob", "bob@example.com", "hash", "teacher", time.Now()).
		AddRow(1, "carol", "carol@example.com", "hash", "teacher", time.Now())
	mock.ExpectQuery(`FROM users\s+WHERE role = \$1\s+ORDER BY created_at DESC`).
		WithArgs(types.RoleTeacher).
		WillReturnRows(rows)

	users, err := repo.ListByRole(context.Background(), types.RoleTeacher)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "bob" || users[1].Role != types.RoleTeacher {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.Create(context.Background(), types.User{
		Username:     "alice",
		Email:        "alice@example.com",
		Role:         types.RoleStudent,
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if !IsDuplicate(err) {
		t.Fatalf("expected IsDuplicate to report true")
	}
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err := repo.Create(context.Background(), types.User{
		Username:     "alice",
		Email:        "alice@example.com",
		Role:         types.RoleStudent,
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestUserUpdatePartial(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	username := "alice_new"
	want := types.User{
		ID:        7,
		Username:  username,
		Email:     "alice@example.com",
		Role:      types.RoleStudent,
		CreatedAt: time.Now(),
	}
	mock.ExpectQuery(`UPDATE users\s+SET username = COALESCE\(\$1, username\)`).
		WithArgs(username, nil, nil, 7).
		WillReturnRows(userRows(want))

	got, err := repo.Update(context.Background(), 7, types.UserUpdate{Username: &username})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Username != username {
		t.Fatalf("expected username %q, got %q", username, got.Username)
	}
}

func TestUserUpdateMissing(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	role := types.RoleTeacher
	mock.ExpectQuery(`UPDATE users`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}))

	_, err := repo.Update(context.Background(), 99, types.UserUpdate{Role: &role})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserDeleteMissing(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStatistics(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	rows := sqlmock.NewRows([]string{"total_users", "admins", "teachers", "students", "new_this_week", "new_this_month"}).
		AddRow(10, 1, 3, 6, 2, 5)
	mock.ExpectQuery(`SELECT\s+COUNT\(\*\) AS total_users`).WillReturnRows(rows)

	stats, err := repo.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalUsers != 10 || stats.Students != 6 || stats.NewThisMonth != 5 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}
