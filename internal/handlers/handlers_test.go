package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edusurvey/apiserver/internal/services"
	"github.com/edusurvey/apiserver/internal/store"
	"github.com/edusurvey/apiserver/types"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-test-secret"

func newRequestWithAuth(header string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

// memUserRepo is an in-memory user store for handler tests.
type memUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (m *memUserRepo) add(t *testing.T, username, email, password string, role types.Role) types.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := types.User{
		ID:           m.nextID,
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	m.nextID++
	m.users[user.ID] = user
	return user
}

func (m *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context) ([]types.User, error) {
	users := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *memUserRepo) ListByRole(ctx context.Context, role types.Role) ([]types.User, error) {
	users := make([]types.User, 0)
	for _, user := range m.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrDuplicateUsername
		}
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserRepo) Update(ctx context.Context, id int, update types.UserUpdate) (types.User, error) {
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	m.users[id] = user
	return user, nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	m.users[id] = user
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) Statistics(ctx context.Context) (types.UserStatistics, error) {
	return types.UserStatistics{TotalUsers: len(m.users)}, nil
}

// memStudentSurveyRepo is an in-memory student survey store.
type memStudentSurveyRepo struct {
	surveys map[int]types.StudentSurvey
	nextID  int
}

func newMemStudentSurveyRepo() *memStudentSurveyRepo {
	return &memStudentSurveyRepo{surveys: make(map[int]types.StudentSurvey), nextID: 1}
}

func (m *memStudentSurveyRepo) add(ownerID int) types.StudentSurvey {
	survey := types.StudentSurvey{
		ID:             m.nextID,
		UserID:         ownerID,
		HasUsedChatbot: true,
		ChatbotsUsed:   []string{"Claude"},
		TasksUsedFor:   []string{"Homework"},
		CreatedAt:      time.Now(),
	}
	m.nextID++
	m.surveys[survey.ID] = survey
	return survey
}

func (m *memStudentSurveyRepo) Create(ctx context.Context, ownerID int, input types.StudentSurveyInput) (types.StudentSurvey, error) {
	survey := m.add(ownerID)
	if input.HasUsedChatbot != nil {
		survey.HasUsedChatbot = *input.HasUsedChatbot
	}
	survey.ChatbotsUsed = input.ChatbotsUsed
	survey.TasksUsedFor = input.TasksUsedFor
	m.surveys[survey.ID] = survey
	return survey, nil
}

func (m *memStudentSurveyRepo) Get(ctx context.Context, id int) (types.StudentSurvey, error) {
	survey, ok := m.surveys[id]
	if !ok {
		return types.StudentSurvey{}, store.ErrNotFound
	}
	return survey, nil
}

func (m *memStudentSurveyRepo) List(ctx context.Context) ([]types.StudentSurvey, error) {
	surveys := make([]types.StudentSurvey, 0, len(m.surveys))
	for _, survey := range m.surveys {
		surveys = append(surveys, survey)
	}
	return surveys, nil
}

func (m *memStudentSurveyRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.StudentSurvey, error) {
	surveys := make([]types.StudentSurvey, 0)
	for _, survey := range m.surveys {
		if survey.UserID == ownerID {
			surveys = append(surveys, survey)
		}
	}
	return surveys, nil
}

func (m *memStudentSurveyRepo) Update(ctx context.Context, id int, input types.StudentSurveyInput) (types.StudentSurvey, error) {
	survey, ok := m.surveys[id]
	if !ok {
		return types.StudentSurvey{}, store.ErrNotFound
	}
	if input.HasUsedChatbot != nil {
		survey.HasUsedChatbot = *input.HasUsedChatbot
	}
	if input.ChatbotsUsed != nil {
		survey.ChatbotsUsed = input.ChatbotsUsed
	}
	if input.TasksUsedFor != nil {
		survey.TasksUsedFor = input.TasksUsedFor
	}
	if input.AdditionalComments != nil {
		survey.AdditionalComments = input.AdditionalComments
	}
	m.surveys[id] = survey
	return survey, nil
}

func (m *memStudentSurveyRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.surveys[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.surveys, id)
	return nil
}

func (m *memStudentSurveyRepo) Statistics(ctx context.Context) (types.StudentSurveyStatistics, error) {
	return types.StudentSurveyStatistics{TotalSurveys: len(m.surveys)}, nil
}

func (m *memStudentSurveyRepo) OwnerStatistics(ctx context.Context, ownerID int) (types.StudentUserStatistics, error) {
	owned, _ := m.ListByOwner(ctx, ownerID)
	return types.StudentUserStatistics{TotalSurveys: len(owned)}, nil
}

func (m *memStudentSurveyRepo) MostUsedChatbots(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memStudentSurveyRepo) MostCommonTasks(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memStudentSurveyRepo) FrequencyDistribution(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memStudentSurveyRepo) OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error) {
	owned, _ := m.ListByOwner(ctx, ownerID)
	return len(owned) > 0, nil
}

// memTeacherSurveyRepo is an in-memory teacher survey store.
type memTeacherSurveyRepo struct {
	surveys map[int]types.TeacherSurvey
	nextID  int
}

func newMemTeacherSurveyRepo() *memTeacherSurveyRepo {
	return &memTeacherSurveyRepo{surveys: make(map[int]types.TeacherSurvey), nextID: 1}
}

func (m *memTeacherSurveyRepo) add(ownerID int) types.TeacherSurvey {
	country := "Ecuador"
	survey := types.TeacherSurvey{
		ID:             m.nextID,
		UserID:         ownerID,
		HasUsedChatbot: true,
		ChatbotsUsed:   []string{"Claude"},
		CoursesUsed:    []string{"Programming"},
		Purposes:       []string{"Grading"},
		Country:        &country,
		CreatedAt:      time.Now(),
	}
	m.nextID++
	m.surveys[survey.ID] = survey
	return survey
}

func (m *memTeacherSurveyRepo) Create(ctx context.Context, ownerID int, input types.TeacherSurveyInput) (types.TeacherSurvey, error) {
	survey := m.add(ownerID)
	if input.HasUsedChatbot != nil {
		survey.HasUsedChatbot = *input.HasUsedChatbot
	}
	survey.ChatbotsUsed = input.ChatbotsUsed
	survey.CoursesUsed = input.CoursesUsed
	survey.Purposes = input.Purposes
	survey.Country = input.Country
	m.surveys[survey.ID] = survey
	return survey, nil
}

func (m *memTeacherSurveyRepo) Get(ctx context.Context, id int) (types.TeacherSurvey, error) {
	survey, ok := m.surveys[id]
	if !ok {
		return types.TeacherSurvey{}, store.ErrNotFound
	}
	return survey, nil
}

func (m *memTeacherSurveyRepo) List(ctx context.Context) ([]types.TeacherSurvey, error) {
	surveys := make([]types.TeacherSurvey, 0, len(m.surveys))
	for _, survey := range m.surveys {
		surveys = append(surveys, survey)
	}
	return surveys, nil
}

func (m *memTeacherSurveyRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.TeacherSurvey, error) {
	surveys := make([]types.TeacherSurvey, 0)
	for _, survey := range m.surveys {
		if survey.UserID == ownerID {
			surveys = append(surveys, survey)
		}
	}
	return surveys, nil
}

func (m *memTeacherSurveyRepo) Update(ctx context.Context, id int, input types.TeacherSurveyInput) (types.TeacherSurvey, error) {
	survey, ok := m.surveys[id]
	if !ok {
		return types.TeacherSurvey{}, store.ErrNotFound
	}
	if input.HasUsedChatbot != nil {
		survey.HasUsedChatbot = *input.HasUsedChatbot
	}
	if input.ChatbotsUsed != nil {
		survey.ChatbotsUsed = input.ChatbotsUsed
	}
	if input.Country != nil {
		survey.Country = input.Country
	}
	m.surveys[id] = survey
	return survey, nil
}

func (m *memTeacherSurveyRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.surveys[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.surveys, id)
	return nil
}

func (m *memTeacherSurveyRepo) Statistics(ctx context.Context) (types.TeacherSurveyStatistics, error) {
	return types.TeacherSurveyStatistics{TotalSurveys: len(m.surveys)}, nil
}

func (m *memTeacherSurveyRepo) OwnerStatistics(ctx context.Context, ownerID int) (types.TeacherUserStatistics, error) {
	owned, _ := m.ListByOwner(ctx, ownerID)
	return types.TeacherUserStatistics{TotalSurveys: len(owned)}, nil
}

func (m *memTeacherSurveyRepo) CountryDistribution(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memTeacherSurveyRepo) InstitutionDistribution(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memTeacherSurveyRepo) MostCommonPurposes(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memTeacherSurveyRepo) MostCommonChallenges(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memTeacherSurveyRepo) MostRequestedResources(ctx context.Context) ([]types.DistributionRow, error) {
	return []types.DistributionRow{}, nil
}

func (m *memTeacherSurveyRepo) OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error) {
	owned, _ := m.ListByOwner(ctx, ownerID)
	return len(owned) > 0, nil
}

// testEnv wires an httptest router the same way the server does.
type testEnv struct {
	users          *memUserRepo
	surveys        *memStudentSurveyRepo
	teacherSurveys *memTeacherSurveyRepo
	userService    *services.UserService
	router         *chi.Mux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	surveys := newMemStudentSurveyRepo()
	teacherSurveys := newMemTeacherSurveyRepo()
	userService := services.NewUserService(users)
	surveyService := services.NewStudentSurveyService(surveys, nil)
	teacherService := services.NewTeacherSurveyService(teacherSurveys, nil)
	authMiddleware := Authenticate(userService, testSecret)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, time.Hour, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware)
		UserRouter(r, userService)
	})
	router.Route("/student-surveys", func(r chi.Router) {
		r.Use(authMiddleware)
		StudentSurveyRouter(r, surveyService)
	})
	router.Route("/teacher-surveys", func(r chi.Router) {
		r.Use(authMiddleware)
		TeacherSurveyRouter(r, teacherService)
	})

	return &testEnv{
		users:          users,
		surveys:        surveys,
		teacherSurveys: teacherSurveys,
		userService:    userService,
		router:         router,
	}
}

func (env *testEnv) tokenFor(t *testing.T, user types.User) string {
	t.Helper()
	token, err := issueToken(user.ID, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
