package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edusurvey/apiserver/internal/services"
	"github.com/edusurvey/apiserver/internal/store"
	"github.com/edusurvey/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// TeacherSurveyHandler provides the teacher questionnaire endpoints.
type TeacherSurveyHandler struct {
	surveyService *services.TeacherSurveyService
}

func NewTeacherSurveyHandler(surveyService *services.TeacherSurveyService) *TeacherSurveyHandler {
	return &TeacherSurveyHandler{surveyService: surveyService}
}

// TeacherSurveyRouter registers teacher survey routes; the router is
// expected to already sit behind Authenticate.
func TeacherSurveyRouter(r chi.Router, surveyService *services.TeacherSurveyService) {
	handler := NewTeacherSurveyHandler(surveyService)
	teacher := RequireRole(types.RoleTeacher)

	r.With(teacher).Post("/", handler.Create)
	r.With(RequireRole(types.RoleAdmin)).Get("/", handler.List)
	r.Get("/my-surveys", handler.ListMine)
	r.Get("/statistics", handler.Statistics)
	r.Get("/my-statistics", handler.MyStatistics)
	r.Route("/{surveyID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

func (h *TeacherSurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var input types.TeacherSurveyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	sanitizeTeacherSurveyInput(&input)
	if errs := validateTeacherSurvey(input); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	survey, err := h.surveyService.Create(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create survey")
		return
	}

	writeJSON(w, http.StatusCreated, TeacherSurveyResponse{
		Success: true,
		Message: "survey submitted successfully",
		Survey:  survey,
	})
}

func (h *TeacherSurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveyService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list surveys")
		return
	}

	writeJSON(w, http.StatusOK, TeacherSurveyListResponse{
		Success: true,
		Message: "surveys retrieved successfully",
		Count:   len(surveys),
		Surveys: surveys,
	})
}

func (h *TeacherSurveyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	surveys, err := h.surveyService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list surveys")
		return
	}

	writeJSON(w, http.StatusOK, TeacherSurveyListResponse{
		Success: true,
		Message: "surveys retrieved successfully",
		Count:   len(surveys),
		Surveys: surveys,
	})
}

func (h *TeacherSurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadOwned(w, r, "view")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, TeacherSurveyResponse{
		Success: true,
		Message: "survey retrieved successfully",
		Survey:  survey,
	})
}

func (h *TeacherSurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadOwned(w, r, "edit")
	if !ok {
		return
	}

	var input types.TeacherSurveyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	sanitizeTeacherSurveyInput(&input)
	if errs := validateTeacherSurvey(input); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	updated, err := h.surveyService.Update(r.Context(), survey.ID, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update survey")
		return
	}

	writeJSON(w, http.StatusOK, TeacherSurveyResponse{
		Success: true,
		Message: "survey updated successfully",
		Survey:  updated,
	})
}

func (h *TeacherSurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadOwned(w, r, "delete")
	if !ok {
		return
	}

	if err := h.surveyService.Delete(r.Context(), survey.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete survey")
		return
	}

	writeMessage(w, http.StatusOK, "survey deleted successfully")
}

// Statistics serves the global report to administrators and the
// caller's personal rollup to everyone else.
func (h *TeacherSurveyHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if user.Role != types.RoleAdmin {
		statistics, err := h.surveyService.OwnerStatistics(r.Context(), user.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load statistics")
			return
		}
		writeJSON(w, http.StatusOK, TeacherOwnerStatisticsResponse{
			Success:    true,
			Message:    "your statistics retrieved successfully",
			Statistics: statistics,
		})
		return
	}

	report, err := h.surveyService.Report(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	writeJSON(w, http.StatusOK, TeacherReportResponse{
		Success:    true,
		Message:    "statistics retrieved successfully",
		Statistics: report,
	})
}

func (h *TeacherSurveyHandler) MyStatistics(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	report, err := h.surveyService.OwnerReport(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	writeJSON(w, http.StatusOK, TeacherOwnerReportResponse{
		Success:    true,
		Message:    "your personal statistics retrieved successfully",
		Statistics: report,
	})
}

func (h *TeacherSurveyHandler) loadOwned(w http.ResponseWriter, r *http.Request, action string) (types.TeacherSurvey, bool) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return types.TeacherSurvey{}, false
	}

	id, err := idParam(r, "surveyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid survey id")
		return types.TeacherSurvey{}, false
	}

	survey, err := h.surveyService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return types.TeacherSurvey{}, false
		}
		writeError(w, http.StatusInternalServerError, "failed to load survey")
		return types.TeacherSurvey{}, false
	}

	if survey.UserID != user.ID && user.Role != types.RoleAdmin {
		writeError(w, http.StatusForbidden, "you do not have permission to "+action+" this survey")
		return types.TeacherSurvey{}, false
	}

	return survey, true
}

type TeacherSurveyResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Survey  types.TeacherSurvey `json:"survey"`
}

type TeacherSurveyListResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Count   int                   `json:"count"`
	Surveys []types.TeacherSurvey `json:"surveys"`
}

type TeacherReportResponse struct {
	Success    bool                         `json:"success"`
	Message    string                       `json:"message"`
	Statistics services.TeacherSurveyReport `json:"statistics"`
}

type TeacherOwnerStatisticsResponse struct {
	Success    bool                        `json:"success"`
	Message    string                      `json:"message"`
	Statistics types.TeacherUserStatistics `json:"statistics"`
}

type TeacherOwnerReportResponse struct {
	Success    bool                        `json:"success"`
	Message    string                      `json:"message"`
	Statistics services.TeacherOwnerReport `json:"statistics"`
}
