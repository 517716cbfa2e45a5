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

// StudentSurveyHandler provides the student questionnaire endpoints.
// Single-survey routes load the survey first, so a missing id is a 404
// for everyone and only existing surveys produce a 403.
type StudentSurveyHandler struct {
	surveyService *services.StudentSurveyService
}

func NewStudentSurveyHandler(surveyService *services.StudentSurveyService) *StudentSurveyHandler {
	return &StudentSurveyHandler{surveyService: surveyService}
}

// StudentSurveyRouter registers student survey routes; the router is
// expected to already sit behind Authenticate.
func StudentSurveyRouter(r chi.Router, surveyService *services.StudentSurveyService) {
	handler := NewStudentSurveyHandler(surveyService)

	r.With(RequireRole(types.RoleStudent)).Post("/", handler.Create)
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

func (h *StudentSurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var input types.StudentSurveyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	sanitizeStudentSurveyInput(&input)
	if errs := validateStudentSurvey(input); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	survey, err := h.surveyService.Create(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create survey")
		return
	}

	writeJSON(w, http.StatusCreated, StudentSurveyResponse{
		Success: true,
		Message: "survey submitted successfully",
		Survey:  survey,
	})
}

func (h *StudentSurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.surveyService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list surveys")
		return
	}

	writeJSON(w, http.StatusOK, StudentSurveyListResponse{
		Success: true,
		Message: "surveys retrieved successfully",
		Count:   len(surveys),
		Surveys: surveys,
	})
}

func (h *StudentSurveyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, StudentSurveyListResponse{
		Success: true,
		Message: "surveys retrieved successfully",
		Count:   len(surveys),
		Surveys: surveys,
	})
}

func (h *StudentSurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadOwned(w, r, "view")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, StudentSurveyResponse{
		Success: true,
		Message: "survey retrieved successfully",
		Survey:  survey,
	})
}

func (h *StudentSurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.loadOwned(w, r, "edit")
	if !ok {
		return
	}

	var input types.StudentSurveyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	sanitizeStudentSurveyInput(&input)
	if errs := validateStudentSurvey(input); len(errs) > 0 {
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

	writeJSON(w, http.StatusOK, StudentSurveyResponse{
		Success: true,
		Message: "survey updated successfully",
		Survey:  updated,
	})
}

func (h *StudentSurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
func (h *StudentSurveyHandler) Statistics(w http.ResponseWriter, r *http.Request) {
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
		writeJSON(w, http.StatusOK, StudentOwnerStatisticsResponse{
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

	writeJSON(w, http.StatusOK, StudentReportResponse{
		Success:    true,
		Message:    "statistics retrieved successfully",
		Statistics: report,
	})
}

// MyStatistics serves the detailed personal dashboard regardless of
// role.
func (h *StudentSurveyHandler) MyStatistics(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, StudentOwnerReportResponse{
		Success:    true,
		Message:    "your personal statistics retrieved successfully",
		Statistics: report,
	})
}

// loadOwned resolves the survey in the path and enforces the ownership
// rule. It writes the response on failure and reports ok=false.
func (h *StudentSurveyHandler) loadOwned(w http.ResponseWriter, r *http.Request, action string) (types.StudentSurvey, bool) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return types.StudentSurvey{}, false
	}

	id, err := idParam(r, "surveyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid survey id")
		return types.StudentSurvey{}, false
	}

	survey, err := h.surveyService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "survey not found")
			return types.StudentSurvey{}, false
		}
		writeError(w, http.StatusInternalServerError, "failed to load survey")
		return types.StudentSurvey{}, false
	}

	if survey.UserID != user.ID && user.Role != types.RoleAdmin {
		writeError(w, http.StatusForbidden, "you do not have permission to "+action+" this survey")
		return types.StudentSurvey{}, false
	}

	return survey, true
}

type StudentSurveyResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Survey  types.StudentSurvey `json:"survey"`
}

type StudentSurveyListResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Count   int                   `json:"count"`
	Surveys []types.StudentSurvey `json:"surveys"`
}

type StudentReportResponse struct {
	Success    bool                         `json:"success"`
	Message    string                       `json:"message"`
	Statistics services.StudentSurveyReport `json:"statistics"`
}

type StudentOwnerStatisticsResponse struct {
	Success    bool                        `json:"success"`
	Message    string                      `json:"message"`
	Statistics types.StudentUserStatistics `json:"statistics"`
}

type StudentOwnerReportResponse struct {
	Success    bool                        `json:"success"`
	Message    string                      `json:"message"`
	Statistics services.StudentOwnerReport `json:"statistics"`
}
