package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/edusurvey/apiserver/internal/services"
	"github.com/edusurvey/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const exportDateLayout = "2006-01-02"

// ExportHandler provides administrator-only research exports.
type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportRouter registers export routes; the router is expected to
// already sit behind Authenticate.
func ExportRouter(r chi.Router, exportService *services.ExportService) {
	handler := NewExportHandler(exportService)

	r.Use(RequireRole(types.RoleAdmin))
	r.Get("/student-surveys", handler.StudentSurveys)
	r.Get("/teacher-surveys", handler.TeacherSurveys)
	r.Get("/statistics", handler.Statistics)
	r.Get("/snapshots/*", handler.Snapshot)
}

func (h *ExportHandler) StudentSurveys(w http.ResponseWriter, r *http.Request) {
	filter, err := exportFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	surveys, snapshot, err := h.exportService.StudentSurveys(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export student surveys")
		return
	}

	writeJSON(w, http.StatusOK, SurveyExportResponse[types.StudentSurvey]{
		Success:  true,
		Count:    len(surveys),
		Data:     surveys,
		Snapshot: snapshot,
	})
}

func (h *ExportHandler) TeacherSurveys(w http.ResponseWriter, r *http.Request) {
	filter, err := exportFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	surveys, snapshot, err := h.exportService.TeacherSurveys(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export teacher surveys")
		return
	}

	writeJSON(w, http.StatusOK, SurveyExportResponse[types.TeacherSurvey]{
		Success:  true,
		Count:    len(surveys),
		Data:     surveys,
		Snapshot: snapshot,
	})
}

func (h *ExportHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("type")
	if variant != "" && variant != "student" && variant != "teacher" {
		writeError(w, http.StatusBadRequest, "type must be student or teacher")
		return
	}

	statistics, err := h.exportService.Statistics(r.Context(), variant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export statistics")
		return
	}

	writeJSON(w, http.StatusOK, StatisticsExportResponse{
		Success:    true,
		Statistics: statistics,
	})
}

// Snapshot streams an archived CSV snapshot back to the caller. Keys
// contain slashes, so the route uses a wildcard.
func (h *ExportHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		writeError(w, http.StatusBadRequest, "snapshot key is required")
		return
	}

	body, err := h.exportService.Snapshot(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	io.Copy(w, body)
}

func exportFilterFromQuery(r *http.Request) (services.ExportFilter, error) {
	var filter services.ExportFilter
	query := r.URL.Query()

	if raw := query.Get("start_date"); raw != "" {
		parsed, err := time.Parse(exportDateLayout, raw)
		if err != nil {
			return services.ExportFilter{}, fmt.Errorf("start_date must use the %s format", exportDateLayout)
		}
		filter.StartDate = &parsed
	}
	if raw := query.Get("end_date"); raw != "" {
		parsed, err := time.Parse(exportDateLayout, raw)
		if err != nil {
			return services.ExportFilter{}, fmt.Errorf("end_date must use the %s format", exportDateLayout)
		}
		filter.EndDate = &parsed
	}
	if raw := query.Get("has_experience"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return services.ExportFilter{}, fmt.Errorf("has_experience must be true or false")
		}
		filter.HasExperience = &parsed
	}
	filter.Country = query.Get("country")

	return filter, nil
}

type SurveyExportResponse[T any] struct {
	Success  bool   `json:"success"`
	Count    int    `json:"count"`
	Data     []T    `json:"data"`
	Snapshot string `json:"snapshot,omitempty"`
}

type StatisticsExportResponse struct {
	Success    bool                      `json:"success"`
	Statistics services.StatisticsExport `json:"statistics"`
}
