package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/edusurvey/apiserver/internal/storage"
	"github.com/edusurvey/apiserver/types"
)

// ExportFilter narrows an export to a submission window and, for
// teacher data, to respondents with chatbot experience or a country.
type ExportFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	HasExperience *bool
	Country       string
}

func (f ExportFilter) matchesWindow(createdAt time.Time) bool {
	if f.StartDate != nil && createdAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && createdAt.After(f.EndDate.Add(24*time.Hour-time.Nanosecond)) {
		return false
	}
	return true
}

// StatisticsExport bundles the requested aggregate reports for a
// single download. Unrequested variants are omitted.
type StatisticsExport struct {
	Student     *StudentSurveyReport `json:"student,omitempty"`
	Teacher     *TeacherSurveyReport `json:"teacher,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// ExportService produces filtered research exports and archives a CSV
// snapshot of each one to object storage when a backend is configured.
type ExportService struct {
	students  *StudentSurveyService
	teachers  *TeacherSurveyService
	snapshots *storage.SnapshotStore
}

func NewExportService(students *StudentSurveyService, teachers *TeacherSurveyService, snapshots *storage.SnapshotStore) *ExportService {
	return &ExportService{students: students, teachers: teachers, snapshots: snapshots}
}

// StudentSurveys returns all student responses matching the filter,
// newest first. The returned key names the archived snapshot, or is
// empty when archival is disabled.
func (s *ExportService) StudentSurveys(ctx context.Context, filter ExportFilter) ([]types.StudentSurvey, string, error) {
	surveys, err := s.students.List(ctx)
	if err != nil {
		return nil, "", err
	}

	filtered := make([]types.StudentSurvey, 0, len(surveys))
	for _, survey := range surveys {
		if !filter.matchesWindow(survey.CreatedAt) {
			continue
		}
		if filter.HasExperience != nil && survey.HasUsedChatbot != *filter.HasExperience {
			continue
		}
		filtered = append(filtered, survey)
	}

	key := s.archive(ctx, "student-surveys", studentSurveyCSV(filtered))
	return filtered, key, nil
}

// TeacherSurveys returns all teacher responses matching the filter.
func (s *ExportService) TeacherSurveys(ctx context.Context, filter ExportFilter) ([]types.TeacherSurvey, string, error) {
	surveys, err := s.teachers.List(ctx)
	if err != nil {
		return nil, "", err
	}

	filtered := make([]types.TeacherSurvey, 0, len(surveys))
	for _, survey := range surveys {
		if !filter.matchesWindow(survey.CreatedAt) {
			continue
		}
		if filter.HasExperience != nil && survey.HasUsedChatbot != *filter.HasExperience {
			continue
		}
		if filter.Country != "" && (survey.Country == nil || !strings.EqualFold(*survey.Country, filter.Country)) {
			continue
		}
		filtered = append(filtered, survey)
	}

	key := s.archive(ctx, "teacher-surveys", teacherSurveyCSV(filtered))
	return filtered, key, nil
}

// Statistics bundles the global reports into one export. Variant
// selects "student", "teacher", or both when empty.
func (s *ExportService) Statistics(ctx context.Context, variant string) (StatisticsExport, error) {
	export := StatisticsExport{GeneratedAt: time.Now().UTC()}

	if variant == "" || variant == "student" {
		student, err := s.students.Report(ctx)
		if err != nil {
			return StatisticsExport{}, err
		}
		export.Student = &student
	}
	if variant == "" || variant == "teacher" {
		teacher, err := s.teachers.Report(ctx)
		if err != nil {
			return StatisticsExport{}, err
		}
		export.Teacher = &teacher
	}

	return export, nil
}

// Snapshot opens a previously archived CSV snapshot by its object key.
func (s *ExportService) Snapshot(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.snapshots.Open(ctx, key)
}

// archive stores a CSV snapshot best-effort; archival failures never
// fail the export itself.
func (s *ExportService) archive(ctx context.Context, kind string, data []byte) string {
	key, err := s.snapshots.Save(ctx, kind, data, "text/csv")
	if err != nil {
		fmt.Fprintf(os.Stderr, "archive %s snapshot: %v\n", kind, err)
		return ""
	}
	return key
}

func studentSurveyCSV(surveys []types.StudentSurvey) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{
		"id", "username", "email", "has_used_chatbot", "chatbots_used",
		"usage_frequency", "usefulness_rating", "tasks_used_for",
		"overall_experience", "preferred_chatbot", "effectiveness_comparison",
		"will_continue_using", "would_recommend", "additional_comments",
		"created_at",
	})
	for _, s := range surveys {
		w.Write([]string{
			strconv.Itoa(s.ID),
			s.Username,
			s.Email,
			strconv.FormatBool(s.HasUsedChatbot),
			strings.Join(s.ChatbotsUsed, "; "),
			stringValue(s.UsageFrequency),
			intValue(s.UsefulnessRating),
			strings.Join(s.TasksUsedFor, "; "),
			intValue(s.OverallExperience),
			stringValue(s.PreferredChatbot),
			stringValue(s.EffectivenessComparison),
			boolValue(s.WillContinueUsing),
			boolValue(s.WouldRecommend),
			stringValue(s.AdditionalComments),
			s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func teacherSurveyCSV(surveys []types.TeacherSurvey) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{
		"id", "username", "email", "has_used_chatbot", "chatbots_used",
		"courses_used", "purposes", "outcomes", "challenges",
		"likelihood_future_use", "advantages", "concerns", "resources_needed",
		"would_recommend", "age_range", "institution_type", "country",
		"years_experience", "additional_comments", "created_at",
	})
	for _, s := range surveys {
		w.Write([]string{
			strconv.Itoa(s.ID),
			s.Username,
			s.Email,
			strconv.FormatBool(s.HasUsedChatbot),
			strings.Join(s.ChatbotsUsed, "; "),
			strings.Join(s.CoursesUsed, "; "),
			strings.Join(s.Purposes, "; "),
			strings.Join(s.Outcomes, "; "),
			strings.Join(s.Challenges, "; "),
			stringValue(s.LikelihoodFutureUse),
			strings.Join(s.Advantages, "; "),
			strings.Join(s.Concerns, "; "),
			strings.Join(s.ResourcesNeeded, "; "),
			boolValue(s.WouldRecommend),
			stringValue(s.AgeRange),
			stringValue(s.InstitutionType),
			stringValue(s.Country),
			intValue(s.YearsExperience),
			stringValue(s.AdditionalComments),
			s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intValue(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolValue(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
