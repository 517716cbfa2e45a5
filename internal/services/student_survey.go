package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/edusurvey/apiserver/internal/mq"
	"github.com/edusurvey/apiserver/internal/stats"
	"github.com/edusurvey/apiserver/types"
)

// StudentSurveyRepository defines persistence operations for student
// survey responses and their aggregates.
type StudentSurveyRepository interface {
	Create(ctx context.Context, ownerID int, input types.StudentSurveyInput) (types.StudentSurvey, error)
	Get(ctx context.Context, id int) (types.StudentSurvey, error)
	List(ctx context.Context) ([]types.StudentSurvey, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.StudentSurvey, error)
	Update(ctx context.Context, id int, input types.StudentSurveyInput) (types.StudentSurvey, error)
	Delete(ctx context.Context, id int) error
	Statistics(ctx context.Context) (types.StudentSurveyStatistics, error)
	OwnerStatistics(ctx context.Context, ownerID int) (types.StudentUserStatistics, error)
	MostUsedChatbots(ctx context.Context) ([]types.DistributionRow, error)
	MostCommonTasks(ctx context.Context) ([]types.DistributionRow, error)
	FrequencyDistribution(ctx context.Context) ([]types.DistributionRow, error)
	OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error)
}

// StudentSurveyReport is the platform-wide aggregate view served to
// administrators.
type StudentSurveyReport struct {
	types.StudentSurveyStatistics
	MostUsedChatbots      []types.DistributionRow `json:"most_used_chatbots"`
	MostCommonTasks       []types.DistributionRow `json:"most_common_tasks"`
	FrequencyDistribution []types.DistributionRow `json:"frequency_distribution"`
}

// StudentOwnerReport is the detailed personal dashboard: the owner's
// rollup plus per-answer usage distributions and the raw responses.
type StudentOwnerReport struct {
	types.StudentUserStatistics
	ChatbotsUsage []types.DistributionRow `json:"chatbots_usage"`
	TasksUsage    []types.DistributionRow `json:"tasks_usage"`
	Surveys       []types.StudentSurvey   `json:"surveys"`
}

// StudentSurveyService implements student survey use-cases on top of
// the repository, announcing new submissions on the message queue.
type StudentSurveyService struct {
	repo   StudentSurveyRepository
	events *mq.Events
}

func NewStudentSurveyService(repo StudentSurveyRepository, events *mq.Events) *StudentSurveyService {
	return &StudentSurveyService{repo: repo, events: events}
}

// Create stores a new response owned by ownerID. Event publication is
// best effort: a broker outage must not fail the submission.
func (s *StudentSurveyService) Create(ctx context.Context, ownerID int, input types.StudentSurveyInput) (types.StudentSurvey, error) {
	survey, err := s.repo.Create(ctx, ownerID, input)
	if err != nil {
		return types.StudentSurvey{}, err
	}

	if err := s.events.SurveySubmitted(ctx, mq.SurveySubmitted{
		Variant:     mq.VariantStudent,
		SurveyID:    survey.ID,
		OwnerID:     ownerID,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "publish survey.submitted: %v\n", err)
	}

	return survey, nil
}

func (s *StudentSurveyService) Get(ctx context.Context, id int) (types.StudentSurvey, error) {
	return s.repo.Get(ctx, id)
}

func (s *StudentSurveyService) List(ctx context.Context) ([]types.StudentSurvey, error) {
	return s.repo.List(ctx)
}

func (s *StudentSurveyService) ListByOwner(ctx context.Context, ownerID int) ([]types.StudentSurvey, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *StudentSurveyService) Update(ctx context.Context, id int, input types.StudentSurveyInput) (types.StudentSurvey, error) {
	return s.repo.Update(ctx, id, input)
}

func (s *StudentSurveyService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *StudentSurveyService) OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error) {
	return s.repo.OwnerHasSurveys(ctx, ownerID)
}

// Report assembles the global statistics together with the top-N
// distributions.
func (s *StudentSurveyService) Report(ctx context.Context) (StudentSurveyReport, error) {
	statistics, err := s.repo.Statistics(ctx)
	if err != nil {
		return StudentSurveyReport{}, err
	}
	chatbots, err := s.repo.MostUsedChatbots(ctx)
	if err != nil {
		return StudentSurveyReport{}, err
	}
	tasks, err := s.repo.MostCommonTasks(ctx)
	if err != nil {
		return StudentSurveyReport{}, err
	}
	frequency, err := s.repo.FrequencyDistribution(ctx)
	if err != nil {
		return StudentSurveyReport{}, err
	}

	return StudentSurveyReport{
		StudentSurveyStatistics: statistics,
		MostUsedChatbots:        chatbots,
		MostCommonTasks:         tasks,
		FrequencyDistribution:   stats.RankOrdered(frequency, types.FrequencyRankOrder),
	}, nil
}

// OwnerStatistics returns one owner's aggregates, with the distinct
// chatbot and task lists computed over their own responses.
func (s *StudentSurveyService) OwnerStatistics(ctx context.Context, ownerID int) (types.StudentUserStatistics, error) {
	statistics, _, err := s.ownerStatistics(ctx, ownerID)
	return statistics, err
}

// OwnerReport extends OwnerStatistics with usage distributions and the
// owner's full response history.
func (s *StudentSurveyService) OwnerReport(ctx context.Context, ownerID int) (StudentOwnerReport, error) {
	statistics, surveys, err := s.ownerStatistics(ctx, ownerID)
	if err != nil {
		return StudentOwnerReport{}, err
	}

	chatbots := make([][]string, 0, len(surveys))
	tasks := make([][]string, 0, len(surveys))
	for _, survey := range surveys {
		chatbots = append(chatbots, survey.ChatbotsUsed)
		tasks = append(tasks, survey.TasksUsedFor)
	}

	return StudentOwnerReport{
		StudentUserStatistics: statistics,
		ChatbotsUsage:         stats.CountValues(chatbots...),
		TasksUsage:            stats.CountValues(tasks...),
		Surveys:               surveys,
	}, nil
}

func (s *StudentSurveyService) ownerStatistics(ctx context.Context, ownerID int) (types.StudentUserStatistics, []types.StudentSurvey, error) {
	statistics, err := s.repo.OwnerStatistics(ctx, ownerID)
	if err != nil {
		return types.StudentUserStatistics{}, nil, err
	}

	surveys, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return types.StudentUserStatistics{}, nil, err
	}

	var chatbots, tasks []string
	for _, survey := range surveys {
		chatbots = append(chatbots, survey.ChatbotsUsed...)
		tasks = append(tasks, survey.TasksUsedFor...)
	}
	statistics.ChatbotsList = stats.UniqueValues(chatbots)
	statistics.TasksList = stats.UniqueValues(tasks)
	statistics.UniqueChatbots = len(statistics.ChatbotsList)
	statistics.UniqueTasks = len(statistics.TasksList)

	return statistics, surveys, nil
}
