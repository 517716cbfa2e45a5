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

// TeacherSurveyRepository defines persistence operations for teacher
// survey responses and their aggregates.
type TeacherSurveyRepository interface {
	Create(ctx context.Context, ownerID int, input types.TeacherSurveyInput) (types.TeacherSurvey, error)
	Get(ctx context.Context, id int) (types.TeacherSurvey, error)
	List(ctx context.Context) ([]types.TeacherSurvey, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.TeacherSurvey, error)
	Update(ctx context.Context, id int, input types.TeacherSurveyInput) (types.TeacherSurvey, error)
	Delete(ctx context.Context, id int) error
	Statistics(ctx context.Context) (types.TeacherSurveyStatistics, error)
	OwnerStatistics(ctx context.Context, ownerID int) (types.TeacherUserStatistics, error)
	CountryDistribution(ctx context.Context) ([]types.DistributionRow, error)
	InstitutionDistribution(ctx context.Context) ([]types.DistributionRow, error)
	MostCommonPurposes(ctx context.Context) ([]types.DistributionRow, error)
	MostCommonChallenges(ctx context.Context) ([]types.DistributionRow, error)
	MostRequestedResources(ctx context.Context) ([]types.DistributionRow, error)
	OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error)
}

// TeacherSurveyReport is the platform-wide aggregate view served to
// administrators.
type TeacherSurveyReport struct {
	types.TeacherSurveyStatistics
	CountryDistribution     []types.DistributionRow `json:"country_distribution"`
	InstitutionDistribution []types.DistributionRow `json:"institution_distribution"`
	MostCommonPurposes      []types.DistributionRow `json:"most_common_purposes"`
	MostCommonChallenges    []types.DistributionRow `json:"most_common_challenges"`
	MostRequestedResources  []types.DistributionRow `json:"most_requested_resources"`
}

// TeacherOwnerReport is the detailed personal dashboard for teachers.
type TeacherOwnerReport struct {
	types.TeacherUserStatistics
	ChatbotsUsage []types.DistributionRow `json:"chatbots_usage"`
	PurposesUsage []types.DistributionRow `json:"purposes_usage"`
	Surveys       []types.TeacherSurvey   `json:"surveys"`
}

// TeacherSurveyService implements teacher survey use-cases.
type TeacherSurveyService struct {
	repo   TeacherSurveyRepository
	events *mq.Events
}

func NewTeacherSurveyService(repo TeacherSurveyRepository, events *mq.Events) *TeacherSurveyService {
	return &TeacherSurveyService{repo: repo, events: events}
}

func (s *TeacherSurveyService) Create(ctx context.Context, ownerID int, input types.TeacherSurveyInput) (types.TeacherSurvey, error) {
	survey, err := s.repo.Create(ctx, ownerID, input)
	if err != nil {
		return types.TeacherSurvey{}, err
	}

	if err := s.events.SurveySubmitted(ctx, mq.SurveySubmitted{
		Variant:     mq.VariantTeacher,
		SurveyID:    survey.ID,
		OwnerID:     ownerID,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "publish survey.submitted: %v\n", err)
	}

	return survey, nil
}

func (s *TeacherSurveyService) Get(ctx context.Context, id int) (types.TeacherSurvey, error) {
	return s.repo.Get(ctx, id)
}

func (s *TeacherSurveyService) List(ctx context.Context) ([]types.TeacherSurvey, error) {
	return s.repo.List(ctx)
}

func (s *TeacherSurveyService) ListByOwner(ctx context.Context, ownerID int) ([]types.TeacherSurvey, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *TeacherSurveyService) Update(ctx context.Context, id int, input types.TeacherSurveyInput) (types.TeacherSurvey, error) {
	return s.repo.Update(ctx, id, input)
}

func (s *TeacherSurveyService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *TeacherSurveyService) OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error) {
	return s.repo.OwnerHasSurveys(ctx, ownerID)
}

func (s *TeacherSurveyService) Report(ctx context.Context) (TeacherSurveyReport, error) {
	statistics, err := s.repo.Statistics(ctx)
	if err != nil {
		return TeacherSurveyReport{}, err
	}
	countries, err := s.repo.CountryDistribution(ctx)
	if err != nil {
		return TeacherSurveyReport{}, err
	}
	institutions, err := s.repo.InstitutionDistribution(ctx)
	if err != nil {
		return TeacherSurveyReport{}, err
	}
	purposes, err := s.repo.MostCommonPurposes(ctx)
	if err != nil {
		return TeacherSurveyReport{}, err
	}
	challenges, err := s.repo.MostCommonChallenges(ctx)
	if err != nil {
		return TeacherSurveyReport{}, err
	}
	resources, err := s.repo.MostRequestedResources(ctx)
	if err != nil {
		return TeacherSurveyReport{}, err
	}

	return TeacherSurveyReport{
		TeacherSurveyStatistics: statistics,
		CountryDistribution:     countries,
		InstitutionDistribution: institutions,
		MostCommonPurposes:      purposes,
		MostCommonChallenges:    challenges,
		MostRequestedResources:  resources,
	}, nil
}

func (s *TeacherSurveyService) OwnerStatistics(ctx context.Context, ownerID int) (types.TeacherUserStatistics, error) {
	statistics, _, err := s.ownerStatistics(ctx, ownerID)
	return statistics, err
}

// OwnerReport extends OwnerStatistics with usage distributions and the
// owner's full response history.
func (s *TeacherSurveyService) OwnerReport(ctx context.Context, ownerID int) (TeacherOwnerReport, error) {
	statistics, surveys, err := s.ownerStatistics(ctx, ownerID)
	if err != nil {
		return TeacherOwnerReport{}, err
	}

	chatbots := make([][]string, 0, len(surveys))
	purposes := make([][]string, 0, len(surveys))
	for _, survey := range surveys {
		chatbots = append(chatbots, survey.ChatbotsUsed)
		purposes = append(purposes, survey.Purposes)
	}

	return TeacherOwnerReport{
		TeacherUserStatistics: statistics,
		ChatbotsUsage:         stats.CountValues(chatbots...),
		PurposesUsage:         stats.CountValues(purposes...),
		Surveys:               surveys,
	}, nil
}

func (s *TeacherSurveyService) ownerStatistics(ctx context.Context, ownerID int) (types.TeacherUserStatistics, []types.TeacherSurvey, error) {
	statistics, err := s.repo.OwnerStatistics(ctx, ownerID)
	if err != nil {
		return types.TeacherUserStatistics{}, nil, err
	}

	surveys, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return types.TeacherUserStatistics{}, nil, err
	}

	var chatbots, purposes []string
	for _, survey := range surveys {
		chatbots = append(chatbots, survey.ChatbotsUsed...)
		purposes = append(purposes, survey.Purposes...)
	}
	statistics.ChatbotsList = stats.UniqueValues(chatbots)
	statistics.PurposesList = stats.UniqueValues(purposes)
	statistics.UniqueChatbots = len(statistics.ChatbotsList)
	statistics.UniquePurposes = len(statistics.PurposesList)

	return statistics, surveys, nil
}
