package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/edusurvey/apiserver/types"
	"github.com/lib/pq"
)

// StudentSurveyRepository handles persistence for student surveys.
type StudentSurveyRepository struct {
	db *sql.DB
}

func NewStudentSurveyRepository(db *sql.DB) *StudentSurveyRepository {
	return &StudentSurveyRepository{db: db}
}

const studentSurveyColumns = `
	s.id, s.user_id, s.has_used_chatbot, s.chatbots_used, s.usage_frequency,
	s.usefulness_rating, s.tasks_used_for, s.overall_experience,
	s.preferred_chatbot, s.effectiveness_comparison, s.will_continue_using,
	s.would_recommend, s.additional_comments, s.created_at`

// Create inserts a new survey owned by ownerID. Multi-value fields left
// nil default to empty lists.
func (r *StudentSurveyRepository) Create(ctx context.Context, ownerID int, input types.StudentSurveyInput) (types.StudentSurvey, error) {
	hasUsed := false
	if input.HasUsedChatbot != nil {
		hasUsed = *input.HasUsedChatbot
	}

	const query = `
		INSERT INTO student_surveys (
			user_id, has_used_chatbot, chatbots_used, usage_frequency,
			usefulness_rating, tasks_used_for, overall_experience,
			preferred_chatbot, effectiveness_comparison, will_continue_using,
			would_recommend, additional_comments, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	survey := types.StudentSurvey{
		UserID:                  ownerID,
		HasUsedChatbot:          hasUsed,
		ChatbotsUsed:            emptyIfNil(input.ChatbotsUsed),
		UsageFrequency:          input.UsageFrequency,
		UsefulnessRating:        input.UsefulnessRating,
		TasksUsedFor:            emptyIfNil(input.TasksUsedFor),
		OverallExperience:       input.OverallExperience,
		PreferredChatbot:        input.PreferredChatbot,
		EffectivenessComparison: input.EffectivenessComparison,
		WillContinueUsing:       input.WillContinueUsing,
		WouldRecommend:          input.WouldRecommend,
		AdditionalComments:      input.AdditionalComments,
		CreatedAt:               time.Now(),
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		survey.UserID,
		survey.HasUsedChatbot,
		pq.Array(survey.ChatbotsUsed),
		survey.UsageFrequency,
		survey.UsefulnessRating,
		pq.Array(survey.TasksUsedFor),
		survey.OverallExperience,
		survey.PreferredChatbot,
		survey.EffectivenessComparison,
		survey.WillContinueUsing,
		survey.WouldRecommend,
		survey.AdditionalComments,
		survey.CreatedAt,
	).Scan(&survey.ID); err != nil {
		return types.StudentSurvey{}, err
	}
	return survey, nil
}

// List returns every survey joined with minimal owner info, newest first.
func (r *StudentSurveyRepository) List(ctx context.Context) ([]types.StudentSurvey, error) {
	const query = `
		SELECT ` + studentSurveyColumns + `, u.username, u.email, u.role
		FROM student_surveys s
		JOIN users u ON s.user_id = u.id
		ORDER BY s.created_at DESC`
	return r.queryMany(ctx, query)
}

func (r *StudentSurveyRepository) Get(ctx context.Context, id int) (types.StudentSurvey, error) {
	const query = `
		SELECT ` + studentSurveyColumns + `, u.username, u.email, u.role
		FROM student_surveys s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1`
	surveys, err := r.queryMany(ctx, query, id)
	if err != nil {
		return types.StudentSurvey{}, err
	}
	if len(surveys) == 0 {
		return types.StudentSurvey{}, ErrNotFound
	}
	return surveys[0], nil
}

func (r *StudentSurveyRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.StudentSurvey, error) {
	const query = `
		SELECT ` + studentSurveyColumns + `, u.username, u.email, u.role
		FROM student_surveys s
		JOIN users u ON s.user_id = u.id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`
	return r.queryMany(ctx, query, ownerID)
}

// Update applies COALESCE semantics: every nil field keeps its stored
// value. Last write wins; there is no optimistic-concurrency token.
func (r *StudentSurveyRepository) Update(ctx context.Context, id int, input types.StudentSurveyInput) (types.StudentSurvey, error) {
	const query = `
		UPDATE student_surveys
		SET has_used_chatbot = COALESCE($1, has_used_chatbot),
			chatbots_used = COALESCE($2, chatbots_used),
			usage_frequency = COALESCE($3, usage_frequency),
			usefulness_rating = COALESCE($4, usefulness_rating),
			tasks_used_for = COALESCE($5, tasks_used_for),
			overall_experience = COALESCE($6, overall_experience),
			preferred_chatbot = COALESCE($7, preferred_chatbot),
			effectiveness_comparison = COALESCE($8, effectiveness_comparison),
			will_continue_using = COALESCE($9, will_continue_using),
			would_recommend = COALESCE($10, would_recommend),
			additional_comments = COALESCE($11, additional_comments)
		WHERE id = $12
		RETURNING ` + studentSurveyReturning

	var survey types.StudentSurvey
	err := r.db.QueryRowContext(
		ctx,
		query,
		input.HasUsedChatbot,
		pq.Array(input.ChatbotsUsed),
		input.UsageFrequency,
		input.UsefulnessRating,
		pq.Array(input.TasksUsedFor),
		input.OverallExperience,
		input.PreferredChatbot,
		input.EffectivenessComparison,
		input.WillContinueUsing,
		input.WouldRecommend,
		input.AdditionalComments,
		id,
	).Scan(
		&survey.ID,
		&survey.UserID,
		&survey.HasUsedChatbot,
		pq.Array(&survey.ChatbotsUsed),
		&survey.UsageFrequency,
		&survey.UsefulnessRating,
		pq.Array(&survey.TasksUsedFor),
		&survey.OverallExperience,
		&survey.PreferredChatbot,
		&survey.EffectivenessComparison,
		&survey.WillContinueUsing,
		&survey.WouldRecommend,
		&survey.AdditionalComments,
		&survey.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.StudentSurvey{}, ErrNotFound
		}
		return types.StudentSurvey{}, err
	}
	return survey, nil
}

func (r *StudentSurveyRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM student_surveys WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Statistics computes the global rollup. An empty table yields zeros,
// not an error.
func (r *StudentSurveyRepository) Statistics(ctx context.Context) (types.StudentSurveyStatistics, error) {
	const query = `
		SELECT
			COUNT(*) AS total_surveys,
			COALESCE(ROUND(AVG(usefulness_rating)::numeric, 2), 0) AS avg_usefulness,
			COALESCE(ROUND(AVG(overall_experience)::numeric, 2), 0) AS avg_experience,
			COUNT(CASE WHEN has_used_chatbot = TRUE THEN 1 END) AS users_with_chatbot,
			COUNT(CASE WHEN will_continue_using = TRUE THEN 1 END) AS will_continue,
			COUNT(CASE WHEN would_recommend = TRUE THEN 1 END) AS would_recommend,
			COUNT(CASE WHEN created_at >= CURRENT_DATE - INTERVAL '7 days' THEN 1 END) AS new_this_week,
			COUNT(CASE WHEN created_at >= CURRENT_DATE - INTERVAL '30 days' THEN 1 END) AS new_this_month
		FROM student_surveys`
	var stats types.StudentSurveyStatistics
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalSurveys,
		&stats.AvgUsefulness,
		&stats.AvgExperience,
		&stats.UsersWithChatbot,
		&stats.WillContinue,
		&stats.WouldRecommend,
		&stats.NewThisWeek,
		&stats.NewThisMonth,
	)
	if err != nil {
		return types.StudentSurveyStatistics{}, err
	}
	return stats, nil
}

// OwnerStatistics computes the per-owner rollup used by personal
// dashboards. The unique-value fields are filled in by the service.
func (r *StudentSurveyRepository) OwnerStatistics(ctx context.Context, ownerID int) (types.StudentUserStatistics, error) {
	const query = `
		SELECT
			COUNT(*) AS total_surveys,
			COALESCE(ROUND(AVG(usefulness_rating)::numeric, 2), 0) AS avg_usefulness,
			COALESCE(ROUND(AVG(overall_experience)::numeric, 2), 0) AS avg_experience,
			COUNT(CASE WHEN has_used_chatbot = TRUE THEN 1 END) AS used_chatbot_count,
			COUNT(CASE WHEN will_continue_using = TRUE THEN 1 END) AS will_continue_count,
			MAX(created_at) AS last_survey_date,
			MIN(created_at) AS first_survey_date
		FROM student_surveys
		WHERE user_id = $1`
	var stats types.StudentUserStatistics
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&stats.TotalSurveys,
		&stats.AvgUsefulness,
		&stats.AvgExperience,
		&stats.UsedChatbotCount,
		&stats.WillContinue,
		&stats.LastSurveyDate,
		&stats.FirstSurveyDate,
	)
	if err != nil {
		return types.StudentUserStatistics{}, err
	}
	return stats, nil
}

// MostUsedChatbots returns the top chatbot counts, descending.
func (r *StudentSurveyRepository) MostUsedChatbots(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT UNNEST(chatbots_used) AS chatbot, COUNT(*) AS count
		FROM student_surveys
		WHERE chatbots_used IS NOT NULL
		GROUP BY chatbot
		ORDER BY count DESC
		LIMIT 10`
	return r.queryDistribution(ctx, query)
}

// MostCommonTasks returns task counts, descending.
func (r *StudentSurveyRepository) MostCommonTasks(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT UNNEST(tasks_used_for) AS task, COUNT(*) AS count
		FROM student_surveys
		WHERE tasks_used_for IS NOT NULL
		GROUP BY task
		ORDER BY count DESC`
	return r.queryDistribution(ctx, query)
}

// FrequencyDistribution returns usage-frequency counts in fixed
// severity order, not alphabetical and not by count. Dashboards rely on
// row order matching the rank.
func (r *StudentSurveyRepository) FrequencyDistribution(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT usage_frequency, COUNT(*) AS count
		FROM student_surveys
		WHERE usage_frequency IS NOT NULL
		GROUP BY usage_frequency
		ORDER BY
			CASE usage_frequency
				WHEN 'Very frequently' THEN 1
				WHEN 'Frequently' THEN 2
				WHEN 'Occasionally' THEN 3
				WHEN 'Rarely' THEN 4
				WHEN 'Never' THEN 5
			END`
	return r.queryDistribution(ctx, query)
}

// OwnerHasSurveys reports whether the owner submitted at least one survey.
func (r *StudentSurveyRepository) OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM student_surveys WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *StudentSurveyRepository) queryMany(ctx context.Context, query string, args ...any) ([]types.StudentSurvey, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surveys := make([]types.StudentSurvey, 0)
	for rows.Next() {
		var survey types.StudentSurvey
		if err := rows.Scan(
			&survey.ID,
			&survey.UserID,
			&survey.HasUsedChatbot,
			pq.Array(&survey.ChatbotsUsed),
			&survey.UsageFrequency,
			&survey.UsefulnessRating,
			pq.Array(&survey.TasksUsedFor),
			&survey.OverallExperience,
			&survey.PreferredChatbot,
			&survey.EffectivenessComparison,
			&survey.WillContinueUsing,
			&survey.WouldRecommend,
			&survey.AdditionalComments,
			&survey.CreatedAt,
			&survey.Username,
			&survey.Email,
			&survey.Role,
		); err != nil {
			return nil, err
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

func (r *StudentSurveyRepository) queryDistribution(ctx context.Context, query string) ([]types.DistributionRow, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make([]types.DistributionRow, 0)
	for rows.Next() {
		var row types.DistributionRow
		if err := rows.Scan(&row.Value, &row.Count); err != nil {
			return nil, err
		}
		dist = append(dist, row)
	}
	return dist, rows.Err()
}

const studentSurveyReturning = `
	id, user_id, has_used_chatbot, chatbots_used, usage_frequency,
	usefulness_rating, tasks_used_for, overall_experience,
	preferred_chatbot, effectiveness_comparison, will_continue_using,
	would_recommend, additional_comments, created_at`

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
