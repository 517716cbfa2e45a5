package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/edusurvey/apiserver/types"
	"github.com/lib/pq"
)

// TeacherSurveyRepository handles persistence for teacher surveys.
type TeacherSurveyRepository struct {
	db *sql.DB
}

func NewTeacherSurveyRepository(db *sql.DB) *TeacherSurveyRepository {
	return &TeacherSurveyRepository{db: db}
}

const teacherSurveyColumns = `
	t.id, t.user_id, t.has_used_chatbot, t.chatbots_used, t.courses_used,
	t.purposes, t.outcomes, t.challenges, t.likelihood_future_use,
	t.advantages, t.concerns, t.resources_needed, t.would_recommend,
	t.age_range, t.institution_type, t.country, t.years_experience,
	t.additional_comments, t.created_at`

func (r *TeacherSurveyRepository) Create(ctx context.Context, ownerID int, input types.TeacherSurveyInput) (types.TeacherSurvey, error) {
	hasUsed := false
	if input.HasUsedChatbot != nil {
		hasUsed = *input.HasUsedChatbot
	}

	const query = `
		INSERT INTO teacher_surveys (
			user_id, has_used_chatbot, chatbots_used, courses_used, purposes,
			outcomes, challenges, likelihood_future_use, advantages, concerns,
			resources_needed, would_recommend, age_range, institution_type,
			country, years_experience, additional_comments, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`

	survey := types.TeacherSurvey{
		UserID:              ownerID,
		HasUsedChatbot:      hasUsed,
		ChatbotsUsed:        emptyIfNil(input.ChatbotsUsed),
		CoursesUsed:         emptyIfNil(input.CoursesUsed),
		Purposes:            emptyIfNil(input.Purposes),
		Outcomes:            emptyIfNil(input.Outcomes),
		Challenges:          emptyIfNil(input.Challenges),
		LikelihoodFutureUse: input.LikelihoodFutureUse,
		Advantages:          emptyIfNil(input.Advantages),
		Concerns:            emptyIfNil(input.Concerns),
		ResourcesNeeded:     emptyIfNil(input.ResourcesNeeded),
		WouldRecommend:      input.WouldRecommend,
		AgeRange:            input.AgeRange,
		InstitutionType:     input.InstitutionType,
		Country:             input.Country,
		YearsExperience:     input.YearsExperience,
		AdditionalComments:  input.AdditionalComments,
		CreatedAt:           time.Now(),
	}

	if err := r.db.QueryRowContext(
		ctx,
		query,
		survey.UserID,
		survey.HasUsedChatbot,
		pq.Array(survey.ChatbotsUsed),
		pq.Array(survey.CoursesUsed),
		pq.Array(survey.Purposes),
		pq.Array(survey.Outcomes),
		pq.Array(survey.Challenges),
		survey.LikelihoodFutureUse,
		pq.Array(survey.Advantages),
		pq.Array(survey.Concerns),
		pq.Array(survey.ResourcesNeeded),
		survey.WouldRecommend,
		survey.AgeRange,
		survey.InstitutionType,
		survey.Country,
		survey.YearsExperience,
		survey.AdditionalComments,
		survey.CreatedAt,
	).Scan(&survey.ID); err != nil {
		return types.TeacherSurvey{}, err
	}
	return survey, nil
}

func (r *TeacherSurveyRepository) List(ctx context.Context) ([]types.TeacherSurvey, error) {
	const query = `
		SELECT ` + teacherSurveyColumns + `, u.username, u.email, u.role
		FROM teacher_surveys t
		JOIN users u ON t.user_id = u.id
		ORDER BY t.created_at DESC`
	return r.queryMany(ctx, query)
}

func (r *TeacherSurveyRepository) Get(ctx context.Context, id int) (types.TeacherSurvey, error) {
	const query = `
		SELECT ` + teacherSurveyColumns + `, u.username, u.email, u.role
		FROM teacher_surveys t
		JOIN users u ON t.user_id = u.id
		WHERE t.id = $1`
	surveys, err := r.queryMany(ctx, query, id)
	if err != nil {
		return types.TeacherSurvey{}, err
	}
	if len(surveys) == 0 {
		return types.TeacherSurvey{}, ErrNotFound
	}
	return surveys[0], nil
}

func (r *TeacherSurveyRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.TeacherSurvey, error) {
	const query = `
		SELECT ` + teacherSurveyColumns + `, u.username, u.email, u.role
		FROM teacher_surveys t
		JOIN users u ON t.user_id = u.id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC`
	return r.queryMany(ctx, query, ownerID)
}

func (r *TeacherSurveyRepository) Update(ctx context.Context, id int, input types.TeacherSurveyInput) (types.TeacherSurvey, error) {
	const query = `
		UPDATE teacher_surveys
		SET has_used_chatbot = COALESCE($1, has_used_chatbot),
			chatbots_used = COALESCE($2, chatbots_used),
			courses_used = COALESCE($3, courses_used),
			purposes = COALESCE($4, purposes),
			outcomes = COALESCE($5, outcomes),
			challenges = COALESCE($6, challenges),
			likelihood_future_use = COALESCE($7, likelihood_future_use),
			advantages = COALESCE($8, advantages),
			concerns = COALESCE($9, concerns),
			resources_needed = COALESCE($10, resources_needed),
			would_recommend = COALESCE($11, would_recommend),
			age_range = COALESCE($12, age_range),
			institution_type = COALESCE($13, institution_type),
			country = COALESCE($14, country),
			years_experience = COALESCE($15, years_experience),
			additional_comments = COALESCE($16, additional_comments)
		WHERE id = $17
		RETURNING id, user_id, has_used_chatbot, chatbots_used, courses_used,
			purposes, outcomes, challenges, likelihood_future_use, advantages,
			concerns, resources_needed, would_recommend, age_range,
			institution_type, country, years_experience, additional_comments,
			created_at`

	var survey types.TeacherSurvey
	err := r.db.QueryRowContext(
		ctx,
		query,
		input.HasUsedChatbot,
		pq.Array(input.ChatbotsUsed),
		pq.Array(input.CoursesUsed),
		pq.Array(input.Purposes),
		pq.Array(input.Outcomes),
		pq.Array(input.Challenges),
		input.LikelihoodFutureUse,
		pq.Array(input.Advantages),
		pq.Array(input.Concerns),
		pq.Array(input.ResourcesNeeded),
		input.WouldRecommend,
		input.AgeRange,
		input.InstitutionType,
		input.Country,
		input.YearsExperience,
		input.AdditionalComments,
		id,
	).Scan(
		&survey.ID,
		&survey.UserID,
		&survey.HasUsedChatbot,
		pq.Array(&survey.ChatbotsUsed),
		pq.Array(&survey.CoursesUsed),
		pq.Array(&survey.Purposes),
		pq.Array(&survey.Outcomes),
		pq.Array(&survey.Challenges),
		&survey.LikelihoodFutureUse,
		pq.Array(&survey.Advantages),
		pq.Array(&survey.Concerns),
		pq.Array(&survey.ResourcesNeeded),
		&survey.WouldRecommend,
		&survey.AgeRange,
		&survey.InstitutionType,
		&survey.Country,
		&survey.YearsExperience,
		&survey.AdditionalComments,
		&survey.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.TeacherSurvey{}, ErrNotFound
		}
		return types.TeacherSurvey{}, err
	}
	return survey, nil
}

func (r *TeacherSurveyRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM teacher_surveys WHERE id = $1`
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

func (r *TeacherSurveyRepository) Statistics(ctx context.Context) (types.TeacherSurveyStatistics, error) {
	const query = `
		SELECT
			COUNT(*) AS total_surveys,
			COUNT(CASE WHEN has_used_chatbot = TRUE THEN 1 END) AS teachers_using_chatbots,
			COUNT(CASE WHEN likelihood_future_use = 'Very likely' THEN 1 END) AS very_likely_continue,
			COUNT(CASE WHEN likelihood_future_use = 'Likely' THEN 1 END) AS likely_continue,
			COUNT(CASE WHEN likelihood_future_use = 'Not likely' THEN 1 END) AS unlikely_continue,
			COUNT(CASE WHEN created_at >= CURRENT_DATE - INTERVAL '7 days' THEN 1 END) AS new_this_week,
			COUNT(CASE WHEN created_at >= CURRENT_DATE - INTERVAL '30 days' THEN 1 END) AS new_this_month
		FROM teacher_surveys`
	var stats types.TeacherSurveyStatistics
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalSurveys,
		&stats.TeachersUsingChatbots,
		&stats.VeryLikelyContinue,
		&stats.LikelyContinue,
		&stats.UnlikelyContinue,
		&stats.NewThisWeek,
		&stats.NewThisMonth,
	)
	if err != nil {
		return types.TeacherSurveyStatistics{}, err
	}
	return stats, nil
}

// OwnerStatistics computes the per-owner rollup. CurrentLikelihood is
// the answer from the owner's most recent survey, null when they have
// none.
func (r *TeacherSurveyRepository) OwnerStatistics(ctx context.Context, ownerID int) (types.TeacherUserStatistics, error) {
	const query = `
		SELECT
			COUNT(*) AS total_surveys,
			COUNT(CASE WHEN has_used_chatbot = TRUE THEN 1 END) AS used_chatbot_count,
			MAX(created_at) AS last_survey_date,
			MIN(created_at) AS first_survey_date,
			(
				SELECT likelihood_future_use
				FROM teacher_surveys
				WHERE user_id = $1
				ORDER BY created_at DESC
				LIMIT 1
			) AS current_likelihood
		FROM teacher_surveys
		WHERE user_id = $1`
	var stats types.TeacherUserStatistics
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&stats.TotalSurveys,
		&stats.UsedChatbotCount,
		&stats.LastSurveyDate,
		&stats.FirstSurveyDate,
		&stats.CurrentLikelihood,
	)
	if err != nil {
		return types.TeacherUserStatistics{}, err
	}
	return stats, nil
}

// CountryDistribution returns country counts, descending.
func (r *TeacherSurveyRepository) CountryDistribution(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT country, COUNT(*) AS count
		FROM teacher_surveys
		WHERE country IS NOT NULL
		GROUP BY country
		ORDER BY count DESC`
	return r.queryDistribution(ctx, query)
}

// InstitutionDistribution returns institution-type counts, descending.
func (r *TeacherSurveyRepository) InstitutionDistribution(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT institution_type, COUNT(*) AS count
		FROM teacher_surveys
		WHERE institution_type IS NOT NULL
		GROUP BY institution_type
		ORDER BY count DESC`
	return r.queryDistribution(ctx, query)
}

// MostCommonPurposes returns purpose counts, descending.
func (r *TeacherSurveyRepository) MostCommonPurposes(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT UNNEST(purposes) AS purpose, COUNT(*) AS count
		FROM teacher_surveys
		WHERE purposes IS NOT NULL
		GROUP BY purpose
		ORDER BY count DESC`
	return r.queryDistribution(ctx, query)
}

// MostCommonChallenges returns challenge counts, descending.
func (r *TeacherSurveyRepository) MostCommonChallenges(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT UNNEST(challenges) AS challenge, COUNT(*) AS count
		FROM teacher_surveys
		WHERE challenges IS NOT NULL
		GROUP BY challenge
		ORDER BY count DESC`
	return r.queryDistribution(ctx, query)
}

// MostRequestedResources returns resource counts, descending.
func (r *TeacherSurveyRepository) MostRequestedResources(ctx context.Context) ([]types.DistributionRow, error) {
	const query = `
		SELECT UNNEST(resources_needed) AS resource, COUNT(*) AS count
		FROM teacher_surveys
		WHERE resources_needed IS NOT NULL
		GROUP BY resource
		ORDER BY count DESC`
	return r.queryDistribution(ctx, query)
}

// OwnerHasSurveys reports whether the owner submitted at least one survey.
func (r *TeacherSurveyRepository) OwnerHasSurveys(ctx context.Context, ownerID int) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM teacher_surveys WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *TeacherSurveyRepository) queryMany(ctx context.Context, query string, args ...any) ([]types.TeacherSurvey, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	surveys := make([]types.TeacherSurvey, 0)
	for rows.Next() {
		var survey types.TeacherSurvey
		if err := rows.Scan(
			&survey.ID,
			&survey.UserID,
			&survey.HasUsedChatbot,
			pq.Array(&survey.ChatbotsUsed),
			pq.Array(&survey.CoursesUsed),
			pq.Array(&survey.Purposes),
			pq.Array(&survey.Outcomes),
			pq.Array(&survey.Challenges),
			&survey.LikelihoodFutureUse,
			pq.Array(&survey.Advantages),
			pq.Array(&survey.Concerns),
			pq.Array(&survey.ResourcesNeeded),
			&survey.WouldRecommend,
			&survey.AgeRange,
			&survey.InstitutionType,
			&survey.Country,
			&survey.YearsExperience,
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

func (r *TeacherSurveyRepository) queryDistribution(ctx context.Context, query string) ([]types.DistributionRow, error) {
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
