package types

import "time"

// Usage-frequency answers, ordered from most to least frequent. The
// distribution endpoint returns rows in exactly this order.
const (
	FrequencyVeryOften    = "Very frequently"
	FrequencyOften        = "Frequently"
	FrequencyOccasionally = "Occasionally"
	FrequencyRarely       = "Rarely"
	FrequencyNever        = "Never"
)

// FrequencyRankOrder is the fixed severity order dashboards rely on.
var FrequencyRankOrder = []string{
	FrequencyVeryOften,
	FrequencyOften,
	FrequencyOccasionally,
	FrequencyRarely,
	FrequencyNever,
}

// Future-use likelihood answers for teacher surveys.
const (
	LikelihoodVeryLikely = "Very likely"
	LikelihoodLikely     = "Likely"
	LikelihoodNotLikely  = "Not likely"
)

// StudentSurvey is a stored student questionnaire joined with minimal
// owner info on read paths. Optional answers are nil when the
// respondent skipped them.
type StudentSurvey struct {
	ID                      int       `json:"id" db:"id"`
	UserID                  int       `json:"user_id" db:"user_id"`
	HasUsedChatbot          bool      `json:"has_used_chatbot" db:"has_used_chatbot"`
	ChatbotsUsed            []string  `json:"chatbots_used" db:"chatbots_used"`
	UsageFrequency          *string   `json:"usage_frequency" db:"usage_frequency"`
	UsefulnessRating        *int      `json:"usefulness_rating" db:"usefulness_rating"`
	TasksUsedFor            []string  `json:"tasks_used_for" db:"tasks_used_for"`
	OverallExperience       *int      `json:"overall_experience" db:"overall_experience"`
	PreferredChatbot        *string   `json:"preferred_chatbot" db:"preferred_chatbot"`
	EffectivenessComparison *string   `json:"effectiveness_comparison" db:"effectiveness_comparison"`
	WillContinueUsing       *bool     `json:"will_continue_using" db:"will_continue_using"`
	WouldRecommend          *bool     `json:"would_recommend" db:"would_recommend"`
	AdditionalComments      *string   `json:"additional_comments" db:"additional_comments"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`

	// Owner info joined from the users table; empty outside read paths.
	Username string `json:"username,omitempty" db:"username"`
	Email    string `json:"email,omitempty" db:"email"`
	Role     Role   `json:"role,omitempty" db:"role"`
}

// StudentSurveyInput carries create/update payloads. On update, nil
// fields keep their stored value (COALESCE semantics); nil list fields
// default to empty lists on create.
type StudentSurveyInput struct {
	HasUsedChatbot          *bool    `json:"has_used_chatbot"`
	ChatbotsUsed            []string `json:"chatbots_used"`
	UsageFrequency          *string  `json:"usage_frequency"`
	UsefulnessRating        *int     `json:"usefulness_rating"`
	TasksUsedFor            []string `json:"tasks_used_for"`
	OverallExperience       *int     `json:"overall_experience"`
	PreferredChatbot        *string  `json:"preferred_chatbot"`
	EffectivenessComparison *string  `json:"effectiveness_comparison"`
	WillContinueUsing       *bool    `json:"will_continue_using"`
	WouldRecommend          *bool    `json:"would_recommend"`
	AdditionalComments      *string  `json:"additional_comments"`
}

// TeacherSurvey is the teacher questionnaire variant.
type TeacherSurvey struct {
	ID                  int       `json:"id" db:"id"`
	UserID              int       `json:"user_id" db:"user_id"`
	HasUsedChatbot      bool      `json:"has_used_chatbot" db:"has_used_chatbot"`
	ChatbotsUsed        []string  `json:"chatbots_used" db:"chatbots_used"`
	CoursesUsed         []string  `json:"courses_used" db:"courses_used"`
	Purposes            []string  `json:"purposes" db:"purposes"`
	Outcomes            []string  `json:"outcomes" db:"outcomes"`
	Challenges          []string  `json:"challenges" db:"challenges"`
	LikelihoodFutureUse *string   `json:"likelihood_future_use" db:"likelihood_future_use"`
	Advantages          []string  `json:"advantages" db:"advantages"`
	Concerns            []string  `json:"concerns" db:"concerns"`
	ResourcesNeeded     []string  `json:"resources_needed" db:"resources_needed"`
	WouldRecommend      *bool     `json:"would_recommend" db:"would_recommend"`
	AgeRange            *string   `json:"age_range" db:"age_range"`
	InstitutionType     *string   `json:"institution_type" db:"institution_type"`
	Country             *string   `json:"country" db:"country"`
	YearsExperience     *int      `json:"years_experience" db:"years_experience"`
	AdditionalComments  *string   `json:"additional_comments" db:"additional_comments"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`

	Username string `json:"username,omitempty" db:"username"`
	Email    string `json:"email,omitempty" db:"email"`
	Role     Role   `json:"role,omitempty" db:"role"`
}

// TeacherSurveyInput carries create/update payloads for teacher surveys.
type TeacherSurveyInput struct {
	HasUsedChatbot      *bool    `json:"has_used_chatbot"`
	ChatbotsUsed        []string `json:"chatbots_used"`
	CoursesUsed         []string `json:"courses_used"`
	Purposes            []string `json:"purposes"`
	Outcomes            []string `json:"outcomes"`
	Challenges          []string `json:"challenges"`
	LikelihoodFutureUse *string  `json:"likelihood_future_use"`
	Advantages          []string `json:"advantages"`
	Concerns            []string `json:"concerns"`
	ResourcesNeeded     []string `json:"resources_needed"`
	WouldRecommend      *bool    `json:"would_recommend"`
	AgeRange            *string  `json:"age_range"`
	InstitutionType     *string  `json:"institution_type"`
	Country             *string  `json:"country"`
	YearsExperience     *int     `json:"years_experience"`
	AdditionalComments  *string  `json:"additional_comments"`
}
