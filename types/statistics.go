package types

import "time"

// DistributionRow is one count-per-category entry of a rollup. Row
// order is part of the contract: frequency distributions follow
// FrequencyRankOrder, everything else descends by count.
type DistributionRow struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// StudentSurveyStatistics is the global rollup over student surveys.
type StudentSurveyStatistics struct {
	TotalSurveys     int     `json:"total_surveys"`
	AvgUsefulness    float64 `json:"avg_usefulness"`
	AvgExperience    float64 `json:"avg_experience"`
	UsersWithChatbot int     `json:"users_with_chatbot"`
	WillContinue     int     `json:"will_continue"`
	WouldRecommend   int     `json:"would_recommend"`
	NewThisWeek      int     `json:"new_this_week"`
	NewThisMonth     int     `json:"new_this_month"`
}

// StudentUserStatistics is the per-owner rollup for the personal
// dashboard. The unique/list fields are computed in memory from the
// owner's surveys.
type StudentUserStatistics struct {
	TotalSurveys     int        `json:"total_surveys"`
	AvgUsefulness    float64    `json:"avg_usefulness"`
	AvgExperience    float64    `json:"avg_experience"`
	UsedChatbotCount int        `json:"used_chatbot_count"`
	WillContinue     int        `json:"will_continue_count"`
	LastSurveyDate   *time.Time `json:"last_survey_date"`
	FirstSurveyDate  *time.Time `json:"first_survey_date"`
	UniqueChatbots   int        `json:"unique_chatbots"`
	UniqueTasks      int        `json:"unique_tasks"`
	ChatbotsList     []string   `json:"chatbots_list"`
	TasksList        []string   `json:"tasks_list"`
}

// TeacherSurveyStatistics is the global rollup over teacher surveys.
type TeacherSurveyStatistics struct {
	TotalSurveys          int `json:"total_surveys"`
	TeachersUsingChatbots int `json:"teachers_using_chatbots"`
	VeryLikelyContinue    int `json:"very_likely_continue"`
	LikelyContinue        int `json:"likely_continue"`
	UnlikelyContinue      int `json:"unlikely_continue"`
	NewThisWeek           int `json:"new_this_week"`
	NewThisMonth          int `json:"new_this_month"`
}

// TeacherUserStatistics is the per-owner rollup for teacher dashboards.
type TeacherUserStatistics struct {
	TotalSurveys      int        `json:"total_surveys"`
	UsedChatbotCount  int        `json:"used_chatbot_count"`
	LastSurveyDate    *time.Time `json:"last_survey_date"`
	FirstSurveyDate   *time.Time `json:"first_survey_date"`
	CurrentLikelihood *string    `json:"current_likelihood"`
	UniqueChatbots    int        `json:"unique_chatbots"`
	UniquePurposes    int        `json:"unique_purposes"`
	ChatbotsList      []string   `json:"chatbots_list"`
	PurposesList      []string   `json:"purposes_list"`
}
