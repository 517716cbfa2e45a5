package handlers

import (
	"regexp"

	"github.com/edusurvey/apiserver/types"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func validateUsername(username string) []string {
	if username == "" {
		return []string{"username is required"}
	}
	var errs []string
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		errs = append(errs, "username must be between 3 and 50 characters")
	} else if !usernamePattern.MatchString(username) {
		errs = append(errs, "username may only contain letters, numbers, and underscores")
	}
	return errs
}

func validateEmail(email string) []string {
	if email == "" {
		return []string{"email is required"}
	}
	if !emailPattern.MatchString(email) {
		return []string{"email is not valid"}
	}
	return nil
}

func validateRegistration(username, email, password string, role types.Role) []string {
	errs := validateUsername(username)
	errs = append(errs, validateEmail(email)...)

	if password == "" {
		errs = append(errs, "password is required")
	} else if len(password) < minPasswordLen {
		errs = append(errs, "password must be at least 6 characters")
	}

	if role != "" && !role.Valid() {
		errs = append(errs, "role must be one of: student, teacher, admin")
	}
	return errs
}

func validateLogin(email, password string, role types.Role) []string {
	errs := validateEmail(email)
	if password == "" {
		errs = append(errs, "password is required")
	}
	if role == "" {
		errs = append(errs, "role is required to log in")
	}
	return errs
}

func validateUserUpdate(update types.UserUpdate) []string {
	if update.Username == nil && update.Email == nil && update.Role == nil {
		return []string{"at least one field must be provided"}
	}

	var errs []string
	if update.Username != nil {
		errs = append(errs, validateUsername(*update.Username)...)
	}
	if update.Email != nil {
		errs = append(errs, validateEmail(*update.Email)...)
	}
	if update.Role != nil && !update.Role.Valid() {
		errs = append(errs, "role must be one of: student, teacher, admin")
	}
	return errs
}

// validateStudentSurvey enforces the conditional shape of the student
// questionnaire: usage detail is mandatory only for respondents who
// report chatbot use.
func validateStudentSurvey(input types.StudentSurveyInput) []string {
	var errs []string

	if input.HasUsedChatbot == nil {
		errs = append(errs, "has_used_chatbot is required")
	}

	if input.HasUsedChatbot != nil && *input.HasUsedChatbot {
		if len(input.ChatbotsUsed) == 0 {
			errs = append(errs, "at least one chatbot used must be selected")
		}
		if len(input.TasksUsedFor) == 0 {
			errs = append(errs, "at least one task must be selected")
		}
		if input.PreferredChatbot == nil || *input.PreferredChatbot == "" {
			errs = append(errs, "a preferred chatbot must be selected")
		}
	}

	if input.UsefulnessRating != nil && (*input.UsefulnessRating < 1 || *input.UsefulnessRating > 5) {
		errs = append(errs, "usefulness rating must be between 1 and 5")
	}
	if input.OverallExperience != nil && (*input.OverallExperience < 1 || *input.OverallExperience > 5) {
		errs = append(errs, "overall experience rating must be between 1 and 5")
	}
	return errs
}

// validateTeacherSurvey mirrors validateStudentSurvey for the teacher
// questionnaire; country is always required.
func validateTeacherSurvey(input types.TeacherSurveyInput) []string {
	var errs []string

	if input.HasUsedChatbot == nil {
		errs = append(errs, "has_used_chatbot is required")
	}

	if input.HasUsedChatbot != nil && *input.HasUsedChatbot {
		if len(input.ChatbotsUsed) == 0 {
			errs = append(errs, "at least one chatbot used must be selected")
		}
		if len(input.CoursesUsed) == 0 {
			errs = append(errs, "at least one course must be selected")
		}
		if len(input.Purposes) == 0 {
			errs = append(errs, "at least one purpose must be selected")
		}
	}

	if input.Country == nil || *input.Country == "" {
		errs = append(errs, "country is required")
	}
	return errs
}
