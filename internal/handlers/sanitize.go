package handlers

import (
	"regexp"

	"github.com/edusurvey/apiserver/types"
)

// Script blocks are removed whole before the generic tag strip, so the
// script body never survives the pass.
var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	htmlTagPattern     = regexp.MustCompile(`(?s)<.*?>`)
)

func sanitizeString(value string) string {
	value = scriptBlockPattern.ReplaceAllString(value, "")
	return htmlTagPattern.ReplaceAllString(value, "")
}

func sanitizeStringPtr(value *string) {
	if value != nil {
		*value = sanitizeString(*value)
	}
}

func sanitizeStrings(values []string) {
	for i, value := range values {
		values[i] = sanitizeString(value)
	}
}

func sanitizeStudentSurveyInput(input *types.StudentSurveyInput) {
	sanitizeStrings(input.ChatbotsUsed)
	sanitizeStringPtr(input.UsageFrequency)
	sanitizeStrings(input.TasksUsedFor)
	sanitizeStringPtr(input.PreferredChatbot)
	sanitizeStringPtr(input.EffectivenessComparison)
	sanitizeStringPtr(input.AdditionalComments)
}

func sanitizeTeacherSurveyInput(input *types.TeacherSurveyInput) {
	sanitizeStrings(input.ChatbotsUsed)
	sanitizeStrings(input.CoursesUsed)
	sanitizeStrings(input.Purposes)
	sanitizeStrings(input.Outcomes)
	sanitizeStrings(input.Challenges)
	sanitizeStringPtr(input.LikelihoodFutureUse)
	sanitizeStrings(input.Advantages)
	sanitizeStrings(input.Concerns)
	sanitizeStrings(input.ResourcesNeeded)
	sanitizeStringPtr(input.AgeRange)
	sanitizeStringPtr(input.InstitutionType)
	sanitizeStringPtr(input.Country)
	sanitizeStringPtr(input.AdditionalComments)
}
