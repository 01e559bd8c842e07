package domain

import "strings"

// Proficiency levels a learner can self-assess at during onboarding.
// Matching is case-insensitive; the canonical (lowercase) form is stored.
const (
	LevelBeginner     = "beginner"
	LevelElementary   = "elementary"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

var levels = map[string]struct{}{
	LevelBeginner:     {},
	LevelElementary:   {},
	LevelIntermediate: {},
	LevelAdvanced:     {},
}

// NormalizeLevel returns the canonical lowercase level name and whether the
// input matches the fixed level set.
func NormalizeLevel(s string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(s))
	_, ok := levels[l]
	return l, ok
}

// OnboardingRequest is the payload captured at the end of the onboarding flow.
type OnboardingRequest struct {
	SelectedLanguage string `json:"selected_language" validate:"required"`
	SelectedLevel    string `json:"selected_level" validate:"required"`
	SelectedGoal     string `json:"selected_goal" validate:"required"`
	SelectedTime     string `json:"selected_time" validate:"required"`
	DailyMinutes     int    `json:"daily_minutes" validate:"required,gt=0"`
}

// LearnerProfile is the persisted result of onboarding, embedded in the user record.
type LearnerProfile struct {
	Language     string `json:"language" dynamodbav:"language"`
	Level        string `json:"level" dynamodbav:"level"`
	Goal         string `json:"goal" dynamodbav:"goal"`
	StudyTime    string `json:"study_time" dynamodbav:"study_time"`
	DailyMinutes int    `json:"daily_minutes" dynamodbav:"daily_minutes"`
}
