package domain

import "time"

// Goal is a dashboard goal. Preset goals are created by the onboarding flow
// from the learner's selections and cannot be toggled or deleted.
type Goal struct {
	GoalID      string     `json:"id" dynamodbav:"goal_id"`
	UserID      string     `json:"user_id" dynamodbav:"user_id"`
	Title       string     `json:"title" dynamodbav:"title"`
	Preset      bool       `json:"preset" dynamodbav:"preset"`
	Completed   bool       `json:"completed" dynamodbav:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" dynamodbav:"completed_at"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateGoalRequest struct {
	Title string `json:"title" validate:"required,max=140"`
}
