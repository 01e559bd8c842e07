package domain

import "time"

// Module is one entry of the foundation course catalog. The catalog is shared
// across users; per-user completion lives in ModuleProgress.
type Module struct {
	ModuleID    string `json:"id" dynamodbav:"module_id"`
	Title       string `json:"title" dynamodbav:"title"`
	Description string `json:"description" dynamodbav:"description"`
	Ordinal     int    `json:"ordinal" dynamodbav:"ordinal"`
	LessonCount int    `json:"lesson_count" dynamodbav:"lesson_count"`
	AudioKey    string `json:"audio_key,omitempty" dynamodbav:"audio_key"` // S3 object key for intro audio
}

type ModuleInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Ordinal     int    `json:"ordinal" validate:"gte=0"`
	LessonCount int    `json:"lesson_count" validate:"required,gt=0"`
}

// ModuleProgress tracks a learner's position inside one foundation module.
// PK: user_id, SK: module_id. LessonsDone only moves forward and is clamped
// to the module's lesson count.
type ModuleProgress struct {
	UserID      string     `json:"user_id" dynamodbav:"user_id"`
	ModuleID    string     `json:"module_id" dynamodbav:"module_id"`
	LessonsDone int        `json:"lessons_done" dynamodbav:"lessons_done"`
	CompletedAt *time.Time `json:"completed_at,omitempty" dynamodbav:"completed_at"`
	UpdatedAt   time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// ModuleStatus is a catalog entry merged with the requesting user's progress.
type ModuleStatus struct {
	Module
	LessonsDone int        `json:"lessons_done"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ProgressSummary is the dashboard rollup over all foundation modules.
type ProgressSummary struct {
	ModulesTotal     int `json:"modules_total"`
	ModulesCompleted int `json:"modules_completed"`
	LessonsTotal     int `json:"lessons_total"`
	LessonsDone      int `json:"lessons_done"`
}
