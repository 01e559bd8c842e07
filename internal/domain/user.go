package domain

import "time"

type User struct {
	UserID          string          `json:"id" dynamodbav:"user_id"`
	Username        string          `json:"username" dynamodbav:"username"`
	Email           string          `json:"email" dynamodbav:"email"`
	Phone           *string         `json:"phone" dynamodbav:"phone"`
	PasswordHash    string          `json:"-" dynamodbav:"password_hash"`
	Role            string          `json:"role" dynamodbav:"role"`
	DisplayName     string          `json:"display_name" dynamodbav:"display_name"`
	EmailVerifiedAt *time.Time      `json:"email_verified_at,omitempty" dynamodbav:"email_verified_at"`
	AuthProvider    string          `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub       string          `json:"-"                       dynamodbav:"google_sub"`
	Onboarded       bool            `json:"onboarded" dynamodbav:"onboarded"`
	Profile         *LearnerProfile `json:"profile,omitempty" dynamodbav:"profile"`
	Enable          int             `json:"enable" dynamodbav:"enable"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt       time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time       `json:"updated" dynamodbav:"updated_at"`
}

// EmailVerified reports whether the user has confirmed their email address.
func (u *User) EmailVerified() bool { return u.EmailVerifiedAt != nil }

type CreateUserRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=32"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone"`
	DisplayName string  `json:"display_name" validate:"required"`
}

type UpdateUserRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	Enable      *int    `json:"enable"` // 1 = enabled, 0 = disabled
}
