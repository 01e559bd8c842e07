package http

import (
	"github.com/linguahub/api/internal/infrastructure/dynamo"
	"github.com/linguahub/api/internal/infrastructure/google"
	jwtinfra "github.com/linguahub/api/internal/infrastructure/jwt"
	s3infra "github.com/linguahub/api/internal/infrastructure/s3"
	"github.com/linguahub/api/internal/infrastructure/smtp"
	"github.com/linguahub/api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	VerificationRepo *dynamo.VerificationRepo
	GoalRepo         *dynamo.GoalRepo
	ModuleRepo       *dynamo.ModuleRepo
	ProgressRepo     *dynamo.ProgressRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
	GoogleVerifier   *google.Verifier
}
