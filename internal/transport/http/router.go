package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/linguahub/api/internal/application/auth"
	"github.com/linguahub/api/internal/application/content"
	"github.com/linguahub/api/internal/application/goal"
	moduleapp "github.com/linguahub/api/internal/application/module"
	"github.com/linguahub/api/internal/application/onboarding"
	"github.com/linguahub/api/internal/application/progress"
	"github.com/linguahub/api/internal/application/session"
	"github.com/linguahub/api/internal/application/user"
	"github.com/linguahub/api/internal/config"
	"github.com/linguahub/api/internal/domain"
	s3infra "github.com/linguahub/api/internal/infrastructure/s3"
	"github.com/linguahub/api/internal/transport/http/handler"
	appmiddleware "github.com/linguahub/api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 for sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		VerificationRepo: deps.VerificationRepo,
		UserRepo:         deps.UserRepo,
		SessionRepo:      deps.SessionRepo,
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		BaseURL:          cfg.BaseURL,
		OTPTTL:           cfg.OTPTTL,
		ResetTokenTTL:    cfg.ResetTokenTTL,
		VerifyLinkTTL:    cfg.VerifyLinkTTL,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		UserRepo:        deps.UserRepo,
		JWTProvider:     deps.JWTProvider,
		GoogleVerifier:  deps.GoogleVerifier,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	userSvc := user.NewService(deps.UserRepo, deps.SessionRepo)
	onboardingSvc := onboarding.NewService(deps.UserRepo, deps.GoalRepo)
	goalSvc := goal.NewService(deps.GoalRepo)
	moduleSvc := moduleapp.NewService(deps.ModuleRepo)
	progressSvc := progress.NewService(deps.ModuleRepo, deps.ProgressRepo)
	contentSvc := content.NewService(deps.S3Store, deps.ModuleRepo, s3infra.DetectContentType)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc, authSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	emailH := handler.NewEmailConfirmHandler(authSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	onboardingH := handler.NewOnboardingHandler(onboardingSvc)
	goalH := handler.NewGoalHandler(goalSvc)
	moduleH := handler.NewModuleHandler(moduleSvc, progressSvc)
	assetH := handler.NewAssetHandler(contentSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/users", userH.Signup)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/google", sessionH.LoginGoogle)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/confirm-email/resend", emailH.Resend)
		r.With(sensitiveRL.Limit).Post("/confirm-email/code", emailH.VerifyCode)
		r.Get("/verify-email", emailH.VerifyLink)
		r.With(sensitiveRL.Limit).Post("/password-recovery/request", pwH.Request)
		r.With(sensitiveRL.Limit).Post("/password-recovery/reset", pwH.Reset)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)

			r.Post("/onboarding", onboardingH.Complete)

			r.Get("/goals", goalH.List)
			r.Post("/goals", goalH.Create)
			r.Put("/goals/{id}/toggle", goalH.Toggle)
			r.Delete("/goals/{id}", goalH.Delete)

			r.Get("/modules", moduleH.List)
			r.Post("/modules/{id}/lessons", moduleH.CompleteLesson)
			r.Get("/progress", moduleH.Summary)
			r.Get("/modules/{id}/audio", assetH.AudioURL)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/modules", moduleH.Create)
				r.Put("/modules/{id}", moduleH.Update)
				r.Delete("/modules/{id}", moduleH.Delete)
				r.Post("/modules/{id}/audio", assetH.UploadAudio)
			})
		})
	})

	return r
}
