package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linguahub/api/internal/domain"
	"github.com/linguahub/api/internal/pkg/id"
	pkgtoken "github.com/linguahub/api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Delivery channels for password-recovery codes.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type PasswordResetRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Channel string `json:"channel"` // "email" (default) | "sms"
}

type ResetPasswordRequest struct {
	UserID      *string `json:"user_id"` // from the emailed link
	Email       *string `json:"email"`   // typed alongside an SMS code
	Token       string  `json:"token" validate:"required"`
	NewPassword string  `json:"new_password" validate:"required,min=8,max=72"`
}

type Service interface {
	Signup(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) error
	VerifyEmailCode(ctx context.Context, email, code string) error
	VerifyEmailLink(ctx context.Context, userID, token string) error
	RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

// verificationStore is the token store: one live entry per (user, purpose),
// overwritten on re-issue, atomically consumed on redemption.
type verificationStore interface {
	Put(ctx context.Context, v *domain.Verification) error
	// Consume must be a single conditional check-and-clear: of two concurrent
	// calls with the same valid code exactly one may succeed. Absent,
	// mismatched and expired all come back as domain.ErrUnauthorized.
	Consume(ctx context.Context, userID, purpose, code string) error
	Delete(ctx context.Context, userID, purpose string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	SoftDeleteByUser(ctx context.Context, userID string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	verificationRepo verificationStore
	userRepo         userStore
	sessionRepo      sessionStore
	mailer           mailer
	smsSender        smsSender
	baseURL          string
	otpTTL           time.Duration
	resetTTL         time.Duration
	linkTTL          time.Duration
	now              func() time.Time
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	SessionRepo      sessionStore
	Mailer           mailer
	SMSSender        smsSender
	BaseURL          string
	OTPTTL           time.Duration
	ResetTokenTTL    time.Duration
	VerifyLinkTTL    time.Duration
	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		verificationRepo: deps.VerificationRepo,
		userRepo:         deps.UserRepo,
		sessionRepo:      deps.SessionRepo,
		mailer:           deps.Mailer,
		smsSender:        deps.SMSSender,
		baseURL:          deps.BaseURL,
		otpTTL:           deps.OTPTTL,
		resetTTL:         deps.ResetTokenTTL,
		linkTTL:          deps.VerifyLinkTTL,
		now:              now,
	}
}

// Signup creates the account and sends the verification email (6-digit code
// plus a confirmation link). If the email cannot be sent the account and any
// issued codes are removed again: a user who never learned their code would
// otherwise be stuck with an orphaned unverifiable account.
func (s *service) Signup(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}
	email := strings.ToLower(req.Email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         domain.RoleUser,
		AuthProvider: "local",
		Enable:       1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	if err := s.issueAndSendVerification(ctx, u); err != nil {
		// Compensating delete: no account without a deliverable code.
		s.discardVerifications(ctx, u.UserID)
		if derr := s.userRepo.HardDelete(ctx, u.UserID); derr != nil {
			slog.Error("failed to roll back unverified account", "user_id", u.UserID, "err", derr)
		}
		return nil, err
	}
	return u, nil
}

// ResendVerification re-issues the email code and link, silently invalidating
// whatever was sent before. Unknown addresses get a generic success so the
// endpoint cannot be used to probe which emails have accounts.
func (s *service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("verification resend for unknown email", "err", err)
		return nil
	}
	if u.EmailVerified() {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	if err := s.issueAndSendVerification(ctx, u); err != nil {
		s.discardVerifications(ctx, u.UserID)
		return err
	}
	return nil
}

func (s *service) issueAndSendVerification(ctx context.Context, u *domain.User) error {
	code, err := pkgtoken.NewNumericCode()
	if err != nil {
		return err
	}
	linkToken, err := pkgtoken.NewOpaque()
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.verificationRepo.Put(ctx, &domain.Verification{
		UserID:    u.UserID,
		Purpose:   domain.PurposeEmailOTP,
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
	}); err != nil {
		return err
	}
	if err := s.verificationRepo.Put(ctx, &domain.Verification{
		UserID:    u.UserID,
		Purpose:   domain.PurposeEmailLink,
		Code:      linkToken,
		ExpiresAt: now.Add(s.linkTTL).Unix(),
	}); err != nil {
		return err
	}
	link := fmt.Sprintf("%s/verify-email?uid=%s&token=%s", s.baseURL, u.UserID, linkToken)
	body := fmt.Sprintf("Welcome to LinguaHub!\n\nYour verification code is %s.\n\nOr confirm directly: %s\n", code, link)
	if err := s.mailer.SendEmail(u.Email, "Confirm your LinguaHub email", body); err != nil {
		return fmt.Errorf("send verification email: %w", domain.ErrDependency)
	}
	return nil
}

func (s *service) discardVerifications(ctx context.Context, userID string) {
	for _, purpose := range []string{domain.PurposeEmailOTP, domain.PurposeEmailLink} {
		if err := s.verificationRepo.Delete(ctx, userID, purpose); err != nil {
			slog.Warn("failed to discard verification", "user_id", userID, "purpose", purpose, "err", err)
		}
	}
}

// VerifyEmailCode redeems the typed 6-digit code. Unknown email, wrong code
// and expired code are indistinguishable to the caller.
func (s *service) VerifyEmailCode(ctx context.Context, email, code string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	if err := s.verificationRepo.Consume(ctx, u.UserID, domain.PurposeEmailOTP, code); err != nil {
		return err
	}
	return s.markVerified(ctx, u.UserID, domain.PurposeEmailLink)
}

// VerifyEmailLink redeems the opaque token carried by the emailed link.
func (s *service) VerifyEmailLink(ctx context.Context, userID, token string) error {
	if err := s.verificationRepo.Consume(ctx, userID, domain.PurposeEmailLink, token); err != nil {
		return err
	}
	return s.markVerified(ctx, userID, domain.PurposeEmailOTP)
}

func (s *service) markVerified(ctx context.Context, userID, siblingPurpose string) error {
	// Best effort: the sibling token is dead either way once the email is verified.
	if err := s.verificationRepo.Delete(ctx, userID, siblingPurpose); err != nil {
		slog.Warn("failed to clear sibling verification", "user_id", userID, "purpose", siblingPurpose, "err", err)
	}
	return s.userRepo.Update(ctx, userID, map[string]interface{}{
		"email_verified_at": s.now().UTC(),
	})
}

// RequestPasswordReset issues a reset token. Unknown accounts get the same
// generic success and no token is stored for them.
func (s *service) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		slog.Info("password reset for unknown email", "err", err)
		return nil
	}

	if req.Channel == ChannelSMS && u.Phone != nil {
		return s.sendResetSMS(ctx, u)
	}
	return s.sendResetLink(ctx, u)
}

func (s *service) sendResetLink(ctx context.Context, u *domain.User) error {
	tok, err := pkgtoken.NewOpaque()
	if err != nil {
		return err
	}
	if err := s.verificationRepo.Put(ctx, &domain.Verification{
		UserID:    u.UserID,
		Purpose:   domain.PurposePasswordReset,
		Code:      tok,
		ExpiresAt: s.now().Add(s.resetTTL).Unix(),
	}); err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password?uid=%s&token=%s", s.baseURL, u.UserID, tok)
	body := fmt.Sprintf("Someone asked to reset the password for this account.\n\nReset it here: %s\n\nIf that wasn't you, ignore this email.\n", link)
	if err := s.mailer.SendEmail(u.Email, "Reset your LinguaHub password", body); err != nil {
		s.discardReset(ctx, u.UserID)
		return fmt.Errorf("send reset email: %w", domain.ErrDependency)
	}
	return nil
}

func (s *service) sendResetSMS(ctx context.Context, u *domain.User) error {
	code, err := pkgtoken.NewNumericCode()
	if err != nil {
		return err
	}
	if err := s.verificationRepo.Put(ctx, &domain.Verification{
		UserID:    u.UserID,
		Purpose:   domain.PurposePasswordReset,
		Code:      code,
		ExpiresAt: s.now().Add(s.otpTTL).Unix(),
	}); err != nil {
		return err
	}
	if err := s.smsSender.SendSMS(ctx, *u.Phone, "Your LinguaHub reset code: "+code); err != nil {
		s.discardReset(ctx, u.UserID)
		return fmt.Errorf("send reset sms: %w", domain.ErrDependency)
	}
	return nil
}

func (s *service) discardReset(ctx context.Context, userID string) {
	if err := s.verificationRepo.Delete(ctx, userID, domain.PurposePasswordReset); err != nil {
		slog.Warn("failed to discard reset token", "user_id", userID, "err", err)
	}
}

// ResetPassword redeems a reset token (link or SMS code) and replaces the
// password. All live sessions are disabled afterwards.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	var u *domain.User
	var err error
	switch {
	case req.UserID != nil:
		u, err = s.userRepo.Get(ctx, *req.UserID)
	case req.Email != nil:
		u, err = s.userRepo.GetByEmail(ctx, *req.Email)
	default:
		return fmt.Errorf("user_id or email required: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	if err := s.verificationRepo.Consume(ctx, u.UserID, domain.PurposePasswordReset, req.Token); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, u.UserID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return err
	}
	if err := s.sessionRepo.SoftDeleteByUser(ctx, u.UserID); err != nil {
		slog.Warn("failed to disable sessions after password reset", "user_id", u.UserID, "err", err)
	}
	return nil
}
