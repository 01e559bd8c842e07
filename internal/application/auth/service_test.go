package auth

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/linguahub/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.Verification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Consume(ctx context.Context, userID, purpose, code string) error {
	return m.Called(ctx, userID, purpose, code).Error(0)
}
func (m *mockVerificationStore) Delete(ctx context.Context, userID, purpose string) error {
	return m.Called(ctx, userID, purpose).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) HardDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, phone, msg string) error {
	return m.Called(ctx, phone, msg).Error(0)
}

// fakeVerificationStore is an in-memory store with the same consume contract
// as the DynamoDB repo: a single conditional check-and-clear, expiry strictly
// greater-than now. The clock is shared with the service under test.
type fakeVerificationStore struct {
	mu      sync.Mutex
	entries map[string]*domain.Verification
	now     func() time.Time
}

func newFakeVerificationStore(now func() time.Time) *fakeVerificationStore {
	return &fakeVerificationStore{entries: make(map[string]*domain.Verification), now: now}
}

func (f *fakeVerificationStore) key(userID, purpose string) string { return userID + "/" + purpose }

func (f *fakeVerificationStore) Put(_ context.Context, v *domain.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[f.key(v.UserID, v.Purpose)] = v
	return nil
}

func (f *fakeVerificationStore) Consume(_ context.Context, userID, purpose, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[f.key(userID, purpose)]
	if !ok || v.Code != code || v.ExpiresAt <= f.now().Unix() {
		return fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	delete(f.entries, f.key(userID, purpose))
	return nil
}

func (f *fakeVerificationStore) Delete(_ context.Context, userID, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, f.key(userID, purpose))
	return nil
}

// --- builders ---

var codeRe = regexp.MustCompile(`verification code is (\d{6})`)

func newService(vs verificationStore, us *mockUserStore, ss *mockSessionStore, ml *mockMailer, sms *mockSMSSender, now func() time.Time) Service {
	return NewService(ServiceDeps{
		VerificationRepo: vs,
		UserRepo:         us,
		SessionRepo:      ss,
		Mailer:           ml,
		SMSSender:        sms,
		BaseURL:          "https://app.example.com",
		OTPTTL:           10 * time.Minute,
		ResetTokenTTL:    time.Hour,
		VerifyLinkTTL:    24 * time.Hour,
		Now:              now,
	})
}

func testUser() *domain.User {
	return &domain.User{
		UserID:   "u1",
		Username: "ana",
		Email:    "ana@example.com",
		Role:     domain.RoleUser,
		Enable:   1,
	}
}

func strPtr(s string) *string { return &s }

// --- Signup ---

func TestSignup_SendsCodeAndLink(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("GetByUsername", mock.Anything, "ana").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	vs.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.Verification) bool {
		return v.Purpose == domain.PurposeEmailOTP
	})).Return(nil)
	vs.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.Verification) bool {
		return v.Purpose == domain.PurposeEmailLink
	})).Return(nil)

	var body string
	ml.On("SendEmail", "ana@example.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).Return(nil)

	svc := newService(vs, us, nil, ml, nil, nil)
	u, err := svc.Signup(context.Background(), domain.CreateUserRequest{
		Username: "ana", Password: "s3cret-pass", Email: "Ana@Example.com", DisplayName: "Ana",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Regexp(t, codeRe, body)
	assert.Contains(t, body, "https://app.example.com/verify-email?uid="+u.UserID)
	vs.AssertNumberOfCalls(t, "Put", 2)
}

func TestSignup_UsernameTaken(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByUsername", mock.Anything, "ana").Return(testUser(), nil)

	svc := newService(&mockVerificationStore{}, us, nil, &mockMailer{}, nil, nil)
	_, err := svc.Signup(context.Background(), domain.CreateUserRequest{
		Username: "ana", Password: "s3cret-pass", Email: "ana@example.com", DisplayName: "Ana",
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSignup_MailerFailure_RollsBackAccount(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("GetByUsername", mock.Anything, "ana").Return(nil, domain.ErrNotFound)
	us.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	vs.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("smtp down"))
	vs.On("Delete", mock.Anything, mock.Anything, domain.PurposeEmailOTP).Return(nil)
	vs.On("Delete", mock.Anything, mock.Anything, domain.PurposeEmailLink).Return(nil)
	us.On("HardDelete", mock.Anything, mock.Anything).Return(nil)

	svc := newService(vs, us, nil, ml, nil, nil)
	_, err := svc.Signup(context.Background(), domain.CreateUserRequest{
		Username: "ana", Password: "s3cret-pass", Email: "ana@example.com", DisplayName: "Ana",
	})

	assert.ErrorIs(t, err, domain.ErrDependency)
	us.AssertCalled(t, "HardDelete", mock.Anything, mock.Anything)
	vs.AssertNumberOfCalls(t, "Delete", 2)
}

// --- ResendVerification ---

func TestResendVerification_UnknownEmail_GenericSuccess(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := newService(vs, us, nil, &mockMailer{}, nil, nil)
	err := svc.ResendVerification(context.Background(), "ghost@example.com")

	assert.NoError(t, err)
	vs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	us := &mockUserStore{}
	u := testUser()
	now := time.Now()
	u.EmailVerifiedAt = &now
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	svc := newService(&mockVerificationStore{}, us, nil, &mockMailer{}, nil, nil)
	err := svc.ResendVerification(context.Background(), u.Email)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestResendVerification_InvalidatesPreviousCode(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	fake := newFakeVerificationStore(now)
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()

	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	us.On("Update", mock.Anything, u.UserID, mock.Anything).Return(nil)

	var bodies []string
	ml.On("SendEmail", u.Email, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { bodies = append(bodies, args.String(2)) }).Return(nil)

	svc := newService(fake, us, nil, ml, nil, now)
	require.NoError(t, svc.ResendVerification(context.Background(), u.Email))
	require.NoError(t, svc.ResendVerification(context.Background(), u.Email))
	require.Len(t, bodies, 2)

	oldCode := codeRe.FindStringSubmatch(bodies[0])[1]
	newCode := codeRe.FindStringSubmatch(bodies[1])[1]

	if oldCode != newCode {
		assert.ErrorIs(t, svc.VerifyEmailCode(context.Background(), u.Email, oldCode), domain.ErrUnauthorized)
	}
	assert.NoError(t, svc.VerifyEmailCode(context.Background(), u.Email, newCode))
}

// --- VerifyEmailCode ---

// issueCode signs the user up for a verification through the fake store and
// returns the 6-digit code that was "emailed".
func issueCode(t *testing.T, svc Service, ml *mockMailer, u *domain.User) string {
	t.Helper()
	var body string
	ml.On("SendEmail", u.Email, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).Return(nil).Once()
	require.NoError(t, svc.ResendVerification(context.Background(), u.Email))
	m := codeRe.FindStringSubmatch(body)
	require.Len(t, m, 2)
	return m[1]
}

func TestVerifyEmailCode_JustBeforeExpiry(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	fake := newFakeVerificationStore(now)
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	us.On("Update", mock.Anything, u.UserID, mock.MatchedBy(func(m map[string]interface{}) bool {
		_, ok := m["email_verified_at"]
		return ok
	})).Return(nil)

	svc := newService(fake, us, nil, ml, nil, now)
	code := issueCode(t, svc, ml, u)

	clock = clock.Add(10*time.Minute - time.Second)
	assert.NoError(t, svc.VerifyEmailCode(context.Background(), u.Email, code))
	us.AssertCalled(t, "Update", mock.Anything, u.UserID, mock.Anything)
}

func TestVerifyEmailCode_AfterExpiry(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	fake := newFakeVerificationStore(now)
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	svc := newService(fake, us, nil, ml, nil, now)
	code := issueCode(t, svc, ml, u)

	clock = clock.Add(10*time.Minute + time.Second)
	assert.ErrorIs(t, svc.VerifyEmailCode(context.Background(), u.Email, code), domain.ErrUnauthorized)
}

func TestVerifyEmailCode_AtExactExpiry(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	fake := newFakeVerificationStore(now)
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	svc := newService(fake, us, nil, ml, nil, now)
	code := issueCode(t, svc, ml, u)

	// Expiry boundary counts as expired.
	clock = clock.Add(10 * time.Minute)
	assert.ErrorIs(t, svc.VerifyEmailCode(context.Background(), u.Email, code), domain.ErrUnauthorized)
}

func TestVerifyEmailCode_SecondRedemptionFails(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	fake := newFakeVerificationStore(now)
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	us.On("Update", mock.Anything, u.UserID, mock.Anything).Return(nil)

	svc := newService(fake, us, nil, ml, nil, now)
	code := issueCode(t, svc, ml, u)

	require.NoError(t, svc.VerifyEmailCode(context.Background(), u.Email, code))
	assert.ErrorIs(t, svc.VerifyEmailCode(context.Background(), u.Email, code), domain.ErrUnauthorized)
}

func TestVerifyEmailCode_WrongCode(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	fake := newFakeVerificationStore(now)
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)

	svc := newService(fake, us, nil, ml, nil, now)
	code := issueCode(t, svc, ml, u)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, svc.VerifyEmailCode(context.Background(), u.Email, wrong), domain.ErrUnauthorized)
}

func TestVerifyEmailCode_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := newService(&mockVerificationStore{}, us, nil, &mockMailer{}, nil, nil)
	err := svc.VerifyEmailCode(context.Background(), "ghost@example.com", "123456")

	// Same failure as a wrong code, so the endpoint can't confirm the account exists.
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.EqualError(t, err, "invalid or expired code: unauthorized")
}

func TestVerifyEmailCode_ConcurrentRedemption_ExactlyOneWins(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	fake := newFakeVerificationStore(now)
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	us.On("Update", mock.Anything, u.UserID, mock.Anything).Return(nil)

	svc := newService(fake, us, nil, ml, nil, now)
	code := issueCode(t, svc, ml, u)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.VerifyEmailCode(context.Background(), u.Email, code)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

// --- VerifyEmailLink ---

func TestVerifyEmailLink_ClearsSiblingCode(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	vs.On("Consume", mock.Anything, "u1", domain.PurposeEmailLink, "tok").Return(nil)
	vs.On("Delete", mock.Anything, "u1", domain.PurposeEmailOTP).Return(nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)

	svc := newService(vs, us, nil, &mockMailer{}, nil, nil)
	require.NoError(t, svc.VerifyEmailLink(context.Background(), "u1", "tok"))

	vs.AssertCalled(t, "Delete", mock.Anything, "u1", domain.PurposeEmailOTP)
}

// --- RequestPasswordReset ---

func TestRequestPasswordReset_UnknownEmail_NoTokenStored(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := newService(vs, us, nil, &mockMailer{}, nil, nil)
	err := svc.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: "ghost@example.com"})

	assert.NoError(t, err)
	vs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRequestPasswordReset_EmailLink(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}
	u := testUser()
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	vs.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.Verification) bool {
		return v.Purpose == domain.PurposePasswordReset && len(v.Code) > 6
	})).Return(nil)
	ml.On("SendEmail", u.Email, mock.Anything, mock.MatchedBy(func(body string) bool {
		return regexp.MustCompile(`reset-password\?uid=u1&token=`).MatchString(body)
	})).Return(nil)

	svc := newService(vs, us, nil, ml, nil, nil)
	assert.NoError(t, svc.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: u.Email}))
}

func TestRequestPasswordReset_SMSChannel(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	sms := &mockSMSSender{}
	u := testUser()
	u.Phone = strPtr("+34600111222")
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	vs.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.Verification) bool {
		return v.Purpose == domain.PurposePasswordReset && len(v.Code) == 6
	})).Return(nil)
	sms.On("SendSMS", mock.Anything, "+34600111222", mock.Anything).Return(nil)

	svc := newService(vs, us, nil, &mockMailer{}, sms, nil)
	err := svc.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: u.Email, Channel: ChannelSMS})

	assert.NoError(t, err)
	sms.AssertCalled(t, "SendSMS", mock.Anything, "+34600111222", mock.Anything)
}

func TestRequestPasswordReset_SMSFailure_DiscardsToken(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	sms := &mockSMSSender{}
	u := testUser()
	u.Phone = strPtr("+34600111222")
	us.On("GetByEmail", mock.Anything, u.Email).Return(u, nil)
	vs.On("Put", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("sns down"))
	vs.On("Delete", mock.Anything, u.UserID, domain.PurposePasswordReset).Return(nil)

	svc := newService(vs, us, nil, &mockMailer{}, sms, nil)
	err := svc.RequestPasswordReset(context.Background(), PasswordResetRequest{Email: u.Email, Channel: ChannelSMS})

	assert.ErrorIs(t, err, domain.ErrDependency)
	vs.AssertCalled(t, "Delete", mock.Anything, u.UserID, domain.PurposePasswordReset)
}

// --- ResetPassword ---

func TestResetPassword_DisablesSessions(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	u := testUser()
	us.On("Get", mock.Anything, u.UserID).Return(u, nil)
	vs.On("Consume", mock.Anything, u.UserID, domain.PurposePasswordReset, "tok").Return(nil)
	us.On("Update", mock.Anything, u.UserID, mock.MatchedBy(func(m map[string]interface{}) bool {
		_, ok := m["password_hash"]
		return ok
	})).Return(nil)
	ss.On("SoftDeleteByUser", mock.Anything, u.UserID).Return(nil)

	svc := newService(vs, us, ss, &mockMailer{}, nil, nil)
	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		UserID: strPtr(u.UserID), Token: "tok", NewPassword: "brand-new-pass",
	})

	require.NoError(t, err)
	ss.AssertCalled(t, "SoftDeleteByUser", mock.Anything, u.UserID)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	vs := &mockVerificationStore{}
	us := &mockUserStore{}
	u := testUser()
	us.On("Get", mock.Anything, u.UserID).Return(u, nil)
	vs.On("Consume", mock.Anything, u.UserID, domain.PurposePasswordReset, "tok").
		Return(fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized))

	svc := newService(vs, us, &mockSessionStore{}, &mockMailer{}, nil, nil)
	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		UserID: strPtr(u.UserID), Token: "tok", NewPassword: "brand-new-pass",
	})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_MissingIdentifier(t *testing.T) {
	svc := newService(&mockVerificationStore{}, &mockUserStore{}, nil, &mockMailer{}, nil, nil)
	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: "tok", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
