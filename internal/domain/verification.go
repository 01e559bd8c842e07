package domain

// Verification purposes. Each purpose owns an independent slot per user, so
// issuing a password-reset token never invalidates an in-flight email code.
const (
	PurposeEmailOTP      = "email"
	PurposeEmailLink     = "email_link"
	PurposePasswordReset = "password_reset"
)

// Verification stores a pending one-time code or opaque token.
// PK: user_id, SK: purpose. At most one live verification exists per
// (user, purpose); re-issuing overwrites it.
// ExpiresAt is a Unix timestamp doubling as the DynamoDB TTL attribute.
type Verification struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Purpose   string `json:"purpose" dynamodbav:"purpose"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}
