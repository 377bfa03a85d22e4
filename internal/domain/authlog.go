package domain

// Authentication audit actions. The log is append-only; rows are never
// mutated or deleted by the application.
const (
	ActionRequestCode     = "request_code"
	ActionRequestCodeFail = "request_code_fail"
	ActionVerifySuccess   = "verify_success"
	ActionVerifyFail      = "verify_fail"
	ActionCodeBlocked     = "code_blocked"
)

// AuthLogEntry is one row of the authentication audit trail.
// PK: log_id (ULID).
type AuthLogEntry struct {
	LogID     string         `json:"log_id" dynamodbav:"log_id"`
	Email     string         `json:"email" dynamodbav:"email"`
	Action    string         `json:"action" dynamodbav:"action"`
	IPAddress string         `json:"ip_address" dynamodbav:"ip_address"`
	UserAgent string         `json:"user_agent" dynamodbav:"user_agent"`
	Details   map[string]any `json:"details" dynamodbav:"details"`
	CreatedAt int64          `json:"created_at" dynamodbav:"created_at"`
}
