package domain

// AuthCode is a one-time 6-digit login code for an email address.
// PK: email, SK: code_id (ULID, lexicographically creation-ordered).
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; Attempts counts failed
// verification attempts billed against this code.
type AuthCode struct {
	Email     string `json:"email" dynamodbav:"email"`
	CodeID    string `json:"code_id" dynamodbav:"code_id"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	Attempts  int    `json:"attempts" dynamodbav:"attempts"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}

// MaxCodeAttempts is the brute-force budget: a code with this many failed
// attempts is blocked until it expires or is superseded.
const MaxCodeAttempts = 5
