package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once at startup and passed down by dependency injection; nothing
// reads the environment after Load returns.
type Config struct {
	AppPort string
	AppEnv  string

	// AdminEmail is the single address allowed to authenticate.
	AdminEmail string

	JWTSecret     string
	JWTExpiryDays int
	CodeExpiry    time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	// SNSAlertTopicARN enables brute-force alert notifications when set.
	SNSAlertTopicARN string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	AuthCodes string
	AuthLogs  string
	Items     string
}

// Load reads all configuration from environment variables.
// It fails when a required value is missing: the signing secret and the admin
// allow-list address must exist before the server may accept a single request.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not defined in environment variables")
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL is not defined in environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "3001"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AdminEmail: adminEmail,

		JWTSecret:     secret,
		JWTExpiryDays: getEnvInt("JWT_EXPIRY_DAYS", 7),
		CodeExpiry:    time.Duration(getEnvInt("AUTH_CODE_EXPIRY_MINUTES", 10)) * time.Minute,

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			AuthCodes: getEnv("DYNAMO_TABLE_AUTH_CODES", "auth_codes"),
			AuthLogs:  getEnv("DYNAMO_TABLE_AUTH_LOGS", "auth_logs"),
			Items:     getEnv("DYNAMO_TABLE_ITEMS", "items"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "frelsi-drawings"),

		SNSAlertTopicARN: getEnv("SNS_ALERT_TOPIC_ARN", ""),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "465"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@frelsi.app"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
