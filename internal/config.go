package internal

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Application base URL (for checkout redirects and email links)
	BaseURL string

	// Template directory
	TemplatesDir string

	// OCR Configuration
	OCRProvider        string // "vision" or "mock"
	OCRBucketName      string // GCS bucket for uploads and Vision output
	OCROutputPrefix    string // prefix under which Vision writes result shards
	OCRCleanupEnabled  bool   // remove bucket objects after extraction
	GoogleCredentials  string // service account JSON blob
	OCRRateLimitEnable bool

	// CV archive storage
	ArchiveProvider string // "local", "r2", or "none"

	// Local archive (development)
	LocalStoragePath string
	LocalStorageURL  string

	// R2 archive (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	// SMTP Configuration
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	SMTPFromName   string
	SMTPSalesInbox string

	// Stripe Billing Configuration
	// In development, billing runs on the mock service when these are empty.
	StripeSecretKey     string
	StripeWebhookSecret string

	// Stripe price IDs per plan
	StripeBasicoPriceID      string
	StripeProfesionalPriceID string
	StripeBusinessPriceID    string

	// Paddle (alternative payment leg)
	PaddleAPIKey  string
	PaddleSandbox bool

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected.
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "./web/templates"),

		// OCR defaults to the mock provider for development
		OCRProvider:        getEnv("OCR_PROVIDER", "mock"),
		OCRBucketName:      getEnv("OCR_BUCKET_NAME", "orc-employsmart"),
		OCROutputPrefix:    getEnv("OCR_OUTPUT_PREFIX", "ocr_results/"),
		OCRCleanupEnabled:  getEnvBool("OCR_CLEANUP_ENABLED", false),
		GoogleCredentials:  getEnv("GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		OCRRateLimitEnable: getEnvBool("OCR_RATE_LIMIT_ENABLED", true),

		// Archive defaults to local filesystem for development
		ArchiveProvider:  getEnv("ARCHIVE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// SMTP defaults for Mailhog (development)
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnvInt("SMTP_PORT", 1025),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:       getEnv("SMTP_FROM", "noreply@employsmart.io"),
		SMTPFromName:   getEnv("SMTP_FROM_NAME", "EmploySmart"),
		SMTPSalesInbox: getEnv("SMTP_SALES_INBOX", "sales@employsmart.io"),

		// Stripe billing (optional — the mock service works without these)
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		StripeBasicoPriceID:      getEnv("STRIPE_BASICO_PRICE_ID", ""),
		StripeProfesionalPriceID: getEnv("STRIPE_PROFESIONAL_PRICE_ID", ""),
		StripeBusinessPriceID:    getEnv("STRIPE_BUSINESS_PRICE_ID", ""),

		PaddleAPIKey:  getEnv("PADDLE_API_KEY", ""),
		PaddleSandbox: getEnvBool("PADDLE_SANDBOX", true),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Validate OCR configuration
	if cfg.OCRProvider == "vision" {
		if cfg.GoogleCredentials == "" {
			return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS_JSON is required when OCR_PROVIDER is 'vision'")
		}
		if cfg.OCRBucketName == "" {
			return nil, fmt.Errorf("OCR_BUCKET_NAME is required when OCR_PROVIDER is 'vision'")
		}
	} else if cfg.OCRProvider != "mock" {
		return nil, fmt.Errorf("OCR_PROVIDER must be either 'vision' or 'mock', got: %s", cfg.OCRProvider)
	}

	// Validate archive configuration
	switch cfg.ArchiveProvider {
	case "r2":
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when ARCHIVE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when ARCHIVE_PROVIDER is 'r2'")
		}
	case "local", "none":
	default:
		return nil, fmt.Errorf("ARCHIVE_PROVIDER must be 'local', 'r2', or 'none', got: %s", cfg.ArchiveProvider)
	}

	// Stripe keys travel together
	if cfg.StripeSecretKey != "" && cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
