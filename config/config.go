package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kutmanm/eatwise/models"
)

// Config holds everything the process needs. It is loaded once in main and
// passed into constructors; nothing reads the environment after startup.
type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret           string
	AtRestEncryptionKey string

	OpenAIAPIKey string
	OpenAIModel  string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceMonthly  string
	StripePriceYearly   string
	SuccessURL          string
	CancelURL           string

	S3Region      string
	S3Bucket      string
	CloudFrontURL string

	SummarySchedulerHour int
}

func Load() (*Config, error) {
	// .env is optional in production; real env vars win either way
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENVIRONMENT", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTSecret:           os.Getenv("JWT_SECRET"),
		AtRestEncryptionKey: os.Getenv("AT_REST_ENCRYPTION_KEY"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceMonthly:  os.Getenv("STRIPE_PRICE_MONTHLY"),
		StripePriceYearly:   os.Getenv("STRIPE_PRICE_YEARLY"),
		SuccessURL:          getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/billing/success"),
		CancelURL:           getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/billing/cancel"),

		S3Region:      getEnv("S3_REGION", os.Getenv("AWS_REGION")),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		CloudFrontURL: os.Getenv("CLOUDFRONT_URL"),

		SummarySchedulerHour: getEnvInt("SUMMARY_SCHEDULER_HOUR", 2),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// ConnectDB opens the database and runs migrations.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Subscription{},
		&models.Meal{},
		&models.SymptomLog{},
		&models.LifestyleLog{},
		&models.WeightLog{},
		&models.DietPlan{},
		&models.WeeklySummary{},
		&models.PlanFeedback{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
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
